package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"caredesk/backend/internal/faults"
	"caredesk/backend/internal/models"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// TimelineChannel is the Redis Pub/Sub channel timeline events are fanned
// out on for presentation-side consumers.
const TimelineChannel = "timeline:events"

const sweepLockKey = "escalation:sweep:lock"

// ComplaintFilter narrows ListComplaints. Zero values mean "no filter";
// Page is 1-based.
type ComplaintFilter struct {
	PatientID    string
	DepartmentID string
	AssigneeID   string
	Status       models.Status
	Priority     models.Priority
	Search       string
	Page         int
	Limit        int
}

type Storage interface {
	// Complaints. Writes that change a complaint always carry the timeline
	// event recording the change, so the pair lands in one transaction.
	CreateComplaint(c *models.Complaint, ev *models.TimelineEvent) error
	GetComplaintByID(id string) (*models.Complaint, error)
	SaveComplaintAndEvent(c *models.Complaint, ev *models.TimelineEvent) error
	DeleteComplaint(id string) error
	ListComplaints(f ComplaintFilter) ([]models.Complaint, int64, error)
	ListOpenComplaints() ([]models.Complaint, error)
	ComplaintStats(departmentID string) (*models.ComplaintStats, error)

	ListTimeline(complaintID string) ([]models.TimelineEvent, error)
	ListAttachments(complaintID string) ([]models.Attachment, error)

	// Directory reads. Failures are reported as faults.ErrDirectoryUnavailable.
	GetUserByID(id string) (*models.User, error)
	FindActiveStaff(departmentID string, level int) ([]models.User, error)
	ListStaff(departmentID string) ([]models.User, error)
	SaveUser(u *models.User) error
	GetDepartmentByID(id string) (*models.Department, error)
	ListDepartments() ([]models.Department, error)
	SaveDepartment(d *models.Department) error
	DeleteDepartment(id string) error

	// Sweep coordination across replicas.
	AcquireSweepLock(ttl time.Duration) (bool, error)
	ReleaseSweepLock()
}

// Service is the PostgreSQL + Redis backed Storage implementation.
type Service struct {
	DB    *gorm.DB
	Redis *redis.Client
	Ctx   context.Context
	Log   *logrus.Logger
}

// NewStorageService builds a Service. The Redis client may be nil for
// one-shot tools that only need the database.
func NewStorageService(db *gorm.DB, rdb *redis.Client, log *logrus.Logger) *Service {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Service{
		DB:    db,
		Redis: rdb,
		Ctx:   context.Background(),
		Log:   log,
	}
}

// CreateComplaint inserts the complaint together with its "created" timeline
// event in a single transaction.
func (s *Service) CreateComplaint(c *models.Complaint, ev *models.TimelineEvent) error {
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(c).Error; err != nil {
			return err
		}
		ev.ComplaintID = c.ID
		return tx.Create(ev).Error
	})
	if err != nil {
		s.Log.WithError(err).WithField("patient_id", c.PatientID).Error("failed to create complaint")
		return fmt.Errorf("create complaint: %w", err)
	}
	s.publishTimelineEvent(ev)
	return nil
}

func (s *Service) GetComplaintByID(id string) (*models.Complaint, error) {
	var c models.Complaint
	err := s.DB.Where("id = ?", id).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get complaint %s: %w", id, err)
	}
	return &c, nil
}

// SaveComplaintAndEvent persists a mutated complaint and appends the event
// recording the change in the same transaction, so no status change can land
// without its audit record.
func (s *Service) SaveComplaintAndEvent(c *models.Complaint, ev *models.TimelineEvent) error {
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(c).Error; err != nil {
			return err
		}
		ev.ComplaintID = c.ID
		return tx.Create(ev).Error
	})
	if err != nil {
		s.Log.WithError(err).WithField("complaint_id", c.ID).Error("failed to save complaint")
		return fmt.Errorf("save complaint %s: %w", c.ID, err)
	}
	s.publishTimelineEvent(ev)
	return nil
}

// DeleteComplaint removes a complaint with its timeline events and
// attachments as one unit.
func (s *Service) DeleteComplaint(id string) error {
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("complaint_id = ?", id).Delete(&models.TimelineEvent{}).Error; err != nil {
			return err
		}
		if err := tx.Where("complaint_id = ?", id).Delete(&models.Attachment{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&models.Complaint{}).Error
	})
	if err != nil {
		return fmt.Errorf("delete complaint %s: %w", id, err)
	}
	return nil
}

func (s *Service) ListComplaints(f ComplaintFilter) ([]models.Complaint, int64, error) {
	q := s.DB.Model(&models.Complaint{})
	if f.PatientID != "" {
		q = q.Where("patient_id = ?", f.PatientID)
	}
	if f.DepartmentID != "" {
		q = q.Where("department_id = ?", f.DepartmentID)
	}
	if f.AssigneeID != "" {
		q = q.Where("assignee_id = ?", f.AssigneeID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Priority != "" {
		q = q.Where("priority = ?", f.Priority)
	}
	if f.Search != "" {
		pattern := "%" + f.Search + "%"
		q = q.Where("subject ILIKE ? OR description ILIKE ?", pattern, pattern)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count complaints: %w", err)
	}

	limit := f.Limit
	if limit <= 0 {
		limit = 20
	}
	page := f.Page
	if page <= 0 {
		page = 1
	}

	var complaints []models.Complaint
	err := q.Order("created_at DESC").
		Limit(limit).
		Offset((page - 1) * limit).
		Find(&complaints).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list complaints: %w", err)
	}
	return complaints, total, nil
}

// ListOpenComplaints returns every complaint not in a terminal status, for
// the escalation sweep.
func (s *Service) ListOpenComplaints() ([]models.Complaint, error) {
	var complaints []models.Complaint
	err := s.DB.Where("status NOT IN ?", []models.Status{models.StatusResolved, models.StatusRejected}).
		Order("created_at ASC").
		Find(&complaints).Error
	if err != nil {
		return nil, fmt.Errorf("list open complaints: %w", err)
	}
	return complaints, nil
}

// ComplaintStats aggregates per-status counts, optionally scoped to one
// department.
func (s *Service) ComplaintStats(departmentID string) (*models.ComplaintStats, error) {
	rawSQL := `
        SELECT
            COUNT(*) AS total,
            COUNT(*) FILTER (WHERE status = 'new') AS new,
            COUNT(*) FILTER (WHERE status = 'under_review') AS under_review,
            COUNT(*) FILTER (WHERE status = 'in_progress') AS in_progress,
            COUNT(*) FILTER (WHERE status = 'resolved') AS resolved,
            COUNT(*) FILTER (WHERE status = 'rejected') AS rejected,
            COUNT(*) FILTER (WHERE status = 'escalated') AS escalated,
            COUNT(*) FILTER (WHERE priority = 'high') AS high_priority,
            COUNT(*) FILTER (WHERE assignee_id IS NULL) AS unassigned
        FROM complaints
    `
	q := s.DB.Raw(rawSQL)
	if departmentID != "" {
		q = s.DB.Raw(rawSQL+" WHERE department_id = ?", departmentID)
	}

	var row struct {
		Total        int64
		New          int64
		UnderReview  int64
		InProgress   int64
		Resolved     int64
		Rejected     int64
		Escalated    int64
		HighPriority int64
		Unassigned   int64
	}
	if err := q.Scan(&row).Error; err != nil {
		return nil, fmt.Errorf("complaint stats: %w", err)
	}
	return &models.ComplaintStats{
		Total:        row.Total,
		New:          row.New,
		UnderReview:  row.UnderReview,
		InProgress:   row.InProgress,
		Resolved:     row.Resolved,
		Rejected:     row.Rejected,
		Escalated:    row.Escalated,
		HighPriority: row.HighPriority,
		Unassigned:   row.Unassigned,
	}, nil
}

// ListTimeline returns a complaint's events newest-first for display. The
// table itself is append-only oldest-first.
func (s *Service) ListTimeline(complaintID string) ([]models.TimelineEvent, error) {
	var events []models.TimelineEvent
	err := s.DB.Where("complaint_id = ?", complaintID).
		Order("created_at DESC, id DESC").
		Find(&events).Error
	if err != nil {
		return nil, fmt.Errorf("list timeline for %s: %w", complaintID, err)
	}
	return events, nil
}

func (s *Service) ListAttachments(complaintID string) ([]models.Attachment, error) {
	var attachments []models.Attachment
	err := s.DB.Where("complaint_id = ?", complaintID).
		Order("created_at DESC").
		Find(&attachments).Error
	if err != nil {
		return nil, fmt.Errorf("list attachments for %s: %w", complaintID, err)
	}
	return attachments, nil
}

// GetUserByID returns nil without error when the user does not exist.
func (s *Service) GetUserByID(id string) (*models.User, error) {
	var user models.User
	err := s.DB.Where("id = ?", id).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: user lookup: %v", faults.ErrDirectoryUnavailable, err)
	}
	return &user, nil
}

// FindActiveStaff returns active staff in a department at the given
// seniority level, ordered by id. level 0 means any level.
func (s *Service) FindActiveStaff(departmentID string, level int) ([]models.User, error) {
	q := s.DB.Where("department_id = ? AND active = ?", departmentID, true).
		Where("role IN ?", []models.Role{models.RoleStaff, models.RoleSupervisor, models.RoleManager, models.RoleAdmin})
	if level > 0 {
		q = q.Where("seniority_level = ?", level)
	}

	var staff []models.User
	if err := q.Order("id ASC").Find(&staff).Error; err != nil {
		return nil, fmt.Errorf("%w: staff lookup: %v", faults.ErrDirectoryUnavailable, err)
	}
	return staff, nil
}

// ListStaff returns every staff member, active or not, optionally scoped to
// one department.
func (s *Service) ListStaff(departmentID string) ([]models.User, error) {
	q := s.DB.Where("role IN ?", []models.Role{models.RoleStaff, models.RoleSupervisor, models.RoleManager, models.RoleAdmin})
	if departmentID != "" {
		q = q.Where("department_id = ?", departmentID)
	}
	var staff []models.User
	if err := q.Order("name ASC").Find(&staff).Error; err != nil {
		return nil, fmt.Errorf("%w: staff listing: %v", faults.ErrDirectoryUnavailable, err)
	}
	return staff, nil
}

func (s *Service) SaveUser(u *models.User) error {
	return s.DB.Save(u).Error
}

// GetDepartmentByID returns nil without error when the department does not
// exist.
func (s *Service) GetDepartmentByID(id string) (*models.Department, error) {
	var dept models.Department
	err := s.DB.Where("id = ?", id).First(&dept).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get department %s: %w", id, err)
	}
	return &dept, nil
}

func (s *Service) ListDepartments() ([]models.Department, error) {
	var depts []models.Department
	if err := s.DB.Order("name ASC").Find(&depts).Error; err != nil {
		return nil, fmt.Errorf("list departments: %w", err)
	}
	return depts, nil
}

func (s *Service) SaveDepartment(d *models.Department) error {
	return s.DB.Save(d).Error
}

// DeleteDepartment refuses to remove a department that still has complaints.
func (s *Service) DeleteDepartment(id string) error {
	var count int64
	if err := s.DB.Model(&models.Complaint{}).Where("department_id = ?", id).Count(&count).Error; err != nil {
		return fmt.Errorf("check department %s complaints: %w", id, err)
	}
	if count > 0 {
		return fmt.Errorf("department %s still has %d complaints: %w", id, count, faults.ErrConflict)
	}
	return s.DB.Where("id = ?", id).Delete(&models.Department{}).Error
}

// AcquireSweepLock takes the cross-replica sweep lock. Without Redis the
// lock degrades to a no-op so single-process tools can still sweep.
func (s *Service) AcquireSweepLock(ttl time.Duration) (bool, error) {
	if s.Redis == nil {
		return true, nil
	}
	ok, err := s.Redis.SetNX(s.Ctx, sweepLockKey, time.Now().UTC().Format(time.RFC3339), ttl).Result()
	if err != nil {
		return false, fmt.Errorf("acquire sweep lock: %w", err)
	}
	return ok, nil
}

func (s *Service) ReleaseSweepLock() {
	if s.Redis == nil {
		return
	}
	if err := s.Redis.Del(s.Ctx, sweepLockKey).Err(); err != nil {
		s.Log.WithError(err).Warn("failed to release sweep lock, it will expire on its own")
	}
}

// publishTimelineEvent fans the event out over Redis Pub/Sub. Delivery is
// best-effort: the event is already durable in PostgreSQL.
func (s *Service) publishTimelineEvent(ev *models.TimelineEvent) {
	if s.Redis == nil {
		return
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		s.Log.WithError(err).Error("failed to marshal timeline event")
		return
	}
	if err := s.Redis.Publish(s.Ctx, TimelineChannel, payload).Err(); err != nil {
		s.Log.WithError(err).WithField("complaint_id", ev.ComplaintID).Warn("failed to publish timeline event")
	}
}
