// Package lifecycle implements the complaint status state machine and the
// assignment primitives built on top of it. All mutations of one complaint
// serialize on a per-complaint lock so a human action and the escalation
// sweeper cannot interleave inside a transition.
package lifecycle

import (
	"fmt"
	"sync"
	"time"

	"caredesk/backend/internal/assignment"
	"caredesk/backend/internal/config"
	"caredesk/backend/internal/faults"
	"caredesk/backend/internal/metrics"
	"caredesk/backend/internal/models"
	"caredesk/backend/internal/storage"

	"github.com/sirupsen/logrus"
)

// Service validates and applies complaint lifecycle operations.
type Service struct {
	Storage  storage.Storage
	Resolver *assignment.Resolver
	Metrics  *metrics.Metrics
	Log      *logrus.Logger

	now func() time.Time

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewService builds the lifecycle service. Metrics may be nil.
func NewService(s storage.Storage, r *assignment.Resolver, m *metrics.Metrics, log *logrus.Logger) *Service {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Service{
		Storage:  s,
		Resolver: r,
		Metrics:  m,
		Log:      log,
		now:      time.Now,
		locks:    make(map[string]*sync.Mutex),
	}
}

// SetClock replaces the time source, for deterministic tests.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// lock returns the mutex serializing operations on one complaint.
func (s *Service) lock(complaintID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[complaintID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[complaintID] = l
	}
	return l
}

// releaseLock drops the mutex entry for a complaint that no longer exists,
// so the lock map does not grow with every complaint ever touched.
func (s *Service) releaseLock(complaintID string) {
	s.mu.Lock()
	delete(s.locks, complaintID)
	s.mu.Unlock()
}

// Create files a new complaint for a patient, writes the "created" event and
// immediately tries to route it to entry-level staff. When an assignee is
// found the complaint moves to UnderReview with an "assigned" event; when
// the department has nobody it stays New and unassigned, which is a valid
// outcome, not an error.
func (s *Service) Create(patientID, departmentID, subject, description string, priority models.Priority, tags []string) (*models.Complaint, error) {
	dept, err := s.Storage.GetDepartmentByID(departmentID)
	if err != nil {
		return nil, err
	}
	if dept == nil {
		return nil, fmt.Errorf("department %s: %w", departmentID, faults.ErrNotFound)
	}

	if priority == "" {
		priority = models.PriorityMedium
	}
	if !priority.Valid() {
		return nil, fmt.Errorf("invalid priority %q", priority)
	}

	c := &models.Complaint{
		PatientID:       patientID,
		DepartmentID:    departmentID,
		Subject:         subject,
		Description:     description,
		Status:          models.StatusNew,
		Priority:        priority,
		Tags:            tags,
		EscalationLevel: config.MinSeniorityLevel,
	}
	created := &models.TimelineEvent{
		Status:  string(models.StatusNew),
		Note:    "complaint created",
		ActorID: patientID,
	}
	if err := s.Storage.CreateComplaint(c, created); err != nil {
		return nil, err
	}
	if s.Metrics != nil {
		s.Metrics.ComplaintsCreated.Inc()
	}

	assignee, err := s.Resolver.Resolve(departmentID, config.MinSeniorityLevel)
	if err != nil {
		// The complaint exists; routing just failed. Leave it New and let
		// a manual assignment or the next sweep pick it up.
		s.Log.WithError(err).WithField("complaint_id", c.ID).Warn("auto-assignment skipped")
		return c, nil
	}
	if assignee == nil {
		return c, nil
	}

	c.AssigneeID = &assignee.ID
	c.Status = models.StatusUnderReview
	c.UpdatedAt = s.now()
	assigned := &models.TimelineEvent{
		Status:  models.LabelAssigned,
		Note:    fmt.Sprintf("automatically assigned to %s", assignee.Name),
		ActorID: patientID,
	}
	if err := s.Storage.SaveComplaintAndEvent(c, assigned); err != nil {
		return nil, err
	}
	return c, nil
}

// Transition applies a status change requested by an actor. Entering
// Escalated additionally bumps the escalation level by exactly one and
// flags the complaint as escalated; callers on the escalation path pair it
// with a Reassign for the new level.
func (s *Service) Transition(complaintID, actorID string, newStatus models.Status, note string) (*models.Complaint, error) {
	if !newStatus.Valid() {
		return nil, fmt.Errorf("status %q: %w", newStatus, faults.ErrInvalidTransition)
	}

	l := s.lock(complaintID)
	l.Lock()
	defer l.Unlock()

	c, err := s.Storage.GetComplaintByID(complaintID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, fmt.Errorf("complaint %s: %w", complaintID, faults.ErrNotFound)
	}
	if !c.Status.CanTransitionTo(newStatus) {
		return nil, fmt.Errorf("%s -> %s: %w", c.Status, newStatus, faults.ErrInvalidTransition)
	}

	if newStatus == models.StatusEscalated {
		c.EscalationLevel++
		c.Escalated = true
	}
	c.Status = newStatus
	c.UpdatedAt = s.now()

	ev := &models.TimelineEvent{
		Status:  string(newStatus),
		Note:    note,
		ActorID: actorID,
	}
	if err := s.Storage.SaveComplaintAndEvent(c, ev); err != nil {
		return nil, err
	}
	if s.Metrics != nil {
		s.Metrics.ComplaintTransitions.WithLabelValues(string(newStatus)).Inc()
	}
	return c, nil
}

// Reassign changes or clears the complaint's owner. A nil assignee clears
// the assignment and does not touch the status. A non-nil assignee must be
// an active staff member in the complaint's department unless the actor
// holds the admin role.
//
// Directory lookups happen before the per-complaint lock is taken, so a
// slow or failing directory never stalls other operations on the complaint.
func (s *Service) Reassign(complaintID, actorID string, newAssigneeID *string) (*models.Complaint, error) {
	var staffMember *models.User
	actorAdmin := false
	if newAssigneeID != nil {
		var err error
		staffMember, err = s.Storage.GetUserByID(*newAssigneeID)
		if err != nil {
			return nil, err
		}
		if staffMember == nil || !staffMember.Role.IsStaff() || !staffMember.Active {
			return nil, fmt.Errorf("staff member %s: %w", *newAssigneeID, faults.ErrNotFound)
		}
		actorAdmin = s.actorIsAdmin(actorID)
	}

	l := s.lock(complaintID)
	l.Lock()
	defer l.Unlock()

	c, err := s.Storage.GetComplaintByID(complaintID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, fmt.Errorf("complaint %s: %w", complaintID, faults.ErrNotFound)
	}

	oldAssignee := "nobody"
	if c.AssigneeID != nil {
		oldAssignee = *c.AssigneeID
	}

	var ev *models.TimelineEvent
	if staffMember == nil {
		c.AssigneeID = nil
		ev = &models.TimelineEvent{
			Status:  models.LabelUnassigned,
			Note:    fmt.Sprintf("assignment cleared, was %s", oldAssignee),
			ActorID: actorID,
		}
	} else {
		if staffMember.DepartmentID != c.DepartmentID && !actorAdmin {
			return nil, fmt.Errorf("staff %s is in department %s: %w",
				staffMember.ID, staffMember.DepartmentID, faults.ErrCrossDepartment)
		}
		c.AssigneeID = &staffMember.ID
		ev = &models.TimelineEvent{
			Status:  models.LabelAssigned,
			Note:    fmt.Sprintf("reassigned from %s to %s", oldAssignee, staffMember.Name),
			ActorID: actorID,
		}
	}

	c.UpdatedAt = s.now()
	if err := s.Storage.SaveComplaintAndEvent(c, ev); err != nil {
		return nil, err
	}
	return c, nil
}

// actorIsAdmin is the escape hatch for cross-department assignment. The
// system actor and unknown ids are not unrestricted.
func (s *Service) actorIsAdmin(actorID string) bool {
	actor, err := s.Storage.GetUserByID(actorID)
	if err != nil || actor == nil {
		return false
	}
	return actor.Role == models.RoleAdmin
}

// Delete removes a complaint with its timeline and attachments. Role
// enforcement happens at the call site via the authorization guard.
func (s *Service) Delete(complaintID, actorID string) error {
	l := s.lock(complaintID)
	l.Lock()
	defer l.Unlock()

	c, err := s.Storage.GetComplaintByID(complaintID)
	if err != nil {
		return err
	}
	if c == nil {
		return fmt.Errorf("complaint %s: %w", complaintID, faults.ErrNotFound)
	}
	if err := s.Storage.DeleteComplaint(complaintID); err != nil {
		return err
	}
	s.releaseLock(complaintID)
	s.Log.WithFields(logrus.Fields{
		"complaint_id": complaintID,
		"actor_id":     actorID,
		"status":       c.Status,
	}).Info("complaint deleted")
	return nil
}

// ListTimeline returns the complaint's audit trail newest-first.
func (s *Service) ListTimeline(complaintID string) ([]models.TimelineEvent, error) {
	c, err := s.Storage.GetComplaintByID(complaintID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, fmt.Errorf("complaint %s: %w", complaintID, faults.ErrNotFound)
	}
	return s.Storage.ListTimeline(complaintID)
}

// Stats aggregates complaint counts, optionally scoped to one department.
func (s *Service) Stats(departmentID string) (*models.ComplaintStats, error) {
	return s.Storage.ComplaintStats(departmentID)
}
