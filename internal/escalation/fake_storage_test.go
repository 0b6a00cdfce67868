package escalation_test

import (
	"sort"
	"sync"
	"time"

	"caredesk/backend/internal/models"
	"caredesk/backend/internal/storage"
)

// fakeStorage is an in-memory Storage for exercising the sweeper without a
// database. Directory failures can be injected via staffErr or, per call,
// via staffHook; lockHeld simulates another replica owning the sweep lock.
type fakeStorage struct {
	mu        sync.Mutex
	nextID    uint
	now       time.Time
	staffErr  error
	staffHook func() error
	lockHeld  bool

	complaints  map[string]*models.Complaint
	events      []models.TimelineEvent
	users       map[string]*models.User
	departments map[string]*models.Department
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{
		now:         time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC),
		complaints:  make(map[string]*models.Complaint),
		events:      nil,
		users:       make(map[string]*models.User),
		departments: make(map[string]*models.Department),
	}
}

func (f *fakeStorage) addDepartment(d models.Department) *models.Department {
	f.departments[d.ID] = &d
	return &d
}

func (f *fakeStorage) addUser(u models.User) *models.User {
	f.users[u.ID] = &u
	return &u
}

func (f *fakeStorage) stamp(ev *models.TimelineEvent) {
	f.nextID++
	ev.ID = f.nextID
	ev.CreatedAt = f.now
}

func (f *fakeStorage) CreateComplaint(c *models.Complaint, ev *models.TimelineEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := c.BeforeCreate(nil); err != nil {
		return err
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = f.now
	}
	f.complaints[c.ID] = c
	ev.ComplaintID = c.ID
	f.stamp(ev)
	f.events = append(f.events, *ev)
	return nil
}

func (f *fakeStorage) GetComplaintByID(id string) (*models.Complaint, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.complaints[id]
	if !ok {
		return nil, nil
	}
	copied := *c
	return &copied, nil
}

func (f *fakeStorage) SaveComplaintAndEvent(c *models.Complaint, ev *models.TimelineEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *c
	f.complaints[c.ID] = &copied
	ev.ComplaintID = c.ID
	f.stamp(ev)
	f.events = append(f.events, *ev)
	return nil
}

func (f *fakeStorage) DeleteComplaint(id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.complaints, id)
	kept := f.events[:0]
	for _, ev := range f.events {
		if ev.ComplaintID != id {
			kept = append(kept, ev)
		}
	}
	f.events = kept
	return nil
}

func (f *fakeStorage) ListComplaints(filter storage.ComplaintFilter) ([]models.Complaint, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Complaint
	for _, c := range f.complaints {
		if filter.PatientID != "" && c.PatientID != filter.PatientID {
			continue
		}
		if filter.DepartmentID != "" && c.DepartmentID != filter.DepartmentID {
			continue
		}
		out = append(out, *c)
	}
	return out, int64(len(out)), nil
}

func (f *fakeStorage) ListOpenComplaints() ([]models.Complaint, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Complaint
	for _, c := range f.complaints {
		if !c.Status.Terminal() {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeStorage) ComplaintStats(departmentID string) (*models.ComplaintStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stats := &models.ComplaintStats{}
	for _, c := range f.complaints {
		if departmentID != "" && c.DepartmentID != departmentID {
			continue
		}
		stats.Total++
		if c.AssigneeID == nil {
			stats.Unassigned++
		}
	}
	return stats, nil
}

func (f *fakeStorage) ListTimeline(complaintID string) ([]models.TimelineEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.TimelineEvent
	for _, ev := range f.events {
		if ev.ComplaintID == complaintID {
			out = append(out, ev)
		}
	}
	// Newest-first, as the storage contract promises.
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (f *fakeStorage) ListAttachments(complaintID string) ([]models.Attachment, error) {
	return nil, nil
}

func (f *fakeStorage) GetUserByID(id string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.staffErr != nil {
		return nil, f.staffErr
	}
	u, ok := f.users[id]
	if !ok {
		return nil, nil
	}
	copied := *u
	return &copied, nil
}

func (f *fakeStorage) FindActiveStaff(departmentID string, level int) ([]models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.staffErr != nil {
		return nil, f.staffErr
	}
	if f.staffHook != nil {
		if err := f.staffHook(); err != nil {
			return nil, err
		}
	}
	var out []models.User
	for _, u := range f.users {
		if !u.Role.IsStaff() || !u.Active || u.DepartmentID != departmentID {
			continue
		}
		if level > 0 && u.SeniorityLevel != level {
			continue
		}
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeStorage) ListStaff(departmentID string) ([]models.User, error) {
	return f.FindActiveStaff(departmentID, 0)
}

func (f *fakeStorage) SaveUser(u *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *u
	f.users[u.ID] = &copied
	return nil
}

func (f *fakeStorage) GetDepartmentByID(id string) (*models.Department, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.departments[id]
	if !ok {
		return nil, nil
	}
	copied := *d
	return &copied, nil
}

func (f *fakeStorage) ListDepartments() ([]models.Department, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Department
	for _, d := range f.departments {
		out = append(out, *d)
	}
	return out, nil
}

func (f *fakeStorage) SaveDepartment(d *models.Department) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *d
	f.departments[d.ID] = &copied
	return nil
}

func (f *fakeStorage) DeleteDepartment(id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.departments, id)
	return nil
}

func (f *fakeStorage) AcquireSweepLock(ttl time.Duration) (bool, error) {
	return !f.lockHeld, nil
}

func (f *fakeStorage) ReleaseSweepLock() {}
