package assignment_test

import (
	"time"

	"caredesk/backend/internal/models"
	"caredesk/backend/internal/storage"

	"github.com/stretchr/testify/mock"
)

type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) CreateComplaint(c *models.Complaint, ev *models.TimelineEvent) error {
	args := m.Called(c, ev)
	return args.Error(0)
}

func (m *MockStorage) GetComplaintByID(id string) (*models.Complaint, error) {
	args := m.Called(id)
	c, _ := args.Get(0).(*models.Complaint)
	return c, args.Error(1)
}

func (m *MockStorage) SaveComplaintAndEvent(c *models.Complaint, ev *models.TimelineEvent) error {
	args := m.Called(c, ev)
	return args.Error(0)
}

func (m *MockStorage) DeleteComplaint(id string) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockStorage) ListComplaints(f storage.ComplaintFilter) ([]models.Complaint, int64, error) {
	args := m.Called(f)
	list, _ := args.Get(0).([]models.Complaint)
	return list, int64(args.Int(1)), args.Error(2)
}

func (m *MockStorage) ListOpenComplaints() ([]models.Complaint, error) {
	args := m.Called()
	list, _ := args.Get(0).([]models.Complaint)
	return list, args.Error(1)
}

func (m *MockStorage) ComplaintStats(departmentID string) (*models.ComplaintStats, error) {
	args := m.Called(departmentID)
	stats, _ := args.Get(0).(*models.ComplaintStats)
	return stats, args.Error(1)
}

func (m *MockStorage) ListTimeline(complaintID string) ([]models.TimelineEvent, error) {
	args := m.Called(complaintID)
	events, _ := args.Get(0).([]models.TimelineEvent)
	return events, args.Error(1)
}

func (m *MockStorage) ListAttachments(complaintID string) ([]models.Attachment, error) {
	args := m.Called(complaintID)
	attachments, _ := args.Get(0).([]models.Attachment)
	return attachments, args.Error(1)
}

func (m *MockStorage) GetUserByID(id string) (*models.User, error) {
	args := m.Called(id)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

func (m *MockStorage) FindActiveStaff(departmentID string, level int) ([]models.User, error) {
	args := m.Called(departmentID, level)
	staff, _ := args.Get(0).([]models.User)
	return staff, args.Error(1)
}

func (m *MockStorage) ListStaff(departmentID string) ([]models.User, error) {
	args := m.Called(departmentID)
	staff, _ := args.Get(0).([]models.User)
	return staff, args.Error(1)
}

func (m *MockStorage) SaveUser(u *models.User) error {
	args := m.Called(u)
	return args.Error(0)
}

func (m *MockStorage) GetDepartmentByID(id string) (*models.Department, error) {
	args := m.Called(id)
	dept, _ := args.Get(0).(*models.Department)
	return dept, args.Error(1)
}

func (m *MockStorage) ListDepartments() ([]models.Department, error) {
	args := m.Called()
	depts, _ := args.Get(0).([]models.Department)
	return depts, args.Error(1)
}

func (m *MockStorage) SaveDepartment(d *models.Department) error {
	args := m.Called(d)
	return args.Error(0)
}

func (m *MockStorage) DeleteDepartment(id string) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockStorage) AcquireSweepLock(ttl time.Duration) (bool, error) {
	args := m.Called(ttl)
	return args.Bool(0), args.Error(1)
}

func (m *MockStorage) ReleaseSweepLock() {
	m.Called()
}
