package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role of a user in the system. Patients file complaints; the staff roles
// form the management hierarchy complaints are escalated through.
type Role string

const (
	RolePatient    Role = "patient"
	RoleStaff      Role = "staff"
	RoleSupervisor Role = "supervisor"
	RoleManager    Role = "manager"
	RoleAdmin      Role = "admin"
)

// SeniorityLevel returns the default seniority tier for a role:
// staff=1, supervisor=2, manager=3, admin=4. Patients have no tier.
func (r Role) SeniorityLevel() int {
	switch r {
	case RoleStaff:
		return 1
	case RoleSupervisor:
		return 2
	case RoleManager:
		return 3
	case RoleAdmin:
		return 4
	}
	return 0
}

// IsStaff reports whether the role belongs to the management hierarchy.
func (r Role) IsStaff() bool {
	switch r {
	case RoleStaff, RoleSupervisor, RoleManager, RoleAdmin:
		return true
	}
	return false
}

// User represents a patient or a staff member.
type User struct {
	ID    string `gorm:"primaryKey" json:"id"`
	Name  string `gorm:"type:text;not null" json:"name"`
	Email string `gorm:"uniqueIndex" json:"email"`
	Phone string `json:"phone,omitempty"`
	Role  Role   `gorm:"type:text;not null;index" json:"role"`
	// DepartmentID is empty for patients and admins without a home department.
	DepartmentID string `gorm:"index" json:"department_id,omitempty"`
	// SeniorityLevel determines routing order and escalation targets (1-4).
	SeniorityLevel int  `gorm:"not null;default:1" json:"seniority_level"`
	Active         bool `gorm:"not null;default:true" json:"active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate generates a UUID and derives the seniority level from the
// role when neither is set.
func (u *User) BeforeCreate(tx *gorm.DB) (err error) {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	if u.SeniorityLevel == 0 {
		u.SeniorityLevel = u.Role.SeniorityLevel()
	}
	return
}
