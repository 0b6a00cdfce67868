package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Department groups staff and receives complaints. EscalationHours is the
// SLA threshold after which an open complaint in this department is
// considered overdue.
type Department struct {
	ID          string `gorm:"primaryKey" json:"id"`
	Name        string `gorm:"uniqueIndex;not null" json:"name"`
	Description string `gorm:"type:text" json:"description,omitempty"`
	// EscalationHours <= 0 means the department uses the system default.
	EscalationHours int       `gorm:"not null;default:72" json:"escalation_hours"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (d *Department) BeforeCreate(tx *gorm.DB) (err error) {
	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	return
}
