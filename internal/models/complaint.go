package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Status is one of the six lifecycle states of a complaint.
type Status string

const (
	StatusNew         Status = "new"
	StatusUnderReview Status = "under_review"
	StatusInProgress  Status = "in_progress"
	StatusResolved    Status = "resolved"
	StatusRejected    Status = "rejected"
	StatusEscalated   Status = "escalated"
)

// Timeline labels that are not one of the six canonical states. "assigned"
// doubles as the label for the automatic New -> UnderReview transition at
// creation time, the same way the original backend recorded it.
const (
	LabelAssigned   = "assigned"
	LabelUnassigned = "unassigned"
)

// Priority of a complaint. Informational only: it does not affect routing
// or escalation deadlines.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// transitions is the lifecycle graph. Escalated is reachable from every
// non-terminal state, including itself for manual re-escalation; Resolved
// and Rejected are terminal.
var transitions = map[Status][]Status{
	StatusNew:         {StatusUnderReview, StatusEscalated},
	StatusUnderReview: {StatusInProgress, StatusEscalated},
	StatusInProgress:  {StatusResolved, StatusRejected, StatusEscalated},
	StatusEscalated:   {StatusInProgress, StatusResolved, StatusRejected, StatusEscalated},
	StatusResolved:    {},
	StatusRejected:    {},
}

func (s Status) Valid() bool {
	_, ok := transitions[s]
	return ok
}

// Terminal reports whether no further transition is permitted from s.
func (s Status) Terminal() bool {
	return s == StatusResolved || s == StatusRejected
}

// CanTransitionTo reports whether the lifecycle graph has an edge s -> next.
func (s Status) CanTransitionTo(next Status) bool {
	for _, t := range transitions[s] {
		if t == next {
			return true
		}
	}
	return false
}

// StatusForLabel maps a timeline label back to the complaint status it
// records. The six canonical labels map to themselves; "assigned" records
// the automatic move into UnderReview. Labels that change no status
// ("unassigned") return ok=false.
func StatusForLabel(label string) (Status, bool) {
	if s := Status(label); s.Valid() {
		return s, true
	}
	if label == LabelAssigned {
		return StatusUnderReview, true
	}
	return "", false
}

// Complaint is the primary tracked entity: a patient-filed issue routed to
// a department and owned by at most one staff member at a time.
type Complaint struct {
	ID           string         `gorm:"primaryKey" json:"id"`
	PatientID    string         `gorm:"type:text;not null;index" json:"patient_id"`
	DepartmentID string         `gorm:"type:text;not null;index" json:"department_id"`
	Subject      string         `gorm:"type:text;not null" json:"subject"`
	Description  string         `gorm:"type:text;not null" json:"description"`
	Status       Status         `gorm:"type:text;not null;index" json:"status"`
	Priority     Priority       `gorm:"type:text;not null" json:"priority"`
	Tags         pq.StringArray `gorm:"type:text[]" json:"tags,omitempty"`
	// AssigneeID is nil while the complaint is unassigned.
	AssigneeID *string `gorm:"index" json:"assignee_id"`
	// EscalationLevel is the seniority tier the complaint is routed at.
	// Starts at 1 and only ever increases.
	EscalationLevel int `gorm:"not null;default:1" json:"escalation_level"`
	// Escalated is set once the first automatic escalation fires and is
	// never reset.
	Escalated bool      `gorm:"not null;default:false" json:"escalated"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate generates an opaque complaint ID if none is set.
func (c *Complaint) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == "" {
		c.ID = "CMP-" + uuid.New().String()
	}
	return
}

// ComplaintStats is the dashboard summary returned by the stats endpoint.
type ComplaintStats struct {
	Total        int64 `json:"total_complaints"`
	New          int64 `json:"new_complaints"`
	UnderReview  int64 `json:"under_review"`
	InProgress   int64 `json:"in_progress"`
	Resolved     int64 `json:"resolved"`
	Rejected     int64 `json:"rejected"`
	Escalated    int64 `json:"escalated"`
	HighPriority int64 `json:"high_priority"`
	Unassigned   int64 `json:"unassigned"`
}
