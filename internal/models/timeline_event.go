package models

import "time"

// TimelineEvent is an immutable audit record of one change to a complaint.
// Events are appended in order and never updated or deleted, except when the
// owning complaint is removed and its whole trail cascades with it.
type TimelineEvent struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	ComplaintID string `gorm:"type:text;not null;index" json:"complaint_id"`
	// Status is the label recorded at this point. It is either one of the
	// six canonical states or a transition label such as "assigned".
	Status string `gorm:"type:text;not null" json:"status"`
	Note   string `gorm:"type:text" json:"note,omitempty"`
	// ActorID is the user who produced the event, or the system marker for
	// sweeper-authored events.
	ActorID   string    `gorm:"type:text;not null" json:"actor_id"`
	CreatedAt time.Time `json:"timestamp"`
}
