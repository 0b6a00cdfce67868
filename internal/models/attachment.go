package models

import "time"

// Attachment is a file linked to a complaint. Storage of the file content
// itself is handled outside this service; only the reference lives here so
// that deleting a complaint can cascade over it.
type Attachment struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	ComplaintID string    `gorm:"type:text;not null;index" json:"complaint_id"`
	FileName    string    `gorm:"type:text;not null" json:"file_name"`
	FilePath    string    `gorm:"type:text;not null" json:"file_path"`
	UploadedBy  string    `gorm:"type:text" json:"uploaded_by"`
	CreatedAt   time.Time `json:"uploaded_at"`
}
