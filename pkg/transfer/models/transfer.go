package models

import "time"

// Transfer job statuses. A job that reaches StatusFailed is never re-entered;
// callers create a fresh job instead.
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// Export is a whole-account export job. On completion FileKey points at the
// archive artifact in blob storage.
type Export struct {
	ID          string `gorm:"column:id;primaryKey"`
	AccountID   string `gorm:"column:account_id;index;not null"`
	UserID      string `gorm:"column:user_id;not null"`
	Status      string `gorm:"column:status;not null;default:pending"`
	FileKey     string `gorm:"column:file_key"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
	CompletedAt *time.Time
}

// Import is a whole-account import job targeting AccountID. FileKey points
// at the uploaded archive in blob storage.
type Import struct {
	ID          string `gorm:"column:id;primaryKey"`
	AccountID   string `gorm:"column:account_id;index;not null"`
	IdentityID  string `gorm:"column:identity_id;not null"`
	Status      string `gorm:"column:status;not null;default:pending"`
	FileKey     string `gorm:"column:file_key"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
	CompletedAt *time.Time
}
