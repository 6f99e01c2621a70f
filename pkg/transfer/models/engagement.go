package models

import (
	"time"

	"gorm.io/datatypes"
)

// Mention records a user being @-mentioned from a card or comment.
type Mention struct {
	ID          string `gorm:"column:id;primaryKey"`
	AccountID   string `gorm:"column:account_id;index;not null"`
	SourceType  string `gorm:"column:source_type;not null"`
	SourceID    string `gorm:"column:source_id;not null"`
	MentionerID string `gorm:"column:mentioner_id;not null"`
	MentioneeID string `gorm:"column:mentionee_id;not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type Filter struct {
	ID           string         `gorm:"column:id;primaryKey"`
	AccountID    string         `gorm:"column:account_id;index;not null"`
	CreatorID    string         `gorm:"column:creator_id;not null"`
	Fields       datatypes.JSON `gorm:"column:fields"`
	ParamsDigest string         `gorm:"column:params_digest;not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Event is the append-only activity log entry behind timelines and webhooks.
type Event struct {
	ID            string         `gorm:"column:id;primaryKey"`
	AccountID     string         `gorm:"column:account_id;index;not null"`
	BoardID       string         `gorm:"column:board_id;index;not null"`
	CreatorID     string         `gorm:"column:creator_id;not null"`
	Action        string         `gorm:"column:action;not null"`
	EventableType string         `gorm:"column:eventable_type;not null"`
	EventableID   string         `gorm:"column:eventable_id;not null"`
	Particulars   datatypes.JSON `gorm:"column:particulars"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type Notification struct {
	ID         string `gorm:"column:id;primaryKey"`
	AccountID  string `gorm:"column:account_id;index;not null"`
	UserID     string `gorm:"column:user_id;index;not null"`
	CreatorID  string `gorm:"column:creator_id;not null"`
	SourceType string `gorm:"column:source_type;not null"`
	SourceID   string `gorm:"column:source_id;not null"`
	ReadAt     *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type NotificationBundle struct {
	ID        string `gorm:"column:id;primaryKey"`
	AccountID string `gorm:"column:account_id;index;not null"`
	UserID    string `gorm:"column:user_id;index;not null"`
	Status    string `gorm:"column:status;not null;default:pending"`
	StartsAt  time.Time
	EndsAt    *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}
