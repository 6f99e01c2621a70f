package models

import (
	"time"

	"gorm.io/datatypes"
)

type Board struct {
	ID        string `gorm:"column:id;primaryKey"`
	AccountID string `gorm:"column:account_id;index;not null"`
	CreatorID string `gorm:"column:creator_id;not null"`
	Name      string `gorm:"column:name;not null"`
	AllAccess bool   `gorm:"column:all_access;not null;default:false"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Column struct {
	ID        string `gorm:"column:id;primaryKey"`
	AccountID string `gorm:"column:account_id;index;not null"`
	BoardID   string `gorm:"column:board_id;index;not null"`
	Name      string `gorm:"column:name;not null"`
	Color     string `gorm:"column:color"`
	Position  int    `gorm:"column:position;not null;default:0"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Entropy drives auto-postponing of stale cards; its container is either
// the whole account or a single board.
type Entropy struct {
	ID                 string `gorm:"column:id;primaryKey"`
	AccountID          string `gorm:"column:account_id;index;not null"`
	ContainerType      string `gorm:"column:container_type;not null"`
	ContainerID        string `gorm:"column:container_id;not null"`
	AutoPostponePeriod int    `gorm:"column:auto_postpone_period;not null;default:0"`
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// BoardPublication is a public read-only link to a board, addressed by key.
type BoardPublication struct {
	ID        string `gorm:"column:id;primaryKey"`
	AccountID string `gorm:"column:account_id;index;not null"`
	BoardID   string `gorm:"column:board_id;index;not null"`
	Key       string `gorm:"column:key;uniqueIndex;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Access struct {
	ID          string `gorm:"column:id;primaryKey"`
	AccountID   string `gorm:"column:account_id;index;not null"`
	BoardID     string `gorm:"column:board_id;index;not null"`
	UserID      string `gorm:"column:user_id;index;not null"`
	Involvement string `gorm:"column:involvement;not null;default:interested"`
	AccessedAt  *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type Webhook struct {
	ID                string         `gorm:"column:id;primaryKey"`
	AccountID         string         `gorm:"column:account_id;index;not null"`
	BoardID           *string        `gorm:"column:board_id;index"`
	Name              string         `gorm:"column:name;not null"`
	URL               string         `gorm:"column:url;not null"`
	Active            bool           `gorm:"column:active;not null;default:true"`
	SigningSecret     string         `gorm:"column:signing_secret;not null"`
	SubscribedActions datatypes.JSON `gorm:"column:subscribed_actions"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

type WebhookDelinquencyTracker struct {
	ID                       string `gorm:"column:id;primaryKey"`
	AccountID                string `gorm:"column:account_id;index;not null"`
	WebhookID                string `gorm:"column:webhook_id;uniqueIndex;not null"`
	ConsecutiveFailuresCount int    `gorm:"column:consecutive_failures_count;not null;default:0"`
	FirstFailureAt           *time.Time
	CreatedAt                time.Time
	UpdatedAt                time.Time
}

type WebhookDelivery struct {
	ID        string         `gorm:"column:id;primaryKey"`
	AccountID string         `gorm:"column:account_id;index;not null"`
	WebhookID string         `gorm:"column:webhook_id;index;not null"`
	EventID   string         `gorm:"column:event_id;not null"`
	State     string         `gorm:"column:state;not null;default:pending"`
	Request   datatypes.JSON `gorm:"column:request"`
	Response  datatypes.JSON `gorm:"column:response"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
