package models

import "time"

type Card struct {
	ID           string  `gorm:"column:id;primaryKey"`
	AccountID    string  `gorm:"column:account_id;index;not null"`
	BoardID      string  `gorm:"column:board_id;index;not null"`
	ColumnID     *string `gorm:"column:column_id;index"`
	CreatorID    string  `gorm:"column:creator_id;not null"`
	Title        string  `gorm:"column:title;not null"`
	Status       string  `gorm:"column:status;not null;default:drafted"`
	Number       int64   `gorm:"column:number;not null"`
	DueOn        *time.Time
	LastActiveAt *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Comment bodies live in rich_texts; the row itself only carries placement.
type Comment struct {
	ID        string `gorm:"column:id;primaryKey"`
	AccountID string `gorm:"column:account_id;index;not null"`
	CardID    string `gorm:"column:card_id;index;not null"`
	CreatorID string `gorm:"column:creator_id;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Step struct {
	ID        string `gorm:"column:id;primaryKey"`
	AccountID string `gorm:"column:account_id;index;not null"`
	CardID    string `gorm:"column:card_id;index;not null"`
	Content   string `gorm:"column:content;not null"`
	Completed bool   `gorm:"column:completed;not null;default:false"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Assignment struct {
	ID         string `gorm:"column:id;primaryKey"`
	AccountID  string `gorm:"column:account_id;index;not null"`
	CardID     string `gorm:"column:card_id;index;not null"`
	AssigneeID string `gorm:"column:assignee_id;not null"`
	AssignerID string `gorm:"column:assigner_id;not null"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type Tag struct {
	ID        string `gorm:"column:id;primaryKey"`
	AccountID string `gorm:"column:account_id;index;not null"`
	Title     string `gorm:"column:title;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Tagging struct {
	ID        string `gorm:"column:id;primaryKey"`
	AccountID string `gorm:"column:account_id;index;not null"`
	CardID    string `gorm:"column:card_id;index;not null"`
	TagID     string `gorm:"column:tag_id;index;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Closure struct {
	ID        string `gorm:"column:id;primaryKey"`
	AccountID string `gorm:"column:account_id;index;not null"`
	CardID    string `gorm:"column:card_id;uniqueIndex;not null"`
	UserID    string `gorm:"column:user_id;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

type CardGoldness struct {
	ID        string `gorm:"column:id;primaryKey"`
	AccountID string `gorm:"column:account_id;index;not null"`
	CardID    string `gorm:"column:card_id;uniqueIndex;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

type CardNotNow struct {
	ID        string `gorm:"column:id;primaryKey"`
	AccountID string `gorm:"column:account_id;index;not null"`
	CardID    string `gorm:"column:card_id;uniqueIndex;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

type CardActivitySpike struct {
	ID        string `gorm:"column:id;primaryKey"`
	AccountID string `gorm:"column:account_id;index;not null"`
	CardID    string `gorm:"column:card_id;uniqueIndex;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Watch struct {
	ID        string `gorm:"column:id;primaryKey"`
	AccountID string `gorm:"column:account_id;index;not null"`
	CardID    string `gorm:"column:card_id;index;not null"`
	UserID    string `gorm:"column:user_id;index;not null"`
	Watching  bool   `gorm:"column:watching;not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Pin struct {
	ID        string `gorm:"column:id;primaryKey"`
	AccountID string `gorm:"column:account_id;index;not null"`
	CardID    string `gorm:"column:card_id;index;not null"`
	UserID    string `gorm:"column:user_id;index;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Reaction struct {
	ID        string `gorm:"column:id;primaryKey"`
	AccountID string `gorm:"column:account_id;index;not null"`
	CommentID string `gorm:"column:comment_id;index;not null"`
	ReacterID string `gorm:"column:reacter_id;not null"`
	Content   string `gorm:"column:content;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
