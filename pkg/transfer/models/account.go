// Package models holds the gorm entity structs for every tenant-scoped
// table the transfer engine reads and writes, plus the Export/Import job
// rows themselves.
package models

import (
	"time"

	"github.com/google/uuid"
)

// NewID returns a fresh primary key. Record ids travel with the data in an
// archive, so they are never remapped on import.
func NewID() string {
	return uuid.NewString()
}

// Account is the tenant: every other entity is scoped to exactly one.
type Account struct {
	ID        string `gorm:"column:id;primaryKey"`
	Name      string `gorm:"column:name;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// JoinCode is the account's invitation code. Codes are unique across the
// whole install, which is why an import may have to keep the destination's
// existing code.
type JoinCode struct {
	ID         string `gorm:"column:id;primaryKey"`
	AccountID  string `gorm:"column:account_id;uniqueIndex;not null"`
	Code       string `gorm:"column:code;uniqueIndex;not null"`
	UsageCount int    `gorm:"column:usage_count;not null;default:0"`
	UsageLimit int    `gorm:"column:usage_limit;not null;default:10"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Identity is a login identity shared across accounts. Identities are not
// tenant-scoped and are matched (or created) by email address on import.
type Identity struct {
	ID           string `gorm:"column:id;primaryKey"`
	EmailAddress string `gorm:"column:email_address;uniqueIndex;not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type User struct {
	ID         string  `gorm:"column:id;primaryKey"`
	AccountID  string  `gorm:"column:account_id;index;not null"`
	IdentityID *string `gorm:"column:identity_id;index"`
	Name       string  `gorm:"column:name;not null"`
	Role       string  `gorm:"column:role;not null;default:member"`
	Active     bool    `gorm:"column:active;not null;default:true"`
	VerifiedAt *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
