package models

import (
	"time"

	"gorm.io/datatypes"
)

// Blob is the metadata row for a stored binary object. The bytes themselves
// live in the blob storage service under Key and travel in an archive as a
// storage/<key> entry.
type Blob struct {
	ID          string         `gorm:"column:id;primaryKey"`
	AccountID   string         `gorm:"column:account_id;index;not null"`
	Key         string         `gorm:"column:key;uniqueIndex;not null"`
	Filename    string         `gorm:"column:filename;not null"`
	ContentType string         `gorm:"column:content_type"`
	Metadata    datatypes.JSON `gorm:"column:metadata"`
	ServiceName string         `gorm:"column:service_name;not null"`
	ByteSize    int64          `gorm:"column:byte_size;not null"`
	Checksum    string         `gorm:"column:checksum"`
	CreatedAt   time.Time
}

// Attachment joins a blob to the record (usually a rich text) embedding it.
type Attachment struct {
	ID         string `gorm:"column:id;primaryKey"`
	AccountID  string `gorm:"column:account_id;index;not null"`
	Name       string `gorm:"column:name;not null"`
	RecordType string `gorm:"column:record_type;not null"`
	RecordID   string `gorm:"column:record_id;index;not null"`
	BlobID     string `gorm:"column:blob_id;index;not null"`
	CreatedAt  time.Time
}

// RichText is a structured HTML body owned by a card or comment. Attachment
// nodes inside the body carry signed reference tokens that are rewritten to
// a portable form on export and re-signed on import.
type RichText struct {
	ID         string `gorm:"column:id;primaryKey"`
	AccountID  string `gorm:"column:account_id;index;not null"`
	Name       string `gorm:"column:name;not null"`
	Body       string `gorm:"column:body;type:text"`
	RecordType string `gorm:"column:record_type;not null"`
	RecordID   string `gorm:"column:record_id;index;not null"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
