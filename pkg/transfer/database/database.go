package database

import (
	"fmt"

	_ "github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/loopdeck/account-transfer/pkg/transfer/models"
)

func Connect(connStr string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(connStr), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := Migrate(db); err != nil {
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	return db, nil
}

// Migrate creates or updates the schema for every table the transfer engine
// touches. Tests reuse it against in-memory sqlite.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Account{},
		&models.JoinCode{},
		&models.Identity{},
		&models.User{},
		&models.Tag{},
		&models.Board{},
		&models.Column{},
		&models.Entropy{},
		&models.BoardPublication{},
		&models.Webhook{},
		&models.Access{},
		&models.Card{},
		&models.Comment{},
		&models.Step{},
		&models.Assignment{},
		&models.Tagging{},
		&models.Closure{},
		&models.CardGoldness{},
		&models.CardNotNow{},
		&models.CardActivitySpike{},
		&models.Watch{},
		&models.Pin{},
		&models.Reaction{},
		&models.Mention{},
		&models.Filter{},
		&models.WebhookDelinquencyTracker{},
		&models.Event{},
		&models.Notification{},
		&models.NotificationBundle{},
		&models.WebhookDelivery{},
		&models.Blob{},
		&models.Attachment{},
		&models.RichText{},
		&models.Export{},
		&models.Import{},
	)
}
