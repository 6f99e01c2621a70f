// Package services holds the transfer orchestrators: the top-level state
// machines driving the manifest end to end for export and import jobs.
package services

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"time"

	"gorm.io/gorm"

	"github.com/loopdeck/account-transfer/pkg/tools"
	"github.com/loopdeck/account-transfer/pkg/transfer/archive"
	"github.com/loopdeck/account-transfer/pkg/transfer/models"
	"github.com/loopdeck/account-transfer/pkg/transfer/recordset"
	"github.com/loopdeck/account-transfer/pkg/transfer/richtext"
	"github.com/loopdeck/account-transfer/pkg/transfer/storage"
)

// exportRetention is how long a completed export's artifact is kept before
// Cleanup removes it.
const exportRetention = 24 * time.Hour

type ExportService struct {
	db     *gorm.DB
	store  storage.Service
	signer *richtext.Signer
}

func NewExportService(db *gorm.DB, store storage.Service, signer *richtext.Signer) *ExportService {
	return &ExportService{db: db, store: store, signer: signer}
}

// BuildLater schedules Build on a background goroutine.
func (s *ExportService) BuildLater(exp *models.Export) {
	tools.Dispatch(context.Background(), "export_account", func(ctx context.Context) error {
		return s.Build(ctx, exp)
	})
}

// Build runs the whole export: every record set in manifest order into a
// fresh archive, then the archive into blob storage as the job's artifact.
// Any error marks the job failed and is returned to the caller.
func (s *ExportService) Build(ctx context.Context, exp *models.Export) error {
	if err := s.setStatus(ctx, exp, models.StatusProcessing); err != nil {
		return err
	}
	if err := s.build(ctx, exp); err != nil {
		s.markFailed(exp)
		return err
	}
	return nil
}

func (s *ExportService) build(ctx context.Context, exp *models.Export) error {
	tmp, err := os.CreateTemp("", "export-*.zip")
	if err != nil {
		return fmt.Errorf("create export scratch file: %w", err)
	}
	tmpName := tmp.Name()
	tmp.Close()
	defer os.Remove(tmpName)

	ar, err := archive.Create(tmpName)
	if err != nil {
		return err
	}
	for _, rs := range recordset.Manifest(exp.AccountID, s.signer, s.store) {
		if err := rs.Export(ctx, s.db, ar); err != nil {
			ar.Close()
			return fmt.Errorf("export %s: %w", rs.Name(), err)
		}
	}
	if err := ar.Close(); err != nil {
		return err
	}

	f, err := os.Open(tmpName)
	if err != nil {
		return fmt.Errorf("reopen export archive: %w", err)
	}
	defer f.Close()

	key := "exports/" + exp.ID + ".zip"
	if err := s.store.Upload(ctx, key, f); err != nil {
		return err
	}

	now := time.Now()
	exp.FileKey = key
	exp.Status = models.StatusCompleted
	exp.CompletedAt = &now
	if err := s.db.WithContext(ctx).Model(exp).Updates(map[string]interface{}{
		"file_key":     key,
		"status":       models.StatusCompleted,
		"completed_at": now,
	}).Error; err != nil {
		return fmt.Errorf("mark export %s completed: %w", exp.ID, err)
	}
	log.Printf("[export] %s completed for account %s", exp.ID, exp.AccountID)
	return nil
}

// Cleanup removes exports whose artifact has passed the retention window,
// deleting the stored archive along with the job row.
func (s *ExportService) Cleanup(ctx context.Context) error {
	cutoff := time.Now().Add(-exportRetention)
	var expired []models.Export
	if err := s.db.WithContext(ctx).Where("completed_at < ?", cutoff).Find(&expired).Error; err != nil {
		return fmt.Errorf("list expired exports: %w", err)
	}

	for i := range expired {
		exp := &expired[i]
		if exp.FileKey != "" {
			if err := s.store.Delete(ctx, exp.FileKey); err != nil && !errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("delete artifact for export %s: %w", exp.ID, err)
			}
		}
		if err := s.db.WithContext(ctx).Delete(exp).Error; err != nil {
			return fmt.Errorf("delete export %s: %w", exp.ID, err)
		}
	}
	if len(expired) > 0 {
		log.Printf("[cleanup] removed %d expired exports", len(expired))
	}
	return nil
}

func (s *ExportService) setStatus(ctx context.Context, exp *models.Export, status string) error {
	exp.Status = status
	if err := s.db.WithContext(ctx).Model(exp).Update("status", status).Error; err != nil {
		return fmt.Errorf("set export %s status %s: %w", exp.ID, status, err)
	}
	return nil
}

func (s *ExportService) markFailed(exp *models.Export) {
	if err := s.setStatus(context.Background(), exp, models.StatusFailed); err != nil {
		log.Printf("[export] %v", err)
	}
}
