package services

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"gorm.io/gorm"

	"github.com/loopdeck/account-transfer/pkg/tools"
	"github.com/loopdeck/account-transfer/pkg/transfer/archive"
	"github.com/loopdeck/account-transfer/pkg/transfer/models"
	"github.com/loopdeck/account-transfer/pkg/transfer/recordset"
	"github.com/loopdeck/account-transfer/pkg/transfer/richtext"
	"github.com/loopdeck/account-transfer/pkg/transfer/storage"
)

type ImportService struct {
	db     *gorm.DB
	store  storage.Service
	signer *richtext.Signer
}

func NewImportService(db *gorm.DB, store storage.Service, signer *richtext.Signer) *ImportService {
	return &ImportService{db: db, store: store, signer: signer}
}

// ProcessLater schedules Process on a background goroutine.
func (s *ImportService) ProcessLater(imp *models.Import) {
	tools.Dispatch(context.Background(), "import_account", func(ctx context.Context) error {
		return s.Process(ctx, imp, nil, nil)
	})
}

// Process imports the archive into the destination account inside one
// transaction: a failure at any record set rolls back every insert from the
// whole invocation. The optional cursor skips work a previous completed
// invocation already committed; cb reports progress after each batch.
func (s *ImportService) Process(ctx context.Context, imp *models.Import, start *recordset.Cursor, cb recordset.BatchFunc) error {
	if err := s.setStatus(ctx, imp, models.StatusProcessing, false); err != nil {
		return err
	}
	if err := s.process(ctx, imp, start, cb); err != nil {
		s.markFailed(imp)
		return err
	}
	if err := s.setStatus(ctx, imp, models.StatusCompleted, true); err != nil {
		return err
	}
	log.Printf("[import] %s completed for account %s", imp.ID, imp.AccountID)
	return nil
}

func (s *ImportService) process(ctx context.Context, imp *models.Import, start *recordset.Cursor, cb recordset.BatchFunc) error {
	name, err := s.ensureDownloaded(ctx, imp)
	if err != nil {
		return err
	}
	ar, err := archive.Open(name)
	if err != nil {
		return err
	}
	defer ar.Close()

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.run(ctx, tx, ar, imp.AccountID, start, func(rs recordset.RecordSet, startID string) error {
			return rs.Import(ctx, tx, ar, startID, cb)
		})
	})
}

// Validate runs the same iteration and resumption mechanics as Process but
// only reads: no tenant rows are written. An integrity error marks the job
// failed and is returned.
func (s *ImportService) Validate(ctx context.Context, imp *models.Import, start *recordset.Cursor, cb recordset.BatchFunc) error {
	if err := s.setStatus(ctx, imp, models.StatusProcessing, false); err != nil {
		return err
	}
	if err := s.validate(ctx, imp, start, cb); err != nil {
		s.markFailed(imp)
		return err
	}
	return nil
}

func (s *ImportService) validate(ctx context.Context, imp *models.Import, start *recordset.Cursor, cb recordset.BatchFunc) error {
	name, err := s.ensureDownloaded(ctx, imp)
	if err != nil {
		return err
	}
	ar, err := archive.Open(name)
	if err != nil {
		return err
	}
	defer ar.Close()

	return s.run(ctx, s.db, ar, imp.AccountID, start, func(rs recordset.RecordSet, startID string) error {
		return rs.Validate(ctx, s.db, ar, startID, cb)
	})
}

func (s *ImportService) run(ctx context.Context, db *gorm.DB, ar *archive.Reader, accountID string, start *recordset.Cursor, op func(rs recordset.RecordSet, startID string) error) error {
	sets := recordset.Manifest(accountID, s.signer, s.store)
	begin := recordset.StartIndex(sets, start)
	for i := begin; i < len(sets); i++ {
		startID := ""
		if start != nil && i == begin && sets[i].Name() == start.RecordSet {
			startID = start.LastID
		}
		if err := op(sets[i], startID); err != nil {
			return fmt.Errorf("record set %s: %w", sets[i].Name(), err)
		}
	}
	return nil
}

// ensureDownloaded materializes the archive locally once; re-invocations
// after a crash reuse the already-downloaded file.
func (s *ImportService) ensureDownloaded(ctx context.Context, imp *models.Import) (string, error) {
	name := filepath.Join(os.TempDir(), "account-import-"+imp.ID+".zip")
	if _, err := os.Stat(name); err == nil {
		return name, nil
	}

	rc, err := s.store.Download(ctx, imp.FileKey)
	if err != nil {
		return "", fmt.Errorf("download archive for import %s: %w", imp.ID, err)
	}
	defer rc.Close()

	f, err := os.Create(name)
	if err != nil {
		return "", fmt.Errorf("materialize archive for import %s: %w", imp.ID, err)
	}
	if _, err := io.Copy(f, rc); err != nil {
		f.Close()
		os.Remove(name)
		return "", fmt.Errorf("materialize archive for import %s: %w", imp.ID, err)
	}
	return name, f.Close()
}

func (s *ImportService) setStatus(ctx context.Context, imp *models.Import, status string, completed bool) error {
	imp.Status = status
	updates := map[string]interface{}{"status": status}
	if completed {
		now := time.Now()
		imp.CompletedAt = &now
		updates["completed_at"] = now
	}
	if err := s.db.WithContext(ctx).Model(imp).Updates(updates).Error; err != nil {
		return fmt.Errorf("set import %s status %s: %w", imp.ID, status, err)
	}
	return nil
}

func (s *ImportService) markFailed(imp *models.Import) {
	if err := s.setStatus(context.Background(), imp, models.StatusFailed, false); err != nil {
		log.Printf("[import] %v", err)
	}
}
