// Package jobs wires the long-running transfer work to its scheduling and
// durability mechanics: cron for periodic cleanup, cursor checkpoints for
// resumable imports.
package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"

	"github.com/loopdeck/account-transfer/pkg/transfer/models"
	"github.com/loopdeck/account-transfer/pkg/transfer/recordset"
	"github.com/loopdeck/account-transfer/pkg/transfer/services"
)

// Import runs in two steps. Validation checkpoints a cursor after every
// batch so a crashed run resumes where it stopped. Processing runs in a
// single transaction, so a crashed run keeps whatever cursor it started
// with and simply re-runs in full.
const (
	stepValidate = "validate"
	stepProcess  = "process"
)

// CursorStore persists per-step import progress across process restarts.
type CursorStore interface {
	Load(step string) (*recordset.Cursor, error)
	Save(step string, c recordset.Cursor) error
	Clear(step string) error
}

// ImportAccountData drives one import job to completion: validate the whole
// archive, then process it. Both steps resume from the store's cursor for
// that step, and the cursors are cleared once the job completes.
func ImportAccountData(ctx context.Context, svc *services.ImportService, imp *models.Import, store CursorStore) error {
	start, err := store.Load(stepValidate)
	if err != nil {
		return err
	}
	err = svc.Validate(ctx, imp, start, func(recordSet, lastID string) {
		if err := store.Save(stepValidate, recordset.Cursor{RecordSet: recordSet, LastID: lastID}); err != nil {
			log.Printf("[import] checkpoint %s: %v", recordSet, err)
		}
	})
	if err != nil {
		return err
	}

	start, err = store.Load(stepProcess)
	if err != nil {
		return err
	}
	if err := svc.Process(ctx, imp, start, nil); err != nil {
		return err
	}

	if err := store.Clear(stepValidate); err != nil {
		return err
	}
	return store.Clear(stepProcess)
}

// FileCursorStore keeps cursors in a JSON file on local disk, one map entry
// per step.
type FileCursorStore struct {
	Path string
}

func (s *FileCursorStore) Load(step string) (*recordset.Cursor, error) {
	cursors, err := s.read()
	if err != nil {
		return nil, err
	}
	c, ok := cursors[step]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (s *FileCursorStore) Save(step string, c recordset.Cursor) error {
	cursors, err := s.read()
	if err != nil {
		return err
	}
	cursors[step] = c
	return s.write(cursors)
}

func (s *FileCursorStore) Clear(step string) error {
	cursors, err := s.read()
	if err != nil {
		return err
	}
	delete(cursors, step)
	if len(cursors) == 0 {
		if err := os.Remove(s.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("remove cursor file: %w", err)
		}
		return nil
	}
	return s.write(cursors)
}

func (s *FileCursorStore) read() (map[string]recordset.Cursor, error) {
	data, err := os.ReadFile(s.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]recordset.Cursor{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read cursor file: %w", err)
	}
	var cursors map[string]recordset.Cursor
	if err := json.Unmarshal(data, &cursors); err != nil {
		return nil, fmt.Errorf("parse cursor file: %w", err)
	}
	return cursors, nil
}

func (s *FileCursorStore) write(cursors map[string]recordset.Cursor) error {
	data, err := json.Marshal(cursors)
	if err != nil {
		return err
	}
	if err := os.WriteFile(s.Path, data, 0o644); err != nil {
		return fmt.Errorf("write cursor file: %w", err)
	}
	return nil
}
