package recordset

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path"
	"sort"

	"gorm.io/gorm"

	"github.com/loopdeck/account-transfer/pkg/transfer/archive"
	"github.com/loopdeck/account-transfer/pkg/transfer/storage"
)

// blobFileRecordSet moves the raw bytes behind blob metadata rows, as
// uncompressed storage/<key> entries. It runs last in the manifest: blob
// metadata must already be imported so keys can be matched to rows.
type blobFileRecordSet struct {
	accountID string
	store     storage.Service
}

func newBlobFileRecordSet(accountID string, store storage.Service) *blobFileRecordSet {
	return &blobFileRecordSet{accountID: accountID, store: store}
}

func (s *blobFileRecordSet) Name() string {
	return "blob_files"
}

func (s *blobFileRecordSet) Export(ctx context.Context, db *gorm.DB, ar *archive.Writer) error {
	lastID := ""
	for {
		var rows []map[string]interface{}
		q := db.WithContext(ctx).Table("blobs").
			Select([]string{"id", "key"}).
			Where("account_id = ?", s.accountID).
			Order("id").
			Limit(exportPageSize)
		if lastID != "" {
			q = q.Where("id > ?", lastID)
		}
		if err := q.Find(&rows).Error; err != nil {
			return fmt.Errorf("read blobs page: %w", err)
		}

		for _, row := range rows {
			key := stringValue(row["key"])
			if err := s.exportFile(ctx, ar, key); err != nil {
				return err
			}
		}
		if len(rows) < exportPageSize {
			return nil
		}
		lastID = stringValue(rows[len(rows)-1]["id"])
	}
}

func (s *blobFileRecordSet) exportFile(ctx context.Context, ar *archive.Writer, key string) error {
	rc, err := s.store.Download(ctx, key)
	if errors.Is(err, fs.ErrNotExist) {
		// The metadata row outlives files pruned from physical storage;
		// export stays best-effort over storage availability.
		return nil
	}
	if err != nil {
		return err
	}
	defer rc.Close()

	// Uploaded files are routinely compressed already; recompressing them
	// wastes time and space.
	w, err := ar.CreateStored("storage/" + key)
	if err != nil {
		return err
	}
	if _, err := io.Copy(w, rc); err != nil {
		return fmt.Errorf("copy blob %s into archive: %w", key, err)
	}
	return nil
}

func (s *blobFileRecordSet) files(ar *archive.Reader, start string) ([]string, error) {
	files, err := ar.Glob("storage/*")
	if err != nil {
		return nil, err
	}
	if start == "" {
		return files, nil
	}
	// Blob keys are the entry basename as-is, without an extension to strip.
	i := sort.Search(len(files), func(i int) bool { return path.Base(files[i]) > start })
	return files[i:], nil
}

func (s *blobFileRecordSet) Import(ctx context.Context, db *gorm.DB, ar *archive.Reader, start string, cb BatchFunc) error {
	files, err := s.files(ar, start)
	if err != nil {
		return err
	}
	for len(files) > 0 {
		n := ImportBatchSize
		if len(files) < n {
			n = len(files)
		}
		chunk := files[:n]
		files = files[n:]

		for _, f := range chunk {
			if err := s.importFile(ctx, db, ar, f); err != nil {
				return err
			}
		}
		if cb != nil {
			cb(s.Name(), path.Base(chunk[len(chunk)-1]))
		}
	}
	return nil
}

func (s *blobFileRecordSet) importFile(ctx context.Context, db *gorm.DB, ar *archive.Reader, f string) error {
	key := path.Base(f)
	var n int64
	if err := db.WithContext(ctx).Table("blobs").
		Where("key = ? AND account_id = ?", key, s.accountID).
		Count(&n).Error; err != nil {
		return fmt.Errorf("look up blob %s: %w", key, err)
	}
	if n == 0 {
		// No metadata row claims this file; leave it behind.
		return nil
	}

	rc, err := ar.Open(f)
	if err != nil {
		return err
	}
	defer rc.Close()
	if err := s.store.Upload(ctx, key, rc); err != nil {
		return err
	}
	return nil
}

// Validate lists the entries for cursor reporting only. Orphan storage
// files are tolerated, and the metadata rows themselves are validated by
// the blobs record set.
func (s *blobFileRecordSet) Validate(ctx context.Context, db *gorm.DB, ar *archive.Reader, start string, cb BatchFunc) error {
	files, err := s.files(ar, start)
	if err != nil {
		return err
	}
	for _, f := range files {
		if cb != nil {
			cb(s.Name(), path.Base(f))
		}
	}
	return nil
}
