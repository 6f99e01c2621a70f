package recordset

import (
	"context"
	"encoding/json"
	"fmt"

	"gorm.io/gorm"

	"github.com/loopdeck/account-transfer/pkg/transfer/archive"
)

// tableRecordSet is the generic record set driven entirely by a Descriptor.
// Entity types needing bespoke handling hook in through the two transforms.
type tableRecordSet struct {
	desc      Descriptor
	accountID string

	// exportTransform mutates a row before it is serialized into the
	// archive; importTransform mutates a parsed document before the
	// allow-list is applied. Both are optional.
	exportTransform func(ctx context.Context, db *gorm.DB, row map[string]interface{}) error
	importTransform func(ctx context.Context, db *gorm.DB, doc map[string]interface{}) error
}

func newTableRecordSet(desc Descriptor, accountID string) *tableRecordSet {
	return &tableRecordSet{desc: desc, accountID: accountID}
}

func (s *tableRecordSet) Name() string {
	return s.desc.Name
}

// Export streams the account's rows in primary-key order, one JSON document
// per row, keyset-paginated so the full table is never held in memory.
func (s *tableRecordSet) Export(ctx context.Context, db *gorm.DB, ar *archive.Writer) error {
	lastID := ""
	for {
		rows, err := s.page(ctx, db, lastID)
		if err != nil {
			return fmt.Errorf("read %s page: %w", s.desc.Name, err)
		}
		for _, row := range rows {
			row = normalizeRow(row)
			if s.exportTransform != nil {
				if err := s.exportTransform(ctx, db, row); err != nil {
					return err
				}
			}
			id := stringValue(row["id"])
			doc, err := json.Marshal(row)
			if err != nil {
				return fmt.Errorf("encode %s %s: %w", s.desc.Name, id, err)
			}
			if err := ar.AddFile(s.desc.entryPath(id), doc); err != nil {
				return err
			}
		}
		if len(rows) < exportPageSize {
			return nil
		}
		lastID = stringValue(rows[len(rows)-1]["id"])
	}
}

func (s *tableRecordSet) page(ctx context.Context, db *gorm.DB, lastID string) ([]map[string]interface{}, error) {
	var rows []map[string]interface{}
	q := db.WithContext(ctx).Table(s.desc.Table).
		Select(s.desc.Attributes).
		Where("account_id = ?", s.accountID).
		Order("id").
		Limit(exportPageSize)
	if lastID != "" {
		q = q.Where("id > ?", lastID)
	}
	return rows, q.Find(&rows).Error
}

// Import bulk-inserts the archive's documents in fixed-size batches. Primary
// ids are preserved verbatim; only the owning account is rewritten to the
// destination. Inserts go through the table directly, bypassing model hooks.
func (s *tableRecordSet) Import(ctx context.Context, db *gorm.DB, ar *archive.Reader, start string, cb BatchFunc) error {
	files, err := entriesAfter(ar, s.desc.entryGlob(), start)
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

		batch := make([]map[string]interface{}, 0, len(chunk))
		for _, f := range chunk {
			doc, err := loadDocument(ar, f, s.desc.Name)
			if err != nil {
				return err
			}
			if s.importTransform != nil {
				if err := s.importTransform(ctx, db, doc); err != nil {
					return err
				}
			}
			batch = append(batch, s.rowFromDocument(doc))
		}
		if err := db.WithContext(ctx).Table(s.desc.Table).Create(batch).Error; err != nil {
			return fmt.Errorf("insert %s batch: %w", s.desc.Name, err)
		}
		if cb != nil {
			cb(s.desc.Name, entryID(chunk[len(chunk)-1]))
		}
	}
	return nil
}

func (s *tableRecordSet) rowFromDocument(doc map[string]interface{}) map[string]interface{} {
	row := make(map[string]interface{}, len(s.desc.Attributes))
	for _, attr := range s.desc.Attributes {
		row[attr] = doc[attr]
	}
	row["account_id"] = s.accountID
	return row
}

// Validate checks every entry in order: the document id must match the
// entry name, every allow-listed attribute must be present, and neither the
// record nor anything it references may already exist at the destination.
// The first violation aborts the whole transfer.
func (s *tableRecordSet) Validate(ctx context.Context, db *gorm.DB, ar *archive.Reader, start string, cb BatchFunc) error {
	files, err := entriesAfter(ar, s.desc.entryGlob(), start)
	if err != nil {
		return err
	}
	for _, f := range files {
		if err := s.validateEntry(ctx, db, ar, f); err != nil {
			return err
		}
		if cb != nil {
			cb(s.desc.Name, entryID(f))
		}
	}
	return nil
}

func (s *tableRecordSet) validateEntry(ctx context.Context, db *gorm.DB, ar *archive.Reader, f string) error {
	doc, err := loadDocument(ar, f, s.desc.Name)
	if err != nil {
		return err
	}

	id := entryID(f)
	if stringValue(doc["id"]) != id {
		return &IntegrityError{
			RecordSet: s.desc.Name,
			Path:      f,
			Reason:    fmt.Sprintf("record id %v does not match entry name", doc["id"]),
		}
	}

	for _, attr := range s.desc.Attributes {
		if _, ok := doc[attr]; !ok {
			return &IntegrityError{
				RecordSet: s.desc.Name,
				Path:      f,
				Reason:    fmt.Sprintf("missing required field %q", attr),
			}
		}
	}

	exists, err := rowExists(ctx, db, s.desc.Table, "id", id)
	if err != nil {
		return err
	}
	if exists {
		return &IntegrityError{
			RecordSet: s.desc.Name,
			Path:      f,
			Reason:    fmt.Sprintf("record %s already exists at destination", id),
		}
	}

	for _, fk := range s.desc.ForeignKeys {
		value := stringValue(doc[fk.Column])
		if value == "" {
			continue
		}
		exists, err := rowExists(ctx, db, fk.Table, "id", value)
		if err != nil {
			return err
		}
		if exists {
			return &IntegrityError{
				RecordSet: s.desc.Name,
				Path:      f,
				Reason:    fmt.Sprintf("%s %s referenced by %s already exists at destination", fk.Table, value, fk.Column),
			}
		}
	}

	for _, poly := range s.desc.Polymorphics {
		value := stringValue(doc[poly.IDColumn])
		if value == "" {
			continue
		}
		typeValue := stringValue(doc[poly.TypeColumn])
		table, ok := poly.Tables[typeValue]
		if !ok {
			return &IntegrityError{
				RecordSet: s.desc.Name,
				Path:      f,
				Reason:    fmt.Sprintf("invalid %s value %q", poly.TypeColumn, typeValue),
			}
		}
		exists, err := rowExists(ctx, db, table, "id", value)
		if err != nil {
			return err
		}
		if exists {
			return &IntegrityError{
				RecordSet: s.desc.Name,
				Path:      f,
				Reason:    fmt.Sprintf("%s %s referenced by %s already exists at destination", table, value, poly.IDColumn),
			}
		}
	}

	return nil
}
