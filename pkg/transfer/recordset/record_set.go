// Package recordset implements the per-entity export/import/validate units
// of an account transfer, the fixed manifest ordering them, and the cursor
// type used for resumption.
package recordset

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"sort"
	"strconv"
	"strings"

	"gorm.io/gorm"

	"github.com/loopdeck/account-transfer/pkg/transfer/archive"
)

// ImportBatchSize bounds how many archive documents are parsed and inserted
// per bulk insert. Large enough to amortize per-batch overhead, small enough
// to bound memory and keep each callback interval short.
const ImportBatchSize = 100

const exportPageSize = 500

// BatchFunc is invoked after each successfully processed batch so the
// caller can persist a resumption cursor.
type BatchFunc func(recordSet, lastID string)

// RecordSet is the unit of work for one entity type. The account the set is
// bound to is the source account on export and the destination account on
// import and validate.
type RecordSet interface {
	Name() string
	Export(ctx context.Context, db *gorm.DB, ar *archive.Writer) error
	Import(ctx context.Context, db *gorm.DB, ar *archive.Reader, start string, cb BatchFunc) error
	Validate(ctx context.Context, db *gorm.DB, ar *archive.Reader, start string, cb BatchFunc) error
}

// IntegrityError reports an archive that is structurally invalid or that
// targets a destination which is not pristine. It always aborts the whole
// transfer and is never retried automatically.
type IntegrityError struct {
	RecordSet string
	Path      string
	Reason    string
}

func (e *IntegrityError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("integrity error in %s (%s): %s", e.RecordSet, e.Path, e.Reason)
	}
	return fmt.Sprintf("integrity error in %s: %s", e.RecordSet, e.Reason)
}

// entryID derives the record id from an archive entry name.
func entryID(file string) string {
	base := path.Base(file)
	return strings.TrimSuffix(base, path.Ext(base))
}

// entriesAfter lists the sorted entries matching pattern, dropping every
// entry whose id is at or before the resumption id.
func entriesAfter(ar *archive.Reader, pattern, start string) ([]string, error) {
	files, err := ar.Glob(pattern)
	if err != nil {
		return nil, err
	}
	if start == "" {
		return files, nil
	}
	i := sort.Search(len(files), func(i int) bool { return entryID(files[i]) > start })
	return files[i:], nil
}

func loadDocument(ar *archive.Reader, name, recordSet string) (map[string]interface{}, error) {
	raw, err := ar.Read(name)
	if err != nil {
		return nil, err
	}
	var doc map[string]interface{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, &IntegrityError{RecordSet: recordSet, Path: name, Reason: "malformed JSON document"}
	}
	return doc, nil
}

func rowExists(ctx context.Context, db *gorm.DB, table, column, value string) (bool, error) {
	var n int64
	err := db.WithContext(ctx).Table(table).Where(column+" = ?", value).Count(&n).Error
	if err != nil {
		return false, fmt.Errorf("existence check on %s: %w", table, err)
	}
	return n > 0, nil
}

// stringValue renders a scanned or JSON-decoded value as the string form
// used in entry names and SQL comparisons.
func stringValue(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case []byte:
		return string(t)
	default:
		return fmt.Sprint(t)
	}
}

// normalizeRow keeps raw database values JSON-friendly: byte slices holding
// JSON stay JSON, everything else becomes a string instead of base64.
func normalizeRow(row map[string]interface{}) map[string]interface{} {
	for k, v := range row {
		if b, ok := v.([]byte); ok {
			if json.Valid(b) {
				row[k] = json.RawMessage(b)
			} else {
				row[k] = string(b)
			}
		}
	}
	return row
}
