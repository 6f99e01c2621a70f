package recordset

import (
	"context"

	"gorm.io/gorm"

	"github.com/loopdeck/account-transfer/pkg/transfer/richtext"
)

// newRichTextRecordSet builds the rich-text record set: the generic table
// mechanics plus body rewriting. Signed attachment references become
// portable (type, id) pairs on export and are re-signed under this
// install's key on import.
func newRichTextRecordSet(accountID string, signer *richtext.Signer) RecordSet {
	rs := newTableRecordSet(richTextDescriptor, accountID)

	rs.exportTransform = func(ctx context.Context, db *gorm.DB, row map[string]interface{}) error {
		body := stringValue(row["body"])
		if body == "" {
			return nil
		}
		rewritten, err := richtext.ToPortable(body, accountID, signer, &dbResolver{ctx: ctx, db: db})
		if err != nil {
			return err
		}
		row["body"] = rewritten
		return nil
	}

	rs.importTransform = func(ctx context.Context, db *gorm.DB, doc map[string]interface{}) error {
		body := stringValue(doc["body"])
		if body == "" {
			return nil
		}
		rewritten, err := richtext.ToSigned(body, signer, &dbResolver{ctx: ctx, db: db})
		if err != nil {
			return err
		}
		doc["body"] = rewritten
		return nil
	}

	return rs
}

// dbResolver resolves portable references against the record store, using
// whatever handle the surrounding operation runs on so that rows inserted
// earlier in the same transaction are visible.
type dbResolver struct {
	ctx context.Context
	db  *gorm.DB
}

func (r *dbResolver) AccountOf(recordType, recordID string) (string, bool, error) {
	table, ok := referenceTables[recordType]
	if !ok {
		return "", false, nil
	}
	var rows []map[string]interface{}
	err := r.db.WithContext(r.ctx).Table(table).
		Select("account_id").
		Where("id = ?", recordID).
		Limit(1).
		Find(&rows).Error
	if err != nil {
		return "", false, err
	}
	if len(rows) == 0 {
		return "", false, nil
	}
	return stringValue(rows[0]["account_id"]), true, nil
}

func (r *dbResolver) Exists(recordType, recordID string) (bool, error) {
	table, ok := referenceTables[recordType]
	if !ok {
		return false, nil
	}
	return rowExists(r.ctx, r.db, table, "id", recordID)
}
