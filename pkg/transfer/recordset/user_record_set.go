package recordset

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/loopdeck/account-transfer/pkg/transfer/archive"
	"github.com/loopdeck/account-transfer/pkg/transfer/models"
)

var userAttributes = []string{"active", "created_at", "email_address", "id", "name", "role", "updated_at", "verified_at"}

// userRecordSet handles the identity join: exported documents carry the
// user's email address instead of the install-local identity id, and import
// finds or creates a matching identity at the destination.
type userRecordSet struct {
	accountID string
}

func newUserRecordSet(accountID string) *userRecordSet {
	return &userRecordSet{accountID: accountID}
}

func (s *userRecordSet) Name() string {
	return "users"
}

func (s *userRecordSet) entryGlob() string {
	return "data/users/*.json"
}

func (s *userRecordSet) Export(ctx context.Context, db *gorm.DB, ar *archive.Writer) error {
	lastID := ""
	for {
		var rows []map[string]interface{}
		q := db.WithContext(ctx).Table("users").
			Select("users.active, users.created_at, identities.email_address AS email_address, users.id, users.name, users.role, users.updated_at, users.verified_at").
			Joins("LEFT JOIN identities ON identities.id = users.identity_id").
			Where("users.account_id = ?", s.accountID).
			Order("users.id").
			Limit(exportPageSize)
		if lastID != "" {
			q = q.Where("users.id > ?", lastID)
		}
		if err := q.Find(&rows).Error; err != nil {
			return fmt.Errorf("read users page: %w", err)
		}

		for _, row := range rows {
			row = normalizeRow(row)
			id := stringValue(row["id"])
			doc, err := json.Marshal(row)
			if err != nil {
				return fmt.Errorf("encode user %s: %w", id, err)
			}
			if err := ar.AddFile("data/users/"+id+".json", doc); err != nil {
				return err
			}
		}
		if len(rows) < exportPageSize {
			return nil
		}
		lastID = stringValue(rows[len(rows)-1]["id"])
	}
}

func (s *userRecordSet) Import(ctx context.Context, db *gorm.DB, ar *archive.Reader, start string, cb BatchFunc) error {
	files, err := entriesAfter(ar, s.entryGlob(), start)
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
			doc, err := loadDocument(ar, f, s.Name())
			if err != nil {
				return err
			}
			row, err := s.rowFromDocument(ctx, db, doc)
			if err != nil {
				return err
			}
			batch = append(batch, row)
		}
		if err := db.WithContext(ctx).Table("users").Create(batch).Error; err != nil {
			return fmt.Errorf("insert users batch: %w", err)
		}
		if cb != nil {
			cb(s.Name(), entryID(chunk[len(chunk)-1]))
		}
	}
	return nil
}

func (s *userRecordSet) rowFromDocument(ctx context.Context, db *gorm.DB, doc map[string]interface{}) (map[string]interface{}, error) {
	var identityID interface{}
	if email := stringValue(doc["email_address"]); email != "" {
		var identity models.Identity
		err := db.WithContext(ctx).First(&identity, "email_address = ?", email).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			identity = models.Identity{ID: models.NewID(), EmailAddress: email}
			if err := db.WithContext(ctx).Create(&identity).Error; err != nil {
				return nil, fmt.Errorf("create identity for %s: %w", email, err)
			}
		case err != nil:
			return nil, fmt.Errorf("look up identity for %s: %w", email, err)
		}
		identityID = identity.ID
	}

	return map[string]interface{}{
		"id":          doc["id"],
		"account_id":  s.accountID,
		"identity_id": identityID,
		"name":        doc["name"],
		"role":        doc["role"],
		"active":      doc["active"],
		"verified_at": doc["verified_at"],
		"created_at":  doc["created_at"],
		"updated_at":  doc["updated_at"],
	}, nil
}

func (s *userRecordSet) Validate(ctx context.Context, db *gorm.DB, ar *archive.Reader, start string, cb BatchFunc) error {
	files, err := entriesAfter(ar, s.entryGlob(), start)
	if err != nil {
		return err
	}
	for _, f := range files {
		doc, err := loadDocument(ar, f, s.Name())
		if err != nil {
			return err
		}

		id := entryID(f)
		if stringValue(doc["id"]) != id {
			return &IntegrityError{
				RecordSet: s.Name(),
				Path:      f,
				Reason:    fmt.Sprintf("record id %v does not match entry name", doc["id"]),
			}
		}
		for _, attr := range userAttributes {
			if _, ok := doc[attr]; !ok {
				return &IntegrityError{
					RecordSet: s.Name(),
					Path:      f,
					Reason:    fmt.Sprintf("missing required field %q", attr),
				}
			}
		}
		exists, err := rowExists(ctx, db, "users", "id", id)
		if err != nil {
			return err
		}
		if exists {
			return &IntegrityError{
				RecordSet: s.Name(),
				Path:      f,
				Reason:    fmt.Sprintf("record %s already exists at destination", id),
			}
		}

		if cb != nil {
			cb(s.Name(), id)
		}
	}
	return nil
}
