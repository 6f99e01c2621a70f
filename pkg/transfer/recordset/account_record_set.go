package recordset

import (
	"context"
	"encoding/json"
	"fmt"

	"gorm.io/gorm"

	"github.com/loopdeck/account-transfer/pkg/transfer/archive"
	"github.com/loopdeck/account-transfer/pkg/transfer/models"
)

const accountEntryPath = "data/account.json"

var accountAttributes = []string{"created_at", "id", "name", "updated_at"}

var joinCodeAttributes = []string{"code", "usage_count", "usage_limit"}

// accountRecordSet transfers the account row itself together with its join
// code, as the single data/account.json document. Unlike every other set it
// updates the destination account in place instead of inserting rows.
type accountRecordSet struct {
	accountID string
}

func newAccountRecordSet(accountID string) *accountRecordSet {
	return &accountRecordSet{accountID: accountID}
}

func (s *accountRecordSet) Name() string {
	return "account"
}

func (s *accountRecordSet) Export(ctx context.Context, db *gorm.DB, ar *archive.Writer) error {
	var account models.Account
	if err := db.WithContext(ctx).First(&account, "id = ?", s.accountID).Error; err != nil {
		return fmt.Errorf("load account %s: %w", s.accountID, err)
	}
	var joinCode models.JoinCode
	if err := db.WithContext(ctx).First(&joinCode, "account_id = ?", s.accountID).Error; err != nil {
		return fmt.Errorf("load join code for account %s: %w", s.accountID, err)
	}

	doc := map[string]interface{}{
		"id":         account.ID,
		"name":       account.Name,
		"created_at": account.CreatedAt,
		"updated_at": account.UpdatedAt,
		"join_code": map[string]interface{}{
			"code":        joinCode.Code,
			"usage_count": joinCode.UsageCount,
			"usage_limit": joinCode.UsageLimit,
		},
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode account document: %w", err)
	}
	return ar.AddFile(accountEntryPath, raw)
}

func (s *accountRecordSet) Import(ctx context.Context, db *gorm.DB, ar *archive.Reader, start string, cb BatchFunc) error {
	if start != "" {
		return nil
	}
	doc, err := loadDocument(ar, accountEntryPath, s.Name())
	if err != nil {
		return err
	}

	if err := db.WithContext(ctx).Model(&models.Account{}).
		Where("id = ?", s.accountID).
		Update("name", doc["name"]).Error; err != nil {
		return fmt.Errorf("update account name: %w", err)
	}

	joinCode, _ := doc["join_code"].(map[string]interface{})
	if err := db.WithContext(ctx).Model(&models.JoinCode{}).
		Where("account_id = ?", s.accountID).
		Updates(map[string]interface{}{
			"usage_count": joinCode["usage_count"],
			"usage_limit": joinCode["usage_limit"],
		}).Error; err != nil {
		return fmt.Errorf("update join code counters: %w", err)
	}

	// Join codes are unique install-wide; the destination keeps its own
	// code when the archived one is already taken.
	if code := stringValue(joinCode["code"]); code != "" {
		var taken int64
		if err := db.WithContext(ctx).Model(&models.JoinCode{}).
			Where("code = ? AND account_id <> ?", code, s.accountID).
			Count(&taken).Error; err != nil {
			return fmt.Errorf("check join code uniqueness: %w", err)
		}
		if taken == 0 {
			if err := db.WithContext(ctx).Model(&models.JoinCode{}).
				Where("account_id = ?", s.accountID).
				Update("code", code).Error; err != nil {
				return fmt.Errorf("update join code: %w", err)
			}
		}
	}

	if cb != nil {
		cb(s.Name(), stringValue(doc["id"]))
	}
	return nil
}

func (s *accountRecordSet) Validate(ctx context.Context, db *gorm.DB, ar *archive.Reader, start string, cb BatchFunc) error {
	if start != "" {
		return nil
	}
	doc, err := loadDocument(ar, accountEntryPath, s.Name())
	if err != nil {
		return err
	}

	for _, attr := range accountAttributes {
		if _, ok := doc[attr]; !ok {
			return &IntegrityError{
				RecordSet: s.Name(),
				Path:      accountEntryPath,
				Reason:    fmt.Sprintf("missing required field %q", attr),
			}
		}
	}

	joinCode, ok := doc["join_code"].(map[string]interface{})
	if !ok {
		return &IntegrityError{
			RecordSet: s.Name(),
			Path:      accountEntryPath,
			Reason:    "join_code field must be a JSON object",
		}
	}
	for _, attr := range joinCodeAttributes {
		if _, ok := joinCode[attr]; !ok {
			return &IntegrityError{
				RecordSet: s.Name(),
				Path:      accountEntryPath,
				Reason:    fmt.Sprintf("join_code missing required key %q", attr),
			}
		}
	}

	if cb != nil {
		cb(s.Name(), stringValue(doc["id"]))
	}
	return nil
}
