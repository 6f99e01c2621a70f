package recordset_test

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/loopdeck/account-transfer/pkg/transfer/archive"
	"github.com/loopdeck/account-transfer/pkg/transfer/database"
	"github.com/loopdeck/account-transfer/pkg/transfer/models"
	"github.com/loopdeck/account-transfer/pkg/transfer/recordset"
	"github.com/loopdeck/account-transfer/pkg/transfer/richtext"
	"github.com/loopdeck/account-transfer/pkg/transfer/storage"
)

const testTimestamp = "2026-01-02T03:04:05Z"

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func setWith(t *testing.T, accountID, name string, signer *richtext.Signer, store storage.Service) recordset.RecordSet {
	t.Helper()
	for _, rs := range recordset.Manifest(accountID, signer, store) {
		if rs.Name() == name {
			return rs
		}
	}
	t.Fatalf("no record set named %s", name)
	return nil
}

func setFor(t *testing.T, accountID, name string) recordset.RecordSet {
	t.Helper()
	signer := richtext.NewSigner([]byte("test-secret"))
	return setWith(t, accountID, name, signer, storage.NewDiskService(t.TempDir()))
}

func buildArchive(t *testing.T, entries map[string][]byte) *archive.Reader {
	t.Helper()
	name := filepath.Join(t.TempDir(), "import.zip")
	w, err := archive.Create(name)
	require.NoError(t, err)
	for entry, content := range entries {
		require.NoError(t, w.AddFile(entry, content))
	}
	require.NoError(t, w.Close())

	r, err := archive.Open(name)
	require.NoError(t, err)
	t.Cleanup(func() { r.Close() })
	return r
}

func exportToArchive(t *testing.T, db *gorm.DB, rs recordset.RecordSet) *archive.Reader {
	t.Helper()
	name := filepath.Join(t.TempDir(), "export.zip")
	w, err := archive.Create(name)
	require.NoError(t, err)
	require.NoError(t, rs.Export(context.Background(), db, w))
	require.NoError(t, w.Close())

	r, err := archive.Open(name)
	require.NoError(t, err)
	t.Cleanup(func() { r.Close() })
	return r
}

func mustJSON(t *testing.T, doc map[string]interface{}) []byte {
	t.Helper()
	raw, err := json.Marshal(doc)
	require.NoError(t, err)
	return raw
}

func tagDoc(t *testing.T, id, accountID string) []byte {
	return mustJSON(t, map[string]interface{}{
		"account_id": accountID,
		"created_at": testTimestamp,
		"id":         id,
		"title":      "Tag " + id,
		"updated_at": testTimestamp,
	})
}

func TestExportScopesToAccountAndAllowList(t *testing.T) {
	db := setupDB(t)
	require.NoError(t, db.Create(&models.Tag{ID: "t1", AccountID: "acct-1", Title: "One"}).Error)
	require.NoError(t, db.Create(&models.Tag{ID: "t2", AccountID: "acct-1", Title: "Two"}).Error)
	require.NoError(t, db.Create(&models.Tag{ID: "t3", AccountID: "acct-2", Title: "Other tenant"}).Error)

	ar := exportToArchive(t, db, setFor(t, "acct-1", "tags"))

	names, err := ar.Glob("data/tags/*.json")
	require.NoError(t, err)
	assert.Equal(t, []string{"data/tags/t1.json", "data/tags/t2.json"}, names)

	raw, err := ar.Read("data/tags/t1.json")
	require.NoError(t, err)
	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &doc))
	assert.Equal(t, "t1", doc["id"])
	assert.Equal(t, "One", doc["title"])
	assert.Len(t, doc, 5)
	for _, attr := range []string{"account_id", "created_at", "id", "title", "updated_at"} {
		assert.Contains(t, doc, attr)
	}
}

func TestImportPreservesIDAndRewritesAccount(t *testing.T) {
	db := setupDB(t)
	ar := buildArchive(t, map[string][]byte{
		"data/tags/t1.json": tagDoc(t, "t1", "src-acct"),
	})

	rs := setFor(t, "dest-acct", "tags")
	require.NoError(t, rs.Import(context.Background(), db, ar, "", nil))

	var tag models.Tag
	require.NoError(t, db.First(&tag, "id = ?", "t1").Error)
	assert.Equal(t, "dest-acct", tag.AccountID)
	assert.Equal(t, "Tag t1", tag.Title)
}

func TestImportReportsCursorPerBatch(t *testing.T) {
	db := setupDB(t)
	entries := make(map[string][]byte, 150)
	for i := 1; i <= 150; i++ {
		id := fmt.Sprintf("t%03d", i)
		entries["data/tags/"+id+".json"] = tagDoc(t, id, "src-acct")
	}
	ar := buildArchive(t, entries)

	var cursors []recordset.Cursor
	rs := setFor(t, "dest-acct", "tags")
	err := rs.Import(context.Background(), db, ar, "", func(recordSet, lastID string) {
		cursors = append(cursors, recordset.Cursor{RecordSet: recordSet, LastID: lastID})
	})
	require.NoError(t, err)

	assert.Equal(t, []recordset.Cursor{
		{RecordSet: "tags", LastID: "t100"},
		{RecordSet: "tags", LastID: "t150"},
	}, cursors)

	var n int64
	require.NoError(t, db.Model(&models.Tag{}).Count(&n).Error)
	assert.EqualValues(t, 150, n)
}

func TestImportSkipsEntriesUpToCursor(t *testing.T) {
	db := setupDB(t)
	ar := buildArchive(t, map[string][]byte{
		"data/tags/t1.json": tagDoc(t, "t1", "src-acct"),
		"data/tags/t2.json": tagDoc(t, "t2", "src-acct"),
		"data/tags/t3.json": tagDoc(t, "t3", "src-acct"),
	})

	rs := setFor(t, "dest-acct", "tags")
	require.NoError(t, rs.Import(context.Background(), db, ar, "t2", nil))

	var ids []string
	require.NoError(t, db.Model(&models.Tag{}).Pluck("id", &ids).Error)
	assert.Equal(t, []string{"t3"}, ids)
}

func TestValidateDetectsIDMismatch(t *testing.T) {
	db := setupDB(t)
	ar := buildArchive(t, map[string][]byte{
		"data/tags/t1.json": tagDoc(t, "zz", "src-acct"),
	})

	err := setFor(t, "dest-acct", "tags").Validate(context.Background(), db, ar, "", nil)
	var ierr *recordset.IntegrityError
	require.ErrorAs(t, err, &ierr)
	assert.Equal(t, "tags", ierr.RecordSet)
	assert.Contains(t, ierr.Reason, "does not match entry name")
}

func TestValidateDetectsMissingField(t *testing.T) {
	db := setupDB(t)
	ar := buildArchive(t, map[string][]byte{
		"data/tags/t1.json": mustJSON(t, map[string]interface{}{
			"account_id": "src-acct",
			"created_at": testTimestamp,
			"id":         "t1",
			"updated_at": testTimestamp,
		}),
	})

	err := setFor(t, "dest-acct", "tags").Validate(context.Background(), db, ar, "", nil)
	var ierr *recordset.IntegrityError
	require.ErrorAs(t, err, &ierr)
	assert.Contains(t, ierr.Reason, `missing required field "title"`)
}

func TestValidateDetectsExistingRecord(t *testing.T) {
	db := setupDB(t)
	require.NoError(t, db.Create(&models.Tag{ID: "t1", AccountID: "dest-acct", Title: "Taken"}).Error)
	ar := buildArchive(t, map[string][]byte{
		"data/tags/t1.json": tagDoc(t, "t1", "src-acct"),
	})

	err := setFor(t, "dest-acct", "tags").Validate(context.Background(), db, ar, "", nil)
	var ierr *recordset.IntegrityError
	require.ErrorAs(t, err, &ierr)
	assert.Contains(t, ierr.Reason, "already exists at destination")
}

func TestValidateDetectsExistingForeignKeyReferent(t *testing.T) {
	db := setupDB(t)
	require.NoError(t, db.Create(&models.Board{ID: "b1", AccountID: "dest-acct", CreatorID: "u1", Name: "Existing"}).Error)
	ar := buildArchive(t, map[string][]byte{
		"data/cards/c1.json": mustJSON(t, map[string]interface{}{
			"account_id":     "src-acct",
			"board_id":       "b1",
			"column_id":      nil,
			"created_at":     testTimestamp,
			"creator_id":     "",
			"due_on":         nil,
			"id":             "c1",
			"last_active_at": nil,
			"number":         1,
			"status":         "published",
			"title":          "Card",
			"updated_at":     testTimestamp,
		}),
	})

	err := setFor(t, "dest-acct", "cards").Validate(context.Background(), db, ar, "", nil)
	var ierr *recordset.IntegrityError
	require.ErrorAs(t, err, &ierr)
	assert.Contains(t, ierr.Reason, "boards b1")
}

func mentionDoc(t *testing.T, id, sourceType, sourceID string) []byte {
	return mustJSON(t, map[string]interface{}{
		"account_id":   "src-acct",
		"created_at":   testTimestamp,
		"id":           id,
		"mentionee_id": "",
		"mentioner_id": "",
		"source_id":    sourceID,
		"source_type":  sourceType,
		"updated_at":   testTimestamp,
	})
}

func TestValidateDetectsInvalidPolymorphicType(t *testing.T) {
	db := setupDB(t)
	ar := buildArchive(t, map[string][]byte{
		"data/mentions/m1.json": mentionDoc(t, "m1", "Widget", "x1"),
	})

	err := setFor(t, "dest-acct", "mentions").Validate(context.Background(), db, ar, "", nil)
	var ierr *recordset.IntegrityError
	require.ErrorAs(t, err, &ierr)
	assert.Contains(t, ierr.Reason, `invalid source_type value "Widget"`)
}

func TestValidateDetectsExistingPolymorphicReferent(t *testing.T) {
	db := setupDB(t)
	require.NoError(t, db.Create(&models.Card{ID: "c9", AccountID: "dest-acct", BoardID: "b1", CreatorID: "u1", Title: "Existing", Number: 9}).Error)
	ar := buildArchive(t, map[string][]byte{
		"data/mentions/m1.json": mentionDoc(t, "m1", "Card", "c9"),
	})

	err := setFor(t, "dest-acct", "mentions").Validate(context.Background(), db, ar, "", nil)
	var ierr *recordset.IntegrityError
	require.ErrorAs(t, err, &ierr)
	assert.Contains(t, ierr.Reason, "cards c9")
}

func TestValidateDetectsMalformedDocument(t *testing.T) {
	db := setupDB(t)
	ar := buildArchive(t, map[string][]byte{
		"data/tags/t1.json": []byte(`{not json`),
	})

	err := setFor(t, "dest-acct", "tags").Validate(context.Background(), db, ar, "", nil)
	var ierr *recordset.IntegrityError
	require.ErrorAs(t, err, &ierr)
	assert.Contains(t, ierr.Reason, "malformed JSON")
}

func accountDoc(t *testing.T, code string) []byte {
	return mustJSON(t, map[string]interface{}{
		"created_at": testTimestamp,
		"id":         "src-acct",
		"name":       "Src Co",
		"updated_at": testTimestamp,
		"join_code": map[string]interface{}{
			"code":        code,
			"usage_count": 5,
			"usage_limit": 20,
		},
	})
}

func TestAccountImportUpdatesDestinationInPlace(t *testing.T) {
	db := setupDB(t)
	require.NoError(t, db.Create(&models.Account{ID: "dest-acct", Name: "Dest Inc"}).Error)
	require.NoError(t, db.Create(&models.JoinCode{ID: "jc1", AccountID: "dest-acct", Code: "DESTCODE"}).Error)
	ar := buildArchive(t, map[string][]byte{
		"data/account.json": accountDoc(t, "SRCCODE"),
	})

	rs := setFor(t, "dest-acct", "account")
	require.NoError(t, rs.Import(context.Background(), db, ar, "", nil))

	var account models.Account
	require.NoError(t, db.First(&account, "id = ?", "dest-acct").Error)
	assert.Equal(t, "Src Co", account.Name)

	var joinCode models.JoinCode
	require.NoError(t, db.First(&joinCode, "account_id = ?", "dest-acct").Error)
	assert.Equal(t, "SRCCODE", joinCode.Code)
	assert.Equal(t, 5, joinCode.UsageCount)
	assert.Equal(t, 20, joinCode.UsageLimit)
}

func TestAccountImportKeepsCodeWhenTaken(t *testing.T) {
	db := setupDB(t)
	require.NoError(t, db.Create(&models.Account{ID: "dest-acct", Name: "Dest Inc"}).Error)
	require.NoError(t, db.Create(&models.JoinCode{ID: "jc1", AccountID: "dest-acct", Code: "DESTCODE"}).Error)
	require.NoError(t, db.Create(&models.JoinCode{ID: "jc2", AccountID: "other-acct", Code: "SRCCODE"}).Error)
	ar := buildArchive(t, map[string][]byte{
		"data/account.json": accountDoc(t, "SRCCODE"),
	})

	rs := setFor(t, "dest-acct", "account")
	require.NoError(t, rs.Import(context.Background(), db, ar, "", nil))

	var joinCode models.JoinCode
	require.NoError(t, db.First(&joinCode, "account_id = ?", "dest-acct").Error)
	assert.Equal(t, "DESTCODE", joinCode.Code)
	assert.Equal(t, 5, joinCode.UsageCount)
}

func TestAccountValidateRequiresJoinCode(t *testing.T) {
	db := setupDB(t)
	ar := buildArchive(t, map[string][]byte{
		"data/account.json": mustJSON(t, map[string]interface{}{
			"created_at": testTimestamp,
			"id":         "src-acct",
			"name":       "Src Co",
			"updated_at": testTimestamp,
		}),
	})

	err := setFor(t, "dest-acct", "account").Validate(context.Background(), db, ar, "", nil)
	var ierr *recordset.IntegrityError
	require.ErrorAs(t, err, &ierr)
	assert.Contains(t, ierr.Reason, "join_code")
}

func userDoc(t *testing.T, id, email string) []byte {
	return mustJSON(t, map[string]interface{}{
		"active":        true,
		"created_at":    testTimestamp,
		"email_address": email,
		"id":            id,
		"name":          "User " + id,
		"role":          "member",
		"updated_at":    testTimestamp,
		"verified_at":   nil,
	})
}

func TestUserImportFindsOrCreatesIdentity(t *testing.T) {
	db := setupDB(t)
	require.NoError(t, db.Create(&models.Identity{ID: "i1", EmailAddress: "known@example.com"}).Error)
	ar := buildArchive(t, map[string][]byte{
		"data/users/u1.json": userDoc(t, "u1", "known@example.com"),
		"data/users/u2.json": userDoc(t, "u2", "new@example.com"),
	})

	rs := setFor(t, "dest-acct", "users")
	require.NoError(t, rs.Import(context.Background(), db, ar, "", nil))

	var u1 models.User
	require.NoError(t, db.First(&u1, "id = ?", "u1").Error)
	assert.Equal(t, "dest-acct", u1.AccountID)
	require.NotNil(t, u1.IdentityID)
	assert.Equal(t, "i1", *u1.IdentityID)

	var u2 models.User
	require.NoError(t, db.First(&u2, "id = ?", "u2").Error)
	require.NotNil(t, u2.IdentityID)

	var created models.Identity
	require.NoError(t, db.First(&created, "email_address = ?", "new@example.com").Error)
	assert.Equal(t, created.ID, *u2.IdentityID)

	var n int64
	require.NoError(t, db.Model(&models.Identity{}).Count(&n).Error)
	assert.EqualValues(t, 2, n)
}

func TestUserValidateRejectsExistingUser(t *testing.T) {
	db := setupDB(t)
	require.NoError(t, db.Create(&models.User{ID: "u1", AccountID: "dest-acct", Name: "Taken", Role: "member"}).Error)
	ar := buildArchive(t, map[string][]byte{
		"data/users/u1.json": userDoc(t, "u1", "someone@example.com"),
	})

	err := setFor(t, "dest-acct", "users").Validate(context.Background(), db, ar, "", nil)
	var ierr *recordset.IntegrityError
	require.ErrorAs(t, err, &ierr)
	assert.Contains(t, ierr.Reason, "already exists")
}

func TestRichTextImportResignsBody(t *testing.T) {
	db := setupDB(t)
	require.NoError(t, db.Create(&models.Attachment{ID: "a1", AccountID: "dest-acct", Name: "embeds", RecordType: "RichText", RecordID: "r1", BlobID: "bl1"}).Error)

	ar := buildArchive(t, map[string][]byte{
		"data/rich_texts/r1.json": mustJSON(t, map[string]interface{}{
			"account_id":  "src-acct",
			"body":        `<p><rich-text-attachment gid="Attachment/a1"></rich-text-attachment></p>`,
			"created_at":  testTimestamp,
			"id":          "r1",
			"name":        "body",
			"record_id":   "c1",
			"record_type": "Card",
			"updated_at":  testTimestamp,
		}),
	})

	signer := richtext.NewSigner([]byte("dest-secret"))
	rs := setWith(t, "dest-acct", "rich_texts", signer, storage.NewDiskService(t.TempDir()))
	require.NoError(t, rs.Import(context.Background(), db, ar, "", nil))

	var rt models.RichText
	require.NoError(t, db.First(&rt, "id = ?", "r1").Error)
	assert.Contains(t, rt.Body, "sgid=")
	assert.NotContains(t, rt.Body, "gid=\"Attachment")

	token := rt.Body[strings.Index(rt.Body, `sgid="`)+len(`sgid="`):]
	token = token[:strings.Index(token, `"`)]
	recordType, recordID, err := signer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "Attachment", recordType)
	assert.Equal(t, "a1", recordID)
}

func TestRichTextExportMakesBodyPortable(t *testing.T) {
	db := setupDB(t)
	signer := richtext.NewSigner([]byte("src-secret"))
	require.NoError(t, db.Create(&models.Attachment{ID: "a1", AccountID: "src-acct", Name: "embeds", RecordType: "RichText", RecordID: "r1", BlobID: "bl1"}).Error)

	token, err := signer.Sign("Attachment", "a1")
	require.NoError(t, err)
	require.NoError(t, db.Create(&models.RichText{
		ID:         "r1",
		AccountID:  "src-acct",
		Name:       "body",
		Body:       `<p><rich-text-attachment sgid="` + token + `"></rich-text-attachment></p>`,
		RecordType: "Card",
		RecordID:   "c1",
	}).Error)

	rs := setWith(t, "src-acct", "rich_texts", signer, storage.NewDiskService(t.TempDir()))
	ar := exportToArchive(t, db, rs)

	raw, err := ar.Read("data/rich_texts/r1.json")
	require.NoError(t, err)
	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &doc))
	body, _ := doc["body"].(string)
	assert.Contains(t, body, `gid="Attachment/a1"`)
	assert.NotContains(t, body, "sgid")
}

func TestBlobFileExportSkipsMissingFiles(t *testing.T) {
	db := setupDB(t)
	store := storage.NewDiskService(t.TempDir())
	require.NoError(t, store.Upload(context.Background(), "key1", strings.NewReader("bytes one")))
	require.NoError(t, db.Create(&models.Blob{ID: "bl1", AccountID: "src-acct", Key: "key1", Filename: "a.png", ServiceName: "disk", ByteSize: 9}).Error)
	require.NoError(t, db.Create(&models.Blob{ID: "bl2", AccountID: "src-acct", Key: "key2", Filename: "b.png", ServiceName: "disk", ByteSize: 3}).Error)

	signer := richtext.NewSigner([]byte("test-secret"))
	ar := exportToArchive(t, db, setWith(t, "src-acct", "blob_files", signer, store))

	names, err := ar.Glob("storage/*")
	require.NoError(t, err)
	assert.Equal(t, []string{"storage/key1"}, names)

	content, err := ar.Read("storage/key1")
	require.NoError(t, err)
	assert.Equal(t, "bytes one", string(content))
}

func TestBlobFileImportSkipsOrphans(t *testing.T) {
	db := setupDB(t)
	store := storage.NewDiskService(t.TempDir())
	require.NoError(t, db.Create(&models.Blob{ID: "bl1", AccountID: "dest-acct", Key: "key1", Filename: "a.png", ServiceName: "disk", ByteSize: 9}).Error)

	ar := buildArchive(t, map[string][]byte{
		"storage/key1": []byte("bytes one"),
		"storage/key2": []byte("orphan"),
	})

	signer := richtext.NewSigner([]byte("test-secret"))
	rs := setWith(t, "dest-acct", "blob_files", signer, store)
	require.NoError(t, rs.Import(context.Background(), db, ar, "", nil))

	ok, err := store.Exists(context.Background(), "key1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.Exists(context.Background(), "key2")
	require.NoError(t, err)
	assert.False(t, ok)
}
