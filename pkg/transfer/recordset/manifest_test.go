package recordset_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/loopdeck/account-transfer/pkg/transfer/recordset"
	"github.com/loopdeck/account-transfer/pkg/transfer/richtext"
	"github.com/loopdeck/account-transfer/pkg/transfer/storage"
)

func manifestNames(t *testing.T) []string {
	t.Helper()
	signer := richtext.NewSigner([]byte("test-secret"))
	store := storage.NewDiskService(t.TempDir())
	sets := recordset.Manifest("acct-1", signer, store)
	names := make([]string, len(sets))
	for i, rs := range sets {
		names[i] = rs.Name()
	}
	return names
}

func TestManifestOrder(t *testing.T) {
	assert.Equal(t, []string{
		"account",
		"users",
		"tags",
		"boards",
		"columns",
		"entropies",
		"board_publications",
		"webhooks",
		"accesses",
		"cards",
		"comments",
		"steps",
		"assignments",
		"taggings",
		"closures",
		"card_goldnesses",
		"card_not_nows",
		"card_activity_spikes",
		"watches",
		"pins",
		"reactions",
		"mentions",
		"filters",
		"webhook_delinquency_trackers",
		"events",
		"notifications",
		"notification_bundles",
		"webhook_deliveries",
		"blobs",
		"attachments",
		"rich_texts",
		"blob_files",
	}, manifestNames(t))
}

func TestStartIndex(t *testing.T) {
	signer := richtext.NewSigner([]byte("test-secret"))
	store := storage.NewDiskService(t.TempDir())
	sets := recordset.Manifest("acct-1", signer, store)

	assert.Equal(t, 0, recordset.StartIndex(sets, nil))
	assert.Equal(t, 0, recordset.StartIndex(sets, &recordset.Cursor{RecordSet: "unknown"}))
	assert.Equal(t, 2, recordset.StartIndex(sets, &recordset.Cursor{RecordSet: "tags", LastID: "t1"}))
	assert.Equal(t, 9, recordset.StartIndex(sets, &recordset.Cursor{RecordSet: "cards"}))
}
