package recordset

import (
	"github.com/loopdeck/account-transfer/pkg/transfer/richtext"
	"github.com/loopdeck/account-transfer/pkg/transfer/storage"
)

// Cursor marks durable progress: everything up to and including LastID in
// the named record set has been processed. It is only meaningful relative
// to the manifest order and the sorted entry names within one record set.
type Cursor struct {
	RecordSet string `json:"record_set"`
	LastID    string `json:"last_id"`
}

// Manifest returns the record sets for one account in fixed dependency
// order: the account itself, then users, independent top-level containers,
// their children, leaf content, attachment metadata, rich-text bodies
// (which may reference attachments), and finally raw blob bytes. The entity
// graph is static, so the order is fixed here rather than computed.
func Manifest(accountID string, signer *richtext.Signer, store storage.Service) []RecordSet {
	return []RecordSet{
		newAccountRecordSet(accountID),
		newUserRecordSet(accountID),
		newTableRecordSet(tagDescriptor, accountID),
		newTableRecordSet(boardDescriptor, accountID),
		newTableRecordSet(columnDescriptor, accountID),
		newTableRecordSet(entropyDescriptor, accountID),
		newTableRecordSet(boardPublicationDescriptor, accountID),
		newTableRecordSet(webhookDescriptor, accountID),
		newTableRecordSet(accessDescriptor, accountID),
		newTableRecordSet(cardDescriptor, accountID),
		newTableRecordSet(commentDescriptor, accountID),
		newTableRecordSet(stepDescriptor, accountID),
		newTableRecordSet(assignmentDescriptor, accountID),
		newTableRecordSet(taggingDescriptor, accountID),
		newTableRecordSet(closureDescriptor, accountID),
		newTableRecordSet(cardGoldnessDescriptor, accountID),
		newTableRecordSet(cardNotNowDescriptor, accountID),
		newTableRecordSet(cardActivitySpikeDescriptor, accountID),
		newTableRecordSet(watchDescriptor, accountID),
		newTableRecordSet(pinDescriptor, accountID),
		newTableRecordSet(reactionDescriptor, accountID),
		newTableRecordSet(mentionDescriptor, accountID),
		newTableRecordSet(filterDescriptor, accountID),
		newTableRecordSet(webhookDelinquencyTrackerDescriptor, accountID),
		newTableRecordSet(eventDescriptor, accountID),
		newTableRecordSet(notificationDescriptor, accountID),
		newTableRecordSet(notificationBundleDescriptor, accountID),
		newTableRecordSet(webhookDeliveryDescriptor, accountID),
		newTableRecordSet(blobDescriptor, accountID),
		newTableRecordSet(attachmentDescriptor, accountID),
		newRichTextRecordSet(accountID, signer),
		newBlobFileRecordSet(accountID, store),
	}
}

// StartIndex returns the manifest position a cursor refers to. A nil cursor
// or one naming an unknown record set starts from the beginning.
func StartIndex(sets []RecordSet, c *Cursor) int {
	if c == nil {
		return 0
	}
	for i, rs := range sets {
		if rs.Name() == c.RecordSet {
			return i
		}
	}
	return 0
}
