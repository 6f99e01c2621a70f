package recordset

// referenceTables maps polymorphic/portable reference type names to the
// tables holding the referenced rows.
var referenceTables = map[string]string{
	"Account":    "accounts",
	"Attachment": "attachments",
	"Blob":       "blobs",
	"Board":      "boards",
	"Card":       "cards",
	"Column":     "columns",
	"Comment":    "comments",
	"Event":      "events",
	"RichText":   "rich_texts",
	"Tag":        "tags",
	"User":       "users",
}

func polymorphic(typeColumn, idColumn string, types ...string) Polymorphic {
	tables := make(map[string]string, len(types))
	for _, t := range types {
		tables[t] = referenceTables[t]
	}
	return Polymorphic{TypeColumn: typeColumn, IDColumn: idColumn, Tables: tables}
}

var tagDescriptor = Descriptor{
	Name:       "tags",
	Table:      "tags",
	Attributes: []string{"account_id", "created_at", "id", "title", "updated_at"},
}

var boardDescriptor = Descriptor{
	Name:        "boards",
	Table:       "boards",
	Attributes:  []string{"account_id", "all_access", "created_at", "creator_id", "id", "name", "updated_at"},
	ForeignKeys: []ForeignKey{{"creator_id", "users"}},
}

var columnDescriptor = Descriptor{
	Name:        "columns",
	Table:       "columns",
	Attributes:  []string{"account_id", "board_id", "color", "created_at", "id", "name", "position", "updated_at"},
	ForeignKeys: []ForeignKey{{"board_id", "boards"}},
}

var entropyDescriptor = Descriptor{
	Name:         "entropies",
	Table:        "entropies",
	Attributes:   []string{"account_id", "auto_postpone_period", "container_id", "container_type", "created_at", "id", "updated_at"},
	Polymorphics: []Polymorphic{polymorphic("container_type", "container_id", "Account", "Board")},
}

var boardPublicationDescriptor = Descriptor{
	Name:        "board_publications",
	Table:       "board_publications",
	Attributes:  []string{"account_id", "board_id", "created_at", "id", "key", "updated_at"},
	ForeignKeys: []ForeignKey{{"board_id", "boards"}},
}

var webhookDescriptor = Descriptor{
	Name:        "webhooks",
	Table:       "webhooks",
	Attributes:  []string{"account_id", "active", "board_id", "created_at", "id", "name", "signing_secret", "subscribed_actions", "updated_at", "url"},
	ForeignKeys: []ForeignKey{{"board_id", "boards"}},
}

var accessDescriptor = Descriptor{
	Name:        "accesses",
	Table:       "accesses",
	Attributes:  []string{"accessed_at", "account_id", "board_id", "created_at", "id", "involvement", "updated_at", "user_id"},
	ForeignKeys: []ForeignKey{{"board_id", "boards"}, {"user_id", "users"}},
}

var cardDescriptor = Descriptor{
	Name:        "cards",
	Table:       "cards",
	Attributes:  []string{"account_id", "board_id", "column_id", "created_at", "creator_id", "due_on", "id", "last_active_at", "number", "status", "title", "updated_at"},
	ForeignKeys: []ForeignKey{{"board_id", "boards"}, {"column_id", "columns"}, {"creator_id", "users"}},
}

var commentDescriptor = Descriptor{
	Name:        "comments",
	Table:       "comments",
	Attributes:  []string{"account_id", "card_id", "created_at", "creator_id", "id", "updated_at"},
	ForeignKeys: []ForeignKey{{"card_id", "cards"}, {"creator_id", "users"}},
}

var stepDescriptor = Descriptor{
	Name:        "steps",
	Table:       "steps",
	Attributes:  []string{"account_id", "card_id", "completed", "content", "created_at", "id", "updated_at"},
	ForeignKeys: []ForeignKey{{"card_id", "cards"}},
}

var assignmentDescriptor = Descriptor{
	Name:        "assignments",
	Table:       "assignments",
	Attributes:  []string{"account_id", "assignee_id", "assigner_id", "card_id", "created_at", "id", "updated_at"},
	ForeignKeys: []ForeignKey{{"assignee_id", "users"}, {"assigner_id", "users"}, {"card_id", "cards"}},
}

var taggingDescriptor = Descriptor{
	Name:        "taggings",
	Table:       "taggings",
	Attributes:  []string{"account_id", "card_id", "created_at", "id", "tag_id", "updated_at"},
	ForeignKeys: []ForeignKey{{"card_id", "cards"}, {"tag_id", "tags"}},
}

var closureDescriptor = Descriptor{
	Name:        "closures",
	Table:       "closures",
	Attributes:  []string{"account_id", "card_id", "created_at", "id", "updated_at", "user_id"},
	ForeignKeys: []ForeignKey{{"card_id", "cards"}, {"user_id", "users"}},
}

var cardGoldnessDescriptor = Descriptor{
	Name:        "card_goldnesses",
	Table:       "card_goldnesses",
	Attributes:  []string{"account_id", "card_id", "created_at", "id", "updated_at"},
	ForeignKeys: []ForeignKey{{"card_id", "cards"}},
}

var cardNotNowDescriptor = Descriptor{
	Name:        "card_not_nows",
	Table:       "card_not_nows",
	Attributes:  []string{"account_id", "card_id", "created_at", "id", "updated_at"},
	ForeignKeys: []ForeignKey{{"card_id", "cards"}},
}

var cardActivitySpikeDescriptor = Descriptor{
	Name:        "card_activity_spikes",
	Table:       "card_activity_spikes",
	Attributes:  []string{"account_id", "card_id", "created_at", "id", "updated_at"},
	ForeignKeys: []ForeignKey{{"card_id", "cards"}},
}

var watchDescriptor = Descriptor{
	Name:        "watches",
	Table:       "watches",
	Attributes:  []string{"account_id", "card_id", "created_at", "id", "updated_at", "user_id", "watching"},
	ForeignKeys: []ForeignKey{{"card_id", "cards"}, {"user_id", "users"}},
}

var pinDescriptor = Descriptor{
	Name:        "pins",
	Table:       "pins",
	Attributes:  []string{"account_id", "card_id", "created_at", "id", "updated_at", "user_id"},
	ForeignKeys: []ForeignKey{{"card_id", "cards"}, {"user_id", "users"}},
}

var reactionDescriptor = Descriptor{
	Name:        "reactions",
	Table:       "reactions",
	Attributes:  []string{"account_id", "comment_id", "content", "created_at", "id", "reacter_id", "updated_at"},
	ForeignKeys: []ForeignKey{{"comment_id", "comments"}, {"reacter_id", "users"}},
}

var mentionDescriptor = Descriptor{
	Name:         "mentions",
	Table:        "mentions",
	Attributes:   []string{"account_id", "created_at", "id", "mentionee_id", "mentioner_id", "source_id", "source_type", "updated_at"},
	ForeignKeys:  []ForeignKey{{"mentionee_id", "users"}, {"mentioner_id", "users"}},
	Polymorphics: []Polymorphic{polymorphic("source_type", "source_id", "Card", "Comment")},
}

var filterDescriptor = Descriptor{
	Name:        "filters",
	Table:       "filters",
	Attributes:  []string{"account_id", "created_at", "creator_id", "fields", "id", "params_digest", "updated_at"},
	ForeignKeys: []ForeignKey{{"creator_id", "users"}},
}

var webhookDelinquencyTrackerDescriptor = Descriptor{
	Name:        "webhook_delinquency_trackers",
	Table:       "webhook_delinquency_trackers",
	Attributes:  []string{"account_id", "consecutive_failures_count", "created_at", "first_failure_at", "id", "updated_at", "webhook_id"},
	ForeignKeys: []ForeignKey{{"webhook_id", "webhooks"}},
}

var eventDescriptor = Descriptor{
	Name:         "events",
	Table:        "events",
	Attributes:   []string{"account_id", "action", "board_id", "created_at", "creator_id", "eventable_id", "eventable_type", "id", "particulars", "updated_at"},
	ForeignKeys:  []ForeignKey{{"board_id", "boards"}, {"creator_id", "users"}},
	Polymorphics: []Polymorphic{polymorphic("eventable_type", "eventable_id", "Board", "Card", "Column", "Comment")},
}

var notificationDescriptor = Descriptor{
	Name:         "notifications",
	Table:        "notifications",
	Attributes:   []string{"account_id", "created_at", "creator_id", "id", "read_at", "source_id", "source_type", "updated_at", "user_id"},
	ForeignKeys:  []ForeignKey{{"creator_id", "users"}, {"user_id", "users"}},
	Polymorphics: []Polymorphic{polymorphic("source_type", "source_id", "Card", "Comment", "Event")},
}

var notificationBundleDescriptor = Descriptor{
	Name:        "notification_bundles",
	Table:       "notification_bundles",
	Attributes:  []string{"account_id", "created_at", "ends_at", "id", "starts_at", "status", "updated_at", "user_id"},
	ForeignKeys: []ForeignKey{{"user_id", "users"}},
}

var webhookDeliveryDescriptor = Descriptor{
	Name:        "webhook_deliveries",
	Table:       "webhook_deliveries",
	Attributes:  []string{"account_id", "created_at", "event_id", "id", "request", "response", "state", "updated_at", "webhook_id"},
	ForeignKeys: []ForeignKey{{"event_id", "events"}, {"webhook_id", "webhooks"}},
}

var blobDescriptor = Descriptor{
	Name:       "blobs",
	Table:      "blobs",
	Attributes: []string{"account_id", "byte_size", "checksum", "content_type", "created_at", "filename", "id", "key", "metadata", "service_name"},
}

var attachmentDescriptor = Descriptor{
	Name:         "attachments",
	Table:        "attachments",
	Attributes:   []string{"account_id", "blob_id", "created_at", "id", "name", "record_id", "record_type"},
	ForeignKeys:  []ForeignKey{{"blob_id", "blobs"}},
	Polymorphics: []Polymorphic{polymorphic("record_type", "record_id", "Card", "Comment", "RichText")},
}

var richTextDescriptor = Descriptor{
	Name:         "rich_texts",
	Table:        "rich_texts",
	Attributes:   []string{"account_id", "body", "created_at", "id", "name", "record_id", "record_type", "updated_at"},
	Polymorphics: []Polymorphic{polymorphic("record_type", "record_id", "Card", "Comment")},
}
