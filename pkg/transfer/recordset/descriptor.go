package recordset

// ForeignKey names a column that must reference a row imported from the
// same archive. Validation rejects archives whose foreign keys point at
// rows already present in the destination.
type ForeignKey struct {
	Column string
	Table  string
}

// Polymorphic is a type+id column pair. Tables maps the allowed type values
// to the table holding the referenced rows.
type Polymorphic struct {
	TypeColumn string
	IDColumn   string
	Tables     map[string]string
}

// Descriptor is the immutable per-entity contract: archive path segment,
// destination table, the attribute allow-list (the exact top-level keys of
// every exported document), and the declared references.
type Descriptor struct {
	Name         string
	Table        string
	Attributes   []string
	ForeignKeys  []ForeignKey
	Polymorphics []Polymorphic
}

func (d Descriptor) entryGlob() string {
	return "data/" + d.Name + "/*.json"
}

func (d Descriptor) entryPath(id string) string {
	return "data/" + d.Name + "/" + id + ".json"
}
