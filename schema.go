package docbolt

// IndexDef is one secondary index: a single field path, or an ordered
// list of field paths forming a compound index.
type IndexDef []string

// Index is a convenience constructor for an IndexDef.
func Index(fields ...string) IndexDef {
	return IndexDef(fields)
}

// CollectionSchema describes a logical collection: the primary-key
// field path plus the declared secondary indexes, in declaration
// order.
type CollectionSchema struct {
	PrimaryKey string
	Indexes    []IndexDef
}

func (scm *CollectionSchema) validate() error {
	if scm.PrimaryKey == "" {
		return schemaErrf("", "primary key path is empty")
	}
	for i, def := range scm.Indexes {
		if len(def) == 0 {
			return schemaErrf("", "index %d has no fields", i)
		}
		for _, f := range def {
			if f == "" {
				return schemaErrf("", "index %d has an empty field path", i)
			}
		}
	}
	return nil
}

// indexGroups returns the ordered physical index groups: the
// primary-key singleton first, then one group per declared index.
func (scm *CollectionSchema) indexGroups() []IndexDef {
	groups := make([]IndexDef, 0, 1+len(scm.Indexes))
	groups = append(groups, IndexDef{scm.PrimaryKey})
	groups = append(groups, scm.Indexes...)
	return groups
}
