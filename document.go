package docbolt

import (
	"fmt"
	"strings"
)

// Document is a schemaless keyed record. This package interprets only
// the primary-key field, the deletion flag, the revision, and the
// reserved last-write timestamp; everything else is opaque payload.
type Document map[string]any

const (
	// DeletedField marks a document written through BulkPut as a
	// tombstone.
	DeletedField = "_deleted"

	// RevisionField carries the caller-assigned revision string used
	// in change event keys.
	RevisionField = "_rev"

	// lastWriteTimeField is bookkeeping on tombstone records only.
	// It never leaves this package.
	lastWriteTimeField = "_lwt"
)

func (d Document) Clone() Document {
	c := make(Document, len(d))
	for k, v := range d {
		c[k] = v
	}
	return c
}

// fieldPath resolves a dot-separated path through nested maps.
// A missing segment or a non-map intermediate yields (nil, false).
func fieldPath(d Document, path string) (any, bool) {
	cur := any(d)
	for path != "" {
		seg, rest, _ := strings.Cut(path, ".")
		m, ok := toMap(cur)
		if !ok {
			return nil, false
		}
		v, ok := m[seg]
		if !ok {
			return nil, false
		}
		cur, path = v, rest
	}
	return cur, true
}

func toMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case Document:
		return m, true
	case map[string]any:
		return m, true
	default:
		return nil, false
	}
}

// primaryKeyOf extracts the document's primary key, which must be a
// non-empty string.
func primaryKeyOf(d Document, primaryPath string) (string, error) {
	v, ok := fieldPath(d, primaryPath)
	if !ok {
		return "", fmt.Errorf("document has no %q field", primaryPath)
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return "", fmt.Errorf("primary key %q must be a non-empty string, got %T %v", primaryPath, v, v)
	}
	return s, nil
}

func revisionOf(d Document) string {
	if s, ok := d[RevisionField].(string); ok {
		return s
	}
	return ""
}

func isDeleted(d Document) bool {
	v, _ := d[DeletedField].(bool)
	return v
}

func stripBookkeeping(d Document) Document {
	delete(d, lastWriteTimeField)
	return d
}
