package docbolt

import (
	"bytes"
	"strings"
)

// SortField is one (field, direction) pair of a query's sort clause.
type SortField struct {
	Field      string
	Descending bool
}

// Query carries the part of a logical query this package cares about:
// the ordered sort clause. An empty clause still yields a total order
// because the primary key is always appended.
type Query struct {
	Sort []SortField
}

// NewSortComparator builds a deterministic comparator for documents of
// the given collection. The returned function reports -1, 0 or +1 in
// the usual cmp convention. The order it induces is total: the
// primary key is appended ascending as a tie-breaker unless the
// query's sort clause already references it, so two distinct
// documents never compare equal. Comparing a document to itself
// yields 0.
func NewSortComparator(scm *CollectionSchema, q Query) func(a, b Document) int {
	fields := append([]SortField(nil), q.Sort...)
	if !sortReferences(fields, scm.PrimaryKey) {
		fields = append(fields, SortField{Field: scm.PrimaryKey})
	}
	return func(a, b Document) int {
		for _, sf := range fields {
			av, _ := fieldPath(a, sf.Field)
			bv, _ := fieldPath(b, sf.Field)
			c := compareValues(av, bv)
			if sf.Descending {
				c = -c
			}
			if c != 0 {
				return c
			}
		}
		return 0
	}
}

func sortReferences(fields []SortField, path string) bool {
	for _, sf := range fields {
		if sf.Field == path {
			return true
		}
	}
	return false
}

// compareValues orders two field values of arbitrary type: type rank
// first (nil < bool < number < string < other), then value. Composite
// values fall back to their canonical msgpack bytes, which is an
// arbitrary but deterministic order, and equal values yield 0 so the
// primary-key tie-breaker still applies.
func compareValues(a, b any) int {
	at, bt := valueTag(a), valueTag(b)
	if at != bt {
		return cmpOrd(at, bt)
	}
	switch at {
	case valueTagNil, valueTagFalse, valueTagTrue:
		return 0
	case valueTagNumber:
		af, _ := toFloat(a)
		bf, _ := toFloat(b)
		return cmpOrd(af, bf)
	case valueTagString:
		return strings.Compare(a.(string), b.(string))
	default:
		return bytes.Compare(canonicalBytes(a), canonicalBytes(b))
	}
}

func cmpOrd[T byte | float64](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
