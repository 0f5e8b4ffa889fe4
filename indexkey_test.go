package docbolt

import (
	"bytes"
	"math"
	"sort"
	"testing"
)

func TestSortableFloatBits(t *testing.T) {
	values := []float64{math.Inf(-1), -1e9, -1, -0.5, 0, 0.5, 1, 42, 1e9, math.Inf(1)}
	for i := 1; i < len(values); i++ {
		a, b := sortableFloatBits(values[i-1]), sortableFloatBits(values[i])
		if a >= b {
			t.Errorf("bits(%v) = %x should be below bits(%v) = %x", values[i-1], a, values[i], b)
		}
	}
}

func TestAppendIndexValue_Ordering(t *testing.T) {
	// Bytewise order of encoded values must match compareValues order.
	values := []any{nil, false, true, float64(-3), int64(0), float64(2.5), "a", "ab", "b"}
	encoded := make([][]byte, len(values))
	for i, v := range values {
		encoded[i] = appendIndexValue(nil, v)
	}
	if !sort.SliceIsSorted(encoded, func(i, j int) bool {
		return bytes.Compare(encoded[i], encoded[j]) < 0
	}) {
		t.Errorf("encoded values are not in ascending bytewise order: %x", encoded)
	}
}

func TestIndexEntryKey_StableForMapValues(t *testing.T) {
	group := Index("meta")
	doc := Document{"meta": map[string]any{"q": "1", "w": "2", "e": "3", "r": "4", "t": "5"}}
	first := indexEntryKey(group, doc, "a")
	for i := 0; i < 50; i++ {
		if got := indexEntryKey(group, doc, "a"); !bytes.Equal(got, first) {
			t.Fatalf("iteration %d: entry key changed: %x vs %x", i, got, first)
		}
	}
}

func TestCanonicalBytes_SortsMapKeys(t *testing.T) {
	v1 := map[string]any{"a": 1, "b": 2, "c": 3, "d": 4, "e": 5}
	v2 := map[string]any{"e": 5, "d": 4, "c": 3, "b": 2, "a": 1}
	for i := 0; i < 50; i++ {
		if !bytes.Equal(canonicalBytes(v1), canonicalBytes(v2)) {
			t.Fatalf("iteration %d: equal maps encoded differently", i)
		}
	}
}

func TestIndexEntryKey_UniquePerDocument(t *testing.T) {
	group := Index("age")
	a := indexEntryKey(group, Document{"age": float64(30)}, "a")
	b := indexEntryKey(group, Document{"age": float64(30)}, "b")
	if bytes.Equal(a, b) {
		t.Errorf("entries for distinct documents with equal index values must differ")
	}
	if bytes.Compare(a, b) >= 0 {
		t.Errorf("equal index values must tie-break by primary key")
	}
}
