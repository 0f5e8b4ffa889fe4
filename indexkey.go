package docbolt

import (
	"bytes"
	"encoding/binary"
	"math"

	"github.com/vmihailenco/msgpack/v5"
)

// Index entry keys use a tag-then-sortable-bytes layout so that the
// engine's bytewise comparator orders entries by type rank first, then
// by value: nil < booleans < numbers < strings < everything else.
const (
	valueTagNil    byte = 0x01
	valueTagFalse  byte = 0x02
	valueTagTrue   byte = 0x03
	valueTagNumber byte = 0x04
	valueTagString byte = 0x05
	valueTagOther  byte = 0x06
)

func valueTag(v any) byte {
	switch v := v.(type) {
	case nil:
		return valueTagNil
	case bool:
		if v {
			return valueTagTrue
		}
		return valueTagFalse
	case string:
		return valueTagString
	default:
		if _, ok := toFloat(v); ok {
			return valueTagNumber
		}
		return valueTagOther
	}
}

func toFloat(v any) (float64, bool) {
	switch v := v.(type) {
	case int:
		return float64(v), true
	case int8:
		return float64(v), true
	case int16:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint8:
		return float64(v), true
	case uint16:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	case float32:
		return float64(v), true
	case float64:
		return v, true
	default:
		return 0, false
	}
}

// sortableFloatBits maps float64 bit patterns to uint64s whose
// unsigned order matches numeric order (negative values flipped
// entirely, positive values get the sign bit set).
func sortableFloatBits(f float64) uint64 {
	bits := math.Float64bits(f)
	if bits&(1<<63) != 0 {
		return ^bits
	}
	return bits | 1<<63
}

func appendIndexValue(buf []byte, v any) []byte {
	tag := valueTag(v)
	buf = append(buf, tag)
	switch tag {
	case valueTagNil, valueTagFalse, valueTagTrue:
		// tag alone carries the value
	case valueTagNumber:
		f, _ := toFloat(v)
		var b [8]byte
		binary.BigEndian.PutUint64(b[:], sortableFloatBits(f))
		buf = append(buf, b[:]...)
	case valueTagString:
		buf = append(buf, v.(string)...)
		buf = append(buf, 0x00)
	default:
		buf = append(buf, canonicalBytes(v)...)
		buf = append(buf, 0x00)
	}
	return buf
}

// canonicalBytes encodes a composite value with map keys sorted, so
// the same value always yields the same bytes. Plain msgpack.Marshal
// follows Go's map iteration order and is not stable across calls.
func canonicalBytes(v any) []byte {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetSortMapKeys(true)
	if err := enc.Encode(v); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

// indexEntryKey builds the key for one document's entry in an index
// bucket: the group's field values in sortable encoding, then the
// primary key so entries stay unique per document.
func indexEntryKey(group IndexDef, doc Document, primaryKey string) []byte {
	var buf []byte
	for _, field := range group {
		v, _ := fieldPath(doc, field)
		buf = appendIndexValue(buf, v)
	}
	return append(buf, primaryKey...)
}
