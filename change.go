package docbolt

import (
	"github.com/vmihailenco/msgpack/v5"
	"go.etcd.io/bbolt"
)

// changeRow is the stored form of one change-sequence entry; the
// sequence number is the bucket key, not part of the value.
type changeRow struct {
	ID       string `msgpack:"i"`
	EventKey string `msgpack:"k"`
}

// Change is one entry of the append-only change sequence.
type Change struct {
	Seq      uint64
	ID       string
	EventKey string
}

// ChangeEventKey renders the event key consumed by the external
// change-notification subsystem: three pipe-delimited fields, no
// escaping of pipes inside id or revision (the caller must avoid
// collisions).
func ChangeEventKey(isLocal bool, id, revision string) string {
	scope := "non-local"
	if isLocal {
		scope = "local"
	}
	return scope + "|" + id + "|" + revision
}

// Changes returns up to limit change rows with sequence numbers
// strictly greater than sinceSeq, in sequence order. A limit of zero
// or less means no limit.
func (h *Handle) Changes(sinceSeq uint64, limit int) ([]Change, error) {
	var out []Change
	err := h.bdb.View(func(tx *bbolt.Tx) error {
		c := nonNil(tx.Bucket(changesBucket)).Cursor()
		for k, v := c.Seek(be64(sinceSeq + 1)); k != nil; k, v = c.Next() {
			var row changeRow
			if err := msgpack.Unmarshal(v, &row); err != nil {
				return err
			}
			out = append(out, Change{Seq: beUint64(k), ID: row.ID, EventKey: row.EventKey})
			if limit > 0 && len(out) >= limit {
				break
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
