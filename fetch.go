package docbolt

import (
	"github.com/vmihailenco/msgpack/v5"
	"go.etcd.io/bbolt"
	"golang.org/x/sync/errgroup"
)

// FetchMany resolves a batch of primary keys into documents. The
// result has the same length and order as ids; a nil slot means the
// id is in neither table. Tombstoned records are the baseline —
// deleted documents are retained for causality — and the active
// record overrides the tombstone when an id exists in both, since an
// id can be resurrected. The two bucket lookups run in concurrent
// read transactions; the merge is keyed by position, so their
// completion order does not matter. The bookkeeping timestamp is
// stripped from every returned record.
func (h *Handle) FetchMany(ids []string) ([]Document, error) {
	tombstoned := make([]Document, len(ids))
	active := make([]Document, len(ids))

	var g errgroup.Group
	g.Go(func() error {
		return h.lookupAll(tombstoneBucket, ids, tombstoned)
	})
	g.Go(func() error {
		return h.lookupAll(docsBucket, ids, active)
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := tombstoned
	for i, doc := range active {
		if doc != nil {
			out[i] = doc
		}
	}
	for i, doc := range out {
		out[i] = stripReturned(doc)
	}
	return out, nil
}

func (h *Handle) lookupAll(bucket []byte, ids []string, out []Document) error {
	return h.bdb.View(func(tx *bbolt.Tx) error {
		b := nonNil(tx.Bucket(bucket))
		for i, id := range ids {
			raw := b.Get([]byte(id))
			if raw == nil {
				continue
			}
			var doc Document
			if err := msgpack.Unmarshal(raw, &doc); err != nil {
				return err
			}
			out[i] = doc
		}
		return nil
	})
}
