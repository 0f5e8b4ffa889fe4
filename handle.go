package docbolt

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/vmihailenco/msgpack/v5"
	"go.etcd.io/bbolt"
	"go.uber.org/zap"
)

var (
	docsBucket      = []byte("docs")
	tombstoneBucket = []byte("deleted-docs")
	changesBucket   = []byte("changes")
	metaBucket      = []byte("meta")

	metaIndexesKey = []byte("indexes")
)

type handleIndex struct {
	fields IndexDef // original (unescaped) field paths
	bucket []byte
}

// Handle is the shared physical connection for one logical name: an
// open Bolt file plus its declared buckets. Handles are created and
// closed only by a Registry; all holders of the same logical name
// share one Handle.
type Handle struct {
	name    string
	bdb     *bbolt.DB
	schema  *CollectionSchema
	decl    string
	indexes []handleIndex // secondary groups, primary-key singleton excluded
	logger  *zap.Logger
}

func openHandle(name, decl string, opt Options, scm *CollectionSchema) (*Handle, error) {
	log := opt.Logger
	if log == nil {
		log = zap.NewNop()
	}

	bopt := *bbolt.DefaultOptions
	bopt.Timeout = opt.Timeout
	if bopt.Timeout == 0 {
		bopt.Timeout = 10 * time.Second
	}
	if opt.IsTesting {
		bopt.NoSync = true
		bopt.NoFreelistSync = true
		bopt.InitialMmapSize = 1024 * 1024 * 5
	}

	path := filepath.Join(opt.Directory, name+".db")
	bdb, err := bbolt.Open(path, 0666, &bopt)
	if err != nil {
		return nil, err
	}

	h := &Handle{
		name:   name,
		bdb:    bdb,
		schema: scm,
		decl:   decl,
		logger: log,
	}
	groups := scm.indexGroups()
	for _, group := range groups[1:] {
		h.indexes = append(h.indexes, handleIndex{fields: group, bucket: makeIndexBucketName(group)})
	}

	err = bdb.Update(func(tx *bbolt.Tx) error {
		for _, bn := range [][]byte{docsBucket, tombstoneBucket, changesBucket, metaBucket} {
			if _, err := tx.CreateBucketIfNotExists(bn); err != nil {
				return err
			}
		}
		for _, hi := range h.indexes {
			if _, err := tx.CreateBucketIfNotExists(hi.bucket); err != nil {
				return err
			}
		}
		return tx.Bucket(metaBucket).Put(metaIndexesKey, []byte(decl))
	})
	if err != nil {
		bdb.Close()
		return nil, err
	}

	log.Info("storage opened",
		zap.String("name", name),
		zap.String("path", path),
		zap.String("indexes", decl))
	return h, nil
}

func (h *Handle) close() {
	err := h.bdb.Close()
	if err != nil {
		panic(fmt.Errorf("docbolt: closing %s: %w", h.name, err))
	}
	h.logger.Info("storage closed", zap.String("name", h.name))
}

func (h *Handle) Name() string {
	return h.name
}

// IndexDeclaration returns the compiled physical index declaration
// this handle was opened with.
func (h *Handle) IndexDeclaration() string {
	return h.decl
}

func (h *Handle) Bolt() *bbolt.DB {
	return h.bdb
}

// BulkPut writes the given documents in one transaction. A document
// carrying _deleted: true moves to the tombstone bucket and gets the
// last-write timestamp stamped; a non-deleted write of a tombstoned
// id resurrects it into the active bucket. Secondary index entries
// are maintained for active records, and one change row is appended
// per document.
func (h *Handle) BulkPut(docs []Document) error {
	now := time.Now().UnixMilli()
	err := h.bdb.Update(func(tx *bbolt.Tx) error {
		active := nonNil(tx.Bucket(docsBucket))
		tombs := nonNil(tx.Bucket(tombstoneBucket))
		changes := nonNil(tx.Bucket(changesBucket))

		for _, doc := range docs {
			id, err := primaryKeyOf(doc, h.schema.PrimaryKey)
			if err != nil {
				return err
			}
			idRaw := []byte(id)

			if prev := active.Get(idRaw); prev != nil {
				if err := h.deleteIndexEntries(tx, prev, id); err != nil {
					return err
				}
			}

			if isDeleted(doc) {
				tomb := doc.Clone()
				tomb[lastWriteTimeField] = now
				raw, err := msgpack.Marshal(tomb)
				if err != nil {
					return err
				}
				if err := tombs.Put(idRaw, raw); err != nil {
					return err
				}
				if err := active.Delete(idRaw); err != nil {
					return err
				}
			} else {
				raw, err := msgpack.Marshal(doc)
				if err != nil {
					return err
				}
				if err := active.Put(idRaw, raw); err != nil {
					return err
				}
				if err := tombs.Delete(idRaw); err != nil {
					return err
				}
				if err := h.putIndexEntries(tx, doc, id); err != nil {
					return err
				}
			}

			seq, err := changes.NextSequence()
			if err != nil {
				return err
			}
			row := changeRow{ID: id, EventKey: ChangeEventKey(false, id, revisionOf(doc))}
			raw, err := msgpack.Marshal(&row)
			if err != nil {
				return err
			}
			if err := changes.Put(be64(seq), raw); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	h.logger.Debug("bulk put", zap.String("name", h.name), zap.Int("docs", len(docs)))
	return nil
}

func (h *Handle) putIndexEntries(tx *bbolt.Tx, doc Document, id string) error {
	for _, hi := range h.indexes {
		b := nonNil(tx.Bucket(hi.bucket))
		if err := b.Put(indexEntryKey(hi.fields, doc, id), []byte(id)); err != nil {
			return err
		}
	}
	return nil
}

func (h *Handle) deleteIndexEntries(tx *bbolt.Tx, prevRaw []byte, id string) error {
	var prev Document
	if err := msgpack.Unmarshal(prevRaw, &prev); err != nil {
		return err
	}
	for _, hi := range h.indexes {
		b := nonNil(tx.Bucket(hi.bucket))
		if err := b.Delete(indexEntryKey(hi.fields, prev, id)); err != nil {
			return err
		}
	}
	return nil
}

// Get returns the active record for id, or nil when the id is absent
// or tombstoned.
func (h *Handle) Get(id string) (Document, error) {
	var doc Document
	err := h.bdb.View(func(tx *bbolt.Tx) error {
		raw := nonNil(tx.Bucket(docsBucket)).Get([]byte(id))
		if raw == nil {
			return nil
		}
		return msgpack.Unmarshal(raw, &doc)
	})
	if err != nil {
		return nil, err
	}
	return stripReturned(doc), nil
}

// Count returns the number of active records.
func (h *Handle) Count() (int, error) {
	var n int
	err := h.bdb.View(func(tx *bbolt.Tx) error {
		n = nonNil(tx.Bucket(docsBucket)).Stats().KeyN
		return nil
	})
	return n, err
}

func stripReturned(doc Document) Document {
	if doc == nil {
		return nil
	}
	return stripBookkeeping(doc)
}
