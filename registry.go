package docbolt

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Options configures physical opens. It is copied on Acquire and
// never written back; the registry derives the actual engine options
// from it per open.
type Options struct {
	// Directory holds the database files; one file per logical
	// (database, collection) name.
	Directory string

	Logger *zap.Logger

	// Timeout bounds the engine's file-lock wait. Zero means 10s.
	Timeout time.Duration

	// IsTesting disables fsync and shrinks the initial mmap.
	IsTesting bool
}

type entryState int

const (
	entryPending entryState = iota
	entryReady
	entryFailed
)

type registryEntry struct {
	state  entryState
	refs   int
	done   chan struct{} // closed when state leaves entryPending
	handle *Handle
	err    error
}

// Registry is the process-wide map from logical name to the shared
// handle for that name. The mutex serializes all map and refcount
// mutation; the physical open itself happens outside the lock with
// late acquirers parked on the entry's done channel, so concurrent
// first-time acquires agree on a single creation attempt.
type Registry struct {
	mu      sync.Mutex
	entries map[string]*registryEntry
}

func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]*registryEntry)}
}

var defaultRegistry = NewRegistry()

// Acquire returns the shared handle for (databaseName,
// collectionName) from the default process-wide registry.
func Acquire(databaseName, collectionName string, opt Options, scm *CollectionSchema) (*Handle, error) {
	return defaultRegistry.Acquire(databaseName, collectionName, opt, scm)
}

// Release returns h to the default process-wide registry.
func Release(h *Handle) {
	defaultRegistry.Release(h)
}

func logicalName(databaseName, collectionName string) string {
	return databaseName + "--" + collectionName
}

// Acquire returns the shared handle for the logical name, opening it
// on first use. The reference count is incremented under the registry
// lock before any blocking call, so an interleaved Release can never
// observe a stale count. If the open fails, the entry is evicted and
// the same OpenError is surfaced to every acquirer of that attempt; a
// later Acquire starts a fresh open.
func (r *Registry) Acquire(databaseName, collectionName string, opt Options, scm *CollectionSchema) (*Handle, error) {
	decl, err := CompileIndexSchema(scm)
	if err != nil {
		return nil, err
	}
	name := logicalName(databaseName, collectionName)

	r.mu.Lock()
	if e := r.entries[name]; e != nil {
		e.refs++
		r.mu.Unlock()
		<-e.done
		if e.state == entryFailed {
			return nil, e.err
		}
		return e.handle, nil
	}
	e := &registryEntry{state: entryPending, refs: 1, done: make(chan struct{})}
	r.entries[name] = e
	r.mu.Unlock()

	h, err := openHandle(name, decl, opt, scm)

	r.mu.Lock()
	if err != nil {
		e.state = entryFailed
		e.err = &OpenError{Name: name, Err: err}
		delete(r.entries, name) // make retries possible
		r.mu.Unlock()
		close(e.done)
		return nil, e.err
	}
	e.state = entryReady
	e.handle = h
	r.mu.Unlock()
	close(e.done)
	return h, nil
}

// Release decrements the handle's reference count; the count reaching
// zero closes the physical file and removes the entry, so a later
// Acquire for the same name creates a fresh handle. Releasing a
// handle the registry does not track (including releasing more times
// than acquired) is a programming error and panics.
func (r *Registry) Release(h *Handle) {
	r.mu.Lock()
	e := r.entries[h.name]
	if e == nil || e.handle != h {
		r.mu.Unlock()
		panic(fmt.Errorf("docbolt: release of handle %q that is not acquired", h.name))
	}
	e.refs--
	if e.refs > 0 {
		r.mu.Unlock()
		return
	}
	delete(r.entries, h.name)
	r.mu.Unlock()
	h.close()
}
