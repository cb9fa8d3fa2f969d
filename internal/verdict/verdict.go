// Package verdict stores search verdicts keyed by canonical puzzle state.
//
// A verdict only depends on the canonical state, the tube capacity and the
// depth budget, so checking the same level again (in any tube order) is a
// lookup. Backends:
//
//   - none: NullStore, stores nothing
//   - memory: MemoryStore, in-process LRU with TTL
//   - badger: BadgerStore, embedded persistent store
//   - redis: RedisStore, shared between processes
package verdict

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cespare/xxhash/v2"
)

// ErrUnknownBackend is returned by Open for an unsupported backend name.
var ErrUnknownBackend = errors.New("unknown verdict backend")

// Store is a byte store with expiring entries.
type Store interface {
	// Get returns the data of key. ok is false on a miss.
	Get(ctx context.Context, key string) (data []byte, ok bool, err error)
	// Set stores data under key. A ttl <= 0 never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Close releases the resources of the store.
	Close() error
}

// Key returns the store key of a canonical state key.
func Key(canonical string, capacity, maxDepth int) string {
	return fmt.Sprintf("verdict:%d:%d:%016x:%d", capacity, maxDepth, xxhash.Sum64String(canonical), len(canonical))
}

// Options selects and configures a backend.
type Options struct {
	Backend    string // none, memory, badger, redis
	MaxEntries int    // memory
	BadgerPath string // badger; empty opens an in-memory database
	RedisAddr  string // redis
	RedisDB    int    // redis
}

// Open returns the store selected by opts.
func Open(opts Options) (Store, error) {
	switch opts.Backend {
	case "", "none":
		return NewNullStore(), nil
	case "memory":
		return NewMemoryStore(opts.MaxEntries), nil
	case "badger":
		return OpenBadgerStore(opts.BadgerPath)
	case "redis":
		return NewRedisStore(opts.RedisAddr, opts.RedisDB), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, opts.Backend)
	}
}

// NullStore never stores anything.
type NullStore struct{}

func NewNullStore() *NullStore { return &NullStore{} }

func (NullStore) Get(context.Context, string) ([]byte, bool, error)        { return nil, false, nil }
func (NullStore) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (NullStore) Close() error                                             { return nil }

var (
	_ Store = (*NullStore)(nil)
	_ Store = (*MemoryStore)(nil)
	_ Store = (*BadgerStore)(nil)
	_ Store = (*RedisStore)(nil)
)
