// Package storage holds persisted layout documents.
//
// A [Store] is a plain key/value store for encoded documents. Backends:
//   - file: one JSON file per key in a directory (CLI default)
//   - memory: process-local map for tests and ephemeral servers
//   - badger: embedded BadgerDB, on disk or in memory
//   - redis: shared Redis instance
//   - mongo: MongoDB collection, one document per key
//
// The [Gateway] turns a breakpoint set into a document and back. It opens a
// store for every Save and Load and closes it before returning, so no
// backend handle outlives a single operation.
package storage

import (
	"context"
	"errors"
	"fmt"
	"sync"

	apperr "github.com/shaikhimroz/new-nfm-sub000/pkg/errors"
)

// DefaultKey is the key a dashboard layout is stored under.
const DefaultKey = "hercules-dashboard-widgets"

// Backend names.
const (
	BackendFile   = "file"
	BackendMemory = "memory"
	BackendBadger = "badger"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
)

// Backends lists the supported backend names.
func Backends() []string {
	return []string{BackendFile, BackendMemory, BackendBadger, BackendRedis, BackendMongo}
}

// ErrNotFound is returned by Get when nothing is stored under the key.
var ErrNotFound = errors.New("not found")

// Store is the interface for document storage backends.
type Store interface {
	// Get returns the bytes stored under key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Put stores data under key, replacing any previous value.
	Put(ctx context.Context, key string, data []byte) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Backend returns the backend name, used to label metrics and logs.
	Backend() string

	// Close releases the backend's resources.
	Close() error
}

// Opener opens a store for a single operation.
type Opener func(ctx context.Context) (Store, error)

// Shared returns an opener that always hands out s and ignores Close. Use
// it for stores whose contents live only as long as the store itself, such
// as [MemoryStore] or an in-memory [BadgerStore].
func Shared(s Store) Opener {
	return func(context.Context) (Store, error) {
		return nopCloser{s}, nil
	}
}

type nopCloser struct{ Store }

func (nopCloser) Close() error { return nil }

// Config selects and configures a backend.
type Config struct {
	Backend string      `toml:"backend" validate:"required,oneof=file memory badger redis mongo"`
	Key     string      `toml:"key" validate:"required"`
	Path    string      `toml:"path"`
	Redis   RedisConfig `toml:"redis"`
	Mongo   MongoConfig `toml:"mongo"`
}

// DefaultConfig returns a file backend config. An empty Path selects the
// per-user data directory.
func DefaultConfig() Config {
	return Config{
		Backend: BackendFile,
		Key:     DefaultKey,
		Redis:   DefaultRedisConfig(),
		Mongo:   DefaultMongoConfig(),
	}
}

// NewOpener returns an opener for cfg. Memory stores and in-memory badger
// databases are created once and shared between operations. Redis and mongo
// connections are retried when the server does not answer.
func NewOpener(cfg Config) (Opener, error) {
	switch cfg.Backend {
	case BackendFile, "":
		return func(context.Context) (Store, error) {
			return NewFileStore(cfg.Path)
		}, nil
	case BackendMemory:
		return Shared(NewMemoryStore()), nil
	case BackendBadger:
		if cfg.Path == "" {
			s, err := OpenBadger("")
			if err != nil {
				return nil, err
			}
			return Shared(s), nil
		}
		return func(context.Context) (Store, error) {
			return OpenBadger(cfg.Path)
		}, nil
	case BackendRedis:
		return WithRetry(func(ctx context.Context) (Store, error) {
			return OpenRedis(ctx, cfg.Redis)
		}, DefaultConnectAttempts, DefaultConnectDelay), nil
	case BackendMongo:
		return WithRetry(func(ctx context.Context) (Store, error) {
			return OpenMongo(ctx, cfg.Mongo)
		}, DefaultConnectAttempts, DefaultConnectDelay), nil
	default:
		return nil, apperr.New(apperr.ErrCodeInvalidConfig, "unknown storage backend %q", cfg.Backend)
	}
}

// =============================================================================
// Memory store
// =============================================================================

// MemoryStore keeps documents in a map. It is safe for concurrent use.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemoryStore returns an empty memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

func (s *MemoryStore) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	if !ok {
		return nil, fmt.Errorf("%s: %w", key, ErrNotFound)
	}
	return append([]byte(nil), v...), nil
}

func (s *MemoryStore) Put(ctx context.Context, key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = append([]byte(nil), data...)
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

func (s *MemoryStore) Backend() string { return BackendMemory }
func (s *MemoryStore) Close() error    { return nil }

var _ Store = (*MemoryStore)(nil)
