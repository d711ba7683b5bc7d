package fhir

import (
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"
)

// ResponseStore caches raw service responses locally, keyed by
// operation and request URL. Implementations must be safe for
// concurrent use.
type ResponseStore interface {
	Get(op, key string) ([]byte, bool)
	Put(op, key string, body []byte) error
	Close() error
}

// BoltStore is a ResponseStore backed by a bbolt database file. Each
// operation gets its own bucket. Useful for repeated batch runs
// against the same terms: expansions and lookups are served from disk
// instead of the network.
type BoltStore struct {
	db *bolt.DB
}

// OpenBoltStore opens (creating if needed) a response store at path.
func OpenBoltStore(path string) (*BoltStore, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open response store %s: %w", path, err)
	}
	return &BoltStore{db: db}, nil
}

// Get returns the cached response body for key, if present.
func (s *BoltStore) Get(op, key string) ([]byte, bool) {
	var body []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(op))
		if b == nil {
			return nil
		}
		if v := b.Get([]byte(key)); v != nil {
			body = make([]byte, len(v))
			copy(body, v)
		}
		return nil
	})
	if err != nil || body == nil {
		return nil, false
	}
	return body, true
}

// Put stores a response body under key.
func (s *BoltStore) Put(op, key string, body []byte) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(op))
		if err != nil {
			return fmt.Errorf("failed to create bucket %s: %w", op, err)
		}
		return b.Put([]byte(key), body)
	})
}

// Close closes the underlying database.
func (s *BoltStore) Close() error {
	return s.db.Close()
}
