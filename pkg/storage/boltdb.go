package storage

import (
	"fmt"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

var (
	// Bucket names
	bucketCollections = []byte("collections")
	bucketSessions    = []byte("sessions")
)

// BoltStore implements Store using BoltDB. Collection keys live in one
// bucket and session keys in another so a collection scan never sees a
// session.
type BoltStore struct {
	db *bolt.DB
}

// NewBoltStore creates a new BoltDB-backed store in dataDir
func NewBoltStore(dataDir string) (*BoltStore, error) {
	dbPath := filepath.Join(dataDir, "hoconnect.db")

	// bbolt holds an exclusive file lock; fail instead of hanging when
	// another process has the file open
	db, err := bolt.Open(dbPath, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{bucketCollections, bucketSessions} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", bucket, err)
			}
		}
		return nil
	})

	if err != nil {
		db.Close()
		return nil, err
	}

	return &BoltStore{db: db}, nil
}

// Close closes the database
func (s *BoltStore) Close() error {
	return s.db.Close()
}

func bucketFor(key string) []byte {
	if IsCollection(key) {
		return bucketCollections
	}
	return bucketSessions
}

// Get returns a copy of the stored value or ErrNotFound
func (s *BoltStore) Get(key string) ([]byte, error) {
	var value []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(bucketFor(key)).Get([]byte(key))
		if data == nil {
			return ErrNotFound
		}
		// bbolt values are only valid inside the transaction
		value = append([]byte(nil), data...)
		return nil
	})
	return value, err
}

// Put replaces the value under key
func (s *BoltStore) Put(key string, value []byte) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.Bucket(bucketFor(key)).Put([]byte(key), value); err != nil {
			return fmt.Errorf("failed to put %s: %w", key, err)
		}
		return nil
	})
}

// Delete removes key; deleting a missing key is not an error
func (s *BoltStore) Delete(key string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketFor(key)).Delete([]byte(key))
	})
}
