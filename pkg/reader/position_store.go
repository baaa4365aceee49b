package reader

import (
	"encoding/binary"
	"fmt"
	"sync"

	bolt "go.etcd.io/bbolt"
)

// bucketOffsets maps an import file path to the byte offset just past the
// last imported line, encoded as a big-endian uint64.
var bucketOffsets = []byte("import_offsets")

// boltPositionStore keeps import offsets in a bbolt bucket.
type boltPositionStore struct {
	db *bolt.DB
}

// NewBoltPositionStore returns a PositionStore backed by db, creating its
// bucket if needed. The caller owns db and closes it.
func NewBoltPositionStore(db *bolt.DB) (PositionStore, error) {
	err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketOffsets)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create offsets bucket: %w", err)
	}

	return &boltPositionStore{db: db}, nil
}

// GetPosition implements PositionStore.GetPosition.
func (s *boltPositionStore) GetPosition(path string) (int64, error) {
	var offset int64

	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(bucketOffsets).Get([]byte(path))
		if data == nil {
			return nil
		}
		if len(data) != 8 {
			return fmt.Errorf("corrupt offset for %s: %d bytes", path, len(data))
		}

		offset = int64(binary.BigEndian.Uint64(data)) // nolint:gosec // written from a non-negative int64
		return nil
	})
	if err != nil {
		return 0, err
	}

	return offset, nil
}

// SetPosition implements PositionStore.SetPosition.
func (s *boltPositionStore) SetPosition(path string, offset int64) error {
	if offset < 0 {
		return ErrInvalidOffset
	}

	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, uint64(offset))

	return s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.Bucket(bucketOffsets).Put([]byte(path), buf); err != nil {
			return fmt.Errorf("failed to store offset for %s: %w", path, err)
		}
		return nil
	})
}

// memoryPositionStore keeps offsets for the lifetime of the process.
type memoryPositionStore struct {
	mu      sync.RWMutex
	offsets map[string]int64
}

// NewMemoryPositionStore returns a PositionStore that forgets everything on
// exit.
func NewMemoryPositionStore() PositionStore {
	return &memoryPositionStore{offsets: make(map[string]int64)}
}

// GetPosition implements PositionStore.GetPosition.
func (s *memoryPositionStore) GetPosition(path string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.offsets[path], nil
}

// SetPosition implements PositionStore.SetPosition.
func (s *memoryPositionStore) SetPosition(path string, offset int64) error {
	if offset < 0 {
		return ErrInvalidOffset
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.offsets[path] = offset
	return nil
}
