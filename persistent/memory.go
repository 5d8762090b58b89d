package persistent

import (
	"github.com/pkg/errors"

	"github.com/outofforest/voxel/types"
)

// NewMemoryStore creates new in-memory "persistent" store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// MemoryStore defines "persistent" in-memory store. Used for testing.
type MemoryStore struct {
	data []byte
}

// Size returns size of the stored image.
func (s *MemoryStore) Size() uint64 {
	return uint64(len(s.data))
}

// Write stores copy of the image.
func (s *MemoryStore) Write(image []byte) error {
	s.data = append(s.data[:0], image...)
	return nil
}

// Read returns stored image.
func (s *MemoryStore) Read() ([]byte, func(), error) {
	if s.data == nil {
		return nil, nil, errors.Wrap(types.ErrFileNotFound, "nothing has been stored")
	}
	return s.data, func() {}, nil
}

// Bytes returns the stored image. Modifying it changes the store content.
func (s *MemoryStore) Bytes() []byte {
	return s.data
}

// Truncate shortens stored image to the size.
func (s *MemoryStore) Truncate(size uint64) {
	s.data = s.data[:size]
}
