package repositories

import (
	"context"
	"path"
	"slices"
	"sync"

	"github.com/samber/lo"
)

// Blob is a stored object with its content type.
type Blob struct {
	Data        []byte
	ContentType string
}

// MemoryStore keeps blobs in memory, keyed by container/name. It is safe for concurrent use.
type MemoryStore struct {
	mu    sync.RWMutex
	blobs map[string]Blob
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{blobs: make(map[string]Blob)}
}

func (s *MemoryStore) Upload(_ context.Context, container, name string, data []byte, contentType string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.blobs[path.Join(container, name)] = Blob{Data: slices.Clone(data), ContentType: contentType}
	return nil
}

// Get returns a copy of the blob stored under container/name.
func (s *MemoryStore) Get(container, name string) (Blob, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.blobs[path.Join(container, name)]
	if !ok {
		return Blob{}, false
	}
	return Blob{Data: slices.Clone(b.Data), ContentType: b.ContentType}, true
}

// Names lists stored blob keys in sorted order.
func (s *MemoryStore) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := lo.Keys(s.blobs)
	slices.Sort(names)
	return names
}
