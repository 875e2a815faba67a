package storage

import (
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/matzehuels/mindtree/pkg/errors"
	"github.com/matzehuels/mindtree/pkg/format"
)

// MemoryStore keeps documents in a map. Stored documents are copied on Put
// and Get.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string]format.Document
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[string]format.Document)}
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*format.Document, error) {
	if err := errors.ValidateMapID(id); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[id]
	if !ok {
		return nil, notFound(id)
	}
	return cloneDoc(doc), nil
}

func (s *MemoryStore) Put(ctx context.Context, id string, doc *format.Document) error {
	if err := errors.ValidateMapID(id); err != nil {
		return err
	}
	if err := checkDoc(doc); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[id] = *cloneDoc(*doc)
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	if err := errors.ValidateMapID(id); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs, id)
	return nil
}

func (s *MemoryStore) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Sorted(maps.Keys(s.docs)), nil
}

func (s *MemoryStore) Close() error { return nil }

func cloneDoc(doc format.Document) *format.Document {
	doc.Data = slices.Clone(doc.Data)
	return &doc
}

var _ Store = (*MemoryStore)(nil)
