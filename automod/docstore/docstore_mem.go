package docstore

import (
	"context"
	"sync"
)

// In-process document store, mostly for tests. Keeps a copy of the last saved document and counts saves.
type MemDocStore struct {
	mu    sync.Mutex
	doc   []byte
	saves int
	// if set, returned from every Save
	FailSave error
}

var _ DocStore = (*MemDocStore)(nil)

func NewMemDocStore() *MemDocStore {
	return &MemDocStore{}
}

func (s *MemDocStore) Load(ctx context.Context) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.doc == nil {
		return nil, nil
	}
	return append([]byte(nil), s.doc...), nil
}

func (s *MemDocStore) Save(ctx context.Context, doc []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailSave != nil {
		return s.FailSave
	}
	s.doc = append([]byte(nil), doc...)
	s.saves++
	return nil
}

// Number of successful saves so far.
func (s *MemDocStore) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}
