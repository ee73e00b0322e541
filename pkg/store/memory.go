package store

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"
)

// MemoryStore keeps documents in process memory.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string]*Document
	now  func() time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[string]*Document), now: time.Now}
}

func (s *MemoryStore) Save(_ context.Context, doc *Document) error {
	if err := prepare(doc, s.now); err != nil {
		return err
	}
	cp := clone(doc)
	s.mu.Lock()
	s.docs[doc.ID] = cp
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (*Document, error) {
	s.mu.RLock()
	doc, ok := s.docs[id]
	s.mu.RUnlock()
	if !ok {
		return nil, notFound(id)
	}
	return clone(doc), nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[id]; !ok {
		return notFound(id)
	}
	delete(s.docs, id)
	return nil
}

func (s *MemoryStore) List(_ context.Context) ([]Summary, error) {
	s.mu.RLock()
	out := make([]Summary, 0, len(s.docs))
	for _, d := range s.docs {
		out = append(out, d.Summarize())
	}
	s.mu.RUnlock()
	sortSummaries(out)
	return out, nil
}

func (s *MemoryStore) Close() error { return nil }

// clone copies the slices of d so callers cannot mutate stored state.
func clone(d *Document) *Document {
	cp := *d
	cp.Items = slices.Clone(d.Items)
	cp.Geometry = slices.Clone(d.Geometry)
	for i := range cp.Geometry {
		cp.Geometry[i].Node = nil
	}
	cp.Config = d.Config.Clone()
	return &cp
}

// sortSummaries orders newest first, then by ID for a stable listing.
func sortSummaries(s []Summary) {
	slices.SortFunc(s, func(a, b Summary) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}
