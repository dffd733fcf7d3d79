package store

import (
	"context"
	"sort"
	"sync"
)

// memoryStore is a Store for tests and throwaway runs; no persistence.
type memoryStore struct {
	mu      sync.RWMutex
	docs    map[string]Doc
	results []Result
	nextID  int64
}

func NewInMemoryStore() Store {
	return &memoryStore{docs: map[string]Doc{}}
}

func (m *memoryStore) PutDoc(_ context.Context, d Doc) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[d.ID] = d
	return nil
}

func (m *memoryStore) GetDoc(_ context.Context, id string) (Doc, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.docs[id]
	if !ok {
		return Doc{}, ErrNotFound
	}
	return d, nil
}

func (m *memoryStore) ListDocs(_ context.Context) ([]DocSummary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]DocSummary, 0, len(m.docs))
	for _, d := range m.docs {
		out = append(out, DocSummary{ID: d.ID, Title: d.Title, Source: d.Source, UpdatedAt: d.UpdatedAt})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].UpdatedAt != out[j].UpdatedAt {
			return out[i].UpdatedAt > out[j].UpdatedAt
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *memoryStore) DeleteDoc(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.docs[id]; !ok {
		return ErrNotFound
	}
	delete(m.docs, id)
	return nil
}

func (m *memoryStore) AddResult(_ context.Context, r Result) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	r.ID = m.nextID
	m.results = append(m.results, r)
	return nil
}

func (m *memoryStore) ListResults(_ context.Context, limit int) ([]Result, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if limit <= 0 {
		limit = 50
	}
	out := make([]Result, len(m.results))
	copy(out, m.results)
	sort.Slice(out, func(i, j int) bool {
		if out[i].FinishedAt != out[j].FinishedAt {
			return out[i].FinishedAt > out[j].FinishedAt
		}
		return out[i].ID > out[j].ID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memoryStore) ClearResults(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results = nil
	return nil
}
