package journal

import (
	"context"
	"sync"
)

// MemoryStore keeps journal records in memory, in append order. It is safe
// for concurrent use. Records are never evicted; it is meant for tests,
// tooling, and short-lived processes.
type MemoryStore struct {
	mu   sync.RWMutex
	recs []Record
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Append(ctx context.Context, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recs = append(s.recs, rec)
	return nil
}

func (s *MemoryStore) List(ctx context.Context, f Filter) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Record
	for _, rec := range s.recs {
		if f.Field != "" && rec.Field != f.Field {
			continue
		}
		if f.Transition != "" && rec.Transition != f.Transition {
			continue
		}
		out = append(out, rec)
		if f.Limit > 0 && len(out) == f.Limit {
			break
		}
	}
	return out, nil
}

// Len returns the number of stored records.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.recs)
}
