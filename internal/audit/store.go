package audit

import (
	"context"
	"sync"

	id "garagehub/pkg/domain"
)

// DefaultMemoryLimit is the number of events MemoryStore keeps per expert.
const DefaultMemoryLimit = 256

// Sink persists or forwards events.
type Sink interface {
	Append(ctx context.Context, event Event) error
}

// MemoryStore keeps the most recent events per expert, dropping the oldest
// once an expert reaches the limit. Used in development, in tests and as the
// sink while Kafka is unreachable.
type MemoryStore struct {
	mu      sync.RWMutex
	limit   int
	events  map[id.ExpertID][]Event
	dropped int64
}

type MemoryOption func(*MemoryStore)

// WithLimit overrides DefaultMemoryLimit. Values below one are ignored.
func WithLimit(n int) MemoryOption {
	return func(s *MemoryStore) {
		if n > 0 {
			s.limit = n
		}
	}
}

func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	s := &MemoryStore{limit: DefaultMemoryLimit, events: make(map[id.ExpertID][]Event)}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *MemoryStore) Append(_ context.Context, event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.events[event.ExpertID]
	if len(list) < s.limit {
		s.events[event.ExpertID] = append(list, event)
		return nil
	}
	copy(list, list[1:])
	list[len(list)-1] = event
	s.dropped++
	return nil
}

// ListByExpert returns the retained events for expertID, oldest first.
func (s *MemoryStore) ListByExpert(_ context.Context, expertID id.ExpertID) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Event{}, s.events[expertID]...), nil
}

// Dropped reports how many events were evicted to stay within the limit.
func (s *MemoryStore) Dropped() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dropped
}
