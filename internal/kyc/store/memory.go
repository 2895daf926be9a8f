// Package store persists KYC records. Every implementation hands out copies,
// serializes Execute per expert and creates at most one record per expert.
package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"garagehub/internal/kyc/models"
	id "garagehub/pkg/domain"
	"garagehub/pkg/platform/sentinel"
)

// InMemory is a process-local store for development and tests.
type InMemory struct {
	mu      sync.Mutex
	records map[id.ExpertID]*models.Record
}

func NewInMemory() *InMemory {
	return &InMemory{records: make(map[id.ExpertID]*models.Record)}
}

func (s *InMemory) GetOrCreate(ctx context.Context, expertID id.ExpertID, now time.Time) (*models.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if r, ok := s.records[expertID]; ok {
		return r.Clone(), nil
	}
	r := models.NewRecord(id.KYCRecordID(uuid.New()), expertID, now)
	s.records[expertID] = r
	return r.Clone(), nil
}

func (s *InMemory) FindByExpertID(ctx context.Context, expertID id.ExpertID) (*models.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.records[expertID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return r.Clone(), nil
}

// Execute runs validate then mutate against the stored record while holding
// the lock. A validate error aborts without changes; mutate reports whether
// it changed anything.
func (s *InMemory) Execute(ctx context.Context, expertID id.ExpertID, validate func(*models.Record) error, mutate func(*models.Record) bool) (*models.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.records[expertID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}

	working := current.Clone()
	if err := validate(working); err != nil {
		return nil, err
	}
	if mutate(working) {
		s.records[expertID] = working
	}
	return working.Clone(), nil
}

// ListByStatus returns records in status ordered by last update, oldest first.
func (s *InMemory) ListByStatus(ctx context.Context, status models.Status, limit int) ([]*models.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*models.Record
	for _, r := range s.records {
		if r.Status == status {
			out = append(out, r.Clone())
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].UpdatedAt.Before(out[j].UpdatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
