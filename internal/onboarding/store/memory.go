// Package store persists expert profiles.
package store

import (
	"context"
	"sync"
	"time"

	"garagehub/internal/onboarding/models"
	id "garagehub/pkg/domain"
	"garagehub/pkg/platform/sentinel"
)

// InMemory is a process-local profile store for development and tests.
type InMemory struct {
	mu       sync.Mutex
	profiles map[id.ExpertID]*models.Profile
}

func NewInMemory() *InMemory {
	return &InMemory{profiles: make(map[id.ExpertID]*models.Profile)}
}

func (s *InMemory) GetOrCreate(ctx context.Context, expertID id.ExpertID, now time.Time) (*models.Profile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if p, ok := s.profiles[expertID]; ok {
		return p.Clone(), nil
	}
	p := models.NewProfile(expertID, now)
	s.profiles[expertID] = p
	return p.Clone(), nil
}

func (s *InMemory) FindByExpertID(ctx context.Context, expertID id.ExpertID) (*models.Profile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.profiles[expertID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return p.Clone(), nil
}

// Execute applies mutate to the stored profile under the lock and persists
// it when mutate reports a change.
func (s *InMemory) Execute(ctx context.Context, expertID id.ExpertID, mutate func(*models.Profile) bool) (*models.Profile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.profiles[expertID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	working := current.Clone()
	if mutate(working) {
		s.profiles[expertID] = working
	}
	return working.Clone(), nil
}
