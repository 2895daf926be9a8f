package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"garagehub/internal/onboarding/models"
	id "garagehub/pkg/domain"
	"garagehub/pkg/platform/sentinel"
)

type InMemoryProfileStoreSuite struct {
	suite.Suite
	store *InMemory
	now   time.Time
}

func TestInMemoryProfileStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryProfileStoreSuite))
}

func (s *InMemoryProfileStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.now = time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)
}

func (s *InMemoryProfileStoreSuite) TestGetOrCreate() {
	s.Run("concurrent first visits share one profile", func() {
		expertID := id.ExpertID(uuid.New())
		var wg sync.WaitGroup
		for range 10 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, _ = s.store.GetOrCreate(context.Background(), expertID, s.now)
			}()
		}
		wg.Wait()
		s.Len(s.store.profiles, 1)
	})

	s.Run("returned profile is a copy", func() {
		expertID := id.ExpertID(uuid.New())
		p, err := s.store.GetOrCreate(context.Background(), expertID, s.now)
		s.Require().NoError(err)
		p.Phone = "mutated"

		again, err := s.store.FindByExpertID(context.Background(), expertID)
		s.Require().NoError(err)
		s.Empty(again.Phone)
	})
}

func (s *InMemoryProfileStoreSuite) TestExecute() {
	ctx := context.Background()
	expertID := id.ExpertID(uuid.New())

	_, err := s.store.Execute(ctx, expertID, func(*models.Profile) bool { return true })
	s.ErrorIs(err, sentinel.ErrNotFound)

	_, err = s.store.GetOrCreate(ctx, expertID, s.now)
	s.Require().NoError(err)

	_, err = s.store.Execute(ctx, expertID, func(p *models.Profile) bool {
		p.Phone = "discarded"
		return false
	})
	s.Require().NoError(err)
	found, _ := s.store.FindByExpertID(ctx, expertID)
	s.Empty(found.Phone, "unchanged mutations are not persisted")

	_, err = s.store.Execute(ctx, expertID, func(p *models.Profile) bool {
		p.Phone = "555"
		return true
	})
	s.Require().NoError(err)
	found, _ = s.store.FindByExpertID(ctx, expertID)
	s.Equal("555", found.Phone)
}
