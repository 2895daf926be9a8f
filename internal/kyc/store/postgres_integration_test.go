//go:build integration

package store_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"garagehub/internal/kyc/models"
	"garagehub/internal/kyc/store"
	id "garagehub/pkg/domain"
	"garagehub/pkg/platform/sentinel"
	"garagehub/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.PostgresStore
	now      time.Time
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.GetManager().GetPostgres(s.T())
	s.store = store.NewPostgres(s.postgres.DB)
	s.now = time.Now().UTC().Truncate(time.Second)
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "kyc_records", "expert_profiles"))
}

func (s *PostgresStoreSuite) newExpert() id.ExpertID {
	expertID := id.ExpertID(uuid.New())
	_, err := s.postgres.DB.Exec(
		`INSERT INTO expert_profiles (expert_id, created_at, updated_at) VALUES ($1, $2, $2)`,
		uuid.UUID(expertID), s.now)
	s.Require().NoError(err)
	return expertID
}

func (s *PostgresStoreSuite) TestGetOrCreateIsIdempotentUnderConcurrency() {
	ctx := context.Background()
	expertID := s.newExpert()

	const goroutines = 20
	ids := make([]id.KYCRecordID, goroutines)
	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			r, err := s.store.GetOrCreate(ctx, expertID, s.now)
			if err == nil {
				ids[i] = r.ID
			}
		}(i)
	}
	wg.Wait()

	for _, got := range ids {
		s.Equal(ids[0], got)
	}
	var count int
	s.Require().NoError(s.postgres.DB.QueryRow(
		`SELECT COUNT(*) FROM kyc_records WHERE expert_id = $1`, uuid.UUID(expertID)).Scan(&count))
	s.Equal(1, count)
}

func (s *PostgresStoreSuite) TestExecuteRoundTripsEveryField() {
	ctx := context.Background()
	expertID := s.newExpert()
	_, err := s.store.GetOrCreate(ctx, expertID, s.now)
	s.Require().NoError(err)

	expiry := models.DateOf(s.now).AddDate(1, 0, 0)
	doc := &models.Document{Path: "kyc/a.pdf", URL: "https://cdn/kyc/a.pdf", ContentType: "application/pdf", Size: 42, UploadedAt: s.now}

	_, err = s.store.Execute(ctx, expertID, func(*models.Record) error { return nil }, func(r *models.Record) bool {
		r.BusinessLicenseNumber = "BL-1"
		r.BusinessLicenseExpiry = &expiry
		r.IDType = models.IDTypePassport
		r.BusinessLicenseDocument = doc
		r.CriminalRecordDisclosure = models.DisclosureDisclosed
		r.CriminalRecordDetails = "details"
		r.Certifications = []models.Certification{{Index: 0, Name: "ASE", Document: doc}}
		r.ProfessionalReferences = []models.Reference{{Name: "Sam", Email: "sam@example.com"}}
		r.Touch(s.now)
		return true
	})
	s.Require().NoError(err)

	found, err := s.store.FindByExpertID(ctx, expertID)
	s.Require().NoError(err)
	s.Equal(models.StatusInProgress, found.Status)
	s.Equal("BL-1", found.BusinessLicenseNumber)
	s.True(expiry.Equal(*found.BusinessLicenseExpiry))
	s.Equal(models.IDTypePassport, found.IDType)
	s.Require().NotNil(found.BusinessLicenseDocument)
	s.Equal(doc.Path, found.BusinessLicenseDocument.Path)
	s.Nil(found.InsuranceCertificate)
	s.Require().Len(found.Certifications, 1)
	s.Equal("ASE", found.Certifications[0].Name)
	s.Equal("Sam", found.ProfessionalReferences[0].Name)
	s.Equal(models.ComputeCompletion(found), found.CompletionPercentage)
}

func (s *PostgresStoreSuite) TestExecuteSerializesWriters() {
	ctx := context.Background()
	expertID := s.newExpert()
	_, err := s.store.GetOrCreate(ctx, expertID, s.now)
	s.Require().NoError(err)

	const writers = 10
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = s.store.Execute(ctx, expertID, func(*models.Record) error { return nil }, func(r *models.Record) bool {
				r.ProfessionalReferences = append(r.ProfessionalReferences, models.Reference{Name: "ref"})
				return true
			})
		}()
	}
	wg.Wait()

	found, err := s.store.FindByExpertID(ctx, expertID)
	s.Require().NoError(err)
	s.Len(found.ProfessionalReferences, writers, "no update was lost")
}

func (s *PostgresStoreSuite) TestMissingRecord() {
	_, err := s.store.FindByExpertID(context.Background(), id.ExpertID(uuid.New()))
	s.ErrorIs(err, sentinel.ErrNotFound)

	_, err = s.store.Execute(context.Background(), id.ExpertID(uuid.New()),
		func(*models.Record) error { return nil }, func(*models.Record) bool { return true })
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestListByStatus() {
	ctx := context.Background()
	for i := 0; i < 2; i++ {
		expertID := s.newExpert()
		_, err := s.store.GetOrCreate(ctx, expertID, s.now)
		s.Require().NoError(err)
		_, err = s.store.Execute(ctx, expertID, func(*models.Record) error { return nil }, func(r *models.Record) bool {
			r.Status = models.StatusSubmitted
			return true
		})
		s.Require().NoError(err)
	}

	queue, err := s.store.ListByStatus(ctx, models.StatusSubmitted, 10)
	s.Require().NoError(err)
	s.Len(queue, 2)
}
