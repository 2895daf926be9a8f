package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"garagehub/internal/audit"
	"garagehub/internal/onboarding/models"
	"garagehub/internal/onboarding/service/mocks"
	"garagehub/internal/onboarding/store"
	id "garagehub/pkg/domain"
	dErrors "garagehub/pkg/domain-errors"
	"garagehub/pkg/platform/sentinel"
	"garagehub/pkg/requestcontext"
)

func ptr[T any](v T) *T { return &v }

type OnboardingServiceSuite struct {
	suite.Suite
	ctrl      *gomock.Controller
	profiles  *store.InMemory
	geocoder  *mocks.MockGeocoder
	publisher *mocks.MockAuditPublisher
	service   *Service
	expertID  id.ExpertID
	ctx       context.Context
	now       time.Time
}

func TestOnboardingServiceSuite(t *testing.T) {
	suite.Run(t, new(OnboardingServiceSuite))
}

func (s *OnboardingServiceSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.profiles = store.NewInMemory()
	s.geocoder = mocks.NewMockGeocoder(s.ctrl)
	s.publisher = mocks.NewMockAuditPublisher(s.ctrl)
	s.expertID = id.ExpertID(uuid.New())
	s.now = time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)
	s.ctx = requestcontext.WithTime(context.Background(), s.now)

	var err error
	s.service, err = New(s.profiles, WithGeocoder(s.geocoder), WithAuditPublisher(s.publisher))
	s.Require().NoError(err)
}

func (s *OnboardingServiceSuite) TearDownTest() {
	s.ctrl.Finish()
}

func completeDraft() models.Draft {
	return models.Draft{
		Phone:           "555 0100",
		BusinessName:    "Torque Bros",
		BusinessType:    "garage",
		Address:         "12 Main St",
		Latitude:        ptr(39.78),
		Longitude:       ptr(-89.65),
		ServiceRadiusKm: 25,
		Specialties:     []string{"Brakes"},
	}
}

func (s *OnboardingServiceSuite) TestNew() {
	_, err := New(nil)
	s.Require().Error(err)
	s.Contains(err.Error(), "profile store is required")
}

func (s *OnboardingServiceSuite) TestSaveDraft() {
	s.Run("incomplete draft is saved", func() {
		p, err := s.service.SaveDraft(s.ctx, s.expertID, models.Draft{BusinessName: "  Torque  Bros "})
		s.Require().NoError(err)
		s.Equal("Torque Bros", p.BusinessName)
		s.False(p.ProfileCompleted)
	})

	s.Run("malformed draft is rejected", func() {
		_, err := s.service.SaveDraft(s.ctx, s.expertID, models.Draft{ServiceRadiusKm: -1})
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("store outage is transient", func() {
		failing := mocks.NewMockStore(s.ctrl)
		failing.EXPECT().GetOrCreate(gomock.Any(), s.expertID, s.now).
			Return(nil, errors.Join(sentinel.ErrUnavailable, errors.New("connection refused")))
		svc, err := New(failing)
		s.Require().NoError(err)

		_, err = svc.SaveDraft(s.ctx, s.expertID, models.Draft{Phone: "1"})
		s.True(dErrors.HasCode(err, dErrors.CodeTransient))
	})
}

func (s *OnboardingServiceSuite) TestComplete() {
	s.Run("incomplete draft lists failing fields and stays a draft", func() {
		_, err := s.service.Complete(s.ctx, s.expertID, models.Draft{Phone: "555", Latitude: ptr(1.0), Longitude: ptr(2.0)})
		s.Require().True(dErrors.HasCode(err, dErrors.CodeValidation))
		de, _ := dErrors.As(err)
		s.Contains(de.Fields, "business_name")
		s.Contains(de.Fields, "specialties")

		p, err := s.service.Get(s.ctx, s.expertID)
		s.Require().NoError(err)
		s.False(p.ProfileCompleted)
	})

	s.Run("complete draft marks the profile complete once", func() {
		s.publisher.EXPECT().Emit(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, e audit.Event) error {
				s.Equal(audit.ActionOnboardingCompleted, e.Action)
				s.Equal(s.expertID, e.ExpertID)
				return nil
			})

		p, err := s.service.Complete(s.ctx, s.expertID, completeDraft())
		s.Require().NoError(err)
		s.True(p.ProfileCompleted)
		s.Equal(s.now, *p.CompletedAt)
		s.Equal([]string{"brakes"}, p.Specialties)

		// second completion: no new audit event, timestamp kept
		later := requestcontext.WithTime(context.Background(), s.now.Add(time.Hour))
		again, err := s.service.Complete(later, s.expertID, completeDraft())
		s.Require().NoError(err)
		s.Equal(s.now, *again.CompletedAt)
	})
}

func (s *OnboardingServiceSuite) TestCompleteGeocodesMissingCoordinates() {
	s.geocoder.EXPECT().Geocode(gomock.Any(), "12 Main St").Return(39.78, -89.65, nil)
	s.publisher.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(nil)

	draft := completeDraft()
	draft.Latitude, draft.Longitude = nil, nil

	p, err := s.service.Complete(s.ctx, s.expertID, draft)
	s.Require().NoError(err)
	s.InDelta(39.78, *p.Latitude, 1e-9)
	s.InDelta(-89.65, *p.Longitude, 1e-9)
}

func (s *OnboardingServiceSuite) TestCompleteWithFailingGeocoderReportsCoordinates() {
	s.geocoder.EXPECT().Geocode(gomock.Any(), gomock.Any()).Return(0.0, 0.0, errors.New("quota exceeded"))

	draft := completeDraft()
	draft.Latitude, draft.Longitude = nil, nil

	_, err := s.service.Complete(s.ctx, s.expertID, draft)
	s.Require().True(dErrors.HasCode(err, dErrors.CodeValidation))
	de, _ := dErrors.As(err)
	s.Contains(de.Fields, "latitude")
	s.Contains(de.Fields, "longitude")
}

func (s *OnboardingServiceSuite) TestEnsureProfile() {
	s.Require().NoError(s.service.EnsureProfile(s.ctx, s.expertID, s.now))
	s.Require().NoError(s.service.EnsureProfile(s.ctx, s.expertID, s.now.Add(time.Hour)))

	p, err := s.profiles.FindByExpertID(s.ctx, s.expertID)
	s.Require().NoError(err)
	s.Equal(s.now, p.CreatedAt)
}
