package client

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"garagehub/internal/kyc/documents"
	kychandler "garagehub/internal/kyc/handler"
	kycmodels "garagehub/internal/kyc/models"
	kycservice "garagehub/internal/kyc/service"
	kycstore "garagehub/internal/kyc/store"
	onboardinghandler "garagehub/internal/onboarding/handler"
	onboardingservice "garagehub/internal/onboarding/service"
	onboardingstore "garagehub/internal/onboarding/store"
	"garagehub/internal/onboarding/wizard"
	jwttoken "garagehub/internal/platform/jwt"
	"garagehub/internal/platform/logger"
	httptransport "garagehub/internal/transport/http"
	id "garagehub/pkg/domain"
	dErrors "garagehub/pkg/domain-errors"
)

var _ wizard.Gateway = (*Client)(nil)

var pdfBytes = []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\ntrailer\n%%EOF\n")

// ClientSuite runs the client against the real handlers and in-memory stores.
type ClientSuite struct {
	suite.Suite
	server *httptest.Server
	client *Client
}

func TestClientSuite(t *testing.T) {
	suite.Run(t, new(ClientSuite))
}

func (s *ClientSuite) SetupTest() {
	profiles, err := onboardingservice.New(onboardingstore.NewInMemory())
	s.Require().NoError(err)
	records, err := kycservice.New(kycstore.NewInMemory(), documents.NewMemoryStore("https://files.test"),
		kycservice.WithExpertDirectory(profiles))
	s.Require().NoError(err)

	tokens := jwttoken.NewJWTService("test-key", "garagehub")
	validator := jwttoken.NewJWTServiceAdapter(tokens)
	token, err := tokens.GenerateAccessToken(id.UserID(uuid.New()), id.ExpertID(uuid.New()), []string{"expert"}, time.Hour)
	s.Require().NoError(err)

	router := httptransport.NewRouter(httptransport.Options{Logger: logger.Discard()},
		onboardinghandler.New(profiles, logger.Discard(), validator),
		kychandler.New(records, logger.Discard(), validator, 0),
	)
	s.server = httptest.NewServer(router)

	s.client, err = New(s.server.URL, token, WithHTTPClient(s.server.Client()))
	s.Require().NoError(err)
}

func (s *ClientSuite) TearDownTest() {
	s.server.Close()
}

func (s *ClientSuite) TestWizardRoundTrip() {
	ctx := context.Background()

	profile, err := s.client.GetProfile(ctx)
	s.Require().NoError(err)
	s.False(profile.ProfileCompleted)

	c := wizard.New(s.client, profile)
	s.Equal(wizard.StepBasicInfo, c.CurrentStep())
	s.Require().NoError(c.SetField(wizard.FieldPhone, "+1 555 0100"))
	s.Require().NoError(c.SetField(wizard.FieldBusinessName, "Quick  Fix Garage"))
	s.Require().NoError(c.SetField(wizard.FieldBusinessType, "independent"))
	s.Require().NoError(c.SaveAndExit(ctx))
	s.Equal(wizard.PhaseSaved, c.Phase())
	s.Equal("Quick Fix Garage", c.Draft().BusinessName)

	profile, err = s.client.GetProfile(ctx)
	s.Require().NoError(err)
	c = wizard.New(s.client, profile)
	s.Equal(wizard.StepLocation, c.CurrentStep(), "resumes at the first incomplete step")

	s.Require().NoError(c.SetField(wizard.FieldAddress, "1 Main St"))
	s.Require().NoError(c.SetField(wizard.FieldLatitude, 52.52))
	s.Require().NoError(c.SetField(wizard.FieldLongitude, 13.40))
	s.Require().NoError(c.SetField(wizard.FieldServiceRadiusKm, 25))
	s.Require().NoError(c.Next())
	s.Require().NoError(c.SetField(wizard.FieldSpecialties, []string{"Brakes", "brakes", "Diagnostics"}))
	s.Require().NoError(c.Next())
	s.Require().NoError(c.CompleteFinal(ctx))
	s.Equal(wizard.PhaseCompleted, c.Phase())
	s.Equal([]string{"brakes", "diagnostics"}, c.Draft().Specialties)

	profile, err = s.client.GetProfile(ctx)
	s.Require().NoError(err)
	s.True(profile.ProfileCompleted)
}

func (s *ClientSuite) TestWizardValidationError() {
	ctx := context.Background()
	profile, err := s.client.GetProfile(ctx)
	s.Require().NoError(err)

	c := wizard.New(s.client, profile)
	s.Require().NoError(c.SetField(wizard.FieldLatitude, 200.0))

	err = c.SaveAndExit(ctx)
	s.Require().Error(err)
	serverErr := c.ServerErrors()
	s.Require().NotNil(serverErr)
	s.Equal(wizard.ErrorKindValidation, serverErr.Kind)
	s.Contains(serverErr.Fields, "latitude")
	s.Equal(200.0, *c.Draft().Latitude, "draft kept after a failed save")
}

func (s *ClientSuite) TestKYCFlow() {
	ctx := context.Background()

	rec, err := s.client.GetKYC(ctx)
	s.Require().NoError(err)
	s.Equal(kycmodels.StatusNotStarted, rec.Status)

	number := "BL-1234"
	rec, err = s.client.UpdateKYC(ctx, kycmodels.Patch{BusinessLicenseNumber: &number})
	s.Require().NoError(err)
	s.Equal("BL-1234", rec.BusinessLicenseNumber)
	s.Equal(kycmodels.StatusInProgress, rec.Status)

	put, err := s.client.UploadDocument(ctx, "business_license", "license.pdf", bytes.NewReader(pdfBytes), nil)
	s.Require().NoError(err)
	s.NotEmpty(put.URL)
	s.Require().NotNil(put.Record.BusinessLicenseDocument)
	s.Greater(put.Record.CompletionPercentage, rec.CompletionPercentage)

	_, err = s.client.SubmitKYC(ctx)
	s.Require().Error(err)
	de, ok := dErrors.As(err)
	s.Require().True(ok)
	s.Equal(dErrors.CodeIncompleteSubmission, de.Code)
	s.NotEmpty(de.Items)

	rec, err = s.client.RemoveDocument(ctx, "business_license")
	s.Require().NoError(err)
	s.Nil(rec.BusinessLicenseDocument)
}

func (s *ClientSuite) TestCertificationSlot() {
	put, err := s.client.UploadDocument(context.Background(), "certification[0]", "ase.pdf", bytes.NewReader(pdfBytes),
		map[string]string{"certification_name": "ASE Master"})
	s.Require().NoError(err)
	s.Require().Len(put.Record.Certifications, 1)
	s.Equal("ASE Master", put.Record.Certifications[0].Name)
}

func (s *ClientSuite) TestInvalidUpload() {
	_, err := s.client.UploadDocument(context.Background(), "utility_bill", "bill.txt", bytes.NewReader([]byte("plain text")), nil)
	s.Require().Error(err)
	s.Equal(dErrors.CodeInvalidUpload, dErrors.CodeOf(err))
}

func (s *ClientSuite) TestUnauthorized() {
	c, err := New(s.server.URL, "not-a-token", WithHTTPClient(s.server.Client()))
	s.Require().NoError(err)

	_, err = c.GetKYC(context.Background())
	s.Require().Error(err)
	s.Equal(dErrors.CodeUnauthorized, dErrors.CodeOf(err))
}

func TestTransportErrors(t *testing.T) {
	t.Run("unreachable server is transient", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		c, err := New(url, "token")
		require.NoError(t, err)
		_, err = c.GetProfile(context.Background())
		require.Error(t, err)
		assert.Equal(t, dErrors.CodeTransient, dErrors.CodeOf(err))
	})

	t.Run("non-envelope 5xx is transient", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "bad gateway", http.StatusBadGateway)
		}))
		defer srv.Close()

		c, err := New(srv.URL, "token")
		require.NoError(t, err)
		_, err = c.SaveDraft(context.Background(), onboardingDraft())
		require.Error(t, err)
		assert.Equal(t, dErrors.CodeTransient, dErrors.CodeOf(err))
	})

	t.Run("envelope fields are kept", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnprocessableEntity)
			_, _ = w.Write([]byte(`{"error":"validation_error","error_description":"validation failed: is required","fields":{"phone":"is required"}}`))
		}))
		defer srv.Close()

		c, err := New(srv.URL, "token")
		require.NoError(t, err)
		_, err = c.Complete(context.Background(), onboardingDraft())
		de, ok := dErrors.As(err)
		require.True(t, ok)
		assert.Equal(t, dErrors.CodeValidation, de.Code)
		assert.Equal(t, map[string]string{"phone": "is required"}, de.Fields)
	})
}

func TestBuildURL(t *testing.T) {
	u, err := buildURL("https://api.test/v1/", "experts", "me", "kyc", "documents", "certification[2]")
	require.NoError(t, err)
	assert.Equal(t, "https://api.test/v1/experts/me/kyc/documents/certification%5B2%5D", u)
}

func TestNewRejectsEmptyBaseURL(t *testing.T) {
	_, err := New("", "token")
	assert.Error(t, err)
}
