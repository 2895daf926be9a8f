// Package client is the Go client of the garagehub expert API. It implements
// the onboarding wizard's Gateway and the KYC calls the wizard UI makes.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"path"
	"time"

	kycmodels "garagehub/internal/kyc/models"
	"garagehub/internal/onboarding/models"
	dErrors "garagehub/pkg/domain-errors"
	"garagehub/pkg/platform/httputil"
)

// DefaultTimeout is the maximum time to wait for a response.
const DefaultTimeout = 30 * time.Second

// Client calls the garagehub API on behalf of one signed-in expert.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *slog.Logger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// New creates a client for baseURL authenticating with the bearer token.
func New(baseURL, token string, opts ...Option) (*Client, error) {
	if _, err := url.Parse(baseURL); err != nil || baseURL == "" {
		return nil, fmt.Errorf("invalid base URL %q", baseURL)
	}
	c := &Client{
		baseURL:    baseURL,
		token:      token,
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.New(slog.DiscardHandler)
	}
	return c, nil
}

// GetProfile loads the expert's onboarding profile.
func (c *Client) GetProfile(ctx context.Context) (*models.Profile, error) {
	var p models.Profile
	if err := c.doJSON(ctx, http.MethodGet, nil, &p, "experts", "me", "onboarding"); err != nil {
		return nil, err
	}
	return &p, nil
}

// SaveDraft persists the wizard draft without any completeness gate.
func (c *Client) SaveDraft(ctx context.Context, draft models.Draft) (*models.Profile, error) {
	var p models.Profile
	if err := c.doJSON(ctx, http.MethodPatch, draft, &p, "experts", "me", "onboarding"); err != nil {
		return nil, err
	}
	return &p, nil
}

// Complete submits the draft as the finished profile.
func (c *Client) Complete(ctx context.Context, draft models.Draft) (*models.Profile, error) {
	var p models.Profile
	if err := c.doJSON(ctx, http.MethodPost, draft, &p, "experts", "me", "onboarding", "complete"); err != nil {
		return nil, err
	}
	return &p, nil
}

// GetKYC loads the expert's KYC record, creating it on first access.
func (c *Client) GetKYC(ctx context.Context) (*kycmodels.RecordResponse, error) {
	var rec kycmodels.RecordResponse
	if err := c.doJSON(ctx, http.MethodGet, nil, &rec, "experts", "me", "kyc"); err != nil {
		return nil, err
	}
	return &rec, nil
}

// UpdateKYC merges patch into the KYC record.
func (c *Client) UpdateKYC(ctx context.Context, patch kycmodels.Patch) (*kycmodels.RecordResponse, error) {
	var rec kycmodels.RecordResponse
	if err := c.doJSON(ctx, http.MethodPatch, patch, &rec, "experts", "me", "kyc"); err != nil {
		return nil, err
	}
	return &rec, nil
}

// SubmitKYC runs the server-side submission gate.
func (c *Client) SubmitKYC(ctx context.Context) (*kycmodels.RecordResponse, error) {
	var rec kycmodels.RecordResponse
	if err := c.doJSON(ctx, http.MethodPost, nil, &rec, "experts", "me", "kyc", "submit"); err != nil {
		return nil, err
	}
	return &rec, nil
}

// UploadDocument stores a file in slot. fields carries optional metadata such
// as business_license_number or certification_name.
func (c *Client) UploadDocument(ctx context.Context, slot, filename string, content io.Reader, fields map[string]string) (*kycmodels.PutDocumentResponse, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			return nil, fmt.Errorf("failed to write form field: %w", err)
		}
	}
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return nil, fmt.Errorf("failed to read document: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to close multipart body: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, &buf, "experts", "me", "kyc", "documents", slot)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var out kycmodels.PutDocumentResponse
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RemoveDocument empties slot.
func (c *Client) RemoveDocument(ctx context.Context, slot string) (*kycmodels.RecordResponse, error) {
	var rec kycmodels.RecordResponse
	if err := c.doJSON(ctx, http.MethodDelete, nil, &rec, "experts", "me", "kyc", "documents", slot); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (c *Client) doJSON(ctx context.Context, method string, in, out any, segments ...string) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(raw)
	}
	req, err := c.newRequest(ctx, method, body, segments...)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.do(req, out)
}

func (c *Client) newRequest(ctx context.Context, method string, body io.Reader, segments ...string) (*http.Request, error) {
	endpoint, err := buildURL(c.baseURL, segments...)
	if err != nil {
		return nil, fmt.Errorf("failed to build URL: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
	return req, nil
}

// do executes req and decodes a 2xx body into out. Error envelopes become
// domain errors carrying the server's code, fields and checklist; transport
// failures become transient errors.
func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return dErrors.Wrap(err, dErrors.CodeTimeout, "request timed out")
		}
		return dErrors.Wrap(err, dErrors.CodeTransient, "failed to reach garagehub")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeTransient, "failed to read response")
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.WarnContext(req.Context(), "garagehub returned error",
			"method", req.Method,
			"url", req.URL.Redacted(),
			"status", resp.StatusCode,
		)
		return decodeError(resp.StatusCode, body)
	}

	if out == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to parse response")
	}
	return nil
}

func decodeError(status int, body []byte) error {
	var envelope httputil.ErrorResponse
	if err := json.Unmarshal(body, &envelope); err != nil || envelope.Error == "" {
		code := dErrors.CodeInternal
		if status >= 500 {
			code = dErrors.CodeTransient
		}
		return dErrors.New(code, fmt.Sprintf("unexpected status %d", status))
	}
	return &dErrors.Error{
		Code:    dErrors.Code(envelope.Error),
		Message: envelope.ErrorDescription,
		Fields:  envelope.Fields,
		Items:   envelope.Errors,
	}
}

// buildURL constructs a URL by parsing the base and joining escaped path
// segments.
func buildURL(baseURL string, segments ...string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid base URL: %w", err)
	}
	escaped := make([]string, 0, len(segments)+1)
	escaped = append(escaped, "/"+u.EscapedPath())
	for _, s := range segments {
		escaped = append(escaped, url.PathEscape(s))
	}
	joined := path.Join(escaped...)
	unescaped, err := url.PathUnescape(joined)
	if err != nil {
		return "", fmt.Errorf("invalid path: %w", err)
	}
	u.Path = unescaped
	u.RawPath = joined
	return u.String(), nil
}
