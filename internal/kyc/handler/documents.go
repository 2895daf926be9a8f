package handler

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"garagehub/internal/kyc/documents"
	"garagehub/internal/kyc/models"
	dErrors "garagehub/pkg/domain-errors"
	"garagehub/pkg/platform/httputil"
	"garagehub/pkg/requestcontext"
)

// multipartOverhead leaves room for part headers and metadata fields on top
// of the file itself.
const multipartOverhead int64 = 64 << 10

// metadata form fields accepted alongside an upload
const (
	fieldBusinessLicenseNumber = "business_license_number"
	fieldBusinessLicenseExpiry = "business_license_expiry"
	fieldInsurancePolicyNumber = "insurance_policy_number"
	fieldInsuranceExpiry       = "insurance_expiry"
	fieldInsuranceProvider     = "insurance_provider"
	fieldIDType                = "id_type"
	fieldIDNumber              = "id_number"
	fieldCertificationName     = "certification_name"
)

func (h *Handler) handlePutDocument(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	expertID := requestcontext.ExpertID(ctx)

	slot, ok := h.slotParam(w, r)
	if !ok {
		return
	}

	upload, meta, err := h.readUpload(w, r)
	if err != nil {
		h.fail(ctx, w, "rejected document upload", err)
		return
	}

	doc, rec, err := h.service.PutDocument(ctx, expertID, slot, upload, meta)
	if err != nil {
		h.fail(ctx, w, "failed to store document", err)
		return
	}

	h.logger.InfoContext(ctx, "document uploaded",
		"request_id", requestcontext.RequestID(ctx),
		"expert_id", expertID.String(),
		"slot", slot.String(),
		"size", doc.Size,
	)
	httputil.WriteJSON(w, http.StatusOK, models.PutDocumentResponse{
		Path:   doc.Path,
		URL:    doc.URL,
		Record: models.ToResponse(rec),
	})
}

func (h *Handler) handleRemoveDocument(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	expertID := requestcontext.ExpertID(ctx)

	slot, ok := h.slotParam(w, r)
	if !ok {
		return
	}

	rec, err := h.service.RemoveDocument(ctx, expertID, slot)
	if err != nil {
		h.fail(ctx, w, "failed to remove document", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, models.ToResponse(rec))
}

// readUpload parses the multipart body. Oversized bodies are reported as an
// invalid upload before the service ever sees them.
func (h *Handler) readUpload(w http.ResponseWriter, r *http.Request) (documents.Upload, models.DocumentMetadata, error) {
	limit := h.maxUploadBytes + multipartOverhead
	r.Body = http.MaxBytesReader(w, r.Body, limit)

	if err := r.ParseMultipartForm(limit); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) || strings.Contains(err.Error(), "request body too large") {
			return documents.Upload{}, models.DocumentMetadata{}, dErrors.New(dErrors.CodeInvalidUpload,
				fmt.Sprintf("file exceeds the %d MB limit", h.maxUploadBytes>>20))
		}
		return documents.Upload{}, models.DocumentMetadata{}, dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid multipart body")
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	file, header, err := r.FormFile("file")
	if err != nil {
		return documents.Upload{}, models.DocumentMetadata{}, dErrors.New(dErrors.CodeInvalidUpload, "file is required")
	}
	defer file.Close()

	content, err := io.ReadAll(io.LimitReader(file, h.maxUploadBytes+1))
	if err != nil {
		return documents.Upload{}, models.DocumentMetadata{}, dErrors.Wrap(err, dErrors.CodeBadRequest, "failed to read file")
	}

	return documents.Upload{Filename: header.Filename, Content: content}, metadataFrom(r.MultipartForm), nil
}

func metadataFrom(form *multipart.Form) models.DocumentMetadata {
	value := func(key string) *string {
		if form == nil {
			return nil
		}
		values, ok := form.Value[key]
		if !ok || len(values) == 0 {
			return nil
		}
		v := values[0]
		return &v
	}

	return models.DocumentMetadata{
		Patch: models.Patch{
			BusinessLicenseNumber: value(fieldBusinessLicenseNumber),
			BusinessLicenseExpiry: value(fieldBusinessLicenseExpiry),
			InsurancePolicyNumber: value(fieldInsurancePolicyNumber),
			InsuranceExpiry:       value(fieldInsuranceExpiry),
			InsuranceProvider:     value(fieldInsuranceProvider),
			IDType:                value(fieldIDType),
			IDNumber:              value(fieldIDNumber),
		},
		CertificationName: value(fieldCertificationName),
	}
}
