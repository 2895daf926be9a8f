package models

import (
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	dErrors "garagehub/pkg/domain-errors"
)

// DocumentResponse is the public view of a stored document.
type DocumentResponse struct {
	Path        string    `json:"path"`
	URL         string    `json:"url"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	UploadedAt  time.Time `json:"uploaded_at"`
}

type CertificationResponse struct {
	Index    int               `json:"index"`
	Name     string            `json:"name,omitempty"`
	Document *DocumentResponse `json:"document,omitempty"`
}

// RecordResponse is the KYC record as returned to clients. Dates use
// DateLayout.
type RecordResponse struct {
	ID          string `json:"id"`
	ExpertID    string `json:"expert_id"`
	Status      Status `json:"status"`
	CurrentStep int    `json:"current_step"`

	BusinessLicenseNumber string `json:"business_license_number"`
	BusinessLicenseExpiry string `json:"business_license_expiry"`
	InsurancePolicyNumber string `json:"insurance_policy_number"`
	InsuranceExpiry       string `json:"insurance_expiry"`
	InsuranceProvider     string `json:"insurance_provider"`
	IDType                string `json:"id_type"`
	IDNumber              string `json:"id_number"`

	BusinessLicenseDocument *DocumentResponse `json:"business_license_document"`
	InsuranceCertificate    *DocumentResponse `json:"insurance_certificate"`
	IDDocumentFront         *DocumentResponse `json:"id_document_front"`
	IDDocumentBack          *DocumentResponse `json:"id_document_back"`
	UtilityBill             *DocumentResponse `json:"utility_bill"`

	BackgroundCheckConsent   bool   `json:"background_check_consent"`
	BackgroundCheckStatus    string `json:"background_check_status"`
	CriminalRecordDisclosure string `json:"criminal_record_disclosure"`
	CriminalRecordDetails    string `json:"criminal_record_details"`

	Certifications         []CertificationResponse `json:"certifications"`
	ProfessionalReferences []Reference             `json:"professional_references"`

	CompletionPercentage      int        `json:"completion_percentage"`
	RequiredDocumentsUploaded bool       `json:"required_documents_uploaded"`
	MissingItems              []string   `json:"missing_items"`
	SubmittedAt               *time.Time `json:"kyc_submitted_at"`
	ReviewedAt                *time.Time `json:"kyc_reviewed_at"`
	ApprovedAt                *time.Time `json:"kyc_approved_at"`
	RejectionReason           string     `json:"rejection_reason,omitempty"`
	CreatedAt                 time.Time  `json:"created_at"`
	UpdatedAt                 time.Time  `json:"updated_at"`
}

// PutDocumentResponse is returned by an upload.
type PutDocumentResponse struct {
	Path   string          `json:"path"`
	URL    string          `json:"url"`
	Record *RecordResponse `json:"record"`
}

// RejectRequest is the reviewer's rejection payload.
type RejectRequest struct {
	Reason string `json:"reason" validate:"required,max=1000"`
}

// BackgroundCheckRequest sets the reviewer-owned background check status.
type BackgroundCheckRequest struct {
	Status string `json:"status" validate:"required,oneof=pending clear flagged"`
}

// Validate trims the reason and checks it is present.
func (r *RejectRequest) Validate() error {
	r.Reason = strings.TrimSpace(r.Reason)
	return structErrors(validate.Struct(r))
}

// Validate checks the status is one a reviewer may set.
func (r *BackgroundCheckRequest) Validate() error {
	r.Status = strings.TrimSpace(r.Status)
	return structErrors(validate.Struct(r))
}

// QueueResponse lists records awaiting review.
type QueueResponse struct {
	Records []*RecordResponse `json:"records"`
	Count   int               `json:"count"`
}

// ToQueueResponse converts a review queue page to its wire form.
func ToQueueResponse(records []*Record) *QueueResponse {
	resp := &QueueResponse{Records: make([]*RecordResponse, 0, len(records))}
	for _, r := range records {
		resp.Records = append(resp.Records, ToResponse(r))
	}
	resp.Count = len(resp.Records)
	return resp
}

// structErrors maps validator failures to a field-keyed validation error.
func structErrors(err error) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return dErrors.New(dErrors.CodeBadRequest, "invalid request")
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		name := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			fields[name] = "is required"
		case "max":
			fields[name] = "must be at most " + fe.Param() + " characters"
		case "oneof":
			fields[name] = "must be one of " + strings.ReplaceAll(fe.Param(), " ", ", ")
		default:
			fields[name] = "is invalid"
		}
	}
	return dErrors.NewValidation(fields)
}

// ToResponse converts the aggregate to its wire form.
func ToResponse(r *Record) *RecordResponse {
	if r == nil {
		return nil
	}
	resp := &RecordResponse{
		ID:                        r.ID.String(),
		ExpertID:                  r.ExpertID.String(),
		Status:                    r.Status,
		CurrentStep:               r.CurrentStep,
		BusinessLicenseNumber:     r.BusinessLicenseNumber,
		BusinessLicenseExpiry:     formatDate(r.BusinessLicenseExpiry),
		InsurancePolicyNumber:     r.InsurancePolicyNumber,
		InsuranceExpiry:           formatDate(r.InsuranceExpiry),
		InsuranceProvider:         r.InsuranceProvider,
		IDType:                    string(r.IDType),
		IDNumber:                  r.IDNumber,
		BusinessLicenseDocument:   toDocumentResponse(r.BusinessLicenseDocument),
		InsuranceCertificate:      toDocumentResponse(r.InsuranceCertificate),
		IDDocumentFront:           toDocumentResponse(r.IDDocumentFront),
		IDDocumentBack:            toDocumentResponse(r.IDDocumentBack),
		UtilityBill:               toDocumentResponse(r.UtilityBill),
		BackgroundCheckConsent:    r.BackgroundCheckConsent,
		BackgroundCheckStatus:     string(r.BackgroundCheckStatus),
		CriminalRecordDisclosure:  string(r.CriminalRecordDisclosure),
		Certifications:            make([]CertificationResponse, 0, len(r.Certifications)),
		ProfessionalReferences:    append([]Reference{}, r.ProfessionalReferences...),
		CompletionPercentage:      r.CompletionPercentage,
		RequiredDocumentsUploaded: r.RequiredDocumentsUploaded,
		MissingItems:              append([]string{}, MissingItems(r)...),
		SubmittedAt:               r.SubmittedAt,
		ReviewedAt:                r.ReviewedAt,
		ApprovedAt:                r.ApprovedAt,
		RejectionReason:           r.RejectionReason,
		CreatedAt:                 r.CreatedAt,
		UpdatedAt:                 r.UpdatedAt,
	}
	if r.CriminalRecordDisclosure == DisclosureDisclosed {
		resp.CriminalRecordDetails = r.CriminalRecordDetails
	}
	for _, c := range r.Certifications {
		resp.Certifications = append(resp.Certifications, CertificationResponse{
			Index:    c.Index,
			Name:     c.Name,
			Document: toDocumentResponse(c.Document),
		})
	}
	return resp
}

func toDocumentResponse(d *Document) *DocumentResponse {
	if d == nil {
		return nil
	}
	return &DocumentResponse{
		Path:        d.Path,
		URL:         d.URL,
		ContentType: d.ContentType,
		Size:        d.Size,
		UploadedAt:  d.UploadedAt,
	}
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(DateLayout)
}
