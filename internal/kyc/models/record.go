package models

import (
	"strings"
	"time"

	id "garagehub/pkg/domain"
	dErrors "garagehub/pkg/domain-errors"
)

// Document is a stored file referenced by a slot. Path is the opaque storage
// key; URL is the public address resolved by the blob store.
type Document struct {
	Path        string    `json:"path"`
	URL         string    `json:"url"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	UploadedAt  time.Time `json:"uploaded_at"`
}

// Certification is one entry of the variable-length certifications slot.
// Index always equals the entry's position in Record.Certifications.
type Certification struct {
	Index    int       `json:"index"`
	Name     string    `json:"name,omitempty"`
	Document *Document `json:"document,omitempty"`
}

// Reference is a free-form professional contact.
type Reference struct {
	Name         string `json:"name"`
	Relationship string `json:"relationship,omitempty"`
	Phone        string `json:"phone,omitempty"`
	Email        string `json:"email,omitempty"`
	Company      string `json:"company,omitempty"`
}

// Record is the KYC aggregate. There is exactly one per expert.
//
// Invariants:
//   - CompletionPercentage and RequiredDocumentsUploaded are derived; every
//     mutation ends with Recompute
//   - SubmittedAt is stamped once per successful submission
//   - RejectionReason is written by a rejection and cleared by the next submission
//   - CriminalRecordDetails only counts when CriminalRecordDisclosure is disclosed
type Record struct {
	ID          id.KYCRecordID `json:"id"`
	ExpertID    id.ExpertID    `json:"expert_id"`
	Status      Status         `json:"status"`
	CurrentStep int            `json:"current_step"`

	BusinessLicenseNumber string     `json:"business_license_number,omitempty"`
	BusinessLicenseExpiry *time.Time `json:"business_license_expiry,omitempty"`
	InsurancePolicyNumber string     `json:"insurance_policy_number,omitempty"`
	InsuranceExpiry       *time.Time `json:"insurance_expiry,omitempty"`
	InsuranceProvider     string     `json:"insurance_provider,omitempty"`

	IDType   IDType `json:"id_type,omitempty"`
	IDNumber string `json:"id_number,omitempty"`

	BusinessLicenseDocument *Document `json:"business_license_document,omitempty"`
	InsuranceCertificate    *Document `json:"insurance_certificate,omitempty"`
	IDDocumentFront         *Document `json:"id_document_front,omitempty"`
	IDDocumentBack          *Document `json:"id_document_back,omitempty"`
	UtilityBill             *Document `json:"utility_bill,omitempty"`

	BackgroundCheckConsent   bool                  `json:"background_check_consent"`
	BackgroundCheckStatus    BackgroundCheckStatus `json:"background_check_status,omitempty"`
	CriminalRecordDisclosure Disclosure            `json:"criminal_record_disclosure,omitempty"`
	CriminalRecordDetails    string                `json:"criminal_record_details,omitempty"`

	Certifications         []Certification `json:"certifications,omitempty"`
	ProfessionalReferences []Reference     `json:"professional_references,omitempty"`

	CompletionPercentage      int        `json:"completion_percentage"`
	RequiredDocumentsUploaded bool       `json:"required_documents_uploaded"`
	SubmittedAt               *time.Time `json:"submitted_at,omitempty"`
	ReviewedAt                *time.Time `json:"reviewed_at,omitempty"`
	ApprovedAt                *time.Time `json:"approved_at,omitempty"`
	RejectionReason           string     `json:"rejection_reason,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewRecord creates an empty record in not_started at step 1.
func NewRecord(recordID id.KYCRecordID, expertID id.ExpertID, now time.Time) *Record {
	r := &Record{
		ID:          recordID,
		ExpertID:    expertID,
		Status:      StatusNotStarted,
		CurrentStep: 1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	r.Recompute()
	return r
}

// Recompute refreshes the derived completion fields.
func (r *Record) Recompute() {
	r.CompletionPercentage = ComputeCompletion(r)
	r.RequiredDocumentsUploaded = RequiredDocumentsUploaded(r)
}

// CanEdit checks whether the expert may mutate the record.
// Use with Touch in Execute callbacks.
func (r *Record) CanEdit() error {
	switch r.Status {
	case StatusSubmitted:
		return dErrors.New(dErrors.CodeConflict, "kyc record is under review")
	case StatusApproved:
		return dErrors.New(dErrors.CodeConflict, "kyc record is already approved")
	}
	return nil
}

// Touch records a real edit: the first edit (or the first after a
// rejection) moves the record to in_progress. Derived fields are refreshed.
func (r *Record) Touch(now time.Time) {
	if r.Status == StatusNotStarted || r.Status == StatusRejected {
		r.Status = StatusInProgress
	}
	r.UpdatedAt = now
	r.Recompute()
}

// CanSubmit runs the submission gate against today's date. An already
// submitted record passes so that a repeated submit is a no-op. A rejected
// record has to be edited, which moves it back to in_progress, first.
func (r *Record) CanSubmit(now time.Time) error {
	switch r.Status {
	case StatusSubmitted:
		return nil
	case StatusApproved:
		return dErrors.New(dErrors.CodeConflict, "kyc record is already approved")
	case StatusRejected:
		return dErrors.New(dErrors.CodeConflict, "kyc record was rejected, edit it before resubmitting")
	}
	if missing := ValidateSubmission(r, now); len(missing) > 0 {
		return dErrors.NewIncomplete(missing)
	}
	if !r.Status.CanTransitionTo(StatusSubmitted) {
		return dErrors.New(dErrors.CodeConflict, "kyc record cannot be submitted from "+r.Status.String())
	}
	return nil
}

// ApplySubmit moves the record to submitted and stamps SubmittedAt.
// Reports false when the record was already submitted and nothing changed.
// Call CanSubmit first.
func (r *Record) ApplySubmit(now time.Time) bool {
	if r.Status == StatusSubmitted {
		return false
	}
	r.Status = StatusSubmitted
	r.RejectionReason = ""
	r.SubmittedAt = &now
	r.UpdatedAt = now
	r.Recompute()
	return true
}

// CanReview checks that a reviewer decision is allowed.
func (r *Record) CanReview() error {
	if r.Status != StatusSubmitted {
		return dErrors.New(dErrors.CodeConflict, "kyc record is not awaiting review")
	}
	return nil
}

// ApplyApproval approves the record. Call CanReview first.
func (r *Record) ApplyApproval(now time.Time) {
	r.Status = StatusApproved
	r.ReviewedAt = &now
	r.ApprovedAt = &now
	r.RejectionReason = ""
	r.UpdatedAt = now
}

// ApplyRejection rejects the record. Field values are kept as the baseline for
// resubmission. Call CanReview first.
func (r *Record) ApplyRejection(reason string, now time.Time) {
	r.Status = StatusRejected
	r.ReviewedAt = &now
	r.RejectionReason = strings.TrimSpace(reason)
	r.UpdatedAt = now
}

// ApplyBackgroundCheckStatus stores the reviewer-provided status. It is not
// an expert edit and never moves the lifecycle.
func (r *Record) ApplyBackgroundCheckStatus(status BackgroundCheckStatus, now time.Time) bool {
	if r.BackgroundCheckStatus == status {
		return false
	}
	r.BackgroundCheckStatus = status
	r.UpdatedAt = now
	return true
}

// Clone returns a deep copy so stores never hand out shared state.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	c := *r
	c.BusinessLicenseExpiry = cloneTime(r.BusinessLicenseExpiry)
	c.InsuranceExpiry = cloneTime(r.InsuranceExpiry)
	c.SubmittedAt = cloneTime(r.SubmittedAt)
	c.ReviewedAt = cloneTime(r.ReviewedAt)
	c.ApprovedAt = cloneTime(r.ApprovedAt)
	c.BusinessLicenseDocument = r.BusinessLicenseDocument.clone()
	c.InsuranceCertificate = r.InsuranceCertificate.clone()
	c.IDDocumentFront = r.IDDocumentFront.clone()
	c.IDDocumentBack = r.IDDocumentBack.clone()
	c.UtilityBill = r.UtilityBill.clone()
	if r.Certifications != nil {
		c.Certifications = make([]Certification, len(r.Certifications))
		for i, cert := range r.Certifications {
			cert.Document = cert.Document.clone()
			c.Certifications[i] = cert
		}
	}
	if r.ProfessionalReferences != nil {
		c.ProfessionalReferences = append([]Reference(nil), r.ProfessionalReferences...)
	}
	return &c
}

func (d *Document) clone() *Document {
	if d == nil {
		return nil
	}
	c := *d
	return &c
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}

// DateOf truncates t to its UTC calendar date.
func DateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// IsFutureDate reports whether date falls strictly after the calendar day of now.
func IsFutureDate(date, now time.Time) bool {
	return DateOf(date).After(DateOf(now))
}
