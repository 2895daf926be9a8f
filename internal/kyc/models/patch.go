package models

import (
	"fmt"
	"slices"
	"time"

	"github.com/go-playground/validator/v10"

	dErrors "garagehub/pkg/domain-errors"
	pstrings "garagehub/pkg/platform/strings"
)

var validate = validator.New()

// DateLayout is the wire format of expiry dates.
const DateLayout = "2006-01-02"

// MaxStep is the last wizard screen of the KYC flow.
const MaxStep = 6

// MaxReferences bounds the professional references collection.
const MaxReferences = 10

// Patch is a partial update. Nil fields are left untouched; an empty string
// clears a text or date field. Merging is per field, so independent requests
// never overwrite each other's fields.
type Patch struct {
	CurrentStep *int `json:"current_step,omitempty"`

	BusinessLicenseNumber *string `json:"business_license_number,omitempty"`
	BusinessLicenseExpiry *string `json:"business_license_expiry,omitempty"`
	InsurancePolicyNumber *string `json:"insurance_policy_number,omitempty"`
	InsuranceExpiry       *string `json:"insurance_expiry,omitempty"`
	InsuranceProvider     *string `json:"insurance_provider,omitempty"`

	IDType   *string `json:"id_type,omitempty"`
	IDNumber *string `json:"id_number,omitempty"`

	BackgroundCheckConsent   *bool   `json:"background_check_consent,omitempty"`
	CriminalRecordDisclosure *string `json:"criminal_record_disclosure,omitempty"`
	CriminalRecordDetails    *string `json:"criminal_record_details,omitempty"`

	ProfessionalReferences *[]Reference `json:"professional_references,omitempty"`
}

// IsEmpty reports whether the patch touches nothing.
func (p Patch) IsEmpty() bool {
	return p == Patch{}
}

// Validate checks every present field against now and returns a validation
// error listing each offending field. Expiry dates must lie in the future.
func (p Patch) Validate(now time.Time) error {
	fields := map[string]string{}

	if p.CurrentStep != nil && (*p.CurrentStep < 1 || *p.CurrentStep > MaxStep) {
		fields["current_step"] = fmt.Sprintf("must be between 1 and %d", MaxStep)
	}
	validateExpiry(fields, "business_license_expiry", p.BusinessLicenseExpiry, now)
	validateExpiry(fields, "insurance_expiry", p.InsuranceExpiry, now)

	if p.IDType != nil && *p.IDType != "" && !IDType(*p.IDType).IsValid() {
		fields["id_type"] = "must be one of drivers_license, passport, national_id"
	}
	if p.CriminalRecordDisclosure != nil && *p.CriminalRecordDisclosure != "" &&
		!Disclosure(*p.CriminalRecordDisclosure).IsValid() {
		fields["criminal_record_disclosure"] = "must be one of none, disclosed"
	}

	if p.ProfessionalReferences != nil {
		refs := *p.ProfessionalReferences
		if len(refs) > MaxReferences {
			fields["professional_references"] = fmt.Sprintf("at most %d references are allowed", MaxReferences)
		}
		for i, ref := range refs {
			key := fmt.Sprintf("professional_references[%d]", i)
			if pstrings.IsBlank(ref.Name) {
				fields[key+".name"] = "is required"
			}
			if ref.Email != "" {
				if err := validate.Var(ref.Email, "email"); err != nil {
					fields[key+".email"] = "must be a valid email address"
				}
			}
		}
	}

	if len(fields) > 0 {
		return dErrors.NewValidation(fields)
	}
	return nil
}

func validateExpiry(fields map[string]string, key string, raw *string, now time.Time) {
	if raw == nil || *raw == "" {
		return
	}
	date, err := time.Parse(DateLayout, *raw)
	if err != nil {
		fields[key] = "must be a date in YYYY-MM-DD format"
		return
	}
	if !IsFutureDate(date, now) {
		fields[key] = "must be a future date"
	}
}

// Apply merges the patch into r and reports whether any field changed.
// Call Validate first; Apply assumes well-formed values.
func (p Patch) Apply(r *Record) bool {
	changed := false

	if p.CurrentStep != nil && r.CurrentStep != *p.CurrentStep {
		r.CurrentStep = *p.CurrentStep
		changed = true
	}
	changed = setText(&r.BusinessLicenseNumber, p.BusinessLicenseNumber) || changed
	changed = setDate(&r.BusinessLicenseExpiry, p.BusinessLicenseExpiry) || changed
	changed = setText(&r.InsurancePolicyNumber, p.InsurancePolicyNumber) || changed
	changed = setDate(&r.InsuranceExpiry, p.InsuranceExpiry) || changed
	changed = setText(&r.InsuranceProvider, p.InsuranceProvider) || changed
	changed = setText(&r.IDNumber, p.IDNumber) || changed
	changed = setText(&r.CriminalRecordDetails, p.CriminalRecordDetails) || changed

	if p.IDType != nil && r.IDType != IDType(*p.IDType) {
		r.IDType = IDType(*p.IDType)
		changed = true
	}
	if p.CriminalRecordDisclosure != nil && r.CriminalRecordDisclosure != Disclosure(*p.CriminalRecordDisclosure) {
		r.CriminalRecordDisclosure = Disclosure(*p.CriminalRecordDisclosure)
		changed = true
	}
	if p.BackgroundCheckConsent != nil && r.BackgroundCheckConsent != *p.BackgroundCheckConsent {
		r.BackgroundCheckConsent = *p.BackgroundCheckConsent
		changed = true
	}

	if p.ProfessionalReferences != nil {
		refs := normalizeReferences(*p.ProfessionalReferences)
		if !slices.Equal(r.ProfessionalReferences, refs) {
			r.ProfessionalReferences = refs
			changed = true
		}
	}

	return changed
}

func setText(dst *string, src *string) bool {
	if src == nil {
		return false
	}
	v := pstrings.CollapseSpace(*src)
	if *dst == v {
		return false
	}
	*dst = v
	return true
}

func setDate(dst **time.Time, src *string) bool {
	if src == nil {
		return false
	}
	if *src == "" {
		if *dst == nil {
			return false
		}
		*dst = nil
		return true
	}
	date, err := time.Parse(DateLayout, *src)
	if err != nil {
		return false
	}
	if *dst != nil && (*dst).Equal(date) {
		return false
	}
	*dst = &date
	return true
}

func normalizeReferences(refs []Reference) []Reference {
	if len(refs) == 0 {
		return nil
	}
	out := make([]Reference, len(refs))
	for i, ref := range refs {
		out[i] = Reference{
			Name:         pstrings.CollapseSpace(ref.Name),
			Relationship: pstrings.CollapseSpace(ref.Relationship),
			Phone:        pstrings.CollapseSpace(ref.Phone),
			Email:        pstrings.CollapseSpace(ref.Email),
			Company:      pstrings.CollapseSpace(ref.Company),
		}
	}
	return out
}

// DocumentMetadata accompanies an upload. Its Patch is merged exactly like a
// PATCH; CertificationName names a certification entry.
type DocumentMetadata struct {
	Patch
	CertificationName *string `json:"certification_name,omitempty"`
}
