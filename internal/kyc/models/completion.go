package models

import pstrings "garagehub/pkg/platform/strings"

// trackable is one item counted toward completion.
type trackable struct {
	name   string
	weight int
	filled func(*Record) bool
}

func present(s string) bool { return !pstrings.IsBlank(s) }

// trackables lists every counted item. The ten submission requirements carry
// double weight; the optional tier carries single weight.
var trackables = []trackable{
	{"business_license_number", 2, func(r *Record) bool { return present(r.BusinessLicenseNumber) }},
	{"business_license_document", 2, func(r *Record) bool { return r.BusinessLicenseDocument != nil }},
	{"business_license_expiry", 2, func(r *Record) bool { return r.BusinessLicenseExpiry != nil }},
	{"insurance_policy_number", 2, func(r *Record) bool { return present(r.InsurancePolicyNumber) }},
	{"insurance_certificate", 2, func(r *Record) bool { return r.InsuranceCertificate != nil }},
	{"insurance_expiry", 2, func(r *Record) bool { return r.InsuranceExpiry != nil }},
	{"id_type", 2, func(r *Record) bool { return r.IDType != "" }},
	{"id_number", 2, func(r *Record) bool { return present(r.IDNumber) }},
	{"id_document_front", 2, func(r *Record) bool { return r.IDDocumentFront != nil }},
	{"background_check_consent", 2, func(r *Record) bool { return r.BackgroundCheckConsent }},

	{"insurance_provider", 1, func(r *Record) bool { return present(r.InsuranceProvider) }},
	{"id_document_back", 1, func(r *Record) bool { return r.IDDocumentBack != nil }},
	{"utility_bill", 1, func(r *Record) bool { return r.UtilityBill != nil }},
	{"criminal_record_declaration", 1, criminalDeclarationComplete},
	{"certifications", 1, func(r *Record) bool {
		for _, c := range r.Certifications {
			if c.Document != nil {
				return true
			}
		}
		return false
	}},
	{"professional_references", 1, func(r *Record) bool { return len(r.ProfessionalReferences) > 0 }},
}

var totalWeight = func() int {
	total := 0
	for _, t := range trackables {
		total += t.weight
	}
	return total
}()

func criminalDeclarationComplete(r *Record) bool {
	switch r.CriminalRecordDisclosure {
	case DisclosureNone:
		return true
	case DisclosureDisclosed:
		return present(r.CriminalRecordDetails)
	}
	return false
}

// ComputeCompletion returns the floor of the filled weight as a percentage of
// the total weight. Filling any item never lowers the result.
func ComputeCompletion(r *Record) int {
	if r == nil {
		return 0
	}
	filled := 0
	for _, t := range trackables {
		if t.filled(r) {
			filled += t.weight
		}
	}
	return filled * 100 / totalWeight
}

// RequiredDocumentsUploaded reports whether every document the submission
// gate requires is present.
func RequiredDocumentsUploaded(r *Record) bool {
	return r.BusinessLicenseDocument != nil &&
		r.InsuranceCertificate != nil &&
		r.IDDocumentFront != nil
}

// MissingItems names the trackable items that are still empty, in display order.
func MissingItems(r *Record) []string {
	var missing []string
	for _, t := range trackables {
		if !t.filled(r) {
			missing = append(missing, t.name)
		}
	}
	return missing
}
