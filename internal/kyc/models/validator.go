package models

import "time"

// Submission gate messages, in checklist order.
const (
	MsgLicenseNumberRequired   = "business license number is required"
	MsgLicenseDocumentRequired = "business license document is required"
	MsgLicenseExpiryRequired   = "business license expiry date is required"
	MsgLicenseExpired          = "business license has expired"
	MsgPolicyNumberRequired    = "insurance policy number is required"
	MsgCertificateRequired     = "insurance certificate is required"
	MsgInsuranceExpiryRequired = "insurance expiry date is required"
	MsgInsuranceExpired        = "insurance has expired"
	MsgIDTypeRequired          = "identification type is required"
	MsgIDNumberRequired        = "identification number is required"
	MsgIDFrontRequired         = "identification document (front) is required"
	MsgConsentRequired         = "background check consent is required"
	MsgCriminalDetailsRequired = "criminal record details are required when a record is disclosed"
)

// ValidateSubmission collects every deficiency that blocks submission, in a
// fixed order. An empty result means the record may be submitted. Expiry
// dates that are present must still be in the future on the day of submission.
func ValidateSubmission(r *Record, now time.Time) []string {
	var missing []string
	add := func(ok bool, msg string) {
		if !ok {
			missing = append(missing, msg)
		}
	}

	add(present(r.BusinessLicenseNumber), MsgLicenseNumberRequired)
	add(r.BusinessLicenseDocument != nil, MsgLicenseDocumentRequired)
	add(r.BusinessLicenseExpiry != nil, MsgLicenseExpiryRequired)
	if r.BusinessLicenseExpiry != nil {
		add(IsFutureDate(*r.BusinessLicenseExpiry, now), MsgLicenseExpired)
	}

	add(present(r.InsurancePolicyNumber), MsgPolicyNumberRequired)
	add(r.InsuranceCertificate != nil, MsgCertificateRequired)
	add(r.InsuranceExpiry != nil, MsgInsuranceExpiryRequired)
	if r.InsuranceExpiry != nil {
		add(IsFutureDate(*r.InsuranceExpiry, now), MsgInsuranceExpired)
	}

	add(r.IDType != "", MsgIDTypeRequired)
	add(present(r.IDNumber), MsgIDNumberRequired)
	add(r.IDDocumentFront != nil, MsgIDFrontRequired)

	add(r.BackgroundCheckConsent, MsgConsentRequired)
	if r.CriminalRecordDisclosure == DisclosureDisclosed {
		add(present(r.CriminalRecordDetails), MsgCriminalDetailsRequired)
	}

	return missing
}
