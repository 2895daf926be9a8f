package models_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"garagehub/internal/kyc/models"
)

var checklist = []string{
	models.MsgLicenseNumberRequired,
	models.MsgLicenseDocumentRequired,
	models.MsgLicenseExpiryRequired,
	models.MsgPolicyNumberRequired,
	models.MsgCertificateRequired,
	models.MsgInsuranceExpiryRequired,
	models.MsgIDTypeRequired,
	models.MsgIDNumberRequired,
	models.MsgIDFrontRequired,
	models.MsgConsentRequired,
}

func TestValidateSubmissionEmptyRecordListsEverything(t *testing.T) {
	assert.Equal(t, checklist, models.ValidateSubmission(newRecord(), testNow))
}

func TestValidateSubmissionAcceptsCompleteRecord(t *testing.T) {
	assert.Empty(t, models.ValidateSubmission(submittableRecord(), testNow))
}

// Dropping exactly one requirement names exactly that requirement.
func TestValidateSubmissionNamesTheSingleMissingItem(t *testing.T) {
	for skip, want := range checklist {
		t.Run(want, func(t *testing.T) {
			r := newRecord()
			for i, fill := range requiredFillers {
				if i != skip {
					fill(r)
				}
			}
			assert.Equal(t, []string{want}, models.ValidateSubmission(r, testNow))
		})
	}
}

func TestValidateSubmissionOptionalTierNeverGates(t *testing.T) {
	r := submittableRecord()
	r.IDDocumentBack = nil
	r.UtilityBill = nil
	r.Certifications = nil
	r.ProfessionalReferences = nil
	r.InsuranceProvider = ""

	assert.Empty(t, models.ValidateSubmission(r, testNow))
}

func TestValidateSubmissionExpiredDates(t *testing.T) {
	r := submittableRecord()
	today := models.DateOf(testNow)
	r.BusinessLicenseExpiry = &today
	past := today.AddDate(0, -1, 0)
	r.InsuranceExpiry = &past

	assert.Equal(t, []string{models.MsgLicenseExpired, models.MsgInsuranceExpired},
		models.ValidateSubmission(r, testNow))
}

func TestValidateSubmissionCriminalDetails(t *testing.T) {
	r := submittableRecord()
	r.CriminalRecordDisclosure = models.DisclosureDisclosed
	assert.Equal(t, []string{models.MsgCriminalDetailsRequired}, models.ValidateSubmission(r, testNow))

	r.CriminalRecordDetails = "2014 traffic violation"
	assert.Empty(t, models.ValidateSubmission(r, testNow))

	r.CriminalRecordDisclosure = models.DisclosureNone
	r.CriminalRecordDetails = ""
	assert.Empty(t, models.ValidateSubmission(r, testNow), "details ignored unless disclosed")
}

func TestValidateSubmissionBlankTextCountsAsMissing(t *testing.T) {
	r := submittableRecord()
	r.IDNumber = "   "
	assert.Equal(t, []string{models.MsgIDNumberRequired}, models.ValidateSubmission(r, testNow))
}
