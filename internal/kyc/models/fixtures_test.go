package models_test

import (
	"time"

	"github.com/google/uuid"

	"garagehub/internal/kyc/models"
	id "garagehub/pkg/domain"
)

var testNow = time.Date(2026, 5, 10, 14, 30, 0, 0, time.UTC)

const (
	minute = time.Minute
	hour   = time.Hour
)

func futureDate(days int) *time.Time {
	d := models.DateOf(testNow).AddDate(0, 0, days)
	return &d
}

func doc(path string) *models.Document {
	return &models.Document{
		Path:        path,
		URL:         "https://files.example.test/" + path,
		ContentType: "application/pdf",
		Size:        1024,
		UploadedAt:  testNow,
	}
}

func newRecord() *models.Record {
	return models.NewRecord(id.KYCRecordID(uuid.New()), id.ExpertID(uuid.New()), testNow)
}

// requiredFillers satisfy the ten submission requirements, in checklist order.
var requiredFillers = []func(*models.Record){
	func(r *models.Record) { r.BusinessLicenseNumber = "BL-1234" },
	func(r *models.Record) { r.BusinessLicenseDocument = doc("kyc/license.pdf") },
	func(r *models.Record) { r.BusinessLicenseExpiry = futureDate(365) },
	func(r *models.Record) { r.InsurancePolicyNumber = "POL-77" },
	func(r *models.Record) { r.InsuranceCertificate = doc("kyc/insurance.pdf") },
	func(r *models.Record) { r.InsuranceExpiry = futureDate(180) },
	func(r *models.Record) { r.IDType = models.IDTypePassport },
	func(r *models.Record) { r.IDNumber = "P1234567" },
	func(r *models.Record) { r.IDDocumentFront = doc("kyc/id-front.png") },
	func(r *models.Record) { r.BackgroundCheckConsent = true },
}

var optionalFillers = []func(*models.Record){
	func(r *models.Record) { r.InsuranceProvider = "Acme Mutual" },
	func(r *models.Record) { r.IDDocumentBack = doc("kyc/id-back.png") },
	func(r *models.Record) { r.UtilityBill = doc("kyc/bill.pdf") },
	func(r *models.Record) { r.CriminalRecordDisclosure = models.DisclosureNone },
	func(r *models.Record) {
		r.Certifications = []models.Certification{{Index: 0, Name: "ASE", Document: doc("kyc/ase.pdf")}}
	},
	func(r *models.Record) {
		r.ProfessionalReferences = []models.Reference{{Name: "Sam Ortiz", Phone: "555-0100"}}
	},
}

func allFillers() []func(*models.Record) {
	return append(append([]func(*models.Record){}, requiredFillers...), optionalFillers...)
}

func submittableRecord() *models.Record {
	r := newRecord()
	for _, fill := range requiredFillers {
		fill(r)
	}
	r.Touch(testNow)
	return r
}
