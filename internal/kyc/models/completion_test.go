package models_test

import (
	"math/bits"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"garagehub/internal/kyc/models"
)

func recordFromMask(mask uint32) *models.Record {
	r := newRecord()
	for i, fill := range allFillers() {
		if mask&(1<<i) != 0 {
			fill(r)
		}
	}
	return r
}

func TestComputeCompletionBounds(t *testing.T) {
	assert.Equal(t, 0, models.ComputeCompletion(newRecord()))
	assert.Equal(t, 0, models.ComputeCompletion(nil))

	full := newRecord()
	for _, fill := range allFillers() {
		fill(full)
	}
	assert.Equal(t, 100, models.ComputeCompletion(full))
	assert.Empty(t, models.MissingItems(full))
}

// Every way of filling one more item must not lower the percentage.
func TestComputeCompletionIsMonotonic(t *testing.T) {
	n := len(allFillers())
	require.Less(t, n, 32)

	scores := make([]int, 1<<n)
	for mask := range scores {
		scores[mask] = models.ComputeCompletion(recordFromMask(uint32(mask)))
	}

	for mask := range scores {
		for bit := 0; bit < n; bit++ {
			if mask&(1<<bit) != 0 {
				continue
			}
			superset := mask | 1<<bit
			if scores[superset] < scores[mask] {
				t.Fatalf("filling item %d lowered completion: mask %b=%d, superset %b=%d",
					bit, mask, scores[mask], superset, scores[superset])
			}
		}
		if mask > 0 && bits.OnesCount32(uint32(mask)) == n {
			assert.Equal(t, 100, scores[mask])
		}
	}
}

func TestComputeCompletionRequiredTierOutweighsOptional(t *testing.T) {
	required := newRecord()
	requiredFillers[0](required)

	optional := newRecord()
	optionalFillers[0](optional)

	assert.Greater(t, models.ComputeCompletion(required), models.ComputeCompletion(optional))
	assert.Greater(t, models.ComputeCompletion(optional), 0)
}

func TestCriminalDeclarationCountsOnlyWhenComplete(t *testing.T) {
	r := newRecord()
	base := models.ComputeCompletion(r)

	r.CriminalRecordDisclosure = models.DisclosureDisclosed
	assert.Equal(t, base, models.ComputeCompletion(r), "disclosed without details is incomplete")

	r.CriminalRecordDetails = "2014 traffic violation"
	assert.Greater(t, models.ComputeCompletion(r), base)
}

func TestRequiredDocumentsUploaded(t *testing.T) {
	r := newRecord()
	assert.False(t, models.RequiredDocumentsUploaded(r))

	r.BusinessLicenseDocument = doc("a.pdf")
	r.InsuranceCertificate = doc("b.pdf")
	assert.False(t, models.RequiredDocumentsUploaded(r))

	r.IDDocumentFront = doc("c.png")
	assert.True(t, models.RequiredDocumentsUploaded(r))

	r.IDDocumentBack = nil
	r.UtilityBill = nil
	assert.True(t, models.RequiredDocumentsUploaded(r), "optional slots do not gate")
}
