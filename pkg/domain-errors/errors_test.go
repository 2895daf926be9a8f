package domainerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasCode(t *testing.T) {
	t.Run("matches through fmt wrapping", func(t *testing.T) {
		err := fmt.Errorf("outer: %w", New(CodeNotFound, "kyc record not found"))
		assert.True(t, HasCode(err, CodeNotFound))
		assert.False(t, HasCode(err, CodeConflict))
	})

	t.Run("plain errors carry no code", func(t *testing.T) {
		assert.False(t, HasCode(errors.New("boom"), CodeInternal))
		assert.Equal(t, CodeInternal, CodeOf(errors.New("boom")))
	})
}

func TestWrap(t *testing.T) {
	cause := errors.New("connection reset")
	err := Wrap(cause, CodeTransient, "failed to save kyc record")

	require.ErrorIs(t, err, cause)
	assert.Equal(t, "failed to save kyc record: connection reset", err.Error())
	assert.Nil(t, Wrap(nil, CodeInternal, "ignored"))
}

func TestNewIncomplete(t *testing.T) {
	items := []string{"a", "b"}
	err := NewIncomplete(items)
	items[0] = "mutated"

	de, ok := As(err)
	require.True(t, ok)
	assert.Equal(t, CodeIncompleteSubmission, de.Code)
	assert.Equal(t, []string{"a", "b"}, de.Items)
}

func TestNewValidation(t *testing.T) {
	err := NewValidation(map[string]string{
		"insurance_expiry":        "insurance_expiry must be a future date",
		"business_license_expiry": "business_license_expiry must be a future date",
	})
	de, ok := As(err)
	require.True(t, ok)
	assert.Len(t, de.Fields, 2)
	assert.Equal(t, "validation failed: business_license_expiry must be a future date", de.Message)
}

func TestIsServerSide(t *testing.T) {
	assert.True(t, IsServerSide(errors.New("plain")))
	assert.True(t, IsServerSide(New(CodeStorageFailure, "s3 down")))
	assert.True(t, IsServerSide(New(CodeTimeout, "slow")))
	assert.False(t, IsServerSide(NewValidation(map[string]string{"phone": "is required"})))
	assert.False(t, IsServerSide(New(CodeConflict, "under review")))
}
