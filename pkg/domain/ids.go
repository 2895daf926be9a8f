// Package domain holds typed identifiers shared across modules. Each ID is a
// distinct named type over uuid.UUID so an expert ID can never be passed where
// a KYC record ID is expected.
package domain

import (
	"github.com/google/uuid"

	dErrors "garagehub/pkg/domain-errors"
)

type (
	// UserID identifies an authenticated account.
	UserID uuid.UUID
	// ExpertID identifies an expert (service provider) profile.
	ExpertID uuid.UUID
	// KYCRecordID identifies the verification record owned by an expert.
	KYCRecordID uuid.UUID
)

func parseUUID(s, label string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, label+" is required")
	}
	// uuid.Parse also accepts urn and braced forms; anything longer is not an ID.
	if len(s) > 45 {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+label)
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+label)
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+label)
	}
	return u, nil
}

// ParseUserID parses a user ID at a trust boundary.
func ParseUserID(s string) (UserID, error) {
	u, err := parseUUID(s, "user id")
	return UserID(u), err
}

// ParseExpertID parses an expert ID at a trust boundary.
func ParseExpertID(s string) (ExpertID, error) {
	u, err := parseUUID(s, "expert id")
	return ExpertID(u), err
}

// ParseKYCRecordID parses a KYC record ID at a trust boundary.
func ParseKYCRecordID(s string) (KYCRecordID, error) {
	u, err := parseUUID(s, "kyc record id")
	return KYCRecordID(u), err
}

func (id UserID) String() string      { return uuid.UUID(id).String() }
func (id ExpertID) String() string    { return uuid.UUID(id).String() }
func (id KYCRecordID) String() string { return uuid.UUID(id).String() }

func (id UserID) IsNil() bool      { return uuid.UUID(id) == uuid.Nil }
func (id ExpertID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }
func (id KYCRecordID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }

func (id ExpertID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }

func (id *ExpertID) UnmarshalText(b []byte) error {
	return (*uuid.UUID)(id).UnmarshalText(b)
}

func (id KYCRecordID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }

func (id *KYCRecordID) UnmarshalText(b []byte) error {
	return (*uuid.UUID)(id).UnmarshalText(b)
}

func (id UserID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }

func (id *UserID) UnmarshalText(b []byte) error {
	return (*uuid.UUID)(id).UnmarshalText(b)
}
