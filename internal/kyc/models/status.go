package models

// Status is the KYC lifecycle state.
type Status string

const (
	StatusNotStarted Status = "not_started"
	StatusInProgress Status = "in_progress"
	StatusSubmitted  Status = "submitted"
	StatusApproved   Status = "approved"
	StatusRejected   Status = "rejected"
)

var transitions = map[Status][]Status{
	StatusNotStarted: {StatusInProgress},
	StatusInProgress: {StatusSubmitted},
	StatusSubmitted:  {StatusApproved, StatusRejected},
	StatusRejected:   {StatusInProgress},
	StatusApproved:   nil,
}

// IsValid reports whether s is a known status.
func (s Status) IsValid() bool {
	_, ok := transitions[s]
	return ok
}

// CanTransitionTo reports whether the state machine allows s → next.
func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsEditable reports whether the expert may still change the record.
// Submitted records are under review and approved records are final.
func (s Status) IsEditable() bool {
	return s == StatusNotStarted || s == StatusInProgress || s == StatusRejected
}

func (s Status) String() string {
	return string(s)
}

// IDType is the kind of government identification provided.
type IDType string

const (
	IDTypeDriversLicense IDType = "drivers_license"
	IDTypePassport       IDType = "passport"
	IDTypeNationalID     IDType = "national_id"
)

func (t IDType) IsValid() bool {
	switch t {
	case IDTypeDriversLicense, IDTypePassport, IDTypeNationalID:
		return true
	}
	return false
}

// Disclosure is the expert's criminal record declaration.
type Disclosure string

const (
	DisclosureNone      Disclosure = "none"
	DisclosureDisclosed Disclosure = "disclosed"
)

func (d Disclosure) IsValid() bool {
	return d == DisclosureNone || d == DisclosureDisclosed
}

// BackgroundCheckStatus is set by a reviewer once the external check returns.
type BackgroundCheckStatus string

const (
	BackgroundCheckPending BackgroundCheckStatus = "pending"
	BackgroundCheckClear   BackgroundCheckStatus = "clear"
	BackgroundCheckFlagged BackgroundCheckStatus = "flagged"
)

func (s BackgroundCheckStatus) IsValid() bool {
	switch s {
	case BackgroundCheckPending, BackgroundCheckClear, BackgroundCheckFlagged:
		return true
	}
	return false
}
