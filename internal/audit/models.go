package audit

import (
	"time"

	id "garagehub/pkg/domain"
)

// Action names what happened to a KYC record or expert profile.
type Action string

const (
	ActionProgressSaved         Action = "kyc_progress_saved"
	ActionDocumentUploaded      Action = "kyc_document_uploaded"
	ActionDocumentRemoved       Action = "kyc_document_removed"
	ActionSubmitted             Action = "kyc_submitted"
	ActionApproved              Action = "kyc_approved"
	ActionRejected              Action = "kyc_rejected"
	ActionBackgroundCheckStatus Action = "kyc_background_check_updated"
	ActionOnboardingCompleted   Action = "onboarding_completed"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Timestamp time.Time   `json:"timestamp"`
	ExpertID  id.ExpertID `json:"expert_id"`
	Action    Action      `json:"action"`
	// Subject is the slot, status or field group the action touched.
	Subject   string `json:"subject,omitempty"`
	Reason    string `json:"reason,omitempty"`
	RequestID string `json:"request_id,omitempty"`
	// ActorID is set when someone other than the expert acted, e.g. a reviewer.
	ActorID string `json:"actor_id,omitempty"`
}
