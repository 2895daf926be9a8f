package client

import "garagehub/internal/onboarding/models"

func onboardingDraft() models.Draft {
	return models.Draft{Phone: "+1 555 0100", BusinessName: "Quick Fix"}
}
