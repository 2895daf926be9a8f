// Package models holds the expert profile collected by the onboarding wizard.
package models

import (
	"slices"
	"time"

	id "garagehub/pkg/domain"
)

// Profile is the expert's public business profile. It is saved as a draft
// any number of times and marked complete once every wizard gate passes.
type Profile struct {
	ExpertID        id.ExpertID `json:"expert_id"`
	Phone           string      `json:"phone"`
	BusinessName    string      `json:"business_name"`
	BusinessType    string      `json:"business_type"`
	Description     string      `json:"description"`
	Address         string      `json:"address"`
	Latitude        *float64    `json:"latitude"`
	Longitude       *float64    `json:"longitude"`
	ServiceRadiusKm int         `json:"service_radius_km"`
	Specialties     []string    `json:"specialties"`
	YearsExperience *int        `json:"years_experience"`

	ProfileCompleted bool       `json:"profile_completed"`
	CompletedAt      *time.Time `json:"completed_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

func NewProfile(expertID id.ExpertID, now time.Time) *Profile {
	return &Profile{ExpertID: expertID, CreatedAt: now, UpdatedAt: now}
}

// ApplyDraft replaces every wizard field with the draft's value and reports
// whether anything changed. The draft must already be normalized.
func (p *Profile) ApplyDraft(d Draft, now time.Time) bool {
	next := *p
	next.Phone = d.Phone
	next.BusinessName = d.BusinessName
	next.BusinessType = d.BusinessType
	next.Description = d.Description
	next.Address = d.Address
	next.Latitude = cloneFloat(d.Latitude)
	next.Longitude = cloneFloat(d.Longitude)
	next.ServiceRadiusKm = d.ServiceRadiusKm
	next.Specialties = slices.Clone(d.Specialties)
	next.YearsExperience = cloneInt(d.YearsExperience)

	if DraftFromProfile(&next).Equal(DraftFromProfile(p)) {
		return false
	}
	next.UpdatedAt = now
	*p = next
	return true
}

// MarkCompleted flags the profile complete. The first completion time is kept.
func (p *Profile) MarkCompleted(now time.Time) {
	if !p.ProfileCompleted {
		p.CompletedAt = &now
	}
	p.ProfileCompleted = true
	p.UpdatedAt = now
}

func (p *Profile) Clone() *Profile {
	if p == nil {
		return nil
	}
	c := *p
	c.Latitude = cloneFloat(p.Latitude)
	c.Longitude = cloneFloat(p.Longitude)
	c.YearsExperience = cloneInt(p.YearsExperience)
	c.Specialties = slices.Clone(p.Specialties)
	if p.CompletedAt != nil {
		t := *p.CompletedAt
		c.CompletedAt = &t
	}
	return &c
}

func cloneFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func cloneInt(v *int) *int {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
