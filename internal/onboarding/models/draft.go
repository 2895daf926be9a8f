package models

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"

	dErrors "garagehub/pkg/domain-errors"
	pstrings "garagehub/pkg/platform/strings"
)

const (
	MaxServiceRadiusKm = 500
	MaxSpecialties     = 30
)

var validate = func() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}()

// Draft carries every wizard field. Saving accepts any well-formed draft;
// completing requires the struct tags to pass.
type Draft struct {
	Phone           string   `json:"phone" validate:"required,max=32"`
	BusinessName    string   `json:"business_name" validate:"required,max=200"`
	BusinessType    string   `json:"business_type" validate:"required,max=100"`
	Description     string   `json:"description" validate:"max=2000"`
	Address         string   `json:"address" validate:"required,max=500"`
	Latitude        *float64 `json:"latitude" validate:"required,gte=-90,lte=90"`
	Longitude       *float64 `json:"longitude" validate:"required,gte=-180,lte=180"`
	ServiceRadiusKm int      `json:"service_radius_km" validate:"gt=0,lte=500"`
	Specialties     []string `json:"specialties" validate:"min=1,max=30,dive,required,max=100"`
	YearsExperience *int     `json:"years_experience,omitempty" validate:"omitempty,gte=0,lte=80"`
}

// DraftFromProfile returns the wizard fields of p.
func DraftFromProfile(p *Profile) Draft {
	return Draft{
		Phone:           p.Phone,
		BusinessName:    p.BusinessName,
		BusinessType:    p.BusinessType,
		Description:     p.Description,
		Address:         p.Address,
		Latitude:        cloneFloat(p.Latitude),
		Longitude:       cloneFloat(p.Longitude),
		ServiceRadiusKm: p.ServiceRadiusKm,
		Specialties:     slices.Clone(p.Specialties),
		YearsExperience: cloneInt(p.YearsExperience),
	}
}

// Normalize collapses whitespace and dedupes specialties case-insensitively.
func (d Draft) Normalize() Draft {
	d.Phone = pstrings.CollapseSpace(d.Phone)
	d.BusinessName = pstrings.CollapseSpace(d.BusinessName)
	d.BusinessType = pstrings.CollapseSpace(d.BusinessType)
	d.Description = strings.TrimSpace(d.Description)
	d.Address = pstrings.CollapseSpace(d.Address)
	d.Specialties = pstrings.NormalizeList(d.Specialties, true)
	return d
}

// Equal compares field values, not pointer identity.
func (d Draft) Equal(o Draft) bool {
	return d.Phone == o.Phone &&
		d.BusinessName == o.BusinessName &&
		d.BusinessType == o.BusinessType &&
		d.Description == o.Description &&
		d.Address == o.Address &&
		equalPtr(d.Latitude, o.Latitude) &&
		equalPtr(d.Longitude, o.Longitude) &&
		d.ServiceRadiusKm == o.ServiceRadiusKm &&
		slices.Equal(d.Specialties, o.Specialties) &&
		equalPtr(d.YearsExperience, o.YearsExperience)
}

func equalPtr[T comparable](a, b *T) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// ValidateForSave rejects malformed values only. Missing values are fine so
// an unfinished wizard can be saved and resumed.
func (d Draft) ValidateForSave() error {
	fields := map[string]string{}
	if d.Latitude != nil && (*d.Latitude < -90 || *d.Latitude > 90) {
		fields["latitude"] = "must be between -90 and 90"
	}
	if d.Longitude != nil && (*d.Longitude < -180 || *d.Longitude > 180) {
		fields["longitude"] = "must be between -180 and 180"
	}
	if d.ServiceRadiusKm < 0 || d.ServiceRadiusKm > MaxServiceRadiusKm {
		fields["service_radius_km"] = fmt.Sprintf("must be between 0 and %d", MaxServiceRadiusKm)
	}
	if len(d.Specialties) > MaxSpecialties {
		fields["specialties"] = fmt.Sprintf("must have at most %d entries", MaxSpecialties)
	}
	if d.YearsExperience != nil && *d.YearsExperience < 0 {
		fields["years_experience"] = "must not be negative"
	}
	if len(fields) > 0 {
		return dErrors.NewValidation(fields)
	}
	return nil
}

// ValidateForCompletion enforces every wizard gate and reports each failing
// field by its JSON name.
func (d Draft) ValidateForCompletion() error {
	err := validate.Struct(d)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to validate profile")
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		field := fe.Field()
		if i := strings.IndexByte(field, '['); i > 0 {
			field = field[:i]
		}
		if _, seen := fields[field]; !seen {
			fields[field] = message(fe)
		}
	}
	return dErrors.NewValidation(fields)
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		if fe.Kind() == reflect.Slice {
			return "select at least " + fe.Param()
		}
		return "must be at least " + fe.Param() + " characters"
	case "max":
		if fe.Kind() == reflect.Slice {
			return "must have at most " + fe.Param() + " entries"
		}
		return "must be at most " + fe.Param() + " characters"
	case "gt":
		return "must be greater than " + fe.Param()
	case "gte":
		return "must be at least " + fe.Param()
	case "lte":
		return "must be at most " + fe.Param()
	default:
		return "is invalid"
	}
}
