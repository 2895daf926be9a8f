// Package wizard is the client-side orchestrator of the expert onboarding
// wizard. It owns the local draft, gates forward navigation on per-step
// completeness and persists through a Gateway.
package wizard

import (
	"fmt"
	"math"

	"garagehub/internal/onboarding/models"
	pstrings "garagehub/pkg/platform/strings"
)

// Step is a 1-based wizard screen.
type Step int

const (
	StepBasicInfo Step = iota + 1
	StepLocation
	StepServices
	StepReview
)

// FirstStep and LastStep bound navigation.
const (
	FirstStep = StepBasicInfo
	LastStep  = StepReview
)

func (s Step) String() string {
	switch s {
	case StepBasicInfo:
		return "basic_info"
	case StepLocation:
		return "location"
	case StepServices:
		return "services"
	case StepReview:
		return "review"
	default:
		return fmt.Sprintf("step(%d)", int(s))
	}
}

// Field names a draft field. Values match the JSON names used by the server
// so validation errors can be attached to the right input.
type Field string

const (
	FieldPhone           Field = "phone"
	FieldBusinessName    Field = "business_name"
	FieldBusinessType    Field = "business_type"
	FieldDescription     Field = "description"
	FieldAddress         Field = "address"
	FieldLatitude        Field = "latitude"
	FieldLongitude       Field = "longitude"
	FieldServiceRadiusKm Field = "service_radius_km"
	FieldSpecialties     Field = "specialties"
	FieldYearsExperience Field = "years_experience"
)

type fieldSpec struct {
	step Step
	set  func(d *models.Draft, value any) error
	get  func(d *models.Draft) any
}

// fields maps every editable field to its step and accessors.
var fields = map[Field]fieldSpec{
	FieldPhone: {
		step: StepBasicInfo,
		set:  setString(func(d *models.Draft) *string { return &d.Phone }),
		get:  func(d *models.Draft) any { return d.Phone },
	},
	FieldBusinessName: {
		step: StepBasicInfo,
		set:  setString(func(d *models.Draft) *string { return &d.BusinessName }),
		get:  func(d *models.Draft) any { return d.BusinessName },
	},
	FieldBusinessType: {
		step: StepBasicInfo,
		set:  setString(func(d *models.Draft) *string { return &d.BusinessType }),
		get:  func(d *models.Draft) any { return d.BusinessType },
	},
	FieldDescription: {
		step: StepBasicInfo,
		set:  setString(func(d *models.Draft) *string { return &d.Description }),
		get:  func(d *models.Draft) any { return d.Description },
	},
	FieldAddress: {
		step: StepLocation,
		set:  setString(func(d *models.Draft) *string { return &d.Address }),
		get:  func(d *models.Draft) any { return d.Address },
	},
	FieldLatitude: {
		step: StepLocation,
		set:  setCoordinate(func(d *models.Draft) **float64 { return &d.Latitude }),
		get:  func(d *models.Draft) any { return derefOrNil(d.Latitude) },
	},
	FieldLongitude: {
		step: StepLocation,
		set:  setCoordinate(func(d *models.Draft) **float64 { return &d.Longitude }),
		get:  func(d *models.Draft) any { return derefOrNil(d.Longitude) },
	},
	FieldServiceRadiusKm: {
		step: StepLocation,
		set: func(d *models.Draft, value any) error {
			n, ok := value.(int)
			if !ok {
				return typeError(FieldServiceRadiusKm, "int", value)
			}
			d.ServiceRadiusKm = n
			return nil
		},
		get: func(d *models.Draft) any { return d.ServiceRadiusKm },
	},
	FieldSpecialties: {
		step: StepServices,
		set: func(d *models.Draft, value any) error {
			list, ok := value.([]string)
			if !ok {
				return typeError(FieldSpecialties, "[]string", value)
			}
			d.Specialties = append([]string(nil), list...)
			return nil
		},
		get: func(d *models.Draft) any { return append([]string(nil), d.Specialties...) },
	},
	FieldYearsExperience: {
		step: StepServices,
		set: func(d *models.Draft, value any) error {
			switch v := value.(type) {
			case nil:
				d.YearsExperience = nil
			case int:
				d.YearsExperience = &v
			default:
				return typeError(FieldYearsExperience, "int", value)
			}
			return nil
		},
		get: func(d *models.Draft) any { return derefOrNil(d.YearsExperience) },
	},
}

func setString(target func(*models.Draft) *string) func(*models.Draft, any) error {
	return func(d *models.Draft, value any) error {
		s, ok := value.(string)
		if !ok {
			return &InvalidValueError{Reason: fmt.Sprintf("expected string, got %T", value)}
		}
		*target(d) = s
		return nil
	}
}

// setCoordinate accepts a float64, or nil to clear the coordinate.
func setCoordinate(target func(*models.Draft) **float64) func(*models.Draft, any) error {
	return func(d *models.Draft, value any) error {
		switch v := value.(type) {
		case nil:
			*target(d) = nil
		case float64:
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return &InvalidValueError{Reason: "coordinate must be a finite number"}
			}
			*target(d) = &v
		default:
			return &InvalidValueError{Reason: fmt.Sprintf("expected float64, got %T", value)}
		}
		return nil
	}
}

// derefOrNil returns *v, or an untyped nil so the value round-trips through
// the matching setter.
func derefOrNil[T any](v *T) any {
	if v == nil {
		return nil
	}
	return *v
}

func typeError(field Field, want string, got any) error {
	return &InvalidValueError{Field: field, Reason: fmt.Sprintf("expected %s, got %T", want, got)}
}

// stepComplete holds the entry gate of each data step. These are looser than
// the server's completion rules: presence only, no ranges.
var stepComplete = map[Step]func(d *models.Draft) bool{
	StepBasicInfo: func(d *models.Draft) bool {
		return !pstrings.IsBlank(d.Phone) &&
			!pstrings.IsBlank(d.BusinessName) &&
			!pstrings.IsBlank(d.BusinessType)
	},
	StepLocation: func(d *models.Draft) bool {
		return !pstrings.IsBlank(d.Address) &&
			d.Latitude != nil &&
			d.Longitude != nil &&
			d.ServiceRadiusKm > 0
	},
	StepServices: func(d *models.Draft) bool {
		for _, s := range d.Specialties {
			if !pstrings.IsBlank(s) {
				return true
			}
		}
		return false
	},
}

// gatingSteps must all be complete before the wizard can be finished.
var gatingSteps = []Step{StepBasicInfo, StepLocation, StepServices}

func isStepComplete(d *models.Draft, step Step) bool {
	if step == StepReview {
		for _, s := range gatingSteps {
			if !stepComplete[s](d) {
				return false
			}
		}
		return true
	}
	check, ok := stepComplete[step]
	return ok && check(d)
}

// firstIncompleteStep is where a resumed wizard opens.
func firstIncompleteStep(d *models.Draft) Step {
	for _, s := range gatingSteps {
		if !stepComplete[s](d) {
			return s
		}
	}
	return StepReview
}
