package wizard

import (
	"context"
	"slices"
	"sync"

	"garagehub/internal/onboarding/models"
)

//go:generate mockgen -source=controller.go -destination=mocks/mocks.go -package=mocks

// Gateway persists the draft for the signed-in expert.
type Gateway interface {
	SaveDraft(ctx context.Context, draft models.Draft) (*models.Profile, error)
	Complete(ctx context.Context, draft models.Draft) (*models.Profile, error)
}

// Phase is the wizard's lifecycle position.
type Phase int

const (
	PhaseEditing Phase = iota
	// PhaseSaved follows a successful save-and-exit.
	PhaseSaved
	// PhaseCompleted follows a successful final completion.
	PhaseCompleted
)

func (p Phase) String() string {
	switch p {
	case PhaseEditing:
		return "editing"
	case PhaseSaved:
		return "saved"
	case PhaseCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

// Controller holds the local draft across steps. It is safe for concurrent
// use: a UI event loop may edit while a save is in flight.
//
// While a save is in flight Next, SaveAndExit and CompleteFinal return
// ErrBusy. Edits made during the save are kept when the server's copy
// arrives; every other field takes the server's value.
type Controller struct {
	gateway Gateway

	mu           sync.Mutex
	draft        models.Draft
	step         Step
	phase        Phase
	saving       bool
	dirty        map[Field]struct{}
	serverErrors *ServerError
}

// New starts a wizard from the expert's stored profile, or from an empty
// draft when profile is nil. A resumed wizard opens on its first incomplete
// step.
func New(gateway Gateway, profile *models.Profile) *Controller {
	c := &Controller{
		gateway: gateway,
		step:    FirstStep,
		phase:   PhaseEditing,
		dirty:   make(map[Field]struct{}),
	}
	if profile != nil {
		c.draft = models.DraftFromProfile(profile)
		c.step = firstIncompleteStep(&c.draft)
		if profile.ProfileCompleted {
			c.phase = PhaseCompleted
		}
	}
	return c
}

// SetField updates one draft field locally. It never calls the server.
func (c *Controller) SetField(field Field, value any) error {
	fs, ok := fields[field]
	if !ok {
		return ErrUnknownField
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := fs.set(&c.draft, value); err != nil {
		if ive, ok := err.(*InvalidValueError); ok && ive.Field == "" {
			ive.Field = field
		}
		return err
	}
	if c.saving {
		c.dirty[field] = struct{}{}
	}
	if c.serverErrors != nil && c.serverErrors.Kind == ErrorKindValidation {
		delete(c.serverErrors.Fields, string(field))
	}
	if c.phase == PhaseSaved {
		c.phase = PhaseEditing
	}
	return nil
}

// Field returns the current draft value of field.
func (c *Controller) Field(field Field) (any, bool) {
	fs, ok := fields[field]
	if !ok {
		return nil, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return fs.get(&c.draft), true
}

// IsStepComplete evaluates the local gate of step. The review step is
// complete when every data step is.
func (c *Controller) IsStepComplete(step Step) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return isStepComplete(&c.draft, step)
}

// Next advances one step when the current step is complete. It does not
// persist anything.
func (c *Controller) Next() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.saving {
		return ErrBusy
	}
	if c.step >= LastStep {
		return ErrLastStep
	}
	if !isStepComplete(&c.draft, c.step) {
		return ErrStepIncomplete
	}
	c.step++
	return nil
}

// Previous goes back one step without any validation.
func (c *Controller) Previous() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.step <= FirstStep {
		return ErrFirstStep
	}
	c.step--
	return nil
}

// SaveAndExit persists the whole draft regardless of step completeness.
// On failure the draft is kept and the classified error is returned and
// exposed through ServerErrors.
func (c *Controller) SaveAndExit(ctx context.Context) error {
	draft, err := c.begin(false)
	if err != nil {
		return err
	}
	profile, err := c.gateway.SaveDraft(ctx, draft)
	return c.finish(profile, err, PhaseSaved)
}

// CompleteFinal submits the draft as the finished profile. Every data step
// must be complete.
func (c *Controller) CompleteFinal(ctx context.Context) error {
	draft, err := c.begin(true)
	if err != nil {
		return err
	}
	profile, err := c.gateway.Complete(ctx, draft)
	return c.finish(profile, err, PhaseCompleted)
}

func (c *Controller) begin(gated bool) (models.Draft, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.saving {
		return models.Draft{}, ErrBusy
	}
	if gated && !isStepComplete(&c.draft, StepReview) {
		return models.Draft{}, ErrStepIncomplete
	}
	c.saving = true
	clear(c.dirty)
	return cloneDraft(c.draft), nil
}

func (c *Controller) finish(profile *models.Profile, err error, success Phase) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.saving = false
	if err != nil {
		c.serverErrors = classify(err)
		clear(c.dirty)
		return c.serverErrors.clone()
	}

	c.serverErrors = nil
	if profile != nil {
		refreshed := models.DraftFromProfile(profile)
		for field := range c.dirty {
			fs := fields[field]
			_ = fs.set(&refreshed, fs.get(&c.draft))
		}
		c.draft = refreshed
	}
	clear(c.dirty)

	c.phase = success
	if success == PhaseCompleted {
		c.step = StepReview
	}
	return nil
}

// Draft returns a copy of the local draft.
func (c *Controller) Draft() models.Draft {
	c.mu.Lock()
	defer c.mu.Unlock()
	return cloneDraft(c.draft)
}

func (c *Controller) CurrentStep() Step {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.step
}

func (c *Controller) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

// IsSaving reports whether a save or completion is in flight.
func (c *Controller) IsSaving() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.saving
}

// ServerErrors returns the error of the last failed save, or nil after a
// successful one.
func (c *Controller) ServerErrors() *ServerError {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.serverErrors.clone()
}

func cloneDraft(d models.Draft) models.Draft {
	out := d
	out.Specialties = slices.Clone(d.Specialties)
	if d.Latitude != nil {
		v := *d.Latitude
		out.Latitude = &v
	}
	if d.Longitude != nil {
		v := *d.Longitude
		out.Longitude = &v
	}
	if d.YearsExperience != nil {
		v := *d.YearsExperience
		out.YearsExperience = &v
	}
	return out
}
