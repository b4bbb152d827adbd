// Package wizard tracks the steps of building a plan. It is bookkeeping
// only; callers decide when a step is satisfied.
package wizard

import "github.com/ngmaloney/pota-planner/internal/models"

// Step is one page of the plan wizard.
type Step int

const (
	StepPark Step = iota
	StepDateTime
	StepEquipment
	StepBands
	StepReview
)

// Steps lists every step in order.
var Steps = []Step{StepPark, StepDateTime, StepEquipment, StepBands, StepReview}

var stepNames = [...]string{"park", "datetime", "equipment", "bands", "review"}

func (s Step) String() string {
	if s < StepPark || s > StepReview {
		return "unknown"
	}
	return stepNames[s]
}

// Draft is the partially filled plan. Nil fields have not been entered.
type Draft struct {
	Name              *string
	ParkReference     *string
	ActivationDate    *string
	StartTime         *string
	EndTime           *string
	EquipmentPresetID *int64
	Bands             *[]string
	TimeSlots         *[]models.TimeSlot
	OperatorCallsign  *string
	Notes             *string
}

// merge copies every non-nil field of patch over d.
func (d *Draft) merge(patch Draft) {
	if patch.Name != nil {
		d.Name = patch.Name
	}
	if patch.ParkReference != nil {
		d.ParkReference = patch.ParkReference
	}
	if patch.ActivationDate != nil {
		d.ActivationDate = patch.ActivationDate
	}
	if patch.StartTime != nil {
		d.StartTime = patch.StartTime
	}
	if patch.EndTime != nil {
		d.EndTime = patch.EndTime
	}
	if patch.EquipmentPresetID != nil {
		d.EquipmentPresetID = patch.EquipmentPresetID
	}
	if patch.Bands != nil {
		d.Bands = patch.Bands
	}
	if patch.TimeSlots != nil {
		d.TimeSlots = patch.TimeSlots
	}
	if patch.OperatorCallsign != nil {
		d.OperatorCallsign = patch.OperatorCallsign
	}
	if patch.Notes != nil {
		d.Notes = patch.Notes
	}
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

// Input converts the draft into a create request. Missing fields are left
// empty for the validator to reject.
func (d Draft) Input() models.PlanInput {
	return models.PlanInput{
		Name:              deref(d.Name),
		ParkReference:     deref(d.ParkReference),
		ActivationDate:    deref(d.ActivationDate),
		StartTime:         deref(d.StartTime),
		EndTime:           deref(d.EndTime),
		EquipmentPresetID: d.EquipmentPresetID,
		Bands:             deref(d.Bands),
		TimeSlots:         deref(d.TimeSlots),
		OperatorCallsign:  d.OperatorCallsign,
		Notes:             d.Notes,
	}
}

// State is a snapshot of the machine.
type State struct {
	CurrentStep    Step
	CompletedSteps []Step
	Draft          Draft
}

// Machine is the wizard state. The zero value is ready to use and starts
// at StepPark.
type Machine struct {
	current   Step
	completed map[Step]bool
	draft     Draft
}

// New returns a machine at the first step.
func New() *Machine {
	return &Machine{}
}

// Current returns the active step.
func (m *Machine) Current() Step {
	return m.current
}

// Next advances one step; at the review step it does nothing.
func (m *Machine) Next() Step {
	if m.current < StepReview {
		m.current++
	}
	return m.current
}

// Previous goes back one step; at the park step it does nothing.
func (m *Machine) Previous() Step {
	if m.current > StepPark {
		m.current--
	}
	return m.current
}

// CompleteStep marks step done. Repeating it has no effect.
func (m *Machine) CompleteStep(step Step) {
	if m.completed == nil {
		m.completed = make(map[Step]bool)
	}
	m.completed[step] = true
}

// IsCompleted reports whether step has been completed.
func (m *Machine) IsCompleted(step Step) bool {
	return m.completed[step]
}

// CompletedSteps returns the completed steps in wizard order.
func (m *Machine) CompletedSteps() []Step {
	steps := make([]Step, 0, len(m.completed))
	for _, s := range Steps {
		if m.completed[s] {
			steps = append(steps, s)
		}
	}
	return steps
}

// UpdatePartialPlan shallow-merges patch into the draft; later values for
// the same field win.
func (m *Machine) UpdatePartialPlan(patch Draft) {
	m.draft.merge(patch)
}

// Draft returns the accumulated plan fields.
func (m *Machine) Draft() Draft {
	return m.draft
}

// Reset returns to the park step with nothing completed and an empty draft.
func (m *Machine) Reset() {
	*m = Machine{}
}

// State returns a snapshot.
func (m *Machine) State() State {
	return State{
		CurrentStep:    m.current,
		CompletedSteps: m.CompletedSteps(),
		Draft:          m.draft,
	}
}
