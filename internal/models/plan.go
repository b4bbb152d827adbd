package models

import "time"

// PlanStatus is the lifecycle state of an activation plan.
type PlanStatus string

const (
	PlanDraft     PlanStatus = "draft"
	PlanFinalized PlanStatus = "finalized"
	PlanCompleted PlanStatus = "completed"
	PlanCancelled PlanStatus = "cancelled"
)

// Valid reports whether s is one of the known statuses.
func (s PlanStatus) Valid() bool {
	switch s {
	case PlanDraft, PlanFinalized, PlanCompleted, PlanCancelled:
		return true
	}
	return false
}

// TimeSlot is one band/mode block inside an activation.
type TimeSlot struct {
	StartTime string   `json:"startTime"` // HH:mm park-local
	EndTime   string   `json:"endTime"`   // HH:mm park-local
	Band      string   `json:"band"`
	Mode      string   `json:"mode"`
	Frequency *float64 `json:"frequency,omitempty"` // MHz
	Notes     string   `json:"notes,omitempty"`
}

// Plan is a scheduled activation at a park.
type Plan struct {
	ID                string           `json:"id"` // lowercase v4 UUID
	Name              string           `json:"name"`
	ParkReference     string           `json:"parkReference"`
	ParkName          string           `json:"parkName,omitempty"`
	ActivationDate    string           `json:"activationDate"` // YYYY-MM-DD
	StartTime         string           `json:"startTime"`      // HH:mm park-local
	EndTime           string           `json:"endTime"`        // HH:mm park-local
	EquipmentPresetID *int64           `json:"equipmentPresetId,omitempty"`
	EquipmentPreset   *EquipmentPreset `json:"equipmentPreset,omitempty"`
	Bands             []string         `json:"bands"`
	TimeSlots         []TimeSlot       `json:"timeSlots"`
	OperatorCallsign  string           `json:"operatorCallsign,omitempty"`
	Notes             string           `json:"notes,omitempty"`
	Status            PlanStatus       `json:"status"`
	CreatedAt         time.Time        `json:"createdAt"`
	UpdatedAt         time.Time        `json:"updatedAt"`
}

// PlanInput carries the fields for a new plan. Optional string fields are
// pointers so that "absent" is stored as NULL rather than "".
type PlanInput struct {
	Name              string     `json:"name"`
	ParkReference     string     `json:"parkReference"`
	ActivationDate    string     `json:"activationDate"`
	StartTime         string     `json:"startTime"`
	EndTime           string     `json:"endTime"`
	EquipmentPresetID *int64     `json:"equipmentPresetId,omitempty"`
	Bands             []string   `json:"bands"`
	TimeSlots         []TimeSlot `json:"timeSlots"`
	OperatorCallsign  *string    `json:"operatorCallsign,omitempty"`
	Notes             *string    `json:"notes,omitempty"`
	Status            PlanStatus `json:"status,omitempty"`
}

// PlanUpdate is a partial update. Nil fields are left untouched.
type PlanUpdate struct {
	Name              *string     `json:"name,omitempty"`
	ParkReference     *string     `json:"parkReference,omitempty"`
	ActivationDate    *string     `json:"activationDate,omitempty"`
	StartTime         *string     `json:"startTime,omitempty"`
	EndTime           *string     `json:"endTime,omitempty"`
	EquipmentPresetID *int64      `json:"equipmentPresetId,omitempty"`
	ClearPreset       bool        `json:"clearPreset,omitempty"` // detach the preset
	Bands             *[]string   `json:"bands,omitempty"`
	TimeSlots         *[]TimeSlot `json:"timeSlots,omitempty"`
	OperatorCallsign  *string     `json:"operatorCallsign,omitempty"`
	Notes             *string     `json:"notes,omitempty"`
	Status            *PlanStatus `json:"status,omitempty"`
}

// IsEmpty reports whether no field is set.
func (u PlanUpdate) IsEmpty() bool {
	return u.Name == nil && u.ParkReference == nil && u.ActivationDate == nil &&
		u.StartTime == nil && u.EndTime == nil && u.EquipmentPresetID == nil && !u.ClearPreset &&
		u.Bands == nil && u.TimeSlots == nil && u.OperatorCallsign == nil &&
		u.Notes == nil && u.Status == nil
}

// PlanListFilters narrows a plan listing. Dates are inclusive.
type PlanListFilters struct {
	ParkReference string `json:"parkReference,omitempty"`
	DateFrom      string `json:"dateFrom,omitempty"`
	DateTo        string `json:"dateTo,omitempty"`
	Limit         int    `json:"limit,omitempty"`
	Offset        int    `json:"offset,omitempty"`
}

// PlanListResult is one page of plans.
type PlanListResult struct {
	Plans   []Plan `json:"plans"`
	Total   int    `json:"total"`
	HasMore bool   `json:"hasMore"`
}

// Fallback display values for presets with missing fields.
const (
	FallbackRadio      = "Various"
	FallbackAntenna    = "Various"
	FallbackPowerWatts = 100
	FallbackMode       = "SSB"
)

// EquipmentPreset is a named radio/antenna/power combination.
type EquipmentPreset struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Radio      string `json:"radio"`
	Antenna    string `json:"antenna"`
	PowerWatts int    `json:"powerWatts"`
	Mode       string `json:"mode"`
	Notes      string `json:"notes,omitempty"`
	IsBuiltin  bool   `json:"isBuiltin"`
}

// WithFallbacks fills empty display fields with the fallback values.
func (p EquipmentPreset) WithFallbacks() EquipmentPreset {
	if p.Radio == "" {
		p.Radio = FallbackRadio
	}
	if p.Antenna == "" {
		p.Antenna = FallbackAntenna
	}
	if p.PowerWatts == 0 {
		p.PowerWatts = FallbackPowerWatts
	}
	if p.Mode == "" {
		p.Mode = FallbackMode
	}
	return p
}
