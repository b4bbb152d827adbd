package api

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/ngmaloney/pota-planner/internal/bands"
	"github.com/ngmaloney/pota-planner/internal/models"
	"github.com/ngmaloney/pota-planner/internal/parks"
)

const maxNameLength = 200

var (
	uuidPattern     = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-4[0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}$`)
	clockPattern    = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)
	gridPattern     = regexp.MustCompile(`^[A-Ra-r]{2}[0-9]{2}([A-Xa-x]{2})?$`)
	callsignPattern = regexp.MustCompile(`^[A-Za-z0-9]{1,4}[0-9][A-Za-z0-9/]{1,8}$`)
)

// ValidationError lists every problem found with a request.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "invalid request: " + strings.Join(e.Problems, "; ")
}

type validator struct {
	problems []string
}

func (v *validator) addf(format string, args ...any) {
	v.problems = append(v.problems, fmt.Sprintf(format, args...))
}

func (v *validator) err() error {
	if len(v.problems) == 0 {
		return nil
	}
	return &ValidationError{Problems: v.problems}
}

func (v *validator) reference(field, ref string) {
	if !parks.ValidReference(ref) {
		v.addf("%s must look like K-0039, got %q", field, ref)
	}
}

func (v *validator) planID(id string) {
	if !uuidPattern.MatchString(id) {
		v.addf("id must be a lowercase v4 UUID, got %q", id)
	}
}

func (v *validator) name(field, name string) {
	n := utf8.RuneCountInString(strings.TrimSpace(name))
	if n < 1 || n > maxNameLength {
		v.addf("%s must be 1-%d characters", field, maxNameLength)
	}
}

func (v *validator) clock(field, s string) {
	if !clockPattern.MatchString(s) {
		v.addf("%s must be HH:mm, got %q", field, s)
	}
}

func (v *validator) date(field, s string) {
	if _, err := time.Parse("2006-01-02", s); err != nil {
		v.addf("%s must be YYYY-MM-DD, got %q", field, s)
	}
}

func (v *validator) coordinates(lat, lon float64) {
	if math.IsNaN(lat) || lat < -90 || lat > 90 {
		v.addf("latitude must be between -90 and 90, got %v", lat)
	}
	if math.IsNaN(lon) || lon < -180 || lon > 180 {
		v.addf("longitude must be between -180 and 180, got %v", lon)
	}
}

func (v *validator) grid(s string) {
	if len(s) != 4 && len(s) != 6 {
		v.addf("grid square must be 4 or 6 characters, got %q", s)
		return
	}
	if !gridPattern.MatchString(s) {
		v.addf("grid square %q is not a Maidenhead locator", s)
	}
}

func (v *validator) page(limit, offset int) {
	if limit < 0 {
		v.addf("limit must not be negative")
	}
	if offset < 0 {
		v.addf("offset must not be negative")
	}
}

func (v *validator) band(b string) {
	if _, ok := bands.Lookup(b); !ok {
		v.addf("unknown band %q", b)
	}
}

func (v *validator) timeSlots(slots []models.TimeSlot) {
	for i, s := range slots {
		v.clock(fmt.Sprintf("timeSlots[%d].startTime", i), s.StartTime)
		v.clock(fmt.Sprintf("timeSlots[%d].endTime", i), s.EndTime)
		b, ok := bands.Lookup(s.Band)
		if !ok {
			v.addf("timeSlots[%d]: unknown band %q", i, s.Band)
		}
		if !bands.IsMode(s.Mode) {
			v.addf("timeSlots[%d]: unknown mode %q", i, s.Mode)
		}
		if ok && s.Frequency != nil && !b.Contains(*s.Frequency) {
			v.addf("timeSlots[%d]: %.3f MHz is outside %s", i, *s.Frequency, b.Name)
		}
	}
}

func validateSearch(f models.ParkSearchFilters) error {
	var v validator
	v.page(f.Limit, f.Offset)
	if b := f.Bounds; b != nil {
		v.coordinates(b.North, b.East)
		v.coordinates(b.South, b.West)
		if b.South > b.North {
			v.addf("bounds south %v is north of north %v", b.South, b.North)
		}
	}
	return v.err()
}

func validatePlanInput(in models.PlanInput) error {
	var v validator
	v.name("name", in.Name)
	v.reference("parkReference", in.ParkReference)
	v.date("activationDate", in.ActivationDate)
	v.clock("startTime", in.StartTime)
	v.clock("endTime", in.EndTime)
	for _, b := range in.Bands {
		v.band(b)
	}
	v.timeSlots(in.TimeSlots)
	if in.Status != "" && !in.Status.Valid() {
		v.addf("unknown status %q", in.Status)
	}
	if in.OperatorCallsign != nil && *in.OperatorCallsign != "" && !callsignPattern.MatchString(*in.OperatorCallsign) {
		v.addf("operator callsign %q is not valid", *in.OperatorCallsign)
	}
	return v.err()
}

func validatePlanUpdate(id string, u models.PlanUpdate) error {
	var v validator
	v.planID(id)
	if u.Name != nil {
		v.name("name", *u.Name)
	}
	if u.ParkReference != nil {
		v.reference("parkReference", *u.ParkReference)
	}
	if u.ActivationDate != nil {
		v.date("activationDate", *u.ActivationDate)
	}
	if u.StartTime != nil {
		v.clock("startTime", *u.StartTime)
	}
	if u.EndTime != nil {
		v.clock("endTime", *u.EndTime)
	}
	if u.Bands != nil {
		for _, b := range *u.Bands {
			v.band(b)
		}
	}
	if u.TimeSlots != nil {
		v.timeSlots(*u.TimeSlots)
	}
	if u.Status != nil && !u.Status.Valid() {
		v.addf("unknown status %q", *u.Status)
	}
	if u.OperatorCallsign != nil && *u.OperatorCallsign != "" && !callsignPattern.MatchString(*u.OperatorCallsign) {
		v.addf("operator callsign %q is not valid", *u.OperatorCallsign)
	}
	return v.err()
}

func validatePlanList(f models.PlanListFilters) error {
	var v validator
	v.page(f.Limit, f.Offset)
	if f.ParkReference != "" {
		v.reference("parkReference", f.ParkReference)
	}
	if f.DateFrom != "" {
		v.date("dateFrom", f.DateFrom)
	}
	if f.DateTo != "" {
		v.date("dateTo", f.DateTo)
	}
	return v.err()
}

func validatePreset(p models.EquipmentPreset) error {
	var v validator
	v.name("name", p.Name)
	if p.PowerWatts < 0 || p.PowerWatts > 1500 {
		v.addf("power must be 0-1500 W, got %d", p.PowerWatts)
	}
	if p.Mode != "" && !bands.IsMode(p.Mode) {
		v.addf("unknown mode %q", p.Mode)
	}
	return v.err()
}

func validateSettings(s models.Settings) error {
	var v validator
	if s.Theme != "dark" && s.Theme != "light" {
		v.addf("theme must be dark or light, got %q", s.Theme)
	}
	if s.Units != "imperial" && s.Units != "metric" {
		v.addf("units must be imperial or metric, got %q", s.Units)
	}
	if s.Profile.HomeGrid != "" {
		v.grid(s.Profile.HomeGrid)
	}
	if s.Profile.Callsign != "" && !callsignPattern.MatchString(s.Profile.Callsign) {
		v.addf("callsign %q is not valid", s.Profile.Callsign)
	}
	return v.err()
}
