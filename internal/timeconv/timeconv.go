// Package timeconv converts park-local wall-clock activation times to UTC
// instants and back.
//
// Activations are planned in local time at the park, while weather and
// propagation data are indexed by UTC. The conversion guesses the offset at
// the naive instant, then re-checks it at the corrected instant so that a
// guess landing on the other side of a DST transition is fixed in one pass.
package timeconv

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"
	_ "time/tzdata" // IANA database for hosts without zoneinfo
)

// LocalTime is an hour/minute pair on a local wall clock.
type LocalTime struct {
	Hour   int
	Minute int
}

func (l LocalTime) String() string {
	return fmt.Sprintf("%02d:%02d", l.Hour, l.Minute)
}

var locations sync.Map // zone name -> *time.Location

// loadLocation caches time.LoadLocation results.
func loadLocation(zone string) (*time.Location, error) {
	if loc, ok := locations.Load(zone); ok {
		return loc.(*time.Location), nil
	}
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return nil, err
	}
	locations.Store(zone, loc)
	return loc, nil
}

// ValidZone reports whether zone names a loadable IANA location.
func ValidZone(zone string) bool {
	if zone == "" {
		return false
	}
	_, err := loadLocation(zone)
	return err == nil
}

// ParseDate splits "YYYY-MM-DD" into integers.
func ParseDate(date string) (year, month, day int, ok bool) {
	parts := strings.Split(strings.TrimSpace(date), "-")
	if len(parts) != 3 {
		return 0, 0, 0, false
	}
	nums, ok := atoiAll(parts)
	if !ok {
		return 0, 0, 0, false
	}
	return nums[0], nums[1], nums[2], true
}

// ParseClock splits "HH:mm" into integers.
func ParseClock(clock string) (LocalTime, bool) {
	parts := strings.Split(strings.TrimSpace(clock), ":")
	if len(parts) != 2 {
		return LocalTime{}, false
	}
	nums, ok := atoiAll(parts)
	if !ok {
		return LocalTime{}, false
	}
	return LocalTime{Hour: nums[0], Minute: nums[1]}, true
}

func atoiAll(parts []string) ([]int, bool) {
	nums := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, false
		}
		nums[i] = n
	}
	return nums, true
}

// OffsetMinutes returns the zone's offset from UTC at instant at, in
// minutes. "UTC-7" is -420.
func OffsetMinutes(zone string, at time.Time) (int, error) {
	loc, err := loadLocation(zone)
	if err != nil {
		return 0, fmt.Errorf("loading zone %q: %w", zone, err)
	}
	_, seconds := at.In(loc).Zone()
	return seconds / 60, nil
}

// ToUTCInstant converts a park-local date and "HH:mm" time in zone to a UTC
// instant. ok is false only when date or clock fail to parse. Components are
// normalized the way time.Date does (e.g. month 13 rolls into next year).
//
// If the zone cannot be loaded the naive instant (components read as UTC)
// is returned unadjusted.
//
// A repeated "fall back" hour resolves to its first occurrence. A local time
// inside a "spring forward" gap does not exist; it resolves to the wall time
// shifted forward by the gap, e.g. 02:30 becomes 03:30 on a US transition day.
func ToUTCInstant(date, clock, zone string) (time.Time, bool) {
	year, month, day, ok := ParseDate(date)
	if !ok {
		return time.Time{}, false
	}
	lt, ok := ParseClock(clock)
	if !ok {
		return time.Time{}, false
	}

	baseUTC := time.Date(year, time.Month(month), day, lt.Hour, lt.Minute, 0, 0, time.UTC)
	if zone == "UTC" {
		return baseUTC, true
	}

	firstOffset, err := OffsetMinutes(zone, baseUTC)
	if err != nil {
		return baseUTC, true
	}
	adjusted := baseUTC.Add(-time.Duration(firstOffset) * time.Minute)

	secondOffset, err := OffsetMinutes(zone, adjusted)
	if err != nil || secondOffset == firstOffset {
		return adjusted, true
	}
	corrected := baseUTC.Add(-time.Duration(secondOffset) * time.Minute)

	// Both offsets failing to reproduce the wall time means it falls in a gap.
	want := LocalTime{Hour: baseUTC.Hour(), Minute: baseUTC.Minute()}
	if InstantToLocalTime(corrected, zone) != want && InstantToLocalTime(adjusted, zone) != want {
		if adjusted.After(corrected) {
			return adjusted, true
		}
	}
	return corrected, true
}

// InstantToLocalTime renders t on the wall clock of zone. Unknown zones are
// treated as UTC.
func InstantToLocalTime(t time.Time, zone string) LocalTime {
	loc, err := loadLocation(zone)
	if err != nil {
		loc = time.UTC
	}
	local := t.In(loc)
	return LocalTime{Hour: local.Hour(), Minute: local.Minute()}
}

// OffsetLabel formats the zone offset at instant at as "UTC-7" or
// "UTC+5:30". It returns "UTC?" when the zone cannot be loaded.
func OffsetLabel(zone string, at time.Time) string {
	minutes, err := OffsetMinutes(zone, at)
	if err != nil {
		return "UTC?"
	}
	if minutes == 0 {
		return "UTC"
	}

	sign := "+"
	if minutes < 0 {
		sign = "-"
		minutes = -minutes
	}
	if minutes%60 == 0 {
		return fmt.Sprintf("UTC%s%d", sign, minutes/60)
	}
	return fmt.Sprintf("UTC%s%d:%02d", sign, minutes/60, minutes%60)
}

// ActivationWindowUTC converts a local start/end pair on date to UTC
// instants. An end at or before the start is taken to be on the next day.
func ActivationWindowUTC(date, start, end, zone string) (time.Time, time.Time, bool) {
	startUTC, ok := ToUTCInstant(date, start, zone)
	if !ok {
		return time.Time{}, time.Time{}, false
	}
	endUTC, ok := ToUTCInstant(date, end, zone)
	if !ok {
		return time.Time{}, time.Time{}, false
	}

	if !endUTC.After(startUTC) {
		year, month, day, _ := ParseDate(date)
		next := time.Date(year, time.Month(month), day+1, 0, 0, 0, 0, time.UTC).Format("2006-01-02")
		endUTC, ok = ToUTCInstant(next, end, zone)
		if !ok {
			return time.Time{}, time.Time{}, false
		}
	}
	return startUTC, endUTC, true
}
