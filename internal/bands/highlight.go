// Package bands turns hour-by-hour band condition data into activation
// advice: which hours an activation covers and which bands to work.
package bands

import (
	"sort"
	"strings"
	"time"

	"github.com/ngmaloney/pota-planner/internal/timeconv"
)

// HourSet is a set of hours of the day (0-23).
type HourSet [24]bool

// Add inserts hour h modulo 24.
func (s *HourSet) Add(h int) {
	s[((h%24)+24)%24] = true
}

// Contains reports whether hour h is in the set.
func (s HourSet) Contains(h int) bool {
	return s[((h%24)+24)%24]
}

// Hours returns the members in ascending order.
func (s HourSet) Hours() []int {
	hours := make([]int, 0, 24)
	for h, in := range s {
		if in {
			hours = append(hours, h)
		}
	}
	return hours
}

// Len returns the number of hours in the set.
func (s HourSet) Len() int {
	n := 0
	for _, in := range s {
		if in {
			n++
		}
	}
	return n
}

// HighlightHours returns the hours covered by an activation running from
// start to end ("HH:mm"). An end with nonzero minutes rounds up and that
// hour is included; an end exactly on the hour is excluded. A start hour
// after the end hour wraps past midnight.
//
// ok is false when either time is missing or unparseable; callers then
// highlight the current hour instead.
func HighlightHours(start, end string) (HourSet, bool) {
	var set HourSet
	if start == "" || end == "" {
		return set, false
	}
	s, ok := parseClock(start)
	if !ok {
		return set, false
	}
	e, ok := parseClock(end)
	if !ok {
		return set, false
	}

	endHour := e.Hour
	inclusive := e.Minute > 0
	if inclusive {
		endHour++
	}

	if s.Hour > endHour {
		for h := s.Hour; h <= 23; h++ {
			set.Add(h)
		}
		for h := 0; h < endHour || (inclusive && h == endHour); h++ {
			set.Add(h)
		}
		return set, true
	}

	for h := s.Hour; h < endHour || (inclusive && h == endHour); h++ {
		set.Add(h)
	}
	return set, true
}

// parseClock accepts only real wall-clock times; "25:99" and "+9:00" fail.
func parseClock(clock string) (timeconv.LocalTime, bool) {
	t, err := time.Parse("15:04", strings.TrimSpace(clock))
	if err != nil {
		return timeconv.LocalTime{}, false
	}
	return timeconv.LocalTime{Hour: t.Hour(), Minute: t.Minute()}, true
}

// ActivationHighlightHours is HighlightHours with the fallback applied: a
// missing or malformed window highlights only the current hour of now.
func ActivationHighlightHours(start, end string, now time.Time) HourSet {
	if set, ok := HighlightHours(start, end); ok {
		return set
	}
	var set HourSet
	set.Add(now.Hour())
	return set
}

// UTCHours converts a park-local activation window on date into the set of
// UTC hours it covers, for lining up against UTC propagation data. Hours
// before the start hour belong to the following day.
func UTCHours(date, start, end, zone string) (HourSet, bool) {
	local, ok := HighlightHours(start, end)
	if !ok {
		return HourSet{}, false
	}
	year, month, day, ok := timeconv.ParseDate(date)
	if !ok {
		return HourSet{}, false
	}
	startHour, _ := parseClock(start)
	next := time.Date(year, time.Month(month), day+1, 0, 0, 0, 0, time.UTC).Format("2006-01-02")

	var set HourSet
	for _, h := range local.Hours() {
		onDate := date
		if h < startHour.Hour {
			onDate = next
		}
		clock := time.Date(2000, 1, 1, h, 0, 0, 0, time.UTC).Format("15:04")
		instant, ok := timeconv.ToUTCInstant(onDate, clock, zone)
		if !ok {
			return HourSet{}, false
		}
		set.Add(instant.Hour())
	}
	return set, true
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return bandIndex(keys[i]) < bandIndex(keys[j]) })
	return keys
}
