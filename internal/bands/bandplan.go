package bands

// Band describes an amateur band by name and frequency range in MHz.
type Band struct {
	Name  string
	From  float64
	To    float64
	Modes []string
}

// Contains indicates if the band contains the given frequency.
func (b Band) Contains(mhz float64) bool {
	return mhz >= b.From && mhz <= b.To
}

// Plan is the set of bands known to the planner, lowest first.
var Plan = []Band{
	{Name: "160m", From: 1.8, To: 2.0, Modes: []string{"CW", "SSB", "FT8"}},
	{Name: "80m", From: 3.5, To: 4.0, Modes: []string{"CW", "SSB", "FT8"}},
	{Name: "60m", From: 5.3305, To: 5.4065, Modes: []string{"CW", "SSB", "FT8"}},
	{Name: "40m", From: 7.0, To: 7.3, Modes: []string{"CW", "SSB", "FT8"}},
	{Name: "30m", From: 10.1, To: 10.15, Modes: []string{"CW", "FT8"}},
	{Name: "20m", From: 14.0, To: 14.35, Modes: []string{"CW", "SSB", "FT8"}},
	{Name: "17m", From: 18.068, To: 18.168, Modes: []string{"CW", "SSB", "FT8"}},
	{Name: "15m", From: 21.0, To: 21.45, Modes: []string{"CW", "SSB", "FT8"}},
	{Name: "12m", From: 24.89, To: 24.99, Modes: []string{"CW", "SSB", "FT8"}},
	{Name: "10m", From: 28.0, To: 29.7, Modes: []string{"CW", "SSB", "FM", "FT8"}},
	{Name: "6m", From: 50.0, To: 54.0, Modes: []string{"CW", "SSB", "FM", "FT8"}},
	{Name: "2m", From: 144.0, To: 148.0, Modes: []string{"SSB", "FM"}},
	{Name: "70cm", From: 420.0, To: 450.0, Modes: []string{"SSB", "FM"}},
}

// Modes the planner accepts on time slots and presets.
var Modes = []string{"CW", "SSB", "FM", "AM", "FT8", "FT4", "RTTY", "PSK31"}

// Lookup returns the band with the given name.
func Lookup(name string) (Band, bool) {
	for _, b := range Plan {
		if b.Name == name {
			return b, true
		}
	}
	return Band{}, false
}

// ByFrequency returns the band for the matching frequency.
func ByFrequency(mhz float64) (Band, bool) {
	for _, b := range Plan {
		if b.Contains(mhz) {
			return b, true
		}
	}
	return Band{}, false
}

// IsMode reports whether m is a known mode.
func IsMode(m string) bool {
	for _, mode := range Modes {
		if mode == m {
			return true
		}
	}
	return false
}

// bandIndex orders bands by frequency; unknown names sort last.
func bandIndex(name string) int {
	for i, b := range Plan {
		if b.Name == name {
			return i
		}
	}
	return len(Plan)
}
