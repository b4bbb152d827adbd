package models

// Profile identifies the operator.
type Profile struct {
	Callsign string `json:"callsign"`
	Name     string `json:"name"`
	HomeGrid string `json:"homeGrid"`
}

// Settings are the persisted user preferences.
type Settings struct {
	Profile            Profile `json:"profile"`
	Theme              string  `json:"theme"` // "dark" or "light"
	Units              string  `json:"units"` // "imperial" or "metric"
	OnboardingComplete bool    `json:"onboardingComplete"`
}

// DefaultSettings is what a fresh install starts with.
func DefaultSettings() Settings {
	return Settings{Theme: "dark", Units: "imperial"}
}
