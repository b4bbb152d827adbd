package ui

import (
	"github.com/ngmaloney/pota-planner/internal/api"
	"github.com/ngmaloney/pota-planner/internal/models"
)

// Message types for async operations. Each carries the handler's response
// envelope; failed responses are turned into errors by the model.

// parksSearchedMsg is sent when a park search completes
type parksSearchedMsg struct {
	resp api.Response[models.ParkSearchResult]
}

// parkLoadedMsg is sent when a single park (with timezone) is loaded
type parkLoadedMsg struct {
	resp api.Response[models.Park]
}

// favoriteToggledMsg is sent when a park's favorite flag flips
type favoriteToggledMsg struct {
	resp api.Response[models.FavoriteToggle]
}

// weatherLoadedMsg is sent when weather for the selected park arrives
type weatherLoadedMsg struct {
	resp api.Response[*models.WeatherData]
}

// bandsLoadedMsg is sent when the band report for the selected park arrives
type bandsLoadedMsg struct {
	resp api.Response[api.BandReport]
}

// presetsLoadedMsg is sent when equipment presets are loaded
type presetsLoadedMsg struct {
	resp api.Response[[]models.EquipmentPreset]
}

// planSavedMsg is sent when the wizard's plan is stored
type planSavedMsg struct {
	resp api.Response[models.Plan]
}

// plansLoadedMsg is sent when the plan list is loaded
type plansLoadedMsg struct {
	resp api.Response[models.PlanListResult]
}

// planDeletedMsg is sent when a plan is deleted
type planDeletedMsg struct {
	id   string
	resp api.Response[bool]
}

// provisioningStartedMsg carries the channels of a running provisioning job
type provisioningStartedMsg struct {
	progressChan <-chan string
	resultChan   <-chan error
}

// provisionStatusMsg is a progress line from provisioning
type provisionStatusMsg string

// provisionResultMsg is sent when provisioning finishes
type provisionResultMsg struct {
	err error
}

// errMsg is a message type for errors
type errMsg struct {
	err error
}
