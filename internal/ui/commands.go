package ui

import (
	"context"
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ngmaloney/pota-planner/internal/api"
	"github.com/ngmaloney/pota-planner/internal/models"
)

// Planner is the subset of api.Handler the UI calls.
type Planner interface {
	SearchParks(ctx context.Context, f models.ParkSearchFilters) api.Response[models.ParkSearchResult]
	GetPark(ctx context.Context, ref string) api.Response[models.Park]
	ToggleFavorite(ctx context.Context, ref string) api.Response[models.FavoriteToggle]
	GetWeather(ctx context.Context, lat, lon float64) api.Response[*models.WeatherData]
	GetBandRecommendations(ctx context.Context, req api.BandRequest) api.Response[api.BandReport]
	ListPresets(ctx context.Context) api.Response[[]models.EquipmentPreset]
	CreatePlan(ctx context.Context, in models.PlanInput) api.Response[models.Plan]
	ListPlans(ctx context.Context, f models.PlanListFilters) api.Response[models.PlanListResult]
	DeletePlan(ctx context.Context, id string) api.Response[bool]
}

// ProvisionFunc performs first-run setup, reporting progress lines.
type ProvisionFunc func(ctx context.Context, progress chan<- string) error

// respErr turns a failed response into an error.
func respErr[T any](r api.Response[T]) error {
	if r.Success {
		return nil
	}
	if r.Error == "" {
		return errors.New(string(r.ErrorCode))
	}
	return errors.New(r.Error)
}

// searchParks runs a park search in the background
func searchParks(p Planner, f models.ParkSearchFilters) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return parksSearchedMsg{resp: p.SearchParks(ctx, f)}
	}
}

// loadPark loads a park, resolving its timezone on first view
func loadPark(p Planner, ref string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return parkLoadedMsg{resp: p.GetPark(ctx, ref)}
	}
}

func toggleFavorite(p Planner, ref string) tea.Cmd {
	return func() tea.Msg {
		return favoriteToggledMsg{resp: p.ToggleFavorite(context.Background(), ref)}
	}
}

// fetchWeather fetches (or reads cached) weather for a park
func fetchWeather(p Planner, lat, lon float64) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return weatherLoadedMsg{resp: p.GetWeather(ctx, lat, lon)}
	}
}

// fetchBands computes the band report for a park and date
func fetchBands(p Planner, req api.BandRequest) tea.Cmd {
	return func() tea.Msg {
		return bandsLoadedMsg{resp: p.GetBandRecommendations(context.Background(), req)}
	}
}

func loadPresets(p Planner) tea.Cmd {
	return func() tea.Msg {
		return presetsLoadedMsg{resp: p.ListPresets(context.Background())}
	}
}

func createPlan(p Planner, in models.PlanInput) tea.Cmd {
	return func() tea.Msg {
		return planSavedMsg{resp: p.CreatePlan(context.Background(), in)}
	}
}

func loadPlans(p Planner) tea.Cmd {
	return func() tea.Msg {
		return plansLoadedMsg{resp: p.ListPlans(context.Background(), models.PlanListFilters{})}
	}
}

func deletePlan(p Planner, id string) tea.Cmd {
	return func() tea.Msg {
		return planDeletedMsg{id: id, resp: p.DeletePlan(context.Background(), id)}
	}
}

// initiateProvisioning starts provision in a goroutine and hands its
// channels to the model.
func initiateProvisioning(provision ProvisionFunc) tea.Cmd {
	return func() tea.Msg {
		progress := make(chan string, 16)
		result := make(chan error, 1)
		go func() {
			defer close(progress)
			result <- provision(context.Background(), progress)
		}()
		return provisioningStartedMsg{progressChan: progress, resultChan: result}
	}
}

// waitForProvisionStatus blocks for the next progress line
func waitForProvisionStatus(ch <-chan string) tea.Cmd {
	return func() tea.Msg {
		status, ok := <-ch
		if !ok {
			return nil
		}
		return provisionStatusMsg(status)
	}
}

// waitForProvisionResult blocks until provisioning finishes
func waitForProvisionResult(ch <-chan error) tea.Cmd {
	return func() tea.Msg {
		return provisionResultMsg{err: <-ch}
	}
}
