package ui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ngmaloney/pota-planner/internal/api"
	"github.com/ngmaloney/pota-planner/internal/models"
	"github.com/ngmaloney/pota-planner/internal/wizard"
)

// fakePlanner records calls and answers from canned data
type fakePlanner struct {
	parks   []models.Park
	presets []models.EquipmentPreset
	created []models.PlanInput
	deleted []string
	lastReq api.BandRequest
}

func (f *fakePlanner) SearchParks(ctx context.Context, filters models.ParkSearchFilters) api.Response[models.ParkSearchResult] {
	var out []models.Park
	for _, p := range f.parks {
		if strings.Contains(strings.ToLower(p.Name), strings.ToLower(filters.Query)) {
			out = append(out, p)
		}
	}
	return api.OK(models.ParkSearchResult{Parks: out, Total: len(out)})
}

func (f *fakePlanner) GetPark(ctx context.Context, ref string) api.Response[models.Park] {
	for _, p := range f.parks {
		if p.Reference == ref {
			p.Timezone = "America/Denver"
			return api.OK(p)
		}
	}
	return api.Fail[models.Park](api.CodeNotFound, "park "+ref+" not found")
}

func (f *fakePlanner) ToggleFavorite(ctx context.Context, ref string) api.Response[models.FavoriteToggle] {
	return api.OK(models.FavoriteToggle{Reference: ref, IsFavorite: true})
}

func (f *fakePlanner) GetWeather(ctx context.Context, lat, lon float64) api.Response[*models.WeatherData] {
	return api.Fail[*models.WeatherData](api.CodeNetwork, "offline")
}

func (f *fakePlanner) GetBandRecommendations(ctx context.Context, req api.BandRequest) api.Response[api.BandReport] {
	f.lastReq = req
	return api.OK(api.BandReport{
		OffsetLabel:    "UTC-6",
		HighlightHours: []int{15, 16, 17},
		Recommendations: []models.BandRecommendation{
			{Band: "20m", Condition: models.ConditionExcellent, Reason: "high sun (3 h)"},
			{Band: "40m", Condition: models.ConditionFair, Reason: "daytime (3 h)"},
		},
	})
}

func (f *fakePlanner) ListPresets(ctx context.Context) api.Response[[]models.EquipmentPreset] {
	return api.OK(f.presets)
}

func (f *fakePlanner) CreatePlan(ctx context.Context, in models.PlanInput) api.Response[models.Plan] {
	f.created = append(f.created, in)
	return api.OK(models.Plan{ID: "0b6d3a8e-5c1f-4f1e-9a3b-2f6c7d8e9a0b", Name: in.Name})
}

func (f *fakePlanner) ListPlans(ctx context.Context, filters models.PlanListFilters) api.Response[models.PlanListResult] {
	return api.OK(models.PlanListResult{})
}

func (f *fakePlanner) DeletePlan(ctx context.Context, id string) api.Response[bool] {
	f.deleted = append(f.deleted, id)
	return api.OK(true)
}

func newFakePlanner() *fakePlanner {
	lat, lon := 40.3428, -105.6836
	return &fakePlanner{
		parks: []models.Park{
			{Reference: "K-0039", Name: "Rocky Mountain National Park", Latitude: &lat, Longitude: &lon, LocationDesc: "US-CO"},
			{Reference: "K-4567", Name: "Cherry Creek State Park", LocationDesc: "US-CO"},
		},
		presets: []models.EquipmentPreset{
			{ID: 1, Name: "QRP Portable", PowerWatts: 10, Mode: "CW", IsBuiltin: true},
			{ID: 6, Name: "Hike kit"},
		},
	}
}

func newTestModel(p Planner) Model {
	m := NewModel(Options{
		Planner: p,
		Now:     func() time.Time { return time.Date(2026, 6, 21, 14, 0, 0, 0, time.UTC) },
	})
	m.width, m.height = 120, 40
	return m
}

// run feeds msg to the model and executes returned commands until none
// produce a message the model handles. Batches are expanded.
func run(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	queue := []tea.Msg{msg}
	for i := 0; len(queue) > 0 && i < 50; i++ {
		next := queue[0]
		queue = queue[1:]
		updated, cmd := m.Update(next)
		m = updated.(Model)
		queue = append(queue, drain(cmd)...)
	}
	return m
}

// drain runs cmd and returns the messages it produced, skipping blink and
// tick commands that would block on timers.
func drain(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	done := make(chan tea.Msg, 1)
	go func() { done <- cmd() }()
	var msg tea.Msg
	select {
	case msg = <-done:
	case <-time.After(100 * time.Millisecond):
		return nil
	}
	switch msg := msg.(type) {
	case nil:
		return nil
	case tea.BatchMsg:
		var out []tea.Msg
		for _, c := range msg {
			out = append(out, drain(c)...)
		}
		return out
	case parksSearchedMsg, parkLoadedMsg, favoriteToggledMsg, weatherLoadedMsg, bandsLoadedMsg,
		presetsLoadedMsg, planSavedMsg, plansLoadedMsg, planDeletedMsg:
		return []tea.Msg{msg}
	}
	return nil
}

func typeText(m Model, s string) Model {
	for _, r := range s {
		updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
		m = updated.(Model)
	}
	return m
}

func TestNewModel(t *testing.T) {
	m := NewModel(Options{})

	if m.state != StateSearch {
		t.Errorf("NewModel() state = %v, want StateSearch", m.state)
	}
	if !m.searchInput.Focused() {
		t.Error("Expected search input to be focused initially")
	}
}

func TestModel_Update_WindowSize(t *testing.T) {
	m := NewModel(Options{})

	updatedModel, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	m = updatedModel.(Model)

	if m.width != 120 || m.height != 40 {
		t.Errorf("size = %dx%d, want 120x40", m.width, m.height)
	}
}

func TestModel_Update_ErrorMsg(t *testing.T) {
	m := NewModel(Options{})

	updatedModel, _ := m.Update(errMsg{err: tea.ErrProgramKilled})
	m = updatedModel.(Model)

	if m.state != StateError || m.err == nil {
		t.Errorf("After errMsg, state = %v err = %v", m.state, m.err)
	}

	// Any key returns to search
	updatedModel, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'x'}})
	m = updatedModel.(Model)
	if m.state != StateSearch || m.err != nil {
		t.Errorf("after key, state = %v err = %v", m.state, m.err)
	}
}

func TestModel_CtrlC_Quits(t *testing.T) {
	m := NewModel(Options{})

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd == nil {
		t.Fatal("Expected Ctrl+C to return quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("Ctrl+C command did not quit")
	}
}

func TestTypingQInSearchDoesNotQuit(t *testing.T) {
	m := typeText(NewModel(Options{}), "Quabbin")
	if m.searchInput.Value() != "Quabbin" {
		t.Errorf("search input = %q, want Quabbin", m.searchInput.Value())
	}
}

func TestEnterKeyWithEmptyInput(t *testing.T) {
	m := NewModel(Options{Planner: newFakePlanner()})

	updatedModel, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updatedModel.(Model)

	if m.state != StateSearch || cmd != nil {
		t.Errorf("empty search: state = %v, cmd = %v", m.state, cmd)
	}
}

func TestSearchSelectPark(t *testing.T) {
	planner := newFakePlanner()
	m := typeText(newTestModel(planner), "rocky")

	m = run(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.state != StateParkList {
		t.Fatalf("state = %v, want StateParkList (err %v)", m.state, m.err)
	}
	if len(m.parks) != 1 {
		t.Fatalf("parks = %d, want 1", len(m.parks))
	}

	m = run(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.state != StateParkDetail || m.park == nil {
		t.Fatalf("state = %v, want StateParkDetail", m.state)
	}
	if m.park.Timezone != "America/Denver" {
		t.Errorf("Timezone = %q", m.park.Timezone)
	}
	if m.bands == nil || m.bands.OffsetLabel != "UTC-6" {
		t.Errorf("bands = %+v", m.bands)
	}
	if planner.lastReq.Date != "2026-06-21" || planner.lastReq.ParkReference != "K-0039" {
		t.Errorf("band request = %+v", planner.lastReq)
	}
	// Weather failed but the park view stays up.
	if m.weather != nil || m.loadingWeather {
		t.Errorf("weather = %v loading = %v", m.weather, m.loadingWeather)
	}

	view := m.View()
	for _, want := range []string{"K-0039", "No weather data available", "Best bands", "20m"} {
		if !strings.Contains(view, want) {
			t.Errorf("park view missing %q", want)
		}
	}

	m = run(t, m, tea.KeyMsg{Type: tea.KeyRight})
	if planner.lastReq.Date != "2026-06-22" {
		t.Errorf("after →, band date = %q", planner.lastReq.Date)
	}
}

func TestSearchNoResults(t *testing.T) {
	m := typeText(newTestModel(newFakePlanner()), "atlantis")
	m = run(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	if m.state != StateError {
		t.Fatalf("state = %v, want StateError", m.state)
	}
	if !strings.Contains(m.err.Error(), "atlantis") {
		t.Errorf("err = %v", m.err)
	}
}

func TestFavoriteToggleInList(t *testing.T) {
	m := typeText(newTestModel(newFakePlanner()), "park")
	m = run(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m = run(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'f'}})

	if !m.parks[0].IsFavorite {
		t.Error("first park should be a favorite after F")
	}
	if m.state != StateParkList {
		t.Errorf("state = %v, want StateParkList", m.state)
	}
}

func openPark(t *testing.T, planner *fakePlanner) Model {
	t.Helper()
	m := typeText(newTestModel(planner), "rocky")
	m = run(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m = run(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.state != StateParkDetail {
		t.Fatalf("state = %v, want StateParkDetail", m.state)
	}
	return m
}

func TestWizardCreatesPlan(t *testing.T) {
	planner := newFakePlanner()
	m := openPark(t, planner)

	m = run(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'p'}})
	if m.state != StateWizard || m.wizard.Current() != wizard.StepPark {
		t.Fatalf("state = %v step = %v", m.state, m.wizard.Current())
	}
	if len(m.presets) != 2 {
		t.Errorf("presets = %d, want 2", len(m.presets))
	}

	// Accept the suggested name, date and time.
	m = run(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.wizard.Current() != wizard.StepDateTime {
		t.Fatalf("step = %v, want datetime", m.wizard.Current())
	}
	if got := m.wizardInput.Value(); got != "2026-06-21 09:00-12:00" {
		t.Errorf("date suggestion = %q", got)
	}
	m = run(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	// Second preset.
	m = run(t, m, tea.KeyMsg{Type: tea.KeyDown})
	m = run(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.wizard.Current() != wizard.StepBands {
		t.Fatalf("step = %v, want bands", m.wizard.Current())
	}
	if got := m.wizardInput.Value(); got != "20m" {
		t.Errorf("band suggestion = %q, want 20m", got)
	}
	m = run(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	if m.wizard.Current() != wizard.StepReview {
		t.Fatalf("step = %v, want review", m.wizard.Current())
	}
	if !strings.Contains(m.View(), "Hike kit") {
		t.Error("review should show the chosen preset")
	}

	m = run(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if len(planner.created) != 1 {
		t.Fatalf("created %d plans, want 1", len(planner.created))
	}
	in := planner.created[0]
	if in.Name != "Activation at Rocky Mountain National Park" || in.ParkReference != "K-0039" ||
		in.ActivationDate != "2026-06-21" || in.StartTime != "09:00" || in.EndTime != "12:00" {
		t.Errorf("plan input = %+v", in)
	}
	if in.EquipmentPresetID == nil || *in.EquipmentPresetID != 6 {
		t.Errorf("preset = %v, want 6", in.EquipmentPresetID)
	}
	if m.state != StateSearch || !strings.Contains(m.status, "Saved plan") {
		t.Errorf("after save state = %v status = %q", m.state, m.status)
	}
}

func TestWizardRejectsBadInput(t *testing.T) {
	m := openPark(t, newFakePlanner())
	m = run(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'p'}})
	m = run(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	m.wizardInput.SetValue("tomorrow morning")
	m = run(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.wizard.Current() != wizard.StepDateTime || m.wizardErr == nil {
		t.Fatalf("bad date accepted: step %v err %v", m.wizard.Current(), m.wizardErr)
	}

	// Esc goes back a step with the draft name restored.
	m = run(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.wizard.Current() != wizard.StepPark || m.wizardErr != nil {
		t.Errorf("after esc step = %v err = %v", m.wizard.Current(), m.wizardErr)
	}
	if m.wizardInput.Value() != "Activation at Rocky Mountain National Park" {
		t.Errorf("name = %q", m.wizardInput.Value())
	}

	// Esc on the first step leaves the wizard.
	m = run(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.state != StateParkDetail {
		t.Errorf("state = %v, want StateParkDetail", m.state)
	}
}

func TestParseHelpers(t *testing.T) {
	date, start, end, err := parseDateTime("2026-07-04 22:00-01:30")
	if err != nil || date != "2026-07-04" || start != "22:00" || end != "01:30" {
		t.Errorf("parseDateTime = %q %q %q %v", date, start, end, err)
	}
	for _, bad := range []string{"2026-07-04", "2026-13-04 09:00-10:00", "2026-07-04 09:00", "2026-07-04 9am-10am"} {
		if _, _, _, err := parseDateTime(bad); err == nil {
			t.Errorf("parseDateTime(%q) should fail", bad)
		}
	}

	got, err := parseBands("20M, 40m 20m")
	if err != nil || strings.Join(got, " ") != "20m 40m" {
		t.Errorf("parseBands = %v %v", got, err)
	}
	if _, err := parseBands("11m"); err == nil {
		t.Error("11m should be rejected")
	}
	if _, err := parseBands("  "); err == nil {
		t.Error("empty band list should be rejected")
	}
}

func TestProvisioningFlow(t *testing.T) {
	provision := func(ctx context.Context, progress chan<- string) error {
		progress <- "Loading timezones..."
		return nil
	}
	m := NewModel(Options{Planner: newFakePlanner(), Provision: provision, NeedsProvisioning: true})
	m.width, m.height = 120, 40

	started := initiateProvisioning(provision)().(provisioningStartedMsg)
	updated, _ := m.Update(started)
	m = updated.(Model)
	if m.state != StateProvisioning {
		t.Fatalf("state = %v, want StateProvisioning", m.state)
	}
	if !strings.Contains(m.View(), "Setup") {
		t.Error("provisioning view should show setup title")
	}

	status := waitForProvisionStatus(started.progressChan)()
	updated, _ = m.Update(status)
	m = updated.(Model)
	if m.provisionStatus != "Loading timezones..." {
		t.Errorf("status = %q", m.provisionStatus)
	}

	updated, _ = m.Update(waitForProvisionResult(started.resultChan)())
	m = updated.(Model)
	if m.state != StateSearch {
		t.Errorf("state = %v, want StateSearch", m.state)
	}

	failed, _ := m.Update(provisionResultMsg{err: errors.New("disk full")})
	if fm := failed.(Model); fm.state != StateError || !strings.Contains(fm.err.Error(), "disk full") {
		t.Errorf("failed provisioning state = %v err = %v", fm.state, fm.err)
	}
}

func TestPlansListDelete(t *testing.T) {
	planner := newFakePlanner()
	m := newTestModel(planner)

	m = run(t, m, tea.KeyMsg{Type: tea.KeyCtrlP})
	if m.state != StatePlans {
		t.Fatalf("state = %v, want StatePlans", m.state)
	}
	if !strings.Contains(m.View(), "No plans yet") {
		t.Error("empty plan list message missing")
	}

	m.plans = []models.Plan{{ID: "abc", Name: "Field Day"}}
	m.planList = createPlanList(m.plans, 100, 30)
	m = run(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'d'}})
	if len(planner.deleted) != 1 || planner.deleted[0] != "abc" {
		t.Errorf("deleted = %v", planner.deleted)
	}
}

func TestModel_View_States(t *testing.T) {
	m := NewModel(Options{})
	if m.View() != "Loading..." {
		t.Errorf("View() before size = %q", m.View())
	}

	m.width, m.height = 100, 30
	tests := []struct {
		state AppState
		want  string
	}{
		{StateSearch, "POTA Planner"},
		{StateLoading, "Loading"},
		{StateError, "Error"},
		{StateParkDetail, "No park selected"},
	}
	for _, tt := range tests {
		m.state = tt.state
		if view := m.View(); !strings.Contains(view, tt.want) {
			t.Errorf("state %v view missing %q", tt.state, tt.want)
		}
	}
}
