package ui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ngmaloney/pota-planner/internal/api"
	"github.com/ngmaloney/pota-planner/internal/models"
	"github.com/ngmaloney/pota-planner/internal/wizard"
)

// AppState represents the current state of the application
type AppState int

const (
	StateSearch       AppState = iota // Search parks by name or reference
	StateParkList                     // Pick a park from the search results
	StateLoading                      // Loading park details
	StateParkDetail                   // Weather and band conditions for a park
	StateWizard                       // Building a plan
	StatePlans                        // Saved plans
	StateProvisioning                 // First-run setup (timezones, park list)
	StateError                        // Error state
)

// Options configures a Model.
type Options struct {
	Planner Planner
	// Provision, when set together with NeedsProvisioning, runs at startup.
	Provision         ProvisionFunc
	NeedsProvisioning bool
	// Now defaults to time.Now.
	Now func() time.Time
}

// Model represents the application's state
type Model struct {
	state  AppState
	width  int
	height int
	err    error
	status string // one-line confirmation shown in the search view

	planner Planner
	now     func() time.Time

	// Search
	searchInput   textinput.Model
	searchQuery   string
	favoritesOnly bool

	// Park selection
	parks    []models.Park
	parkList list.Model

	// Selected park
	park           *models.Park
	bandDate       time.Time
	weather        *models.WeatherData
	bands          *api.BandReport
	loadingWeather bool
	loadingBands   bool

	// Wizard
	wizard       *wizard.Machine
	wizardInput  textinput.Model
	wizardErr    error
	presets      []models.EquipmentPreset
	presetCursor int

	// Plans
	plans    []models.Plan
	planList list.Model

	// Provisioning
	spinner           spinner.Model
	provision         ProvisionFunc
	needsProvisioning bool
	provisionStatus   string
	provisionChannels *provisioningStartedMsg
}

// NewModel creates a new application model
func NewModel(opts Options) Model {
	ti := textinput.New()
	ti.Placeholder = "Park name or reference (e.g. K-0039 or Rocky Mountain)..."
	ti.Focus()
	ti.CharLimit = 100
	ti.Width = 60

	wi := textinput.New()
	wi.CharLimit = 200
	wi.Width = 60

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	now := opts.Now
	if now == nil {
		now = time.Now
	}

	return Model{
		state:             StateSearch,
		planner:           opts.Planner,
		now:               now,
		searchInput:       ti,
		wizardInput:       wi,
		wizard:            wizard.New(),
		spinner:           s,
		provision:         opts.Provision,
		needsProvisioning: opts.NeedsProvisioning,
	}
}

// Init initializes the application
func (m Model) Init() tea.Cmd {
	if m.needsProvisioning && m.provision != nil {
		return tea.Batch(m.spinner.Tick, initiateProvisioning(m.provision))
	}
	return textinput.Blink
}

// fail moves to the error view
func (m Model) fail(err error) (tea.Model, tea.Cmd) {
	m.err = err
	m.state = StateError
	return m, nil
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	if msg, ok := msg.(tea.WindowSizeMsg); ok {
		m.width = msg.Width
		m.height = msg.Height
		switch m.state {
		case StateParkList:
			m.parkList.SetSize(msg.Width-4, msg.Height-10)
		case StatePlans:
			m.planList.SetSize(msg.Width-4, msg.Height-10)
		}
		return m, nil
	}

	switch msg := msg.(type) {
	case errMsg:
		return m.fail(msg.err)

	// Provisioning messages
	case provisioningStartedMsg:
		m.state = StateProvisioning
		m.provisionStatus = "Starting first-run setup..."
		m.provisionChannels = &msg
		return m, tea.Batch(
			waitForProvisionStatus(msg.progressChan),
			waitForProvisionResult(msg.resultChan),
		)

	case provisionStatusMsg:
		m.provisionStatus = string(msg)
		if m.provisionChannels != nil {
			return m, waitForProvisionStatus(m.provisionChannels.progressChan)
		}
		return m, nil

	case provisionResultMsg:
		m.provisionChannels = nil
		m.needsProvisioning = false
		if msg.err != nil {
			return m.fail(fmt.Errorf("setup failed: %w", msg.err))
		}
		m.state = StateSearch
		m.searchInput.Focus()
		return m, textinput.Blink

	case parksSearchedMsg:
		if err := respErr(msg.resp); err != nil {
			return m.fail(fmt.Errorf("park search failed: %w", err))
		}
		if len(msg.resp.Data.Parks) == 0 {
			return m.fail(fmt.Errorf("no parks match '%s'", m.searchQuery))
		}
		m.parks = msg.resp.Data.Parks
		m.parkList = createParkList(m.parks, m.width-4, m.height-10)
		m.state = StateParkList
		return m, nil

	case parkLoadedMsg:
		if err := respErr(msg.resp); err != nil {
			return m.fail(err)
		}
		park := msg.resp.Data
		m.park = &park
		m.weather = nil
		m.bands = nil
		m.state = StateParkDetail
		cmd = m.refreshPark()
		return m, cmd

	case favoriteToggledMsg:
		if err := respErr(msg.resp); err != nil {
			return m.fail(err)
		}
		if m.park != nil && m.park.Reference == msg.resp.Data.Reference {
			m.park.IsFavorite = msg.resp.Data.IsFavorite
		}
		for i := range m.parks {
			if m.parks[i].Reference == msg.resp.Data.Reference {
				m.parks[i].IsFavorite = msg.resp.Data.IsFavorite
			}
		}
		if m.state == StateParkList {
			idx := m.parkList.Index()
			m.parkList = createParkList(m.parks, m.width-4, m.height-10)
			m.parkList.Select(idx)
		}
		return m, nil

	case weatherLoadedMsg:
		m.loadingWeather = false
		// Keep the park view even when weather is unavailable.
		if msg.resp.Success {
			m.weather = msg.resp.Data
		}
		return m, nil

	case bandsLoadedMsg:
		m.loadingBands = false
		if msg.resp.Success {
			report := msg.resp.Data
			m.bands = &report
		}
		return m, nil

	case presetsLoadedMsg:
		if err := respErr(msg.resp); err != nil {
			m.wizardErr = err
			return m, nil
		}
		m.presets = msg.resp.Data
		return m, nil

	case planSavedMsg:
		if err := respErr(msg.resp); err != nil {
			m.wizardErr = err
			return m, nil
		}
		m.wizard.Reset()
		m.wizardErr = nil
		m.status = fmt.Sprintf("Saved plan %q", msg.resp.Data.Name)
		m.state = StateSearch
		m.searchInput.Focus()
		return m, textinput.Blink

	case plansLoadedMsg:
		if err := respErr(msg.resp); err != nil {
			return m.fail(err)
		}
		m.plans = msg.resp.Data.Plans
		m.planList = createPlanList(m.plans, m.width-4, m.height-10)
		m.state = StatePlans
		return m, nil

	case planDeletedMsg:
		if err := respErr(msg.resp); err != nil {
			return m.fail(err)
		}
		return m, loadPlans(m.planner)
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if keyMsg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}

		switch m.state {
		case StateSearch:
			return m.handleSearchInput(keyMsg)

		case StateParkList:
			return m.handleParkList(msg)

		case StateParkDetail:
			return m.handleParkDetail(keyMsg)

		case StateWizard:
			return m.handleWizard(keyMsg)

		case StatePlans:
			return m.handlePlans(msg)

		case StateError:
			if keyMsg.String() == "q" {
				return m, tea.Quit
			}
			// Any other key returns to search
			m.state = StateSearch
			m.err = nil
			m.searchInput.Focus()
			return m, textinput.Blink
		}
	}

	switch m.state {
	case StateProvisioning:
		m.spinner, cmd = m.spinner.Update(msg)
	case StateSearch:
		m.searchInput, cmd = m.searchInput.Update(msg)
	case StateParkList:
		m.parkList, cmd = m.parkList.Update(msg)
	case StatePlans:
		m.planList, cmd = m.planList.Update(msg)
	case StateWizard:
		m.wizardInput, cmd = m.wizardInput.Update(msg)
	}

	return m, cmd
}

// refreshPark fetches weather and band conditions for the selected park
func (m *Model) refreshPark() tea.Cmd {
	if m.park == nil {
		return nil
	}
	if m.bandDate.IsZero() {
		m.bandDate = m.now()
	}
	req := api.BandRequest{
		Date:          m.bandDate.Format("2006-01-02"),
		ParkReference: m.park.Reference,
	}
	m.loadingBands = true
	cmds := []tea.Cmd{fetchBands(m.planner, req)}
	if m.park.HasCoordinates() {
		m.loadingWeather = true
		cmds = append(cmds, fetchWeather(m.planner, *m.park.Latitude, *m.park.Longitude))
	}
	return tea.Batch(cmds...)
}

// handleSearchInput handles keyboard input in search state
func (m Model) handleSearchInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	if m.err != nil && msg.Type != tea.KeyEnter {
		m.err = nil
	}
	m.status = ""

	switch msg.Type {
	case tea.KeyEnter:
		query := m.searchInput.Value()
		if query == "" && !m.favoritesOnly {
			return m, nil
		}
		m.searchQuery = query
		m.err = nil
		m.state = StateLoading
		return m, searchParks(m.planner, models.ParkSearchFilters{
			Query:         query,
			FavoritesOnly: m.favoritesOnly,
		})
	case tea.KeyTab:
		m.favoritesOnly = !m.favoritesOnly
		return m, nil
	case tea.KeyCtrlP:
		m.state = StateLoading
		return m, loadPlans(m.planner)
	}

	m.searchInput, cmd = m.searchInput.Update(msg)
	return m, cmd
}

// handleParkList handles keyboard input in park list state
func (m Model) handleParkList(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case keyMsg.Type == tea.KeyEnter:
			if item, ok := m.parkList.SelectedItem().(parkItem); ok {
				m.state = StateLoading
				m.bandDate = time.Time{}
				return m, loadPark(m.planner, item.park.Reference)
			}
		case keyMsg.String() == "f":
			if item, ok := m.parkList.SelectedItem().(parkItem); ok {
				return m, toggleFavorite(m.planner, item.park.Reference)
			}
		case keyMsg.String() == "q":
			return m, tea.Quit
		case keyMsg.String() == "s" || keyMsg.Type == tea.KeyEsc:
			m.state = StateSearch
			m.searchInput.Focus()
			return m, textinput.Blink
		}
	}

	m.parkList, cmd = m.parkList.Update(msg)
	return m, cmd
}

// handleParkDetail handles keyboard input on the park view
func (m Model) handleParkDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "s", "esc":
		m.state = StateSearch
		m.searchInput.SetValue("")
		m.searchInput.Focus()
		m.park = nil
		m.weather = nil
		m.bands = nil
		return m, textinput.Blink
	case "f":
		if m.park != nil {
			return m, toggleFavorite(m.planner, m.park.Reference)
		}
	case "right", "l":
		m.bandDate = m.bandDate.AddDate(0, 0, 1)
		cmd := m.refreshPark()
		return m, cmd
	case "left", "h":
		m.bandDate = m.bandDate.AddDate(0, 0, -1)
		cmd := m.refreshPark()
		return m, cmd
	case "p":
		return m.startWizard()
	}
	return m, nil
}

// handlePlans handles keyboard input in the plan list
func (m Model) handlePlans(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "d":
			if item, ok := m.planList.SelectedItem().(planItem); ok {
				return m, deletePlan(m.planner, item.plan.ID)
			}
		case "q":
			return m, tea.Quit
		case "s", "esc":
			m.state = StateSearch
			m.searchInput.Focus()
			return m, textinput.Blink
		}
	}

	m.planList, cmd = m.planList.Update(msg)
	return m, cmd
}

// View renders the UI
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	switch m.state {
	case StateProvisioning:
		return m.viewProvisioning()
	case StateSearch:
		return m.viewSearch()
	case StateParkList:
		return m.viewParkList()
	case StateLoading:
		return m.viewLoading()
	case StateParkDetail:
		return m.viewParkDetail()
	case StateWizard:
		return m.viewWizard()
	case StatePlans:
		return m.viewPlans()
	case StateError:
		return m.viewError()
	}

	return ""
}

// viewProvisioning renders the initial setup screen
func (m Model) viewProvisioning() string {
	title := titleStyle.Render("POTA Planner Setup")

	status := lipgloss.NewStyle().
		Foreground(lipgloss.Color("240")).
		Render(m.provisionStatus)

	info := helpStyle.Render("One-time setup: loading timezone boundaries and the park list...")

	return lipgloss.JoinVertical(
		lipgloss.Center,
		"",
		title,
		"",
		fmt.Sprintf("%s %s", m.spinner.View(), status),
		"",
		info,
	)
}

// viewError renders the error view
func (m Model) viewError() string {
	title := errorStyle.Render("✗ Error")

	errorMsg := "An unknown error occurred"
	if m.err != nil {
		errorMsg = m.err.Error()
	}

	help := helpStyle.Render("Press any key to return to search • Q: Quit")

	return lipgloss.JoinVertical(lipgloss.Left, title, "", errorMsg, "", help)
}

// viewSearch renders the search view
func (m Model) viewSearch() string {
	title := titleStyle.Render("POTA Planner")
	subtitle := mutedStyle.Render("Parks on the Air activation planning")

	searchBox := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("62")).
		Padding(1, 2).
		Width(64).
		Render(m.searchInput.View())

	sections := []string{title, subtitle, "", searchBox}

	if m.favoritesOnly {
		sections = append(sections, successStyle.Render("★ Favorites only"))
	}
	if m.err != nil {
		sections = append(sections, "", errorStyle.Padding(0, 2).Render("✗ "+m.err.Error()))
	}
	if m.status != "" {
		sections = append(sections, "", successStyle.Render("✓ "+m.status))
	}

	help := helpStyle.Render("Enter: Search • Tab: Favorites only • Ctrl+P: Plans • Ctrl+C: Quit")
	sections = append(sections, "", help)

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// viewParkList renders the park selection list
func (m Model) viewParkList() string {
	title := titleStyle.Render("Parks")
	subtitle := mutedStyle.Render(fmt.Sprintf("Found %d parks matching '%s'", len(m.parks), m.searchQuery))
	help := helpStyle.Render("↑/↓: Navigate • Enter: Select • F: Favorite • S/Esc: Back • Q: Quit")

	return lipgloss.JoinVertical(lipgloss.Left, title, subtitle, "", m.parkList.View(), "", help)
}

// viewPlans renders saved plans
func (m Model) viewPlans() string {
	if len(m.plans) == 0 {
		return lipgloss.JoinVertical(lipgloss.Left,
			titleStyle.Render("Activation Plans"), "",
			mutedStyle.Render("No plans yet. Pick a park and press P to start one."),
			helpStyle.Render("S/Esc: Back • Q: Quit"))
	}
	help := helpStyle.Render("↑/↓: Navigate • D: Delete • S/Esc: Back • Q: Quit")
	return lipgloss.JoinVertical(lipgloss.Left, m.planList.View(), "", help)
}

// viewLoading renders the loading view
func (m Model) viewLoading() string {
	return mutedStyle.Render("Loading...")
}

// viewParkDetail renders the selected park
func (m Model) viewParkDetail() string {
	if m.park == nil {
		return "No park selected"
	}
	p := m.park

	star := ""
	if p.IsFavorite {
		star = " ★"
	}
	header := lipgloss.NewStyle().
		Foreground(colorPrimary).
		Bold(true).
		Padding(0, 1).
		MarginBottom(1).
		Render(fmt.Sprintf("%s - %s%s", p.Reference, p.Name, star))

	info := p.LocationDesc
	if p.GridSquare != "" {
		info += " • " + p.GridSquare
	}
	if p.Timezone != "" {
		info += " • " + p.Timezone
	}

	weather := mutedStyle.Render("Fetching weather...")
	if !m.loadingWeather {
		weather = renderWeatherSimple(m.weather, p.Timezone)
	}
	bandView := mutedStyle.Render("Computing band conditions...")
	if !m.loadingBands {
		bandView = renderBandsSimple(m.bands)
	}

	help := helpStyle.Render("←/→: Change date • P: Plan activation • F: Favorite • S: New search • Q: Quit")

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		mutedStyle.Render(info),
		sectionHeaderStyle.Render("WEATHER"),
		weather,
		sectionHeaderStyle.Render("BANDS "+m.bandDate.Format("Mon Jan 2")),
		bandView,
		help,
	)
}
