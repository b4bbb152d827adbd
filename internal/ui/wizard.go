package ui

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ngmaloney/pota-planner/internal/bands"
	"github.com/ngmaloney/pota-planner/internal/models"
	"github.com/ngmaloney/pota-planner/internal/wizard"
)

const (
	defaultStart = "09:00"
	defaultEnd   = "12:00"
)

var clockPattern = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

var stepTitles = map[wizard.Step]string{
	wizard.StepPark:      "Park",
	wizard.StepDateTime:  "Date & Time",
	wizard.StepEquipment: "Equipment",
	wizard.StepBands:     "Bands",
	wizard.StepReview:    "Review",
}

// startWizard begins a plan for the selected park
func (m Model) startWizard() (tea.Model, tea.Cmd) {
	if m.park == nil {
		return m, nil
	}
	m.wizard.Reset()
	ref := m.park.Reference
	m.wizard.UpdatePartialPlan(wizard.Draft{ParkReference: &ref})
	m.wizardErr = nil
	m.presetCursor = 0
	m.state = StateWizard
	m.setWizardInput()
	return m, tea.Batch(textinput.Blink, loadPresets(m.planner))
}

// setWizardInput loads the text box for the current step from the draft,
// or a suggestion when the step has not been filled in yet.
func (m *Model) setWizardInput() {
	d := m.wizard.Draft()
	m.wizardInput.Blur()
	switch m.wizard.Current() {
	case wizard.StepPark:
		name := "Activation"
		if m.park != nil {
			name = "Activation at " + m.park.Name
		}
		if d.Name != nil {
			name = *d.Name
		}
		m.wizardInput.Placeholder = "Plan name"
		m.wizardInput.SetValue(name)
		m.wizardInput.Focus()
	case wizard.StepDateTime:
		date := m.bandDate
		if date.IsZero() {
			date = m.now()
		}
		value := fmt.Sprintf("%s %s-%s", date.Format("2006-01-02"), defaultStart, defaultEnd)
		if d.ActivationDate != nil && d.StartTime != nil && d.EndTime != nil {
			value = fmt.Sprintf("%s %s-%s", *d.ActivationDate, *d.StartTime, *d.EndTime)
		}
		m.wizardInput.Placeholder = "YYYY-MM-DD HH:MM-HH:MM (park local time)"
		m.wizardInput.SetValue(value)
		m.wizardInput.Focus()
	case wizard.StepBands:
		m.wizardInput.Placeholder = "Bands, e.g. 20m 40m"
		if d.Bands != nil {
			m.wizardInput.SetValue(strings.Join(*d.Bands, " "))
		} else {
			m.wizardInput.SetValue(strings.Join(m.suggestedBands(), " "))
		}
		m.wizardInput.Focus()
	default:
		m.wizardInput.SetValue("")
	}
}

// suggestedBands picks the recommended bands from the park's band report
func (m Model) suggestedBands() []string {
	if m.bands == nil || len(m.bands.Recommendations) == 0 {
		return []string{"20m", "40m"}
	}
	var out []string
	for _, r := range m.bands.Recommendations {
		if r.Condition.Rank() >= models.ConditionGood.Rank() {
			out = append(out, r.Band)
		}
	}
	if len(out) == 0 {
		out = append(out, m.bands.Recommendations[0].Band)
	}
	return out
}

// parseDateTime parses "YYYY-MM-DD HH:MM-HH:MM"
func parseDateTime(s string) (date, start, end string, err error) {
	fields := strings.Fields(s)
	if len(fields) != 2 {
		return "", "", "", errors.New("enter a date and a time range, e.g. 2026-07-04 09:00-12:00")
	}
	date = fields[0]
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return "", "", "", fmt.Errorf("%q is not a YYYY-MM-DD date", date)
	}
	start, end, ok := strings.Cut(fields[1], "-")
	if !ok {
		return "", "", "", errors.New("time range must look like 09:00-12:00")
	}
	if !clockPattern.MatchString(start) {
		return "", "", "", fmt.Errorf("%q is not an HH:MM time", start)
	}
	if !clockPattern.MatchString(end) {
		return "", "", "", fmt.Errorf("%q is not an HH:MM time", end)
	}
	return date, start, end, nil
}

// parseBands splits and checks a band list
func parseBands(s string) ([]string, error) {
	var out []string
	seen := make(map[string]bool)
	for _, f := range strings.Fields(strings.ReplaceAll(s, ",", " ")) {
		b, ok := bands.Lookup(strings.ToLower(f))
		if !ok {
			return nil, fmt.Errorf("unknown band %q", f)
		}
		if !seen[b.Name] {
			seen[b.Name] = true
			out = append(out, b.Name)
		}
	}
	if len(out) == 0 {
		return nil, errors.New("pick at least one band")
	}
	return out, nil
}

// advance marks the current step complete and moves on
func (m *Model) advance() {
	m.wizard.CompleteStep(m.wizard.Current())
	m.wizard.Next()
	m.wizardErr = nil
	m.setWizardInput()
}

// selectedPreset returns the preset chosen in the draft, if any
func (m Model) selectedPreset() *models.EquipmentPreset {
	d := m.wizard.Draft()
	if d.EquipmentPresetID == nil {
		return nil
	}
	for i := range m.presets {
		if m.presets[i].ID == *d.EquipmentPresetID {
			return &m.presets[i]
		}
	}
	return nil
}

// handleWizard handles keyboard input while building a plan
func (m Model) handleWizard(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	step := m.wizard.Current()

	if msg.Type == tea.KeyEsc {
		if step == wizard.StepPark {
			m.wizard.Reset()
			m.wizardErr = nil
			m.state = StateParkDetail
			return m, nil
		}
		m.wizard.Previous()
		m.wizardErr = nil
		m.setWizardInput()
		return m, nil
	}

	switch step {
	case wizard.StepPark:
		if msg.Type == tea.KeyEnter {
			name := strings.TrimSpace(m.wizardInput.Value())
			if name == "" {
				m.wizardErr = errors.New("give the plan a name")
				return m, nil
			}
			m.wizard.UpdatePartialPlan(wizard.Draft{Name: &name})
			m.advance()
			return m, nil
		}

	case wizard.StepDateTime:
		if msg.Type == tea.KeyEnter {
			date, start, end, err := parseDateTime(m.wizardInput.Value())
			if err != nil {
				m.wizardErr = err
				return m, nil
			}
			m.wizard.UpdatePartialPlan(wizard.Draft{ActivationDate: &date, StartTime: &start, EndTime: &end})
			m.advance()
			return m, nil
		}

	case wizard.StepEquipment:
		switch msg.String() {
		case "up", "k":
			if m.presetCursor > 0 {
				m.presetCursor--
			}
		case "down", "j":
			if m.presetCursor < len(m.presets)-1 {
				m.presetCursor++
			}
		case "n":
			// Skip equipment; an earlier choice stays unless replaced.
			m.advance()
		case "enter":
			if len(m.presets) == 0 {
				m.advance()
				return m, nil
			}
			id := m.presets[m.presetCursor].ID
			m.wizard.UpdatePartialPlan(wizard.Draft{EquipmentPresetID: &id})
			m.advance()
		}
		return m, nil

	case wizard.StepBands:
		if msg.Type == tea.KeyEnter {
			picked, err := parseBands(m.wizardInput.Value())
			if err != nil {
				m.wizardErr = err
				return m, nil
			}
			m.wizard.UpdatePartialPlan(wizard.Draft{Bands: &picked})
			m.advance()
			return m, nil
		}

	case wizard.StepReview:
		if msg.Type == tea.KeyEnter {
			m.wizard.CompleteStep(wizard.StepReview)
			return m, createPlan(m.planner, m.wizard.Draft().Input())
		}
		return m, nil
	}

	m.wizardInput, cmd = m.wizardInput.Update(msg)
	return m, cmd
}

// renderStepBar shows progress through the wizard
func (m Model) renderStepBar() string {
	var parts []string
	for i, s := range wizard.Steps {
		label := fmt.Sprintf("%d %s", i+1, stepTitles[s])
		switch {
		case s == m.wizard.Current():
			parts = append(parts, stepActiveStyle.Render(label))
		case m.wizard.IsCompleted(s):
			parts = append(parts, stepDoneStyle.Render("✓ "+label))
		default:
			parts = append(parts, stepPendingStyle.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

// viewWizard renders the current wizard step
func (m Model) viewWizard() string {
	title := titleStyle.Render("New Activation Plan")
	sections := []string{title, "", m.renderStepBar(), ""}

	switch m.wizard.Current() {
	case wizard.StepPark:
		if m.park != nil {
			sections = append(sections, labelStyle.Render("Park: ")+valueStyle.Render(m.park.Reference+" "+m.park.Name))
		}
		sections = append(sections, m.wizardInput.View())
	case wizard.StepDateTime:
		sections = append(sections, labelStyle.Render("When will you be on the air?"), m.wizardInput.View())
	case wizard.StepEquipment:
		sections = append(sections, labelStyle.Render("Equipment preset (N: none)"))
		if len(m.presets) == 0 {
			sections = append(sections, mutedStyle.Render("No presets loaded"))
		}
		for i, p := range m.presets {
			p = p.WithFallbacks()
			line := fmt.Sprintf("  %s - %s, %s, %d W %s", p.Name, p.Radio, p.Antenna, p.PowerWatts, p.Mode)
			if i == m.presetCursor {
				line = successStyle.Render("▸" + line[1:])
			}
			sections = append(sections, line)
		}
	case wizard.StepBands:
		sections = append(sections, labelStyle.Render("Which bands?"), m.wizardInput.View())
		if m.bands != nil {
			sections = append(sections, mutedStyle.Render("Suggested: "+strings.Join(m.suggestedBands(), " ")))
		}
	case wizard.StepReview:
		sections = append(sections, sectionBoxStyle.Render(renderPlanSummary(m.wizard.Draft().Input(), m.selectedPreset())))
	}

	if m.wizardErr != nil {
		sections = append(sections, "", errorStyle.Render("✗ "+m.wizardErr.Error()))
	}

	help := "Enter: Continue • Esc: Back • Ctrl+C: Quit"
	if m.wizard.Current() == wizard.StepReview {
		help = "Enter: Save plan • Esc: Back • Ctrl+C: Quit"
	}
	sections = append(sections, helpStyle.Render(help))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}
