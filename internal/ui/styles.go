package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/ngmaloney/pota-planner/internal/models"
)

var (
	// Color palette
	colorPrimary   = lipgloss.Color("#3FB950") // Park green
	colorSecondary = lipgloss.Color("#87CEEB") // Sky blue
	colorDanger    = lipgloss.Color("#FF6B6B") // Red for errors
	colorWarning   = lipgloss.Color("#FFD93D") // Yellow for fair bands
	colorSuccess   = lipgloss.Color("#6BCF7F") // Green
	colorMuted     = lipgloss.Color("#6C757D") // Gray
	colorBorder    = lipgloss.Color("#4A90E2") // Border blue

	// Title styles
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary)

	// Content styles
	labelStyle = lipgloss.NewStyle().
			Foreground(colorMuted).
			Bold(true)

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF"))

	errorStyle = lipgloss.NewStyle().
			Foreground(colorDanger).
			Bold(true)

	// Band condition styles
	conditionExcellentStyle = lipgloss.NewStyle().
				Foreground(colorSuccess).
				Bold(true)

	conditionGoodStyle = lipgloss.NewStyle().
				Foreground(colorSecondary)

	conditionFairStyle = lipgloss.NewStyle().
				Foreground(colorWarning)

	conditionPoorStyle = lipgloss.NewStyle().
				Foreground(colorMuted)

	// Activation hours in the band table
	highlightStyle = lipgloss.NewStyle().
			Reverse(true)

	// Help text style
	helpStyle = lipgloss.NewStyle().
			Foreground(colorMuted).
			Padding(1, 0)

	// Utility styles
	mutedStyle = lipgloss.NewStyle().
			Foreground(colorMuted)

	successStyle = lipgloss.NewStyle().
			Foreground(colorSuccess)

	// Section header styles
	sectionHeaderStyle = lipgloss.NewStyle().
				Foreground(colorPrimary).
				Bold(true).
				Padding(0, 1).
				MarginTop(1)

	sectionBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(1, 2).
			MarginBottom(1)

	stepActiveStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(colorPrimary).
			Padding(0, 1)

	stepDoneStyle = lipgloss.NewStyle().
			Foreground(colorSuccess).
			Padding(0, 1)

	stepPendingStyle = lipgloss.NewStyle().
				Foreground(colorMuted).
				Padding(0, 1)
)

// conditionStyle returns the style for a band condition.
func conditionStyle(c models.Condition) lipgloss.Style {
	switch c {
	case models.ConditionExcellent:
		return conditionExcellentStyle
	case models.ConditionGood:
		return conditionGoodStyle
	case models.ConditionFair:
		return conditionFairStyle
	default:
		return conditionPoorStyle
	}
}
