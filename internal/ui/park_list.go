package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"

	"github.com/ngmaloney/pota-planner/internal/models"
)

// parkItem wraps a Park for use in a list
type parkItem struct {
	park models.Park
}

// FilterValue implements list.Item
func (p parkItem) FilterValue() string {
	return p.park.Reference + " " + p.park.Name
}

// Title implements list.DefaultItem
func (p parkItem) Title() string {
	star := ""
	if p.park.IsFavorite {
		star = " ★"
	}
	return fmt.Sprintf("%s - %s%s", p.park.Reference, p.park.Name, star)
}

// Description implements list.DefaultItem
func (p parkItem) Description() string {
	loc := p.park.LocationDesc
	if loc == "" {
		loc = "unknown location"
	}
	return fmt.Sprintf("%s • %d activations", loc, p.park.ActivationCount)
}

// createParkList creates a list.Model from search results
func createParkList(parks []models.Park, width, height int) list.Model {
	items := make([]list.Item, len(parks))
	for i, park := range parks {
		items[i] = parkItem{park: park}
	}

	l := list.New(items, list.NewDefaultDelegate(), width, height)
	l.Title = "Select a Park"
	l.SetShowHelp(true)
	l.SetFilteringEnabled(false)

	return l
}

// planItem wraps a Plan for use in a list
type planItem struct {
	plan models.Plan
}

func (p planItem) FilterValue() string { return p.plan.Name }

func (p planItem) Title() string {
	return fmt.Sprintf("%s (%s)", p.plan.Name, p.plan.Status)
}

func (p planItem) Description() string {
	return fmt.Sprintf("%s %s • %s %s-%s", p.plan.ParkReference, p.plan.ParkName,
		p.plan.ActivationDate, p.plan.StartTime, p.plan.EndTime)
}

// createPlanList creates a list.Model from saved plans
func createPlanList(plans []models.Plan, width, height int) list.Model {
	items := make([]list.Item, len(plans))
	for i, plan := range plans {
		items[i] = planItem{plan: plan}
	}

	l := list.New(items, list.NewDefaultDelegate(), width, height)
	l.Title = "Activation Plans"
	l.SetShowHelp(true)
	l.SetFilteringEnabled(false)

	return l
}
