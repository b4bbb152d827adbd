package ui

import (
	"fmt"
	"strings"

	"github.com/ngmaloney/pota-planner/internal/api"
	"github.com/ngmaloney/pota-planner/internal/bands"
	"github.com/ngmaloney/pota-planner/internal/models"
	"github.com/ngmaloney/pota-planner/internal/timeconv"
)

func celsiusToF(c float64) float64 { return c*9/5 + 32 }
func kmhToMph(k float64) float64   { return k * 0.621371 }

// compass turns a bearing into a 16-point direction
func compass(deg float64) string {
	points := []string{"N", "NNE", "NE", "ENE", "E", "ESE", "SE", "SSE", "S", "SSW", "SW", "WSW", "W", "WNW", "NW", "NNW"}
	i := int((deg+11.25)/22.5) % 16
	if i < 0 {
		i += 16
	}
	return points[i]
}

// renderWeatherSimple renders weather without borders or width constraints
func renderWeatherSimple(w *models.WeatherData, zone string) string {
	if w == nil {
		return mutedStyle.Render("No weather data available")
	}

	var lines []string
	c := w.Current
	current := fmt.Sprintf("%s, %.0f°F (feels %.0f°F)", c.Conditions,
		celsiusToF(c.Temperature), celsiusToF(c.ApparentTemperature))
	lines = append(lines, valueStyle.Bold(true).Render(current))
	wind := fmt.Sprintf("Wind: %s %.0f mph", compass(c.WindDirection), kmhToMph(c.WindSpeed))
	if c.WindGusts > c.WindSpeed {
		wind += fmt.Sprintf(", gusts %.0f mph", kmhToMph(c.WindGusts))
	}
	lines = append(lines, wind, fmt.Sprintf("Humidity: %.0f%% • Clouds: %.0f%%", c.Humidity, c.CloudCover))
	if w.FromCache {
		lines = append(lines, mutedStyle.Render(fmt.Sprintf("cached %s", w.FetchedAt.Format("Jan 2 15:04 MST"))))
	}

	if len(w.Daily) > 0 {
		lines = append(lines, "", labelStyle.Render("Sun:"))
		for _, d := range w.Daily {
			lines = append(lines, fmt.Sprintf("  %s  rise %s  set %s", d.Date,
				timeconv.InstantToLocalTime(d.Sunrise, zone), timeconv.InstantToLocalTime(d.Sunset, zone)))
		}
	}

	if len(w.Hourly) > 0 {
		lines = append(lines, "", labelStyle.Render("Next hours:"))
		maxHours := 6
		if len(w.Hourly) < maxHours {
			maxHours = len(w.Hourly)
		}
		for _, h := range w.Hourly[:maxHours] {
			lines = append(lines, fmt.Sprintf("  %s  %.0f°F  %s, %.0f%% precip",
				timeconv.InstantToLocalTime(h.Time, zone), celsiusToF(h.Temperature),
				h.Conditions, h.PrecipitationProbability))
		}
	}

	return strings.Join(lines, "\n")
}

// conditionLetter is the one-cell rendering of a condition
func conditionLetter(c models.Condition) string {
	if c == "" {
		return "·"
	}
	return strings.ToUpper(string(c[:1]))
}

// renderBandsSimple renders the 24 hour band matrix with the activation
// hours highlighted, followed by the ranked recommendations.
func renderBandsSimple(r *api.BandReport) string {
	if r == nil {
		return mutedStyle.Render("No band data available")
	}

	var highlight bands.HourSet
	for _, h := range r.HighlightHours {
		highlight.Add(h)
	}

	var b strings.Builder
	b.WriteString(labelStyle.Render("UTC   "))
	for h := 0; h < 24; h++ {
		cell := fmt.Sprintf("%02d", h)
		if highlight.Contains(h) {
			cell = highlightStyle.Render(cell)
		}
		b.WriteString(cell + " ")
	}
	b.WriteString("\n")

	for _, band := range bands.Plan {
		if _, ok := r.Conditions.Hours[0].Bands[band.Name]; !ok {
			continue
		}
		b.WriteString(fmt.Sprintf("%-5s ", band.Name))
		for h := 0; h < 24; h++ {
			cond := r.Conditions.Hours[h].Bands[band.Name]
			cell := conditionStyle(cond).Render(" " + conditionLetter(cond))
			if highlight.Contains(h) {
				cell = highlightStyle.Render(" " + conditionLetter(cond))
			}
			b.WriteString(cell + " ")
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	zone := r.OffsetLabel
	if r.Timezone != "" {
		zone = r.Timezone + " " + zone
	}
	b.WriteString(mutedStyle.Render("Park time: " + zone))
	b.WriteString("\n\n")

	if len(r.Recommendations) == 0 {
		b.WriteString(mutedStyle.Render("No band is open during the activation"))
		return b.String()
	}
	b.WriteString(labelStyle.Render("Best bands for the activation:"))
	for _, rec := range r.Recommendations {
		b.WriteString(fmt.Sprintf("\n  %s %s - %s",
			conditionStyle(rec.Condition).Render(fmt.Sprintf("%-5s", rec.Band)),
			rec.Reason, strings.Join(rec.TimeSlots, ", ")))
	}
	return b.String()
}

// renderPlanSummary renders the wizard's review step
func renderPlanSummary(d models.PlanInput, preset *models.EquipmentPreset) string {
	lines := []string{
		fmt.Sprintf("%s %s", labelStyle.Render("Name:"), d.Name),
		fmt.Sprintf("%s %s", labelStyle.Render("Park:"), d.ParkReference),
		fmt.Sprintf("%s %s %s-%s", labelStyle.Render("When:"), d.ActivationDate, d.StartTime, d.EndTime),
	}
	if preset != nil {
		p := preset.WithFallbacks()
		lines = append(lines, fmt.Sprintf("%s %s (%s, %s, %d W, %s)",
			labelStyle.Render("Equipment:"), p.Name, p.Radio, p.Antenna, p.PowerWatts, p.Mode))
	} else {
		lines = append(lines, fmt.Sprintf("%s none", labelStyle.Render("Equipment:")))
	}
	lines = append(lines, fmt.Sprintf("%s %s", labelStyle.Render("Bands:"), strings.Join(d.Bands, " ")))
	return strings.Join(lines, "\n")
}
