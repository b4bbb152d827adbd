package bands

import (
	"testing"
	"time"

	"github.com/ngmaloney/pota-planner/internal/models"
)

func TestSolarElevation(t *testing.T) {
	tests := []struct {
		name     string
		lat, lon float64
		at       time.Time
		min, max float64
	}{
		{"equinox noon on equator", 0, 0, time.Date(2026, 3, 20, 12, 0, 0, 0, time.UTC), 80, 91},
		{"equinox midnight on equator", 0, 0, time.Date(2026, 3, 20, 0, 0, 0, 0, time.UTC), -91, -80},
		{"denver summer midday", 39.74, -104.99, time.Date(2026, 6, 21, 19, 0, 0, 0, time.UTC), 65, 76},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			el := SolarElevation(tt.lat, tt.lon, tt.at)
			if el < tt.min || el > tt.max {
				t.Errorf("elevation %.2f not in [%v, %v]", el, tt.min, tt.max)
			}
		})
	}
}

func TestForecastDenver(t *testing.T) {
	day, err := Forecast("2026-06-21", 39.74, -104.99)
	if err != nil {
		t.Fatalf("Forecast: %v", err)
	}
	if day.Date != "2026-06-21" {
		t.Errorf("date = %s", day.Date)
	}

	// 19Z is local midday, 07Z is local 01:00.
	if c := day.Hours[19].Bands["20m"]; c != models.ConditionExcellent {
		t.Errorf("20m at 19Z = %s", c)
	}
	if c := day.Hours[19].Bands["80m"]; c != models.ConditionPoor {
		t.Errorf("80m at 19Z = %s", c)
	}
	if c := day.Hours[7].Bands["80m"]; c != models.ConditionExcellent {
		t.Errorf("80m at 07Z = %s", c)
	}
	if c := day.Hours[7].Bands["10m"]; c != models.ConditionPoor {
		t.Errorf("10m at 07Z = %s", c)
	}

	if len(day.Recommendations) == 0 {
		t.Fatal("expected recommendations")
	}
	if day.Recommendations[0].Condition != models.ConditionExcellent {
		t.Errorf("top recommendation = %+v", day.Recommendations[0])
	}
}

func TestForecastInvalidDate(t *testing.T) {
	if _, err := Forecast("June 21", 0, 0); err == nil {
		t.Error("expected error for bad date")
	}
}
