package bands

import (
	"reflect"
	"testing"

	"github.com/ngmaloney/pota-planner/internal/models"
)

func dayWith(f func(h int) map[string]models.Condition) []models.HourConditions {
	hours := make([]models.HourConditions, 24)
	for h := range hours {
		hours[h] = models.HourConditions{Hour: h, Bands: f(h)}
	}
	return hours
}

func TestRecommendRanking(t *testing.T) {
	hours := dayWith(func(h int) map[string]models.Condition {
		m := map[string]models.Condition{
			"80m": models.ConditionPoor,
			"40m": models.ConditionGood,
			"20m": models.ConditionFair,
			"10m": models.ConditionPoor,
		}
		if h >= 14 && h < 20 {
			m["20m"] = models.ConditionExcellent
		}
		if h >= 22 || h < 2 {
			m["80m"] = models.ConditionExcellent
		}
		return m
	})

	recs := Recommend(hours)
	var order []string
	for _, r := range recs {
		order = append(order, r.Band)
	}
	// 20m has 6 excellent hours, 80m has 4; 10m never beats poor.
	if !reflect.DeepEqual(order, []string{"20m", "80m", "40m"}) {
		t.Fatalf("order = %v", order)
	}

	if !reflect.DeepEqual(recs[0].TimeSlots, []string{"14:00-20:00"}) {
		t.Errorf("20m slots = %v", recs[0].TimeSlots)
	}
	if !reflect.DeepEqual(recs[1].TimeSlots, []string{"22:00-02:00"}) {
		t.Errorf("80m slots = %v", recs[1].TimeSlots)
	}
	if recs[2].Condition != models.ConditionGood {
		t.Errorf("40m condition = %s", recs[2].Condition)
	}
	if recs[0].Reason == "" {
		t.Error("expected a reason")
	}
}

func TestRecommendTieBreaksByFrequency(t *testing.T) {
	hours := dayWith(func(int) map[string]models.Condition {
		return map[string]models.Condition{"20m": models.ConditionGood, "40m": models.ConditionGood}
	})
	recs := Recommend(hours)
	if len(recs) != 2 || recs[0].Band != "40m" {
		t.Errorf("expected 40m first, got %+v", recs)
	}
}

func TestSlotLabels(t *testing.T) {
	var s HourSet
	for _, h := range []int{0, 1, 5, 6, 7, 23} {
		s.Add(h)
	}
	got := SlotLabels(s)
	want := []string{"05:00-08:00", "23:00-02:00"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}

	var all HourSet
	for h := 0; h < 24; h++ {
		all.Add(h)
	}
	if got := SlotLabels(all); !reflect.DeepEqual(got, []string{"00:00-00:00"}) {
		t.Errorf("full day = %v", got)
	}
}

func TestOverlapHours(t *testing.T) {
	var day models.DayConditions
	for h := range day.Hours {
		day.Hours[h].Hour = h
	}
	set, _ := HighlightHours("22:00", "01:00")
	rows := OverlapHours(day, set)
	if len(rows) != 3 || rows[0].Hour != 0 || rows[2].Hour != 23 {
		t.Errorf("rows = %+v", rows)
	}
}

func TestBandPlan(t *testing.T) {
	if b, ok := ByFrequency(14.074); !ok || b.Name != "20m" {
		t.Errorf("14.074 -> %v %v", b.Name, ok)
	}
	if _, ok := ByFrequency(13.0); ok {
		t.Error("13.0 MHz should not match a band")
	}
	if _, ok := Lookup("40m"); !ok {
		t.Error("40m should be known")
	}
	if _, ok := Lookup("11m"); ok {
		t.Error("11m should be unknown")
	}
	if !IsMode("FT8") || IsMode("ft8") {
		t.Error("mode matching is exact")
	}
}
