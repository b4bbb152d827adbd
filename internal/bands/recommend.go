package bands

import (
	"fmt"
	"sort"

	"github.com/ngmaloney/pota-planner/internal/models"
)

var reasons = map[models.Condition]string{
	models.ConditionExcellent: "Band wide open; expect strong signals and long-haul contacts",
	models.ConditionGood:      "Reliable conditions for a steady run of contacts",
	models.ConditionFair:      "Workable with patience; expect weaker signals",
}

// Recommend ranks bands across the given hours. For each band it takes the
// best condition seen, the hours at that condition (as "HH:00-HH:00" UTC
// runs) and a reason. Bands that never rise above poor are left out.
// Order: condition, then number of hours, then frequency.
func Recommend(hours []models.HourConditions) []models.BandRecommendation {
	best := make(map[string]models.Condition)
	for _, hc := range hours {
		for band, cond := range hc.Bands {
			if cond.Rank() > best[band].Rank() {
				best[band] = cond
			}
		}
	}

	type ranked struct {
		rec   models.BandRecommendation
		count int
	}
	var out []ranked
	for _, band := range sortedKeys(best) {
		cond := best[band]
		if cond.Rank() <= models.ConditionPoor.Rank() {
			continue
		}

		var set HourSet
		for _, hc := range hours {
			if hc.Bands[band] == cond {
				set.Add(hc.Hour)
			}
		}

		out = append(out, ranked{
			rec: models.BandRecommendation{
				Band:      band,
				Condition: cond,
				Reason:    fmt.Sprintf("%s (%d h)", reasons[cond], set.Len()),
				TimeSlots: SlotLabels(set),
			},
			count: set.Len(),
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		ri, rj := out[i].rec.Condition.Rank(), out[j].rec.Condition.Rank()
		if ri != rj {
			return ri > rj
		}
		if out[i].count != out[j].count {
			return out[i].count > out[j].count
		}
		return bandIndex(out[i].rec.Band) < bandIndex(out[j].rec.Band)
	})

	recs := make([]models.BandRecommendation, len(out))
	for i, r := range out {
		recs[i] = r.rec
	}
	return recs
}

// SlotLabels renders contiguous runs of hours as "HH:00-HH:00". A run that
// touches both 23 and 0 is joined across midnight.
func SlotLabels(set HourSet) []string {
	type run struct{ start, end int } // end exclusive
	var runs []run
	for h := 0; h < 24; h++ {
		if !set.Contains(h) {
			continue
		}
		if len(runs) > 0 && runs[len(runs)-1].end == h {
			runs[len(runs)-1].end = h + 1
			continue
		}
		runs = append(runs, run{start: h, end: h + 1})
	}

	if len(runs) > 1 && runs[0].start == 0 && runs[len(runs)-1].end == 24 {
		runs[len(runs)-1].end = 24 + runs[0].end
		runs = runs[1:]
	}

	labels := make([]string, len(runs))
	for i, r := range runs {
		labels[i] = fmt.Sprintf("%02d:00-%02d:00", r.start, r.end%24)
	}
	return labels
}

// OverlapHours returns the rows of day whose hour is in set.
func OverlapHours(day models.DayConditions, set HourSet) []models.HourConditions {
	var rows []models.HourConditions
	for _, hc := range day.Hours {
		if set.Contains(hc.Hour) {
			rows = append(rows, hc)
		}
	}
	return rows
}
