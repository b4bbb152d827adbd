package models

// Condition is a propagation rating for one band in one hour.
type Condition string

const (
	ConditionExcellent Condition = "excellent"
	ConditionGood      Condition = "good"
	ConditionFair      Condition = "fair"
	ConditionPoor      Condition = "poor"
)

// Rank orders conditions; higher is better. Unknown values rank below poor.
func (c Condition) Rank() int {
	switch c {
	case ConditionExcellent:
		return 4
	case ConditionGood:
		return 3
	case ConditionFair:
		return 2
	case ConditionPoor:
		return 1
	}
	return 0
}

// HourConditions maps each band to its rating for one UTC hour.
type HourConditions struct {
	Hour  int                  `json:"hour"`
	Bands map[string]Condition `json:"bands"`
}

// BandRecommendation is one ranked entry of a day's band advice.
type BandRecommendation struct {
	Band      string    `json:"band"`
	Condition Condition `json:"condition"`
	Reason    string    `json:"reason"`
	TimeSlots []string  `json:"timeSlots"` // e.g. "14:00-18:00"
}

// DayConditions is the hour-by-hour band matrix for one date.
type DayConditions struct {
	Date            string               `json:"date"`
	Hours           [24]HourConditions   `json:"hours"`
	Recommendations []BandRecommendation `json:"recommendations"`
}
