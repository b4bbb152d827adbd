package bands

import (
	"fmt"
	"math"
	"time"

	"github.com/soniakeys/meeus/v3/julian"

	"github.com/ngmaloney/pota-planner/internal/models"
	"github.com/ngmaloney/pota-planner/internal/timeconv"
)

// Sun elevation thresholds in degrees.
const (
	greylineHigh = 6.0
	greylineLow  = -6.0
	highSun      = 30.0
)

type profile struct {
	day, grey, night models.Condition
	highSunBoost     bool
}

// HF propagation by solar period. Higher bands need the sun; lower bands
// open up after dark.
var profiles = map[string]profile{
	"160m": {day: models.ConditionPoor, grey: models.ConditionFair, night: models.ConditionGood},
	"80m":  {day: models.ConditionPoor, grey: models.ConditionGood, night: models.ConditionExcellent},
	"60m":  {day: models.ConditionFair, grey: models.ConditionGood, night: models.ConditionGood},
	"40m":  {day: models.ConditionGood, grey: models.ConditionExcellent, night: models.ConditionGood},
	"30m":  {day: models.ConditionGood, grey: models.ConditionExcellent, night: models.ConditionGood},
	"20m":  {day: models.ConditionExcellent, grey: models.ConditionGood, night: models.ConditionFair},
	"17m":  {day: models.ConditionGood, grey: models.ConditionGood, night: models.ConditionPoor, highSunBoost: true},
	"15m":  {day: models.ConditionGood, grey: models.ConditionFair, night: models.ConditionPoor, highSunBoost: true},
	"12m":  {day: models.ConditionFair, grey: models.ConditionFair, night: models.ConditionPoor, highSunBoost: true},
	"10m":  {day: models.ConditionFair, grey: models.ConditionPoor, night: models.ConditionPoor, highSunBoost: true},
}

var byRank = map[int]models.Condition{
	1: models.ConditionPoor,
	2: models.ConditionFair,
	3: models.ConditionGood,
	4: models.ConditionExcellent,
}

func (p profile) at(elevation float64) models.Condition {
	switch {
	case elevation > greylineHigh:
		if p.highSunBoost && elevation > highSun && p.day.Rank() < models.ConditionExcellent.Rank() {
			return byRank[p.day.Rank()+1]
		}
		return p.day
	case elevation >= greylineLow:
		return p.grey
	default:
		return p.night
	}
}

// Forecast estimates HF band conditions for each UTC hour of date
// ("YYYY-MM-DD") at the given location, using the sun's elevation at the
// middle of each hour.
func Forecast(date string, lat, lon float64) (models.DayConditions, error) {
	y, m, dd, ok := timeconv.ParseDate(date)
	if !ok {
		return models.DayConditions{}, fmt.Errorf("invalid date %q", date)
	}

	day := models.DayConditions{Date: date}
	for h := 0; h < 24; h++ {
		t := time.Date(y, time.Month(m), dd, h, 30, 0, 0, time.UTC)
		el := SolarElevation(lat, lon, t)

		conds := make(map[string]models.Condition, len(profiles))
		for band, p := range profiles {
			conds[band] = p.at(el)
		}
		day.Hours[h] = models.HourConditions{Hour: h, Bands: conds}
	}
	day.Recommendations = Recommend(day.Hours[:])
	return day, nil
}

func degToRad(deg float64) float64 { return deg * math.Pi / 180.0 }
func radToDeg(rad float64) float64 { return rad * 180.0 / math.Pi }
func fixAngle(a float64) float64   { return a - 360.0*math.Floor(a/360.0) }

// SolarElevation returns the sun's elevation above the horizon in degrees,
// including a standard refraction correction.
func SolarElevation(lat, lon float64, t time.Time) float64 {
	t = t.UTC()
	jd := julian.TimeToJD(t)
	T := (jd - 2451545.0) / 36525.0

	L0 := fixAngle(280.46646 + T*(36000.76983+T*0.0003032))
	M := fixAngle(357.52911 + T*(35999.05029-T*0.0001537))
	e := 0.016708634 - T*(0.000042037+T*0.0000001267)
	C := math.Sin(degToRad(M))*(1.914602-T*(0.004817+T*0.000014)) +
		math.Sin(degToRad(2*M))*(0.019993-T*0.000101) +
		math.Sin(degToRad(3*M))*0.000289
	omega := 125.04 - 1934.136*T
	lambda := L0 + C - 0.00569 - 0.00478*math.Sin(degToRad(omega))
	eps := 23 + (26+(21.448-T*(46.815+T*(0.00059-T*0.001813)))/60)/60
	decl := math.Asin(math.Sin(degToRad(eps)) * math.Sin(degToRad(lambda)))

	y := math.Tan(degToRad(eps)/2) * math.Tan(degToRad(eps)/2)
	eqTime := radToDeg(y*math.Sin(degToRad(2*L0))-
		2*e*math.Sin(degToRad(M))+
		4*e*y*math.Sin(degToRad(M))*math.Cos(degToRad(2*L0))-
		0.5*y*y*math.Sin(degToRad(4*L0))-
		1.25*e*e*math.Sin(degToRad(2*M))) * 4

	utcMin := float64(t.Hour()*60+t.Minute()) + float64(t.Second())/60.0
	ha := degToRad((utcMin+4*lon+eqTime)/4 - 180)

	latRad := degToRad(lat)
	cosZen := math.Sin(latRad)*math.Sin(decl) + math.Cos(latRad)*math.Cos(decl)*math.Cos(ha)
	cosZen = math.Max(-1, math.Min(1, cosZen))
	return 90 - radToDeg(math.Acos(cosZen)) + 0.5667
}
