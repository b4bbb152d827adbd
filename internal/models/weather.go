package models

import "time"

// CurrentConditions represents the observed weather at a location
type CurrentConditions struct {
	Time                time.Time `msgpack:"time" json:"time"`
	Temperature         float64   `msgpack:"temperature" json:"temperature"` // Celsius
	ApparentTemperature float64   `msgpack:"apparent_temperature" json:"apparentTemperature"`
	Humidity            float64   `msgpack:"humidity" json:"humidity"`            // percent
	WindSpeed           float64   `msgpack:"wind_speed" json:"windSpeed"`         // km/h
	WindDirection       float64   `msgpack:"wind_direction" json:"windDirection"` // degrees
	WindGusts           float64   `msgpack:"wind_gusts" json:"windGusts"`
	Precipitation       float64   `msgpack:"precipitation" json:"precipitation"` // mm
	CloudCover          float64   `msgpack:"cloud_cover" json:"cloudCover"`      // percent
	WeatherCode         int       `msgpack:"weather_code" json:"weatherCode"`    // WMO code
	Conditions          string    `msgpack:"conditions" json:"conditions"`       // e.g. "Partly cloudy"
}

// HourlyForecast is one forecast hour
type HourlyForecast struct {
	Time                     time.Time `msgpack:"time" json:"time"`
	Temperature              float64   `msgpack:"temperature" json:"temperature"`
	PrecipitationProbability float64   `msgpack:"precipitation_probability" json:"precipitationProbability"`
	WindSpeed                float64   `msgpack:"wind_speed" json:"windSpeed"`
	WeatherCode              int       `msgpack:"weather_code" json:"weatherCode"`
	Conditions               string    `msgpack:"conditions" json:"conditions"`
}

// DailySun holds sunrise and sunset for one day
type DailySun struct {
	Date    string    `msgpack:"date" json:"date"` // YYYY-MM-DD
	Sunrise time.Time `msgpack:"sunrise" json:"sunrise"`
	Sunset  time.Time `msgpack:"sunset" json:"sunset"`
}

// WeatherData is the payload served by the weather cache
type WeatherData struct {
	Latitude  float64           `msgpack:"latitude" json:"latitude"`
	Longitude float64           `msgpack:"longitude" json:"longitude"`
	Timezone  string            `msgpack:"timezone" json:"timezone"`
	Current   CurrentConditions `msgpack:"current" json:"current"`
	Hourly    []HourlyForecast  `msgpack:"hourly" json:"hourly"`
	Daily     []DailySun        `msgpack:"daily" json:"daily"`
	FetchedAt time.Time         `msgpack:"fetched_at" json:"fetchedAt"`
	FromCache bool              `msgpack:"-" json:"fromCache"`
}

// DescribeWeatherCode maps a WMO weather interpretation code to text
func DescribeWeatherCode(code int) string {
	switch {
	case code == 0:
		return "Clear sky"
	case code == 1:
		return "Mainly clear"
	case code == 2:
		return "Partly cloudy"
	case code == 3:
		return "Overcast"
	case code == 45 || code == 48:
		return "Fog"
	case code >= 51 && code <= 57:
		return "Drizzle"
	case code >= 61 && code <= 67:
		return "Rain"
	case code >= 71 && code <= 77:
		return "Snow"
	case code >= 80 && code <= 82:
		return "Rain showers"
	case code == 85 || code == 86:
		return "Snow showers"
	case code >= 95:
		return "Thunderstorm"
	}
	return "Unknown"
}
