// Package weather fetches forecasts from Open-Meteo and caches them in
// SQLite keyed by rounded coordinates.
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/ngmaloney/pota-planner/internal/models"
)

// DefaultBaseURL is the public Open-Meteo endpoint.
const DefaultBaseURL = "https://api.open-meteo.com"

// Fetcher retrieves live weather for a location.
type Fetcher interface {
	Fetch(ctx context.Context, lat, lon float64) (*models.WeatherData, error)
}

// OpenMeteoClient implements Fetcher using the Open-Meteo forecast API
type OpenMeteoClient struct {
	baseURL    string
	httpClient *http.Client
	userAgent  string
}

// NewOpenMeteoClient creates a client. An empty baseURL uses DefaultBaseURL.
func NewOpenMeteoClient(baseURL string) *OpenMeteoClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &OpenMeteoClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		userAgent: "POTAPlanner/1.0 (github.com/ngmaloney/pota-planner)",
	}
}

const (
	currentFields = "temperature_2m,relative_humidity_2m,apparent_temperature,precipitation,weather_code,cloud_cover,wind_speed_10m,wind_direction_10m,wind_gusts_10m"
	hourlyFields  = "temperature_2m,precipitation_probability,weather_code,wind_speed_10m"
	forecastHours = 48
)

// Fetch retrieves current conditions, a 48 hour forecast and sunrise and
// sunset for the location.
func (c *OpenMeteoClient) Fetch(ctx context.Context, lat, lon float64) (*models.WeatherData, error) {
	q := url.Values{}
	q.Set("latitude", strconv.FormatFloat(lat, 'f', 4, 64))
	q.Set("longitude", strconv.FormatFloat(lon, 'f', 4, 64))
	q.Set("current", currentFields)
	q.Set("hourly", hourlyFields)
	q.Set("daily", "sunrise,sunset")
	q.Set("forecast_hours", strconv.Itoa(forecastHours))
	q.Set("forecast_days", "3")
	q.Set("timezone", "auto")
	q.Set("timeformat", "unixtime")

	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"/v1/forecast?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch forecast: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
	}

	var fr forecastResponse
	if err := json.NewDecoder(resp.Body).Decode(&fr); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return fr.toModel(), nil
}

// Internal types for Open-Meteo responses

type forecastResponse struct {
	Latitude         float64 `json:"latitude"`
	Longitude        float64 `json:"longitude"`
	Timezone         string  `json:"timezone"`
	UTCOffsetSeconds int     `json:"utc_offset_seconds"`
	Current          struct {
		Time                int64   `json:"time"`
		Temperature         float64 `json:"temperature_2m"`
		Humidity            float64 `json:"relative_humidity_2m"`
		ApparentTemperature float64 `json:"apparent_temperature"`
		Precipitation       float64 `json:"precipitation"`
		WeatherCode         int     `json:"weather_code"`
		CloudCover          float64 `json:"cloud_cover"`
		WindSpeed           float64 `json:"wind_speed_10m"`
		WindDirection       float64 `json:"wind_direction_10m"`
		WindGusts           float64 `json:"wind_gusts_10m"`
	} `json:"current"`
	Hourly struct {
		Time                     []int64   `json:"time"`
		Temperature              []float64 `json:"temperature_2m"`
		PrecipitationProbability []float64 `json:"precipitation_probability"`
		WeatherCode              []int     `json:"weather_code"`
		WindSpeed                []float64 `json:"wind_speed_10m"`
	} `json:"hourly"`
	Daily struct {
		Time    []int64 `json:"time"`
		Sunrise []int64 `json:"sunrise"`
		Sunset  []int64 `json:"sunset"`
	} `json:"daily"`
}

func at[T any](s []T, i int) T {
	var zero T
	if i < len(s) {
		return s[i]
	}
	return zero
}

func (fr forecastResponse) toModel() *models.WeatherData {
	cur := fr.Current
	data := &models.WeatherData{
		Latitude:  fr.Latitude,
		Longitude: fr.Longitude,
		Timezone:  fr.Timezone,
		Current: models.CurrentConditions{
			Time:                time.Unix(cur.Time, 0).UTC(),
			Temperature:         cur.Temperature,
			ApparentTemperature: cur.ApparentTemperature,
			Humidity:            cur.Humidity,
			WindSpeed:           cur.WindSpeed,
			WindDirection:       cur.WindDirection,
			WindGusts:           cur.WindGusts,
			Precipitation:       cur.Precipitation,
			CloudCover:          cur.CloudCover,
			WeatherCode:         cur.WeatherCode,
			Conditions:          models.DescribeWeatherCode(cur.WeatherCode),
		},
		Hourly: make([]models.HourlyForecast, 0, len(fr.Hourly.Time)),
		Daily:  make([]models.DailySun, 0, len(fr.Daily.Time)),
	}

	h := fr.Hourly
	for i, ts := range h.Time {
		code := at(h.WeatherCode, i)
		data.Hourly = append(data.Hourly, models.HourlyForecast{
			Time:                     time.Unix(ts, 0).UTC(),
			Temperature:              at(h.Temperature, i),
			PrecipitationProbability: at(h.PrecipitationProbability, i),
			WindSpeed:                at(h.WindSpeed, i),
			WeatherCode:              code,
			Conditions:               models.DescribeWeatherCode(code),
		})
	}

	// Daily timestamps are local midnight; shift by the offset to get the
	// local calendar date.
	offset := time.Duration(fr.UTCOffsetSeconds) * time.Second
	for i, ts := range fr.Daily.Time {
		data.Daily = append(data.Daily, models.DailySun{
			Date:    time.Unix(ts, 0).UTC().Add(offset).Format("2006-01-02"),
			Sunrise: time.Unix(at(fr.Daily.Sunrise, i), 0).UTC(),
			Sunset:  time.Unix(at(fr.Daily.Sunset, i), 0).UTC(),
		})
	}
	return data
}
