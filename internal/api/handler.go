package api

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ngmaloney/pota-planner/internal/bands"
	"github.com/ngmaloney/pota-planner/internal/config"
	"github.com/ngmaloney/pota-planner/internal/models"
	"github.com/ngmaloney/pota-planner/internal/parks"
	"github.com/ngmaloney/pota-planner/internal/plans"
	"github.com/ngmaloney/pota-planner/internal/timeconv"
	"github.com/ngmaloney/pota-planner/internal/weather"
)

// WeatherSource serves weather for a coordinate.
type WeatherSource interface {
	Get(ctx context.Context, lat, lon float64) (*models.WeatherData, error)
}

// Deps are the collaborators a Handler needs.
type Deps struct {
	Parks    *parks.Service
	Importer *parks.Importer
	Plans    *plans.Repository
	Weather  WeatherSource
	Settings *config.SettingsStore
	Logger   *zap.SugaredLogger
}

// Handler implements one method per logical operation.
type Handler struct {
	parks    *parks.Service
	importer *parks.Importer
	plans    *plans.Repository
	weather  WeatherSource
	settings *config.SettingsStore
	logger   *zap.SugaredLogger
	now      func() time.Time
}

// NewHandler wires a handler.
func NewHandler(d Deps) *Handler {
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Handler{
		parks:    d.Parks,
		importer: d.Importer,
		plans:    d.Plans,
		weather:  d.Weather,
		settings: d.Settings,
		logger:   logger,
		now:      time.Now,
	}
}

// guard turns a panic inside an operation into an INTERNAL_ERROR response.
func guard[T any](h *Handler, op string, fn func() Response[T]) (resp Response[T]) {
	defer func() {
		if r := recover(); r != nil {
			h.logger.Errorw("operation panicked", "op", op, "panic", fmt.Sprint(r))
			resp = Fail[T](CodeInternal, "internal error")
		}
	}()
	return fn()
}

// failWith maps an error onto the closed set of error codes.
func failWith[T any](h *Handler, op string, err error) Response[T] {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		return Fail[T](CodeValidation, err.Error())
	case errors.Is(err, plans.ErrParkNotFound), errors.Is(err, plans.ErrPresetNotFound):
		return Fail[T](CodeNotFound, err.Error())
	case errors.Is(err, plans.ErrBuiltinPreset):
		return Fail[T](CodeValidation, err.Error())
	case errors.Is(err, weather.ErrFetch):
		h.logger.Warnw("weather fetch failed", "op", op, "error", err)
		return Fail[T](CodeNetwork, err.Error())
	}
	h.logger.Errorw("operation failed", "op", op, "error", err)
	return Fail[T](CodeInternal, "internal error")
}

func notFound[T any](what string) Response[T] {
	return Fail[T](CodeNotFound, what+" not found")
}

// SearchParks returns one page of parks.
func (h *Handler) SearchParks(ctx context.Context, f models.ParkSearchFilters) Response[models.ParkSearchResult] {
	return guard(h, "SearchParks", func() Response[models.ParkSearchResult] {
		if err := validateSearch(f); err != nil {
			return failWith[models.ParkSearchResult](h, "SearchParks", err)
		}
		res, err := h.parks.Search(ctx, f)
		if err != nil {
			return failWith[models.ParkSearchResult](h, "SearchParks", err)
		}
		return OK(res)
	})
}

// GetPark returns a park, resolving its timezone on first access.
func (h *Handler) GetPark(ctx context.Context, ref string) Response[models.Park] {
	return guard(h, "GetPark", func() Response[models.Park] {
		var v validator
		v.reference("reference", ref)
		if err := v.err(); err != nil {
			return failWith[models.Park](h, "GetPark", err)
		}
		found, err := h.parks.ParkByReference(ctx, ref)
		if err != nil {
			return failWith[models.Park](h, "GetPark", err)
		}
		park, ok := found.Get()
		if !ok {
			return notFound[models.Park]("park " + ref)
		}
		return OK(park)
	})
}

// ToggleFavorite flips a park's favorite flag.
func (h *Handler) ToggleFavorite(ctx context.Context, ref string) Response[models.FavoriteToggle] {
	return guard(h, "ToggleFavorite", func() Response[models.FavoriteToggle] {
		var v validator
		v.reference("reference", ref)
		if err := v.err(); err != nil {
			return failWith[models.FavoriteToggle](h, "ToggleFavorite", err)
		}
		found, err := h.parks.ToggleFavorite(ctx, ref)
		if err != nil {
			return failWith[models.FavoriteToggle](h, "ToggleFavorite", err)
		}
		toggle, ok := found.Get()
		if !ok {
			return notFound[models.FavoriteToggle]("park " + ref)
		}
		return OK(toggle)
	})
}

// ImportParks loads the park CSV from source (file or URL; empty for the
// configured default).
func (h *Handler) ImportParks(ctx context.Context, source string, progress chan<- string) Response[parks.ImportResult] {
	return guard(h, "ImportParks", func() Response[parks.ImportResult] {
		res, err := h.importer.Import(ctx, source, progress)
		if err != nil {
			h.logger.Errorw("park import failed", "source", source, "error", err)
			return Fail[parks.ImportResult](CodeImport, err.Error())
		}
		return OK(res)
	})
}

// CreatePlan stores a new plan.
func (h *Handler) CreatePlan(ctx context.Context, in models.PlanInput) Response[models.Plan] {
	return guard(h, "CreatePlan", func() Response[models.Plan] {
		if err := validatePlanInput(in); err != nil {
			return failWith[models.Plan](h, "CreatePlan", err)
		}
		plan, err := h.plans.Create(ctx, in)
		if err != nil {
			return failWith[models.Plan](h, "CreatePlan", err)
		}
		return OK(plan)
	})
}

// GetPlan returns a plan by id.
func (h *Handler) GetPlan(ctx context.Context, id string) Response[models.Plan] {
	return guard(h, "GetPlan", func() Response[models.Plan] {
		var v validator
		v.planID(id)
		if err := v.err(); err != nil {
			return failWith[models.Plan](h, "GetPlan", err)
		}
		found, err := h.plans.GetByID(ctx, id)
		if err != nil {
			return failWith[models.Plan](h, "GetPlan", err)
		}
		plan, ok := found.Get()
		if !ok {
			return notFound[models.Plan]("plan " + id)
		}
		return OK(plan)
	})
}

// ListPlans returns one page of plans.
func (h *Handler) ListPlans(ctx context.Context, f models.PlanListFilters) Response[models.PlanListResult] {
	return guard(h, "ListPlans", func() Response[models.PlanListResult] {
		if err := validatePlanList(f); err != nil {
			return failWith[models.PlanListResult](h, "ListPlans", err)
		}
		res, err := h.plans.List(ctx, f)
		if err != nil {
			return failWith[models.PlanListResult](h, "ListPlans", err)
		}
		return OK(res)
	})
}

// UpdatePlan applies a partial update.
func (h *Handler) UpdatePlan(ctx context.Context, id string, u models.PlanUpdate) Response[models.Plan] {
	return guard(h, "UpdatePlan", func() Response[models.Plan] {
		if err := validatePlanUpdate(id, u); err != nil {
			return failWith[models.Plan](h, "UpdatePlan", err)
		}
		found, err := h.plans.Update(ctx, id, u)
		if err != nil {
			return failWith[models.Plan](h, "UpdatePlan", err)
		}
		plan, ok := found.Get()
		if !ok {
			return notFound[models.Plan]("plan " + id)
		}
		return OK(plan)
	})
}

// DeletePlan removes a plan.
func (h *Handler) DeletePlan(ctx context.Context, id string) Response[bool] {
	return guard(h, "DeletePlan", func() Response[bool] {
		var v validator
		v.planID(id)
		if err := v.err(); err != nil {
			return failWith[bool](h, "DeletePlan", err)
		}
		deleted, err := h.plans.Delete(ctx, id)
		if err != nil {
			return failWith[bool](h, "DeletePlan", err)
		}
		if !deleted {
			return notFound[bool]("plan " + id)
		}
		return OK(true)
	})
}

// ListPresets returns all equipment presets.
func (h *Handler) ListPresets(ctx context.Context) Response[[]models.EquipmentPreset] {
	return guard(h, "ListPresets", func() Response[[]models.EquipmentPreset] {
		presets, err := h.plans.ListPresets(ctx)
		if err != nil {
			return failWith[[]models.EquipmentPreset](h, "ListPresets", err)
		}
		return OK(presets)
	})
}

// CreatePreset stores a user preset.
func (h *Handler) CreatePreset(ctx context.Context, p models.EquipmentPreset) Response[models.EquipmentPreset] {
	return guard(h, "CreatePreset", func() Response[models.EquipmentPreset] {
		if err := validatePreset(p); err != nil {
			return failWith[models.EquipmentPreset](h, "CreatePreset", err)
		}
		created, err := h.plans.CreatePreset(ctx, p)
		if err != nil {
			return failWith[models.EquipmentPreset](h, "CreatePreset", err)
		}
		return OK(created)
	})
}

// UpdatePreset replaces a user preset.
func (h *Handler) UpdatePreset(ctx context.Context, id int64, p models.EquipmentPreset) Response[models.EquipmentPreset] {
	return guard(h, "UpdatePreset", func() Response[models.EquipmentPreset] {
		if err := validatePreset(p); err != nil {
			return failWith[models.EquipmentPreset](h, "UpdatePreset", err)
		}
		found, err := h.plans.UpdatePreset(ctx, id, p)
		if err != nil {
			return failWith[models.EquipmentPreset](h, "UpdatePreset", err)
		}
		preset, ok := found.Get()
		if !ok {
			return notFound[models.EquipmentPreset](fmt.Sprintf("preset %d", id))
		}
		return OK(preset)
	})
}

// DeletePreset removes a user preset.
func (h *Handler) DeletePreset(ctx context.Context, id int64) Response[bool] {
	return guard(h, "DeletePreset", func() Response[bool] {
		deleted, err := h.plans.DeletePreset(ctx, id)
		if err != nil {
			return failWith[bool](h, "DeletePreset", err)
		}
		if !deleted {
			return notFound[bool](fmt.Sprintf("preset %d", id))
		}
		return OK(true)
	})
}

// GetWeather returns cached or live weather for a coordinate.
func (h *Handler) GetWeather(ctx context.Context, lat, lon float64) Response[*models.WeatherData] {
	return guard(h, "GetWeather", func() Response[*models.WeatherData] {
		var v validator
		v.coordinates(lat, lon)
		if err := v.err(); err != nil {
			return failWith[*models.WeatherData](h, "GetWeather", err)
		}
		data, err := h.weather.Get(ctx, lat, lon)
		if err != nil {
			return failWith[*models.WeatherData](h, "GetWeather", err)
		}
		return OK(data)
	})
}

// BandRequest asks for band advice on a date, located either by park or by
// coordinates. StartTime and EndTime are park-local and optional.
type BandRequest struct {
	Date          string   `json:"date"`
	ParkReference string   `json:"parkReference,omitempty"`
	Latitude      *float64 `json:"latitude,omitempty"`
	Longitude     *float64 `json:"longitude,omitempty"`
	StartTime     string   `json:"startTime,omitempty"`
	EndTime       string   `json:"endTime,omitempty"`
}

// BandReport is the day's band matrix plus the activation's share of it.
type BandReport struct {
	Conditions      models.DayConditions        `json:"conditions"`
	Timezone        string                      `json:"timezone,omitempty"`
	OffsetLabel     string                      `json:"offsetLabel"`
	HighlightHours  []int                       `json:"highlightHours"` // UTC
	Recommendations []models.BandRecommendation `json:"recommendations"`
}

// GetBandRecommendations forecasts band conditions and ranks bands for the
// activation window (or the current hour when no window is given).
func (h *Handler) GetBandRecommendations(ctx context.Context, req BandRequest) Response[BandReport] {
	return guard(h, "GetBandRecommendations", func() Response[BandReport] {
		var v validator
		v.date("date", req.Date)
		if req.StartTime != "" {
			v.clock("startTime", req.StartTime)
		}
		if req.EndTime != "" {
			v.clock("endTime", req.EndTime)
		}
		if req.ParkReference != "" {
			v.reference("parkReference", req.ParkReference)
		} else if req.Latitude == nil || req.Longitude == nil {
			v.addf("either parkReference or latitude and longitude are required")
		} else {
			v.coordinates(*req.Latitude, *req.Longitude)
		}
		if err := v.err(); err != nil {
			return failWith[BandReport](h, "GetBandRecommendations", err)
		}

		var lat, lon float64
		var zone string
		if req.ParkReference != "" {
			found, err := h.parks.ParkByReference(ctx, req.ParkReference)
			if err != nil {
				return failWith[BandReport](h, "GetBandRecommendations", err)
			}
			park, ok := found.Get()
			if !ok {
				return notFound[BandReport]("park " + req.ParkReference)
			}
			if !park.HasCoordinates() {
				return Fail[BandReport](CodeValidation, "park "+park.Reference+" has no coordinates")
			}
			lat, lon, zone = *park.Latitude, *park.Longitude, park.Timezone
		} else {
			lat, lon = *req.Latitude, *req.Longitude
		}

		day, err := bands.Forecast(req.Date, lat, lon)
		if err != nil {
			return failWith[BandReport](h, "GetBandRecommendations", err)
		}

		set, ok := bands.UTCHours(req.Date, req.StartTime, req.EndTime, zone)
		if !ok || zone == "" {
			set = bands.ActivationHighlightHours(req.StartTime, req.EndTime, h.now().UTC())
		}

		report := BandReport{
			Conditions:      day,
			Timezone:        zone,
			OffsetLabel:     "UTC",
			HighlightHours:  set.Hours(),
			Recommendations: bands.Recommend(bands.OverlapHours(day, set)),
		}
		if zone != "" {
			at, ok := timeconv.ToUTCInstant(req.Date, "12:00", zone)
			if !ok {
				at = h.now()
			}
			report.OffsetLabel = timeconv.OffsetLabel(zone, at)
		}
		return OK(report)
	})
}

// GetSettings returns the user settings.
func (h *Handler) GetSettings(ctx context.Context) Response[models.Settings] {
	return guard(h, "GetSettings", func() Response[models.Settings] {
		s, err := h.settings.Get(ctx)
		if err != nil {
			return failWith[models.Settings](h, "GetSettings", err)
		}
		return OK(s)
	})
}

// SetSettings replaces the user settings.
func (h *Handler) SetSettings(ctx context.Context, s models.Settings) Response[models.Settings] {
	return guard(h, "SetSettings", func() Response[models.Settings] {
		if err := validateSettings(s); err != nil {
			return failWith[models.Settings](h, "SetSettings", err)
		}
		if err := h.settings.Set(ctx, s); err != nil {
			return failWith[models.Settings](h, "SetSettings", err)
		}
		return OK(s)
	})
}
