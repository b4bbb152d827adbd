package models

import "time"

// Park is a single POTA park record.
type Park struct {
	ID              int64     `json:"-"`         // Database primary key
	Reference       string    `json:"reference"` // e.g. "K-0039"
	Name            string    `json:"name"`
	EntityID        string    `json:"entityId"`  // DXCC entity code
	ProgramID       string    `json:"programId"` // Reference prefix, e.g. "K"
	GridSquare      string    `json:"gridSquare,omitempty"`
	Latitude        *float64  `json:"latitude,omitempty"`
	Longitude       *float64  `json:"longitude,omitempty"`
	State           string    `json:"state,omitempty"`
	Country         string    `json:"country,omitempty"`
	LocationDesc    string    `json:"locationDesc,omitempty"` // e.g. "US-CO"
	ActivationCount int       `json:"activationCount"`
	IsActive        bool      `json:"isActive"`
	IsFavorite      bool      `json:"isFavorite"`
	UpdatedAt       time.Time `json:"updatedAt"`
	Timezone        string    `json:"timezone,omitempty"` // IANA id, empty until resolved
}

// HasCoordinates reports whether both latitude and longitude are known.
func (p Park) HasCoordinates() bool {
	return p.Latitude != nil && p.Longitude != nil
}

// Bounds is a lat/lon box. All four edges are inclusive. A box whose West
// edge is greater than its East edge crosses the antimeridian.
type Bounds struct {
	North float64 `json:"north"`
	South float64 `json:"south"`
	East  float64 `json:"east"`
	West  float64 `json:"west"`
}

// ParkSearchFilters narrows a park search. Zero values mean "no filter".
type ParkSearchFilters struct {
	Query         string  `json:"query,omitempty"`
	EntityID      string  `json:"entityId,omitempty"`
	ProgramID     string  `json:"programId,omitempty"`
	FavoritesOnly bool    `json:"favoritesOnly,omitempty"`
	Bounds        *Bounds `json:"bounds,omitempty"`
	Limit         int     `json:"limit,omitempty"`
	Offset        int     `json:"offset,omitempty"`
}

// ParkSearchResult is one page of a park search.
type ParkSearchResult struct {
	Parks   []Park `json:"parks"`
	Total   int    `json:"total"`
	HasMore bool   `json:"hasMore"`
}

// FavoriteToggle is the outcome of flipping a park's favorite flag.
type FavoriteToggle struct {
	Reference  string `json:"reference"`
	IsFavorite bool   `json:"isFavorite"`
}

// ImportMetadata records one bulk park import.
type ImportMetadata struct {
	Filename     string    `json:"filename"`
	RowsImported int       `json:"rowsImported"`
	ImportedAt   time.Time `json:"importedAt"`
}
