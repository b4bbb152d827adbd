package parks

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/ngmaloney/pota-planner/internal/database"
	"github.com/ngmaloney/pota-planner/internal/models"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func ptr(f float64) *float64 { return &f }

func testPark(ref, name string, lat, lon float64) models.Park {
	return models.Park{
		Reference: ref,
		Name:      name,
		EntityID:  "291",
		ProgramID: "K",
		Latitude:  ptr(lat),
		Longitude: ptr(lon),
		IsActive:  true,
	}
}

func seedParks(t *testing.T, repo *Repository, n int) {
	t.Helper()
	parks := make([]models.Park, n)
	for i := range parks {
		parks[i] = testPark(fmt.Sprintf("K-%04d", i+1), fmt.Sprintf("Park %02d", i+1), 40, -105)
	}
	if _, err := repo.InsertParks(context.Background(), parks); err != nil {
		t.Fatalf("InsertParks() error = %v", err)
	}
}

func TestSearchPaging(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(openTestDB(t))
	seedParks(t, repo, 10)

	tests := []struct {
		name        string
		limit       int
		offset      int
		wantLen     int
		wantHasMore bool
	}{
		{"first page", 5, 0, 5, true},
		{"last page", 5, 5, 5, false},
		{"past the end", 5, 20, 0, false},
		{"negative offset clamps", 3, -4, 3, true},
		{"default limit", 0, 0, 10, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := repo.Search(ctx, models.ParkSearchFilters{Limit: tt.limit, Offset: tt.offset})
			if err != nil {
				t.Fatalf("Search() error = %v", err)
			}
			if res.Total != 10 {
				t.Errorf("Total = %d, want 10", res.Total)
			}
			if len(res.Parks) != tt.wantLen {
				t.Errorf("len(Parks) = %d, want %d", len(res.Parks), tt.wantLen)
			}
			if res.HasMore != tt.wantHasMore {
				t.Errorf("HasMore = %v, want %v", res.HasMore, tt.wantHasMore)
			}
		})
	}
}

func TestSearchFilters(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(openTestDB(t))

	parks := []models.Park{
		testPark("K-0039", "Rocky Mountain National Park", 40.34, -105.68),
		testPark("K-4567", "Cherry Creek State Park", 39.64, -104.83),
		testPark("VE-0001", "Banff National Park", 51.49, -115.93),
		testPark("KH6-0001", "Fiji 100% Test", -17.7, 178.0),
		testPark("K-9999", "Aleutian Islands", 52.0, -176.0),
	}
	parks[2].ProgramID = "VE"
	parks[2].EntityID = "1"
	if _, err := repo.InsertParks(ctx, parks); err != nil {
		t.Fatalf("InsertParks() error = %v", err)
	}

	tests := []struct {
		name    string
		filters models.ParkSearchFilters
		want    []string
	}{
		{"name substring case-insensitive", models.ParkSearchFilters{Query: "national"}, []string{"VE-0001", "K-0039"}},
		{"reference substring", models.ParkSearchFilters{Query: "k-00"}, []string{"K-0039"}},
		{"percent is literal", models.ParkSearchFilters{Query: "100%"}, []string{"KH6-0001"}},
		{"underscore is literal", models.ParkSearchFilters{Query: "_"}, nil},
		{"program", models.ParkSearchFilters{ProgramID: "VE"}, []string{"VE-0001"}},
		{"entity", models.ParkSearchFilters{EntityID: "1"}, []string{"VE-0001"}},
		{"bounds inclusive", models.ParkSearchFilters{Bounds: &models.Bounds{North: 40.34, South: 39, East: -104, West: -105.68}},
			[]string{"K-4567", "K-0039"}},
		{"bounds across antimeridian", models.ParkSearchFilters{Bounds: &models.Bounds{North: 60, South: -20, East: -170, West: 170}},
			[]string{"K-9999", "KH6-0001"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := repo.Search(ctx, tt.filters)
			if err != nil {
				t.Fatalf("Search() error = %v", err)
			}
			if res.Total != len(tt.want) || len(res.Parks) != len(tt.want) {
				t.Fatalf("got %d parks (total %d), want %v", len(res.Parks), res.Total, tt.want)
			}
			for i, ref := range tt.want {
				if res.Parks[i].Reference != ref {
					t.Errorf("Parks[%d] = %s, want %s", i, res.Parks[i].Reference, ref)
				}
			}
		})
	}
}

func TestToggleFavorite(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(openTestDB(t))
	seedParks(t, repo, 1)

	first, err := repo.ToggleFavorite(ctx, "K-0001")
	if err != nil {
		t.Fatalf("ToggleFavorite() error = %v", err)
	}
	if got, ok := first.Get(); !ok || !got.IsFavorite {
		t.Errorf("first toggle = %+v, want favorite", got)
	}

	res, _ := repo.Search(ctx, models.ParkSearchFilters{FavoritesOnly: true})
	if res.Total != 1 {
		t.Errorf("favorites total = %d, want 1", res.Total)
	}

	second, err := repo.ToggleFavorite(ctx, "K-0001")
	if err != nil {
		t.Fatalf("ToggleFavorite() error = %v", err)
	}
	if got, ok := second.Get(); !ok || got.IsFavorite {
		t.Errorf("second toggle = %+v, want not favorite", got)
	}

	missing, err := repo.ToggleFavorite(ctx, "K-9999")
	if err != nil {
		t.Fatalf("ToggleFavorite() error = %v", err)
	}
	if missing.IsSome() {
		t.Error("expected None for missing park")
	}
	if n, _ := repo.Count(ctx); n != 1 {
		t.Errorf("Count() = %d after missing toggle, want 1", n)
	}
}

func TestInsertParkUpsert(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	repo := NewRepository(db)

	p := testPark("K-0039", "Rocky Mountain", 40.34, -105.68)
	p.GridSquare = "dn70"
	if err := repo.InsertPark(ctx, p); err != nil {
		t.Fatalf("InsertPark() error = %v", err)
	}
	idBefore, _ := repo.ResolveID(ctx, "K-0039")

	if _, err := repo.SetTimezoneIfAbsent(ctx, "K-0039", "America/Denver"); err != nil {
		t.Fatal(err)
	}
	if _, err := repo.ToggleFavorite(ctx, "K-0039"); err != nil {
		t.Fatal(err)
	}

	p.Name = "Rocky Mountain National Park"
	p.Timezone = "America/Phoenix"
	if err := repo.InsertPark(ctx, p); err != nil {
		t.Fatalf("InsertPark() error = %v", err)
	}

	got, _ := repo.GetByReference(ctx, "K-0039")
	park, ok := got.Get()
	if !ok {
		t.Fatal("park missing after upsert")
	}
	if park.Name != "Rocky Mountain National Park" {
		t.Errorf("Name = %q, want replaced", park.Name)
	}
	if park.GridSquare != "DN70" {
		t.Errorf("GridSquare = %q, want uppercased", park.GridSquare)
	}
	if park.Timezone != "America/Denver" {
		t.Errorf("Timezone = %q, want the first resolved zone kept", park.Timezone)
	}
	if !park.IsFavorite {
		t.Error("favorite lost on upsert")
	}
	idAfter, _ := repo.ResolveID(ctx, "K-0039")
	if idBefore.OrElse(-1) != idAfter.OrElse(-2) {
		t.Errorf("row id changed: %v -> %v", idBefore, idAfter)
	}
	if n, _ := repo.Count(ctx); n != 1 {
		t.Errorf("Count() = %d, want 1", n)
	}
}

func TestInsertParkKeepsFavoriteFlag(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(openTestDB(t))

	fav := testPark("K-0039", "Rocky Mountain", 40.34, -105.68)
	fav.IsFavorite = true
	plain := testPark("K-0040", "Great Sand Dunes", 37.79, -105.59)
	if _, err := repo.InsertParks(ctx, []models.Park{fav, plain}); err != nil {
		t.Fatalf("InsertParks() error = %v", err)
	}

	fav.IsFavorite = false
	plain.IsFavorite = true
	if _, err := repo.InsertParks(ctx, []models.Park{fav, plain}); err != nil {
		t.Fatalf("InsertParks() error = %v", err)
	}

	tests := []struct {
		ref  string
		want bool
	}{
		{"K-0039", true},
		{"K-0040", false},
	}
	for _, tt := range tests {
		got, err := repo.GetByReference(ctx, tt.ref)
		if err != nil {
			t.Fatal(err)
		}
		park, ok := got.Get()
		if !ok {
			t.Fatalf("%s missing", tt.ref)
		}
		if park.IsFavorite != tt.want {
			t.Errorf("%s IsFavorite = %v, want %v", tt.ref, park.IsFavorite, tt.want)
		}
	}
}

func TestSetTimezoneIfAbsent(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(openTestDB(t))
	seedParks(t, repo, 1)

	written, err := repo.SetTimezoneIfAbsent(ctx, "K-0001", "America/Denver")
	if err != nil || !written {
		t.Fatalf("first write = %v, %v", written, err)
	}
	written, err = repo.SetTimezoneIfAbsent(ctx, "K-0001", "UTC")
	if err != nil || written {
		t.Errorf("second write = %v, %v; want no write", written, err)
	}
}

func TestCountAndClearAll(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	repo := NewRepository(db)

	if n, err := repo.Count(ctx); err != nil || n != 0 {
		t.Errorf("Count() on empty store = %d, %v", n, err)
	}
	seedParks(t, repo, 3)

	id, _ := repo.ResolveID(ctx, "K-0001")
	_, err := db.Exec(`INSERT INTO plans (plan_uuid, park_id, name, activation_date, start_time, end_time, created_at, updated_at)
		VALUES ('a', ?, 'p', '2026-06-01', '09:00', '12:00', 'x', 'x')`, id.OrElse(0))
	if err != nil {
		t.Fatalf("inserting plan: %v", err)
	}

	if err := repo.ClearAll(ctx); err != nil {
		t.Fatalf("ClearAll() error = %v", err)
	}
	if n, _ := repo.Count(ctx); n != 0 {
		t.Errorf("Count() after ClearAll = %d", n)
	}
	var plans int
	db.QueryRow("SELECT COUNT(*) FROM plans").Scan(&plans)
	if plans != 0 {
		t.Errorf("plans left after ClearAll = %d", plans)
	}
}

func TestListFavorites(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(openTestDB(t))
	seedParks(t, repo, 3)
	repo.ToggleFavorite(ctx, "K-0003")
	repo.ToggleFavorite(ctx, "K-0001")

	favs, err := repo.ListFavorites(ctx)
	if err != nil {
		t.Fatalf("ListFavorites() error = %v", err)
	}
	if len(favs) != 2 || favs[0].Reference != "K-0001" || favs[1].Reference != "K-0003" {
		t.Errorf("favorites = %+v", favs)
	}
}

func TestValidReference(t *testing.T) {
	for ref, want := range map[string]bool{
		"K-0039":   true,
		"VE-12345": true,
		"k-0039":   false,
		"K-039":    false,
		"K0039":    false,
		"9A-0001":  false,
	} {
		if got := ValidReference(ref); got != want {
			t.Errorf("ValidReference(%q) = %v, want %v", ref, got, want)
		}
	}
}
