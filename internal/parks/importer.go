package parks

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ngmaloney/pota-planner/internal/models"
	"github.com/ngmaloney/pota-planner/internal/option"
)

// DefaultParksURL is the full POTA park list.
const DefaultParksURL = "https://pota.app/all_parks_ext.csv"

const importBatchSize = 1000

// ImportResult summarises one import run.
type ImportResult struct {
	Source   string `json:"source"`
	Imported int    `json:"imported"`
	Skipped  int    `json:"skipped"`
}

// Importer loads the POTA park CSV into the repository.
type Importer struct {
	repo       *Repository
	defaultURL string
	httpClient *http.Client
	userAgent  string
	logger     *zap.SugaredLogger
}

// NewImporter creates an importer. defaultURL is used when Import is given
// no source.
func NewImporter(repo *Repository, defaultURL string, logger *zap.SugaredLogger) *Importer {
	if defaultURL == "" {
		defaultURL = DefaultParksURL
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Importer{
		repo:       repo,
		defaultURL: defaultURL,
		httpClient: &http.Client{Timeout: 5 * time.Minute},
		userAgent:  "POTAPlanner/1.0 (github.com/ngmaloney/pota-planner)",
		logger:     logger,
	}
}

// Import reads parks from source, a file path or http(s) URL, and upserts
// them in batches. Rows with an invalid reference are skipped.
func (im *Importer) Import(ctx context.Context, source string, progress chan<- string) (ImportResult, error) {
	if source == "" {
		source = im.defaultURL
	}
	result := ImportResult{Source: source}

	sendProgress := func(msg string) {
		if progress != nil {
			progress <- msg
		}
		im.logger.Info(msg)
	}

	sendProgress(fmt.Sprintf("Reading parks from %s...", source))
	body, err := im.open(ctx, source)
	if err != nil {
		return result, err
	}
	defer body.Close()

	r := csv.NewReader(body)
	r.FieldsPerRecord = -1
	r.ReuseRecord = true

	header, err := r.Read()
	if err != nil {
		return result, fmt.Errorf("reading header: %w", err)
	}
	cols := columnIndex(header)
	if _, ok := cols["reference"]; !ok {
		return result, errors.New("csv has no reference column")
	}
	if _, ok := cols["name"]; !ok {
		return result, errors.New("csv has no name column")
	}

	batch := make([]models.Park, 0, importBatchSize)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		n, err := im.repo.InsertParks(ctx, batch)
		if err != nil {
			return err
		}
		result.Imported += n
		batch = batch[:0]
		sendProgress(fmt.Sprintf("Imported %d parks...", result.Imported))
		return nil
	}

	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return result, fmt.Errorf("reading csv: %w", err)
		}

		park, ok := parseRecord(record, cols)
		if !ok {
			result.Skipped++
			continue
		}
		batch = append(batch, park)

		if len(batch) == importBatchSize {
			if err := ctx.Err(); err != nil {
				return result, err
			}
			if err := flush(); err != nil {
				return result, err
			}
		}
	}
	if err := flush(); err != nil {
		return result, err
	}

	meta := models.ImportMetadata{
		Filename:     filepath.Base(source),
		RowsImported: result.Imported,
		ImportedAt:   time.Now(),
	}
	if err := im.repo.RecordImport(ctx, meta); err != nil {
		return result, err
	}

	sendProgress(fmt.Sprintf("Successfully imported %d parks (%d skipped)", result.Imported, result.Skipped))
	return result, nil
}

// LastImport returns the most recent import record.
func (im *Importer) LastImport(ctx context.Context) (option.Option[models.ImportMetadata], error) {
	return im.repo.LastImport(ctx)
}

func (im *Importer) open(ctx context.Context, source string) (io.ReadCloser, error) {
	if !strings.HasPrefix(source, "http://") && !strings.HasPrefix(source, "https://") {
		f, err := os.Open(source)
		if err != nil {
			return nil, fmt.Errorf("opening %s: %w", source, err)
		}
		return f, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", im.userAgent)

	resp, err := im.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching parks: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("park list returned status %d", resp.StatusCode)
	}
	return resp.Body, nil
}

func columnIndex(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		cols[h] = i
	}
	return cols
}

func field(record []string, cols map[string]int, name string) string {
	i, ok := cols[strings.ToLower(name)]
	if !ok || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

func parseRecord(record []string, cols map[string]int) (models.Park, bool) {
	ref := strings.ToUpper(field(record, cols, "reference"))
	name := field(record, cols, "name")
	if !ValidReference(ref) || name == "" {
		return models.Park{}, false
	}

	p := models.Park{
		Reference:    ref,
		Name:         name,
		EntityID:     field(record, cols, "entityId"),
		ProgramID:    ref[:strings.IndexByte(ref, '-')],
		GridSquare:   field(record, cols, "grid"),
		LocationDesc: field(record, cols, "locationDesc"),
		IsActive:     field(record, cols, "active") != "0",
	}
	if n, err := strconv.Atoi(field(record, cols, "activations")); err == nil {
		p.ActivationCount = n
	}
	if lat, err := strconv.ParseFloat(field(record, cols, "latitude"), 64); err == nil {
		p.Latitude = &lat
	}
	if lon, err := strconv.ParseFloat(field(record, cols, "longitude"), 64); err == nil {
		p.Longitude = &lon
	}
	p.Country, p.State = splitLocation(p.LocationDesc)
	return p, true
}

// splitLocation turns "US-CO" (or "US-CO,US-WY") into country and state
// from the first entry.
func splitLocation(desc string) (country, state string) {
	first, _, _ := strings.Cut(desc, ",")
	country, state, _ = strings.Cut(strings.TrimSpace(first), "-")
	return country, state
}
