package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/ngmaloney/pota-planner/internal/api"
	"github.com/ngmaloney/pota-planner/internal/config"
	"github.com/ngmaloney/pota-planner/internal/database"
	"github.com/ngmaloney/pota-planner/internal/log"
	"github.com/ngmaloney/pota-planner/internal/parks"
	"github.com/ngmaloney/pota-planner/internal/plans"
	"github.com/ngmaloney/pota-planner/internal/tzlookup"
	"github.com/ngmaloney/pota-planner/internal/ui"
	"github.com/ngmaloney/pota-planner/internal/weather"
)

// app holds the wired components.
type app struct {
	cfg         config.Config
	db          *sql.DB
	logger      *zap.SugaredLogger
	handler     *api.Handler
	importer    *parks.Importer
	parks       *parks.Repository
	provisioner *tzlookup.Provisioner
}

func main() {
	dbPath := flag.String("db", "", "Path to the SQLite database (default data/pota-planner.db)")
	debug := flag.Bool("debug", false, "Enable debug logging")
	importSource := flag.String("import", "", "Import parks from a CSV file or URL, then exit")
	provisionTZ := flag.Bool("provision-tz", false, "Download and load timezone boundaries, then exit")
	tzSource := flag.String("tz-source", "", "Timezone shapefile zip (path or URL) for -provision-tz")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Error loading configuration: %v\n", err)
		os.Exit(1)
	}
	if *dbPath != "" {
		cfg.DatabasePath = *dbPath
	}
	if *debug {
		cfg.LogLevel = "debug"
	}

	logPath := filepath.Join(filepath.Dir(cfg.DatabasePath), "pota-planner.log")
	if err := log.InitFile(logPath, cfg.Debug()); err != nil {
		fmt.Printf("Error initializing logging: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	a, err := newApp(cfg)
	if err != nil {
		log.Errorf("startup failed: %v", err)
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	defer a.db.Close()

	ctx := context.Background()

	if *provisionTZ || *importSource != "" {
		if err := a.runHeadless(ctx, *provisionTZ, *tzSource, *importSource); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	needs, err := a.needsSetup(ctx)
	if err != nil {
		log.Warnf("checking setup state: %v", err)
	}

	model := ui.NewModel(ui.Options{
		Planner:           a.handler,
		Provision:         a.setup,
		NeedsProvisioning: needs,
	})
	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Printf("Error running application: %v\n", err)
		os.Exit(1)
	}
}

// newApp opens the database and wires the handler.
func newApp(cfg config.Config) (*app, error) {
	db, err := database.Open(cfg.DatabasePath)
	if err != nil {
		return nil, err
	}
	logger := log.GetSugaredLogger()

	parkRepo := parks.NewRepository(db)
	resolver := tzlookup.NewShapeResolver(db)
	importer := parks.NewImporter(parkRepo, cfg.ParksURL, logger)
	cache := weather.NewCache(db, weather.NewOpenMeteoClient(cfg.WeatherURL), cfg.WeatherCacheTTL, logger)

	if n, err := cache.PurgeExpired(context.Background()); err != nil {
		logger.Warnf("purging weather cache: %v", err)
	} else if n > 0 {
		logger.Debugf("purged %d expired weather entries", n)
	}

	handler := api.NewHandler(api.Deps{
		Parks:    parks.NewService(parkRepo, resolver, logger),
		Importer: importer,
		Plans:    plans.NewRepository(db, parkRepo),
		Weather:  cache,
		Settings: config.NewSettingsStore(db),
		Logger:   logger,
	})

	return &app{
		cfg:         cfg,
		db:          db,
		logger:      logger,
		handler:     handler,
		importer:    importer,
		parks:       parkRepo,
		provisioner: tzlookup.NewProvisioner(db, filepath.Dir(cfg.DatabasePath), logger),
	}, nil
}

// needsSetup reports whether timezone boundaries or the park list are
// missing.
func (a *app) needsSetup(ctx context.Context) (bool, error) {
	tz, err := tzlookup.NeedsProvisioning(ctx, a.db)
	if err != nil {
		return false, err
	}
	n, err := a.parks.Count(ctx)
	if err != nil {
		return false, err
	}
	return tz || n == 0, nil
}

// setup provisions whatever is missing. It is the UI's first-run job.
func (a *app) setup(ctx context.Context, progress chan<- string) error {
	tz, err := tzlookup.NeedsProvisioning(ctx, a.db)
	if err != nil {
		return err
	}
	if tz {
		if _, err := a.provisioner.Provision(ctx, a.cfg.TZShapefileURL, progress); err != nil {
			// Parks still work without timezones; they show UTC.
			a.logger.Errorf("timezone provisioning failed: %v", err)
			progress <- fmt.Sprintf("Timezone setup failed: %v", err)
		}
	}

	n, err := a.parks.Count(ctx)
	if err != nil {
		return err
	}
	if n == 0 {
		resp := a.handler.ImportParks(ctx, "", progress)
		if !resp.Success {
			return fmt.Errorf("importing parks: %s", resp.Error)
		}
	}
	return nil
}

// runHeadless performs the requested one-shot jobs, printing progress.
func (a *app) runHeadless(ctx context.Context, provisionTZ bool, tzSource, importSource string) error {
	progress := make(chan string)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for msg := range progress {
			fmt.Println(msg)
		}
	}()
	defer func() {
		close(progress)
		<-done
	}()

	if provisionTZ {
		if tzSource == "" {
			tzSource = a.cfg.TZShapefileURL
		}
		if _, err := a.provisioner.Provision(ctx, tzSource, progress); err != nil {
			return fmt.Errorf("provisioning timezones: %w", err)
		}
	}

	if importSource != "" {
		resp := a.handler.ImportParks(ctx, importSource, progress)
		if !resp.Success {
			return fmt.Errorf("importing parks: %s", resp.Error)
		}
	}
	return nil
}
