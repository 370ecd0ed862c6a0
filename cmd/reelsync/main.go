package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/reelsync/reelsync/internal/config"
	"github.com/reelsync/reelsync/internal/gcal"
	"github.com/reelsync/reelsync/internal/logger"
	"github.com/reelsync/reelsync/internal/rowstore"
	"github.com/reelsync/reelsync/internal/schedule"
	"github.com/reelsync/reelsync/internal/scheduler"
	"github.com/reelsync/reelsync/internal/scheduler/tasks"
	"github.com/reelsync/reelsync/internal/scrape"
)

func main() {
	configPath := flag.String("config", "", "Path to config file")
	once := flag.Bool("once", false, "Run a single sync and exit")
	dryRun := flag.Bool("dry-run", false, "Compute the event set but do not touch the calendar")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println("reelsync", config.Version)
		return
	}

	// .env is optional; real deployments use the config file or env vars.
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load config:", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		Path:       cfg.Logging.Path,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAgeDays: cfg.Logging.MaxAgeDays,
		Compress:   cfg.Logging.Compress,
	})
	defer log.Close()

	log.Info().
		Str("version", config.Version).
		Str("listingsURL", cfg.Venue.ListingsURL).
		Str("calendar", cfg.Calendar.ID).
		Bool("dryRun", *dryRun).
		Msg("reelsync starting")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	service, err := buildService(ctx, cfg, *dryRun, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize")
	}

	if *once {
		if err := service.Run(ctx); err != nil {
			log.Error().Err(err).Msg("sync run failed")
			os.Exit(1)
		}
		return
	}

	sched, err := scheduler.New(log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create scheduler")
	}
	if err := tasks.RegisterSyncTask(sched, service, &cfg.Sync); err != nil {
		log.Fatal().Err(err).Msg("failed to register sync task")
	}
	if err := sched.Start(); err != nil {
		log.Fatal().Err(err).Msg("failed to start scheduler")
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	log.Info().Str("signal", sig.String()).Msg("shutting down")

	if err := sched.Stop(); err != nil {
		log.Error().Err(err).Msg("scheduler shutdown failed")
	}
}

// buildService wires the pipeline from configuration.
func buildService(ctx context.Context, cfg *config.Config, dryRun bool, log *logger.Logger) (*schedule.Service, error) {
	loc, err := time.LoadLocation(cfg.Venue.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load venue timezone %q: %w", cfg.Venue.Timezone, err)
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	nav := scrape.NewNavigator(cfg.Scrape.MaxRetries, cfg.Scrape.NavTimeout(), log.Logger)
	scraper := scrape.NewChromeScraper(nav, scrape.DefaultSelectors(), log.Logger)

	var discoverer schedule.RuntimeSource
	if cfg.Scrape.DiscoverRuntimes {
		httpClient := &http.Client{Timeout: cfg.Scrape.NavTimeout()}
		discoverer = scrape.NewRuntimeDiscoverer(nav, httpClient, store, scrape.RuntimeDiscovererConfig{
			Table:           cfg.SideTables.RuntimeTable,
			DetailSelector:  cfg.Scrape.DetailSelector,
			ReplaceExisting: cfg.Scrape.ReplaceRuntimeTable,
		}, log.Logger)
	}

	client, err := gcal.NewClient(ctx, cfg.Calendar.ID, cfg.Calendar.CredentialsFile)
	if err != nil {
		return nil, err
	}
	reconciler := gcal.NewReconciler(client, cfg.Venue.Timezone, dryRun, log.Logger)

	exclusions := schedule.NewExclusions(cfg.Venue.ExcludedTitles)
	merger := schedule.NewMerger(loc, cfg.Venue.Location, exclusions, log.Logger)

	return schedule.NewService(schedule.Config{
		ListingsURL:  cfg.Venue.ListingsURL,
		SeriesTable:  cfg.SideTables.SeriesTable,
		RuntimeTable: cfg.SideTables.RuntimeTable,
	}, scraper, discoverer, store, merger, reconciler, loc, log.Logger), nil
}

func buildStore(ctx context.Context, cfg *config.Config) (rowstore.RowStore, error) {
	switch cfg.SideTables.Backend {
	case "sheets":
		return rowstore.NewSheetsStore(ctx, cfg.SideTables.SpreadsheetID, cfg.Calendar.CredentialsFile)
	default:
		return rowstore.NewCSVStore(cfg.SideTables.CSVDir)
	}
}
