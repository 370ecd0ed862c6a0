// Package schedule implements the reconciliation engine: it normalizes
// scraped screening rows, enriches them from the series and runtime
// side-tables, collapses duplicates, drops past screenings, and hands the
// survivors to the calendar reconciler.
package schedule

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/reelsync/reelsync/internal/rowstore"
)

// ListingSource supplies raw screening rows, normally the headless
// scraper. It must return an error (not an empty slice) when the
// listings page is unreachable, since a run must never reconcile against
// absent source data.
type ListingSource interface {
	FetchListings(ctx context.Context, pageURL string) ([]RawListing, error)
}

// RuntimeSource fills gaps in the runtime index before the merge, e.g.
// by scraping detail pages. It returns the merged index.
type RuntimeSource interface {
	Discover(ctx context.Context, listings []RawListing, runtimes map[string]string) (map[string]string, error)
}

// Reconciler replaces the future-dated portion of the calendar with the
// kept events. The error is reserved for run-aborting failures (the
// snapshot listing); per-item failures are folded into the counts.
type Reconciler interface {
	Reconcile(ctx context.Context, kept []Event, now time.Time) (created, failed int, err error)
}

// RunStatus holds the result of the last sync run.
type RunStatus struct {
	RunID     string    `json:"runId,omitempty"`
	Running   bool      `json:"running"`
	LastRun   time.Time `json:"lastRun,omitempty"`
	Processed int       `json:"processed"`
	Unique    int       `json:"unique"`
	Kept      int       `json:"kept"`
	Created   int       `json:"created"`
	Failed    int       `json:"failed"`
	ElapsedMs int       `json:"elapsed"`
	Error     string    `json:"error,omitempty"`
}

// Config carries the run parameters the service needs.
type Config struct {
	ListingsURL  string
	SeriesTable  string
	RuntimeTable string
}

// Service orchestrates one full sync run: fetch, index, merge, dedupe,
// horizon filter, reconcile. Runs are single-flight within the process;
// guarding against concurrent runs across processes stays with the
// operator, as the delete-then-insert protocol is not safe under
// interleaving.
type Service struct {
	cfg        Config
	source     ListingSource
	runtimes   RuntimeSource // nil disables discovery
	store      rowstore.RowStore
	merger     *Merger
	reconciler Reconciler
	loc        *time.Location
	logger     zerolog.Logger

	running atomic.Bool
	mu      sync.RWMutex
	status  RunStatus
}

// NewService wires the pipeline together.
func NewService(cfg Config, source ListingSource, runtimes RuntimeSource, store rowstore.RowStore, merger *Merger, reconciler Reconciler, loc *time.Location, logger zerolog.Logger) *Service {
	return &Service{
		cfg:        cfg,
		source:     source,
		runtimes:   runtimes,
		store:      store,
		merger:     merger,
		reconciler: reconciler,
		loc:        loc,
		logger:     logger.With().Str("component", "sync").Logger(),
	}
}

// IsRunning returns whether a sync run is currently executing.
func (s *Service) IsRunning() bool {
	return s.running.Load()
}

// LastStatus returns the last run's status.
func (s *Service) LastStatus() RunStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := s.status
	st.Running = s.running.Load()
	return st
}

// Run executes a full sync cycle. The reconciliation instant is captured
// once at the top so the horizon cutoff and the calendar snapshot agree
// across the whole batch.
func (s *Service) Run(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		s.logger.Warn().Msg("sync already running, trigger ignored")
		return nil
	}
	defer s.running.Store(false)

	runID := uuid.NewString()[:8]
	logger := s.logger.With().Str("run", runID).Logger()
	start := time.Now()
	now := start.In(s.loc)

	logger.Info().Str("url", s.cfg.ListingsURL).Msg("sync starting")

	// 1. Fetch listings. A hard failure here aborts the run: replacing
	// the calendar based on an empty scrape would wipe every screening.
	listings, err := s.source.FetchListings(ctx, s.cfg.ListingsURL)
	if err != nil {
		logger.Error().Err(err).Msg("failed to fetch listings")
		return s.failRun(runID, start, fmt.Errorf("fetch listings: %w", err))
	}
	if len(listings) == 0 {
		logger.Error().Msg("listings page yielded no rows, refusing to reconcile")
		return s.failRun(runID, start, fmt.Errorf("listings page yielded no rows"))
	}

	// 2. Read and index the side-tables.
	seriesByTitle, seriesNames, runtimes, err := s.loadSideTables(ctx, logger)
	if err != nil {
		logger.Error().Err(err).Msg("failed to load side-tables")
		return s.failRun(runID, start, err)
	}

	// 3. Optional runtime discovery for titles the side-table misses.
	if s.runtimes != nil {
		runtimes, err = s.runtimes.Discover(ctx, listings, runtimes)
		if err != nil {
			// Discovery is enrichment, not source data. Keep going with
			// whatever the index already holds.
			logger.Warn().Err(err).Msg("runtime discovery failed, continuing with known runtimes")
		}
	}

	// 4. Merge, dedupe, horizon filter.
	candidates := s.merger.Merge(listings, seriesByTitle, seriesNames, runtimes, now)
	unique := Dedupe(candidates, logger)
	kept := FilterUpcoming(unique, now, s.loc)

	logger.Info().
		Int("processed", len(listings)).
		Int("candidates", len(candidates)).
		Int("unique", len(unique)).
		Int("kept", len(kept)).
		Msg("event set computed")

	// 5. Reconcile the calendar.
	created, failed, err := s.reconciler.Reconcile(ctx, kept, now)
	if err != nil {
		logger.Error().Err(err).Msg("reconciliation aborted")
		return s.failRun(runID, start, err)
	}

	status := RunStatus{
		RunID:     runID,
		LastRun:   start,
		Processed: len(listings),
		Unique:    len(unique),
		Kept:      len(kept),
		Created:   created,
		Failed:    failed,
		ElapsedMs: int(time.Since(start).Milliseconds()),
	}
	s.setStatus(status)

	// The summary line is always emitted, partial failure included, so an
	// operator can judge whether the run needs follow-up.
	logger.Info().
		Int("processed", status.Processed).
		Int("kept", status.Kept).
		Int("created", status.Created).
		Int("failed", status.Failed).
		Int("elapsedMs", status.ElapsedMs).
		Msg("sync complete")

	if failed > 0 {
		return fmt.Errorf("sync finished with %d failed calendar inserts", failed)
	}
	return nil
}

// loadSideTables reads both side-tables and builds the run's read-only
// indexes. Either table being unreadable aborts the run.
func (s *Service) loadSideTables(ctx context.Context, logger zerolog.Logger) (seriesByTitle, seriesNames, runtimes map[string]string, err error) {
	seriesRaw, err := s.store.ReadRows(ctx, s.cfg.SeriesTable)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("read series side-table: %w", err)
	}
	seriesRows, err := ParseSeriesRows(seriesRaw)
	if err != nil {
		return nil, nil, nil, err
	}

	runtimeRaw, err := s.store.ReadRows(ctx, s.cfg.RuntimeTable)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("read runtime side-table: %w", err)
	}
	runtimeRows, err := ParseRuntimeRows(runtimeRaw)
	if err != nil {
		return nil, nil, nil, err
	}

	seriesByTitle = BuildSeriesByTitleIndex(seriesRows, logger)
	seriesNames = BuildSeriesNameIndex(seriesRows, logger)
	runtimes = BuildRuntimeIndex(runtimeRows, logger)
	return seriesByTitle, seriesNames, runtimes, nil
}

func (s *Service) failRun(runID string, start time.Time, err error) error {
	s.setStatus(RunStatus{
		RunID:     runID,
		LastRun:   start,
		ElapsedMs: int(time.Since(start).Milliseconds()),
		Error:     err.Error(),
	})
	return err
}

func (s *Service) setStatus(status RunStatus) {
	s.mu.Lock()
	s.status = status
	s.mu.Unlock()
}
