package scrape

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"

	"github.com/reelsync/reelsync/internal/rowstore"
	"github.com/reelsync/reelsync/internal/schedule"
)

// detailRuntimePattern finds a runtime mention anywhere in a detail
// page's film-info block.
var detailRuntimePattern = regexp.MustCompile(`(?i)(\d+)\s*minutes`)

// RuntimeDiscoverer fills gaps in the runtime side-table by fetching each
// unknown title's detail page and looking for a "<N> minutes" mention.
type RuntimeDiscoverer struct {
	nav             *Navigator
	client          *http.Client
	store           rowstore.RowStore
	table           string
	detailSelector  string
	replaceExisting bool
	logger          zerolog.Logger
}

// RuntimeDiscovererConfig configures discovery.
type RuntimeDiscovererConfig struct {
	Table           string // side-table name, e.g. "runtimes"
	DetailSelector  string // element holding film info on detail pages
	ReplaceExisting bool   // rewrite the whole table instead of appending
}

// NewRuntimeDiscoverer creates a discoverer writing through store.
func NewRuntimeDiscoverer(nav *Navigator, client *http.Client, store rowstore.RowStore, cfg RuntimeDiscovererConfig, logger zerolog.Logger) *RuntimeDiscoverer {
	if client == nil {
		client = http.DefaultClient
	}
	if cfg.DetailSelector == "" {
		cfg.DetailSelector = ".film-details"
	}
	return &RuntimeDiscoverer{
		nav:             nav,
		client:          client,
		store:           store,
		table:           cfg.Table,
		detailSelector:  cfg.DetailSelector,
		replaceExisting: cfg.ReplaceExisting,
		logger:          logger.With().Str("component", "runtimes").Logger(),
	}
}

// Discover fetches detail pages for listed titles missing from the
// runtime index, persists anything found, and returns the merged index.
// A title whose page times out after retries is skipped for this run; a
// page that loads but mentions no runtime is remembered as nothing at
// all, so it will be retried next run.
func (d *RuntimeDiscoverer) Discover(ctx context.Context, listings []schedule.RawListing, runtimes map[string]string) (map[string]string, error) {
	merged := make(map[string]string, len(runtimes))
	for k, v := range runtimes {
		merged[k] = v
	}

	discovered := make(map[string]string)
	seen := make(map[string]struct{})

	for _, l := range listings {
		title := strings.TrimSpace(l.Title)
		if title == "" || l.URL == "" {
			continue
		}
		if _, ok := merged[l.Title]; ok {
			continue
		}
		if _, ok := merged[title]; ok {
			continue
		}
		if _, ok := seen[title]; ok {
			continue
		}
		seen[title] = struct{}{}

		runtime, err := d.fetchRuntime(ctx, l.URL)
		if err != nil {
			d.logger.Warn().Err(err).Str("title", title).Str("url", l.URL).Msg("detail page fetch failed, skipping title")
			continue
		}
		if runtime == "" {
			d.logger.Debug().Str("title", title).Msg("detail page lists no runtime")
			continue
		}

		d.logger.Info().Str("title", title).Str("runtime", runtime).Msg("runtime discovered")
		discovered[title] = runtime
		merged[title] = runtime
	}

	if err := d.persist(ctx, discovered, merged); err != nil {
		return merged, err
	}
	return merged, nil
}

// fetchRuntime loads one detail page through the retry policy. Exhausted
// timeouts surface as a per-title error, not a run failure.
func (d *RuntimeDiscoverer) fetchRuntime(ctx context.Context, pageURL string) (string, error) {
	var runtime string

	ok, err := d.nav.Navigate(ctx, pageURL, func(attemptCtx context.Context) error {
		req, err := http.NewRequestWithContext(attemptCtx, http.MethodGet, pageURL, nil)
		if err != nil {
			return err
		}
		resp, err := d.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("detail page returned %s", resp.Status)
		}

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		runtime = extractRuntime(string(body), d.detailSelector)
		return nil
	})
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("timed out after retries")
	}
	return runtime, nil
}

// extractRuntime pulls the first "<N> minutes" mention out of the detail
// block, canonicalized to "N minutes".
func extractRuntime(html, selector string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	text := doc.Find(selector).Text()
	if text == "" {
		text = doc.Find("body").Text()
	}
	if m := detailRuntimePattern.FindStringSubmatch(text); m != nil {
		return m[1] + " minutes"
	}
	return ""
}

// persist writes discoveries back to the side-table. In append mode only
// new rows are added after the existing ones; in replace mode the table
// is rewritten from the merged index, sorted by title.
func (d *RuntimeDiscoverer) persist(ctx context.Context, discovered, merged map[string]string) error {
	if d.replaceExisting {
		rows := [][]string{{schedule.ColTitle, schedule.ColRuntime}}
		titles := make([]string, 0, len(merged))
		for t := range merged {
			titles = append(titles, t)
		}
		sort.Strings(titles)
		for _, t := range titles {
			rows = append(rows, []string{t, merged[t]})
		}
		return d.store.WriteRows(ctx, d.table, rows)
	}

	if len(discovered) == 0 {
		return nil
	}

	existing, err := d.store.ReadRows(ctx, d.table)
	if err != nil {
		return fmt.Errorf("read runtime side-table before append: %w", err)
	}
	if len(existing) == 0 {
		existing = [][]string{{schedule.ColTitle, schedule.ColRuntime}}
	}

	titles := make([]string, 0, len(discovered))
	for t := range discovered {
		titles = append(titles, t)
	}
	sort.Strings(titles)
	for _, t := range titles {
		existing = append(existing, []string{t, discovered[t]})
	}
	return d.store.WriteRows(ctx, d.table, existing)
}
