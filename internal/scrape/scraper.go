// Package scrape turns the venue's public listings page into raw
// screening rows. The page is JavaScript-rendered, so fetching goes
// through headless Chromium; extraction is plain DOM selection over the
// rendered HTML.
package scrape

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/chromedp"
	"github.com/rs/zerolog"

	"github.com/reelsync/reelsync/internal/schedule"
)

// Scraper fetches raw screening listings from a listings page URL.
type Scraper interface {
	FetchListings(ctx context.Context, pageURL string) ([]schedule.RawListing, error)
}

// Selectors locates listing data in the rendered page.
type Selectors struct {
	// Ready is waited on before the DOM is read, letting the page signal
	// that client-side rendering finished.
	Ready string
	// Row matches one screening row.
	Row string
	// Title, Date, Time and Link are evaluated within each row. Date and
	// Time read the data-date / data-time attributes when present and
	// fall back to element text.
	Title string
	Date  string
	Time  string
	Link  string
}

// DefaultSelectors matches the venue's current listings markup.
func DefaultSelectors() Selectors {
	return Selectors{
		Ready: ".screening-list",
		Row:   ".screening-list .screening",
		Title: ".screening-title",
		Date:  ".screening-date",
		Time:  ".screening-time",
		Link:  "a.screening-link",
	}
}

// ChromeScraper fetches the listings page with headless Chromium through
// the navigator's retry policy.
type ChromeScraper struct {
	nav       *Navigator
	selectors Selectors
	logger    zerolog.Logger
}

// NewChromeScraper creates a scraper using the given navigator.
func NewChromeScraper(nav *Navigator, selectors Selectors, logger zerolog.Logger) *ChromeScraper {
	return &ChromeScraper{
		nav:       nav,
		selectors: selectors,
		logger:    logger.With().Str("component", "scraper").Logger(),
	}
}

// FetchListings navigates to the listings page, waits for it to render,
// and extracts screening rows. Timeout exhaustion is reported as an
// error here: the listings page is the run's source of truth and a run
// must not proceed without it.
func (s *ChromeScraper) FetchListings(ctx context.Context, pageURL string) ([]schedule.RawListing, error) {
	var html string

	ok, err := s.nav.Navigate(ctx, pageURL, func(attemptCtx context.Context) error {
		browserCtx, cancel := chromedp.NewContext(attemptCtx)
		defer cancel()

		return chromedp.Run(browserCtx,
			chromedp.Navigate(pageURL),
			chromedp.WaitVisible(s.selectors.Ready, chromedp.ByQuery),
			chromedp.OuterHTML("html", &html, chromedp.ByQuery),
		)
	})
	if err != nil {
		return nil, fmt.Errorf("fetch listings: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("fetch listings: %s unreachable, retries exhausted", pageURL)
	}

	listings, err := s.parseListings(html, pageURL)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Int("listings", len(listings)).Str("url", pageURL).Msg("listings page scraped")
	return listings, nil
}

// parseListings extracts screening rows from rendered HTML. Row-level
// problems are left for the merger to report; this stage only reads what
// the DOM offers.
func (s *ChromeScraper) parseListings(html, pageURL string) ([]schedule.RawListing, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse listings: %w", err)
	}

	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("parse listings: bad page URL %q: %w", pageURL, err)
	}

	var listings []schedule.RawListing
	doc.Find(s.selectors.Row).Each(func(_ int, row *goquery.Selection) {
		listings = append(listings, schedule.RawListing{
			Title: strings.TrimSpace(row.Find(s.selectors.Title).First().Text()),
			Date:  fieldValue(row, s.selectors.Date, "data-date"),
			Time:  fieldValue(row, s.selectors.Time, "data-time"),
			URL:   resolveLink(base, row, s.selectors.Link),
		})
	})

	return listings, nil
}

// fieldValue prefers a data attribute over visible text, since display
// text on the page is formatted for humans.
func fieldValue(row *goquery.Selection, selector, attr string) string {
	el := row.Find(selector).First()
	if v, ok := el.Attr(attr); ok {
		return strings.TrimSpace(v)
	}
	return strings.TrimSpace(el.Text())
}

func resolveLink(base *url.URL, row *goquery.Selection, selector string) string {
	href, ok := row.Find(selector).First().Attr("href")
	if !ok {
		return ""
	}
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return ""
	}
	return base.ResolveReference(ref).String()
}
