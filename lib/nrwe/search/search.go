// Package search drives the NRWE court database's search form in a
// headless browser and records every result link.
//
// The search ui has no stable api: date range and court criteria go into
// a form, results come back as paginated anchor lists. The scraper
// walks the range month by month so interrupted runs can resume, and
// retries failed months with exponential backoff.
package search

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"nrwe-scraper/lib/casestore"
	"nrwe-scraper/lib/htmlutil"
	"nrwe-scraper/lib/textutil"

	"github.com/PuerkitoBio/goquery"
	"github.com/cenkalti/backoff/v4"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/stealth"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("nrwe/search")

// scrapeAttempts bounds how often one month window is retried before it
// is given up for this run.
const scrapeAttempts = 5

type Options struct {
	// BaseUrl is the entry page of the search ui.
	BaseUrl string
	// Bin overrides the chrome binary. Empty uses the launcher default.
	Bin string
	// RemoteUrl connects to an external chrome over websocket instead of
	// launching one.
	RemoteUrl string
	Headful   bool
	// PageDelay is the pause between result page clicks.
	PageDelay time.Duration
	// WaitTimeout bounds every wait for an element to appear.
	WaitTimeout time.Duration
}

func (o *Options) defaults() {
	if o.PageDelay <= 0 {
		o.PageDelay = time.Second
	}
	if o.WaitTimeout <= 0 {
		o.WaitTimeout = time.Minute
	}
}

type Scraper struct {
	opts    Options
	store   casestore.Store
	browser *rod.Browser
	lnch    *launcher.Launcher
}

// NewScraper launches (or connects to) a browser. Call Close when done.
func NewScraper(store casestore.Store, opts Options) (*Scraper, error) {
	opts.defaults()

	s := &Scraper{opts: opts, store: store}

	wsUrl := opts.RemoteUrl
	if wsUrl == "" {
		l := launcher.New().
			Headless(!opts.Headful).
			Set("disable-blink-features", "AutomationControlled")
		if opts.Bin != "" {
			l = l.Bin(opts.Bin)
		}
		u, err := l.Launch()
		if err != nil {
			return nil, fmt.Errorf("launch browser: %w", err)
		}
		s.lnch = l
		wsUrl = u
	}

	browser := rod.New().ControlURL(wsUrl)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("connect browser: %w", err)
	}
	s.browser = browser
	return s, nil
}

func (s *Scraper) Close() error {
	var err error
	if s.browser != nil {
		err = s.browser.Close()
	}
	if s.lnch != nil {
		s.lnch.Cleanup()
	}
	return err
}

// Run scrapes every month window in [from, to]. Windows already marked
// complete in the store are skipped; a window that keeps failing is
// logged and the run moves on. onRange, if set, is called once per
// window.
func (s *Scraper) Run(ctx context.Context, from, to time.Time, onRange func(r DateRange, err error)) error {
	for _, r := range MonthRanges(from, to) {
		has, err := s.store.HasRange(ctx, r.From, r.To)
		if err != nil {
			return err
		}
		if !has {
			op := func() error {
				return s.scrapeRange(ctx, r)
			}
			err = backoff.Retry(op, backoff.WithContext(
				backoff.WithMaxRetries(backoff.NewExponentialBackOff(), scrapeAttempts-1),
				ctx,
			))
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				slog.ErrorContext(ctx, "failed to scrape range",
					"from", r.From.Format("2006-01-02"),
					"to", r.To.Format("2006-01-02"),
					"err", err)
				if onRange != nil {
					onRange(r, err)
				}
				continue
			}
			err = s.store.NoteRange(ctx, r.From, r.To)
			if err != nil {
				return err
			}
		}
		if onRange != nil {
			onRange(r, nil)
		}
	}
	return nil
}

// element waits for a selector to appear, bounded by the configured
// wait timeout.
func (s *Scraper) element(page *rod.Page, selector string) (*rod.Element, error) {
	el, err := page.Timeout(s.opts.WaitTimeout).Element(selector)
	if err != nil {
		return nil, fmt.Errorf("wait for %q: %w", selector, err)
	}
	return el.CancelTimeout(), nil
}

func (s *Scraper) scrapeRange(ctx context.Context, r DateRange) error {
	ctx, span := tracer.Start(ctx, "scrapeRange")
	defer span.End()

	page, err := stealth.Page(s.browser)
	if err != nil {
		return fmt.Errorf("open page: %w", err)
	}
	defer page.Close()
	page = page.Context(ctx)

	if err := page.Navigate(s.opts.BaseUrl); err != nil {
		return fmt.Errorf("navigate %s: %w", s.opts.BaseUrl, err)
	}
	if err := page.WaitLoad(); err != nil {
		return err
	}

	// the entry page forwards to the search form
	form, err := s.element(page, "#otherForm2")
	if err != nil {
		return err
	}
	if _, err := form.Eval(`() => this.submit()`); err != nil {
		return fmt.Errorf("submit entry form: %w", err)
	}

	dropdowns := []struct {
		id    string
		value string
	}{
		{id: "#gerichtstyp", value: "Oberlandesgericht"},
		{id: "#gerichtsbarkeit", value: "Ordentliche Gerichtsbarkeit"},
		{id: "#entscheidungsart", value: "Urteil"},
	}
	for _, d := range dropdowns {
		el, err := s.element(page, d.id)
		if err != nil {
			return err
		}
		if err := el.Select([]string{d.value}, true, rod.SelectorTypeText); err != nil {
			return fmt.Errorf("select %q on %s: %w", d.value, d.id, err)
		}
	}

	dateFields := []struct {
		id    string
		value string
	}{
		{id: "#von", value: r.From.Format("02.01.2006")},
		{id: "#bis", value: r.To.Format("02.01.2006")},
	}
	for _, d := range dateFields {
		el, err := s.element(page, d.id)
		if err != nil {
			return err
		}
		if err := el.SelectAllText(); err != nil {
			return err
		}
		if err := el.Input(d.value); err != nil {
			return fmt.Errorf("fill %s: %w", d.id, err)
		}
	}

	submit, err := s.element(page, "#absenden")
	if err != nil {
		return err
	}
	if _, err := submit.Eval(`() => this.click()`); err != nil {
		return fmt.Errorf("submit search: %w", err)
	}

	pageNum := 1
	for {
		results, err := s.element(page, ".alleErgebnisse")
		if err != nil {
			return err
		}
		html, err := results.HTML()
		if err != nil {
			return err
		}
		count, err := s.harvest(ctx, page, html, pageNum)
		if err != nil {
			span.SetStatus(codes.Error, "harvest failed")
			return err
		}
		slog.DebugContext(ctx, "harvested result page",
			"page", pageNum, "links", count,
			"from", r.From.Format("2006-01-02"),
			"to", r.To.Format("2006-01-02"))

		has, nextButton, err := page.Has(fmt.Sprintf(`[name="page%d"]`, pageNum+1))
		if err != nil {
			return err
		}
		if !has {
			// no more pages
			break
		}

		time.Sleep(s.opts.PageDelay)
		if _, err := nextButton.Eval(`() => this.click()`); err != nil {
			return fmt.Errorf("click next page: %w", err)
		}
		if err := page.WaitLoad(); err != nil {
			return err
		}
		pageNum++
	}

	return nil
}

// harvest stores every anchor on one result page, resolving relative
// hrefs against the page url.
func (s *Scraper) harvest(ctx context.Context, page *rod.Page, html string, pageNum int) (int, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return 0, err
	}
	info, err := page.Info()
	if err != nil {
		return 0, err
	}
	base, err := url.Parse(info.URL)
	if err != nil {
		return 0, err
	}

	now := time.Now().UTC()
	anchors := htmlutil.GetAnchors(doc.Find("a"))
	for _, a := range anchors {
		if a.Href == "" {
			return 0, fmt.Errorf("link element has no href attribute: %q", textutil.CollapseSpace(a.Name))
		}
		ref, err := url.Parse(a.Href)
		if err != nil {
			return 0, fmt.Errorf("parse href %q: %w", a.Href, err)
		}
		err = s.store.NoteLink(ctx, casestore.Link{
			Href:      base.ResolveReference(ref).String(),
			Text:      textutil.CollapseSpace(a.Name),
			Page:      int64(pageNum),
			ScrapedAt: now,
		})
		if err != nil {
			return 0, err
		}
	}
	return len(anchors), nil
}
