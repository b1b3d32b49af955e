package crawler

import (
	"context"
	"errors"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"laptopprj/internal/model"
	"laptopprj/internal/observability"
)

// PageHandler receives the records of one page as soon as it is extracted.
type PageHandler func(page int, records []model.SourceRecord)

// Crawler walks the search pages of one source sequentially.
type Crawler struct {
	Fetcher Fetcher
	Profile Profile
	// Delay is a flat pause between two requests.
	Delay time.Duration
	// DumpDir, when set, receives the HTML of page 1 as debug_<source>.html.
	DumpDir string

	sleep func(context.Context, time.Duration)
}

// RunStats summarizes a crawl.
type RunStats struct {
	PagesOK     int
	PagesFailed int
	Cards       int
	Records     int
	Dropped     int
}

// Run fetches pages 1..pages. A failing page is logged and skipped; the loop
// only stops early when ctx is cancelled, so the caller always gets whatever
// was collected.
func (c *Crawler) Run(ctx context.Context, pages int, handler PageHandler) (RunStats, error) {
	var stats RunStats

	extractor, err := NewExtractor(c.Profile)
	if err != nil {
		return stats, err
	}
	sleep := c.sleep
	if sleep == nil {
		sleep = sleepCtx
	}
	source := string(c.Profile.Source)

	for page := 1; page <= pages; page++ {
		if ctx.Err() != nil {
			log.Printf("[crawler] %s interrompido na página %d", source, page)
			break
		}
		if page > 1 {
			sleep(ctx, c.Delay)
		}

		url := c.Profile.PageURL(page)
		log.Printf("[crawler] %s página %d: %s", source, page, url)

		html, err := c.Fetcher.Fetch(ctx, url)
		if err != nil {
			stats.PagesFailed++
			status := "error"
			if errors.Is(err, ErrUnexpectedStatus) {
				status = "bad_status"
			}
			observability.PagesFetched.WithLabelValues(source, status).Inc()
			log.Printf("[crawler] Erro na página %d de %s: %v", page, source, err)
			continue
		}
		observability.PagesFetched.WithLabelValues(source, "ok").Inc()

		if page == 1 && c.DumpDir != "" {
			c.dump(html)
		}

		doc, err := ParseDocument(html)
		if err != nil {
			stats.PagesFailed++
			log.Printf("[crawler] Erro ao interpretar página %d de %s: %v", page, source, err)
			continue
		}

		records, ps := extractor.ExtractDocument(doc, url, page)
		stats.PagesOK++
		stats.Cards += ps.Cards
		stats.Records += ps.Kept
		stats.Dropped += ps.Dropped
		log.Printf("[crawler] %s página %d: %d itens", source, page, ps.Kept)

		if handler != nil {
			handler(page, records)
		}
	}

	return stats, nil
}

func (c *Crawler) dump(html string) {
	name := "debug_" + strings.ToLower(string(c.Profile.Source)) + ".html"
	path := filepath.Join(c.DumpDir, name)
	if err := os.MkdirAll(c.DumpDir, 0o755); err != nil {
		log.Printf("[crawler] não foi possível criar %s: %v", c.DumpDir, err)
		return
	}
	if err := os.WriteFile(path, []byte(html), 0o644); err != nil {
		log.Printf("[crawler] não foi possível salvar %s: %v", path, err)
	}
}

func sleepCtx(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
