package crawler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"laptopprj/internal/model"
)

type fakeFetcher struct {
	pages map[string]string
	fails map[string]error
	calls []string
}

func (f *fakeFetcher) Fetch(_ context.Context, url string) (string, error) {
	f.calls = append(f.calls, url)
	if err, ok := f.fails[url]; ok {
		return "", err
	}
	return f.pages[url], nil
}

func testProfile() Profile {
	p := DefaultProfiles()[model.SourceAmazon]
	p.URL = "https://shop.test/s?page=%d"
	return p
}

func TestRunSkipsFailedPages(t *testing.T) {
	p := testProfile()
	f := &fakeFetcher{
		pages: map[string]string{
			p.PageURL(1): amazonPage,
			p.PageURL(3): amazonPage,
		},
		fails: map[string]error{
			p.PageURL(2): fmt.Errorf("%w: 503", ErrUnexpectedStatus),
		},
	}

	var slept []time.Duration
	c := &Crawler{
		Fetcher: f,
		Profile: p,
		Delay:   2 * time.Second,
		sleep:   func(_ context.Context, d time.Duration) { slept = append(slept, d) },
	}

	var pagesSeen []int
	total := 0
	stats, err := c.Run(context.Background(), 3, func(page int, records []model.SourceRecord) {
		pagesSeen = append(pagesSeen, page)
		total += len(records)
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(f.calls) != 3 {
		t.Errorf("fetch calls = %d, want 3", len(f.calls))
	}
	if stats.PagesOK != 2 || stats.PagesFailed != 1 {
		t.Errorf("stats = %+v", stats)
	}
	if fmt.Sprint(pagesSeen) != "[1 3]" {
		t.Errorf("handler pages = %v", pagesSeen)
	}
	if total != 6 || stats.Records != 6 || stats.Dropped != 2 {
		t.Errorf("records = %d, stats = %+v", total, stats)
	}
	if len(slept) != 2 || slept[0] != 2*time.Second {
		t.Errorf("sleeps = %v, want two flat 2s pauses", slept)
	}
}

func TestRunStopsOnCancelledContext(t *testing.T) {
	p := testProfile()
	f := &fakeFetcher{pages: map[string]string{}}
	c := &Crawler{Fetcher: f, Profile: p, sleep: func(context.Context, time.Duration) {}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	stats, err := c.Run(ctx, 5, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(f.calls) != 0 || stats.PagesOK != 0 {
		t.Errorf("expected no fetches after cancel, got %d calls", len(f.calls))
	}
}

func TestRunDumpsFirstPage(t *testing.T) {
	dir := t.TempDir()
	p := testProfile()
	f := &fakeFetcher{pages: map[string]string{p.PageURL(1): amazonPage, p.PageURL(2): "<html></html>"}}
	c := &Crawler{Fetcher: f, Profile: p, DumpDir: dir, sleep: func(context.Context, time.Duration) {}}

	if _, err := c.Run(context.Background(), 2, nil); err != nil {
		t.Fatal(err)
	}

	b, err := os.ReadFile(filepath.Join(dir, "debug_amazon.html"))
	if err != nil {
		t.Fatalf("dump not written: %v", err)
	}
	if string(b) != amazonPage {
		t.Error("dump should contain page 1 HTML")
	}
}

func TestRunRejectsBadProfile(t *testing.T) {
	p := testProfile()
	p.Price = []RuleSpec{{Type: "xpath", Selector: "//span"}}
	c := &Crawler{Fetcher: &fakeFetcher{}, Profile: p}

	if _, err := c.Run(context.Background(), 1, nil); !errors.Is(err, ErrUnknownRule) {
		t.Errorf("err = %v, want ErrUnknownRule", err)
	}
}

func TestHTTPFetcher(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") != "test-agent" {
			t.Errorf("User-Agent = %q", r.Header.Get("User-Agent"))
		}
		if strings.Contains(r.URL.RawQuery, "page=2") {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, "<html>ok</html>")
	}))
	defer srv.Close()

	f := NewHTTPFetcher(5*time.Second, "test-agent")

	body, err := f.Fetch(context.Background(), srv.URL+"/s?page=1")
	if err != nil || body != "<html>ok</html>" {
		t.Errorf("page 1 = %q, %v", body, err)
	}

	if _, err := f.Fetch(context.Background(), srv.URL+"/s?page=2"); !errors.Is(err, ErrUnexpectedStatus) {
		t.Errorf("page 2 err = %v, want ErrUnexpectedStatus", err)
	}
}
