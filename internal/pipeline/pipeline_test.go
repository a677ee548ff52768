package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/ppiankov/filmwiki/internal/model"
	"github.com/ppiankov/filmwiki/internal/store"
)

type wikiPage struct {
	wikitext  string
	parseTree string
}

var testPages = map[string]wikiPage{
	"Alpha": {
		wikitext: "{{Infobox film\n| director = [[Jane Doe]]\n}}\n==Plot==\nIn 1999 a courier crosses Paris.==Cast==\n[[Category:2018 films]]",
		parseTree: `<root><template><title>Infobox film</title><part><name> director </name><equals>=</equals>` +
			`<value> [[Jane Doe]]</value></part><part><name> runtime </name><equals>=</equals><value>95 minutes</value></part></template></root>`,
	},
	"Beta": {
		wikitext:  "Beta is a short film without an infobox.\n[[Category:Short films]]",
		parseTree: "<root>Beta is a short film without an infobox.</root>",
	},
}

type wikiServer struct {
	*httptest.Server
	listCalls  atomic.Int32
	parseCalls atomic.Int32
}

func newWikiServer(t *testing.T, members []string) *wikiServer {
	t.Helper()
	ws := &wikiServer{}
	ws.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		switch q.Get("action") {
		case "query":
			ws.listCalls.Add(1)
			list := make([]map[string]any, 0, len(members))
			for _, title := range members {
				list = append(list, map[string]any{"ns": 0, "title": title})
			}
			_ = json.NewEncoder(w).Encode(map[string]any{
				"query": map[string]any{"categorymembers": list},
			})
		case "parse":
			ws.parseCalls.Add(1)
			title := q.Get("page")
			page, ok := testPages[title]
			if !ok {
				_, _ = fmt.Fprint(w, `{"error": {"code": "missingtitle", "info": "The page you specified doesn't exist."}}`)
				return
			}
			_ = json.NewEncoder(w).Encode(map[string]any{
				"parse": map[string]any{
					"title":     title,
					"wikitext":  page.wikitext,
					"parsetree": page.parseTree,
				},
			})
		default:
			t.Errorf("unexpected request %s", r.URL.RawQuery)
			w.WriteHeader(http.StatusBadRequest)
		}
	}))
	return ws
}

func testConfig(t *testing.T, apiURL string) *model.Config {
	t.Helper()
	dir := t.TempDir()

	cfg := model.DefaultConfig()
	cfg.Category.Name = "Category:2018 films"
	cfg.Category.APIURL = apiURL
	cfg.Category.ExcludeTrailing = 1
	cfg.HTTP.MaxRetries = 1
	cfg.Cache.Enabled = false
	cfg.Concurrency.Workers = 2
	cfg.RateLimiting.RequestsPerSecond = 0
	cfg.Output.SnapshotPath = filepath.Join(dir, "raw_movies.json")
	cfg.Output.RecordsPath = filepath.Join(dir, "films.json")
	return cfg
}

func newTestPipeline(t *testing.T, cfg *model.Config) (*Pipeline, *bytes.Buffer) {
	t.Helper()
	p, err := NewPipeline(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("NewPipeline: %v", err)
	}
	p.newRunID = func() string { return "run-1" }
	var out bytes.Buffer
	p.SetOutput(&out)
	return p, &out
}

func TestRun(t *testing.T) {
	server := newWikiServer(t, []string{"Alpha", "Missing", "Beta", "Category:2018 short films"})
	defer server.Close()

	cfg := testConfig(t, server.URL)
	p, out := newTestPipeline(t, cfg)

	report, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if report.RunID != "run-1" {
		t.Errorf("expected run id from snapshot, got %q", report.RunID)
	}
	if report.SnapshotSkip {
		t.Error("did not expect snapshot to be skipped on first run")
	}
	if report.Listed != 3 || report.Fetched != 2 || report.Extracted != 2 {
		t.Errorf("unexpected counts listed=%d fetched=%d extracted=%d", report.Listed, report.Fetched, report.Extracted)
	}
	if len(report.FetchErrors) != 1 || report.FetchErrors[0].Title != "Missing" {
		t.Errorf("expected Missing to fail, got %+v", report.FetchErrors)
	}
	if server.parseCalls.Load() != 3 {
		t.Errorf("expected trailing member excluded, got %d parse calls", server.parseCalls.Load())
	}

	records, err := store.ReadRecordsFile(cfg.Output.RecordsPath)
	if err != nil {
		t.Fatalf("ReadRecordsFile: %v", err)
	}
	if len(records) != 2 || records[0].Title != "Alpha" || records[1].Title != "Beta" {
		t.Fatalf("expected records in category order, got %+v", records)
	}

	alpha := records[0]
	if len(alpha.Director) != 1 || alpha.Director[0] != "Jane Doe" {
		t.Errorf("unexpected director %v", alpha.Director)
	}
	if len(alpha.RunningTime) != 1 || alpha.RunningTime[0] != 95 {
		t.Errorf("unexpected running time %v", alpha.RunningTime)
	}
	if alpha.Time != "1999" || alpha.Location != "France" {
		t.Errorf("unexpected plot fields time=%q location=%q", alpha.Time, alpha.Location)
	}

	beta := records[1]
	if beta.Director == nil || len(beta.Director) != 0 {
		t.Errorf("expected empty non-nil director, got %#v", beta.Director)
	}
	if len(beta.Categories) != 1 || beta.Categories[0] != "Short films" {
		t.Errorf("unexpected categories %v", beta.Categories)
	}

	if report.Coverage.Records != 2 {
		t.Errorf("expected coverage over 2 records, got %d", report.Coverage.Records)
	}

	p.RenderSummary(report)
	summary := out.String()
	for _, want := range []string{"run-1", "Missing", "Director", "50.0%"} {
		if !strings.Contains(summary, want) {
			t.Errorf("summary missing %q:\n%s", want, summary)
		}
	}
}

func TestRun_ReusesSnapshot(t *testing.T) {
	server := newWikiServer(t, []string{"Alpha", "Beta", "Category:2018 short films"})
	defer server.Close()

	cfg := testConfig(t, server.URL)
	p, _ := newTestPipeline(t, cfg)

	if _, err := p.Run(context.Background()); err != nil {
		t.Fatalf("first Run: %v", err)
	}
	listCalls, parseCalls := server.listCalls.Load(), server.parseCalls.Load()

	p.newRunID = func() string { return "run-2" }
	report, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if !report.SnapshotSkip {
		t.Error("expected existing snapshot to be reused")
	}
	if report.RunID != "run-1" {
		t.Errorf("expected run id of the reused snapshot, got %q", report.RunID)
	}
	if server.listCalls.Load() != listCalls || server.parseCalls.Load() != parseCalls {
		t.Error("expected no requests when the snapshot exists")
	}
	if report.Extracted != 2 {
		t.Errorf("expected 2 records re-extracted, got %d", report.Extracted)
	}
}

func TestFetchTitles(t *testing.T) {
	server := newWikiServer(t, nil)
	defer server.Close()

	cfg := testConfig(t, server.URL)
	p, _ := newTestPipeline(t, cfg)

	res, err := p.FetchTitles(context.Background(), "picked", []string{"Beta", "Alpha"}, cfg.Output.SnapshotPath)
	if err != nil {
		t.Fatalf("FetchTitles: %v", err)
	}
	if res.Skipped || len(res.Errors) != 0 {
		t.Fatalf("unexpected result %+v", res)
	}
	if server.listCalls.Load() != 0 {
		t.Error("expected no category listing for explicit titles")
	}

	snap, err := store.LoadSnapshot(cfg.Output.SnapshotPath)
	if err != nil {
		t.Fatalf("LoadSnapshot: %v", err)
	}
	if snap.Category != "picked" || len(snap.Pages) != 2 {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
	if snap.Pages[0].Title != "Beta" || snap.Pages[1].Title != "Alpha" {
		t.Errorf("expected input order, got %s, %s", snap.Pages[0].Title, snap.Pages[1].Title)
	}
	if snap.Pages[0].Infobox != nil {
		t.Errorf("expected nil infobox for Beta, got %#v", snap.Pages[0].Infobox)
	}
}

func TestFetch_CanceledContext(t *testing.T) {
	server := newWikiServer(t, []string{"Alpha", "Beta", "Category:x"})
	defer server.Close()

	cfg := testConfig(t, server.URL)
	p, _ := newTestPipeline(t, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := p.Fetch(ctx, cfg.Category.Name, cfg.Output.SnapshotPath); err == nil {
		t.Fatal("expected error for canceled context")
	}
	if store.SnapshotExists(cfg.Output.SnapshotPath) {
		t.Error("expected no snapshot after a canceled fetch")
	}
}

func TestExtract_KeepsOrder(t *testing.T) {
	cfg := testConfig(t, "http://127.0.0.1:0")
	p, _ := newTestPipeline(t, cfg)

	records := p.Extract([]model.PageInput{
		{Title: "One"},
		{Title: "Two", Infobox: map[string]string{"language": "English"}},
	})
	if len(records) != 2 || records[0].Title != "One" || records[1].Title != "Two" {
		t.Fatalf("unexpected records %+v", records)
	}
	if len(records[1].Language) != 1 || records[1].Language[0] != "English" {
		t.Errorf("unexpected language %v", records[1].Language)
	}
}

func TestNewRecognizer(t *testing.T) {
	cfg := model.DefaultConfig()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	r, err := newRecognizer(cfg, logger)
	if err != nil || r == nil {
		t.Fatalf("expected gazetteer, got %v, %v", r, err)
	}

	cfg.Geo.Provider = "llm"
	cfg.LLM.Provider = "bogus"
	if _, err := newRecognizer(cfg, logger); err == nil {
		t.Error("expected error for unknown llm provider")
	}

	cfg.LLM.Provider = ""
	r, err = newRecognizer(cfg, logger)
	if err != nil || r == nil {
		t.Errorf("expected gazetteer fallback, got %v, %v", r, err)
	}
}
