package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/ppiankov/filmwiki/internal/cache"
	"github.com/ppiankov/filmwiki/internal/extract"
	"github.com/ppiankov/filmwiki/internal/geo"
	"github.com/ppiankov/filmwiki/internal/llm"
	"github.com/ppiankov/filmwiki/internal/mediawiki"
	"github.com/ppiankov/filmwiki/internal/model"
	"github.com/ppiankov/filmwiki/internal/score"
	"github.com/ppiankov/filmwiki/internal/store"
	"github.com/ppiankov/filmwiki/internal/worker"
)

// Pipeline orchestrates the fetch, extract and write stages
type Pipeline struct {
	client    *mediawiki.Client
	batch     *worker.BatchFetcher
	extractor *extract.Extractor
	scorer    *score.Scorer
	renderer  *Renderer
	logger    *slog.Logger
	config    *model.Config
	newRunID  func() string
}

// NewPipeline creates a new pipeline with the given configuration
func NewPipeline(cfg *model.Config, logger *slog.Logger) (*Pipeline, error) {
	if logger == nil {
		logger = slog.Default()
	}

	recognizer, err := newRecognizer(cfg, logger)
	if err != nil {
		return nil, err
	}

	limiter := worker.NewLimiter(cfg.RateLimiting.RequestsPerSecond, cfg.RateLimiting.BurstSize)
	client := mediawiki.NewClient(mediawiki.ConfigFromModel(cfg), limiter, cache.New(cfg.Cache), logger)

	return &Pipeline{
		client:    client,
		batch:     worker.NewBatchFetcher(client, cfg.Concurrency.Workers),
		extractor: extract.NewExtractor(recognizer),
		scorer:    score.NewScorer(),
		renderer:  NewRenderer(os.Stderr),
		logger:    logger.With("component", "pipeline"),
		config:    cfg,
		newRunID:  uuid.NewString,
	}, nil
}

// newRecognizer picks the place-name recognizer used for Location
func newRecognizer(cfg *model.Config, logger *slog.Logger) (geo.Recognizer, error) {
	if cfg.Geo.Provider != "llm" {
		return geo.DefaultGazetteer(), nil
	}

	recognizer, err := llm.NewCountryRecognizer(llm.ConfigFromModel(cfg), logger)
	if err != nil {
		return nil, fmt.Errorf("init llm recognizer: %w", err)
	}
	if recognizer == nil {
		logger.Warn("geo provider is llm but no llm provider is configured, using gazetteer")
		return geo.DefaultGazetteer(), nil
	}
	return recognizer, nil
}

// SetOutput redirects the run summary
func (p *Pipeline) SetOutput(w io.Writer) {
	p.renderer = NewRenderer(w)
}

// FetchResult describes what the fetch stage did
type FetchResult struct {
	Snapshot *store.Snapshot // nil when Skipped
	Skipped  bool
	Listed   int
	Errors   []model.PageError
}

// Fetch lists category and writes every member page to snapshotPath.
// An existing snapshot makes the whole stage a no-op.
func (p *Pipeline) Fetch(ctx context.Context, category, snapshotPath string) (*FetchResult, error) {
	if store.SnapshotExists(snapshotPath) {
		p.logger.Info("snapshot exists, skipping fetch", "path", snapshotPath)
		return &FetchResult{Skipped: true}, nil
	}

	titles, err := p.client.CategoryMembers(ctx, category)
	if err != nil {
		return nil, fmt.Errorf("list category: %w", err)
	}

	return p.FetchTitles(ctx, category, titles, snapshotPath)
}

// FetchTitles fetches an explicit title list into snapshotPath. label is
// recorded as the snapshot's category.
func (p *Pipeline) FetchTitles(ctx context.Context, label string, titles []string, snapshotPath string) (*FetchResult, error) {
	if store.SnapshotExists(snapshotPath) {
		p.logger.Info("snapshot exists, skipping fetch", "path", snapshotPath)
		return &FetchResult{Skipped: true}, nil
	}

	p.batch.OnResult(func(done, total int, r *worker.PageResult) {
		if r.Error != nil {
			p.logger.Warn("page fetch failed", "title", r.Title, "error", r.Error, "done", done, "total", total)
			return
		}
		p.logger.Debug("page fetched", "title", r.Title, "done", done, "total", total)
	})

	results := p.batch.FetchPages(ctx, titles)

	result := &FetchResult{Listed: len(titles)}
	pages := make([]model.PageInput, 0, len(results))
	for _, r := range results {
		if r.Error != nil {
			result.Errors = append(result.Errors, model.PageError{Title: r.Title, Error: r.Error.Error()})
			continue
		}
		pages = append(pages, r.Page)
	}

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("fetch interrupted after %d pages: %w", len(pages), err)
	}

	snap := &store.Snapshot{
		RunID:     p.newRunID(),
		Category:  label,
		FetchedAt: time.Now().UTC(),
		Pages:     pages,
	}
	if err := store.SaveSnapshot(snapshotPath, snap); err != nil {
		if errors.Is(err, store.ErrSnapshotExists) {
			p.logger.Info("snapshot appeared during fetch, keeping existing file", "path", snapshotPath)
			return &FetchResult{Skipped: true, Listed: len(titles), Errors: result.Errors}, nil
		}
		return nil, fmt.Errorf("save snapshot: %w", err)
	}
	p.logger.Info("snapshot written", "path", snapshotPath, "pages", len(pages), "errors", len(result.Errors))

	result.Snapshot = snap
	return result, nil
}

// Extract turns pages into records, sequentially and in order
func (p *Pipeline) Extract(pages []model.PageInput) []model.ExtractedRecord {
	return p.extractor.ExtractAll(pages)
}

// ExtractFile reads a snapshot and writes its records to outputPath
func (p *Pipeline) ExtractFile(snapshotPath, outputPath string) (*store.Snapshot, []model.ExtractedRecord, error) {
	snap, err := store.LoadSnapshot(snapshotPath)
	if err != nil {
		return nil, nil, err
	}

	records := p.Extract(snap.Pages)
	if err := store.WriteRecordsFile(outputPath, records, p.config.Output.Indent); err != nil {
		return nil, nil, fmt.Errorf("write records: %w", err)
	}
	p.logger.Info("records written", "path", outputPath, "records", len(records))
	return snap, records, nil
}

// Run fetches (unless a snapshot exists), extracts, writes the records
// and optionally stores them in MongoDB
func (p *Pipeline) Run(ctx context.Context) (*model.RunReport, error) {
	out := p.config.Output
	report := &model.RunReport{
		Category:     p.config.Category.Name,
		StartedAt:    time.Now().UTC(),
		SnapshotPath: out.SnapshotPath,
		OutputPath:   out.RecordsPath,
	}

	fetched, err := p.Fetch(ctx, p.config.Category.Name, out.SnapshotPath)
	if err != nil {
		return nil, err
	}
	report.SnapshotSkip = fetched.Skipped
	report.Listed = fetched.Listed
	report.FetchErrors = fetched.Errors

	snap, records, err := p.ExtractFile(out.SnapshotPath, out.RecordsPath)
	if err != nil {
		return nil, err
	}
	report.RunID = snap.RunID
	if report.RunID == "" {
		report.RunID = p.newRunID()
	}
	report.Fetched = len(snap.Pages)
	report.Extracted = len(records)

	if out.MongoURI != "" {
		if err := p.storeMongo(ctx, report.RunID, records); err != nil {
			return nil, err
		}
	}

	report.Coverage = p.scorer.Calculate(records, len(report.FetchErrors))
	report.FinishedAt = time.Now().UTC()
	return report, nil
}

func (p *Pipeline) storeMongo(ctx context.Context, runID string, records []model.ExtractedRecord) error {
	out := p.config.Output
	sink, err := store.NewMongoSink(ctx, out.MongoURI, out.MongoDB, out.MongoColl, p.logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := sink.Close(context.Background()); err != nil {
			p.logger.Warn("mongodb disconnect failed", "error", err)
		}
	}()
	return sink.Store(ctx, runID, records)
}

// RenderSummary prints the run summary
func (p *Pipeline) RenderSummary(report *model.RunReport) {
	p.renderer.RenderSummary(report)
}

// RenderFetch prints the outcome of a fetch stage
func (p *Pipeline) RenderFetch(snapshotPath string, res *FetchResult) {
	p.renderer.RenderFetch(snapshotPath, res)
}

// RenderCoverage prints field coverage for records extracted outside Run
func (p *Pipeline) RenderCoverage(records []model.ExtractedRecord) {
	p.renderer.RenderCoverage(p.scorer.Calculate(records, 0))
}
