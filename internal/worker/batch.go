package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/ppiankov/filmwiki/internal/model"
)

// PageFetcher fetches one page by title
type PageFetcher interface {
	Page(ctx context.Context, title string) (model.PageInput, error)
}

// PageJob fetches the page at position Index of a title list
type PageJob struct {
	Index   int
	Title   string
	Fetcher PageFetcher
}

// Execute executes the page job
func (j *PageJob) Execute(ctx context.Context) Result {
	page, err := j.Fetcher.Page(ctx, j.Title)
	if err != nil {
		return &PageResult{Index: j.Index, Title: j.Title, Error: err}
	}
	return &PageResult{Index: j.Index, Title: j.Title, Page: page}
}

// PageResult represents the result of a page job
type PageResult struct {
	Index int
	Title string
	Page  model.PageInput
	Error error
}

// GetError returns the error from the page result
func (r *PageResult) GetError() error {
	return r.Error
}

// BatchFetcher fetches many pages concurrently and hands them back in the
// order the titles were given
type BatchFetcher struct {
	fetcher     PageFetcher
	concurrency int
	onResult    func(done, total int, r *PageResult)
}

// NewBatchFetcher creates a new batch fetcher
func NewBatchFetcher(fetcher PageFetcher, concurrency int) *BatchFetcher {
	return &BatchFetcher{
		fetcher:     fetcher,
		concurrency: concurrency,
	}
}

// OnResult registers a callback invoked from the collecting goroutine as
// each page completes
func (b *BatchFetcher) OnResult(fn func(done, total int, r *PageResult)) {
	b.onResult = fn
}

// FetchPages fetches every title and returns one result per title sorted
// by input position. Titles never submitted because ctx ended are reported
// with ctx's error.
func (b *BatchFetcher) FetchPages(ctx context.Context, titles []string) []*PageResult {
	if len(titles) == 0 {
		return []*PageResult{}
	}

	pool := NewPool(ctx, b.concurrency)
	pool.Start()

	submitted := make(chan int, 1)
	go func() {
		n := 0
		for i, title := range titles {
			if !pool.Submit(&PageJob{Index: i, Title: title, Fetcher: b.fetcher}) {
				break
			}
			n++
		}
		pool.Close()
		submitted <- n
	}()

	results := make([]*PageResult, 0, len(titles))
	for r := range pool.Results() {
		pr := r.(*PageResult)
		results = append(results, pr)
		if b.onResult != nil {
			b.onResult(len(results), len(titles), pr)
		}
	}
	<-submitted

	seen := make([]bool, len(titles))
	for _, r := range results {
		seen[r.Index] = true
	}
	for i, ok := range seen {
		if !ok {
			err := ctx.Err()
			if err == nil {
				err = context.Canceled
			}
			results = append(results, &PageResult{Index: i, Title: titles[i], Error: err})
		}
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Index < results[j].Index
	})
	return results
}

// ReadTitlesFromFile reads page titles from a file (one per line), skipping
// blank lines, "#" comments and duplicates
func ReadTitlesFromFile(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var titles []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if !seen[line] {
			seen[line] = true
			titles = append(titles, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return titles, nil
}
