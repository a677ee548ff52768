package pipeline

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/ppiankov/filmwiki/internal/model"
)

const banner = "═══════════════════════════════════════════════════════════"

// Renderer writes human-readable summaries
type Renderer struct {
	w io.Writer
}

// NewRenderer creates a renderer writing to w
func NewRenderer(w io.Writer) *Renderer {
	return &Renderer{w: w}
}

func (r *Renderer) header(title string) {
	_, _ = fmt.Fprintf(r.w, "\n%s\n  %s\n%s\n\n", banner, title, banner)
}

// RenderFetch prints the outcome of a fetch stage
func (r *Renderer) RenderFetch(path string, res *FetchResult) {
	r.header("Fetch Complete")
	if res.Skipped {
		_, _ = fmt.Fprintf(r.w, "  Snapshot:  %s (exists, skipped)\n\n", path)
		return
	}
	_, _ = fmt.Fprintf(r.w, "  Snapshot:  %s\n", path)
	_, _ = fmt.Fprintf(r.w, "  Listed:    %d titles\n", res.Listed)
	_, _ = fmt.Fprintf(r.w, "  Fetched:   %d pages\n", len(res.Snapshot.Pages))
	_, _ = fmt.Fprintf(r.w, "  Failures:  %d\n", len(res.Errors))
	r.renderErrors(res.Errors)
	_, _ = fmt.Fprintln(r.w)
}

// RenderSummary prints a run report including per-field coverage
func (r *Renderer) RenderSummary(report *model.RunReport) {
	r.header("filmwiki Run Complete")

	_, _ = fmt.Fprintf(r.w, "  Run:       %s\n", report.RunID)
	_, _ = fmt.Fprintf(r.w, "  Category:  %s\n", report.Category)
	if report.SnapshotSkip {
		_, _ = fmt.Fprintf(r.w, "  Snapshot:  %s (reused)\n", report.SnapshotPath)
	} else {
		_, _ = fmt.Fprintf(r.w, "  Snapshot:  %s\n", report.SnapshotPath)
		_, _ = fmt.Fprintf(r.w, "  Listed:    %d titles\n", report.Listed)
	}
	_, _ = fmt.Fprintf(r.w, "  Fetched:   %d pages\n", report.Fetched)
	_, _ = fmt.Fprintf(r.w, "  Extracted: %d records\n", report.Extracted)
	_, _ = fmt.Fprintf(r.w, "  Output:    %s\n", report.OutputPath)
	if !report.FinishedAt.IsZero() {
		_, _ = fmt.Fprintf(r.w, "  Duration:  %s\n", report.FinishedAt.Sub(report.StartedAt).Round(time.Millisecond))
	}
	r.renderErrors(report.FetchErrors)

	r.RenderCoverage(report.Coverage)
}

// RenderCoverage prints the field coverage table and its signals
func (r *Renderer) RenderCoverage(c model.Coverage) {
	if len(c.Fields) > 0 {
		_, _ = fmt.Fprintf(r.w, "\n  Field coverage (%d records):\n", c.Records)
		for _, f := range c.Fields {
			bar := strings.Repeat("█", int(f.Percent/5))
			_, _ = fmt.Fprintf(r.w, "    %-13s %5.1f%%  %-20s %d\n", f.Field, f.Percent, bar, f.Filled)
		}
	}

	if len(c.Signals) > 0 {
		_, _ = fmt.Fprintf(r.w, "\n  Signals:\n")
		for _, s := range c.Signals {
			icon := "⚠️ "
			if s.Severity == model.SeverityCritical {
				icon = "✗"
			}
			_, _ = fmt.Fprintf(r.w, "    %s %s\n", icon, s.Description)
		}
	}
	_, _ = fmt.Fprintln(r.w)
}

func (r *Renderer) renderErrors(errs []model.PageError) {
	if len(errs) == 0 {
		return
	}
	_, _ = fmt.Fprintf(r.w, "\n  Failed pages:\n")
	for _, e := range errs {
		_, _ = fmt.Fprintf(r.w, "    ✗ %s: %s\n", e.Title, e.Error)
	}
}
