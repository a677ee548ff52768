package score

import (
	"fmt"
	"math"

	"github.com/ppiankov/filmwiki/internal/model"
)

// DefaultSparseThreshold is the fill rate (percent) under which a field is
// flagged as sparse
const DefaultSparseThreshold = 50.0

// fieldCheck reports whether a record has a value for one field
type fieldCheck struct {
	name   string
	filled func(r model.ExtractedRecord) bool
}

// fieldChecks covers the nine derived fields, in output order
var fieldChecks = []fieldCheck{
	{"Director", func(r model.ExtractedRecord) bool { return len(r.Director) > 0 }},
	{"Starring", func(r model.ExtractedRecord) bool { return len(r.Starring) > 0 }},
	{"Running_time", func(r model.ExtractedRecord) bool { return len(r.RunningTime) > 0 }},
	{"Country", func(r model.ExtractedRecord) bool { return len(r.Country) > 0 }},
	{"Language", func(r model.ExtractedRecord) bool { return len(r.Language) > 0 }},
	{"Time", func(r model.ExtractedRecord) bool { return r.Time != "" }},
	{"Location", func(r model.ExtractedRecord) bool { return r.Location != "" }},
	{"Categories", func(r model.ExtractedRecord) bool { return len(r.Categories) > 0 }},
	{"Text", func(r model.ExtractedRecord) bool { return r.Text != "" }},
}

// Scorer measures how completely records were filled
type Scorer struct {
	sparseThreshold float64
}

// NewScorer creates a scorer with the default sparse threshold
func NewScorer() *Scorer {
	return &Scorer{sparseThreshold: DefaultSparseThreshold}
}

// Calculate computes per-field coverage and diagnostic signals. fetchErrors
// is the number of pages that never reached extraction.
func (s *Scorer) Calculate(records []model.ExtractedRecord, fetchErrors int) model.Coverage {
	coverage := model.Coverage{
		Records: len(records),
		Fields:  make([]model.FieldCoverage, 0, len(fieldChecks)),
	}

	if fetchErrors > 0 {
		severity := model.SeverityWarning
		if fetchErrors >= len(records) {
			severity = model.SeverityCritical
		}
		coverage.Signals = append(coverage.Signals, model.Signal{
			Type:        model.SignalFetchFailure,
			Severity:    severity,
			Description: fmt.Sprintf("%d pages could not be fetched", fetchErrors),
			Data: map[string]interface{}{
				"failed":    fetchErrors,
				"extracted": len(records),
			},
		})
	}

	if len(records) == 0 {
		coverage.Signals = append(coverage.Signals, model.Signal{
			Type:        model.SignalNoRecords,
			Severity:    model.SeverityCritical,
			Description: "No records extracted",
		})
		return coverage
	}

	for _, check := range fieldChecks {
		filled := 0
		for _, r := range records {
			if check.filled(r) {
				filled++
			}
		}
		percent := round1(float64(filled) / float64(len(records)) * 100)
		coverage.Fields = append(coverage.Fields, model.FieldCoverage{
			Field:   check.name,
			Filled:  filled,
			Percent: percent,
		})

		switch {
		case filled == 0:
			coverage.Signals = append(coverage.Signals, model.Signal{
				Type:        model.SignalEmptyField,
				Severity:    model.SeverityCritical,
				Description: fmt.Sprintf("%s is empty in every record", check.name),
				Data:        map[string]interface{}{"field": check.name},
			})
		case percent < s.sparseThreshold:
			coverage.Signals = append(coverage.Signals, model.Signal{
				Type:        model.SignalSparseField,
				Severity:    model.SeverityWarning,
				Description: fmt.Sprintf("%s filled in %.1f%% of records", check.name, percent),
				Data: map[string]interface{}{
					"field":     check.name,
					"filled":    filled,
					"percent":   percent,
					"threshold": s.sparseThreshold,
				},
			})
		}
	}

	return coverage
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
