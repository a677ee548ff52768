package model

import "time"

// RunReport summarizes one end-to-end run
type RunReport struct {
	RunID        string      `json:"run_id"`
	Category     string      `json:"category"`
	StartedAt    time.Time   `json:"started_at"`
	FinishedAt   time.Time   `json:"finished_at"`
	SnapshotPath string      `json:"snapshot_path"`
	OutputPath   string      `json:"output_path"`
	SnapshotSkip bool        `json:"snapshot_skipped"` // Snapshot already existed, fetch stage was a no-op
	Listed       int         `json:"listed"`           // Titles kept after trailing exclusion
	Fetched      int         `json:"fetched"`
	FetchErrors  []PageError `json:"fetch_errors,omitempty"`
	Extracted    int         `json:"extracted"`
	Coverage     Coverage    `json:"coverage"`
}

// PageError records a page that could not be fetched
type PageError struct {
	Title string `json:"title"`
	Error string `json:"error"`
}

// Coverage is the per-field fill rate over a set of records
type Coverage struct {
	Records int             `json:"records"`
	Fields  []FieldCoverage `json:"fields"`
	Signals []Signal        `json:"signals,omitempty"`
}

// FieldCoverage is the fill rate of a single record field
type FieldCoverage struct {
	Field   string  `json:"field"`
	Filled  int     `json:"filled"`
	Percent float64 `json:"percent"`
}

// Signal represents a diagnostic signal about the extracted data
type Signal struct {
	Type        SignalType             `json:"type"`
	Severity    SignalSeverity         `json:"severity"`
	Description string                 `json:"description"`
	Data        map[string]interface{} `json:"data,omitempty"`
}

// SignalType classifies the type of diagnostic signal
type SignalType string

const (
	SignalSparseField  SignalType = "sparse_field"  // Field filled in under half the records
	SignalEmptyField   SignalType = "empty_field"   // Field never filled
	SignalNoRecords    SignalType = "no_records"    // Nothing was extracted
	SignalFetchFailure SignalType = "fetch_failure" // Some pages could not be fetched
)

// SignalSeverity indicates the importance of the signal
type SignalSeverity string

const (
	SeverityInfo     SignalSeverity = "info"
	SeverityWarning  SignalSeverity = "warning"
	SeverityCritical SignalSeverity = "critical"
)
