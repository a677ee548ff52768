package store

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"

	"github.com/ppiankov/filmwiki/internal/model"
)

// WriteRecords writes records as one JSON object keyed by position
// ("0", "1", ...), keys in numeric order
func WriteRecords(w io.Writer, records []model.ExtractedRecord, indent bool) error {
	bw := bufio.NewWriter(w)

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if indent {
		enc.SetIndent("  ", "  ")
	}

	_, _ = bw.WriteString("{")
	for i, record := range records {
		if i > 0 {
			_, _ = bw.WriteString(",")
		}
		if indent {
			_, _ = bw.WriteString("\n  ")
		}
		_, _ = bw.WriteString(strconv.Quote(strconv.Itoa(i)))
		_, _ = bw.WriteString(":")
		if indent {
			_, _ = bw.WriteString(" ")
		}

		buf.Reset()
		if err := enc.Encode(record.Normalize()); err != nil {
			return fmt.Errorf("encode record %d: %w", i, err)
		}
		_, _ = bw.Write(bytes.TrimRight(buf.Bytes(), "\n"))
	}
	if indent && len(records) > 0 {
		_, _ = bw.WriteString("\n")
	}
	_, _ = bw.WriteString("}\n")

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write records: %w", err)
	}
	return nil
}

// WriteRecordsFile writes records to path, replacing any previous output
func WriteRecordsFile(path string, records []model.ExtractedRecord, indent bool) error {
	return writeFileAtomic(path, func(w io.Writer) error {
		return WriteRecords(w, records, indent)
	})
}

// ReadRecords decodes a document written by WriteRecords back into
// position order
func ReadRecords(r io.Reader) ([]model.ExtractedRecord, error) {
	var byKey map[string]model.ExtractedRecord
	if err := json.NewDecoder(r).Decode(&byKey); err != nil {
		return nil, fmt.Errorf("decode records: %w", err)
	}

	type indexed struct {
		pos    int
		record model.ExtractedRecord
	}
	entries := make([]indexed, 0, len(byKey))
	for key, record := range byKey {
		pos, err := strconv.Atoi(key)
		if err != nil {
			return nil, fmt.Errorf("record key %q is not a position", key)
		}
		entries = append(entries, indexed{pos: pos, record: record})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].pos < entries[j].pos })

	records := make([]model.ExtractedRecord, len(entries))
	for i, e := range entries {
		records[i] = e.record
	}
	return records, nil
}

// ReadRecordsFile reads a records document from path
func ReadRecordsFile(path string) ([]model.ExtractedRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open records: %w", err)
	}
	defer func() { _ = f.Close() }()
	return ReadRecords(f)
}
