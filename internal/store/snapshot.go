package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"time"

	"github.com/ppiankov/filmwiki/internal/model"
)

// ErrSnapshotExists is returned by SaveSnapshot when the target file is
// already present. Callers treat it as "fetch already done".
var ErrSnapshotExists = errors.New("snapshot already exists")

// Snapshot is the raw result of a fetch: every page of a category in
// listing order
type Snapshot struct {
	RunID     string            `json:"run_id"`
	Category  string            `json:"category"`
	FetchedAt time.Time         `json:"fetched_at"`
	Pages     []model.PageInput `json:"pages"`
}

// SnapshotExists reports whether a snapshot file is present at path
func SnapshotExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// SaveSnapshot writes snap to path unless a file already exists there
func SaveSnapshot(path string, snap *Snapshot) error {
	if SnapshotExists(path) {
		return fmt.Errorf("%s: %w", path, ErrSnapshotExists)
	}

	return writeFileAtomic(path, func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(false)
		if err := enc.Encode(snap); err != nil {
			return fmt.Errorf("encode snapshot: %w", err)
		}
		return nil
	})
}

// LoadSnapshot reads a snapshot written by SaveSnapshot
func LoadSnapshot(path string) (*Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("snapshot %s not found (run fetch first): %w", path, err)
		}
		return nil, fmt.Errorf("open snapshot: %w", err)
	}
	defer func() { _ = f.Close() }()

	var snap Snapshot
	if err := json.NewDecoder(f).Decode(&snap); err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", path, err)
	}
	return &snap, nil
}
