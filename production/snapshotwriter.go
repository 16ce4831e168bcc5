package production

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/comalice/statetree"
)

// SnapshotWriter dumps snapshots somewhere for later inspection.
type SnapshotWriter interface {
	Write(ctx context.Context, snap statetree.Snapshot) (string, error)
}

// JSONSnapshotWriter writes one <id>.json file per chart into a directory.
type JSONSnapshotWriter struct {
	dir string
}

// NewJSONSnapshotWriter creates a JSONSnapshotWriter, ensuring the directory
// exists.
func NewJSONSnapshotWriter(dir string) (*JSONSnapshotWriter, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("mkdir %s: %w", dir, err)
	}
	return &JSONSnapshotWriter{dir: dir}, nil
}

// Write stores snap, replacing any earlier dump of the same chart, and
// returns the file name.
func (w *JSONSnapshotWriter) Write(ctx context.Context, snap statetree.Snapshot) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return "", fmt.Errorf("json marshal: %w", err)
	}
	return writeSnapshot(w.dir, snap.ID, ".json", data)
}

// YAMLSnapshotWriter writes one <id>.yaml file per chart into a directory.
type YAMLSnapshotWriter struct {
	dir string
}

// NewYAMLSnapshotWriter creates a YAMLSnapshotWriter, ensuring the directory
// exists.
func NewYAMLSnapshotWriter(dir string) (*YAMLSnapshotWriter, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("mkdir %s: %w", dir, err)
	}
	return &YAMLSnapshotWriter{dir: dir}, nil
}

func (w *YAMLSnapshotWriter) Write(ctx context.Context, snap statetree.Snapshot) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	data, err := yaml.Marshal(snap)
	if err != nil {
		return "", fmt.Errorf("yaml marshal: %w", err)
	}
	return writeSnapshot(w.dir, snap.ID, ".yaml", data)
}

func writeSnapshot(dir, id, ext string, data []byte) (string, error) {
	if id == "" {
		return "", ErrEmptyID
	}
	fn := filepath.Join(dir, id+ext)
	if err := os.WriteFile(fn, data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", fn, err)
	}
	return fn, nil
}
