package production

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/zeebo/blake3"

	"github.com/comalice/statetree"
)

var (
	ErrNotFound = errors.New("version or chart not found")
	ErrExists   = errors.New("version already exists")
	ErrEmptyID  = errors.New("snapshot has no chart id")
)

// Registry keeps versioned snapshots of running charts.
type Registry interface {
	// Register stores snap under a version derived from its configuration.
	Register(ctx context.Context, snap statetree.Snapshot) (string, error)

	// Latest returns the most recent snapshot for chartID.
	Latest(ctx context.Context, chartID string) (VersionedSnapshot, error)

	// Version returns the snapshot stored under a specific version.
	Version(ctx context.Context, chartID, version string) (VersionedSnapshot, error)

	// ListVersions returns versions for chartID, newest first.
	ListVersions(ctx context.Context, chartID string) ([]string, error)

	// ListCharts returns all chart IDs, sorted.
	ListCharts(ctx context.Context) ([]string, error)
}

// VersionedSnapshot annotates a snapshot with its content version.
type VersionedSnapshot struct {
	statetree.Snapshot
	Version string `json:"version" yaml:"version"`
}

// MemoryRegistry is an in-process Registry. Versions are blake3 digests of
// the current leaves and history slots, so registering an unchanged
// configuration twice yields ErrExists.
type MemoryRegistry struct {
	mu     sync.RWMutex
	charts map[string][]VersionedSnapshot
}

// NewMemoryRegistry creates an empty MemoryRegistry.
func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{charts: map[string][]VersionedSnapshot{}}
}

func (r *MemoryRegistry) Register(ctx context.Context, snap statetree.Snapshot) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if snap.ID == "" {
		return "", ErrEmptyID
	}
	version, err := SnapshotVersion(snap)
	if err != nil {
		return "", err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, v := range r.charts[snap.ID] {
		if v.Version == version {
			return version, fmt.Errorf("chart %s version %s: %w", snap.ID, version, ErrExists)
		}
	}
	r.charts[snap.ID] = append(r.charts[snap.ID], VersionedSnapshot{Snapshot: snap, Version: version})
	return version, nil
}

func (r *MemoryRegistry) Latest(ctx context.Context, chartID string) (VersionedSnapshot, error) {
	if err := ctx.Err(); err != nil {
		return VersionedSnapshot{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	versions := r.charts[chartID]
	if len(versions) == 0 {
		return VersionedSnapshot{}, fmt.Errorf("chart %q: %w", chartID, ErrNotFound)
	}
	return versions[len(versions)-1], nil
}

func (r *MemoryRegistry) Version(ctx context.Context, chartID, version string) (VersionedSnapshot, error) {
	if err := ctx.Err(); err != nil {
		return VersionedSnapshot{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, v := range r.charts[chartID] {
		if v.Version == version {
			return v, nil
		}
	}
	return VersionedSnapshot{}, fmt.Errorf("chart %q version %q: %w", chartID, version, ErrNotFound)
}

func (r *MemoryRegistry) ListVersions(ctx context.Context, chartID string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	versions := r.charts[chartID]
	if len(versions) == 0 {
		return nil, fmt.Errorf("chart %q: %w", chartID, ErrNotFound)
	}
	out := make([]string, 0, len(versions))
	for i := len(versions) - 1; i >= 0; i-- {
		out = append(out, versions[i].Version)
	}
	return out, nil
}

func (r *MemoryRegistry) ListCharts(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.charts))
	for id := range r.charts {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// SnapshotVersion returns the content version of snap: the first 16 hex
// digits of a blake3 digest over its current leaves and history slots. The
// chart ID and capture time do not contribute.
func SnapshotVersion(snap statetree.Snapshot) (string, error) {
	// encoding/json sorts map keys, which keeps the digest stable.
	raw, err := json.Marshal(struct {
		Current []string          `json:"current"`
		History map[string]string `json:"history"`
	}{snap.Current, snap.History})
	if err != nil {
		return "", fmt.Errorf("json marshal: %w", err)
	}
	sum := blake3.Sum256(raw)
	return hex.EncodeToString(sum[:8]), nil
}
