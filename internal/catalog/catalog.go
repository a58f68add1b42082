// Package catalog stores named site snapshots so authoring sessions can be
// resumed and shared. Each entry is one full-fidelity persisted document;
// the catalog never interprets the site beyond its name.
package catalog

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"siteforge/internal/format"
	"siteforge/pkg/domain"
)

// ErrNotFound is returned when no snapshot exists under a name.
var ErrNotFound = errors.New("catalog: site not found")

// Entry describes one stored snapshot.
type Entry struct {
	Name      string    `json:"name"`
	UpdatedAt time.Time `json:"updated_at"`
	Size      int64     `json:"size_bytes"`
}

// Store is the catalog contract shared by all backends.
type Store interface {
	Save(ctx context.Context, name string, site domain.Site) error
	Load(ctx context.Context, name string) (domain.Site, error)
	List(ctx context.Context) ([]Entry, error)
	Delete(ctx context.Context, name string) (bool, error)
	Close() error
}

// encode serializes through the canonical persisted document so every
// backend stores exactly what a site file would contain.
func encode(site domain.Site) ([]byte, error) {
	return format.ExportSite(site)
}

func decode(data []byte) (domain.Site, error) {
	return format.ImportSite(data)
}

type memoryEntry struct {
	data      []byte
	updatedAt time.Time
}

// MemoryStore is the in-memory catalog backend used in tests.
type MemoryStore struct {
	mu    sync.RWMutex
	sites map[string]memoryEntry
	nowFn func() time.Time
}

// NewMemory returns an empty in-memory catalog.
func NewMemory() *MemoryStore {
	return &MemoryStore{
		sites: make(map[string]memoryEntry),
		nowFn: func() time.Time { return time.Now().UTC() },
	}
}

// Save stores a snapshot under the name, replacing any previous version.
func (s *MemoryStore) Save(_ context.Context, name string, site domain.Site) error {
	data, err := encode(site)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.sites[name] = memoryEntry{data: data, updatedAt: s.nowFn()}
	s.mu.Unlock()
	return nil
}

// Load retrieves and revalidates a snapshot.
func (s *MemoryStore) Load(_ context.Context, name string) (domain.Site, error) {
	s.mu.RLock()
	entry, ok := s.sites[name]
	s.mu.RUnlock()
	if !ok {
		return domain.Site{}, ErrNotFound
	}
	return decode(entry.data)
}

// List returns all entries ordered by name.
func (s *MemoryStore) List(_ context.Context) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Entry, 0, len(s.sites))
	for name, entry := range s.sites {
		out = append(out, Entry{Name: name, UpdatedAt: entry.updatedAt, Size: int64(len(entry.data))})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Delete removes a snapshot, reporting whether it existed.
func (s *MemoryStore) Delete(_ context.Context, name string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.sites[name]
	delete(s.sites, name)
	return ok, nil
}

// Close is a no-op for the memory backend.
func (s *MemoryStore) Close() error { return nil }
