package snapshot

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
)

// Meta describes one saved snapshot.
type Meta struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	NodeCount int       `json:"node_count"`
}

// Store keeps named snapshots on disk, one directory per snapshot with a
// metadata.json beside the encoded positions.
type Store struct {
	baseDir string
}

func NewStore(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0o755)
}

func (s *Store) Save(name string, p Positions) (string, error) {
	id := uuid.NewString()
	dir := filepath.Join(s.baseDir, id)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	meta := Meta{
		ID:        id,
		Name:      name,
		CreatedAt: time.Now(),
		NodeCount: len(p),
	}
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(filepath.Join(dir, "metadata.json"), data, 0o644); err != nil {
		return "", err
	}
	if err := os.WriteFile(filepath.Join(dir, "positions.bin"), Encode(p), 0o644); err != nil {
		return "", err
	}
	return id, nil
}

// List returns snapshot metadata, newest first. Entries whose metadata is
// unreadable are skipped.
func (s *Store) List() ([]Meta, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []Meta{}, nil
		}
		return nil, err
	}

	metas := make([]Meta, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.baseDir, e.Name(), "metadata.json"))
		if err != nil {
			continue
		}
		var m Meta
		if err := json.Unmarshal(data, &m); err != nil {
			continue
		}
		metas = append(metas, m)
	}

	sort.Slice(metas, func(i, j int) bool {
		return metas[i].CreatedAt.After(metas[j].CreatedAt)
	})
	return metas, nil
}

func (s *Store) Load(id string) (Meta, Positions, error) {
	dir := filepath.Join(s.baseDir, id)

	data, err := os.ReadFile(filepath.Join(dir, "metadata.json"))
	if err != nil {
		return Meta{}, nil, fmt.Errorf("snapshot: load %s: %w", id, err)
	}
	var m Meta
	if err := json.Unmarshal(data, &m); err != nil {
		return Meta{}, nil, fmt.Errorf("snapshot: load %s: %w", id, err)
	}

	raw, err := os.ReadFile(filepath.Join(dir, "positions.bin"))
	if err != nil {
		return Meta{}, nil, fmt.Errorf("snapshot: load %s: %w", id, err)
	}
	p, err := Decode(raw)
	if err != nil {
		return Meta{}, nil, err
	}
	return m, p, nil
}

func (s *Store) Delete(id string) error {
	return os.RemoveAll(filepath.Join(s.baseDir, id))
}
