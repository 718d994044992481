// Package assets memoizes the static inputs of the dashboard: the two tables and
// the two model artifacts. Each asset is read at most once per process.
package assets

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"salary-board/internal/storage"
)

// Source opens named artifacts. Names are the storage artifact names.
type Source interface {
	Open(name string) (io.ReadCloser, error)
	String() string
}

// DirSource reads each artifact from its own file.
type DirSource struct {
	paths map[string]string
}

// NewDirSource maps the four artifacts to file paths.
func NewDirSource(players, seasonStats, salaryModel, neighborModel string) *DirSource {
	return &DirSource{paths: map[string]string{
		storage.PlayersArtifact:       players,
		storage.SeasonStatsArtifact:   seasonStats,
		storage.SalaryModelArtifact:   salaryModel,
		storage.NeighborModelArtifact: neighborModel,
	}}
}

func (s *DirSource) Open(name string) (io.ReadCloser, error) {
	path, ok := s.paths[name]
	if !ok || path == "" {
		return nil, fmt.Errorf("%w: no path configured for %s", storage.ErrArtifactNotFound, name)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", name, err)
	}
	return f, nil
}

func (s *DirSource) String() string {
	return "files"
}

// BundleSource reads artifacts from an open bbolt bundle.
type BundleSource struct {
	store *storage.Store
}

func NewBundleSource(store *storage.Store) *BundleSource {
	return &BundleSource{store: store}
}

func (s *BundleSource) Open(name string) (io.ReadCloser, error) {
	data, err := s.store.Get(name)
	if err != nil {
		return nil, err
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *BundleSource) String() string {
	return "bundle " + s.store.Path()
}
