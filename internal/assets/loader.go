package assets

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"salary-board/internal/dataset"
	"salary-board/internal/ml"
	"salary-board/internal/storage"

	"github.com/rs/zerolog/log"
)

// MetricsInterface defines metrics methods needed by the loader
type MetricsInterface interface {
	AssetLoadsInc(name string)
	AssetLoadDurationObserve(name string, seconds float64)
}

// lazy holds one value computed on first use. Failures are remembered too.
type lazy[T any] struct {
	once sync.Once
	val  T
	err  error
}

func (l *lazy[T]) get(load func() (T, error)) (T, error) {
	l.once.Do(func() {
		l.val, l.err = load()
	})
	return l.val, l.err
}

// Loader is the process-wide cache of tables and models.
type Loader struct {
	src     Source
	metrics MetricsInterface

	players   lazy[*dataset.PlayerTable]
	season    lazy[*dataset.SeasonStats]
	salary    lazy[*ml.LinearRegressor]
	neighbors lazy[*ml.KNN]
}

func NewLoader(src Source, metrics MetricsInterface) *Loader {
	return &Loader{src: src, metrics: metrics}
}

// Players returns the player table.
func (l *Loader) Players() (*dataset.PlayerTable, error) {
	return l.players.get(func() (*dataset.PlayerTable, error) {
		rc, err := l.open(storage.PlayersArtifact)
		if err != nil {
			return nil, err
		}
		defer rc.Close()
		start := time.Now()
		t, err := dataset.LoadPlayers(rc)
		if err != nil {
			return nil, err
		}
		l.loaded(storage.PlayersArtifact, start, t.Len())
		return t, nil
	})
}

// SeasonStats returns the season statistics table.
func (l *Loader) SeasonStats() (*dataset.SeasonStats, error) {
	return l.season.get(func() (*dataset.SeasonStats, error) {
		rc, err := l.open(storage.SeasonStatsArtifact)
		if err != nil {
			return nil, err
		}
		defer rc.Close()
		start := time.Now()
		s, err := dataset.LoadSeasonStats(rc)
		if err != nil {
			return nil, err
		}
		l.loaded(storage.SeasonStatsArtifact, start, s.Len())
		return s, nil
	})
}

// SalaryModel returns the salary regressor.
func (l *Loader) SalaryModel() (*ml.LinearRegressor, error) {
	return l.salary.get(func() (*ml.LinearRegressor, error) {
		rc, err := l.open(storage.SalaryModelArtifact)
		if err != nil {
			return nil, err
		}
		defer rc.Close()
		start := time.Now()
		m, err := ml.LoadRegressor(rc)
		if err != nil {
			return nil, err
		}
		l.loaded(storage.SalaryModelArtifact, start, 1)
		return m, nil
	})
}

// NeighborModel returns the neighbor index. The index must hold exactly one point
// per player row so that its answers are valid row offsets.
func (l *Loader) NeighborModel() (*ml.KNN, error) {
	return l.neighbors.get(func() (*ml.KNN, error) {
		players, err := l.Players()
		if err != nil {
			return nil, err
		}
		rc, err := l.open(storage.NeighborModelArtifact)
		if err != nil {
			return nil, err
		}
		defer rc.Close()
		start := time.Now()
		m, err := ml.LoadNeighborIndex(rc)
		if err != nil {
			return nil, err
		}
		if m.Len() != players.Len() {
			return nil, fmt.Errorf("neighbor model indexes %d points, player table has %d rows", m.Len(), players.Len())
		}
		l.loaded(storage.NeighborModelArtifact, start, m.Len())
		return m, nil
	})
}

// Preload loads every asset, stopping at the first failure.
func (l *Loader) Preload(ctx context.Context) error {
	steps := []struct {
		name string
		load func() error
	}{
		{storage.PlayersArtifact, func() error { _, err := l.Players(); return err }},
		{storage.SeasonStatsArtifact, func() error { _, err := l.SeasonStats(); return err }},
		{storage.SalaryModelArtifact, func() error { _, err := l.SalaryModel(); return err }},
		{storage.NeighborModelArtifact, func() error { _, err := l.NeighborModel(); return err }},
	}
	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := step.load(); err != nil {
			return fmt.Errorf("load %s from %s: %w", step.name, l.src, err)
		}
	}
	return nil
}

// Models returns metadata of both models. Models that fail to load are skipped.
func (l *Loader) Models() []ml.ModelMetadata {
	var out []ml.ModelMetadata
	if m, err := l.SalaryModel(); err == nil {
		out = append(out, m.Metadata())
	}
	if m, err := l.NeighborModel(); err == nil {
		out = append(out, m.Metadata())
	}
	return out
}

func (l *Loader) open(name string) (io.ReadCloser, error) {
	return l.src.Open(name)
}

func (l *Loader) loaded(name string, start time.Time, rows int) {
	elapsed := time.Since(start)
	if l.metrics != nil {
		l.metrics.AssetLoadsInc(name)
		l.metrics.AssetLoadDurationObserve(name, elapsed.Seconds())
	}
	log.Info().Str("asset", name).Str("source", l.src.String()).Int("rows", rows).
		Dur("elapsed", elapsed).Msg("Asset loaded")
}
