package ml

import (
	"errors"
	"fmt"
	"sort"

	"salary-board/internal/dataset"
	"salary-board/internal/schema"
)

// DefaultNeighborQuery is how many indices are requested so that five remain after
// the selected player is dropped.
const DefaultNeighborQuery = 6

// DefaultNeighborLimit is the number of comparable players shown.
const DefaultNeighborLimit = 5

// NeighborIndex answers k-nearest queries with row offsets.
type NeighborIndex interface {
	Kneighbors(rows [][]float64, k int) ([][]int, error)
}

// NeighborFinder maps index answers to player rows.
type NeighborFinder struct {
	index   NeighborIndex
	table   *dataset.PlayerTable
	query   int
	limit   int
	metrics MetricsInterface
}

// NewNeighborFinder returns a finder requesting query indices and returning at most
// limit players. query must exceed limit.
func NewNeighborFinder(index NeighborIndex, table *dataset.PlayerTable, query, limit int, metrics MetricsInterface) (*NeighborFinder, error) {
	if index == nil || table == nil {
		return nil, errors.New("neighbor finder requires an index and a player table")
	}
	if limit <= 0 {
		return nil, fmt.Errorf("neighbor limit must be positive, got %d", limit)
	}
	if query <= limit {
		return nil, fmt.Errorf("neighbor query (%d) must exceed the limit (%d)", query, limit)
	}
	return &NeighborFinder{index: index, table: table, query: query, limit: limit, metrics: metrics}, nil
}

// Nearest returns the players closest to v, excluding every row named selected,
// ordered by salary descending. Fewer than limit rows is not an error.
func (f *NeighborFinder) Nearest(selected string, v schema.Vector) ([]dataset.Player, error) {
	ids, err := f.index.Kneighbors([][]float64{v.Row()}, f.query)
	if err != nil {
		return nil, fmt.Errorf("neighbor query: %w", err)
	}
	if len(ids) != 1 {
		return nil, fmt.Errorf("neighbor index returned %d answers for one row", len(ids))
	}

	rows, err := f.table.Rows(ids[0])
	if err != nil {
		return nil, fmt.Errorf("neighbor rows: %w", err)
	}

	out := make([]dataset.Player, 0, f.limit)
	for _, p := range rows {
		if p.Name == selected {
			continue
		}
		out = append(out, p)
		if len(out) == f.limit {
			break
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Salary > out[j].Salary
	})

	if f.metrics != nil {
		f.metrics.NeighborLookupsInc()
	}
	return out, nil
}
