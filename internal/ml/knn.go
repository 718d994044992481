package ml

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"sort"
)

// KindKNN identifies a nearest-neighbor index artifact.
const KindKNN = "knn"

// Distance metrics supported by the index.
const (
	MetricEuclidean = "euclidean"
	MetricManhattan = "manhattan"
	MetricMinkowski = "minkowski"
)

type knnArtifact struct {
	ModelMetadata
	NNeighbors int         `json:"n_neighbors"`
	Metric     string      `json:"metric"`
	P          float64     `json:"p"`
	Scaler     *Scaler     `json:"scaler,omitempty"`
	Points     [][]float64 `json:"points"`
}

// KNN is a brute-force nearest-neighbor index. Points are stored in the scaled space
// the index was fitted in; query rows are scaled before searching.
type KNN struct {
	meta       ModelMetadata
	nNeighbors int
	metric     string
	p          float64
	scaler     *Scaler
	points     [][]float64
}

// LoadNeighborIndex decodes and validates a neighbor index artifact.
func LoadNeighborIndex(r io.Reader) (*KNN, error) {
	var a knnArtifact
	if err := json.NewDecoder(r).Decode(&a); err != nil {
		return nil, fmt.Errorf("decode neighbor model: %w", err)
	}
	if a.Kind != KindKNN {
		return nil, fmt.Errorf("neighbor model: unsupported kind %q", a.Kind)
	}
	if err := checkFeatures(a.Features); err != nil {
		return nil, fmt.Errorf("neighbor model: %w", err)
	}
	if err := a.Scaler.validate(len(a.Features)); err != nil {
		return nil, fmt.Errorf("neighbor model: %w", err)
	}
	if err := checkRows(a.Points, len(a.Features)); err != nil {
		return nil, fmt.Errorf("neighbor model points: %w", err)
	}

	return NewKNN(a.ModelMetadata, a.NNeighbors, a.Metric, a.P, a.Scaler, a.Points)
}

// NewKNN builds an index from in-memory parameters. An empty metric means euclidean.
func NewKNN(meta ModelMetadata, nNeighbors int, metric string, p float64, scaler *Scaler, points [][]float64) (*KNN, error) {
	if nNeighbors <= 0 {
		return nil, fmt.Errorf("neighbor model: n_neighbors must be positive, got %d", nNeighbors)
	}
	switch metric {
	case "":
		metric = MetricEuclidean
	case MetricEuclidean, MetricManhattan:
	case MetricMinkowski:
		if p < 1 {
			return nil, fmt.Errorf("neighbor model: minkowski p must be >= 1, got %v", p)
		}
	default:
		return nil, fmt.Errorf("neighbor model: unsupported metric %q", metric)
	}

	meta.Kind = KindKNN
	return &KNN{
		meta:       meta,
		nNeighbors: nNeighbors,
		metric:     metric,
		p:          p,
		scaler:     scaler,
		points:     points,
	}, nil
}

// Metadata returns the artifact metadata.
func (m *KNN) Metadata() ModelMetadata {
	return m.meta
}

// Len returns the number of indexed points.
func (m *KNN) Len() int {
	return len(m.points)
}

// Predict returns, for each row, the indices of its n_neighbors closest points.
func (m *KNN) Predict(rows [][]float64) ([][]int, error) {
	return m.Kneighbors(rows, m.nNeighbors)
}

// Kneighbors returns, for each row, the indices of its k closest points ordered by
// increasing distance. Equal distances keep index order. k larger than the index is
// capped at its size.
func (m *KNN) Kneighbors(rows [][]float64, k int) ([][]int, error) {
	if k <= 0 {
		return nil, fmt.Errorf("neighbor query: k must be positive, got %d", k)
	}
	width := len(m.meta.Features)
	if width == 0 && len(m.points) > 0 {
		width = len(m.points[0])
	}
	if err := checkRows(rows, width); err != nil {
		return nil, err
	}
	if k > len(m.points) {
		k = len(m.points)
	}

	out := make([][]int, len(rows))
	for r, row := range rows {
		q := m.scaler.transform(row)
		order := make([]int, len(m.points))
		dist := make([]float64, len(m.points))
		for i, pt := range m.points {
			order[i] = i
			dist[i] = m.distance(q, pt)
		}
		sort.SliceStable(order, func(a, b int) bool {
			return dist[order[a]] < dist[order[b]]
		})
		out[r] = order[:k]
	}
	return out, nil
}

func (m *KNN) distance(a, b []float64) float64 {
	switch m.metric {
	case MetricManhattan:
		var d float64
		for i := range a {
			d += math.Abs(a[i] - b[i])
		}
		return d
	case MetricMinkowski:
		var d float64
		for i := range a {
			d += math.Pow(math.Abs(a[i]-b[i]), m.p)
		}
		return math.Pow(d, 1/m.p)
	default:
		var d float64
		for i := range a {
			diff := a[i] - b[i]
			d += diff * diff
		}
		return math.Sqrt(d)
	}
}
