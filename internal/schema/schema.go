// Package schema is the single source of truth for the feature space shared by the
// dashboard controls, the player table and both trained models.
//
// The order of Names is the column order expected by the model artifacts. Any code
// that builds a model input row must go through Vector so the order cannot drift.
package schema

import "fmt"

// Feature column names as they appear in the player CSV and the model artifacts.
const (
	DraftNumber = "NBA_DraftNumber"
	Age         = "Age"
	Minutes     = "MP"
	Efficiency  = "PER"
	Usage       = "USG%"
	PlusMinus   = "BPM"
)

// Non-feature columns of the player table.
const (
	PlayerColumn = "Player"
	SalaryColumn = "Salary"
)

// NumFeatures is the width of every model input row.
const NumFeatures = 6

// Names lists the features in model input order.
var Names = [NumFeatures]string{DraftNumber, Age, Minutes, Efficiency, Usage, PlusMinus}

// Positions of the features that get special treatment.
const (
	AgeIndex     = 1
	MinutesIndex = 2
)

const (
	// SeasonGames converts season-total minutes to minutes per game and back.
	SeasonGames = 82

	// AgePivot is the age the salary model was trained to measure distance from.
	AgePivot = 30

	// DefaultFloorSalary is the minimum salary a prediction may report.
	DefaultFloorSalary = 46080.0

	// AbstractPlayer is the selector entry meaning "no real player, use defaults".
	AbstractPlayer = "Abstract player"
)

// DefaultControls are the features exposed as sliders when the advanced panel opens.
var DefaultControls = []string{Age, Minutes}

// Range is an inclusive slider range.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Clamp limits v to the range.
func (r Range) Clamp(v float64) float64 {
	if v < r.Min {
		return r.Min
	}
	if v > r.Max {
		return r.Max
	}
	return v
}

var bounds = map[string]Range{
	DraftNumber: {Min: 1, Max: 62},
	Age:         {Min: 18, Max: 45},
	Minutes:     {Min: 0, Max: 48},
	Efficiency:  {Min: -50, Max: 150},
	Usage:       {Min: 0, Max: 60},
	PlusMinus:   {Min: -60, Max: 60},
}

var integer = map[string]bool{
	DraftNumber: true,
	Age:         true,
}

// Vector is one model input row in schema order.
type Vector [NumFeatures]float64

// Row returns the vector as a slice suitable for a model input batch.
func (v Vector) Row() []float64 {
	row := make([]float64, NumFeatures)
	copy(row, v[:])
	return row
}

// Get returns the value of the named feature.
func (v Vector) Get(name string) float64 {
	return v[MustIndex(name)]
}

// Set assigns the value of the named feature.
func (v *Vector) Set(name string, value float64) {
	v[MustIndex(name)] = value
}

// Index returns the position of name in the schema.
func Index(name string) (int, bool) {
	for i, n := range Names {
		if n == name {
			return i, true
		}
	}
	return -1, false
}

// MustIndex is Index for names known at compile time. Unknown names panic.
func MustIndex(name string) int {
	i, ok := Index(name)
	if !ok {
		panic(fmt.Sprintf("schema: unknown feature %q", name))
	}
	return i
}

// Bounds returns the slider range of a feature.
func Bounds(name string) (Range, bool) {
	r, ok := bounds[name]
	return r, ok
}

// MustBounds is Bounds for names known at compile time. Unknown names panic.
func MustBounds(name string) Range {
	r, ok := bounds[name]
	if !ok {
		panic(fmt.Sprintf("schema: no bounds for feature %q", name))
	}
	return r
}

// IsInteger reports whether a feature only takes whole-number values.
func IsInteger(name string) bool {
	return integer[name]
}

// Minimums returns the vector with every feature at its lower bound.
func Minimums() Vector {
	var v Vector
	for i, n := range Names {
		v[i] = bounds[n].Min
	}
	return v
}

// Columns returns the player table columns kept after loading.
func Columns() []string {
	cols := make([]string, 0, NumFeatures+2)
	cols = append(cols, Names[:]...)
	return append(cols, PlayerColumn, SalaryColumn)
}

// Equal reports whether names matches the schema exactly, order included.
func Equal(names []string) bool {
	if len(names) != NumFeatures {
		return false
	}
	for i, n := range names {
		if Names[i] != n {
			return false
		}
	}
	return true
}
