// Package features builds model input vectors from a selected player and the
// slider controls of the advanced panel.
package features

import (
	"errors"
	"fmt"
	"math"

	"salary-board/internal/dataset"
	"salary-board/internal/schema"

	"golang.org/x/text/language"
)

var (
	// ErrUnknownPlayer is returned for a name that is neither in the player table nor
	// the abstract player.
	ErrUnknownPlayer = errors.New("unknown player")
	// ErrUnknownFeature is returned when a control names a feature outside the schema.
	ErrUnknownFeature = errors.New("unknown feature")
)

// Selection is the user input that determines the feature vector.
type Selection struct {
	Player   string
	Advanced bool
	// Controls lists the features exposed in the advanced panel. Nil means the
	// default set. Ignored when Advanced is false.
	Controls  []string
	Overrides map[string]float64
}

// Result is the outcome of building a vector.
type Result struct {
	// Initial holds the starting values with minutes per game.
	Initial schema.Vector
	// Controls are the adjustable features with their final values.
	Controls []Control
	// Vector is the model input with season-total minutes.
	Vector schema.Vector
}

// Initial returns the starting values for player with minutes expressed per game.
// The abstract player starts at every minimum bound. For duplicated names the first
// row wins.
func Initial(table *dataset.PlayerTable, player string) (schema.Vector, error) {
	v, err := stored(table, player)
	if err != nil {
		return schema.Vector{}, err
	}
	v[schema.MinutesIndex] /= schema.SeasonGames
	return v, nil
}

// stored returns the player's row as loaded, minutes per season.
func stored(table *dataset.PlayerTable, player string) (schema.Vector, error) {
	if player == schema.AbstractPlayer {
		return schema.Minimums(), nil
	}
	p, ok := table.Lookup(player)
	if !ok {
		return schema.Vector{}, fmt.Errorf("%w: %q", ErrUnknownPlayer, player)
	}
	return p.Features, nil
}

// Exposed returns the features the user may adjust for sel.
func Exposed(sel Selection) []string {
	if !sel.Advanced || sel.Controls == nil {
		out := make([]string, len(schema.DefaultControls))
		copy(out, schema.DefaultControls)
		return out
	}
	return sel.Controls
}

// Build resolves sel into controls and a model input vector. Overrides apply only to
// exposed features; every other feature keeps the player's stored value.
func Build(table *dataset.PlayerTable, sel Selection, lang language.Tag) (*Result, error) {
	season, err := stored(table, sel.Player)
	if err != nil {
		return nil, err
	}
	initial := season
	initial[schema.MinutesIndex] /= schema.SeasonGames

	names, err := dedupe(Exposed(sel))
	if err != nil {
		return nil, err
	}

	res := &Result{Initial: initial, Vector: initial}
	for _, name := range names {
		value := Adjust(name, initial.Get(name))
		if v, ok := sel.Overrides[name]; ok && !math.IsNaN(v) {
			value = Adjust(name, v)
		}
		res.Vector.Set(name, value)
		res.Controls = append(res.Controls, NewControl(name, value, lang))
	}

	// Unchanged minutes go back as the stored season total.
	if res.Vector[schema.MinutesIndex] == initial[schema.MinutesIndex] {
		res.Vector[schema.MinutesIndex] = season[schema.MinutesIndex]
	} else {
		res.Vector[schema.MinutesIndex] *= schema.SeasonGames
	}
	return res, nil
}

// Adjust clamps v to the feature bounds and rounds integer features. A missing
// value starts at the minimum.
func Adjust(name string, v float64) float64 {
	r := schema.MustBounds(name)
	if math.IsNaN(v) {
		return r.Min
	}
	v = r.Clamp(v)
	if schema.IsInteger(name) {
		v = math.Round(v)
	}
	return v
}

func dedupe(names []string) ([]string, error) {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, name := range names {
		if _, ok := schema.Index(name); !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownFeature, name)
		}
		if seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	return out, nil
}
