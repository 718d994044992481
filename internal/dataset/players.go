// Package dataset loads the static tables the dashboard reads: the player salary
// table that backs predictions and neighbor lookups, and the season statistics table
// used for league-wide charts.
//
// Tables are parsed once with gota and materialized into plain structs. They are
// never modified after loading, so row offsets stay valid for the process lifetime.
package dataset

import (
	"encoding/json"
	"fmt"
	"io"
	"math"

	"salary-board/internal/schema"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// Player is one row of the player table.
type Player struct {
	Name     string
	Features schema.Vector
	Salary   float64
}

// Value returns the stored value of a schema feature.
func (p Player) Value(name string) float64 {
	return p.Features.Get(name)
}

// MarshalJSON writes the row flat, feature columns keyed by schema name.
func (p Player) MarshalJSON() ([]byte, error) {
	m := make(map[string]interface{}, schema.NumFeatures+2)
	m["player"] = p.Name
	m["salary"] = Finite(p.Salary)
	for i, name := range schema.Names {
		m[name] = Finite(p.Features[i])
	}
	return json.Marshal(m)
}

// UnmarshalJSON reads the flat form written by MarshalJSON.
func (p *Player) UnmarshalJSON(data []byte) error {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	var out Player
	if raw, ok := m["player"]; ok {
		if err := json.Unmarshal(raw, &out.Name); err != nil {
			return fmt.Errorf("player name: %w", err)
		}
	}
	if raw, ok := m["salary"]; ok {
		if err := unmarshalFloat(raw, &out.Salary); err != nil {
			return fmt.Errorf("salary: %w", err)
		}
	}
	for i, name := range schema.Names {
		raw, ok := m[name]
		if !ok {
			continue
		}
		if err := unmarshalFloat(raw, &out.Features[i]); err != nil {
			return fmt.Errorf("feature %s: %w", name, err)
		}
	}
	*p = out
	return nil
}

func unmarshalFloat(raw json.RawMessage, dst *float64) error {
	if string(raw) == "null" {
		*dst = math.NaN()
		return nil
	}
	return json.Unmarshal(raw, dst)
}

// PlayerTable is the immutable player salary table.
type PlayerTable struct {
	rows  []Player
	names []string
}

// LoadPlayers parses the player CSV and keeps the schema features, the player name
// and the salary.
func LoadPlayers(r io.Reader) (*PlayerTable, error) {
	df := dataframe.ReadCSV(r,
		dataframe.HasHeader(true),
		dataframe.WithTypes(map[string]series.Type{schema.PlayerColumn: series.String}),
	)
	if df.Err != nil {
		return nil, fmt.Errorf("read player table: %w", df.Err)
	}

	df = df.Select(schema.Columns())
	if df.Err != nil {
		return nil, fmt.Errorf("select player columns: %w", df.Err)
	}

	n := df.Nrow()
	rows := make([]Player, n)
	names := df.Col(schema.PlayerColumn).Records()
	salaries := df.Col(schema.SalaryColumn).Float()
	for i := range rows {
		rows[i].Name = names[i]
		rows[i].Salary = salaries[i]
	}
	for j, feature := range schema.Names {
		values := df.Col(feature).Float()
		for i := range rows {
			rows[i].Features[j] = values[i]
		}
	}

	return newPlayerTable(rows), nil
}

// NewPlayerTable builds a table from rows already in memory.
func NewPlayerTable(rows []Player) *PlayerTable {
	cp := make([]Player, len(rows))
	copy(cp, rows)
	return newPlayerTable(cp)
}

func newPlayerTable(rows []Player) *PlayerTable {
	seen := make(map[string]bool, len(rows))
	names := make([]string, 0, len(rows))
	for _, p := range rows {
		if seen[p.Name] {
			continue
		}
		seen[p.Name] = true
		names = append(names, p.Name)
	}
	return &PlayerTable{rows: rows, names: names}
}

// Len returns the number of rows.
func (t *PlayerTable) Len() int {
	return len(t.rows)
}

// Names returns the distinct player names in table order.
func (t *PlayerTable) Names() []string {
	out := make([]string, len(t.names))
	copy(out, t.names)
	return out
}

// Lookup returns the first row for the named player.
func (t *PlayerTable) Lookup(name string) (Player, bool) {
	for _, p := range t.rows {
		if p.Name == name {
			return p, true
		}
	}
	return Player{}, false
}

// Rows returns the rows at the given offsets, in the given order.
func (t *PlayerTable) Rows(offsets []int) ([]Player, error) {
	out := make([]Player, 0, len(offsets))
	for _, i := range offsets {
		if i < 0 || i >= len(t.rows) {
			return nil, fmt.Errorf("row offset %d out of range [0,%d)", i, len(t.rows))
		}
		out = append(out, t.rows[i])
	}
	return out, nil
}
