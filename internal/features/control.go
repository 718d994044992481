package features

import (
	"salary-board/internal/schema"

	"golang.org/x/text/language"
)

// Control describes one slider of the advanced panel.
type Control struct {
	Name        string  `json:"name"`
	Min         float64 `json:"min"`
	Max         float64 `json:"max"`
	Step        float64 `json:"step"`
	Value       float64 `json:"value"`
	Integer     bool    `json:"integer"`
	Description string  `json:"description"`
}

const continuousStep = 0.01

// NewControl builds the slider for name showing value.
func NewControl(name string, value float64, lang language.Tag) Control {
	r := schema.MustBounds(name)
	c := Control{
		Name:        name,
		Min:         r.Min,
		Max:         r.Max,
		Step:        continuousStep,
		Value:       value,
		Description: schema.Describe(name, lang),
	}
	if schema.IsInteger(name) {
		c.Integer = true
		c.Step = 1
	}
	return c
}

// Catalog returns a control for every feature at its minimum, in schema order.
func Catalog(lang language.Tag) []Control {
	out := make([]Control, 0, schema.NumFeatures)
	for _, name := range schema.Names {
		out = append(out, NewControl(name, schema.MustBounds(name).Min, lang))
	}
	return out
}
