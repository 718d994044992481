// Package viz describes the dashboard charts as Plotly figures. The figures are plain
// data: the page hands them to plotly.js and RenderPNG draws the cartesian ones on
// the server.
package viz

import (
	"encoding/json"
	"errors"

	"salary-board/internal/dataset"

	"golang.org/x/text/language"
)

// ErrUnsupportedFigure is returned when a figure cannot be drawn as a PNG.
var ErrUnsupportedFigure = errors.New("figure type not supported")

// ErrEmptyFigure is returned when a figure has nothing to draw.
var ErrEmptyFigure = errors.New("figure has no data")

// Chart kinds.
const (
	KindSalaries   = "salaries"
	KindSkills     = "skills"
	KindLeaders    = "leaders"
	KindEfficiency = "efficiency"
)

// Trace types.
const (
	TypeBar          = "bar"
	TypeScatter      = "scatter"
	TypeScatterPolar = "scatterpolar"
)

// Figure is a Plotly figure.
type Figure struct {
	Kind   string  `json:"-"`
	Data   []Trace `json:"data"`
	Layout Layout  `json:"layout"`
}

// Trace is one Plotly trace. Categorical axes use Labels, numeric ones use X.
type Trace struct {
	Type       string    `json:"type"`
	Name       string    `json:"name,omitempty"`
	Mode       string    `json:"mode,omitempty"`
	Labels     []string  `json:"-"`
	X          []float64 `json:"-"`
	Y          []float64 `json:"y,omitempty"`
	R          []float64 `json:"r,omitempty"`
	Theta      []string  `json:"theta,omitempty"`
	Text       []string  `json:"text,omitempty"`
	HoverInfo  string    `json:"hoverinfo,omitempty"`
	Marker     *Marker   `json:"marker,omitempty"`
	Line       *Line     `json:"line,omitempty"`
	ShowLegend *bool     `json:"showlegend,omitempty"`
}

// MarshalJSON writes Labels or X under the single Plotly "x" key. Non-finite
// values become null, which Plotly draws as a gap.
func (t Trace) MarshalJSON() ([]byte, error) {
	type plain Trace
	out := struct {
		plain
		X interface{} `json:"x,omitempty"`
		Y interface{} `json:"y,omitempty"`
		R interface{} `json:"r,omitempty"`
	}{plain: plain(t)}
	switch {
	case t.Labels != nil:
		out.X = t.Labels
	case len(t.X) > 0:
		out.X = dataset.Finites(t.X)
	}
	if len(t.Y) > 0 {
		out.Y = dataset.Finites(t.Y)
	}
	if len(t.R) > 0 {
		out.R = dataset.Finites(t.R)
	}
	return json.Marshal(out)
}

type Marker struct {
	Color      interface{} `json:"color,omitempty"`
	ColorScale string      `json:"colorscale,omitempty"`
	ShowScale  bool        `json:"showscale,omitempty"`
	ColorBar   *ColorBar   `json:"colorbar,omitempty"`
	Size       []float64   `json:"size,omitempty"`
	SizeRef    float64     `json:"sizeref,omitempty"`
	SizeMode   string      `json:"sizemode,omitempty"`
	SizeMin    *float64    `json:"sizemin,omitempty"`
}

// MarshalJSON writes non-finite colors and sizes as null.
func (m Marker) MarshalJSON() ([]byte, error) {
	type plain Marker
	out := struct {
		plain
		Color interface{} `json:"color,omitempty"`
		Size  interface{} `json:"size,omitempty"`
	}{plain: plain(m), Color: m.Color}
	if c, ok := m.Color.([]float64); ok && len(c) > 0 {
		out.Color = dataset.Finites(c)
	}
	if len(m.Size) > 0 {
		out.Size = dataset.Finites(m.Size)
	}
	return json.Marshal(out)
}

type ColorBar struct {
	Title         string `json:"title,omitempty"`
	ThicknessMode string `json:"thicknessmode,omitempty"`
	Thickness     int    `json:"thickness,omitempty"`
}

type Line struct {
	Color string  `json:"color,omitempty"`
	Width float64 `json:"width,omitempty"`
	Dash  string  `json:"dash,omitempty"`
}

type Layout struct {
	Title      Title  `json:"title"`
	XAxis      *Axis  `json:"xaxis,omitempty"`
	YAxis      *Axis  `json:"yaxis,omitempty"`
	Polar      *Polar `json:"polar,omitempty"`
	ShowLegend bool   `json:"showlegend"`
}

type Title struct {
	Text string `json:"text"`
}

type Axis struct {
	Title Title `json:"title"`
}

type Polar struct {
	RadialAxis RadialAxis `json:"radialaxis"`
}

type RadialAxis struct {
	Visible bool `json:"visible"`
}

var titles = map[language.Tag]map[string]string{
	language.Russian: {
		KindSalaries:   "Зарплаты топ-5 ближайших по характеристикам игроков",
		KindSkills:     "Распределение навыков для ближайших игроков",
		KindLeaders:    "20 лучших бомбардиров сезона",
		KindEfficiency: "Влияние соотношения очков и попыток на счет игры",
	},
	language.English: {
		KindSalaries:   "Salaries of the five most similar players",
		KindSkills:     "Skill profile of the nearest players",
		KindLeaders:    "Top 20 scorers of the season",
		KindEfficiency: "Points per attempt against season points",
	},
}

var titleLanguages = []language.Tag{language.Russian, language.English}

var titleMatcher = language.NewMatcher(titleLanguages)

// Localize sets the figure title in the closest supported language.
func (f *Figure) Localize(lang language.Tag) {
	_, i, _ := titleMatcher.Match(lang)
	if t, ok := titles[titleLanguages[i]][f.Kind]; ok {
		f.Layout.Title.Text = t
	}
}

func boolPtr(b bool) *bool { return &b }

func floatPtr(f float64) *float64 { return &f }
