package viz

import (
	"bytes"
	"encoding/json"
	"math"
	"testing"

	"salary-board/internal/dataset"
	"salary-board/internal/schema"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func nearest() []dataset.Player {
	return []dataset.Player{
		{Name: "A", Salary: 3e6, Features: schema.Vector{1, 25, 1000, 20, 25, 3}},
		{Name: "B", Salary: 2e6, Features: schema.Vector{2, 26, 900, 15, 20, -1}},
		{Name: "C", Salary: 1e6, Features: schema.Vector{3, 27, 800, 10, 15, -4}},
	}
}

func leaders() []dataset.Leader {
	return []dataset.Leader{
		{Player: "Harden", Points: 2191, FieldGoalsAttempts: 1449, ThreePointsAttempts: 722, FreeThrowsAttempts: 727,
			FieldGoalsMade: 651, ThreePointsMade: 265, FreeThrowsMade: 624, GamesPlayed: 72},
		{Player: "Davis", Points: 2110, FieldGoalsAttempts: 1462, ThreePointsAttempts: 146, FreeThrowsAttempts: 602,
			FieldGoalsMade: 780, ThreePointsMade: 55, FreeThrowsMade: 495, GamesPlayed: 75},
		{Player: "Lillard", Points: 1962, FieldGoalsAttempts: 1451, ThreePointsAttempts: 636, FreeThrowsAttempts: 534,
			FieldGoalsMade: 621, ThreePointsMade: 227, FreeThrowsMade: 493, GamesPlayed: 73},
		{Player: "Nobody", Points: 0, GamesPlayed: 1},
	}
}

func TestSalaryBar(t *testing.T) {
	fig := SalaryBar(nearest())
	require.Len(t, fig.Data, 1)
	tr := fig.Data[0]
	assert.Equal(t, TypeBar, tr.Type)
	assert.Equal(t, []string{"A", "B", "C"}, tr.Labels)
	assert.Equal(t, []float64{3e6, 2e6, 1e6}, tr.Y)
	assert.NotEmpty(t, fig.Layout.Title.Text)
}

func TestSkillRadar(t *testing.T) {
	fig := SkillRadar(nearest())
	require.Len(t, fig.Data, 3)
	for i, tr := range fig.Data {
		assert.Equal(t, TypeScatterPolar, tr.Type)
		assert.Equal(t, nearest()[i].Name, tr.Name)
		assert.Equal(t, []string{"PER", "USG%", "BPM", "PER"}, tr.Theta)
		require.Len(t, tr.R, 4)
		assert.Equal(t, tr.R[0], tr.R[3], "line is closed")
	}
	assert.Equal(t, []float64{20, 25, 3, 20}, fig.Data[0].R)
	assert.NotNil(t, fig.Layout.Polar)
}

func TestPointLeaders(t *testing.T) {
	fig := PointLeaders(leaders()[:3])
	require.Len(t, fig.Data, 1)
	tr := fig.Data[0]
	assert.Equal(t, []string{"Harden", "Davis", "Lillard"}, tr.Labels)
	assert.Equal(t, "Reds", tr.Marker.ColorScale)
	assert.Equal(t, tr.Y, tr.Marker.Color)
}

func TestDeriveEfficiency(t *testing.T) {
	rows := DeriveEfficiency(leaders())
	require.Len(t, rows, 3, "players without attempts are skipped")

	h := rows[0]
	assert.Equal(t, 1449.0+722+727, h.TotalAttempts)
	assert.Equal(t, 651.0+265+624, h.TotalMade)
	assert.InDelta(t, 2191.0/2898, h.Ratio, 1e-12)
	assert.Equal(t, 72.0, h.GamesPlayed)
}

func TestScoringEfficiency(t *testing.T) {
	fig := ScoringEfficiency(leaders())
	require.Len(t, fig.Data, 2)

	points := fig.Data[0]
	assert.Equal(t, "markers", points.Mode)
	assert.Equal(t, "area", points.Marker.SizeMode)
	assert.InDelta(t, 2*75.0/1600, points.Marker.SizeRef, 1e-12)
	assert.Equal(t, []float64{72, 75, 73}, points.Marker.Size)
	assert.Equal(t, 10, points.Marker.ColorBar.Thickness)

	trend := fig.Data[1]
	assert.Equal(t, "lines", trend.Mode)
	assert.Equal(t, &Line{Color: "red", Width: 4, Dash: "dot"}, trend.Line)
	assert.Equal(t, []float64{1962, 2110, 2191}, trend.X, "trend line is drawn left to right")

	slope, intercept, ok := OLS(points.X, points.Y)
	require.True(t, ok)
	for i, x := range trend.X {
		assert.InDelta(t, intercept+slope*x, trend.Y[i], 1e-12)
	}
}

func TestScoringEfficiency_SinglePointHasNoTrend(t *testing.T) {
	fig := ScoringEfficiency(leaders()[:1])
	assert.Len(t, fig.Data, 1)
}

func TestOLS(t *testing.T) {
	slope, intercept, ok := OLS([]float64{1, 2, 3, 4}, []float64{3, 5, 7, 9})
	require.True(t, ok)
	assert.InDelta(t, 2, slope, 1e-12)
	assert.InDelta(t, 1, intercept, 1e-12)

	_, _, ok = OLS([]float64{1}, []float64{1})
	assert.False(t, ok)
	_, _, ok = OLS([]float64{2, 2}, []float64{1, 3})
	assert.False(t, ok)
}

func TestFigureJSON(t *testing.T) {
	data, err := json.Marshal(SalaryBar(nearest()))
	require.NoError(t, err)

	var out struct {
		Data []struct {
			Type string        `json:"type"`
			X    []interface{} `json:"x"`
			Y    []float64     `json:"y"`
		} `json:"data"`
		Layout struct {
			Title struct {
				Text string `json:"text"`
			} `json:"title"`
		} `json:"layout"`
	}
	require.NoError(t, json.Unmarshal(data, &out))
	require.Len(t, out.Data, 1)
	assert.Equal(t, []interface{}{"A", "B", "C"}, out.Data[0].X)

	data, err = json.Marshal(ScoringEfficiency(leaders()))
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, 2191.0, out.Data[0].X[0])
	assert.Contains(t, string(data), `"sizemin":0`)
}

func TestFigureJSON_MissingValues(t *testing.T) {
	players := nearest()
	players[1].Salary = math.NaN()
	players[1].Features[3] = math.NaN()

	data, err := json.Marshal(SalaryBar(players))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"y":[3000000,null,1000000]`)

	data, err = json.Marshal(SkillRadar(players))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"r":[null,20,-1,null]`)

	board := leaders()
	board[0].Points = math.NaN()
	for _, fig := range []Figure{PointLeaders(board), ScoringEfficiency(board)} {
		data, err = json.Marshal(fig)
		require.NoError(t, err, fig.Kind)
		assert.Contains(t, string(data), "null", fig.Kind)
	}
}

func TestLocalize(t *testing.T) {
	fig := PointLeaders(leaders())
	fig.Localize(language.Russian)
	assert.Equal(t, "20 лучших бомбардиров сезона", fig.Layout.Title.Text)

	fig.Localize(language.MustParse("en-GB"))
	assert.Equal(t, "Top 20 scorers of the season", fig.Layout.Title.Text)
}

func isPNG(b []byte) bool {
	return bytes.HasPrefix(b, []byte("\x89PNG"))
}

func TestRenderPNG(t *testing.T) {
	for _, fig := range []Figure{SalaryBar(nearest()), PointLeaders(leaders()), ScoringEfficiency(leaders())} {
		t.Run(fig.Kind, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, RenderPNG(fig, &buf, 640, 480))
			assert.True(t, isPNG(buf.Bytes()))
		})
	}
}

func TestRenderPNG_Unsupported(t *testing.T) {
	var buf bytes.Buffer
	assert.ErrorIs(t, RenderPNG(SkillRadar(nearest()), &buf, 0, 0), ErrUnsupportedFigure)
	assert.ErrorIs(t, RenderPNG(SalaryBar(nil), &buf, 0, 0), ErrEmptyFigure)
	assert.ErrorIs(t, RenderPNG(Figure{}, &buf, 0, 0), ErrEmptyFigure)
}
