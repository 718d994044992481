package app

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"salary-board/internal/dataset"
	"salary-board/internal/features"
	"salary-board/internal/ml"
	"salary-board/internal/schema"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

const playersCSV = `Player,Salary,NBA_DraftNumber,Age,MP,PER,USG%,BPM
Stephen Curry,34682550,7,29,1631,28.2,31,9.2
LeBron James,33285709,1,33,3026,28.6,31.6,8.6
Kevin Durant,25000000,2,29,2325,26,30.4,6.6
James Harden,28299399,3,28,2551,29.8,36.1,10.9
Zhou Qi,815615,43,22,87,0.6,12.9,-9.7
Jordan Bell,815615,38,23,627,14.9,14.5,1.3
Paul George,19508958,10,27,2891,18.3,27.1,2.6
`

const seasonCSV = `Player,Points,Field_Goals_Attempts,Three_Points_Attempts,Free_Throws_Attempts,Field_Goals_Made,Three_Points_Made,Free_Throws_Made,Games_Played
James Harden,2191,1449,722,727,651,265,624,72
Anthony Davis,2110,1462,146,602,780,55,495,75
Damian Lillard,1962,1451,636,534,621,227,493,73
`

type fakeAssets struct {
	players *dataset.PlayerTable
	season  *dataset.SeasonStats
	salary  *ml.LinearRegressor
	index   *ml.KNN
	err     error
}

func (f *fakeAssets) Players() (*dataset.PlayerTable, error)    { return f.players, nil }
func (f *fakeAssets) SeasonStats() (*dataset.SeasonStats, error) { return f.season, f.err }
func (f *fakeAssets) SalaryModel() (*ml.LinearRegressor, error)  { return f.salary, f.err }
func (f *fakeAssets) NeighborModel() (*ml.KNN, error)            { return f.index, f.err }

func newFixture(t *testing.T) *fakeAssets {
	t.Helper()
	players, err := dataset.LoadPlayers(strings.NewReader(playersCSV))
	require.NoError(t, err)
	season, err := dataset.LoadSeasonStats(strings.NewReader(seasonCSV))
	require.NoError(t, err)

	scaler := &ml.Scaler{Mean: make([]float64, schema.NumFeatures), Scale: []float64{20, 10, 1000, 10, 10, 10}}
	points := make([][]float64, 0, players.Len())
	rows, err := players.Rows([]int{0, 1, 2, 3, 4, 5, 6})
	require.NoError(t, err)
	for _, p := range rows {
		row := p.Features.Row()
		for i := range row {
			row[i] /= scaler.Scale[i]
		}
		points = append(points, row)
	}
	index, err := ml.NewKNN(ml.ModelMetadata{}, ml.DefaultNeighborQuery, ml.MetricEuclidean, 0, scaler, points)
	require.NoError(t, err)

	salary := ml.NewLinearRegressor(ml.ModelMetadata{}, nil, []float64{-0.02, -0.05, 0.0005, 0.02, 0.01, 0.01}, 14)
	return &fakeAssets{players: players, season: season, salary: salary, index: index}
}

type countingMetrics struct {
	ml.MockMetrics
	renders, renderErrors int
}

func (m *countingMetrics) RendersInc()      { m.renders++ }
func (m *countingMetrics) RenderErrorsInc() { m.renderErrors++ }

func TestRender_AbstractPlayerPredict(t *testing.T) {
	metrics := &countingMetrics{}
	a := New(newFixture(t), DefaultOptions(), metrics)

	page, err := a.Render(context.Background(), Input{
		Player:   schema.AbstractPlayer,
		Advanced: true,
		Predict:  true,
	})
	require.NoError(t, err)

	require.Len(t, page.Controls, 2)
	assert.Equal(t, schema.Age, page.Controls[0].Name)
	assert.Equal(t, schema.Minutes, page.Controls[1].Name)

	require.NotNil(t, page.Prediction)
	assert.GreaterOrEqual(t, page.Prediction.Salary, schema.DefaultFloorSalary)
	assert.LessOrEqual(t, len(page.Prediction.Neighbors), 5)
	assert.Contains(t, page.Prediction.Message, "Прогнозируемая зарплата для Абстрактный игрок: $")
	assert.Nil(t, page.League)
	assert.Equal(t, "ru", page.Language)

	assert.Equal(t, 1, metrics.renders)
	predictions, _, _, lookups := metrics.Counts()
	assert.Equal(t, 1, predictions)
	assert.Equal(t, 1, lookups)
}

func TestRender_KnownPlayerNeighbors(t *testing.T) {
	a := New(newFixture(t), DefaultOptions(), nil)

	page, err := a.Render(context.Background(), Input{Player: "Stephen Curry", Predict: true, Language: "en"})
	require.NoError(t, err)
	require.NotNil(t, page.Prediction)

	neighbors := page.Prediction.Neighbors
	require.Len(t, neighbors, 5)
	for i, p := range neighbors {
		assert.NotEqual(t, "Stephen Curry", p.Name)
		if i > 0 {
			assert.GreaterOrEqual(t, neighbors[i-1].Salary, p.Salary)
		}
	}
	assert.True(t, strings.HasPrefix(page.Prediction.Message, "Predicted salary for Stephen Curry: $"))
	assert.Len(t, page.Prediction.SalaryChart.Data, 1)
	assert.Len(t, page.Prediction.SkillChart.Data, 5)
}

func TestRender_KnownPlayerWithoutPanel(t *testing.T) {
	a := New(newFixture(t), DefaultOptions(), nil)

	page, err := a.Render(context.Background(), Input{
		Player:    "Zhou Qi",
		Overrides: map[string]float64{schema.Age: 40, schema.Efficiency: 99},
	})
	require.NoError(t, err)

	names := []string{page.Controls[0].Name, page.Controls[1].Name}
	assert.Equal(t, []string{schema.Age, schema.Minutes}, names)
	assert.Equal(t, 40.0, page.Features[schema.Age])
	assert.Equal(t, 0.6, page.Features[schema.Efficiency])
	assert.InDelta(t, 87, page.Features[schema.Minutes], 1e-9)
	assert.Nil(t, page.Prediction)
}

func TestRender_League(t *testing.T) {
	a := New(newFixture(t), DefaultOptions(), nil)

	page, err := a.Render(context.Background(), Input{ShowLeague: true})
	require.NoError(t, err)
	assert.Equal(t, schema.AbstractPlayer, page.Player)
	require.NotNil(t, page.League)
	assert.Len(t, page.League.Leaders, 3)
	assert.Equal(t, "James Harden", page.League.Leaders[0].Player)
	assert.Equal(t, "20 лучших бомбардиров сезона", page.League.LeadersChart.Layout.Title.Text)
	assert.Len(t, page.League.EfficiencyChart.Data, 2)
	assert.Nil(t, page.Prediction)
}

func TestRender_UnknownPlayer(t *testing.T) {
	metrics := &countingMetrics{}
	a := New(newFixture(t), DefaultOptions(), metrics)

	_, err := a.Render(context.Background(), Input{Player: "Michael Jordan", Predict: true})
	assert.ErrorIs(t, err, features.ErrUnknownPlayer)
	assert.True(t, IsInputError(err))
	assert.Equal(t, 1, metrics.renderErrors)
}

func TestRender_AssetFailure(t *testing.T) {
	fx := newFixture(t)
	fx.err = errors.New("corrupt")
	a := New(fx, DefaultOptions(), nil)

	_, err := a.Render(context.Background(), Input{Predict: true})
	assert.ErrorIs(t, err, ErrAssetUnavailable)
	assert.False(t, IsInputError(err))

	page, err := a.Render(context.Background(), Input{})
	require.NoError(t, err, "the bare page needs only the player table")
	assert.NotNil(t, page)
}

func TestRender_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	a := New(newFixture(t), DefaultOptions(), nil)
	_, err := a.Render(ctx, Input{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRender_Deterministic(t *testing.T) {
	a := New(newFixture(t), DefaultOptions(), nil)
	in := Input{Player: "LeBron James", Advanced: true, Controls: []string{schema.Usage}, Overrides: map[string]float64{schema.Usage: 20}, Predict: true}

	first, err := a.Render(context.Background(), in)
	require.NoError(t, err)
	second, err := a.Render(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestRender_MissingCellsStillEncode(t *testing.T) {
	fixture := newFixture(t)
	players, err := dataset.LoadPlayers(strings.NewReader(
		strings.Replace(playersCSV, "Jordan Bell,815615,38,23,627,14.9,", "Jordan Bell,815615,38,23,627,,", 1)))
	require.NoError(t, err)
	fixture.players = players
	season, err := dataset.LoadSeasonStats(strings.NewReader(seasonCSV + "Jordan Bell,120,,10,12,50,3,17,40\n"))
	require.NoError(t, err)
	fixture.season = season

	a := New(fixture, DefaultOptions(), nil)
	for _, in := range []Input{
		{Player: "Jordan Bell"},
		{Player: "Jordan Bell", Advanced: true, Controls: []string{schema.Efficiency}, Predict: true},
		{Player: "Zhou Qi", Predict: true},
		{Player: schema.AbstractPlayer, ShowLeague: true},
	} {
		page, err := a.Render(context.Background(), in)
		require.NoError(t, err, in.Player)

		data, err := json.Marshal(page)
		require.NoError(t, err, in.Player)
		if in.Player == "Jordan Bell" && !in.Advanced {
			assert.Contains(t, string(data), `"PER":null`)
		}
	}
}

func TestPlayers(t *testing.T) {
	a := New(newFixture(t), DefaultOptions(), nil)
	names, err := a.Players()
	require.NoError(t, err)
	assert.Equal(t, schema.AbstractPlayer, names[0])
	assert.Len(t, names, 8)
}

func TestSchema(t *testing.T) {
	a := New(newFixture(t), DefaultOptions(), nil)
	controls := a.Schema("en")
	require.Len(t, controls, schema.NumFeatures)
	assert.Equal(t, schema.Describe(schema.Age, language.English), controls[1].Description)
}

func TestNewRaisesNeighborQuery(t *testing.T) {
	opts := DefaultOptions()
	opts.NeighborQuery = 3
	a := New(newFixture(t), opts, nil)
	assert.Equal(t, 6, a.Options().NeighborQuery)
}

func TestFormatPrediction(t *testing.T) {
	assert.Equal(t, "Predicted salary for Zhou Qi: $512.50", FormatPrediction(language.English, "Zhou Qi", 512.5))
	assert.True(t, strings.HasPrefix(FormatPrediction(language.Russian, "Zhou Qi", 512.5), "Прогнозируемая зарплата для Zhou Qi: $"))
}
