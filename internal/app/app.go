// Package app runs one interaction cycle of the dashboard: from the user's input it
// derives the feature vector and, on request, the salary prediction, the nearest
// players and the league charts. Every cycle starts from scratch; nothing is kept
// between requests except the cached assets.
package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"salary-board/internal/dataset"
	"salary-board/internal/features"
	"salary-board/internal/ml"
	"salary-board/internal/schema"
	"salary-board/internal/viz"

	"github.com/rs/zerolog/log"
	"golang.org/x/text/language"
)

// ErrAssetUnavailable wraps failures to load a table or a model.
var ErrAssetUnavailable = errors.New("asset unavailable")

// Assets provides the cached tables and models.
type Assets interface {
	Players() (*dataset.PlayerTable, error)
	SeasonStats() (*dataset.SeasonStats, error)
	SalaryModel() (*ml.LinearRegressor, error)
	NeighborModel() (*ml.KNN, error)
}

// MetricsInterface defines metrics methods needed by the app
type MetricsInterface interface {
	ml.MetricsInterface
	RendersInc()
	RenderErrorsInc()
}

// Options tune a render cycle.
type Options struct {
	FloorSalary   float64
	NeighborQuery int
	NeighborLimit int
	LeaderCount   int
	Language      language.Tag
}

// DefaultOptions returns the stock settings.
func DefaultOptions() Options {
	return Options{
		FloorSalary:   schema.DefaultFloorSalary,
		NeighborQuery: ml.DefaultNeighborQuery,
		NeighborLimit: ml.DefaultNeighborLimit,
		LeaderCount:   20,
		Language:      language.Russian,
	}
}

// Input is the complete UI state of one interaction.
type Input struct {
	Player     string             `json:"player"`
	Advanced   bool               `json:"advanced"`
	Controls   []string           `json:"controls,omitempty"`
	Overrides  map[string]float64 `json:"overrides,omitempty"`
	Predict    bool               `json:"predict"`
	ShowLeague bool               `json:"show_league"`
	Language   string             `json:"language,omitempty"`
}

// Page is everything the dashboard shows for an Input.
type Page struct {
	Player     string             `json:"player"`
	Advanced   bool               `json:"advanced"`
	Language   string             `json:"language"`
	Controls   []features.Control `json:"controls"`
	Features   map[string]float64 `json:"features"`
	Prediction *Prediction        `json:"prediction,omitempty"`
	League     *League            `json:"league,omitempty"`
}

// MarshalJSON writes missing feature values as null.
func (p Page) MarshalJSON() ([]byte, error) {
	type plain Page
	out := struct {
		plain
		Features map[string]interface{} `json:"features"`
	}{plain: plain(p), Features: make(map[string]interface{}, len(p.Features))}
	for name, v := range p.Features {
		out.Features[name] = dataset.Finite(v)
	}
	return json.Marshal(out)
}

// Prediction is the output of the predict action.
type Prediction struct {
	Salary      float64          `json:"salary"`
	Message     string           `json:"message"`
	Neighbors   []dataset.Player `json:"neighbors"`
	SalaryChart viz.Figure       `json:"salary_chart"`
	SkillChart  viz.Figure       `json:"skill_chart"`
}

// League holds the league-wide statistics.
type League struct {
	Leaders         []dataset.Leader `json:"leaders"`
	LeadersChart    viz.Figure       `json:"leaders_chart"`
	EfficiencyChart viz.Figure       `json:"efficiency_chart"`
}

// App renders pages.
type App struct {
	assets  Assets
	opts    Options
	metrics MetricsInterface
}

func New(assets Assets, opts Options, metrics MetricsInterface) *App {
	if opts.NeighborQuery <= opts.NeighborLimit {
		opts.NeighborQuery = opts.NeighborLimit + 1
	}
	return &App{assets: assets, opts: opts, metrics: metrics}
}

// Options returns the settings in use.
func (a *App) Options() Options {
	return a.opts
}

// Players returns the selector entries: the abstract player followed by every
// distinct name in table order.
func (a *App) Players() ([]string, error) {
	table, err := a.assets.Players()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAssetUnavailable, err)
	}
	return append([]string{schema.AbstractPlayer}, table.Names()...), nil
}

// Schema returns a control for every feature, described in lang.
func (a *App) Schema(lang string) []features.Control {
	return features.Catalog(a.language(lang))
}

// Render derives the page for in.
func (a *App) Render(ctx context.Context, in Input) (*Page, error) {
	start := time.Now()
	page, err := a.render(ctx, in)
	if a.metrics != nil {
		a.metrics.RendersInc()
		if err != nil {
			a.metrics.RenderErrorsInc()
		}
	}
	if err != nil {
		log.Debug().Err(err).Str("player", in.Player).Msg("Render failed")
		return nil, err
	}
	log.Debug().Str("player", in.Player).Bool("predict", in.Predict).Bool("league", in.ShowLeague).
		Dur("elapsed", time.Since(start)).Msg("Page rendered")
	return page, nil
}

func (a *App) render(ctx context.Context, in Input) (*Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	lang := a.language(in.Language)

	table, err := a.assets.Players()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAssetUnavailable, err)
	}

	if in.Player == "" {
		in.Player = schema.AbstractPlayer
	}
	res, err := features.Build(table, features.Selection{
		Player:    in.Player,
		Advanced:  in.Advanced,
		Controls:  in.Controls,
		Overrides: in.Overrides,
	}, lang)
	if err != nil {
		return nil, err
	}

	page := &Page{
		Player:   in.Player,
		Advanced: in.Advanced,
		Language: lang.String(),
		Controls: res.Controls,
		Features: make(map[string]float64, schema.NumFeatures),
	}
	for i, name := range schema.Names {
		page.Features[name] = res.Vector[i]
	}

	if in.Predict {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page.Prediction, err = a.predict(table, in.Player, res.Vector, lang)
		if err != nil {
			return nil, err
		}
	}

	if in.ShowLeague {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page.League, err = a.league(lang)
		if err != nil {
			return nil, err
		}
	}

	return page, nil
}

func (a *App) predict(table *dataset.PlayerTable, player string, v schema.Vector, lang language.Tag) (*Prediction, error) {
	index, err := a.assets.NeighborModel()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAssetUnavailable, err)
	}
	finder, err := ml.NewNeighborFinder(index, table, a.opts.NeighborQuery, a.opts.NeighborLimit, a.metrics)
	if err != nil {
		return nil, err
	}
	neighbors, err := finder.Nearest(player, v)
	if err != nil {
		return nil, err
	}

	model, err := a.assets.SalaryModel()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAssetUnavailable, err)
	}
	salary, err := ml.NewSalaryPredictorWithMetrics(model, a.opts.FloorSalary, a.metrics).Predict(v)
	if err != nil {
		return nil, err
	}

	salaryChart := viz.SalaryBar(neighbors)
	salaryChart.Localize(lang)
	skillChart := viz.SkillRadar(neighbors)
	skillChart.Localize(lang)

	return &Prediction{
		Salary:      salary,
		Message:     FormatPrediction(lang, schema.PlayerLabel(player, lang), salary),
		Neighbors:   neighbors,
		SalaryChart: salaryChart,
		SkillChart:  skillChart,
	}, nil
}

func (a *App) league(lang language.Tag) (*League, error) {
	stats, err := a.assets.SeasonStats()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAssetUnavailable, err)
	}
	leaders, err := stats.PointLeaders(a.opts.LeaderCount)
	if err != nil {
		return nil, err
	}

	leadersChart := viz.PointLeaders(leaders)
	leadersChart.Localize(lang)
	efficiencyChart := viz.ScoringEfficiency(leaders)
	efficiencyChart.Localize(lang)

	return &League{
		Leaders:         leaders,
		LeadersChart:    leadersChart,
		EfficiencyChart: efficiencyChart,
	}, nil
}

func (a *App) language(pref string) language.Tag {
	if pref == "" {
		return schema.MatchLanguage(a.opts.Language.String())
	}
	return schema.MatchLanguage(pref, a.opts.Language.String())
}

// IsInputError reports whether err was caused by the request rather than the server.
func IsInputError(err error) bool {
	return errors.Is(err, features.ErrUnknownPlayer) || errors.Is(err, features.ErrUnknownFeature)
}
