package dataset

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"sort"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// Season statistics columns summed per player for the league charts.
const (
	PointsColumn              = "Points"
	FieldGoalsAttemptsColumn  = "Field_Goals_Attempts"
	ThreePointsAttemptsColumn = "Three_Points_Attempts"
	FreeThrowsAttemptsColumn  = "Free_Throws_Attempts"
	FieldGoalsMadeColumn      = "Field_Goals_Made"
	ThreePointsMadeColumn     = "Three_Points_Made"
	FreeThrowsMadeColumn      = "Free_Throws_Made"
	GamesPlayedColumn         = "Games_Played"
)

var countingColumns = []string{
	PointsColumn,
	FieldGoalsAttemptsColumn,
	ThreePointsAttemptsColumn,
	FreeThrowsAttemptsColumn,
	FieldGoalsMadeColumn,
	ThreePointsMadeColumn,
	FreeThrowsMadeColumn,
	GamesPlayedColumn,
}

// Leader is one player's season totals, summed over every row of that player.
type Leader struct {
	Player              string  `json:"player"`
	Points              float64 `json:"points"`
	FieldGoalsAttempts  float64 `json:"field_goals_attempts"`
	ThreePointsAttempts float64 `json:"three_points_attempts"`
	FreeThrowsAttempts  float64 `json:"free_throws_attempts"`
	FieldGoalsMade      float64 `json:"field_goals_made"`
	ThreePointsMade     float64 `json:"three_points_made"`
	FreeThrowsMade      float64 `json:"free_throws_made"`
	GamesPlayed         float64 `json:"games_played"`
}

// MarshalJSON writes non-finite totals as null.
func (l Leader) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Player              string      `json:"player"`
		Points              interface{} `json:"points"`
		FieldGoalsAttempts  interface{} `json:"field_goals_attempts"`
		ThreePointsAttempts interface{} `json:"three_points_attempts"`
		FreeThrowsAttempts  interface{} `json:"free_throws_attempts"`
		FieldGoalsMade      interface{} `json:"field_goals_made"`
		ThreePointsMade     interface{} `json:"three_points_made"`
		FreeThrowsMade      interface{} `json:"free_throws_made"`
		GamesPlayed         interface{} `json:"games_played"`
	}{
		Player:              l.Player,
		Points:              Finite(l.Points),
		FieldGoalsAttempts:  Finite(l.FieldGoalsAttempts),
		ThreePointsAttempts: Finite(l.ThreePointsAttempts),
		FreeThrowsAttempts:  Finite(l.FreeThrowsAttempts),
		FieldGoalsMade:      Finite(l.FieldGoalsMade),
		ThreePointsMade:     Finite(l.ThreePointsMade),
		FreeThrowsMade:      Finite(l.FreeThrowsMade),
		GamesPlayed:         Finite(l.GamesPlayed),
	})
}

// SeasonStats is the per player-season statistics table.
type SeasonStats struct {
	df dataframe.DataFrame
}

// LoadSeasonStats parses the season statistics CSV. All columns are kept; the
// counting columns and the player column must be present.
func LoadSeasonStats(r io.Reader) (*SeasonStats, error) {
	df := dataframe.ReadCSV(r,
		dataframe.HasHeader(true),
		dataframe.WithTypes(map[string]series.Type{"Player": series.String}),
	)
	if df.Err != nil {
		return nil, fmt.Errorf("read season stats: %w", df.Err)
	}

	have := make(map[string]bool)
	for _, name := range df.Names() {
		have[name] = true
	}
	required := append([]string{"Player"}, countingColumns...)
	for _, name := range required {
		if !have[name] {
			return nil, fmt.Errorf("season stats: missing column %q", name)
		}
	}

	// Blank counting cells count as zero in the per-player sums.
	for _, name := range countingColumns {
		vals := df.Col(name).Float()
		for i, v := range vals {
			if math.IsNaN(v) {
				vals[i] = 0
			}
		}
		df = df.Mutate(series.New(vals, series.Float, name))
	}
	if df.Err != nil {
		return nil, fmt.Errorf("read season stats: %w", df.Err)
	}

	return &SeasonStats{df: df}, nil
}

// Len returns the number of player-season rows.
func (s *SeasonStats) Len() int {
	return s.df.Nrow()
}

// PointLeaders groups rows by player, sums the counting statistics and returns the
// n players with the most points. Ties are broken by name.
func (s *SeasonStats) PointLeaders(n int) ([]Leader, error) {
	if n <= 0 || s.df.Nrow() == 0 {
		return nil, nil
	}

	groups := s.df.GroupBy("Player")
	if groups.Err != nil {
		return nil, fmt.Errorf("group season stats: %w", groups.Err)
	}

	aggs := make([]dataframe.AggregationType, len(countingColumns))
	for i := range aggs {
		aggs[i] = dataframe.Aggregation_SUM
	}
	sums := groups.Aggregation(aggs, countingColumns)
	if sums.Err != nil {
		return nil, fmt.Errorf("sum season stats: %w", sums.Err)
	}

	cols := make(map[string][]float64, len(countingColumns))
	for _, c := range countingColumns {
		name, err := sumColumn(sums, c)
		if err != nil {
			return nil, err
		}
		cols[c] = sums.Col(name).Float()
	}
	players := sums.Col("Player").Records()

	leaders := make([]Leader, len(players))
	for i, p := range players {
		leaders[i] = Leader{
			Player:              p,
			Points:              cols[PointsColumn][i],
			FieldGoalsAttempts:  cols[FieldGoalsAttemptsColumn][i],
			ThreePointsAttempts: cols[ThreePointsAttemptsColumn][i],
			FreeThrowsAttempts:  cols[FreeThrowsAttemptsColumn][i],
			FieldGoalsMade:      cols[FieldGoalsMadeColumn][i],
			ThreePointsMade:     cols[ThreePointsMadeColumn][i],
			FreeThrowsMade:      cols[FreeThrowsMadeColumn][i],
			GamesPlayed:         cols[GamesPlayedColumn][i],
		}
	}

	sort.SliceStable(leaders, func(i, j int) bool {
		if leaders[i].Points != leaders[j].Points {
			return leaders[i].Points > leaders[j].Points
		}
		return leaders[i].Player < leaders[j].Player
	})
	if len(leaders) > n {
		leaders = leaders[:n]
	}
	return leaders, nil
}

// sumColumn returns the name gota gives the summed column for base.
func sumColumn(df dataframe.DataFrame, base string) (string, error) {
	name := fmt.Sprintf("%s_%s", base, dataframe.Aggregation_SUM)
	for _, have := range df.Names() {
		if have == name {
			return name, nil
		}
	}
	return "", fmt.Errorf("season stats: no sum column for %q", base)
}
