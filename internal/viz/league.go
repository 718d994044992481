package viz

import (
	"math"
	"sort"

	"salary-board/internal/dataset"

	"golang.org/x/text/language"
)

// Efficiency holds the derived scoring columns of one leader.
type Efficiency struct {
	Player        string  `json:"player"`
	Points        float64 `json:"points"`
	TotalAttempts float64 `json:"total_attempts"`
	TotalMade     float64 `json:"total_made"`
	Ratio         float64 `json:"points_attempt_ratio"`
	GamesPlayed   float64 `json:"games_played"`
}

// DeriveEfficiency sums attempts and makes over field goals, threes and free throws
// and divides points by attempts. Players without attempts are skipped.
func DeriveEfficiency(leaders []dataset.Leader) []Efficiency {
	out := make([]Efficiency, 0, len(leaders))
	for _, l := range leaders {
		attempts := l.FieldGoalsAttempts + l.ThreePointsAttempts + l.FreeThrowsAttempts
		if attempts <= 0 {
			continue
		}
		out = append(out, Efficiency{
			Player:        l.Player,
			Points:        l.Points,
			TotalAttempts: attempts,
			TotalMade:     l.FieldGoalsMade + l.ThreePointsMade + l.FreeThrowsMade,
			Ratio:         l.Points / attempts,
			GamesPlayed:   l.GamesPlayed,
		})
	}
	return out
}

// PointLeaders charts season points per leader, coloured on the Reds scale.
func PointLeaders(leaders []dataset.Leader) Figure {
	names := make([]string, len(leaders))
	points := make([]float64, len(leaders))
	for i, l := range leaders {
		names[i] = l.Player
		points[i] = l.Points
	}

	fig := Figure{
		Kind: KindLeaders,
		Data: []Trace{{
			Type:   TypeBar,
			Labels: names,
			Y:      points,
			Marker: &Marker{
				Color:      points,
				ColorScale: "Reds",
				ShowScale:  true,
				ColorBar:   &ColorBar{Title: dataset.PointsColumn},
			},
		}},
		Layout: Layout{
			XAxis: &Axis{Title: Title{Text: "Player"}},
			YAxis: &Axis{Title: Title{Text: dataset.PointsColumn}},
		},
	}
	fig.Localize(language.English)
	return fig
}

// bubbleMaxSize is the diameter in pixels of the largest bubble.
const bubbleMaxSize = 40

// ScoringEfficiency plots points per attempt against points, bubble area scaled by
// games played, with an ordinary least squares trend line.
func ScoringEfficiency(leaders []dataset.Leader) Figure {
	rows := DeriveEfficiency(leaders)

	x := make([]float64, len(rows))
	y := make([]float64, len(rows))
	size := make([]float64, len(rows))
	names := make([]string, len(rows))
	maxSize := 0.0
	for i, r := range rows {
		x[i], y[i], size[i], names[i] = r.Points, r.Ratio, r.GamesPlayed, r.Player
		maxSize = math.Max(maxSize, r.GamesPlayed)
	}

	marker := &Marker{
		Color:      y,
		ColorScale: "Reds",
		ShowScale:  true,
		ColorBar:   &ColorBar{ThicknessMode: "pixels", Thickness: 10},
		Size:       size,
		SizeMode:   "area",
		SizeMin:    floatPtr(0),
	}
	if maxSize > 0 {
		marker.SizeRef = 2 * maxSize / (bubbleMaxSize * bubbleMaxSize)
	}

	fig := Figure{
		Kind: KindEfficiency,
		Data: []Trace{{
			Type:      TypeScatter,
			Mode:      "markers",
			X:         x,
			Y:         y,
			Text:      names,
			HoverInfo: "text+x+y",
			Marker:    marker,
		}},
		Layout: Layout{
			XAxis: &Axis{Title: Title{Text: dataset.PointsColumn}},
			YAxis: &Axis{Title: Title{Text: "Points_Attempt_Ratio"}},
		},
	}

	if slope, intercept, ok := OLS(x, y); ok {
		tx := append([]float64(nil), x...)
		sort.Float64s(tx)
		ty := make([]float64, len(tx))
		for i, v := range tx {
			ty[i] = intercept + slope*v
		}
		fig.Data = append(fig.Data, Trace{
			Type:       TypeScatter,
			Name:       "OLS trendline",
			Mode:       "lines",
			X:          tx,
			Y:          ty,
			Line:       &Line{Color: "red", Width: 4, Dash: "dot"},
			ShowLegend: boolPtr(false),
		})
	}

	fig.Localize(language.English)
	return fig
}

// OLS fits y = intercept + slope*x by ordinary least squares. ok is false with fewer
// than two points or no spread in x.
func OLS(x, y []float64) (slope, intercept float64, ok bool) {
	n := len(x)
	if n < 2 || n != len(y) {
		return 0, 0, false
	}
	var mx, my float64
	for i := range x {
		mx += x[i]
		my += y[i]
	}
	mx /= float64(n)
	my /= float64(n)

	var sxy, sxx float64
	for i := range x {
		dx := x[i] - mx
		sxy += dx * (y[i] - my)
		sxx += dx * dx
	}
	if sxx == 0 {
		return 0, 0, false
	}
	slope = sxy / sxx
	return slope, my - slope*mx, true
}
