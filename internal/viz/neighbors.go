package viz

import (
	"salary-board/internal/dataset"
	"salary-board/internal/schema"

	"golang.org/x/text/language"
)

// plasmaR is the reversed Plasma sequential palette.
var plasmaR = []string{
	"#f0f921", "#fdca26", "#fb9f3a", "#ed7953", "#d8576b",
	"#bd3786", "#9c179e", "#7201a8", "#46039f", "#0d0887",
}

// SkillAxes are the features drawn on the radar chart.
var SkillAxes = []string{schema.Efficiency, schema.Usage, schema.PlusMinus}

// SalaryBar charts the salaries of the nearest players in the given order.
func SalaryBar(players []dataset.Player) Figure {
	names := make([]string, len(players))
	salaries := make([]float64, len(players))
	for i, p := range players {
		names[i] = p.Name
		salaries[i] = p.Salary
	}

	fig := Figure{
		Kind: KindSalaries,
		Data: []Trace{{
			Type:   TypeBar,
			Labels: names,
			Y:      salaries,
			Marker: &Marker{Color: plasmaR[len(plasmaR)-1]},
		}},
		Layout: Layout{
			XAxis: &Axis{Title: Title{Text: schema.PlayerColumn}},
			YAxis: &Axis{Title: Title{Text: schema.SalaryColumn}},
		},
	}
	fig.Localize(language.English)
	return fig
}

// SkillRadar draws one closed polar line per player over the skill axes.
func SkillRadar(players []dataset.Player) Figure {
	theta := append(append([]string(nil), SkillAxes...), SkillAxes[0])

	traces := make([]Trace, 0, len(players))
	for i, p := range players {
		r := make([]float64, 0, len(theta))
		for _, name := range theta {
			r = append(r, p.Value(name))
		}
		traces = append(traces, Trace{
			Type:  TypeScatterPolar,
			Name:  p.Name,
			Mode:  "lines",
			R:     r,
			Theta: theta,
			Line:  &Line{Color: plasmaR[i%len(plasmaR)]},
		})
	}

	fig := Figure{
		Kind: KindSkills,
		Data: traces,
		Layout: Layout{
			Polar:      &Polar{RadialAxis: RadialAxis{Visible: true}},
			ShowLegend: true,
		},
	}
	fig.Localize(language.English)
	return fig
}
