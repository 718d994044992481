package main

import (
	"fmt"
	"sort"
	"strings"

	"salary-board/internal/app"
	"salary-board/internal/ml"
	"salary-board/internal/schema"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	headerColor = "#7D56F4"
	accentColor = "#04B575"
	dimColor    = "#888888"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(accentColor))
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(headerColor)).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	noteStyle   = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color(dimColor))
)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color(dimColor))).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers(headers...)
}

// amounts formats dollar figures with grouped thousands.
var amounts = message.NewPrinter(language.English)

func money(v float64) string {
	return "$" + amounts.Sprintf("%.2f", v)
}

func renderPrediction(page *app.Page) string {
	var b strings.Builder

	features := newTable("Feature", "Value")
	for _, name := range schema.Names {
		features.Row(name, fmt.Sprintf("%g", page.Features[name]))
	}
	b.WriteString(features.String())
	b.WriteString("\n")

	if page.Prediction == nil {
		return b.String()
	}
	b.WriteString(titleStyle.Render(page.Prediction.Message))
	b.WriteString("\n")

	neighbors := newTable("Player", "Salary", schema.Efficiency, schema.Usage, schema.PlusMinus)
	for _, p := range page.Prediction.Neighbors {
		neighbors.Row(p.Name, money(p.Salary),
			fmt.Sprintf("%.1f", p.Value(schema.Efficiency)),
			fmt.Sprintf("%.1f", p.Value(schema.Usage)),
			fmt.Sprintf("%.1f", p.Value(schema.PlusMinus)))
	}
	b.WriteString(neighbors.String())
	b.WriteString("\n")
	b.WriteString(noteStyle.Render("PER, USG%, BPM: https://www.basketball-reference.com/about/glossary.html"))
	return b.String()
}

func renderLeague(page *app.Page) string {
	if page.League == nil {
		return noteStyle.Render("no league data")
	}
	t := newTable("#", "Player", "Points", "FGA", "FTA", "Games")
	for i, l := range page.League.Leaders {
		t.Row(fmt.Sprint(i+1), l.Player, fmt.Sprintf("%.0f", l.Points),
			fmt.Sprintf("%.0f", l.FieldGoalsAttempts), fmt.Sprintf("%.0f", l.FreeThrowsAttempts),
			fmt.Sprintf("%.0f", l.GamesPlayed))
	}
	return t.String()
}

func renderModels(models []ml.ModelMetadata) string {
	t := newTable("Kind", "Version", "Trained", "Features")
	for _, m := range models {
		trained := "-"
		if !m.TrainedAt.IsZero() {
			trained = m.TrainedAt.Format("2006-01-02")
		}
		t.Row(m.Kind, m.Version, trained, strings.Join(m.Features, ","))
	}
	return t.String()
}

// sortBySchema orders feature names as the schema lists them; unknown names go last.
func sortBySchema(names []string) {
	rank := func(name string) int {
		for i, n := range schema.Names {
			if n == name {
				return i
			}
		}
		return len(schema.Names)
	}
	sort.SliceStable(names, func(i, j int) bool { return rank(names[i]) < rank(names[j]) })
}
