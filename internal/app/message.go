package app

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const predictionFormat = "Predicted salary for %s: $%s"

func init() {
	_ = message.SetString(language.Russian, predictionFormat, "Прогнозируемая зарплата для %s: $%s")
}

// FormatPrediction renders the prediction message with the amount in the number
// format of lang.
func FormatPrediction(lang language.Tag, player string, salary float64) string {
	p := message.NewPrinter(lang)
	return p.Sprintf(predictionFormat, player, p.Sprintf("%.2f", salary))
}
