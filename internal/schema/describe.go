package schema

import "golang.org/x/text/language"

// Languages the descriptions are available in, preferred first.
var Languages = []language.Tag{language.Russian, language.English}

var matcher = language.NewMatcher(Languages)

var descriptions = map[language.Tag]map[string]string{
	language.Russian: {
		DraftNumber: "Позиция игрока на драфте НБА перед его первым сезоном в лиге.",
		Age:         "Возраст игрока на 1 февраля текущего сезона.",
		Minutes:     "Среднее количество минут за игру в предыдущем сезоне.",
		Efficiency: "Коэффициент эффективности игрока (PER) - PER суммирует все положительные достижения игрока, " +
			"вычитает отрицательные достижения и возвращает поминутный рейтинг эффективности игрока.",
		Usage:     "Процент использования - это оценка процента командных игр, когда игрок находился на площадке.",
		PlusMinus: "Плюс-минус на площадке.",
	},
	language.English: {
		DraftNumber: "The player's NBA draft position before his first season in the league.",
		Age:         "The player's age on February 1 of the current season.",
		Minutes:     "Average minutes per game in the previous season.",
		Efficiency: "Player Efficiency Rating (PER) sums up all of a player's positive accomplishments, " +
			"subtracts the negative ones and returns a per-minute rating of the player's performance.",
		Usage:     "Usage percentage estimates the share of team plays used by a player while on the floor.",
		PlusMinus: "Box plus-minus.",
	},
}

// MatchLanguage picks the supported language closest to the given preferences, such
// as an Accept-Language header value or a configured tag.
func MatchLanguage(prefs ...string) language.Tag {
	_, i := language.MatchStrings(matcher, prefs...)
	return Languages[i]
}

// Describe returns the tooltip text for a feature in the requested language.
func Describe(name string, lang language.Tag) string {
	_, i, _ := matcher.Match(lang)
	if d, ok := descriptions[Languages[i]][name]; ok {
		return d
	}
	return descriptions[language.English][name]
}

var abstractLabels = map[language.Tag]string{
	language.Russian: "Абстрактный игрок",
	language.English: AbstractPlayer,
}

// PlayerLabel returns the selector text for a player entry in lang. Only the
// abstract player is translated; the entry's value stays AbstractPlayer.
func PlayerLabel(name string, lang language.Tag) string {
	if name != AbstractPlayer {
		return name
	}
	_, i, _ := matcher.Match(lang)
	return abstractLabels[Languages[i]]
}
