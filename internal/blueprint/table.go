package blueprint

var (
	labelsHeadings    = []string{"a", "b", "c", "d", "e", "f"}
	labelsTrueFalseNS = []string{"richtig", "falsch", "steht nicht im Text"}
	labelsTrueFalse   = []string{"richtig", "falsch"}
	labelsLetters     = []string{"A", "B", "C", "D", "E", "F", "G", "H", "I", "J", "K", "L"}
	labelsGapFill     = []string{"a", "b", "c"}
)

func defaultTimeLimits() map[Section]int {
	return map[Section]int{
		SectionReading:   90,
		SectionLanguage:  90,
		SectionListening: 30,
		SectionWriting:   30,
		SectionSpeaking:  15,
	}
}

func defaultBlueprints() []Blueprint {
	return []Blueprint{
		{
			Section:           SectionReading,
			Part:              1,
			Title:             "Leseverstehen, Teil 1",
			QuestionCount:     5,
			OptionType:        HeadingMatch,
			PointsPerQuestion: 5,
			MaxPoints:         25,
			Instructions:      "Lesen Sie die Überschriften a–f und die Texte 1–5. Finden Sie für jeden Text die passende Überschrift. Eine Überschrift passt nicht.",
			canonicalLabels:   labelsHeadings,
		},
		{
			Section:           SectionReading,
			Part:              2,
			Title:             "Leseverstehen, Teil 2",
			QuestionCount:     10,
			OptionType:        TrueFalseNotStated,
			PointsPerQuestion: 2.5,
			MaxPoints:         25,
			Instructions:      "Lesen Sie den Text und die Aussagen 1–10. Entscheiden Sie: richtig, falsch oder steht nicht im Text?",
			canonicalLabels:   labelsTrueFalseNS,
		},
		{
			Section:           SectionReading,
			Part:              3,
			Title:             "Leseverstehen, Teil 3",
			QuestionCount:     10,
			OptionType:        LetterMatch,
			PointsPerQuestion: 2.5,
			MaxPoints:         25,
			Instructions:      "Lesen Sie die Situationen 1–10 und die Anzeigen A–L. Finden Sie für jede Situation die passende Anzeige.",
			canonicalLabels:   labelsLetters,
		},
		{
			Section:           SectionLanguage,
			Part:              1,
			Title:             "Sprachbausteine, Teil 1",
			QuestionCount:     10,
			OptionType:        ABCGapFill,
			PointsPerQuestion: 1.5,
			MaxPoints:         15,
			Instructions:      "Lesen Sie den Text. Welches Wort (a, b oder c) passt in die Lücken 1–10?",
			canonicalLabels:   labelsGapFill,
		},
		{
			Section:           SectionLanguage,
			Part:              2,
			Title:             "Sprachbausteine, Teil 2",
			QuestionCount:     10,
			OptionType:        ABCGapFill,
			PointsPerQuestion: 1.5,
			MaxPoints:         15,
			Instructions:      "Lesen Sie den Brief. Welche Lösung (a, b oder c) passt in die Lücken 11–20?",
			canonicalLabels:   labelsGapFill,
		},
		{
			Section:           SectionListening,
			Part:              1,
			Title:             "Hörverstehen, Teil 1",
			QuestionCount:     5,
			OptionType:        FreeMultipleChoice,
			PointsPerQuestion: 5,
			MaxPoints:         25,
			Instructions:      "Sie hören fünf kurze Texte. Wählen Sie zu jedem Text die richtige Antwort.",
		},
		{
			Section:           SectionListening,
			Part:              2,
			Title:             "Hörverstehen, Teil 2",
			QuestionCount:     10,
			OptionType:        TrueFalse,
			PointsPerQuestion: 2.5,
			MaxPoints:         25,
			Instructions:      "Sie hören ein Gespräch. Sind die Aussagen 1–10 richtig oder falsch?",
			canonicalLabels:   labelsTrueFalse,
		},
		{
			Section:           SectionListening,
			Part:              3,
			Title:             "Hörverstehen, Teil 3",
			QuestionCount:     5,
			OptionType:        TrueFalse,
			PointsPerQuestion: 5,
			MaxPoints:         25,
			Instructions:      "Sie hören fünf kurze Durchsagen. Sind die Aussagen richtig oder falsch?",
			canonicalLabels:   labelsTrueFalse,
		},
		{
			Section:      SectionWriting,
			Part:         1,
			Title:        "Schriftlicher Ausdruck",
			OptionType:   FreeText,
			MaxPoints:    45,
			Instructions: "Schreiben Sie einen Brief zu der folgenden Situation. Behandeln Sie alle vier Leitpunkte.",
		},
		{
			Section:      SectionSpeaking,
			Part:         1,
			Title:        "Kontaktaufnahme",
			OptionType:   Speaking,
			MaxPoints:    15,
			Instructions: "Stellen Sie sich Ihrem Gesprächspartner vor und stellen Sie ihm Fragen zu den vorgegebenen Stichpunkten.",
		},
		{
			Section:      SectionSpeaking,
			Part:         2,
			Title:        "Gespräch über ein Thema",
			OptionType:   Speaking,
			MaxPoints:    30,
			Instructions: "Berichten Sie über die Informationen aus Ihrem Text und sprechen Sie mit Ihrem Partner über das Thema.",
		},
		{
			Section:      SectionSpeaking,
			Part:         3,
			Title:        "Gemeinsam etwas planen",
			OptionType:   Speaking,
			MaxPoints:    30,
			Instructions: "Planen Sie gemeinsam mit Ihrem Partner eine Aktivität. Machen Sie Vorschläge und reagieren Sie auf die Vorschläge Ihres Partners.",
		},
	}
}
