package prompts

import "github.com/solarchat/backend/internal/domain"

// defaultCompareFormat is the narrative layout the comparison structurer
// understands. Keep the headings in sync with the structurer rules.
const defaultCompareFormat = `Erstelle den Vergleich in genau diesem Format:

### <Name Produkt 1>
Kurzbeschreibung: <1-2 Sätze>
Anwendungsfälle:
- <Punkt>
Empfehlung: <1 Satz>

### <Name Produkt 2>
Kurzbeschreibung: <1-2 Sätze>
Anwendungsfälle:
- <Punkt>
Empfehlung: <1 Satz>

### Vergleich
Allgemeiner Vergleich:
- <Punkt>
Technische Unterschiede:
- <Punkt>
Preis-Leistung:
- <Punkt>
Wann ist Produkt 1 besser:
- <Punkt>
Wann ist Produkt 2 besser:
- <Punkt>

Nutze die mitgelieferten Produktdaten und Preise. Erfinde keine Werte.`

const defaultChatSystem = `Du bist ein freundlicher und kompetenter Kundenberater für einen Solar-Online-Shop. Du hilfst Kunden bei Fragen zu Wechselrichtern, Speichersystemen, Batterien, Solarmodulen und Zubehör.

Regeln:
- Antworte auf Deutsch, präzise und hilfreich.
- Nutze ausschließlich die bereitgestellten Produktdaten für konkrete Angaben.
- Nenne Artikelnummern immer in Klammern: (Art.-Nr. 1234567).
- Wenn du etwas nicht aus den Produktdaten belegen kannst, sage das offen.`

const defaultStorageRecommendation = `Erstelle eine strukturierte Speicher-Empfehlung:
1. **Zusammenfassung** der Anlagendaten
2. **Empfohlene Speichersysteme** (mit Artikelnummern)
3. **Begründung** (Kapazität, Kompatibilität, Erweiterbarkeit)
4. **Hinweise** zur Installation

Nenne Artikelnummern immer in Klammern: (Art.-Nr. XXXXXXX).`

// defaultPromptFile is written when no prompt file exists yet. The
// keyword lists are not editable through the API because the editor only
// writes plain text and would destroy their list shape.
func defaultPromptFile() domain.PromptFile {
	editable := true
	readOnly := false

	return domain.PromptFile{
		Version: "1.0",
		Categories: []domain.PromptCategory{
			{
				ID:   "system",
				Name: "System-Prompts",
				Prompts: []domain.Prompt{
					{
						ID:          domain.PromptChatSystem,
						Name:        "Chat System-Prompt",
						Description: "Grundrolle des Chat-Beraters",
						Content:     domain.PromptContent{Text: defaultChatSystem},
						Editable:    &editable,
					},
					{
						ID:          domain.PromptCompareSystem,
						Name:        "Vergleichs-Prompt",
						Description: "Format-Vorgaben für Produktvergleiche",
						Content:     domain.PromptContent{Text: defaultCompareFormat},
						Editable:    &editable,
					},
					{
						ID:          domain.PromptStorageRecommendation,
						Name:        "Speicher-Empfehlungs-Prompt",
						Description: "Struktur der Speicher-Empfehlung",
						Content:     domain.PromptContent{Text: defaultStorageRecommendation},
						Editable:    &editable,
					},
				},
			},
			{
				ID:   "kontext",
				Name: "Kontext-Prompts",
				Prompts: []domain.Prompt{
					{
						ID:      domain.PromptContextStandard,
						Name:    "Standard-Kontext",
						Content: domain.PromptContent{Text: "Beantworte die Frage anhand der Produktliste. Verweise bei mehreren Treffern auf die Artikelnummern."},
					},
					{
						ID:      domain.PromptContextPDFDetails,
						Name:    "Datenblatt-Kontext",
						Content: domain.PromptContent{Text: "Der Kunde möchte Detailinformationen. Nutze die Datenblatt-Abschnitte der Produktdaten und zitiere konkrete Werte."},
					},
					{
						ID:      domain.PromptContextOverview,
						Name:    "Übersichts-Kontext",
						Content: domain.PromptContent{Text: "Der Kunde möchte eine vollständige Übersicht. Fasse alle verfügbaren Produktdaten strukturiert zusammen."},
					},
				},
			},
			{
				ID:   "nachrichten",
				Name: "Nachrichten",
				Prompts: []domain.Prompt{
					{
						ID:      domain.PromptWelcomeMessage,
						Name:    "Willkommensnachricht",
						Content: domain.PromptContent{Text: "Hallo! Wie kann ich Ihnen helfen?"},
					},
					{
						ID:      domain.PromptArtikelnummerReminder,
						Name:    "Artikelnummer-Erinnerung",
						Content: domain.PromptContent{Text: "💡 Tipp: Mit einer Artikelnummer (7-stellig) finde ich Produkte schneller und genauer."},
					},
					{
						ID:      domain.PromptArtikelnummerHint,
						Name:    "Artikelnummer-Hinweis",
						Content: domain.PromptContent{Text: "WICHTIG: Es wurden mehrere passende Produkte gefunden. Bitte den Kunden, die genaue Artikelnummer zu nennen, bevor du Details beantwortest."},
					},
					{
						ID:      domain.PromptErrorGeneral,
						Name:    "Allgemeine Fehlermeldung",
						Content: domain.PromptContent{Text: "Ein Fehler ist aufgetreten: {error}"},
					},
					{
						ID:      domain.PromptErrorCompare,
						Name:    "Vergleichs-Fehlermeldung",
						Content: domain.PromptContent{Text: "Beim Vergleich ist ein Fehler aufgetreten: {error}"},
					},
					{
						ID:      domain.PromptCompareMinimum,
						Name:    "Vergleich Mindestanzahl",
						Content: domain.PromptContent{Text: "Für einen Vergleich benötige ich mindestens 2 Produkte."},
					},
				},
			},
			{
				ID:   "keywords",
				Name: "Keyword-Listen",
				Prompts: []domain.Prompt{
					{
						ID:          domain.PromptPDFDetailKeywords,
						Name:        "Datenblatt-Keywords",
						Description: "Wörter, die den Datenblatt-Kontext auslösen",
						Content: domain.PromptContent{List: []string{
							"datenblatt", "pdf", "technische daten", "spezifikation",
							"details", "abmessungen", "wirkungsgrad", "zertifikat",
						}},
						Editable: &readOnly,
					},
					{
						ID:          domain.PromptVektorTextKeywords,
						Name:        "Übersichts-Keywords",
						Description: "Wörter, die die Volltext-Übersicht auslösen",
						Content: domain.PromptContent{List: []string{
							"übersicht", "vollständig", "komplett", "alle daten", "alle informationen",
						}},
						Editable: &readOnly,
					},
					{
						ID:          domain.PromptFollowupKeywords,
						Name:        "Nachfrage-Keywords",
						Description: "Wörter, die eine Nachfrage zum vorherigen Produkt markieren",
						Content: domain.PromptContent{List: []string{
							"davon", "hat der", "hat die", "hat das",
							"und was", "und wie", "passt der", "passt die",
						}},
						Editable: &readOnly,
					},
				},
			},
		},
	}
}
