package chat

// Category system prompts. The app ships in Italian; the assistant keeps that
// voice.
var categoryPrompts = map[string]string{
	"relazioni": "Sei ALBA, l'assistente AI di SheBloom specializzata in Relazioni & Emozioni. Fornisci consigli empatici, pratici e rispettosi sulla gestione delle relazioni, emozioni e benessere emotivo.",
	"pinkcare":  "Sei ALBA, l'assistente AI di SheBloom specializzata in PinkCare - Salute Femminile. Fornisci informazioni accurate su salute femminile, ciclo mestruale, contraccezione e benessere. Non sostituisci il parere medico.",
	"beauty":    "Sei ALBA, l'assistente AI di SheBloom specializzata in Beauty & Make up. Aiuta con consigli su skincare, makeup, haircare e bellezza personalizzati.",
	"sport":     "Sei ALBA, l'assistente AI di SheBloom specializzata in Sport & Nutrimento. Fornisci suggerimenti su fitness, nutrizione, workout e stile di vita sano.",
	"stile":     "Sei ALBA, l'assistente AI di SheBloom specializzata in Stile & Identità. Aiuta con consigli di moda, outfit, styling e espressione personale.",
}

const defaultPrompt = "Sei ALBA, l'assistente AI di SheBloom. Fornisci consigli pratici, empatici e personalizzati su benessere femminile, relazioni, bellezza e stile di vita."

const promptGuidelines = `

LINEE GUIDA IMPORTANTI:
- Tono empatico, chiaro, non giudicante
- Risposte concise e pratiche (max 200 parole)
- Per emergenze o situazioni di pericolo, indirizza SEMPRE a ALBA SOS (pulsante rosso) e al 112
- Non sostituisci professionisti medici o psicologi
- Rispetta la privacy e la sensibilità dei temi trattati

IMPORTANTE: Usa la funzione suggest_expert SOLO quando:
- La situazione richiede competenze mediche, psicologiche o legali specializzate
- Il problema è complesso e richiede supporto umano continuativo
- La persona sta affrontando una situazione seria che va oltre un consiglio generale
- NON usarla per domande generiche o che puoi rispondere tu stessa`

const fallbackExpertReply = "Per questa situazione, ti consiglio di parlare con un'esperta che possa darti un supporto personalizzato e professionale."

func systemPrompt(category string) string {
	p, ok := categoryPrompts[category]
	if !ok {
		p = defaultPrompt
	}
	return p + promptGuidelines
}

func assistantTools() []Tool {
	return []Tool{
		{
			Type: "function",
			Function: ToolFunction{
				Name:        "suggest_expert",
				Description: "Suggerisci di parlare con un'esperta quando la situazione richiede supporto professionale specializzato (medico, psicologo, legale). NON usare per domande generiche.",
				Parameters: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"reason": map[string]any{
							"type":        "string",
							"description": "Motivo per cui serve un'esperta",
						},
						"urgency": map[string]any{
							"type":        "string",
							"enum":        []string{"low", "medium", "high"},
							"description": "Urgenza della consultazione",
						},
					},
					"required":             []string{"reason", "urgency"},
					"additionalProperties": false,
				},
			},
		},
		{
			Type: "function",
			Function: ToolFunction{
				Name:        "track_mood",
				Description: "Registra l'umore dell'utente quando lo esprime chiaramente durante la conversazione.",
				Parameters: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"mood_level": map[string]any{
							"type":        "integer",
							"minimum":     1,
							"maximum":     5,
							"description": "Livello dell'umore da 1 (molto giù) a 5 (al top)",
						},
						"note": map[string]any{
							"type":        "string",
							"description": "Breve nota sul contesto dell'umore",
						},
					},
					"required":             []string{"mood_level"},
					"additionalProperties": false,
				},
			},
		},
		{
			Type: "function",
			Function: ToolFunction{
				Name:        "schedule_followup",
				Description: "Programma un check-in futuro quando l'utente parla di un evento o obiettivo con una data precisa.",
				Parameters: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"topic": map[string]any{
							"type":        "string",
							"description": "Argomento del check-in",
						},
						"context": map[string]any{
							"type":        "string",
							"description": "Contesto da ricordare",
						},
						"followup_date": map[string]any{
							"type":        "string",
							"description": "Data del check-in in formato YYYY-MM-DD",
						},
					},
					"required":             []string{"topic", "followup_date"},
					"additionalProperties": false,
				},
			},
		},
	}
}
