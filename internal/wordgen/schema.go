package wordgen

import "github.com/abhisek/oulpan/internal/llm"

// PairSchema is the response shape for one generation batch.
var PairSchema = &llm.Schema{
	Name:        "word-pairs",
	Description: "A list of vocabulary pairs for flashcard practice",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"pairs": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"prompt": map[string]any{
							"type":        "string",
							"description": "The word or short phrase in the source language",
						},
						"answer": map[string]any{
							"type":        "string",
							"description": "Its most common translation in the target language",
						},
					},
					"required":             []any{"prompt", "answer"},
					"additionalProperties": false,
				},
			},
		},
		"required":             []any{"pairs"},
		"additionalProperties": false,
	},
}

type pairOutput struct {
	Pairs []struct {
		Prompt string `json:"prompt"`
		Answer string `json:"answer"`
	} `json:"pairs"`
}
