package wordgen

import (
	"fmt"
	"strings"
)

const systemPrompt = `You write vocabulary lists for language learners practising with multiple-choice flashcards.

Rules:
- Each pair is one word or short phrase in the source language and its most common translation in the target language.
- Write source-language text in its native script, with no transliteration and no vowel marks unless the learner asked for them.
- Translations must be short: a single word or a phrase of at most four words, no explanations or parentheses.
- Every translation in the list must be different, so that any of them can serve as a wrong option for another card.
- Stay on the requested topic and level.
- Do not repeat any word from the "already known" list.`

// buildUserMessage renders the request. Known prompts are capped at
// maxKnown, keeping the most recent ones.
func buildUserMessage(in Input, count, maxKnown int) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Source language: %s\n", in.SourceLang)
	fmt.Fprintf(&b, "Target language: %s\n", in.TargetLang)
	fmt.Fprintf(&b, "Topic: %s\n", in.Topic)
	if in.Level != "" {
		fmt.Fprintf(&b, "Level: %s\n", in.Level)
	}
	fmt.Fprintf(&b, "Number of pairs: %d\n", count)

	b.WriteString("\nAlready known:\n")
	b.WriteString(buildKnown(in.Known, maxKnown))
	return b.String()
}

func buildKnown(known []string, max int) string {
	if len(known) == 0 {
		return "None"
	}
	if max > 0 && len(known) > max {
		known = known[len(known)-max:]
	}
	return strings.Join(known, ", ")
}
