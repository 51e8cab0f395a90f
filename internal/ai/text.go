package ai

import "strings"

// Input limits, in characters, applied before text leaves the process.
const (
	EmbeddingInputLimit = 8000
	SummaryInputLimit   = 4000
	AnswerInputLimit    = 4000
)

// PrepareInput collapses every whitespace run to one space and keeps at most
// limit characters. Truncation is silent: long documents are only partly covered.
func PrepareInput(text string, limit int) string {
	collapsed := strings.Join(strings.Fields(text), " ")
	if limit <= 0 {
		return collapsed
	}
	runes := []rune(collapsed)
	if len(runes) <= limit {
		return collapsed
	}
	return string(runes[:limit])
}
