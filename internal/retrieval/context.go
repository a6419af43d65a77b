package retrieval

import (
	"fmt"
	"strings"

	"portfolio-rag/internal/domain"
)

// NoContextSentinel is returned by BuildContext when retrieval produced no
// chunks. Never empty, so the generator reacts deterministically.
const NoContextSentinel = "No relevant resume context found."

// DefaultContextBudget bounds the assembled context in characters so a large
// topK with large chunks cannot overflow the model's input window.
const DefaultContextBudget = 8000

// BuildContext formats chunks into one context string with numbered
// provenance labels, preserving retrieval order.
func BuildContext(chunks []domain.RetrievedChunk) string {
	return BuildContextWithBudget(chunks, DefaultContextBudget)
}

// BuildContextWithBudget is BuildContext with an explicit character budget.
// Once the budget is reached, remaining chunks are skipped; the label
// numbering still reflects only the included chunks. Non-positive budgets
// disable the bound.
func BuildContextWithBudget(chunks []domain.RetrievedChunk, budget int) string {
	if len(chunks) == 0 {
		return NoContextSentinel
	}

	var b strings.Builder
	included := 0
	for _, chunk := range chunks {
		block := fmt.Sprintf("[Context %d]\n%s\n", included+1, chunk.Text)
		if budget > 0 && b.Len()+len(block) > budget {
			break
		}
		if included > 0 {
			b.WriteString("\n")
		}
		b.WriteString(block)
		included++
	}
	if included == 0 {
		return NoContextSentinel
	}
	return b.String()
}
