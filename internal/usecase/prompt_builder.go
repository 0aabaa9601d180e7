package usecase

import (
	"fmt"
	"strings"

	"insight-engine/internal/domain"
)

// maxContextRecords caps how many ranked records feed the generation prompt.
const maxContextRecords = 10

// PromptBuilder composes the one-shot generation prompt from the query and
// its ranked grounding records.
type PromptBuilder interface {
	Build(qc domain.QueryContext, ranked []domain.RankedRecord) string
}

type groundedPromptBuilder struct {
	instructions []string
}

// NewPromptBuilder creates the default builder, with optional extra
// instruction lines appended after the fixed preamble.
func NewPromptBuilder(additionalInstructions ...string) PromptBuilder {
	return &groundedPromptBuilder{
		instructions: additionalInstructions,
	}
}

func (b *groundedPromptBuilder) Build(qc domain.QueryContext, ranked []domain.RankedRecord) string {
	var sb strings.Builder

	sb.WriteString("You are an organizational intelligence assistant. Answer the question using ONLY the context below.\n")
	sb.WriteString("Be factual and concise. If the context is insufficient, say what is missing and what to check next.\n")
	sb.WriteString("Structure the answer as short paragraphs or bullet points, and state concrete recommendations when the context supports them.\n")
	for _, inst := range b.instructions {
		sb.WriteString(inst)
		sb.WriteString("\n")
	}

	sb.WriteString("\nContext:\n")
	sb.WriteString(ContextBlock(ranked))

	if qc.Domain != "" {
		fmt.Fprintf(&sb, "\nDomain focus: %s\n", qc.Domain)
	}
	if qc.Timeframe != "" {
		fmt.Fprintf(&sb, "Timeframe: %s\n", qc.Timeframe)
	}

	sb.WriteString("\nQuestion: ")
	sb.WriteString(qc.Query)
	sb.WriteString("\n")

	return sb.String()
}

// ContextBlock renders the top ranked records as "[TYPE] content" lines.
func ContextBlock(ranked []domain.RankedRecord) string {
	if len(ranked) > maxContextRecords {
		ranked = ranked[:maxContextRecords]
	}

	lines := make([]string, 0, len(ranked))
	for _, record := range ranked {
		lines = append(lines, fmt.Sprintf("[%s] %s", strings.ToUpper(string(record.Type)), record.Content))
	}
	return strings.Join(lines, "\n")
}
