package explain

import (
	"fmt"
	"strings"

	"taxadvisor/internal/domain"
)

// RefusalPhrase is the fixed sentence the model must emit when the
// supplied excerpts do not contain the answer.
const RefusalPhrase = "The provided documents do not contain this information."

// buildPrompt assembles the guarded generation prompt: the model may only
// answer from the supplied excerpts, and the computed tax numbers are
// presented as authoritative, never to be recomputed.
func buildPrompt(cmp domain.Comparison, chunks []domain.RetrievedChunk, question string) string {
	var sb strings.Builder

	sb.WriteString("You are a tax assistant. Answer ONLY from the numbered excerpts below. ")
	sb.WriteString("If the excerpts do not contain the answer, reply exactly: \"")
	sb.WriteString(RefusalPhrase)
	sb.WriteString("\"\n\n")

	sb.WriteString("COMPUTED TAX FIGURES (authoritative, already calculated — do not recompute):\n")
	writeRegimeLine(&sb, "Old regime", cmp.Old)
	writeRegimeLine(&sb, "New regime", cmp.New)
	sb.WriteString("Recommendation: ")
	sb.WriteString(cmp.Recommendation)
	sb.WriteString("\n\n")

	sb.WriteString("EXCERPTS:\n")
	if len(chunks) == 0 {
		sb.WriteString("(no excerpts available)\n")
	} else {
		for i, rc := range chunks {
			fmt.Fprintf(&sb, "[%d] (%s, page %d) %s\n", i+1, rc.Chunk.SourceFile, rc.Chunk.Page, rc.Chunk.Text)
		}
	}
	sb.WriteString("\n")

	sb.WriteString("QUESTION: ")
	sb.WriteString(question)
	sb.WriteString("\n\n")

	sb.WriteString("TASKS:\n")
	sb.WriteString("1. Confirm and elaborate on the recommendation using only the excerpts.\n")
	sb.WriteString("2. Give 3-5 bulleted, actionable tax-saving tips, citing excerpt numbers like [2] where applicable.\n")
	sb.WriteString("3. Note any caveats or conditions mentioned in the excerpts.\n")

	return sb.String()
}

func writeRegimeLine(sb *strings.Builder, label string, r domain.RegimeResult) {
	fmt.Fprintf(sb, "- %s: taxable income ₹%d, total tax ₹%d, effective rate %.2f%%\n",
		label, r.TaxableIncome, r.TotalTax, r.EffectiveRatePercent)
}

// synthesizeQuestion builds a default question from the salary when the
// caller supplied none.
func synthesizeQuestion(salary int64) string {
	return fmt.Sprintf("Which income tax regime is better for an annual salary of ₹%d, and how can the tax burden be reduced?", salary)
}
