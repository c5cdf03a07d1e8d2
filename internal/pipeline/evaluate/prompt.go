// internal/pipeline/evaluate/prompt.go
package evaluate

import (
	"fmt"
	"strings"
)

// buildPrompt assembles the evaluation instructions for the model.
// The rubric is rendered criterion by criterion so the model scores
// exactly the keys the scorer will weight.
func buildPrompt(rubric Rubric, cvText string) string {
	var b strings.Builder

	b.WriteString("Tu es un expert en recrutement. Évalue le CV ci-dessous selon les critères suivants.\n")
	b.WriteString("Pour chaque critère, attribue une note entière de 0 à 10 et justifie brièvement.\n\n")
	b.WriteString("Critères :\n")
	for _, c := range rubric.Criteria() {
		fmt.Fprintf(&b, "- %s (poids %d%%) : %s\n", c.Key, c.Weight, c.Description)
	}

	b.WriteString("\nRéponds UNIQUEMENT avec un objet JSON valide, sans texte avant ou après, au format exact :\n")
	b.WriteString("{\n  \"criteria\": {\n")
	keys := make([]string, 0, len(rubric))
	for _, c := range rubric.Criteria() {
		keys = append(keys, c.Key)
	}
	for i, key := range keys {
		sep := ","
		if i == len(keys)-1 {
			sep = ""
		}
		fmt.Fprintf(&b, "    %q: {\"score\": 0, \"explanation\": \"...\"}%s\n", key, sep)
	}
	b.WriteString("  },\n  \"summary\": \"...\"\n}\n")

	b.WriteString("\nContenu du CV :\n---\n")
	b.WriteString(cvText)
	b.WriteString("\n---\n")

	return b.String()
}
