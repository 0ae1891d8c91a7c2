// Package prompt loads the pipeline's prompt templates and fills their
// {{NAME}} placeholders. Template wording owns each stage's output schema.
package prompt

import (
	"embed"
	"fmt"
	"strings"
)

//go:embed templates/*.md
var templates embed.FS

const (
	ExtractRequirements = "extract_requirements"
	EvidenceQuery       = "evidence_query"
	CoverLetterDraft    = "cover_letter_draft"
	CoverLetterCritique = "cover_letter_critique"
	FitScore            = "fit_score"
)

// Render loads the named template and substitutes every {{KEY}} with its
// value. Unknown placeholders left in the template are not an error; the
// filled template must stand on its own as a complete prompt.
func Render(name string, vars map[string]string) (string, error) {
	raw, err := templates.ReadFile("templates/" + name + ".md")
	if err != nil {
		return "", fmt.Errorf("load prompt template %q: %w", name, err)
	}

	out := string(raw)
	for k, v := range vars {
		out = strings.ReplaceAll(out, "{{"+k+"}}", v)
	}
	return out, nil
}
