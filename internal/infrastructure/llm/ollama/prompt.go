package ollama

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/clinicsync/medparse/internal/core/domain"
)

// maxPromptChars caps the OCR portion of the prompt. Pages past the budget
// are dropped whole; the page that straddles the boundary is cut and marked.
const maxPromptChars = 8000

const extractionPromptTemplate = `You are a strict extractor. Input is OCR text with page separators like ===PAGE:1===.

Return EXACTLY one JSON object (nothing else) with:
- doctor_name (string or "")
- patient_name (string or "")
- dob (YYYY-MM-DD or "")
- confidence {"doctor":0-1,"patient":0-1,"dob":0-1}
- evidence [ "PAGE:1:snippet" ]

Example:
OCR: "===PAGE:1=== Patient Name: Jane Doe DOB: 02/14/1980"
JSON: {"doctor_name":"","patient_name":"Jane Doe","dob":"1980-02-14","confidence":{"doctor":0,"patient":0.95,"dob":0.9},"evidence":["PAGE:1:Patient Name: Jane Doe","PAGE:1:DOB: 02/14/1980"]}

Now extract from:
%s
`

// BuildPrompt renders the extraction prompt over the recognized pages. Page
// separators carry the original page numbers so the model's evidence
// references stay meaningful for sampled documents.
func BuildPrompt(pages []domain.Page) string {
	var sb strings.Builder
	used := 0

	for _, p := range pages {
		separator := fmt.Sprintf("===PAGE:%d===\n", p.Page)
		content := separator + p.Text + "\n"

		if used+len(content) > maxPromptChars {
			remaining := maxPromptChars - used
			if remaining > len(separator) {
				sb.WriteString(separator)
				sb.WriteString(cutAtRuneBoundary(p.Text, remaining-len(separator)))
				sb.WriteString("...[truncated]\n")
			}
			break
		}

		sb.WriteString(content)
		used += len(content)
	}

	return fmt.Sprintf(extractionPromptTemplate, sb.String())
}

// cutAtRuneBoundary truncates s to at most limit bytes without splitting a
// multibyte rune at the cut point.
func cutAtRuneBoundary(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	for limit > 0 && !utf8.RuneStart(s[limit]) {
		limit--
	}
	return s[:limit]
}
