package domain

import "fmt"

const phiPreviewLimit = 20

// MaskPHI renders recognized text for logging without exposing its content.
// Only the length and a short prefix are emitted.
func MaskPHI(text string) string {
	if text == "" {
		return "<empty>"
	}
	preview := text
	if len(preview) > phiPreviewLimit {
		preview = preview[:phiPreviewLimit]
	}
	return fmt.Sprintf("<text length=%d chars, preview=%s...>", len(text), preview)
}
