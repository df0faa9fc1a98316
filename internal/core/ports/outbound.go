package ports

import (
	"context"

	"github.com/clinicsync/medparse/internal/core/domain"
)

// PageRecognizer turns raw document bytes into ordered per-page text. It
// applies the head/tail page-sampling policy internally for over-budget
// documents and never returns a page without an original page number.
type PageRecognizer interface {
	Recognize(ctx context.Context, data []byte) ([]domain.Page, error)
}

// ModelExtractor asks a language model to extract the target fields from the
// recognized pages. A non-nil error is the "empty signal": the model produced
// no usable output, as opposed to a parsed reply with empty field values.
type ModelExtractor interface {
	Extract(ctx context.Context, pages []domain.Page) (*domain.ModelFields, error)
}

// PatternExtractor is the deterministic regex fallback. It is total: it never
// fails, and unmatched fields simply stay empty at zero confidence.
type PatternExtractor interface {
	Extract(text string) *domain.ExtractionResult
}
