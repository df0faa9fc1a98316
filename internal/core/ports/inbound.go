package ports

import (
	"context"

	"github.com/clinicsync/medparse/internal/core/domain"
)

// DocumentParser is the inbound contract for one-shot document extraction.
// One upload produces one result; nothing is shared or persisted across calls.
type DocumentParser interface {
	Parse(ctx context.Context, upload domain.Upload) (*domain.ExtractionResult, error)
}
