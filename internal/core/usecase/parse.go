package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/clinicsync/medparse/internal/core/domain"
	"github.com/clinicsync/medparse/internal/core/normalize"
	"github.com/clinicsync/medparse/internal/core/ports"
)

// ParseDocumentUseCase is the merge orchestrator: it runs the model extractor
// over the recognized pages, falls back to / fills gaps from the pattern
// extractor, canonicalizes the date of birth and computes the review flag.
// Single pass, no retries.
type ParseDocumentUseCase struct {
	recognizer ports.PageRecognizer
	model      ports.ModelExtractor
	patterns   ports.PatternExtractor
	threshold  float64
	logger     *slog.Logger
}

func NewParseDocumentUseCase(
	recognizer ports.PageRecognizer,
	model ports.ModelExtractor,
	patterns ports.PatternExtractor,
	threshold float64,
	logger *slog.Logger,
) *ParseDocumentUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &ParseDocumentUseCase{
		recognizer: recognizer,
		model:      model,
		patterns:   patterns,
		threshold:  threshold,
		logger:     logger,
	}
}

func (uc *ParseDocumentUseCase) Parse(ctx context.Context, upload domain.Upload) (*domain.ExtractionResult, error) {
	if len(upload.Data) == 0 {
		return nil, domain.WrapError(domain.ErrInvalidInput, "parse document", errors.New("empty upload"))
	}

	pages, err := uc.recognizer.Recognize(ctx, upload.Data)
	if err != nil {
		return nil, fmt.Errorf("recognize pages: %w", err)
	}
	if len(pages) == 0 {
		return nil, domain.WrapError(domain.ErrNoText, "recognize pages", errors.New("recognizer produced no pages"))
	}

	result := uc.merge(ctx, pages)
	result.PagesRecognized = len(pages)

	uc.logger.Info("extraction_complete",
		"filename", upload.Filename,
		"pages", len(pages),
		"flag_for_review", result.FlagForReview,
		"llm_unavailable", result.LLMUnavailable,
	)
	return result, nil
}

func (uc *ParseDocumentUseCase) merge(ctx context.Context, pages []domain.Page) *domain.ExtractionResult {
	fullText := joinPages(pages)

	fields, err := uc.model.Extract(ctx, pages)
	if err != nil || fields == nil {
		// Empty signal: the deterministic extractor's answer is the answer.
		uc.logger.Info("model_extractor_unavailable", "error", err)
		res := uc.patterns.Extract(fullText)
		res.LLMUnavailable = true
		res.FlagForReview = uc.reviewFlag(res.Confidence, true)
		return res
	}

	res := &domain.ExtractionResult{
		DoctorName:  fields.DoctorName,
		PatientName: fields.PatientName,
		DOB:         fields.DOB,
		Confidence:  fields.Confidence,
		Evidence:    append([]string{}, fields.Evidence...),
	}

	// A model-asserted date the normalizer cannot canonicalize is untrusted.
	if res.DOB != "" {
		if iso, ok := normalize.Date(res.DOB); ok {
			res.DOB = iso
		} else {
			uc.logger.Warn("model_dob_not_canonicalizable", "dob", domain.MaskPHI(res.DOB))
			res.DOB = ""
			res.Confidence.DOB = 0
		}
	}

	// Field-by-field fill from the pattern extractor. A non-empty model field
	// is never overwritten and a present model confidence is never lowered.
	pat := uc.patterns.Extract(fullText)
	if res.PatientName == "" && pat.PatientName != "" {
		res.PatientName = pat.PatientName
		res.Confidence.Patient = pat.Confidence.Patient
		res.Evidence = appendFieldEvidence(res.Evidence, pat.Evidence, domain.FieldPatient)
	}
	if res.DoctorName == "" && pat.DoctorName != "" {
		res.DoctorName = pat.DoctorName
		res.Confidence.Doctor = pat.Confidence.Doctor
		res.Evidence = appendFieldEvidence(res.Evidence, pat.Evidence, domain.FieldDoctor)
	}
	if res.DOB == "" && pat.DOB != "" {
		res.DOB = pat.DOB
		res.Confidence.DOB = pat.Confidence.DOB
		res.Evidence = appendFieldEvidence(res.Evidence, pat.Evidence, domain.FieldDOB)
	}

	res.FlagForReview = uc.reviewFlag(res.Confidence, false)
	return res
}

// reviewFlag is the single gate deciding whether a human must verify the
// extracted fields: any one weak field, or total model unavailability,
// forces review.
func (uc *ParseDocumentUseCase) reviewFlag(conf domain.FieldConfidence, llmUnavailable bool) bool {
	return conf.Doctor < uc.threshold ||
		conf.Patient < uc.threshold ||
		conf.DOB < uc.threshold ||
		llmUnavailable
}

// joinPages builds the full-text blob the pattern extractor works on. Plain
// newlines, no page markers: the fallback patterns are page-agnostic.
func joinPages(pages []domain.Page) string {
	parts := make([]string, 0, len(pages))
	for _, p := range pages {
		parts = append(parts, p.Text)
	}
	return strings.Join(parts, "\n")
}

func appendFieldEvidence(dst, src []string, field string) []string {
	for _, entry := range src {
		if domain.IsPatternEvidence(entry, field) {
			dst = append(dst, entry)
		}
	}
	return dst
}
