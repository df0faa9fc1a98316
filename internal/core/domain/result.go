package domain

import (
	"strings"
	"unicode/utf8"
)

// Page is one recognized page of a document. Page numbers are 1-based and
// always refer to the original document numbering, even when only a sampled
// subset of pages was recognized.
type Page struct {
	Page int    `json:"page"`
	Text string `json:"text"`
}

// FieldConfidence carries a per-field score in [0,1]. A field that never
// matched anything keeps the zero value.
type FieldConfidence struct {
	Doctor  float64 `json:"doctor"`
	Patient float64 `json:"patient"`
	DOB     float64 `json:"dob"`
}

// ExtractionResult is the single output shape of the whole pipeline: the
// pattern extractor, the model extractor (after normalization) and the merge
// step all produce it. DOB, when non-empty, is always canonical YYYY-MM-DD.
type ExtractionResult struct {
	DoctorName     string          `json:"doctor_name"`
	PatientName    string          `json:"patient_name"`
	DOB            string          `json:"dob"`
	Confidence     FieldConfidence `json:"confidence"`
	Evidence       []string        `json:"evidence"`
	FlagForReview  bool            `json:"flag_for_review"`
	LLMUnavailable bool            `json:"llm_unavailable,omitempty"`

	// PagesRecognized feeds observability only and stays out of the response
	// body.
	PagesRecognized int `json:"-"`
}

// ModelFields is the normalized shape decoded from a model reply. Absent or
// malformed keys are mapped to zero values by the tolerant decoder; a nil
// ModelFields (with an error) means the model produced no usable output at
// all, which is distinct from an explicitly empty reply.
type ModelFields struct {
	DoctorName  string          `json:"doctor_name"`
	PatientName string          `json:"patient_name"`
	DOB         string          `json:"dob"`
	Confidence  FieldConfidence `json:"confidence"`
	Evidence    []string        `json:"evidence"`
}

// Upload is a single document handed to the pipeline.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Field labels used in evidence provenance strings.
const (
	FieldDoctor  = "Doctor"
	FieldPatient = "Patient"
	FieldDOB     = "DOB"
)

const evidenceSpanLimit = 50

// PatternEvidence builds the provenance entry for a pattern match. The
// matched span is clipped so evidence stays a preview, not a transcript; the
// clip never splits a multibyte rune.
func PatternEvidence(field, span string) string {
	if len(span) > evidenceSpanLimit {
		cut := evidenceSpanLimit
		for cut > 0 && !utf8.RuneStart(span[cut]) {
			cut--
		}
		span = span[:cut]
	}
	return "REGEX:" + field + " pattern matched: " + span
}

// IsPatternEvidence reports whether an evidence entry was produced by the
// pattern extractor for the given field.
func IsPatternEvidence(entry, field string) bool {
	return strings.HasPrefix(entry, "REGEX:"+field+" ")
}
