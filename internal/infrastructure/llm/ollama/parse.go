package ollama

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/clinicsync/medparse/internal/core/domain"
)

// replySchema describes the shape the extraction prompt demands. All keys are
// optional: a reply with missing fields is still usable, a reply with wrongly
// typed fields is not.
const replySchema = `{
  "type": "object",
  "properties": {
    "doctor_name": {"type": "string"},
    "patient_name": {"type": "string"},
    "dob": {"type": "string"},
    "confidence": {
      "type": "object",
      "properties": {
        "doctor": {"type": "number"},
        "patient": {"type": "number"},
        "dob": {"type": "number"}
      }
    },
    "evidence": {
      "type": "array",
      "items": {"type": "string"}
    }
  }
}`

var compiledReplySchema = jsonschema.MustCompileString("reply.json", replySchema)

type replyEnvelope struct {
	DoctorName  string `json:"doctor_name"`
	PatientName string `json:"patient_name"`
	DOB         string `json:"dob"`
	Confidence  struct {
		Doctor  float64 `json:"doctor"`
		Patient float64 `json:"patient"`
		DOB     float64 `json:"dob"`
	} `json:"confidence"`
	Evidence []string `json:"evidence"`
}

// decodeFields turns the model's raw reply text into structured fields. It
// tolerates a preamble or trailer around the JSON object by salvaging the
// first-brace-to-last-brace span, but it does not tolerate wrong types.
func (c *Client) decodeFields(raw string) (*domain.ModelFields, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("empty model reply")
	}

	candidate := raw
	var probe any
	if err := json.Unmarshal([]byte(candidate), &probe); err != nil {
		salvaged, ok := extractJSONObject(raw)
		if !ok {
			return nil, fmt.Errorf("model reply is not json: %w", err)
		}
		if err := json.Unmarshal([]byte(salvaged), &probe); err != nil {
			return nil, fmt.Errorf("model reply json salvage failed: %w", err)
		}
		c.logger.Warn("ollama.reply_salvaged", "reply", domain.MaskPHI(raw))
		candidate = salvaged
	}

	if err := compiledReplySchema.Validate(probe); err != nil {
		return nil, fmt.Errorf("model reply schema: %w", err)
	}

	var env replyEnvelope
	if err := json.Unmarshal([]byte(candidate), &env); err != nil {
		return nil, fmt.Errorf("model reply decode: %w", err)
	}

	fields := &domain.ModelFields{
		DoctorName:  strings.TrimSpace(env.DoctorName),
		PatientName: strings.TrimSpace(env.PatientName),
		DOB:         strings.TrimSpace(env.DOB),
		Confidence: domain.FieldConfidence{
			Doctor:  clamp01(env.Confidence.Doctor),
			Patient: clamp01(env.Confidence.Patient),
			DOB:     clamp01(env.Confidence.DOB),
		},
		Evidence: env.Evidence,
	}
	if fields.Evidence == nil {
		fields.Evidence = []string{}
	}
	return fields, nil
}

func extractJSONObject(raw string) (string, bool) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start >= 0 && end > start {
		return raw[start : end+1], true
	}
	return "", false
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
