// Package pattern implements the deterministic regex fallback extractor.
// It never fails: absence of a match leaves the field empty with zero
// confidence, and confidences are fixed per field rather than derived from
// match quality.
package pattern

import (
	_ "embed"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/clinicsync/medparse/internal/core/domain"
	"github.com/clinicsync/medparse/internal/core/normalize"
)

//go:embed patterns.yaml
var rulesYAML []byte

type fieldRules struct {
	Confidence float64  `yaml:"confidence"`
	Prefix     string   `yaml:"prefix"`
	Patterns   []string `yaml:"patterns"`
}

type ruleFile struct {
	Patient fieldRules `yaml:"patient"`
	Doctor  fieldRules `yaml:"doctor"`
	DOB     fieldRules `yaml:"dob"`
}

type compiledField struct {
	confidence float64
	prefix     string
	patterns   []*regexp.Regexp
}

var rules = mustLoadRules()

type compiledRules struct {
	patient compiledField
	doctor  compiledField
	dob     compiledField
}

// mustLoadRules compiles the embedded rule table. The asset ships with the
// binary, so a failure here is a build defect, same as regexp.MustCompile.
func mustLoadRules() compiledRules {
	var rf ruleFile
	if err := yaml.Unmarshal(rulesYAML, &rf); err != nil {
		panic(fmt.Sprintf("pattern: parse embedded patterns.yaml: %v", err))
	}
	return compiledRules{
		patient: compileField(rf.Patient),
		doctor:  compileField(rf.Doctor),
		dob:     compileField(rf.DOB),
	}
}

func compileField(fr fieldRules) compiledField {
	cf := compiledField{confidence: fr.Confidence, prefix: fr.Prefix}
	for _, p := range fr.Patterns {
		cf.patterns = append(cf.patterns, regexp.MustCompile(p))
	}
	return cf
}

type Extractor struct {
	logger *slog.Logger
}

func NewExtractor(logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{logger: logger}
}

// Extract runs the ordered matchers over the full document text. It is
// side-effect free and total: any input, including empty or binary garbage,
// yields a result.
func (e *Extractor) Extract(text string) *domain.ExtractionResult {
	res := &domain.ExtractionResult{Evidence: []string{}}

	if value, span, ok := firstMatch(rules.patient, text); ok {
		res.PatientName = value
		res.Confidence.Patient = rules.patient.confidence
		res.Evidence = append(res.Evidence, domain.PatternEvidence(domain.FieldPatient, span))
	}

	if value, span, ok := firstMatch(rules.doctor, text); ok {
		res.DoctorName = rules.doctor.prefix + value
		res.Confidence.Doctor = rules.doctor.confidence
		res.Evidence = append(res.Evidence, domain.PatternEvidence(domain.FieldDoctor, span))
	}

	if value, span, ok := firstMatch(rules.dob, text); ok {
		// A matched date that fails calendar validation is untrusted and
		// leaves the field empty at zero confidence.
		if iso, valid := normalize.Date(value); valid {
			res.DOB = iso
			res.Confidence.DOB = rules.dob.confidence
			res.Evidence = append(res.Evidence, domain.PatternEvidence(domain.FieldDOB, span))
		} else {
			e.logger.Debug("pattern_dob_invalid_calendar_date", "span", domain.MaskPHI(span))
		}
	}

	return res
}

// firstMatch tries a field's patterns in priority order and returns the first
// captured value together with the full matched span.
func firstMatch(cf compiledField, text string) (value, span string, ok bool) {
	for _, re := range cf.patterns {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		return strings.TrimSpace(m[1]), m[0], true
	}
	return "", "", false
}
