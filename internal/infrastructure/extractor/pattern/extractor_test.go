package pattern

import (
	"strings"
	"testing"

	"github.com/clinicsync/medparse/internal/core/domain"
)

func TestExtractPatientAndDOB(t *testing.T) {
	e := NewExtractor(nil)
	res := e.Extract("Patient Name: Jane Doe DOB: 02/14/1980")

	if res.PatientName != "Jane Doe" {
		t.Fatalf("patient = %q, want Jane Doe", res.PatientName)
	}
	if res.Confidence.Patient != 0.6 {
		t.Fatalf("patient confidence = %v, want 0.6", res.Confidence.Patient)
	}
	if res.DOB != "1980-02-14" {
		t.Fatalf("dob = %q, want 1980-02-14", res.DOB)
	}
	if res.Confidence.DOB != 0.65 {
		t.Fatalf("dob confidence = %v, want 0.65", res.Confidence.DOB)
	}
	if len(res.Evidence) != 2 {
		t.Fatalf("evidence = %v, want 2 entries", res.Evidence)
	}
	if !domain.IsPatternEvidence(res.Evidence[0], domain.FieldPatient) {
		t.Fatalf("first evidence entry not patient-tagged: %q", res.Evidence[0])
	}
}

func TestExtractDoctorGetsPrefix(t *testing.T) {
	e := NewExtractor(nil)
	res := e.Extract("Seen by Dr. John Smith on follow-up.")

	if res.DoctorName != "Dr. John Smith" {
		t.Fatalf("doctor = %q, want Dr. John Smith", res.DoctorName)
	}
	if res.Confidence.Doctor != 0.5 {
		t.Fatalf("doctor confidence = %v, want 0.5", res.Confidence.Doctor)
	}
}

func TestExtractRequiresTwoCapitalizedWordsForPatient(t *testing.T) {
	e := NewExtractor(nil)
	res := e.Extract("Patient Name: jane doe")

	if res.PatientName != "" || res.Confidence.Patient != 0 {
		t.Fatalf("lowercase name matched: %+v", res)
	}
}

func TestExtractInvalidDOBIsDowngraded(t *testing.T) {
	e := NewExtractor(nil)
	res := e.Extract("DOB: 02/30/1980")

	if res.DOB != "" {
		t.Fatalf("dob = %q, want empty", res.DOB)
	}
	if res.Confidence.DOB != 0 {
		t.Fatalf("dob confidence = %v, want 0", res.Confidence.DOB)
	}
}

func TestExtractBareISODateShape(t *testing.T) {
	e := NewExtractor(nil)
	res := e.Extract("admission record 1975-11-03 ward B")

	if res.DOB != "1975-11-03" {
		t.Fatalf("dob = %q, want 1975-11-03", res.DOB)
	}
}

func TestExtractNeverFailsOnArbitraryInput(t *testing.T) {
	e := NewExtractor(nil)
	inputs := []string{
		"",
		"\x00\xff\xfe binary garbage \x01",
		strings.Repeat("a", 100000),
		"пациент Иванов Иван, дата рождения неизвестна",
		"{{{{ ]] )) unbalanced",
	}
	for _, in := range inputs {
		res := e.Extract(in)
		if res == nil {
			t.Fatal("Extract returned nil")
		}
		if res.Confidence.Patient != 0 || res.Confidence.Doctor != 0 || res.Confidence.DOB != 0 {
			t.Fatalf("unexpected confidence for input %q: %+v", domain.MaskPHI(in), res.Confidence)
		}
	}
}

func TestExtractEvidenceIsClipped(t *testing.T) {
	e := NewExtractor(nil)
	res := e.Extract("Patient Name: Verylongfirstname Verylongmiddlename Verylonglastname Extra Words Here")

	for _, ev := range res.Evidence {
		if len(ev) > len("REGEX:Patient pattern matched: ")+50 {
			t.Fatalf("evidence entry too long: %q", ev)
		}
	}
}
