package domain

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestPatternEvidenceClipsLongSpans(t *testing.T) {
	span := strings.Repeat("a", 120)
	entry := PatternEvidence(FieldPatient, span)

	if !strings.HasPrefix(entry, "REGEX:Patient pattern matched: ") {
		t.Fatalf("entry = %q", entry)
	}
	if !strings.HasSuffix(entry, strings.Repeat("a", evidenceSpanLimit)) {
		t.Fatalf("span not clipped to %d bytes: %q", evidenceSpanLimit, entry)
	}
}

func TestPatternEvidenceClipsOnRuneBoundary(t *testing.T) {
	// 3-byte runes put the byte limit mid-rune.
	span := strings.Repeat("名", 20)
	entry := PatternEvidence(FieldDOB, span)

	if !utf8.ValidString(entry) {
		t.Fatalf("entry contains invalid UTF-8: %q", entry)
	}
	clipped := strings.TrimPrefix(entry, "REGEX:DOB pattern matched: ")
	if !strings.HasPrefix(span, clipped) || len(clipped) > evidenceSpanLimit {
		t.Fatalf("clipped span = %q (%d bytes)", clipped, len(clipped))
	}
}

func TestIsPatternEvidenceMatchesFieldExactly(t *testing.T) {
	entry := PatternEvidence(FieldDoctor, "Dr. Gregory House")

	if !IsPatternEvidence(entry, FieldDoctor) {
		t.Fatal("entry should match its own field")
	}
	if IsPatternEvidence(entry, FieldDOB) {
		t.Fatal("entry must not match another field")
	}
}
