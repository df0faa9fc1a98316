package ocr

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/clinicsync/medparse/internal/core/domain"
)

type runnerStub struct {
	calls  [][]string
	stdout string
	err    error
}

func (r *runnerStub) Run(_ context.Context, name string, args ...string) ([]byte, []byte, error) {
	r.calls = append(r.calls, append([]string{name}, args...))
	return []byte(r.stdout), nil, r.err
}

// pngHeader is enough for content-type sniffing; the stubbed tesseract never
// reads the file.
var pngHeader = []byte("\x89PNG\r\n\x1a\n00000000")

func TestRecognizeRejectsEmptyInput(t *testing.T) {
	r := NewRecognizer(Config{TempDir: t.TempDir()}, &runnerStub{}, nil)

	_, err := r.Recognize(context.Background(), nil)
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("error = %v, want ErrInvalidInput kind", err)
	}
}

func TestRecognizeRejectsUnknownMedia(t *testing.T) {
	r := NewRecognizer(Config{TempDir: t.TempDir()}, &runnerStub{}, nil)

	_, err := r.Recognize(context.Background(), []byte("plain text, not a scan"))
	if !domain.IsKind(err, domain.ErrUnsupportedMedia) {
		t.Fatalf("error = %v, want ErrUnsupportedMedia kind", err)
	}
}

func TestRecognizeImageIsSinglePage(t *testing.T) {
	stub := &runnerStub{stdout: "Patient Name: Jane Doe\n"}
	r := NewRecognizer(Config{TempDir: t.TempDir()}, stub, nil)

	pages, err := r.Recognize(context.Background(), pngHeader)
	if err != nil {
		t.Fatalf("Recognize() error = %v", err)
	}
	if len(pages) != 1 || pages[0].Page != 1 {
		t.Fatalf("pages = %+v, want single page 1", pages)
	}
	if pages[0].Text != "Patient Name: Jane Doe\n" {
		t.Fatalf("text = %q", pages[0].Text)
	}

	if len(stub.calls) != 1 || stub.calls[0][0] != "tesseract" {
		t.Fatalf("calls = %v, want one tesseract invocation", stub.calls)
	}
	if stub.calls[0][2] != "stdout" || stub.calls[0][4] != "eng" {
		t.Fatalf("unexpected tesseract args: %v", stub.calls[0])
	}
}

func TestRecognizeImageOCRFailureYieldsEmptyPage(t *testing.T) {
	stub := &runnerStub{err: errors.New("exit status 1")}
	r := NewRecognizer(Config{TempDir: t.TempDir()}, stub, nil)

	pages, err := r.Recognize(context.Background(), pngHeader)
	if err != nil {
		t.Fatalf("Recognize() error = %v, want empty page instead", err)
	}
	if len(pages) != 1 || pages[0].Page != 1 || pages[0].Text != "" {
		t.Fatalf("pages = %+v, want single empty page 1", pages)
	}
}

func TestRecognizeTIFFBySignature(t *testing.T) {
	stub := &runnerStub{stdout: "scanned text"}
	r := NewRecognizer(Config{TempDir: t.TempDir()}, stub, nil)

	pages, err := r.Recognize(context.Background(), []byte("II*\x00 tiff body"))
	if err != nil {
		t.Fatalf("Recognize() error = %v", err)
	}
	if len(pages) != 1 || pages[0].Text != "scanned text" {
		t.Fatalf("pages = %+v", pages)
	}
}

func TestRecognizeImageStripsControlCharacters(t *testing.T) {
	stub := &runnerStub{stdout: "Jane\x00 \x07Doe"}
	r := NewRecognizer(Config{TempDir: t.TempDir()}, stub, nil)

	pages, err := r.Recognize(context.Background(), pngHeader)
	if err != nil {
		t.Fatalf("Recognize() error = %v", err)
	}
	if pages[0].Text != "Jane Doe" {
		t.Fatalf("text = %q, want control characters stripped", pages[0].Text)
	}
}

func TestRecognizeCorruptPDFIsInvalidInput(t *testing.T) {
	r := NewRecognizer(Config{TempDir: t.TempDir()}, &runnerStub{}, nil)

	_, err := r.Recognize(context.Background(), []byte("%PDF-1.4 this is not really a pdf"))
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("error = %v, want ErrInvalidInput kind", err)
	}
}

func TestRecognizeCleansStagedFiles(t *testing.T) {
	dir := t.TempDir()
	r := NewRecognizer(Config{TempDir: dir}, &runnerStub{stdout: "text"}, nil)

	if _, err := r.Recognize(context.Background(), pngHeader); err != nil {
		t.Fatalf("Recognize() error = %v", err)
	}
	// Error path stages the file too before pdf parsing fails.
	_, _ = r.Recognize(context.Background(), []byte("%PDF-1.4 broken"))

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read temp dir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("temp dir not cleaned, %d entries left", len(entries))
	}
}
