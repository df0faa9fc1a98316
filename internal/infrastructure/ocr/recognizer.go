package ocr

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/ledongthuc/pdf"

	"github.com/clinicsync/medparse/internal/core/domain"
	"github.com/clinicsync/medparse/internal/core/normalize"
)

type Config struct {
	DPI         int
	TempDir     string
	MaxPages    int
	HeaderPages int
	FooterPages int
	Tesseract   string
	Pdftoppm    string
	Lang        string
}

func (c Config) withDefaults() Config {
	out := c
	if out.DPI <= 0 {
		out.DPI = 300
	}
	if out.TempDir == "" {
		out.TempDir = os.TempDir()
	}
	if out.MaxPages <= 0 {
		out.MaxPages = 50
	}
	if out.HeaderPages <= 0 {
		out.HeaderPages = 5
	}
	if out.FooterPages <= 0 {
		out.FooterPages = 3
	}
	if out.Tesseract == "" {
		out.Tesseract = "tesseract"
	}
	if out.Pdftoppm == "" {
		out.Pdftoppm = "pdftoppm"
	}
	if out.Lang == "" {
		out.Lang = "eng"
	}
	return out
}

// Recognizer turns uploaded document bytes into per-page text. PDFs are read
// through their text layer first; pages without one are rendered and OCR'd.
// Single images become a one-page document.
type Recognizer struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

func NewRecognizer(cfg Config, runner Runner, logger *slog.Logger) *Recognizer {
	if runner == nil {
		runner = execRunner{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Recognizer{cfg: cfg.withDefaults(), runner: runner, logger: logger}
}

func (r *Recognizer) Recognize(ctx context.Context, data []byte) ([]domain.Page, error) {
	if len(data) == 0 {
		return nil, domain.WrapError(domain.ErrInvalidInput, "recognize", errors.New("empty document"))
	}

	if bytes.HasPrefix(data, []byte("%PDF")) {
		return r.recognizePDF(ctx, data)
	}

	// TIFF is absent from the stdlib sniff table.
	if bytes.HasPrefix(data, []byte("II*\x00")) || bytes.HasPrefix(data, []byte("MM\x00*")) {
		return r.recognizeImage(ctx, data, ".tif")
	}

	if ext, ok := imageExtension(http.DetectContentType(data)); ok {
		return r.recognizeImage(ctx, data, ext)
	}

	return nil, domain.WrapError(domain.ErrUnsupportedMedia, "recognize",
		fmt.Errorf("unrecognized content type %q", http.DetectContentType(data)))
}

func (r *Recognizer) recognizeImage(ctx context.Context, data []byte, ext string) ([]domain.Page, error) {
	path, cleanup, err := r.stage(data, ext)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	// A failed OCR run contributes an empty page instead of aborting the
	// document, same as a failing page on the PDF path.
	text, err := r.tesseract(ctx, path)
	if err != nil {
		r.logger.Warn("ocr.image_ocr_failed", "error", err)
		return []domain.Page{{Page: 1}}, nil
	}

	r.logger.Info("ocr.image_recognized", "chars", len(text))
	return []domain.Page{{Page: 1, Text: text}}, nil
}

func (r *Recognizer) recognizePDF(ctx context.Context, data []byte) ([]domain.Page, error) {
	path, cleanup, err := r.stage(data, ".pdf")
	if err != nil {
		return nil, err
	}
	defer cleanup()

	file, reader, err := pdf.Open(path)
	if err != nil {
		return nil, domain.WrapError(domain.ErrInvalidInput, "open pdf", err)
	}
	defer file.Close()

	total := reader.NumPage()
	if total == 0 {
		return nil, nil
	}

	sampled := SamplePages(total, r.cfg.MaxPages, r.cfg.HeaderPages, r.cfg.FooterPages)
	if len(sampled) < total {
		r.logger.Info("ocr.pages_sampled",
			"total", total,
			"header", r.cfg.HeaderPages,
			"footer", r.cfg.FooterPages,
		)
	}

	pages := make([]domain.Page, 0, len(sampled))
	for _, num := range sampled {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		pages = append(pages, domain.Page{Page: num, Text: r.pageText(ctx, reader, path, num)})
	}

	r.logger.Info("ocr.pdf_recognized", "total_pages", total, "recognized_pages", len(pages))
	return pages, nil
}

// pageText never fails: a page the library or the OCR tools choke on
// contributes empty text and the rest of the document still goes through.
func (r *Recognizer) pageText(ctx context.Context, reader *pdf.Reader, pdfPath string, num int) string {
	text, err := textLayer(reader, num)
	if err != nil {
		r.logger.Warn("ocr.text_layer_failed", "page", num, "error", err)
	}
	text = normalize.Text(text)
	if strings.TrimSpace(text) != "" {
		return text
	}

	rendered, err := r.renderAndOCR(ctx, pdfPath, num)
	if err != nil {
		r.logger.Warn("ocr.page_render_failed", "page", num, "error", err)
		return ""
	}
	return rendered
}

// textLayer extracts a page's embedded text. The pdf library panics on some
// malformed content streams, so the call is fenced.
func textLayer(reader *pdf.Reader, num int) (text string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("pdf page %d: %v", num, rec)
		}
	}()

	page := reader.Page(num)
	if page.V.IsNull() {
		return "", nil
	}
	return page.GetPlainText(nil)
}

func (r *Recognizer) renderAndOCR(ctx context.Context, pdfPath string, num int) (string, error) {
	prefix := filepath.Join(r.cfg.TempDir, "page-"+uuid.NewString())
	pageArg := strconv.Itoa(num)

	_, errb, err := r.runner.Run(ctx, r.cfg.Pdftoppm,
		"-f", pageArg, "-l", pageArg,
		"-r", strconv.Itoa(r.cfg.DPI),
		"-gray", "-png", pdfPath, prefix,
	)
	if err != nil {
		return "", fmt.Errorf("pdftoppm: %w: %s", err, truncate(string(errb), 512))
	}

	matches, _ := filepath.Glob(prefix + "*.png")
	defer func() {
		for _, m := range matches {
			_ = os.Remove(m)
		}
	}()
	sort.Strings(matches)
	if len(matches) == 0 {
		return "", errors.New("pdftoppm produced no image")
	}

	return r.tesseract(ctx, matches[0])
}

func (r *Recognizer) tesseract(ctx context.Context, imgPath string) (string, error) {
	out, errb, err := r.runner.Run(ctx, r.cfg.Tesseract, imgPath, "stdout", "-l", r.cfg.Lang)
	if err != nil {
		return "", fmt.Errorf("tesseract: %w: %s", err, truncate(string(errb), 512))
	}
	return normalize.Text(string(out)), nil
}

// stage writes upload bytes to a uniquely named file under the configured
// temp dir so the command-line tools can reach them.
func (r *Recognizer) stage(data []byte, ext string) (string, func(), error) {
	path := filepath.Join(r.cfg.TempDir, uuid.NewString()+ext)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", nil, fmt.Errorf("stage upload: %w", err)
	}
	cleanup := func() {
		if err := os.Remove(path); err != nil {
			slog.Warn("ocr.temp_file_cleanup_failed", "path", path, "error", err)
		}
	}
	return path, cleanup, nil
}

func imageExtension(contentType string) (string, bool) {
	switch contentType {
	case "image/png":
		return ".png", true
	case "image/jpeg":
		return ".jpg", true
	case "image/tiff":
		return ".tif", true
	case "image/bmp":
		return ".bmp", true
	default:
		return "", false
	}
}
