package httpadapter

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/clinicsync/medparse/internal/config"
	"github.com/clinicsync/medparse/internal/core/domain"
	"github.com/clinicsync/medparse/internal/core/ports"
	"github.com/clinicsync/medparse/internal/observability/metrics"
)

const serviceName = "api"

// maxUploadBytes bounds how much of a multipart upload is read into memory.
const maxUploadBytes = 64 << 20

// maxInFlightParses bounds concurrent requests before the backpressure gate
// sheds load. Parses hold an OCR subprocess and a model call each.
const maxInFlightParses = 32

var allowedContentTypes = []string{
	"application/pdf",
	"image/png",
	"image/jpeg",
	"image/jpg",
	"image/tiff",
	"image/bmp",
}

var allowedExtensions = map[string]bool{
	".pdf": true, ".png": true, ".jpg": true, ".jpeg": true,
	".tiff": true, ".tif": true, ".bmp": true,
}

type Router struct {
	parser  ports.DocumentParser
	metrics *metrics.HTTPServerMetrics
	cfg     config.Config
	logger  *slog.Logger
}

func NewRouter(parser ports.DocumentParser, m *metrics.HTTPServerMetrics, cfg config.Config, logger *slog.Logger) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{parser: parser, metrics: m, cfg: cfg, logger: logger}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/v1/parse", rt.parseDocument)
	mux.HandleFunc("/openapi.yaml", rt.openapiSpec)
	mux.Handle("/metrics", rt.metrics.Handler())

	var handler http.Handler = mux
	handler = rt.metrics.Middleware(serviceName, handler)
	if rt.cfg.APIRateLimitRPS > 0 {
		handler = rateLimitMiddleware(handler, rt.cfg.APIRateLimitRPS, rt.cfg.APIRateLimitBurst)
	}
	handler = backpressureMiddleware(handler, maxInFlightParses, 100*time.Millisecond)
	handler = accessLogMiddleware(handler)
	handler = requestIDMiddleware(handler)
	return handler
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) parseDocument(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "multipart field 'file' is required"})
		return
	}
	defer file.Close()

	contentType := fileHeader.Header.Get("Content-Type")
	if !allowedUploadType(contentType, fileHeader.Filename) {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "unsupported file type: allowed are PDF, PNG, JPEG, TIFF, BMP",
		})
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "failed to read upload"})
		return
	}
	if len(data) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "empty file uploaded"})
		return
	}

	rt.logger.Info("parse_request",
		"request_id", requestIDFromContext(r.Context()),
		"filename", fileHeader.Filename,
		"content_type", contentType,
		"bytes", len(data),
	)

	start := time.Now()
	result, err := rt.parser.Parse(r.Context(), domain.Upload{
		Filename:    fileHeader.Filename,
		ContentType: contentType,
		Data:        data,
	})
	if err != nil {
		status := mapErrorToHTTPStatus(err)
		rt.metrics.RecordParse(serviceName, "error", 0, time.Since(start))
		rt.logger.Error("parse_failed",
			"request_id", requestIDFromContext(r.Context()),
			"status", status,
			"error", err,
		)
		writeJSON(w, status, map[string]string{"error": errorMessage(err, status)})
		return
	}

	rt.metrics.RecordParse(serviceName, "ok", result.PagesRecognized, time.Since(start))
	if result.LLMUnavailable {
		rt.metrics.RecordLLMUnavailable(serviceName)
	}
	if result.FlagForReview {
		rt.metrics.RecordReviewFlagged(serviceName)
	}

	writeJSON(w, http.StatusOK, result)
}

func allowedUploadType(contentType, filename string) bool {
	for _, allowed := range allowedContentTypes {
		if strings.Contains(contentType, allowed) {
			return true
		}
	}
	if filename != "" {
		return allowedExtensions[strings.ToLower(filepath.Ext(filename))]
	}
	return false
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
