package mcpadapter

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/clinicsync/medparse/internal/core/domain"
	"github.com/clinicsync/medparse/internal/core/ports"
)

// Server exposes the extraction pipeline as an MCP tool so agent hosts can
// parse documents without going through the HTTP API.
type Server struct {
	mcpServer *server.MCPServer
	parser    ports.DocumentParser
	logger    *slog.Logger
}

func NewServer(parser ports.DocumentParser, version string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		mcpServer: server.NewMCPServer("medparse", version, server.WithToolCapabilities(false)),
		parser:    parser,
		logger:    logger,
	}

	tool := mcp.NewTool("parse_document",
		mcp.WithDescription("Extract doctor name, patient name and date of birth from a scanned medical document (PDF or image). Returns per-field confidence scores, evidence snippets and a manual-review flag."),
		mcp.WithString("filename",
			mcp.Description("Original filename, used to detect the document type by extension."),
		),
		mcp.WithString("content_base64",
			mcp.Required(),
			mcp.Description("Document bytes, base64-encoded."),
		),
	)
	s.mcpServer.AddTool(tool, s.parseDocument)

	return s
}

func (s *Server) parseDocument(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	content, err := req.RequireString("content_base64")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	filename := req.GetString("filename", "")

	data, err := base64.StdEncoding.DecodeString(content)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("content_base64 is not valid base64: %v", err)), nil
	}

	result, err := s.parser.Parse(ctx, domain.Upload{Filename: filename, Data: data})
	if err != nil {
		s.logger.Error("mcp.parse_failed", "filename", filename, "error", err)
		return mcp.NewToolResultError(fmt.Sprintf("parse failed: %v", err)), nil
	}

	payload, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("marshal result: %w", err)
	}

	s.logger.Info("mcp.parse_complete",
		"filename", filename,
		"flag_for_review", result.FlagForReview,
		"llm_unavailable", result.LLMUnavailable,
	)
	return mcp.NewToolResultText(string(payload)), nil
}

// ServeStdio blocks, speaking MCP over stdin/stdout until the host closes
// the stream.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}
