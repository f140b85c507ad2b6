// Package mcp exposes the pipeline to agent hosts over the Model Context
// Protocol, on stdio or SSE. Tools mirror the REST semantics: a run that
// completed and failed is a structured result, not a protocol error.
package mcp

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/mitchellh/mapstructure"

	diagen "github.com/kenjpais/diagram-generator"
	"github.com/kenjpais/diagram-generator/pkg/domain"
	"github.com/kenjpais/diagram-generator/pkg/ports"
)

// Pipeline is the slice of the generation engine the tools consume.
type Pipeline interface {
	Run(ctx context.Context, intent domain.DiagramIntent, job domain.RenderJob) (*domain.Result, error)
	RunText(ctx context.Context, request string, job domain.RenderJob) (*domain.Result, error)
}

// GenerateResponse is the structured payload of the generate_diagram tool.
type GenerateResponse struct {
	Status       string   `json:"status" jsonschema_description:"succeeded or failed"`
	Reason       string   `json:"reason,omitempty" jsonschema_description:"Failure reason for failed runs"`
	Attempts     int      `json:"attempts" jsonschema_description:"Generation attempts spent"`
	SourcePath   string   `json:"source_path,omitempty" jsonschema_description:"Path of the accepted DOT source"`
	ArtifactPath string   `json:"artifact_path,omitempty" jsonschema_description:"Path of the rendered diagram"`
	Diagnostics  []string `json:"diagnostics,omitempty" jsonschema_description:"Validator diagnostics, one per rejected draft"`
}

// ValidateResponse is the structured payload of the validate_dot tool.
type ValidateResponse struct {
	Valid      bool   `json:"valid" jsonschema_description:"Whether the source passes validation"`
	Diagnostic string `json:"diagnostic,omitempty" jsonschema_description:"First syntax problem found"`
}

// Server exposes the pipeline as an MCP server.
type Server struct {
	pipe      Pipeline
	validator ports.SyntaxValidator
	store     ports.RunStore
	logger    *slog.Logger
	outputDir string
	format    domain.Format
	mcpServer *server.MCPServer
}

// Option configures the server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithStore exposes run history as the diagen://runs resource.
func WithStore(store ports.RunStore) Option {
	return func(s *Server) {
		s.store = store
	}
}

// WithRenderDefaults sets the output directory and format used when a tool
// call does not name them.
func WithRenderDefaults(dir string, format domain.Format) Option {
	return func(s *Server) {
		if dir != "" {
			s.outputDir = dir
		}
		if format.Known() {
			s.format = format
		}
	}
}

// NewServer creates an MCP server around the pipeline and validator.
func NewServer(pipe Pipeline, validator ports.SyntaxValidator, opts ...Option) *Server {
	s := &Server{
		pipe:      pipe,
		validator: validator,
		logger:    slog.Default(),
		outputDir: "output",
		format:    domain.FormatSVG,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.mcpServer = server.NewMCPServer("diagen-mcp", strings.TrimSpace(diagen.Version))
	s.registerTools()
	if s.store != nil {
		s.registerResources()
	}
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE, shutting down
// gracefully when the context is cancelled.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	generateTool := mcp.NewTool("generate_diagram",
		mcp.WithDescription("Generate an architecture diagram from a natural-language request or a structured intent document."),
		mcp.WithString("request", mcp.Description("Natural-language description of the diagram to generate")),
		mcp.WithObject("intent", mcp.Description("Structured intent document (diagram_type, groups, components, relationships); overrides request when present")),
		mcp.WithString("format", mcp.Description("Artifact format: svg, png or pdf (default svg)")),
		mcp.WithString("base_name", mcp.Description("Artifact base name (a timestamped name is used when omitted)")),
		mcp.WithOutputSchema[GenerateResponse](),
	)
	s.mcpServer.AddTool(generateTool, mcp.NewStructuredToolHandler(s.handleGenerate))

	validateTool := mcp.NewTool("validate_dot",
		mcp.WithDescription("Check Graphviz DOT source for syntax problems without rendering it."),
		mcp.WithString("source", mcp.Required(), mcp.Description("DOT source text")),
		mcp.WithOutputSchema[ValidateResponse](),
	)
	s.mcpServer.AddTool(validateTool, mcp.NewStructuredToolHandler(s.handleValidate))
}

func (s *Server) handleGenerate(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (GenerateResponse, error) {
	job := domain.RenderJob{
		Dir:    s.outputDir,
		Format: s.format,
	}
	if raw, ok := args["format"].(string); ok && raw != "" {
		format := domain.Format(strings.ToLower(raw))
		if !format.Known() {
			return GenerateResponse{}, fmt.Errorf("unknown format %q (want svg, png or pdf)", raw)
		}
		job.Format = format
	}
	if name, ok := args["base_name"].(string); ok && name != "" {
		job.BaseName = name
	}
	if job.BaseName == "" {
		job.BaseName = defaultBaseName(time.Now())
	}

	var (
		result *domain.Result
		err    error
	)
	if raw, ok := args["intent"].(map[string]interface{}); ok {
		var intent domain.DiagramIntent
		if decErr := decodeIntent(raw, &intent); decErr != nil {
			return GenerateResponse{}, fmt.Errorf("invalid intent: %w", decErr)
		}
		result, err = s.pipe.Run(ctx, intent, job)
	} else if text, ok := args["request"].(string); ok && strings.TrimSpace(text) != "" {
		result, err = s.pipe.RunText(ctx, text, job)
	} else {
		return GenerateResponse{}, errors.New("one of request or intent is required")
	}

	if err != nil {
		var provErr *domain.ProviderError
		var pipeErr *domain.PipelineError
		switch {
		case errors.As(err, &provErr):
			s.logger.Error("provider failure", "provider", provErr.Provider, "op", provErr.Op, "error", err)
			return GenerateResponse{}, err
		case errors.As(err, &pipeErr):
			return GenerateResponse{
				Status:      string(domain.StatusFailed),
				Reason:      string(pipeErr.Reason),
				Attempts:    pipeErr.Attempts,
				Diagnostics: pipeErr.Diagnostics,
			}, nil
		default:
			return GenerateResponse{}, err
		}
	}

	return GenerateResponse{
		Status:       string(domain.StatusSucceeded),
		Attempts:     result.Attempts,
		SourcePath:   result.SourcePath,
		ArtifactPath: result.ArtifactPath,
		Diagnostics:  result.Diagnostics,
	}, nil
}

func (s *Server) handleValidate(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (ValidateResponse, error) {
	source, _ := args["source"].(string)
	if strings.TrimSpace(source) == "" {
		return ValidateResponse{}, errors.New("source is required")
	}

	verdict := s.validator.Validate(ctx, source)
	return ValidateResponse{Valid: verdict.Valid, Diagnostic: verdict.Diagnostic}, nil
}

// decodeIntent maps the loosely-typed tool argument onto the intent
// document. The decoder reuses the json field names so tool payloads and
// the REST body share one shape.
func decodeIntent(raw map[string]interface{}, intent *domain.DiagramIntent) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName: "json",
		Result:  intent,
	})
	if err != nil {
		return err
	}
	return dec.Decode(raw)
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource("diagen://runs", "Run History",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		records, err := s.store.List(ctx, 50)
		if err != nil {
			return nil, fmt.Errorf("listing runs: %w", err)
		}
		jsonBytes, _ := json.Marshal(records)

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      "diagen://runs",
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}

// defaultBaseName builds a unique artifact name for unnamed tool calls.
func defaultBaseName(t time.Time) string {
	var suffix [2]byte
	_, _ = rand.Read(suffix[:])
	return fmt.Sprintf("diagram_%s_%x", t.Format("20060102_150405"), suffix)
}
