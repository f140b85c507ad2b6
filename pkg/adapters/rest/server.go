// Package rest exposes the pipeline over HTTP. The wire contract lives in
// the embedded OpenAPI document: it is served at /openapi.yaml, browsable
// at /swagger, and enforced on every documented route before a handler
// runs, so handlers only see bodies the contract admits.
package rest

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	_ "embed"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	"github.com/getkin/kin-openapi/routers/gorillamux"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kenjpais/diagram-generator/pkg/domain"
	"github.com/kenjpais/diagram-generator/pkg/ports"
)

//go:embed openapi.yaml
var specYAML []byte

// Pipeline is the slice of the generation engine the API consumes.
type Pipeline interface {
	Run(ctx context.Context, intent domain.DiagramIntent, job domain.RenderJob) (*domain.Result, error)
	RunText(ctx context.Context, request string, job domain.RenderJob) (*domain.Result, error)
}

// Server maps the HTTP surface onto the pipeline and the run store.
type Server struct {
	pipe      Pipeline
	store     ports.RunStore
	logger    *slog.Logger
	gatherer  prometheus.Gatherer
	outputDir string
	format    domain.Format
}

// Option configures the server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics mounts a Prometheus /metrics endpoint for the gatherer.
func WithMetrics(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = g
	}
}

// WithRenderDefaults sets the output directory and format used when a
// request does not name them.
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

// NewHandler builds the API handler. It fails when the embedded contract
// does not load or validate, so a broken document is caught at startup
// rather than on the first request.
func NewHandler(pipe Pipeline, store ports.RunStore, opts ...Option) (http.Handler, error) {
	if pipe == nil {
		return nil, errors.New("rest: a pipeline is required")
	}
	if store == nil {
		return nil, errors.New("rest: a run store is required")
	}

	s := &Server{
		pipe:      pipe,
		store:     store,
		logger:    slog.Default(),
		outputDir: "output",
		format:    domain.FormatSVG,
	}
	for _, opt := range opts {
		opt(s)
	}

	ctx := context.Background()
	loader := &openapi3.Loader{Context: ctx}
	doc, err := loader.LoadFromData(specYAML)
	if err != nil {
		return nil, fmt.Errorf("rest: loading contract: %w", err)
	}
	if err := doc.Validate(ctx); err != nil {
		return nil, fmt.Errorf("rest: invalid contract: %w", err)
	}
	router, err := gorillamux.NewRouter(doc)
	if err != nil {
		return nil, fmt.Errorf("rest: building contract router: %w", err)
	}

	r := chi.NewRouter()

	r.Get("/openapi.yaml", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		_, _ = w.Write(specYAML)
	})
	r.Get("/swagger", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(swaggerHTML))
	})
	r.Get("/healthz", s.health)
	if s.gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	r.Group(func(r chi.Router) {
		r.Use(validateRequests(router, s.logger))
		r.Post("/v1/diagrams", s.createDiagram)
		r.Get("/v1/runs", s.listRuns)
		r.Get("/v1/runs/{id}", s.getRun)
	})

	return enableCORS(r), nil
}

// validateRequests enforces the contract on requests that match a
// documented route. Undocumented paths fall through to the mux, which owns
// the 404.
func validateRequests(router routers.Router, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			route, pathParams, err := router.FindRoute(r)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			input := &openapi3filter.RequestValidationInput{
				Request:    r,
				PathParams: pathParams,
				Route:      route,
			}
			if err := openapi3filter.ValidateRequest(r.Context(), input); err != nil {
				logger.Warn("request rejected by contract", "path", r.URL.Path, "error", err)
				respondJSON(w, http.StatusBadRequest, apiError{Error: contractMessage(err)})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// contractMessage flattens a validation failure into one line for the
// error body.
func contractMessage(err error) string {
	var reqErr *openapi3filter.RequestError
	if errors.As(err, &reqErr) {
		return strings.ReplaceAll(reqErr.Error(), "\n", " ")
	}
	return err.Error()
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// diagramRequest is the body of POST /v1/diagrams.
type diagramRequest struct {
	Request  string                `json:"request,omitempty"`
	Intent   *domain.DiagramIntent `json:"intent,omitempty"`
	BaseName string                `json:"base_name,omitempty"`
	Format   string                `json:"format,omitempty"`
}

type apiError struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func (s *Server) createDiagram(w http.ResponseWriter, r *http.Request) {
	var body diagramRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondJSON(w, http.StatusBadRequest, apiError{Error: fmt.Sprintf("invalid request body: %v", err)})
		return
	}

	job := domain.RenderJob{
		Dir:      s.outputDir,
		BaseName: body.BaseName,
		Format:   s.format,
	}
	if body.Format != "" {
		job.Format = domain.Format(body.Format)
	}
	if job.BaseName == "" {
		job.BaseName = defaultBaseName(time.Now())
	}

	var (
		result *domain.Result
		err    error
	)
	switch {
	case body.Intent != nil:
		result, err = s.pipe.Run(r.Context(), *body.Intent, job)
	case strings.TrimSpace(body.Request) != "":
		result, err = s.pipe.RunText(r.Context(), body.Request, job)
	default:
		respondJSON(w, http.StatusBadRequest, apiError{Error: "one of request or intent is required"})
		return
	}
	if err != nil {
		s.respondRunError(w, r, err, job.BaseName)
		return
	}

	respondJSON(w, http.StatusCreated, s.recordOr(r.Context(), job.BaseName, domain.RunRecord{
		ID:           job.BaseName,
		Status:       domain.StatusSucceeded,
		Attempts:     result.Attempts,
		Diagnostics:  result.Diagnostics,
		SourcePath:   result.SourcePath,
		ArtifactPath: result.ArtifactPath,
		CreatedAt:    time.Now().UTC(),
	}))
}

// respondRunError maps a failed run onto the wire. An invalid intent never
// started a run (422); an unreachable provider is an upstream fault (502);
// a run that completed and failed is a result, delivered as its record
// with a 200.
func (s *Server) respondRunError(w http.ResponseWriter, r *http.Request, err error, id string) {
	var schemaErr *domain.SchemaError
	if errors.As(err, &schemaErr) {
		respondJSON(w, http.StatusUnprocessableEntity, apiError{Error: schemaErr.Error(), Field: schemaErr.Field})
		return
	}

	var provErr *domain.ProviderError
	if errors.As(err, &provErr) {
		s.logger.Error("provider failure", "provider", provErr.Provider, "op", provErr.Op, "error", err)
		respondJSON(w, http.StatusBadGateway, apiError{Error: provErr.Error()})
		return
	}

	var pipeErr *domain.PipelineError
	if errors.As(err, &pipeErr) {
		respondJSON(w, http.StatusOK, s.recordOr(r.Context(), id, domain.RunRecord{
			ID:          id,
			Status:      domain.StatusFailed,
			Reason:      pipeErr.Reason,
			Attempts:    pipeErr.Attempts,
			Diagnostics: pipeErr.Diagnostics,
			CreatedAt:   time.Now().UTC(),
		}))
		return
	}

	s.logger.Error("run failed", "run", id, "error", err)
	respondJSON(w, http.StatusInternalServerError, apiError{Error: err.Error()})
}

// recordOr returns the stored record for a run, or the fallback assembled
// from in-hand data when the store cannot produce it.
func (s *Server) recordOr(ctx context.Context, id string, fallback domain.RunRecord) domain.RunRecord {
	rec, err := s.store.Load(ctx, id)
	if err != nil {
		s.logger.Warn("run record unavailable, answering from result", "run", id, "error", err)
		return fallback
	}
	return rec
}

func (s *Server) listRuns(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}

	records, err := s.store.List(r.Context(), limit)
	if err != nil {
		s.logger.Error("listing runs failed", "error", err)
		respondJSON(w, http.StatusInternalServerError, apiError{Error: "listing runs failed"})
		return
	}
	if records == nil {
		records = []domain.RunRecord{}
	}
	respondJSON(w, http.StatusOK, map[string]any{"runs": records})
}

func (s *Server) getRun(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	rec, err := s.store.Load(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrRunNotFound) {
			respondJSON(w, http.StatusNotFound, apiError{Error: fmt.Sprintf("no run %q", id)})
			return
		}
		s.logger.Error("loading run failed", "run", id, "error", err)
		respondJSON(w, http.StatusInternalServerError, apiError{Error: "loading run failed"})
		return
	}
	respondJSON(w, http.StatusOK, rec)
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// defaultBaseName builds a unique artifact name for unnamed requests.
// Concurrent requests can land in the same second, so a random suffix keeps
// records and artifacts from colliding.
func defaultBaseName(t time.Time) string {
	var suffix [2]byte
	_, _ = rand.Read(suffix[:])
	return fmt.Sprintf("diagram_%s_%x", t.Format("20060102_150405"), suffix)
}

const swaggerHTML = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>Diagram Generator API</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui.css" />
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui-bundle.js" crossorigin></script>
<script>
    window.onload = () => {
    window.ui = SwaggerUIBundle({
        url: '/openapi.yaml',
        dom_id: '#swagger-ui',
    });
    };
</script>
</body>
</html>
`
