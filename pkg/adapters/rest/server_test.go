package rest_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kenjpais/diagram-generator/internal/testutils"
	"github.com/kenjpais/diagram-generator/pkg/adapters/memory"
	"github.com/kenjpais/diagram-generator/pkg/adapters/rest"
	"github.com/kenjpais/diagram-generator/pkg/domain"
	"github.com/kenjpais/diagram-generator/pkg/ports"
)

// fakePipeline scripts one outcome and, like the real pipeline, records the
// run into the store before returning.
type fakePipeline struct {
	store  ports.RunStore
	result *domain.Result
	err    error
	status domain.RunStatus

	lastRequest string
	lastIntent  *domain.DiagramIntent
	lastJob     domain.RenderJob
}

func (f *fakePipeline) Run(ctx context.Context, intent domain.DiagramIntent, job domain.RenderJob) (*domain.Result, error) {
	f.lastIntent = &intent
	return f.finish(ctx, job)
}

func (f *fakePipeline) RunText(ctx context.Context, request string, job domain.RenderJob) (*domain.Result, error) {
	f.lastRequest = request
	return f.finish(ctx, job)
}

func (f *fakePipeline) finish(ctx context.Context, job domain.RenderJob) (*domain.Result, error) {
	f.lastJob = job
	if f.status != "" {
		_ = f.store.Save(ctx, domain.RunRecord{
			ID:        job.BaseName,
			Status:    f.status,
			Attempts:  2,
			CreatedAt: time.Now().UTC(),
		})
	}
	return f.result, f.err
}

func newTestServer(t *testing.T, pipe *fakePipeline) (http.Handler, ports.RunStore) {
	t.Helper()
	store := memory.NewStore()
	pipe.store = store
	handler, err := rest.NewHandler(pipe, store,
		rest.WithRenderDefaults(t.TempDir(), domain.FormatSVG))
	require.NoError(t, err)
	return handler, store
}

func postJSON(t *testing.T, handler http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

func get(handler http.Handler, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

func TestCreateDiagramFromRequest(t *testing.T) {
	pipe := &fakePipeline{
		result: &domain.Result{Attempts: 2, ArtifactPath: "output/api_run.png"},
		status: domain.StatusSucceeded,
	}
	handler, _ := newTestServer(t, pipe)

	w := postJSON(t, handler, "/v1/diagrams", map[string]any{
		"request":   "draw the payment flow",
		"base_name": "api_run",
		"format":    "png",
	})

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "draw the payment flow", pipe.lastRequest)
	assert.Equal(t, "api_run", pipe.lastJob.BaseName)
	assert.Equal(t, domain.FormatPNG, pipe.lastJob.Format)

	var rec domain.RunRecord
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rec))
	assert.Equal(t, "api_run", rec.ID)
	assert.Equal(t, domain.StatusSucceeded, rec.Status)
	assert.Equal(t, 2, rec.Attempts)
}

func TestCreateDiagramFromIntent(t *testing.T) {
	pipe := &fakePipeline{
		result: &domain.Result{Attempts: 1},
		status: domain.StatusSucceeded,
	}
	handler, _ := newTestServer(t, pipe)

	w := postJSON(t, handler, "/v1/diagrams", map[string]any{
		"intent": testutils.ValidIntent(),
	})

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	require.NotNil(t, pipe.lastIntent)
	assert.Equal(t, domain.DiagramSystem, pipe.lastIntent.Type)
	assert.Empty(t, pipe.lastRequest)
	assert.True(t, strings.HasPrefix(pipe.lastJob.BaseName, "diagram_"),
		"unnamed requests get a generated base name, got %q", pipe.lastJob.BaseName)
}

func TestCreateDiagramRequiresInput(t *testing.T) {
	pipe := &fakePipeline{}
	handler, _ := newTestServer(t, pipe)

	w := postJSON(t, handler, "/v1/diagrams", map[string]any{})

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "request or intent")
	assert.Zero(t, pipe.lastJob.BaseName, "the pipeline must not run")
}

func TestCreateDiagramContractRejectsBadBodies(t *testing.T) {
	pipe := &fakePipeline{}
	handler, _ := newTestServer(t, pipe)

	cases := []map[string]any{
		{"request": "x", "format": "gif"},
		{"request": 17},
		{"request": "x", "base_name": "no spaces allowed"},
		{"request": "x", "surprise": true},
	}
	for _, body := range cases {
		w := postJSON(t, handler, "/v1/diagrams", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, "body %v: %s", body, w.Body.String())
	}
	assert.Zero(t, pipe.lastJob.BaseName, "rejected requests never reach the pipeline")
}

func TestCreateDiagramInvalidIntent(t *testing.T) {
	pipe := &fakePipeline{
		err: &domain.SchemaError{Field: "diagram_type", Reason: "unknown diagram type", Value: "mindmap"},
	}
	handler, _ := newTestServer(t, pipe)

	intent := testutils.ValidIntent()
	intent.Type = "mindmap"
	w := postJSON(t, handler, "/v1/diagrams", map[string]any{"intent": intent})

	require.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var resp struct {
		Error string `json:"error"`
		Field string `json:"field"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "diagram_type", resp.Field)
}

func TestCreateDiagramProviderUnreachable(t *testing.T) {
	pipe := &fakePipeline{
		err: &domain.PipelineError{
			Reason: domain.ReasonGenerationUnavailable,
			Err:    &domain.ProviderError{Provider: "gemini", Op: "generate", Err: errors.New("dial tcp: refused")},
		},
	}
	handler, _ := newTestServer(t, pipe)

	w := postJSON(t, handler, "/v1/diagrams", map[string]any{"request": "draw something"})

	require.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), "gemini")
}

func TestCreateDiagramExhaustedBudgetIsAResult(t *testing.T) {
	pipe := &fakePipeline{
		err: &domain.PipelineError{
			Reason:      domain.ReasonMaxRetriesExceeded,
			Diagnostics: []string{"missing brace", "still missing"},
			LastSource:  "digraph G",
		},
		status: domain.StatusFailed,
	}
	handler, _ := newTestServer(t, pipe)

	w := postJSON(t, handler, "/v1/diagrams", map[string]any{"request": "draw", "base_name": "doomed"})

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var rec domain.RunRecord
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rec))
	assert.Equal(t, "doomed", rec.ID)
	assert.Equal(t, domain.StatusFailed, rec.Status)
}

func TestCreateDiagramRenderFailureAttempts(t *testing.T) {
	// Nothing in the store, so the record is assembled from the error. A
	// render failure made one more validation pass than it has rejections
	// and the payload must carry that count.
	pipe := &fakePipeline{
		err: &domain.PipelineError{
			Reason:      domain.ReasonRenderFailure,
			Attempts:    2,
			Diagnostics: []string{"missing brace"},
			LastSource:  "digraph G { a -> b }",
		},
	}
	handler, _ := newTestServer(t, pipe)

	w := postJSON(t, handler, "/v1/diagrams", map[string]any{"request": "draw", "base_name": "unrenderable"})

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var rec domain.RunRecord
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rec))
	assert.Equal(t, domain.ReasonRenderFailure, rec.Reason)
	assert.Equal(t, 2, rec.Attempts)
	assert.Len(t, rec.Diagnostics, 1)
}

func TestListRuns(t *testing.T) {
	handler, store := newTestServer(t, &fakePipeline{})
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, domain.RunRecord{
		ID: "old", Status: domain.StatusSucceeded, CreatedAt: time.Now().Add(-time.Hour).UTC(),
	}))
	require.NoError(t, store.Save(ctx, domain.RunRecord{
		ID: "new", Status: domain.StatusFailed, CreatedAt: time.Now().UTC(),
	}))

	w := get(handler, "/v1/runs")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Runs []domain.RunRecord `json:"runs"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Runs, 2)
	assert.Equal(t, "new", resp.Runs[0].ID, "newest first")

	w = get(handler, "/v1/runs?limit=1")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Runs, 1)

	w = get(handler, "/v1/runs?limit=nope")
	assert.Equal(t, http.StatusBadRequest, w.Code, "the contract types the limit parameter")

	w = get(handler, "/v1/runs?limit=0")
	assert.Equal(t, http.StatusBadRequest, w.Code, "the contract bounds the limit parameter")
}

func TestGetRun(t *testing.T) {
	handler, store := newTestServer(t, &fakePipeline{})
	require.NoError(t, store.Save(context.Background(), domain.RunRecord{
		ID: "run_7", Status: domain.StatusSucceeded, CreatedAt: time.Now().UTC(),
	}))

	w := get(handler, "/v1/runs/run_7")
	require.Equal(t, http.StatusOK, w.Code)

	var rec domain.RunRecord
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rec))
	assert.Equal(t, "run_7", rec.ID)

	w = get(handler, "/v1/runs/ghost")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestServiceEndpoints(t *testing.T) {
	pipe := &fakePipeline{}
	store := memory.NewStore()
	pipe.store = store

	registry := prometheus.NewRegistry()
	handler, err := rest.NewHandler(pipe, store, rest.WithMetrics(registry))
	require.NoError(t, err)

	w := get(handler, "/healthz")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	w = get(handler, "/openapi.yaml")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "openapi: 3.0.3")

	w = get(handler, "/swagger")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")

	w = get(handler, "/metrics")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHandlerRequiresCollaborators(t *testing.T) {
	_, err := rest.NewHandler(nil, memory.NewStore())
	assert.ErrorContains(t, err, "pipeline")

	_, err = rest.NewHandler(&fakePipeline{}, nil)
	assert.ErrorContains(t, err, "store")
}
