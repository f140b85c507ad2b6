// Package testutils provides scripted fake collaborators so pipeline tests
// can run without a live provider, a Graphviz install, or a storage backend.
package testutils

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/kenjpais/diagram-generator/pkg/domain"
)

// ValidIntent returns a minimal intent that passes schema validation.
func ValidIntent() domain.DiagramIntent {
	return domain.DiagramIntent{
		Type: domain.DiagramSystem,
		Components: []domain.Component{
			{ID: "api", Label: "API Gateway", Type: "service"},
			{ID: "db", Label: "Primary DB", Type: "database"},
		},
		Relationships: []domain.Relationship{
			{Source: "api", Target: "db", Type: "data_flow", Label: "reads/writes"},
		},
	}
}

// Completion is one scripted answer from the FakeRequestor.
type Completion struct {
	Source string
	Err    error
}

// Correction captures the arguments of one Correct call.
type Correction struct {
	PriorSource string
	Diagnostic  string
}

// FakeRequestor replays a script of completions: the first entry answers
// Generate, subsequent entries answer Correct calls in order. Consuming past
// the end of the script is a test bug and fails loudly.
type FakeRequestor struct {
	Script []Completion

	GenerateCalls int
	CorrectCalls  int
	Corrections   []Correction
}

func (f *FakeRequestor) Generate(_ context.Context, _ domain.DiagramIntent) (string, error) {
	f.GenerateCalls++
	return f.next()
}

func (f *FakeRequestor) Correct(_ context.Context, _ domain.DiagramIntent, priorSource, diagnostic string) (string, error) {
	f.CorrectCalls++
	f.Corrections = append(f.Corrections, Correction{PriorSource: priorSource, Diagnostic: diagnostic})
	return f.next()
}

func (f *FakeRequestor) next() (string, error) {
	if len(f.Script) == 0 {
		return "", errors.New("testutils: completion script exhausted")
	}
	head := f.Script[0]
	f.Script = f.Script[1:]
	return head.Source, head.Err
}

// FakeValidator rejects the first Rejections sources it sees and accepts
// everything after. Diagnostics are numbered per call so tests can assert
// exact accumulation order.
type FakeValidator struct {
	Rejections int
	Diagnostic string // base text; defaults to "missing opening brace"

	Calls   int
	Sources []string
}

func (f *FakeValidator) Validate(_ context.Context, source string) domain.Verdict {
	f.Calls++
	f.Sources = append(f.Sources, source)
	if f.Calls <= f.Rejections {
		base := f.Diagnostic
		if base == "" {
			base = "missing opening brace"
		}
		return domain.Reject(fmt.Sprintf("%s (pass %d)", base, f.Calls))
	}
	return domain.Accept()
}

// FakeRenderer derives the artifact paths a real renderer would produce,
// without touching disk.
type FakeRenderer struct {
	Err error

	Calls   int
	Sources []string
	Jobs    []domain.RenderJob
}

func (f *FakeRenderer) Render(_ context.Context, source string, job domain.RenderJob) (domain.Artifact, error) {
	f.Calls++
	f.Sources = append(f.Sources, source)
	f.Jobs = append(f.Jobs, job)
	if f.Err != nil {
		return domain.Artifact{}, f.Err
	}
	return domain.Artifact{
		SourcePath:   filepath.Join(job.Dir, job.BaseName+".dot"),
		ArtifactPath: filepath.Join(job.Dir, job.BaseName+"."+string(job.Format)),
	}, nil
}

// FakeExtractor answers every Extract call with a fixed intent or error.
type FakeExtractor struct {
	Intent domain.DiagramIntent
	Err    error

	Requests []string
}

func (f *FakeExtractor) Extract(_ context.Context, request string) (domain.DiagramIntent, error) {
	f.Requests = append(f.Requests, request)
	if f.Err != nil {
		return domain.DiagramIntent{}, f.Err
	}
	return f.Intent, nil
}

// FailingStore errors on every operation so tests can prove run-record
// writes stay best-effort.
type FailingStore struct {
	Err error

	Saves int
}

func (s *FailingStore) failure() error {
	if s.Err != nil {
		return s.Err
	}
	return errors.New("testutils: store offline")
}

func (s *FailingStore) Save(context.Context, domain.RunRecord) error {
	s.Saves++
	return s.failure()
}

func (s *FailingStore) Load(context.Context, string) (domain.RunRecord, error) {
	return domain.RunRecord{}, s.failure()
}

func (s *FailingStore) List(context.Context, int) ([]domain.RunRecord, error) {
	return nil, s.failure()
}

func (s *FailingStore) Delete(context.Context, string) error {
	return s.failure()
}
