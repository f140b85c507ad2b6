/*
Package domain contains the core domain models for the diagram pipeline.

It defines the structured intent (groups, components, relationships), the
generation attempt bookkeeping, the pipeline state machine statuses, and the
error taxonomy. This package is kept pure and free of external dependencies
like I/O or providers, following Hexagonal Architecture principles.

# Key Entities

  - DiagramIntent: the validated structured description of a diagram.
  - GenerationAttempt: one generation-or-correction cycle plus its verdict.
  - RunStatus / RunRecord: the state machine statuses and the persisted
    summary of a terminal run.
  - SchemaError / ProviderError / RenderError / PipelineError: the typed
    failures the pipeline surfaces to callers.
*/
package domain
