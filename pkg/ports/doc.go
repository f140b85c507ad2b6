/*
Package ports defines the driven ports (interfaces) for the diagram pipeline.

These interfaces decouple the pipeline core from its external collaborators,
allowing the generative provider, the syntax checker, the rendering toolchain
and the run-history backend to be swapped without touching the state machine.

# Key Interfaces

  - CodeRequestor: asks a generative text provider for diagram source, either
    fresh from an intent or corrected from a prior attempt.
  - SyntaxValidator: judges one source text, returning a verdict with an
    opaque diagnostic on rejection.
  - Renderer: turns validated source into a persisted artifact pair.
  - IntentExtractor: turns a free-form request into a structured intent.
  - RunStore: persists terminal run summaries for later inspection.
  - Locker: guards an output base name while a run renders to it.
*/
package ports
