package dsl

import (
	"fmt"

	"github.com/kenjpais/diagram-generator/pkg/domain"
)

// Builder accumulates the intent parts in declaration order.
type Builder struct {
	intent domain.DiagramIntent
}

// New creates a builder for the given diagram type.
func New(diagramType domain.DiagramType) *Builder {
	return &Builder{
		intent: domain.DiagramIntent{Type: diagramType},
	}
}

// Group declares a named container. Nest it under another group with InGroup.
func (b *Builder) Group(id, label string, opts ...ElementOption) *Builder {
	var e element
	for _, opt := range opts {
		opt(&e)
	}
	b.intent.Groups = append(b.intent.Groups, domain.Group{
		ID:          id,
		Label:       label,
		ParentGroup: e.parentGroup,
	})
	return b
}

// Component declares a diagram node. The component type is a free-form
// styling tag ("router", "database", ...).
func (b *Builder) Component(id, label, componentType string, opts ...ElementOption) *Builder {
	var e element
	for _, opt := range opts {
		opt(&e)
	}
	b.intent.Components = append(b.intent.Components, domain.Component{
		ID:          id,
		Label:       label,
		Type:        componentType,
		ParentGroup: e.parentGroup,
	})
	return b
}

// Relation declares a directed edge between two declared components. The
// relation type is a free-form tag ("data_flow", "dependency", "api_call").
func (b *Builder) Relation(source, target, relationType string, opts ...ElementOption) *Builder {
	var e element
	for _, opt := range opts {
		opt(&e)
	}
	b.intent.Relationships = append(b.intent.Relationships, domain.Relationship{
		Source: source,
		Target: target,
		Type:   relationType,
		Label:  e.label,
	})
	return b
}

// Build validates the assembled intent and returns it. The error is the
// *domain.SchemaError for the first invariant violated, so a bad chain fails
// here rather than inside a pipeline run.
func (b *Builder) Build() (domain.DiagramIntent, error) {
	if err := b.intent.Validate(); err != nil {
		return domain.DiagramIntent{}, err
	}
	return b.intent, nil
}

// MustBuild is Build for wiring code and tests where an invalid chain is a
// programming error.
func (b *Builder) MustBuild() domain.DiagramIntent {
	intent, err := b.Build()
	if err != nil {
		panic(fmt.Sprintf("dsl: invalid intent: %v", err))
	}
	return intent
}
