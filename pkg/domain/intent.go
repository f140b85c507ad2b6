package domain

// DiagramType identifies the family of diagram an intent describes.
type DiagramType string

const (
	DiagramNetwork        DiagramType = "network"
	DiagramSystem         DiagramType = "system"
	DiagramApplication    DiagramType = "application"
	DiagramCloud          DiagramType = "cloud"
	DiagramDeployment     DiagramType = "deployment"
	DiagramInfrastructure DiagramType = "infrastructure"
)

// DiagramTypes lists every recognized diagram type, in declaration order.
func DiagramTypes() []DiagramType {
	return []DiagramType{
		DiagramNetwork,
		DiagramSystem,
		DiagramApplication,
		DiagramCloud,
		DiagramDeployment,
		DiagramInfrastructure,
	}
}

// Known reports whether the diagram type is one of the recognized values.
func (t DiagramType) Known() bool {
	switch t {
	case DiagramNetwork, DiagramSystem, DiagramApplication,
		DiagramCloud, DiagramDeployment, DiagramInfrastructure:
		return true
	}
	return false
}

// Group is a named container for components or other groups.
// Parent references across all groups must form a forest.
type Group struct {
	ID          string `json:"id" yaml:"id"`
	Label       string `json:"label" yaml:"label"`
	ParentGroup string `json:"parent_group,omitempty" yaml:"parent_group,omitempty"`
}

// Component is a single node in the diagram. Type is a free-form tag
// (e.g. "router", "database") used only as a styling hint downstream.
type Component struct {
	ID          string `json:"id" yaml:"id"`
	Label       string `json:"label" yaml:"label"`
	Type        string `json:"type,omitempty" yaml:"type,omitempty"`
	ParentGroup string `json:"parent_group,omitempty" yaml:"parent_group,omitempty"`
}

// Relationship is a directed edge between two declared components.
// Type is a free-form tag (e.g. "data_flow", "dependency", "api_call").
type Relationship struct {
	Source string `json:"source" yaml:"source"`
	Target string `json:"target" yaml:"target"`
	Type   string `json:"type" yaml:"type"`
	Label  string `json:"label,omitempty" yaml:"label,omitempty"`
}

// DiagramIntent is the structured description of a diagram, produced once per
// request by the extraction collaborator and treated as immutable afterwards.
type DiagramIntent struct {
	Type          DiagramType    `json:"diagram_type" yaml:"diagram_type"`
	Groups        []Group        `json:"groups" yaml:"groups"`
	Components    []Component    `json:"components" yaml:"components"`
	Relationships []Relationship `json:"relationships" yaml:"relationships"`
}

// Validate checks the intent invariants and returns a *SchemaError describing
// the first violation found. It is a pure function: no repair is attempted and
// repeated calls on the same intent yield the same result.
//
// Checks, in order: recognized diagram type; non-blank, unique ids across
// groups and components; component parent references resolve to declared
// groups; group parent references resolve and form a forest; relationship
// endpoints resolve to declared components.
func (d DiagramIntent) Validate() error {
	if !d.Type.Known() {
		return &SchemaError{Field: "diagram_type", Reason: "unknown diagram type", Value: string(d.Type)}
	}

	groups := make(map[string]struct{}, len(d.Groups))
	for i, g := range d.Groups {
		if g.ID == "" {
			return &SchemaError{Field: "groups", Reason: "group id must not be blank", Value: i}
		}
		if _, dup := groups[g.ID]; dup {
			return &SchemaError{Field: "groups", Reason: "duplicate group id", Value: g.ID}
		}
		groups[g.ID] = struct{}{}
	}

	components := make(map[string]struct{}, len(d.Components))
	for i, c := range d.Components {
		if c.ID == "" {
			return &SchemaError{Field: "components", Reason: "component id must not be blank", Value: i}
		}
		if _, clash := groups[c.ID]; clash {
			return &SchemaError{Field: "components", Reason: "component id collides with a group id", Value: c.ID}
		}
		if _, dup := components[c.ID]; dup {
			return &SchemaError{Field: "components", Reason: "duplicate component id", Value: c.ID}
		}
		components[c.ID] = struct{}{}
	}

	for _, c := range d.Components {
		if c.ParentGroup == "" {
			continue
		}
		if _, ok := groups[c.ParentGroup]; !ok {
			return &SchemaError{Field: "components", Reason: "parent_group references an undeclared group", Value: c.ParentGroup}
		}
	}

	parent := make(map[string]string, len(d.Groups))
	for _, g := range d.Groups {
		if g.ParentGroup == "" {
			continue
		}
		if g.ParentGroup == g.ID {
			return &SchemaError{Field: "groups", Reason: "group is its own parent", Value: g.ID}
		}
		if _, ok := groups[g.ParentGroup]; !ok {
			return &SchemaError{Field: "groups", Reason: "parent_group references an undeclared group", Value: g.ParentGroup}
		}
		parent[g.ID] = g.ParentGroup
	}
	// Each group has at most one parent, so a cycle is detectable by walking
	// the parent chain: any chain longer than the group count must repeat.
	for _, g := range d.Groups {
		cur, steps := g.ID, 0
		for {
			next, ok := parent[cur]
			if !ok {
				break
			}
			cur = next
			steps++
			if cur == g.ID || steps > len(d.Groups) {
				return &SchemaError{Field: "groups", Reason: "cycle in parent_group chain", Value: g.ID}
			}
		}
	}

	for _, r := range d.Relationships {
		if _, ok := components[r.Source]; !ok {
			return &SchemaError{Field: "relationships", Reason: "source references an undeclared component", Value: r.Source}
		}
		if _, ok := components[r.Target]; !ok {
			return &SchemaError{Field: "relationships", Reason: "target references an undeclared component", Value: r.Target}
		}
	}

	return nil
}
