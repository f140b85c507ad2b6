package dsl

// element carries the optional attributes shared by groups, components and
// relationships.
type element struct {
	parentGroup string
	label       string
}

// ElementOption configures one declared element.
type ElementOption func(*element)

// InGroup places a group or component inside the named parent group.
func InGroup(groupID string) ElementOption {
	return func(e *element) {
		e.parentGroup = groupID
	}
}

// Labeled attaches an edge label to a relationship.
func Labeled(label string) ElementOption {
	return func(e *element) {
		e.label = label
	}
}
