/*
Package dsl provides a fluent builder for constructing diagram intents in Go.

It lets library users and tests assemble groups, components and relationships
with a type-safe chain instead of hand-writing the JSON document, with IDE
autocompletion and the schema invariants enforced at Build time.

Example usage:

	package main

	import (
		"github.com/kenjpais/diagram-generator/pkg/domain"
		"github.com/kenjpais/diagram-generator/pkg/dsl"
	)

	func main() {
		intent, err := dsl.New(domain.DiagramSystem).
			Group("aws", "AWS").
			Component("web", "Web Tier", "server", dsl.InGroup("aws")).
			Component("db", "Postgres", "database", dsl.InGroup("aws")).
			Relation("web", "db", "data_flow", dsl.Labeled("reads/writes")).
			Build()
		if err != nil {
			// a schema invariant was violated
		}
		_ = intent // ready for Pipeline.Run
	}
*/
package dsl
