package dsl

import (
	"errors"
	"testing"

	"github.com/kenjpais/diagram-generator/pkg/domain"
)

func TestBuilder_SimpleIntent(t *testing.T) {
	intent, err := New(domain.DiagramSystem).
		Group("aws", "AWS").
		Component("web", "Web Tier", "server", InGroup("aws")).
		Component("db", "Postgres", "database", InGroup("aws")).
		Relation("web", "db", "data_flow", Labeled("reads/writes")).
		Build()
	if err != nil {
		t.Fatalf("Build() failed: %v", err)
	}

	if intent.Type != domain.DiagramSystem {
		t.Errorf("Expected type 'system', got '%s'", intent.Type)
	}
	if len(intent.Groups) != 1 || intent.Groups[0].ID != "aws" {
		t.Fatalf("Expected one group 'aws', got %+v", intent.Groups)
	}
	if len(intent.Components) != 2 {
		t.Fatalf("Expected 2 components, got %d", len(intent.Components))
	}
	if intent.Components[0].ParentGroup != "aws" {
		t.Errorf("Expected 'web' in group 'aws', got '%s'", intent.Components[0].ParentGroup)
	}
	if len(intent.Relationships) != 1 {
		t.Fatalf("Expected 1 relationship, got %d", len(intent.Relationships))
	}
	if intent.Relationships[0].Label != "reads/writes" {
		t.Errorf("Expected edge label 'reads/writes', got '%s'", intent.Relationships[0].Label)
	}
}

func TestBuilder_NestedGroups(t *testing.T) {
	intent, err := New(domain.DiagramCloud).
		Group("cloud", "Cloud").
		Group("vpc", "VPC", InGroup("cloud")).
		Component("lb", "Load Balancer", "loadbalancer", InGroup("vpc")).
		Build()
	if err != nil {
		t.Fatalf("Build() failed: %v", err)
	}

	if intent.Groups[1].ParentGroup != "cloud" {
		t.Errorf("Expected 'vpc' nested under 'cloud', got '%s'", intent.Groups[1].ParentGroup)
	}
}

func TestBuilder_InvalidChainFailsAtBuild(t *testing.T) {
	_, err := New(domain.DiagramSystem).
		Component("web", "Web", "server").
		Relation("web", "ghost", "api_call").
		Build()
	if err == nil {
		t.Fatal("Expected Build() to fail for a dangling relation target")
	}

	var schemaErr *domain.SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("Expected *domain.SchemaError, got %T", err)
	}
	if schemaErr.Field != "relationships" {
		t.Errorf("Expected field 'relationships', got '%s'", schemaErr.Field)
	}
}

func TestBuilder_MustBuildPanicsOnInvalid(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("Expected MustBuild to panic on an invalid chain")
		}
	}()

	New(domain.DiagramType("mindmap")).MustBuild()
}
