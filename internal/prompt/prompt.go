// Package prompt loads the chat prompt templates that drive extraction,
// generation and correction. Templates ship embedded as YAML documents with
// a system part and a human part, each rendered through text/template.
package prompt

import (
	"embed"
	"fmt"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"
)

//go:embed templates/*.yaml
var templatesFS embed.FS

// Template names recognized by Load.
const (
	Extract  = "extract"
	Generate = "generate"
	Correct  = "correct"
)

// Template is a two-part chat prompt. The system part sets the provider's
// role; the human part carries the per-request payload.
type Template struct {
	name   string
	system *template.Template
	human  *template.Template
}

type promptFile struct {
	System string `yaml:"system"`
	Human  string `yaml:"human"`
}

// Load parses the named embedded template. Valid names are Extract,
// Generate and Correct.
func Load(name string) (*Template, error) {
	raw, err := templatesFS.ReadFile("templates/" + name + ".yaml")
	if err != nil {
		return nil, fmt.Errorf("unknown prompt template %q: %w", name, err)
	}

	var file promptFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parsing prompt template %q: %w", name, err)
	}
	if strings.TrimSpace(file.System) == "" || strings.TrimSpace(file.Human) == "" {
		return nil, fmt.Errorf("prompt template %q: system and human parts are required", name)
	}

	sys, err := template.New(name + ".system").Parse(file.System)
	if err != nil {
		return nil, fmt.Errorf("parsing system part of %q: %w", name, err)
	}
	hum, err := template.New(name + ".human").Parse(file.Human)
	if err != nil {
		return nil, fmt.Errorf("parsing human part of %q: %w", name, err)
	}

	return &Template{name: name, system: sys, human: hum}, nil
}

// MustLoad is Load that panics on error. Intended for package setup of the
// fixed template set, where a failure is a programming error.
func MustLoad(name string) *Template {
	t, err := Load(name)
	if err != nil {
		panic(err)
	}
	return t
}

// Render executes both parts against data and returns the system and human
// messages.
func (t *Template) Render(data any) (system, human string, err error) {
	var sysBuf, humBuf strings.Builder
	if err := t.system.Execute(&sysBuf, data); err != nil {
		return "", "", fmt.Errorf("rendering system part of %q: %w", t.name, err)
	}
	if err := t.human.Execute(&humBuf, data); err != nil {
		return "", "", fmt.Errorf("rendering human part of %q: %w", t.name, err)
	}
	return strings.TrimSpace(sysBuf.String()), strings.TrimSpace(humBuf.String()), nil
}

// Name returns the template's load name.
func (t *Template) Name() string { return t.name }
