// Package content talks to the generative text API that writes match
// commentary and tactical advice, and recovers locally when it cannot.
package content

import "context"

// Model generates text for a prompt.
type Model interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// Request is one prompt. A nil Schema asks for free text; otherwise the
// model is told to answer with JSON matching it.
type Request struct {
	Prompt string
	Schema *Schema
}

// Schema is the subset of the OpenAPI schema object the API accepts.
type Schema struct {
	Type       string             `json:"type"`
	Properties map[string]*Schema `json:"properties,omitempty"`
	Items      *Schema            `json:"items,omitempty"`
	Enum       []string           `json:"enum,omitempty"`
}

// Schema types.
const (
	TypeObject  = "OBJECT"
	TypeArray   = "ARRAY"
	TypeString  = "STRING"
	TypeInteger = "INTEGER"
)
