package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/hartwell/jobpilot/core"
)

// SchemaValidatingTool wraps a Tool with JSON Schema validation. Execute
// validates the raw arguments against the compiled schema before delegating
// to the inner tool.
type SchemaValidatingTool struct {
	inner  Tool
	schema *jsonschema.Schema
}

// WithSchemaValidation wraps t so malformed arguments are rejected before
// the tool runs. Returns an error if the tool's parameter schema fails to
// compile.
func WithSchemaValidation(t Tool) (Tool, error) {
	raw := t.Parameters()
	if len(raw) == 0 || string(raw) == "null" {
		return t, nil // no schema to validate against
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(raw)); err != nil {
		return nil, fmt.Errorf("add schema resource for %q: %w", t.Name(), err)
	}
	compiled, err := compiler.Compile("schema.json")
	if err != nil {
		return nil, fmt.Errorf("compile schema for %q: %w", t.Name(), err)
	}

	return &SchemaValidatingTool{inner: t, schema: compiled}, nil
}

func (s *SchemaValidatingTool) Name() string                { return s.inner.Name() }
func (s *SchemaValidatingTool) Description() string         { return s.inner.Description() }
func (s *SchemaValidatingTool) Parameters() json.RawMessage { return s.inner.Parameters() }

func (s *SchemaValidatingTool) Execute(ctx context.Context, args json.RawMessage) (string, error) {
	var v interface{}
	if err := json.Unmarshal(args, &v); err != nil {
		return "", core.NewAssistantError("tool.validate", s.inner.Name(),
			fmt.Errorf("%w: %v", core.ErrInvalidToolArguments, err))
	}

	if err := s.schema.Validate(v); err != nil {
		return "", core.NewAssistantError("tool.validate", s.inner.Name(),
			fmt.Errorf("%w: %v", core.ErrInvalidToolArguments, err))
	}

	return s.inner.Execute(ctx, args)
}
