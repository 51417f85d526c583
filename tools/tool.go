package tools

import (
	"context"
	"encoding/json"

	"github.com/hartwell/jobpilot/core"
)

// Tool is one capability the assistant exposes to the model. Execute
// receives the raw JSON arguments the model produced and returns text for
// the tool-result message; wrap tools with WithSchemaValidation to reject
// malformed arguments before they run.
type Tool interface {
	Name() string
	Description() string
	Parameters() json.RawMessage
	Execute(ctx context.Context, args json.RawMessage) (string, error)
}

// ToSchema converts a Tool into the schema shape sent with chat requests.
func ToSchema(t Tool) core.ToolSchema {
	return core.ToolSchema{
		Name:        t.Name(),
		Description: t.Description(),
		Parameters:  t.Parameters(),
	}
}

func ToSchemas(tools []Tool) []core.ToolSchema {
	schemas := make([]core.ToolSchema, len(tools))
	for i, t := range tools {
		schemas[i] = ToSchema(t)
	}
	return schemas
}
