package mcpservice

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"

	"github.com/ggoodman/telegram-notify-mcp/internal/jsonrpc"
	"github.com/ggoodman/telegram-notify-mcp/internal/logctx"
	"github.com/ggoodman/telegram-notify-mcp/mcp"
)

// toolHandler is the function signature used to handle a tool invocation.
type toolHandler func(ctx context.Context, args json.RawMessage) (*mcp.CallToolResult, error)

// staticTool pairs an MCP tool descriptor with its handler.
type staticTool struct {
	Descriptor mcp.Tool
	Handler    toolHandler
}

// toolSet is the fixed, immutable tool table built at server construction.
type toolSet struct {
	tools    []mcp.Tool
	handlers map[string]toolHandler
}

func newToolSet(defs ...staticTool) *toolSet {
	ts := &toolSet{handlers: make(map[string]toolHandler, len(defs))}
	for _, d := range defs {
		ts.tools = append(ts.tools, d.Descriptor)
		ts.handlers[d.Descriptor.Name] = d.Handler
	}
	return ts
}

// descriptors returns a copy so callers cannot mutate the table.
func (ts *toolSet) descriptors() []mcp.Tool {
	return append([]mcp.Tool(nil), ts.tools...)
}

func (ts *toolSet) call(ctx context.Context, c *ToolCall) (*mcp.CallToolResult, error) {
	h, ok := ts.handlers[c.Name]
	if !ok {
		return nil, jsonrpc.Errorf(jsonrpc.ErrorCodeHandlerFailure, "unknown tool: %s", c.Name)
	}
	ctx = logctx.WithToolCallData(ctx, &logctx.ToolCallData{ToolName: c.Name})
	return h(ctx, c.Arguments)
}

// newTool constructs a staticTool from a typed args struct A. It reflects a
// JSON Schema from A using invopop/jsonschema, down-converts it to MCP's
// simplified ToolInputSchema and wraps fn with lenient JSON decoding.
func newTool[A any](name, description string, fn func(ctx context.Context, args A) (*mcp.CallToolResult, error)) staticTool {
	desc := mcp.Tool{
		Name:        name,
		Description: description,
		InputSchema: reflectToMCPInputSchema[A](),
	}
	handler := func(ctx context.Context, raw json.RawMessage) (*mcp.CallToolResult, error) {
		var a A
		if len(raw) > 0 {
			if err := json.Unmarshal(raw, &a); err != nil {
				return nil, fmt.Errorf("invalid arguments: %w", err)
			}
		}
		return fn(ctx, a)
	}
	return staticTool{Descriptor: desc, Handler: handler}
}

// reflectToMCPInputSchema reflects a Go type A into a jsonschema.Schema, and
// converts it to the simplified mcp.ToolInputSchema. Unknown argument fields
// are tolerated at runtime, so additionalProperties is left unset.
func reflectToMCPInputSchema[A any]() mcp.ToolInputSchema {
	r := &jsonschema.Reflector{
		DoNotReference:            true, // inline defs
		ExpandedStruct:            true, // put struct at root
		AllowAdditionalProperties: true,
	}
	s := r.Reflect(new(A))

	if s == nil || s.Type != "object" {
		return mcp.ToolInputSchema{Type: "object", Properties: map[string]mcp.SchemaProperty{}}
	}

	props := make(map[string]mcp.SchemaProperty)
	if s.Properties != nil {
		for el := s.Properties.Oldest(); el != nil; el = el.Next() {
			props[el.Key] = toMCPProperty(el.Value)
		}
	}
	var required []string
	if len(s.Required) > 0 {
		required = append(required, s.Required...)
	}

	return mcp.ToolInputSchema{
		Type:       "object",
		Properties: props,
		Required:   required,
	}
}

// toMCPProperty recursively maps a jsonschema.Schema to the simplified MCP SchemaProperty.
func toMCPProperty(s *jsonschema.Schema) mcp.SchemaProperty {
	if s == nil {
		return mcp.SchemaProperty{}
	}
	p := mcp.SchemaProperty{
		Type:        s.Type,
		Description: s.Description,
	}
	if len(s.Enum) > 0 {
		p.Enum = s.Enum
	}
	if s.Type == "array" && s.Items != nil {
		item := toMCPProperty(s.Items)
		p.Items = &item
	}
	if s.Type == "object" && s.Properties != nil {
		m := make(map[string]mcp.SchemaProperty, s.Properties.Len())
		for el := s.Properties.Oldest(); el != nil; el = el.Next() {
			m[el.Key] = toMCPProperty(el.Value)
		}
		p.Properties = m
	}
	return p
}
