package service

import (
	"context"
	"encoding/json"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hazyhaar/domfence/kit"
)

// RegisterMCP registers the domfence tools on an MCP server.
func (s *Service) RegisterMCP(srv *mcp.Server) {
	s.registerLoadTool(srv)
	s.registerSetInertTool(srv)
	s.registerStatusTool(srv)
	s.registerTabOrderTool(srv)
}

// inputSchema builds a JSON Schema object with type "object".
func inputSchema(properties map[string]any, required []string) map[string]any {
	schema := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

func decodeInto[T any](req *mcp.CallToolRequest) (any, error) {
	var r T
	if err := json.Unmarshal(req.Params.Arguments, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// --- load ---

type loadRequest struct {
	Name   string `json:"name,omitempty"`
	Markup string `json:"markup"`
}

func (s *Service) registerLoadTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "domfence_load",
		Description: "Load an HTML document into the inert engine. Inert markers in the markup activate immediately. Returns the document ID.",
		InputSchema: inputSchema(map[string]any{
			"name":   map[string]any{"type": "string", "description": "Human-readable document name"},
			"markup": map[string]any{"type": "string", "description": "HTML markup to load"},
		}, []string{"markup"}),
	}

	endpoint := func(ctx context.Context, req any) (any, error) {
		r := req.(*loadRequest)
		id, err := s.LoadDocument(ctx, r.Name, r.Markup)
		if err != nil {
			return nil, err
		}
		return map[string]string{"doc_id": id}, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decodeInto[loadRequest])
}

// --- set_inert ---

type setInertRequest struct {
	DocID     string `json:"doc_id"`
	ElementID string `json:"element_id"`
	Inert     bool   `json:"inert"`
}

func (s *Service) registerSetInertTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "domfence_set_inert",
		Description: "Mark a subtree inert (excluded from keyboard navigation and hidden from assistive technology) or restore it. Idempotent.",
		InputSchema: inputSchema(map[string]any{
			"doc_id":     map[string]any{"type": "string", "description": "Document ID from domfence_load"},
			"element_id": map[string]any{"type": "string", "description": "id attribute of the subtree root"},
			"inert":      map[string]any{"type": "boolean", "description": "true to restrain, false to restore"},
		}, []string{"doc_id", "element_id", "inert"}),
	}

	endpoint := func(ctx context.Context, req any) (any, error) {
		r := req.(*setInertRequest)
		if err := s.SetInert(r.DocID, r.ElementID, r.Inert); err != nil {
			return nil, err
		}
		return map[string]any{"element_id": r.ElementID, "inert": r.Inert}, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decodeInto[setInertRequest])
}

// --- status ---

type statusRequest struct {
	DocID string `json:"doc_id"`
}

func (s *Service) registerStatusTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "domfence_status",
		Description: "Report a document's active inert roots and restrained elements, including saved focus state.",
		InputSchema: inputSchema(map[string]any{
			"doc_id": map[string]any{"type": "string", "description": "Document ID"},
		}, []string{"doc_id"}),
	}

	endpoint := func(ctx context.Context, req any) (any, error) {
		r := req.(*statusRequest)
		return s.Status(r.DocID)
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decodeInto[statusRequest])
}

// --- tab_order ---

type tabOrderRequest struct {
	DocID string `json:"doc_id"`
}

func (s *Service) registerTabOrderTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "domfence_tab_order",
		Description: "Return the document's sequential keyboard navigation order. Restrained elements do not appear.",
		InputSchema: inputSchema(map[string]any{
			"doc_id": map[string]any{"type": "string", "description": "Document ID"},
		}, []string{"doc_id"}),
	}

	endpoint := func(ctx context.Context, req any) (any, error) {
		r := req.(*tabOrderRequest)
		order, err := s.TabOrder(r.DocID)
		if err != nil {
			return nil, err
		}
		return map[string]any{"tab_order": order}, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decodeInto[tabOrderRequest])
}
