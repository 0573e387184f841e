package service

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	_ "modernc.org/sqlite"
)

var testImpl = &mcp.Implementation{Name: "domfence-test", Version: "0.1.0"}

// mcpSession registers the tools and returns a connected client session.
func mcpSession(t *testing.T) (*Service, *mcp.ClientSession) {
	t.Helper()
	s := newTestService(t)

	srv := mcp.NewServer(testImpl, nil)
	s.RegisterMCP(srv)

	serverT, clientT := mcp.NewInMemoryTransports()
	ctx := context.Background()

	go func() {
		_ = srv.Run(ctx, serverT)
	}()

	client := mcp.NewClient(testImpl, nil)
	session, err := client.Connect(ctx, clientT, nil)
	if err != nil {
		t.Fatalf("client connect: %v", err)
	}
	t.Cleanup(func() { session.Close() })

	return s, session
}

// callTool invokes a tool and returns the JSON text from the first TextContent.
func callTool(t *testing.T, session *mcp.ClientSession, name string, args any) string {
	t.Helper()
	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      name,
		Arguments: args,
	})
	if err != nil {
		t.Fatalf("CallTool(%s): %v", name, err)
	}
	// Tool errors round-trip as IsError plus text content; the server-side
	// error value does not survive the transport.
	if result.IsError {
		t.Fatalf("CallTool(%s) tool error: %s", name, contentText(result))
	}
	if len(result.Content) == 0 {
		t.Fatalf("CallTool(%s): empty content", name)
	}
	tc, ok := result.Content[0].(*mcp.TextContent)
	if !ok {
		t.Fatalf("CallTool(%s): expected TextContent, got %T", name, result.Content[0])
	}
	return tc.Text
}

func contentText(result *mcp.CallToolResult) string {
	if len(result.Content) == 0 {
		return ""
	}
	if tc, ok := result.Content[0].(*mcp.TextContent); ok {
		return tc.Text
	}
	return ""
}

func TestMCP_LoadSetInertStatus(t *testing.T) {
	_, session := mcpSession(t)

	text := callTool(t, session, "domfence_load", map[string]any{
		"name":   "page",
		"markup": testMarkup,
	})
	var loaded struct {
		DocID string `json:"doc_id"`
	}
	if err := json.Unmarshal([]byte(text), &loaded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if loaded.DocID == "" {
		t.Fatal("expected non-empty doc_id")
	}

	callTool(t, session, "domfence_set_inert", map[string]any{
		"doc_id":     loaded.DocID,
		"element_id": "region",
		"inert":      true,
	})

	text = callTool(t, session, "domfence_status", map[string]any{
		"doc_id": loaded.DocID,
	})
	var st Status
	if err := json.Unmarshal([]byte(text), &st); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(st.Roots) != 1 || st.Roots[0].ElementID != "region" {
		t.Errorf("roots = %+v, want one root on #region", st.Roots)
	}
	if len(st.Elements) != 2 {
		t.Errorf("restrained elements = %d, want 2", len(st.Elements))
	}
}

func TestMCP_TabOrder(t *testing.T) {
	_, session := mcpSession(t)

	text := callTool(t, session, "domfence_load", map[string]any{"markup": testMarkup})
	var loaded struct {
		DocID string `json:"doc_id"`
	}
	if err := json.Unmarshal([]byte(text), &loaded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	callTool(t, session, "domfence_set_inert", map[string]any{
		"doc_id":     loaded.DocID,
		"element_id": "region",
		"inert":      true,
	})

	text = callTool(t, session, "domfence_tab_order", map[string]any{"doc_id": loaded.DocID})
	var order struct {
		TabOrder []ElementStatus `json:"tab_order"`
	}
	if err := json.Unmarshal([]byte(text), &order); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(order.TabOrder) != 1 || order.TabOrder[0].ElementID != "before" {
		t.Errorf("tab_order = %+v, want only #before", order.TabOrder)
	}
}

func TestMCP_UnknownDocument(t *testing.T) {
	_, session := mcpSession(t)

	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "domfence_status",
		Arguments: map[string]any{"doc_id": "nope"},
	})
	if err != nil {
		t.Fatalf("CallTool: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected tool error for unknown document")
	}
	if text := contentText(result); !strings.Contains(text, "not found") {
		t.Errorf("error content: got %q, want a not-found message", text)
	}
}
