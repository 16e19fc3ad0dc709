package logctx

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
)

func TestHandler_AddsContextGroups(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := slog.New(Handler{Handler: slog.NewJSONHandler(&buf, nil)}).With("component", "test")

	ctx := WithRPCMessage(context.Background(), &RPCMessage{Method: "tools/call", ID: "7", DispatchID: "d-1"})
	ctx = WithToolCallData(ctx, &ToolCallData{ToolName: "send_notification"})
	log.InfoContext(ctx, "mcpservice.handle.ok")

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("decode log record: %v", err)
	}
	rpc, _ := rec["rpc"].(map[string]any)
	if rpc["method"] != "tools/call" || rpc["id"] != "7" || rpc["dispatch"] != "d-1" {
		t.Fatalf("rpc group = %v", rec["rpc"])
	}
	tool, _ := rec["tool"].(map[string]any)
	if tool["name"] != "send_notification" {
		t.Fatalf("tool group = %v", rec["tool"])
	}
	if rec["component"] != "test" {
		t.Fatalf("WithAttrs lost decoration: %v", rec)
	}
}

func TestHandler_NoContext(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := slog.New(Handler{Handler: slog.NewJSONHandler(&buf, nil)})
	log.Info("plain")

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("decode log record: %v", err)
	}
	if _, ok := rec["rpc"]; ok {
		t.Fatalf("unexpected rpc group: %v", rec)
	}
}
