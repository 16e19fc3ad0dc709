package mcpservice

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/ggoodman/telegram-notify-mcp/internal/jsonrpc"
	"github.com/ggoodman/telegram-notify-mcp/mcp"
)

// Call is a decoded request. It is a closed set: InitializeCall,
// ListToolsCall, ToolCall, NotificationCall and UnknownCall.
type Call interface {
	Method() string
	RequestID() *jsonrpc.RequestID
	isCall()
}

type envelope struct {
	method string
	id     *jsonrpc.RequestID
}

func (e envelope) Method() string                { return e.method }
func (e envelope) RequestID() *jsonrpc.RequestID { return e.id }
func (envelope) isCall()                         {}

// InitializeCall is an initialize request. Params are decoded best effort;
// malformed params never fail the call.
type InitializeCall struct {
	envelope
	Params mcp.InitializeRequest
}

// ListToolsCall is a tools/list request.
type ListToolsCall struct {
	envelope
}

// ToolCall is a tools/call request. It is the only variant whose handling may
// block on the network.
type ToolCall struct {
	envelope
	Name      string
	Arguments json.RawMessage
}

// NotificationCall is any notifications/* message. It never gets a reply.
type NotificationCall struct {
	envelope
}

// UnknownCall is any method outside the table.
type UnknownCall struct {
	envelope
}

// Suspends reports whether handling call may wait on the notification
// backend. Transports use it to decide what runs off the read loop.
func Suspends(call Call) bool {
	_, ok := call.(*ToolCall)
	return ok
}

// Decode turns one framed line into a Call. When the line cannot be turned
// into a call, Decode returns the reply to emit instead and a nil Call.
func (s *Server) Decode(line []byte) (Call, *Reply) {
	req, err := decodeRequest(line)
	if err != nil {
		id := jsonrpc.RecoverID(line)
		s.log.Debug("mcpservice.decode.parse_error", "err", err.Error(), "id", id.String())
		return nil, &Reply{
			Response: jsonrpc.NewErrorResponse(id, jsonrpc.ErrorCodeParseError, "Parse error: "+err.Error(), nil),
			Stream:   StreamErr,
		}
	}

	env := envelope{method: req.Method, id: req.ID}
	switch mcp.Method(req.Method) {
	case mcp.InitializeMethod:
		call := &InitializeCall{envelope: env}
		if len(req.Params) > 0 {
			if err := json.Unmarshal(req.Params, &call.Params); err != nil {
				s.log.Debug("mcpservice.decode.initialize_params_ignored", "err", err.Error())
			}
		}
		return call, nil
	case mcp.ToolsListMethod:
		return &ListToolsCall{envelope: env}, nil
	case mcp.ToolsCallMethod:
		var params mcp.CallToolRequestReceived
		if len(req.Params) == 0 || bytes.Equal(req.Params, []byte("null")) {
			return nil, errorReply(req.ID, jsonrpc.ErrorCodeHandlerFailure, "tools/call requires params")
		}
		if err := json.Unmarshal(req.Params, &params); err != nil {
			return nil, errorReply(req.ID, jsonrpc.ErrorCodeHandlerFailure, "invalid tools/call params: "+err.Error())
		}
		return &ToolCall{envelope: env, Name: params.Name, Arguments: params.Arguments}, nil
	}

	if strings.HasPrefix(req.Method, mcp.NotificationPrefix) {
		return &NotificationCall{envelope: env}, nil
	}
	return &UnknownCall{envelope: env}, nil
}

// decodeRequest accepts only JSON objects; scalars, arrays and null are not
// requests.
func decodeRequest(line []byte) (*jsonrpc.Request, error) {
	trimmed := bytes.TrimSpace(line)
	if !json.Valid(trimmed) {
		// Let the decoder produce a precise syntax error.
		var v any
		return nil, json.Unmarshal(trimmed, &v)
	}
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, errNotObject
	}
	return jsonrpc.DecodeRequest(trimmed)
}

func errorReply(id *jsonrpc.RequestID, code jsonrpc.ErrorCode, msg string) *Reply {
	return &Reply{Response: jsonrpc.NewErrorResponse(id, code, msg, nil), Stream: StreamOut}
}
