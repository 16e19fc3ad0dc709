package mcpservice

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ggoodman/telegram-notify-mcp/internal/jsonrpc"
	"github.com/ggoodman/telegram-notify-mcp/internal/logctx"
	"github.com/ggoodman/telegram-notify-mcp/mcp"
	"github.com/ggoodman/telegram-notify-mcp/telegram"
)

// Default server identity announced in initialize results.
const (
	DefaultServerName    = "telegram-notification-mcp"
	DefaultServerVersion = "1.0.0"
)

var errNotObject = errors.New("request must be a JSON object")

// Notifier delivers one message. Implementations must not retry; every call
// is expected to produce at most one outbound side effect.
type Notifier interface {
	Notify(ctx context.Context, message string, mode telegram.ParseMode) (json.RawMessage, error)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, message string, mode telegram.ParseMode) (json.RawMessage, error)

func (f NotifierFunc) Notify(ctx context.Context, message string, mode telegram.ParseMode) (json.RawMessage, error) {
	return f(ctx, message, mode)
}

// Stream names the output a reply belongs on.
type Stream int

const (
	// StreamOut carries every reply except decode failures.
	StreamOut Stream = iota
	// StreamErr carries parse-error replies for lines that were not requests.
	StreamErr
)

func (s Stream) String() string {
	if s == StreamErr {
		return "err"
	}
	return "out"
}

// Reply is a response together with the stream it must be written to.
type Reply struct {
	Response *jsonrpc.Response
	Stream   Stream
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// Server is the request dispatcher. It holds no per-request state; the same
// request always produces the same reply, the notifier's answer aside.
type Server struct {
	info     mcp.ImplementationInfo
	notifier Notifier
	log      *slog.Logger
	tools    *toolSet
}

// NewServer builds a Server that delivers send_notification calls through n.
func NewServer(n Notifier, opts ...ServerOption) *Server {
	s := &Server{
		info:     mcp.ImplementationInfo{Name: DefaultServerName, Version: DefaultServerVersion},
		notifier: n,
		log:      slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.tools = newToolSet(s.sendNotificationTool())
	return s
}

// WithServerInfo sets the server info value returned by initialize.
func WithServerInfo(info mcp.ImplementationInfo) ServerOption {
	return func(s *Server) { s.info = info }
}

// WithLogger overrides the logger.
func WithLogger(l *slog.Logger) ServerOption {
	return func(s *Server) {
		if l != nil {
			s.log = l
		}
	}
}

// Dispatch decodes line and handles the resulting call. It returns nil when
// no reply is due.
func (s *Server) Dispatch(ctx context.Context, line []byte) *Reply {
	call, reply := s.Decode(line)
	if reply != nil {
		return reply
	}
	return s.Handle(ctx, call)
}

// Handle runs call through the method table. Every failure is converted to a
// JSON-RPC error; Handle never panics on peer input and returns nil only for
// notifications.
func (s *Server) Handle(ctx context.Context, call Call) *Reply {
	if _, ok := call.(*NotificationCall); ok {
		s.log.DebugContext(ctx, "mcpservice.handle.notification", slog.String("method", call.Method()))
		return nil
	}

	start := time.Now()
	ctx = logctx.WithRPCMessage(ctx, &logctx.RPCMessage{
		Method:     call.Method(),
		ID:         call.RequestID().String(),
		DispatchID: uuid.NewString(),
	})

	result, err := s.route(ctx, call)
	if err != nil {
		rpcErr := toRPCError(err)
		s.log.InfoContext(ctx, "mcpservice.handle.fail", slog.Int("code", int(rpcErr.Code)), slog.String("err", rpcErr.Message), slog.Int64("dur_ms", time.Since(start).Milliseconds()))
		return &Reply{Response: &jsonrpc.Response{JSONRPCVersion: jsonrpc.ProtocolVersion, ID: call.RequestID(), Error: rpcErr}, Stream: StreamOut}
	}

	res, err := jsonrpc.NewResultResponse(call.RequestID(), result)
	if err != nil {
		s.log.ErrorContext(ctx, "mcpservice.handle.encode_fail", slog.String("err", err.Error()))
		return errorReply(call.RequestID(), jsonrpc.ErrorCodeInternalError, err.Error())
	}
	s.log.InfoContext(ctx, "mcpservice.handle.ok", slog.Int64("dur_ms", time.Since(start).Milliseconds()))
	return &Reply{Response: res, Stream: StreamOut}
}

func (s *Server) route(ctx context.Context, call Call) (any, error) {
	switch c := call.(type) {
	case *InitializeCall:
		return s.initialize(c), nil
	case *ListToolsCall:
		return &mcp.ListToolsResult{Tools: s.tools.descriptors()}, nil
	case *ToolCall:
		return s.tools.call(ctx, c)
	case *UnknownCall:
		return nil, jsonrpc.Errorf(jsonrpc.ErrorCodeMethodNotFound, "Method not found: %s", c.Method())
	default:
		return nil, jsonrpc.Errorf(jsonrpc.ErrorCodeInternalError, "unhandled call type %T", call)
	}
}

func (s *Server) initialize(c *InitializeCall) *mcp.InitializeResult {
	if c.Params.ClientInfo.Name != "" {
		s.log.Debug("mcpservice.initialize.client",
			slog.String("client", c.Params.ClientInfo.Name),
			slog.String("client_version", c.Params.ClientInfo.Version),
			slog.String("requested_protocol", c.Params.ProtocolVersion),
		)
	}
	return &mcp.InitializeResult{
		ProtocolVersion: mcp.ProtocolVersion,
		Capabilities:    mcp.ServerCapabilities{Tools: &mcp.ToolsCapability{}},
		ServerInfo:      s.info,
	}
}

// toRPCError keeps codes carried by *jsonrpc.Error and maps everything else
// to the generic handler failure code.
func toRPCError(err error) *jsonrpc.Error {
	var rpcErr *jsonrpc.Error
	if errors.As(err, &rpcErr) {
		return rpcErr
	}
	return &jsonrpc.Error{Code: jsonrpc.ErrorCodeHandlerFailure, Message: err.Error()}
}
