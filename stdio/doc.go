// Package stdio implements the notification server's transport: a single
// connection over stdin/stdout carrying newline-delimited JSON-RPC.
//
// Characteristics
//
//	Connection model : 1 process <-> 1 client
//	Framing          : one JSON object per line, no line length limit
//	Streams          : replies on stdout; parse-error replies on stderr
//	Ordering         : in request order, except tools/call replies
//	Shutdown         : EOF drains in-flight tool calls
//
// LineBuffer is the framer and can be used on its own. Options allow
// supplying alternate readers and writers or a custom logger.
//
// Example:
//
//	srv := mcpservice.NewServer(telegram.NewClient(token, chatID))
//	h := stdio.NewHandler(srv)
//	if err := h.Serve(context.Background()); err != nil { log.Fatal(err) }
package stdio
