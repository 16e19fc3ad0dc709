// Package mcpservice is the request dispatcher of the notification server.
// It turns framed JSON-RPC lines into a closed set of typed calls and runs
// them through a fixed method table:
//
//	initialize   -> protocol version, tools capability, server info
//	tools/list   -> the send_notification descriptor
//	tools/call   -> send_notification via the configured Notifier
//	other        -> -32601 Method not found
//
// Quick start:
//
//	client := telegram.NewClient(token, chatID)
//	srv := mcpservice.NewServer(client,
//	    mcpservice.WithLogger(log),
//	)
//	reply := srv.Dispatch(ctx, []byte(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`))
//
// # Errors
//
// Handlers never surface Go errors to transports. Lines that are not JSON
// request objects produce a -32700 reply tagged StreamErr. Everything else
// produces a reply tagged StreamOut: -32601 for unknown methods and -1 for any
// other failure, including errors returned by the Notifier. A handler may
// return a *jsonrpc.Error to choose a different code.
//
// # Ordering
//
// Decode and Handle are split so transports can keep cheap calls on the read
// loop and move calls that may block (see Suspends) elsewhere. Server itself
// is stateless and safe for concurrent use.
package mcpservice
