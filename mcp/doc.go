// Package mcp contains the Model Context Protocol data types and constants
// spoken by the notification server. It mirrors the wire representation of
// the subset of the protocol the server implements (initialize, tools/list
// and tools/call) while keeping the surface Go-friendly: exported structs
// with json tags and string constants for method names.
//
// The package is free of transport logic. The stdio transport frames and
// writes messages; mcpservice builds results from these types and hands them
// to the jsonrpc layer for serialization.
//
// Example (tool result construction):
//
//	res := mcp.TextResult("hello")
//	// res.Content[0].Type == mcp.ContentTypeText
//
// # Protocol Version
//
// ProtocolVersion is announced in every initialize result. The server does
// not negotiate; clients that require a newer revision must fall back.
package mcp
