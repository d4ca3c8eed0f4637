// Package mcp is a small Model Context Protocol client.
//
// It speaks JSON-RPC 2.0 to a tool server, usually a subprocess reached
// through StdioTransport, and covers the lifecycle handshake, tool discovery
// and tool invocation. Server-side tooling lives in the official SDK.
package mcp
