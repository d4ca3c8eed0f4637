package mcp

import "fmt"

type RPCError struct {
	Code    int64
	Message string
	Data    []byte
}

func (e *RPCError) Error() string {
	if e == nil {
		return ""
	}
	if e.Message != "" {
		return fmt.Sprintf("mcp rpc error %d: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("mcp rpc error %d", e.Code)
}

// ClientError wraps client-side failures (transport, parsing, lifecycle).
type ClientError struct {
	Op     string // e.g. "initialize", "request", "notify", "start"
	Method string // JSON-RPC method if applicable
	Cause  error
}

func (e *ClientError) Error() string {
	if e == nil {
		return ""
	}
	if e.Method != "" {
		return fmt.Sprintf("mcp %s (%s): %v", e.Op, e.Method, e.Cause)
	}
	return fmt.Sprintf("mcp %s: %v", e.Op, e.Cause)
}

func (e *ClientError) Unwrap() error { return e.Cause }

// CallToolError wraps failures returned while calling an MCP tool.
type CallToolError struct {
	ToolName string
	Cause    error
}

func (e *CallToolError) Error() string {
	if e == nil {
		return ""
	}
	if e.Cause != nil {
		return fmt.Sprintf("mcp call tool %q: %v", e.ToolName, e.Cause)
	}
	return fmt.Sprintf("mcp call tool %q", e.ToolName)
}

func (e *CallToolError) Unwrap() error { return e.Cause }

// SchemaError reports a tool whose advertised input schema does not compile.
type SchemaError struct {
	ToolName string
	Cause    error
}

func (e *SchemaError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("mcp tool %q has an invalid input schema: %v", e.ToolName, e.Cause)
}

func (e *SchemaError) Unwrap() error { return e.Cause }
