package mcp

import (
	"context"
	"encoding/json"
)

// Transport exchanges JSON-RPC messages with an MCP server.
//
// Call sends a request that carries an id and blocks until the matching
// response arrives. Notify sends a message that expects no response.
// Implementations must be safe for concurrent use unless documented otherwise.
type Transport interface {
	Call(ctx context.Context, req json.RawMessage) (json.RawMessage, error)
	Notify(ctx context.Context, msg json.RawMessage) error
	Close() error
}
