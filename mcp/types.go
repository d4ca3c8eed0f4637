package mcp

import (
	"encoding/json"
	"strconv"
	"strings"
)

// ProtocolVersion is the MCP revision requested during initialization.
const ProtocolVersion = "2025-06-18"

// JSON-RPC 2.0 envelope types (subset used by MCP).

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      *int64 `json:"id,omitempty"`
	Method  string `json:"method"`
	Params  any    `json:"params,omitempty"`
}

// rpcMessage is any inbound message: a response to one of our requests, or a
// request/notification initiated by the server.
type rpcMessage struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method,omitempty"`
	Params  json.RawMessage `json:"params,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
}

func (m rpcMessage) isResponse() bool { return m.Method == "" }

// numericID reports the message id when it is a JSON integer.
func (m rpcMessage) numericID() (int64, bool) {
	if len(m.ID) == 0 {
		return 0, false
	}
	id, err := strconv.ParseInt(string(m.ID), 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

type rpcError struct {
	Code    int64           `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

const (
	codeMethodNotFound = -32601
	codeInternalError  = -32603
	codeTransport      = -32000
)

// MCP server types (subset).

type ToolInfo struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	InputSchema json.RawMessage `json:"inputSchema,omitempty"`
}

type listToolsParams struct {
	Cursor string `json:"cursor,omitempty"`
}

type toolListResult struct {
	Tools      []ToolInfo `json:"tools"`
	NextCursor string     `json:"nextCursor,omitempty"`
}

type callToolParams struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

type CallToolResult struct {
	Content []ToolContentPart `json:"content,omitempty"`
	IsError bool              `json:"isError,omitempty"`
}

// Text flattens the result for a model conversation: text parts verbatim,
// any other part as its raw JSON, one part per line.
func (r *CallToolResult) Text() string {
	if r == nil {
		return ""
	}
	parts := make([]string, 0, len(r.Content))
	for _, p := range r.Content {
		if p.Type == "text" {
			parts = append(parts, p.Text)
			continue
		}
		parts = append(parts, string(p.Raw))
	}
	return strings.Join(parts, "\n")
}

// ToolContentPart is a generic representation of MCP tool results.
// The protocol defines multiple content part shapes; we keep the raw payload
// and decode the text of text parts.
type ToolContentPart struct {
	Type string          `json:"type"`
	Text string          `json:"-"`
	Raw  json.RawMessage `json:"-"`
}

func (p *ToolContentPart) UnmarshalJSON(b []byte) error {
	p.Raw = append(p.Raw[:0], b...)
	var tmp struct {
		Type string `json:"type"`
		Text string `json:"text"`
	}
	if err := json.Unmarshal(b, &tmp); err != nil {
		return err
	}
	p.Type = tmp.Type
	p.Text = tmp.Text
	return nil
}

func (p ToolContentPart) MarshalJSON() ([]byte, error) {
	if len(p.Raw) > 0 {
		return p.Raw, nil
	}
	return json.Marshal(struct {
		Type string `json:"type"`
		Text string `json:"text,omitempty"`
	}{p.Type, p.Text})
}

// Initialize / lifecycle.

type ClientInfo struct {
	Name    string `json:"name"`
	Title   string `json:"title,omitempty"`
	Version string `json:"version,omitempty"`
}

type InitializeRequest struct {
	ProtocolVersion string         `json:"protocolVersion"`
	Capabilities    map[string]any `json:"capabilities"`
	ClientInfo      ClientInfo     `json:"clientInfo"`
}

type ServerInfo struct {
	Name    string `json:"name"`
	Title   string `json:"title,omitempty"`
	Version string `json:"version,omitempty"`
}

type InitializeResult struct {
	ProtocolVersion string         `json:"protocolVersion"`
	Capabilities    map[string]any `json:"capabilities,omitempty"`
	ServerInfo      ServerInfo     `json:"serverInfo"`
	Instructions    string         `json:"instructions,omitempty"`
}
