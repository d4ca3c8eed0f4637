package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/bitop-dev/mcpchat/internal/schema"
)

// maxToolPages bounds tools/list pagination against servers that never stop
// returning a cursor.
const maxToolPages = 100

type Client struct {
	transport    Transport
	info         ClientInfo
	checkSchemas bool
	nextID       atomic.Int64
	server       *InitializeResult
}

type ClientOptions struct {
	Transport  Transport
	ClientInfo ClientInfo
	// CheckSchemas makes ListTools reject tools whose input schema does not
	// compile as JSON Schema.
	CheckSchemas bool
}

func NewClient(opts ClientOptions) (*Client, error) {
	if opts.Transport == nil {
		return nil, fmt.Errorf("mcp: transport is required")
	}
	info := opts.ClientInfo
	if info.Name == "" {
		info.Name = "mcpchat"
	}
	return &Client{transport: opts.Transport, info: info, checkSchemas: opts.CheckSchemas}, nil
}

// Dial creates a client on t and runs the initialize handshake. The transport
// is closed if the handshake fails.
func Dial(ctx context.Context, t Transport, info ClientInfo) (*Client, error) {
	c, err := NewClient(ClientOptions{Transport: t, ClientInfo: info, CheckSchemas: true})
	if err != nil {
		return nil, err
	}
	if _, err := c.Initialize(ctx); err != nil {
		_ = t.Close()
		return nil, err
	}
	return c, nil
}

// Initialize sends initialize followed by notifications/initialized.
func (c *Client) Initialize(ctx context.Context) (*InitializeResult, error) {
	var res InitializeResult
	req := InitializeRequest{
		ProtocolVersion: ProtocolVersion,
		Capabilities:    map[string]any{},
		ClientInfo:      c.info,
	}
	if err := c.rpc(ctx, "initialize", req, &res); err != nil {
		return nil, &ClientError{Op: "initialize", Method: "initialize", Cause: err}
	}
	if err := c.notify(ctx, "notifications/initialized", nil); err != nil {
		return nil, &ClientError{Op: "initialize", Method: "notifications/initialized", Cause: err}
	}
	c.server = &res
	return &res, nil
}

// Server returns the server's initialize result, or nil before Initialize.
func (c *Client) Server() *InitializeResult { return c.server }

func (c *Client) Close() error {
	if c == nil || c.transport == nil {
		return nil
	}
	return c.transport.Close()
}

// ListTools returns every tool the server advertises, following pagination
// cursors, in server order.
func (c *Client) ListTools(ctx context.Context) ([]ToolInfo, error) {
	var out []ToolInfo
	cursor := ""
	for page := 0; ; page++ {
		if page == maxToolPages {
			return nil, &ClientError{Op: "request", Method: "tools/list", Cause: errors.New("too many pages")}
		}
		var result toolListResult
		if err := c.rpc(ctx, "tools/list", listToolsParams{Cursor: cursor}, &result); err != nil {
			return nil, err
		}
		out = append(out, result.Tools...)
		if result.NextCursor == "" {
			break
		}
		cursor = result.NextCursor
	}
	if c.checkSchemas {
		for _, t := range out {
			if len(t.InputSchema) == 0 {
				continue
			}
			if err := schema.Check(t.InputSchema); err != nil {
				return nil, &SchemaError{ToolName: t.Name, Cause: err}
			}
		}
	}
	return out, nil
}

// CallTool invokes a tool by name. A result flagged isError is returned
// without error; only transport and protocol failures produce an error.
func (c *Client) CallTool(ctx context.Context, name string, args map[string]any) (*CallToolResult, error) {
	if args == nil {
		args = map[string]any{}
	}
	var result CallToolResult
	if err := c.rpc(ctx, "tools/call", callToolParams{Name: name, Arguments: args}, &result); err != nil {
		return nil, &CallToolError{ToolName: name, Cause: err}
	}
	return &result, nil
}

func (c *Client) rpc(ctx context.Context, method string, params any, out any) error {
	if c == nil || c.transport == nil {
		return fmt.Errorf("mcp: client is nil")
	}
	id := c.nextID.Add(1)
	req := rpcRequest{
		JSONRPC: "2.0",
		ID:      &id,
		Method:  method,
		Params:  params,
	}
	b, err := json.Marshal(req)
	if err != nil {
		return err
	}
	rawResp, err := c.transport.Call(ctx, b)
	if err != nil {
		return &ClientError{Op: "request", Method: method, Cause: err}
	}
	var resp rpcMessage
	if err := json.Unmarshal(rawResp, &resp); err != nil {
		return &ClientError{Op: "request", Method: method, Cause: err}
	}
	if resp.Error != nil {
		return &RPCError{Code: resp.Error.Code, Message: resp.Error.Message, Data: resp.Error.Data}
	}
	if out == nil {
		return nil
	}
	if len(resp.Result) == 0 {
		return fmt.Errorf("mcp: empty result for %s", method)
	}
	return json.Unmarshal(resp.Result, out)
}

func (c *Client) notify(ctx context.Context, method string, params any) error {
	b, err := json.Marshal(rpcRequest{JSONRPC: "2.0", Method: method, Params: params})
	if err != nil {
		return err
	}
	return c.transport.Notify(ctx, b)
}
