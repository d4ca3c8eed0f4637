package mcp

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"reflect"
	"testing"
	"time"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

type echoArgs struct {
	Text string `json:"text" jsonschema:"Text to echo"`
}

// TestHelperProcess is not a real test. It runs an MCP server over stdio when
// the test binary is re-executed by helperTransport.
func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}
	s := sdk.NewServer(&sdk.Implementation{Name: "helper", Version: "0.0.1"}, nil)
	sdk.AddTool(s, &sdk.Tool{Name: "echo", Description: "Echo the text back."},
		func(_ context.Context, _ *sdk.CallToolRequest, in echoArgs) (*sdk.CallToolResult, any, error) {
			return &sdk.CallToolResult{Content: []sdk.Content{&sdk.TextContent{Text: in.Text}}}, nil, nil
		})
	sdk.AddTool(s, &sdk.Tool{Name: "fail", Description: "Always reports an error."},
		func(_ context.Context, _ *sdk.CallToolRequest, _ struct{}) (*sdk.CallToolResult, any, error) {
			return &sdk.CallToolResult{IsError: true, Content: []sdk.Content{&sdk.TextContent{Text: "nope"}}}, nil, nil
		})
	if err := s.Run(context.Background(), &sdk.StdioTransport{}); err != nil {
		os.Exit(1)
	}
	os.Exit(0)
}

func helperTransport() *StdioTransport {
	return &StdioTransport{
		Command: os.Args[0],
		Args:    []string{"-test.run=TestHelperProcess", "--"},
		Env:     []string{"GO_WANT_HELPER_PROCESS=1"},
	}
}

func TestStdioTransport_RoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("spawns a subprocess")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	tr := helperTransport()
	c, err := Dial(ctx, tr, ClientInfo{Name: "test"})
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	if c.Server().ServerInfo.Name != "helper" {
		t.Fatalf("server=%+v", c.Server().ServerInfo)
	}

	tools, err := c.ListTools(ctx)
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, tool := range tools {
		names = append(names, tool.Name)
	}
	if !reflect.DeepEqual(names, []string{"echo", "fail"}) {
		t.Fatalf("tools=%v", names)
	}

	res, err := c.CallTool(ctx, "echo", map[string]any{"text": "hello"})
	if err != nil {
		t.Fatal(err)
	}
	if res.Text() != "hello" {
		t.Fatalf("echo=%q", res.Text())
	}

	res, err = c.CallTool(ctx, "fail", nil)
	if err != nil {
		t.Fatal(err)
	}
	if !res.IsError || res.Text() != "nope" {
		t.Fatalf("fail=%+v", res)
	}

	if err := c.Close(); err != nil {
		t.Fatal(err)
	}
	_, err = c.CallTool(ctx, "echo", map[string]any{"text": "late"})
	if !errors.Is(err, ErrTransportClosed) {
		t.Fatalf("after close err=%v", err)
	}
}

func TestStdioTransport_MissingCommand(t *testing.T) {
	tr := &StdioTransport{Command: "/nonexistent/mcp-server-binary"}
	_, err := Dial(context.Background(), tr, ClientInfo{})
	if err == nil {
		t.Fatal("expected error")
	}
	if !IsStartError(err) {
		t.Fatalf("err=%v", err)
	}
}

func TestStdioTransport_AnswersServerRequests(t *testing.T) {
	var buf bytes.Buffer
	tr := &StdioTransport{bw: bufio.NewWriter(&buf)}

	tr.dispatch([]byte(`{"jsonrpc":"2.0","id":7,"method":"ping"}`))
	tr.dispatch([]byte(`{"jsonrpc":"2.0","id":"x","method":"sampling/createMessage","params":{}}`))
	tr.dispatch([]byte(`{"jsonrpc":"2.0","method":"notifications/message","params":{}}`))

	dec := json.NewDecoder(&buf)
	var ping, other struct {
		ID     json.RawMessage `json:"id"`
		Result json.RawMessage `json:"result"`
		Error  *rpcError       `json:"error"`
	}
	if err := dec.Decode(&ping); err != nil {
		t.Fatal(err)
	}
	if string(ping.ID) != "7" || string(ping.Result) != "{}" || ping.Error != nil {
		t.Fatalf("ping reply=%+v", ping)
	}
	if err := dec.Decode(&other); err != nil {
		t.Fatal(err)
	}
	if string(other.ID) != `"x"` || other.Error == nil || other.Error.Code != codeMethodNotFound {
		t.Fatalf("reply=%+v", other)
	}
	if dec.More() {
		t.Fatal("notifications must not be answered")
	}
}

func TestStdioTransportFor(t *testing.T) {
	cases := []struct {
		path string
		cmd  string
		args []string
	}{
		{"server.py", "python", []string{"server.py"}},
		{"dir/server.JS", "node", []string{"dir/server.JS"}},
		{"./bin/mathserver", "./bin/mathserver", nil},
	}
	for _, tc := range cases {
		tr, err := StdioTransportFor(tc.path)
		if err != nil {
			t.Fatal(err)
		}
		if tr.Command != tc.cmd || !reflect.DeepEqual(tr.Args, tc.args) {
			t.Fatalf("%s: command=%q args=%v", tc.path, tr.Command, tr.Args)
		}
	}
	if _, err := StdioTransportFor(" "); err == nil {
		t.Fatal("expected error for empty path")
	}
}
