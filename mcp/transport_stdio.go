package mcp

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/bitop-dev/mcpchat/internal/logging"
)

// ErrTransportClosed is returned for calls made after the server went away.
var ErrTransportClosed = errors.New("mcp: stdio transport closed")

// closeGrace is how long Close waits for the server to exit after its stdin
// is closed before killing it.
const closeGrace = 2 * time.Second

// StdioTransport connects to a local MCP server over stdin/stdout.
//
// Messages are framed as single-line JSON (one JSON-RPC message per line).
// The subprocess is started by Start, or lazily by the first Call.
type StdioTransport struct {
	Command string
	Args    []string
	// Env is appended to the parent environment.
	Env []string
	// Stderr receives the server's stderr. Defaults to os.Stderr.
	Stderr io.Writer
	Logger *slog.Logger

	mu      sync.Mutex
	wmu     sync.Mutex
	cmd     *exec.Cmd
	stdin   io.WriteCloser
	bw      *bufio.Writer
	pending map[int64]chan callResult
	done    chan struct{}
	exited  chan struct{}
	err     error
	once    sync.Once
}

type callResult struct {
	msg json.RawMessage
	err error
}

// StdioTransportFor builds a transport for a server file: ".py" scripts run
// under python, ".js" under node, anything else is executed directly.
func StdioTransportFor(path string) (*StdioTransport, error) {
	if strings.TrimSpace(path) == "" {
		return nil, &ClientError{Op: "start", Cause: errors.New("server path is required")}
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".py":
		return &StdioTransport{Command: "python", Args: []string{path}}, nil
	case ".js":
		return &StdioTransport{Command: "node", Args: []string{path}}, nil
	default:
		return &StdioTransport{Command: path}, nil
	}
}

// Start launches the server subprocess. It is a no-op if already running.
func (t *StdioTransport) Start() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.startLocked()
}

func (t *StdioTransport) startLocked() error {
	if t.cmd != nil {
		return nil
	}
	if t.Command == "" {
		return &ClientError{Op: "start", Cause: errors.New("stdio transport command is required")}
	}
	cmd := exec.Command(t.Command, t.Args...)
	if len(t.Env) > 0 {
		cmd.Env = append(os.Environ(), t.Env...)
	}
	cmd.Stderr = t.Stderr
	if cmd.Stderr == nil {
		cmd.Stderr = os.Stderr
	}

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return &ClientError{Op: "start", Cause: err}
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		_ = stdin.Close()
		return &ClientError{Op: "start", Cause: err}
	}
	if err := cmd.Start(); err != nil {
		_ = stdin.Close()
		_ = stdout.Close()
		return &ClientError{Op: "start", Cause: err}
	}

	t.cmd = cmd
	t.stdin = stdin
	t.bw = bufio.NewWriter(stdin)
	t.pending = map[int64]chan callResult{}
	t.done = make(chan struct{})
	t.exited = make(chan struct{})
	t.logger().Debug("mcp server started", "command", t.Command, "args", t.Args, "pid", cmd.Process.Pid)

	go t.readLoop(stdout)
	go func() {
		err := cmd.Wait()
		t.logger().Debug("mcp server exited", "err", err)
		close(t.exited)
	}()
	return nil
}

func (t *StdioTransport) logger() *slog.Logger {
	if t.Logger != nil {
		return t.Logger
	}
	return logging.Discard()
}

func (t *StdioTransport) readLoop(r io.Reader) {
	br := bufio.NewReader(r)
	for {
		line, err := br.ReadBytes('\n')
		line = bytes.TrimRight(line, "\r\n")
		if len(line) > 0 {
			t.dispatch(line)
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				err = fmt.Errorf("%w: %v", ErrTransportClosed, err)
			} else {
				err = ErrTransportClosed
			}
			t.failAll(err)
			return
		}
	}
}

func (t *StdioTransport) dispatch(line []byte) {
	var msg rpcMessage
	if err := json.Unmarshal(line, &msg); err != nil {
		t.logger().Warn("mcp: dropping malformed message", "err", err)
		return
	}
	if !msg.isResponse() {
		t.handleServerMessage(msg)
		return
	}
	id, ok := msg.numericID()
	if !ok {
		t.logger().Warn("mcp: dropping response with unknown id", "id", string(msg.ID))
		return
	}
	t.mu.Lock()
	ch := t.pending[id]
	delete(t.pending, id)
	t.mu.Unlock()
	if ch != nil {
		ch <- callResult{msg: append(json.RawMessage(nil), line...)}
	}
}

// handleServerMessage answers server-initiated requests. Only ping is
// supported; notifications are ignored.
func (t *StdioTransport) handleServerMessage(msg rpcMessage) {
	if len(msg.ID) == 0 {
		t.logger().Debug("mcp notification", "method", msg.Method)
		return
	}
	reply := map[string]any{"jsonrpc": "2.0", "id": msg.ID}
	if msg.Method == "ping" {
		reply["result"] = map[string]any{}
	} else {
		reply["error"] = rpcError{Code: codeMethodNotFound, Message: "method not found: " + msg.Method}
	}
	b, err := json.Marshal(reply)
	if err != nil {
		return
	}
	if err := t.write(b); err != nil {
		t.logger().Debug("mcp: reply to server request failed", "method", msg.Method, "err", err)
	}
}

func (t *StdioTransport) failAll(err error) {
	t.once.Do(func() {
		t.mu.Lock()
		t.err = err
		pending := t.pending
		t.pending = map[int64]chan callResult{}
		close(t.done)
		t.mu.Unlock()
		for _, ch := range pending {
			ch <- callResult{err: err}
		}
	})
}

func (t *StdioTransport) write(b []byte) error {
	t.wmu.Lock()
	defer t.wmu.Unlock()
	if _, err := t.bw.Write(b); err != nil {
		return err
	}
	if err := t.bw.WriteByte('\n'); err != nil {
		return err
	}
	return t.bw.Flush()
}

func (t *StdioTransport) Call(ctx context.Context, req json.RawMessage) (json.RawMessage, error) {
	var parsed rpcRequest
	if err := json.Unmarshal(req, &parsed); err != nil {
		return nil, err
	}
	if parsed.ID == nil {
		return nil, fmt.Errorf("mcp: request %q has no id", parsed.Method)
	}

	t.mu.Lock()
	if err := t.startLocked(); err != nil {
		t.mu.Unlock()
		return nil, err
	}
	select {
	case <-t.done:
		err := t.err
		t.mu.Unlock()
		return nil, err
	default:
	}
	ch := make(chan callResult, 1)
	t.pending[*parsed.ID] = ch
	t.mu.Unlock()

	if err := t.write(req); err != nil {
		t.mu.Lock()
		delete(t.pending, *parsed.ID)
		t.mu.Unlock()
		return nil, err
	}

	select {
	case <-ctx.Done():
		t.mu.Lock()
		delete(t.pending, *parsed.ID)
		t.mu.Unlock()
		return nil, ctx.Err()
	case res := <-ch:
		return res.msg, res.err
	}
}

func (t *StdioTransport) Notify(ctx context.Context, msg json.RawMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	t.mu.Lock()
	if err := t.startLocked(); err != nil {
		t.mu.Unlock()
		return err
	}
	t.mu.Unlock()
	return t.write(msg)
}

// Close ends the session: stdin is closed so the server can exit on its own,
// and the process is killed if it is still running after a short grace period.
// Pending calls fail with ErrTransportClosed.
func (t *StdioTransport) Close() error {
	t.mu.Lock()
	cmd, stdin, exited := t.cmd, t.stdin, t.exited
	t.mu.Unlock()
	if cmd == nil {
		return nil
	}

	_ = stdin.Close()
	select {
	case <-exited:
	case <-time.After(closeGrace):
		t.logger().Debug("mcp server did not exit, killing", "pid", cmd.Process.Pid)
		_ = cmd.Process.Kill()
		<-exited
	}
	t.failAll(ErrTransportClosed)
	return nil
}
