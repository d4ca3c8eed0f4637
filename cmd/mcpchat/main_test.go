package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bitop-dev/mcpchat/mcp"
)

func TestRun_MissingServerPath(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run(nil, strings.NewReader(""), &stdout, &stderr)
	assert.Equal(t, 1, code)
	assert.Equal(t, usage+"\n", stderr.String())
	assert.Empty(t, stdout.String())
}

func TestRun_MissingAPIKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	var stdout, stderr bytes.Buffer
	code := run([]string{"--env-file", "", "./server.py"}, strings.NewReader(""), &stdout, &stderr)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "OPENAI_API_KEY is not set")
}

func TestRun_UnknownBackend(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	var stdout, stderr bytes.Buffer
	code := run([]string{"--env-file", "", "--backend", "grpc", "./server.py"}, strings.NewReader(""), &stdout, &stderr)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), `unknown backend "grpc"`)
}

func TestRun_ServerCannotStart(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	var stdout, stderr bytes.Buffer
	code := run([]string{"--env-file", "", "/nonexistent/mcp-server"}, strings.NewReader(""), &stdout, &stderr)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "start server /nonexistent/mcp-server")
}

func TestToolNames(t *testing.T) {
	assert.Equal(t, "['add', 'get_alerts']", toolNames([]mcp.ToolInfo{{Name: "add"}, {Name: "get_alerts"}}))
	assert.Equal(t, "[]", toolNames(nil))
}
