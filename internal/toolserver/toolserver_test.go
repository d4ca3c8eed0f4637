package toolserver

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitop-dev/mcpchat/internal/logging"
	"github.com/bitop-dev/mcpchat/tools/mathtools"
)

func TestServe_ShutsDownWhenClientLeaves(t *testing.T) {
	ctx := context.Background()
	s := New(mathtools.ServerName, "test", mathtools.Register)

	clientTransport, serverTransport := mcp.NewInMemoryTransports()
	done := make(chan error, 1)
	go func() { done <- Serve(ctx, s, serverTransport, logging.Discard()) }()

	client := mcp.NewClient(&mcp.Implementation{Name: "c", Version: "test"}, nil)
	cs, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)

	res, err := cs.CallTool(ctx, &mcp.CallToolParams{Name: "add", Arguments: map[string]any{"a": 2, "b": 3}})
	require.NoError(t, err)
	require.Len(t, res.Content, 1)
	assert.Equal(t, "2.0 + 3.0 = 5.0", res.Content[0].(*mcp.TextContent).Text)

	require.NoError(t, cs.Close())
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestLoggerFromEnv(t *testing.T) {
	t.Setenv("MCPCHAT_LOG_LEVEL", "debug")
	assert.True(t, LoggerFromEnv().Enabled(context.Background(), slog.LevelDebug))

	t.Setenv("MCPCHAT_LOG_LEVEL", "bogus")
	assert.False(t, LoggerFromEnv().Enabled(context.Background(), slog.LevelDebug))
}
