// Command mathserver serves the arithmetic tools over stdio.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/bitop-dev/mcpchat/internal/toolserver"
	"github.com/bitop-dev/mcpchat/tools/mathtools"
)

var version = "dev"

func main() {
	log := toolserver.LoggerFromEnv()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s := toolserver.New(mathtools.ServerName, version, mathtools.Register)
	if err := toolserver.Serve(ctx, s, &mcp.StdioTransport{}, log); err != nil {
		log.Error("math server stopped", "err", err)
		stop()
		os.Exit(1)
	}
}
