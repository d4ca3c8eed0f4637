// Command weatherserver serves the NWS weather tools, plus the arithmetic
// tools, over stdio.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/pflag"

	"github.com/bitop-dev/mcpchat/internal/logging"
	"github.com/bitop-dev/mcpchat/internal/toolserver"
	"github.com/bitop-dev/mcpchat/tools/mathtools"
	"github.com/bitop-dev/mcpchat/tools/weather"
)

var version = "dev"

func main() {
	flags := pflag.NewFlagSet("weatherserver", pflag.ContinueOnError)
	baseURL := flags.String("nws-base-url", weather.DefaultBaseURL, "National Weather Service API root")
	timeout := flags.Duration("timeout", weather.DefaultTimeout, "per-request timeout for NWS calls")
	if err := flags.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			return
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	log := toolserver.LoggerFromEnv()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := weather.NewClient(
		weather.WithBaseURL(*baseURL),
		weather.WithTimeout(*timeout),
		weather.WithLogger(logging.Component(log, "weather")),
	)
	s := toolserver.New(weather.ServerName, version, func(s *mcp.Server) {
		weather.Register(s, client)
		mathtools.Register(s)
	})
	if err := toolserver.Serve(ctx, s, &mcp.StdioTransport{}, log); err != nil {
		log.Error("weather server stopped", "err", err)
		stop()
		os.Exit(1)
	}
}
