// Command mcpchat starts an MCP tool server as a subprocess and answers
// queries typed at the terminal with an OpenAI chat model that can call the
// server's tools.
package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/dimiro1/banner"
	"github.com/spf13/pflag"

	"github.com/bitop-dev/mcpchat/chat"
	"github.com/bitop-dev/mcpchat/internal/config"
	"github.com/bitop-dev/mcpchat/internal/logging"
	"github.com/bitop-dev/mcpchat/internal/openai"
	"github.com/bitop-dev/mcpchat/internal/openaisdk"
	"github.com/bitop-dev/mcpchat/internal/provider"
	"github.com/bitop-dev/mcpchat/mcp"
)

var version = "dev"

const usage = "Usage: mcpchat [flags] <path_to_server_script>"

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	flags := pflag.NewFlagSet("mcpchat", pflag.ContinueOnError)
	flags.SetOutput(stderr)
	flags.Usage = func() {
		fmt.Fprintln(stderr, usage)
		flags.PrintDefaults()
	}
	config.RegisterFlags(flags)
	if err := flags.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		return 1
	}
	if flags.NArg() < 1 {
		fmt.Fprintln(stderr, usage)
		return 1
	}
	serverPath := flags.Arg(0)

	cfg, err := config.Load(flags)
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		fmt.Fprintf(stderr, "config: %v\n", err)
		return 1
	}
	level, _ := logging.ParseLevel(cfg.LogLevel)
	log := logging.New(stderr, level, cfg.LogFormat)

	model, err := newProvider(cfg)
	if err != nil {
		fmt.Fprintf(stderr, "model client: %v\n", err)
		return 1
	}
	orch, err := chat.New(model, chat.Options{
		Model:        cfg.Model,
		Temperature:  &cfg.Temperature,
		SystemPrompt: cfg.SystemPrompt,
		Logger:       log,
	})
	if err != nil {
		fmt.Fprintf(stderr, "%v\n", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	transport, err := mcp.StdioTransportFor(serverPath)
	if err != nil {
		fmt.Fprintf(stderr, "%v\n", err)
		return 1
	}
	transport.Stderr = stderr
	transport.Logger = logging.Component(log, "mcp")
	if err := transport.Start(); err != nil {
		fmt.Fprintf(stderr, "start server %s: %v\n", serverPath, err)
		return 1
	}
	defer transport.Close()

	client, err := mcp.Dial(ctx, transport, mcp.ClientInfo{Name: "mcpchat", Version: version})
	if err != nil {
		fmt.Fprintf(stderr, "connect to server: %v\n", err)
		return 1
	}
	tools, err := client.ListTools(ctx)
	if err != nil {
		fmt.Fprintf(stderr, "list tools: %v\n", err)
		return 1
	}
	log.Debug("connected", "server", client.Server().ServerInfo.Name, "tools", len(tools), "backend", cfg.Backend)

	printBanner(stdout)
	fmt.Fprintln(stdout, "\nConnected to server with tools:", toolNames(tools))

	sh := &chat.Shell{Querier: orch, Session: client, In: stdin, Out: stdout}
	if err := sh.Run(ctx); err != nil {
		fmt.Fprintf(stderr, "%v\n", err)
		return 1
	}
	return 0
}

func newProvider(cfg config.Config) (provider.Provider, error) {
	switch cfg.Backend {
	case config.BackendSDK:
		return openaisdk.New(openaisdk.Config{APIKey: cfg.APIKey, BaseURL: cfg.BaseURL})
	default:
		return openai.New(openai.Config{APIKey: cfg.APIKey, BaseURL: cfg.BaseURL})
	}
}

func printBanner(w io.Writer) {
	tpl := "{{ .Title \"mcpchat\" \"\" 0 }}\nVersion: " + version + "\n"
	banner.Init(w, true, false, bytes.NewBufferString(tpl))
}

// toolNames renders a quoted list: ['add', 'subtract'].
func toolNames(tools []mcp.ToolInfo) string {
	quoted := make([]string, len(tools))
	for i, t := range tools {
		quoted[i] = "'" + t.Name + "'"
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}
