// Package toolserver runs an MCP tool server on stdio.
package toolserver

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/bitop-dev/mcpchat/internal/logging"
)

// New builds a server advertising name and version with register's tools.
func New(name, version string, register func(*mcp.Server)) *mcp.Server {
	s := mcp.NewServer(&mcp.Implementation{Name: name, Version: version}, nil)
	register(s)
	return s
}

// Serve runs s over t until the client disconnects or ctx is done. A closed
// connection and a canceled context are normal shutdowns.
func Serve(ctx context.Context, s *mcp.Server, t mcp.Transport, log *slog.Logger) error {
	log = logging.Component(log, "server")
	log.Debug("serving")
	err := s.Run(ctx, t)
	if err == nil || errors.Is(err, io.EOF) || errors.Is(err, context.Canceled) {
		log.Debug("client disconnected")
		return nil
	}
	return err
}

// LoggerFromEnv builds a stderr logger from MCPCHAT_LOG_LEVEL and
// MCPCHAT_LOG_FORMAT, which servers inherit from the client that spawned them.
// An unknown level falls back to info.
func LoggerFromEnv() *slog.Logger {
	level, err := logging.ParseLevel(os.Getenv("MCPCHAT_LOG_LEVEL"))
	log := logging.New(os.Stderr, level, os.Getenv("MCPCHAT_LOG_FORMAT"))
	if err != nil {
		log.Warn("ignoring log level", "err", err)
	}
	return log
}
