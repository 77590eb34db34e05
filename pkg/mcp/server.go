// Package mcp wires the capability-routing tools into an MCP server.
//
// This is the composition boundary: requests arrive over the line-oriented
// stdio protocol one at a time, are validated, and are translated into
// matcher and dispatcher calls. Per-task specialist failures are embedded
// in tool results; they never surface as protocol errors.
package mcp

import (
	"log/slog"

	"github.com/mark3labs/mcp-go/server"

	"github.com/jvila/majordomo/pkg/dispatcher"
	"github.com/jvila/majordomo/pkg/manifest"
	"github.com/jvila/majordomo/pkg/matcher"
)

// Server wraps the mcp-go server with the majordomo tool set.
type Server struct {
	mcpServer *server.MCPServer
}

// NewServer creates the tool server and registers discover_capability,
// spawn_specialist, and spawn_parallel.
func NewServer(name, version string, m *matcher.Matcher, d *dispatcher.Dispatcher, store *manifest.Store, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}

	s := server.NewMCPServer(
		name,
		version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
	)

	discover := NewDiscoverTool(m, log)
	s.AddTool(discover.Definition(), discover.Handle)

	spawn := NewSpawnTool(d, log)
	s.AddTool(spawn.Definition(), spawn.Handle)

	parallel := NewParallelTool(d, store, log)
	s.AddTool(parallel.Definition(), parallel.Handle)

	return &Server{mcpServer: s}
}

// ServeStdio runs the server until its transport closes.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}
