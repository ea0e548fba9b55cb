package mcp

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/mark3labs/mcp-go/server"

	"github.com/mvp-joe/project-pivot/internal/engine"
	"github.com/mvp-joe/project-pivot/internal/storage"
)

// ServerName is the MCP implementation name.
const ServerName = "pivot-mcp"

// PivotServer manages the MCP server lifecycle.
type PivotServer struct {
	engine *engine.Engine
	source storage.Source
	mcp    *server.MCPServer
}

// NewPivotServer creates an MCP server exposing pivot_aggregate, pivot_stem
// and pivot_schema over the given source.
func NewPivotServer(eng *engine.Engine, source storage.Source, version string) (*PivotServer, error) {
	if eng == nil {
		return nil, fmt.Errorf("engine is required")
	}
	if source == nil {
		return nil, fmt.Errorf("snapshot source is required")
	}

	mcpServer := server.NewMCPServer(
		ServerName,
		version,
		server.WithToolCapabilities(true),
	)

	AddAggregateTool(mcpServer, eng, source)
	AddStemTool(mcpServer, source)
	AddSchemaTool(mcpServer, source)

	return &PivotServer{
		engine: eng,
		source: source,
		mcp:    mcpServer,
	}, nil
}

// MCPServer returns the underlying mcp-go server.
func (s *PivotServer) MCPServer() *server.MCPServer {
	return s.mcp
}

// Serve starts the MCP server on stdio and blocks until shutdown.
func (s *PivotServer) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Starting MCP server on stdio...")
		if err := server.ServeStdio(s.mcp); err != nil {
			errCh <- fmt.Errorf("MCP server error: %w", err)
		}
	}()

	select {
	case <-sigCh:
		log.Printf("Received shutdown signal, stopping gracefully...")
		return nil
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
