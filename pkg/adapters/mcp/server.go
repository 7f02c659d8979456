// Package mcp exposes the agent's tools over the Model Context Protocol,
// so MCP-capable clients can drive the same reasoning-loop tools.
package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/aretw0/espalier"
	"github.com/aretw0/espalier/pkg/domain"
)

// Dispatcher is the slice of the agent the MCP layer needs.
type Dispatcher interface {
	Dispatch(ctx context.Context, tool, query string) string
	Tools() []domain.ToolInfo
}

// Server wraps a Dispatcher and exposes each tool as an MCP tool.
type Server struct {
	dispatcher Dispatcher
	logger     *slog.Logger
	mcpServer  *server.MCPServer
}

// NewServer creates an MCP server over the dispatcher's tools.
func NewServer(dispatcher Dispatcher, logger *slog.Logger) *Server {
	s := &Server{
		dispatcher: dispatcher,
		logger:     logger,
		mcpServer:  server.NewMCPServer("espalier-mcp", strings.TrimSpace(espalier.Version)),
	}
	s.registerTools()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Info("shutdown signal received, stopping MCP server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	for _, info := range s.dispatcher.Tools() {
		name := info.Name
		tool := mcp.NewTool(name,
			mcp.WithDescription(info.Description),
			mcp.WithString("query", mcp.Required(),
				mcp.Description("Natural-language question for the tool")),
		)
		s.mcpServer.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			query := request.GetString("query", "")
			if query == "" {
				return mcp.NewToolResultError("query is required"), nil
			}

			// Dispatch folds every failure into the text, so the MCP
			// result is always a plain observation.
			result := s.dispatcher.Dispatch(ctx, name, query)
			return mcp.NewToolResultText(result), nil
		})
	}
}
