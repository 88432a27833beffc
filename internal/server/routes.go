package server

import (
	"net/http"

	"github.com/ternarybob/scout/internal/app"
)

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// API routes - System
	mux.HandleFunc("/api/health", s.app.APIHandler.HealthHandler)
	mux.HandleFunc("/api/version", s.app.APIHandler.VersionHandler)

	// API routes - Chat
	mux.HandleFunc("/api/chat", s.app.ChatHandler.ChatHandler)
	mux.HandleFunc("/api/chat/stream", s.app.ChatHandler.StreamHandler)

	// WebSocket route
	mux.HandleFunc("/ws/chat", s.app.ChatWSHandler.HandleWebSocket)

	// MCP (Model Context Protocol) over streamable HTTP
	mux.Handle(app.MCPEndpoint, s.app.MCPHandler)

	// Everything else is a JSON 404
	mux.HandleFunc("/", s.app.APIHandler.NotFoundHandler)

	return mux
}
