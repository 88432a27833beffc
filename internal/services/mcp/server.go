// Package mcp exposes the answer engine as Model Context Protocol tools.
package mcp

import (
	"github.com/mark3labs/mcp-go/server"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/scout/internal/common"
	"github.com/ternarybob/scout/internal/interfaces"
)

// NewServer creates an MCP server with the answer_question and search_web tools registered
func NewServer(answers interfaces.AnswerService, search interfaces.SearchService, options interfaces.SearchOptions, logger arbor.ILogger) *server.MCPServer {
	mcpServer := server.NewMCPServer(
		"scout",
		common.GetVersion(),
		server.WithToolCapabilities(true),
		server.WithRecovery(),
	)

	mcpServer.AddTool(createAnswerQuestionTool(), handleAnswerQuestion(answers, logger))
	mcpServer.AddTool(createSearchWebTool(), handleSearchWeb(search, options, logger))

	return mcpServer
}

// NewHTTPHandler serves the tools over streamable HTTP, stateless, at endpointPath
func NewHTTPHandler(mcpServer *server.MCPServer, endpointPath string) *server.StreamableHTTPServer {
	return server.NewStreamableHTTPServer(mcpServer,
		server.WithEndpointPath(endpointPath),
		server.WithStateLess(true),
	)
}
