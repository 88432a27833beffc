package main

import (
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/server"
	"github.com/ternarybob/scout/internal/app"
	"github.com/ternarybob/scout/internal/common"
)

func main() {
	configPath := os.Getenv("SCOUT_CONFIG")
	if configPath == "" {
		if _, err := os.Stat("scout.toml"); err == nil {
			configPath = "scout.toml"
		}
	}

	config, err := common.LoadFromFiles(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Minimal logging to avoid cluttering MCP stdio
	logger := common.NewQuietLogger("warn")

	application, err := app.New(config, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize application")
	}
	defer application.Close()

	if err := application.StartBackground(); err != nil {
		logger.Warn().Err(err).Msg("Background jobs not started")
	}

	// Blocks on stdio
	if err := server.ServeStdio(application.MCPServer); err != nil {
		logger.Fatal().Err(err).Msg("MCP server failed")
	}
}
