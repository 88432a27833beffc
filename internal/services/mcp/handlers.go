package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/scout/internal/interfaces"
	"github.com/ternarybob/scout/internal/services/answer"
)

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(text),
		},
	}
}

// handleAnswerQuestion implements the answer_question tool
func handleAnswerQuestion(answers interfaces.AnswerService, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		question, err := request.RequireString("question")
		if err != nil {
			return mcp.NewToolResultError("Error: question parameter is required"), nil
		}

		result, err := answers.Answer(ctx, question, nil)
		if errors.Is(err, answer.ErrEmptyQuestion) {
			return mcp.NewToolResultError("Error: question parameter is required"), nil
		}
		if err != nil {
			logger.Error().Err(err).Msg("Answer failed")
			return mcp.NewToolResultError(fmt.Sprintf("Answer error: %v", err)), nil
		}

		return textResult(formatAnswer(result)), nil
	}
}

// handleSearchWeb implements the search_web tool
func handleSearchWeb(search interfaces.SearchService, options interfaces.SearchOptions, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query, err := request.RequireString("query")
		if err != nil || query == "" {
			return mcp.NewToolResultError("Error: query parameter is required"), nil
		}

		limit := request.GetInt("limit", defaultSearchLimit)
		if limit < 1 {
			limit = defaultSearchLimit
		}
		if limit > maxSearchLimit {
			limit = maxSearchLimit
		}
		options.MaxResults = limit

		docs := search.SearchAndFetch(ctx, query, options)
		logger.Debug().Str("query", query).Int("documents", len(docs)).Msg("search_web completed")

		return textResult(formatDocuments(query, docs)), nil
	}
}
