package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// Tool names
const (
	ToolAnswerQuestion = "answer_question"
	ToolSearchWeb      = "search_web"
)

const (
	defaultSearchLimit = 6
	maxSearchLimit     = 10
)

// createAnswerQuestionTool returns the answer_question tool definition
func createAnswerQuestionTool() mcp.Tool {
	return mcp.NewTool(ToolAnswerQuestion,
		mcp.WithDescription("Answer a question from live web sources with numbered citations"),
		mcp.WithString("question",
			mcp.Required(),
			mcp.Description("Natural-language question"),
		),
	)
}

// createSearchWebTool returns the search_web tool definition
func createSearchWebTool() mcp.Tool {
	return mcp.NewTool(ToolSearchWeb,
		mcp.WithDescription("Search the web and return the fetched, deduplicated pages as markdown"),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Search query"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum pages to return (default: 6, max: 10)"),
			mcp.Min(1),
			mcp.Max(maxSearchLimit),
		),
	)
}
