package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/bobmcallan/vire-research/internal/aggregate"
	"github.com/bobmcallan/vire-research/internal/artifacts"
	"github.com/bobmcallan/vire-research/internal/config"
)

// defaultLatestLimit caps the latest_analyses tool when no limit is given.
const defaultLatestLimit = 10

// errorResult creates an MCP error result.
func errorResult(message string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(message),
		},
		IsError: true,
	}
}

// jsonResult marshals v and wraps it in a text content result.
func jsonResult(v interface{}) (*mcp.CallToolResult, error) {
	out, err := json.Marshal(v)
	if err != nil {
		return errorResult(fmt.Sprintf("Error: %v", err)), nil
	}
	return &mcp.CallToolResult{Content: []mcp.Content{mcp.NewTextContent(string(out))}}, nil
}

// RegisterTools registers the read-only artifact tools on the MCP server
// and returns the number of tools registered.
func RegisterTools(s *server.MCPServer, store *artifacts.Store) int {
	s.AddTool(listBacktestsTool(), listBacktestsHandler(store))
	s.AddTool(backtestStatsTool(), backtestStatsHandler(store))
	s.AddTool(latestAnalysesTool(), latestAnalysesHandler(store))
	s.AddTool(versionTool(), versionHandler())
	return 4
}

func listBacktestsTool() mcp.Tool {
	return mcp.NewTool("list_backtests",
		mcp.WithDescription("List backtest result files, newest first. Optionally filter by ticker symbol."),
		mcp.WithString("ticker",
			mcp.Description("Ticker symbol to filter by (e.g. AAPL)"),
		),
	)
}

func listBacktestsHandler(store *artifacts.Store) server.ToolHandlerFunc {
	return func(ctx context.Context, r mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		ticker := r.GetString("ticker", "")

		var records []artifacts.FileInfo
		var err error
		if ticker != "" {
			records, err = store.BacktestIndex().ByTicker(ticker)
		} else {
			records, err = store.BacktestIndex().Records()
		}
		if err != nil {
			return errorResult(fmt.Sprintf("Error: %v", err)), nil
		}

		type entry struct {
			Filename  string `json:"filename"`
			Ticker    string `json:"ticker"`
			Timestamp string `json:"timestamp"`
		}
		files := make([]entry, 0, len(records))
		for _, rec := range records {
			files = append(files, entry{
				Filename:  rec.Filename,
				Ticker:    rec.Ticker,
				Timestamp: rec.Timestamp.Format(time.RFC3339),
			})
		}
		return jsonResult(map[string]interface{}{"files": files})
	}
}

func backtestStatsTool() mcp.Tool {
	return mcp.NewTool("get_backtest_stats",
		mcp.WithDescription("Get a summary row per backtest (returns, trades, win rate, metrics), newest first. Unreadable files are skipped."),
	)
}

func backtestStatsHandler(store *artifacts.Store) server.ToolHandlerFunc {
	return func(ctx context.Context, r mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		records, err := store.BacktestIndex().Records()
		if err != nil {
			return errorResult(fmt.Sprintf("Error: %v", err)), nil
		}

		loaded := store.ReadBacktests(ctx, records)
		stats := make([]aggregate.SummaryStat, 0, len(loaded))
		for _, rec := range loaded {
			stat := aggregate.Summarize(rec.Data)
			stat.Filename = rec.FileInfo.Filename
			stats = append(stats, stat)
		}
		return jsonResult(map[string]interface{}{"stats": stats})
	}
}

func latestAnalysesTool() mcp.Tool {
	return mcp.NewTool("latest_analyses",
		mcp.WithDescription("Get the most recently written analysis artifacts with their trading decisions and analyst signals."),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of analyses to return (default 10)"),
		),
	)
}

func latestAnalysesHandler(store *artifacts.Store) server.ToolHandlerFunc {
	return func(ctx context.Context, r mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		limit := r.GetInt("limit", defaultLatestLimit)
		if limit <= 0 {
			return errorResult("Error: limit must be a positive number"), nil
		}

		records, err := store.AnalysisIndex().Latest(limit)
		if err != nil {
			return errorResult(fmt.Sprintf("Error: %v", err)), nil
		}

		loaded := store.ReadAnalyses(ctx, records)
		analyses := make([]artifacts.AnalysisRecord, 0, len(loaded))
		for _, rec := range loaded {
			if rec.Data.IsValid() {
				analyses = append(analyses, rec)
			}
		}
		return jsonResult(map[string]interface{}{"analyses": analyses})
	}
}

func versionTool() mcp.Tool {
	return mcp.NewTool("get_version",
		mcp.WithDescription("Get the vire-research server version and build info. Use this to verify connectivity."),
	)
}

func versionHandler() server.ToolHandlerFunc {
	return func(ctx context.Context, r mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return jsonResult(map[string]string{
			"version": config.GetVersion(),
			"build":   config.GetBuild(),
			"commit":  config.GetGitCommit(),
		})
	}
}
