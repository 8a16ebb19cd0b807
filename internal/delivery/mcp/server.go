// Package mcp exposes item analysis and free-text parsing as Model Context Protocol tools over stdio.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/JAChelton/ai-inventory-tracker/internal/catalog"
	"github.com/JAChelton/ai-inventory-tracker/internal/domain"
	"github.com/JAChelton/ai-inventory-tracker/internal/session"
	"github.com/JAChelton/ai-inventory-tracker/internal/usecase"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"
)

// ClientID is the rate-limit identity shared by all MCP callers.
const ClientID = "mcp"

// ServerConfig holds the services the MCP tools call into.
type ServerConfig struct {
	Analyzer session.Analyzer
	Catalog  *catalog.Catalog
	Matcher  *usecase.TextMatcher
	Detector *usecase.UnknownItemDetector
	Version  string
	Logger   zerolog.Logger
}

// NewServer creates an MCP server with the inventory tools registered.
func NewServer(cfg ServerConfig) *server.MCPServer {
	ver := cfg.Version
	if ver == "" {
		ver = "dev"
	}

	s := server.NewMCPServer(
		"inventory-tracker",
		ver,
		server.WithToolCapabilities(false),
	)

	registerAnalyzeTool(s, cfg)
	registerParseTool(s, cfg)

	return s
}

// ServeStdio serves s on stdin/stdout until the input closes.
func ServeStdio(s *server.MCPServer) error {
	return server.ServeStdio(s)
}

func registerAnalyzeTool(s *server.MCPServer, cfg ServerConfig) {
	tool := mcp.NewTool("analyze_item",
		mcp.WithDescription("Estimate weight, dimensions and category for a single household item name."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithString("itemName",
			mcp.Required(),
			mcp.Description("Item name, 2 to 100 characters (e.g. 'upright piano')"),
		),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		name, err := req.RequireString("itemName")
		if err != nil {
			return mcp.NewToolResultError("itemName is required"), nil
		}

		result, err := cfg.Analyzer.Analyze(ctx, ClientID, name)
		if err != nil {
			return toolError(err), nil
		}
		return jsonResult(result)
	})
}

func registerParseTool(s *server.MCPServer, cfg ServerConfig) {
	tool := mcp.NewTool("parse_inventory",
		mcp.WithDescription("Turn free text such as '3 dining chairs and an upright piano' into inventory entries."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithString("text",
			mcp.Required(),
			mcp.Description("Free-text description of the items"),
		),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		text, err := req.RequireString("text")
		if err != nil {
			return mcp.NewToolResultError("text is required"), nil
		}

		sess := session.New(cfg.Catalog.Names(), cfg.Matcher, cfg.Detector, cfg.Analyzer,
			session.Config{ClientID: ClientID}, cfg.Logger)
		defer sess.Close()

		report := sess.Process(ctx, text)
		return jsonResult(struct {
			Entries  []session.Entry   `json:"entries"`
			Failures []session.Failure `json:"failures,omitempty"`
			Totals   session.Totals    `json:"totals"`
		}{
			Entries:  sess.Items().Entries(),
			Failures: report.Failures,
			Totals:   report.Totals,
		})
	})
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal tool result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}

func toolError(err error) *mcp.CallToolResult {
	var rateErr *domain.RateLimitError
	switch {
	case errors.Is(err, domain.ErrInvalidItemName):
		return mcp.NewToolResultError("itemName must be between 2 and 100 characters")
	case errors.As(err, &rateErr):
		return mcp.NewToolResultError(fmt.Sprintf("rate limited, retry after %d seconds", rateErr.RetryAfterSeconds()))
	default:
		return mcp.NewToolResultError(fmt.Sprintf("analysis failed: %v", err))
	}
}
