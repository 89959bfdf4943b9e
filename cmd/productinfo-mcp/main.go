package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/use-agent/productinfo/api/handler"
	"github.com/use-agent/productinfo/config"
	"github.com/use-agent/productinfo/models"
	"github.com/use-agent/productinfo/scraper"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	// stdout carries the MCP protocol; logs go to stderr.
	slog.SetDefault(cfg.Log.NewLogger(os.Stderr))

	ex := scraper.NewExtractor(cfg.Fetch)
	defer ex.Close()

	s := server.NewMCPServer(
		"productinfo",
		handler.Version,
		server.WithToolCapabilities(false),
	)

	productInfoTool := mcp.NewTool("product_info",
		mcp.WithDescription("Fetch a public product page and return its title and a representative image URL as JSON. Fails when the page has no product title (blocked, captcha or not a product page)."),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("The product page URL"),
		),
	)

	s.AddTool(productInfoTool, handleProductInfo(ex))

	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}

func handleProductInfo(ex handler.ProductExtractor) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		url := request.GetString("url", "")

		info, err := ex.Extract(ctx, url)
		if err != nil {
			var msg string
			switch models.ReasonOf(err) {
			case models.ReasonMissingURL:
				msg = models.MsgURLRequired
			case models.ReasonProductInfoNotFound:
				msg = models.MsgProductNotFound
			default:
				slog.Warn("product fetch failed", "url", url, "error", err)
				msg = models.MsgFetchFailed
			}
			return mcp.NewToolResultError(msg), nil
		}

		out, err := json.MarshalIndent(models.NewProductInfoResponse(info), "", "  ")
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
		}
		return mcp.NewToolResultText(string(out)), nil
	}
}
