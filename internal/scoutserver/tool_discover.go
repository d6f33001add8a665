package scoutserver

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"channelscout/internal/engine"
	"channelscout/internal/toolutil"
)

func registerChannelDiscover(server *mcp.Server, d *Deps) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "channel_discover",
		Description: "Search a single keyword and return the raw channel candidates from the results page, before any criteria filtering. Useful for inspecting what a keyword surfaces.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, req *mcp.CallToolRequest, input engine.DiscoverInput) (*mcp.CallToolResult, engine.DiscoverOutput, error) {
		keyword := strings.TrimSpace(input.Keyword)
		if keyword == "" {
			return nil, engine.DiscoverOutput{}, fmt.Errorf("keyword is required")
		}

		cacheKey := engine.CacheKey("channel_discover", keyword, engine.Cfg.Region, engine.Cfg.Criteria.Language)
		if out, ok := toolutil.CacheLoadJSON[engine.DiscoverOutput](cacheKey); ok {
			return nil, out, nil
		}

		cands, err := d.Discovery.Discover(ctx, keyword)
		if err != nil {
			return nil, engine.DiscoverOutput{}, err
		}

		out := engine.DiscoverOutput{Keyword: keyword, Candidates: cands}
		toolutil.CacheStoreJSON(cacheKey, out)
		return nil, out, nil
	})
}
