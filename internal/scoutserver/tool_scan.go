package scoutserver

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"channelscout/internal/engine"
	"channelscout/internal/toolutil"
)

func registerChannelScan(server *mcp.Server, d *Deps) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "channel_scan",
		Description: "Run the full channel-scouting pipeline: search the given keywords, enrich each candidate channel with lifecycle metadata and a sample of recent uploads, classify personal branding, and return the channels that pass all growth criteria, with run statistics.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, req *mcp.CallToolRequest, input engine.ScanInput) (*mcp.CallToolResult, engine.ScanOutput, error) {
		if len(input.Keywords) == 0 {
			return nil, engine.ScanOutput{}, fmt.Errorf("keywords are required")
		}

		cacheKey := engine.CacheKey(append([]string{"channel_scan", fmt.Sprint(input.Limit)}, input.Keywords...)...)
		if out, ok := toolutil.CacheLoadJSON[engine.ScanOutput](cacheKey); ok {
			return nil, out, nil
		}

		cfg := *engine.Cfg
		if input.Limit > 0 {
			cfg.SearchLimit = input.Limit
		}

		pipe := engine.NewPipeline(d.Discovery, d.Channels, &cfg)
		channels, stats, err := pipe.Run(ctx, input.Keywords)
		if err != nil {
			// Partial results are still worth returning alongside the error.
			slog.Error("scan aborted",
				slog.String("keywords", strings.Join(input.Keywords, ", ")),
				slog.Int("accepted", len(channels)),
				slog.Any("error", err))
			return nil, engine.ScanOutput{Channels: channels, Stats: stats}, err
		}

		out := engine.ScanOutput{Channels: channels, Stats: stats}
		toolutil.CacheStoreJSON(cacheKey, out)
		return nil, out, nil
	})
}
