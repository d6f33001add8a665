package scoutserver

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"channelscout/internal/engine"
	"channelscout/internal/toolutil"
)

func registerBrandingCheck(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "branding_check",
		Description: "Score personal branding for a channel from its title, description, and recent upload titles. Pure classification, no browsing. Scores below the accept threshold are acceptable.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, req *mcp.CallToolRequest, input engine.BrandingCheckInput) (*mcp.CallToolResult, engine.BrandingCheckOutput, error) {
		if input.Title == "" {
			return nil, engine.BrandingCheckOutput{}, fmt.Errorf("title is required")
		}

		cand := engine.ChannelCandidate{Title: input.Title, Description: input.Description}
		items := make([]engine.ItemSummary, 0, len(input.ItemTitles))
		for _, t := range input.ItemTitles {
			items = append(items, engine.ItemSummary{Title: t})
		}

		res := engine.ClassifyBranding(cand, items, toolutil.NormLang(input.Language))
		reasons := res.Reasons
		if reasons == nil {
			reasons = []string{}
		}
		return nil, engine.BrandingCheckOutput{
			Score:      res.Score,
			Reasons:    reasons,
			Acceptable: res.Acceptable,
		}, nil
	})
}
