package sources

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"channelscout/internal/engine"
)

const (
	// "load more" rounds on the search results page
	searchScrollRounds = 10
	// hard cap on candidates taken from one keyword's results
	maxResultsPerKeyword = 100
)

// Discovery drives keyword searches against the rendered results page and
// turns channel blocks into candidates.
type Discovery struct {
	session *engine.Session
	cfg     *engine.Config
}

// NewDiscovery binds discovery to a live session.
func NewDiscovery(s *engine.Session, cfg *engine.Config) *Discovery {
	return &Discovery{session: s, cfg: cfg}
}

// Discover searches one keyword and returns deduplicated, language-filtered
// candidates in result order.
func (d *Discovery) Discover(ctx context.Context, keyword string) ([]engine.ChannelCandidate, error) {
	engine.IncrSearchNavigations()
	slog.Info("searching", slog.String("keyword", keyword))

	if err := d.session.NavigateWithRetry(ctx, searchURL(keyword, d.cfg.Region, d.cfg.Criteria.Language)); err != nil {
		return nil, fmt.Errorf("search %q: %w", keyword, err)
	}
	d.session.RandomPause(ctx, 2*time.Second, 4*time.Second)

	if err := d.session.ScrollProgressive(ctx, searchScrollRounds); err != nil {
		// Whatever rendered before the interruption still gets parsed.
		slog.Warn("progressive loading interrupted", slog.String("keyword", keyword), slog.Any("error", err))
	}

	html, err := d.session.HTML(ctx)
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", keyword, err)
	}

	cands, skipped, filtered := parseChannelResults(html, d.cfg.Criteria.Language, d.cfg.Region)
	if skipped > 0 {
		slog.Debug("channel blocks skipped", slog.String("keyword", keyword), slog.Int("count", skipped))
	}
	if filtered > 0 {
		slog.Debug("out-of-language channels filtered", slog.String("keyword", keyword), slog.Int("count", filtered))
	}
	if len(cands) > maxResultsPerKeyword {
		cands = cands[:maxResultsPerKeyword]
	}
	for i := range cands {
		cands[i].SourceKeyword = keyword
	}
	slog.Info("search complete", slog.String("keyword", keyword), slog.Int("candidates", len(cands)))
	return cands, nil
}

// parseChannelResults extracts candidates from a rendered search page,
// deduplicating by channel id. One malformed block never aborts the batch.
// Malformed blocks and language-gated channels are counted separately; only
// the former are parse failures.
func parseChannelResults(html, language, region string) (out []engine.ChannelCandidate, skipped, filtered int) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		engine.IncrParseFailures()
		return nil, 1, 0
	}

	seen := make(map[string]bool)
	doc.Find(selChannelResult).Each(func(_ int, sel *goquery.Selection) {
		c, ok := parseChannelBlock(sel, language, region)
		if !ok {
			skipped++
			return
		}
		// Early language gate on title + description saves a detail fetch
		// on clearly out-of-scope content.
		if !engine.LanguageFit(c.Title+" "+c.Description, language) {
			engine.IncrLanguageFiltered()
			slog.Debug("skipping out-of-language channel", slog.String("title", c.Title))
			filtered++
			return
		}
		if seen[c.ID] {
			return
		}
		seen[c.ID] = true
		out = append(out, c)
	})
	return out, skipped, filtered
}

// parseChannelBlock reads one ytd-channel-renderer. Returns false for blocks
// missing required fields.
func parseChannelBlock(sel *goquery.Selection, language, region string) (engine.ChannelCandidate, bool) {
	var zero engine.ChannelCandidate

	href, ok := sel.Find(selChannelLink).First().Attr("href")
	if !ok || href == "" {
		engine.IncrParseFailures()
		return zero, false
	}
	id := channelIDFromHref(href)
	title := engine.CollapseSpace(sel.Find(selChannelTitle).First().Text())
	if id == "" || title == "" {
		engine.IncrParseFailures()
		return zero, false
	}

	return engine.ChannelCandidate{
		ID:              id,
		Title:           title,
		Description:     engine.CollapseSpace(sel.Find(selChannelDesc).First().Text()),
		SubscriberCount: int(engine.ParseAbbreviatedCount(sel.Find(selChannelSubs).First().Text())),
		URL:             baseURL + href,
		Language:        language,
		Region:          region,
	}, true
}
