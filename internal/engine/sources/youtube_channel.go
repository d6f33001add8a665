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

// "load more" rounds on the channel's videos tab; a small number is enough
// for the bounded sample.
const videosScrollRounds = 3

// Channels fetches per-channel lifecycle metadata and recent uploads over
// the shared session.
type Channels struct {
	session *engine.Session
	cfg     *engine.Config
}

// NewChannels binds channel fetching to a live session.
func NewChannels(s *engine.Session, cfg *engine.Config) *Channels {
	return &Channels{session: s, cfg: cfg}
}

// ChannelDetail loads the channel's about surface. The join date is best
// effort: a missing or unparsable one leaves CreatedAt nil, it does not fail
// the fetch.
func (c *Channels) ChannelDetail(ctx context.Context, id string) (*engine.ChannelDetail, error) {
	engine.IncrDetailNavigations()
	if err := c.session.NavigateWithRetry(ctx, aboutURL(id)); err != nil {
		return nil, fmt.Errorf("channel %s about: %w", id, err)
	}
	c.session.RandomPause(ctx, 2*time.Second, 4*time.Second)

	detail := &engine.ChannelDetail{}
	html, err := c.session.HTML(ctx)
	if err != nil {
		slog.Warn("about page read failed", slog.String("channel", id), slog.Any("error", err))
		return detail, nil
	}
	detail.CreatedAt = parseJoinedDate(html)
	return detail, nil
}

// ChannelItems loads the channel's videos tab and returns up to limit
// rendered uploads in listing order.
func (c *Channels) ChannelItems(ctx context.Context, id string, limit int) ([]engine.ItemSummary, error) {
	engine.IncrDetailNavigations()
	if err := c.session.NavigateWithRetry(ctx, videosURL(id)); err != nil {
		return nil, fmt.Errorf("channel %s videos: %w", id, err)
	}
	c.session.RandomPause(ctx, 2*time.Second, 4*time.Second)

	if err := c.session.ScrollProgressive(ctx, videosScrollRounds); err != nil {
		slog.Warn("video loading interrupted", slog.String("channel", id), slog.Any("error", err))
	}

	html, err := c.session.HTML(ctx)
	if err != nil {
		return nil, fmt.Errorf("channel %s videos: %w", id, err)
	}

	items, skipped := parseVideoItems(html, limit)
	if skipped > 0 {
		slog.Debug("video blocks skipped", slog.String("channel", id), slog.Int("count", skipped))
	}
	return items, nil
}

// parseJoinedDate pulls the creation date out of the about-page metadata
// block, falling back to the whole document when the block is not found.
func parseJoinedDate(html string) *time.Time {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}
	if meta := doc.Find(selAboutMeta).First(); meta.Length() > 0 {
		if ts := engine.ParseJoinedDate(meta.Text()); ts != nil {
			return ts
		}
	}
	return engine.ParseJoinedDate(doc.Text())
}

// parseVideoItems extracts uploads from a rendered videos tab. Per-record
// parse failures are skipped, never fatal for the batch.
func parseVideoItems(html string, limit int) ([]engine.ItemSummary, int) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		engine.IncrParseFailures()
		return nil, 1
	}

	var out []engine.ItemSummary
	skipped := 0
	doc.Find(selVideoResult).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		item, ok := parseVideoBlock(sel)
		if !ok {
			skipped++
			return true
		}
		out = append(out, item)
		return limit <= 0 || len(out) < limit
	})
	return out, skipped
}

func parseVideoBlock(sel *goquery.Selection) (engine.ItemSummary, bool) {
	var zero engine.ItemSummary

	href, ok := sel.Find(selVideoLink).First().Attr("href")
	if !ok {
		engine.IncrParseFailures()
		return zero, false
	}
	id := videoIDFromHref(href)
	title := engine.CollapseSpace(sel.Find(selVideoTitle).First().Text())
	if id == "" || title == "" {
		engine.IncrParseFailures()
		return zero, false
	}

	item := engine.ItemSummary{ID: id, Title: title}
	sel.Find(selVideoMeta).Each(func(_ int, span *goquery.Selection) {
		text := engine.CollapseSpace(span.Text())
		switch {
		case strings.Contains(text, "view"):
			item.ViewCount = engine.ParseAbbreviatedCount(text)
		case strings.Contains(text, "ago"):
			item.PublishedText = text
		}
	})
	return item, true
}
