package engine

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"
)

// maxItemSample bounds how many uploads are sampled per channel for spread
// and branding evaluation.
const maxItemSample = 30

// Discoverer yields candidate channels for one search keyword.
type Discoverer interface {
	Discover(ctx context.Context, keyword string) ([]ChannelCandidate, error)
}

// DetailSource loads per-channel lifecycle metadata and a bounded sample of
// recent uploads.
type DetailSource interface {
	ChannelDetail(ctx context.Context, id string) (*ChannelDetail, error)
	ChannelItems(ctx context.Context, id string, limit int) ([]ItemSummary, error)
}

// Pipeline runs discovery, enrichment, classification and filtering over one
// browser session, in keyword order.
type Pipeline struct {
	discovery Discoverer
	details   DetailSource
	cfg       *Config
	now       func() time.Time
}

// NewPipeline wires the pipeline stages against the given configuration.
func NewPipeline(d Discoverer, ds DetailSource, cfg *Config) *Pipeline {
	return &Pipeline{discovery: d, details: ds, cfg: cfg, now: time.Now}
}

// Run processes keywords in input order. Per-keyword and per-candidate
// failures are absorbed and counted; only cancellation and session
// unavailability stop the run, and even then the results accumulated so far
// are returned rather than discarded.
func (p *Pipeline) Run(ctx context.Context, keywords []string) ([]ChannelCandidate, RunStats, error) {
	seen := make(map[string]bool)
	var accepted []ChannelCandidate
	var st RunStats

	limit := p.cfg.SearchLimit
	if limit <= 0 {
		limit = 1000
	}

	for _, raw := range keywords {
		kw := strings.TrimSpace(raw)
		if kw == "" {
			continue
		}
		if ctx.Err() != nil {
			st.Accepted = len(accepted)
			return accepted, st, ctx.Err()
		}
		st.Keywords++

		var cands []ChannelCandidate
		err := TrackOperation(ctx, "keyword:"+kw, func(ctx context.Context) error {
			var derr error
			cands, derr = p.discovery.Discover(ctx, kw)
			return derr
		})
		if err != nil {
			if errors.Is(err, ErrSessionUnavailable) || errors.Is(err, context.Canceled) {
				st.Accepted = len(accepted)
				return accepted, st, err
			}
			// Transient for this keyword only: zero results, move on.
			slog.Error("keyword search failed", slog.String("keyword", kw), slog.Any("error", err))
			st.KeywordsFailed++
			continue
		}
		st.Discovered += len(cands)

		for _, cand := range cands {
			if ctx.Err() != nil {
				st.Accepted = len(accepted)
				return accepted, st, ctx.Err()
			}
			if seen[cand.ID] {
				st.Duplicates++
				continue
			}
			seen[cand.ID] = true

			if st.Evaluated >= limit {
				slog.Info("search limit reached", slog.Int("limit", limit))
				st.Accepted = len(accepted)
				return accepted, st, nil
			}
			st.Evaluated++

			rec, ok, err := p.evaluate(ctx, cand)
			if err != nil {
				if errors.Is(err, ErrSessionUnavailable) || errors.Is(err, context.Canceled) {
					st.Accepted = len(accepted)
					return accepted, st, err
				}
				slog.Warn("candidate evaluation failed, skipping",
					slog.String("channel", cand.ID), slog.Any("error", err))
				st.EvaluationsFailed++
				continue
			}
			if ok {
				accepted = append(accepted, rec)
			}
		}

		// Randomized gap between keywords keeps the pacing human.
		if p.cfg.RequestDelay > 0 {
			sleepCtx(ctx, randomDelay(p.cfg.RequestDelay, p.cfg.RequestDelay+2*time.Second))
		}
	}

	st.Accepted = len(accepted)
	return accepted, st, nil
}

// evaluate enriches, classifies and filters one candidate. The returned bool
// reports acceptance; a non-nil error means enrichment itself failed after
// retries and the candidate was not judged.
func (p *Pipeline) evaluate(ctx context.Context, cand ChannelCandidate) (ChannelCandidate, bool, error) {
	detail, err := p.details.ChannelDetail(ctx, cand.ID)
	if err != nil {
		return cand, false, err
	}
	items, err := p.details.ChannelItems(ctx, cand.ID, maxItemSample)
	if err != nil {
		return cand, false, err
	}
	if detail == nil {
		detail = &ChannelDetail{}
	}
	detail.ItemCount = len(items)
	var views int64
	for _, it := range items {
		views += it.ViewCount
	}
	detail.AggregateViewCount = views
	cand.Detail = detail

	branding := ClassifyBranding(cand, items, p.cfg.Criteria.Language)
	cand.Branding = &branding

	d := Evaluate(&cand, items, p.now(), p.cfg.Criteria)
	if !d.Accepted {
		slog.Info("channel rejected",
			slog.String("channel", cand.ID),
			slog.String("title", cand.Title),
			slog.String("criterion", string(d.Failed)),
			slog.String("reason", d.Reason))
		return cand, false, nil
	}

	slog.Info("channel accepted",
		slog.String("channel", cand.ID),
		slog.String("title", cand.Title),
		slog.Int("subscribers", cand.SubscriberCount),
		slog.String("keyword", cand.SourceKeyword))
	return cand, true, nil
}
