package engine

import (
	"fmt"
	"log/slog"
	"sort"
	"time"
)

// minSpreadQualifiers is how many sampled items must land inside the spread
// band for a channel to pass; the top three qualifiers are kept for the
// report.
const (
	minSpreadQualifiers  = 3
	reportedSpreadItems  = 3
	hoursPerChannelDay   = 24
	spreadItemURLPattern = "https://www.youtube.com/watch?v=%s"
)

// SpreadRate is an item's views relative to the channel's audience size.
// Zero subscribers yields 0 rather than a division error.
func SpreadRate(viewCount int64, subscriberCount int) float64 {
	if subscriberCount == 0 {
		return 0
	}
	return float64(viewCount) / float64(subscriberCount)
}

// SpreadQualifiers returns the sampled items whose spread rate lies inside
// [cr.SpreadRateMin, cr.SpreadRateMax], sorted by rate descending.
func SpreadQualifiers(items []ItemSummary, subscriberCount int, cr Criteria) []SpreadItem {
	var out []SpreadItem
	for _, it := range items {
		rate := SpreadRate(it.ViewCount, subscriberCount)
		if rate >= cr.SpreadRateMin && rate <= cr.SpreadRateMax {
			out = append(out, SpreadItem{
				ID:         it.ID,
				URL:        fmt.Sprintf(spreadItemURLPattern, it.ID),
				SpreadRate: rate,
			})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SpreadRate > out[j].SpreadRate })
	return out
}

// Evaluate applies the acceptance criteria to an enriched candidate. The
// first failing criterion short-circuits; the fixed order keeps rejection
// reasons stable for diagnostics. On acceptance the top spread qualifiers are
// attached to the candidate.
func Evaluate(c *ChannelCandidate, items []ItemSummary, now time.Time, cr Criteria) Decision {
	if c.SubscriberCount < cr.MinSubscribers || c.SubscriberCount > cr.MaxSubscribers {
		return reject(CriterionSubscribers,
			fmt.Sprintf("subscriber count %d outside [%d, %d]", c.SubscriberCount, cr.MinSubscribers, cr.MaxSubscribers))
	}

	if c.Detail == nil {
		return reject(CriterionItemCount, "channel detail unavailable")
	}
	if c.Detail.ItemCount > cr.MaxItemCount {
		return reject(CriterionItemCount,
			fmt.Sprintf("upload count %d exceeds %d", c.Detail.ItemCount, cr.MaxItemCount))
	}

	if c.Detail.CreatedAt != nil {
		age := now.Sub(*c.Detail.CreatedAt)
		maxAge := time.Duration(cr.MaxChannelAgeDays) * hoursPerChannelDay * time.Hour
		if age > maxAge {
			return reject(CriterionAge,
				fmt.Sprintf("channel age %.0f days exceeds %d", age.Hours()/hoursPerChannelDay, cr.MaxChannelAgeDays))
		}
	} else {
		// Unknown creation date passes the age criterion; inherited leniency,
		// surfaced in the log rather than silently changed.
		slog.Warn("channel age unknown, age criterion skipped", slog.String("channel", c.ID))
	}

	qualifiers := SpreadQualifiers(items, c.SubscriberCount, cr)
	if len(qualifiers) < minSpreadQualifiers {
		return reject(CriterionSpread,
			fmt.Sprintf("%d of %d sampled items with spread rate in [%g, %g]; need %d",
				len(qualifiers), len(items), cr.SpreadRateMin, cr.SpreadRateMax, minSpreadQualifiers))
	}
	if len(qualifiers) > reportedSpreadItems {
		qualifiers = qualifiers[:reportedSpreadItems]
	}
	c.SpreadQualifying = qualifiers

	if c.Branding == nil || !c.Branding.Acceptable {
		reason := "personal branding score unavailable"
		if c.Branding != nil {
			reason = fmt.Sprintf("personal branding score %d (accept below %d)", c.Branding.Score, BrandingAcceptBelow)
		}
		return reject(CriterionBranding, reason)
	}

	return Decision{Accepted: true}
}

func reject(criterion Criterion, reason string) Decision {
	return Decision{Failed: criterion, Reason: reason}
}
