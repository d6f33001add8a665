package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCriteria() Criteria {
	return Criteria{
		MinSubscribers:    100,
		MaxSubscribers:    50000,
		MaxItemCount:      30,
		MaxChannelAgeDays: 60,
		SpreadRateMin:     2,
		SpreadRateMax:     6,
		Language:          "en",
	}
}

// passingCandidate is enriched so every criterion passes against
// testCriteria at the given reference time.
func passingCandidate(now time.Time) (ChannelCandidate, []ItemSummary) {
	created := now.AddDate(0, 0, -30)
	c := ChannelCandidate{
		ID:              "UCtest0000000000000000",
		Title:           "Pixel Forge",
		SubscriberCount: 5000,
		Detail:          &ChannelDetail{CreatedAt: &created, ItemCount: 20},
		Branding:        &BrandingResult{Score: 0, Acceptable: true},
	}
	items := []ItemSummary{
		{ID: "vid00000001", Title: "Devlog 1", ViewCount: 5000},  // 1.0, below band
		{ID: "vid00000002", Title: "Devlog 2", ViewCount: 16000}, // 3.2
		{ID: "vid00000003", Title: "Devlog 3", ViewCount: 20000}, // 4.0
		{ID: "vid00000004", Title: "Devlog 4", ViewCount: 27500}, // 5.5
	}
	return c, items
}

func TestSpreadRate(t *testing.T) {
	assert.Equal(t, 2.0, SpreadRate(10000, 5000))
	assert.Equal(t, 0.5, SpreadRate(2500, 5000))
	assert.Equal(t, 0.0, SpreadRate(10000, 0), "zero subscribers must not divide")
}

func TestSpreadQualifiers(t *testing.T) {
	cr := testCriteria()
	items := []ItemSummary{
		{ID: "aaaaaaaaaaa", ViewCount: 10000}, // 2.0, inclusive lower bound
		{ID: "bbbbbbbbbbb", ViewCount: 30000}, // 6.0, inclusive upper bound
		{ID: "ccccccccccc", ViewCount: 35000}, // 7.0, above band
		{ID: "ddddddddddd", ViewCount: 4000},  // 0.8, below band
		{ID: "eeeeeeeeeee", ViewCount: 20000}, // 4.0
	}

	got := SpreadQualifiers(items, 5000, cr)
	require.Len(t, got, 3)
	assert.Equal(t, "bbbbbbbbbbb", got[0].ID, "sorted by rate descending")
	assert.Equal(t, 6.0, got[0].SpreadRate)
	assert.Equal(t, "eeeeeeeeeee", got[1].ID)
	assert.Equal(t, "aaaaaaaaaaa", got[2].ID)
	assert.Equal(t, "https://www.youtube.com/watch?v=bbbbbbbbbbb", got[0].URL)
}

func TestEvaluateAccept(t *testing.T) {
	now := time.Now()
	cr := testCriteria()
	c, items := passingCandidate(now)

	d := Evaluate(&c, items, now, cr)
	require.True(t, d.Accepted, "reason: %s", d.Reason)
	assert.Empty(t, d.Failed)
	require.Len(t, c.SpreadQualifying, 3)
	assert.Equal(t, 5.5, c.SpreadQualifying[0].SpreadRate)
}

func TestEvaluateRejections(t *testing.T) {
	now := time.Now()
	cr := testCriteria()

	t.Run("subscribers below minimum", func(t *testing.T) {
		c, items := passingCandidate(now)
		c.SubscriberCount = 50
		d := Evaluate(&c, items, now, cr)
		assert.False(t, d.Accepted)
		assert.Equal(t, CriterionSubscribers, d.Failed)
	})

	t.Run("subscribers above maximum", func(t *testing.T) {
		c, items := passingCandidate(now)
		c.SubscriberCount = 100000
		d := Evaluate(&c, items, now, cr)
		assert.False(t, d.Accepted)
		assert.Equal(t, CriterionSubscribers, d.Failed)
	})

	t.Run("missing detail", func(t *testing.T) {
		c, items := passingCandidate(now)
		c.Detail = nil
		d := Evaluate(&c, items, now, cr)
		assert.False(t, d.Accepted)
		assert.Equal(t, CriterionItemCount, d.Failed)
	})

	t.Run("too many uploads", func(t *testing.T) {
		c, items := passingCandidate(now)
		c.Detail.ItemCount = 31
		d := Evaluate(&c, items, now, cr)
		assert.False(t, d.Accepted)
		assert.Equal(t, CriterionItemCount, d.Failed)
	})

	t.Run("channel too old", func(t *testing.T) {
		c, items := passingCandidate(now)
		created := now.AddDate(0, 0, -90)
		c.Detail.CreatedAt = &created
		d := Evaluate(&c, items, now, cr)
		assert.False(t, d.Accepted)
		assert.Equal(t, CriterionAge, d.Failed)
	})

	t.Run("too few spread qualifiers", func(t *testing.T) {
		c, items := passingCandidate(now)
		items = items[:3] // leaves two in-band items
		d := Evaluate(&c, items, now, cr)
		assert.False(t, d.Accepted)
		assert.Equal(t, CriterionSpread, d.Failed)
	})

	t.Run("branding unacceptable", func(t *testing.T) {
		c, items := passingCandidate(now)
		c.Branding = &BrandingResult{Score: 8, Acceptable: false}
		d := Evaluate(&c, items, now, cr)
		assert.False(t, d.Accepted)
		assert.Equal(t, CriterionBranding, d.Failed)
	})

	t.Run("branding missing", func(t *testing.T) {
		c, items := passingCandidate(now)
		c.Branding = nil
		d := Evaluate(&c, items, now, cr)
		assert.False(t, d.Accepted)
		assert.Equal(t, CriterionBranding, d.Failed)
	})
}

func TestEvaluateUnknownAgePasses(t *testing.T) {
	now := time.Now()
	cr := testCriteria()
	c, items := passingCandidate(now)
	c.Detail.CreatedAt = nil

	d := Evaluate(&c, items, now, cr)
	assert.True(t, d.Accepted, "unknown creation date must not reject")
}

func TestEvaluateSpreadBoundary(t *testing.T) {
	now := time.Now()
	cr := testCriteria()
	c, _ := passingCandidate(now)
	items := []ItemSummary{
		{ID: "vid00000001", ViewCount: 10000}, // exactly 2.0
		{ID: "vid00000002", ViewCount: 10000},
		{ID: "vid00000003", ViewCount: 30000}, // exactly 6.0
	}

	d := Evaluate(&c, items, now, cr)
	assert.True(t, d.Accepted, "band bounds are inclusive: %s", d.Reason)
}
