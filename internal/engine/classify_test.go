package engine

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyBrandingNonPersonal(t *testing.T) {
	c := ChannelCandidate{
		Title:       "Tech Reviews Hub",
		Description: "Latest gadget reviews and comparisons. New videos every week.",
	}
	items := []ItemSummary{
		{Title: "Best budget laptops of 2026"},
		{Title: "Mechanical keyboard comparison"},
		{Title: "Is this phone worth it?"},
	}

	res := ClassifyBranding(c, items, "en")
	assert.Equal(t, 0, res.Score)
	assert.True(t, res.Acceptable)
	assert.Empty(t, res.Reasons)
}

func TestClassifyBrandingPersonalVlog(t *testing.T) {
	c := ChannelCandidate{
		Title:       "Sarah's Lifestyle Vlog",
		Description: "My daily routine and day in my life vlogs",
	}

	res := ClassifyBranding(c, nil, "en")
	require.GreaterOrEqual(t, res.Score, 3)
	assert.False(t, res.Acceptable)
	assert.NotEmpty(t, res.Reasons)
}

func TestClassifyBrandingSingleRules(t *testing.T) {
	t.Run("name pattern only", func(t *testing.T) {
		res := ClassifyBranding(ChannelCandidate{Title: "Midnight Diary"}, nil, "en")
		assert.Equal(t, 3, res.Score)
		assert.False(t, res.Acceptable)
	})

	t.Run("metadata keyword only", func(t *testing.T) {
		res := ClassifyBranding(ChannelCandidate{Title: "Morning GRWM Channel"}, nil, "en")
		assert.Equal(t, 2, res.Score)
		assert.True(t, res.Acceptable)
	})

	t.Run("pronoun density heavy", func(t *testing.T) {
		c := ChannelCandidate{
			Title:       "Cooking Basics",
			Description: "I cook. I bake. I grill.",
		}
		res := ClassifyBranding(c, nil, "en")
		assert.Equal(t, 3, res.Score)
		assert.False(t, res.Acceptable)
	})

	t.Run("pronoun density moderate", func(t *testing.T) {
		c := ChannelCandidate{
			Title:       "Cooking Basics",
			Description: "Recipes I collect from around the world.",
		}
		res := ClassifyBranding(c, nil, "en")
		assert.Equal(t, 1, res.Score)
		assert.True(t, res.Acceptable)
	})

	t.Run("presence terms heavy", func(t *testing.T) {
		var items []ItemSummary
		for i := 0; i < 10; i++ {
			items = append(items, ItemSummary{Title: fmt.Sprintf("Reaction to episode %d", i+1)})
		}
		res := ClassifyBranding(ChannelCandidate{Title: "Anime Episodes"}, items, "en")
		assert.Equal(t, 3, res.Score)
		assert.False(t, res.Acceptable)
	})

	t.Run("presence terms moderate", func(t *testing.T) {
		items := []ItemSummary{
			{Title: "Reaction to episode 1"},
			{Title: "Reaction to episode 2"},
			{Title: "Reaction to episode 3"},
			{Title: "Reaction to episode 4"},
			{Title: "Reaction to episode 5"},
			{Title: "Season overview"},
			{Title: "Best fights ranked"},
			{Title: "Opening themes compared"},
			{Title: "Manga vs anime"},
			{Title: "Studio history"},
		}
		res := ClassifyBranding(ChannelCandidate{Title: "Anime Episodes"}, items, "en")
		assert.Equal(t, 1, res.Score)
		assert.True(t, res.Acceptable)
	})
}

func TestClassifyBrandingScoreCap(t *testing.T) {
	c := ChannelCandidate{
		Title:       "My Vlog Diary",
		Description: "I love my vlog, my routine and my daily life, me myself and I",
	}
	res := ClassifyBranding(c, nil, "en")
	assert.Equal(t, 10, res.Score)
	assert.False(t, res.Acceptable)
}

func TestClassifyBrandingTokenBoundaries(t *testing.T) {
	// "my" must not fire inside "myself" or "academy".
	c := ChannelCandidate{
		Title:       "Coding Academy",
		Description: "Structured lessons for self-taught developers.",
	}
	res := ClassifyBranding(c, nil, "en")
	assert.Equal(t, 0, res.Score)
	assert.True(t, res.Acceptable)
}

func TestClassifyBrandingDeterministic(t *testing.T) {
	c := ChannelCandidate{
		Title:       "Sarah's Lifestyle Vlog",
		Description: "My daily routine and day in my life vlogs",
	}
	items := []ItemSummary{{Title: "GRWM for school"}, {Title: "My skincare routine"}}

	first := ClassifyBranding(c, items, "en")
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, ClassifyBranding(c, items, "en"))
	}
}

func TestClassifyBrandingLocales(t *testing.T) {
	t.Run("japanese name pattern", func(t *testing.T) {
		res := ClassifyBranding(ChannelCandidate{Title: "ゆきの部屋"}, nil, "ja")
		assert.GreaterOrEqual(t, res.Score, 3)
		assert.False(t, res.Acceptable)
	})

	t.Run("unknown locale falls back to en", func(t *testing.T) {
		c := ChannelCandidate{Title: "Sarah's Lifestyle Vlog"}
		assert.Equal(t, ClassifyBranding(c, nil, "en").Score, ClassifyBranding(c, nil, "zz").Score)
	})
}
