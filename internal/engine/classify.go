package engine

import (
	"fmt"
	"strings"
	"unicode"
)

// BrandingLocale holds the pattern lists the classifier matches for one
// language. Adding a locale is a data change only.
type BrandingLocale struct {
	// Channel-name substrings suggesting a personal/vlog channel.
	NamePatterns []string
	// First-person lifestyle vocabulary matched in metadata and item titles.
	PersonalKeywords []string
	// First-person pronouns counted in the description.
	Pronouns []string
	// Terms implying an on-camera person in an item title.
	PresenceTerms []string
	// Whitespace-delimited language: single-word terms match whole tokens.
	Tokenized bool
}

var brandingLocales = map[string]BrandingLocale{
	"en": {
		NamePatterns:     []string{"vlog", "'s ", "my ", "diary", "daily life"},
		PersonalKeywords: []string{"my", "me", "vlog", "personal", "daily", "routine", "life", "grwm", "face", "selfie", "day in my life"},
		Pronouns:         []string{"i", "me", "my", "mine", "myself"},
		PresenceTerms:    []string{"face", "selfie", "vlog", "reaction", "grwm", "routine", "my"},
		Tokenized:        true,
	},
	"ja": {
		NamePatterns:     []string{"の部屋", "日記", "ちゃんねる", "vlog"},
		PersonalKeywords: []string{"私", "僕", "自分", "日常", "ルーティン", "vlog"},
		Pronouns:         []string{"私", "僕", "俺", "自分"},
		PresenceTerms:    []string{"顔", "自撮り", "ルーティン", "vlog"},
		Tokenized:        false,
	},
}

// Scoring knobs. Empirically chosen; acceptance flips around these, so they
// are variables rather than hard constants.
var (
	// Scores below this are acceptable (low personal branding).
	BrandingAcceptBelow = 3
	// Pronoun occurrences in the description for the +3 tier.
	PronounHeavyCount = 3
	// Sampled titles with presence terms for the +3 / +1 tiers.
	PresenceHeavyCount    = 8
	PresenceModerateCount = 5
)

const (
	brandingScoreCap   = 10
	sampledTitleCount  = 10
	reportedKeywordCap = 3
)

// ClassifyBranding scores how strongly a channel's presentation centers on an
// identifiable person. Rules are additive and independent of one another, so
// the total is order-independent and deterministic for a given input.
func ClassifyBranding(c ChannelCandidate, items []ItemSummary, language string) BrandingResult {
	loc, ok := brandingLocales[strings.ToLower(language)]
	if !ok {
		loc = brandingLocales["en"]
	}

	title := strings.ToLower(c.Title)
	desc := strings.ToLower(c.Description)
	score := 0
	var reasons []string

	// Rule 1: channel name pattern.
	for _, p := range loc.NamePatterns {
		if strings.Contains(title, p) {
			score += 3
			reasons = append(reasons, fmt.Sprintf("channel name matches personal pattern %q", p))
			break
		}
	}

	// Rule 2: personal keywords in title + description, +2 per distinct match.
	meta := title + " " + desc
	var matched []string
	for _, kw := range loc.PersonalKeywords {
		if containsTerm(meta, kw, loc.Tokenized) {
			matched = append(matched, kw)
		}
	}
	if len(matched) > 0 {
		score += 2 * len(matched)
		reported := matched
		if len(reported) > reportedKeywordCap {
			reported = reported[:reportedKeywordCap]
		}
		reasons = append(reasons, fmt.Sprintf("personal keywords in channel metadata: %s", strings.Join(reported, ", ")))
	}

	// Rule 3: first-person pronoun density in the description.
	pronouns := countTerms(desc, loc.Pronouns, loc.Tokenized)
	switch {
	case pronouns >= PronounHeavyCount:
		score += 3
		reasons = append(reasons, fmt.Sprintf("first-person pronouns in description: %d", pronouns))
	case pronouns >= 1:
		score++
		reasons = append(reasons, fmt.Sprintf("first-person pronouns in description: %d", pronouns))
	}

	sample := items
	if len(sample) > sampledTitleCount {
		sample = sample[:sampledTitleCount]
	}

	// Rule 4: personal keywords across sampled item titles, +1 per distinct.
	var sb strings.Builder
	for _, it := range sample {
		sb.WriteString(strings.ToLower(it.Title))
		sb.WriteByte(' ')
	}
	titleText := sb.String()
	titleMatches := 0
	for _, kw := range loc.PersonalKeywords {
		if containsTerm(titleText, kw, loc.Tokenized) {
			titleMatches++
		}
	}
	if titleMatches > 0 {
		score += titleMatches
		reasons = append(reasons, fmt.Sprintf("personal keywords in %d recent upload titles", titleMatches))
	}

	// Rule 5: how many sampled titles suggest an on-camera person.
	present := 0
	for _, it := range sample {
		t := strings.ToLower(it.Title)
		for _, term := range loc.PresenceTerms {
			if containsTerm(t, term, loc.Tokenized) {
				present++
				break
			}
		}
	}
	switch {
	case present >= PresenceHeavyCount:
		score += 3
		reasons = append(reasons, fmt.Sprintf("human-presence terms in %d of %d sampled titles", present, len(sample)))
	case present >= PresenceModerateCount:
		score++
		reasons = append(reasons, fmt.Sprintf("human-presence terms in %d of %d sampled titles", present, len(sample)))
	}

	if score > brandingScoreCap {
		score = brandingScoreCap
	}
	return BrandingResult{
		Score:      score,
		Reasons:    reasons,
		Acceptable: score < BrandingAcceptBelow,
	}
}

// containsTerm matches term in text. Single-word terms in tokenized languages
// match whole tokens only, so "my" does not fire on "myself" or "academy".
func containsTerm(text, term string, tokenized bool) bool {
	if !tokenized || strings.ContainsRune(term, ' ') {
		return strings.Contains(text, term)
	}
	for _, tok := range tokenize(text) {
		if tok == term {
			return true
		}
	}
	return false
}

// countTerms counts total occurrences of all terms in text.
func countTerms(text string, terms []string, tokenized bool) int {
	if !tokenized {
		n := 0
		for _, term := range terms {
			n += strings.Count(text, term)
		}
		return n
	}
	toks := tokenize(text)
	n := 0
	for _, term := range terms {
		for _, tok := range toks {
			if tok == term {
				n++
			}
		}
	}
	return n
}

func tokenize(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}
