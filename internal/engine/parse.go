package engine

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

var (
	countRe  = regexp.MustCompile(`([\d.]+)\s*([kmb])?`)
	joinedRe = regexp.MustCompile(`Joined\s+([A-Za-z]{3,9}\.?\s+\d{1,2},?\s+\d{4})`)
)

// unit words stripped before number extraction
var countUnits = []string{"subscribers", "subscriber", "views", "view", "videos", "video"}

// ParseAbbreviatedCount converts a human-readable count like "1.2K subscribers"
// or "2.5M views" into an absolute value. Malformed or empty input yields 0;
// absence of a number is a normal zero-valued result, never an error.
func ParseAbbreviatedCount(text string) int64 {
	t := strings.ToLower(strings.TrimSpace(text))
	if t == "" {
		return 0
	}
	for _, u := range countUnits {
		t = strings.ReplaceAll(t, u, "")
	}
	m := countRe.FindStringSubmatch(strings.TrimSpace(t))
	if m == nil {
		return 0
	}
	n, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0
	}
	switch m[2] {
	case "k":
		return int64(n * 1e3)
	case "m":
		return int64(n * 1e6)
	case "b":
		return int64(n * 1e9)
	}
	return int64(n)
}

// ParseJoinedDate extracts a channel creation date from about-page text like
// "Joined Mar 5, 2023". Returns nil when no date is present or it does not
// parse; an unknown join date is expected, not an error.
func ParseJoinedDate(text string) *time.Time {
	m := joinedRe.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	ts, err := dateparse.ParseAny(m[1])
	if err != nil {
		return nil
	}
	return &ts
}

// CollapseSpace trims and squeezes runs of whitespace, which rendered DOM
// text is full of.
func CollapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
