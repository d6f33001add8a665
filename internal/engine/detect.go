package engine

import (
	"strings"
	"unicode/utf8"

	"github.com/RadhiFadlillah/whatlanggo"
)

const (
	// Below this many runes there is too little signal to reject on.
	minDetectRunes = 10
	// ASCII share above which text is treated as English in the fallback.
	asciiRatioThreshold = 0.8
)

// langCodes maps configuration language tags to detector languages.
// Adding a locale is a data change, not a code change.
var langCodes = map[string]whatlanggo.Lang{
	"en": whatlanggo.Eng,
	"ja": whatlanggo.Jpn,
	"es": whatlanggo.Spa,
	"pt": whatlanggo.Por,
	"de": whatlanggo.Deu,
	"fr": whatlanggo.Fra,
}

// LanguageFit reports whether text plausibly matches the target language tag.
// Short strings always pass. When the statistical detector is not confident,
// an ASCII-ratio heuristic decides: mostly-ASCII text counts as English.
func LanguageFit(text, target string) bool {
	t := strings.TrimSpace(text)
	if utf8.RuneCountInString(t) < minDetectRunes {
		return true
	}
	target = strings.ToLower(target)

	info := whatlanggo.Detect(t)
	if info.IsReliable() {
		want, known := langCodes[target]
		if !known {
			// No detector mapping for this tag; nothing to reject on.
			return true
		}
		return info.Lang == want
	}

	if asciiRatio(t) >= asciiRatioThreshold {
		return target == "en"
	}
	return target != "en"
}

func asciiRatio(s string) float64 {
	total, ascii := 0, 0
	for _, r := range s {
		total++
		if r < 128 {
			ascii++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(ascii) / float64(total)
}
