package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"
)

// Metrics tracks operational counters across the engine.
var metrics struct {
	SearchNavigations atomic.Int64
	DetailNavigations atomic.Int64
	NavRetries        atomic.Int64
	SessionRestarts   atomic.Int64
	ParseFailures     atomic.Int64
	LanguageFiltered  atomic.Int64
}

// GetMetrics returns a snapshot of all counters including cache stats.
func GetMetrics() map[string]int64 {
	hits, misses := CacheStats()
	return map[string]int64{
		"search_navigations": metrics.SearchNavigations.Load(),
		"detail_navigations": metrics.DetailNavigations.Load(),
		"nav_retries":        metrics.NavRetries.Load(),
		"session_restarts":   metrics.SessionRestarts.Load(),
		"parse_failures":     metrics.ParseFailures.Load(),
		"language_filtered":  metrics.LanguageFiltered.Load(),
		"cache_hits":         hits,
		"cache_misses":       misses,
	}
}

// FormatMetrics returns counters as simple text, one per line.
func FormatMetrics() string {
	m := GetMetrics()
	keys := []string{
		"search_navigations", "detail_navigations",
		"nav_retries", "session_restarts",
		"parse_failures", "language_filtered",
		"cache_hits", "cache_misses",
	}
	var sb strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&sb, "%s %d\n", k, m[k])
	}
	return sb.String()
}

// Incrementors for session and sources sub-packages.
func IncrSearchNavigations() { metrics.SearchNavigations.Add(1) }
func IncrDetailNavigations() { metrics.DetailNavigations.Add(1) }
func IncrNavRetries()        { metrics.NavRetries.Add(1) }
func IncrSessionRestarts()   { metrics.SessionRestarts.Add(1) }
func IncrParseFailures()     { metrics.ParseFailures.Add(1) }
func IncrLanguageFiltered()  { metrics.LanguageFiltered.Add(1) }

// TrackOperation logs a warning if an operation takes longer than threshold.
func TrackOperation(ctx context.Context, name string, fn func(context.Context) error) error {
	start := time.Now()
	err := fn(ctx)
	if elapsed := time.Since(start); elapsed > 90*time.Second {
		slog.Warn("slow operation", slog.String("op", name), slog.Duration("elapsed", elapsed))
	}
	return err
}
