package engine

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestMetricsCounters(t *testing.T) {
	before := GetMetrics()["search_navigations"]
	IncrSearchNavigations()
	IncrSearchNavigations()
	if got := GetMetrics()["search_navigations"]; got != before+2 {
		t.Errorf("search_navigations = %d, want %d", got, before+2)
	}
}

func TestFormatMetrics(t *testing.T) {
	out := FormatMetrics()
	for _, key := range []string{"search_navigations", "detail_navigations", "parse_failures", "cache_hits"} {
		if !strings.Contains(out, key) {
			t.Errorf("FormatMetrics missing %q:\n%s", key, out)
		}
	}
}

func TestTrackOperationPassesError(t *testing.T) {
	want := errors.New("boom")
	err := TrackOperation(context.Background(), "test", func(context.Context) error {
		return want
	})
	if !errors.Is(err, want) {
		t.Errorf("got %v, want %v", err, want)
	}
}
