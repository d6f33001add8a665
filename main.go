// channelscout — small fast-growing channel discovery MCP server.
//
// Exposes three MCP tools over stdio: channel_scan, channel_discover,
// branding_check. With -keywords it instead runs one scan directly and
// writes the accepted channels as JSON (optionally CSV).
//
// Configuration comes from SCOUT_* environment variables, optionally
// overlaid with a YAML file via -config.
package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"channelscout/internal/engine"
	"channelscout/internal/engine/sources"
	"channelscout/internal/scoutserver"
)

var version = "dev"

func main() {
	configPath := flag.String("config", "", "YAML config file overlaying env settings")
	keywordsPath := flag.String("keywords", "", "keyword file (one per line); runs a single scan instead of the MCP server")
	outPath := flag.String("out", "", "JSON output path for scan mode (default stdout)")
	csvPath := flag.String("csv", "", "optional CSV output path for scan mode")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: envLevel("SCOUT_LOG_LEVEL", slog.LevelInfo),
	})))

	if err := initEngine(*configPath); err != nil {
		slog.Error("configuration invalid", slog.Any("error", err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var err error
	if *keywordsPath != "" {
		err = runScan(ctx, *keywordsPath, *outPath, *csvPath)
	} else {
		err = runServer(ctx)
	}
	if err != nil {
		slog.Error("run failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func initEngine(configPath string) error {
	c := engine.DefaultConfig()

	c.Criteria.MinSubscribers = envInt("SCOUT_MIN_SUBSCRIBERS", c.Criteria.MinSubscribers)
	c.Criteria.MaxSubscribers = envInt("SCOUT_MAX_SUBSCRIBERS", c.Criteria.MaxSubscribers)
	c.Criteria.MaxItemCount = envInt("SCOUT_MAX_VIDEOS", c.Criteria.MaxItemCount)
	c.Criteria.MaxChannelAgeDays = envInt("SCOUT_MAX_CHANNEL_AGE_DAYS", c.Criteria.MaxChannelAgeDays)
	c.Criteria.SpreadRateMin = envFloat("SCOUT_SPREAD_RATE_MIN", c.Criteria.SpreadRateMin)
	c.Criteria.SpreadRateMax = envFloat("SCOUT_SPREAD_RATE_MAX", c.Criteria.SpreadRateMax)
	c.Criteria.Language = envStr("SCOUT_LANGUAGE", c.Criteria.Language)

	c.Region = envStr("SCOUT_REGION", c.Region)
	c.SearchLimit = envInt("SCOUT_SEARCH_LIMIT", c.SearchLimit)
	c.RequestDelay = envDuration("SCOUT_REQUEST_DELAY", c.RequestDelay)
	c.Headless = envBool("SCOUT_HEADLESS", c.Headless)
	c.UserAgentRotation = envBool("SCOUT_UA_ROTATION", c.UserAgentRotation)
	c.MaxRetries = envInt("SCOUT_MAX_RETRIES", c.MaxRetries)
	c.NavigationTimeout = envDuration("SCOUT_NAV_TIMEOUT", c.NavigationTimeout)
	c.CacheTTL = envDuration("SCOUT_CACHE_TTL", c.CacheTTL)
	c.CacheMaxEntries = envInt("SCOUT_CACHE_MAX_ENTRIES", c.CacheMaxEntries)
	c.CacheCleanupInterval = envDuration("SCOUT_CACHE_CLEANUP_INTERVAL", c.CacheCleanupInterval)

	if configPath != "" {
		var err error
		c, err = engine.LoadConfigFile(c, configPath)
		if err != nil {
			return err
		}
	}
	if err := c.Validate(); err != nil {
		return err
	}

	engine.Init(c)
	engine.InitCache(c.CacheTTL, c.CacheMaxEntries, c.CacheCleanupInterval)
	return nil
}

func runServer(ctx context.Context) error {
	session, err := engine.AcquireSession(ctx, sessionOptions())
	if err != nil {
		return err
	}
	defer session.Release()

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "channelscout",
		Version: version,
	}, nil)

	scoutserver.RegisterTools(server, &scoutserver.Deps{
		Session:   session,
		Discovery: sources.NewDiscovery(session, engine.Cfg),
		Channels:  sources.NewChannels(session, engine.Cfg),
	})
	slog.Info("starting channelscout", slog.String("version", version), slog.Int("tools", 3))

	return server.Run(ctx, &mcp.StdioTransport{})
}

func runScan(ctx context.Context, keywordsPath, outPath, csvPath string) error {
	keywords, err := readKeywords(keywordsPath)
	if err != nil {
		return err
	}
	if len(keywords) == 0 {
		return fmt.Errorf("no keywords in %s", keywordsPath)
	}
	slog.Info("scan starting", slog.Int("keywords", len(keywords)))

	session, err := engine.AcquireSession(ctx, sessionOptions())
	if err != nil {
		return err
	}
	defer session.Release()

	pipe := engine.NewPipeline(
		sources.NewDiscovery(session, engine.Cfg),
		sources.NewChannels(session, engine.Cfg),
		engine.Cfg,
	)
	channels, stats, runErr := pipe.Run(ctx, keywords)
	if runErr != nil {
		// Whatever was accepted before the interruption still gets written.
		slog.Warn("scan interrupted", slog.Any("error", runErr), slog.Int("accepted", len(channels)))
	}

	out := engine.ScanOutput{Channels: channels, Stats: stats}
	if err := writeJSON(outPath, out); err != nil {
		return err
	}
	if csvPath != "" {
		if err := writeCSV(csvPath, channels); err != nil {
			return err
		}
	}

	slog.Info("scan complete",
		slog.Int("keywords", stats.Keywords),
		slog.Int("discovered", stats.Discovered),
		slog.Int("evaluated", stats.Evaluated),
		slog.Int("accepted", stats.Accepted))
	slog.Debug(engine.FormatMetrics())
	return runErr
}

func sessionOptions() engine.SessionOptions {
	return engine.SessionOptions{
		Headless:          engine.Cfg.Headless,
		UserAgentRotation: engine.Cfg.UserAgentRotation,
		NavigationTimeout: engine.Cfg.NavigationTimeout,
		MaxRetries:        engine.Cfg.MaxRetries,
	}
}

func readKeywords(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read keywords: %w", err)
	}
	var out []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	return out, nil
}

func writeJSON(path string, out engine.ScanOutput) error {
	w := os.Stdout
	if path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer f.Close()
		w = f
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func writeCSV(path string, channels []engine.ChannelCandidate) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	header := []string{"keyword", "channel_id", "title", "url", "subscribers", "videos", "created_at", "branding_score", "spread_examples"}
	if err := w.Write(header); err != nil {
		return err
	}
	for _, c := range channels {
		created := ""
		videos := ""
		if c.Detail != nil {
			videos = strconv.Itoa(c.Detail.ItemCount)
			if c.Detail.CreatedAt != nil {
				created = c.Detail.CreatedAt.Format("2006-01-02")
			}
		}
		score := ""
		if c.Branding != nil {
			score = strconv.Itoa(c.Branding.Score)
		}
		var spreads []string
		for _, s := range c.SpreadQualifying {
			spreads = append(spreads, fmt.Sprintf("%s (%.1fx)", s.URL, s.SpreadRate))
		}
		row := []string{
			c.SourceKeyword, c.ID, c.Title, c.URL,
			strconv.Itoa(c.SubscriberCount), videos, created, score,
			strings.Join(spreads, "; "),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

// --- env helpers ---

func envStr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func envBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func envLevel(key string, def slog.Level) slog.Level {
	switch strings.ToLower(os.Getenv(key)) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	case "info":
		return slog.LevelInfo
	}
	return def
}
