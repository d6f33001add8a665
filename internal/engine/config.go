package engine

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Criteria is the acceptance configuration for one run. It is supplied once
// and never mutated by the pipeline.
type Criteria struct {
	MinSubscribers    int     `yaml:"min_subscribers"`
	MaxSubscribers    int     `yaml:"max_subscribers"`
	MaxItemCount      int     `yaml:"max_item_count"`
	MaxChannelAgeDays int     `yaml:"max_channel_age_days"`
	SpreadRateMin     float64 `yaml:"spread_rate_min"`
	SpreadRateMax     float64 `yaml:"spread_rate_max"`
	Language          string  `yaml:"language"`
}

// Config holds all engine configuration, injected from main.
type Config struct {
	Criteria Criteria `yaml:"criteria"`

	Region            string        `yaml:"region"`
	SearchLimit       int           `yaml:"search_limit"` // candidates evaluated per run
	RequestDelay      time.Duration `yaml:"request_delay"`
	Headless          bool          `yaml:"headless"`
	UserAgentRotation bool          `yaml:"user_agent_rotation"`
	MaxRetries        int           `yaml:"max_retries"`
	NavigationTimeout time.Duration `yaml:"navigation_timeout"`

	CacheTTL             time.Duration `yaml:"cache_ttl"`
	CacheMaxEntries      int           `yaml:"cache_max_entries"`
	CacheCleanupInterval time.Duration `yaml:"cache_cleanup_interval"`
}

var cfg Config

// Cfg exposes the engine configuration for sub-packages (sources, scoutserver).
// Always points to the current cfg value.
var Cfg = &cfg

// Init initializes the engine with the given configuration.
func Init(c Config) {
	cfg = c
	Cfg = &cfg
}

// DefaultConfig returns the US/English defaults.
func DefaultConfig() Config {
	return Config{
		Criteria: Criteria{
			MinSubscribers:    100,
			MaxSubscribers:    50000,
			MaxItemCount:      30,
			MaxChannelAgeDays: 60,
			SpreadRateMin:     2,
			SpreadRateMax:     6,
			Language:          "en",
		},
		Region:               "US",
		SearchLimit:          1000,
		RequestDelay:         2 * time.Second,
		Headless:             true,
		UserAgentRotation:    true,
		MaxRetries:           3,
		NavigationTimeout:    30 * time.Second,
		CacheTTL:             15 * time.Minute,
		CacheMaxEntries:      1000,
		CacheCleanupInterval: 5 * time.Minute,
	}
}

// LoadConfigFile overlays settings from a YAML file onto c.
func LoadConfigFile(c Config, path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return c, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &c); err != nil {
		return c, fmt.Errorf("parse config %s: %w", path, err)
	}
	return c, nil
}

// Validate rejects configurations the pipeline cannot run with.
func (c Config) Validate() error {
	cr := c.Criteria
	if cr.MinSubscribers < 0 || cr.MaxSubscribers < cr.MinSubscribers {
		return fmt.Errorf("subscriber bounds [%d, %d] are invalid", cr.MinSubscribers, cr.MaxSubscribers)
	}
	if cr.SpreadRateMax < cr.SpreadRateMin {
		return fmt.Errorf("spread rate bounds [%g, %g] are invalid", cr.SpreadRateMin, cr.SpreadRateMax)
	}
	if cr.Language == "" {
		return fmt.Errorf("criteria language is required")
	}
	if c.MaxRetries < 1 {
		return fmt.Errorf("max_retries must be at least 1")
	}
	if c.NavigationTimeout <= 0 {
		return fmt.Errorf("navigation_timeout must be positive")
	}
	return nil
}
