package engine

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfigValid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("defaults must validate: %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		wantOK bool
	}{
		{"defaults", func(*Config) {}, true},
		{"negative min subscribers", func(c *Config) { c.Criteria.MinSubscribers = -1 }, false},
		{"inverted subscriber bounds", func(c *Config) { c.Criteria.MaxSubscribers = 10; c.Criteria.MinSubscribers = 100 }, false},
		{"inverted spread bounds", func(c *Config) { c.Criteria.SpreadRateMin = 6; c.Criteria.SpreadRateMax = 2 }, false},
		{"missing language", func(c *Config) { c.Criteria.Language = "" }, false},
		{"zero retries", func(c *Config) { c.MaxRetries = 0 }, false},
		{"zero navigation timeout", func(c *Config) { c.NavigationTimeout = 0 }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := DefaultConfig()
			tt.mutate(&c)
			err := c.Validate()
			if tt.wantOK && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if !tt.wantOK && err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scout.yaml")
	yaml := `
criteria:
  min_subscribers: 500
  max_subscribers: 20000
  language: ja
region: JP
request_delay: 5s
`
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	c, err := LoadConfigFile(DefaultConfig(), path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Criteria.MinSubscribers != 500 || c.Criteria.MaxSubscribers != 20000 {
		t.Errorf("subscriber bounds not overlaid: %+v", c.Criteria)
	}
	if c.Criteria.Language != "ja" || c.Region != "JP" {
		t.Errorf("locale not overlaid: lang=%q region=%q", c.Criteria.Language, c.Region)
	}
	if c.RequestDelay != 5*time.Second {
		t.Errorf("request_delay = %v, want 5s", c.RequestDelay)
	}
	// Untouched keys keep their defaults.
	if c.Criteria.MaxItemCount != 30 {
		t.Errorf("max_item_count = %d, want default 30", c.Criteria.MaxItemCount)
	}
}

func TestLoadConfigFileMissing(t *testing.T) {
	if _, err := LoadConfigFile(DefaultConfig(), "/nonexistent/scout.yaml"); err == nil {
		t.Error("expected error for missing file")
	}
}
