package config

import (
	"encoding/json"
	"log/slog"
	"os"

	"github.com/nsxbet/query-inspector/pkg/types"
	"gopkg.in/yaml.v3"
)

// Thresholds are the numeric tunables shared by the detectors. All values
// have working defaults; a zero value means "use the default".
type Thresholds struct {
	SlowQuerySeconds   float64 `yaml:"slow_query_seconds" json:"slow_query_seconds"`
	OffsetThreshold    int     `yaml:"offset_threshold"   json:"offset_threshold"`
	LockSeconds        float64 `yaml:"lock_seconds"       json:"lock_seconds"`
	TransactionSeconds float64 `yaml:"transaction_seconds" json:"transaction_seconds"`
	SmallTableRows     int64   `yaml:"small_table_rows"   json:"small_table_rows"`
}

// Config represents the configuration for query inspection
type Config struct {
	ID         string                `yaml:"id" json:"id"`
	Engine     types.Engine          `yaml:"engine" json:"engine"`
	DSN        string                `yaml:"dsn,omitempty" json:"dsn,omitempty"`
	RedisAddr  string                `yaml:"redis_addr,omitempty" json:"redis_addr,omitempty"`
	Thresholds Thresholds            `yaml:"thresholds" json:"thresholds"`
	Detectors  []*types.DetectorRule `yaml:"detectors" json:"detectors"`
}

// LoadFromFile loads configuration from a file
func LoadFromFile(filename string) (*Config, error) {
	slog.Debug("Loading config from file", "filename", filename)
	data, err := os.ReadFile(filename)
	if err != nil {
		slog.Debug("Failed to read file", "error", err)
		return nil, err
	}

	slog.Debug("File content preview", "content", string(data[:min(200, len(data))]))

	var config Config

	// Try YAML first, then JSON
	slog.Debug("Attempting YAML unmarshal")
	if err := yaml.Unmarshal(data, &config); err != nil {
		slog.Debug("YAML unmarshal failed", "error", err)
		slog.Debug("Attempting JSON unmarshal")
		if err := json.Unmarshal(data, &config); err != nil {
			slog.Debug("JSON unmarshal failed", "error", err)
			return nil, err
		}
		slog.Debug("JSON unmarshal succeeded")
	} else {
		slog.Debug("YAML unmarshal succeeded")
	}

	config.applyDefaults()
	slog.Debug("Loaded config", "detectors_count", len(config.Detectors))
	return &config, nil
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// Default returns a configuration with the full detector catalog and default
// thresholds.
func Default(id string) *Config {
	c := &Config{ID: id}
	c.applyDefaults()
	return c
}

func (c *Config) applyDefaults() {
	defaults := DefaultThresholds()
	if c.Thresholds.SlowQuerySeconds == 0 {
		c.Thresholds.SlowQuerySeconds = defaults.SlowQuerySeconds
	}
	if c.Thresholds.OffsetThreshold == 0 {
		c.Thresholds.OffsetThreshold = defaults.OffsetThreshold
	}
	if c.Thresholds.LockSeconds == 0 {
		c.Thresholds.LockSeconds = defaults.LockSeconds
	}
	if c.Thresholds.TransactionSeconds == 0 {
		c.Thresholds.TransactionSeconds = defaults.TransactionSeconds
	}
	if c.Thresholds.SmallTableRows == 0 {
		c.Thresholds.SmallTableRows = defaults.SmallTableRows
	}
}

// DetectorRules returns the detector catalog in evaluation order with any
// per-type overrides from the config applied. Overrides for unknown types are
// ignored.
func (c *Config) DetectorRules() []*types.DetectorRule {
	overrides := make(map[types.FindingType]*types.DetectorRule, len(c.Detectors))
	for _, rule := range c.Detectors {
		overrides[rule.Type] = rule
	}

	catalog := DefaultDetectors()
	rules := make([]*types.DetectorRule, 0, len(catalog))
	for _, rule := range catalog {
		if override, ok := overrides[rule.Type]; ok {
			merged := *rule
			if override.Level != types.DetectorLevel_LEVEL_UNSPECIFIED {
				merged.Level = override.Level
			}
			if override.Comment != "" {
				merged.Comment = override.Comment
			}
			rules = append(rules, &merged)
			continue
		}
		rules = append(rules, rule)
	}
	return rules
}
