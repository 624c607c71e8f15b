package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/MikeSquared-Agency/Compass/internal/scoring"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Hermes   HermesConfig   `yaml:"hermes"`
	Scoring  ScoringConfig  `yaml:"scoring"`
	Cache    CacheConfig    `yaml:"cache"`
	Stats    StatsConfig    `yaml:"stats"`
	Logging  LoggingConfig  `yaml:"logging"`
}

type ServerConfig struct {
	Port               int    `yaml:"port"`
	MetricsPort        int    `yaml:"metrics_port"`
	AdminToken         string `yaml:"admin_token"`
	RateLimitPerMinute int    `yaml:"rate_limit_per_minute"`
}

type DatabaseConfig struct {
	URL string `yaml:"url"`
}

type HermesConfig struct {
	URL string `yaml:"url"`
}

type ScoringConfig struct {
	DefaultWeights     map[string]float64 `yaml:"default_weights"`
	VariationFractions []float64          `yaml:"variation_fractions"`
	Parallelism        int                `yaml:"parallelism"`
	Thresholds         scoring.Thresholds `yaml:"thresholds"`
}

type CacheConfig struct {
	CountryTTLMs int `yaml:"country_ttl_ms"`
}

type StatsConfig struct {
	IntervalMs int `yaml:"interval_ms"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func (c *Config) CountryTTL() time.Duration {
	return time.Duration(c.Cache.CountryTTLMs) * time.Millisecond
}

func (c *Config) StatsInterval() time.Duration {
	return time.Duration(c.Stats.IntervalMs) * time.Millisecond
}

// SlogLevel maps logging.level onto a slog level. Unknown names fall back
// to info.
func (c *Config) SlogLevel() slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.Logging.Level)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}

// DefaultWeights returns the configured fallback weight vector as a fresh copy.
func (c *Config) DefaultWeights() scoring.WeightVector {
	return scoring.WeightVector(c.Scoring.DefaultWeights).Clone()
}

func Load(path string) (*Config, error) {
	defaultWeights := make(map[string]float64)
	for _, id := range scoring.DefaultCriteria().IDs() {
		defaultWeights[id] = 1.0
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:               8700,
			MetricsPort:        8701,
			RateLimitPerMinute: 120,
		},
		Hermes: HermesConfig{
			URL: "nats://localhost:4222",
		},
		Scoring: ScoringConfig{
			DefaultWeights:     defaultWeights,
			VariationFractions: scoring.DefaultFractions(),
			Thresholds:         scoring.DefaultThresholds(),
		},
		Cache: CacheConfig{
			CountryTTLMs: 30000,
		},
		Stats: StatsConfig{
			IntervalMs: 60000,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		// yaml.v3 merges into an existing map, so a configured vector must
		// replace the defaults rather than extend them.
		cfg.Scoring.DefaultWeights = nil
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
		if cfg.Scoring.DefaultWeights == nil {
			cfg.Scoring.DefaultWeights = defaultWeights
		}
	}

	applyEnv(cfg)
	return cfg, nil
}

// Validate checks the scoring section against the default criteria table so
// a bad deployment fails at startup rather than on the first request.
func (c *Config) Validate(spec *scoring.CriteriaSpec) error {
	if err := c.DefaultWeights().Validate(spec); err != nil {
		return fmt.Errorf("scoring.default_weights: %w", err)
	}
	if _, err := scoring.NewEngine(spec, c.Scoring.VariationFractions, c.Scoring.Thresholds, c.Scoring.Parallelism); err != nil {
		return fmt.Errorf("scoring: %w", err)
	}
	if c.Scoring.Parallelism < 0 {
		return fmt.Errorf("scoring.parallelism must not be negative, got %d", c.Scoring.Parallelism)
	}
	if c.Server.RateLimitPerMinute <= 0 {
		return fmt.Errorf("server.rate_limit_per_minute must be positive, got %d", c.Server.RateLimitPerMinute)
	}
	return nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("COMPASS_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = n
		}
	}
	if v := os.Getenv("COMPASS_METRICS_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.MetricsPort = n
		}
	}
	if v := os.Getenv("COMPASS_ADMIN_TOKEN"); v != "" {
		cfg.Server.AdminToken = v
	}
	if v := os.Getenv("COMPASS_RATE_LIMIT_PER_MINUTE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.RateLimitPerMinute = n
		}
	}
	if v := os.Getenv("COMPASS_DATABASE_URL"); v != "" {
		cfg.Database.URL = v
	}
	if v := os.Getenv("COMPASS_HERMES_URL"); v != "" {
		cfg.Hermes.URL = v
	}
	if v := os.Getenv("COMPASS_VARIATION_FRACTIONS"); v != "" {
		if fractions, err := ParseFloatList(v); err == nil {
			cfg.Scoring.VariationFractions = fractions
		}
	}
	if v := os.Getenv("COMPASS_SCORING_PARALLELISM"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Scoring.Parallelism = n
		}
	}
	if v := os.Getenv("COMPASS_COUNTRY_TTL_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Cache.CountryTTLMs = n
		}
	}
	if v := os.Getenv("COMPASS_STATS_INTERVAL_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Stats.IntervalMs = n
		}
	}
	if v := os.Getenv("COMPASS_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

// ParseFloatList parses a comma-separated list such as "-0.2,-0.1,0,0.1,0.2".
func ParseFloatList(s string) ([]float64, error) {
	parts := strings.Split(s, ",")
	out := make([]float64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		f, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return nil, fmt.Errorf("parse %q: %w", p, err)
		}
		out = append(out, f)
	}
	return out, nil
}
