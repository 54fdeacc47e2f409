package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
	"quiz-royale/internal/game"
	"quiz-royale/internal/reward"
)

type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	SQLite struct {
		Path string `yaml:"path"`
	} `yaml:"sqlite"`
	Quiz struct {
		ID           string `yaml:"id"`
		TTL          string `yaml:"ttl"`
		BaseSeconds  int    `yaml:"base_seconds"`
		BonusSeconds *int   `yaml:"bonus_seconds"` // nil when absent; an explicit 0 disables the bonus
		Tick         string `yaml:"tick"`
		AdvanceDelay string `yaml:"advance_delay"`
	} `yaml:"quiz"`
	Reward struct {
		Ledger         string `yaml:"ledger"`
		ChainID        string `yaml:"chain_id"`
		AmountWei      string `yaml:"amount_wei"`
		InitialPoolWei string `yaml:"initial_pool_wei"`
		ClaimTimeout   string `yaml:"claim_timeout"`
		ViewTTL        string `yaml:"view_ttl"`
		ExplorerURL    string `yaml:"explorer_url"`
	} `yaml:"reward"`
}

const (
	LedgerNone     = "none"
	LedgerMemory   = "memory"
	LedgerRedis    = "redis"
	LedgerPostgres = "postgres"
	LedgerSQLite   = "sqlite"

	// SepoliaChainID is the network the reward pool lives on by default.
	SepoliaChainID = "0xaa36a7"
	// DefaultAmountWei is 0.05 ether.
	DefaultAmountWei = "50000000000000000"

	DefaultClaimTimeout = reward.DefaultClaimTimeout
)

// Load reads YAML config from path and fills defaults.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Default returns the configuration used when no file is present.
func Default() Config {
	cfg := Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
	defaults := game.DefaultRules()
	if c.Quiz.BaseSeconds <= 0 {
		c.Quiz.BaseSeconds = defaults.BaseSeconds
	}
	if c.Quiz.BonusSeconds == nil || *c.Quiz.BonusSeconds < 0 {
		bonus := defaults.BonusSeconds
		c.Quiz.BonusSeconds = &bonus
	}
	if c.Reward.Ledger == "" {
		c.Reward.Ledger = LedgerMemory
	}
	if c.Reward.ChainID == "" {
		c.Reward.ChainID = SepoliaChainID
	}
	if c.Reward.AmountWei == "" {
		c.Reward.AmountWei = DefaultAmountWei
	}
}

// Validate checks the fields that cannot fall back to a default.
func (c Config) Validate() error {
	switch c.Reward.Ledger {
	case LedgerNone, LedgerMemory:
	case LedgerRedis:
		if c.Redis.Addr == "" {
			return fmt.Errorf("reward ledger %q requires redis.addr", c.Reward.Ledger)
		}
	case LedgerPostgres:
		if c.Postgres.URL == "" {
			return fmt.Errorf("reward ledger %q requires postgres.url", c.Reward.Ledger)
		}
	case LedgerSQLite:
		if c.SQLite.Path == "" {
			return fmt.Errorf("reward ledger %q requires sqlite.path", c.Reward.Ledger)
		}
	default:
		return fmt.Errorf("unknown reward ledger %q", c.Reward.Ledger)
	}
	if _, err := reward.ParseWei(c.Reward.AmountWei); err != nil {
		return fmt.Errorf("reward.amount_wei: %w", err)
	}
	if c.Reward.InitialPoolWei != "" {
		if _, err := reward.ParseWei(c.Reward.InitialPoolWei); err != nil {
			return fmt.Errorf("reward.initial_pool_wei: %w", err)
		}
	}
	return nil
}

// Rules returns the game rules from the quiz section.
func (c Config) Rules() game.Rules {
	defaults := game.DefaultRules()
	rules := game.Rules{
		BaseSeconds:  c.Quiz.BaseSeconds,
		BonusSeconds: defaults.BonusSeconds,
		AdvanceDelay: Duration(c.Quiz.AdvanceDelay, defaults.AdvanceDelay),
	}
	if rules.BaseSeconds <= 0 {
		rules.BaseSeconds = defaults.BaseSeconds
	}
	if c.Quiz.BonusSeconds != nil && *c.Quiz.BonusSeconds >= 0 {
		rules.BonusSeconds = *c.Quiz.BonusSeconds
	}
	return rules
}

// ClaimTimeout bounds one reward submission. Zero, negative or invalid
// values fall back to DefaultClaimTimeout; a claim is never unbounded.
func (c Config) ClaimTimeout() time.Duration {
	d := TTLDuration(c.Reward.ClaimTimeout, DefaultClaimTimeout)
	if d <= 0 {
		return DefaultClaimTimeout
	}
	return d
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}

// Duration is TTLDuration for settings where zero is meaningful ("0s").
func Duration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil && d >= 0 {
		return d
	}
	return fallback
}
