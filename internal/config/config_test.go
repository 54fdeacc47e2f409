package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFillsDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "server:\n  port: \"9090\"\n"))
	require.NoError(t, err)

	require.Equal(t, "9090", cfg.Server.Port)
	require.Equal(t, 60, cfg.Quiz.BaseSeconds)
	require.NotNil(t, cfg.Quiz.BonusSeconds)
	require.Equal(t, 5, *cfg.Quiz.BonusSeconds)
	require.Equal(t, 5, cfg.Rules().BonusSeconds)
	require.Equal(t, 5, Default().Rules().BonusSeconds)
	require.Equal(t, DefaultClaimTimeout, cfg.ClaimTimeout())
	require.Equal(t, LedgerMemory, cfg.Reward.Ledger)
	require.Equal(t, SepoliaChainID, cfg.Reward.ChainID)
	require.Equal(t, DefaultAmountWei, cfg.Reward.AmountWei)
	require.Equal(t, "info", cfg.Log.Level)
}

func TestLoadReadsRewardSection(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
quiz:
  base_seconds: 30
  bonus_seconds: 2
  advance_delay: 0s
reward:
  ledger: sqlite
  amount_wei: "1000"
  claim_timeout: 10s
sqlite:
  path: /tmp/ledger.db
`))
	require.NoError(t, err)
	require.Equal(t, 30, cfg.Quiz.BaseSeconds)
	rules := cfg.Rules()
	require.Equal(t, 30, rules.BaseSeconds)
	require.Equal(t, 2, rules.BonusSeconds)
	require.Equal(t, time.Duration(0), rules.AdvanceDelay)
	require.Equal(t, 10*time.Second, cfg.ClaimTimeout())
	require.Equal(t, "/tmp/ledger.db", cfg.SQLite.Path)
}

func TestExplicitZeroBonusIsKept(t *testing.T) {
	cfg, err := Load(writeConfig(t, "quiz:\n  bonus_seconds: 0\n"))
	require.NoError(t, err)
	require.Equal(t, 0, cfg.Rules().BonusSeconds)

	cfg, err = Load(writeConfig(t, "quiz:\n  bonus_seconds: -3\n"))
	require.NoError(t, err)
	require.Equal(t, 5, cfg.Rules().BonusSeconds)
}

func TestClaimTimeoutIsNeverUnbounded(t *testing.T) {
	for _, raw := range []string{"0s", "-5s", "soon"} {
		cfg, err := Load(writeConfig(t, "reward:\n  claim_timeout: "+raw+"\n"))
		require.NoError(t, err)
		require.Equal(t, DefaultClaimTimeout, cfg.ClaimTimeout(), raw)
	}
}

func TestLoadRejectsInvalidReward(t *testing.T) {
	_, err := Load(writeConfig(t, "reward:\n  ledger: redis\n"))
	require.ErrorContains(t, err, "redis.addr")

	_, err = Load(writeConfig(t, "reward:\n  ledger: mainframe\n"))
	require.ErrorContains(t, err, "unknown reward ledger")

	_, err = Load(writeConfig(t, "reward:\n  amount_wei: \"-5\"\n"))
	require.ErrorContains(t, err, "amount_wei")
}

func TestDurationFallbacks(t *testing.T) {
	require.Equal(t, time.Minute, TTLDuration("", time.Minute))
	require.Equal(t, time.Minute, TTLDuration("soon", time.Minute))
	require.Equal(t, 5*time.Second, TTLDuration("5s", time.Minute))
	require.Equal(t, time.Second, Duration("-1s", time.Second))
}

func TestNewLogger(t *testing.T) {
	log := NewLogger("debug", "json")
	require.Equal(t, logrus.DebugLevel, log.GetLevel())
	require.IsType(t, &logrus.JSONFormatter{}, log.Formatter)

	log = NewLogger("loud", "text")
	require.Equal(t, logrus.InfoLevel, log.GetLevel())
}
