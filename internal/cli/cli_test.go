package cli

import (
	"bytes"
	"context"
	"math/big"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"quiz-royale/internal/config"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestFundAndListClaimsOnSQLiteLedger(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "ledger.db")
	cfgPath := writeConfig(t, "log:\n  level: error\nreward:\n  ledger: sqlite\nsqlite:\n  path: "+dbPath+"\n")

	root := newRootCmd()
	root.SetArgs([]string{"--config", cfgPath, "fund", "0.5"})
	require.NoError(t, root.Execute())

	cfg, err := config.Load(cfgPath)
	require.NoError(t, err)
	ledger, closeLedger, err := openLedger(cfg, nil)
	require.NoError(t, err)
	balance, err := ledger.Balance(context.Background())
	require.NoError(t, err)
	require.Equal(t, "500000000000000000", balance.String())
	require.NoError(t, ledger.Claim(context.Background(), "0xaa", big.NewInt(1), "0x01"))
	closeLedger()

	var out bytes.Buffer
	root = newRootCmd()
	root.SetOut(&out)
	root.SetArgs([]string{"--config", cfgPath, "claims"})
	require.NoError(t, root.Execute())
	require.Contains(t, out.String(), "0xaa")
	require.True(t, strings.HasSuffix(out.String(), "1 claim(s)\n"))
}

func TestFundRefusesInProcessLedger(t *testing.T) {
	cfgPath := writeConfig(t, "reward:\n  ledger: memory\n")
	root := newRootCmd()
	root.SetArgs([]string{"--config", cfgPath, "fund", "--wei", "100"})
	root.SetErr(&bytes.Buffer{})
	require.ErrorContains(t, root.Execute(), "not persistent")
}

func TestSeedPoolOnlyFundsEmptyPool(t *testing.T) {
	ctx := context.Background()
	ledger, closeLedger, err := openLedger(config.Default(), nil)
	require.NoError(t, err)
	defer closeLedger()

	balance, err := seedPool(ctx, ledger, "100")
	require.NoError(t, err)
	require.Equal(t, "100", balance.String())

	balance, err = seedPool(ctx, ledger, "100")
	require.NoError(t, err)
	require.Equal(t, "100", balance.String(), "a funded pool is left alone")

	_, err = seedPool(ctx, ledger, "lots")
	require.Error(t, err)
}

func TestOpenLedgerNone(t *testing.T) {
	cfg := config.Default()
	cfg.Reward.Ledger = config.LedgerNone
	ledger, closeLedger, err := openLedger(cfg, nil)
	require.NoError(t, err)
	require.Nil(t, ledger)
	closeLedger()
}
