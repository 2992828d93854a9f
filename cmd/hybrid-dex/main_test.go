package main

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/hybrid-dex-cli/pkg/dex"
	"github.com/code-payments/hybrid-dex-cli/pkg/keypair"
	"github.com/code-payments/hybrid-dex-cli/pkg/rate"
	"github.com/code-payments/hybrid-dex-cli/pkg/solana"
	"github.com/code-payments/hybrid-dex-cli/pkg/solana/hybriddex"
	hybriddex_memory "github.com/code-payments/hybrid-dex-cli/pkg/solana/hybriddex/memory"
	solana_memory "github.com/code-payments/hybrid-dex-cli/pkg/solana/memory"
	"github.com/code-payments/hybrid-dex-cli/pkg/testutil"
)

type cliEnv struct {
	t      *testing.T
	dir    string
	ledger *solana_memory.Client

	base  ed25519.PublicKey
	quote ed25519.PublicKey
}

func newCLIEnv(t *testing.T) *cliEnv {
	ledger := solana_memory.New()
	hybriddex_memory.Install(ledger, nil, hybriddex.DefaultSeqWidth)

	mints := testutil.GenerateSolanaKeys(t, 2)
	hybriddex_memory.CreateMint(ledger, mints[0], 9)
	hybriddex_memory.CreateMint(ledger, mints[1], 6)

	return &cliEnv{
		t:      t,
		dir:    t.TempDir(),
		ledger: ledger,
		base:   mints[0],
		quote:  mints[1],
	}
}

// keypair writes a new funded keypair file and returns its path.
func (e *cliEnv) keypair(name string, base, quote uint64) (string, ed25519.PublicKey) {
	key := testutil.GenerateSolanaKeypair(e.t)
	path := filepath.Join(e.dir, name+".json")
	require.NoError(e.t, keypair.Save(path, key))

	wallet := key.Public().(ed25519.PublicKey)
	_, err := hybriddex_memory.Fund(e.ledger, wallet, e.base, base)
	require.NoError(e.t, err)
	_, err = hybriddex_memory.Fund(e.ledger, wallet, e.quote, quote)
	require.NoError(e.t, err)

	return path, wallet
}

func (e *cliEnv) exec(keypairPath string, args ...string) (string, error) {
	root := newRootCommand(func(string, rate.Limiter) solana.Client {
		return e.ledger
	})

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{
		"--config", "",
		"--log-level", "error",
		"--keypair", keypairPath,
		"--confirm-timeout", "3s",
	}, args...))

	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func (e *cliEnv) run(keypairPath string, args ...string) string {
	out, err := e.exec(keypairPath, args...)
	require.NoError(e.t, err, out)
	return out
}

func TestCLI_OrderLifecycle(t *testing.T) {
	env := newCLIEnv(t)
	admin, adminKey := env.keypair("admin", 0, 0)
	alice, aliceKey := env.keypair("alice", 5_000_000_000, 0)
	bob, _ := env.keypair("bob", 0, 100_000_000)

	out := env.run(admin, "init", "--max-orders-per-user", "5", "--max-orders-per-book", "10")
	assert.Contains(t, out, "Signature: ")
	assert.Contains(t, out, "Created global_config: ")

	out = env.run("", "status")
	assert.Contains(t, out, base58.Encode(adminKey))
	assert.Contains(t, out, "Max Orders Per Book")

	expected, _, err := hybriddex.GetMarketAddress(&hybriddex.GetMarketAddressArgs{
		Program:  hybriddex.PROGRAM_ID,
		Seq:      0,
		SeqWidth: hybriddex.DefaultSeqWidth,
	})
	require.NoError(t, err)
	market := base58.Encode(expected)

	out = env.run(admin, "create-market", "--base-mint", base58.Encode(env.base), "--quote-mint", base58.Encode(env.quote), "--name", "SOL/USDC")
	assert.Contains(t, out, "Created market: "+market)

	env.run(alice, "create-open-orders", "--market", market)
	env.run(bob, "create-open-orders", "--market", market)

	out = env.run(alice, "place-order", "--market", market, "--side", "ask", "--price", "10.5", "--quantity", "2")
	assert.Contains(t, out, "Order ID: 0")

	_, err = env.exec(alice, "place-order", "--market", market, "--side", "ask", "--price", "1.0000001", "--quantity", "1")
	assert.True(t, errors.Is(err, dex.ErrInvalidAmount))

	out = env.run("", "market", "--market", market)
	assert.Contains(t, out, "SOL/USDC")
	assert.Contains(t, out, "10.5")

	out = env.run("", "market", "--market", market, "--orders")
	assert.Contains(t, out, base58.Encode(aliceKey))

	out = env.run(bob, "partial-take-order", "--market", market, "--side", "ask", "--order-id", "0", "--amount", "0.5")
	assert.Contains(t, out, "Receive: 0.5")
	assert.Contains(t, out, "Pay: 5.25")

	out = env.run(bob, "take-order", "--market", market, "--side", "ask", "--order-id", "0", "--maker", base58.Encode(aliceKey))
	assert.Contains(t, out, "Receive: 1.5")
	assert.Contains(t, out, "Pay: 15.75")

	balance, err := hybriddex_memory.Balance(env.ledger, aliceKey, env.quote)
	require.NoError(t, err)
	assert.EqualValues(t, 21_000_000, balance)

	out = env.run("", "user-status", "--market", market, "--user", base58.Encode(aliceKey))
	assert.Contains(t, out, "Quote Volume")
	assert.Contains(t, out, "21")

	out = env.run("", "markets", "--base-mint", base58.Encode(env.base))
	assert.Contains(t, out, market)

	_, err = env.exec(bob, "take-order", "--market", market, "--side", "ask", "--order-id", "0")
	assert.True(t, errors.Is(err, dex.ErrAccountNotFound))

	env.run(admin, "close-market", "--market", market)
	_, err = env.exec("", "market", "--market", market)
	assert.True(t, errors.Is(err, dex.ErrAccountNotFound))
}

func TestCLI_Admin(t *testing.T) {
	env := newCLIEnv(t)
	admin, _ := env.keypair("admin", 0, 0)
	next, nextKey := env.keypair("next", 0, 0)

	env.run(admin, "init", "--max-orders-per-user", "5", "--max-orders-per-book", "10")
	env.run(admin, "change-config", "--max-orders-per-book", "20")

	out := env.run("", "status")
	assert.Contains(t, out, "20")

	_, err := env.exec(next, "change-config", "--max-orders-per-user", "1")
	assert.True(t, errors.Is(err, dex.ErrUnauthorized))

	out = env.run(admin, "transfer-admin", "--new-admin", next)
	assert.Contains(t, out, "New admin: "+base58.Encode(nextKey))

	out = env.run(next, "--memo", "lower limits", "--priority-fee", "1000", "--compute-unit-limit", "200000", "change-config", "--max-orders-per-user", "1")
	assert.Equal(t, []string{"lower limits"}, env.ledger.Memos(signatureOf(t, out)))

	_, err = env.exec(next, "--compute-unit-limit", "2000000", "status")
	assert.Error(t, err)
}

// signatureOf extracts the transaction signature printed by a write command.
func signatureOf(t *testing.T, out string) solana.Signature {
	var sig solana.Signature
	for _, line := range strings.Split(out, "\n") {
		if !strings.HasPrefix(line, "Signature: ") {
			continue
		}
		raw, err := base58.Decode(strings.TrimPrefix(line, "Signature: "))
		require.NoError(t, err)
		require.Len(t, raw, len(sig))
		copy(sig[:], raw)
		return sig
	}
	require.FailNow(t, "no signature in output", out)
	return sig
}

func TestCLI_Errors(t *testing.T) {
	env := newCLIEnv(t)
	admin, _ := env.keypair("admin", 0, 0)

	_, err := env.exec(filepath.Join(env.dir, "missing.json"), "init", "--max-orders-per-user", "1", "--max-orders-per-book", "1")
	assert.Error(t, err)

	_, err = env.exec("", "status")
	assert.True(t, errors.Is(err, dex.ErrAccountNotFound))

	env.run(admin, "init", "--max-orders-per-user", "1", "--max-orders-per-book", "1")

	_, err = env.exec(admin, "init", "--max-orders-per-user", "1", "--max-orders-per-book", "1")
	assert.True(t, errors.Is(err, dex.ErrAccountExists))

	_, err = env.exec(admin, "create-market", "--base-mint", "bad", "--quote-mint", base58.Encode(env.quote), "--name", "x")
	assert.Error(t, err)

	_, err = env.exec(admin, "place-order", "--market", base58.Encode(env.base), "--side", "up", "--price", "1", "--quantity", "1")
	assert.True(t, errors.Is(err, dex.ErrInvalidSide))

	_, err = env.exec(admin, "--seq-width", "3", "status")
	assert.Error(t, err)
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("rpc: http://localhost:1234\nseq-width: 4\nlog-level: debug\n"), 0600))

	t.Setenv("HYBRID_DEX_COMMITMENT", "finalized")
	t.Setenv("HYBRID_DEX_LOG_LEVEL", "trace")

	root := newRootCommand(newRPCClient)
	require.NoError(t, root.PersistentFlags().Parse([]string{"--keypair", "id.json"}))

	config, err := loadConfig(newViper(), root.PersistentFlags(), path, true)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:1234", config.RPC)
	assert.Equal(t, 4, config.SeqWidth)
	assert.Equal(t, "finalized", config.Commitment)
	assert.Equal(t, "trace", config.LogLevel)
	assert.Equal(t, "id.json", config.Keypair)
	assert.Equal(t, "mainnet-beta", config.Env)
	assert.Equal(t, 60*time.Second, config.ConfirmTimeout)

	config, err = loadConfig(newViper(), root.PersistentFlags(), filepath.Join(dir, "missing.yaml"), false)
	require.NoError(t, err)
	assert.Equal(t, defaultConfig.SeqWidth, config.SeqWidth)

	_, err = loadConfig(newViper(), root.PersistentFlags(), filepath.Join(dir, "missing.yaml"), true)
	assert.Error(t, err)
}
