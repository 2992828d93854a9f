package dex

import (
	"crypto/ed25519"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/hybrid-dex-cli/pkg/solana"
	"github.com/code-payments/hybrid-dex-cli/pkg/solana/hybriddex"
	hybriddex_memory "github.com/code-payments/hybrid-dex-cli/pkg/solana/hybriddex/memory"
	"github.com/code-payments/hybrid-dex-cli/pkg/testutil"
)

func TestFetchOne(t *testing.T) {
	env := setup(t, 5, 50)
	market := env.createMarket(env.admin, "SOL/USDC")

	account, err := env.admin.FetchOne(env.ctx, hybriddex.AccountKindMarket, market)
	require.NoError(t, err)
	assert.Equal(t, hybriddex.AccountKindMarket, account.Kind())
	assert.Equal(t, "SOL/USDC", account.(*hybriddex.MarketAccount).Name)

	_, err = env.admin.FetchOne(env.ctx, hybriddex.AccountKindBook, market)
	assert.True(t, errors.Is(err, ErrMalformedAccount))

	_, err = env.admin.FetchOne(env.ctx, hybriddex.AccountKindMarket, testutil.GenerateSolanaKeys(t, 1)[0])
	assert.True(t, errors.Is(err, ErrAccountNotFound))

	// Accounts outside the program are never decoded
	_, err = env.admin.FetchOne(env.ctx, hybriddex.AccountKindMarket, env.base)
	assert.True(t, errors.Is(err, ErrMalformedAccount))

	for _, side := range []hybriddex.Side{hybriddex.SideBid, hybriddex.SideAsk} {
		book, err := env.admin.GetBook(env.ctx, market, side)
		require.NoError(t, err)
		assert.Equal(t, side, book.Side)
		assert.Equal(t, market, book.Market)
		assert.Empty(t, book.Orders)
	}

	_, err = env.admin.GetUserMarketOrders(env.ctx, market, env.adminKey.Public().(ed25519.PublicKey))
	assert.True(t, errors.Is(err, ErrAccountNotFound))
}

func TestScan(t *testing.T) {
	env := setup(t, 5, 50)

	markets := map[string]string{}
	for _, name := range []string{"a", "b", "c"} {
		markets[string(env.createMarket(env.admin, name))] = name
	}
	_, alice := env.user(env.createMarket(env.admin, "d"), 0, 0)

	scanner, err := env.admin.Scan(env.ctx, hybriddex.AccountKindMarket)
	require.NoError(t, err)

	seen := map[string]string{}
	for scanner.Next() {
		m, ok := scanner.Account().(*hybriddex.MarketAccount)
		require.True(t, ok)
		seen[string(scanner.Address())] = m.Name
	}
	require.NoError(t, scanner.Err())
	assert.Len(t, seen, 4)
	for address, name := range markets {
		assert.Equal(t, name, seen[address])
	}
	assert.False(t, scanner.Next())

	scanner, err = env.admin.Scan(env.ctx, hybriddex.AccountKindUserMarketOrders)
	require.NoError(t, err)
	require.True(t, scanner.Next())
	assert.EqualValues(t, alice.Signer().PublicKey(), scanner.Account().(*hybriddex.UserMarketOrdersAccount).Address)
	assert.False(t, scanner.Next())
	assert.NoError(t, scanner.Err())

	scanner, err = env.admin.Scan(env.ctx, hybriddex.AccountKindBook, solana.NewMemcmpFilter(8, []byte{byte(hybriddex.SideAsk)}))
	require.NoError(t, err)
	var asks int
	for scanner.Next() {
		assert.Equal(t, hybriddex.SideAsk, scanner.Account().(*hybriddex.BookAccount).Side)
		asks++
	}
	require.NoError(t, scanner.Err())
	assert.Equal(t, 4, asks)
}

func TestScan_MalformedAccount(t *testing.T) {
	env := setup(t, 5, 50)
	env.createMarket(env.admin, "valid")

	truncated := (&hybriddex.MarketAccount{
		Name:            "truncated",
		MarketAuthority: testutil.GenerateSolanaKeys(t, 1)[0],
		BaseMint:        env.base,
		QuoteMint:       env.quote,
		Bids:            testutil.GenerateSolanaKeys(t, 1)[0],
		Asks:            testutil.GenerateSolanaKeys(t, 1)[0],
	}).Marshal()[:100]
	env.ledger.SetAccount(testutil.GenerateSolanaKeys(t, 1)[0], solana.AccountInfo{
		Data:  truncated,
		Owner: hybriddex.PROGRAM_ID,
	})

	scanner, err := env.admin.Scan(env.ctx, hybriddex.AccountKindMarket)
	require.NoError(t, err)
	for scanner.Next() {
		assert.NotNil(t, scanner.Account())
	}
	assert.True(t, errors.Is(scanner.Err(), ErrMalformedAccount))
	assert.Nil(t, scanner.Account())
	assert.False(t, scanner.Next())

	_, err = env.admin.FindMarkets(env.ctx, nil, nil)
	assert.True(t, errors.Is(err, ErrMalformedAccount))
}

func TestFindMarkets(t *testing.T) {
	env := setup(t, 5, 50)

	other := testutil.GenerateSolanaKeys(t, 1)[0]
	hybriddex_memory.CreateMint(env.ledger, other, 2)

	first := env.createMarket(env.admin, "first")
	flipped, err := env.admin.CreateMarket(env.ctx, &CreateMarketArgs{BaseMint: env.quote, QuoteMint: env.base, Name: "flipped"})
	env.run(flipped, err)
	second := env.createMarket(env.admin, "second")
	alt, err := env.admin.CreateMarket(env.ctx, &CreateMarketArgs{BaseMint: env.base, QuoteMint: other, Name: "alt"})
	env.run(alt, err)

	names := func(entries []*MarketEntry) []string {
		var result []string
		for _, entry := range entries {
			result = append(result, entry.Market.Name)
		}
		return result
	}

	all, err := env.admin.FindMarkets(env.ctx, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "flipped", "second", "alt"}, names(all))

	pair, err := env.admin.FindMarkets(env.ctx, env.base, env.quote)
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second"}, names(pair))
	assert.Equal(t, first, pair[0].Address)
	assert.Equal(t, second, pair[1].Address)

	byBase, err := env.admin.FindMarkets(env.ctx, env.base, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second", "alt"}, names(byBase))

	byQuote, err := env.admin.FindMarkets(env.ctx, nil, env.base)
	require.NoError(t, err)
	assert.Equal(t, []string{"flipped"}, names(byQuote))

	none, err := env.admin.FindMarkets(env.ctx, other, nil)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestGetVaultBalances(t *testing.T) {
	env := setup(t, 5, 50)
	market := env.createMarket(env.admin, "SOL/USDC")

	m, err := env.admin.GetMarket(env.ctx, market)
	require.NoError(t, err)

	vaults, err := env.admin.GetVaultBalances(env.ctx, market, m)
	require.NoError(t, err)
	assert.Zero(t, vaults.Base)
	assert.Zero(t, vaults.Quote)

	_, alice := env.user(market, 700, 300)
	env.run(alice.PlaceOrder(env.ctx, &PlaceOrderArgs{Market: market, Side: hybriddex.SideAsk, Price: 5, Quantity: 700}))
	env.run(alice.PlaceOrder(env.ctx, &PlaceOrderArgs{Market: market, Side: hybriddex.SideBid, Price: 4, Quantity: 300}))

	vaults, err = env.admin.GetVaultBalances(env.ctx, market, m)
	require.NoError(t, err)
	assert.EqualValues(t, 700, vaults.Base)
	assert.EqualValues(t, 300, vaults.Quote)
}
