package dex

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"sort"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"

	"github.com/code-payments/hybrid-dex-cli/pkg/metrics"
	"github.com/code-payments/hybrid-dex-cli/pkg/solana"
	"github.com/code-payments/hybrid-dex-cli/pkg/solana/hybriddex"
	"github.com/code-payments/hybrid-dex-cli/pkg/solana/token"
)

// FetchOne reads the account at address and decodes it as kind.
func (s *Session) FetchOne(ctx context.Context, kind hybriddex.AccountKind, address ed25519.PublicKey) (hybriddex.Account, error) {
	tracer := metrics.TraceMethodCall(ctx, metricsStructName, "FetchOne")
	tracer.AddAttribute("kind", kind.String())
	defer tracer.End()

	account, err := s.fetchOne(kind, address)
	tracer.OnError(err)
	return account, err
}

func (s *Session) fetchOne(kind hybriddex.AccountKind, address ed25519.PublicKey) (hybriddex.Account, error) {
	info, err := s.sc.GetAccountInfo(address, s.commitment)
	if err == solana.ErrNoAccountInfo {
		return nil, errors.Wrapf(ErrAccountNotFound, "%s %s", kind, base58.Encode(address))
	} else if err != nil {
		return nil, errors.Wrapf(err, "failed to get %s %s", kind, base58.Encode(address))
	}

	if !bytes.Equal(info.Owner, s.program) {
		return nil, errors.Wrapf(ErrMalformedAccount, "%s %s is owned by %s", kind, base58.Encode(address), base58.Encode(info.Owner))
	}

	account, err := hybriddex.DecodeAccount(kind, info.Data)
	if err != nil {
		return nil, errors.Wrapf(ErrMalformedAccount, "%s %s: %v", kind, base58.Encode(address), err)
	}
	return account, nil
}

func (s *Session) GetGlobalConfig(ctx context.Context) (*hybriddex.GlobalConfigAccount, error) {
	address, err := s.GlobalConfigAddress()
	if err != nil {
		return nil, err
	}

	account, err := s.FetchOne(ctx, hybriddex.AccountKindGlobalConfig, address)
	if err != nil {
		return nil, err
	}
	return account.(*hybriddex.GlobalConfigAccount), nil
}

func (s *Session) GetMarket(ctx context.Context, address ed25519.PublicKey) (*hybriddex.MarketAccount, error) {
	account, err := s.FetchOne(ctx, hybriddex.AccountKindMarket, address)
	if err != nil {
		return nil, err
	}
	return account.(*hybriddex.MarketAccount), nil
}

func (s *Session) GetBook(ctx context.Context, market ed25519.PublicKey, side hybriddex.Side) (*hybriddex.BookAccount, error) {
	address, err := s.BookAddress(market, side)
	if err != nil {
		return nil, err
	}

	account, err := s.FetchOne(ctx, hybriddex.AccountKindBook, address)
	if err != nil {
		return nil, err
	}
	return account.(*hybriddex.BookAccount), nil
}

func (s *Session) GetUserMarketOrders(ctx context.Context, market, user ed25519.PublicKey) (*hybriddex.UserMarketOrdersAccount, error) {
	address, err := s.UserMarketOrdersAddress(market, user)
	if err != nil {
		return nil, err
	}

	account, err := s.FetchOne(ctx, hybriddex.AccountKindUserMarketOrders, address)
	if err != nil {
		return nil, err
	}
	return account.(*hybriddex.UserMarketOrdersAccount), nil
}

// Scanner iterates over the accounts returned by a single program account
// query, decoding each one as it is reached. It cannot be restarted.
type Scanner struct {
	kind    hybriddex.AccountKind
	pending []solana.ProgramAccount

	address ed25519.PublicKey
	account hybriddex.Account
	err     error
}

// Next advances to the next account. It returns false when the results are
// exhausted or an account fails to decode, which Err then reports.
func (sc *Scanner) Next() bool {
	if sc.err != nil || len(sc.pending) == 0 {
		sc.address, sc.account = nil, nil
		return false
	}

	next := sc.pending[0]
	sc.pending = sc.pending[1:]

	account, err := hybriddex.DecodeAccount(sc.kind, next.Account.Data)
	if err != nil {
		sc.err = errors.Wrapf(ErrMalformedAccount, "%s %s: %v", sc.kind, base58.Encode(next.PublicKey), err)
		sc.address, sc.account = nil, nil
		return false
	}

	sc.address = next.PublicKey
	sc.account = account
	return true
}

func (sc *Scanner) Address() ed25519.PublicKey {
	return sc.address
}

func (sc *Scanner) Account() hybriddex.Account {
	return sc.account
}

func (sc *Scanner) Err() error {
	return sc.err
}

// Scan queries every account of kind matching all filters. Results arrive
// in whatever order the node returns them.
func (s *Session) Scan(ctx context.Context, kind hybriddex.AccountKind, filters ...solana.ProgramAccountFilter) (*Scanner, error) {
	tracer := metrics.TraceMethodCall(ctx, metricsStructName, "Scan")
	tracer.AddAttribute("kind", kind.String())
	defer tracer.End()

	discriminator := kind.Discriminator()
	if discriminator == nil {
		err := errors.Errorf("cannot scan %s accounts", kind)
		tracer.OnError(err)
		return nil, err
	}

	filters = append([]solana.ProgramAccountFilter{solana.NewMemcmpFilter(0, discriminator)}, filters...)

	results, err := s.sc.GetProgramAccounts(s.program, s.commitment, filters...)
	if err != nil {
		err = errors.Wrapf(err, "failed to scan %s accounts", kind)
		tracer.OnError(err)
		return nil, err
	}

	s.log.WithField("kind", kind.String()).WithField("results", len(results)).Trace("scanned accounts")

	return &Scanner{
		kind:    kind,
		pending: results,
	}, nil
}

// MarketEntry is a market together with its address.
type MarketEntry struct {
	Address ed25519.PublicKey
	Market  *hybriddex.MarketAccount
}

// FindMarkets returns markets trading baseMint against quoteMint, oldest
// first. A nil mint matches any mint.
func (s *Session) FindMarkets(ctx context.Context, baseMint, quoteMint ed25519.PublicKey) ([]*MarketEntry, error) {
	var filters []solana.ProgramAccountFilter
	if baseMint != nil {
		filters = append(filters, solana.NewMemcmpFilter(hybriddex.MarketBaseMintOffset, baseMint))
	}
	if quoteMint != nil {
		filters = append(filters, solana.NewMemcmpFilter(hybriddex.MarketQuoteMintOffset, quoteMint))
	}

	scanner, err := s.Scan(ctx, hybriddex.AccountKindMarket, filters...)
	if err != nil {
		return nil, err
	}

	var markets []*MarketEntry
	for scanner.Next() {
		markets = append(markets, &MarketEntry{
			Address: scanner.Address(),
			Market:  scanner.Account().(*hybriddex.MarketAccount),
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	sort.Slice(markets, func(i, j int) bool {
		if markets[i].Market.CreatedAt != markets[j].Market.CreatedAt {
			return markets[i].Market.CreatedAt < markets[j].Market.CreatedAt
		}
		return markets[i].Market.Seed < markets[j].Market.Seed
	})
	return markets, nil
}

// VaultBalances are the funds a market holds in escrow.
type VaultBalances struct {
	Base  uint64
	Quote uint64
}

// GetVaultBalances reads the market's escrow vaults. A vault that has not
// been created yet holds nothing.
func (s *Session) GetVaultBalances(ctx context.Context, address ed25519.PublicKey, market *hybriddex.MarketAccount) (*VaultBalances, error) {
	defer metrics.TraceMethodCall(ctx, metricsStructName, "GetVaultBalances").End()

	base, err := s.getVaultBalance(address, market.BaseMint)
	if err != nil {
		return nil, err
	}
	quote, err := s.getVaultBalance(address, market.QuoteMint)
	if err != nil {
		return nil, err
	}

	return &VaultBalances{Base: base, Quote: quote}, nil
}

func (s *Session) getVaultBalance(market, mint ed25519.PublicKey) (uint64, error) {
	vault, err := hybriddex.GetVaultAddress(&hybriddex.GetVaultAddressArgs{
		Market: market,
		Mint:   mint,
	})
	if err != nil {
		return 0, err
	}

	account, err := s.tokens.GetAccount(vault, mint)
	if err == token.ErrAccountNotFound {
		return 0, nil
	} else if err != nil {
		return 0, errors.Wrapf(err, "failed to get vault %s", base58.Encode(vault))
	}
	return account.Amount, nil
}
