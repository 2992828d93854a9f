package dex

import (
	"bytes"
	"context"
	"crypto/ed25519"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/code-payments/hybrid-dex-cli/pkg/metrics"
	"github.com/code-payments/hybrid-dex-cli/pkg/solana"
	"github.com/code-payments/hybrid-dex-cli/pkg/solana/hybriddex"
	"github.com/code-payments/hybrid-dex-cli/pkg/solana/token"
)

type InitializeArgs struct {
	MaxOrdersPerUser uint64
	MaxOrdersPerBook uint64
}

// Initialize creates the global config with the signer as admin.
func (s *Session) Initialize(ctx context.Context, args *InitializeArgs) (*Request, error) {
	tracer := metrics.TraceMethodCall(ctx, metricsStructName, "Initialize")
	defer tracer.End()

	req, err := s.initialize(args)
	tracer.OnError(err)
	return req, err
}

func (s *Session) initialize(args *InitializeArgs) (*Request, error) {
	admin, err := s.signerKey()
	if err != nil {
		return nil, err
	}

	global, err := s.GlobalConfigAddress()
	if err != nil {
		return nil, err
	}
	if err := s.requireAbsent(hybriddex.AccountKindGlobalConfig, global); err != nil {
		return nil, err
	}

	req := newRequest("initialize", admin, hybriddex.NewInitializeInstruction(
		&hybriddex.InitializeInstructionAccounts{
			Program:      s.program,
			Admin:        admin,
			GlobalConfig: global,
		},
		&hybriddex.InitializeInstructionArgs{
			MaxOrdersPerUser: args.MaxOrdersPerUser,
			MaxOrdersPerBook: args.MaxOrdersPerBook,
		},
	))
	req.Created["global_config"] = global
	return req, nil
}

// TransferAdmin hands the global config over to newAdmin.
func (s *Session) TransferAdmin(ctx context.Context, newAdmin ed25519.PublicKey) (*Request, error) {
	tracer := metrics.TraceMethodCall(ctx, metricsStructName, "TransferAdmin")
	defer tracer.End()

	req, err := s.transferAdmin(ctx, newAdmin)
	tracer.OnError(err)
	return req, err
}

func (s *Session) transferAdmin(ctx context.Context, newAdmin ed25519.PublicKey) (*Request, error) {
	if len(newAdmin) != ed25519.PublicKeySize {
		return nil, errors.Errorf("invalid admin address length: %d", len(newAdmin))
	}

	accounts, err := s.adminAccounts(ctx)
	if err != nil {
		return nil, err
	}

	return newRequest("transfer_admin", accounts.Admin, hybriddex.NewTransferAdminInstruction(
		accounts,
		&hybriddex.TransferAdminInstructionArgs{
			NewAdmin: newAdmin,
		},
	)), nil
}

// ChangeConfigArgs leaves a limit unchanged when it is nil.
type ChangeConfigArgs struct {
	MaxOrdersPerUser *uint64
	MaxOrdersPerBook *uint64
}

func (s *Session) ChangeConfig(ctx context.Context, args *ChangeConfigArgs) (*Request, error) {
	tracer := metrics.TraceMethodCall(ctx, metricsStructName, "ChangeConfig")
	defer tracer.End()

	req, err := s.changeConfig(ctx, args)
	tracer.OnError(err)
	return req, err
}

func (s *Session) changeConfig(ctx context.Context, args *ChangeConfigArgs) (*Request, error) {
	accounts, err := s.adminAccounts(ctx)
	if err != nil {
		return nil, err
	}

	return newRequest("change_config", accounts.Admin, hybriddex.NewChangeConfigInstruction(
		accounts,
		&hybriddex.ChangeConfigInstructionArgs{
			MaxOrdersPerUser: args.MaxOrdersPerUser,
			MaxOrdersPerBook: args.MaxOrdersPerBook,
		},
	)), nil
}

func (s *Session) adminAccounts(ctx context.Context) (*hybriddex.AdminInstructionAccounts, error) {
	admin, err := s.signerKey()
	if err != nil {
		return nil, err
	}

	address, err := s.GlobalConfigAddress()
	if err != nil {
		return nil, err
	}
	global, err := s.GetGlobalConfig(ctx)
	if err != nil {
		return nil, err
	}
	if !bytes.Equal(global.Admin, admin) {
		return nil, errors.Wrapf(ErrUnauthorized, "admin is %s", base58.Encode(global.Admin))
	}

	return &hybriddex.AdminInstructionAccounts{
		Program:      s.program,
		Admin:        admin,
		GlobalConfig: address,
	}, nil
}

type CreateMarketArgs struct {
	BaseMint  ed25519.PublicKey
	QuoteMint ed25519.PublicKey
	Name      string
}

// CreateMarket creates the market at the current market sequence number with
// the signer as its authority. A concurrent creation consumes the same
// sequence number, in which case the program rejects this request.
func (s *Session) CreateMarket(ctx context.Context, args *CreateMarketArgs) (*Request, error) {
	tracer := metrics.TraceMethodCall(ctx, metricsStructName, "CreateMarket")
	tracer.AddAttribute("name", args.Name)
	defer tracer.End()

	req, err := s.createMarket(ctx, args)
	tracer.OnError(err)
	return req, err
}

func (s *Session) createMarket(ctx context.Context, args *CreateMarketArgs) (*Request, error) {
	authority, err := s.signerKey()
	if err != nil {
		return nil, err
	}

	if len(args.Name) > hybriddex.MaxMarketNameLength {
		return nil, errors.Wrapf(ErrInvalidName, "%q exceeds %d bytes", args.Name, hybriddex.MaxMarketNameLength)
	}
	for _, mint := range []ed25519.PublicKey{args.BaseMint, args.QuoteMint} {
		if err := s.requireMint(mint); err != nil {
			return nil, err
		}
	}

	global, err := s.GetGlobalConfig(ctx)
	if err != nil {
		return nil, err
	}

	accounts, err := s.marketAccounts(authority, global.MarketSeqNum, args.BaseMint, args.QuoteMint)
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"method": "CreateMarket",
		"seq":    global.MarketSeqNum,
		"market": base58.Encode(accounts.Market),
	}).Debug("resolved market address")

	req := newRequest("create_market", authority, hybriddex.NewCreateMarketInstruction(
		accounts,
		&hybriddex.CreateMarketInstructionArgs{
			Name: args.Name,
		},
	))
	req.Created["market"] = accounts.Market
	req.Created["bids"] = accounts.Bids
	req.Created["asks"] = accounts.Asks
	return req, nil
}

// CloseMarket closes an empty market. The signer must be the market's
// authority or the admin.
func (s *Session) CloseMarket(ctx context.Context, market ed25519.PublicKey) (*Request, error) {
	tracer := metrics.TraceMethodCall(ctx, metricsStructName, "CloseMarket")
	tracer.AddAttribute("market", base58.Encode(market))
	defer tracer.End()

	req, err := s.closeMarket(ctx, market)
	tracer.OnError(err)
	return req, err
}

func (s *Session) closeMarket(ctx context.Context, address ed25519.PublicKey) (*Request, error) {
	authority, err := s.signerKey()
	if err != nil {
		return nil, err
	}

	market, err := s.GetMarket(ctx, address)
	if err != nil {
		return nil, err
	}
	global, err := s.GetGlobalConfig(ctx)
	if err != nil {
		return nil, err
	}

	if !bytes.Equal(market.MarketAuthority, authority) && !bytes.Equal(global.Admin, authority) {
		return nil, errors.Wrap(ErrUnauthorized, "signer is neither the market authority nor the admin")
	}

	accounts, err := s.marketAccounts(authority, market.Seed, market.BaseMint, market.QuoteMint)
	if err != nil {
		return nil, err
	}
	if !bytes.Equal(accounts.Market, address) {
		return nil, errors.Wrapf(ErrMalformedAccount, "market %s has seed %d, which derives %s", base58.Encode(address), market.Seed, base58.Encode(accounts.Market))
	}

	return newRequest("close_market", authority, hybriddex.NewCloseMarketInstruction(
		accounts,
		&hybriddex.CloseMarketInstructionArgs{
			Seed: market.Seed,
		},
	)), nil
}

// CreateOpenOrders creates the signer's order record for a market.
func (s *Session) CreateOpenOrders(ctx context.Context, market ed25519.PublicKey) (*Request, error) {
	tracer := metrics.TraceMethodCall(ctx, metricsStructName, "CreateOpenOrders")
	tracer.AddAttribute("market", base58.Encode(market))
	defer tracer.End()

	req, err := s.createOpenOrders(ctx, market)
	tracer.OnError(err)
	return req, err
}

func (s *Session) createOpenOrders(ctx context.Context, market ed25519.PublicKey) (*Request, error) {
	user, err := s.signerKey()
	if err != nil {
		return nil, err
	}

	if _, err := s.GetMarket(ctx, market); err != nil {
		return nil, err
	}

	orders, err := s.UserMarketOrdersAddress(market, user)
	if err != nil {
		return nil, err
	}
	if err := s.requireAbsent(hybriddex.AccountKindUserMarketOrders, orders); err != nil {
		return nil, err
	}

	req := newRequest("create_open_orders", user, hybriddex.NewCreateOpenOrdersInstruction(
		&hybriddex.CreateOpenOrdersInstructionAccounts{
			Program:        s.program,
			User:           user,
			Market:         market,
			UserOpenOrders: orders,
		},
	))
	req.Created["user_market_orders"] = orders
	return req, nil
}

func (s *Session) marketAccounts(authority ed25519.PublicKey, seq uint64, baseMint, quoteMint ed25519.PublicKey) (*hybriddex.MarketInstructionAccounts, error) {
	global, err := s.GlobalConfigAddress()
	if err != nil {
		return nil, err
	}
	market, err := s.MarketAddress(seq)
	if err != nil {
		return nil, err
	}
	bids, err := s.BookAddress(market, hybriddex.SideBid)
	if err != nil {
		return nil, err
	}
	asks, err := s.BookAddress(market, hybriddex.SideAsk)
	if err != nil {
		return nil, err
	}

	return &hybriddex.MarketInstructionAccounts{
		Program:      s.program,
		Authority:    authority,
		GlobalConfig: global,
		Market:       market,
		BaseMint:     baseMint,
		QuoteMint:    quoteMint,
		Bids:         bids,
		Asks:         asks,
	}, nil
}

func (s *Session) requireAbsent(kind hybriddex.AccountKind, address ed25519.PublicKey) error {
	_, err := s.sc.GetAccountInfo(address, s.commitment)
	if err == solana.ErrNoAccountInfo {
		return nil
	} else if err != nil {
		return errors.Wrapf(err, "failed to get %s %s", kind, base58.Encode(address))
	}
	return errors.Wrapf(ErrAccountExists, "%s %s", kind, base58.Encode(address))
}

func (s *Session) requireMint(address ed25519.PublicKey) error {
	_, err := s.tokens.GetMint(address)
	if err == token.ErrAccountNotFound {
		return errors.Wrapf(ErrAccountNotFound, "mint %s", base58.Encode(address))
	} else if err != nil {
		return errors.Wrapf(err, "failed to get mint %s", base58.Encode(address))
	}
	return nil
}
