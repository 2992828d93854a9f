package dex

import (
	"bytes"
	"context"
	"crypto/ed25519"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/code-payments/hybrid-dex-cli/pkg/metrics"
	"github.com/code-payments/hybrid-dex-cli/pkg/solana/hybriddex"
	"github.com/code-payments/hybrid-dex-cli/pkg/solana/token"
)

type PlaceOrderArgs struct {
	Market ed25519.PublicKey
	Side   hybriddex.Side

	// Price is in quote atoms per whole base token.
	Price uint64

	// Quantity is in atoms of the escrowed mint: quote for bids, base for
	// asks.
	Quantity uint64
}

// PlaceOrder rests a new order from the signer on one side of a market.
func (s *Session) PlaceOrder(ctx context.Context, args *PlaceOrderArgs) (*Request, error) {
	tracer := metrics.TraceMethodCall(ctx, metricsStructName, "PlaceOrder")
	tracer.AddAttributes(map[string]interface{}{
		"market": base58.Encode(args.Market),
		"side":   args.Side.String(),
	})
	defer tracer.End()

	req, err := s.placeOrder(ctx, args)
	tracer.OnError(err)
	return req, err
}

func (s *Session) placeOrder(ctx context.Context, args *PlaceOrderArgs) (*Request, error) {
	maker, err := s.signerKey()
	if err != nil {
		return nil, err
	}

	if err := args.Side.Validate(); err != nil {
		return nil, err
	}
	if args.Price == 0 {
		return nil, errors.Wrap(ErrInvalidAmount, "price must be positive")
	}
	if args.Quantity == 0 {
		return nil, errors.Wrap(ErrInvalidAmount, "quantity must be positive")
	}

	global, err := s.GetGlobalConfig(ctx)
	if err != nil {
		return nil, err
	}
	market, err := s.GetMarket(ctx, args.Market)
	if err != nil {
		return nil, err
	}
	orders, err := s.GetUserMarketOrders(ctx, args.Market, maker)
	if err != nil {
		return nil, err
	}
	book, err := s.GetBook(ctx, args.Market, args.Side)
	if err != nil {
		return nil, err
	}

	if orders.OpenedOrdersCount >= global.MaxOrdersPerUser {
		return nil, errors.Wrapf(ErrCapacityExceeded, "user has %d of %d open orders", orders.OpenedOrdersCount, global.MaxOrdersPerUser)
	}
	if book.OrdersCount >= global.MaxOrdersPerBook {
		return nil, errors.Wrapf(ErrCapacityExceeded, "%s book has %d of %d orders", args.Side, book.OrdersCount, global.MaxOrdersPerBook)
	}

	globalAddress, err := s.GlobalConfigAddress()
	if err != nil {
		return nil, err
	}
	ordersAddress, err := s.UserMarketOrdersAddress(args.Market, maker)
	if err != nil {
		return nil, err
	}

	accounts := &hybriddex.PlaceOrderInstructionAccounts{
		Program:        s.program,
		Maker:          maker,
		GlobalConfig:   globalAddress,
		Market:         args.Market,
		UserOpenOrders: ordersAddress,
		BaseMint:       market.BaseMint,
		QuoteMint:      market.QuoteMint,
		Bids:           market.Bids,
		Asks:           market.Asks,
	}
	for _, ata := range []struct {
		dst          *ed25519.PublicKey
		wallet, mint ed25519.PublicKey
	}{
		{&accounts.UserBase, maker, market.BaseMint},
		{&accounts.UserQuote, maker, market.QuoteMint},
		{&accounts.BaseVault, args.Market, market.BaseMint},
		{&accounts.QuoteVault, args.Market, market.QuoteMint},
	} {
		if *ata.dst, err = token.GetAssociatedAccount(ata.wallet, ata.mint); err != nil {
			return nil, err
		}
	}

	s.log.WithFields(logrus.Fields{
		"method":       "PlaceOrder",
		"market":       base58.Encode(args.Market),
		"side":         args.Side.String(),
		"price":        args.Price,
		"quantity":     args.Quantity,
		"next_orderid": market.OrderSeqNum,
	}).Debug("building order placement")

	return newRequest("place_order", maker, hybriddex.NewPlaceOrderInstruction(
		accounts,
		&hybriddex.PlaceOrderInstructionArgs{
			Side:     args.Side,
			Price:    args.Price,
			Quantity: args.Quantity,
		},
	)), nil
}

type CancelOrderArgs struct {
	Market  ed25519.PublicKey
	Side    hybriddex.Side
	OrderID uint64
}

// CancelOrder removes one of the signer's orders and refunds its escrow.
func (s *Session) CancelOrder(ctx context.Context, args *CancelOrderArgs) (*Request, error) {
	tracer := metrics.TraceMethodCall(ctx, metricsStructName, "CancelOrder")
	tracer.AddAttributes(map[string]interface{}{
		"market":   base58.Encode(args.Market),
		"side":     args.Side.String(),
		"order_id": args.OrderID,
	})
	defer tracer.End()

	req, err := s.cancelOrder(ctx, args)
	tracer.OnError(err)
	return req, err
}

func (s *Session) cancelOrder(ctx context.Context, args *CancelOrderArgs) (*Request, error) {
	maker, err := s.signerKey()
	if err != nil {
		return nil, err
	}

	if err := args.Side.Validate(); err != nil {
		return nil, err
	}

	market, err := s.GetMarket(ctx, args.Market)
	if err != nil {
		return nil, err
	}
	if _, err := s.GetUserMarketOrders(ctx, args.Market, maker); err != nil {
		return nil, err
	}
	order, err := s.findOrder(ctx, args.Market, args.Side, args.OrderID)
	if err != nil {
		return nil, err
	}
	if !bytes.Equal(order.Owner, maker) {
		return nil, errors.Wrapf(ErrUnauthorized, "order %d is owned by %s", args.OrderID, base58.Encode(order.Owner))
	}

	ordersAddress, err := s.UserMarketOrdersAddress(args.Market, maker)
	if err != nil {
		return nil, err
	}
	escrowMint := args.Side.EscrowMint(market.BaseMint, market.QuoteMint)
	userEscrow, err := token.GetAssociatedAccount(maker, escrowMint)
	if err != nil {
		return nil, err
	}
	vault, err := hybriddex.GetVaultAddress(&hybriddex.GetVaultAddressArgs{Market: args.Market, Mint: escrowMint})
	if err != nil {
		return nil, err
	}

	return newRequest("cancel_order", maker, hybriddex.NewCancelOrderInstruction(
		&hybriddex.CancelOrderInstructionAccounts{
			Program:        s.program,
			Maker:          maker,
			Market:         args.Market,
			UserOpenOrders: ordersAddress,
			BaseMint:       market.BaseMint,
			QuoteMint:      market.QuoteMint,
			UserEscrow:     userEscrow,
			EscrowVault:    vault,
			Book:           market.Book(args.Side),
		},
		&hybriddex.CancelOrderInstructionArgs{
			Side:    args.Side,
			Seed:    market.Seed,
			OrderID: args.OrderID,
		},
	)), nil
}

type TakeOrderArgs struct {
	Market  ed25519.PublicKey
	Maker   ed25519.PublicKey
	Side    hybriddex.Side
	OrderID uint64
}

// TakeOrder fills the whole remaining quantity of a resting order from the
// signer's funds.
func (s *Session) TakeOrder(ctx context.Context, args *TakeOrderArgs) (*Request, error) {
	tracer := metrics.TraceMethodCall(ctx, metricsStructName, "TakeOrder")
	tracer.AddAttributes(map[string]interface{}{
		"market":   base58.Encode(args.Market),
		"side":     args.Side.String(),
		"order_id": args.OrderID,
	})
	defer tracer.End()

	req, err := s.takeOrder(ctx, args, 0, false)
	tracer.OnError(err)
	return req, err
}

// PartialTakeOrder fills amount escrowed atoms of a resting order. The order
// keeps its place in the book, so amount must be below its remaining
// quantity.
func (s *Session) PartialTakeOrder(ctx context.Context, args *TakeOrderArgs, amount uint64) (*Request, error) {
	tracer := metrics.TraceMethodCall(ctx, metricsStructName, "PartialTakeOrder")
	tracer.AddAttributes(map[string]interface{}{
		"market":   base58.Encode(args.Market),
		"side":     args.Side.String(),
		"order_id": args.OrderID,
		"amount":   amount,
	})
	defer tracer.End()

	req, err := s.takeOrder(ctx, args, amount, true)
	tracer.OnError(err)
	return req, err
}

func (s *Session) takeOrder(ctx context.Context, args *TakeOrderArgs, amount uint64, partial bool) (*Request, error) {
	taker, err := s.signerKey()
	if err != nil {
		return nil, err
	}

	if err := args.Side.Validate(); err != nil {
		return nil, err
	}

	market, err := s.GetMarket(ctx, args.Market)
	if err != nil {
		return nil, err
	}
	if _, err := s.GetUserMarketOrders(ctx, args.Market, taker); err != nil {
		return nil, err
	}
	if _, err := s.GetUserMarketOrders(ctx, args.Market, args.Maker); err != nil {
		return nil, err
	}
	order, err := s.findOrder(ctx, args.Market, args.Side, args.OrderID)
	if err != nil {
		return nil, err
	}
	if !bytes.Equal(order.Owner, args.Maker) {
		return nil, errors.Wrapf(ErrUnauthorized, "order %d is owned by %s", args.OrderID, base58.Encode(order.Owner))
	}

	filled := order.Quantity
	if partial {
		if amount == 0 || amount >= order.Quantity {
			return nil, errors.Wrapf(ErrInvalidAmount, "partial amount %d must be positive and below the remaining %d", amount, order.Quantity)
		}
		filled = amount
	}

	settlement, err := hybriddex.Settle(args.Side, order, filled, market.BaseDecimal)
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidAmount, "cannot settle order %d: %v", args.OrderID, err)
	}

	accounts := &hybriddex.TakeOrderInstructionAccounts{
		Program:   s.program,
		Taker:     taker,
		Maker:     args.Maker,
		Market:    args.Market,
		BaseMint:  market.BaseMint,
		QuoteMint: market.QuoteMint,
		Book:      market.Book(args.Side),
	}
	if accounts.MakerOpenOrders, err = s.UserMarketOrdersAddress(args.Market, args.Maker); err != nil {
		return nil, err
	}
	if accounts.TakerOpenOrders, err = s.UserMarketOrdersAddress(args.Market, taker); err != nil {
		return nil, err
	}

	escrowMint := args.Side.EscrowMint(market.BaseMint, market.QuoteMint)
	counterMint := args.Side.CounterMint(market.BaseMint, market.QuoteMint)
	for _, ata := range []struct {
		dst          *ed25519.PublicKey
		wallet, mint ed25519.PublicKey
	}{
		{&accounts.MakerCounter, args.Maker, counterMint},
		{&accounts.TakerCounter, taker, counterMint},
		{&accounts.TakerEscrow, taker, escrowMint},
		{&accounts.EscrowVault, args.Market, escrowMint},
	} {
		if *ata.dst, err = token.GetAssociatedAccount(ata.wallet, ata.mint); err != nil {
			return nil, err
		}
	}

	var req *Request
	if partial {
		req = newRequest("partial_take_order", taker, hybriddex.NewPartialTakeOrderInstruction(
			accounts,
			&hybriddex.PartialTakeOrderInstructionArgs{
				Side:    args.Side,
				Seed:    market.Seed,
				OrderID: args.OrderID,
				Amount:  amount,
			},
		))
	} else {
		req = newRequest("take_order", taker, hybriddex.NewTakeOrderInstruction(
			accounts,
			&hybriddex.TakeOrderInstructionArgs{
				Side:    args.Side,
				Seed:    market.Seed,
				OrderID: args.OrderID,
			},
		))
	}
	req.Settlement = settlement
	return req, nil
}

func (s *Session) findOrder(ctx context.Context, market ed25519.PublicKey, side hybriddex.Side, orderID uint64) (*hybriddex.OpenedOrder, error) {
	book, err := s.GetBook(ctx, market, side)
	if err != nil {
		return nil, err
	}

	idx, ok := book.Find(orderID)
	if !ok {
		return nil, errors.Wrapf(ErrAccountNotFound, "order %d is not in the %s book", orderID, side)
	}

	order := book.Orders[idx].Clone()
	return &order, nil
}
