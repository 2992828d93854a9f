package main

import (
	"context"
	"crypto/ed25519"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/code-payments/hybrid-dex-cli/pkg/dex"
	"github.com/code-payments/hybrid-dex-cli/pkg/solana/hybriddex"
)

func (c *cli) placeOrderCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "place-order",
		Short: "Rest a bid or ask on a market, escrowing its quantity",
		Long: "Rest a bid or ask on a market, escrowing its quantity.\n\n" +
			"The price is in quote tokens per base token. Bids escrow --quantity\n" +
			"quote tokens, asks escrow --quantity base tokens.",
	}
	cmd.RunE = c.runSigned(func(ctx context.Context, a *app) error {
		address, err := parsePublicKeyFlag(cmd, "market")
		if err != nil {
			return err
		}
		side, err := parseSideFlag(cmd)
		if err != nil {
			return err
		}

		market, err := a.session.GetMarket(ctx, address)
		if err != nil {
			return err
		}

		price, err := scaleFlag(cmd, "price", market.QuoteDecimal)
		if err != nil {
			return err
		}
		quantity, err := scaleFlag(cmd, "quantity", dex.QuantityDecimals(side, market))
		if err != nil {
			return err
		}

		req, err := a.session.PlaceOrder(ctx, &dex.PlaceOrderArgs{
			Market:   address,
			Side:     side,
			Price:    price,
			Quantity: quantity,
		})
		if err != nil {
			return err
		}

		writeLine(a.out, "Order ID: %d", market.OrderSeqNum)
		return a.submit(ctx, req)
	})

	cmd.Flags().String("market", "", "market address")
	cmd.Flags().String("side", "", "bid or ask")
	cmd.Flags().String("price", "", "price in quote tokens per base token")
	cmd.Flags().String("quantity", "", "quantity of the escrowed token")
	mustMarkRequired(cmd, "market", "side", "price", "quantity")
	return cmd
}

func (c *cli) cancelOrderCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cancel-order",
		Short: "Cancel one of the signer's orders and refund its escrow",
	}
	cmd.RunE = c.runSigned(func(ctx context.Context, a *app) error {
		market, err := parsePublicKeyFlag(cmd, "market")
		if err != nil {
			return err
		}
		side, err := parseSideFlag(cmd)
		if err != nil {
			return err
		}
		orderID, err := cmd.Flags().GetUint64("order-id")
		if err != nil {
			return err
		}

		req, err := a.session.CancelOrder(ctx, &dex.CancelOrderArgs{
			Market:  market,
			Side:    side,
			OrderID: orderID,
		})
		if err != nil {
			return err
		}
		return a.submit(ctx, req)
	})

	cmd.Flags().String("market", "", "market address")
	cmd.Flags().String("side", "", "bid or ask")
	cmd.Flags().Uint64("order-id", 0, "order id")
	mustMarkRequired(cmd, "market", "side", "order-id")
	return cmd
}

func (c *cli) takeOrderCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "take-order",
		Short: "Fill the whole remaining quantity of a resting order",
	}
	cmd.RunE = c.runSigned(func(ctx context.Context, a *app) error {
		args, market, err := takeOrderArgs(ctx, cmd, a)
		if err != nil {
			return err
		}

		req, err := a.session.TakeOrder(ctx, args)
		if err != nil {
			return err
		}

		printSettlement(a, market, req.Settlement)
		return a.submit(ctx, req)
	})

	addTakeOrderFlags(cmd)
	return cmd
}

func (c *cli) partialTakeOrderCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "partial-take-order",
		Short: "Fill part of a resting order, leaving the rest in place",
	}
	cmd.RunE = c.runSigned(func(ctx context.Context, a *app) error {
		args, market, err := takeOrderArgs(ctx, cmd, a)
		if err != nil {
			return err
		}
		amount, err := scaleFlag(cmd, "amount", dex.QuantityDecimals(args.Side, market))
		if err != nil {
			return err
		}

		req, err := a.session.PartialTakeOrder(ctx, args, amount)
		if err != nil {
			return err
		}

		printSettlement(a, market, req.Settlement)
		return a.submit(ctx, req)
	})

	addTakeOrderFlags(cmd)
	cmd.Flags().String("amount", "", "quantity of the order's escrowed token to fill")
	mustMarkRequired(cmd, "amount")
	return cmd
}

func addTakeOrderFlags(cmd *cobra.Command) {
	cmd.Flags().String("market", "", "market address")
	cmd.Flags().String("side", "", "side of the resting order, bid or ask")
	cmd.Flags().Uint64("order-id", 0, "order id")
	cmd.Flags().String("maker", "", "owner of the order, read from the book when omitted")
	mustMarkRequired(cmd, "market", "side", "order-id")
}

func takeOrderArgs(ctx context.Context, cmd *cobra.Command, a *app) (*dex.TakeOrderArgs, *hybriddex.MarketAccount, error) {
	address, err := parsePublicKeyFlag(cmd, "market")
	if err != nil {
		return nil, nil, err
	}
	side, err := parseSideFlag(cmd)
	if err != nil {
		return nil, nil, err
	}
	orderID, err := cmd.Flags().GetUint64("order-id")
	if err != nil {
		return nil, nil, err
	}
	maker, err := parsePublicKeyFlag(cmd, "maker")
	if err != nil {
		return nil, nil, err
	}

	market, err := a.session.GetMarket(ctx, address)
	if err != nil {
		return nil, nil, err
	}

	if maker == nil {
		if maker, err = orderOwner(ctx, a, address, side, orderID); err != nil {
			return nil, nil, err
		}
		a.log.WithField("maker", base58.Encode(maker)).Debug("resolved maker from book")
	}

	return &dex.TakeOrderArgs{
		Market:  address,
		Maker:   maker,
		Side:    side,
		OrderID: orderID,
	}, market, nil
}

func orderOwner(ctx context.Context, a *app, market ed25519.PublicKey, side hybriddex.Side, orderID uint64) (ed25519.PublicKey, error) {
	book, err := a.session.GetBook(ctx, market, side)
	if err != nil {
		return nil, err
	}

	idx, ok := book.Find(orderID)
	if !ok {
		return nil, errors.Wrapf(dex.ErrAccountNotFound, "order %d is not in the %s book", orderID, side)
	}
	return book.Orders[idx].Owner, nil
}

func printSettlement(a *app, market *hybriddex.MarketAccount, settlement *hybriddex.Settlement) {
	if settlement == nil {
		return
	}

	receive, pay := settlement.BaseVolume, settlement.QuoteVolume
	receiveDecimals, payDecimals := market.BaseDecimal, market.QuoteDecimal
	if settlement.Side == hybriddex.SideBid {
		receive, pay = pay, receive
		receiveDecimals, payDecimals = payDecimals, receiveDecimals
	}

	writeLine(a.out, "Receive: %s", dex.FormatAmount(receive, receiveDecimals))
	writeLine(a.out, "Pay: %s", dex.FormatAmount(pay, payDecimals))
}

func scaleFlag(cmd *cobra.Command, name string, decimals uint8) (uint64, error) {
	value, err := cmd.Flags().GetString(name)
	if err != nil {
		return 0, err
	}

	scaled, err := dex.ScaleAmount(value, decimals)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid --%s", name)
	}
	return scaled, nil
}
