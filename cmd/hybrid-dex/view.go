package main

import (
	"context"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mr-tron/base58"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/code-payments/hybrid-dex-cli/pkg/dex"
	"github.com/code-payments/hybrid-dex-cli/pkg/solana/hybriddex"
)

var printer = message.NewPrinter(language.English)

func newTable(out io.Writer, title string) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetTitle(title)
	t.SetStyle(table.StyleLight)
	return t
}

func (c *cli) statusCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the global config",
	}
	cmd.RunE = c.run(func(ctx context.Context, a *app) error {
		address, err := a.session.GlobalConfigAddress()
		if err != nil {
			return err
		}
		global, err := a.session.GetGlobalConfig(ctx)
		if err != nil {
			return err
		}

		t := newTable(a.out, "Global Config")
		t.AppendRows([]table.Row{
			{"Address", base58.Encode(address)},
			{"Program", base58.Encode(a.session.Program())},
			{"Admin", base58.Encode(global.Admin)},
			{"Max Orders Per User", printer.Sprintf("%d", global.MaxOrdersPerUser)},
			{"Max Orders Per Book", printer.Sprintf("%d", global.MaxOrdersPerBook)},
			{"Markets", printer.Sprintf("%d", global.TotalMarketCount)},
			{"Next Market Seq", printer.Sprintf("%d", global.MarketSeqNum)},
		})
		t.Render()
		return nil
	})
	return cmd
}

func (c *cli) marketCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "market",
		Short: "Show a market, its vaults and both books",
	}
	cmd.RunE = c.run(func(ctx context.Context, a *app) error {
		address, err := parsePublicKeyFlag(cmd, "market")
		if err != nil {
			return err
		}
		orders, err := cmd.Flags().GetBool("orders")
		if err != nil {
			return err
		}

		market, err := a.session.GetMarket(ctx, address)
		if err != nil {
			return err
		}
		vaults, err := a.session.GetVaultBalances(ctx, address, market)
		if err != nil {
			return err
		}

		t := newTable(a.out, market.Name)
		t.AppendRows([]table.Row{
			{"Address", base58.Encode(address)},
			{"Seed", market.Seed},
			{"Authority", base58.Encode(market.MarketAuthority)},
			{"Base Mint", base58.Encode(market.BaseMint)},
			{"Quote Mint", base58.Encode(market.QuoteMint)},
			{"Base Decimals", market.BaseDecimal},
			{"Quote Decimals", market.QuoteDecimal},
			{"Created", market.CreatedAtTime().UTC().Format(time.RFC3339)},
			{"Base Volume", dex.FormatAmount(market.BaseTotalVolume, market.BaseDecimal)},
			{"Quote Volume", dex.FormatAmount(market.QuoteTotalVolume, market.QuoteDecimal)},
			{"Base Vault", dex.FormatAmount(vaults.Base, market.BaseDecimal)},
			{"Quote Vault", dex.FormatAmount(vaults.Quote, market.QuoteDecimal)},
			{"Orders Placed", printer.Sprintf("%d", market.OrderSeqNum)},
		})
		t.Render()

		for _, side := range []hybriddex.Side{hybriddex.SideAsk, hybriddex.SideBid} {
			book, err := a.session.GetBook(ctx, address, side)
			if err != nil {
				return err
			}

			if orders {
				renderOrders(a.out, market, book)
			} else {
				renderDepth(a.out, market, book)
			}
		}
		return nil
	})

	cmd.Flags().String("market", "", "market address")
	cmd.Flags().Bool("orders", false, "list individual orders instead of price levels")
	mustMarkRequired(cmd, "market")
	return cmd
}

func renderDepth(out io.Writer, market *hybriddex.MarketAccount, book *hybriddex.BookAccount) {
	quantityDecimals := dex.QuantityDecimals(book.Side, market)

	t := newTable(out, book.Side.String()+"s")
	t.AppendHeader(table.Row{"Price", "Quantity", "Orders"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight},
		{Number: 2, Align: text.AlignRight},
		{Number: 3, Align: text.AlignRight},
	})
	for _, level := range book.Depth() {
		t.AppendRow(table.Row{
			dex.FormatAmount(level.Price, market.QuoteDecimal),
			dex.FormatAmount(level.Quantity, quantityDecimals),
			level.Orders,
		})
	}
	t.AppendFooter(table.Row{"", "", printer.Sprintf("%d", book.OrdersCount)})
	t.Render()
}

func renderOrders(out io.Writer, market *hybriddex.MarketAccount, book *hybriddex.BookAccount) {
	quantityDecimals := dex.QuantityDecimals(book.Side, market)

	t := newTable(out, book.Side.String()+"s")
	t.AppendHeader(table.Row{"Order ID", "Owner", "Price", "Quantity", "Created"})
	for _, order := range book.Orders {
		t.AppendRow(table.Row{
			order.OrderID,
			base58.Encode(order.Owner),
			dex.FormatAmount(order.Price, market.QuoteDecimal),
			dex.FormatAmount(order.Quantity, quantityDecimals),
			order.CreatedAtTime().UTC().Format(time.RFC3339),
		})
	}
	t.Render()
}

func (c *cli) marketsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "markets",
		Short: "List markets, oldest first",
	}
	cmd.RunE = c.run(func(ctx context.Context, a *app) error {
		base, err := parsePublicKeyFlag(cmd, "base-mint")
		if err != nil {
			return err
		}
		quote, err := parsePublicKeyFlag(cmd, "quote-mint")
		if err != nil {
			return err
		}

		markets, err := a.session.FindMarkets(ctx, base, quote)
		if err != nil {
			return err
		}

		t := newTable(a.out, "Markets")
		t.AppendHeader(table.Row{"Seed", "Name", "Address", "Base Mint", "Quote Mint", "Created"})
		for _, entry := range markets {
			t.AppendRow(table.Row{
				entry.Market.Seed,
				entry.Market.Name,
				base58.Encode(entry.Address),
				base58.Encode(entry.Market.BaseMint),
				base58.Encode(entry.Market.QuoteMint),
				entry.Market.CreatedAtTime().UTC().Format(time.RFC3339),
			})
		}
		t.AppendFooter(table.Row{"", "", printer.Sprintf("%d markets", len(markets))})
		t.Render()
		return nil
	})

	cmd.Flags().String("base-mint", "", "only markets with this base mint")
	cmd.Flags().String("quote-mint", "", "only markets with this quote mint")
	return cmd
}

func (c *cli) userStatusCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user-status",
		Short: "Show a user's open interest in a market",
	}
	cmd.RunE = c.run(func(ctx context.Context, a *app) error {
		address, err := parsePublicKeyFlag(cmd, "market")
		if err != nil {
			return err
		}
		user, err := parsePublicKeyFlag(cmd, "user")
		if err != nil {
			return err
		}
		if user == nil {
			if err := a.requireSigner(); err != nil {
				return err
			}
			user = a.signer.PublicKey()
		}

		market, err := a.session.GetMarket(ctx, address)
		if err != nil {
			return err
		}
		orders, err := a.session.GetUserMarketOrders(ctx, address, user)
		if err != nil {
			return err
		}
		ordersAddress, err := a.session.UserMarketOrdersAddress(address, user)
		if err != nil {
			return err
		}

		t := newTable(a.out, "User Market Orders")
		t.AppendRows([]table.Row{
			{"Address", base58.Encode(ordersAddress)},
			{"User", base58.Encode(orders.Address)},
			{"Market", base58.Encode(orders.Market)},
			{"Open Orders", printer.Sprintf("%d", orders.OpenedOrdersCount)},
			{"Base Deposit", dex.FormatAmount(orders.BaseDepositTotal, market.BaseDecimal)},
			{"Quote Deposit", dex.FormatAmount(orders.QuoteDepositTotal, market.QuoteDecimal)},
			{"Base Volume", dex.FormatAmount(orders.BaseTotalVolume, market.BaseDecimal)},
			{"Quote Volume", dex.FormatAmount(orders.QuoteTotalVolume, market.QuoteDecimal)},
		})
		t.Render()
		return nil
	})

	cmd.Flags().String("market", "", "market address")
	cmd.Flags().String("user", "", "user address, the signer when omitted")
	mustMarkRequired(cmd, "market")
	return cmd
}
