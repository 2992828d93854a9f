package main

import (
	"context"

	"github.com/mr-tron/base58"
	"github.com/spf13/cobra"

	"github.com/code-payments/hybrid-dex-cli/pkg/dex"
	"github.com/code-payments/hybrid-dex-cli/pkg/keypair"
	"github.com/code-payments/hybrid-dex-cli/pkg/pointer"
)

func (c *cli) initCommand() *cobra.Command {
	var args dex.InitializeArgs

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create the global config with the signer as admin",
	}
	cmd.RunE = c.runSigned(func(ctx context.Context, a *app) error {
		req, err := a.session.Initialize(ctx, &args)
		if err != nil {
			return err
		}
		return a.submit(ctx, req)
	})

	cmd.Flags().Uint64Var(&args.MaxOrdersPerUser, "max-orders-per-user", 0, "open order limit per user and market")
	cmd.Flags().Uint64Var(&args.MaxOrdersPerBook, "max-orders-per-book", 0, "order limit per book")
	mustMarkRequired(cmd, "max-orders-per-user", "max-orders-per-book")
	return cmd
}

func (c *cli) transferAdminCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "transfer-admin",
		Short: "Hand the admin role to another address",
	}
	cmd.RunE = c.runSigned(func(ctx context.Context, a *app) error {
		value, err := cmd.Flags().GetString("new-admin")
		if err != nil {
			return err
		}
		newAdmin, err := keypair.ResolvePublicKey(value)
		if err != nil {
			return err
		}

		writeLine(a.out, "New admin: %s", base58.Encode(newAdmin))
		req, err := a.session.TransferAdmin(ctx, newAdmin)
		if err != nil {
			return err
		}
		return a.submit(ctx, req)
	})

	cmd.Flags().String("new-admin", "", "address or keypair file of the new admin")
	mustMarkRequired(cmd, "new-admin")
	return cmd
}

func (c *cli) changeConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "change-config",
		Short: "Update order limits, leaving unset limits unchanged",
	}
	cmd.RunE = c.runSigned(func(ctx context.Context, a *app) error {
		var args dex.ChangeConfigArgs
		for _, limit := range []struct {
			flag string
			dst  **uint64
		}{
			{"max-orders-per-user", &args.MaxOrdersPerUser},
			{"max-orders-per-book", &args.MaxOrdersPerBook},
		} {
			if !cmd.Flags().Changed(limit.flag) {
				continue
			}
			value, err := cmd.Flags().GetUint64(limit.flag)
			if err != nil {
				return err
			}
			*limit.dst = pointer.Uint64(value)
		}

		req, err := a.session.ChangeConfig(ctx, &args)
		if err != nil {
			return err
		}
		return a.submit(ctx, req)
	})

	cmd.Flags().Uint64("max-orders-per-user", 0, "open order limit per user and market")
	cmd.Flags().Uint64("max-orders-per-book", 0, "order limit per book")
	return cmd
}

func (c *cli) createMarketCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create-market",
		Short: "Create a market with the signer as its authority",
	}
	cmd.RunE = c.runSigned(func(ctx context.Context, a *app) error {
		base, err := parsePublicKeyFlag(cmd, "base-mint")
		if err != nil {
			return err
		}
		quote, err := parsePublicKeyFlag(cmd, "quote-mint")
		if err != nil {
			return err
		}
		name, err := cmd.Flags().GetString("name")
		if err != nil {
			return err
		}

		req, err := a.session.CreateMarket(ctx, &dex.CreateMarketArgs{
			BaseMint:  base,
			QuoteMint: quote,
			Name:      name,
		})
		if err != nil {
			return err
		}
		return a.submit(ctx, req)
	})

	cmd.Flags().String("base-mint", "", "base token mint")
	cmd.Flags().String("quote-mint", "", "quote token mint")
	cmd.Flags().String("name", "", "market name, at most 16 bytes")
	mustMarkRequired(cmd, "base-mint", "quote-mint", "name")
	return cmd
}

func (c *cli) closeMarketCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "close-market",
		Short: "Close an empty market",
	}
	cmd.RunE = c.runSigned(func(ctx context.Context, a *app) error {
		market, err := parsePublicKeyFlag(cmd, "market")
		if err != nil {
			return err
		}
		req, err := a.session.CloseMarket(ctx, market)
		if err != nil {
			return err
		}
		return a.submit(ctx, req)
	})

	cmd.Flags().String("market", "", "market address")
	mustMarkRequired(cmd, "market")
	return cmd
}

func (c *cli) createOpenOrdersCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create-open-orders",
		Short: "Create the signer's order record for a market",
	}
	cmd.RunE = c.runSigned(func(ctx context.Context, a *app) error {
		market, err := parsePublicKeyFlag(cmd, "market")
		if err != nil {
			return err
		}
		req, err := a.session.CreateOpenOrders(ctx, market)
		if err != nil {
			return err
		}
		return a.submit(ctx, req)
	})

	cmd.Flags().String("market", "", "market address")
	mustMarkRequired(cmd, "market")
	return cmd
}
