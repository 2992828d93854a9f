package main

import (
	"context"
	"crypto/ed25519"
	"fmt"
	"io"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/code-payments/hybrid-dex-cli/pkg/dex"
	"github.com/code-payments/hybrid-dex-cli/pkg/metrics"
	"github.com/code-payments/hybrid-dex-cli/pkg/solana"
	"github.com/code-payments/hybrid-dex-cli/pkg/solana/hybriddex"
)

const defaultConfigPath = "hybrid-dex.yaml"

// cli wires the command tree to a single app, created once flags are
// parsed.
type cli struct {
	factory ClientFactory
	app     *app
}

func newRootCommand(factory ClientFactory) *cobra.Command {
	c := &cli{factory: factory}
	v := newViper()

	root := &cobra.Command{
		Use:           "hybrid-dex",
		Short:         "Client for the hybrid order book exchange program",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			configFlag := cmd.Flag("config")
			config, err := loadConfig(v, cmd.Root().PersistentFlags(), configFlag.Value.String(), configFlag.Changed)
			if err != nil {
				return err
			}

			c.app, err = newApp(config, cmd.OutOrStdout(), c.factory)
			return err
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if c.app != nil {
				c.app.Shutdown()
			}
		},
	}

	flags := root.PersistentFlags()
	flags.String("config", defaultConfigPath, "configuration file path")
	flags.String("log-level", defaultConfig.LogLevel, "log level")
	flags.StringP("env", "e", defaultConfig.Env, "solana cluster: mainnet-beta, testnet, devnet or localnet")
	flags.StringP("rpc", "r", defaultConfig.RPC, "rpc endpoint, overriding --env")
	flags.String("commitment", defaultConfig.Commitment, "commitment for reads and confirmation")
	flags.Float64("rpc-rate-limit", defaultConfig.RPCRateLimit, "maximum rpc requests per second per method, 0 for unlimited")
	flags.StringP("keypair", "k", defaultConfig.Keypair, "signer keypair file")
	flags.String("program-id", base58.Encode(hybriddex.PROGRAM_ID), "hybrid dex program address")
	flags.Int("seq-width", defaultConfig.SeqWidth, "width in bytes of the market sequence number seed (4 or 8)")
	flags.Duration("confirm-timeout", defaultConfig.ConfirmTimeout, "how long to wait for confirmation")
	flags.Uint64("priority-fee", defaultConfig.PriorityFee, "priority fee in micro-lamports per compute unit")
	flags.Uint32("compute-unit-limit", defaultConfig.ComputeUnitLimit, "compute units to request, 0 for the runtime default")
	flags.String("memo", defaultConfig.Memo, "memo attached to submitted transactions")

	root.AddCommand(
		c.initCommand(),
		c.transferAdminCommand(),
		c.changeConfigCommand(),
		c.createMarketCommand(),
		c.closeMarketCommand(),
		c.createOpenOrdersCommand(),
		c.placeOrderCommand(),
		c.cancelOrderCommand(),
		c.takeOrderCommand(),
		c.partialTakeOrderCommand(),
		c.statusCommand(),
		c.marketCommand(),
		c.marketsCommand(),
		c.userStatusCommand(),
	)

	return root
}

// run executes fn within a New Relic transaction named after the command.
func (c *cli) run(fn func(ctx context.Context, a *app) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		ctx, end := metrics.StartTransaction(c.app.context(cmd.Context()), cmd.CommandPath())
		err := fn(ctx, c.app)
		end(err)
		return err
	}
}

// runSigned is run for commands that submit a transaction.
func (c *cli) runSigned(fn func(ctx context.Context, a *app) error) func(*cobra.Command, []string) error {
	return c.run(func(ctx context.Context, a *app) error {
		if err := a.requireSigner(); err != nil {
			return err
		}
		return fn(ctx, a)
	})
}

// submit sends req and reports its outcome.
func (a *app) submit(ctx context.Context, req *dex.Request) error {
	a.log.WithField("operation", req.Operation).Info("submitting transaction")

	sig, err := a.session.Submit(ctx, req)
	if err != nil {
		var rejected *dex.RemoteRejectedError
		if errors.As(err, &rejected) {
			fmt.Fprintf(a.out, "Transaction %s rejected\n", rejected.Signature)
		}
		return err
	}

	fmt.Fprintf(a.out, "Signature: %s\n", sig)
	for _, role := range []string{"global_config", "market", "bids", "asks", "user_market_orders"} {
		if address, ok := req.Created[role]; ok {
			fmt.Fprintf(a.out, "Created %s: %s\n", role, base58.Encode(address))
		}
	}
	return nil
}

func parsePublicKeyFlag(cmd *cobra.Command, name string) (ed25519.PublicKey, error) {
	value, err := cmd.Flags().GetString(name)
	if err != nil {
		return nil, err
	}
	if len(value) == 0 {
		return nil, nil
	}

	key, err := solana.ParsePublicKey(value)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid --%s", name)
	}
	return key, nil
}

func parseSideFlag(cmd *cobra.Command) (hybriddex.Side, error) {
	value, err := cmd.Flags().GetString("side")
	if err != nil {
		return 0, err
	}
	return hybriddex.ParseSide(value)
}

func mustMarkRequired(cmd *cobra.Command, names ...string) {
	for _, name := range names {
		if err := cmd.MarkFlagRequired(name); err != nil {
			panic(err)
		}
	}
}

func writeLine(w io.Writer, format string, args ...interface{}) {
	fmt.Fprintf(w, format+"\n", args...)
}
