package main

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/ybbus/jsonrpc"

	"github.com/code-payments/hybrid-dex-cli/pkg/dex"
	"github.com/code-payments/hybrid-dex-cli/pkg/keypair"
	"github.com/code-payments/hybrid-dex-cli/pkg/metrics"
	"github.com/code-payments/hybrid-dex-cli/pkg/rate"
	"github.com/code-payments/hybrid-dex-cli/pkg/retry"
	"github.com/code-payments/hybrid-dex-cli/pkg/retry/backoff"
	"github.com/code-payments/hybrid-dex-cli/pkg/solana"
	"github.com/code-payments/hybrid-dex-cli/pkg/solana/computebudget"
	"github.com/code-payments/hybrid-dex-cli/pkg/solana/hybriddex"
)

// ClientFactory creates the RPC client used by every command.
type ClientFactory func(endpoint string, limiter rate.Limiter) solana.Client

func newRPCClient(endpoint string, limiter rate.Limiter) solana.Client {
	return solana.NewWithRPCOptions(endpoint, &jsonrpc.RPCClientOpts{
		CustomHeaders: map[string]string{
			"User-Agent": "hybrid-dex-cli",
		},
	}, limiter)
}

// app holds what a single command invocation needs.
type app struct {
	log    *logrus.Entry
	config *Config
	out    io.Writer

	nr       *newrelic.Application
	endpoint string
	client   solana.Client

	// signerErr is reported lazily, so read-only commands work without a
	// keypair.
	signer    solana.Signer
	signerErr error

	session *dex.Session
}

func newApp(config *Config, out io.Writer, factory ClientFactory) (*app, error) {
	a := &app{
		log:    logrus.StandardLogger().WithField("type", "cmd/hybrid-dex"),
		config: config,
		out:    out,
	}

	if len(config.NewRelicLicenseKey) > 0 {
		nr, err := newrelic.NewApplication(
			newrelic.ConfigFromEnvironment(),
			newrelic.ConfigAppName(config.AppName),
			newrelic.ConfigLicense(config.NewRelicLicenseKey),
			newrelic.ConfigDistributedTracerEnabled(true),
			newrelic.ConfigAppLogForwardingEnabled(true),
		)
		if err != nil {
			return nil, errors.Wrap(err, "error connecting to new relic")
		}
		a.nr = nr
	}

	configureLogger(config, a.nr)

	if len(config.RPC) > 0 {
		a.endpoint = config.RPC
	} else {
		env, err := solana.ResolveEnvironment(config.Env)
		if err != nil {
			return nil, err
		}
		a.endpoint = string(env)
	}

	commitment, err := solana.ParseCommitment(config.Commitment)
	if err != nil {
		return nil, err
	}

	opts := []dex.Option{
		dex.WithSeqWidth(hybriddex.SeqWidth(config.SeqWidth)),
		dex.WithCommitment(commitment),
		dex.WithComputeBudget(computebudget.Budget{
			UnitLimit: config.ComputeUnitLimit,
			UnitPrice: config.PriorityFee,
		}),
	}
	if len(config.Memo) > 0 {
		opts = append(opts, dex.WithMemo(config.Memo))
	}
	if len(config.ProgramID) > 0 {
		program, err := solana.ParsePublicKey(config.ProgramID)
		if err != nil {
			return nil, errors.Wrap(err, "invalid program id")
		}
		opts = append(opts, dex.WithProgram(program))
	}
	if config.ConfirmTimeout > 0 {
		opts = append(opts, dex.WithConfirmationStrategies(
			retry.Limit(uint(config.ConfirmTimeout/time.Second)+1),
			retry.Backoff(backoff.Constant(time.Second), time.Second),
		))
	}

	if len(config.Keypair) > 0 {
		signer, err := keypair.Load(config.Keypair)
		if err != nil {
			a.signerErr = err
		} else {
			a.signer = signer
		}
	} else {
		a.signerErr = dex.ErrNoSigner
	}

	a.client = factory(a.endpoint, rate.FromRate(config.RPCRateLimit))
	a.session, err = dex.NewSession(a.client, a.signer, opts...)
	if err != nil {
		return nil, err
	}

	a.log = a.log.WithFields(logrus.Fields{
		"endpoint": a.endpoint,
		"session":  a.session.ID().String(),
	})
	return a, nil
}

// requireSigner fails commands that sign when the keypair could not be
// loaded.
func (a *app) requireSigner() error {
	if a.signer == nil {
		return errors.Wrapf(a.signerErr, "a keypair is required (--keypair %s)", a.config.Keypair)
	}
	return nil
}

func (a *app) context(ctx context.Context) context.Context {
	return metrics.WithApplication(ctx, a.nr)
}

// Shutdown flushes pending telemetry.
func (a *app) Shutdown() {
	if a.nr != nil {
		a.nr.Shutdown(5 * time.Second)
	}
}

func configureLogger(config *Config, nr *newrelic.Application) {
	if nr != nil {
		logrus.SetFormatter(metrics.NewCustomNewRelicLogFormatter(nr, &logrus.JSONFormatter{}))
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{})
	}

	level, err := logrus.ParseLevel(strings.ToLower(config.LogLevel))
	if err != nil {
		logrus.StandardLogger().WithField("log_level", config.LogLevel).Warn("unknown log level, ignoring")
	} else {
		logrus.SetLevel(level)
	}

	logrus.SetOutput(os.Stderr)
}
