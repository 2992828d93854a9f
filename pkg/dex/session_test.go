package dex

import (
	"context"
	"crypto/ed25519"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/hybrid-dex-cli/pkg/retry"
	"github.com/code-payments/hybrid-dex-cli/pkg/solana"
	"github.com/code-payments/hybrid-dex-cli/pkg/solana/computebudget"
	"github.com/code-payments/hybrid-dex-cli/pkg/solana/hybriddex"
	hybriddex_memory "github.com/code-payments/hybrid-dex-cli/pkg/solana/hybriddex/memory"
	solana_memory "github.com/code-payments/hybrid-dex-cli/pkg/solana/memory"
	"github.com/code-payments/hybrid-dex-cli/pkg/testutil"
)

// countingClient records how many transactions reach the ledger.
type countingClient struct {
	solana.Client

	mu      sync.Mutex
	submits int
}

func (c *countingClient) SubmitTransaction(txn solana.Transaction, commitment solana.Commitment) (solana.Signature, error) {
	c.mu.Lock()
	c.submits++
	c.mu.Unlock()

	return c.Client.SubmitTransaction(txn, commitment)
}

func (c *countingClient) Submits() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.submits
}

type testEnv struct {
	t      *testing.T
	ctx    context.Context
	ledger *solana_memory.Client
	client *countingClient

	adminKey ed25519.PrivateKey
	admin    *Session
	sessions map[string]*Session

	base  ed25519.PublicKey
	quote ed25519.PublicKey
}

func setup(t *testing.T, maxOrdersPerUser, maxOrdersPerBook uint64) *testEnv {
	ledger := solana_memory.New()

	var mu sync.Mutex
	now := time.Unix(1700000000, 0)
	ledger.SetClock(func() time.Time {
		mu.Lock()
		defer mu.Unlock()

		now = now.Add(time.Second)
		return now
	})

	hybriddex_memory.Install(ledger, nil, hybriddex.DefaultSeqWidth)

	mints := testutil.GenerateSolanaKeys(t, 2)
	hybriddex_memory.CreateMint(ledger, mints[0], 9)
	hybriddex_memory.CreateMint(ledger, mints[1], 6)

	env := &testEnv{
		t:        t,
		ctx:      context.Background(),
		ledger:   ledger,
		client:   &countingClient{Client: ledger},
		adminKey: testutil.GenerateSolanaKeypair(t),
		sessions: make(map[string]*Session),
		base:     mints[0],
		quote:    mints[1],
	}
	env.admin = env.session(env.adminKey)

	env.run(env.admin.Initialize(env.ctx, &InitializeArgs{
		MaxOrdersPerUser: maxOrdersPerUser,
		MaxOrdersPerBook: maxOrdersPerBook,
	}))

	return env
}

func (e *testEnv) session(key ed25519.PrivateKey, opts ...Option) *Session {
	var signer solana.Signer
	if key != nil {
		signer = solana.PrivateKeySigner(key)
	}

	opts = append([]Option{
		WithCommitment(solana.CommitmentFinalized),
		WithConfirmationStrategies(retry.Limit(3)),
	}, opts...)

	s, err := NewSession(e.client, signer, opts...)
	require.NoError(e.t, err)

	if signer != nil {
		e.sessions[string(signer.PublicKey())] = s
	}
	return s
}

// user returns a funded session with open orders on market.
func (e *testEnv) user(market ed25519.PublicKey, base, quote uint64) (ed25519.PrivateKey, *Session) {
	key := testutil.GenerateSolanaKeypair(e.t)
	wallet := key.Public().(ed25519.PublicKey)

	_, err := hybriddex_memory.Fund(e.ledger, wallet, e.base, base)
	require.NoError(e.t, err)
	_, err = hybriddex_memory.Fund(e.ledger, wallet, e.quote, quote)
	require.NoError(e.t, err)

	s := e.session(key)
	e.run(s.CreateOpenOrders(e.ctx, market))
	return key, s
}

// submit signs req with the session of its payer.
func (e *testEnv) submit(req *Request, err error) error {
	require.NoError(e.t, err)
	require.NotNil(e.t, req)

	s, ok := e.sessions[string(req.Payer)]
	require.True(e.t, ok)

	_, err = s.Submit(e.ctx, req)
	return err
}

func (e *testEnv) run(req *Request, err error) {
	require.NoError(e.t, e.submit(req, err))
}

func (e *testEnv) createMarket(s *Session, name string) ed25519.PublicKey {
	req, err := s.CreateMarket(e.ctx, &CreateMarketArgs{
		BaseMint:  e.base,
		QuoteMint: e.quote,
		Name:      name,
	})
	e.run(req, err)
	return req.Created["market"]
}

func TestNewSession(t *testing.T) {
	ledger := solana_memory.New()
	signer := solana.PrivateKeySigner(testutil.GenerateSolanaKeypair(t))

	s, err := NewSession(ledger, signer)
	require.NoError(t, err)
	assert.NotEqual(t, s.ID().String(), "")
	assert.Equal(t, hybriddex.PROGRAM_ID, s.Program())
	assert.Equal(t, hybriddex.SeqWidth64, s.SeqWidth())
	assert.Equal(t, solana.CommitmentConfirmed, s.Commitment())
	assert.Equal(t, signer.PublicKey(), s.Signer().PublicKey())

	other, err := NewSession(ledger, nil, WithSeqWidth(hybriddex.SeqWidth32), WithProgram(testutil.GenerateSolanaKeys(t, 1)[0]))
	require.NoError(t, err)
	assert.NotEqual(t, s.ID(), other.ID())
	assert.Nil(t, other.Signer())

	a, err := s.MarketAddress(7)
	require.NoError(t, err)
	b, err := other.MarketAddress(7)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)

	_, err = NewSession(ledger, signer, WithSeqWidth(3))
	assert.Error(t, err)

	_, err = NewSession(ledger, signer, WithProgram(make([]byte, 31)))
	assert.Error(t, err)
}

func TestSession_SeqWidth(t *testing.T) {
	ledger := solana_memory.New()
	hybriddex_memory.Install(ledger, nil, hybriddex.SeqWidth32)

	mints := testutil.GenerateSolanaKeys(t, 2)
	hybriddex_memory.CreateMint(ledger, mints[0], 9)
	hybriddex_memory.CreateMint(ledger, mints[1], 6)

	admin := solana.PrivateKeySigner(testutil.GenerateSolanaKeypair(t))
	ctx := context.Background()

	narrow, err := NewSession(ledger, admin, WithSeqWidth(hybriddex.SeqWidth32), WithCommitment(solana.CommitmentFinalized))
	require.NoError(t, err)
	wide, err := NewSession(ledger, admin, WithCommitment(solana.CommitmentFinalized))
	require.NoError(t, err)

	req, err := narrow.Initialize(ctx, &InitializeArgs{MaxOrdersPerUser: 1, MaxOrdersPerBook: 1})
	require.NoError(t, err)
	_, err = narrow.Submit(ctx, req)
	require.NoError(t, err)

	// A session disagreeing with the deployment derives a market address the
	// program refuses.
	req, err = wide.CreateMarket(ctx, &CreateMarketArgs{BaseMint: mints[0], QuoteMint: mints[1], Name: "wide"})
	require.NoError(t, err)
	_, err = wide.Submit(ctx, req)
	assert.True(t, errors.Is(err, ErrRemoteRejected))

	req, err = narrow.CreateMarket(ctx, &CreateMarketArgs{BaseMint: mints[0], QuoteMint: mints[1], Name: "narrow"})
	require.NoError(t, err)
	_, err = narrow.Submit(ctx, req)
	require.NoError(t, err)

	market, err := narrow.GetMarket(ctx, req.Created["market"])
	require.NoError(t, err)
	assert.Equal(t, "narrow", market.Name)
}

func TestSession_ComputeBudgetAndMemo(t *testing.T) {
	env := setup(t, 5, 10)

	key := testutil.GenerateSolanaKeypair(t)
	s := env.session(key,
		WithComputeBudget(computebudget.Budget{UnitLimit: 200_000, UnitPrice: 1_000}),
		WithMemo("hybrid-dex"),
	)

	req, err := s.CreateMarket(env.ctx, &CreateMarketArgs{BaseMint: env.base, QuoteMint: env.quote, Name: "memo"})
	require.NoError(t, err)
	sig, err := s.Submit(env.ctx, req)
	require.NoError(t, err)
	assert.Equal(t, []string{"hybrid-dex"}, env.ledger.Memos(sig))

	market, err := s.GetMarket(env.ctx, req.Created["market"])
	require.NoError(t, err)
	assert.Equal(t, "memo", market.Name)

	sig, err = env.admin.Submit(env.ctx, mustRequest(t)(env.admin.CreateOpenOrders(env.ctx, req.Created["market"])))
	require.NoError(t, err)
	assert.Empty(t, env.ledger.Memos(sig))

	_, err = NewSession(env.ledger, nil, WithComputeBudget(computebudget.Budget{UnitLimit: computebudget.MaxComputeUnitLimit + 1}))
	assert.Error(t, err)
	_, err = NewSession(env.ledger, nil, WithMemo(string([]byte{0xff})))
	assert.Error(t, err)
}

func mustRequest(t *testing.T) func(*Request, error) *Request {
	return func(req *Request, err error) *Request {
		require.NoError(t, err)
		return req
	}
}

// unconfirmedClient accepts transactions but never reports them as landed.
type unconfirmedClient struct {
	solana.Client

	mu        sync.Mutex
	polls     int
	statusErr error
}

func (c *unconfirmedClient) GetSignatureStatuses(sigs []solana.Signature) ([]*solana.SignatureStatus, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.polls++
	if c.statusErr != nil {
		return nil, c.statusErr
	}
	return make([]*solana.SignatureStatus, len(sigs)), nil
}

func (c *unconfirmedClient) GetSignatureStatus(solana.Signature, solana.Commitment) (*solana.SignatureStatus, error) {
	panic("confirmation must poll single-shot statuses")
}

func (c *unconfirmedClient) Polls() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.polls
}

func TestSubmit_NotConfirmedWithinBudget(t *testing.T) {
	env := setup(t, 5, 10)

	for _, statusErr := range []error{nil, errors.New("connection refused")} {
		client := &unconfirmedClient{Client: env.ledger, statusErr: statusErr}
		s, err := NewSession(client, solana.PrivateKeySigner(testutil.GenerateSolanaKeypair(t)), WithConfirmationStrategies(retry.Limit(3)))
		require.NoError(t, err)

		req, err := s.CreateMarket(env.ctx, &CreateMarketArgs{BaseMint: env.base, QuoteMint: env.quote, Name: "slow"})
		require.NoError(t, err)

		start := time.Now()
		_, err = s.Submit(env.ctx, req)
		assert.True(t, errors.Is(err, ErrNotConfirmed), "%v", err)
		assert.False(t, errors.Is(err, ErrRemoteRejected))
		assert.Less(t, time.Since(start), time.Second)
		assert.Equal(t, 3, client.Polls())

		if statusErr != nil {
			assert.Contains(t, err.Error(), "connection refused")
		}
	}
}

func TestSubmit_ContextCancelsConfirmation(t *testing.T) {
	env := setup(t, 5, 10)

	client := &unconfirmedClient{Client: env.ledger}
	s, err := NewSession(client, solana.PrivateKeySigner(testutil.GenerateSolanaKeypair(t)))
	require.NoError(t, err)

	req, err := s.CreateMarket(env.ctx, &CreateMarketArgs{BaseMint: env.base, QuoteMint: env.quote, Name: "cancelled"})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(env.ctx, 1500*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err = s.Submit(ctx, req)
	assert.True(t, errors.Is(err, ErrNotConfirmed), "%v", err)
	assert.Less(t, time.Since(start), 5*time.Second)
}
