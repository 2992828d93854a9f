package dex

import (
	"crypto/ed25519"
	"time"

	"github.com/google/uuid"
	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/code-payments/hybrid-dex-cli/pkg/retry"
	"github.com/code-payments/hybrid-dex-cli/pkg/retry/backoff"
	"github.com/code-payments/hybrid-dex-cli/pkg/solana"
	"github.com/code-payments/hybrid-dex-cli/pkg/solana/computebudget"
	"github.com/code-payments/hybrid-dex-cli/pkg/solana/hybriddex"
	"github.com/code-payments/hybrid-dex-cli/pkg/solana/memo"
	"github.com/code-payments/hybrid-dex-cli/pkg/solana/token"
)

const (
	metricsStructName = "dex.session"
)

// Session binds the ledger client, signing identity and program
// configuration every read and write goes through. Sessions share no state
// with each other.
type Session struct {
	id  uuid.UUID
	log *logrus.Entry

	sc         solana.Client
	tokens     *token.Client
	signer     solana.Signer
	program    ed25519.PublicKey
	seqWidth   hybriddex.SeqWidth
	commitment solana.Commitment

	budget computebudget.Budget
	memo   string

	confirmation []retry.Strategy
}

type Option func(*Session)

// WithProgram targets a program deployed at a non-default address.
func WithProgram(program ed25519.PublicKey) Option {
	return func(s *Session) {
		s.program = program
	}
}

// WithSeqWidth sets the width of the market sequence number seed.
func WithSeqWidth(width hybriddex.SeqWidth) Option {
	return func(s *Session) {
		s.seqWidth = width
	}
}

// WithCommitment sets the commitment used for reads and confirmation.
func WithCommitment(commitment solana.Commitment) Option {
	return func(s *Session) {
		s.commitment = commitment
	}
}

// WithConfirmationStrategies overrides how submitted transactions are polled
// until they reach the session's commitment.
func WithConfirmationStrategies(strategies ...retry.Strategy) Option {
	return func(s *Session) {
		s.confirmation = strategies
	}
}

// WithComputeBudget requests compute units and a priority fee for every
// submitted transaction.
func WithComputeBudget(budget computebudget.Budget) Option {
	return func(s *Session) {
		s.budget = budget
	}
}

// WithMemo attaches a memo to every submitted transaction.
func WithMemo(text string) Option {
	return func(s *Session) {
		s.memo = text
	}
}

// NewSession returns a session over sc. A nil signer yields a read-only
// session.
func NewSession(sc solana.Client, signer solana.Signer, opts ...Option) (*Session, error) {
	s := &Session{
		id:         uuid.New(),
		sc:         sc,
		signer:     signer,
		program:    hybriddex.PROGRAM_ID,
		seqWidth:   hybriddex.DefaultSeqWidth,
		commitment: solana.CommitmentConfirmed,
		confirmation: []retry.Strategy{
			retry.Limit(30),
			retry.Backoff(backoff.Constant(time.Second), time.Second),
		},
	}
	for _, opt := range opts {
		opt(s)
	}

	if len(s.program) != ed25519.PublicKeySize {
		return nil, errors.Errorf("invalid program id length: %d", len(s.program))
	}
	if err := s.seqWidth.Validate(); err != nil {
		return nil, err
	}
	if err := s.budget.Validate(); err != nil {
		return nil, err
	}
	if s.memo != "" {
		if err := memo.Validate([]byte(s.memo)); err != nil {
			return nil, err
		}
	}

	s.tokens = token.NewClient(sc, s.commitment)

	fields := logrus.Fields{
		"session":   s.id.String(),
		"program":   base58.Encode(s.program),
		"seq_width": int(s.seqWidth),
	}
	if signer != nil {
		fields["signer"] = base58.Encode(signer.PublicKey())
	}
	s.log = logrus.StandardLogger().WithField("type", "dex/session").WithFields(fields)

	return s, nil
}

func (s *Session) ID() uuid.UUID {
	return s.id
}

func (s *Session) Program() ed25519.PublicKey {
	return s.program
}

func (s *Session) SeqWidth() hybriddex.SeqWidth {
	return s.seqWidth
}

func (s *Session) Commitment() solana.Commitment {
	return s.commitment
}

// Signer returns the session's signer, or nil for read-only sessions.
func (s *Session) Signer() solana.Signer {
	return s.signer
}

func (s *Session) signerKey() (ed25519.PublicKey, error) {
	if s.signer == nil {
		return nil, ErrNoSigner
	}
	return s.signer.PublicKey(), nil
}

func (s *Session) GlobalConfigAddress() (ed25519.PublicKey, error) {
	address, _, err := hybriddex.GetGlobalConfigAddress(&hybriddex.GetGlobalConfigAddressArgs{
		Program: s.program,
	})
	return address, err
}

func (s *Session) MarketAddress(seq uint64) (ed25519.PublicKey, error) {
	address, _, err := hybriddex.GetMarketAddress(&hybriddex.GetMarketAddressArgs{
		Program:  s.program,
		Seq:      seq,
		SeqWidth: s.seqWidth,
	})
	return address, err
}

func (s *Session) BookAddress(market ed25519.PublicKey, side hybriddex.Side) (ed25519.PublicKey, error) {
	address, _, err := hybriddex.GetBookAddress(&hybriddex.GetBookAddressArgs{
		Program: s.program,
		Market:  market,
		Side:    side,
	})
	return address, err
}

func (s *Session) UserMarketOrdersAddress(market, user ed25519.PublicKey) (ed25519.PublicKey, error) {
	address, _, err := hybriddex.GetUserMarketOrdersAddress(&hybriddex.GetUserMarketOrdersAddressArgs{
		Program: s.program,
		Market:  market,
		User:    user,
	})
	return address, err
}
