package hybriddex

import (
	"crypto/ed25519"
	"strings"

	"github.com/pkg/errors"
)

// ErrInvalidSide is returned for any side other than bid or ask.
var ErrInvalidSide = errors.New("invalid side")

// Side selects one of the two books of a market.
type Side uint8

const (
	SideBid Side = iota
	SideAsk
)

var (
	BidBookPrefix = []byte("bid-book")
	AskBookPrefix = []byte("ask-book")
)

// ParseSide accepts bid/buy or ask/sell.
func ParseSide(value string) (Side, error) {
	switch strings.ToLower(value) {
	case "bid", "buy":
		return SideBid, nil
	case "ask", "sell":
		return SideAsk, nil
	}
	return 0, errors.Wrapf(ErrInvalidSide, "%q", value)
}

func (s Side) Validate() error {
	if s != SideBid && s != SideAsk {
		return errors.Wrapf(ErrInvalidSide, "%d", uint8(s))
	}
	return nil
}

func (s Side) String() string {
	switch s {
	case SideBid:
		return "bid"
	case SideAsk:
		return "ask"
	}
	return "unknown"
}

// sideVariant holds everything that differs between the two books. Callers
// must Validate the side before dispatching through it.
type sideVariant interface {
	bookPrefix() []byte

	// escrowMint is the mint a maker locks when resting an order; the taker
	// receives it.
	escrowMint(base, quote ed25519.PublicKey) ed25519.PublicKey
	// counterMint is the mint the taker pays the maker with.
	counterMint(base, quote ed25519.PublicKey) ed25519.PublicKey

	escrowDeposit(u *UserMarketOrdersAccount) *uint64

	// precedes reports whether a ranks strictly ahead of b.
	precedes(a, b *OpenedOrder) bool

	counterAmount(filled, price uint64, baseDecimal uint8) (uint64, error)
	// volumes splits an escrowed and counter amount into base and quote.
	volumes(escrowed, counter uint64) (base, quote uint64)

	cancelInstruction() InstructionType
	takeInstruction() InstructionType
	partialTakeInstruction() InstructionType
}

func (s Side) variant() sideVariant {
	switch s {
	case SideBid:
		return bidSide{}
	case SideAsk:
		return askSide{}
	}
	panic(errors.Wrapf(ErrInvalidSide, "%d", uint8(s)))
}

// BookPrefix is the seed label of the side's book.
func (s Side) BookPrefix() []byte {
	return s.variant().bookPrefix()
}

// EscrowMint returns the mint escrowed by orders resting on this side.
func (s Side) EscrowMint(base, quote ed25519.PublicKey) ed25519.PublicKey {
	return s.variant().escrowMint(base, quote)
}

// CounterMint returns the mint a taker delivers when filling this side.
func (s Side) CounterMint(base, quote ed25519.PublicKey) ed25519.PublicKey {
	return s.variant().counterMint(base, quote)
}

// EscrowDeposit points at the deposit total this side's orders count against.
func (s Side) EscrowDeposit(u *UserMarketOrdersAccount) *uint64 {
	return s.variant().escrowDeposit(u)
}

// Precedes reports whether a has priority over b in this side's book.
func (s Side) Precedes(a, b *OpenedOrder) bool {
	return s.variant().precedes(a, b)
}

// Volumes splits a fill into base and quote atoms.
func (s Side) Volumes(escrowed, counter uint64) (base, quote uint64) {
	return s.variant().volumes(escrowed, counter)
}

func (s Side) CancelInstruction() InstructionType {
	return s.variant().cancelInstruction()
}

func (s Side) TakeInstruction() InstructionType {
	return s.variant().takeInstruction()
}

func (s Side) PartialTakeInstruction() InstructionType {
	return s.variant().partialTakeInstruction()
}

type bidSide struct{}

func (bidSide) bookPrefix() []byte { return BidBookPrefix }

func (bidSide) escrowMint(_, quote ed25519.PublicKey) ed25519.PublicKey { return quote }

func (bidSide) counterMint(base, _ ed25519.PublicKey) ed25519.PublicKey { return base }

func (bidSide) escrowDeposit(u *UserMarketOrdersAccount) *uint64 { return &u.QuoteDepositTotal }

func (bidSide) precedes(a, b *OpenedOrder) bool {
	if a.Price != b.Price {
		return a.Price > b.Price
	}
	return a.OrderID < b.OrderID
}

// Bid quantities are quote atoms; the taker delivers base atoms.
func (bidSide) counterAmount(filled, price uint64, baseDecimal uint8) (uint64, error) {
	return mulDiv(u64(filled), pow10(baseDecimal), u64(price))
}

func (bidSide) volumes(escrowed, counter uint64) (uint64, uint64) { return counter, escrowed }

func (bidSide) cancelInstruction() InstructionType { return InstructionTypeCancelBuyOrder }

func (bidSide) takeInstruction() InstructionType { return InstructionTypeTakeBuyOrder }

func (bidSide) partialTakeInstruction() InstructionType { return InstructionTypePartialTakeBuyOrder }

type askSide struct{}

func (askSide) bookPrefix() []byte { return AskBookPrefix }

func (askSide) escrowMint(base, _ ed25519.PublicKey) ed25519.PublicKey { return base }

func (askSide) counterMint(_, quote ed25519.PublicKey) ed25519.PublicKey { return quote }

func (askSide) escrowDeposit(u *UserMarketOrdersAccount) *uint64 { return &u.BaseDepositTotal }

func (askSide) precedes(a, b *OpenedOrder) bool {
	if a.Price != b.Price {
		return a.Price < b.Price
	}
	return a.OrderID < b.OrderID
}

// Ask quantities are base atoms; the taker delivers quote atoms.
func (askSide) counterAmount(filled, price uint64, baseDecimal uint8) (uint64, error) {
	return mulDiv(u64(filled), u64(price), pow10(baseDecimal))
}

func (askSide) volumes(escrowed, counter uint64) (uint64, uint64) { return escrowed, counter }

func (askSide) cancelInstruction() InstructionType { return InstructionTypeCancelSellOrder }

func (askSide) takeInstruction() InstructionType { return InstructionTypeTakeSellOrder }

func (askSide) partialTakeInstruction() InstructionType { return InstructionTypePartialTakeSellOrder }
