package hybriddex

import (
	"math/big"

	"github.com/pkg/errors"
)

var (
	ErrZeroPrice          = errors.New("price must be positive")
	ErrSettlementOverflow = errors.New("settlement amount overflows u64")

	// ErrZeroSettlement indicates a fill too small for the taker to pay at
	// least one atom in return.
	ErrZeroSettlement = errors.New("fill settles for zero counter atoms")
)

// Settlement is what a take of Filled escrowed atoms moves between the
// parties.
type Settlement struct {
	Side Side

	// Filled is taken from the maker's escrow and delivered to the taker.
	Filled uint64
	// Counter is paid by the taker to the maker.
	Counter uint64

	BaseVolume  uint64
	QuoteVolume uint64
}

// Settle computes the settlement for filling filled atoms of an order.
// Prices are quote atoms per whole base token.
func Settle(side Side, order *OpenedOrder, filled uint64, baseDecimal uint8) (*Settlement, error) {
	if err := side.Validate(); err != nil {
		return nil, err
	}
	if order.Price == 0 {
		return nil, ErrZeroPrice
	}

	counter, err := side.variant().counterAmount(filled, order.Price, baseDecimal)
	if err != nil {
		return nil, err
	}
	if counter == 0 {
		return nil, errors.Wrapf(ErrZeroSettlement, "%d atoms at price %d", filled, order.Price)
	}

	base, quote := side.Volumes(filled, counter)
	return &Settlement{
		Side:        side,
		Filled:      filled,
		Counter:     counter,
		BaseVolume:  base,
		QuoteVolume: quote,
	}, nil
}

func u64(v uint64) *big.Int {
	return new(big.Int).SetUint64(v)
}

func pow10(exp uint8) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(exp)), nil)
}

// mulDiv computes floor(x*y/z) without intermediate overflow.
func mulDiv(x, y, z *big.Int) (uint64, error) {
	if z.Sign() == 0 {
		return 0, ErrZeroPrice
	}

	res := new(big.Int).Mul(x, y)
	res.Quo(res, z)
	if !res.IsUint64() {
		return 0, ErrSettlementOverflow
	}
	return res.Uint64(), nil
}
