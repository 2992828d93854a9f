package dex

import (
	"math/big"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/code-payments/hybrid-dex-cli/pkg/solana/hybriddex"
)

// ScaleAmount converts a human readable amount into atoms of a mint with the
// given decimals. Values with more fractional digits than decimals are
// rejected instead of rounded.
func ScaleAmount(value string, decimals uint8) (uint64, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return 0, errors.Wrapf(ErrInvalidAmount, "%q is not a number", value)
	}
	if d.IsNegative() {
		return 0, errors.Wrapf(ErrInvalidAmount, "%q is negative", value)
	}

	scaled := d.Shift(int32(decimals))
	if !scaled.Equal(scaled.Truncate(0)) {
		return 0, errors.Wrapf(ErrInvalidAmount, "%q has more than %d decimal places", value, decimals)
	}

	atoms := scaled.BigInt()
	if !atoms.IsUint64() {
		return 0, errors.Wrapf(ErrInvalidAmount, "%q overflows a u64 amount", value)
	}
	return atoms.Uint64(), nil
}

// FormatAmount renders atoms of a mint with the given decimals.
func FormatAmount(atoms uint64, decimals uint8) string {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(atoms), -int32(decimals)).String()
}

// QuantityDecimals is the decimals of the mint an order on side escrows:
// the quote mint for bids and the base mint for asks.
func QuantityDecimals(side hybriddex.Side, market *hybriddex.MarketAccount) uint8 {
	if side == hybriddex.SideBid {
		return market.QuoteDecimal
	}
	return market.BaseDecimal
}
