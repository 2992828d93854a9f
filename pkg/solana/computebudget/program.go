package computebudget

import (
	"crypto/ed25519"
	"encoding/binary"

	"github.com/pkg/errors"

	"github.com/code-payments/hybrid-dex-cli/pkg/solana"
)

// ComputeBudget111111111111111111111111111111
var ProgramKey = ed25519.PublicKey{3, 6, 70, 111, 229, 33, 23, 50, 255, 236, 173, 186, 114, 195, 155, 231, 188, 140, 229, 187, 197, 247, 18, 107, 44, 67, 155, 58, 64, 0, 0, 0}

const (
	commandRequestUnits uint8 = iota
	commandRequestHeapFrame
	commandSetComputeUnitLimit
	commandSetComputeUnitPrice
)

// MaxComputeUnitLimit is the most compute a transaction may request.
const MaxComputeUnitLimit = 1_400_000

var ErrInvalidInstruction = errors.New("invalid compute budget instruction")

// Budget is the compute a transaction requests and the priority fee it pays
// for it. Zero values leave the runtime defaults in place.
type Budget struct {
	UnitLimit uint32

	// UnitPrice is in micro-lamports per compute unit.
	UnitPrice uint64
}

// IsZero reports whether b requests nothing beyond the defaults.
func (b Budget) IsZero() bool {
	return b.UnitLimit == 0 && b.UnitPrice == 0
}

func (b Budget) Validate() error {
	if b.UnitLimit > MaxComputeUnitLimit {
		return errors.Errorf("compute unit limit %d exceeds %d", b.UnitLimit, MaxComputeUnitLimit)
	}
	return nil
}

// Instructions returns the instructions requesting b. They belong ahead of
// every other instruction in a transaction.
func (b Budget) Instructions() []solana.Instruction {
	var ixns []solana.Instruction
	if b.UnitLimit > 0 {
		ixns = append(ixns, SetComputeUnitLimit(b.UnitLimit))
	}
	if b.UnitPrice > 0 {
		ixns = append(ixns, SetComputeUnitPrice(b.UnitPrice))
	}
	return ixns
}

// Apply updates b with the request encoded in data, as sent to the compute
// budget program.
func (b *Budget) Apply(data []byte) error {
	if len(data) == 0 {
		return ErrInvalidInstruction
	}

	switch data[0] {
	case commandSetComputeUnitLimit:
		limit, err := ParseSetComputeUnitLimitIxnData(data)
		if err != nil {
			return err
		}
		b.UnitLimit = limit
		return b.Validate()
	case commandSetComputeUnitPrice:
		price, err := ParseSetComputeUnitPriceIxnData(data)
		if err != nil {
			return err
		}
		b.UnitPrice = price
		return nil
	}

	return errors.Wrapf(ErrInvalidInstruction, "unsupported command %d", data[0])
}

func SetComputeUnitLimit(computeUnitLimit uint32) solana.Instruction {
	data := make([]byte, 1+4)
	data[0] = commandSetComputeUnitLimit
	binary.LittleEndian.PutUint32(data[1:], computeUnitLimit)

	return solana.NewInstruction(ProgramKey, data)
}

func SetComputeUnitPrice(computeUnitPrice uint64) solana.Instruction {
	data := make([]byte, 1+8)
	data[0] = commandSetComputeUnitPrice
	binary.LittleEndian.PutUint64(data[1:], computeUnitPrice)

	return solana.NewInstruction(ProgramKey, data)
}

func ParseSetComputeUnitLimitIxnData(data []byte) (uint32, error) {
	if len(data) != 5 || data[0] != commandSetComputeUnitLimit {
		return 0, ErrInvalidInstruction
	}
	return binary.LittleEndian.Uint32(data[1:]), nil
}

func ParseSetComputeUnitPriceIxnData(data []byte) (uint64, error) {
	if len(data) != 9 || data[0] != commandSetComputeUnitPrice {
		return 0, ErrInvalidInstruction
	}
	return binary.LittleEndian.Uint64(data[1:]), nil
}
