package hybriddex

import (
	"crypto/ed25519"

	"github.com/code-payments/hybrid-dex-cli/pkg/solana"
	"github.com/code-payments/hybrid-dex-cli/pkg/solana/binary"
)

const (
	TakeOrderInstructionArgsSize = (8 + // seed
		8) // order_id
	PartialTakeOrderInstructionArgsSize = (TakeOrderInstructionArgsSize +
		8) // amount

	takeOrderInstructionAccountsCount = 16
)

// TakeOrderInstructionArgs selects take_buy_order or take_sell_order through
// Side.
type TakeOrderInstructionArgs struct {
	Side    Side
	Seed    uint64
	OrderID uint64
}

// PartialTakeOrderInstructionArgs fill Amount escrowed atoms of an order.
type PartialTakeOrderInstructionArgs struct {
	Side    Side
	Seed    uint64
	OrderID uint64
	Amount  uint64
}

// TakeOrderInstructionAccounts are shared by full and partial takes. The
// escrow mint is the one the maker locked; the counter mint is the one the
// taker pays with.
type TakeOrderInstructionAccounts struct {
	Program         ed25519.PublicKey
	Taker           ed25519.PublicKey
	Maker           ed25519.PublicKey
	Market          ed25519.PublicKey
	MakerOpenOrders ed25519.PublicKey
	TakerOpenOrders ed25519.PublicKey
	BaseMint        ed25519.PublicKey
	QuoteMint       ed25519.PublicKey
	MakerCounter    ed25519.PublicKey
	TakerCounter    ed25519.PublicKey
	TakerEscrow     ed25519.PublicKey
	EscrowVault     ed25519.PublicKey
	Book            ed25519.PublicKey
}

func (accounts *TakeOrderInstructionAccounts) metas() []solana.AccountMeta {
	return []solana.AccountMeta{
		{
			PublicKey:  accounts.Taker,
			IsWritable: true,
			IsSigner:   true,
		},
		{
			PublicKey:  accounts.Maker,
			IsWritable: false,
			IsSigner:   false,
		},
		{
			PublicKey:  accounts.Market,
			IsWritable: true,
			IsSigner:   false,
		},
		{
			PublicKey:  accounts.MakerOpenOrders,
			IsWritable: true,
			IsSigner:   false,
		},
		{
			PublicKey:  accounts.TakerOpenOrders,
			IsWritable: true,
			IsSigner:   false,
		},
		{
			PublicKey:  accounts.BaseMint,
			IsWritable: false,
			IsSigner:   false,
		},
		{
			PublicKey:  accounts.QuoteMint,
			IsWritable: false,
			IsSigner:   false,
		},
		{
			PublicKey:  accounts.MakerCounter,
			IsWritable: true,
			IsSigner:   false,
		},
		{
			PublicKey:  accounts.TakerCounter,
			IsWritable: true,
			IsSigner:   false,
		},
		{
			PublicKey:  accounts.TakerEscrow,
			IsWritable: true,
			IsSigner:   false,
		},
		{
			PublicKey:  accounts.EscrowVault,
			IsWritable: true,
			IsSigner:   false,
		},
		{
			PublicKey:  accounts.Book,
			IsWritable: true,
			IsSigner:   false,
		},
		{
			PublicKey:  ASSOCIATED_TOKEN_PROGRAM_ID,
			IsWritable: false,
			IsSigner:   false,
		},
		{
			PublicKey:  SPL_TOKEN_PROGRAM_ID,
			IsWritable: false,
			IsSigner:   false,
		},
		{
			PublicKey:  SYSTEM_PROGRAM_ID,
			IsWritable: false,
			IsSigner:   false,
		},
		{
			PublicKey:  SYSVAR_RENT_PUBKEY,
			IsWritable: false,
			IsSigner:   false,
		},
	}
}

func NewTakeOrderInstruction(
	accounts *TakeOrderInstructionAccounts,
	args *TakeOrderInstructionArgs,
) solana.Instruction {
	var offset int

	data := make([]byte, 8+TakeOrderInstructionArgsSize)

	putInstructionType(data, args.Side.TakeInstruction(), &offset)
	binary.PutUint64(data[offset:], args.Seed, &offset)
	binary.PutUint64(data[offset:], args.OrderID, &offset)

	return solana.Instruction{
		Program:  programOrDefault(accounts.Program),
		Data:     data,
		Accounts: accounts.metas(),
	}
}

func NewPartialTakeOrderInstruction(
	accounts *TakeOrderInstructionAccounts,
	args *PartialTakeOrderInstructionArgs,
) solana.Instruction {
	var offset int

	data := make([]byte, 8+PartialTakeOrderInstructionArgsSize)

	putInstructionType(data, args.Side.PartialTakeInstruction(), &offset)
	binary.PutUint64(data[offset:], args.Seed, &offset)
	binary.PutUint64(data[offset:], args.OrderID, &offset)
	binary.PutUint64(data[offset:], args.Amount, &offset)

	return solana.Instruction{
		Program:  programOrDefault(accounts.Program),
		Data:     data,
		Accounts: accounts.metas(),
	}
}

// ParseTakeOrderInstruction parses both full and partial takes. Amount is
// zero for a full take.
func ParseTakeOrderInstruction(program ed25519.PublicKey, ix solana.Instruction) (*TakeOrderInstructionAccounts, *PartialTakeOrderInstructionArgs, bool, error) {
	t, err := checkInstruction(
		program,
		ix,
		takeOrderInstructionAccountsCount,
		InstructionTypeTakeBuyOrder,
		InstructionTypeTakeSellOrder,
		InstructionTypePartialTakeBuyOrder,
		InstructionTypePartialTakeSellOrder,
	)
	if err != nil {
		return nil, nil, false, err
	}

	partial := t == InstructionTypePartialTakeBuyOrder || t == InstructionTypePartialTakeSellOrder

	size := TakeOrderInstructionArgsSize
	if partial {
		size = PartialTakeOrderInstructionArgsSize
	}
	if err := checkArgsSize(ix.Data, size); err != nil {
		return nil, nil, false, err
	}

	var args PartialTakeOrderInstructionArgs
	args.Side, _ = t.Side()
	offset := 8
	binary.GetUint64(ix.Data[offset:], &args.Seed, &offset)
	binary.GetUint64(ix.Data[offset:], &args.OrderID, &offset)
	if partial {
		binary.GetUint64(ix.Data[offset:], &args.Amount, &offset)
	}

	return &TakeOrderInstructionAccounts{
		Program:         ix.Program,
		Taker:           accountKey(ix, 0),
		Maker:           accountKey(ix, 1),
		Market:          accountKey(ix, 2),
		MakerOpenOrders: accountKey(ix, 3),
		TakerOpenOrders: accountKey(ix, 4),
		BaseMint:        accountKey(ix, 5),
		QuoteMint:       accountKey(ix, 6),
		MakerCounter:    accountKey(ix, 7),
		TakerCounter:    accountKey(ix, 8),
		TakerEscrow:     accountKey(ix, 9),
		EscrowVault:     accountKey(ix, 10),
		Book:            accountKey(ix, 11),
	}, &args, partial, nil
}
