package hybriddex

import (
	"crypto/ed25519"

	"github.com/code-payments/hybrid-dex-cli/pkg/solana"
	"github.com/code-payments/hybrid-dex-cli/pkg/solana/binary"
)

const (
	CancelOrderInstructionArgsSize = (8 + // seed
		8) // order_id

	cancelOrderInstructionAccountsCount = 12
)

// CancelOrderInstructionArgs selects cancel_buy_order or cancel_sell_order
// through Side. Only Seed and OrderID are serialized.
type CancelOrderInstructionArgs struct {
	Side    Side
	Seed    uint64
	OrderID uint64
}

// CancelOrderInstructionAccounts name the escrow accounts of the cancelled
// side: the quote mint for bids and the base mint for asks.
type CancelOrderInstructionAccounts struct {
	Program        ed25519.PublicKey
	Maker          ed25519.PublicKey
	Market         ed25519.PublicKey
	UserOpenOrders ed25519.PublicKey
	BaseMint       ed25519.PublicKey
	QuoteMint      ed25519.PublicKey
	UserEscrow     ed25519.PublicKey
	EscrowVault    ed25519.PublicKey
	Book           ed25519.PublicKey
}

func NewCancelOrderInstruction(
	accounts *CancelOrderInstructionAccounts,
	args *CancelOrderInstructionArgs,
) solana.Instruction {
	var offset int

	// Serialize instruction arguments
	data := make([]byte, 8+CancelOrderInstructionArgsSize)

	putInstructionType(data, args.Side.CancelInstruction(), &offset)
	binary.PutUint64(data[offset:], args.Seed, &offset)
	binary.PutUint64(data[offset:], args.OrderID, &offset)

	return solana.Instruction{
		Program: programOrDefault(accounts.Program),

		// Instruction args
		Data: data,

		// Instruction accounts
		Accounts: []solana.AccountMeta{
			{
				PublicKey:  accounts.Maker,
				IsWritable: true,
				IsSigner:   true,
			},
			{
				PublicKey:  accounts.Market,
				IsWritable: false,
				IsSigner:   false,
			},
			{
				PublicKey:  accounts.UserOpenOrders,
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
				PublicKey:  accounts.UserEscrow,
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
		},
	}
}

func ParseCancelOrderInstruction(program ed25519.PublicKey, ix solana.Instruction) (*CancelOrderInstructionAccounts, *CancelOrderInstructionArgs, error) {
	t, err := checkInstruction(
		program,
		ix,
		cancelOrderInstructionAccountsCount,
		InstructionTypeCancelBuyOrder,
		InstructionTypeCancelSellOrder,
	)
	if err != nil {
		return nil, nil, err
	}
	if err := checkArgsSize(ix.Data, CancelOrderInstructionArgsSize); err != nil {
		return nil, nil, err
	}

	var args CancelOrderInstructionArgs
	args.Side, _ = t.Side()
	offset := 8
	binary.GetUint64(ix.Data[offset:], &args.Seed, &offset)
	binary.GetUint64(ix.Data[offset:], &args.OrderID, &offset)

	return &CancelOrderInstructionAccounts{
		Program:        ix.Program,
		Maker:          accountKey(ix, 0),
		Market:         accountKey(ix, 1),
		UserOpenOrders: accountKey(ix, 2),
		BaseMint:       accountKey(ix, 3),
		QuoteMint:      accountKey(ix, 4),
		UserEscrow:     accountKey(ix, 5),
		EscrowVault:    accountKey(ix, 6),
		Book:           accountKey(ix, 7),
	}, &args, nil
}
