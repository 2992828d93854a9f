package hybriddex

import (
	"crypto/ed25519"

	"github.com/code-payments/hybrid-dex-cli/pkg/solana"
	"github.com/code-payments/hybrid-dex-cli/pkg/solana/binary"
)

const (
	PlaceOrderInstructionArgsSize = (1 + // side
		8 + // price
		8) // quantity

	placeOrderInstructionAccountsCount = 16
)

type PlaceOrderInstructionArgs struct {
	Side     Side
	Price    uint64
	Quantity uint64
}

type PlaceOrderInstructionAccounts struct {
	Program        ed25519.PublicKey
	Maker          ed25519.PublicKey
	GlobalConfig   ed25519.PublicKey
	Market         ed25519.PublicKey
	UserOpenOrders ed25519.PublicKey
	BaseMint       ed25519.PublicKey
	QuoteMint      ed25519.PublicKey
	UserBase       ed25519.PublicKey
	UserQuote      ed25519.PublicKey
	BaseVault      ed25519.PublicKey
	QuoteVault     ed25519.PublicKey
	Bids           ed25519.PublicKey
	Asks           ed25519.PublicKey
}

func NewPlaceOrderInstruction(
	accounts *PlaceOrderInstructionAccounts,
	args *PlaceOrderInstructionArgs,
) solana.Instruction {
	var offset int

	// Serialize instruction arguments
	data := make([]byte, 8+PlaceOrderInstructionArgsSize)

	putInstructionType(data, InstructionTypePlaceOrder, &offset)
	binary.PutUint8(data[offset:], uint8(args.Side), &offset)
	binary.PutUint64(data[offset:], args.Price, &offset)
	binary.PutUint64(data[offset:], args.Quantity, &offset)

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
				PublicKey:  accounts.GlobalConfig,
				IsWritable: false,
				IsSigner:   false,
			},
			{
				PublicKey:  accounts.Market,
				IsWritable: true,
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
				PublicKey:  accounts.UserBase,
				IsWritable: true,
				IsSigner:   false,
			},
			{
				PublicKey:  accounts.UserQuote,
				IsWritable: true,
				IsSigner:   false,
			},
			{
				PublicKey:  accounts.BaseVault,
				IsWritable: true,
				IsSigner:   false,
			},
			{
				PublicKey:  accounts.QuoteVault,
				IsWritable: true,
				IsSigner:   false,
			},
			{
				PublicKey:  accounts.Bids,
				IsWritable: true,
				IsSigner:   false,
			},
			{
				PublicKey:  accounts.Asks,
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

// ParsePlaceOrderInstruction does not validate the side; the program
// rejects unknown sides with ProgramErrorInvalidSide.
func ParsePlaceOrderInstruction(program ed25519.PublicKey, ix solana.Instruction) (*PlaceOrderInstructionAccounts, *PlaceOrderInstructionArgs, error) {
	if _, err := checkInstruction(program, ix, placeOrderInstructionAccountsCount, InstructionTypePlaceOrder); err != nil {
		return nil, nil, err
	}
	if err := checkArgsSize(ix.Data, PlaceOrderInstructionArgsSize); err != nil {
		return nil, nil, err
	}

	var args PlaceOrderInstructionArgs
	var side uint8
	offset := 8
	binary.GetUint8(ix.Data[offset:], &side, &offset)
	binary.GetUint64(ix.Data[offset:], &args.Price, &offset)
	binary.GetUint64(ix.Data[offset:], &args.Quantity, &offset)
	args.Side = Side(side)

	return &PlaceOrderInstructionAccounts{
		Program:        ix.Program,
		Maker:          accountKey(ix, 0),
		GlobalConfig:   accountKey(ix, 1),
		Market:         accountKey(ix, 2),
		UserOpenOrders: accountKey(ix, 3),
		BaseMint:       accountKey(ix, 4),
		QuoteMint:      accountKey(ix, 5),
		UserBase:       accountKey(ix, 6),
		UserQuote:      accountKey(ix, 7),
		BaseVault:      accountKey(ix, 8),
		QuoteVault:     accountKey(ix, 9),
		Bids:           accountKey(ix, 10),
		Asks:           accountKey(ix, 11),
	}, &args, nil
}
