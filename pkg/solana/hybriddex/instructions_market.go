package hybriddex

import (
	"crypto/ed25519"

	"github.com/code-payments/hybrid-dex-cli/pkg/solana"
	"github.com/code-payments/hybrid-dex-cli/pkg/solana/binary"
)

const (
	CloseMarketInstructionArgsSize = 8 // seed

	marketInstructionAccountsCount = 9
)

type CreateMarketInstructionArgs struct {
	Name string
}

type CloseMarketInstructionArgs struct {
	Seed uint64
}

// MarketInstructionAccounts are shared by create_market and close_market.
type MarketInstructionAccounts struct {
	Program      ed25519.PublicKey
	Authority    ed25519.PublicKey
	GlobalConfig ed25519.PublicKey
	Market       ed25519.PublicKey
	BaseMint     ed25519.PublicKey
	QuoteMint    ed25519.PublicKey
	Bids         ed25519.PublicKey
	Asks         ed25519.PublicKey
}

func (accounts *MarketInstructionAccounts) metas() []solana.AccountMeta {
	return []solana.AccountMeta{
		{
			PublicKey:  accounts.Authority,
			IsWritable: true,
			IsSigner:   true,
		},
		{
			PublicKey:  accounts.GlobalConfig,
			IsWritable: true,
			IsSigner:   false,
		},
		{
			PublicKey:  accounts.Market,
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

// NewCreateMarketInstruction serializes the name as a Borsh string. The
// program rejects names longer than MaxMarketNameLength.
func NewCreateMarketInstruction(
	accounts *MarketInstructionAccounts,
	args *CreateMarketInstructionArgs,
) solana.Instruction {
	var offset int

	data := make([]byte, 8+4+len(args.Name))

	putInstructionType(data, InstructionTypeCreateMarket, &offset)
	binary.PutUint32(data[offset:], uint32(len(args.Name)), &offset)
	copy(data[offset:], args.Name)

	return solana.Instruction{
		Program:  programOrDefault(accounts.Program),
		Data:     data,
		Accounts: accounts.metas(),
	}
}

func ParseCreateMarketInstruction(program ed25519.PublicKey, ix solana.Instruction) (*MarketInstructionAccounts, *CreateMarketInstructionArgs, error) {
	if _, err := checkInstruction(program, ix, marketInstructionAccountsCount, InstructionTypeCreateMarket); err != nil {
		return nil, nil, err
	}
	if err := checkArgsSize(ix.Data, 4); err != nil {
		return nil, nil, err
	}

	var length uint32
	offset := 8
	binary.GetUint32(ix.Data[offset:], &length, &offset)
	if uint64(len(ix.Data)) < uint64(offset)+uint64(length) {
		return nil, nil, ErrInvalidInstructionData
	}

	args := &CreateMarketInstructionArgs{
		Name: string(ix.Data[offset : offset+int(length)]),
	}
	return parseMarketAccounts(ix), args, nil
}

func NewCloseMarketInstruction(
	accounts *MarketInstructionAccounts,
	args *CloseMarketInstructionArgs,
) solana.Instruction {
	var offset int

	data := make([]byte, 8+CloseMarketInstructionArgsSize)

	putInstructionType(data, InstructionTypeCloseMarket, &offset)
	binary.PutUint64(data[offset:], args.Seed, &offset)

	return solana.Instruction{
		Program:  programOrDefault(accounts.Program),
		Data:     data,
		Accounts: accounts.metas(),
	}
}

func ParseCloseMarketInstruction(program ed25519.PublicKey, ix solana.Instruction) (*MarketInstructionAccounts, *CloseMarketInstructionArgs, error) {
	if _, err := checkInstruction(program, ix, marketInstructionAccountsCount, InstructionTypeCloseMarket); err != nil {
		return nil, nil, err
	}
	if err := checkArgsSize(ix.Data, CloseMarketInstructionArgsSize); err != nil {
		return nil, nil, err
	}

	var args CloseMarketInstructionArgs
	offset := 8
	binary.GetUint64(ix.Data[offset:], &args.Seed, &offset)

	return parseMarketAccounts(ix), &args, nil
}

func parseMarketAccounts(ix solana.Instruction) *MarketInstructionAccounts {
	return &MarketInstructionAccounts{
		Program:      ix.Program,
		Authority:    accountKey(ix, 0),
		GlobalConfig: accountKey(ix, 1),
		Market:       accountKey(ix, 2),
		BaseMint:     accountKey(ix, 3),
		QuoteMint:    accountKey(ix, 4),
		Bids:         accountKey(ix, 5),
		Asks:         accountKey(ix, 6),
	}
}
