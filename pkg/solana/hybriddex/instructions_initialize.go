package hybriddex

import (
	"crypto/ed25519"

	"github.com/code-payments/hybrid-dex-cli/pkg/solana"
	"github.com/code-payments/hybrid-dex-cli/pkg/solana/binary"
)

const (
	InitializeInstructionArgsSize = (8 + // max_orders_per_user
		8) // max_orders_per_book

	initializeInstructionAccountsCount = 4
)

type InitializeInstructionArgs struct {
	MaxOrdersPerUser uint64
	MaxOrdersPerBook uint64
}

type InitializeInstructionAccounts struct {
	Program      ed25519.PublicKey
	Admin        ed25519.PublicKey
	GlobalConfig ed25519.PublicKey
}

func NewInitializeInstruction(
	accounts *InitializeInstructionAccounts,
	args *InitializeInstructionArgs,
) solana.Instruction {
	var offset int

	// Serialize instruction arguments
	data := make([]byte, 8+InitializeInstructionArgsSize)

	putInstructionType(data, InstructionTypeInitialize, &offset)
	binary.PutUint64(data[offset:], args.MaxOrdersPerUser, &offset)
	binary.PutUint64(data[offset:], args.MaxOrdersPerBook, &offset)

	return solana.Instruction{
		Program: programOrDefault(accounts.Program),

		// Instruction args
		Data: data,

		// Instruction accounts
		Accounts: []solana.AccountMeta{
			{
				PublicKey:  accounts.Admin,
				IsWritable: true,
				IsSigner:   true,
			},
			{
				PublicKey:  accounts.GlobalConfig,
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
		},
	}
}

func ParseInitializeInstruction(program ed25519.PublicKey, ix solana.Instruction) (*InitializeInstructionAccounts, *InitializeInstructionArgs, error) {
	if _, err := checkInstruction(program, ix, initializeInstructionAccountsCount, InstructionTypeInitialize); err != nil {
		return nil, nil, err
	}
	if err := checkArgsSize(ix.Data, InitializeInstructionArgsSize); err != nil {
		return nil, nil, err
	}

	var args InitializeInstructionArgs
	offset := 8
	binary.GetUint64(ix.Data[offset:], &args.MaxOrdersPerUser, &offset)
	binary.GetUint64(ix.Data[offset:], &args.MaxOrdersPerBook, &offset)

	return &InitializeInstructionAccounts{
		Program:      ix.Program,
		Admin:        accountKey(ix, 0),
		GlobalConfig: accountKey(ix, 1),
	}, &args, nil
}
