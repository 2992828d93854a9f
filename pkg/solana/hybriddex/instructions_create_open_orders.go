package hybriddex

import (
	"crypto/ed25519"

	"github.com/code-payments/hybrid-dex-cli/pkg/solana"
)

const createOpenOrdersInstructionAccountsCount = 5

type CreateOpenOrdersInstructionAccounts struct {
	Program        ed25519.PublicKey
	User           ed25519.PublicKey
	Market         ed25519.PublicKey
	UserOpenOrders ed25519.PublicKey
}

func NewCreateOpenOrdersInstruction(
	accounts *CreateOpenOrdersInstructionAccounts,
) solana.Instruction {
	var offset int

	data := make([]byte, 8)
	putInstructionType(data, InstructionTypeCreateOpenOrders, &offset)

	return solana.Instruction{
		Program: programOrDefault(accounts.Program),

		Data: data,

		Accounts: []solana.AccountMeta{
			{
				PublicKey:  accounts.User,
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

func ParseCreateOpenOrdersInstruction(program ed25519.PublicKey, ix solana.Instruction) (*CreateOpenOrdersInstructionAccounts, error) {
	if _, err := checkInstruction(program, ix, createOpenOrdersInstructionAccountsCount, InstructionTypeCreateOpenOrders); err != nil {
		return nil, err
	}

	return &CreateOpenOrdersInstructionAccounts{
		Program:        ix.Program,
		User:           accountKey(ix, 0),
		Market:         accountKey(ix, 1),
		UserOpenOrders: accountKey(ix, 2),
	}, nil
}
