package hybriddex

import (
	"crypto/ed25519"

	"github.com/code-payments/hybrid-dex-cli/pkg/solana"
	"github.com/code-payments/hybrid-dex-cli/pkg/solana/binary"
)

const (
	TransferAdminInstructionArgsSize = 32 // new_admin

	adminInstructionAccountsCount = 2
)

type TransferAdminInstructionArgs struct {
	NewAdmin ed25519.PublicKey
}

// AdminInstructionAccounts are the accounts of every instruction restricted
// to the global admin.
type AdminInstructionAccounts struct {
	Program      ed25519.PublicKey
	Admin        ed25519.PublicKey
	GlobalConfig ed25519.PublicKey
}

func (accounts *AdminInstructionAccounts) metas() []solana.AccountMeta {
	return []solana.AccountMeta{
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
	}
}

func NewTransferAdminInstruction(
	accounts *AdminInstructionAccounts,
	args *TransferAdminInstructionArgs,
) solana.Instruction {
	var offset int

	data := make([]byte, 8+TransferAdminInstructionArgsSize)

	putInstructionType(data, InstructionTypeTransferAdmin, &offset)
	binary.PutKey32(data[offset:], args.NewAdmin, &offset)

	return solana.Instruction{
		Program:  programOrDefault(accounts.Program),
		Data:     data,
		Accounts: accounts.metas(),
	}
}

func ParseTransferAdminInstruction(program ed25519.PublicKey, ix solana.Instruction) (*AdminInstructionAccounts, *TransferAdminInstructionArgs, error) {
	if _, err := checkInstruction(program, ix, adminInstructionAccountsCount, InstructionTypeTransferAdmin); err != nil {
		return nil, nil, err
	}
	if err := checkArgsSize(ix.Data, TransferAdminInstructionArgsSize); err != nil {
		return nil, nil, err
	}

	var args TransferAdminInstructionArgs
	offset := 8
	binary.GetKey32(ix.Data[offset:], &args.NewAdmin, &offset)

	return parseAdminAccounts(ix), &args, nil
}

// ChangeConfigInstructionArgs leaves a limit unchanged when it is nil.
type ChangeConfigInstructionArgs struct {
	MaxOrdersPerUser *uint64
	MaxOrdersPerBook *uint64
}

func NewChangeConfigInstruction(
	accounts *AdminInstructionAccounts,
	args *ChangeConfigInstructionArgs,
) solana.Instruction {
	var offset int

	data := make([]byte, 8+2*(1+8))

	putInstructionType(data, InstructionTypeChangeConfig, &offset)
	putOptionalUint64(data, args.MaxOrdersPerUser, &offset)
	putOptionalUint64(data, args.MaxOrdersPerBook, &offset)

	return solana.Instruction{
		Program:  programOrDefault(accounts.Program),
		Data:     data[:offset],
		Accounts: accounts.metas(),
	}
}

func ParseChangeConfigInstruction(program ed25519.PublicKey, ix solana.Instruction) (*AdminInstructionAccounts, *ChangeConfigInstructionArgs, error) {
	if _, err := checkInstruction(program, ix, adminInstructionAccountsCount, InstructionTypeChangeConfig); err != nil {
		return nil, nil, err
	}

	var args ChangeConfigInstructionArgs
	offset := 8
	if err := getOptionalUint64(ix.Data, &args.MaxOrdersPerUser, &offset); err != nil {
		return nil, nil, err
	}
	if err := getOptionalUint64(ix.Data, &args.MaxOrdersPerBook, &offset); err != nil {
		return nil, nil, err
	}

	return parseAdminAccounts(ix), &args, nil
}

func parseAdminAccounts(ix solana.Instruction) *AdminInstructionAccounts {
	return &AdminInstructionAccounts{
		Program:      ix.Program,
		Admin:        accountKey(ix, 0),
		GlobalConfig: accountKey(ix, 1),
	}
}

// Borsh options are a one byte tag followed by the value only when present.
func putOptionalUint64(dst []byte, v *uint64, offset *int) {
	if v == nil {
		binary.PutUint8(dst[*offset:], 0, offset)
		return
	}
	binary.PutUint8(dst[*offset:], 1, offset)
	binary.PutUint64(dst[*offset:], *v, offset)
}

func getOptionalUint64(src []byte, dst **uint64, offset *int) error {
	if len(src) < *offset+1 {
		return ErrInvalidInstructionData
	}

	var tag uint8
	binary.GetUint8(src[*offset:], &tag, offset)
	switch tag {
	case 0:
		*dst = nil
		return nil
	case 1:
		if len(src) < *offset+8 {
			return ErrInvalidInstructionData
		}
		var v uint64
		binary.GetUint64(src[*offset:], &v, offset)
		*dst = &v
		return nil
	}
	return ErrInvalidInstructionData
}
