package hybriddex

import (
	"bytes"
	"crypto/ed25519"

	"github.com/pkg/errors"

	"github.com/code-payments/hybrid-dex-cli/pkg/solana"
)

var (
	ErrNotEnoughAccounts = errors.New("not enough accounts")
	ErrMissingSignature  = errors.New("missing required signature")
)

// checkInstruction verifies the program, account count, and discriminator of
// an instruction addressed to program.
func checkInstruction(program ed25519.PublicKey, ix solana.Instruction, numAccounts int, expected ...InstructionType) (InstructionType, error) {
	if !bytes.Equal(ix.Program, programOrDefault(program)) {
		return Unknown, ErrInvalidProgram
	}

	t, err := checkInstructionType(ix.Data, expected...)
	if err != nil {
		return Unknown, err
	}

	if len(ix.Accounts) < numAccounts {
		return Unknown, errors.Wrapf(ErrNotEnoughAccounts, "%s expects %d, got %d", t, numAccounts, len(ix.Accounts))
	}
	if !ix.Accounts[0].IsSigner {
		return Unknown, errors.Wrapf(ErrMissingSignature, "%s", t)
	}

	return t, nil
}

func checkArgsSize(data []byte, size int) error {
	if len(data) < 8+size {
		return ErrInvalidInstructionData
	}
	return nil
}

func accountKey(ix solana.Instruction, index int) ed25519.PublicKey {
	return ix.Accounts[index].PublicKey
}
