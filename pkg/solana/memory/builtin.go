package memory

import (
	"github.com/code-payments/hybrid-dex-cli/pkg/solana"
	"github.com/code-payments/hybrid-dex-cli/pkg/solana/memo"
)

func computeBudgetHandler(txn *Txn, instruction solana.Instruction) error {
	if len(instruction.Accounts) != 0 {
		return Fail(solana.InstructionErrorInvalidArgument)
	}
	if err := txn.budget.Apply(instruction.Data); err != nil {
		return Fail(solana.InstructionErrorInvalidInstructionData)
	}
	return nil
}

func memoHandler(txn *Txn, instruction solana.Instruction) error {
	for _, account := range instruction.Accounts {
		if !account.IsSigner {
			return Fail(solana.InstructionErrorMissingRequiredSignature)
		}
	}
	if err := memo.Validate(instruction.Data); err != nil {
		return Fail(solana.InstructionErrorInvalidInstructionData)
	}
	txn.memos = append(txn.memos, string(instruction.Data))
	return nil
}
