package memory

import (
	"bytes"
	"crypto/ed25519"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/code-payments/hybrid-dex-cli/pkg/solana"
	"github.com/code-payments/hybrid-dex-cli/pkg/solana/hybriddex"
	solana_memory "github.com/code-payments/hybrid-dex-cli/pkg/solana/memory"
)

// Errors raised by the runtime and the account framework rather than the
// program itself.
const (
	errAccountAlreadyInUse        solana.CustomError = 0
	errTokenInsufficientFunds     solana.CustomError = 1
	errConstraintHasOne           solana.CustomError = 2001
	errConstraintSeeds            solana.CustomError = 2006
	errConstraintAssociated       solana.CustomError = 2009
	errAccountDidNotDeserialize   solana.CustomError = 3003
	errAccountOwnedByWrongProgram solana.CustomError = 3007
	errAccountNotInitialized      solana.CustomError = 3012
)

// Program executes hybrid-dex instructions against an in-memory ledger with
// the same account model, checks and error codes as the deployed program.
type Program struct {
	log      *logrus.Entry
	program  ed25519.PublicKey
	seqWidth hybriddex.SeqWidth
}

// NewProgram returns a program deployed at program, or the default program id
// when program is nil.
func NewProgram(program ed25519.PublicKey, seqWidth hybriddex.SeqWidth) *Program {
	if len(program) == 0 {
		program = hybriddex.PROGRAM_ID
	}
	return &Program{
		log:      logrus.StandardLogger().WithField("type", "hybriddex/memory"),
		program:  program,
		seqWidth: seqWidth,
	}
}

// Install deploys a new program to the ledger.
func Install(ledger *solana_memory.Client, program ed25519.PublicKey, seqWidth hybriddex.SeqWidth) *Program {
	p := NewProgram(program, seqWidth)
	ledger.RegisterProgram(p.program, p.Handle)
	return p
}

// Address is the program id the program is deployed at.
func (p *Program) Address() ed25519.PublicKey {
	return p.program
}

// Handle implements solana_memory.Handler.
func (p *Program) Handle(txn *solana_memory.Txn, ix solana.Instruction) error {
	t := hybriddex.GetInstructionType(ix.Data)

	log := p.log.WithField("instruction", t.String())
	log.Trace("executing instruction")

	var err error
	switch t {
	case hybriddex.InstructionTypeInitialize:
		err = p.initialize(txn, ix)
	case hybriddex.InstructionTypeTransferAdmin:
		err = p.transferAdmin(txn, ix)
	case hybriddex.InstructionTypeChangeConfig:
		err = p.changeConfig(txn, ix)
	case hybriddex.InstructionTypeCreateMarket:
		err = p.createMarket(txn, ix)
	case hybriddex.InstructionTypeCloseMarket:
		err = p.closeMarket(txn, ix)
	case hybriddex.InstructionTypeCreateOpenOrders:
		err = p.createOpenOrders(txn, ix)
	case hybriddex.InstructionTypePlaceOrder:
		err = p.placeOrder(txn, ix)
	case hybriddex.InstructionTypeCancelBuyOrder, hybriddex.InstructionTypeCancelSellOrder:
		err = p.cancelOrder(txn, ix)
	case hybriddex.InstructionTypeTakeBuyOrder,
		hybriddex.InstructionTypeTakeSellOrder,
		hybriddex.InstructionTypePartialTakeBuyOrder,
		hybriddex.InstructionTypePartialTakeSellOrder:
		err = p.takeOrder(txn, ix)
	default:
		err = solana_memory.Fail(solana.InstructionErrorInvalidInstructionData)
	}

	if err != nil {
		log.WithError(err).Debug("instruction failed")
	}
	return err
}

// parseFailure maps instruction parsing errors to the runtime's errors.
func parseFailure(err error) error {
	switch {
	case errors.Is(err, hybriddex.ErrNotEnoughAccounts):
		return solana_memory.Fail(solana.InstructionErrorNotEnoughAccountKeys)
	case errors.Is(err, hybriddex.ErrMissingSignature):
		return solana_memory.Fail(solana.InstructionErrorMissingRequiredSignature)
	case errors.Is(err, hybriddex.ErrInvalidProgram):
		return solana_memory.Fail(solana.InstructionErrorIncorrectProgramID)
	}
	return solana_memory.Fail(solana.InstructionErrorInvalidInstructionData)
}

func requireAddress(actual, expected ed25519.PublicKey, code solana.CustomError) error {
	if !bytes.Equal(actual, expected) {
		return code
	}
	return nil
}
