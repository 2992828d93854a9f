package hybriddex

import (
	"fmt"

	"github.com/code-payments/hybrid-dex-cli/pkg/solana"
)

// ProgramError is a custom error returned by the on-chain program.
type ProgramError uint32

const programErrorOffset = 6000

const (
	ProgramErrorInvalidAdmin ProgramError = iota + programErrorOffset
	ProgramErrorInvalidInputNameLength
	ProgramErrorInvalidCloseMarketAdmin
	ProgramErrorNonEmptyMarket
	ProgramErrorInvalidAccountOwner
	ProgramErrorOpenOrdersFull
	ProgramErrorInsufficientDepositBalance
	ProgramErrorInsufficientWithdrawBalance
	ProgramErrorOrderNotFound
	ProgramErrorIncorrectMakerAddress
	ProgramErrorInvalidSide
	ProgramErrorInvalidAmount
)

var programErrors = map[ProgramError]struct {
	name    string
	message string
}{
	ProgramErrorInvalidAdmin:                {"InvalidAdmin", "admin address mismatch"},
	ProgramErrorInvalidInputNameLength:      {"InvalidInputNameLength", "name length above limit"},
	ProgramErrorInvalidCloseMarketAdmin:     {"InvalidCloseMarketAdmin", "signer is not the market authority or admin"},
	ProgramErrorNonEmptyMarket:              {"NonEmptyMarket", "cannot close a non-empty market"},
	ProgramErrorInvalidAccountOwner:         {"InvalidAccountOwner", "account owner does not match the passed address"},
	ProgramErrorOpenOrdersFull:              {"OpenOrdersFull", "no free order slot"},
	ProgramErrorInsufficientDepositBalance:  {"InsufficientDepositBalance", "deposit token account balance insufficient"},
	ProgramErrorInsufficientWithdrawBalance: {"InsufficientWithdrawBalance", "market token vault balance insufficient"},
	ProgramErrorOrderNotFound:               {"OrderNotFound", "order id not found in market order book"},
	ProgramErrorIncorrectMakerAddress:       {"IncorrectMakerAddress", "maker does not own the order"},
	ProgramErrorInvalidSide:                 {"InvalidSide", "invalid order side"},
	ProgramErrorInvalidAmount:               {"InvalidAmount", "invalid amount"},
}

// GetProgramError maps a custom error code to a known program error.
func GetProgramError(code int) (ProgramError, bool) {
	e := ProgramError(code)
	_, ok := programErrors[e]
	return e, ok
}

// Name is the variant name declared by the program.
func (e ProgramError) Name() string {
	if v, ok := programErrors[e]; ok {
		return v.name
	}
	return fmt.Sprintf("Unknown(%d)", uint32(e))
}

func (e ProgramError) Error() string {
	if v, ok := programErrors[e]; ok {
		return fmt.Sprintf("%s: %s", v.name, v.message)
	}
	return fmt.Sprintf("unknown program error: %d", uint32(e))
}

// Custom converts the error into the form a transaction reports it in.
func (e ProgramError) Custom() solana.CustomError {
	return solana.CustomError(e)
}
