package dex

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/code-payments/hybrid-dex-cli/pkg/solana"
	"github.com/code-payments/hybrid-dex-cli/pkg/solana/hybriddex"
)

var (
	// ErrAccountNotFound indicates a prerequisite account does not exist.
	ErrAccountNotFound = errors.New("account not found")

	// ErrAccountExists indicates an account that an operation creates
	// already exists.
	ErrAccountExists = errors.New("account already exists")

	// ErrMalformedAccount indicates account data does not match the layout of
	// the expected account kind.
	ErrMalformedAccount = errors.New("malformed account")

	// ErrCapacityExceeded indicates a book or per-user order limit has been
	// reached.
	ErrCapacityExceeded = errors.New("capacity exceeded")

	// ErrInvalidSide indicates a side other than bid or ask.
	ErrInvalidSide = hybriddex.ErrInvalidSide

	// ErrInvalidAmount indicates a non-positive price or quantity, or a
	// partial amount that is not below the remaining quantity.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrInvalidName indicates a market name above the supported length.
	ErrInvalidName = errors.New("invalid market name")

	// ErrUnauthorized indicates the signer is not the admin, authority or
	// owner an operation requires. The program re-checks authorization, so
	// passing this check guarantees nothing.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNoSigner indicates a write operation on a read-only session.
	ErrNoSigner = errors.New("session has no signer")

	// ErrNotConfirmed indicates a submitted transaction did not reach the
	// session's commitment in time. It may still land.
	ErrNotConfirmed = errors.New("transaction not confirmed")

	// ErrRemoteRejected matches every *RemoteRejectedError.
	ErrRemoteRejected = errors.New("transaction rejected")
)

// RemoteRejectedError is returned when the network refuses a submitted
// transaction. Err is the transaction error exactly as reported. Callers
// that want to retry must re-read any state the request was built from,
// since the rejection may stem from a concurrent update.
type RemoteRejectedError struct {
	Operation string
	Signature solana.Signature
	Err       *solana.TransactionError
}

func (e *RemoteRejectedError) Error() string {
	if programErr, ok := e.ProgramError(); ok {
		return fmt.Sprintf("%s rejected: %v (%s)", e.Operation, e.Err, programErr.Name())
	}
	return fmt.Sprintf("%s rejected: %v", e.Operation, e.Err)
}

func (e *RemoteRejectedError) Unwrap() error {
	return e.Err
}

func (e *RemoteRejectedError) Is(target error) bool {
	return target == ErrRemoteRejected
}

// ProgramError returns the hybrid-dex error the program failed with, if the
// rejection carries a known custom error code.
func (e *RemoteRejectedError) ProgramError() (hybriddex.ProgramError, bool) {
	if e.Err == nil || e.Err.InstructionError() == nil {
		return 0, false
	}

	custom := e.Err.InstructionError().CustomError()
	if custom == nil {
		return 0, false
	}
	return hybriddex.GetProgramError(int(*custom))
}
