package dex

import (
	"crypto/ed25519"

	"github.com/code-payments/hybrid-dex-cli/pkg/solana"
	"github.com/code-payments/hybrid-dex-cli/pkg/solana/hybriddex"
)

// Request is an unsigned state transition ready to be submitted.
type Request struct {
	Operation    string
	Payer        ed25519.PublicKey
	Instructions []solana.Instruction

	// Accounts the request creates, keyed by role.
	Created map[string]ed25519.PublicKey

	// Settlement estimates what a take moves between maker and taker.
	Settlement *hybriddex.Settlement
}

func newRequest(operation string, payer ed25519.PublicKey, instructions ...solana.Instruction) *Request {
	return &Request{
		Operation:    operation,
		Payer:        payer,
		Instructions: instructions,
		Created:      make(map[string]ed25519.PublicKey),
	}
}

// Transaction compiles the request into an unsigned transaction. The prefix
// instructions run before the request's own, the suffix ones after.
func (r *Request) Transaction(bh solana.Blockhash, prefix, suffix []solana.Instruction) solana.Transaction {
	instructions := make([]solana.Instruction, 0, len(prefix)+len(r.Instructions)+len(suffix))
	instructions = append(instructions, prefix...)
	instructions = append(instructions, r.Instructions...)
	instructions = append(instructions, suffix...)

	txn := solana.NewTransaction(r.Payer, instructions...)
	txn.SetBlockhash(bh)
	return txn
}
