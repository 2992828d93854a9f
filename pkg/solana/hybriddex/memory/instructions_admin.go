package memory

import (
	"bytes"

	"github.com/code-payments/hybrid-dex-cli/pkg/pointer"
	"github.com/code-payments/hybrid-dex-cli/pkg/solana"
	"github.com/code-payments/hybrid-dex-cli/pkg/solana/hybriddex"
	solana_memory "github.com/code-payments/hybrid-dex-cli/pkg/solana/memory"
)

func (p *Program) initialize(txn *solana_memory.Txn, ix solana.Instruction) error {
	accounts, args, err := hybriddex.ParseInitializeInstruction(p.program, ix)
	if err != nil {
		return parseFailure(err)
	}

	expected, _, err := hybriddex.GetGlobalConfigAddress(&hybriddex.GetGlobalConfigAddressArgs{
		Program: p.program,
	})
	if err != nil {
		return err
	}
	if err := requireAddress(accounts.GlobalConfig, expected, errConstraintSeeds); err != nil {
		return err
	}

	global := &hybriddex.GlobalConfigAccount{
		Admin:            accounts.Admin,
		MaxOrdersPerUser: args.MaxOrdersPerUser,
		MaxOrdersPerBook: args.MaxOrdersPerBook,
	}
	return p.create(txn, accounts.GlobalConfig, global, hybriddex.GlobalConfigAccountSize)
}

func (p *Program) loadGlobalConfigAsAdmin(txn *solana_memory.Txn, accounts *hybriddex.AdminInstructionAccounts) (*hybriddex.GlobalConfigAccount, error) {
	global, err := p.loadGlobalConfig(txn, accounts.GlobalConfig)
	if err != nil {
		return nil, err
	}
	if !bytes.Equal(global.Admin, accounts.Admin) {
		return nil, hybriddex.ProgramErrorInvalidAdmin.Custom()
	}
	return global, nil
}

func (p *Program) transferAdmin(txn *solana_memory.Txn, ix solana.Instruction) error {
	accounts, args, err := hybriddex.ParseTransferAdminInstruction(p.program, ix)
	if err != nil {
		return parseFailure(err)
	}

	global, err := p.loadGlobalConfigAsAdmin(txn, accounts)
	if err != nil {
		return err
	}

	global.Admin = args.NewAdmin
	p.store(txn, accounts.GlobalConfig, global)
	return nil
}

func (p *Program) changeConfig(txn *solana_memory.Txn, ix solana.Instruction) error {
	accounts, args, err := hybriddex.ParseChangeConfigInstruction(p.program, ix)
	if err != nil {
		return parseFailure(err)
	}

	global, err := p.loadGlobalConfigAsAdmin(txn, accounts)
	if err != nil {
		return err
	}

	global.MaxOrdersPerUser = pointer.ValueOr(args.MaxOrdersPerUser, global.MaxOrdersPerUser)
	global.MaxOrdersPerBook = pointer.ValueOr(args.MaxOrdersPerBook, global.MaxOrdersPerBook)

	p.store(txn, accounts.GlobalConfig, global)
	return nil
}
