package memory

import (
	"bytes"
	"crypto/ed25519"

	"github.com/code-payments/hybrid-dex-cli/pkg/solana"
	"github.com/code-payments/hybrid-dex-cli/pkg/solana/hybriddex"
	solana_memory "github.com/code-payments/hybrid-dex-cli/pkg/solana/memory"
)

func (p *Program) load(txn *solana_memory.Txn, address ed25519.PublicKey, account hybriddex.Account) error {
	info, ok := txn.Get(address)
	if !ok {
		return errAccountNotInitialized
	}
	if !bytes.Equal(info.Owner, p.program) {
		return errAccountOwnedByWrongProgram
	}
	if err := account.Unmarshal(info.Data); err != nil {
		return errAccountDidNotDeserialize
	}
	return nil
}

// create allocates at least size bytes for a new account.
func (p *Program) create(txn *solana_memory.Txn, address ed25519.PublicKey, account hybriddex.Account, size int) error {
	if txn.Exists(address) {
		return errAccountAlreadyInUse
	}

	data := make([]byte, size)
	txn.Put(address, solana.AccountInfo{Owner: p.program, Data: data})

	p.store(txn, address, account)
	return nil
}

// store writes account, keeping the existing allocation when it is larger.
func (p *Program) store(txn *solana_memory.Txn, address ed25519.PublicKey, account hybriddex.Account) {
	data := account.Marshal()
	if info, ok := txn.Get(address); ok && len(info.Data) > len(data) {
		padded := make([]byte, len(info.Data))
		copy(padded, data)
		data = padded
	}

	txn.Put(address, solana.AccountInfo{Owner: p.program, Data: data})
}

func (p *Program) loadGlobalConfig(txn *solana_memory.Txn, address ed25519.PublicKey) (*hybriddex.GlobalConfigAccount, error) {
	expected, _, err := hybriddex.GetGlobalConfigAddress(&hybriddex.GetGlobalConfigAddressArgs{
		Program: p.program,
	})
	if err != nil {
		return nil, err
	}
	if err := requireAddress(address, expected, errConstraintSeeds); err != nil {
		return nil, err
	}

	var global hybriddex.GlobalConfigAccount
	if err := p.load(txn, address, &global); err != nil {
		return nil, err
	}
	return &global, nil
}

func (p *Program) marketAddress(seed uint64) (ed25519.PublicKey, error) {
	address, _, err := hybriddex.GetMarketAddress(&hybriddex.GetMarketAddressArgs{
		Program:  p.program,
		Seq:      seed,
		SeqWidth: p.seqWidth,
	})
	return address, err
}

// loadMarket loads a market and checks it trades the given mints.
func (p *Program) loadMarket(txn *solana_memory.Txn, address, baseMint, quoteMint ed25519.PublicKey) (*hybriddex.MarketAccount, error) {
	var market hybriddex.MarketAccount
	if err := p.load(txn, address, &market); err != nil {
		return nil, err
	}
	if !bytes.Equal(market.BaseMint, baseMint) || !bytes.Equal(market.QuoteMint, quoteMint) {
		return nil, errConstraintHasOne
	}
	return &market, nil
}

// loadMarketBySeed additionally checks the market is the one derived from
// seed.
func (p *Program) loadMarketBySeed(txn *solana_memory.Txn, address ed25519.PublicKey, seed uint64, baseMint, quoteMint ed25519.PublicKey) (*hybriddex.MarketAccount, error) {
	expected, err := p.marketAddress(seed)
	if err != nil {
		return nil, err
	}
	if err := requireAddress(address, expected, errConstraintSeeds); err != nil {
		return nil, err
	}
	return p.loadMarket(txn, address, baseMint, quoteMint)
}

func (p *Program) bookAddress(market ed25519.PublicKey, side hybriddex.Side) (ed25519.PublicKey, error) {
	address, _, err := hybriddex.GetBookAddress(&hybriddex.GetBookAddressArgs{
		Program: p.program,
		Market:  market,
		Side:    side,
	})
	return address, err
}

func (p *Program) loadBook(txn *solana_memory.Txn, market, address ed25519.PublicKey, side hybriddex.Side) (*hybriddex.BookAccount, error) {
	expected, err := p.bookAddress(market, side)
	if err != nil {
		return nil, err
	}
	if err := requireAddress(address, expected, errConstraintSeeds); err != nil {
		return nil, err
	}

	var book hybriddex.BookAccount
	if err := p.load(txn, address, &book); err != nil {
		return nil, err
	}
	return &book, nil
}

func (p *Program) userMarketOrdersAddress(market, user ed25519.PublicKey) (ed25519.PublicKey, error) {
	address, _, err := hybriddex.GetUserMarketOrdersAddress(&hybriddex.GetUserMarketOrdersAddressArgs{
		Program: p.program,
		Market:  market,
		User:    user,
	})
	return address, err
}

func (p *Program) loadUserMarketOrders(txn *solana_memory.Txn, market, user, address ed25519.PublicKey) (*hybriddex.UserMarketOrdersAccount, error) {
	expected, err := p.userMarketOrdersAddress(market, user)
	if err != nil {
		return nil, err
	}
	if err := requireAddress(address, expected, errConstraintSeeds); err != nil {
		return nil, err
	}

	var orders hybriddex.UserMarketOrdersAccount
	if err := p.load(txn, address, &orders); err != nil {
		return nil, err
	}
	if !bytes.Equal(orders.Market, market) {
		return nil, errConstraintHasOne
	}
	if !bytes.Equal(orders.Address, user) {
		return nil, hybriddex.ProgramErrorInvalidAccountOwner.Custom()
	}
	return &orders, nil
}
