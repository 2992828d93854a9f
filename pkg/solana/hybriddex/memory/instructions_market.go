package memory

import (
	"bytes"
	"crypto/ed25519"

	"github.com/code-payments/hybrid-dex-cli/pkg/solana"
	"github.com/code-payments/hybrid-dex-cli/pkg/solana/hybriddex"
	solana_memory "github.com/code-payments/hybrid-dex-cli/pkg/solana/memory"
)

func (p *Program) createMarket(txn *solana_memory.Txn, ix solana.Instruction) error {
	accounts, args, err := hybriddex.ParseCreateMarketInstruction(p.program, ix)
	if err != nil {
		return parseFailure(err)
	}

	global, err := p.loadGlobalConfig(txn, accounts.GlobalConfig)
	if err != nil {
		return err
	}

	expected, err := p.marketAddress(global.MarketSeqNum)
	if err != nil {
		return err
	}
	if err := requireAddress(accounts.Market, expected, errConstraintSeeds); err != nil {
		return err
	}

	books := map[hybriddex.Side]ed25519.PublicKey{
		hybriddex.SideBid: accounts.Bids,
		hybriddex.SideAsk: accounts.Asks,
	}
	for side, address := range books {
		expected, err := p.bookAddress(accounts.Market, side)
		if err != nil {
			return err
		}
		if err := requireAddress(address, expected, errConstraintSeeds); err != nil {
			return err
		}
	}

	baseMint, err := loadMint(txn, accounts.BaseMint)
	if err != nil {
		return err
	}
	quoteMint, err := loadMint(txn, accounts.QuoteMint)
	if err != nil {
		return err
	}

	if len(args.Name) > hybriddex.MaxMarketNameLength {
		return hybriddex.ProgramErrorInvalidInputNameLength.Custom()
	}

	market := &hybriddex.MarketAccount{
		Seed:            global.MarketSeqNum,
		Name:            args.Name,
		MarketAuthority: accounts.Authority,
		BaseMint:        accounts.BaseMint,
		QuoteMint:       accounts.QuoteMint,
		BaseDecimal:     baseMint.Decimals,
		QuoteDecimal:    quoteMint.Decimals,
		Bids:            accounts.Bids,
		Asks:            accounts.Asks,
		CreatedAt:       txn.Now().Unix(),
	}
	if err := p.create(txn, accounts.Market, market, hybriddex.MarketAccountSize); err != nil {
		return err
	}

	for side, address := range books {
		book := &hybriddex.BookAccount{
			Side:   side,
			Market: accounts.Market,
			Orders: []hybriddex.OpenedOrder{},
		}
		if err := p.create(txn, address, book, hybriddex.BookAccountSize(global.MaxOrdersPerBook)); err != nil {
			return err
		}
	}

	global.TotalMarketCount++
	global.MarketSeqNum++
	p.store(txn, accounts.GlobalConfig, global)

	p.log.WithField("seed", market.Seed).Debug("market created")
	return nil
}

func (p *Program) closeMarket(txn *solana_memory.Txn, ix solana.Instruction) error {
	accounts, args, err := hybriddex.ParseCloseMarketInstruction(p.program, ix)
	if err != nil {
		return parseFailure(err)
	}

	global, err := p.loadGlobalConfig(txn, accounts.GlobalConfig)
	if err != nil {
		return err
	}
	market, err := p.loadMarketBySeed(txn, accounts.Market, args.Seed, accounts.BaseMint, accounts.QuoteMint)
	if err != nil {
		return err
	}
	bids, err := p.loadBook(txn, accounts.Market, accounts.Bids, hybriddex.SideBid)
	if err != nil {
		return err
	}
	asks, err := p.loadBook(txn, accounts.Market, accounts.Asks, hybriddex.SideAsk)
	if err != nil {
		return err
	}

	if !bytes.Equal(market.MarketAuthority, accounts.Authority) && !bytes.Equal(global.Admin, accounts.Authority) {
		return hybriddex.ProgramErrorInvalidCloseMarketAdmin.Custom()
	}
	if bids.OrdersCount != 0 || asks.OrdersCount != 0 {
		return hybriddex.ProgramErrorNonEmptyMarket.Custom()
	}

	txn.Delete(accounts.Market)
	txn.Delete(accounts.Bids)
	txn.Delete(accounts.Asks)

	global.TotalMarketCount--
	p.store(txn, accounts.GlobalConfig, global)
	return nil
}

func (p *Program) createOpenOrders(txn *solana_memory.Txn, ix solana.Instruction) error {
	accounts, err := hybriddex.ParseCreateOpenOrdersInstruction(p.program, ix)
	if err != nil {
		return parseFailure(err)
	}

	var market hybriddex.MarketAccount
	if err := p.load(txn, accounts.Market, &market); err != nil {
		return err
	}

	expected, err := p.userMarketOrdersAddress(accounts.Market, accounts.User)
	if err != nil {
		return err
	}
	if err := requireAddress(accounts.UserOpenOrders, expected, errConstraintSeeds); err != nil {
		return err
	}

	orders := &hybriddex.UserMarketOrdersAccount{
		Address: accounts.User,
		Market:  accounts.Market,
	}
	return p.create(txn, accounts.UserOpenOrders, orders, hybriddex.UserMarketOrdersAccountSize)
}
