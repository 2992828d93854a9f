package memory

import (
	"bytes"
	"crypto/ed25519"

	"github.com/sirupsen/logrus"

	"github.com/code-payments/hybrid-dex-cli/pkg/solana"
	"github.com/code-payments/hybrid-dex-cli/pkg/solana/hybriddex"
	solana_memory "github.com/code-payments/hybrid-dex-cli/pkg/solana/memory"
	"github.com/code-payments/hybrid-dex-cli/pkg/solana/token"
)

func (p *Program) placeOrder(txn *solana_memory.Txn, ix solana.Instruction) error {
	accounts, args, err := hybriddex.ParsePlaceOrderInstruction(p.program, ix)
	if err != nil {
		return parseFailure(err)
	}
	if err := args.Side.Validate(); err != nil {
		return hybriddex.ProgramErrorInvalidSide.Custom()
	}
	if args.Price == 0 || args.Quantity == 0 {
		return hybriddex.ProgramErrorInvalidAmount.Custom()
	}

	global, err := p.loadGlobalConfig(txn, accounts.GlobalConfig)
	if err != nil {
		return err
	}
	market, err := p.loadMarket(txn, accounts.Market, accounts.BaseMint, accounts.QuoteMint)
	if err != nil {
		return err
	}
	orders, err := p.loadUserMarketOrders(txn, accounts.Market, accounts.Maker, accounts.UserOpenOrders)
	if err != nil {
		return err
	}

	for _, mint := range []ed25519.PublicKey{accounts.BaseMint, accounts.QuoteMint} {
		if _, err := loadMint(txn, mint); err != nil {
			return err
		}
	}
	for _, ata := range []struct {
		address, wallet, mint ed25519.PublicKey
	}{
		{accounts.UserBase, accounts.Maker, accounts.BaseMint},
		{accounts.UserQuote, accounts.Maker, accounts.QuoteMint},
		{accounts.BaseVault, accounts.Market, accounts.BaseMint},
		{accounts.QuoteVault, accounts.Market, accounts.QuoteMint},
	} {
		if _, err := associatedAccount(txn, ata.address, ata.wallet, ata.mint); err != nil {
			return err
		}
	}

	books := make(map[hybriddex.Side]*hybriddex.BookAccount)
	for side, address := range map[hybriddex.Side]ed25519.PublicKey{
		hybriddex.SideBid: accounts.Bids,
		hybriddex.SideAsk: accounts.Asks,
	} {
		book, err := p.loadBook(txn, accounts.Market, address, side)
		if err != nil {
			return err
		}
		books[side] = book
	}
	book := books[args.Side]

	if orders.OpenedOrdersCount >= global.MaxOrdersPerUser {
		return hybriddex.ProgramErrorOpenOrdersFull.Custom()
	}
	if book.OrdersCount >= global.MaxOrdersPerBook {
		return hybriddex.ProgramErrorOpenOrdersFull.Custom()
	}

	escrowMint := args.Side.EscrowMint(market.BaseMint, market.QuoteMint)
	from, err := token.GetAssociatedAccount(accounts.Maker, escrowMint)
	if err != nil {
		return err
	}
	to, err := hybriddex.GetVaultAddress(&hybriddex.GetVaultAddressArgs{
		Market: accounts.Market,
		Mint:   escrowMint,
	})
	if err != nil {
		return err
	}

	source, err := loadTokenAccount(txn, from)
	if err != nil {
		return err
	}
	if source.Amount < args.Quantity {
		return hybriddex.ProgramErrorInsufficientDepositBalance.Custom()
	}

	book.Insert(hybriddex.OpenedOrder{
		OrderID:   market.OrderSeqNum,
		Owner:     accounts.Maker,
		Price:     args.Price,
		Quantity:  args.Quantity,
		CreatedAt: txn.Now().Unix(),
	})
	orders.OpenedOrdersCount++
	*args.Side.EscrowDeposit(orders) += args.Quantity
	market.OrderSeqNum++

	if err := transfer(txn, from, to, args.Quantity); err != nil {
		return err
	}

	p.store(txn, accounts.Market, market)
	p.store(txn, accounts.UserOpenOrders, orders)
	p.store(txn, market.Book(args.Side), book)
	return nil
}

func (p *Program) cancelOrder(txn *solana_memory.Txn, ix solana.Instruction) error {
	accounts, args, err := hybriddex.ParseCancelOrderInstruction(p.program, ix)
	if err != nil {
		return parseFailure(err)
	}

	market, err := p.loadMarketBySeed(txn, accounts.Market, args.Seed, accounts.BaseMint, accounts.QuoteMint)
	if err != nil {
		return err
	}
	orders, err := p.loadUserMarketOrders(txn, accounts.Market, accounts.Maker, accounts.UserOpenOrders)
	if err != nil {
		return err
	}

	escrowMint := args.Side.EscrowMint(market.BaseMint, market.QuoteMint)
	if _, err := associatedAccount(txn, accounts.UserEscrow, accounts.Maker, escrowMint); err != nil {
		return err
	}
	vault, err := associatedAccount(txn, accounts.EscrowVault, accounts.Market, escrowMint)
	if err != nil {
		return err
	}

	book, err := p.loadBook(txn, accounts.Market, accounts.Book, args.Side)
	if err != nil {
		return err
	}

	idx, ok := book.Find(args.OrderID)
	if !ok {
		return hybriddex.ProgramErrorOrderNotFound.Custom()
	}
	if !bytes.Equal(book.Orders[idx].Owner, accounts.Maker) {
		return hybriddex.ProgramErrorIncorrectMakerAddress.Custom()
	}

	order, err := book.Remove(args.OrderID)
	if err != nil {
		return err
	}
	if vault.Amount < order.Quantity {
		return hybriddex.ProgramErrorInsufficientWithdrawBalance.Custom()
	}

	orders.OpenedOrdersCount--
	*args.Side.EscrowDeposit(orders) -= order.Quantity

	if err := transfer(txn, accounts.EscrowVault, accounts.UserEscrow, order.Quantity); err != nil {
		return err
	}

	p.store(txn, accounts.UserOpenOrders, orders)
	p.store(txn, accounts.Book, book)
	return nil
}

func (p *Program) takeOrder(txn *solana_memory.Txn, ix solana.Instruction) error {
	accounts, args, partial, err := hybriddex.ParseTakeOrderInstruction(p.program, ix)
	if err != nil {
		return parseFailure(err)
	}

	market, err := p.loadMarketBySeed(txn, accounts.Market, args.Seed, accounts.BaseMint, accounts.QuoteMint)
	if err != nil {
		return err
	}
	makerOrders, err := p.loadUserMarketOrders(txn, accounts.Market, accounts.Maker, accounts.MakerOpenOrders)
	if err != nil {
		return err
	}

	// A self trade reads and writes a single record.
	takerOrders := makerOrders
	if bytes.Equal(accounts.Taker, accounts.Maker) {
		if err := requireAddress(accounts.TakerOpenOrders, accounts.MakerOpenOrders, errConstraintSeeds); err != nil {
			return err
		}
	} else {
		takerOrders, err = p.loadUserMarketOrders(txn, accounts.Market, accounts.Taker, accounts.TakerOpenOrders)
		if err != nil {
			return err
		}
	}

	escrowMint := args.Side.EscrowMint(market.BaseMint, market.QuoteMint)
	counterMint := args.Side.CounterMint(market.BaseMint, market.QuoteMint)

	if _, err := associatedAccount(txn, accounts.MakerCounter, accounts.Maker, counterMint); err != nil {
		return err
	}
	takerCounter, err := associatedAccount(txn, accounts.TakerCounter, accounts.Taker, counterMint)
	if err != nil {
		return err
	}
	if _, err := associatedAccount(txn, accounts.TakerEscrow, accounts.Taker, escrowMint); err != nil {
		return err
	}
	vault, err := associatedAccount(txn, accounts.EscrowVault, accounts.Market, escrowMint)
	if err != nil {
		return err
	}

	book, err := p.loadBook(txn, accounts.Market, accounts.Book, args.Side)
	if err != nil {
		return err
	}

	idx, ok := book.Find(args.OrderID)
	if !ok {
		return hybriddex.ProgramErrorOrderNotFound.Custom()
	}
	order := book.Orders[idx].Clone()
	if !bytes.Equal(order.Owner, accounts.Maker) {
		return hybriddex.ProgramErrorIncorrectMakerAddress.Custom()
	}

	filled := order.Quantity
	if partial {
		if args.Amount == 0 || args.Amount >= order.Quantity {
			return hybriddex.ProgramErrorInvalidAmount.Custom()
		}
		filled = args.Amount
	}

	settlement, err := hybriddex.Settle(args.Side, &order, filled, market.BaseDecimal)
	if err != nil {
		return hybriddex.ProgramErrorInvalidAmount.Custom()
	}
	if vault.Amount < settlement.Filled {
		return hybriddex.ProgramErrorInsufficientWithdrawBalance.Custom()
	}
	if takerCounter.Amount < settlement.Counter {
		return hybriddex.ProgramErrorInsufficientDepositBalance.Custom()
	}

	if partial {
		if _, err := book.Reduce(args.OrderID, filled); err != nil {
			return err
		}
	} else {
		if _, err := book.Remove(args.OrderID); err != nil {
			return err
		}
		makerOrders.OpenedOrdersCount--
	}
	*args.Side.EscrowDeposit(makerOrders) -= filled

	makerOrders.BaseTotalVolume += settlement.BaseVolume
	makerOrders.QuoteTotalVolume += settlement.QuoteVolume
	if takerOrders != makerOrders {
		takerOrders.BaseTotalVolume += settlement.BaseVolume
		takerOrders.QuoteTotalVolume += settlement.QuoteVolume
	}
	market.BaseTotalVolume += settlement.BaseVolume
	market.QuoteTotalVolume += settlement.QuoteVolume

	if err := transfer(txn, accounts.EscrowVault, accounts.TakerEscrow, settlement.Filled); err != nil {
		return err
	}
	if err := transfer(txn, accounts.TakerCounter, accounts.MakerCounter, settlement.Counter); err != nil {
		return err
	}

	p.store(txn, accounts.Market, market)
	p.store(txn, accounts.MakerOpenOrders, makerOrders)
	p.store(txn, accounts.TakerOpenOrders, takerOrders)
	p.store(txn, accounts.Book, book)

	p.log.WithFields(logrus.Fields{
		"order_id": args.OrderID,
		"filled":   settlement.Filled,
		"counter":  settlement.Counter,
		"partial":  partial,
	}).Debug("order taken")
	return nil
}
