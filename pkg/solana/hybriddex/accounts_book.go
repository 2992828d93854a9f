package hybriddex

import (
	"bytes"
	"crypto/ed25519"
	"fmt"
	"sort"
	"strings"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"

	"github.com/code-payments/hybrid-dex-cli/pkg/solana/binary"
)

const (
	BookAccountHeaderSize = (8 + // discriminator
		1 + // side
		32 + // market
		8 + // orders_count
		4) // orders vec length
)

// BookAccountSize is the space allocated for a book holding up to capacity
// orders.
func BookAccountSize(capacity uint64) int {
	return BookAccountHeaderSize + int(capacity)*OpenedOrderSize
}

var BookAccountDiscriminator = accountDiscriminator("Book")

var (
	ErrOrderNotFound  = errors.New("order not found")
	ErrInvalidAmount  = errors.New("invalid amount")
	ErrOrderExhausted = errors.New("amount must be less than the remaining quantity")
)

// BookAccount is one side of a market's order book. Orders are kept in
// price-time priority.
type BookAccount struct {
	Side        Side
	Market      ed25519.PublicKey
	OrdersCount uint64
	Orders      []OpenedOrder
}

// Marshal returns the Borsh encoding, without trailing allocation.
func (obj *BookAccount) Marshal() []byte {
	data := make([]byte, BookAccountSize(uint64(len(obj.Orders))))

	var offset int
	putDiscriminator(data, BookAccountDiscriminator, &offset)
	binary.PutUint8(data[offset:], uint8(obj.Side), &offset)
	binary.PutKey32(data[offset:], obj.Market, &offset)
	binary.PutUint64(data[offset:], obj.OrdersCount, &offset)
	binary.PutUint32(data[offset:], uint32(len(obj.Orders)), &offset)
	for i := range obj.Orders {
		putOpenedOrder(data, &obj.Orders[i], &offset)
	}

	return data
}

func (obj *BookAccount) Unmarshal(data []byte) error {
	if len(data) < BookAccountHeaderSize {
		return ErrInvalidAccountData
	}

	var offset int
	if !bytes.Equal(data[:8], BookAccountDiscriminator) {
		return ErrInvalidAccountData
	}
	offset += 8

	var side uint8
	var length uint32

	binary.GetUint8(data[offset:], &side, &offset)
	binary.GetKey32(data[offset:], &obj.Market, &offset)
	binary.GetUint64(data[offset:], &obj.OrdersCount, &offset)
	binary.GetUint32(data[offset:], &length, &offset)

	obj.Side = Side(side)
	if err := obj.Side.Validate(); err != nil {
		return ErrInvalidAccountData
	}

	if uint64(len(data)) < uint64(BookAccountHeaderSize)+uint64(length)*OpenedOrderSize {
		return ErrInvalidAccountData
	}

	obj.Orders = make([]OpenedOrder, length)
	for i := range obj.Orders {
		getOpenedOrder(data, &obj.Orders[i], &offset)
	}

	return nil
}

// Find returns the position of orderID in the book.
func (obj *BookAccount) Find(orderID uint64) (int, bool) {
	for i := range obj.Orders {
		if obj.Orders[i].OrderID == orderID {
			return i, true
		}
	}
	return 0, false
}

// Insert places order behind every order with equal or better priority.
func (obj *BookAccount) Insert(order OpenedOrder) int {
	idx := sort.Search(len(obj.Orders), func(i int) bool {
		return obj.Side.Precedes(&order, &obj.Orders[i])
	})

	obj.Orders = append(obj.Orders, OpenedOrder{})
	copy(obj.Orders[idx+1:], obj.Orders[idx:])
	obj.Orders[idx] = order
	obj.OrdersCount++

	return idx
}

// Remove deletes orderID and returns it.
func (obj *BookAccount) Remove(orderID uint64) (*OpenedOrder, error) {
	idx, ok := obj.Find(orderID)
	if !ok {
		return nil, errors.Wrapf(ErrOrderNotFound, "order %d", orderID)
	}

	removed := obj.Orders[idx]
	obj.Orders = append(obj.Orders[:idx], obj.Orders[idx+1:]...)
	obj.OrdersCount--

	return &removed, nil
}

// Reduce decrements the remaining quantity of orderID in place, keeping its
// position. The amount must leave a positive remainder.
func (obj *BookAccount) Reduce(orderID, amount uint64) (*OpenedOrder, error) {
	idx, ok := obj.Find(orderID)
	if !ok {
		return nil, errors.Wrapf(ErrOrderNotFound, "order %d", orderID)
	}

	order := &obj.Orders[idx]
	if amount == 0 {
		return nil, ErrInvalidAmount
	}
	if amount >= order.Quantity {
		return nil, errors.Wrapf(ErrOrderExhausted, "order %d has %d remaining", orderID, order.Quantity)
	}

	order.Quantity -= amount
	reduced := *order
	return &reduced, nil
}

// IsSorted reports whether the orders respect price-time priority.
func (obj *BookAccount) IsSorted() bool {
	for i := 1; i < len(obj.Orders); i++ {
		if !obj.Side.Precedes(&obj.Orders[i-1], &obj.Orders[i]) {
			return false
		}
	}
	return true
}

// PriceLevel aggregates the resting quantity at one price.
type PriceLevel struct {
	Price    uint64
	Quantity uint64
	Orders   int
}

// Depth aggregates the book into price levels, best price first.
func (obj *BookAccount) Depth() []PriceLevel {
	var levels []PriceLevel
	for _, order := range obj.Orders {
		if n := len(levels); n > 0 && levels[n-1].Price == order.Price {
			levels[n-1].Quantity += order.Quantity
			levels[n-1].Orders++
			continue
		}
		levels = append(levels, PriceLevel{Price: order.Price, Quantity: order.Quantity, Orders: 1})
	}
	return levels
}

func (obj *BookAccount) String() string {
	orders := make([]string, len(obj.Orders))
	for i := range obj.Orders {
		orders[i] = obj.Orders[i].String()
	}

	return fmt.Sprintf(
		"Book{side=%s,market=%s,orders_count=%d,orders=[%s]}",
		obj.Side,
		base58.Encode(obj.Market),
		obj.OrdersCount,
		strings.Join(orders, ","),
	)
}
