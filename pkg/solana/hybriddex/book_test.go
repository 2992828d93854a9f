package hybriddex

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func orderIDs(book *BookAccount) []uint64 {
	ids := make([]uint64, len(book.Orders))
	for i, order := range book.Orders {
		ids[i] = order.OrderID
	}
	return ids
}

func TestBook_InsertPriceTimePriority(t *testing.T) {
	for _, tc := range []struct {
		side     Side
		expected []uint64
	}{
		{SideBid, []uint64{2, 4, 1, 3, 0}},
		{SideAsk, []uint64{0, 1, 3, 2, 4}},
	} {
		t.Run(tc.side.String(), func(t *testing.T) {
			book := &BookAccount{Side: tc.side}
			for id, price := range []uint64{90, 100, 120, 100, 120} {
				book.Insert(OpenedOrder{OrderID: uint64(id), Price: price, Quantity: 1})
			}

			assert.Equal(t, tc.expected, orderIDs(book))
			assert.EqualValues(t, 5, book.OrdersCount)
			assert.True(t, book.IsSorted())
		})
	}
}

func TestBook_RandomOperationsStaySorted(t *testing.T) {
	r := rand.New(rand.NewSource(1))

	for _, side := range []Side{SideBid, SideAsk} {
		book := &BookAccount{Side: side}

		var nextID uint64
		for i := 0; i < 500; i++ {
			switch op := r.Intn(3); {
			case op == 0 || len(book.Orders) == 0:
				book.Insert(OpenedOrder{OrderID: nextID, Price: uint64(r.Intn(10) + 1), Quantity: 100})
				nextID++
			case op == 1:
				victim := book.Orders[r.Intn(len(book.Orders))].OrderID
				_, err := book.Remove(victim)
				require.NoError(t, err)
			default:
				victim := book.Orders[r.Intn(len(book.Orders))]
				if victim.Quantity > 1 {
					_, err := book.Reduce(victim.OrderID, 1)
					require.NoError(t, err)
				}
			}

			require.True(t, book.IsSorted())
			require.EqualValues(t, len(book.Orders), book.OrdersCount)
		}
	}
}

func TestBook_ReduceKeepsPosition(t *testing.T) {
	book := &BookAccount{Side: SideAsk}
	book.Insert(OpenedOrder{OrderID: 3, Price: 90, Quantity: 1})
	book.Insert(OpenedOrder{OrderID: 4, Price: 95, Quantity: 1})
	book.Insert(OpenedOrder{OrderID: 5, Price: 100, Quantity: 10})
	book.Insert(OpenedOrder{OrderID: 6, Price: 100, Quantity: 1})

	idx, ok := book.Find(5)
	require.True(t, ok)
	require.Equal(t, 2, idx)

	reduced, err := book.Reduce(5, 4)
	require.NoError(t, err)
	assert.EqualValues(t, 6, reduced.Quantity)

	idx, ok = book.Find(5)
	require.True(t, ok)
	assert.Equal(t, 2, idx)
	assert.EqualValues(t, 6, book.Orders[idx].Quantity)

	_, err = book.Reduce(5, 6)
	assert.ErrorIs(t, err, ErrOrderExhausted)
	_, err = book.Reduce(5, 0)
	assert.ErrorIs(t, err, ErrInvalidAmount)
	_, err = book.Reduce(42, 1)
	assert.ErrorIs(t, err, ErrOrderNotFound)

	removed, err := book.Remove(5)
	require.NoError(t, err)
	assert.EqualValues(t, 6, removed.Quantity)
	assert.Equal(t, []uint64{3, 4, 6}, orderIDs(book))
	assert.EqualValues(t, 3, book.OrdersCount)

	_, err = book.Remove(5)
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestBook_Depth(t *testing.T) {
	book := &BookAccount{Side: SideBid}
	book.Insert(OpenedOrder{OrderID: 1, Price: 100, Quantity: 5})
	book.Insert(OpenedOrder{OrderID: 2, Price: 101, Quantity: 1})
	book.Insert(OpenedOrder{OrderID: 3, Price: 100, Quantity: 7})

	assert.Equal(t, []PriceLevel{
		{Price: 101, Quantity: 1, Orders: 1},
		{Price: 100, Quantity: 12, Orders: 2},
	}, book.Depth())

	assert.Empty(t, (&BookAccount{Side: SideAsk}).Depth())
}
