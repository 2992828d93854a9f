package hybriddex

import (
	"crypto/ed25519"
	"fmt"
	"time"

	"github.com/mr-tron/base58"

	"github.com/code-payments/hybrid-dex-cli/pkg/solana/binary"
)

const (
	OpenedOrderSize = (8 + // order_id
		32 + // owner
		8 + // price
		8 + // quantity
		8) // created_at
)

// OpenedOrder is a resting order embedded in a Book.
type OpenedOrder struct {
	OrderID   uint64
	Owner     ed25519.PublicKey
	Price     uint64
	Quantity  uint64
	CreatedAt int64
}

func (o *OpenedOrder) Clone() OpenedOrder {
	clone := *o
	clone.Owner = append(ed25519.PublicKey(nil), o.Owner...)
	return clone
}

func (o *OpenedOrder) CreatedAtTime() time.Time {
	return time.Unix(o.CreatedAt, 0)
}

func (o *OpenedOrder) String() string {
	return fmt.Sprintf(
		"OpenedOrder{order_id=%d,owner=%s,price=%d,quantity=%d,created_at=%d}",
		o.OrderID,
		base58.Encode(o.Owner),
		o.Price,
		o.Quantity,
		o.CreatedAt,
	)
}

func putOpenedOrder(dst []byte, v *OpenedOrder, offset *int) {
	binary.PutUint64(dst[*offset:], v.OrderID, offset)
	binary.PutKey32(dst[*offset:], v.Owner, offset)
	binary.PutUint64(dst[*offset:], v.Price, offset)
	binary.PutUint64(dst[*offset:], v.Quantity, offset)
	binary.PutInt64(dst[*offset:], v.CreatedAt, offset)
}

func getOpenedOrder(src []byte, dst *OpenedOrder, offset *int) {
	binary.GetUint64(src[*offset:], &dst.OrderID, offset)
	binary.GetKey32(src[*offset:], &dst.Owner, offset)
	binary.GetUint64(src[*offset:], &dst.Price, offset)
	binary.GetUint64(src[*offset:], &dst.Quantity, offset)
	binary.GetInt64(src[*offset:], &dst.CreatedAt, offset)
}
