package hybriddex

import (
	"bytes"
	"crypto/ed25519"
	"fmt"

	"github.com/mr-tron/base58"

	"github.com/code-payments/hybrid-dex-cli/pkg/solana/binary"
)

const (
	UserMarketOrdersAccountSize = (8 + // discriminator
		32 + // address
		32 + // market
		8 + // opened_orders_count
		8 + // base_deposit_total
		8 + // quote_deposit_total
		8 + // base_total_volume
		8 + // quote_total_volume
		16) // extra
)

// Offsets used to filter user order scans.
const (
	UserMarketOrdersAddressOffset = 8
	UserMarketOrdersMarketOffset  = UserMarketOrdersAddressOffset + 32
)

var UserMarketOrdersAccountDiscriminator = accountDiscriminator("UserMarketOrders")

// UserMarketOrdersAccount tracks one user's open interest in one market.
type UserMarketOrdersAccount struct {
	Address           ed25519.PublicKey
	Market            ed25519.PublicKey
	OpenedOrdersCount uint64
	BaseDepositTotal  uint64
	QuoteDepositTotal uint64
	BaseTotalVolume   uint64
	QuoteTotalVolume  uint64
	Extra             [16]byte
}

func (obj *UserMarketOrdersAccount) Marshal() []byte {
	data := make([]byte, UserMarketOrdersAccountSize)

	var offset int
	putDiscriminator(data, UserMarketOrdersAccountDiscriminator, &offset)
	binary.PutKey32(data[offset:], obj.Address, &offset)
	binary.PutKey32(data[offset:], obj.Market, &offset)
	binary.PutUint64(data[offset:], obj.OpenedOrdersCount, &offset)
	binary.PutUint64(data[offset:], obj.BaseDepositTotal, &offset)
	binary.PutUint64(data[offset:], obj.QuoteDepositTotal, &offset)
	binary.PutUint64(data[offset:], obj.BaseTotalVolume, &offset)
	binary.PutUint64(data[offset:], obj.QuoteTotalVolume, &offset)
	binary.PutFixedBytes(data[offset:], obj.Extra[:], len(obj.Extra), &offset)

	return data
}

func (obj *UserMarketOrdersAccount) Unmarshal(data []byte) error {
	if len(data) < UserMarketOrdersAccountSize {
		return ErrInvalidAccountData
	}

	var offset int
	if !bytes.Equal(data[:8], UserMarketOrdersAccountDiscriminator) {
		return ErrInvalidAccountData
	}
	offset += 8

	binary.GetKey32(data[offset:], &obj.Address, &offset)
	binary.GetKey32(data[offset:], &obj.Market, &offset)
	binary.GetUint64(data[offset:], &obj.OpenedOrdersCount, &offset)
	binary.GetUint64(data[offset:], &obj.BaseDepositTotal, &offset)
	binary.GetUint64(data[offset:], &obj.QuoteDepositTotal, &offset)
	binary.GetUint64(data[offset:], &obj.BaseTotalVolume, &offset)
	binary.GetUint64(data[offset:], &obj.QuoteTotalVolume, &offset)
	binary.GetFixedBytes(data[offset:], obj.Extra[:], &offset)

	return nil
}

func (obj *UserMarketOrdersAccount) String() string {
	return fmt.Sprintf(
		"UserMarketOrders{address=%s,market=%s,opened_orders_count=%d,base_deposit_total=%d,quote_deposit_total=%d,base_total_volume=%d,quote_total_volume=%d}",
		base58.Encode(obj.Address),
		base58.Encode(obj.Market),
		obj.OpenedOrdersCount,
		obj.BaseDepositTotal,
		obj.QuoteDepositTotal,
		obj.BaseTotalVolume,
		obj.QuoteTotalVolume,
	)
}
