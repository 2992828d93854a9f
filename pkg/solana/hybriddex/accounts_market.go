package hybriddex

import (
	"bytes"
	"crypto/ed25519"
	"fmt"
	"strings"
	"time"

	"github.com/mr-tron/base58"

	"github.com/code-payments/hybrid-dex-cli/pkg/solana/binary"
)

const MaxMarketNameLength = 16

const (
	MarketAccountSize = (8 + // discriminator
		8 + // seed
		MaxMarketNameLength + // name
		32 + // market_authority
		32 + // base_mint
		32 + // quote_mint
		1 + // base_decimal
		1 + // quote_decimal
		32 + // bids
		32 + // asks
		8 + // created_at
		8 + // base_total_volume
		8 + // quote_total_volume
		8 + // order_seq_num
		16) // extra
)

// Offsets used to filter market scans by mint.
const (
	MarketBaseMintOffset  = 8 + 8 + MaxMarketNameLength + 32
	MarketQuoteMintOffset = MarketBaseMintOffset + 32
)

var MarketAccountDiscriminator = accountDiscriminator("Market")

type MarketAccount struct {
	Seed             uint64
	Name             string
	MarketAuthority  ed25519.PublicKey
	BaseMint         ed25519.PublicKey
	QuoteMint        ed25519.PublicKey
	BaseDecimal      uint8
	QuoteDecimal     uint8
	Bids             ed25519.PublicKey
	Asks             ed25519.PublicKey
	CreatedAt        int64
	BaseTotalVolume  uint64
	QuoteTotalVolume uint64
	OrderSeqNum      uint64
	Extra            [16]byte
}

// Book returns the address of the market's book for side.
func (obj *MarketAccount) Book(side Side) ed25519.PublicKey {
	if side == SideAsk {
		return obj.Asks
	}
	return obj.Bids
}

func (obj *MarketAccount) CreatedAtTime() time.Time {
	return time.Unix(obj.CreatedAt, 0)
}

// Marshal encodes the account. Names longer than MaxMarketNameLength are
// truncated; callers validate lengths beforehand.
func (obj *MarketAccount) Marshal() []byte {
	data := make([]byte, MarketAccountSize)

	var offset int
	putDiscriminator(data, MarketAccountDiscriminator, &offset)
	binary.PutUint64(data[offset:], obj.Seed, &offset)
	binary.PutFixedBytes(data[offset:], []byte(obj.Name), MaxMarketNameLength, &offset)
	binary.PutKey32(data[offset:], obj.MarketAuthority, &offset)
	binary.PutKey32(data[offset:], obj.BaseMint, &offset)
	binary.PutKey32(data[offset:], obj.QuoteMint, &offset)
	binary.PutUint8(data[offset:], obj.BaseDecimal, &offset)
	binary.PutUint8(data[offset:], obj.QuoteDecimal, &offset)
	binary.PutKey32(data[offset:], obj.Bids, &offset)
	binary.PutKey32(data[offset:], obj.Asks, &offset)
	binary.PutInt64(data[offset:], obj.CreatedAt, &offset)
	binary.PutUint64(data[offset:], obj.BaseTotalVolume, &offset)
	binary.PutUint64(data[offset:], obj.QuoteTotalVolume, &offset)
	binary.PutUint64(data[offset:], obj.OrderSeqNum, &offset)
	binary.PutFixedBytes(data[offset:], obj.Extra[:], len(obj.Extra), &offset)

	return data
}

func (obj *MarketAccount) Unmarshal(data []byte) error {
	if len(data) < MarketAccountSize {
		return ErrInvalidAccountData
	}

	var offset int
	if !bytes.Equal(data[:8], MarketAccountDiscriminator) {
		return ErrInvalidAccountData
	}
	offset += 8

	name := make([]byte, MaxMarketNameLength)

	binary.GetUint64(data[offset:], &obj.Seed, &offset)
	binary.GetFixedBytes(data[offset:], name, &offset)
	binary.GetKey32(data[offset:], &obj.MarketAuthority, &offset)
	binary.GetKey32(data[offset:], &obj.BaseMint, &offset)
	binary.GetKey32(data[offset:], &obj.QuoteMint, &offset)
	binary.GetUint8(data[offset:], &obj.BaseDecimal, &offset)
	binary.GetUint8(data[offset:], &obj.QuoteDecimal, &offset)
	binary.GetKey32(data[offset:], &obj.Bids, &offset)
	binary.GetKey32(data[offset:], &obj.Asks, &offset)
	binary.GetInt64(data[offset:], &obj.CreatedAt, &offset)
	binary.GetUint64(data[offset:], &obj.BaseTotalVolume, &offset)
	binary.GetUint64(data[offset:], &obj.QuoteTotalVolume, &offset)
	binary.GetUint64(data[offset:], &obj.OrderSeqNum, &offset)
	binary.GetFixedBytes(data[offset:], obj.Extra[:], &offset)

	obj.Name = strings.TrimRight(string(name), "\x00")

	return nil
}

func (obj *MarketAccount) String() string {
	return fmt.Sprintf(
		"Market{seed=%d,name=%s,authority=%s,base_mint=%s,quote_mint=%s,base_decimal=%d,quote_decimal=%d,bids=%s,asks=%s,created_at=%d,base_total_volume=%d,quote_total_volume=%d,order_seq_num=%d}",
		obj.Seed,
		obj.Name,
		base58.Encode(obj.MarketAuthority),
		base58.Encode(obj.BaseMint),
		base58.Encode(obj.QuoteMint),
		obj.BaseDecimal,
		obj.QuoteDecimal,
		base58.Encode(obj.Bids),
		base58.Encode(obj.Asks),
		obj.CreatedAt,
		obj.BaseTotalVolume,
		obj.QuoteTotalVolume,
		obj.OrderSeqNum,
	)
}
