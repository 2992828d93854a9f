package hybriddex

import (
	"bytes"
	"crypto/ed25519"
	"fmt"

	"github.com/mr-tron/base58"

	"github.com/code-payments/hybrid-dex-cli/pkg/solana/binary"
)

const (
	GlobalConfigAccountSize = (8 + // discriminator
		32 + // admin
		8 + // max_orders_per_user
		8 + // max_orders_per_book
		8 + // total_market_count
		8 + // market_seq_num
		16) // extra
)

var GlobalConfigAccountDiscriminator = accountDiscriminator("GlobalPool")

// GlobalConfigAccount is the program's singleton configuration.
type GlobalConfigAccount struct {
	Admin            ed25519.PublicKey
	MaxOrdersPerUser uint64
	MaxOrdersPerBook uint64
	TotalMarketCount uint64
	MarketSeqNum     uint64
	Extra            [16]byte
}

func (obj *GlobalConfigAccount) Marshal() []byte {
	data := make([]byte, GlobalConfigAccountSize)

	var offset int
	putDiscriminator(data, GlobalConfigAccountDiscriminator, &offset)
	binary.PutKey32(data[offset:], obj.Admin, &offset)
	binary.PutUint64(data[offset:], obj.MaxOrdersPerUser, &offset)
	binary.PutUint64(data[offset:], obj.MaxOrdersPerBook, &offset)
	binary.PutUint64(data[offset:], obj.TotalMarketCount, &offset)
	binary.PutUint64(data[offset:], obj.MarketSeqNum, &offset)
	binary.PutFixedBytes(data[offset:], obj.Extra[:], len(obj.Extra), &offset)

	return data
}

func (obj *GlobalConfigAccount) Unmarshal(data []byte) error {
	if len(data) < GlobalConfigAccountSize {
		return ErrInvalidAccountData
	}

	var offset int
	if !bytes.Equal(data[:8], GlobalConfigAccountDiscriminator) {
		return ErrInvalidAccountData
	}
	offset += 8

	binary.GetKey32(data[offset:], &obj.Admin, &offset)
	binary.GetUint64(data[offset:], &obj.MaxOrdersPerUser, &offset)
	binary.GetUint64(data[offset:], &obj.MaxOrdersPerBook, &offset)
	binary.GetUint64(data[offset:], &obj.TotalMarketCount, &offset)
	binary.GetUint64(data[offset:], &obj.MarketSeqNum, &offset)
	binary.GetFixedBytes(data[offset:], obj.Extra[:], &offset)

	return nil
}

func (obj *GlobalConfigAccount) String() string {
	return fmt.Sprintf(
		"GlobalConfig{admin=%s,max_orders_per_user=%d,max_orders_per_book=%d,total_market_count=%d,market_seq_num=%d}",
		base58.Encode(obj.Admin),
		obj.MaxOrdersPerUser,
		obj.MaxOrdersPerBook,
		obj.TotalMarketCount,
		obj.MarketSeqNum,
	)
}

func putDiscriminator(dst []byte, discriminator []byte, offset *int) {
	copy(dst[*offset:], discriminator)
	*offset += 8
}
