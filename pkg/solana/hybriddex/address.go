package hybriddex

import (
	"crypto/ed25519"
	"encoding/binary"

	"github.com/pkg/errors"

	"github.com/code-payments/hybrid-dex-cli/pkg/solana"
	"github.com/code-payments/hybrid-dex-cli/pkg/solana/token"
)

var (
	GlobalAuthorityPrefix  = []byte("global-authority")
	MarketPrefix           = []byte("market")
	UserMarketOrdersPrefix = []byte("user-market-book")
)

// ErrInvalidSeqWidth is returned for a market seed width other than 4 or 8.
var ErrInvalidSeqWidth = errors.New("market seq width must be 4 or 8")

// SeqWidth is the number of little endian bytes a market sequence number
// occupies in the market seed.
type SeqWidth int

const (
	SeqWidth32 SeqWidth = 4
	SeqWidth64 SeqWidth = 8

	DefaultSeqWidth = SeqWidth64
)

func (w SeqWidth) Validate() error {
	if w != SeqWidth32 && w != SeqWidth64 {
		return errors.Wrapf(ErrInvalidSeqWidth, "got %d", int(w))
	}
	return nil
}

// Encode returns seq as a seed of the configured width. A 4 byte seed
// cannot address sequence numbers above math.MaxUint32.
func (w SeqWidth) Encode(seq uint64) ([]byte, error) {
	switch w {
	case SeqWidth64:
		b := make([]byte, 8)
		binary.LittleEndian.PutUint64(b, seq)
		return b, nil
	case SeqWidth32:
		if seq > uint64(^uint32(0)) {
			return nil, errors.Errorf("market seq %d does not fit in 4 bytes", seq)
		}
		b := make([]byte, 4)
		binary.LittleEndian.PutUint32(b, uint32(seq))
		return b, nil
	}
	return nil, w.Validate()
}

type GetGlobalConfigAddressArgs struct {
	Program ed25519.PublicKey
}

func GetGlobalConfigAddress(args *GetGlobalConfigAddressArgs) (ed25519.PublicKey, uint8, error) {
	return solana.FindProgramAddressAndBump(
		programOrDefault(args.Program),
		GlobalAuthorityPrefix,
	)
}

type GetMarketAddressArgs struct {
	Program  ed25519.PublicKey
	Seq      uint64
	SeqWidth SeqWidth
}

func GetMarketAddress(args *GetMarketAddressArgs) (ed25519.PublicKey, uint8, error) {
	seq, err := args.SeqWidth.Encode(args.Seq)
	if err != nil {
		return nil, 0, err
	}

	return solana.FindProgramAddressAndBump(
		programOrDefault(args.Program),
		MarketPrefix,
		seq,
	)
}

type GetBookAddressArgs struct {
	Program ed25519.PublicKey
	Market  ed25519.PublicKey
	Side    Side
}

func GetBookAddress(args *GetBookAddressArgs) (ed25519.PublicKey, uint8, error) {
	if err := args.Side.Validate(); err != nil {
		return nil, 0, err
	}

	return solana.FindProgramAddressAndBump(
		programOrDefault(args.Program),
		args.Side.BookPrefix(),
		args.Market,
	)
}

type GetUserMarketOrdersAddressArgs struct {
	Program ed25519.PublicKey
	Market  ed25519.PublicKey
	User    ed25519.PublicKey
}

func GetUserMarketOrdersAddress(args *GetUserMarketOrdersAddressArgs) (ed25519.PublicKey, uint8, error) {
	return solana.FindProgramAddressAndBump(
		programOrDefault(args.Program),
		UserMarketOrdersPrefix,
		args.Market,
		args.User,
	)
}

type GetVaultAddressArgs struct {
	Market ed25519.PublicKey
	Mint   ed25519.PublicKey
}

// GetVaultAddress returns the market's associated token account for a mint,
// which holds the funds escrowed by resting orders.
func GetVaultAddress(args *GetVaultAddressArgs) (ed25519.PublicKey, error) {
	return token.GetAssociatedAccount(args.Market, args.Mint)
}
