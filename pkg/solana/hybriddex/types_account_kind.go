package hybriddex

import (
	"bytes"

	"github.com/pkg/errors"
)

// AccountKind enumerates the accounts owned by the program.
type AccountKind uint8

const (
	AccountKindUnknown AccountKind = iota
	AccountKindGlobalConfig
	AccountKindMarket
	AccountKindBook
	AccountKindUserMarketOrders
)

func (k AccountKind) String() string {
	switch k {
	case AccountKindGlobalConfig:
		return "GlobalConfig"
	case AccountKindMarket:
		return "Market"
	case AccountKindBook:
		return "Book"
	case AccountKindUserMarketOrders:
		return "UserMarketOrders"
	}
	return "Unknown"
}

// Discriminator is the 8 byte tag prefixing accounts of this kind.
func (k AccountKind) Discriminator() []byte {
	switch k {
	case AccountKindGlobalConfig:
		return GlobalConfigAccountDiscriminator
	case AccountKindMarket:
		return MarketAccountDiscriminator
	case AccountKindBook:
		return BookAccountDiscriminator
	case AccountKindUserMarketOrders:
		return UserMarketOrdersAccountDiscriminator
	}
	return nil
}

// New returns an empty account of this kind.
func (k AccountKind) New() (Account, error) {
	switch k {
	case AccountKindGlobalConfig:
		return &GlobalConfigAccount{}, nil
	case AccountKindMarket:
		return &MarketAccount{}, nil
	case AccountKindBook:
		return &BookAccount{}, nil
	case AccountKindUserMarketOrders:
		return &UserMarketOrdersAccount{}, nil
	}
	return nil, errors.Errorf("unknown account kind: %d", uint8(k))
}

// Account is implemented by exactly the program's account types.
type Account interface {
	Kind() AccountKind
	Marshal() []byte
	Unmarshal([]byte) error
	String() string

	isAccount()
}

func (*GlobalConfigAccount) Kind() AccountKind     { return AccountKindGlobalConfig }
func (*MarketAccount) Kind() AccountKind           { return AccountKindMarket }
func (*BookAccount) Kind() AccountKind             { return AccountKindBook }
func (*UserMarketOrdersAccount) Kind() AccountKind { return AccountKindUserMarketOrders }

func (*GlobalConfigAccount) isAccount()     {}
func (*MarketAccount) isAccount()           {}
func (*BookAccount) isAccount()             {}
func (*UserMarketOrdersAccount) isAccount() {}

// GetAccountKind identifies account data by its discriminator.
func GetAccountKind(data []byte) AccountKind {
	if len(data) < 8 {
		return AccountKindUnknown
	}

	for _, k := range []AccountKind{
		AccountKindGlobalConfig,
		AccountKindMarket,
		AccountKindBook,
		AccountKindUserMarketOrders,
	} {
		if bytes.Equal(data[:8], k.Discriminator()) {
			return k
		}
	}
	return AccountKindUnknown
}

// DecodeAccount decodes data as an account of the expected kind.
func DecodeAccount(kind AccountKind, data []byte) (Account, error) {
	account, err := kind.New()
	if err != nil {
		return nil, err
	}

	if err := account.Unmarshal(data); err != nil {
		return nil, errors.Wrapf(err, "failed to decode %s", kind)
	}
	return account, nil
}

// DecodeAnyAccount decodes data as whichever account kind its
// discriminator declares.
func DecodeAnyAccount(data []byte) (Account, error) {
	kind := GetAccountKind(data)
	if kind == AccountKindUnknown {
		return nil, ErrInvalidAccountData
	}
	return DecodeAccount(kind, data)
}
