package hybriddex

import (
	"crypto/ed25519"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/hybrid-dex-cli/pkg/testutil"
)

func TestDiscriminators(t *testing.T) {
	assert.Equal(t, []byte{162, 244, 124, 37, 148, 94, 28, 50}, GlobalConfigAccountDiscriminator)
	assert.Equal(t, []byte{219, 190, 213, 55, 0, 227, 198, 154}, MarketAccountDiscriminator)
	assert.Equal(t, []byte{121, 34, 121, 35, 91, 62, 85, 222}, BookAccountDiscriminator)
	assert.Equal(t, []byte{177, 198, 190, 183, 1, 137, 172, 178}, UserMarketOrdersAccountDiscriminator)

	assert.Equal(t, []byte{175, 175, 109, 31, 13, 152, 155, 237}, InstructionTypeInitialize.Discriminator())
	assert.Equal(t, []byte{51, 194, 155, 175, 109, 130, 96, 106}, InstructionTypePlaceOrder.Discriminator())
	assert.Equal(t, []byte{51, 18, 45, 16, 46, 147, 43, 45}, InstructionTypeTakeBuyOrder.Discriminator())
}

func TestAccountSizes(t *testing.T) {
	assert.Equal(t, 88, GlobalConfigAccountSize)
	assert.Equal(t, 242, MarketAccountSize)
	assert.Equal(t, 53, BookAccountHeaderSize)
	assert.Equal(t, 64, OpenedOrderSize)
	assert.Equal(t, 128, UserMarketOrdersAccountSize)
	assert.Equal(t, 53+64*10, BookAccountSize(10))

	assert.Equal(t, 64, MarketBaseMintOffset)
	assert.Equal(t, 96, MarketQuoteMintOffset)
}

func TestGlobalConfigAccount_RoundTrip(t *testing.T) {
	expected := &GlobalConfigAccount{
		Admin:            testutil.GenerateSolanaKeys(t, 1)[0],
		MaxOrdersPerUser: 10,
		MaxOrdersPerBook: 100,
		TotalMarketCount: 3,
		MarketSeqNum:     4,
	}

	data := expected.Marshal()
	require.Len(t, data, GlobalConfigAccountSize)

	var actual GlobalConfigAccount
	require.NoError(t, actual.Unmarshal(data))
	assert.Equal(t, expected, &actual)
}

func TestMarketAccount_RoundTrip(t *testing.T) {
	keys := testutil.GenerateSolanaKeys(t, 5)

	expected := &MarketAccount{
		Seed:             3,
		Name:             "AB",
		MarketAuthority:  keys[0],
		BaseMint:         keys[1],
		QuoteMint:        keys[2],
		BaseDecimal:      9,
		QuoteDecimal:     6,
		Bids:             keys[3],
		Asks:             keys[4],
		CreatedAt:        1700000000,
		BaseTotalVolume:  1,
		QuoteTotalVolume: 2,
		OrderSeqNum:      7,
	}

	data := expected.Marshal()
	require.Len(t, data, MarketAccountSize)
	assert.EqualValues(t, keys[1], data[MarketBaseMintOffset:MarketBaseMintOffset+32])
	assert.EqualValues(t, keys[2], data[MarketQuoteMintOffset:MarketQuoteMintOffset+32])

	var actual MarketAccount
	require.NoError(t, actual.Unmarshal(data))
	assert.Equal(t, expected, &actual)
	assert.Equal(t, keys[3], actual.Book(SideBid))
	assert.Equal(t, keys[4], actual.Book(SideAsk))

	// Full length names have no padding to trim
	expected.Name = "0123456789abcdef"
	require.NoError(t, actual.Unmarshal(expected.Marshal()))
	assert.Equal(t, "0123456789abcdef", actual.Name)
}

func TestUserMarketOrdersAccount_RoundTrip(t *testing.T) {
	keys := testutil.GenerateSolanaKeys(t, 2)

	expected := &UserMarketOrdersAccount{
		Address:           keys[0],
		Market:            keys[1],
		OpenedOrdersCount: 2,
		BaseDepositTotal:  3,
		QuoteDepositTotal: 4,
		BaseTotalVolume:   5,
		QuoteTotalVolume:  6,
		Extra:             [16]byte{1},
	}

	data := expected.Marshal()
	require.Len(t, data, UserMarketOrdersAccountSize)
	assert.EqualValues(t, keys[1], data[UserMarketOrdersMarketOffset:UserMarketOrdersMarketOffset+32])

	var actual UserMarketOrdersAccount
	require.NoError(t, actual.Unmarshal(data))
	assert.Equal(t, expected, &actual)
}

func TestBookAccount_RoundTrip(t *testing.T) {
	keys := testutil.GenerateSolanaKeys(t, 3)

	expected := &BookAccount{
		Side:        SideAsk,
		Market:      keys[0],
		OrdersCount: 2,
		Orders: []OpenedOrder{
			{OrderID: 1, Owner: keys[1], Price: 10, Quantity: 5, CreatedAt: 100},
			{OrderID: 2, Owner: keys[2], Price: 11, Quantity: 6, CreatedAt: 101},
		},
	}

	data := expected.Marshal()
	require.Len(t, data, BookAccountSize(2))

	var actual BookAccount
	require.NoError(t, actual.Unmarshal(data))
	assert.Equal(t, expected, &actual)

	// Accounts are allocated for the book's capacity
	padded := append(data, make([]byte, 10*OpenedOrderSize)...)
	require.NoError(t, actual.Unmarshal(padded))
	assert.Equal(t, expected, &actual)

	empty := &BookAccount{Side: SideBid, Market: keys[0], Orders: []OpenedOrder{}}
	require.NoError(t, actual.Unmarshal(empty.Marshal()))
	assert.Equal(t, empty, &actual)
}

func TestAccounts_Malformed(t *testing.T) {
	market := &MarketAccount{
		MarketAuthority: make(ed25519.PublicKey, 32),
		BaseMint:        make(ed25519.PublicKey, 32),
		QuoteMint:       make(ed25519.PublicKey, 32),
		Bids:            make(ed25519.PublicKey, 32),
		Asks:            make(ed25519.PublicKey, 32),
	}
	data := market.Marshal()

	// Short
	assert.Equal(t, ErrInvalidAccountData, (&MarketAccount{}).Unmarshal(data[:MarketAccountSize-1]))
	assert.Equal(t, ErrInvalidAccountData, (&GlobalConfigAccount{}).Unmarshal(nil))
	assert.Equal(t, ErrInvalidAccountData, (&UserMarketOrdersAccount{}).Unmarshal(make([]byte, 10)))
	assert.Equal(t, ErrInvalidAccountData, (&BookAccount{}).Unmarshal(make([]byte, BookAccountHeaderSize-1)))

	// Discriminator mismatch
	assert.Equal(t, ErrInvalidAccountData, (&UserMarketOrdersAccount{}).Unmarshal(data[:UserMarketOrdersAccountSize]))
	assert.Equal(t, ErrInvalidAccountData, (&BookAccount{}).Unmarshal(data))

	// Trailing bytes
	assert.NoError(t, (&MarketAccount{}).Unmarshal(append(data, 0, 0, 0)))

	// Vector longer than the data
	book := &BookAccount{
		Side:   SideBid,
		Market: make(ed25519.PublicKey, 32),
		Orders: []OpenedOrder{{Owner: make(ed25519.PublicKey, 32)}},
	}
	data = book.Marshal()
	assert.Equal(t, ErrInvalidAccountData, (&BookAccount{}).Unmarshal(data[:len(data)-1]))

	// Unknown side
	data[8] = 2
	assert.Equal(t, ErrInvalidAccountData, (&BookAccount{}).Unmarshal(data))
}

func TestDecodeAccount(t *testing.T) {
	user := &UserMarketOrdersAccount{
		Address: testutil.GenerateSolanaKeys(t, 1)[0],
		Market:  testutil.GenerateSolanaKeys(t, 1)[0],
	}
	data := user.Marshal()

	assert.Equal(t, AccountKindUserMarketOrders, GetAccountKind(data))
	assert.Equal(t, AccountKindUnknown, GetAccountKind(data[:4]))
	assert.Equal(t, AccountKindUnknown, GetAccountKind(make([]byte, 8)))

	decoded, err := DecodeAnyAccount(data)
	require.NoError(t, err)
	actual, ok := decoded.(*UserMarketOrdersAccount)
	require.True(t, ok)
	assert.Equal(t, user, actual)

	_, err = DecodeAccount(AccountKindMarket, data)
	assert.Error(t, err)

	_, err = DecodeAnyAccount(make([]byte, 128))
	assert.Equal(t, ErrInvalidAccountData, err)

	for _, kind := range []AccountKind{AccountKindGlobalConfig, AccountKindMarket, AccountKindBook, AccountKindUserMarketOrders} {
		account, err := kind.New()
		require.NoError(t, err)
		assert.Equal(t, kind, account.Kind())
		assert.Len(t, kind.Discriminator(), 8)
	}

	_, err = AccountKindUnknown.New()
	assert.Error(t, err)
}
