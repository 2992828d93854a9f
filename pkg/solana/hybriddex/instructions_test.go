package hybriddex

import (
	"crypto/ed25519"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/hybrid-dex-cli/pkg/pointer"
	"github.com/code-payments/hybrid-dex-cli/pkg/solana"
	"github.com/code-payments/hybrid-dex-cli/pkg/testutil"
)

func TestInitializeInstruction(t *testing.T) {
	keys := testutil.GenerateSolanaKeys(t, 2)

	ix := NewInitializeInstruction(
		&InitializeInstructionAccounts{Admin: keys[0], GlobalConfig: keys[1]},
		&InitializeInstructionArgs{MaxOrdersPerUser: 5, MaxOrdersPerBook: 50},
	)

	assert.EqualValues(t, PROGRAM_ID, ix.Program)
	assert.Equal(t, append(InstructionTypeInitialize.Discriminator(), 5, 0, 0, 0, 0, 0, 0, 0, 50, 0, 0, 0, 0, 0, 0, 0), ix.Data)
	require.Len(t, ix.Accounts, 4)
	assert.True(t, ix.Accounts[0].IsSigner)
	assert.True(t, ix.Accounts[1].IsWritable)
	assert.EqualValues(t, SYSTEM_PROGRAM_ID, ix.Accounts[2].PublicKey)
	assert.EqualValues(t, SYSVAR_RENT_PUBKEY, ix.Accounts[3].PublicKey)

	accounts, args, err := ParseInitializeInstruction(nil, ix)
	require.NoError(t, err)
	assert.Equal(t, keys[0], accounts.Admin)
	assert.Equal(t, keys[1], accounts.GlobalConfig)
	assert.EqualValues(t, 5, args.MaxOrdersPerUser)
	assert.EqualValues(t, 50, args.MaxOrdersPerBook)
}

func TestChangeConfigInstruction_Options(t *testing.T) {
	keys := testutil.GenerateSolanaKeys(t, 2)
	accounts := &AdminInstructionAccounts{Admin: keys[0], GlobalConfig: keys[1]}

	ix := NewChangeConfigInstruction(accounts, &ChangeConfigInstructionArgs{MaxOrdersPerBook: pointer.Uint64(9)})
	assert.Equal(t, append(InstructionTypeChangeConfig.Discriminator(), 0, 1, 9, 0, 0, 0, 0, 0, 0, 0), ix.Data)

	_, args, err := ParseChangeConfigInstruction(nil, ix)
	require.NoError(t, err)
	assert.Nil(t, args.MaxOrdersPerUser)
	require.NotNil(t, args.MaxOrdersPerBook)
	assert.EqualValues(t, 9, *args.MaxOrdersPerBook)

	ix = NewChangeConfigInstruction(accounts, &ChangeConfigInstructionArgs{})
	assert.Len(t, ix.Data, 10)

	ix.Data[8] = 2
	_, _, err = ParseChangeConfigInstruction(nil, ix)
	assert.Equal(t, ErrInvalidInstructionData, err)
}

func TestCreateMarketInstruction(t *testing.T) {
	keys := testutil.GenerateSolanaKeys(t, 7)
	expected := &MarketInstructionAccounts{
		Program:      PROGRAM_ID,
		Authority:    keys[0],
		GlobalConfig: keys[1],
		Market:       keys[2],
		BaseMint:     keys[3],
		QuoteMint:    keys[4],
		Bids:         keys[5],
		Asks:         keys[6],
	}

	ix := NewCreateMarketInstruction(expected, &CreateMarketInstructionArgs{Name: "AB"})
	assert.Equal(t, append(InstructionTypeCreateMarket.Discriminator(), 2, 0, 0, 0, 'A', 'B'), ix.Data)
	require.Len(t, ix.Accounts, 9)
	assert.False(t, ix.Accounts[3].IsWritable)
	assert.True(t, ix.Accounts[5].IsWritable)

	accounts, args, err := ParseCreateMarketInstruction(nil, ix)
	require.NoError(t, err)
	assert.Equal(t, expected, accounts)
	assert.Equal(t, "AB", args.Name)

	ix.Data = ix.Data[:len(ix.Data)-1]
	_, _, err = ParseCreateMarketInstruction(nil, ix)
	assert.Equal(t, ErrInvalidInstructionData, err)

	closeIx := NewCloseMarketInstruction(expected, &CloseMarketInstructionArgs{Seed: 3})
	_, closeArgs, err := ParseCloseMarketInstruction(nil, closeIx)
	require.NoError(t, err)
	assert.EqualValues(t, 3, closeArgs.Seed)
}

func TestPlaceOrderInstruction(t *testing.T) {
	keys := testutil.GenerateSolanaKeys(t, 12)
	expected := &PlaceOrderInstructionAccounts{
		Program:        PROGRAM_ID,
		Maker:          keys[0],
		GlobalConfig:   keys[1],
		Market:         keys[2],
		UserOpenOrders: keys[3],
		BaseMint:       keys[4],
		QuoteMint:      keys[5],
		UserBase:       keys[6],
		UserQuote:      keys[7],
		BaseVault:      keys[8],
		QuoteVault:     keys[9],
		Bids:           keys[10],
		Asks:           keys[11],
	}

	ix := NewPlaceOrderInstruction(expected, &PlaceOrderInstructionArgs{Side: SideAsk, Price: 100, Quantity: 7})
	require.Len(t, ix.Accounts, 16)
	assert.EqualValues(t, ASSOCIATED_TOKEN_PROGRAM_ID, ix.Accounts[12].PublicKey)
	assert.EqualValues(t, SPL_TOKEN_PROGRAM_ID, ix.Accounts[13].PublicKey)
	assert.False(t, ix.Accounts[1].IsWritable)

	accounts, args, err := ParsePlaceOrderInstruction(nil, ix)
	require.NoError(t, err)
	assert.Equal(t, expected, accounts)
	assert.Equal(t, &PlaceOrderInstructionArgs{Side: SideAsk, Price: 100, Quantity: 7}, args)
}

func TestOrderInstructions_SideDispatch(t *testing.T) {
	keys := testutil.GenerateSolanaKeys(t, 12)

	for _, side := range []Side{SideBid, SideAsk} {
		cancel := NewCancelOrderInstruction(
			&CancelOrderInstructionAccounts{
				Maker:          keys[0],
				Market:         keys[1],
				UserOpenOrders: keys[2],
				BaseMint:       keys[3],
				QuoteMint:      keys[4],
				UserEscrow:     keys[5],
				EscrowVault:    keys[6],
				Book:           keys[7],
			},
			&CancelOrderInstructionArgs{Side: side, Seed: 1, OrderID: 2},
		)
		assert.Equal(t, side.CancelInstruction(), GetInstructionType(cancel.Data))

		_, cancelArgs, err := ParseCancelOrderInstruction(nil, cancel)
		require.NoError(t, err)
		assert.Equal(t, &CancelOrderInstructionArgs{Side: side, Seed: 1, OrderID: 2}, cancelArgs)

		takeAccounts := &TakeOrderInstructionAccounts{
			Program:         PROGRAM_ID,
			Taker:           keys[0],
			Maker:           keys[1],
			Market:          keys[2],
			MakerOpenOrders: keys[3],
			TakerOpenOrders: keys[4],
			BaseMint:        keys[5],
			QuoteMint:       keys[6],
			MakerCounter:    keys[7],
			TakerCounter:    keys[8],
			TakerEscrow:     keys[9],
			EscrowVault:     keys[10],
			Book:            keys[11],
		}

		take := NewTakeOrderInstruction(takeAccounts, &TakeOrderInstructionArgs{Side: side, Seed: 1, OrderID: 2})
		assert.Equal(t, side.TakeInstruction(), GetInstructionType(take.Data))

		accounts, args, partial, err := ParseTakeOrderInstruction(nil, take)
		require.NoError(t, err)
		assert.False(t, partial)
		assert.Equal(t, takeAccounts, accounts)
		assert.Equal(t, &PartialTakeOrderInstructionArgs{Side: side, Seed: 1, OrderID: 2}, args)

		partialTake := NewPartialTakeOrderInstruction(takeAccounts, &PartialTakeOrderInstructionArgs{Side: side, Seed: 1, OrderID: 2, Amount: 3})
		assert.Equal(t, side.PartialTakeInstruction(), GetInstructionType(partialTake.Data))

		_, args, partial, err = ParseTakeOrderInstruction(nil, partialTake)
		require.NoError(t, err)
		assert.True(t, partial)
		assert.EqualValues(t, 3, args.Amount)
	}

	assert.Equal(t, InstructionTypeCancelBuyOrder, SideBid.CancelInstruction())
	assert.Equal(t, InstructionTypeTakeSellOrder, SideAsk.TakeInstruction())
	assert.Equal(t, InstructionTypePartialTakeSellOrder, SideAsk.PartialTakeInstruction())
}

func TestParseInstruction_Errors(t *testing.T) {
	keys := testutil.GenerateSolanaKeys(t, 3)
	ix := NewCreateOpenOrdersInstruction(&CreateOpenOrdersInstructionAccounts{
		User:           keys[0],
		Market:         keys[1],
		UserOpenOrders: keys[2],
	})

	accounts, err := ParseCreateOpenOrdersInstruction(nil, ix)
	require.NoError(t, err)
	assert.Equal(t, keys[2], accounts.UserOpenOrders)

	_, err = ParseCreateOpenOrdersInstruction(keys[0], ix)
	assert.Equal(t, ErrInvalidProgram, err)

	_, _, err = ParseInitializeInstruction(nil, ix)
	assert.Equal(t, ErrInvalidInstructionData, err)

	short := ix
	short.Accounts = ix.Accounts[:2]
	_, err = ParseCreateOpenOrdersInstruction(nil, short)
	assert.ErrorIs(t, err, ErrNotEnoughAccounts)

	unsigned := solana.NewInstruction(ix.Program, ix.Data, append([]solana.AccountMeta{solana.NewAccountMeta(keys[0], false)}, ix.Accounts[1:]...)...)
	_, err = ParseCreateOpenOrdersInstruction(nil, unsigned)
	assert.ErrorIs(t, err, ErrMissingSignature)

	assert.Equal(t, Unknown, GetInstructionType([]byte{1, 2, 3}))
	assert.Equal(t, Unknown, GetInstructionType(make([]byte, 8)))
}

func TestProgramError(t *testing.T) {
	assert.EqualValues(t, 6000, ProgramErrorInvalidAdmin)
	assert.EqualValues(t, 6005, ProgramErrorOpenOrdersFull)
	assert.EqualValues(t, 6011, ProgramErrorInvalidAmount)

	e, ok := GetProgramError(6008)
	require.True(t, ok)
	assert.Equal(t, ProgramErrorOrderNotFound, e)
	assert.Equal(t, "OrderNotFound", e.Name())
	assert.EqualValues(t, 6008, e.Custom())

	_, ok = GetProgramError(6012)
	assert.False(t, ok)
	assert.Equal(t, "Unknown(42)", ProgramError(42).Name())
}

func TestParseSide(t *testing.T) {
	for value, expected := range map[string]Side{"bid": SideBid, "BUY": SideBid, "ask": SideAsk, "sell": SideAsk} {
		side, err := ParseSide(value)
		require.NoError(t, err)
		assert.Equal(t, expected, side)
	}

	_, err := ParseSide("both")
	assert.ErrorIs(t, err, ErrInvalidSide)
	assert.ErrorIs(t, Side(2).Validate(), ErrInvalidSide)

	keys := testutil.GenerateSolanaKeys(t, 2)
	base, quote := ed25519.PublicKey(keys[0]), ed25519.PublicKey(keys[1])
	assert.Equal(t, quote, SideBid.EscrowMint(base, quote))
	assert.Equal(t, base, SideBid.CounterMint(base, quote))
	assert.Equal(t, base, SideAsk.EscrowMint(base, quote))
	assert.Equal(t, quote, SideAsk.CounterMint(base, quote))

	var u UserMarketOrdersAccount
	*SideBid.EscrowDeposit(&u) += 1
	*SideAsk.EscrowDeposit(&u) += 2
	assert.EqualValues(t, 1, u.QuoteDepositTotal)
	assert.EqualValues(t, 2, u.BaseDepositTotal)
}
