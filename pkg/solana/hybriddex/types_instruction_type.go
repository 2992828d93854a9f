package hybriddex

import (
	"bytes"
)

type InstructionType uint8

const (
	Unknown InstructionType = iota

	InstructionTypeInitialize
	InstructionTypeTransferAdmin
	InstructionTypeChangeConfig

	InstructionTypeCreateMarket
	InstructionTypeCloseMarket
	InstructionTypeCreateOpenOrders

	InstructionTypePlaceOrder
	InstructionTypeCancelBuyOrder
	InstructionTypeCancelSellOrder
	InstructionTypeTakeBuyOrder
	InstructionTypeTakeSellOrder
	InstructionTypePartialTakeBuyOrder
	InstructionTypePartialTakeSellOrder
)

var instructionNames = map[InstructionType]string{
	InstructionTypeInitialize:           "initialize",
	InstructionTypeTransferAdmin:        "transfer_admin",
	InstructionTypeChangeConfig:         "change_config",
	InstructionTypeCreateMarket:         "create_market",
	InstructionTypeCloseMarket:          "close_market",
	InstructionTypeCreateOpenOrders:     "create_open_orders",
	InstructionTypePlaceOrder:           "place_order",
	InstructionTypeCancelBuyOrder:       "cancel_buy_order",
	InstructionTypeCancelSellOrder:      "cancel_sell_order",
	InstructionTypeTakeBuyOrder:         "take_buy_order",
	InstructionTypeTakeSellOrder:        "take_sell_order",
	InstructionTypePartialTakeBuyOrder:  "partial_take_buy_order",
	InstructionTypePartialTakeSellOrder: "partial_take_sell_order",
}

var instructionDiscriminators = func() map[InstructionType][]byte {
	res := make(map[InstructionType][]byte, len(instructionNames))
	for t, name := range instructionNames {
		res[t] = instructionDiscriminator(name)
	}
	return res
}()

func (t InstructionType) String() string {
	if name, ok := instructionNames[t]; ok {
		return name
	}
	return "unknown"
}

func (t InstructionType) Discriminator() []byte {
	return instructionDiscriminators[t]
}

// Side returns the book an order instruction targets. Place orders carry
// their side as an argument instead.
func (t InstructionType) Side() (Side, bool) {
	switch t {
	case InstructionTypeCancelBuyOrder, InstructionTypeTakeBuyOrder, InstructionTypePartialTakeBuyOrder:
		return SideBid, true
	case InstructionTypeCancelSellOrder, InstructionTypeTakeSellOrder, InstructionTypePartialTakeSellOrder:
		return SideAsk, true
	}
	return 0, false
}

// GetInstructionType identifies instruction data by its discriminator.
func GetInstructionType(data []byte) InstructionType {
	if len(data) < 8 {
		return Unknown
	}
	for t, discriminator := range instructionDiscriminators {
		if bytes.Equal(data[:8], discriminator) {
			return t
		}
	}
	return Unknown
}

func putInstructionType(dst []byte, v InstructionType, offset *int) {
	copy(dst[*offset:], v.Discriminator())
	*offset += 8
}

func checkInstructionType(data []byte, expected ...InstructionType) (InstructionType, error) {
	actual := GetInstructionType(data)
	for _, t := range expected {
		if actual == t {
			return actual, nil
		}
	}
	return Unknown, ErrInvalidInstructionData
}
