package channel

import (
	"fmt"

	"github.com/foodchain/foodchain/internal/domain/event"
	"github.com/foodchain/foodchain/internal/domain/transaction"
)

// MsgDoubleSpending is emitted when a product instance is transmitted
// while a prior transmission of it is still pending.
const MsgDoubleSpending = "ATTEMPT TO COMMIT DOUBLE SPENDING"

// Channel validates and, if valid, settles a transaction. A rejected
// transmission returns nil; business rejections never surface as
// errors, only as published events.
type Channel interface {
	MakeTransmission(tx *transaction.Transaction) *transaction.Transaction
}

// PaymentChannel settles MONEY transactions. The producer role may
// only receive money and the consumer role may only send it.
type PaymentChannel struct {
	sink event.Sink
}

// NewPaymentChannel creates a payment channel publishing to sink.
func NewPaymentChannel(sink event.Sink) *PaymentChannel {
	if sink == nil {
		sink = event.Nop{}
	}
	return &PaymentChannel{sink: sink}
}

// MakeTransmission validates role legality and delivers the money to
// the receiver. Violations are rejected without mutating any state.
func (c *PaymentChannel) MakeTransmission(tx *transaction.Transaction) *transaction.Transaction {
	if tx == nil || tx.Kind != transaction.KindMoney {
		return nil
	}
	if tx.Sender.IsProducer() {
		c.sink.Publish(event.Warning(event.CodeRoleViolation, tx.Sender.RoleName(),
			fmt.Sprintf("%s doesn't send money!", tx.Sender.RoleName())))
		return nil
	}
	if tx.Receiver.IsConsumer() {
		c.sink.Publish(event.Warning(event.CodeRoleViolation, tx.Receiver.RoleName(),
			fmt.Sprintf("%s doesn't receive money, but pays!", tx.Receiver.RoleName())))
		return nil
	}
	tx.Receiver.ReceiveMoney(tx)
	_ = tx.MarkSettled(true)
	return tx
}

// GoodsChannel settles PRODUCT transactions and detects double-spend
// attempts on the product's in-flight flag.
type GoodsChannel struct {
	sink event.Sink
}

// NewGoodsChannel creates a goods channel publishing to sink.
func NewGoodsChannel(sink event.Sink) *GoodsChannel {
	if sink == nil {
		sink = event.Nop{}
	}
	return &GoodsChannel{sink: sink}
}

// MakeTransmission transfers custody of the product to the receiver.
// If the instance is already mid-transmission the sender is flagged as
// double spending, the mid-transfer set is discarded and the
// transmission is rejected. An intermediate custodian's settlement
// releases the in-flight flag; the terminal sale to the consumer does
// not, the unit is out of circulation from that point on.
func (c *GoodsChannel) MakeTransmission(tx *transaction.Transaction) *transaction.Transaction {
	if tx == nil || tx.Kind != transaction.KindProduct || tx.Product == nil {
		return nil
	}
	prod := tx.Product
	if prod.IsCurrentlyProcessed() {
		tx.Sender.SetDoubleSpending()
		tx.Sender.IncreaseAttempts()
		prod.ClearProcessingParties()
		c.sink.Publish(event.Warning(event.CodeDoubleSpend, tx.Sender.RoleName(), MsgDoubleSpending))
		return nil
	}
	prod.SetCurrentlyProcessed(true)
	prod.AddProcessingParty(tx.Receiver.RoleName())
	tx.Receiver.ReceiveProduct(tx)
	_ = tx.MarkSettled(true)
	if !tx.Receiver.IsConsumer() {
		tx.Sender.RelinquishProduct(prod)
		prod.SetCurrentlyProcessed(false)
		prod.ClearProcessingParties()
	}
	return tx
}
