package transaction

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/foodchain/foodchain/internal/domain/product"
)

// Kind discriminates the transaction payload.
type Kind string

const (
	KindMoney   Kind = "MONEY"
	KindProduct Kind = "PRODUCT"
)

var ErrAlreadySettled = errors.New("transaction already settled")

// Endpoint is the view of a chain party that a transaction carries.
// Channels use it for role legality, payload delivery and double-spend
// bookkeeping without depending on the party package.
type Endpoint interface {
	RoleName() string
	IsProducer() bool
	IsConsumer() bool
	ReceiveMoney(tx *Transaction)
	ReceiveProduct(tx *Transaction)
	RelinquishProduct(p *product.Product)
	SetDoubleSpending()
	IncreaseAttempts()
}

// Transaction is an immutable record of one transfer attempt between
// two parties. The successful flag is set exactly once, at settlement.
type Transaction struct {
	ID       uuid.UUID
	Kind     Kind
	Sender   Endpoint
	Receiver Endpoint
	Amount   int
	Product  *product.Product
	CreatedAt time.Time

	settled    bool
	successful bool
}

// NewMoney creates an unsettled MONEY transaction.
func NewMoney(sender, receiver Endpoint, amount int) *Transaction {
	return &Transaction{
		ID:        uuid.New(),
		Kind:      KindMoney,
		Sender:    sender,
		Receiver:  receiver,
		Amount:    amount,
		CreatedAt: time.Now().UTC(),
	}
}

// NewProduct creates an unsettled PRODUCT transaction.
func NewProduct(sender, receiver Endpoint, p *product.Product) *Transaction {
	return &Transaction{
		ID:        uuid.New(),
		Kind:      KindProduct,
		Sender:    sender,
		Receiver:  receiver,
		Product:   p,
		CreatedAt: time.Now().UTC(),
	}
}

// MarkSettled records the settlement outcome. A second call fails with
// ErrAlreadySettled and changes nothing.
func (t *Transaction) MarkSettled(success bool) error {
	if t.settled {
		return ErrAlreadySettled
	}
	t.settled = true
	t.successful = success
	return nil
}

// Settled reports whether the settlement outcome has been recorded.
func (t *Transaction) Settled() bool {
	return t.settled
}

// Successful reports the settlement outcome.
func (t *Transaction) Successful() bool {
	return t.successful
}
