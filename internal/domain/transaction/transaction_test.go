package transaction

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foodchain/foodchain/internal/domain/product"
)

type fakeEndpoint struct{ role string }

func (f *fakeEndpoint) RoleName() string                   { return f.role }
func (f *fakeEndpoint) IsProducer() bool                   { return false }
func (f *fakeEndpoint) IsConsumer() bool                   { return false }
func (f *fakeEndpoint) ReceiveMoney(*Transaction)          {}
func (f *fakeEndpoint) ReceiveProduct(*Transaction)        {}
func (f *fakeEndpoint) RelinquishProduct(*product.Product) {}
func (f *fakeEndpoint) SetDoubleSpending()                 {}
func (f *fakeEndpoint) IncreaseAttempts()                  {}

func TestNewMoney(t *testing.T) {
	sender := &fakeEndpoint{role: "Customer"}
	receiver := &fakeEndpoint{role: "Seller"}

	tx := NewMoney(sender, receiver, 45)
	assert.Equal(t, KindMoney, tx.Kind)
	assert.Equal(t, 45, tx.Amount)
	assert.Nil(t, tx.Product)
	assert.False(t, tx.Settled())
	assert.False(t, tx.Successful())
	assert.NotEqual(t, tx.ID, NewMoney(sender, receiver, 45).ID)
}

func TestNewProduct(t *testing.T) {
	prod, err := product.New(product.KindPork)
	require.NoError(t, err)

	tx := NewProduct(&fakeEndpoint{role: "Farmer"}, &fakeEndpoint{role: "Storage"}, prod)
	assert.Equal(t, KindProduct, tx.Kind)
	assert.Same(t, prod, tx.Product)
	assert.Zero(t, tx.Amount)
}

func TestMarkSettledOnce(t *testing.T) {
	tx := NewMoney(&fakeEndpoint{role: "Customer"}, &fakeEndpoint{role: "Seller"}, 45)

	require.NoError(t, tx.MarkSettled(true))
	assert.True(t, tx.Settled())
	assert.True(t, tx.Successful())

	err := tx.MarkSettled(false)
	assert.ErrorIs(t, err, ErrAlreadySettled)
	assert.True(t, tx.Successful(), "a second settlement changes nothing")
}
