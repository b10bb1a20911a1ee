package market

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foodchain/foodchain/internal/application/inspection"
	"github.com/foodchain/foodchain/internal/domain/event"
	"github.com/foodchain/foodchain/internal/domain/ledger"
	"github.com/foodchain/foodchain/internal/domain/party"
	"github.com/foodchain/foodchain/internal/domain/product"
)

func newService(t *testing.T) (*Service, *event.Capture) {
	t.Helper()
	sink := event.NewCapture()
	log := ledger.NewLog(ledger.NewMemoryStore())
	chain := party.NewChain(product.NewCatalogFactory(), log, sink)
	engine := inspection.NewEngine(inspection.DefaultRules(), sink, zerolog.Nop())
	return NewService(chain, log, engine, zerolog.Nop()), sink
}

func TestServiceRequestAndPay(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	req, err := svc.Request(ctx, "milk")
	require.NoError(t, err)
	assert.True(t, req.Found)
	assert.Equal(t, "Milk", req.Product)
	assert.Equal(t, product.StatePacked, req.State)
	assert.Equal(t, 45, req.Price)
	assert.Equal(t, party.RequestFound, req.RequestState)

	pay, err := svc.Pay(ctx, 45)
	require.NoError(t, err)
	assert.True(t, pay.Successful)
	assert.True(t, pay.Delivered)
	assert.Equal(t, party.RequestDelivered, pay.RequestState)

	view, err := svc.Ledger(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(10), view.Size)
	assert.True(t, view.Valid)
}

func TestServiceRequestValidation(t *testing.T) {
	svc, _ := newService(t)

	_, err := svc.Request(context.Background(), "  ")
	assert.ErrorIs(t, err, ErrEmptyProduct)

	req, err := svc.Request(context.Background(), "caviar")
	require.NoError(t, err)
	assert.False(t, req.Found)
	assert.Equal(t, party.RequestRejected, req.RequestState)
}

func TestServicePayWithoutRequest(t *testing.T) {
	svc, _ := newService(t)

	_, err := svc.Pay(context.Background(), 45)
	assert.ErrorIs(t, err, ErrNoPendingRequest)
}

func TestServiceUnderpaymentProducesFinding(t *testing.T) {
	svc, sink := newService(t)
	ctx := context.Background()

	_, err := svc.Request(ctx, "pork")
	require.NoError(t, err)

	pay, err := svc.Pay(ctx, 50)
	require.NoError(t, err)
	assert.False(t, pay.Successful)
	assert.False(t, pay.Delivered)
	assert.Equal(t, party.RequestRejected, pay.RequestState)
	assert.True(t, sink.ContainsText(party.MsgNotEnoughMoney))

	var names []string
	for _, f := range svc.Findings(ctx) {
		names = append(names, f.Rule)
	}
	assert.Contains(t, names, "request-rejected")
}

func TestServiceDoubleSpendFinding(t *testing.T) {
	svc, sink := newService(t)
	ctx := context.Background()

	_, err := svc.Request(ctx, "milk")
	require.NoError(t, err)
	_, err = svc.Pay(ctx, 45)
	require.NoError(t, err)

	_, err = svc.Request(ctx, "milk")
	require.NoError(t, err)
	pay, err := svc.Pay(ctx, 45)
	require.NoError(t, err)

	assert.True(t, pay.Successful, "the payment itself settles")
	assert.False(t, pay.Delivered)
	assert.Equal(t, 1, sink.CountCode(event.CodeDoubleSpend))

	seller, err := svc.Party(ctx, "seller")
	require.NoError(t, err)
	assert.True(t, seller.DoubleSpending)
	assert.Equal(t, 1, seller.DoubleSpendAttempts)

	var names []string
	for _, f := range pay.Findings {
		names = append(names, f.Rule)
	}
	assert.Contains(t, names, "double-spend-attempted")
}

func TestServiceParties(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	snaps := svc.Parties(ctx)
	require.Len(t, snaps, 6)
	assert.Equal(t, party.RoleCustomer, snaps[0].Role)
	assert.Equal(t, party.RoleFarmer, snaps[5].Role)

	_, err := svc.Party(ctx, "broker")
	assert.ErrorIs(t, err, ErrUnknownRole)
}
