package inspection

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foodchain/foodchain/internal/domain/event"
	"github.com/foodchain/foodchain/internal/domain/party"
)

func TestNewRule(t *testing.T) {
	t.Run("compiles", func(t *testing.T) {
		rule, err := NewRule("ds", "doubleSpendAttempts >= 1", event.SeverityCritical)
		require.NoError(t, err)
		assert.Equal(t, "ds", rule.Name)
		assert.NotZero(t, rule.ID)
	})

	t.Run("empty expression", func(t *testing.T) {
		_, err := NewRule("bad", "   ", event.SeverityInfo)
		assert.ErrorIs(t, err, ErrEmptyExpression)
	})

	t.Run("invalid syntax", func(t *testing.T) {
		_, err := NewRule("bad", "a >> ==", event.SeverityInfo)
		assert.Error(t, err)
	})
}

func TestRuleEvaluate(t *testing.T) {
	rule, err := NewRule("ds", "doubleSpendAttempts >= 1 && role == 'Seller'", event.SeverityCritical)
	require.NoError(t, err)

	tests := []struct {
		name   string
		params map[string]interface{}
		want   bool
	}{
		{
			name:   "match",
			params: map[string]interface{}{"doubleSpendAttempts": 1.0, "role": "Seller"},
			want:   true,
		},
		{
			name:   "wrong role",
			params: map[string]interface{}{"doubleSpendAttempts": 2.0, "role": "Storage"},
			want:   false,
		},
		{
			name:   "no attempts",
			params: map[string]interface{}{"doubleSpendAttempts": 0.0, "role": "Seller"},
			want:   false,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := rule.Evaluate(tc.params)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestEngineInspectParty(t *testing.T) {
	sink := event.NewCapture()
	engine := NewEngine(DefaultRules(), sink, zerolog.Nop())

	clean := party.Snapshot{Role: party.RoleStorage, RequestState: party.RequestFound}
	assert.Empty(t, engine.InspectParty(clean))
	assert.Empty(t, engine.Findings())

	dirty := party.Snapshot{
		Role:                party.RoleSeller,
		RequestState:        party.RequestRejected,
		DoubleSpending:      true,
		DoubleSpendAttempts: 1,
	}
	matched := engine.InspectParty(dirty)
	require.Len(t, matched, 2)
	assert.Equal(t, "double-spend-attempted", matched[0].Rule)
	assert.Equal(t, event.SeverityCritical, matched[0].Severity)
	assert.Equal(t, "request-rejected", matched[1].Rule)
	assert.Equal(t, party.RoleSeller, matched[0].Role)

	assert.Len(t, engine.Findings(), 2)
	assert.Equal(t, 2, sink.CountCode(event.CodeRuleMatch))
}

func TestEngineInspectChain(t *testing.T) {
	engine := NewEngine(DefaultRules(), nil, zerolog.Nop())

	snaps := []party.Snapshot{
		{Role: party.RoleFarmer, RequestState: party.RequestFound, MoneyReceived: true},
		{Role: party.RoleCustomer, RequestState: party.RequestDelivered},
	}
	matched := engine.InspectChain(snaps)
	require.Len(t, matched, 1)
	assert.Equal(t, "payment-pending", matched[0].Rule)
	assert.Equal(t, party.RoleFarmer, matched[0].Role)
}

func TestEngineAddRule(t *testing.T) {
	engine := NewEngine(nil, nil, zerolog.Nop())
	rule, err := NewRule("stock", "inventorySize >= 2", event.SeverityInfo)
	require.NoError(t, err)
	engine.AddRule(rule)
	require.Len(t, engine.Rules(), 1)

	snap := party.Snapshot{
		Role: party.RoleSeller,
		Inventory: []party.InventoryItem{
			{Product: "Milk"}, {Product: "Pork"},
		},
	}
	matched := engine.InspectParty(snap)
	require.Len(t, matched, 1)
	assert.Equal(t, "stock", matched[0].Rule)
}
