package party

import "github.com/foodchain/foodchain/internal/domain/product"

// InventoryItem is the read-model view of one held product.
type InventoryItem struct {
	ID       string          `json:"id"`
	Product  string          `json:"product"`
	State    product.State   `json:"state"`
	History  []product.State `json:"history"`
	InFlight bool            `json:"inFlight"`
}

// Snapshot is the read-model view of one party, safe to serialize.
type Snapshot struct {
	Role                Role            `json:"role"`
	RequestState        RequestState    `json:"requestState"`
	Inventory           []InventoryItem `json:"inventory"`
	OwnTransactions     int             `json:"ownTransactions"`
	MoneyReceived       bool            `json:"moneyReceived"`
	DoubleSpending      bool            `json:"doubleSpending"`
	DoubleSpendAttempts int             `json:"doubleSpendAttempts"`
}

// Snapshot captures the party's externally visible state.
func (p *Party) Snapshot() Snapshot {
	items := make([]InventoryItem, 0, len(p.inventory))
	for _, held := range p.inventory {
		items = append(items, InventoryItem{
			ID:       held.ID.String(),
			Product:  held.Name(),
			State:    held.CurrentState(),
			History:  held.StateHistory(),
			InFlight: held.IsCurrentlyProcessed(),
		})
	}
	return Snapshot{
		Role:                p.role,
		RequestState:        p.requestState,
		Inventory:           items,
		OwnTransactions:     len(p.ownLedger),
		MoneyReceived:       p.moneyReceived,
		DoubleSpending:      p.doubleSpending,
		DoubleSpendAttempts: p.doubleSpendAttempts,
	}
}
