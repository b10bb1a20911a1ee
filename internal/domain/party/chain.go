package party

import (
	"strings"

	"github.com/foodchain/foodchain/internal/domain/channel"
	"github.com/foodchain/foodchain/internal/domain/event"
	"github.com/foodchain/foodchain/internal/domain/ledger"
	"github.com/foodchain/foodchain/internal/domain/product"
)

// chainOrder lists the roles from the consumer end down to the producer.
var chainOrder = []Role{
	RoleCustomer,
	RoleSeller,
	RoleDistributor,
	RoleProcessor,
	RoleStorage,
	RoleFarmer,
}

// Chain is the fixed six-party supply chain. Requests enter at the
// consumer and flow down to the producer; goods and payments flow back
// hop by hop.
type Chain struct {
	parties []*Party
	byRole  map[Role]*Party
	log     *ledger.Log
}

// NewChain wires the six parties consumer-first, sharing one payment
// channel, one goods channel and one chain-wide log. The producer gets
// the factory.
func NewChain(factory product.Factory, chainLog *ledger.Log, sink event.Sink) *Chain {
	if sink == nil {
		sink = event.Nop{}
	}
	payments := channel.NewPaymentChannel(sink)
	goods := channel.NewGoodsChannel(sink)

	parties := make([]*Party, 0, len(chainOrder))
	byRole := make(map[Role]*Party, len(chainOrder))
	for _, role := range chainOrder {
		p := New(role, payments, goods, chainLog, sink)
		parties = append(parties, p)
		byRole[role] = p
	}
	for i := 0; i < len(parties)-1; i++ {
		parties[i].SetNext(parties[i+1])
	}
	byRole[RoleFarmer].SetFactory(factory)

	return &Chain{parties: parties, byRole: byRole, log: chainLog}
}

// Parties returns the parties in consumer-first order.
func (c *Chain) Parties() []*Party {
	out := make([]*Party, len(c.parties))
	copy(out, c.parties)
	return out
}

// ByRole returns the party holding the given role, nil when unknown.
func (c *Chain) ByRole(role Role) *Party {
	return c.byRole[role]
}

// Customer returns the consumer-end party.
func (c *Chain) Customer() *Party {
	return c.byRole[RoleCustomer]
}

// Log returns the shared chain-wide transaction log.
func (c *Chain) Log() *ledger.Log {
	return c.log
}

// ParseRole resolves a role name case-insensitively.
func ParseRole(name string) (Role, bool) {
	for _, role := range chainOrder {
		if strings.EqualFold(string(role), strings.TrimSpace(name)) {
			return role, true
		}
	}
	return "", false
}
