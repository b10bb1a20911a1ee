package party

import (
	"fmt"

	"github.com/foodchain/foodchain/internal/domain/channel"
	"github.com/foodchain/foodchain/internal/domain/event"
	"github.com/foodchain/foodchain/internal/domain/ledger"
	"github.com/foodchain/foodchain/internal/domain/product"
	"github.com/foodchain/foodchain/internal/domain/transaction"
)

// Role is a party's position in the chain.
type Role string

const (
	RoleFarmer      Role = "Farmer"
	RoleStorage     Role = "Storage"
	RoleProcessor   Role = "Processor"
	RoleDistributor Role = "Distributor"
	RoleSeller      Role = "Seller"
	RoleCustomer    Role = "Customer"
)

// MsgNotEnoughMoney is emitted when a payment does not match the
// product's fixed price.
const MsgNotEnoughMoney = "Not enough money!"

// stageStates maps each role to the lifecycle state it advances a
// product to when taking custody. The farmer has no single stage; it
// readies fresh goods up to the state preceding Stored.
var stageStates = map[Role]product.State{
	RoleStorage:     product.StateStored,
	RoleProcessor:   product.StateProcessed,
	RoleDistributor: product.StateDelivered,
	RoleSeller:      product.StatePacked,
	RoleCustomer:    product.StateSold,
}

// Party is one role-holding node of the chain. It owns an inventory,
// its own transaction ledger and the double-spend bookkeeping for
// transmissions it sent.
type Party struct {
	role     Role
	next     *Party
	payments channel.Channel
	goods    channel.Channel
	chainLog *ledger.Log
	sink     event.Sink
	factory  product.Factory

	inventory []*product.Product
	ownLedger []*transaction.Transaction

	moneyReceived    bool
	currentRequested *product.Product
	owesFor          *product.Product
	requestState     RequestState

	doubleSpending      bool
	doubleSpendAttempts int
}

// New creates an unwired party. Wire it into the chain with SetNext
// before issuing requests.
func New(role Role, payments, goods channel.Channel, chainLog *ledger.Log, sink event.Sink) *Party {
	if sink == nil {
		sink = event.Nop{}
	}
	return &Party{
		role:         role,
		payments:     payments,
		goods:        goods,
		chainLog:     chainLog,
		sink:         sink,
		requestState: RequestIdle,
	}
}

// SetNext links the adjacent party closer to the producer.
func (p *Party) SetNext(next *Party) {
	p.next = next
}

// Next returns the adjacent party closer to the producer, nil for the
// producer itself.
func (p *Party) Next() *Party {
	return p.next
}

// SetFactory installs the external factory collaborator. Only the
// producer-role party invokes it.
func (p *Party) SetFactory(f product.Factory) {
	p.factory = f
}

// Role returns the party's role.
func (p *Party) Role() Role {
	return p.role
}

// RoleName implements transaction.Endpoint.
func (p *Party) RoleName() string {
	return string(p.role)
}

// IsProducer reports whether this party is the producer end of the chain.
func (p *Party) IsProducer() bool {
	return p.role == RoleFarmer
}

// IsConsumer reports whether this party is the consumer end of the chain.
func (p *Party) IsConsumer() bool {
	return p.role == RoleCustomer
}

// MakeRequest resolves a request for the named product. A party that
// already holds matching stock satisfies the request from inventory;
// otherwise it propagates down-chain, the producer manufacturing via
// the factory as a last resort. As the good travels back up, each
// intermediate custodian takes channel-validated custody and performs
// its stage action. The consumer never takes custody here; the good is
// held by the seller pending payment.
func (p *Party) MakeRequest(name string) *product.Product {
	p.beginRequest()
	if !p.IsConsumer() {
		if found := p.findInInventory(name); found != nil {
			p.currentRequested = found
			p.toState(RequestFound)
			return found
		}
	}
	if p.next == nil {
		return p.produce(name)
	}
	found := p.next.MakeRequest(name)
	if found == nil {
		p.toState(RequestRejected)
		return nil
	}
	if p.IsConsumer() {
		p.currentRequested = found
		p.toState(RequestFound)
		return found
	}
	// pull custody up one hop
	tx := transaction.NewProduct(p.next, p, found)
	if settled := p.goods.MakeTransmission(tx); settled == nil {
		p.toState(RequestRejected)
		return nil
	}
	p.next.recordTransaction(tx)
	p.appendChainLog(tx)
	p.currentRequested = found
	p.owesFor = found
	p.toState(RequestFound)
	return found
}

// produce manufactures a good via the factory and readies it for
// storage: fresh goods advance through their initial grow/collect
// states until the next step would be Stored.
func (p *Party) produce(name string) *product.Product {
	if p.factory == nil {
		p.toState(RequestRejected)
		return nil
	}
	made, err := p.factory.MakeProduct(name)
	if err != nil || made == nil {
		p.toState(RequestRejected)
		return nil
	}
	for {
		next, err := made.NextState()
		if err != nil || next == product.StateStored {
			break
		}
		_ = made.Prepare(made.CurrentState())
	}
	p.inventory = append(p.inventory, made)
	p.currentRequested = made
	p.toState(RequestFound)
	return made
}

// Pay settles payment for the product currently promised by the
// adjacent down-chain party. An amount that does not match the fixed
// price is rejected with an unsuccessful money transaction appended to
// this party's own ledger and no product transfer.
func (p *Party) Pay(amount int) *transaction.Transaction {
	if p.next == nil {
		return nil
	}
	prod := p.next.CurrentRequested()
	if prod == nil {
		return nil
	}
	if amount != prod.Price {
		p.sink.Publish(event.Warning(event.CodeInsufficientFunds, string(p.role), MsgNotEnoughMoney))
		tx := transaction.NewMoney(p, p.next, amount)
		_ = tx.MarkSettled(false)
		p.ownLedger = append(p.ownLedger, tx)
		p.toState(RequestRejected)
		return tx
	}
	p.toState(RequestPaid)
	tx := transaction.NewMoney(p, p.next, amount)
	if settled := p.payments.MakeTransmission(tx); settled == nil {
		p.toState(RequestRejected)
		return nil
	}
	p.ownLedger = append(p.ownLedger, tx)
	p.appendChainLog(tx)
	if p.IsConsumer() && p.requestState != RequestDelivered {
		// money settled but the good never arrived (double spend)
		p.toState(RequestRejected)
	}
	return tx
}

// ReceiveMoney implements transaction.Endpoint. The receiver records
// the payment, hands the sold good back to the payer when it is the
// holder, and forwards its own payment obligation one hop down-chain.
func (p *Party) ReceiveMoney(tx *transaction.Transaction) {
	p.ownLedger = append(p.ownLedger, tx)
	p.moneyReceived = true
	if p.currentRequested != nil && p.holds(p.currentRequested) {
		p.dispatch(tx.Sender)
	}
	if p.owesFor != nil && p.next != nil && p.next.CurrentRequested() == p.owesFor {
		p.owesFor = nil
		p.Pay(tx.Amount)
	}
}

// dispatch transmits the promised good to the paying requester through
// the goods channel. A double-spend rejection leaves everything as is
// except the channel's bookkeeping on this party.
func (p *Party) dispatch(to transaction.Endpoint) {
	tx := transaction.NewProduct(p, to, p.currentRequested)
	if settled := p.goods.MakeTransmission(tx); settled == nil {
		return
	}
	p.ownLedger = append(p.ownLedger, tx)
	p.appendChainLog(tx)
	p.currentRequested = nil
	p.moneyReceived = false
}

// ReceiveProduct implements transaction.Endpoint. Taking custody
// advances the good to this role's stage when it is the good's next
// canonical state and records the stage's custody metadata.
func (p *Party) ReceiveProduct(tx *transaction.Transaction) {
	prod := tx.Product
	if stage, ok := stageStates[p.role]; ok {
		if next, err := prod.NextState(); err == nil && next == stage {
			_ = prod.Prepare(prod.CurrentState())
		}
	}
	switch p.role {
	case RoleStorage:
		prod.SetStorageParameters(StorageParameters(prod.Kind))
	case RoleProcessor:
		prod.SetProcessorParameters(ProcessorParameters(prod.Kind))
	case RoleSeller:
		prod.SetSellerParameters(SellerParameters(prod.Kind))
	}
	p.inventory = append(p.inventory, prod)
	p.ownLedger = append(p.ownLedger, tx)
	if p.IsConsumer() {
		p.toState(RequestDelivered)
	}
}

// RelinquishProduct implements transaction.Endpoint; the sender drops
// the instance from its inventory once custody has settled.
func (p *Party) RelinquishProduct(prod *product.Product) {
	for i, held := range p.inventory {
		if held == prod {
			p.inventory = append(p.inventory[:i], p.inventory[i+1:]...)
			return
		}
	}
}

// SetDoubleSpending implements transaction.Endpoint.
func (p *Party) SetDoubleSpending() {
	p.doubleSpending = true
}

// IncreaseAttempts implements transaction.Endpoint.
func (p *Party) IncreaseAttempts() {
	p.doubleSpendAttempts++
}

// DoubleSpending reports whether this party ever sent a rejected
// double-spend transmission.
func (p *Party) DoubleSpending() bool {
	return p.doubleSpending
}

// DoubleSpendAttempts returns the rejected double-spend count.
func (p *Party) DoubleSpendAttempts() int {
	return p.doubleSpendAttempts
}

// AddProduct seeds the party's inventory.
func (p *Party) AddProduct(prod *product.Product) {
	p.inventory = append(p.inventory, prod)
}

// Inventory returns a copy of the owned products, in custody order.
func (p *Party) Inventory() []*product.Product {
	out := make([]*product.Product, len(p.inventory))
	copy(out, p.inventory)
	return out
}

// OwnTransactions returns a copy of this party's own ledger.
func (p *Party) OwnTransactions() []*transaction.Transaction {
	out := make([]*transaction.Transaction, len(p.ownLedger))
	copy(out, p.ownLedger)
	return out
}

// CurrentRequested returns the product this party has promised to its
// requester, nil when none is pending.
func (p *Party) CurrentRequested() *product.Product {
	return p.currentRequested
}

// SetCurrentRequested overrides the pending promise; test hook.
func (p *Party) SetCurrentRequested(prod *product.Product) {
	p.currentRequested = prod
}

// MoneyReceived reports whether payment arrived for the pending promise.
func (p *Party) MoneyReceived() bool {
	return p.moneyReceived
}

// SetMoneyReceived overrides the payment flag; test hook.
func (p *Party) SetMoneyReceived(v bool) {
	p.moneyReceived = v
}

// State returns the party's per-request state.
func (p *Party) State() RequestState {
	return p.requestState
}

func (p *Party) beginRequest() {
	p.requestState = RequestRequested
	p.currentRequested = nil
	p.owesFor = nil
}

func (p *Party) toState(target RequestState) {
	if p.requestState.CanTransitionTo(target) {
		p.requestState = target
	}
}

func (p *Party) holds(prod *product.Product) bool {
	for _, held := range p.inventory {
		if held == prod {
			return true
		}
	}
	return false
}

func (p *Party) findInInventory(name string) *product.Product {
	for _, held := range p.inventory {
		if held.Matches(name) {
			return held
		}
	}
	return nil
}

func (p *Party) recordTransaction(tx *transaction.Transaction) {
	p.ownLedger = append(p.ownLedger, tx)
}

// appendChainLog writes the settled transaction to the chain-wide log
// and announces the settlement.
func (p *Party) appendChainLog(tx *transaction.Transaction) {
	if p.chainLog != nil {
		_, _ = p.chainLog.Append(tx)
	}
	p.sink.Publish(event.Info(event.CodeSettlement, string(p.role),
		fmt.Sprintf("%s transaction settled: %s -> %s", tx.Kind, tx.Sender.RoleName(), tx.Receiver.RoleName())))
}
