package product

import (
	"errors"
	"strings"

	"github.com/google/uuid"
)

// State is a lifecycle state name in a product's canonical sequence.
type State string

const (
	StateGrowing   State = "Growing"
	StateAlive     State = "Alive"
	StateRaw       State = "Raw"
	StateCollected State = "Collected"
	StateStored    State = "Stored"
	StateProcessed State = "Processed"
	StateDelivered State = "Delivered"
	StatePacked    State = "Packed"
	StateSold      State = "Sold"
)

// Kind identifies a product type and selects its canonical state sequence.
type Kind string

const (
	KindApple Kind = "Apple"
	KindMilk  Kind = "Milk"
	KindPork  Kind = "Pork"
)

var (
	ErrInvalidTransition = errors.New("invalid product state transition")
	ErrUnknownKind       = errors.New("unknown product kind")
)

// sequences holds the canonical ordered state sequence per kind.
// StateSold is terminal for every kind.
var sequences = map[Kind][]State{
	KindApple: {StateGrowing, StateCollected, StateStored, StateProcessed, StateDelivered, StatePacked, StateSold},
	KindMilk:  {StateCollected, StateStored, StateProcessed, StateDelivered, StatePacked, StateSold},
	KindPork:  {StateAlive, StateRaw, StateStored, StateProcessed, StateDelivered, StatePacked, StateSold},
}

// prices holds the fixed price per kind.
var prices = map[Kind]int{
	KindApple: 20,
	KindMilk:  45,
	KindPork:  80,
}

// Sequence returns the canonical state sequence for a kind.
func Sequence(kind Kind) ([]State, error) {
	seq, ok := sequences[kind]
	if !ok {
		return nil, ErrUnknownKind
	}
	out := make([]State, len(seq))
	copy(out, seq)
	return out, nil
}

// Next returns the state following current in the kind's canonical
// sequence. It fails with ErrInvalidTransition when current is not a
// state of the kind or is the terminal state.
func Next(kind Kind, current State) (State, error) {
	seq, ok := sequences[kind]
	if !ok {
		return "", ErrUnknownKind
	}
	for i, s := range seq {
		if s != current {
			continue
		}
		if i == len(seq)-1 {
			return "", ErrInvalidTransition
		}
		return seq[i+1], nil
	}
	return "", ErrInvalidTransition
}

// ParseKind resolves a request name ("milk", "Pork") to a Kind.
func ParseKind(name string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "apple":
		return KindApple, nil
	case "milk":
		return KindMilk, nil
	case "pork":
		return KindPork, nil
	default:
		return "", ErrUnknownKind
	}
}

// Product is a physical good moving through the chain. It carries its
// own lifecycle history, the in-flight transmission flag used for
// double-spend detection, and per-stage custody metadata.
type Product struct {
	ID    uuid.UUID `json:"id"`
	Kind  Kind      `json:"kind"`
	Price int       `json:"price"`

	history            []State
	currentlyProcessed bool
	processingParties  []string

	storageParams   map[string]int
	processorParams map[string]int
	sellerParams    map[string]int
}

// New creates a product of the given kind in its canonical start state.
func New(kind Kind) (*Product, error) {
	seq, ok := sequences[kind]
	if !ok {
		return nil, ErrUnknownKind
	}
	return &Product{
		ID:              uuid.New(),
		Kind:            kind,
		Price:           prices[kind],
		history:         []State{seq[0]},
		storageParams:   map[string]int{},
		processorParams: map[string]int{},
		sellerParams:    map[string]int{},
	}, nil
}

// Name returns the product's display name.
func (p *Product) Name() string {
	return string(p.Kind)
}

// Matches reports whether the product answers a request for name.
func (p *Product) Matches(name string) bool {
	return strings.EqualFold(string(p.Kind), strings.TrimSpace(name))
}

// CurrentState returns the last entry of the state history.
func (p *Product) CurrentState() State {
	return p.history[len(p.history)-1]
}

// StateHistory returns a copy of the append-only state history.
func (p *Product) StateHistory() []State {
	out := make([]State, len(p.history))
	copy(out, p.history)
	return out
}

// NextState peeks at the state the next Prepare call would reach.
func (p *Product) NextState() (State, error) {
	return Next(p.Kind, p.CurrentState())
}

// Prepare advances the product one step along its canonical sequence.
// The from argument names the transition being invoked; invoking a
// transition that does not match the product's actual current state is
// a contract violation and fails with ErrInvalidTransition, as does
// invoking any transition on the terminal state.
func (p *Product) Prepare(from State) error {
	if p.CurrentState() != from {
		return ErrInvalidTransition
	}
	next, err := Next(p.Kind, from)
	if err != nil {
		return err
	}
	p.history = append(p.history, next)
	return nil
}

// IsCurrentlyProcessed reports whether a transmission of this instance
// is pending settlement.
func (p *Product) IsCurrentlyProcessed() bool {
	return p.currentlyProcessed
}

// SetCurrentlyProcessed marks or clears the in-flight transmission flag.
func (p *Product) SetCurrentlyProcessed(v bool) {
	p.currentlyProcessed = v
}

// ProcessingParties returns the roles recorded as mid-transfer for
// this instance.
func (p *Product) ProcessingParties() []string {
	out := make([]string, len(p.processingParties))
	copy(out, p.processingParties)
	return out
}

// AddProcessingParty records a role as mid-transfer for this instance.
func (p *Product) AddProcessingParty(role string) {
	for _, r := range p.processingParties {
		if r == role {
			return
		}
	}
	p.processingParties = append(p.processingParties, role)
}

// ClearProcessingParties discards every recorded mid-transfer role.
func (p *Product) ClearProcessingParties() {
	p.processingParties = nil
}

// SetStorageParameters records storage custody metadata.
func (p *Product) SetStorageParameters(params map[string]int) {
	p.storageParams = copyParams(params)
}

// StorageParameters returns the recorded storage custody metadata.
func (p *Product) StorageParameters() map[string]int {
	return copyParams(p.storageParams)
}

// SetProcessorParameters records processing custody metadata.
func (p *Product) SetProcessorParameters(params map[string]int) {
	p.processorParams = copyParams(params)
}

// ProcessorParameters returns the recorded processing custody metadata.
func (p *Product) ProcessorParameters() map[string]int {
	return copyParams(p.processorParams)
}

// SetSellerParameters records packaging custody metadata.
func (p *Product) SetSellerParameters(params map[string]int) {
	p.sellerParams = copyParams(params)
}

// SellerParameters returns the recorded packaging custody metadata.
func (p *Product) SellerParameters() map[string]int {
	return copyParams(p.sellerParams)
}

func copyParams(in map[string]int) map[string]int {
	out := make(map[string]int, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
