package market

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/foodchain/foodchain/internal/application/inspection"
	"github.com/foodchain/foodchain/internal/domain/ledger"
	"github.com/foodchain/foodchain/internal/domain/party"
	"github.com/foodchain/foodchain/internal/domain/product"
	"github.com/foodchain/foodchain/internal/domain/transaction"
)

var (
	ErrEmptyProduct     = errors.New("product name is required")
	ErrNoPendingRequest = errors.New("no pending request to pay for")
	ErrUnknownRole      = errors.New("unknown party role")
)

// Service drives the chain on behalf of the consumer. Chain traversal
// mutates shared party state, so operations are serialized.
type Service struct {
	mu      sync.Mutex
	chain   *party.Chain
	log     *ledger.Log
	engine  *inspection.Engine
	logger  zerolog.Logger
}

// NewService creates a market service.
func NewService(chain *party.Chain, chainLog *ledger.Log, engine *inspection.Engine, logger zerolog.Logger) *Service {
	return &Service{
		chain:  chain,
		log:    chainLog,
		engine: engine,
		logger: logger.With().Str("service", "market").Logger(),
	}
}

// RequestResult reports the outcome of one consumer request.
type RequestResult struct {
	Found        bool                 `json:"found"`
	Product      string               `json:"product,omitempty"`
	ProductID    string               `json:"productId,omitempty"`
	State        product.State        `json:"state,omitempty"`
	Price        int                  `json:"price,omitempty"`
	RequestState party.RequestState   `json:"requestState"`
	Findings     []inspection.Finding `json:"findings,omitempty"`
}

// Request asks the chain for a product on the consumer's behalf.
func (s *Service) Request(ctx context.Context, name string) (*RequestResult, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyProduct
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	customer := s.chain.Customer()
	found := customer.MakeRequest(name)

	result := &RequestResult{
		Found:        found != nil,
		RequestState: customer.State(),
		Findings:     s.inspect(),
	}
	if found != nil {
		result.Product = found.Name()
		result.ProductID = found.ID.String()
		result.State = found.CurrentState()
		result.Price = found.Price
	}

	s.logger.Info().Str("product", name).Bool("found", found != nil).Msg("request resolved")
	return result, nil
}

// PaymentResult reports the outcome of one consumer payment.
type PaymentResult struct {
	Successful   bool                 `json:"successful"`
	Delivered    bool                 `json:"delivered"`
	Amount       int                  `json:"amount"`
	Kind         transaction.Kind     `json:"kind"`
	RequestState party.RequestState   `json:"requestState"`
	Findings     []inspection.Finding `json:"findings,omitempty"`
}

// Pay settles the consumer's payment for the pending request.
func (s *Service) Pay(ctx context.Context, amount int) (*PaymentResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	customer := s.chain.Customer()
	tx := customer.Pay(amount)
	if tx == nil {
		return nil, ErrNoPendingRequest
	}

	result := &PaymentResult{
		Successful:   tx.Successful(),
		Delivered:    customer.State() == party.RequestDelivered,
		Amount:       tx.Amount,
		Kind:         tx.Kind,
		RequestState: customer.State(),
		Findings:     s.inspect(),
	}

	s.logger.Info().Int("amount", amount).Bool("successful", tx.Successful()).
		Bool("delivered", result.Delivered).Msg("payment settled")
	return result, nil
}

// Parties returns a snapshot of every party, consumer first.
func (s *Service) Parties(ctx context.Context) []party.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshots()
}

// Party returns the snapshot of one party by role name.
func (s *Service) Party(ctx context.Context, role string) (party.Snapshot, error) {
	parsed, ok := party.ParseRole(role)
	if !ok {
		return party.Snapshot{}, ErrUnknownRole
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.chain.ByRole(parsed).Snapshot(), nil
}

// LedgerView is the chain-wide log plus its verification status.
type LedgerView struct {
	Entries []*ledger.Entry `json:"entries"`
	Size    int64           `json:"size"`
	Valid   bool            `json:"valid"`
}

// Ledger returns every chain log entry and verifies the hash links.
func (s *Service) Ledger(ctx context.Context) (*LedgerView, error) {
	entries, err := s.log.Entries(ctx)
	if err != nil {
		return nil, err
	}
	return &LedgerView{
		Entries: entries,
		Size:    int64(len(entries)),
		Valid:   ledger.VerifyChain(entries),
	}, nil
}

// Findings returns every inspection finding recorded so far.
func (s *Service) Findings(ctx context.Context) []inspection.Finding {
	return s.engine.Findings()
}

func (s *Service) snapshots() []party.Snapshot {
	parties := s.chain.Parties()
	snaps := make([]party.Snapshot, 0, len(parties))
	for _, p := range parties {
		snaps = append(snaps, p.Snapshot())
	}
	return snaps
}

func (s *Service) inspect() []inspection.Finding {
	if s.engine == nil {
		return nil
	}
	return s.engine.InspectChain(s.snapshots())
}
