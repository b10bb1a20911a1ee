package ledger

import (
	"context"
	"sync"

	"github.com/foodchain/foodchain/internal/domain/transaction"
)

// Log is the chain-wide transaction log shared by every party. It
// assigns sequence numbers and hash-links each settled transaction to
// its predecessor before handing the entry to the Store.
type Log struct {
	mu    sync.Mutex
	store Store
	seq   int64
	last  string
}

// NewLog creates a log writing through the given store.
func NewLog(store Store) *Log {
	return &Log{store: store}
}

// Append records one settled transaction. Chain traversal is
// synchronous, so the background context is sufficient here.
func (l *Log) Append(tx *transaction.Transaction) (*Entry, error) {
	return l.AppendRecord(context.Background(), NewRecord(tx))
}

// AppendRecord records a pre-built record.
func (l *Log) AppendRecord(ctx context.Context, r Record) (*Entry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.seq++
	entry, err := NewEntry(l.seq, r, l.last)
	if err != nil {
		l.seq--
		return nil, err
	}
	if err := l.store.Append(ctx, entry); err != nil {
		l.seq--
		return nil, err
	}
	l.last = entry.ChainHash
	return entry, nil
}

// Entries returns every entry in append order.
func (l *Log) Entries(ctx context.Context) ([]*Entry, error) {
	return l.store.List(ctx)
}

// Size returns the number of entries.
func (l *Log) Size(ctx context.Context) (int64, error) {
	return l.store.Count(ctx)
}
