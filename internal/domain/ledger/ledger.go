package ledger

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/foodchain/foodchain/internal/domain/transaction"
)

// Record is the settled-transaction summary written to the chain-wide
// log. Exactly one record is appended per settled transaction.
type Record struct {
	TxID       uuid.UUID `json:"txId"`
	Kind       string    `json:"kind"`
	Sender     string    `json:"sender"`
	Receiver   string    `json:"receiver"`
	Amount     int       `json:"amount,omitempty"`
	Product    string    `json:"product,omitempty"`
	ProductID  uuid.UUID `json:"productId,omitempty"`
	Successful bool      `json:"successful"`
	SettledAt  time.Time `json:"settledAt"`
}

// NewRecord summarizes a settled transaction.
func NewRecord(tx *transaction.Transaction) Record {
	r := Record{
		TxID:       tx.ID,
		Kind:       string(tx.Kind),
		Sender:     tx.Sender.RoleName(),
		Receiver:   tx.Receiver.RoleName(),
		Successful: tx.Successful(),
		SettledAt:  time.Now().UTC(),
	}
	switch tx.Kind {
	case transaction.KindMoney:
		r.Amount = tx.Amount
	case transaction.KindProduct:
		r.Product = tx.Product.Name()
		r.ProductID = tx.Product.ID
	}
	return r
}

// Entry is one hash-chained element of the log.
type Entry struct {
	Seq       int64     `json:"seq"`
	Record    Record    `json:"record"`
	EntryHash string    `json:"entryHash"`
	PrevHash  string    `json:"prevHash"` // empty for genesis
	ChainHash string    `json:"chainHash"`
	CreatedAt time.Time `json:"createdAt"`
}

// ComputeRecordHash computes the SHA-256 hash of a record's canonical
// JSON form.
func ComputeRecordHash(r Record) (string, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return "", fmt.Errorf("failed to serialize record for hashing: %w", err)
	}
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:]), nil
}

// ComputeChainHash computes the chain hash from entry and previous hash.
func ComputeChainHash(entryHash, prevHash string) string {
	hash := sha256.Sum256([]byte(entryHash + prevHash))
	return hex.EncodeToString(hash[:])
}

// NewEntry builds a chained entry for the record at sequence seq.
func NewEntry(seq int64, r Record, prevHash string) (*Entry, error) {
	entryHash, err := ComputeRecordHash(r)
	if err != nil {
		return nil, err
	}
	return &Entry{
		Seq:       seq,
		Record:    r,
		EntryHash: entryHash,
		PrevHash:  prevHash,
		ChainHash: ComputeChainHash(entryHash, prevHash),
		CreatedAt: time.Now().UTC(),
	}, nil
}

// Verify checks the entry's own hash linkage.
func (e *Entry) Verify() bool {
	return e.ChainHash == ComputeChainHash(e.EntryHash, e.PrevHash)
}

// VerifyChain checks every entry and every link between consecutive
// entries.
func VerifyChain(entries []*Entry) bool {
	for i, e := range entries {
		if !e.Verify() {
			return false
		}
		if i == 0 {
			continue
		}
		if e.PrevHash != entries[i-1].ChainHash {
			return false
		}
	}
	return true
}
