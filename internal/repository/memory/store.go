// Package memory holds map-backed repositories with the same ownership
// semantics as the postgres ones. It backs STORE_DRIVER=memory and tests.
package memory

import (
	"strings"
	"sync"
	"time"

	"github.com/simplelender/backend/internal/db"
	borrowerdomain "github.com/simplelender/backend/internal/domain/borrower"
	txndomain "github.com/simplelender/backend/internal/domain/transaction"
)

type Store struct {
	mu           sync.RWMutex
	seq          int64
	now          func() time.Time
	users        map[string]*userRow
	borrowers    map[string]*borrowerRow
	transactions map[string]*txnRow
}

type userRow struct {
	db.User
	seq int64
}

type borrowerRow struct {
	borrowerdomain.Entity
	seq int64
}

type txnRow struct {
	txndomain.Entity
	seq int64
}

func NewStore() *Store {
	return &Store{
		now:          func() time.Time { return time.Now().UTC() },
		users:        map[string]*userRow{},
		borrowers:    map[string]*borrowerRow{},
		transactions: map[string]*txnRow{},
	}
}

// SetClock replaces the timestamp source.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func (s *Store) Users() *UserRepository {
	return &UserRepository{store: s}
}

func (s *Store) Borrowers() *BorrowerRepository {
	return &BorrowerRepository{store: s}
}

func (s *Store) Transactions() *TransactionRepository {
	return &TransactionRepository{store: s}
}

// next must be called with mu held.
func (s *Store) next() int64 {
	s.seq++
	return s.seq
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

func window[T any](items []T, limit, offset int32) []T {
	if offset < 0 {
		offset = 0
	}
	if int(offset) >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && int(limit) < len(items) {
		items = items[:limit]
	}
	return items
}
