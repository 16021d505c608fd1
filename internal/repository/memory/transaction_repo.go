package memory

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"
	txndomain "github.com/simplelender/backend/internal/domain/transaction"
)

type TransactionRepository struct {
	store *Store
}

func (r *TransactionRepository) Create(_ context.Context, in txndomain.WriteInput) (*txndomain.Entity, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	row := &txnRow{seq: s.next()}
	applyTxn(&row.Entity, in)
	row.ID = in.ID
	row.Status = in.Status
	row.CreatedAt = now
	row.UpdatedAt = now
	s.transactions[in.ID] = row
	out := row.Entity
	return &out, nil
}

func (r *TransactionRepository) GetByID(_ context.Context, id string) (*txndomain.Entity, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	row, ok := s.transactions[id]
	if !ok {
		return nil, txndomain.ErrNotFound
	}
	out := row.Entity
	return &out, nil
}

func (r *TransactionRepository) UpdateOwned(_ context.Context, id, lenderID string, in txndomain.WriteInput) (*txndomain.Entity, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.transactions[id]
	if !ok || row.LenderID != lenderID {
		return nil, txndomain.ErrNotFound
	}
	b, ok := s.borrowers[in.BorrowerID]
	if !ok || b.LenderID != lenderID {
		return nil, txndomain.ErrNotFound
	}
	applyTxn(&row.Entity, in)
	if in.Status != "" {
		row.Status = in.Status
	}
	row.UpdatedAt = s.now()
	out := row.Entity
	return &out, nil
}

func (r *TransactionRepository) DeleteOwned(_ context.Context, id, lenderID string) (bool, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.transactions[id]
	if !ok || row.LenderID != lenderID {
		return false, nil
	}
	delete(s.transactions, id)
	return true, nil
}

func (r *TransactionRepository) List(_ context.Context, f txndomain.ListFilter) ([]txndomain.Entity, error) {
	rows := r.matching(f)
	sortTxns(rows, f.SortBy)
	rows = window(rows, f.Limit, f.Offset)
	out := make([]txndomain.Entity, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.Entity)
	}
	return out, nil
}

func (r *TransactionRepository) Count(_ context.Context, f txndomain.ListFilter) (int64, error) {
	return int64(len(r.matching(f))), nil
}

func (r *TransactionRepository) Summary(_ context.Context, lenderID string) (*txndomain.Summary, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := &txndomain.Summary{
		LenderID:       lenderID,
		TotalPrincipal: decimal.Zero,
		TotalInterest:  decimal.Zero,
		TotalBalance:   decimal.Zero,
	}
	for _, row := range s.transactions {
		if row.LenderID != lenderID {
			continue
		}
		out.TotalTransactions++
		if row.Status == txndomain.StatusActive {
			out.ActiveTransactions++
		}
		out.TotalPrincipal = out.TotalPrincipal.Add(row.PrincipalAmount)
		out.TotalInterest = out.TotalInterest.Add(row.InterestAmount)
		out.TotalBalance = out.TotalBalance.Add(row.TotalBalance)
	}
	return out, nil
}

func (r *TransactionRepository) matching(f txndomain.ListFilter) []txnRow {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	borrowers := make(map[string]struct{}, len(f.BorrowerIDs))
	for _, id := range f.BorrowerIDs {
		borrowers[id] = struct{}{}
	}
	out := make([]txnRow, 0)
	for _, row := range s.transactions {
		if row.LenderID != f.LenderID {
			continue
		}
		if _, ok := borrowers[row.BorrowerID]; !ok {
			continue
		}
		if f.Status != "" && row.Status != f.Status {
			continue
		}
		out = append(out, *row)
	}
	return out
}

// sortTxns orders by the requested field descending, then newest first.
func sortTxns(rows []txnRow, sortBy string) {
	key := func(t txndomain.Entity) (decimal.Decimal, bool) {
		switch sortBy {
		case txndomain.SortPrincipalAmount:
			return t.PrincipalAmount, true
		case txndomain.SortInterestAmount:
			return t.InterestAmount, true
		case txndomain.SortTotalBalance:
			return t.TotalBalance, true
		}
		return decimal.Zero, false
	}
	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if ka, ok := key(a.Entity); ok {
			kb, _ := key(b.Entity)
			if c := ka.Cmp(kb); c != 0 {
				return c > 0
			}
		} else if sortBy != txndomain.SortCreatedAt && !a.TransactionDate.Equal(b.TransactionDate) {
			return a.TransactionDate.After(b.TransactionDate)
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.seq > b.seq
	})
}

func applyTxn(e *txndomain.Entity, in txndomain.WriteInput) {
	e.BorrowerID = in.BorrowerID
	e.LenderID = in.LenderID
	e.PrincipalAmount = in.PrincipalAmount
	e.InterestType = in.InterestType
	e.InterestValue = in.InterestValue
	e.Frequency = in.Frequency
	e.TransactionDate = in.TransactionDate
	e.Note = in.Note
	e.InterestAmount = in.InterestAmount
	e.TotalBalance = in.TotalBalance
}
