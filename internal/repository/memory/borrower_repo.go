package memory

import (
	"context"
	"sort"

	borrowerdomain "github.com/simplelender/backend/internal/domain/borrower"
)

type BorrowerRepository struct {
	store *Store
}

func (r *BorrowerRepository) Create(_ context.Context, in borrowerdomain.WriteInput) (*borrowerdomain.Entity, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	row := &borrowerRow{seq: s.next()}
	applyBorrower(&row.Entity, in)
	row.ID = in.ID
	row.LenderID = in.LenderID
	row.CreatedAt = now
	row.UpdatedAt = now
	s.borrowers[in.ID] = row
	out := row.Entity
	return &out, nil
}

func (r *BorrowerRepository) GetByID(_ context.Context, id string) (*borrowerdomain.Entity, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	row, ok := s.borrowers[id]
	if !ok {
		return nil, borrowerdomain.ErrNotFound
	}
	out := row.Entity
	return &out, nil
}

func (r *BorrowerRepository) GetOwned(_ context.Context, id, lenderID string) (*borrowerdomain.Entity, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	row, ok := s.borrowers[id]
	if !ok || row.LenderID != lenderID {
		return nil, borrowerdomain.ErrNotFound
	}
	out := row.Entity
	return &out, nil
}

func (r *BorrowerRepository) UpdateOwned(_ context.Context, id, lenderID string, in borrowerdomain.WriteInput) (*borrowerdomain.Entity, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.borrowers[id]
	if !ok || row.LenderID != lenderID {
		return nil, borrowerdomain.ErrNotFound
	}
	applyBorrower(&row.Entity, in)
	row.UpdatedAt = s.now()
	out := row.Entity
	return &out, nil
}

// DeleteOwned also removes the borrower's transactions, matching the
// ON DELETE CASCADE of the relational schema.
func (r *BorrowerRepository) DeleteOwned(_ context.Context, id, lenderID string) (bool, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.borrowers[id]
	if !ok || row.LenderID != lenderID {
		return false, nil
	}
	delete(s.borrowers, id)
	for txnID, t := range s.transactions {
		if t.BorrowerID == id {
			delete(s.transactions, txnID)
		}
	}
	return true, nil
}

func (r *BorrowerRepository) List(_ context.Context, f borrowerdomain.ListFilter) ([]borrowerdomain.Entity, error) {
	rows := r.matching(f)
	rows = window(rows, f.Limit, f.Offset)
	out := make([]borrowerdomain.Entity, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.Entity)
	}
	return out, nil
}

func (r *BorrowerRepository) Count(_ context.Context, f borrowerdomain.ListFilter) (int64, error) {
	return int64(len(r.matching(f))), nil
}

func (r *BorrowerRepository) matching(f borrowerdomain.ListFilter) []borrowerRow {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]borrowerRow, 0)
	for _, row := range s.borrowers {
		if row.LenderID != f.LenderID {
			continue
		}
		if f.Search != "" && !containsFold(row.FirstName, f.Search) &&
			!containsFold(row.LastName, f.Search) && !containsFold(row.Email, f.Search) {
			continue
		}
		if f.Name != "" && !containsFold(row.FirstName, f.Name) &&
			!containsFold(row.LastName, f.Name) && !containsFold(row.FullName(), f.Name) {
			continue
		}
		if f.Email != "" && !containsFold(row.Email, f.Email) {
			continue
		}
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].seq > out[j].seq
	})
	return out
}

func applyBorrower(e *borrowerdomain.Entity, in borrowerdomain.WriteInput) {
	e.FirstName = in.FirstName
	e.LastName = in.LastName
	e.Email = in.Email
	e.DOB = in.DOB
	e.Address = in.Address
	e.City = in.City
	e.State = in.State
	e.Country = in.Country
	e.Pincode = in.Pincode
	e.Phone = in.Phone
}
