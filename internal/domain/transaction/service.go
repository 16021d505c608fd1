package transaction

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/simplelender/backend/internal/apperror"
	"github.com/simplelender/backend/internal/dates"
	borrowerdomain "github.com/simplelender/backend/internal/domain/borrower"
	"github.com/simplelender/backend/internal/pagination"
)

const (
	DefaultListLimit = 10
	MaxListLimit     = 100

	// UnknownBorrowerName is shown when a listed entry's borrower is not in the resolved set.
	UnknownBorrowerName = "N/A"

	EventAdded   = "transaction_added"
	EventUpdated = "transaction_updated"
	EventDeleted = "transaction_deleted"
)

type EventPublisher interface {
	PublishLedgerEvent(lenderID, event string, data any)
}

type Service struct {
	borrowerRepo BorrowerRepository
	txnRepo      Repository
	events       EventPublisher
}

type ListInput struct {
	Page         int
	Limit        int
	BorrowerName string
	Email        string
	Status       string
	SortBy       string
	LenderID     string
}

func NewService(borrowerRepo BorrowerRepository, txnRepo Repository, events EventPublisher) *Service {
	return &Service{borrowerRepo: borrowerRepo, txnRepo: txnRepo, events: events}
}

// VerifyBorrowerOwnership loads the borrower only if it belongs to lenderID.
// It always hits the store.
func (s *Service) VerifyBorrowerOwnership(ctx context.Context, borrowerID, lenderID string) (*borrowerdomain.Entity, error) {
	if _, err := uuid.Parse(borrowerID); err != nil {
		return nil, apperror.Authz("borrower_access_denied", "Unauthorized or borrower not found")
	}
	b, err := s.borrowerRepo.GetOwned(ctx, borrowerID, lenderID)
	if err != nil {
		if errors.Is(err, borrowerdomain.ErrNotFound) {
			return nil, apperror.Authz("borrower_access_denied", "Unauthorized or borrower not found")
		}
		return nil, apperror.Internal("verify_borrower_failed", err)
	}
	return b, nil
}

func (s *Service) Add(ctx context.Context, in Input, lenderID string) (*Entity, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	if _, err := s.VerifyBorrowerOwnership(ctx, in.BorrowerID, lenderID); err != nil {
		return nil, err
	}

	rec, err := buildRecord(in, lenderID)
	if err != nil {
		return nil, err
	}
	rec.ID = uuid.NewString()
	rec.Status = StatusActive

	created, err := s.txnRepo.Create(ctx, rec)
	if err != nil {
		return nil, apperror.Internal("create_transaction_failed", err)
	}
	s.publish(lenderID, EventAdded, created)
	return created, nil
}

// Update recomputes the ledger fields from in and overwrites the entry. Both
// the stored borrower and the payload borrower must belong to lenderID.
func (s *Service) Update(ctx context.Context, txnID string, in Input, lenderID string) (*Entity, error) {
	id := strings.TrimSpace(txnID)
	if err := validateTxnID(id); err != nil {
		return nil, err
	}
	if err := validateInput(in); err != nil {
		return nil, err
	}

	existing, err := s.getExisting(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.VerifyBorrowerOwnership(ctx, existing.BorrowerID, lenderID); err != nil {
		return nil, err
	}
	if in.BorrowerID != existing.BorrowerID {
		if _, err := s.VerifyBorrowerOwnership(ctx, in.BorrowerID, lenderID); err != nil {
			return nil, err
		}
	}

	rec, err := buildRecord(in, lenderID)
	if err != nil {
		return nil, err
	}
	rec.ID = id
	rec.Status = existing.Status

	updated, err := s.txnRepo.UpdateOwned(ctx, id, lenderID, rec)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, apperror.NotFound("transaction_not_found", "Transaction not found")
		}
		return nil, apperror.Internal("update_transaction_failed", err)
	}
	s.publish(lenderID, EventUpdated, updated)
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, txnID, lenderID string) error {
	id := strings.TrimSpace(txnID)
	if err := validateTxnID(id); err != nil {
		return err
	}
	existing, err := s.getExisting(ctx, id)
	if err != nil {
		return err
	}
	if _, err := s.VerifyBorrowerOwnership(ctx, existing.BorrowerID, lenderID); err != nil {
		return err
	}

	deleted, err := s.txnRepo.DeleteOwned(ctx, id, lenderID)
	if err != nil {
		return apperror.Internal("delete_transaction_failed", err)
	}
	if !deleted {
		return apperror.NotFound("transaction_not_found", "Transaction not found")
	}
	s.publish(lenderID, EventDeleted, map[string]string{"transaction_id": id, "borrower_id": existing.BorrowerID})
	return nil
}

func (s *Service) Get(ctx context.Context, txnID, lenderID string) (*ListItem, error) {
	id := strings.TrimSpace(txnID)
	if err := validateTxnID(id); err != nil {
		return nil, err
	}
	existing, err := s.getExisting(ctx, id)
	if err != nil {
		return nil, err
	}
	b, err := s.VerifyBorrowerOwnership(ctx, existing.BorrowerID, lenderID)
	if err != nil {
		return nil, err
	}
	return &ListItem{Entity: *existing, BorrowerName: b.FullName()}, nil
}

// List resolves the lender's borrowers matching the name/email filters first,
// then pages through entries belonging to that borrower set.
func (s *Service) List(ctx context.Context, in ListInput) (*pagination.Page[ListItem], error) {
	if strings.TrimSpace(in.LenderID) == "" {
		return nil, apperror.Auth("missing_lender", "Lender identity required")
	}
	page, limit := pagination.Normalize(in.Page, in.Limit, DefaultListLimit, MaxListLimit)
	sortBy := strings.TrimSpace(in.SortBy)
	if sortBy == "" {
		sortBy = SortTransactionDate
	}
	if !ValidSortField(sortBy) {
		return nil, apperror.Validation("invalid_sort_field", "Validation error",
			apperror.FieldError{Field: "sort_by", Message: "unsupported sort field"})
	}

	borrowers, err := s.borrowerRepo.List(ctx, borrowerdomain.ListFilter{
		LenderID: in.LenderID,
		Name:     strings.TrimSpace(in.BorrowerName),
		Email:    strings.TrimSpace(in.Email),
	})
	if err != nil {
		return nil, apperror.Internal("list_transactions_failed", err)
	}
	if len(borrowers) == 0 {
		empty := pagination.Paginate[ListItem](page, limit, 0, nil)
		return &empty, nil
	}

	names := make(map[string]string, len(borrowers))
	ids := make([]string, 0, len(borrowers))
	for _, b := range borrowers {
		names[b.ID] = b.FullName()
		ids = append(ids, b.ID)
	}

	filter := ListFilter{
		LenderID:    in.LenderID,
		BorrowerIDs: ids,
		Status:      strings.TrimSpace(in.Status),
		SortBy:      sortBy,
		Limit:       int32(limit),
		Offset:      int32(pagination.Offset(page, limit)),
	}
	total, err := s.txnRepo.Count(ctx, filter)
	if err != nil {
		return nil, apperror.Internal("list_transactions_failed", err)
	}
	txns, err := s.txnRepo.List(ctx, filter)
	if err != nil {
		return nil, apperror.Internal("list_transactions_failed", err)
	}

	items := make([]ListItem, 0, len(txns))
	for _, t := range txns {
		name, ok := names[t.BorrowerID]
		if !ok || name == "" {
			name = UnknownBorrowerName
		}
		items = append(items, ListItem{Entity: t, BorrowerName: name})
	}
	result := pagination.Paginate(page, limit, total, items)
	return &result, nil
}

func (s *Service) Summary(ctx context.Context, lenderID string) (*Summary, error) {
	if strings.TrimSpace(lenderID) == "" {
		return nil, apperror.Auth("missing_lender", "Lender identity required")
	}
	out, err := s.txnRepo.Summary(ctx, lenderID)
	if err != nil {
		return nil, apperror.Internal("ledger_summary_failed", err)
	}
	return out, nil
}

func (s *Service) getExisting(ctx context.Context, id string) (*Entity, error) {
	existing, err := s.txnRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, apperror.NotFound("transaction_not_found", "Transaction not found")
		}
		return nil, apperror.Internal("get_transaction_failed", err)
	}
	return existing, nil
}

func (s *Service) publish(lenderID, event string, data any) {
	if s.events == nil {
		return
	}
	s.events.PublishLedgerEvent(lenderID, event, data)
}

func buildRecord(in Input, lenderID string) (WriteInput, error) {
	fields, err := CalculateLedgerFields(in.PrincipalAmount, in.InterestType, in.InterestValue)
	if err != nil {
		return WriteInput{}, err
	}
	return WriteInput{
		BorrowerID:      in.BorrowerID,
		LenderID:        lenderID,
		PrincipalAmount: fields.PrincipalAmount,
		InterestType:    in.InterestType,
		InterestValue:   in.InterestValue,
		Frequency:       in.Frequency,
		TransactionDate: dates.Midnight(in.TransactionDate),
		Note:            strings.TrimSpace(in.Note),
		InterestAmount:  fields.InterestAmount,
		TotalBalance:    fields.TotalBalance,
	}, nil
}

func validateInput(in Input) error {
	var fields []apperror.FieldError
	if strings.TrimSpace(in.BorrowerID) == "" {
		fields = append(fields, apperror.FieldError{Field: "borrower_id", Message: "required"})
	}
	if in.PrincipalAmount.IsNegative() {
		fields = append(fields, apperror.FieldError{Field: "principal_amount", Message: "must not be negative"})
	}
	if !in.InterestType.Valid() {
		fields = append(fields, apperror.FieldError{Field: "interest_type", Message: "must be percentage or flat"})
	}
	if in.InterestValue.IsNegative() {
		fields = append(fields, apperror.FieldError{Field: "interest_value", Message: "must not be negative"})
	}
	if !in.Frequency.Valid() {
		fields = append(fields, apperror.FieldError{Field: "frequency", Message: "must be daily, monthly or yearly"})
	}
	fields = append(fields, amountErrors(in.PrincipalAmount, in.InterestValue)...)
	if in.TransactionDate.IsZero() {
		fields = append(fields, apperror.FieldError{Field: "transaction_date", Message: "required"})
	}
	if len(fields) > 0 {
		return apperror.Validation("invalid_transaction", "Validation error", fields...)
	}
	return nil
}

func validateTxnID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return apperror.Validation("invalid_transaction_id", "Invalid transaction id",
			apperror.FieldError{Field: "txn_id", Message: "must be a UUID"})
	}
	return nil
}
