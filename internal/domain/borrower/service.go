package borrower

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/simplelender/backend/internal/apperror"
	"github.com/simplelender/backend/internal/dates"
	"github.com/simplelender/backend/internal/pagination"
)

const (
	DefaultListLimit = 8
	MaxListLimit     = 100

	EventSaved   = "borrower_saved"
	EventDeleted = "borrower_deleted"
)

type EventPublisher interface {
	PublishLedgerEvent(lenderID, event string, data any)
}

type Service struct {
	repo     Repository
	events   EventPublisher
	validate *validator.Validate
}

func NewService(repo Repository, events EventPublisher) *Service {
	return &Service{repo: repo, events: events, validate: validator.New()}
}

// Upsert inserts a borrower for lenderID, or overwrites borrowerID when it is
// set. The overwrite only lands if the borrower belongs to lenderID.
func (s *Service) Upsert(ctx context.Context, in UpsertInput, borrowerID, lenderID string) (*Entity, error) {
	if strings.TrimSpace(lenderID) == "" {
		return nil, apperror.Auth("missing_lender", "Lender identity required")
	}
	rec, err := s.normalize(in)
	if err != nil {
		return nil, err
	}
	rec.LenderID = lenderID

	id := strings.TrimSpace(borrowerID)
	if id == "" {
		rec.ID = uuid.NewString()
		created, err := s.repo.Create(ctx, rec)
		if err != nil {
			return nil, apperror.Internal("create_borrower_failed", err)
		}
		s.publish(lenderID, EventSaved, created)
		return created, nil
	}

	if err := validateID(id); err != nil {
		return nil, err
	}
	rec.ID = id
	updated, err := s.repo.UpdateOwned(ctx, id, lenderID, rec)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, s.classifyMiss(ctx, id)
		}
		return nil, apperror.Internal("update_borrower_failed", err)
	}
	s.publish(lenderID, EventSaved, updated)
	return updated, nil
}

func (s *Service) List(ctx context.Context, search, lenderID string, page, limit int) (*pagination.Page[Summary], error) {
	if strings.TrimSpace(lenderID) == "" {
		return nil, apperror.Auth("missing_lender", "Lender identity required")
	}
	page, limit = pagination.Normalize(page, limit, DefaultListLimit, MaxListLimit)
	filter := ListFilter{
		LenderID: lenderID,
		Search:   strings.TrimSpace(search),
		Limit:    int32(limit),
		Offset:   int32(pagination.Offset(page, limit)),
	}

	items, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, apperror.Internal("list_borrowers_failed", err)
	}
	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		return nil, apperror.Internal("list_borrowers_failed", err)
	}

	out := make([]Summary, 0, len(items))
	for _, b := range items {
		out = append(out, Summary{
			ID:       b.ID,
			FullName: b.FullName(),
			Email:    b.Email,
			Phone:    b.Phone,
			DOB:      b.DOB,
			Address:  b.Address,
		})
	}
	result := pagination.Paginate(page, limit, total, out)
	return &result, nil
}

func (s *Service) Delete(ctx context.Context, borrowerID, lenderID string) error {
	id := strings.TrimSpace(borrowerID)
	if err := validateID(id); err != nil {
		return err
	}
	deleted, err := s.repo.DeleteOwned(ctx, id, lenderID)
	if err != nil {
		return apperror.Internal("delete_borrower_failed", err)
	}
	if !deleted {
		return s.classifyMiss(ctx, id)
	}
	s.publish(lenderID, EventDeleted, map[string]string{"borrower_id": id})
	return nil
}

func (s *Service) Get(ctx context.Context, borrowerID, lenderID string) (*Details, error) {
	id := strings.TrimSpace(borrowerID)
	if err := validateID(id); err != nil {
		return nil, err
	}
	b, err := s.repo.GetOwned(ctx, id, lenderID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, s.classifyMiss(ctx, id)
		}
		return nil, apperror.Internal("get_borrower_failed", err)
	}
	d := toDetails(b)
	return &d, nil
}

func (s *Service) normalize(in UpsertInput) (WriteInput, error) {
	rec := WriteInput{
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
		Email:     strings.TrimSpace(in.Email),
		Address:   strings.TrimSpace(in.Address),
		City:      strings.TrimSpace(in.City),
		State:     strings.TrimSpace(in.State),
		Country:   strings.TrimSpace(in.Country),
		Pincode:   strings.TrimSpace(in.Pincode),
		Phone:     strings.TrimSpace(in.Phone),
	}

	var fields []apperror.FieldError
	if rec.FirstName == "" {
		fields = append(fields, apperror.FieldError{Field: "first_name", Message: "required"})
	}
	if rec.LastName == "" {
		fields = append(fields, apperror.FieldError{Field: "last_name", Message: "required"})
	}
	if s.validate.Var(rec.Email, "required,email") != nil {
		fields = append(fields, apperror.FieldError{Field: "email", Message: "must be a valid email"})
	}
	dob, err := dates.Parse(in.DOB)
	if err != nil {
		fields = append(fields, apperror.FieldError{Field: "dob", Message: err.Error()})
	}
	for _, f := range []struct{ name, value string }{
		{"address", rec.Address},
		{"city", rec.City},
		{"state", rec.State},
		{"country", rec.Country},
		{"pincode", rec.Pincode},
		{"phone", rec.Phone},
	} {
		if f.value == "" {
			fields = append(fields, apperror.FieldError{Field: f.name, Message: "required"})
		}
	}
	if len(fields) > 0 {
		return WriteInput{}, apperror.Validation("invalid_borrower", "Validation error", fields...)
	}
	rec.DOB = dob
	return rec, nil
}

// classifyMiss runs after a lender-scoped statement matched nothing and only
// decides which error to report.
func (s *Service) classifyMiss(ctx context.Context, id string) error {
	_, err := s.repo.GetByID(ctx, id)
	if err == nil {
		return apperror.Authz("borrower_access_denied", "Borrower not found or access denied")
	}
	if errors.Is(err, ErrNotFound) {
		return apperror.NotFound("borrower_not_found", "Borrower not found or access denied")
	}
	return apperror.Internal("get_borrower_failed", err)
}

func (s *Service) publish(lenderID, event string, data any) {
	if s.events == nil {
		return
	}
	if b, ok := data.(*Entity); ok {
		data = toDetails(b)
	}
	s.events.PublishLedgerEvent(lenderID, event, data)
}

func toDetails(b *Entity) Details {
	return Details{
		ID:        b.ID,
		FirstName: b.FirstName,
		LastName:  b.LastName,
		FullName:  b.FullName(),
		Email:     b.Email,
		Phone:     b.Phone,
		DOB:       b.DOB,
		Address:   b.Address,
		City:      b.City,
		State:     b.State,
		Country:   b.Country,
		Pincode:   b.Pincode,
		CreatedAt: b.CreatedAt,
	}
}

func validateID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return apperror.Validation("invalid_borrower_id", "Invalid borrower id",
			apperror.FieldError{Field: "borrower_id", Message: "must be a UUID"})
	}
	return nil
}
