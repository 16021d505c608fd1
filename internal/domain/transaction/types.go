package transaction

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	borrowerdomain "github.com/simplelender/backend/internal/domain/borrower"
)

var ErrNotFound = errors.New("transaction not found")

type InterestType string

const (
	InterestPercentage InterestType = "percentage"
	InterestFlat       InterestType = "flat"
)

func (t InterestType) Valid() bool {
	return t == InterestPercentage || t == InterestFlat
}

type Frequency string

const (
	FrequencyNone    Frequency = ""
	FrequencyDaily   Frequency = "daily"
	FrequencyMonthly Frequency = "monthly"
	FrequencyYearly  Frequency = "yearly"
)

func (f Frequency) Valid() bool {
	switch f {
	case FrequencyNone, FrequencyDaily, FrequencyMonthly, FrequencyYearly:
		return true
	}
	return false
}

const StatusActive = "active"

// Sort fields accepted by List; results are always descending.
const (
	SortTransactionDate = "transaction_date"
	SortPrincipalAmount = "principal_amount"
	SortInterestAmount  = "interest_amount"
	SortTotalBalance    = "total_balance"
	SortCreatedAt       = "created_at"
)

func ValidSortField(field string) bool {
	switch field {
	case SortTransactionDate, SortPrincipalAmount, SortInterestAmount, SortTotalBalance, SortCreatedAt:
		return true
	}
	return false
}

type Entity struct {
	ID              string          `json:"_id"`
	BorrowerID      string          `json:"borrower_id"`
	LenderID        string          `json:"lender_id"`
	PrincipalAmount decimal.Decimal `json:"principal_amount"`
	InterestType    InterestType    `json:"interest_type"`
	InterestValue   decimal.Decimal `json:"interest_value"`
	Frequency       Frequency       `json:"frequency,omitempty"`
	TransactionDate time.Time       `json:"transaction_date"`
	Note            string          `json:"note"`
	InterestAmount  decimal.Decimal `json:"interest_amount"`
	TotalBalance    decimal.Decimal `json:"total_balance"`
	Status          string          `json:"status"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// Input is the caller-supplied ledger entry.
type Input struct {
	BorrowerID      string
	PrincipalAmount decimal.Decimal
	InterestType    InterestType
	InterestValue   decimal.Decimal
	Frequency       Frequency
	TransactionDate time.Time
	Note            string
}

// WriteInput is the computed record handed to the store.
type WriteInput struct {
	ID              string
	BorrowerID      string
	LenderID        string
	PrincipalAmount decimal.Decimal
	InterestType    InterestType
	InterestValue   decimal.Decimal
	Frequency       Frequency
	TransactionDate time.Time
	Note            string
	InterestAmount  decimal.Decimal
	TotalBalance    decimal.Decimal
	Status          string
}

type ListFilter struct {
	LenderID    string
	BorrowerIDs []string
	Status      string
	SortBy      string
	Limit       int32
	Offset      int32
}

type ListItem struct {
	Entity
	BorrowerName string `json:"borrower_name"`
}

type Summary struct {
	LenderID           string          `json:"lender_id"`
	TotalTransactions  int64           `json:"total_transactions"`
	ActiveTransactions int64           `json:"active_transactions"`
	TotalPrincipal     decimal.Decimal `json:"total_principal"`
	TotalInterest      decimal.Decimal `json:"total_interest"`
	TotalBalance       decimal.Decimal `json:"total_balance"`
}

type Repository interface {
	Create(ctx context.Context, in WriteInput) (*Entity, error)
	GetByID(ctx context.Context, id string) (*Entity, error)
	// UpdateOwned writes only if the stored row and in.BorrowerID both belong
	// to lenderID; otherwise it returns ErrNotFound.
	UpdateOwned(ctx context.Context, id, lenderID string, in WriteInput) (*Entity, error)
	DeleteOwned(ctx context.Context, id, lenderID string) (bool, error)
	List(ctx context.Context, f ListFilter) ([]Entity, error)
	Count(ctx context.Context, f ListFilter) (int64, error)
	Summary(ctx context.Context, lenderID string) (*Summary, error)
}

type BorrowerRepository interface {
	GetOwned(ctx context.Context, id, lenderID string) (*borrowerdomain.Entity, error)
	List(ctx context.Context, f borrowerdomain.ListFilter) ([]borrowerdomain.Entity, error)
}
