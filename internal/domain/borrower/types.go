package borrower

import (
	"context"
	"errors"
	"strings"
	"time"
)

var ErrNotFound = errors.New("borrower not found")

type Entity struct {
	ID        string
	LenderID  string
	FirstName string
	LastName  string
	Email     string
	DOB       time.Time
	Address   string
	City      string
	State     string
	Country   string
	Pincode   string
	Phone     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (e Entity) FullName() string {
	return strings.TrimSpace(e.FirstName + " " + e.LastName)
}

// UpsertInput is the caller-supplied borrower payload. DOB is YYYY-MM-DD or RFC3339.
type UpsertInput struct {
	FirstName string
	LastName  string
	Email     string
	DOB       string
	Address   string
	City      string
	State     string
	Country   string
	Pincode   string
	Phone     string
}

// WriteInput is the normalized record handed to the store.
type WriteInput struct {
	ID        string
	LenderID  string
	FirstName string
	LastName  string
	Email     string
	DOB       time.Time
	Address   string
	City      string
	State     string
	Country   string
	Pincode   string
	Phone     string
}

// ListFilter criteria are ANDed. Search matches first name, last name or email;
// Name matches first, last or full name; Email matches email. All matches are
// case-insensitive substrings. Limit <= 0 means no limit.
type ListFilter struct {
	LenderID string
	Search   string
	Name     string
	Email    string
	Limit    int32
	Offset   int32
}

// Summary is the projection returned by list.
type Summary struct {
	ID       string    `json:"_id"`
	FullName string    `json:"full_name"`
	Email    string    `json:"email"`
	Phone    string    `json:"phone"`
	DOB      time.Time `json:"dob"`
	Address  string    `json:"address"`
}

// Details is the projection returned by get.
type Details struct {
	ID        string    `json:"_id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	FullName  string    `json:"full_name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	DOB       time.Time `json:"dob"`
	Address   string    `json:"address"`
	City      string    `json:"city"`
	State     string    `json:"state"`
	Country   string    `json:"country"`
	Pincode   string    `json:"pincode"`
	CreatedAt time.Time `json:"created_at"`
}

type Repository interface {
	Create(ctx context.Context, in WriteInput) (*Entity, error)
	GetByID(ctx context.Context, id string) (*Entity, error)
	GetOwned(ctx context.Context, id, lenderID string) (*Entity, error)
	// UpdateOwned overwrites the borrower only if it belongs to lenderID and
	// returns ErrNotFound when no row matched.
	UpdateOwned(ctx context.Context, id, lenderID string, in WriteInput) (*Entity, error)
	// DeleteOwned reports whether a row matching both id and lenderID was removed.
	DeleteOwned(ctx context.Context, id, lenderID string) (bool, error)
	List(ctx context.Context, f ListFilter) ([]Entity, error)
	Count(ctx context.Context, f ListFilter) (int64, error)
}
