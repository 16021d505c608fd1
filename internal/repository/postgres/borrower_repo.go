package postgres

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/simplelender/backend/internal/domain/borrower"
)

type BorrowerRepository struct {
	pool *pgxpool.Pool
}

func NewBorrowerRepository(pool *pgxpool.Pool) *BorrowerRepository {
	return &BorrowerRepository{pool: pool}
}

const borrowerColumns = `id, lender_id, first_name, last_name, email, dob, address, city, state, country, pincode, phone, created_at, updated_at`

func scanBorrower(row pgx.Row, out *borrower.Entity) error {
	return row.Scan(
		&out.ID, &out.LenderID, &out.FirstName, &out.LastName, &out.Email, &out.DOB,
		&out.Address, &out.City, &out.State, &out.Country, &out.Pincode, &out.Phone,
		&out.CreatedAt, &out.UpdatedAt,
	)
}

func (r *BorrowerRepository) Create(ctx context.Context, in borrower.WriteInput) (*borrower.Entity, error) {
	q := `
INSERT INTO borrowers (id, lender_id, first_name, last_name, email, dob, address, city, state, country, pincode, phone)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
RETURNING ` + borrowerColumns
	out := &borrower.Entity{}
	err := scanBorrower(r.pool.QueryRow(ctx, q,
		in.ID, in.LenderID, in.FirstName, in.LastName, in.Email, in.DOB,
		in.Address, in.City, in.State, in.Country, in.Pincode, in.Phone,
	), out)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *BorrowerRepository) GetByID(ctx context.Context, id string) (*borrower.Entity, error) {
	q := `SELECT ` + borrowerColumns + ` FROM borrowers WHERE id = $1`
	out := &borrower.Entity{}
	if err := scanBorrower(r.pool.QueryRow(ctx, q, id), out); err != nil {
		return nil, mapBorrowerErr(err)
	}
	return out, nil
}

func (r *BorrowerRepository) GetOwned(ctx context.Context, id, lenderID string) (*borrower.Entity, error) {
	q := `SELECT ` + borrowerColumns + ` FROM borrowers WHERE id = $1 AND lender_id = $2`
	out := &borrower.Entity{}
	if err := scanBorrower(r.pool.QueryRow(ctx, q, id, lenderID), out); err != nil {
		return nil, mapBorrowerErr(err)
	}
	return out, nil
}

func (r *BorrowerRepository) UpdateOwned(ctx context.Context, id, lenderID string, in borrower.WriteInput) (*borrower.Entity, error) {
	q := `
UPDATE borrowers
SET first_name = $3, last_name = $4, email = $5, dob = $6, address = $7,
    city = $8, state = $9, country = $10, pincode = $11, phone = $12,
    updated_at = NOW()
WHERE id = $1 AND lender_id = $2
RETURNING ` + borrowerColumns
	out := &borrower.Entity{}
	err := scanBorrower(r.pool.QueryRow(ctx, q,
		id, lenderID, in.FirstName, in.LastName, in.Email, in.DOB,
		in.Address, in.City, in.State, in.Country, in.Pincode, in.Phone,
	), out)
	if err != nil {
		return nil, mapBorrowerErr(err)
	}
	return out, nil
}

func (r *BorrowerRepository) DeleteOwned(ctx context.Context, id, lenderID string) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM borrowers WHERE id = $1 AND lender_id = $2`, id, lenderID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *BorrowerRepository) List(ctx context.Context, f borrower.ListFilter) ([]borrower.Entity, error) {
	builder := strings.Builder{}
	builder.WriteString(`SELECT ` + borrowerColumns + ` FROM borrowers`)
	args, argPos := borrowerWhere(&builder, f)
	builder.WriteString(" ORDER BY created_at DESC, id DESC")
	if f.Limit > 0 {
		builder.WriteString(" LIMIT $")
		builder.WriteString(strconv.Itoa(argPos))
		args = append(args, f.Limit)
		argPos++
	}
	if f.Offset > 0 {
		builder.WriteString(" OFFSET $")
		builder.WriteString(strconv.Itoa(argPos))
		args = append(args, f.Offset)
	}

	rows, err := r.pool.Query(ctx, builder.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]borrower.Entity, 0)
	for rows.Next() {
		var item borrower.Entity
		if err := scanBorrower(rows, &item); err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *BorrowerRepository) Count(ctx context.Context, f borrower.ListFilter) (int64, error) {
	builder := strings.Builder{}
	builder.WriteString(`SELECT COUNT(*)::bigint FROM borrowers`)
	args, _ := borrowerWhere(&builder, f)

	var n int64
	if err := r.pool.QueryRow(ctx, builder.String(), args...).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// borrowerWhere writes the WHERE clause for f and returns its args and the
// next placeholder position.
func borrowerWhere(builder *strings.Builder, f borrower.ListFilter) ([]any, int) {
	builder.WriteString(" WHERE lender_id = $1")
	args := []any{f.LenderID}
	argPos := 2

	if s := strings.TrimSpace(f.Search); s != "" {
		p := "$" + strconv.Itoa(argPos)
		builder.WriteString(" AND (first_name ILIKE " + p + " OR last_name ILIKE " + p + " OR email ILIKE " + p + ")")
		args = append(args, likePattern(s))
		argPos++
	}
	if s := strings.TrimSpace(f.Name); s != "" {
		p := "$" + strconv.Itoa(argPos)
		builder.WriteString(" AND (first_name ILIKE " + p + " OR last_name ILIKE " + p + " OR (first_name || ' ' || last_name) ILIKE " + p + ")")
		args = append(args, likePattern(s))
		argPos++
	}
	if s := strings.TrimSpace(f.Email); s != "" {
		builder.WriteString(" AND email ILIKE $" + strconv.Itoa(argPos))
		args = append(args, likePattern(s))
		argPos++
	}
	return args, argPos
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likePattern turns user input into a literal substring match for ILIKE.
func likePattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

func mapBorrowerErr(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return borrower.ErrNotFound
	}
	return err
}
