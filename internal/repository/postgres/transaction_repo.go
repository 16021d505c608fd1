package postgres

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/simplelender/backend/internal/domain/transaction"
)

type TransactionRepository struct {
	pool *pgxpool.Pool
}

func NewTransactionRepository(pool *pgxpool.Pool) *TransactionRepository {
	return &TransactionRepository{pool: pool}
}

const transactionColumns = `id, borrower_id, lender_id, principal_amount, interest_type, interest_value,
       COALESCE(frequency, ''), transaction_date, note, interest_amount, total_balance,
       status, created_at, updated_at`

// sortColumns maps accepted sort fields to SQL; only these reach ORDER BY.
var sortColumns = map[string]string{
	transaction.SortTransactionDate: "transaction_date",
	transaction.SortPrincipalAmount: "principal_amount",
	transaction.SortInterestAmount:  "interest_amount",
	transaction.SortTotalBalance:    "total_balance",
	transaction.SortCreatedAt:       "created_at",
}

func scanTransaction(row pgx.Row, out *transaction.Entity) error {
	var interestType, frequency string
	err := row.Scan(
		&out.ID, &out.BorrowerID, &out.LenderID, &out.PrincipalAmount, &interestType, &out.InterestValue,
		&frequency, &out.TransactionDate, &out.Note, &out.InterestAmount, &out.TotalBalance,
		&out.Status, &out.CreatedAt, &out.UpdatedAt,
	)
	if err != nil {
		return err
	}
	out.InterestType = transaction.InterestType(interestType)
	out.Frequency = transaction.Frequency(frequency)
	return nil
}

func (r *TransactionRepository) Create(ctx context.Context, in transaction.WriteInput) (*transaction.Entity, error) {
	q := `
INSERT INTO transactions (
  id, borrower_id, lender_id, principal_amount, interest_type, interest_value,
  frequency, transaction_date, note, interest_amount, total_balance, status
) VALUES ($1,$2,$3,$4,$5,$6,NULLIF($7,''),$8,$9,$10,$11,$12)
RETURNING ` + transactionColumns
	out := &transaction.Entity{}
	err := scanTransaction(r.pool.QueryRow(ctx, q,
		in.ID, in.BorrowerID, in.LenderID, in.PrincipalAmount, string(in.InterestType), in.InterestValue,
		string(in.Frequency), in.TransactionDate, in.Note, in.InterestAmount, in.TotalBalance, in.Status,
	), out)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *TransactionRepository) GetByID(ctx context.Context, id string) (*transaction.Entity, error) {
	q := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1`
	out := &transaction.Entity{}
	if err := scanTransaction(r.pool.QueryRow(ctx, q, id), out); err != nil {
		return nil, mapTransactionErr(err)
	}
	return out, nil
}

func (r *TransactionRepository) UpdateOwned(ctx context.Context, id, lenderID string, in transaction.WriteInput) (*transaction.Entity, error) {
	q := `
UPDATE transactions
SET borrower_id = $3, principal_amount = $4, interest_type = $5, interest_value = $6,
    frequency = NULLIF($7,''), transaction_date = $8, note = $9,
    interest_amount = $10, total_balance = $11,
    status = COALESCE(NULLIF($12,''), status),
    updated_at = NOW()
WHERE id = $1 AND lender_id = $2
  AND EXISTS (SELECT 1 FROM borrowers b WHERE b.id = $3 AND b.lender_id = $2)
RETURNING ` + transactionColumns
	out := &transaction.Entity{}
	err := scanTransaction(r.pool.QueryRow(ctx, q,
		id, lenderID, in.BorrowerID, in.PrincipalAmount, string(in.InterestType), in.InterestValue,
		string(in.Frequency), in.TransactionDate, in.Note, in.InterestAmount, in.TotalBalance, in.Status,
	), out)
	if err != nil {
		return nil, mapTransactionErr(err)
	}
	return out, nil
}

func (r *TransactionRepository) DeleteOwned(ctx context.Context, id, lenderID string) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM transactions WHERE id = $1 AND lender_id = $2`, id, lenderID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *TransactionRepository) List(ctx context.Context, f transaction.ListFilter) ([]transaction.Entity, error) {
	column, ok := sortColumns[f.SortBy]
	if !ok {
		column = sortColumns[transaction.SortTransactionDate]
	}

	builder := strings.Builder{}
	builder.WriteString(`SELECT ` + transactionColumns + ` FROM transactions`)
	args, argPos := transactionWhere(&builder, f)
	builder.WriteString(" ORDER BY " + column + " DESC, created_at DESC, id DESC")
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

	out := make([]transaction.Entity, 0)
	for rows.Next() {
		var item transaction.Entity
		if err := scanTransaction(rows, &item); err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *TransactionRepository) Count(ctx context.Context, f transaction.ListFilter) (int64, error) {
	builder := strings.Builder{}
	builder.WriteString(`SELECT COUNT(*)::bigint FROM transactions`)
	args, _ := transactionWhere(&builder, f)

	var n int64
	if err := r.pool.QueryRow(ctx, builder.String(), args...).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (r *TransactionRepository) Summary(ctx context.Context, lenderID string) (*transaction.Summary, error) {
	q := `
SELECT
  COUNT(*)::bigint,
  COUNT(*) FILTER (WHERE status = 'active')::bigint,
  COALESCE(SUM(principal_amount), 0),
  COALESCE(SUM(interest_amount), 0),
  COALESCE(SUM(total_balance), 0)
FROM transactions
WHERE lender_id = $1
`
	out := &transaction.Summary{LenderID: lenderID}
	err := r.pool.QueryRow(ctx, q, lenderID).Scan(
		&out.TotalTransactions,
		&out.ActiveTransactions,
		&out.TotalPrincipal,
		&out.TotalInterest,
		&out.TotalBalance,
	)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func transactionWhere(builder *strings.Builder, f transaction.ListFilter) ([]any, int) {
	builder.WriteString(" WHERE lender_id = $1 AND borrower_id = ANY($2::uuid[])")
	args := []any{f.LenderID, f.BorrowerIDs}
	argPos := 3
	if s := strings.TrimSpace(f.Status); s != "" {
		builder.WriteString(" AND status = $" + strconv.Itoa(argPos))
		args = append(args, s)
		argPos++
	}
	return args, argPos
}

func mapTransactionErr(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return transaction.ErrNotFound
	}
	return err
}
