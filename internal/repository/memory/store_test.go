package memory

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	borrowerdomain "github.com/simplelender/backend/internal/domain/borrower"
	txndomain "github.com/simplelender/backend/internal/domain/transaction"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedBorrower(t *testing.T, repo *BorrowerRepository, id, lenderID, first, last, email string) {
	t.Helper()
	_, err := repo.Create(context.Background(), borrowerdomain.WriteInput{
		ID: id, LenderID: lenderID, FirstName: first, LastName: last, Email: email,
	})
	require.NoError(t, err)
}

func TestBorrowerOwnedWritesRespectLender(t *testing.T) {
	ctx := context.Background()
	repo := NewStore().Borrowers()
	seedBorrower(t, repo, "b1", "lender-a", "Ravi", "Kumar", "ravi@example.com")

	_, err := repo.UpdateOwned(ctx, "b1", "lender-b", borrowerdomain.WriteInput{FirstName: "X"})
	assert.ErrorIs(t, err, borrowerdomain.ErrNotFound)

	deleted, err := repo.DeleteOwned(ctx, "b1", "lender-b")
	require.NoError(t, err)
	assert.False(t, deleted)

	got, err := repo.GetByID(ctx, "b1")
	require.NoError(t, err)
	assert.Equal(t, "Ravi", got.FirstName)
}

func TestBorrowerListFiltersAndOrders(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tick := 0
	store.SetClock(func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	})
	repo := store.Borrowers()
	seedBorrower(t, repo, "b1", "lender-a", "Ravi", "Kumar", "ravi@example.com")
	seedBorrower(t, repo, "b2", "lender-a", "Asha", "Rao", "asha@example.com")
	seedBorrower(t, repo, "b3", "lender-b", "Ravi", "Shah", "shah@example.com")

	all, err := repo.List(ctx, borrowerdomain.ListFilter{LenderID: "lender-a"})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "b2", all[0].ID)

	byName, err := repo.List(ctx, borrowerdomain.ListFilter{LenderID: "lender-a", Name: "ravi kumar"})
	require.NoError(t, err)
	require.Len(t, byName, 1)
	assert.Equal(t, "b1", byName[0].ID)

	n, err := repo.Count(ctx, borrowerdomain.ListFilter{LenderID: "lender-a", Search: "RAO"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	page, err := repo.List(ctx, borrowerdomain.ListFilter{LenderID: "lender-a", Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "b1", page[0].ID)
}

func TestDeleteBorrowerCascadesTransactions(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	seedBorrower(t, store.Borrowers(), "b1", "lender-a", "Ravi", "Kumar", "ravi@example.com")
	_, err := store.Transactions().Create(ctx, txndomain.WriteInput{
		ID: "t1", BorrowerID: "b1", LenderID: "lender-a", Status: txndomain.StatusActive,
		PrincipalAmount: decimal.NewFromInt(100), InterestType: txndomain.InterestFlat,
	})
	require.NoError(t, err)

	deleted, err := store.Borrowers().DeleteOwned(ctx, "b1", "lender-a")
	require.NoError(t, err)
	require.True(t, deleted)

	_, err = store.Transactions().GetByID(ctx, "t1")
	assert.ErrorIs(t, err, txndomain.ErrNotFound)
}

func TestTransactionUpdateRejectsForeignBorrower(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	seedBorrower(t, store.Borrowers(), "b1", "lender-a", "Ravi", "Kumar", "ravi@example.com")
	seedBorrower(t, store.Borrowers(), "b2", "lender-b", "Asha", "Rao", "asha@example.com")
	txns := store.Transactions()
	_, err := txns.Create(ctx, txndomain.WriteInput{ID: "t1", BorrowerID: "b1", LenderID: "lender-a", Status: txndomain.StatusActive})
	require.NoError(t, err)

	_, err = txns.UpdateOwned(ctx, "t1", "lender-a", txndomain.WriteInput{BorrowerID: "b2", LenderID: "lender-a"})
	assert.ErrorIs(t, err, txndomain.ErrNotFound)

	got, err := txns.GetByID(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, "b1", got.BorrowerID)
}

func TestTransactionListSortsDescending(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	seedBorrower(t, store.Borrowers(), "b1", "lender-a", "Ravi", "Kumar", "ravi@example.com")
	txns := store.Transactions()
	for i, amount := range []int64{500, 1500, 1000} {
		_, err := txns.Create(ctx, txndomain.WriteInput{
			ID:              []string{"t1", "t2", "t3"}[i],
			BorrowerID:      "b1",
			LenderID:        "lender-a",
			Status:          txndomain.StatusActive,
			PrincipalAmount: decimal.NewFromInt(amount),
			TransactionDate: time.Date(2024, 3, i+1, 0, 0, 0, 0, time.UTC),
		})
		require.NoError(t, err)
	}

	byAmount, err := txns.List(ctx, txndomain.ListFilter{LenderID: "lender-a", BorrowerIDs: []string{"b1"}, SortBy: txndomain.SortPrincipalAmount})
	require.NoError(t, err)
	require.Len(t, byAmount, 3)
	assert.Equal(t, []string{"t2", "t3", "t1"}, []string{byAmount[0].ID, byAmount[1].ID, byAmount[2].ID})

	byDate, err := txns.List(ctx, txndomain.ListFilter{LenderID: "lender-a", BorrowerIDs: []string{"b1"}, SortBy: txndomain.SortTransactionDate})
	require.NoError(t, err)
	assert.Equal(t, "t3", byDate[0].ID)

	none, err := txns.List(ctx, txndomain.ListFilter{LenderID: "lender-a", BorrowerIDs: []string{"b9"}})
	require.NoError(t, err)
	assert.Empty(t, none)
}
