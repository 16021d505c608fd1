package transaction_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/simplelender/backend/internal/apperror"
	borrowerdomain "github.com/simplelender/backend/internal/domain/borrower"
	"github.com/simplelender/backend/internal/domain/transaction"
	"github.com/simplelender/backend/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type eventRecorder struct {
	events []string
}

func (r *eventRecorder) PublishLedgerEvent(_ string, event string, _ any) {
	r.events = append(r.events, event)
}

type fixture struct {
	store  *memory.Store
	svc    *transaction.Service
	events *eventRecorder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	rec := &eventRecorder{}
	return &fixture{
		store:  store,
		svc:    transaction.NewService(store.Borrowers(), store.Transactions(), rec),
		events: rec,
	}
}

func (f *fixture) borrower(t *testing.T, lenderID, first, last, email string) string {
	t.Helper()
	id := uuid.NewString()
	_, err := f.store.Borrowers().Create(context.Background(), borrowerdomain.WriteInput{
		ID: id, LenderID: lenderID, FirstName: first, LastName: last, Email: email,
	})
	require.NoError(t, err)
	return id
}

func entry(borrowerID, principal string, typ transaction.InterestType, value string) transaction.Input {
	return transaction.Input{
		BorrowerID:      borrowerID,
		PrincipalAmount: decimal.RequireFromString(principal),
		InterestType:    typ,
		InterestValue:   decimal.RequireFromString(value),
		Frequency:       transaction.FrequencyMonthly,
		TransactionDate: time.Date(2024, 6, 1, 15, 30, 0, 0, time.UTC),
		Note:            "first disbursal",
	}
}

func TestAddComputesLedgerFields(t *testing.T) {
	f := newFixture(t)
	b1 := f.borrower(t, "lender-a", "Ravi", "Kumar", "ravi@example.com")

	got, err := f.svc.Add(context.Background(), entry(b1, "1000", transaction.InterestPercentage, "5"), "lender-a")
	require.NoError(t, err)
	assert.True(t, got.InterestAmount.Equal(decimal.NewFromInt(50)))
	assert.True(t, got.TotalBalance.Equal(decimal.NewFromInt(1050)))
	assert.Equal(t, transaction.StatusActive, got.Status)
	assert.Equal(t, "lender-a", got.LenderID)
	assert.Equal(t, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), got.TransactionDate)
	assert.Equal(t, []string{transaction.EventAdded}, f.events.events)
}

func TestAddFlatInterest(t *testing.T) {
	f := newFixture(t)
	b1 := f.borrower(t, "lender-a", "Ravi", "Kumar", "ravi@example.com")

	got, err := f.svc.Add(context.Background(), entry(b1, "2000", transaction.InterestFlat, "150"), "lender-a")
	require.NoError(t, err)
	assert.True(t, got.InterestAmount.Equal(decimal.NewFromInt(150)))
	assert.True(t, got.TotalBalance.Equal(decimal.NewFromInt(2150)))
}

func TestAddForeignBorrowerIsDenied(t *testing.T) {
	f := newFixture(t)
	b2 := f.borrower(t, "lender-b", "Asha", "Rao", "asha@example.com")

	_, err := f.svc.Add(context.Background(), entry(b2, "1000", transaction.InterestFlat, "10"), "lender-a")
	assert.Equal(t, apperror.KindAuthz, apperror.KindOf(err))
	assert.Empty(t, f.events.events)
}

func TestAddValidatesInput(t *testing.T) {
	f := newFixture(t)
	b1 := f.borrower(t, "lender-a", "Ravi", "Kumar", "ravi@example.com")
	in := entry(b1, "-1", transaction.InterestType("compound"), "5")
	in.Frequency = transaction.Frequency("weekly")

	_, err := f.svc.Add(context.Background(), in, "lender-a")
	require.Error(t, err)
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
	assert.Len(t, apperror.From(err).Fields, 3)
}

func TestAddRejectsAmountsOutsideColumnLimits(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b1 := f.borrower(t, "lender-a", "Ravi", "Kumar", "ravi@example.com")

	cases := map[string]transaction.Input{
		"huge exponent":     entry(b1, "1e20000000", transaction.InterestPercentage, "5"),
		"principal too big": entry(b1, "100000000000000000", transaction.InterestFlat, "0"),
		"rate too precise":  entry(b1, "1000", transaction.InterestPercentage, "1.23456"),
		"total overflows":   entry(b1, "9999999999999999", transaction.InterestFlat, "10"),
		"rate over column":  entry(b1, "1000", transaction.InterestFlat, "100000000000000"),
	}
	for name, in := range cases {
		start := time.Now()
		_, err := f.svc.Add(ctx, in, "lender-a")
		assert.Equal(t, apperror.KindValidation, apperror.KindOf(err), name)
		assert.Less(t, time.Since(start), time.Second, name)
	}

	summary, err := f.svc.Summary(ctx, "lender-a")
	require.NoError(t, err)
	assert.Zero(t, summary.TotalTransactions)
	assert.Empty(t, f.events.events)
}

func TestUpdateRejectsAmountsOutsideColumnLimits(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b1 := f.borrower(t, "lender-a", "Ravi", "Kumar", "ravi@example.com")
	created, err := f.svc.Add(ctx, entry(b1, "1000", transaction.InterestPercentage, "5"), "lender-a")
	require.NoError(t, err)

	_, err = f.svc.Update(ctx, created.ID, entry(b1, "1e20000000", transaction.InterestFlat, "1"), "lender-a")
	require.Error(t, err)
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
	assert.Equal(t, "principal_amount", apperror.From(err).Fields[0].Field)

	got, err := f.svc.Get(ctx, created.ID, "lender-a")
	require.NoError(t, err)
	assert.True(t, got.TotalBalance.Equal(decimal.NewFromInt(1050)))
}

func TestUpdateRecomputesAndKeepsStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b1 := f.borrower(t, "lender-a", "Ravi", "Kumar", "ravi@example.com")
	created, err := f.svc.Add(ctx, entry(b1, "1000", transaction.InterestPercentage, "5"), "lender-a")
	require.NoError(t, err)

	updated, err := f.svc.Update(ctx, created.ID, entry(b1, "2000", transaction.InterestPercentage, "10"), "lender-a")
	require.NoError(t, err)
	assert.True(t, updated.InterestAmount.Equal(decimal.NewFromInt(200)))
	assert.True(t, updated.TotalBalance.Equal(decimal.NewFromInt(2200)))
	assert.Equal(t, transaction.StatusActive, updated.Status)
	assert.Equal(t, transaction.EventUpdated, f.events.events[len(f.events.events)-1])
}

func TestUpdateToForeignBorrowerIsDenied(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b1 := f.borrower(t, "lender-a", "Ravi", "Kumar", "ravi@example.com")
	b2 := f.borrower(t, "lender-b", "Asha", "Rao", "asha@example.com")
	created, err := f.svc.Add(ctx, entry(b1, "1000", transaction.InterestFlat, "10"), "lender-a")
	require.NoError(t, err)

	_, err = f.svc.Update(ctx, created.ID, entry(b2, "1000", transaction.InterestFlat, "10"), "lender-a")
	assert.Equal(t, apperror.KindAuthz, apperror.KindOf(err))

	got, err := f.store.Transactions().GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, b1, got.BorrowerID)
}

func TestUpdateByOtherLenderIsDenied(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b1 := f.borrower(t, "lender-a", "Ravi", "Kumar", "ravi@example.com")
	b2 := f.borrower(t, "lender-b", "Asha", "Rao", "asha@example.com")
	created, err := f.svc.Add(ctx, entry(b1, "1000", transaction.InterestFlat, "10"), "lender-a")
	require.NoError(t, err)

	_, err = f.svc.Update(ctx, created.ID, entry(b2, "1", transaction.InterestFlat, "1"), "lender-b")
	assert.Equal(t, apperror.KindAuthz, apperror.KindOf(err))
}

func TestUpdateMissingTransaction(t *testing.T) {
	f := newFixture(t)
	b1 := f.borrower(t, "lender-a", "Ravi", "Kumar", "ravi@example.com")

	_, err := f.svc.Update(context.Background(), uuid.NewString(), entry(b1, "1", transaction.InterestFlat, "1"), "lender-a")
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))

	_, err = f.svc.Update(context.Background(), "bogus", entry(b1, "1", transaction.InterestFlat, "1"), "lender-a")
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
}

func TestDeleteScopedToLender(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b1 := f.borrower(t, "lender-a", "Ravi", "Kumar", "ravi@example.com")
	created, err := f.svc.Add(ctx, entry(b1, "1000", transaction.InterestFlat, "10"), "lender-a")
	require.NoError(t, err)

	err = f.svc.Delete(ctx, created.ID, "lender-b")
	assert.Equal(t, apperror.KindAuthz, apperror.KindOf(err))

	require.NoError(t, f.svc.Delete(ctx, created.ID, "lender-a"))
	err = f.svc.Delete(ctx, created.ID, "lender-a")
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
}

func TestGetIncludesBorrowerName(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b1 := f.borrower(t, "lender-a", "Ravi", "Kumar", "ravi@example.com")
	created, err := f.svc.Add(ctx, entry(b1, "1000", transaction.InterestFlat, "10"), "lender-a")
	require.NoError(t, err)

	got, err := f.svc.Get(ctx, created.ID, "lender-a")
	require.NoError(t, err)
	assert.Equal(t, "Ravi Kumar", got.BorrowerName)

	_, err = f.svc.Get(ctx, created.ID, "lender-b")
	assert.Equal(t, apperror.KindAuthz, apperror.KindOf(err))
}

func TestListResolvesBorrowersFirst(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b1 := f.borrower(t, "lender-a", "Ravi", "Kumar", "ravi@example.com")
	b2 := f.borrower(t, "lender-a", "Asha", "Rao", "asha@example.com")
	other := f.borrower(t, "lender-b", "Ravi", "Shah", "shah@example.com")
	for _, id := range []string{b1, b1, b2} {
		_, err := f.svc.Add(ctx, entry(id, "100", transaction.InterestFlat, "1"), "lender-a")
		require.NoError(t, err)
	}
	_, err := f.svc.Add(ctx, entry(other, "100", transaction.InterestFlat, "1"), "lender-b")
	require.NoError(t, err)

	page, err := f.svc.List(ctx, transaction.ListInput{LenderID: "lender-a"})
	require.NoError(t, err)
	assert.EqualValues(t, 3, page.Total)
	assert.Equal(t, transaction.DefaultListLimit, page.Limit)

	page, err = f.svc.List(ctx, transaction.ListInput{LenderID: "lender-a", BorrowerName: "ravi"})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	for _, item := range page.Items {
		assert.Equal(t, "Ravi Kumar", item.BorrowerName)
	}

	page, err = f.svc.List(ctx, transaction.ListInput{LenderID: "lender-a", Email: "asha@"})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, b2, page.Items[0].BorrowerID)
}

func TestListWithNoMatchingBorrowersIsEmpty(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b1 := f.borrower(t, "lender-a", "Ravi", "Kumar", "ravi@example.com")
	_, err := f.svc.Add(ctx, entry(b1, "100", transaction.InterestFlat, "1"), "lender-a")
	require.NoError(t, err)

	page, err := f.svc.List(ctx, transaction.ListInput{LenderID: "lender-a", BorrowerName: "nobody", Page: 2, Limit: 5})
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.NotNil(t, page.Items)
	assert.Equal(t, 2, page.Page)
	assert.Equal(t, 5, page.Limit)
	assert.Equal(t, 0, page.TotalPages)
}

func TestListRejectsUnknownSortField(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.List(context.Background(), transaction.ListInput{LenderID: "lender-a", SortBy: "password_hash"})
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
}

func TestSummaryAggregatesLenderEntries(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b1 := f.borrower(t, "lender-a", "Ravi", "Kumar", "ravi@example.com")
	other := f.borrower(t, "lender-b", "Asha", "Rao", "asha@example.com")
	_, err := f.svc.Add(ctx, entry(b1, "1000", transaction.InterestPercentage, "5"), "lender-a")
	require.NoError(t, err)
	_, err = f.svc.Add(ctx, entry(b1, "200", transaction.InterestFlat, "20"), "lender-a")
	require.NoError(t, err)
	_, err = f.svc.Add(ctx, entry(other, "999", transaction.InterestFlat, "1"), "lender-b")
	require.NoError(t, err)

	sum, err := f.svc.Summary(ctx, "lender-a")
	require.NoError(t, err)
	assert.EqualValues(t, 2, sum.TotalTransactions)
	assert.EqualValues(t, 2, sum.ActiveTransactions)
	assert.True(t, sum.TotalPrincipal.Equal(decimal.NewFromInt(1200)))
	assert.True(t, sum.TotalInterest.Equal(decimal.NewFromInt(70)))
	assert.True(t, sum.TotalBalance.Equal(decimal.NewFromInt(1270)))
}
