package expense

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonthRange(t *testing.T) {
	start, end := MonthRange(time.Date(2024, time.December, 31, 23, 59, 0, 0, time.UTC))
	assert.Equal(t, time.Date(2024, time.December, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC), end)

	ist := time.FixedZone("IST", 5*3600+1800)
	start, _ = MonthRange(time.Date(2024, time.March, 1, 2, 0, 0, 0, ist))
	assert.Equal(t, time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC), start)
}

func TestMemoryRepositoryQueries(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	base := time.Date(2024, time.May, 10, 12, 0, 0, 0, time.UTC)

	seed := []Expense{
		{ID: "e1", UserID: "u1", TransactionID: "t1", MerchantName: "Fresh Mart", Amount: decimal.NewFromInt(10), CreatedAt: base.Add(-40 * 24 * time.Hour)},
		{ID: "e2", UserID: "u1", TransactionID: "t2", MerchantName: "Fresh Mart", Amount: decimal.NewFromInt(20), CreatedAt: base.Add(-2 * time.Hour)},
		{ID: "e3", UserID: "u1", TransactionID: "t3", MerchantName: "Cinema", Amount: decimal.NewFromInt(30), CreatedAt: base.Add(-1 * time.Hour)},
		{ID: "e4", UserID: "u2", TransactionID: "t4", MerchantName: "Fresh Mart", Amount: decimal.NewFromInt(40), CreatedAt: base},
	}
	for _, e := range seed {
		require.NoError(t, repo.Create(ctx, e))
	}

	n, err := repo.CountByMerchantSince(ctx, "u1", "Fresh Mart", base.Add(-30*24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	between, err := repo.ListBetween(ctx, "u1", base.Add(-3*time.Hour), base)
	require.NoError(t, err)
	require.Len(t, between, 2)
	assert.Equal(t, "e2", between[0].ID)

	recent, err := repo.Recent(ctx, "u1", 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "e3", recent[0].ID)

	linked, err := repo.ByTransactionIDs(ctx, []string{"t2", "t4", "missing"})
	require.NoError(t, err)
	assert.Len(t, linked, 2)
	assert.Equal(t, "e4", linked["t4"].ID)
}
