package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/flowfin/go-conciliador/internal/common"
	"github.com/flowfin/go-conciliador/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClosure(date string, pending int) models.DayClosure {
	parsed, err := time.ParseInLocation("2006-01-02", date, time.UTC)
	if err != nil {
		panic(err)
	}
	return models.DayClosure{
		Date:         parsed,
		Closed:       true,
		MatchedCount: 10,
		PendingCount: pending,
		MatchedValue: decimal.RequireFromString("1234.56"),
		PendingValue: decimal.RequireFromString("7.89"),
	}
}

func TestClosureRepository_AppendAndLoad(t *testing.T) {
	repo, err := NewClosureRepository(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, repo.Append(ctx, "ACME", testClosure("2025-05-10", 2)))
	require.NoError(t, repo.Append(ctx, "ACME", testClosure("2025-05-11", 1)))

	closures, err := repo.Load(ctx, "ACME")
	require.NoError(t, err)
	require.Len(t, closures, 2)
	assert.Equal(t, "2025-05-10", closures[0].Date.Format("2006-01-02"))
	assert.Equal(t, "2025-05-11", closures[1].Date.Format("2006-01-02"))
	assert.True(t, closures[0].MatchedValue.Equal(decimal.RequireFromString("1234.56")))
}

func TestClosureRepository_CompactsLastRowPerDate(t *testing.T) {
	repo, err := NewClosureRepository(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, repo.Append(ctx, "ACME", testClosure("2025-05-10", 5)))
	// re-closing the same day appends, read keeps the later row
	require.NoError(t, repo.Append(ctx, "ACME", testClosure("2025-05-10", 0)))

	closures, err := repo.Load(ctx, "ACME")
	require.NoError(t, err)
	require.Len(t, closures, 1)
	assert.Equal(t, 0, closures[0].PendingCount)
}

func TestClosureRepository_LoadUnknownCompany(t *testing.T) {
	repo, err := NewClosureRepository(t.TempDir())
	require.NoError(t, err)

	closures, err := repo.Load(context.Background(), "GHOST")
	require.NoError(t, err)
	assert.Empty(t, closures)
}

func TestClosureRepository_GetDay(t *testing.T) {
	repo, err := NewClosureRepository(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, repo.Append(ctx, "ACME", testClosure("2025-05-10", 0)))

	day, err := repo.GetDay(ctx, "ACME", time.Date(2025, 5, 10, 15, 30, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.True(t, day.Closed)

	_, err = repo.GetDay(ctx, "ACME", time.Date(2025, 5, 11, 0, 0, 0, 0, time.UTC))
	assert.ErrorIs(t, err, common.ErrDataNotFound)
}
