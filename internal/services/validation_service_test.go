package services

import (
	"context"
	"testing"

	"github.com/flowfin/go-conciliador/internal/config"
	"github.com/flowfin/go-conciliador/internal/models"
	"github.com/flowfin/go-conciliador/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServices(t *testing.T, conf config.Config) *Services {
	t.Helper()

	ledgerRepo, err := repositories.NewLedgerRepository(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = ledgerRepo.Close() })

	closureRepo, err := repositories.NewClosureRepository(t.TempDir())
	require.NoError(t, err)

	return New(conf, nil, ledgerRepo, closureRepo)
}

func submitRequest() models.SubmitDecisionRequest {
	return models.SubmitDecisionRequest{
		CompanyID: "ACME",
		SourceID:  "000123",
		Origin:    "ARGO",
		Date:      "2025-05-10",
		Amount:    "150.00",
		Decision:  "JUSTIFY_CORRECT",
		Note:      "manual adjustment, confirmed by finance",
		DecidedBy: "operator-1",
	}
}

func TestSubmitDecision_Replay(t *testing.T) {
	srv := newTestServices(t, config.Config{})
	ctx := context.Background()

	entry, overwritten, err := srv.Validation.SubmitDecision(ctx, submitRequest())
	require.NoError(t, err)
	assert.False(t, overwritten)
	assert.Equal(t, models.DecisionJustifyCorrect, entry.Current.Decision)

	// identical request again: idempotent
	replay, overwritten, err := srv.Validation.SubmitDecision(ctx, submitRequest())
	require.NoError(t, err)
	assert.False(t, overwritten)
	assert.Empty(t, replay.History)
}

func TestSubmitDecision_OverwriteKeepsHistory(t *testing.T) {
	srv := newTestServices(t, config.Config{})
	ctx := context.Background()

	_, _, err := srv.Validation.SubmitDecision(ctx, submitRequest())
	require.NoError(t, err)

	changed := submitRequest()
	changed.Decision = "MARK_ERROR"
	changed.Note = "duplicate capture, upstream must void"
	entry, overwritten, err := srv.Validation.SubmitDecision(ctx, changed)
	require.NoError(t, err)

	assert.True(t, overwritten)
	assert.Equal(t, models.DecisionMarkError, entry.Current.Decision)
	require.Len(t, entry.History, 1)
	assert.Equal(t, models.DecisionJustifyCorrect, entry.History[0].Decision)
}

func TestSubmitDecision_CounterpartRequired(t *testing.T) {
	srv := newTestServices(t, config.Config{})

	req := submitRequest()
	req.Decision = "SELECT_CORRESPONDENCE"
	_, _, err := srv.Validation.SubmitDecision(context.Background(), req)

	var detail models.ErrorDetail
	require.ErrorAs(t, err, &detail)
	assert.Equal(t, models.ErrKeyCounterpartRequired, detail.Code)
}

func TestSubmitDecision_CounterpartAlreadyClaimed(t *testing.T) {
	srv := newTestServices(t, config.Config{})
	ctx := context.Background()

	first := submitRequest()
	first.Decision = "SELECT_CORRESPONDENCE"
	first.SelectedCounterpartID = "888"
	_, _, err := srv.Validation.SubmitDecision(ctx, first)
	require.NoError(t, err)

	second := submitRequest()
	second.SourceID = "000456"
	second.Decision = "SELECT_CORRESPONDENCE"
	second.SelectedCounterpartID = "888"
	_, _, err = srv.Validation.SubmitDecision(ctx, second)

	var detail models.ErrorDetail
	require.ErrorAs(t, err, &detail)
	assert.Equal(t, models.ErrKeyCounterpartAlreadyClaimed, detail.Code)
}

func TestSubmitDecision_NetunnaSideCorrespondenceRejected(t *testing.T) {
	srv := newTestServices(t, config.Config{})

	req := submitRequest()
	req.Origin = "NETUNNA"
	req.Decision = "SELECT_CORRESPONDENCE"
	req.SelectedCounterpartID = "888"
	_, _, err := srv.Validation.SubmitDecision(context.Background(), req)

	var detail models.ErrorDetail
	require.ErrorAs(t, err, &detail)
	assert.Equal(t, models.ErrKeyCorrespondenceArgoSideOnly, detail.Code)
}

func TestSubmitDecision_CounterpartOutsideTolerance(t *testing.T) {
	srv := newTestServices(t, config.Config{})

	req := submitRequest()
	req.Decision = "SELECT_CORRESPONDENCE"
	req.SelectedCounterpartID = "888"
	req.CounterpartAmount = "150.02"
	_, _, err := srv.Validation.SubmitDecision(context.Background(), req)

	var detail models.ErrorDetail
	require.ErrorAs(t, err, &detail)
	assert.Equal(t, models.ErrKeyCounterpartOutsideTolerance, detail.Code)

	req.CounterpartAmount = "abc"
	_, _, err = srv.Validation.SubmitDecision(context.Background(), req)
	require.ErrorAs(t, err, &detail)
	assert.Equal(t, models.ErrKeyInvalidAmount, detail.Code)
}

func TestCloseDay_RefusesPendingWithoutDecision(t *testing.T) {
	srv := newTestServices(t, config.Config{})
	ctx := context.Background()

	req := models.CloseDayRequest{
		CompanyID:    "ACME",
		Date:         "2025-05-10",
		MatchedCount: 5,
		MatchedValue: "500.00",
		Pending: []models.PendingRecordRef{
			{SourceID: "000123", Origin: "ARGO", Amount: "150.00"},
		},
	}

	_, err := srv.Validation.CloseDay(ctx, req)
	var detail models.ErrorDetail
	require.ErrorAs(t, err, &detail)
	assert.Equal(t, models.ErrKeyDayNotFullyResolved, detail.Code)

	// force override records the closure with the pending leftovers
	req.Force = true
	closure, err := srv.Validation.CloseDay(ctx, req)
	require.NoError(t, err)
	assert.True(t, closure.Closed)
	assert.Equal(t, 1, closure.PendingCount)
	assert.Equal(t, "150.00", closure.PendingValue.StringFixed(2))
}

func TestCloseDay_AllPendingResolved(t *testing.T) {
	srv := newTestServices(t, config.Config{})
	ctx := context.Background()

	// decide the single pending record, then close
	_, _, err := srv.Validation.SubmitDecision(ctx, submitRequest())
	require.NoError(t, err)

	closure, err := srv.Validation.CloseDay(ctx, models.CloseDayRequest{
		CompanyID:    "ACME",
		Date:         "2025-05-10",
		MatchedCount: 5,
		MatchedValue: "500.00",
		Pending: []models.PendingRecordRef{
			{SourceID: "000123", Origin: "ARGO", Amount: "150.00"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 0, closure.PendingCount)

	closures, err := srv.Validation.GetClosures(ctx, "ACME")
	require.NoError(t, err)
	require.Len(t, closures, 1)
	assert.Equal(t, 5, closures[0].MatchedCount)
}
