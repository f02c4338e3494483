package services

import (
	"context"
	"testing"

	"github.com/flowfin/go-conciliador/internal/common"
	"github.com/flowfin/go-conciliador/internal/config"
	"github.com/flowfin/go-conciliador/internal/models"
	"github.com/flowfin/go-conciliador/internal/repositories"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeReconRunRepo struct {
	created []*models.CreateReconRunIn
}

var _ repositories.ReconRunRepository = (*fakeReconRunRepo)(nil)

func (f *fakeReconRunRepo) Create(ctx context.Context, in *models.CreateReconRunIn) (*models.ReconRun, error) {
	f.created = append(f.created, in)
	return &models.ReconRun{ID: in.ID, CompanyID: in.CompanyID, Status: in.Status}, nil
}

func (f *fakeReconRunRepo) GetList(ctx context.Context, opts models.ReconRunFilterOptions) ([]models.ReconRun, error) {
	return nil, nil
}

func (f *fakeReconRunRepo) CountAll(ctx context.Context, opts models.ReconRunFilterOptions) (int, error) {
	return 0, nil
}

func (f *fakeReconRunRepo) GetByID(ctx context.Context, id string) (*models.ReconRun, error) {
	return nil, common.ErrDataNotFound
}

func (f *fakeReconRunRepo) DeleteByID(ctx context.Context, id string) error {
	return nil
}

type fakeSQLRepo struct {
	rrr *fakeReconRunRepo
}

var _ repositories.SQLRepository = (*fakeSQLRepo)(nil)

func (f *fakeSQLRepo) Atomic(ctx context.Context, steps func(ctx context.Context, r repositories.SQLRepository) error) error {
	return steps(ctx, f)
}

func (f *fakeSQLRepo) GetReconRunRepository() repositories.ReconRunRepository {
	return f.rrr
}

func newReconTestServices(t *testing.T) (*Services, *fakeReconRunRepo) {
	t.Helper()

	ledgerRepo, err := repositories.NewLedgerRepository(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = ledgerRepo.Close() })

	closureRepo, err := repositories.NewClosureRepository(t.TempDir())
	require.NoError(t, err)

	runRepo := &fakeReconRunRepo{}
	srv := New(config.Config{}, &fakeSQLRepo{rrr: runRepo}, ledgerRepo, closureRepo)
	return srv, runRepo
}

func reconcileRequest() models.ReconcileRequest {
	return models.ReconcileRequest{
		Companies: []models.CompanyPair{{ArgoID: "ACME", NetunnaID: "N-ACME"}},
		Argo: []models.ArgoSale{
			{NSU: "000123", SaleDate: "2025-05-10", GrossAmount: decimal.RequireFromString("150.00"), CompanyID: "ACME"},
			{NSU: "777", SaleDate: "2025-05-10", GrossAmount: decimal.RequireFromString("80.00"), CompanyID: "ACME"},
		},
		Netunna: []models.NetunnaSettlement{
			{Venda: models.NetunnaVenda{NSU: "123", VendaData: "2025-05-10", ValorBruto: decimal.RequireFromString("150.00"), EmpresaCodigo: "N-ACME"}},
		},
	}
}

func TestReconcile_EndToEnd(t *testing.T) {
	srv, runRepo := newReconTestServices(t)

	resp, err := srv.Recon.Reconcile(context.Background(), reconcileRequest())
	require.NoError(t, err)

	require.Len(t, resp.Runs, 1)
	run := resp.Runs[0]
	assert.NotEmpty(t, run.RunID)
	assert.Len(t, run.Results, 2)

	var matched, onlyArgo int
	for _, r := range run.Results {
		switch r.Status {
		case models.StatusMatched:
			matched++
			assert.Equal(t, models.MethodExactID, r.MatchMethod)
		case models.StatusOnlyArgo:
			onlyArgo++
		}
	}
	assert.Equal(t, 1, matched)
	assert.Equal(t, 1, onlyArgo)

	require.Len(t, runRepo.created, 1)
	assert.Equal(t, "ACME", runRepo.created[0].CompanyID)
	assert.Equal(t, models.ReconRunStatusPartial, runRepo.created[0].Status)
	assert.Equal(t, 1, runRepo.created[0].MatchedCount)
}

func TestReconcile_UnmappedCompanySkipped(t *testing.T) {
	srv, _ := newReconTestServices(t)

	req := reconcileRequest()
	req.Argo = append(req.Argo, models.ArgoSale{
		NSU: "5", SaleDate: "2025-05-10", GrossAmount: decimal.RequireFromString("9.99"), CompanyID: "GHOST",
	})

	resp, err := srv.Recon.Reconcile(context.Background(), req)
	require.NoError(t, err)

	require.Len(t, resp.Runs, 1)
	require.Len(t, resp.Skipped, 1)
	assert.Equal(t, "GHOST", resp.Skipped[0].CompanyID)
	assert.Equal(t, models.OriginArgo, resp.Skipped[0].Origin)
}

func TestReconcile_EmptyFeedsRejected(t *testing.T) {
	srv, _ := newReconTestServices(t)

	_, err := srv.Recon.Reconcile(context.Background(), models.ReconcileRequest{
		Companies: []models.CompanyPair{{ArgoID: "ACME", NetunnaID: "N-ACME"}},
	})

	var detail models.ErrorDetail
	require.ErrorAs(t, err, &detail)
	assert.Equal(t, models.ErrKeyEmptyFeeds, detail.Code)
}

func TestReconcile_ClaimSurvivesPadWidthChange(t *testing.T) {
	srv, _ := newReconTestServices(t)
	ctx := context.Background()

	// counterpart claimed under a batch that padded to width 6
	_, _, err := srv.Validation.SubmitDecision(ctx, models.SubmitDecisionRequest{
		CompanyID:             "ACME",
		SourceID:              "777",
		Origin:                "ARGO",
		Date:                  "2025-05-09",
		Amount:                "200.00",
		Decision:              "SELECT_CORRESPONDENCE",
		SelectedCounterpartID: "000123",
	})
	require.NoError(t, err)

	// later batch pads to width 3: the same settlement is now "123"
	req := models.ReconcileRequest{
		Companies: []models.CompanyPair{{ArgoID: "ACME", NetunnaID: "N-ACME"}},
		Argo: []models.ArgoSale{
			{NSU: "123", SaleDate: "2025-05-10", GrossAmount: decimal.RequireFromString("150.00"), CompanyID: "ACME"},
		},
		Netunna: []models.NetunnaSettlement{
			{Venda: models.NetunnaVenda{NSU: "123", VendaData: "2025-05-10", ValorBruto: decimal.RequireFromString("200.00"), EmpresaCodigo: "N-ACME"}},
		},
	}

	resp, err := srv.Recon.Reconcile(ctx, req)
	require.NoError(t, err)
	require.Len(t, resp.Runs, 1)
	assert.Empty(t, resp.Runs[0].Suggestions)
}

func TestReconcile_AppliesPriorManualDecision(t *testing.T) {
	srv, _ := newReconTestServices(t)
	ctx := context.Background()

	// bind the residual sale to its settlement by hand, then re-run
	_, _, err := srv.Validation.SubmitDecision(ctx, models.SubmitDecisionRequest{
		CompanyID:             "ACME",
		SourceID:              "777",
		Origin:                "ARGO",
		Date:                  "2025-05-10",
		Amount:                "80.00",
		Decision:              "SELECT_CORRESPONDENCE",
		SelectedCounterpartID: "999",
	})
	require.NoError(t, err)

	req := reconcileRequest()
	req.Netunna = append(req.Netunna, models.NetunnaSettlement{
		Venda: models.NetunnaVenda{NSU: "999", VendaData: "2025-05-11", ValorBruto: decimal.RequireFromString("80.00"), EmpresaCodigo: "N-ACME"},
	})

	resp, err := srv.Recon.Reconcile(ctx, req)
	require.NoError(t, err)
	require.Len(t, resp.Runs, 1)

	var manual int
	for _, r := range resp.Runs[0].Results {
		if r.MatchMethod == models.MethodManual {
			manual++
			assert.Equal(t, models.StatusMatched, r.Status)
			assert.Equal(t, "000999", r.NetunnaRef.SourceID)
		}
	}
	assert.Equal(t, 1, manual)
}
