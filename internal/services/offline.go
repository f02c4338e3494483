package services

import (
	"github.com/flowfin/go-conciliador/internal/models"
)

// RunOffline executes the full pipeline with no durable stores attached. The
// CLI uses it to reconcile feed folders without Postgres or a ledger; prior
// manual decisions therefore do not influence the result.
func RunOffline(req models.ReconcileRequest, excludeMarkedErrors bool) ([]models.CompanyReconResult, []models.SkippedCompany, error) {
	if len(req.Argo) == 0 && len(req.Netunna) == 0 {
		return nil, nil, models.GetErrMap(models.ErrKeyEmptyFeeds)
	}

	startDate, endDate, err := req.DateRange()
	if err != nil {
		return nil, nil, err
	}

	argoRecords, argoWarnings := NormalizeArgoFeed(req.Argo)
	netunnaRecords, netunnaWarnings := NormalizeNetunnaFeed(req.Netunna)
	argoRecords = filterDateRange(argoRecords, startDate, endDate)
	netunnaRecords = filterDateRange(netunnaRecords, startDate, endDate)

	argoByCompany, netunnaByCompany, skipped := partitionByCompany(req.Companies, argoRecords, netunnaRecords)

	runs := make([]models.CompanyReconResult, 0, len(req.Companies))
	for _, company := range req.Companies {
		session := models.NewReconciliationSession(company,
			argoByCompany[company.ArgoID], netunnaByCompany[company.NetunnaID])
		matchSession(session)
		session.Summary = buildStatusSummary(session.Results)
		session.Suggestions = buildSuggestions(session, nil, nil, excludeMarkedErrors)

		runs = append(runs, models.CompanyReconResult{
			Company:     company,
			PadWidth:    session.PadWidth,
			Results:     session.Results,
			Summary:     session.Summary,
			Suggestions: session.Suggestions,
			Warnings:    companyWarnings(company, argoWarnings, netunnaWarnings),
		})
	}

	return runs, skipped, nil
}
