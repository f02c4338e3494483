package services

import (
	"context"
	"fmt"
	"time"

	"github.com/flowfin/go-conciliador/internal/common"
	"github.com/flowfin/go-conciliador/internal/models"
	"github.com/flowfin/go-conciliador/internal/monitoring"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"go.uber.org/zap"
)

type ReconService interface {
	// Reconcile runs the full pipeline for every company pair of the
	// request. A company that cannot run is skipped and reported, never
	// fatal to the rest of the batch.
	Reconcile(ctx context.Context, req models.ReconcileRequest) (resp *models.ReconcileResponse, err error)

	GetListReconRuns(ctx context.Context, req models.ListReconRunsRequest) (runs []models.ReconRunResponse, total int, err error)
}

type reconService service

var _ ReconService = (*reconService)(nil)

func (s *reconService) Reconcile(ctx context.Context, req models.ReconcileRequest) (resp *models.ReconcileResponse, err error) {
	monitor := monitoring.New(ctx)
	defer monitor.Finish(monitoring.WithFinishCheckError(err))

	if len(req.Argo) == 0 && len(req.Netunna) == 0 {
		err = models.GetErrMap(models.ErrKeyEmptyFeeds)
		return
	}
	if maxRecords := s.srv.conf.ReconEngine.MaxFeedRecords; maxRecords > 0 &&
		(len(req.Argo) > maxRecords || len(req.Netunna) > maxRecords) {
		err = fmt.Errorf("feed exceeds the configured limit of %d records", maxRecords)
		return
	}

	startDate, endDate, err := req.DateRange()
	if err != nil {
		return
	}

	argoRecords, argoWarnings := NormalizeArgoFeed(req.Argo)
	netunnaRecords, netunnaWarnings := NormalizeNetunnaFeed(req.Netunna)
	argoRecords = filterDateRange(argoRecords, startDate, endDate)
	netunnaRecords = filterDateRange(netunnaRecords, startDate, endDate)

	argoByCompany, netunnaByCompany, skipped := partitionByCompany(req.Companies, argoRecords, netunnaRecords)

	var skipErrs *multierror.Error
	for _, skip := range skipped {
		skipErrs = multierror.Append(skipErrs, fmt.Errorf("company %s (%s): %s", skip.CompanyID, skip.Origin, skip.Reason))
	}
	if skipErrs.ErrorOrNil() != nil {
		zap.L().Warn("[RECON-RUN] companies skipped", zap.Error(skipErrs))
	}

	runs := make([]models.CompanyReconResult, 0, len(req.Companies))
	for _, company := range req.Companies {
		run, runErr := s.runCompany(ctx, company, startDate, endDate,
			argoByCompany[company.ArgoID], netunnaByCompany[company.NetunnaID])
		if runErr != nil {
			skipped = append(skipped, models.SkippedCompany{
				CompanyID: company.ArgoID,
				Origin:    models.OriginArgo,
				Reason:    runErr.Error(),
			})
			continue
		}
		run.Warnings = companyWarnings(company, argoWarnings, netunnaWarnings)
		runs = append(runs, *run)
	}

	resp = models.NewReconcileResponse(runs, skipped)
	return
}

// runCompany executes normalize-match-classify-suggest for one pair and
// persists the audit row.
func (s *reconService) runCompany(ctx context.Context, company models.CompanyPair, startDate, endDate *time.Time, argo, netunna []models.TransactionRecord) (*models.CompanyReconResult, error) {
	session := models.NewReconciliationSession(company, argo, netunna)
	matchSession(session)

	entries, err := s.srv.ledgerRepo.ListByCompany(ctx, company.ArgoID)
	if err != nil {
		return nil, err
	}
	entriesByKey := make(map[string]models.LedgerEntry, len(entries))
	for _, entry := range entries {
		entriesByKey[entry.Key] = entry
	}
	claimed, err := s.srv.ledgerRepo.ClaimedCounterparts(ctx, company.ArgoID)
	if err != nil {
		return nil, err
	}
	normalizedClaimed := make(map[string]string, len(claimed))
	for id, owner := range claimed {
		normalizedClaimed[models.CanonicalSourceID(id, session.PadWidth)] = owner
	}

	applyManualDecisions(session, entriesByKey, normalizedClaimed)

	session.Summary = buildStatusSummary(session.Results)
	session.Suggestions = buildSuggestions(session, entriesByKey, normalizedClaimed, s.srv.conf.ReconEngine.ExcludeMarkedErrors)

	run := &models.CompanyReconResult{
		Company:     company,
		PadWidth:    session.PadWidth,
		Results:     session.Results,
		Summary:     session.Summary,
		Suggestions: session.Suggestions,
	}

	runID, err := s.persistRun(ctx, company, startDate, endDate, session)
	if err != nil {
		// the comparison itself succeeded; losing the audit row is logged,
		// not fatal to the response
		zap.L().Error("[RECON-RUN] failed to persist run history",
			zap.String("companyId", company.ArgoID), zap.Error(err))
	}
	run.RunID = runID

	return run, nil
}

func (s *reconService) persistRun(ctx context.Context, company models.CompanyPair, startDate, endDate *time.Time, session *models.ReconciliationSession) (string, error) {
	in := &models.CreateReconRunIn{
		ID:               uuid.NewString(),
		CompanyID:        company.ArgoID,
		NetunnaCompanyID: company.NetunnaID,
		Status:           models.ReconRunStatusCompleted,
	}
	if startDate != nil {
		in.StartDate = *startDate
	} else {
		in.StartDate = sessionBound(session, true)
	}
	if endDate != nil {
		in.EndDate = *endDate
	} else {
		in.EndDate = sessionBound(session, false)
	}

	for _, row := range session.Summary {
		switch row.Status {
		case models.StatusMatched:
			in.MatchedCount = row.Count
			in.MatchedValue = row.GrossValue
		case models.StatusOnlyArgo:
			in.OnlyArgoCount = row.Count
		case models.StatusOnlyNetunna:
			in.OnlyNetunnaCount = row.Count
		}
	}
	if in.OnlyArgoCount > 0 || in.OnlyNetunnaCount > 0 {
		in.Status = models.ReconRunStatusPartial
	}

	created, err := s.srv.sqlRepo.GetReconRunRepository().Create(ctx, in)
	if err != nil {
		return "", err
	}
	return created.ID, nil
}

func (s *reconService) GetListReconRuns(ctx context.Context, req models.ListReconRunsRequest) (runs []models.ReconRunResponse, total int, err error) {
	monitor := monitoring.New(ctx)
	defer monitor.Finish(monitoring.WithFinishCheckError(err))

	opts, err := req.ToFilterOpts()
	if err != nil {
		return
	}

	result, err := s.srv.sqlRepo.GetReconRunRepository().GetList(ctx, *opts)
	if err != nil {
		err = common.ErrInternalServerError
		return
	}
	total, err = s.srv.sqlRepo.GetReconRunRepository().CountAll(ctx, *opts)
	if err != nil {
		err = common.ErrInternalServerError
		return
	}

	runs = make([]models.ReconRunResponse, 0, len(result))
	for _, run := range result {
		runs = append(runs, run.ToModelResponse())
	}
	return
}

// partitionByCompany splits normalized records per company pair. Records of
// an unmapped company are reported once per (company, origin).
func partitionByCompany(companies []models.CompanyPair, argo, netunna []models.TransactionRecord) (map[string][]models.TransactionRecord, map[string][]models.TransactionRecord, []models.SkippedCompany) {
	argoIDs := make(map[string]bool, len(companies))
	netunnaIDs := make(map[string]bool, len(companies))
	for _, c := range companies {
		argoIDs[c.ArgoID] = true
		netunnaIDs[c.NetunnaID] = true
	}

	argoByCompany := make(map[string][]models.TransactionRecord)
	netunnaByCompany := make(map[string][]models.TransactionRecord)
	skipped := make([]models.SkippedCompany, 0)
	seenSkip := make(map[string]bool)

	for _, r := range argo {
		if !argoIDs[r.CompanyID] {
			key := r.CompanyID + "|" + models.OriginArgo.String()
			if !seenSkip[key] {
				seenSkip[key] = true
				skipped = append(skipped, models.SkippedCompany{
					CompanyID: r.CompanyID,
					Origin:    models.OriginArgo,
					Reason:    "no company mapping",
				})
			}
			continue
		}
		argoByCompany[r.CompanyID] = append(argoByCompany[r.CompanyID], r)
	}
	for _, r := range netunna {
		if !netunnaIDs[r.CompanyID] {
			key := r.CompanyID + "|" + models.OriginNetunna.String()
			if !seenSkip[key] {
				seenSkip[key] = true
				skipped = append(skipped, models.SkippedCompany{
					CompanyID: r.CompanyID,
					Origin:    models.OriginNetunna,
					Reason:    "no company mapping",
				})
			}
			continue
		}
		netunnaByCompany[r.CompanyID] = append(netunnaByCompany[r.CompanyID], r)
	}

	return argoByCompany, netunnaByCompany, skipped
}

// applyManualDecisions promotes pending rows to MATCHED where a prior
// SELECT_CORRESPONDENCE decision binds them to a counterpart still present
// in the residual pool. The claim is re-verified within tolerance before
// merging.
func applyManualDecisions(session *models.ReconciliationSession, entries map[string]models.LedgerEntry, claimed map[string]string) {
	if len(claimed) == 0 {
		return
	}

	netunnaRows := make(map[string]int, len(session.Results))
	for idx, r := range session.Results {
		if r.Status == models.StatusOnlyNetunna && r.NetunnaRef != nil {
			netunnaRows[r.NetunnaRef.SourceID] = idx
		}
	}

	merged := make(map[int]bool)
	for idx := range session.Results {
		row := &session.Results[idx]
		if row.Status != models.StatusOnlyArgo || row.ArgoRef == nil {
			continue
		}
		entry, ok := entries[naturalKeyOf(row.ArgoRef)]
		if !ok || entry.Current.Decision != models.DecisionSelectCorrespondence {
			continue
		}

		counterpartID := models.CanonicalSourceID(entry.Current.SelectedCounterpartID, session.PadWidth)
		netIdx, ok := netunnaRows[counterpartID]
		if !ok || merged[netIdx] {
			continue
		}
		netunna := session.Results[netIdx].NetunnaRef
		if !common.AmountsWithinTolerance(row.ArgoRef.Amount, netunna.Amount) {
			continue
		}

		row.Status = models.StatusMatched
		row.MatchMethod = models.MethodManual
		row.NetunnaRef = netunna
		merged[netIdx] = true
	}

	if len(merged) == 0 {
		return
	}
	results := make([]models.MatchResult, 0, len(session.Results)-len(merged))
	for idx, r := range session.Results {
		if merged[idx] {
			continue
		}
		results = append(results, r)
	}
	models.SortMatchResults(results)
	session.Results = results
}

// companyWarnings selects the feed warnings attributable to one company
// pair. Warnings without a company id on the raw record stay unattributed
// and appear on no run; they are still logged by the normalizer.
func companyWarnings(company models.CompanyPair, argoWarnings, netunnaWarnings []models.FeedWarning) []models.FeedWarning {
	out := make([]models.FeedWarning, 0)
	for _, w := range argoWarnings {
		if w.CompanyID == company.ArgoID {
			out = append(out, w)
		}
	}
	for _, w := range netunnaWarnings {
		if w.CompanyID == company.NetunnaID {
			out = append(out, w)
		}
	}
	return out
}

func sessionBound(session *models.ReconciliationSession, earliest bool) time.Time {
	var bound time.Time
	for _, pool := range [][]models.TransactionRecord{session.Argo, session.Netunna} {
		for _, r := range pool {
			if bound.IsZero() ||
				(earliest && r.OccurredAt.Before(bound)) ||
				(!earliest && r.OccurredAt.After(bound)) {
				bound = r.OccurredAt
			}
		}
	}
	if bound.IsZero() {
		bound = common.TruncateToDay(common.Now())
	}
	return bound
}
