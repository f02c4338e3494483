package services

import (
	"github.com/flowfin/go-conciliador/internal/common"
	"github.com/flowfin/go-conciliador/internal/models"
)

// buildSuggestions proposes candidate correspondences for the residual
// ONLY_ARGO rows of a finished session. Two tiers, in order:
//
//	"NSU"        same normalized id anywhere in the ONLY_NETUNNA pool
//	"Data+Valor" nearest amount within tolerance on the same calendar day
//
// Suggestions are advisory: nothing here mutates Results. Counterparts the
// matcher consumed are not in the pool by construction; counterparts bound
// by a prior SELECT_CORRESPONDENCE ledger entry, and records carrying a
// terminal decision, are skipped. Each counterpart backs at most one
// suggestion.
func buildSuggestions(
	session *models.ReconciliationSession,
	ledgerEntries map[string]models.LedgerEntry,
	claimedCounterparts map[string]string,
	excludeMarkedErrors bool,
) []models.Suggestion {
	pool := make([]*models.TransactionRecord, 0)
	for i := range session.Results {
		r := &session.Results[i]
		if r.Status != models.StatusOnlyNetunna || r.NetunnaRef == nil {
			continue
		}
		netunna := r.NetunnaRef
		if _, claimed := claimedCounterparts[netunna.SourceID]; claimed {
			continue
		}
		if entry, ok := ledgerEntries[naturalKeyOf(netunna)]; ok &&
			entry.Current.IsTerminalForMatching(excludeMarkedErrors) {
			continue
		}
		pool = append(pool, netunna)
	}

	taken := make(map[*models.TransactionRecord]bool, len(pool))
	suggestions := make([]models.Suggestion, 0)

	for i := range session.Results {
		r := &session.Results[i]
		if r.Status != models.StatusOnlyArgo || r.ArgoRef == nil {
			continue
		}
		argo := r.ArgoRef
		if entry, ok := ledgerEntries[naturalKeyOf(argo)]; ok &&
			entry.Current.IsTerminalForMatching(excludeMarkedErrors) {
			continue
		}

		if candidate := pickByID(argo, pool, taken); candidate != nil {
			taken[candidate] = true
			suggestions = append(suggestions, newSuggestion(session.Company, argo, candidate, models.SuggestionMethodNSU))
			continue
		}
		if candidate := pickByDateValue(argo, pool, taken); candidate != nil {
			taken[candidate] = true
			suggestions = append(suggestions, newSuggestion(session.Company, argo, candidate, models.SuggestionMethodDateValue))
		}
	}

	return suggestions
}

// pickByID returns the first free pool record sharing the normalized id,
// regardless of date. Settlements commonly land on a later day than the
// sale, so date is ignored in this tier.
func pickByID(argo *models.TransactionRecord, pool []*models.TransactionRecord, taken map[*models.TransactionRecord]bool) *models.TransactionRecord {
	for _, candidate := range pool {
		if taken[candidate] {
			continue
		}
		if candidate.SourceID == argo.SourceID {
			return candidate
		}
	}
	return nil
}

// pickByDateValue returns the same-day free pool record with the smallest
// amount difference, provided it is within tolerance. Ties keep the first
// seen, which is pool order and therefore deterministic.
func pickByDateValue(argo *models.TransactionRecord, pool []*models.TransactionRecord, taken map[*models.TransactionRecord]bool) *models.TransactionRecord {
	var best *models.TransactionRecord
	for _, candidate := range pool {
		if taken[candidate] {
			continue
		}
		if !candidate.OccurredAt.Equal(argo.OccurredAt) {
			continue
		}
		diff := argo.Amount.Sub(candidate.Amount).Abs()
		if diff.GreaterThan(common.AmountTolerance) {
			continue
		}
		if best == nil || diff.LessThan(argo.Amount.Sub(best.Amount).Abs()) {
			best = candidate
		}
	}
	return best
}

func newSuggestion(company models.CompanyPair, argo, netunna *models.TransactionRecord, method string) models.Suggestion {
	return models.Suggestion{
		CompanyID:     company.ArgoID,
		ArgoDate:      argo.OccurredAt,
		ArgoID:        argo.SourceID,
		ArgoAmount:    argo.Amount,
		PaymentMethod: argo.Metadata[models.MetadataPaymentMethod],
		NetunnaDate:   netunna.OccurredAt,
		NetunnaID:     netunna.SourceID,
		NetunnaAmount: netunna.Amount,
		CardBrand:     netunna.Metadata[models.MetadataCardBrand],
		Method:        method,
	}
}

// naturalKeyOf builds the ledger key for a normalized record.
func naturalKeyOf(r *models.TransactionRecord) string {
	return models.ValidationDecision{
		CompanyID: r.CompanyID,
		SourceID:  r.SourceID,
		Origin:    r.Origin,
		Date:      r.OccurredAt,
		Amount:    r.Amount,
	}.NaturalKey()
}
