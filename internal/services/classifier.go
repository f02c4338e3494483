package services

import (
	"github.com/flowfin/go-conciliador/internal/models"

	"github.com/shopspring/decimal"
)

// summaryStatuses is the fixed display order of the summary table. The
// advisory CANDIDATE_MATCH status never appears here; suggestions live in
// their own section of the report.
var summaryStatuses = []models.MatchStatus{
	models.StatusMatched,
	models.StatusOnlyArgo,
	models.StatusOnlyNetunna,
}

// buildStatusSummary aggregates count and gross value per status. All
// statuses are present even at zero count so the report shape is stable.
func buildStatusSummary(results []models.MatchResult) []models.StatusSummary {
	counts := make(map[models.MatchStatus]int, len(summaryStatuses))
	values := make(map[models.MatchStatus]decimal.Decimal, len(summaryStatuses))
	for _, s := range summaryStatuses {
		values[s] = decimal.Zero
	}

	for _, r := range results {
		counts[r.Status]++
		values[r.Status] = values[r.Status].Add(r.GrossAmount())
	}

	summary := make([]models.StatusSummary, 0, len(summaryStatuses))
	for _, s := range summaryStatuses {
		summary = append(summary, models.StatusSummary{
			Status:     s,
			Count:      counts[s],
			GrossValue: values[s],
		})
	}
	return summary
}
