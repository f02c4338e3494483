package services

import (
	"github.com/flowfin/go-conciliador/internal/common"
	"github.com/flowfin/go-conciliador/internal/models"
)

// matchSession runs the multi-pass comparison over the session feeds and
// fills Results. Passes are strictly ordered and each consumes records from
// the leftover pools of the previous one:
//
//  1. normalized id equal and amount within tolerance
//  2. mutual-unique (day, amount within tolerance) pairing among leftovers
//  3. residual records become ONLY_ARGO / ONLY_NETUNNA rows
//
// Iteration follows feed order throughout, so identical inputs always yield
// identical results after the canonical sort.
func matchSession(session *models.ReconciliationSession) {
	argoUsed := make([]bool, len(session.Argo))
	netUsed := make([]bool, len(session.Netunna))
	results := make([]models.MatchResult, 0, len(session.Argo)+len(session.Netunna))

	// pass 1: exact normalized id
	netByID := make(map[string][]int, len(session.Netunna))
	for j := range session.Netunna {
		id := session.Netunna[j].SourceID
		netByID[id] = append(netByID[id], j)
	}
	for i := range session.Argo {
		argo := &session.Argo[i]
		for _, j := range netByID[argo.SourceID] {
			if netUsed[j] {
				continue
			}
			netunna := &session.Netunna[j]
			if !common.AmountsWithinTolerance(argo.Amount, netunna.Amount) {
				continue
			}

			method := models.MethodIDAndAmount
			if argo.Amount.Equal(netunna.Amount) {
				method = models.MethodExactID
			}
			results = append(results, models.MatchResult{
				Status:      models.StatusMatched,
				MatchMethod: method,
				ArgoRef:     argo,
				NetunnaRef:  netunna,
			})
			argoUsed[i] = true
			netUsed[j] = true
			break
		}
	}

	// pass 2: date + amount, only when the pairing is unambiguous both ways.
	// A leftover with zero or several candidates on either side matches
	// nothing here; ambiguity is for the operator, never guessed.
	// Candidates come from (day, cent) buckets; the tolerance never spans
	// more than the two neighboring buckets.
	type dayCents struct {
		day   string
		cents int64
	}
	netBuckets := make(map[dayCents][]int)
	for j := range session.Netunna {
		if netUsed[j] {
			continue
		}
		key := dayCents{
			day:   session.Netunna[j].OccurredAt.Format("2006-01-02"),
			cents: common.AmountCents(session.Netunna[j].Amount),
		}
		netBuckets[key] = append(netBuckets[key], j)
	}
	argoCands := make([][]int, len(session.Argo))
	netCands := make([][]int, len(session.Netunna))
	for i := range session.Argo {
		if argoUsed[i] {
			continue
		}
		day := session.Argo[i].OccurredAt.Format("2006-01-02")
		cents := common.AmountCents(session.Argo[i].Amount)
		for _, delta := range []int64{-1, 0, 1} {
			for _, j := range netBuckets[dayCents{day: day, cents: cents + delta}] {
				if !common.AmountsWithinTolerance(session.Argo[i].Amount, session.Netunna[j].Amount) {
					continue
				}
				argoCands[i] = append(argoCands[i], j)
				netCands[j] = append(netCands[j], i)
			}
		}
	}
	for i := range session.Argo {
		if argoUsed[i] || len(argoCands[i]) != 1 {
			continue
		}
		j := argoCands[i][0]
		if netUsed[j] || len(netCands[j]) != 1 || netCands[j][0] != i {
			continue
		}
		results = append(results, models.MatchResult{
			Status:      models.StatusMatched,
			MatchMethod: models.MethodDateAndAmount,
			ArgoRef:     &session.Argo[i],
			NetunnaRef:  &session.Netunna[j],
		})
		argoUsed[i] = true
		netUsed[j] = true
	}

	// pass 3: residuals
	for i := range session.Argo {
		if argoUsed[i] {
			continue
		}
		results = append(results, models.MatchResult{
			Status:  models.StatusOnlyArgo,
			ArgoRef: &session.Argo[i],
		})
	}
	for j := range session.Netunna {
		if netUsed[j] {
			continue
		}
		results = append(results, models.MatchResult{
			Status:     models.StatusOnlyNetunna,
			NetunnaRef: &session.Netunna[j],
		})
	}

	models.SortMatchResults(results)
	session.Results = results
}
