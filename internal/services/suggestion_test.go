package services

import (
	"testing"

	"github.com/flowfin/go-conciliador/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildSuggestions_NSUTierIgnoresDate(t *testing.T) {
	// same id, settlement landed two days later
	session := runMatch(t,
		[]models.TransactionRecord{argoRecord("123", "2025-05-10", "150.00")},
		[]models.TransactionRecord{netunnaRecord("123", "2025-05-12", "151.00")},
	)
	require.Equal(t, 2, len(session.Results))

	suggestions := buildSuggestions(session, nil, nil, false)

	require.Len(t, suggestions, 1)
	assert.Equal(t, models.SuggestionMethodNSU, suggestions[0].Method)
	assert.Equal(t, "123", suggestions[0].NetunnaID)
	assert.False(t, suggestions[0].Validated)
}

func TestBuildSuggestions_DateValueTierPicksNearestAmount(t *testing.T) {
	session := runMatch(t,
		[]models.TransactionRecord{argoRecord("111", "2025-05-10", "100.00")},
		[]models.TransactionRecord{
			netunnaRecord("888", "2025-05-10", "100.01"),
			netunnaRecord("999", "2025-05-10", "100.00"),
		},
	)

	suggestions := buildSuggestions(session, nil, nil, false)

	require.Len(t, suggestions, 1)
	assert.Equal(t, models.SuggestionMethodDateValue, suggestions[0].Method)
	assert.Equal(t, "999", suggestions[0].NetunnaID)
}

func TestBuildSuggestions_NoDoubleClaim(t *testing.T) {
	// one counterpart, two pending sales: only one suggestion may bind it
	session := runMatch(t,
		[]models.TransactionRecord{
			argoRecord("111", "2025-05-10", "50.00"),
			argoRecord("222", "2025-05-10", "50.00"),
		},
		[]models.TransactionRecord{netunnaRecord("333", "2025-05-10", "50.00")},
	)
	require.Equal(t, 3, len(session.Results))

	suggestions := buildSuggestions(session, nil, nil, false)

	require.Len(t, suggestions, 1)
	assert.Equal(t, "333", suggestions[0].NetunnaID)
}

func TestBuildSuggestions_SkipsLedgerClaimedCounterpart(t *testing.T) {
	session := runMatch(t,
		[]models.TransactionRecord{argoRecord("333", "2025-05-10", "50.00")},
		[]models.TransactionRecord{netunnaRecord("333", "2025-05-12", "60.00")},
	)
	require.Equal(t, 2, len(session.Results))

	claimed := map[string]string{"333": "ACME|ARGO|777|2025-05-09|60.00"}
	suggestions := buildSuggestions(session, nil, claimed, false)

	assert.Empty(t, suggestions)
}

func TestBuildSuggestions_MarkErrorStaysEligible(t *testing.T) {
	// same id but amounts far apart: no auto-match, NSU-tier suggestion only
	session := runMatch(t,
		[]models.TransactionRecord{argoRecord("111", "2025-05-10", "50.00")},
		[]models.TransactionRecord{netunnaRecord("111", "2025-05-12", "60.00")},
	)
	require.Equal(t, 2, len(session.Results))

	argoRef := session.Results[statusIndex(session.Results, models.StatusOnlyArgo)].ArgoRef
	entries := map[string]models.LedgerEntry{
		naturalKeyOf(argoRef): {
			Key:     naturalKeyOf(argoRef),
			Current: models.ValidationDecision{Decision: models.DecisionMarkError},
		},
	}

	// annotate-only default keeps the record a candidate source
	suggestions := buildSuggestions(session, entries, nil, false)
	require.Len(t, suggestions, 1)
	assert.Equal(t, models.SuggestionMethodNSU, suggestions[0].Method)

	// the configurable policy removes it
	assert.Empty(t, buildSuggestions(session, entries, nil, true))
}

func statusIndex(results []models.MatchResult, status models.MatchStatus) int {
	for i, r := range results {
		if r.Status == status {
			return i
		}
	}
	return -1
}
