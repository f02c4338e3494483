package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidationDecision_NaturalKey(t *testing.T) {
	base := ValidationDecision{
		CompanyID: "ACME",
		SourceID:  "000123",
		Origin:    OriginArgo,
		Date:      time.Date(2025, 5, 10, 0, 0, 0, 0, time.UTC),
		Amount:    decimal.RequireFromString("150.00"),
	}

	assert.Equal(t, "ACME|ARGO|123|2025-05-10|150.00", base.NaturalKey())

	// pad width never changes identity
	unpadded := base
	unpadded.SourceID = "123"
	assert.Equal(t, base.NaturalKey(), unpadded.NaturalKey())

	// timestamps and operators are not part of the key
	decided := base
	decided.DecidedAt = time.Now()
	decided.DecidedBy = "operator-1"
	assert.Equal(t, base.NaturalKey(), decided.NaturalKey())
}

func TestParseDecisionType(t *testing.T) {
	d, err := ParseDecisionType(" select_correspondence ")
	require.NoError(t, err)
	assert.Equal(t, DecisionSelectCorrespondence, d)

	_, err = ParseDecisionType("APPROVE")
	assert.Error(t, err)
}

func TestSubmitDecisionRequest_ToDecision(t *testing.T) {
	req := SubmitDecisionRequest{
		CompanyID: "ACME",
		SourceID:  "123",
		Origin:    "NETUNNA",
		Date:      "2025-05-10",
		Amount:    "99.90",
		Decision:  "MARK_ERROR",
	}

	decision, err := req.ToDecision(time.Date(2025, 5, 11, 8, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, OriginNetunna, decision.Origin)
	assert.Equal(t, DecisionMarkError, decision.Decision)

	req.Decision = "SELECT_CORRESPONDENCE"
	_, err = req.ToDecision(time.Now())
	var detail ErrorDetail
	require.ErrorAs(t, err, &detail)
	assert.Equal(t, ErrKeyCounterpartRequired, detail.Code)

	// correspondences are recorded from the ARGO side only
	req.SelectedCounterpartID = "888"
	_, err = req.ToDecision(time.Now())
	require.ErrorAs(t, err, &detail)
	assert.Equal(t, ErrKeyCorrespondenceArgoSideOnly, detail.Code)

	req.Origin = "ARGO"
	_, err = req.ToDecision(time.Now())
	assert.NoError(t, err)
}

func TestDecisionType_IsTerminalForMatching(t *testing.T) {
	assert.True(t, ValidationDecision{Decision: DecisionSelectCorrespondence}.IsTerminalForMatching(false))
	assert.True(t, ValidationDecision{Decision: DecisionJustifyCorrect}.IsTerminalForMatching(false))
	assert.False(t, ValidationDecision{Decision: DecisionMarkError}.IsTerminalForMatching(false))
	assert.True(t, ValidationDecision{Decision: DecisionMarkError}.IsTerminalForMatching(true))
}
