package models

import (
	"fmt"
	"time"
)

const kindReconciliation = "reconciliation"

// ReconcileRequest carries one reconciliation batch: the company pairs to
// process and both raw feeds. Records belonging to a company without a pair
// in Companies are skipped, never fatal.
type ReconcileRequest struct {
	Companies []CompanyPair       `json:"companies" validate:"required,min=1,dive"`
	StartDate string              `json:"startDate" validate:"omitempty,date"`
	EndDate   string              `json:"endDate" validate:"omitempty,date"`
	Argo      []ArgoSale          `json:"argo"`
	Netunna   []NetunnaSettlement `json:"netunna"`
}

// DateRange parses the optional date filter. Both ends must be present
// together and start must not be after end.
func (req ReconcileRequest) DateRange() (start, end *time.Time, err error) {
	if (req.StartDate == "") != (req.EndDate == "") {
		return nil, nil, GetErrMap(ErrKeyStartDateAndEndDateMustBeTogether)
	}
	if req.StartDate == "" {
		return nil, nil, nil
	}

	s, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		return nil, nil, GetErrMap(ErrKeyInvalidFormatDate, fmt.Sprintf("date %s format must be YYYY-MM-DD", req.StartDate))
	}
	e, err := time.Parse("2006-01-02", req.EndDate)
	if err != nil {
		return nil, nil, GetErrMap(ErrKeyInvalidFormatDate, fmt.Sprintf("date %s format must be YYYY-MM-DD", req.EndDate))
	}
	if s.After(e) {
		return nil, nil, GetErrMap(ErrKeyStartDateIsAfterEndDate)
	}
	return &s, &e, nil
}

// CompanyReconResult is one company's completed comparison.
type CompanyReconResult struct {
	RunID       string          `json:"runId"`
	Company     CompanyPair     `json:"company"`
	PadWidth    int             `json:"padWidth"`
	Results     []MatchResult   `json:"results"`
	Summary     []StatusSummary `json:"summary"`
	Suggestions []Suggestion    `json:"suggestions"`
	Warnings    []FeedWarning   `json:"warnings,omitempty"`
}

type ReconcileResponse struct {
	Kind    string               `json:"kind" example:"reconciliation"`
	Runs    []CompanyReconResult `json:"runs"`
	Skipped []SkippedCompany     `json:"skipped,omitempty"`
}

func NewReconcileResponse(runs []CompanyReconResult, skipped []SkippedCompany) *ReconcileResponse {
	return &ReconcileResponse{
		Kind:    kindReconciliation,
		Runs:    runs,
		Skipped: skipped,
	}
}
