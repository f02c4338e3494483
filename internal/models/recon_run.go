package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

const (
	kindReconRun = "reconRun"

	ReconRunStatusCompleted = "COMPLETED"
	ReconRunStatusPartial   = "PARTIAL"
	ReconRunStatusFailed    = "FAILED"
)

// ReconRun is the persisted audit row of one reconciliation run for one
// company pair. Match results themselves are recomputed fresh on every run
// and never persisted; the run row keeps the aggregates for history views.
type ReconRun struct {
	ID               string
	CompanyID        string
	NetunnaCompanyID string
	StartDate        *time.Time
	EndDate          *time.Time
	MatchedCount     int
	OnlyArgoCount    int
	OnlyNetunnaCount int
	MatchedValue     decimal.Decimal
	Status           string
	CreatedAt        *time.Time
	UpdatedAt        *time.Time
}

type CreateReconRunIn struct {
	ID               string
	CompanyID        string
	NetunnaCompanyID string
	StartDate        time.Time
	EndDate          time.Time
	MatchedCount     int
	OnlyArgoCount    int
	OnlyNetunnaCount int
	MatchedValue     decimal.Decimal
	Status           string
}

type ReconRunFilterOptions struct {
	CompanyID string
	StartDate *time.Time
	EndDate   *time.Time

	Limit  int
	Offset int
}

type ReconRunResponse struct {
	Kind             string `json:"kind" example:"reconRun"`
	ID               string `json:"id"`
	CompanyID        string `json:"companyId"`
	NetunnaCompanyID string `json:"netunnaCompanyId"`
	StartDate        string `json:"startDate"`
	EndDate          string `json:"endDate"`
	MatchedCount     int    `json:"matchedCount"`
	OnlyArgoCount    int    `json:"onlyArgoCount"`
	OnlyNetunnaCount int    `json:"onlyNetunnaCount"`
	MatchedValue     string `json:"matchedValue"`
	Status           string `json:"status"`
	CreatedAt        string `json:"createdAt"`
}

func (r ReconRun) ToModelResponse() ReconRunResponse {
	resp := ReconRunResponse{
		Kind:             kindReconRun,
		ID:               r.ID,
		CompanyID:        r.CompanyID,
		NetunnaCompanyID: r.NetunnaCompanyID,
		MatchedCount:     r.MatchedCount,
		OnlyArgoCount:    r.OnlyArgoCount,
		OnlyNetunnaCount: r.OnlyNetunnaCount,
		MatchedValue:     r.MatchedValue.StringFixed(2),
		Status:           r.Status,
	}
	if r.StartDate != nil {
		resp.StartDate = r.StartDate.Format("2006-01-02")
	}
	if r.EndDate != nil {
		resp.EndDate = r.EndDate.Format("2006-01-02")
	}
	if r.CreatedAt != nil {
		resp.CreatedAt = r.CreatedAt.Format("2006-01-02 15:04:05")
	}
	return resp
}

// ListReconRunsRequest is the query shape of the run-history endpoint.
type ListReconRunsRequest struct {
	CompanyID string `query:"companyId"`
	StartDate string `query:"startDate" example:"2025-05-01"`
	EndDate   string `query:"endDate" example:"2025-05-31"`
	Limit     int    `query:"limit" example:"10"`
	Offset    int    `query:"offset" example:"0"`
}

func (req ListReconRunsRequest) ToFilterOpts() (*ReconRunFilterOptions, error) {
	if req.Limit < 0 {
		return nil, GetErrMap(ErrKeyLimitMustBeGreaterThanZero)
	}

	opts := &ReconRunFilterOptions{
		CompanyID: req.CompanyID,
		Limit:     req.Limit,
		Offset:    req.Offset,
	}
	if opts.Limit == 0 {
		opts.Limit = 10
	}

	if req.StartDate != "" {
		start, err := time.Parse("2006-01-02", req.StartDate)
		if err != nil {
			return nil, GetErrMap(ErrKeyInvalidFormatDate, fmt.Sprintf("date %s format must be YYYY-MM-DD", req.StartDate))
		}
		opts.StartDate = &start
	}
	if req.EndDate != "" {
		end, err := time.Parse("2006-01-02", req.EndDate)
		if err != nil {
			return nil, GetErrMap(ErrKeyInvalidFormatDate, fmt.Sprintf("date %s format must be YYYY-MM-DD", req.EndDate))
		}
		opts.EndDate = &end
	}
	if opts.StartDate != nil && opts.EndDate != nil && opts.StartDate.After(*opts.EndDate) {
		return nil, GetErrMap(ErrKeyStartDateIsAfterEndDate)
	}

	return opts, nil
}
