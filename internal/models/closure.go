package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// DayClosure is one row of the per-company closure table: the reconciliation
// state of a single calendar day. The backing file is append-only; readers
// compact by keeping the last row per date.
type DayClosure struct {
	Date         time.Time       `json:"date"`
	Closed       bool            `json:"closed"`
	MatchedCount int             `json:"matchedCount"`
	PendingCount int             `json:"pendingCount"`
	MatchedValue decimal.Decimal `json:"matchedValue"`
	PendingValue decimal.Decimal `json:"pendingValue"`
}

var CSVHeaderDayClosure = []string{
	"date",
	"closed",
	"matched_count",
	"pending_count",
	"matched_value",
	"pending_value",
}

func (c DayClosure) ToCSVRow() []string {
	return []string{
		c.Date.Format("2006-01-02"),
		boolString(c.Closed),
		fmt.Sprint(c.MatchedCount),
		fmt.Sprint(c.PendingCount),
		c.MatchedValue.StringFixed(2),
		c.PendingValue.StringFixed(2),
	}
}

// PendingRecordRef identifies one still-unmatched record of the day on the
// caller's current comparison view. The close gate checks each ref against
// the ledger for a recorded decision.
type PendingRecordRef struct {
	SourceID string `json:"sourceId" validate:"required,noStartEndSpaces"`
	Origin   string `json:"origin" validate:"required,oneof=ARGO NETUNNA"`
	Amount   string `json:"amount" validate:"required"`
}

// CloseDayRequest asks to flag a (company, date) as closed. Force skips the
// all-pending-resolved gate; the closure row records the operator either way.
// Matched totals and pending refs come from the caller's latest run, since
// match results are recomputed per run and never persisted.
type CloseDayRequest struct {
	CompanyID    string             `json:"companyId" validate:"required,noStartEndSpaces"`
	Date         string             `json:"date" validate:"required,date"`
	Force        bool               `json:"force"`
	ClosedBy     string             `json:"closedBy,omitempty"`
	MatchedCount int                `json:"matchedCount" validate:"gte=0"`
	MatchedValue string             `json:"matchedValue,omitempty"`
	Pending      []PendingRecordRef `json:"pending" validate:"omitempty,dive"`
}
