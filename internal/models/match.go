package models

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

type MatchStatus int

const (
	StatusMatched MatchStatus = iota
	StatusOnlyArgo
	StatusOnlyNetunna

	// StatusCandidateMatch is advisory only. It is produced by the
	// suggestion generator, never by the matcher itself.
	StatusCandidateMatch
)

func (s MatchStatus) String() string {
	switch s {
	case StatusMatched:
		return "MATCHED"
	case StatusOnlyArgo:
		return "ONLY_ARGO"
	case StatusOnlyNetunna:
		return "ONLY_NETUNNA"
	case StatusCandidateMatch:
		return "CANDIDATE_MATCH"
	default:
		return "UNKNOWN"
	}
}

func (s MatchStatus) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

type MatchMethod int

const (
	MethodNone MatchMethod = iota
	MethodExactID
	MethodIDAndAmount
	MethodDateAndAmount
	MethodManual
)

func (m MatchMethod) String() string {
	switch m {
	case MethodExactID:
		return "EXACT_ID"
	case MethodIDAndAmount:
		return "ID_AND_AMOUNT"
	case MethodDateAndAmount:
		return "DATE_AND_AMOUNT"
	case MethodManual:
		return "MANUAL"
	default:
		return "NONE"
	}
}

func (m MatchMethod) MarshalJSON() ([]byte, error) {
	return []byte(`"` + m.String() + `"`), nil
}

// MatchResult is one row of the unified comparison table. A matched pair
// collapses two input records into a single row; unmatched records keep
// exactly one side populated.
type MatchResult struct {
	Status      MatchStatus        `json:"status"`
	MatchMethod MatchMethod        `json:"matchMethod"`
	ArgoRef     *TransactionRecord `json:"argoRef,omitempty"`
	NetunnaRef  *TransactionRecord `json:"netunnaRef,omitempty"`
}

// Date returns the reference date of the row. The ARGO side is canonical
// when both sides are present.
func (r MatchResult) Date() time.Time {
	if r.ArgoRef != nil {
		return r.ArgoRef.OccurredAt
	}
	if r.NetunnaRef != nil {
		return r.NetunnaRef.OccurredAt
	}
	return time.Time{}
}

// GrossAmount returns the canonical amount of the row: the ARGO side when
// populated, otherwise the Netunna side. Documented policy, not averaging.
func (r MatchResult) GrossAmount() decimal.Decimal {
	if r.ArgoRef != nil {
		return r.ArgoRef.Amount
	}
	if r.NetunnaRef != nil {
		return r.NetunnaRef.Amount
	}
	return decimal.Zero
}

func (r MatchResult) sortKey() string {
	id := ""
	if r.ArgoRef != nil {
		id = r.ArgoRef.SourceID
	} else if r.NetunnaRef != nil {
		id = r.NetunnaRef.SourceID
	}
	return r.Date().Format("2006-01-02") + "|" + r.Status.String() + "|" + id
}

// SortMatchResults orders rows canonically (date, status, source id) so two
// runs over identical inputs serialize byte-identically.
func SortMatchResults(results []MatchResult) {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].sortKey() < results[j].sortKey()
	})
}

var CSVHeaderMatchResult = []string{
	"date",
	"status",
	"match_method",
	"company_id",
	"argo_id",
	"argo_amount",
	"netunna_id",
	"netunna_amount",
}

func (r MatchResult) ToCSVRow() []string {
	companyID, argoID, argoAmount, netunnaID, netunnaAmount := "", "", "", "", ""
	if r.ArgoRef != nil {
		companyID = r.ArgoRef.CompanyID
		argoID = r.ArgoRef.SourceID
		argoAmount = r.ArgoRef.Amount.StringFixed(2)
	}
	if r.NetunnaRef != nil {
		if companyID == "" {
			companyID = r.NetunnaRef.CompanyID
		}
		netunnaID = r.NetunnaRef.SourceID
		netunnaAmount = r.NetunnaRef.Amount.StringFixed(2)
	}
	return []string{
		r.Date().Format("2006-01-02"),
		r.Status.String(),
		r.MatchMethod.String(),
		companyID,
		argoID,
		argoAmount,
		netunnaID,
		netunnaAmount,
	}
}

// StatusSummary aggregates count and gross value per status for display and
// for gating the day-close workflow.
type StatusSummary struct {
	Status     MatchStatus     `json:"status"`
	Count      int             `json:"count"`
	GrossValue decimal.Decimal `json:"grossValue"`
}

// ReconciliationSession is the explicit value object for one (company,
// date-range) run. All in-progress state lives here; the validation ledger
// is the only durable store.
type ReconciliationSession struct {
	Company   CompanyPair
	StartDate time.Time
	EndDate   time.Time
	PadWidth  int

	Argo    []TransactionRecord
	Netunna []TransactionRecord

	Results     []MatchResult
	Summary     []StatusSummary
	Suggestions []Suggestion
	Warnings    []FeedWarning
}

// NewReconciliationSession normalizes both feeds' identifiers to the batch
// pad width and returns a session ready for matching.
func NewReconciliationSession(company CompanyPair, argo, netunna []TransactionRecord) *ReconciliationSession {
	width := SourceIDWidth(argo, netunna)
	for i := range argo {
		argo[i].SourceID = NormalizeSourceID(argo[i].SourceID, width)
	}
	for i := range netunna {
		netunna[i].SourceID = NormalizeSourceID(netunna[i].SourceID, width)
	}

	return &ReconciliationSession{
		Company:  company,
		PadWidth: width,
		Argo:     argo,
		Netunna:  netunna,
	}
}

// PendingResults returns the non-matched rows of the session.
func (s *ReconciliationSession) PendingResults() []MatchResult {
	pending := make([]MatchResult, 0)
	for _, r := range s.Results {
		if r.Status != StatusMatched {
			pending = append(pending, r)
		}
	}
	return pending
}

// SkippedCompany reports one company whose comparison could not run. A
// skipped company never aborts the rest of the batch.
type SkippedCompany struct {
	CompanyID string `json:"companyId"`
	Origin    Origin `json:"origin"`
	Reason    string `json:"reason"`
}
