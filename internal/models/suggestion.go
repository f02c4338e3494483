package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Suggestion methods. The values match what operators were already used to
// seeing in the exported worksheets.
const (
	SuggestionMethodNSU       = "NSU"
	SuggestionMethodDateValue = "Data+Valor"
)

// Suggestion is an advisory candidate correspondence between a residual
// ONLY_ARGO record and a residual ONLY_NETUNNA record. Suggestions never
// mutate the comparison table; promoting one to MATCHED requires a manual
// SELECT_CORRESPONDENCE decision.
type Suggestion struct {
	CompanyID     string          `json:"companyId"`
	ArgoDate      time.Time       `json:"argoDate"`
	ArgoID        string          `json:"argoId"`
	ArgoAmount    decimal.Decimal `json:"argoAmount"`
	PaymentMethod string          `json:"paymentMethod"`
	NetunnaDate   time.Time       `json:"netunnaDate"`
	NetunnaID     string          `json:"netunnaId"`
	NetunnaAmount decimal.Decimal `json:"netunnaAmount"`
	CardBrand     string          `json:"cardBrand"`
	Method        string          `json:"method"`
	Validated     bool            `json:"validated"`
	Note          string          `json:"note"`
}

var CSVHeaderSuggestion = []string{
	"company_id",
	"argo_date",
	"argo_id",
	"argo_amount",
	"payment_method",
	"netunna_date",
	"netunna_id",
	"netunna_amount",
	"card_brand",
	"method",
	"validated",
	"note",
}

func (s Suggestion) ToCSVRow() []string {
	return []string{
		s.CompanyID,
		s.ArgoDate.Format("2006-01-02"),
		s.ArgoID,
		s.ArgoAmount.StringFixed(2),
		s.PaymentMethod,
		s.NetunnaDate.Format("2006-01-02"),
		s.NetunnaID,
		s.NetunnaAmount.StringFixed(2),
		s.CardBrand,
		s.Method,
		boolString(s.Validated),
		s.Note,
	}
}

func boolString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
