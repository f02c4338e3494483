package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type DecisionType int

const (
	DecisionUnknown DecisionType = iota

	// DecisionSelectCorrespondence pairs the pending record with a concrete
	// counterpart picked by the operator. Always recorded on the ARGO
	// record, with the Netunna id as the counterpart.
	DecisionSelectCorrespondence

	// DecisionJustifyCorrect asserts the record is legitimately standalone,
	// e.g. a same-day manual adjustment.
	DecisionJustifyCorrect

	// DecisionMarkError flags the record as a data error needing upstream
	// correction. By default this only annotates; the record stays eligible
	// for future matching and suggestion passes.
	DecisionMarkError
)

func (d DecisionType) String() string {
	switch d {
	case DecisionSelectCorrespondence:
		return "SELECT_CORRESPONDENCE"
	case DecisionJustifyCorrect:
		return "JUSTIFY_CORRECT"
	case DecisionMarkError:
		return "MARK_ERROR"
	default:
		return "UNKNOWN"
	}
}

func (d DecisionType) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func ParseDecisionType(s string) (DecisionType, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "SELECT_CORRESPONDENCE":
		return DecisionSelectCorrespondence, nil
	case "JUSTIFY_CORRECT":
		return DecisionJustifyCorrect, nil
	case "MARK_ERROR":
		return DecisionMarkError, nil
	default:
		return DecisionUnknown, fmt.Errorf("unknown decision type: %q", s)
	}
}

// ValidationDecision records one human decision for a pending record.
type ValidationDecision struct {
	CompanyID string          `json:"companyId"`
	SourceID  string          `json:"sourceId"`
	Origin    Origin          `json:"origin"`
	Date      time.Time       `json:"date"`
	Amount    decimal.Decimal `json:"amount"`

	Decision              DecisionType `json:"decision"`
	SelectedCounterpartID string       `json:"selectedCounterpartId,omitempty"`
	Note                  string       `json:"note,omitempty"`
	DecidedAt             time.Time    `json:"decidedAt"`
	DecidedBy             string       `json:"decidedBy,omitempty"`
}

// NaturalKey identifies the physical transaction the decision belongs to so
// the same record is never double-recorded across runs. Runs, timestamps and
// operators are deliberately excluded. Leading zeros are stripped from the
// id: pad width is a per-batch comparison artifact, not part of identity.
func (d ValidationDecision) NaturalKey() string {
	id := strings.TrimLeft(strings.TrimSpace(d.SourceID), "0")
	if id == "" {
		id = "0"
	}
	return strings.Join([]string{
		d.CompanyID,
		d.Origin.String(),
		id,
		d.Date.Format("2006-01-02"),
		d.Amount.StringFixed(2),
	}, "|")
}

// SameOutcome reports whether two decisions for the same natural key are
// effectively identical, i.e. a replay rather than a conflict.
func (d ValidationDecision) SameOutcome(other ValidationDecision) bool {
	return d.Decision == other.Decision &&
		d.SelectedCounterpartID == other.SelectedCounterpartID &&
		d.Note == other.Note
}

// IsTerminalForMatching reports whether the decision removes the record from
// future candidate pools. MARK_ERROR is annotate-only unless the engine is
// configured to exclude marked errors.
func (d ValidationDecision) IsTerminalForMatching(excludeMarkedErrors bool) bool {
	switch d.Decision {
	case DecisionSelectCorrespondence, DecisionJustifyCorrect:
		return true
	case DecisionMarkError:
		return excludeMarkedErrors
	default:
		return false
	}
}

// LedgerEntry is the durable unit stored per natural key. Overwrites keep the
// prior decision retrievable: last write wins on Current, the superseded
// decision is appended to History.
type LedgerEntry struct {
	Key     string               `json:"key"`
	Current ValidationDecision   `json:"current"`
	History []ValidationDecision `json:"history,omitempty"`
}

// SubmitDecisionRequest is the transport shape for recording a decision.
type SubmitDecisionRequest struct {
	CompanyID             string `json:"companyId" validate:"required,noStartEndSpaces"`
	SourceID              string `json:"sourceId" validate:"required,noStartEndSpaces"`
	Origin                string `json:"origin" validate:"required,oneof=ARGO NETUNNA"`
	Date                  string `json:"date" validate:"required,date"`
	Amount                string `json:"amount" validate:"required"`
	Decision              string `json:"decision" validate:"required,oneof=SELECT_CORRESPONDENCE JUSTIFY_CORRECT MARK_ERROR"`
	SelectedCounterpartID string `json:"selectedCounterpartId,omitempty"`

	// Counterpart date and amount, when supplied, let the service verify the
	// chosen correspondence is same-day and within tolerance before binding.
	CounterpartDate   string `json:"counterpartDate,omitempty" validate:"omitempty,date"`
	CounterpartAmount string `json:"counterpartAmount,omitempty"`

	Note      string `json:"note,omitempty"`
	DecidedBy string `json:"decidedBy,omitempty"`
}

// ToDecision converts the request to a domain decision, validating the
// coupled fields the struct tags cannot express.
func (req SubmitDecisionRequest) ToDecision(now time.Time) (ValidationDecision, error) {
	var d ValidationDecision

	decision, err := ParseDecisionType(req.Decision)
	if err != nil {
		return d, err
	}
	if decision == DecisionSelectCorrespondence && strings.TrimSpace(req.SelectedCounterpartID) == "" {
		return d, GetErrMap(ErrKeyCounterpartRequired)
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return d, GetErrMap(ErrKeyInvalidFormatDate, fmt.Sprintf("date %s format must be YYYY-MM-DD", req.Date))
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return d, GetErrMap(ErrKeyInvalidAmount, req.Amount)
	}

	origin := OriginArgo
	if strings.EqualFold(req.Origin, OriginNetunna.String()) {
		origin = OriginNetunna
	}
	if decision == DecisionSelectCorrespondence && origin != OriginArgo {
		return d, GetErrMap(ErrKeyCorrespondenceArgoSideOnly)
	}

	return ValidationDecision{
		CompanyID:             req.CompanyID,
		SourceID:              req.SourceID,
		Origin:                origin,
		Date:                  date,
		Amount:                amount,
		Decision:              decision,
		SelectedCounterpartID: strings.TrimSpace(req.SelectedCounterpartID),
		Note:                  req.Note,
		DecidedAt:             now,
		DecidedBy:             req.DecidedBy,
	}, nil
}
