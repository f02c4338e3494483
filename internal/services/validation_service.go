package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/flowfin/go-conciliador/internal/common"
	"github.com/flowfin/go-conciliador/internal/models"
	"github.com/flowfin/go-conciliador/internal/monitoring"

	"github.com/shopspring/decimal"
)

type ValidationService interface {
	// SubmitDecision records one manual decision. Replaying an identical
	// decision is a no-op; overwritten reports whether a different prior
	// decision was superseded.
	SubmitDecision(ctx context.Context, req models.SubmitDecisionRequest) (entry *models.LedgerEntry, overwritten bool, err error)

	GetCompanyDecisions(ctx context.Context, companyID string) (entries []models.LedgerEntry, err error)

	// CloseDay flags a (company, date) as closed once every pending record
	// of the day carries a decision, or unconditionally under force.
	CloseDay(ctx context.Context, req models.CloseDayRequest) (closure *models.DayClosure, err error)

	GetClosures(ctx context.Context, companyID string) (closures []models.DayClosure, err error)
}

type validation service

var _ ValidationService = (*validation)(nil)

func (s *validation) SubmitDecision(ctx context.Context, req models.SubmitDecisionRequest) (entry *models.LedgerEntry, overwritten bool, err error) {
	monitor := monitoring.New(ctx)
	defer monitor.Finish(monitoring.WithFinishCheckError(err))

	decision, err := req.ToDecision(common.Now())
	if err != nil {
		return
	}

	if decision.Decision == models.DecisionSelectCorrespondence {
		if err = s.checkCounterpart(ctx, req, decision); err != nil {
			return
		}
	}

	result, overwritten, err := s.srv.ledgerRepo.Upsert(ctx, decision)
	if err != nil {
		err = common.ErrInternalServerError
		return
	}
	entry = &result
	return
}

// checkCounterpart enforces the binding rules of SELECT_CORRESPONDENCE: the
// chosen counterpart must not be claimed by another decision, and when the
// caller supplies its date and amount they must sit on the same day and
// within tolerance.
func (s *validation) checkCounterpart(ctx context.Context, req models.SubmitDecisionRequest, decision models.ValidationDecision) error {
	claimed, err := s.srv.ledgerRepo.ClaimedCounterparts(ctx, decision.CompanyID)
	if err != nil {
		return common.ErrInternalServerError
	}
	if owner, ok := claimed[decision.SelectedCounterpartID]; ok && owner != decision.NaturalKey() {
		return models.GetErrMap(models.ErrKeyCounterpartAlreadyClaimed, decision.SelectedCounterpartID)
	}

	if req.CounterpartDate != "" {
		counterpartDate, parseErr := time.Parse(common.DateFormatYYYYMMDD, req.CounterpartDate)
		if parseErr != nil {
			return models.GetErrMap(models.ErrKeyInvalidFormatDate, fmt.Sprintf("date %s format must be YYYY-MM-DD", req.CounterpartDate))
		}
		// id-based correspondences may cross days; same-day is only required
		// for value-based picks where the id differs
		if !strings.EqualFold(strings.TrimSpace(req.SourceID), decision.SelectedCounterpartID) &&
			!counterpartDate.Equal(decision.Date) {
			return models.GetErrMap(models.ErrKeyCounterpartNotFound, "counterpart is on a different day")
		}
	}
	counterpartAmount, parseErr := common.NewDecimalFromString(req.CounterpartAmount)
	if parseErr != nil {
		return models.GetErrMap(models.ErrKeyInvalidAmount, req.CounterpartAmount)
	}
	if counterpartAmount != nil && !common.AmountsWithinTolerance(decision.Amount, *counterpartAmount) {
		return models.GetErrMap(models.ErrKeyCounterpartOutsideTolerance,
			fmt.Sprintf("%s vs %s", decision.Amount.StringFixed(2), counterpartAmount.StringFixed(2)))
	}

	return nil
}

func (s *validation) GetCompanyDecisions(ctx context.Context, companyID string) (entries []models.LedgerEntry, err error) {
	monitor := monitoring.New(ctx)
	defer monitor.Finish(monitoring.WithFinishCheckError(err))

	entries, err = s.srv.ledgerRepo.ListByCompany(ctx, companyID)
	if err != nil {
		err = common.ErrInternalServerError
		return
	}
	if entries == nil {
		entries = []models.LedgerEntry{}
	}
	return
}

func (s *validation) CloseDay(ctx context.Context, req models.CloseDayRequest) (closure *models.DayClosure, err error) {
	monitor := monitoring.New(ctx)
	defer monitor.Finish(monitoring.WithFinishCheckError(err))

	date, err := time.Parse(common.DateFormatYYYYMMDD, req.Date)
	if err != nil {
		err = models.GetErrMap(models.ErrKeyInvalidFormatDate, fmt.Sprintf("date %s format must be YYYY-MM-DD", req.Date))
		return
	}
	date = common.TruncateToDay(date.UTC())

	matchedValue := decimal.Zero
	parsedValue, err := common.NewDecimalFromString(req.MatchedValue)
	if err != nil {
		err = models.GetErrMap(models.ErrKeyInvalidAmount, req.MatchedValue)
		return
	}
	if parsedValue != nil {
		matchedValue = *parsedValue
	}

	unresolvedCount := 0
	unresolvedValue := decimal.Zero
	for _, ref := range req.Pending {
		amount, parseErr := decimal.NewFromString(ref.Amount)
		if parseErr != nil {
			err = models.GetErrMap(models.ErrKeyInvalidAmount, ref.Amount)
			return
		}
		origin := models.OriginArgo
		if strings.EqualFold(ref.Origin, models.OriginNetunna.String()) {
			origin = models.OriginNetunna
		}
		key := models.ValidationDecision{
			CompanyID: req.CompanyID,
			SourceID:  ref.SourceID,
			Origin:    origin,
			Date:      date,
			Amount:    amount,
		}.NaturalKey()

		if _, lookupErr := s.srv.ledgerRepo.Get(ctx, key); lookupErr != nil {
			if lookupErr != common.ErrDataNotFound {
				err = common.ErrInternalServerError
				return
			}
			unresolvedCount++
			unresolvedValue = unresolvedValue.Add(amount)
		}
	}

	if unresolvedCount > 0 && !req.Force {
		err = models.GetErrMap(models.ErrKeyDayNotFullyResolved, fmt.Sprintf("%d records pending", unresolvedCount))
		return
	}

	day := models.DayClosure{
		Date:         date,
		Closed:       true,
		MatchedCount: req.MatchedCount,
		PendingCount: unresolvedCount,
		MatchedValue: matchedValue,
		PendingValue: unresolvedValue,
	}
	if err = s.srv.closureRepo.Append(ctx, req.CompanyID, day); err != nil {
		err = common.ErrInternalServerError
		return
	}

	closure = &day
	return
}

func (s *validation) GetClosures(ctx context.Context, companyID string) (closures []models.DayClosure, err error) {
	monitor := monitoring.New(ctx)
	defer monitor.Finish(monitoring.WithFinishCheckError(err))

	closures, err = s.srv.closureRepo.Load(ctx, companyID)
	if err != nil {
		err = common.ErrInternalServerError
		return
	}
	if closures == nil {
		closures = []models.DayClosure{}
	}
	return
}
