package models

import (
	"errors"
	"fmt"
)

type (
	MapErrs     map[string]ErrorDetail
	ErrorDetail struct {
		Code         string `json:"code,omitempty"`
		ErrorMessage error  `json:"message,omitempty"`
	}
)

func (e ErrorDetail) Error() string {
	return fmt.Sprintf("code: %s, message: %v", e.Code, e.ErrorMessage)
}

func GetErrMap(code string, args ...string) ErrorDetail {
	v, ok := MapErrors[code]
	if !ok {
		return ErrorDetail{
			Code:         code,
			ErrorMessage: errors.New("unknown error mapping"),
		}
	}
	if len(args) > 0 {
		v.ErrorMessage = fmt.Errorf("%s caused by %s", v.ErrorMessage, args[0])
	}

	return v
}

const (
	ErrKeyInvalidFormatDate                 = "INVALID_FORMAT_DATE"
	ErrKeyInvalidAmount                     = "INVALID_AMOUNT"
	ErrKeyLimitMustBeGreaterThanZero        = "LIMIT_MUST_BE_GREATER_THAN_ZERO"
	ErrKeyStartDateIsAfterEndDate           = "START_DATE_IS_AFTER_END_DATE"
	ErrKeyCounterpartRequired               = "COUNTERPART_REQUIRED"
	ErrKeyCorrespondenceArgoSideOnly        = "CORRESPONDENCE_ARGO_SIDE_ONLY"
	ErrKeyCounterpartAlreadyClaimed         = "COUNTERPART_ALREADY_CLAIMED"
	ErrKeyCompanyMappingNotFound            = "COMPANY_MAPPING_NOT_FOUND"
	ErrKeyDayNotFullyResolved               = "DAY_NOT_FULLY_RESOLVED"
	ErrKeyEmptyFeeds                        = "EMPTY_FEEDS"
	ErrKeyCounterpartOutsideTolerance       = "COUNTERPART_OUTSIDE_TOLERANCE"
	ErrKeyCounterpartNotFound               = "COUNTERPART_NOT_FOUND"
	ErrKeyClosureNotFound                   = "CLOSURE_NOT_FOUND"
	ErrKeyStartDateAndEndDateMustBeTogether = "START_DATE_AND_END_DATE_MUST_BE_TOGETHER"
)

var MapErrors = MapErrs{
	ErrKeyInvalidFormatDate: {
		Code:         ErrKeyInvalidFormatDate,
		ErrorMessage: errors.New("invalid format date"),
	},
	ErrKeyInvalidAmount: {
		Code:         ErrKeyInvalidAmount,
		ErrorMessage: errors.New("invalid amount"),
	},
	ErrKeyLimitMustBeGreaterThanZero: {
		Code:         ErrKeyLimitMustBeGreaterThanZero,
		ErrorMessage: errors.New("limit must be greater than zero"),
	},
	ErrKeyStartDateIsAfterEndDate: {
		Code:         ErrKeyStartDateIsAfterEndDate,
		ErrorMessage: errors.New("start date is after end date"),
	},
	ErrKeyCounterpartRequired: {
		Code:         ErrKeyCounterpartRequired,
		ErrorMessage: errors.New("selected counterpart id is required for SELECT_CORRESPONDENCE"),
	},
	ErrKeyCorrespondenceArgoSideOnly: {
		Code:         ErrKeyCorrespondenceArgoSideOnly,
		ErrorMessage: errors.New("SELECT_CORRESPONDENCE is recorded on the ARGO record, with the Netunna id as counterpart"),
	},
	ErrKeyCounterpartAlreadyClaimed: {
		Code:         ErrKeyCounterpartAlreadyClaimed,
		ErrorMessage: errors.New("counterpart already claimed by another decision"),
	},
	ErrKeyCompanyMappingNotFound: {
		Code:         ErrKeyCompanyMappingNotFound,
		ErrorMessage: errors.New("company mapping not found"),
	},
	ErrKeyDayNotFullyResolved: {
		Code:         ErrKeyDayNotFullyResolved,
		ErrorMessage: errors.New("day has pending records without a terminal decision"),
	},
	ErrKeyEmptyFeeds: {
		Code:         ErrKeyEmptyFeeds,
		ErrorMessage: errors.New("both feeds are empty"),
	},
	ErrKeyCounterpartOutsideTolerance: {
		Code:         ErrKeyCounterpartOutsideTolerance,
		ErrorMessage: errors.New("counterpart amount outside tolerance"),
	},
	ErrKeyCounterpartNotFound: {
		Code:         ErrKeyCounterpartNotFound,
		ErrorMessage: errors.New("counterpart not found among pending records"),
	},
	ErrKeyClosureNotFound: {
		Code:         ErrKeyClosureNotFound,
		ErrorMessage: errors.New("no closure record for company and date"),
	},
	ErrKeyStartDateAndEndDateMustBeTogether: {
		Code:         ErrKeyStartDateAndEndDateMustBeTogether,
		ErrorMessage: errors.New("start date and end date must be filled together"),
	},
}
