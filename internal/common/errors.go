package common

import (
	"database/sql"
	"errors"
)

var (
	ErrNoRowsAffected            = errors.New("no rows affected")
	ErrValidation                = errors.New("validation failed")
	ErrDataNotFound              = errors.New("data not found")
	ErrDataExist                 = errors.New("data exist")
	ErrUnableToCreate            = errors.New("unable to create data")
	ErrInternalServerError       = errors.New("internal server error")
	ErrInvalidFormatDate         = errors.New("invalid format date")
	ErrIDEmpty                   = errors.New("ID is empty")
	ErrCompanyMappingNotFound    = errors.New("company mapping not found")
	ErrCounterpartAlreadyClaimed = errors.New("counterpart already claimed")
	ErrDayNotFullyResolved       = errors.New("day not fully resolved")
	ErrLedgerClosed              = errors.New("ledger storage is closed")
	ErrNoRows                    = sql.ErrNoRows
)
