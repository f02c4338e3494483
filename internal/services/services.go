package services

import (
	"github.com/flowfin/go-conciliador/internal/config"
	"github.com/flowfin/go-conciliador/internal/repositories"
)

type service struct {
	srv *Services
}

type Services struct {
	conf config.Config

	sqlRepo     repositories.SQLRepository
	ledgerRepo  repositories.LedgerRepository
	closureRepo repositories.ClosureRepository

	common service

	Recon      *reconService
	Validation *validation
}

func New(
	conf config.Config,
	sqlRepo repositories.SQLRepository,
	ledgerRepo repositories.LedgerRepository,
	closureRepo repositories.ClosureRepository,
) *Services {
	srv := &Services{
		conf:        conf,
		sqlRepo:     sqlRepo,
		ledgerRepo:  ledgerRepo,
		closureRepo: closureRepo,
	}
	srv.common.srv = srv
	srv.Recon = (*reconService)(&srv.common)
	srv.Validation = (*validation)(&srv.common)

	return srv
}
