package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/flowfin/go-conciliador/internal/common"
	"github.com/flowfin/go-conciliador/internal/models"
	"github.com/flowfin/go-conciliador/internal/monitoring"
)

type ReconRunRepository interface {
	Create(ctx context.Context, in *models.CreateReconRunIn) (created *models.ReconRun, err error)
	GetList(ctx context.Context, opts models.ReconRunFilterOptions) (result []models.ReconRun, err error)
	CountAll(ctx context.Context, opts models.ReconRunFilterOptions) (total int, err error)
	GetByID(ctx context.Context, id string) (result *models.ReconRun, err error)
	DeleteByID(ctx context.Context, id string) error
}

type reconRunRepo sqlRepo

var _ ReconRunRepository = (*reconRunRepo)(nil)

func (r *reconRunRepo) Create(ctx context.Context, in *models.CreateReconRunIn) (created *models.ReconRun, err error) {
	monitor := monitoring.New(ctx)
	defer monitor.Finish(monitoring.WithFinishCheckError(err))

	db := r.r.extractTxWrite(ctx)

	var entity models.ReconRun
	err = db.QueryRowContext(ctx, queryReconRunCreate,
		in.ID,
		in.CompanyID,
		in.NetunnaCompanyID,
		in.StartDate,
		in.EndDate,
		in.MatchedCount,
		in.OnlyArgoCount,
		in.OnlyNetunnaCount,
		in.MatchedValue,
		in.Status,
	).Scan(
		&entity.ID,
		&entity.CreatedAt,
		&entity.UpdatedAt,
	)
	if err != nil {
		return
	}

	entity.CompanyID = in.CompanyID
	entity.NetunnaCompanyID = in.NetunnaCompanyID
	entity.StartDate = &in.StartDate
	entity.EndDate = &in.EndDate
	entity.MatchedCount = in.MatchedCount
	entity.OnlyArgoCount = in.OnlyArgoCount
	entity.OnlyNetunnaCount = in.OnlyNetunnaCount
	entity.MatchedValue = in.MatchedValue
	entity.Status = in.Status
	created = &entity

	return
}

func (r *reconRunRepo) GetList(ctx context.Context, opts models.ReconRunFilterOptions) (result []models.ReconRun, err error) {
	monitor := monitoring.New(ctx)
	defer monitor.Finish(monitoring.WithFinishCheckError(err))

	db := r.r.extractTxRead(ctx)

	query, args, err := buildListReconRunQuery(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return
	}
	defer rows.Close()

	for rows.Next() {
		var rr models.ReconRun
		err = rows.Scan(
			&rr.ID,
			&rr.CompanyID,
			&rr.NetunnaCompanyID,
			&rr.StartDate,
			&rr.EndDate,
			&rr.MatchedCount,
			&rr.OnlyArgoCount,
			&rr.OnlyNetunnaCount,
			&rr.MatchedValue,
			&rr.Status,
			&rr.CreatedAt,
			&rr.UpdatedAt,
		)
		if err != nil {
			return result, err
		}
		result = append(result, rr)
	}
	if err = rows.Err(); err != nil {
		return result, err
	}

	return result, nil
}

func (r *reconRunRepo) CountAll(ctx context.Context, opts models.ReconRunFilterOptions) (total int, err error) {
	monitor := monitoring.New(ctx)
	defer monitor.Finish(monitoring.WithFinishCheckError(err))

	db := r.r.extractTxRead(ctx)

	query, args, err := buildCountReconRunQuery(opts)
	if err != nil {
		return total, fmt.Errorf("failed to build query: %w", err)
	}

	if err = db.QueryRowContext(ctx, query, args...).Scan(&total); err != nil {
		return
	}

	return
}

func (r *reconRunRepo) GetByID(ctx context.Context, id string) (result *models.ReconRun, err error) {
	monitor := monitoring.New(ctx)
	defer monitor.Finish(monitoring.WithFinishCheckError(err))

	db := r.r.extractTxRead(ctx)

	var rr models.ReconRun
	err = db.QueryRowContext(ctx, queryReconRunGetByID, id).Scan(
		&rr.ID,
		&rr.CompanyID,
		&rr.NetunnaCompanyID,
		&rr.StartDate,
		&rr.EndDate,
		&rr.MatchedCount,
		&rr.OnlyArgoCount,
		&rr.OnlyNetunnaCount,
		&rr.MatchedValue,
		&rr.Status,
		&rr.CreatedAt,
		&rr.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrDataNotFound
		}
		return nil, err
	}

	return &rr, nil
}

func (r *reconRunRepo) DeleteByID(ctx context.Context, id string) (err error) {
	monitor := monitoring.New(ctx)
	defer monitor.Finish(monitoring.WithFinishCheckError(err))

	db := r.r.extractTxWrite(ctx)

	res, err := db.ExecContext(ctx, queryReconRunDeleteByID, id)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return common.ErrNoRowsAffected
	}

	return nil
}
