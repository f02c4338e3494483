package repositories

import (
	sq "github.com/Masterminds/squirrel"

	"github.com/flowfin/go-conciliador/internal/models"
)

var (
	queryReconRunCreate = `
		INSERT INTO recon_runs(
			"id", "companyId", "netunnaCompanyId", "startDate", "endDate",
			"matchedCount", "onlyArgoCount", "onlyNetunnaCount", "matchedValue",
			"status", "createdAt", "updatedAt"
		)
		VALUES(
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW()
		)
		RETURNING
			"id", "createdAt", "updatedAt";
	`

	queryReconRunDeleteByID = `DELETE FROM recon_runs WHERE id = $1`

	queryReconRunGetByID = `SELECT
		  "id",
		  "companyId",
		  "netunnaCompanyId",
		  "startDate",
		  "endDate",
		  "matchedCount",
		  "onlyArgoCount",
		  "onlyNetunnaCount",
		  "matchedValue",
		  COALESCE("status", '') as "status",
		  "createdAt",
		  "updatedAt"
		FROM "recon_runs"
		WHERE id = $1;`
)

var reconRunColumns = []string{
	`"id"`,
	`"companyId"`,
	`"netunnaCompanyId"`,
	`"startDate"`,
	`"endDate"`,
	`"matchedCount"`,
	`"onlyArgoCount"`,
	`"onlyNetunnaCount"`,
	`"matchedValue"`,
	`COALESCE("status", '') as "status"`,
	`"createdAt"`,
	`"updatedAt"`,
}

func buildFilteredReconRunQuery(cols []string, opts models.ReconRunFilterOptions) sq.SelectBuilder {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

	query := psql.Select(cols...).From("recon_runs")

	if opts.CompanyID != "" {
		query = query.Where(sq.Eq{`"companyId"`: opts.CompanyID})
	}

	if opts.StartDate != nil {
		query = query.Where(sq.GtOrEq{`"startDate"`: opts.StartDate})
	}

	if opts.EndDate != nil {
		query = query.Where(sq.LtOrEq{`"endDate"`: opts.EndDate})
	}

	return query
}

func buildListReconRunQuery(opts models.ReconRunFilterOptions) (sql string, args []interface{}, err error) {
	query := buildFilteredReconRunQuery(reconRunColumns, opts).
		OrderBy(`"createdAt" DESC`)

	if opts.Limit > 0 {
		query = query.Limit(uint64(opts.Limit))
	}
	if opts.Offset > 0 {
		query = query.Offset(uint64(opts.Offset))
	}

	return query.ToSql()
}

func buildCountReconRunQuery(opts models.ReconRunFilterOptions) (sql string, args []interface{}, err error) {
	return buildFilteredReconRunQuery([]string{"COUNT(*)"}, opts).ToSql()
}
