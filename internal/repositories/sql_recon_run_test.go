package repositories

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/flowfin/go-conciliador/internal/common"
	"github.com/flowfin/go-conciliador/internal/config"
	"github.com/flowfin/go-conciliador/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

func TestReconRunRepositoryTestSuite(t *testing.T) {
	t.Helper()
	suite.Run(t, new(reconRunRepoTestSuite))
}

type reconRunRepoTestSuite struct {
	suite.Suite
	t       *testing.T
	writeDB *sql.DB
	readDB  *sql.DB
	mock    sqlmock.Sqlmock
	repo    ReconRunRepository
}

func (suite *reconRunRepoTestSuite) SetupTest() {
	var err error
	var cfg config.Config

	suite.writeDB, suite.mock, err = sqlmock.New()
	require.NoError(suite.T(), err)

	suite.readDB = suite.writeDB
	suite.t = suite.T()

	suite.repo = NewSQLRepository(suite.writeDB, suite.readDB, cfg).GetReconRunRepository()
}

func (suite *reconRunRepoTestSuite) TearDownTest() {
	defer suite.writeDB.Close()
}

func (suite *reconRunRepoTestSuite) TestRepository_Create() {
	testCases := []struct {
		name    string
		in      models.CreateReconRunIn
		wantErr bool
		doMock  func(in models.CreateReconRunIn)
	}{
		{
			name: "happy path",
			in: models.CreateReconRunIn{
				ID:               "run-1",
				CompanyID:        "ACME",
				NetunnaCompanyID: "N-ACME",
				StartDate:        time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC),
				EndDate:          time.Date(2025, 5, 31, 0, 0, 0, 0, time.UTC),
				MatchedCount:     10,
				MatchedValue:     decimal.RequireFromString("1500.00"),
				Status:           models.ReconRunStatusCompleted,
			},
			doMock: func(in models.CreateReconRunIn) {
				rows := sqlmock.
					NewRows([]string{"id", "createdAt", "updatedAt"}).
					AddRow(in.ID, time.Now(), time.Now())

				suite.mock.
					ExpectQuery(regexp.QuoteMeta(queryReconRunCreate)).
					WillReturnRows(rows)
			},
			wantErr: false,
		},
		{
			name: "error scan row",
			in:   models.CreateReconRunIn{},
			doMock: func(in models.CreateReconRunIn) {
				rows := sqlmock.NewRows([]string{"InvalidColumn"}).AddRow(nil)
				suite.mock.
					ExpectQuery(regexp.QuoteMeta(queryReconRunCreate)).
					WillReturnRows(rows)
			},
			wantErr: true,
		},
		{
			name: "error db",
			in:   models.CreateReconRunIn{},
			doMock: func(in models.CreateReconRunIn) {
				suite.mock.
					ExpectQuery(regexp.QuoteMeta(queryReconRunCreate)).
					WillReturnError(assert.AnError)
			},
			wantErr: true,
		},
	}

	for _, tc := range testCases {
		suite.t.Run(tc.name, func(t *testing.T) {
			tc.doMock(tc.in)

			created, err := suite.repo.Create(context.Background(), &tc.in)
			assert.Equal(t, tc.wantErr, err != nil)
			if !tc.wantErr {
				assert.Equal(t, tc.in.ID, created.ID)
			}

			if err = suite.mock.ExpectationsWereMet(); err != nil {
				t.Errorf("there were unfulfilled expectations: %s", err)
			}
		})
	}
}

func (suite *reconRunRepoTestSuite) TestRepository_GetList() {
	now := time.Now()
	start := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)

	opts := models.ReconRunFilterOptions{
		CompanyID: "ACME",
		StartDate: &start,
		Limit:     10,
	}

	query, _, err := buildListReconRunQuery(opts)
	require.NoError(suite.t, err)

	rows := sqlmock.NewRows([]string{
		"id", "companyId", "netunnaCompanyId", "startDate", "endDate",
		"matchedCount", "onlyArgoCount", "onlyNetunnaCount", "matchedValue",
		"status", "createdAt", "updatedAt",
	}).AddRow(
		"run-1", "ACME", "N-ACME", start, start.AddDate(0, 1, 0),
		12, 2, 1, "1500.00",
		models.ReconRunStatusPartial, now, now,
	)

	suite.mock.ExpectQuery(regexp.QuoteMeta(query)).WillReturnRows(rows)

	result, err := suite.repo.GetList(context.Background(), opts)
	require.NoError(suite.t, err)
	require.Len(suite.t, result, 1)
	assert.Equal(suite.t, "run-1", result[0].ID)
	assert.Equal(suite.t, 12, result[0].MatchedCount)
	assert.NoError(suite.t, suite.mock.ExpectationsWereMet())
}

func (suite *reconRunRepoTestSuite) TestRepository_CountAll() {
	opts := models.ReconRunFilterOptions{CompanyID: "ACME"}

	query, _, err := buildCountReconRunQuery(opts)
	require.NoError(suite.t, err)

	suite.mock.
		ExpectQuery(regexp.QuoteMeta(query)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(42))

	total, err := suite.repo.CountAll(context.Background(), opts)
	require.NoError(suite.t, err)
	assert.Equal(suite.t, 42, total)
}

func (suite *reconRunRepoTestSuite) TestRepository_GetByID() {
	now := time.Now()

	rows := sqlmock.NewRows([]string{
		"id", "companyId", "netunnaCompanyId", "startDate", "endDate",
		"matchedCount", "onlyArgoCount", "onlyNetunnaCount", "matchedValue",
		"status", "createdAt", "updatedAt",
	}).AddRow(
		"run-1", "ACME", "N-ACME", now, now,
		1, 0, 0, "10.00",
		models.ReconRunStatusCompleted, now, now,
	)

	suite.mock.ExpectQuery(regexp.QuoteMeta(queryReconRunGetByID)).WillReturnRows(rows)

	result, err := suite.repo.GetByID(context.Background(), "run-1")
	require.NoError(suite.t, err)
	assert.Equal(suite.t, "ACME", result.CompanyID)

	suite.mock.ExpectQuery(regexp.QuoteMeta(queryReconRunGetByID)).WillReturnError(sql.ErrNoRows)

	_, err = suite.repo.GetByID(context.Background(), "missing")
	assert.ErrorIs(suite.t, err, common.ErrDataNotFound)
}

func (suite *reconRunRepoTestSuite) TestRepository_DeleteByID() {
	testCases := []struct {
		name         string
		wantErr      error
		rowsAffected int64
	}{
		{name: "happy path", rowsAffected: 1},
		{name: "nothing deleted", rowsAffected: 0, wantErr: common.ErrNoRowsAffected},
	}

	for _, tc := range testCases {
		suite.t.Run(tc.name, func(t *testing.T) {
			suite.mock.
				ExpectExec(regexp.QuoteMeta(queryReconRunDeleteByID)).
				WillReturnResult(sqlmock.NewResult(0, tc.rowsAffected))

			err := suite.repo.DeleteByID(context.Background(), "run-1")
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
			} else {
				assert.NoError(t, err)
			}

			if err := suite.mock.ExpectationsWereMet(); err != nil {
				t.Errorf("there were unfulfilled expectations: %s", err)
			}
		})
	}
}
