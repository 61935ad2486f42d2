package database

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/pageza/recipe-share/backend/internal/logger"
)

var migrationNames = []string{
	"0001_create_users.sql",
	"0002_create_recipes.sql",
	"0003_create_recipe_relations.sql",
}

func newMockPostgres(t *testing.T, monitorPings bool) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(monitorPings))
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	cfg := GormConfig()
	cfg.DisableAutomaticPing = true
	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), cfg)
	require.NoError(t, err)
	return db, mock
}

func expectMigrationsTable(mock sqlmock.Sqlmock) {
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS migrations").
		WillReturnResult(sqlmock.NewResult(0, 0))
}

func expectApplied(mock sqlmock.Sqlmock, name string, applied bool) {
	count := 0
	if applied {
		count = 1
	}
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "migrations"`)).
		WithArgs(name).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(count))
}

func TestRunMigrationsAppliesPendingFiles(t *testing.T) {
	db, mock := newMockPostgres(t, false)

	expectMigrationsTable(mock)
	for _, name := range migrationNames {
		expectApplied(mock, name, false)
		mock.ExpectBegin()
		mock.ExpectExec(".*").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO migrations (name) VALUES ($1)")).
			WithArgs(name).
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectCommit()
	}

	require.NoError(t, RunMigrations(db, logger.Nop()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunMigrationsSkipsAppliedFiles(t *testing.T) {
	db, mock := newMockPostgres(t, false)

	expectMigrationsTable(mock)
	for _, name := range migrationNames {
		expectApplied(mock, name, true)
	}

	require.NoError(t, RunMigrations(db, logger.Nop()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunMigrationsRollsBackFailedFile(t *testing.T) {
	db, mock := newMockPostgres(t, false)

	expectMigrationsTable(mock)
	expectApplied(mock, migrationNames[0], true)
	expectApplied(mock, migrationNames[1], false)
	mock.ExpectBegin()
	mock.ExpectExec(".*").WillReturnError(errors.New("syntax error"))
	mock.ExpectRollback()

	err := RunMigrations(db, logger.Nop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), migrationNames[1])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunMigrationsTableFailure(t *testing.T) {
	db, mock := newMockPostgres(t, false)

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS migrations").
		WillReturnError(errors.New("permission denied"))

	err := RunMigrations(db, logger.Nop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create migrations table")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHealthCheckReportsPingFailure(t *testing.T) {
	db, mock := newMockPostgres(t, true)

	mock.ExpectPing().WillReturnError(errors.New("connection refused"))

	assert.Error(t, HealthCheck(context.Background(), db))
	assert.NoError(t, mock.ExpectationsWereMet())
}
