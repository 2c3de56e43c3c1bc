package snapshots

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/gatekeeper/internal/common"
)

func newPostgresRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

const (
	pgSelectQ = `(?s)^SELECT\s+value\s+FROM\s+snapshots\s+WHERE\s+key\s*=\s*\$1\s*$`
	pgUpsertQ = `(?s)^INSERT\s+INTO\s+snapshots\s*\(key,\s*value,\s*updated_at\)\s*VALUES\s*\(\$1,\s*\$2,\s*now\(\)\)\s*ON\s+CONFLICT\s*\(key\)\s*DO\s+UPDATE\s+SET\b.*$`
)

func TestPostgresGet_Found(t *testing.T) {
	repo, mock, db := newPostgresRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(pgSelectQ).
		WithArgs("admins").
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow([]byte(`["a"]`)))

	got, err := repo.Get(context.Background(), "admins")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if string(got) != `["a"]` {
		t.Fatalf("unexpected value: %q", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

func TestPostgresGet_NotFound(t *testing.T) {
	repo, mock, db := newPostgresRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(pgSelectQ).
		WithArgs("ghost").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.Get(context.Background(), "ghost")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
}

func TestPostgresGet_DBError(t *testing.T) {
	repo, mock, db := newPostgresRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(pgSelectQ).
		WithArgs("admins").
		WillReturnError(errors.New("db down"))

	_, err := repo.Get(context.Background(), "admins")
	if err == nil || !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestPostgresSet_Success(t *testing.T) {
	repo, mock, db := newPostgresRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(pgUpsertQ).
		WithArgs("admins", []byte(`["a"]`)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Set(context.Background(), "admins", []byte(`["a"]`)); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

func TestPostgresSet_DBError(t *testing.T) {
	repo, mock, db := newPostgresRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(pgUpsertQ).
		WithArgs("admins", []byte(`[]`)).
		WillReturnError(errors.New("boom"))

	err := repo.Set(context.Background(), "admins", []byte(`[]`))
	if err == nil || !regexp.MustCompile(`db error: .*boom`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}
