package store

import (
	"context"
	"errors"
	"strings"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/evoluciona-hipotecaria/apiserver/types"
)

func TestSwapStagingToProduction(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`TRUNCATE TABLE operations`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`INSERT INTO operations \(.+\) SELECT .+ FROM operations_staging`).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(`TRUNCATE TABLE operations_staging`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	repo := NewOperationRepository(db)
	if err := repo.SwapStagingToProduction(context.Background()); err != nil {
		t.Fatalf("SwapStagingToProduction: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestSwapRollsBackOnCopyFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`TRUNCATE TABLE operations`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`INSERT INTO operations \(.+\) SELECT .+ FROM operations_staging`).
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	repo := NewOperationRepository(db)
	err = repo.SwapStagingToProduction(context.Background())
	if err == nil {
		t.Fatal("SwapStagingToProduction did not fail")
	}
	if !strings.Contains(err.Error(), "copy staging to production") {
		t.Errorf("err = %v, want phase name", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestInsertStagingBatch(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	mock.ExpectExec(`INSERT INTO operations_staging \(user_id, .+\) VALUES \(\$1, .+\), \(\$86, .+\)`).
		WillReturnResult(sqlmock.NewResult(0, 2))

	repo := NewOperationRepository(db)
	ops := []types.Operation{
		{UserID: "user-1", RutVendedor: "12345678-5"},
		{UserID: "user-2", RutVendedor: "76453723-8"},
	}
	if err := repo.InsertStagingBatch(context.Background(), ops); err != nil {
		t.Fatalf("InsertStagingBatch: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestInsertStagingBatchEmpty(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	repo := NewOperationRepository(db)
	if err := repo.InsertStagingBatch(context.Background(), nil); err != nil {
		t.Fatalf("InsertStagingBatch(nil): %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestCountByUserID(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT COUNT\(1\) FROM operations WHERE user_id = \$1`).
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

	repo := NewOperationRepository(db)
	count, err := repo.CountByUserID(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("CountByUserID: %v", err)
	}
	if count != 7 {
		t.Errorf("count = %d, want 7", count)
	}
}

func TestPlaceholders(t *testing.T) {
	if got := placeholders(0, 3); got != "($1, $2, $3)" {
		t.Errorf("placeholders(0, 3) = %q", got)
	}
	if got := placeholders(3, 2); got != "($4, $5)" {
		t.Errorf("placeholders(3, 2) = %q", got)
	}
}
