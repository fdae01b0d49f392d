// internal/policystore/postgres_test.go
package policystore

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"policy-assistant/internal/common/logger"
)

func TestPostgresStore_FindPolicy(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"record"}).
		AddRow([]byte(`{"policy_details":{"policy_number":"MTR/2024/007","product_name":"Motor Secure"}}`)).
		AddRow([]byte(`{"policy_details":{"policy_number":"HOM/2024/011","product_name":"Home Shield"}}`))

	mock.ExpectQuery(`SELECT record FROM user_policies ORDER BY id`).WillReturnRows(rows)

	store := NewPostgresStore(db, logger.NewNoOpLogger())
	rec, err := store.FindPolicy(context.Background(), Query{PolicyID: "HOM/2024/011"})
	require.NoError(t, err)
	assert.Equal(t, "Home Shield", rec.PolicyDetails["product_name"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SkipsMalformedRows(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"record"}).
		AddRow([]byte(`not json`)).
		AddRow([]byte(`{"policy_details":{"policy_number":"TRV/2024/001"}}`))

	mock.ExpectQuery(`SELECT record FROM user_policies ORDER BY id`).WillReturnRows(rows)

	store := NewPostgresStore(db, logger.NewNoOpLogger())
	rec, err := store.FindPolicy(context.Background(), Query{PolicyID: "TRV/2024/001"})
	require.NoError(t, err)
	assert.Equal(t, "TRV/2024/001", rec.PolicyDetails["policy_number"])
}

func TestPostgresStore_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT record FROM user_policies ORDER BY id`).
		WillReturnRows(sqlmock.NewRows([]string{"record"}))

	store := NewPostgresStore(db, logger.NewNoOpLogger())
	_, err = store.FindPolicy(context.Background(), Query{PolicyID: "XX"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPostgresStore_EmptyQueryShortCircuits(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store := NewPostgresStore(db, logger.NewNoOpLogger())
	_, err = store.FindPolicy(context.Background(), Query{})
	assert.ErrorIs(t, err, ErrNotFound)
}
