package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWaitForDatabaseRetriesUntilReady(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectPing().WillReturnError(errors.New("connection refused"))
	mock.ExpectPing()

	require.NoError(t, waitForDatabase(context.Background(), db, 5*time.Second))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWaitForDatabaseGivesUpAfterWindow(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectPing().WillReturnError(errors.New("connection refused"))

	start := time.Now()
	err = waitForDatabase(context.Background(), db, 50*time.Millisecond)
	require.Error(t, err)
	assert.ErrorContains(t, err, "connection refused")
	assert.Less(t, time.Since(start), initialBackoff)
}

func TestWaitForDatabaseStopsOnCancel(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectPing().WillReturnError(errors.New("connection refused"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, waitForDatabase(ctx, db, time.Minute))
}
