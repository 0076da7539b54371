package store

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"tunebox/internal/models"
)

func TestGrantPremium(t *testing.T) {
	lockUser := regexp.QuoteMeta(`WHERE id = $1 FOR UPDATE`)
	insertLedger := regexp.QuoteMeta(`ON CONFLICT (txn_ref) DO NOTHING`)
	setPremium := regexp.QuoteMeta(`SET is_premium = TRUE`)
	rec := models.PaymentRecord{TxnRef: "7_1690000000", UserID: 7, Amount: 5000000, ResponseCode: "00"}

	userRow := func() *sqlmock.Rows {
		return sqlmock.NewRows(userRowColumns).AddRow(int64(7), "u7", "u7@example.com", time.Now(), statusActive, false)
	}

	t.Run("first confirmation grants premium", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectBegin()
		mock.ExpectQuery(lockUser).WithArgs(int64(7)).WillReturnRows(userRow())
		mock.ExpectExec(insertLedger).
			WithArgs("7_1690000000", int64(7), int64(5000000), "00").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(setPremium).WithArgs(int64(7)).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		user, replayed, err := s.GrantPremium(context.Background(), rec)
		if err != nil {
			t.Fatalf("GrantPremium returned error: %v", err)
		}
		if replayed || !user.IsPremium {
			t.Fatalf("expected fresh premium grant, got replayed=%v user=%+v", replayed, user)
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Fatalf("unmet expectations: %v", err)
		}
	})

	t.Run("replayed reference changes nothing", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectBegin()
		mock.ExpectQuery(lockUser).WithArgs(int64(7)).WillReturnRows(userRow())
		mock.ExpectExec(insertLedger).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		_, replayed, err := s.GrantPremium(context.Background(), rec)
		if err != nil {
			t.Fatalf("GrantPremium returned error: %v", err)
		}
		if !replayed {
			t.Fatalf("expected replay to be reported")
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Fatalf("unmet expectations: %v", err)
		}
	})

	t.Run("deleted user is not found", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectBegin()
		mock.ExpectQuery(lockUser).WithArgs(int64(7)).WillReturnError(sql.ErrNoRows)
		mock.ExpectRollback()

		if _, _, err := s.GrantPremium(context.Background(), rec); !errors.Is(err, ErrUserNotFound) {
			t.Fatalf("expected ErrUserNotFound, got %v", err)
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Fatalf("unmet expectations: %v", err)
		}
	})
}
