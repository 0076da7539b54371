package store

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"tunebox/internal/models"
)

func TestTotals(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectQuery(regexp.QuoteMeta(`(SELECT COUNT(*) FROM users WHERE is_premium)`)).
		WillReturnRows(sqlmock.NewRows([]string{"songs", "users", "premium", "artists", "albums", "playlists"}).
			AddRow(int64(10), int64(4), int64(1), int64(3), int64(2), int64(5)))

	totals, err := s.Totals(context.Background())
	if err != nil {
		t.Fatalf("Totals returned error: %v", err)
	}
	want := models.Totals{Songs: 10, Users: 4, PremiumUsers: 1, Artists: 3, Albums: 2, Playlists: 5}
	if totals != want {
		t.Fatalf("expected %+v, got %+v", want, totals)
	}
}

func TestUsersByDate(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectQuery(regexp.QuoteMeta(`GROUP BY day ORDER BY day ASC`)).
		WillReturnRows(sqlmock.NewRows([]string{"day", "count"}).
			AddRow("2024-01-01", int64(2)).
			AddRow("2024-01-03", int64(1)))

	counts, err := s.UsersByDate(context.Background())
	if err != nil {
		t.Fatalf("UsersByDate returned error: %v", err)
	}
	want := []models.DailyCount{{Date: "2024-01-01", Count: 2}, {Date: "2024-01-03", Count: 1}}
	if len(counts) != len(want) || counts[0] != want[0] || counts[1] != want[1] {
		t.Fatalf("expected %+v, got %+v", want, counts)
	}
}

func TestUsersByDateEmpty(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectQuery(regexp.QuoteMeta(`FROM users`)).
		WillReturnRows(sqlmock.NewRows([]string{"day", "count"}))

	counts, err := s.UsersByDate(context.Background())
	if err != nil {
		t.Fatalf("UsersByDate returned error: %v", err)
	}
	if counts == nil || len(counts) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", counts)
	}
}
