package search

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestPGStoreSearchFansOut(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("FROM artists ar")).
		WithArgs("%blue%", 5).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "album_count"}).AddRow(1, "Blue Note", 2))
	mock.ExpectQuery(regexp.QuoteMeta("FROM albums al")).
		WithArgs("%blue%", 5).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "artist", "year", "cover"}).
			AddRow(4, "Blue Train", "Blue Note", 1957, "albums/train.jpg"))
	mock.ExpectQuery(regexp.QuoteMeta("FROM songs s")).
		WithArgs("%blue%", 5).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "artist", "album", "cover", "premium"}).
			AddRow(9, "Moment's Notice", "Blue Note", "Blue Train", "albums/train.jpg", true))

	results, err := NewPGStore(db).Search(context.Background(), "blue", 5)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results.Artists) != 1 || results.Artists[0].AlbumCount != 2 {
		t.Fatalf("unexpected artists %+v", results.Artists)
	}
	if len(results.Albums) != 1 || results.Albums[0].ReleaseYear != 1957 {
		t.Fatalf("unexpected albums %+v", results.Albums)
	}
	if len(results.Songs) != 1 || !results.Songs[0].Premium {
		t.Fatalf("unexpected songs %+v", results.Songs)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPGStoreSearchEscapesWildcards(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	for _, from := range []string{"FROM artists ar", "FROM albums al", "FROM songs s"} {
		mock.ExpectQuery(regexp.QuoteMeta(from)).
			WithArgs(`%50\%%`, 3).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))
	}

	results, err := NewPGStore(db).Search(context.Background(), "50%", 3)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results.Artists)+len(results.Albums)+len(results.Songs) != 0 {
		t.Fatalf("expected no results, got %+v", results)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

type stubStore struct {
	results   Results
	err       error
	lastQuery string
	lastLimit int
}

func (s *stubStore) Search(_ context.Context, query string, limit int) (Results, error) {
	s.lastQuery = query
	s.lastLimit = limit
	return s.results, s.err
}

func TestHandlerBuildsSections(t *testing.T) {
	st := &stubStore{results: Results{
		Albums: []AlbumResult{{ID: 4, Name: "Blue Train", Artist: "Blue Note", ReleaseYear: 1957, CoverImage: "albums/train.jpg"}},
		Songs:  []SongResult{{ID: 9, Name: "Moment's Notice", Artist: "Blue Note"}},
	}}

	rec := httptest.NewRecorder()
	NewHandler(st).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/search?q=%20blue%20&limit=500", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if st.lastQuery != "blue" || st.lastLimit != maxLimit {
		t.Fatalf("unexpected store call %q/%d", st.lastQuery, st.lastLimit)
	}

	var resp Response
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Sections) != 2 || resp.Sections[0].Name != "albums" || resp.Sections[1].Name != "songs" {
		t.Fatalf("unexpected sections %+v", resp.Sections)
	}
	album := resp.Sections[0].Items[0]
	if album.Subtitle != "Blue Note • 1957" || album.Thumbnail != "/media/albums/train.jpg" || album.Href != "/api/v1/albums/4" {
		t.Fatalf("unexpected album item %+v", album)
	}
}

func TestHandlerEmptyQuery(t *testing.T) {
	st := &stubStore{}
	rec := httptest.NewRecorder()
	NewHandler(st).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/search?q=", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if st.lastQuery != "" {
		t.Fatalf("store should not be queried")
	}
}

func TestHandlerStoreFailure(t *testing.T) {
	st := &stubStore{err: errors.New("connection reset")}
	rec := httptest.NewRecorder()
	NewHandler(st).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/search?q=x", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}
