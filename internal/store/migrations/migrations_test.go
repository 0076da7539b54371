package migrations

import (
	"regexp"
	"strings"
	"testing"
)

func upSchema(t *testing.T) string {
	t.Helper()
	raw, err := FS.ReadFile("000001_init_schema.up.sql")
	if err != nil {
		t.Fatalf("read up migration: %v", err)
	}
	return strings.Join(strings.Fields(string(raw)), " ")
}

// tableBody returns the column list of a CREATE TABLE statement.
func tableBody(t *testing.T, schema, table string) string {
	t.Helper()
	re := regexp.MustCompile(`CREATE TABLE IF NOT EXISTS ` + table + ` \((.*?)\);`)
	m := re.FindStringSubmatch(schema)
	if m == nil {
		t.Fatalf("table %s not found in schema", table)
	}
	return m[1]
}

func TestForeignKeyDeleteRules(t *testing.T) {
	schema := upSchema(t)

	tests := []struct {
		table  string
		column string
		parent string
		rule   string
	}{
		{table: "songs", column: "album_id", parent: "albums", rule: "SET NULL"},
		{table: "songs", column: "artist_id", parent: "artists", rule: "CASCADE"},
		{table: "albums", column: "artist_id", parent: "artists", rule: "CASCADE"},
		{table: "playlists", column: "user_id", parent: "users", rule: "CASCADE"},
		{table: "playlist_songs", column: "playlist_id", parent: "playlists", rule: "CASCADE"},
		{table: "playlist_songs", column: "song_id", parent: "songs", rule: "CASCADE"},
		{table: "messages", column: "sender_id", parent: "users", rule: "CASCADE"},
		{table: "messages", column: "receiver_id", parent: "users", rule: "CASCADE"},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.table+"."+tc.column, func(t *testing.T) {
			body := tableBody(t, schema, tc.table)
			re := regexp.MustCompile(`(?:^|, )` + tc.column + ` [^,]*REFERENCES ` + tc.parent + ` \(id\) ON DELETE ([A-Z ]+?)(?:,|$)`)
			m := re.FindStringSubmatch(body)
			if m == nil {
				t.Fatalf("%s.%s does not reference %s(id) with a delete rule", tc.table, tc.column, tc.parent)
			}
			if m[1] != tc.rule {
				t.Fatalf("%s.%s: expected ON DELETE %s, got ON DELETE %s", tc.table, tc.column, tc.rule, m[1])
			}
		})
	}
}

func TestSongAlbumIsOptional(t *testing.T) {
	body := tableBody(t, upSchema(t), "songs")
	if regexp.MustCompile(`album_id [^,]*NOT NULL`).MatchString(body) {
		t.Fatalf("songs.album_id must be nullable so album deletion can clear it")
	}
}

func TestPlaylistSongsUniquePair(t *testing.T) {
	body := tableBody(t, upSchema(t), "playlist_songs")
	if !strings.Contains(body, "CONSTRAINT playlist_songs_playlist_song_key UNIQUE (playlist_id, song_id)") {
		t.Fatalf("playlist_songs is missing the (playlist_id, song_id) unique constraint: %s", body)
	}
}

func TestDownMigrationDropsEveryTable(t *testing.T) {
	raw, err := FS.ReadFile("000001_init_schema.down.sql")
	if err != nil {
		t.Fatalf("read down migration: %v", err)
	}
	down := string(raw)
	for _, table := range []string{"payment_transactions", "messages", "playlist_songs", "playlists", "songs", "albums", "artists", "users"} {
		if !strings.Contains(down, "DROP TABLE IF EXISTS "+table) {
			t.Errorf("down migration does not drop %s", table)
		}
	}
}
