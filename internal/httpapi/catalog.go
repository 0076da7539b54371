package httpapi

import (
	"net/http"
	"strings"

	"tunebox/internal/models"
)

func (s *Server) listSongs(w http.ResponseWriter, r *http.Request) {
	albumID, err := queryID(r, "album_id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	filter := models.SongFilter{
		Search:  strings.TrimSpace(r.URL.Query().Get("search")),
		AlbumID: albumID,
	}

	songs, err := s.songs.List(r.Context(), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Songs []models.Song `json:"songs"`
	}{Songs: songs})
}

func (s *Server) getSong(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	song, err := s.songs.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, song)
}

func songInput(f *fields) models.SongInput {
	return models.SongInput{
		Name:     f.str("name"),
		ArtistID: f.int64("artist_id"),
		AlbumID:  f.optionalInt64("album_id"),
		Duration: f.int("duration"),
		Active:   f.optionalBool("status"),
		Premium:  f.optionalBool("premium"),
		Lyrics:   f.optionalStr("lyrics"),
	}
}

func (s *Server) createSong(w http.ResponseWriter, r *http.Request) {
	cleanup, err := s.parseForm(w, r)
	defer cleanup()
	if err != nil {
		writeError(w, r, err)
		return
	}

	f := formFields(r)
	in := songInput(f)
	if err := f.err(); err != nil {
		writeError(w, r, err)
		return
	}

	file, closeUpload, err := formFile(r, "song")
	if err != nil {
		writeError(w, r, invalid(err.Error()))
		return
	}
	defer closeUpload()
	if file == nil {
		writeError(w, r, invalid("song file is required"))
		return
	}

	song, err := s.songs.Create(r.Context(), in, file)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, song)
}

func (s *Server) updateSong(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	cleanup, err := s.parseForm(w, r)
	defer cleanup()
	if err != nil {
		writeError(w, r, err)
		return
	}

	f := formFields(r)
	in := songInput(f)
	if err := f.err(); err != nil {
		writeError(w, r, err)
		return
	}

	file, closeUpload, err := formFile(r, "song")
	if err != nil {
		writeError(w, r, invalid(err.Error()))
		return
	}
	defer closeUpload()

	song, err := s.songs.Update(r.Context(), id, in, file)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, song)
}

func (s *Server) deleteSong(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.songs.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) playSong(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	count, err := s.songs.Play(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		PlayCount int64 `json:"play_count"`
	}{PlayCount: count})
}

func (s *Server) listAlbums(w http.ResponseWriter, r *http.Request) {
	albums, err := s.albums.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Albums []models.Album `json:"albums"`
	}{Albums: albums})
}

func (s *Server) getAlbum(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	album, err := s.albums.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, album)
}

func (s *Server) albumSongs(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	songs, err := s.albums.Songs(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Songs []models.Song `json:"songs"`
	}{Songs: songs})
}

func albumInput(f *fields) models.AlbumInput {
	return models.AlbumInput{
		Name:      f.str("name"),
		CreatedAt: f.date("created_at"),
		ArtistID:  f.int64("artist_id"),
		Active:    f.optionalBool("status"),
	}
}

func (s *Server) createAlbum(w http.ResponseWriter, r *http.Request) {
	cleanup, err := s.parseForm(w, r)
	defer cleanup()
	if err != nil {
		writeError(w, r, err)
		return
	}

	f := formFields(r)
	in := albumInput(f)
	if err := f.err(); err != nil {
		writeError(w, r, err)
		return
	}

	cover, closeUpload, err := formFile(r, "cover_image")
	if err != nil {
		writeError(w, r, invalid(err.Error()))
		return
	}
	defer closeUpload()

	album, err := s.albums.Create(r.Context(), in, cover)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, album)
}

func (s *Server) updateAlbum(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	cleanup, err := s.parseForm(w, r)
	defer cleanup()
	if err != nil {
		writeError(w, r, err)
		return
	}

	f := formFields(r)
	in := albumInput(f)
	if err := f.err(); err != nil {
		writeError(w, r, err)
		return
	}

	cover, closeUpload, err := formFile(r, "cover_image")
	if err != nil {
		writeError(w, r, invalid(err.Error()))
		return
	}
	defer closeUpload()

	album, err := s.albums.Update(r.Context(), id, in, cover)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, album)
}

func (s *Server) deleteAlbum(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.albums.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) toggleAlbum(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	active, err := s.albums.ToggleStatus(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Status bool `json:"status"`
	}{Status: active})
}

func (s *Server) listArtists(w http.ResponseWriter, r *http.Request) {
	artists, err := s.artists.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Artists []models.Artist `json:"artists"`
	}{Artists: artists})
}

func (s *Server) getArtist(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	artist, err := s.artists.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, artist)
}

func (s *Server) createArtist(w http.ResponseWriter, r *http.Request) {
	var in models.ArtistInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	artist, err := s.artists.Create(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, artist)
}

func (s *Server) updateArtist(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var in models.ArtistInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	artist, err := s.artists.Update(r.Context(), id, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, artist)
}

func (s *Server) toggleArtist(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	artist, err := s.artists.ToggleStatus(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, artist)
}
