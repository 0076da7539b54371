package httpapi

import (
	"net/http"
	"strings"

	"tunebox/internal/models"
)

type addSongRequest struct {
	SongID int64 `json:"song_id"`
}

func (s *Server) listPlaylists(w http.ResponseWriter, r *http.Request) {
	userID, err := queryID(r, "user_id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	playlists, err := s.playlists.List(r.Context(), models.PlaylistFilter{
		UserID: userID,
		Search: strings.TrimSpace(r.URL.Query().Get("search")),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Playlists []models.Playlist `json:"playlists"`
	}{Playlists: playlists})
}

func (s *Server) getPlaylist(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	playlist, err := s.playlists.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, playlist)
}

func playlistInput(f *fields) models.PlaylistInput {
	return models.PlaylistInput{
		Name:        f.str("name"),
		UserID:      f.int64("user_id"),
		Description: f.optionalStr("description"),
		Active:      f.optionalBool("status"),
	}
}

func (s *Server) createPlaylist(w http.ResponseWriter, r *http.Request) {
	cleanup, err := s.parseForm(w, r)
	defer cleanup()
	if err != nil {
		writeError(w, r, err)
		return
	}

	f := formFields(r)
	in := playlistInput(f)
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

	playlist, err := s.playlists.Create(r.Context(), in, cover)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, playlist)
}

func (s *Server) updatePlaylist(w http.ResponseWriter, r *http.Request) {
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
	in := playlistInput(f)
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

	playlist, err := s.playlists.Update(r.Context(), id, in, cover)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, playlist)
}

func (s *Server) deletePlaylist(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.playlists.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) playlistSongs(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	entries, err := s.playlists.Songs(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Songs []models.PlaylistSong `json:"songs"`
	}{Songs: entries})
}

func (s *Server) addPlaylistSong(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req addSongRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.SongID <= 0 {
		writeError(w, r, invalid("song_id is required"))
		return
	}

	entry, err := s.playlists.AddSong(r.Context(), id, req.SongID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

func (s *Server) removePlaylistSong(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	songID, err := pathID(r, "songID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.playlists.RemoveSong(r.Context(), id, songID); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
