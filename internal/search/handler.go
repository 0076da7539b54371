package search

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"tunebox/internal/logging"
)

const (
	defaultLimit = 10
	maxLimit     = 50
)

// Handler responds to search requests backed by the Store.
type Handler struct {
	store Store
}

// NewHandler builds a handler using the provided store implementation.
func NewHandler(store Store) http.Handler {
	return &Handler{store: store}
}

// Response models the payload returned by the search handler.
type Response struct {
	Sections []Section `json:"sections"`
}

// Section groups related search results.
type Section struct {
	Name  string `json:"name"`
	Items []Item `json:"items"`
}

// Item represents a single search result entry.
type Item struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Subtitle  string `json:"subtitle,omitempty"`
	Href      string `json:"href,omitempty"`
	Thumbnail string `json:"thumbnail,omitempty"`
	Premium   bool   `json:"premium,omitempty"`
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		writeJSON(w, http.StatusOK, Response{Sections: []Section{}})
		return
	}

	limit := defaultLimit
	if rawLimit := strings.TrimSpace(r.URL.Query().Get("limit")); rawLimit != "" {
		if parsed, err := strconv.Atoi(rawLimit); err == nil && parsed > 0 {
			limit = min(parsed, maxLimit)
		}
	}

	results, err := h.store.Search(r.Context(), query, limit)
	if err != nil {
		logging.WithContext(r.Context()).Error().Err(err).Msg("catalog search failed")
		writeJSON(w, http.StatusInternalServerError, Response{Sections: []Section{}})
		return
	}

	writeJSON(w, http.StatusOK, buildResponse(results))
}

func buildResponse(results Results) Response {
	sections := make([]Section, 0, 3)

	if len(results.Artists) > 0 {
		items := make([]Item, 0, len(results.Artists))
		for _, artist := range results.Artists {
			items = append(items, Item{
				ID:       idString(artist.ID),
				Title:    artist.Name,
				Subtitle: pluralize(artist.AlbumCount, "album"),
				Href:     "/api/v1/artists/" + idString(artist.ID),
			})
		}
		sections = append(sections, Section{Name: "artists", Items: items})
	}

	if len(results.Albums) > 0 {
		items := make([]Item, 0, len(results.Albums))
		for _, album := range results.Albums {
			subtitle := album.Artist
			if album.ReleaseYear > 0 {
				subtitle = subtitle + " • " + strconv.Itoa(album.ReleaseYear)
			}
			items = append(items, Item{
				ID:        idString(album.ID),
				Title:     album.Name,
				Subtitle:  subtitle,
				Href:      "/api/v1/albums/" + idString(album.ID),
				Thumbnail: mediaHref(album.CoverImage),
			})
		}
		sections = append(sections, Section{Name: "albums", Items: items})
	}

	if len(results.Songs) > 0 {
		items := make([]Item, 0, len(results.Songs))
		for _, song := range results.Songs {
			subtitle := song.Artist
			if song.Album != "" {
				subtitle = subtitle + " • " + song.Album
			}
			items = append(items, Item{
				ID:        idString(song.ID),
				Title:     song.Name,
				Subtitle:  subtitle,
				Href:      "/api/v1/songs/" + idString(song.ID),
				Thumbnail: mediaHref(song.CoverImage),
				Premium:   song.Premium,
			})
		}
		sections = append(sections, Section{Name: "songs", Items: items})
	}

	return Response{Sections: sections}
}

// mediaHref turns a stored media reference into its public path.
func mediaHref(ref string) string {
	if ref == "" {
		return ""
	}
	return "/media/" + ref
}

func writeJSON(w http.ResponseWriter, status int, payload Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func pluralize(count int, singular string) string {
	switch count {
	case 0:
		return ""
	case 1:
		return "1 " + singular
	default:
		return strconv.Itoa(count) + " " + singular + "s"
	}
}
