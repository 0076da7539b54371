package models

// Totals summarises catalog and audience size for the admin dashboard.
type Totals struct {
	Songs        int64 `json:"total_songs"`
	Users        int64 `json:"total_users"`
	PremiumUsers int64 `json:"total_premium_users"`
	Artists      int64 `json:"total_artists"`
	Albums       int64 `json:"total_albums"`
	Playlists    int64 `json:"total_playlists"`
}

// DailyCount is the number of users created on one calendar date.
type DailyCount struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}
