package models

import "time"

// User is a listener account. The credential hash never leaves the store.
type User struct {
	ID        int64     `json:"id" db:"id"`
	Username  string    `json:"username" db:"username"`
	Email     string    `json:"email" db:"email"`
	Active    bool      `json:"status" db:"status"`
	IsPremium bool      `json:"isPremium" db:"is_premium"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// UserInput carries the writable user fields for create and update.
// Password is only honoured on create; use the change-password flow afterwards.
type UserInput struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password,omitempty"`
	Active    *bool  `json:"status,omitempty"`
	IsPremium *bool  `json:"isPremium,omitempty"`
}
