// file: model/token.go

package model

import "time"

// RefreshToken holds the data for a refresh token in the database.
// Rows are never updated: login inserts, logout or a failed refresh deletes.
type RefreshToken struct {
	ID        int       `json:"id"`
	UserID    int       `json:"user_id"`
	TokenHash string    `json:"-"` // SHA-256 of the signed token; the token itself is never stored.
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}
