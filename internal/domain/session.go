package domain

import "time"

// Session binds an authenticated user to a client.
type Session struct {
	ID        string     `json:"id"`
	User      PublicUser `json:"user"`
	CreatedAt time.Time  `json:"created_at"`
}
