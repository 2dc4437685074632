package service

import (
	"time"

	"golang.org/x/oauth2"
)

// Task is one row of the remote tasks table.
type Task struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	OwnerEmail  string    `json:"email"`
	CreatedAt   time.Time `json:"created_at"`
}

// Session is an authenticated identity: the owner email plus the token
// material needed to act as that user. The token is a standard OAuth2
// bearer/refresh pair issued by the backend's auth endpoint.
type Session struct {
	Email string       `json:"email"`
	Token oauth2.Token `json:"token"`
}

// Valid reports whether the session carries enough token material to be
// usable: a refresh token lets the client mint new access tokens even if
// the current one has expired.
func (s Session) Valid() bool {
	return s.Email != "" && (s.Token.RefreshToken != "" || s.Token.Valid())
}
