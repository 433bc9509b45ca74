package handlers

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Session cookie parameters. The token is issued once at registration and
// carried by the browser on every subsequent request.
const (
	SessionCookieName = "sessionId"
	sessionCookieTTL  = 7 * 24 * 60 * 60 // seconds
)

// ErrUserNotFound signals a session token that no user owns.
var ErrUserNotFound = errors.New("user not found")

// genSessionID generates a unique session token for cookies
func genSessionID() string {
	return uuid.New().String()
}

// setSessionCookie issues the session cookie with root path scope and a
// 7-day expiry.
func setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		MaxAge:   sessionCookieTTL,
	})
}

// resolveUserID maps the request's session cookie to the owning user id.
// The lookup is read-only; a missing cookie or a token no user owns resolves
// to ErrUserNotFound.
func resolveUserID(db *sqlx.DB, r *http.Request) (string, error) {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil || cookie.Value == "" {
		return "", ErrUserNotFound
	}

	var userID string
	err = db.QueryRow("SELECT id FROM users WHERE session_id = ? LIMIT 1", cookie.Value).Scan(&userID)
	if err == sql.ErrNoRows {
		return "", ErrUserNotFound
	}
	if err != nil {
		return "", err
	}
	return userID, nil
}
