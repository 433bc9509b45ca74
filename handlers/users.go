package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"diet-service/models"

	"github.com/jmoiron/sqlx"
	"github.com/umakantv/go-utils/cache"
	"github.com/umakantv/go-utils/errs"
	"go.uber.org/zap"
)

const usersListKeyPrefix = "users:list:"

// UserHandler handles registration and session-scoped user listing
type UserHandler struct {
	db    *sqlx.DB
	cache cache.Cache
}

// NewUserHandler creates a new user handler
func NewUserHandler(db *sqlx.DB, cache cache.Cache) *UserHandler {
	return &UserHandler{
		db:    db,
		cache: cache,
	}
}

// CreateUser handles POST /users - register a user and issue the session
// cookie. A request that already carries a valid cookie re-uses that token
// for the new user and gets no new Set-Cookie.
func (h *UserHandler) CreateUser(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	var req models.CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logRequest(ctx, "error", "Invalid request body", zap.Error(err))
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(errs.NewValidationError("Invalid JSON"))
		return
	}

	if req.Name == "" || req.Email == "" {
		logRequest(ctx, "error", "Missing required fields", zap.String("name", req.Name), zap.String("email", req.Email))
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(errs.NewValidationError("Name and email are required"))
		return
	}

	sessionID := ""
	if cookie, err := r.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
		sessionID = cookie.Value
	}
	if sessionID == "" {
		sessionID = genSessionID()
		setSessionCookie(w, sessionID)
	}

	userID := genSessionID()

	logRequest(ctx, "info", "Creating user", zap.String("name", req.Name), zap.String("email", req.Email))

	_, err := h.db.Exec("INSERT INTO users (id, name, email, session_id, created_at) VALUES (?, ?, ?, ?, ?)",
		userID, req.Name, req.Email, sessionID, time.Now().UTC())
	if err != nil {
		logRequest(ctx, "error", "Failed to create user", zap.Error(err))
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(errs.NewInternalServerError("Failed to create user"))
		return
	}

	// The same token may already have a cached user list
	h.cache.Delete(usersListKeyPrefix + sessionID)

	logRequest(ctx, "info", "User created successfully", zap.String("user_id", userID))

	w.WriteHeader(http.StatusCreated)
}

// GetUsers handles GET /users - list the users registered under the
// request's session token
func (h *UserHandler) GetUsers(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil || cookie.Value == "" {
		logRequest(ctx, "error", "No session cookie")
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(errs.NewAuthenticationError("Unauthorized"))
		return
	}

	logRequest(ctx, "info", "Listing users for session")

	cacheKey := usersListKeyPrefix + cookie.Value
	if cached, err := h.cache.Get(cacheKey); err == nil {
		if response, ok := cachedBytes(cached); ok {
			logRequest(ctx, "debug", "Serving users from cache")
			w.Header().Set("Content-Type", "application/json")
			w.Write(response)
			return
		}
	}

	var users []models.User
	err = h.db.Select(&users, "SELECT id, name, email, session_id, created_at FROM users WHERE session_id = ?", cookie.Value)
	if err != nil {
		logRequest(ctx, "error", "Failed to query users", zap.Error(err))
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(errs.NewInternalServerError("Database error"))
		return
	}

	response, _ := json.Marshal(map[string]interface{}{"users": users})
	h.cache.Set(cacheKey, string(response), 5*time.Minute)

	logRequest(ctx, "info", "Users retrieved successfully", zap.Int("count", len(users)))

	w.Header().Set("Content-Type", "application/json")
	w.Write(response)
}

// cachedBytes normalizes a cache hit to the raw JSON payload. Responses are
// stored as strings because the redis cache json-encodes values at rest: a
// string survives that round-trip byte-identical, a []byte comes back
// base64-mangled. The memory cache hands the stored string back as-is.
func cachedBytes(v interface{}) ([]byte, bool) {
	switch raw := v.(type) {
	case []byte:
		return raw, true
	case string:
		return []byte(raw), true
	}
	return nil, false
}
