package handlers

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"diet-service/models"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
	"github.com/umakantv/go-utils/cache"
	"github.com/umakantv/go-utils/errs"
	"go.uber.org/zap"
)

const (
	mealsListKeyPrefix = "meals:list:"
	mealKeyPrefix      = "meal:"
	metricsKeyPrefix   = "metrics:"
)

// MealHandler handles meal CRUD and metrics, always scoped to the user the
// session token resolves to.
type MealHandler struct {
	db    *sqlx.DB
	cache cache.Cache
}

// NewMealHandler creates a new meal handler
func NewMealHandler(db *sqlx.DB, cache cache.Cache) *MealHandler {
	return &MealHandler{
		db:    db,
		cache: cache,
	}
}

// resolveUser wraps resolveUserID with the shared 404/500 responses. The
// bool reports whether the caller may proceed.
func (h *MealHandler) resolveUser(ctx context.Context, w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, err := resolveUserID(h.db, r)
	if err == ErrUserNotFound {
		logRequest(ctx, "info", "Session token matches no user")
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(errs.NewNotFoundError("User not found."))
		return "", false
	}
	if err != nil {
		logRequest(ctx, "error", "Failed to resolve session", zap.Error(err))
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(errs.NewInternalServerError("Database error"))
		return "", false
	}
	return userID, true
}

// invalidateMealCaches drops every cached response a meal write can affect.
func (h *MealHandler) invalidateMealCaches(userID, mealID string) {
	h.cache.Delete(mealsListKeyPrefix + userID)
	h.cache.Delete(metricsKeyPrefix + userID)
	if mealID != "" {
		h.cache.Delete(mealKeyPrefix + userID + ":" + mealID)
	}
}

// CreateMeal handles POST /meals - log a meal for the session's user.
// Validation runs before the session is resolved so malformed payloads never
// touch the store.
func (h *MealHandler) CreateMeal(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	var req models.CreateMealRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logRequest(ctx, "error", "Invalid request body", zap.Error(err))
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(errs.NewValidationError("Invalid JSON"))
		return
	}

	if req.MealName == "" || req.Description == "" {
		logRequest(ctx, "error", "Missing required fields", zap.String("meal_name", req.MealName))
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(errs.NewValidationError("meal_name and description are required"))
		return
	}
	if !models.ValidOnDiet(req.OnDiet) {
		logRequest(ctx, "error", "Invalid on_diet value", zap.String("on_diet", req.OnDiet))
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(errs.NewValidationError("on_diet must be Yes or No"))
		return
	}
	eatenAt, err := time.Parse(time.RFC3339, req.DateAndTime)
	if err != nil {
		logRequest(ctx, "error", "Invalid date_and_time", zap.String("date_and_time", req.DateAndTime))
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(errs.NewValidationError("date_and_time must be a valid RFC 3339 timestamp"))
		return
	}

	userID, ok := h.resolveUser(ctx, w, r)
	if !ok {
		return
	}

	mealID := uuid.New().String()

	logRequest(ctx, "info", "Creating meal", zap.String("user_id", userID), zap.String("meal_name", req.MealName))

	_, err = h.db.Exec("INSERT INTO meals (id, user_id, meal_name, description, date_and_time, on_diet, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		mealID, userID, req.MealName, req.Description, eatenAt.UTC(), req.OnDiet, time.Now().UTC())
	if err != nil {
		logRequest(ctx, "error", "Failed to create meal", zap.Error(err))
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(errs.NewInternalServerError("Failed to create meal"))
		return
	}

	h.invalidateMealCaches(userID, "")

	logRequest(ctx, "info", "Meal created successfully", zap.String("meal_id", mealID))

	w.WriteHeader(http.StatusCreated)
}

// GetMeals handles GET /meals - list the user's meals ordered by event time
// ascending
func (h *MealHandler) GetMeals(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	userID, ok := h.resolveUser(ctx, w, r)
	if !ok {
		return
	}

	logRequest(ctx, "info", "Listing meals", zap.String("user_id", userID))

	cacheKey := mealsListKeyPrefix + userID
	if cached, err := h.cache.Get(cacheKey); err == nil {
		if response, ok := cachedBytes(cached); ok {
			logRequest(ctx, "debug", "Serving meals from cache")
			w.Header().Set("Content-Type", "application/json")
			w.Write(response)
			return
		}
	}

	var meals []models.Meal
	err := h.db.Select(&meals, "SELECT id, user_id, meal_name, description, date_and_time, on_diet, created_at FROM meals WHERE user_id = ? ORDER BY date_and_time ASC", userID)
	if err != nil {
		logRequest(ctx, "error", "Failed to query meals", zap.Error(err))
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(errs.NewInternalServerError("Database error"))
		return
	}

	response, _ := json.Marshal(map[string]interface{}{"meals": meals})
	h.cache.Set(cacheKey, string(response), 5*time.Minute)

	logRequest(ctx, "info", "Meals retrieved successfully", zap.Int("count", len(meals)))

	w.Header().Set("Content-Type", "application/json")
	w.Write(response)
}

// GetMeal handles GET /meals/{id} - fetch one meal owned by the user.
// A meal that does not exist or belongs to someone else yields a null body,
// not an error.
func (h *MealHandler) GetMeal(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	userID, ok := h.resolveUser(ctx, w, r)
	if !ok {
		return
	}

	vars := mux.Vars(r)
	mealID := vars["id"]

	logRequest(ctx, "info", "Getting meal", zap.String("meal_id", mealID))

	cacheKey := mealKeyPrefix + userID + ":" + mealID
	if cached, err := h.cache.Get(cacheKey); err == nil {
		if response, ok := cachedBytes(cached); ok {
			logRequest(ctx, "debug", "Serving meal from cache", zap.String("meal_id", mealID))
			w.Header().Set("Content-Type", "application/json")
			w.Write(response)
			return
		}
	}

	var meal models.Meal
	err := h.db.Get(&meal, "SELECT id, user_id, meal_name, description, date_and_time, on_diet, created_at FROM meals WHERE id = ? AND user_id = ?", mealID, userID)
	if err == sql.ErrNoRows {
		logRequest(ctx, "info", "Meal not found", zap.String("meal_id", mealID))
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{"meals": nil})
		return
	}
	if err != nil {
		logRequest(ctx, "error", "Failed to query meal", zap.Error(err), zap.String("meal_id", mealID))
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(errs.NewInternalServerError("Database error"))
		return
	}

	response, _ := json.Marshal(map[string]interface{}{"meals": meal})
	h.cache.Set(cacheKey, string(response), 10*time.Minute)

	logRequest(ctx, "info", "Meal retrieved successfully", zap.String("meal_id", mealID))

	w.Header().Set("Content-Type", "application/json")
	w.Write(response)
}

// UpdateMeal handles PUT /meals/{id} - partial update of an owned meal.
// A row that matches neither the id nor the owner is a silent no-op; the
// response is 204 either way.
func (h *MealHandler) UpdateMeal(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	mealID := vars["id"]

	var req models.UpdateMealRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logRequest(ctx, "error", "Invalid request body", zap.Error(err))
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(errs.NewValidationError("Invalid JSON"))
		return
	}

	logRequest(ctx, "info", "Updating meal", zap.String("meal_id", mealID))

	// Build update query dynamically
	setParts := []string{}
	args := []interface{}{}

	if req.MealName != "" {
		setParts = append(setParts, "meal_name = ?")
		args = append(args, req.MealName)
	}
	if req.Description != "" {
		setParts = append(setParts, "description = ?")
		args = append(args, req.Description)
	}
	if req.DateAndTime != "" {
		eatenAt, err := time.Parse(time.RFC3339, req.DateAndTime)
		if err != nil {
			logRequest(ctx, "error", "Invalid date_and_time", zap.String("date_and_time", req.DateAndTime))
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(errs.NewValidationError("date_and_time must be a valid RFC 3339 timestamp"))
			return
		}
		setParts = append(setParts, "date_and_time = ?")
		args = append(args, eatenAt.UTC())
	}
	if req.OnDiet != "" {
		if !models.ValidOnDiet(req.OnDiet) {
			logRequest(ctx, "error", "Invalid on_diet value", zap.String("on_diet", req.OnDiet))
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(errs.NewValidationError("on_diet must be Yes or No"))
			return
		}
		setParts = append(setParts, "on_diet = ?")
		args = append(args, req.OnDiet)
	}

	if len(setParts) == 0 {
		logRequest(ctx, "error", "No fields to update", zap.String("meal_id", mealID))
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(errs.NewValidationError("No fields to update"))
		return
	}

	userID, ok := h.resolveUser(ctx, w, r)
	if !ok {
		return
	}

	args = append(args, mealID, userID)

	query := "UPDATE meals SET " + strings.Join(setParts, ", ") + " WHERE id = ? AND user_id = ?"
	_, err := h.db.Exec(query, args...)
	if err != nil {
		logRequest(ctx, "error", "Failed to update meal", zap.Error(err), zap.String("meal_id", mealID))
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(errs.NewInternalServerError("Failed to update meal"))
		return
	}

	h.invalidateMealCaches(userID, mealID)

	logRequest(ctx, "info", "Meal update applied", zap.String("meal_id", mealID))

	w.WriteHeader(http.StatusNoContent)
}

// DeleteMeal handles DELETE /meals/{id} - remove an owned meal. Deleting an
// id the user does not own is a silent no-op.
func (h *MealHandler) DeleteMeal(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	userID, ok := h.resolveUser(ctx, w, r)
	if !ok {
		return
	}

	vars := mux.Vars(r)
	mealID := vars["id"]

	logRequest(ctx, "info", "Deleting meal", zap.String("meal_id", mealID))

	_, err := h.db.Exec("DELETE FROM meals WHERE id = ? AND user_id = ?", mealID, userID)
	if err != nil {
		logRequest(ctx, "error", "Failed to delete meal", zap.Error(err), zap.String("meal_id", mealID))
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(errs.NewInternalServerError("Failed to delete meal"))
		return
	}

	h.invalidateMealCaches(userID, mealID)

	logRequest(ctx, "info", "Meal delete applied", zap.String("meal_id", mealID))

	w.WriteHeader(http.StatusNoContent)
}
