package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"diet-service/models"

	"github.com/umakantv/go-utils/errs"
	"go.uber.org/zap"
)

// GetMealMetrics handles GET /meals/metrics - adherence totals and the best
// consecutive on-diet streak for the session's user. The streak is evaluated
// over the meals ordered by event time descending.
func (h *MealHandler) GetMealMetrics(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	userID, ok := h.resolveUser(ctx, w, r)
	if !ok {
		return
	}

	logRequest(ctx, "info", "Computing meal metrics", zap.String("user_id", userID))

	cacheKey := metricsKeyPrefix + userID
	if cached, err := h.cache.Get(cacheKey); err == nil {
		if response, ok := cachedBytes(cached); ok {
			logRequest(ctx, "debug", "Serving metrics from cache")
			w.Header().Set("Content-Type", "application/json")
			w.Write(response)
			return
		}
	}

	var meals []models.Meal
	err := h.db.Select(&meals, "SELECT id, user_id, meal_name, description, date_and_time, on_diet, created_at FROM meals WHERE user_id = ? ORDER BY date_and_time DESC", userID)
	if err != nil {
		logRequest(ctx, "error", "Failed to query meals for metrics", zap.Error(err))
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(errs.NewInternalServerError("Database error"))
		return
	}

	metrics := models.ComputeMealMetrics(meals)

	response, _ := json.Marshal(map[string]interface{}{"metrics": metrics})
	h.cache.Set(cacheKey, string(response), 5*time.Minute)

	logRequest(ctx, "info", "Metrics computed",
		zap.Int("count", metrics.Count),
		zap.Int("best_on_diet_sequence", metrics.BestOnDietSequence))

	w.Header().Set("Content-Type", "application/json")
	w.Write(response)
}
