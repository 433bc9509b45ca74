package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"diet-service/models"
)

func TestMealMetricsScenario(t *testing.T) {
	env := newTestEnv(t)
	cookie := registerUser(t, env, "John Doe", "johndoe@gmail.com")

	createMeal(t, env, cookie, "Breakfast", "It's a breakfast", "2021-01-01T08:00:00Z", models.OnDietYes)
	createMeal(t, env, cookie, "Lunch", "It's a lunch", "2021-01-01T12:00:00Z", models.OnDietNo)
	createMeal(t, env, cookie, "Snack", "It's a snack", "2021-01-01T15:00:00Z", models.OnDietYes)
	createMeal(t, env, cookie, "Dinner", "It's a dinner", "2021-01-01T20:00:00Z", models.OnDietYes)
	createMeal(t, env, cookie, "Breakfast", "It's a breakfast", "2021-01-02T08:00:00Z", models.OnDietYes)

	metrics := getMetrics(t, env, cookie)
	want := models.MealMetrics{Count: 5, CountOnDiet: 4, CountNotOnDiet: 1, BestOnDietSequence: 3}
	if metrics != want {
		t.Fatalf("metrics = %+v, want %+v", metrics, want)
	}
}

func TestMealMetricsEmpty(t *testing.T) {
	env := newTestEnv(t)
	cookie := registerUser(t, env, "John Doe", "johndoe@gmail.com")

	if metrics := getMetrics(t, env, cookie); metrics != (models.MealMetrics{}) {
		t.Fatalf("metrics = %+v, want all zeros", metrics)
	}
}

func TestMealMetricsRefreshAfterWrite(t *testing.T) {
	env := newTestEnv(t)
	cookie := registerUser(t, env, "John Doe", "johndoe@gmail.com")

	createMeal(t, env, cookie, "Breakfast", "It's a breakfast", "2021-01-01T08:00:00Z", models.OnDietYes)
	if metrics := getMetrics(t, env, cookie); metrics.Count != 1 {
		t.Fatalf("count = %d, want 1", metrics.Count)
	}

	// A write must invalidate the cached metrics response.
	createMeal(t, env, cookie, "Lunch", "It's a lunch", "2021-01-01T12:00:00Z", models.OnDietNo)
	metrics := getMetrics(t, env, cookie)
	if metrics.Count != 2 || metrics.CountNotOnDiet != 1 {
		t.Fatalf("stale metrics after write: %+v", metrics)
	}
}

func TestMealMetricsScopedToUser(t *testing.T) {
	env := newTestEnv(t)
	owner := registerUser(t, env, "John Doe", "johndoe@gmail.com")
	other := registerUser(t, env, "Jane Doe", "janedoe@gmail.com")

	createMeal(t, env, owner, "Breakfast", "It's a breakfast", "2021-01-01T08:00:00Z", models.OnDietYes)

	if metrics := getMetrics(t, env, other); metrics.Count != 0 {
		t.Fatalf("metrics leaked across users: %+v", metrics)
	}
}

func getMetrics(t *testing.T, env *testEnv, cookie *http.Cookie) models.MealMetrics {
	t.Helper()

	w := httptest.NewRecorder()
	req := jsonRequest(t, http.MethodGet, "/meals/metrics", nil, cookie)
	env.meals.GetMealMetrics(context.Background(), w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("metrics status = %d: %s", w.Code, w.Body.String())
	}

	var out struct {
		Metrics models.MealMetrics `json:"metrics"`
	}
	if err := json.NewDecoder(w.Body).Decode(&out); err != nil {
		t.Fatalf("decode metrics: %v", err)
	}
	return out.Metrics
}
