package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	cachepackage "diet-service/cache"
	"diet-service/config"
	"diet-service/database"
	"diet-service/models"

	"github.com/umakantv/go-utils/logger"
)

func TestMain(m *testing.M) {
	logger.Init(logger.LoggerConfig{
		CallerKey:  "file",
		TimeKey:    "timestamp",
		CallerSkip: 1,
	})
	os.Exit(m.Run())
}

type testEnv struct {
	users *UserHandler
	meals *MealHandler
}

// newTestEnv builds handlers over a fresh sqlite file and a memory cache.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	cfg := config.Config{
		DBPath:        filepath.Join(t.TempDir(), "test.db"),
		MigrationsDir: "../database/migrations",
		CacheType:     "memory",
	}

	dbConn := database.InitializeDatabase(cfg)
	t.Cleanup(func() { dbConn.Close() })

	c := cachepackage.InitializeCache(cfg)
	t.Cleanup(func() { c.Close() })

	return &testEnv{
		users: NewUserHandler(dbConn, c),
		meals: NewMealHandler(dbConn, c),
	}
}

func jsonRequest(t *testing.T, method, target string, payload any, cookie *http.Cookie) *http.Request {
	t.Helper()

	raw := []byte(nil)
	if payload != nil {
		var err error
		raw, err = json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
	}
	req := httptest.NewRequest(method, target, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	return req
}

func registerUser(t *testing.T, env *testEnv, name, email string) *http.Cookie {
	t.Helper()

	w := httptest.NewRecorder()
	req := jsonRequest(t, http.MethodPost, "/users", map[string]string{"name": name, "email": email}, nil)
	env.users.CreateUser(context.Background(), w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("register status = %d: %s", w.Code, w.Body.String())
	}
	cookies := w.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("no session cookie set on registration")
	}
	return cookies[0]
}

func createMeal(t *testing.T, env *testEnv, cookie *http.Cookie, name, description, dateAndTime, onDiet string) {
	t.Helper()

	w := httptest.NewRecorder()
	req := jsonRequest(t, http.MethodPost, "/meals", map[string]string{
		"meal_name":     name,
		"description":   description,
		"date_and_time": dateAndTime,
		"on_diet":       onDiet,
	}, cookie)
	env.meals.CreateMeal(context.Background(), w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("create meal status = %d: %s", w.Code, w.Body.String())
	}
}

func listMeals(t *testing.T, env *testEnv, cookie *http.Cookie) []models.Meal {
	t.Helper()

	w := httptest.NewRecorder()
	req := jsonRequest(t, http.MethodGet, "/meals", nil, cookie)
	env.meals.GetMeals(context.Background(), w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("list meals status = %d: %s", w.Code, w.Body.String())
	}
	var out struct {
		Meals []models.Meal `json:"meals"`
	}
	if err := json.NewDecoder(w.Body).Decode(&out); err != nil {
		t.Fatalf("decode meals: %v", err)
	}
	return out.Meals
}
