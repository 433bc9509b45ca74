package server

import (
	"context"
	"net/http"
	"os"

	cachepackage "diet-service/cache"
	"diet-service/config"
	"diet-service/database"
	"diet-service/handlers"

	"github.com/umakantv/go-utils/httpserver"
	"github.com/umakantv/go-utils/logger"
	"go.uber.org/zap"
)

// checkAuth gates "session" routes on the presence of the session cookie.
// Resolving the token to a user, and the 404 when no user owns it, stays in
// the handlers.
func checkAuth(r *http.Request) (bool, httpserver.RequestAuth) {
	cookie, err := r.Cookie(handlers.SessionCookieName)
	if err != nil || cookie.Value == "" {
		return false, httpserver.RequestAuth{}
	}

	return true, httpserver.RequestAuth{
		Type:   "session",
		Client: cookie.Value,
		Claims: map[string]interface{}{"session_id": cookie.Value},
	}
}

func StartServer() {
	// Initialize logger
	logger.Init(logger.LoggerConfig{
		CallerKey:  "file",
		TimeKey:    "timestamp",
		CallerSkip: 1,
	})

	logger.Info("Starting Diet Service...")

	cfg := config.Load()

	// Initialize database
	dbConn := database.InitializeDatabase(cfg)
	defer dbConn.Close()

	// Initialize cache
	cache := cachepackage.InitializeCache(cfg)
	defer cache.Close()

	// Initialize handlers
	userHandler := handlers.NewUserHandler(dbConn, cache)
	mealHandler := handlers.NewMealHandler(dbConn, cache)

	// Create HTTP server with session-cookie authentication
	server := httpserver.New(cfg.Port, checkAuth)

	// Register routes
	server.Register(httpserver.Route{
		Name:     "HealthCheck",
		Method:   "GET",
		Path:     "/health",
		AuthType: "none",
	}, httpserver.HandlerFunc(func(ctx context.Context, w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy", "service": "diet-service"}`))
	}))

	server.Register(httpserver.Route{
		Name:     "CreateUser",
		Method:   "POST",
		Path:     "/users",
		AuthType: "none",
	}, httpserver.HandlerFunc(userHandler.CreateUser))

	server.Register(httpserver.Route{
		Name:     "ListUsers",
		Method:   "GET",
		Path:     "/users",
		AuthType: "session",
	}, httpserver.HandlerFunc(userHandler.GetUsers))

	// /meals/metrics before /meals/{id} so the router matches it first
	server.Register(httpserver.Route{
		Name:     "GetMealMetrics",
		Method:   "GET",
		Path:     "/meals/metrics",
		AuthType: "session",
	}, httpserver.HandlerFunc(mealHandler.GetMealMetrics))

	server.Register(httpserver.Route{
		Name:     "ListMeals",
		Method:   "GET",
		Path:     "/meals",
		AuthType: "session",
	}, httpserver.HandlerFunc(mealHandler.GetMeals))

	server.Register(httpserver.Route{
		Name:     "GetMeal",
		Method:   "GET",
		Path:     "/meals/{id}",
		AuthType: "session",
	}, httpserver.HandlerFunc(mealHandler.GetMeal))

	server.Register(httpserver.Route{
		Name:     "CreateMeal",
		Method:   "POST",
		Path:     "/meals",
		AuthType: "session",
	}, httpserver.HandlerFunc(mealHandler.CreateMeal))

	server.Register(httpserver.Route{
		Name:     "UpdateMeal",
		Method:   "PUT",
		Path:     "/meals/{id}",
		AuthType: "session",
	}, httpserver.HandlerFunc(mealHandler.UpdateMeal))

	server.Register(httpserver.Route{
		Name:     "DeleteMeal",
		Method:   "DELETE",
		Path:     "/meals/{id}",
		AuthType: "session",
	}, httpserver.HandlerFunc(mealHandler.DeleteMeal))

	logger.Info("Diet Service started on port " + cfg.Port)
	logger.Info("Health check: GET /health")
	logger.Info("API endpoints: POST/GET /users, GET/POST/PUT/DELETE /meals, GET /meals/metrics")

	// Start server
	if err := server.Start(); err != nil {
		logger.Error("Server failed to start", zap.Error(err))
		os.Exit(1)
	}
}
