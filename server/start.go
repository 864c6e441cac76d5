package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	cachepackage "taskdo-service/cache"
	"taskdo-service/config"
	"taskdo-service/credentials"
	"taskdo-service/database"
	"taskdo-service/handlers"
	"taskdo-service/store"

	"github.com/umakantv/go-utils/httpserver"
	"github.com/umakantv/go-utils/logger"
	"go.uber.org/zap"
)

type endpoint struct {
	route   httpserver.Route
	handler httpserver.HandlerFunc
}

func healthCheck(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status": "healthy", "service": "taskdo-service"}`))
}

// endpoints lists every route in registration order. The router matches in
// that order, so the fixed /api/todos/... paths precede /api/todos/{id}.
func endpoints(auth *handlers.AuthHandler, todos *handlers.TodoHandler) []endpoint {
	return []endpoint{
		{httpserver.Route{Name: "HealthCheck", Method: "GET", Path: "/health", AuthType: "none"}, healthCheck},

		{httpserver.Route{Name: "Register", Method: "POST", Path: "/api/register", AuthType: "none"}, auth.Register},
		{httpserver.Route{Name: "Token", Method: "POST", Path: "/api/token", AuthType: "none"}, auth.Token},
		{httpserver.Route{Name: "Me", Method: "GET", Path: "/api/users/me", AuthType: "bearer"}, auth.Me},

		{httpserver.Route{Name: "ListTodos", Method: "GET", Path: "/api/todos", AuthType: "bearer"}, todos.ListTodos},
		{httpserver.Route{Name: "CreateTodo", Method: "POST", Path: "/api/todos", AuthType: "bearer"}, todos.CreateTodo},
		{httpserver.Route{Name: "SearchTodos", Method: "GET", Path: "/api/todos/search", AuthType: "bearer"}, todos.SearchTodos},
		{httpserver.Route{Name: "TodosByDeadline", Method: "GET", Path: "/api/todos/deadline/{date}", AuthType: "bearer"}, todos.TodosByDeadline},
		{httpserver.Route{Name: "TodosByArea", Method: "GET", Path: "/api/todos/area/{area}", AuthType: "bearer"}, todos.TodosByArea},
		{httpserver.Route{Name: "GetTodo", Method: "GET", Path: "/api/todos/{id:[0-9]+}", AuthType: "bearer"}, todos.GetTodo},
		{httpserver.Route{Name: "UpdateTodo", Method: "PUT", Path: "/api/todos/{id:[0-9]+}", AuthType: "bearer"}, todos.UpdateTodo},
		{httpserver.Route{Name: "DeleteTodo", Method: "DELETE", Path: "/api/todos/{id:[0-9]+}", AuthType: "bearer"}, todos.DeleteTodo},
	}
}

// StartServer wires storage, cache and handlers and serves until SIGINT or
// SIGTERM. The logger must already be initialized.
func StartServer(cfg config.Config) error {
	logger.Info("Starting Taskdo Service...")

	dbConn, err := database.InitializeDatabase(cfg.Database)
	if err != nil {
		return err
	}
	defer dbConn.Close()

	cache, err := cachepackage.InitializeCache(cfg.Cache)
	if err != nil {
		return err
	}
	defer cache.Close()

	userStore := store.NewUserStore(dbConn)
	todoStore := store.NewTodoStore(dbConn)
	userCache := cachepackage.NewUserCache(cache, userStore, cfg.Cache.TTL)
	creds := credentials.New(cfg.Auth.SecretKey, cfg.Auth.BcryptCost)

	authHandler := handlers.NewAuthHandler(userStore, creds, cfg.Auth.AccessTokenTTL)
	todoHandler := handlers.NewTodoHandler(todoStore)

	server := httpserver.New(cfg.HTTP.Port, NewAuthenticator(creds, userCache).CheckAuth)
	for _, e := range endpoints(authHandler, todoHandler) {
		server.Register(e.route, e.handler)
	}

	logger.Info("Taskdo Service listening", zap.String("port", cfg.HTTP.Port))
	logger.Info("Health check: GET /health")

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-serveErr:
		logger.Error("Server stopped", zap.Error(err))
		return fmt.Errorf("serve: %w", err)
	case sig := <-quit:
		logger.Info("Shutting down", zap.String("signal", sig.String()))
		return nil
	}
}
