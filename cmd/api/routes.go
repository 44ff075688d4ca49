package main

import (
	"log"
	"net/http"

	httphandlers "zvit/internal/interfaces/http"
	"zvit/internal/shared/config"
	"zvit/internal/shared/middleware"
)

// SetupRoutes configures all HTTP routes and returns the final handler with middleware.
func SetupRoutes(deps *Dependencies, cfg *config.Config) http.Handler {
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("/health", httphandlers.HandleHealth)

	// Public auth routes
	mux.HandleFunc("/api/auth/register", deps.AuthHandler.HandleRegister)
	mux.HandleFunc("/api/auth/login", deps.AuthHandler.HandleLogin)
	mux.HandleFunc("/api/auth/logout", deps.AuthHandler.HandleLogout)

	// Upstream push endpoint. The bank authenticates with a GET probe before
	// accepting the registration, so this route stays outside the JWT wall.
	mux.HandleFunc("/api/webhook", deps.StatementHandler.HandleWebhook)

	// Protected routes
	authMiddleware := middleware.Auth(deps.JWT)

	mux.Handle("/api/users/me", authMiddleware(http.HandlerFunc(deps.UserHandler.HandleMe)))
	mux.Handle("/api/accounts", authMiddleware(http.HandlerFunc(deps.AccountHandler.HandleListAccounts)))
	mux.Handle("/api/transactions", authMiddleware(http.HandlerFunc(deps.TransactionHandler.HandleListTransactions)))
	mux.Handle("/api/token", authMiddleware(http.HandlerFunc(deps.StatementHandler.HandleSaveToken)))
	mux.Handle("/api/token/status", authMiddleware(http.HandlerFunc(deps.StatementHandler.HandleTokenStatus)))
	mux.Handle("/api/sync", authMiddleware(http.HandlerFunc(deps.StatementHandler.HandleIncrementalSync)))
	mux.Handle("/api/sync/full", authMiddleware(http.HandlerFunc(deps.StatementHandler.HandleFullSync)))
	mux.Handle("/api/webhook/register", authMiddleware(http.HandlerFunc(deps.StatementHandler.HandleRegisterWebhook)))

	// Apply global middleware
	handler := middleware.Logging(middleware.CORS(cfg.Server.AllowedHosts)(mux))
	if cfg.Telemetry.Enabled {
		handler = middleware.Telemetry(handler)
	}

	// Apply security middleware when TLS is enabled
	if cfg.TLS.Enabled {
		handler = middleware.HSTS(middleware.SecureCookies(handler))
		log.Println("TLS security middleware enabled (HSTS + SecureCookies)")
	}

	return handler
}
