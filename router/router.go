package router

import (
	"go-auth-api/handler"
	"net/http"

	_ "go-auth-api/docs"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"
)

// NewRouter builds the route table and wraps it in the global middleware chain.
// allowedOrigin is the single browser origin allowed to call the API with credentials.
func NewRouter(authHandler *handler.AuthHandler, auditHandler *handler.AuditHandler, auth *handler.AuthMiddleware, allowedOrigin string) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", handler.HealthCheck)
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.Handle("GET /swagger/", httpSwagger.WrapHandler)

	// --- Public Routes ---
	mux.Handle("POST /auth/register", handler.ErrorHandlingMiddleware(authHandler.Register))
	mux.Handle("POST /auth/login", handler.ErrorHandlingMiddleware(authHandler.Login))
	mux.Handle("POST /auth/refresh", handler.ErrorHandlingMiddleware(authHandler.Refresh))

	// logout works without a valid access token; the caller is only needed for the audit entry
	mux.Handle("POST /auth/logout", auth.Optional(handler.ErrorHandlingMiddleware(authHandler.Logout)))

	// --- Protected Routes ---
	mux.Handle("GET /auth/me", auth.Required(handler.ErrorHandlingMiddleware(authHandler.Me)))
	mux.Handle("PUT /auth/profile", auth.Required(handler.ErrorHandlingMiddleware(authHandler.UpdateProfile)))
	mux.Handle("PUT /auth/password", auth.Required(handler.ErrorHandlingMiddleware(authHandler.ChangePassword)))
	mux.Handle("GET /auth/audit", auth.Required(handler.ErrorHandlingMiddleware(auditHandler.ListMine)))
	mux.Handle("GET /auth/audit/stats", auth.Required(handler.ErrorHandlingMiddleware(auditHandler.Stats)))

	return withMiddleware(mux, allowedOrigin)
}

// withMiddleware applies the global chain. Recovery sits inside logging so a panicking
// request is still logged and counted as a 500.
func withMiddleware(next http.Handler, allowedOrigin string) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{allowedOrigin},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type", handler.RequestIDHeader},
		ExposedHeaders:   []string{handler.RequestIDHeader},
		AllowCredentials: true,
	})

	h := handler.SecurityHeadersMiddleware(next)
	h = c.Handler(h)
	h = handler.RecoverMiddleware(h)
	h = handler.LoggingMiddleware(h)
	return h
}
