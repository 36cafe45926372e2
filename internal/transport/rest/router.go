package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"

	"github.com/frahmantamala/staff-portal/internal/auth"
	"github.com/frahmantamala/staff-portal/internal/transport/middleware"
	"github.com/frahmantamala/staff-portal/internal/transport/swagger"
	"github.com/frahmantamala/staff-portal/internal/user"
	"github.com/frahmantamala/staff-portal/internal/verification"
)

// RegisterAllRoutes wires the full HTTP surface onto the router.
func RegisterAllRoutes(router *chi.Mux, db *sql.DB, authHandler *auth.Handler, userHandler *user.Handler, verificationHandler *verification.Handler, uploadDir, allowedOrigin string, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db)

	// Apply global middleware
	router.Use(middleware.CORS(allowedOrigin))
	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.RequestID)
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.LoggingMiddleware(logger))

	// Serve OpenAPI spec at root (outside API prefix)
	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	// Swagger UI route at root
	router.Handle("/swagger/*", swagger.Handler())

	// Profile images uploaded at registration
	if uploadDir != "" {
		fileServer := http.StripPrefix("/uploads/", http.FileServer(http.Dir(uploadDir)))
		router.Get("/uploads/*", fileServer.ServeHTTP)
	}

	// Mount API under /api/v1 to match OpenAPI basePath
	router.Route("/api/v1", func(r chi.Router) {
		// Health check route
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		// Public routes
		if verificationHandler != nil {
			r.Post("/register", verificationHandler.Register)
			r.Get("/confirmation/{email}/{token}", verificationHandler.Confirmation)
			r.Post("/forgot-password", verificationHandler.ForgotPassword)
			r.Put("/reset-password/{token}", verificationHandler.ResetPassword)
		}

		if authHandler != nil {
			r.Post("/login", authHandler.Login)

			// Protected routes that require authentication
			r.Group(func(pr chi.Router) {
				pr.Use(authHandler.AuthMiddleware)

				pr.Post("/logout", authHandler.Logout)

				if userHandler != nil {
					pr.Get("/dashboard", userHandler.Dashboard)
					pr.Put("/password", userHandler.UpdatePassword)

					// Admin-only registration with a caller-chosen role
					pr.Group(func(ar chi.Router) {
						ar.Use(authHandler.AdminMiddleware)
						ar.Post("/admin/register", userHandler.AdminRegister)
					})
				}
			})
		}
	})
}
