package api

import (
	"database/sql"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/erazemk/najdeno/internal/imaging"
	"github.com/erazemk/najdeno/internal/matching"
	"github.com/erazemk/najdeno/internal/model"
)

// Config holds the dependencies of the API.
type Config struct {
	DB        *sql.DB
	JWTSecret string
	Engine    *matching.Engine
	Photos    *imaging.Processor
}

// NewRouter creates the API router with all endpoints registered.
func NewRouter(cfg Config) http.Handler {
	mux := http.NewServeMux()

	if cfg.Photos == nil {
		cfg.Photos = imaging.NewProcessor(imaging.Options{})
	}

	authHandler := &AuthHandler{DB: cfg.DB, JWTSecret: cfg.JWTSecret}
	usersHandler := &UsersHandler{DB: cfg.DB}
	itemsHandler := &ItemsHandler{DB: cfg.DB, Engine: cfg.Engine, Photos: cfg.Photos}
	matchesHandler := &MatchesHandler{DB: cfg.DB, Engine: cfg.Engine}
	claimsHandler := &ClaimsHandler{DB: cfg.DB}

	authMW := AuthMiddleware(cfg.JWTSecret, cfg.DB)
	requireAdmin := RequireRole(model.RoleAdmin)
	requireStaff := RequireRole(model.RoleStaff)

	// Public.
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)
	mux.HandleFunc("POST /api/auth/register", authHandler.Register)

	mux.Handle("PUT /api/auth/password", authMW(http.HandlerFunc(authHandler.ChangePassword)))
	mux.Handle("POST /api/auth/logout", authMW(http.HandlerFunc(authHandler.Logout)))

	// Users (admin only).
	mux.Handle("GET /api/users", authMW(requireAdmin(http.HandlerFunc(usersHandler.List))))
	mux.Handle("POST /api/users", authMW(requireAdmin(http.HandlerFunc(usersHandler.Create))))
	mux.Handle("GET /api/users/{id}", authMW(requireAdmin(http.HandlerFunc(usersHandler.Get))))
	mux.Handle("PUT /api/users/{id}", authMW(requireAdmin(http.HandlerFunc(usersHandler.Update))))
	mux.Handle("PUT /api/users/{id}/password", authMW(requireAdmin(http.HandlerFunc(usersHandler.ResetPassword))))
	mux.Handle("DELETE /api/users/{id}", authMW(requireAdmin(http.HandlerFunc(usersHandler.Delete))))

	// Items: report and read (all roles), moderate (staff+).
	mux.Handle("GET /api/items", authMW(http.HandlerFunc(itemsHandler.List)))
	mux.Handle("POST /api/items", authMW(http.HandlerFunc(itemsHandler.Create)))
	mux.Handle("GET /api/items/{id}", authMW(http.HandlerFunc(itemsHandler.Get)))
	mux.Handle("PUT /api/items/{id}", authMW(requireStaff(http.HandlerFunc(itemsHandler.Update))))
	mux.Handle("DELETE /api/items/{id}", authMW(requireStaff(http.HandlerFunc(itemsHandler.Delete))))
	mux.Handle("POST /api/items/{id}/approve", authMW(requireStaff(http.HandlerFunc(itemsHandler.Approve))))
	mux.Handle("POST /api/items/{id}/reject", authMW(requireStaff(http.HandlerFunc(itemsHandler.Reject))))
	mux.Handle("PUT /api/items/{id}/image", authMW(http.HandlerFunc(itemsHandler.UploadImage)))
	mux.Handle("GET /api/items/{id}/image", authMW(http.HandlerFunc(itemsHandler.GetImage)))
	mux.Handle("GET /api/items/{id}/matches", authMW(http.HandlerFunc(itemsHandler.Matches)))
	mux.Handle("GET /api/items/{id}/matches/preview", authMW(requireStaff(http.HandlerFunc(itemsHandler.Preview))))

	// Claims: request (all roles), review (staff+).
	mux.Handle("POST /api/items/{id}/claims", authMW(http.HandlerFunc(claimsHandler.Create)))
	mux.Handle("GET /api/claims", authMW(requireStaff(http.HandlerFunc(claimsHandler.List))))
	mux.Handle("POST /api/claims/{id}/resolve", authMW(requireStaff(http.HandlerFunc(claimsHandler.Resolve))))

	// Matches and notification delivery (staff+).
	mux.Handle("GET /api/matches", authMW(requireStaff(http.HandlerFunc(matchesHandler.List))))
	mux.Handle("GET /api/matches/{id}", authMW(requireStaff(http.HandlerFunc(matchesHandler.Get))))
	mux.Handle("POST /api/matches/{id}/notify", authMW(requireStaff(http.HandlerFunc(matchesHandler.Notify))))
	mux.Handle("GET /api/notifications/attempts", authMW(requireStaff(http.HandlerFunc(matchesHandler.Attempts))))

	return middleware.RequestID(middleware.Recoverer(LoggingMiddleware(mux)))
}
