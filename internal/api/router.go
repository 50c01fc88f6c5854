package api

import (
	"database/sql"
	"net/http"

	"github.com/jlcaburian/bodega/internal/model"
)

// NewRouter creates the API router with all endpoints registered.
func NewRouter(db *sql.DB, jwtSecret string) http.Handler {
	mux := http.NewServeMux()

	authHandler := &AuthHandler{DB: db, JWTSecret: jwtSecret}
	usersHandler := &UsersHandler{DB: db}
	profileHandler := &ProfileHandler{DB: db}
	itemsHandler := &ItemsHandler{DB: db}
	ledgerHandler := &LedgerHandler{DB: db}
	dashboardHandler := &DashboardHandler{DB: db}
	settingsHandler := &SettingsHandler{DB: db}

	authMW := AuthMiddleware(jwtSecret, db)
	requireAdmin := RequireRole(model.RoleAdmin)
	requireManager := RequireRole(model.RoleManager)

	// Public: login and branding.
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)
	mux.HandleFunc("GET /api/settings", settingsHandler.Get)
	mux.HandleFunc("GET /api/settings/image", settingsHandler.GetImage)

	// Auth.
	mux.Handle("PUT /api/auth/password", authMW(http.HandlerFunc(authHandler.ChangePassword)))
	mux.Handle("POST /api/auth/logout", authMW(http.HandlerFunc(authHandler.Logout)))

	// Profile (own account).
	mux.Handle("GET /api/profile", authMW(http.HandlerFunc(profileHandler.Get)))
	mux.Handle("PUT /api/profile", authMW(http.HandlerFunc(profileHandler.Update)))
	mux.Handle("PUT /api/profile/picture", authMW(http.HandlerFunc(profileHandler.UploadPicture)))
	mux.Handle("DELETE /api/profile", authMW(http.HandlerFunc(profileHandler.Delete)))
	mux.Handle("GET /api/users/{id}/picture", authMW(http.HandlerFunc(profileHandler.GetPicture)))

	// Users (admin only).
	mux.Handle("GET /api/users", authMW(requireAdmin(http.HandlerFunc(usersHandler.List))))
	mux.Handle("POST /api/users", authMW(requireAdmin(http.HandlerFunc(usersHandler.Create))))
	mux.Handle("GET /api/users/{id}", authMW(requireAdmin(http.HandlerFunc(usersHandler.Get))))
	mux.Handle("PUT /api/users/{id}", authMW(requireAdmin(http.HandlerFunc(usersHandler.Update))))
	mux.Handle("PUT /api/users/{id}/password", authMW(requireAdmin(http.HandlerFunc(usersHandler.ResetPassword))))
	mux.Handle("DELETE /api/users/{id}", authMW(requireAdmin(http.HandlerFunc(usersHandler.Delete))))

	// Items: read (all roles), write (manager+).
	mux.Handle("GET /api/items", authMW(http.HandlerFunc(itemsHandler.List)))
	mux.Handle("POST /api/items", authMW(requireManager(http.HandlerFunc(itemsHandler.Create))))
	mux.Handle("GET /api/items/{id}", authMW(http.HandlerFunc(itemsHandler.Get)))
	mux.Handle("PUT /api/items/{id}", authMW(requireManager(http.HandlerFunc(itemsHandler.Update))))
	mux.Handle("DELETE /api/items/{id}", authMW(requireManager(http.HandlerFunc(itemsHandler.Delete))))
	mux.Handle("GET /api/items/{id}/logs", authMW(http.HandlerFunc(itemsHandler.GetLogs)))

	// Stock movements (all roles).
	mux.Handle("GET /api/pull-in", authMW(http.HandlerFunc(ledgerHandler.PullInPage)))
	mux.Handle("POST /api/pull-in", authMW(http.HandlerFunc(ledgerHandler.PullIn)))
	mux.Handle("GET /api/pull-out", authMW(http.HandlerFunc(ledgerHandler.PullOutPage)))
	mux.Handle("POST /api/pull-out", authMW(http.HandlerFunc(ledgerHandler.PullOut)))
	mux.Handle("GET /api/sell-item", authMW(http.HandlerFunc(ledgerHandler.SellPage)))
	mux.Handle("POST /api/sell-item", authMW(http.HandlerFunc(ledgerHandler.Sell)))

	// Dashboard (all roles).
	mux.Handle("GET /api/dashboard", authMW(http.HandlerFunc(dashboardHandler.Index)))

	// System settings: write (admin only).
	mux.Handle("PUT /api/settings", authMW(requireAdmin(http.HandlerFunc(settingsHandler.Update))))
	mux.Handle("PUT /api/settings/image", authMW(requireAdmin(http.HandlerFunc(settingsHandler.UploadImage))))

	return mux
}
