package main

import (
	"log/slog"
	"net/http"

	"github.com/diewo77/jurigo/gate"
	"github.com/diewo77/jurigo/internal/handlers"
	"github.com/diewo77/jurigo/internal/lifecycle"
	"github.com/diewo77/jurigo/internal/middleware"
	"github.com/diewo77/jurigo/internal/policy"
)

// App is the main application handler that sets up all routes.
type App struct {
	mux       *http.ServeMux
	routerCfg *policy.RouterConfig
	handler   http.Handler
}

// NewApp creates a new application with all routes configured.
func NewApp(routerCfg *policy.RouterConfig, log *slog.Logger) *App {
	app := &App{
		mux:       http.NewServeMux(),
		routerCfg: routerCfg,
	}
	app.setupRoutes()

	// Metrics sit next to the mux so they see the matched pattern.
	var h http.Handler = routerCfg.Metrics.Middleware(app.mux)
	h = middleware.Preferences(h)
	h = routerCfg.Sessions.Middleware(h)
	h = middleware.AccessLog(log)(h)
	app.handler = middleware.RequestID(h)
	return app
}

// ServeHTTP implements http.Handler.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.handler.ServeHTTP(w, r)
}

// setupRoutes configures all application routes.
func (a *App) setupRoutes() {
	// ─────────────────────────────────────────────────────────────────────────
	// Public routes (no auth required)
	// ─────────────────────────────────────────────────────────────────────────
	a.mux.HandleFunc("GET /healthz", a.routerCfg.HealthHandler.Check)
	a.mux.Handle("GET /metrics", a.routerCfg.Metrics.Handler())
	a.mux.HandleFunc("GET /api/structures", handlers.Structures)

	ah := a.routerCfg.AuthHandler
	a.mux.HandleFunc("POST /signup", ah.Signup)
	a.mux.HandleFunc("POST /login", ah.Login)
	a.mux.HandleFunc("POST /logout", ah.Logout)

	// The wizard runs before an account exists; the controller closes a
	// company to everyone but its owner and admins once it is linked.
	ch := a.routerCfg.CompanyHandler
	a.mux.Handle("POST /api/companies", a.routerCfg.IntakeLimiter.Handler(http.HandlerFunc(ch.Create)))
	a.mux.HandleFunc("GET /api/companies", ch.ByEmail)
	a.mux.HandleFunc("GET /api/companies/{id}", ch.Get)
	a.mux.HandleFunc("POST /api/companies/{id}", ch.Update)
	a.mux.HandleFunc("POST /api/companies/{id}/submit", ch.Submit)

	a.mux.HandleFunc("POST /webhooks/payment", a.routerCfg.WebhookHandler.Payment)

	// Blob references carry their own signed grant.
	bh := a.routerCfg.BlobHandler
	a.mux.HandleFunc("PUT /blobs/upload", bh.Upload)
	a.mux.HandleFunc("GET /blobs/download", bh.Download)

	// ─────────────────────────────────────────────────────────────────────────
	// Authenticated routes (require logged-in user)
	// ─────────────────────────────────────────────────────────────────────────
	a.mux.Handle("GET /api/me", a.requireAuth(http.HandlerFunc(ah.Me)))
	a.mux.Handle("GET /api/me/companies",
		a.requireAuth(a.requirePermission(lifecycle.ResourceCompany, gate.ActionList)(http.HandlerFunc(ch.Mine))))
	a.mux.Handle("POST /api/companies/{id}/link",
		a.requireAuth(a.requirePermission(lifecycle.ResourceCompany, gate.ActionLink)(http.HandlerFunc(ch.Link))))

	dh := a.routerCfg.DocumentHandler
	a.mux.Handle("POST /api/companies/{id}/documents/upload-url",
		a.requireAuth(a.requirePermission(lifecycle.ResourceDocument, gate.ActionUpload)(http.HandlerFunc(dh.UploadURL))))
	a.mux.Handle("POST /api/companies/{id}/documents",
		a.requireAuth(a.requirePermission(lifecycle.ResourceDocument, gate.ActionCreate)(http.HandlerFunc(dh.Record))))
	a.mux.Handle("GET /api/companies/{id}/documents",
		a.requireAuth(a.requirePermission(lifecycle.ResourceDocument, gate.ActionList)(http.HandlerFunc(dh.List))))
	a.mux.Handle("GET /api/companies/{id}/checklist",
		a.requireAuth(http.HandlerFunc(dh.Checklist)))
	a.mux.Handle("GET /api/documents/{id}/download-url",
		a.requireAuth(a.requirePermission(lifecycle.ResourceDocument, gate.ActionView)(http.HandlerFunc(dh.DownloadURL))))
	a.mux.Handle("POST /api/documents/{id}/delete",
		a.requireAuth(a.requirePermission(lifecycle.ResourceDocument, gate.ActionDelete)(http.HandlerFunc(dh.Delete))))

	// ─────────────────────────────────────────────────────────────────────────
	// Admin routes (require admin role with *:* permission)
	// ─────────────────────────────────────────────────────────────────────────
	adm := a.routerCfg.AdminHandler
	a.mux.Handle("GET /admin/stats", a.requireAdmin(http.HandlerFunc(adm.Stats)))
	a.mux.Handle("GET /admin/companies", a.requireAdmin(http.HandlerFunc(adm.Companies)))
	a.mux.Handle("GET /admin/companies/export", a.requireAdmin(http.HandlerFunc(adm.Export)))
	a.mux.Handle("POST /admin/companies/{id}/status", a.requireAdmin(http.HandlerFunc(adm.UpdateStatus)))
	a.mux.Handle("GET /admin/companies/{id}/notes", a.requireAdmin(http.HandlerFunc(adm.Notes)))
	a.mux.Handle("POST /admin/companies/{id}/notes", a.requireAdmin(http.HandlerFunc(adm.AddNote)))
	a.mux.Handle("POST /admin/documents/{id}/verify", a.requireAdmin(http.HandlerFunc(adm.VerifyDocument)))
}

// ─────────────────────────────────────────────────────────────────────────────
// Middleware
// ─────────────────────────────────────────────────────────────────────────────

// requireAuth wraps a handler to require a session of an existing user.
func (a *App) requireAuth(next http.Handler) http.Handler {
	return a.routerCfg.Sessions.RequireAuth(next)
}

// requireAdmin wraps a handler to require authentication and the admin role.
func (a *App) requireAdmin(next http.Handler) http.Handler {
	return a.requireAuth(a.routerCfg.AuthGate.RequireAdmin()(next))
}

// requirePermission wraps a handler to require specific resource permission.
func (a *App) requirePermission(resourceType string, action gate.Action) func(http.Handler) http.Handler {
	return a.routerCfg.AuthGate.RequirePermission(resourceType, action)
}
