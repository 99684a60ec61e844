package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/teamtrack/teamtrack/internal/audit"
	"github.com/teamtrack/teamtrack/internal/auth"
	"github.com/teamtrack/teamtrack/internal/domain"
	"github.com/teamtrack/teamtrack/internal/logger"
	"github.com/teamtrack/teamtrack/internal/metrics"
	"github.com/teamtrack/teamtrack/internal/ratelimit"
	"github.com/teamtrack/teamtrack/internal/service"
)

// Pinger is implemented by *pgxpool.Pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

// RouterDeps holds all dependencies for the API router.
type RouterDeps struct {
	Services       *service.Services
	Tokens         auth.TokenParser
	Metrics        *metrics.Metrics
	Audit          AuditRecorder
	AuditLog       AuditReader
	LoginLimiter   *ratelimit.Limiter // nil disables limiting
	TrustProxy     bool               // take the client address from X-Real-IP / X-Forwarded-For
	DBPool         Pinger
	AllowedOrigins []string
	Logger         *logger.Logger
}

// NewRouter builds the chi router with all routes and middleware.
func NewRouter(deps RouterDeps) http.Handler {
	if deps.Metrics == nil {
		deps.Metrics = metrics.New()
	}
	if deps.Audit == nil {
		deps.Audit = nopRecorder{}
	}
	if deps.Logger == nil {
		deps.Logger = logger.Nop()
	}

	r := chi.NewRouter()

	// Global middleware.
	if deps.TrustProxy {
		r.Use(chimw.RealIP)
	}
	r.Use(requestIDMiddleware)
	r.Use(requestLogger(deps.Logger))
	r.Use(chimw.Recoverer)
	r.Use(metricsMiddleware(deps.Metrics))
	r.Use(secureHeaders)
	if len(deps.AllowedOrigins) > 0 {
		r.Use(corsMiddleware(deps.AllowedOrigins))
	}

	r.Get("/health", healthHandler(deps.DBPool))
	r.Handle("/metrics", deps.Metrics.PrometheusHandler())

	a := auditor{rec: deps.Audit}
	users := newUsersHandler(deps.Services.Users, deps.Metrics, a)
	players := newPlayersHandler(deps.Services.Players, deps.Services.Users, deps.Metrics, a)
	coaches := newCoachesHandler(deps.Services.Coaches, deps.Services.Users, deps.Metrics, a)
	teams := newTeamsHandler(deps.Services.Teams, deps.Services.Coaches, a)
	games := newGamesHandler(deps.Services.Games, a)
	admin := newAdminHandler(deps.AuditLog, deps.Metrics)

	authenticated := auth.Authenticate(deps.Tokens)
	coachOrAdmin := auth.RequireRole(domain.RoleCoach, domain.RoleAdmin)
	adminOnly := auth.RequireRole(domain.RoleAdmin)

	r.Route("/api/v1", func(api chi.Router) {
		// Public routes. Login and register share one Limiter but are
		// charged to separate buckets per client address.
		limited := func(scope string) func(http.Handler) http.Handler {
			if deps.LoginLimiter == nil {
				return func(next http.Handler) http.Handler { return next }
			}
			key := ratelimit.WithPrefix(scope, ratelimit.ByRemoteAddr)
			return ratelimit.Middleware(deps.LoginLimiter, key, func() {
				deps.Metrics.IncRateLimitRejection(scope)
			})
		}
		api.With(limited("register"), auth.OptionalAuth(deps.Tokens)).Post("/users/register", users.Register)
		api.With(limited("login")).Post("/users/login", users.Login)

		api.Group(func(ar chi.Router) {
			ar.Use(authenticated)

			ar.Get("/users/me", users.Me)
			ar.With(adminOnly).Get("/users", users.List)
			ar.Get("/users/{id}", users.Get)
			ar.Put("/users/{id}", users.Update)

			ar.Get("/players", players.List)
			ar.Get("/players/{id}", players.Get)
			ar.Get("/players/user/{userId}", players.GetByUser)
			ar.With(adminOnly).Post("/players", players.Create)

			ar.Get("/coaches", coaches.List)
			ar.Get("/coaches/{id}", coaches.Get)
			ar.Get("/coaches/user/{userId}", coaches.GetByUser)
			ar.With(adminOnly).Post("/coaches", coaches.Create)

			ar.Get("/teams", teams.List)
			ar.Get("/teams/{id}", teams.Get)
			ar.Get("/teams/user/{userId}", teams.ListByUser)
			ar.Get("/teams/coach/{coachId}", teams.ListByCoach)
			ar.Group(func(cr chi.Router) {
				cr.Use(coachOrAdmin)
				cr.Post("/teams", teams.Create)
				cr.Put("/teams/{id}", teams.Update)
				cr.Delete("/teams/{id}", teams.Delete)
				cr.Put("/teams/{id}/players/{playerId}", teams.AddPlayer)
				cr.Delete("/teams/{id}/players/{playerId}", teams.RemovePlayer)
			})

			ar.Get("/games", games.List)
			ar.Get("/games/{id}", games.Get)
			ar.Get("/games/team/{teamId}", games.ListByTeam)
			ar.Get("/games/user/{userId}", games.ListByUser)
			ar.Group(func(cr chi.Router) {
				cr.Use(coachOrAdmin)
				cr.Post("/games", games.Create)
				cr.Put("/games/{id}", games.Update)
				cr.Delete("/games/{id}", games.Delete)
			})

			ar.Route("/admin", func(adm chi.Router) {
				adm.Use(adminOnly)
				adm.Get("/audit", admin.Audit)
				adm.Get("/metrics", admin.Metrics)
			})
		})
	})

	return r
}

// healthHandler reports liveness plus database reachability when a pool is
// configured.
func healthHandler(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if db != nil {
			if err := db.Ping(r.Context()); err != nil {
				logger.FromRequest(r).Error().Err(err).Msg("health check: database ping failed")
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{
					"status":   "degraded",
					"database": "unreachable",
				})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{
			"status":   "ok",
			"database": "connected",
		})
	}
}

// adminHandler serves the audit trail and the metrics digest.
type adminHandler struct {
	events  AuditReader
	metrics *metrics.Metrics
}

func newAdminHandler(events AuditReader, m *metrics.Metrics) *adminHandler {
	return &adminHandler{events: events, metrics: m}
}

// Audit handles GET /api/v1/admin/audit?limit=N.
func (h *adminHandler) Audit(w http.ResponseWriter, r *http.Request) {
	if h.events == nil {
		writeJSON(w, http.StatusOK, []audit.Event{})
		return
	}
	events, err := h.events.Recent(r.Context(), audit.ClampLimit(r.URL.Query().Get("limit")))
	if err != nil {
		logger.FromRequest(r).Error().Err(err).Msg("listing audit events")
		writeError(w, http.StatusInternalServerError, domain.StorageMessage)
		return
	}
	writeJSON(w, http.StatusOK, events)
}

// Metrics handles GET /api/v1/admin/metrics.
func (h *adminHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	h.metrics.Handler().ServeHTTP(w, r)
}
