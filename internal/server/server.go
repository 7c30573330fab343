package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/hongminglow/clubcore/internal/access"
	"github.com/hongminglow/clubcore/internal/auth"
	"github.com/hongminglow/clubcore/internal/config"
	"github.com/hongminglow/clubcore/internal/http/handlers"
	"github.com/hongminglow/clubcore/internal/middleware"
	"github.com/hongminglow/clubcore/internal/observability"
	"github.com/hongminglow/clubcore/internal/storage"
)

// Store is everything the HTTP surface persists through.
type Store interface {
	storage.UserStore
	storage.MembershipStore
	storage.ClubStore
	storage.RecordStore
	storage.InviteStore
}

// Deps are the runtime collaborators built by main.
type Deps struct {
	Store   Store
	Pinger  handlers.Pinger
	Table   access.Table
	Logger  *logrus.Logger
	Metrics *observability.Metrics
}

// Server wraps an http.Server with configured routes.
type Server struct {
	inner *http.Server
}

// New wires up middleware, routes, and returns a ready server.
func New(cfg config.Config, deps Deps) *Server {
	httpServer := &http.Server{
		Addr:              cfg.HTTPAddress(),
		Handler:           NewHandler(cfg, deps),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return &Server{inner: httpServer}
}

// NewHandler builds the routed handler with the gate chain in front of every
// club-scoped route.
func NewHandler(cfg config.Config, deps Deps) http.Handler {
	if deps.Logger == nil {
		deps.Logger = logrus.StandardLogger()
	}
	if deps.Metrics == nil {
		deps.Metrics = observability.NewMetrics()
	}

	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTTTL, cfg.RefreshTTL)
	sessions := auth.NewSessionResolver(tokens, cfg.CookieSecure, deps.Logger)

	gateDeps := access.Deps{
		Sessions:    sessions,
		Memberships: deps.Store,
		Trials:      deps.Store,
		Table:       deps.Table,
		Timeout:     cfg.GateTimeout,
		Logger:      deps.Logger,
		Metrics:     deps.Metrics,
	}
	guard := middleware.NewClubAuth(
		access.NewGate(gateDeps),
		access.NewTrialGuard(gateDeps),
		cfg.TrialGatedSections,
		deps.Logger,
	)

	r := mux.NewRouter()
	r.Handle("/metrics", deps.Metrics.Handler()).Methods(http.MethodGet)
	handlers.NewHealthHandler(time.Now(), deps.Pinger).Register(r)
	handlers.NewAuthHandler(deps.Store, tokens, sessions, deps.Logger).Register(r)
	handlers.NewClubsHandler(deps.Store, deps.Store, sessions, cfg.TrialPeriod, deps.Logger).Register(r, guard)
	handlers.NewInvitesHandler(deps.Store, sessions, cfg.InviteTTL, deps.Logger).Register(r, guard)
	handlers.NewRecordsHandler(deps.Store, deps.Logger).Register(r, guard)
	handlers.NewPagesHandler().Register(r, guard)

	r.Use(middleware.Logging(deps.Logger, deps.Metrics))
	return middleware.CORS(cfg.CORSOrigins)(r)
}

// Start begins serving HTTP traffic.
func (s *Server) Start() error {
	return s.inner.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.inner.Shutdown(ctx)
}
