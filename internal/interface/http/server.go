// Package http implements the filmorate REST API on gin: catalog CRUD,
// likes and friendships, popularity and common-friends views, plus health,
// readiness and metrics endpoints.
package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/vl4ks/filmorate/config"
	"github.com/vl4ks/filmorate/internal/application/command"
	"github.com/vl4ks/filmorate/internal/application/query"
	"github.com/vl4ks/filmorate/internal/infrastructure/metrics"
	"github.com/vl4ks/filmorate/internal/interface/http/handlers"
	"github.com/vl4ks/filmorate/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// DEPENDENCIES
// ══════════════════════════════════════════════════════════════════════════════

// Dependencies contains everything the route handlers need.
type Dependencies struct {
	// Write side
	Commands *command.Handlers

	// Read side
	Queries *query.Handlers

	// Readiness checks for GET /ready. May be nil.
	Health handlers.HealthChecker

	// Prometheus registry. When nil, /metrics is not served and requests
	// are not observed.
	Metrics *metrics.Registry

	Logger  *logger.Logger
	Version string
}

// ══════════════════════════════════════════════════════════════════════════════
// SERVER
// ══════════════════════════════════════════════════════════════════════════════

// Server represents the HTTP server.
type Server struct {
	config     config.HTTPConfig
	deps       Dependencies
	engine     *gin.Engine
	httpServer *http.Server
	logger     *logger.Logger

	mu        sync.RWMutex
	running   bool
	startedAt time.Time
}

// NewServer creates the gin engine, registers all routes and prepares the
// underlying http.Server.
func NewServer(cfg config.HTTPConfig, deps Dependencies) *Server {
	s := &Server{
		config: cfg,
		deps:   deps,
		logger: deps.Logger,
	}
	if s.logger == nil {
		s.logger = logger.Nop()
	}
	s.logger = s.logger.With(logger.Component("http"))
	if s.deps.Health == nil {
		s.deps.Health = handlers.NewCompositeHealthChecker(deps.Version)
	}

	s.engine = gin.New()
	s.engine.HandleMethodNotAllowed = true
	s.setupMiddleware()
	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:              cfg.Address(),
		Handler:           s.engine,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    1 << 20, // 1 MB
	}
	return s
}

// Handler exposes the router (used by tests and for embedding).
func (s *Server) Handler() http.Handler {
	return s.engine
}

// ══════════════════════════════════════════════════════════════════════════════
// MIDDLEWARE
// ══════════════════════════════════════════════════════════════════════════════

func (s *Server) setupMiddleware() {
	chain := []gin.HandlerFunc{
		handlers.RequestID(s.logger),
		handlers.AccessLog(),
	}
	if s.deps.Metrics != nil {
		chain = append(chain, handlers.Metrics(s.deps.Metrics))
	}
	chain = append(chain, handlers.Recovery(), handlers.SecurityHeaders())
	if mw := s.corsMiddleware(); mw != nil {
		chain = append(chain, mw)
	}
	if s.config.RateLimitPerMinute > 0 {
		chain = append(chain, handlers.RateLimit(s.config.RateLimitPerMinute))
	}
	chain = append(chain,
		handlers.Timeout(s.config.RequestTimeout),
		handlers.ErrorHandler(),
	)
	s.engine.Use(chain...)
}

// corsMiddleware returns nil when no origins are configured.
func (s *Server) corsMiddleware() gin.HandlerFunc {
	origins := s.config.CORSOrigins
	if len(origins) == 0 {
		return nil
	}

	cfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", handlers.RequestIDHeader},
		ExposeHeaders: []string{handlers.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	if slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cors.New(cfg)
}

// ══════════════════════════════════════════════════════════════════════════════
// ROUTING
// ══════════════════════════════════════════════════════════════════════════════

func (s *Server) setupRoutes() {
	r := s.engine

	// ─────────────────────────────────────────────────────────────────────────
	// Health & Status
	// ─────────────────────────────────────────────────────────────────────────
	r.GET("/", s.handleRoot)
	r.GET("/health", s.handleHealth)
	r.GET("/ready", s.handleReady)
	if s.deps.Metrics != nil {
		r.GET("/metrics", gin.WrapH(s.deps.Metrics.Handler()))
	}

	// ─────────────────────────────────────────────────────────────────────────
	// Films
	// ─────────────────────────────────────────────────────────────────────────
	films := r.Group("/films")
	films.GET("", s.handleListFilms)
	films.POST("", s.handleCreateFilm)
	films.PUT("", s.handleUpdateFilm)
	films.GET("/popular", s.handlePopularFilms)
	films.GET("/:id", s.handleGetFilm)
	films.DELETE("/:id", s.handleDeleteFilm)
	films.GET("/:id/likes", s.handleLikeCount)
	films.PUT("/:id/like/:userId", s.handleLikeFilm)
	films.DELETE("/:id/like/:userId", s.handleUnlikeFilm)
	films.PUT("/:id/genres", s.handleSetFilmGenres)
	films.PUT("/:id/mpa/:mpaId", s.handleSetFilmRating)

	// ─────────────────────────────────────────────────────────────────────────
	// Users
	// ─────────────────────────────────────────────────────────────────────────
	users := r.Group("/users")
	users.GET("", s.handleListUsers)
	users.POST("", s.handleCreateUser)
	users.PUT("", s.handleUpdateUser)
	users.GET("/:id", s.handleGetUser)
	users.DELETE("/:id", s.handleDeleteUser)
	users.GET("/:id/friends", s.handleFriends)
	users.GET("/:id/friends/common/:otherId", s.handleCommonFriends)
	users.PUT("/:id/friends/:friendId", s.handleAddFriend)
	users.DELETE("/:id/friends/:friendId", s.handleRemoveFriend)

	// ─────────────────────────────────────────────────────────────────────────
	// Reference catalog
	// ─────────────────────────────────────────────────────────────────────────
	genres := r.Group("/genres")
	genres.GET("", s.handleListGenres)
	genres.POST("", s.handleCreateGenre)
	genres.GET("/:id", s.handleGetGenre)
	genres.DELETE("/:id", s.handleDeleteGenre)

	mpa := r.Group("/mpa")
	mpa.GET("", s.handleListRatings)
	mpa.POST("", s.handleCreateRating)
	mpa.GET("/:id", s.handleGetRating)
	mpa.DELETE("/:id", s.handleDeleteRating)

	r.NoRoute(s.handleNoRoute)
	r.NoMethod(s.handleNoMethod)
}

// ══════════════════════════════════════════════════════════════════════════════
// SERVER LIFECYCLE
// ══════════════════════════════════════════════════════════════════════════════

// Start listens and serves until Shutdown. A clean shutdown returns nil.
func (s *Server) Start() error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("server already running")
	}
	s.running = true
	s.startedAt = time.Now()
	s.mu.Unlock()

	s.logger.Info("starting HTTP server", logger.String("address", s.config.Address()))

	err := s.httpServer.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Shutdown gracefully drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	s.mu.Unlock()

	s.logger.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}

// IsRunning returns true if the server is running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// Address returns the server address.
func (s *Server) Address() string {
	return s.config.Address()
}
