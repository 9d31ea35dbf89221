// Package api wires the HTTP surface: routing, middleware ordering,
// request decoding and the error taxonomy. Cross-cutting concerns run in
// a fixed order on every protected route: authenticate, authorize,
// rate-limit, cache-lookup, handler, cache-store.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/example/wordapi/internal/auth"
	"github.com/example/wordapi/internal/cache"
	"github.com/example/wordapi/internal/dashboard"
	"github.com/example/wordapi/internal/database"
)

// Config holds the server's cross-cutting settings
type Config struct {
	CORSOrigins []string
}

// Server holds the handlers' collaborators
type Server struct {
	users     *database.UserRepository
	roles     *database.RoleRepository
	words     *database.WordRepository
	tags      *database.TagRepository
	sets      *database.SetRepository
	historics *database.HistoricRepository
	engine    *dashboard.Engine
	cache     cache.Store
	tokens    *auth.Manager
	logger    zerolog.Logger
	config    Config
	// now supplies the reference date for aggregations; replaceable in tests
	now func() time.Time
}

// NewServer creates a server over the shared database connection
func NewServer(tokens *auth.Manager, store cache.Store, logger zerolog.Logger, config Config) *Server {
	historics := database.NewHistoricRepository()
	return &Server{
		users:     database.NewUserRepository(),
		roles:     database.NewRoleRepository(),
		words:     database.NewWordRepository(),
		tags:      database.NewTagRepository(),
		sets:      database.NewSetRepository(),
		historics: historics,
		engine:    dashboard.NewEngine(historics),
		cache:     store,
		tokens:    tokens,
		logger:    logger,
		config:    config,
		now:       time.Now,
	}
}

// Router assembles the full route tree
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(requestLogger(s.logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.config.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
		MaxAge:         86400,
	}))
	r.Use(middleware.Recoverer)

	requireAuth := auth.RequireAuth(s.tokens)
	requireAdmin := auth.RequireAdmin()

	r.Route("/api", func(r chi.Router) {
		r.Get("/health/health_check", s.healthCheck)

		r.Route("/auth", func(r chi.Router) {
			r.With(limitPerDay(50)).Post("/login", s.login)
			r.With(limitPerDay(100)).Post("/refresh", s.refresh)
		})

		r.Route("/users", func(r chi.Router) {
			r.With(limitPerDay(20)).Post("/", s.createUser)
			r.With(requireAuth, requireAdmin).Get("/", s.listUsers)
			r.With(requireAuth).Get("/roles", s.listRoles)
			r.With(requireAuth, limitPerDay(50)).Put("/me", s.updateProfile)
			r.With(requireAuth, limitPerDay(10)).Post("/me/update_password", s.updatePassword)
			r.With(requireAuth, requireAdmin, limitPerDay(50)).Put("/update_roles/{id_user}", s.updateUserRoles)
			r.With(requireAuth).Get("/{id_user}", s.getUser)
			r.With(requireAuth, requireAdmin).Delete("/{id_user}", s.deleteUser)
		})

		r.Route("/words", func(r chi.Router) {
			r.With(requireAuth).Get("/", s.listWords)
			r.With(requireAuth, auth.RequireRoleOrAdmin("create_word"), limitPerDay(500)).Post("/", s.createWord)
			r.With(requireAuth).Get("/{id_word}", s.getWord)
			r.With(requireAuth, auth.RequireRoleOrAdmin("update_word"), limitPerDay(500)).Put("/{id_word}", s.updateWord)
			r.With(requireAuth, auth.RequireRoleOrAdmin("delete_word")).Delete("/{id_word}", s.deleteWord)
		})

		r.Route("/tags", func(r chi.Router) {
			r.With(requireAuth).Get("/", s.listTags)
			r.With(requireAuth, auth.RequireRoleOrAdmin("create_word"), limitPerDay(100)).Post("/", s.createTag)
			r.With(requireAuth).Get("/{id_tag}", s.getTag)
			r.With(requireAuth, auth.RequireRoleOrAdmin("delete_word")).Delete("/{id_tag}", s.deleteTag)
		})

		r.Route("/set_words", func(r chi.Router) {
			r.With(requireAuth).Get("/", s.listSets)
			r.With(requireAuth, auth.RequireRoleOrAdmin("create_set_words"), limitPerDay(50)).Post("/", s.createSet)
			r.With(requireAuth).Get("/words/{id_set}", s.wordsBySet)
			r.With(requireAuth).Get("/{id_set}", s.getSet)
			r.With(requireAuth, auth.RequireRoleOrAdmin("update_set_words"), limitPerDay(50)).Put("/{id_set}", s.updateSet)
			r.With(requireAuth, auth.RequireRoleOrAdmin("delete_set_words")).Delete("/{id_set}", s.deleteSet)
		})

		r.Route("/dashboard", func(r chi.Router) {
			r.Use(requireAuth)
			r.With(limitPerDay(500)).Post("/create_historic", s.createHistoric)

			cached := s.cachedResponse(cache.DashboardTTL)
			r.With(limitPerDay(24), cached).Get("/total_hits_last_30days", s.totalHitsLast30Days)
			r.With(limitPerDay(24), cached).Get("/historic_by_day/{date}", s.historicByDay)
			r.With(limitPerDay(24), cached).Get("/top10_wrong_words_by_user", s.top10WrongWords)
			r.With(limitPerDay(24), cached).Get("/historic_90days_by_user", s.historic90Days)
		})
	})

	return r
}

func (s *Server) healthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, "ok")
}
