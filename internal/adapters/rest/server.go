package rest

import (
	"context"
	"net/http"
	"time"

	core_port "github.com/apeiron-tech/Immoxperts-sub000/internal/core/port"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Metrics - HTTP-часть адаптера метрик
type Metrics interface {
	Middleware(next http.Handler) http.Handler
	Handler() http.Handler
}

type ServerConfig struct {
	Port           string
	AllowedOrigins []string

	// если задан, POST /mutation-search/refresh требует Bearer-токен с ролью admin
	AdminTokenSecret string
}

type Server struct {
	httpServer *http.Server
	logger     core_port.LoggerPort
}

func NewRouter(
	cfg ServerConfig,
	searchHandler *SearchHandler,
	streetHandler *StreetSearchHandler,
	healthHandler *HealthHandler,
	metrics Metrics,
	baseLogger core_port.LoggerPort,
) http.Handler {
	r := chi.NewRouter()

	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", traceHeader},
		ExposedHeaders: []string{traceHeader},
		MaxAge:         300,
	}))
	r.Use(LoggerMiddleware(baseLogger), middleware.Recoverer)

	r.Get("/healthz", healthHandler.Healthz)
	if metrics != nil {
		r.Handle("/metrics", metrics.Handler())
	}

	r.Route("/api/v1", func(r chi.Router) {
		if metrics != nil {
			r.Use(metrics.Middleware)
		}

		r.Get("/suggestions", searchHandler.Suggestions)
		r.Get("/search-with-filters", searchHandler.SearchWithFilters)

		r.Get("/mutation-search", streetHandler.Search)
		r.Get("/mutation-search/fast", streetHandler.FastSearch)
		r.Group(func(r chi.Router) {
			if cfg.AdminTokenSecret != "" {
				r.Use(NewAdminAuth(cfg.AdminTokenSecret).RequireAdmin)
			}
			r.Post("/mutation-search/refresh", streetHandler.Refresh)
		})
	})

	return r
}

func NewServer(cfg ServerConfig, handler http.Handler, baseLogger core_port.LoggerPort) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:              ":" + cfg.Port,
			Handler:           handler,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			// обновление индекса синхронное и может идти минутами
			WriteTimeout: 10 * time.Minute,
			IdleTimeout:  60 * time.Second,
		},
		logger: baseLogger,
	}
}

func (s *Server) Start() error {
	s.logger.Info("Starting REST server", core_port.Fields{"address": s.httpServer.Addr})
	return s.httpServer.ListenAndServe()
}

func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Stopping REST server...", nil)
	return s.httpServer.Shutdown(ctx)
}
