package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/savegress/bankpulse/internal/config"
	"github.com/savegress/bankpulse/internal/reporting"
	"github.com/sirupsen/logrus"
)

// Server represents the API server
type Server struct {
	config   *config.Config
	router   chi.Router
	handlers *Handlers
	log      logrus.FieldLogger
}

// NewServer creates a new API server
func NewServer(cfg *config.Config, dashboard *reporting.Dashboard, log logrus.FieldLogger) *Server {
	s := &Server{
		config:   cfg,
		router:   chi.NewRouter(),
		handlers: NewHandlers(dashboard, log),
		log:      log.WithField("component", "api"),
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

func (s *Server) setupMiddleware() {
	origins := s.config.Server.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(RequestLogger(s.log))
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))

	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
}

func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handlers.HealthCheck)

	s.router.Route("/api/v1/bankpulse", func(r chi.Router) {
		r.Get("/health", s.handlers.HealthCheck)

		r.Group(func(r chi.Router) {
			if s.config.Server.JWTSecret != "" {
				r.Use(AuthMiddleware(s.config.Server.JWTSecret))
			}

			// Snapshot
			r.Get("/snapshot", s.handlers.GetSnapshot)
			r.Post("/snapshot/refresh", s.handlers.RefreshSnapshot)

			// Executive summary
			r.Get("/summary", s.handlers.GetSummary)
			r.Get("/summary/top-customers", s.handlers.GetTopCustomers)

			// Fraud detection
			r.Route("/fraud", func(r chi.Router) {
				r.Get("/", s.handlers.GetFraud)
				r.Get("/large-transactions", s.handlers.GetLargeTransactions)
				r.Get("/multi-loan", s.handlers.GetMultiLoanCustomers)
				r.Get("/velocity", s.handlers.GetVelocity)
				r.Get("/geographic", s.handlers.GetGeographicAnomalies)
			})

			r.Get("/customers", s.handlers.GetCustomers)
			r.Get("/operations", s.handlers.GetOperations)

			// Risk management
			r.Get("/risk", s.handlers.GetRisk)
			r.Get("/risk/classify", s.handlers.ClassifyScore)

			// Compliance
			r.Get("/compliance", s.handlers.GetCompliance)
			r.Get("/compliance/aml", s.handlers.GetAML)
			r.Get("/regulatory", s.handlers.GetRegulatory)
		})
	})
}

// Router returns the chi router
func (s *Server) Router() http.Handler {
	return s.router
}
