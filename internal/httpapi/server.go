package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/BrandonDHaskell/timekeep/internal/attendance/service"
)

type Dependencies struct {
	Logger  zerolog.Logger
	Addr    string
	Reports *service.ReportService

	// Ready reports whether the vendor schema has been resolved. Optional.
	Ready func() bool

	CORSOrigins       []string
	RateLimitRequests int // 0 disables rate limiting
	RateLimitWindow   time.Duration
}

type Server struct {
	httpServer *http.Server
	logger     zerolog.Logger
	router     chi.Router
	reports    *service.ReportService
	ready      func() bool
}

func NewServer(d Dependencies) *Server {
	s := &Server{
		logger:  d.Logger.With().Str("component", "httpapi").Logger(),
		router:  chi.NewRouter(),
		reports: d.Reports,
		ready:   d.Ready,
	}
	if s.ready == nil {
		s.ready = func() bool { return true }
	}

	r := s.router
	r.Use(requestIDMiddleware)
	r.Use(chimiddleware.RealIP)
	r.Use(accessLogMiddleware(s.logger))
	r.Use(chimiddleware.Recoverer)
	if len(d.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: d.CORSOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type", requestIDHeader},
			ExposedHeaders: []string{requestIDHeader},
			MaxAge:         300,
		}))
	}

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		if d.RateLimitRequests > 0 {
			window := d.RateLimitWindow
			if window <= 0 {
				window = time.Minute
			}
			r.Use(httprate.LimitByIP(d.RateLimitRequests, window))
		}
		r.Use(metricsMiddleware)

		r.Get("/dashboard/summary", s.handleDashboard)
		r.Get("/employees", s.handleEmployees)
		r.Get("/mapping", s.handleMapping)

		r.Route("/reports", func(r chi.Router) {
			r.Get("/daily", s.handleDaily)
			r.Get("/monthly", s.handleMonthly)
			r.Get("/yearly", s.handleYearly)
			r.Get("/daily/all", s.handleDailyAll)
			r.Get("/monthly/all", s.handleMonthlyAll)
			r.Get("/yearly/all", s.handleYearlyAll)
		})
	})

	s.httpServer = &http.Server{
		Addr:              d.Addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	return s
}

func (s *Server) Handler() http.Handler { return s.httpServer.Handler }

func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
