package api

import (
	"context"
	"net/http"

	"github.com/okian/expenses/pkg/logger"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	ExpenseDependencies
	HealthChecker
	StatsProvider
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler   *HealthHandler
	statsHandler    *StatsHandler
	expensesHandler *ExpensesHandler
	logger          logger.Logger
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, log logger.Logger) *Server {
	return &Server{
		healthHandler:   NewHealthHandler(deps),
		statsHandler:    NewStatsHandler(deps),
		expensesHandler: NewExpensesHandler(deps),
		logger:          log,
	}
}

// Register attaches all HTTP routes to mux. Other methods on these paths
// answer 405.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /metrics", s.healthHandler.HandleMetrics)
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))

	mux.HandleFunc("GET /expenses", MetricsMiddleware(s.expensesHandler.HandleList, "expenses"))
	mux.HandleFunc("POST /expenses", MetricsMiddleware(s.expensesHandler.HandleCreate, "expenses"))
	mux.HandleFunc("GET /expenses/{id}", MetricsMiddleware(s.expensesHandler.HandleGet, "expense"))
	mux.HandleFunc("PUT /expenses/{id}", MetricsMiddleware(s.expensesHandler.HandleUpdate, "expense"))
	mux.HandleFunc("DELETE /expenses/{id}", MetricsMiddleware(s.expensesHandler.HandleDelete, "expense"))
}

// Wrap applies request logging and panic recovery around next.
func (s *Server) Wrap(next http.Handler) http.Handler {
	return RequestLogging(s.logger)(Recover(s.logger)(next))
}
