// Package api exposes the feature pipeline, model scoring and alerting over HTTP.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"wallet-risk-lab/internal/alert"
	"wallet-risk-lab/internal/analysis"
	"wallet-risk-lab/internal/covalent"
	"wallet-risk-lab/internal/observability"
	"wallet-risk-lab/internal/scoring"
)

// RecentTransactionsPageSize is the page size of GET /api/transactions.
const RecentTransactionsPageSize = 5

// FeatureService runs the feature pipeline for one address.
type FeatureService interface {
	Features(ctx context.Context, address string) (*analysis.Result, error)
}

// TransactionPager fetches a single page of transactions.
type TransactionPager interface {
	FetchTransactionPage(ctx context.Context, address string, page, pageSize int) (*covalent.TransactionPage, error)
}

// Server holds the HTTP handlers and their dependencies.
type Server struct {
	features FeatureService
	pager    TransactionPager
	scorer   scoring.Scorer // nil when no model API is configured
	alerts   alert.Sender
	logger   *zap.SugaredLogger
	metrics  *observability.Metrics
}

// Options for creating Server.
type Options struct {
	Features FeatureService
	Pager    TransactionPager
	Scorer   scoring.Scorer
	Alerts   alert.Sender
	Logger   *zap.SugaredLogger
	Metrics  *observability.Metrics
}

// NewServer creates a new Server.
func NewServer(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Server{
		features: opts.Features,
		pager:    opts.Pager,
		scorer:   opts.Scorer,
		alerts:   opts.Alerts,
		logger:   logger,
		metrics:  opts.Metrics,
	}
}

// Router returns the route table.
func (s *Server) Router() *mux.Router {
	router := mux.NewRouter()
	router.Use(s.logRequests)

	router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	if s.metrics != nil {
		router.Handle("/metrics", s.metrics.Handler()).Methods(http.MethodGet)
	}

	apiRouter := router.PathPrefix("/api").Subrouter()
	apiRouter.HandleFunc("/features", s.handleFeatures).Methods(http.MethodPost)
	apiRouter.HandleFunc("/analyze", s.handleAnalyze).Methods(http.MethodPost)
	apiRouter.HandleFunc("/transactions", s.handleTransactions).Methods(http.MethodGet)
	apiRouter.HandleFunc("/send-alert", s.handleSendAlert).Methods(http.MethodPost)

	return router
}

// statusRecorder captures the response status for request logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Debugw("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
		)
	})
}
