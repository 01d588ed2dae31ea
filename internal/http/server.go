// Package http exposes the ledger over a JSON API and serves the embedded
// web frontend.
package http

import (
	"fmt"
	"net/http"
	"time"

	"golang.org/x/sync/singleflight"

	"fintrack/internal/cache"
	"fintrack/internal/ledger"
	applog "fintrack/internal/log"
	"fintrack/internal/middleware/ratelimit"
	"fintrack/internal/middleware/security"
	"fintrack/internal/middleware/trace"
	"fintrack/web"
)

// Options configures the HTTP server
type Options struct {
	Owner              int64
	SummaryCacheTTL    time.Duration
	SummaryCacheSize   int
	RateLimitPerMinute int
}

// Server routes API requests to the ledger service. Dashboard and analytics
// responses are cached; any ledger write purges both caches.
type Server struct {
	svc   *ledger.Service
	owner int64

	dashboardCache *cache.LRUCache[ledger.DashboardResponse]
	analyticsCache *cache.LRUCache[ledger.AnalyticsResponse]
	cacheManager   *cache.Manager
	flight         singleflight.Group

	limiter *ratelimit.Limiter
	tracer  *trace.Middleware
	headers *security.HeadersMiddleware
	logger  *applog.Logger

	handler http.Handler
}

// NewServer creates a server around the ledger service
func NewServer(svc *ledger.Service, opts Options) *Server {
	if opts.Owner < 1 {
		opts.Owner = 1
	}
	if opts.SummaryCacheTTL <= 0 {
		opts.SummaryCacheTTL = time.Minute
	}
	if opts.SummaryCacheSize <= 0 {
		opts.SummaryCacheSize = 100
	}

	s := &Server{
		svc:            svc,
		owner:          opts.Owner,
		dashboardCache: cache.NewLRUCache[ledger.DashboardResponse](opts.SummaryCacheSize, opts.SummaryCacheTTL),
		analyticsCache: cache.NewLRUCache[ledger.AnalyticsResponse](opts.SummaryCacheSize, opts.SummaryCacheTTL),
		cacheManager:   cache.NewManager(),
		limiter: ratelimit.NewLimiter(ratelimit.Config{
			RequestsPerMinute: opts.RateLimitPerMinute,
		}),
		tracer:  trace.NewMiddleware(clientIP),
		headers: security.NewHeadersMiddleware(security.DefaultHeadersConfig()),
		logger:  applog.New(applog.DefaultConfig()).WithComponent(applog.ComponentHTTP),
	}

	s.cacheManager.Register(s.dashboardCache)
	s.cacheManager.Register(s.analyticsCache)
	s.cacheManager.StartCleanup(opts.SummaryCacheTTL)

	s.handler = s.buildHandler()
	return s
}

func (s *Server) buildHandler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/transactions", s.handleListTransactions)
	mux.HandleFunc("POST /api/transactions", s.handleCreateTransaction)
	mux.HandleFunc("GET /api/transactions/{id}", s.handleGetTransaction)
	mux.HandleFunc("DELETE /api/transactions/{id}", s.handleDeleteTransaction)

	mux.HandleFunc("GET /api/accounts", s.handleListAccounts)
	mux.HandleFunc("POST /api/accounts", s.handleCreateAccount)
	mux.HandleFunc("DELETE /api/accounts/{id}", s.handleDeleteAccount)
	mux.HandleFunc("POST /api/accounts/{id}/reconcile", s.handleReconcileAccount)

	mux.HandleFunc("GET /api/categories", s.handleListCategories)
	mux.HandleFunc("POST /api/categories", s.handleCreateCategory)
	mux.HandleFunc("DELETE /api/categories/{id}", s.handleDeleteCategory)

	mux.HandleFunc("GET /api/merchants", s.handleListMerchants)
	mux.HandleFunc("POST /api/merchants", s.handleCreateMerchant)

	mux.HandleFunc("GET /api/dashboard", s.handleDashboard)
	mux.HandleFunc("GET /api/analytics", s.handleAnalytics)

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.Handle("/", security.StaticAssetMiddleware(3600)(web.Handler()))

	var handler http.Handler = mux
	handler = s.limiter.Middleware(clientIP, nil)(handler)
	handler = applog.RequestIDMiddleware(func(r *http.Request) string {
		return trace.GetRequestID(r.Context())
	})(handler)
	handler = applog.Middleware(s.logger)(handler)
	handler = s.headers.Middleware(handler)
	handler = s.tracer.Middleware(handler)
	return handler
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// invalidateSummaries drops cached summaries after any ledger write
func (s *Server) invalidateSummaries() {
	s.dashboardCache.Purge()
	s.analyticsCache.Purge()
}

// Close releases background resources
func (s *Server) Close() {
	s.limiter.Stop()
	s.cacheManager.Stop()
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if _, err := s.svc.ListAccounts(r.Context(), s.owner); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "unavailable",
			"reason": fmt.Sprintf("store not reachable: %v", err),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
