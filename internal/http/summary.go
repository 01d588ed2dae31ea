package http

import (
	"fmt"
	"net/http"

	"fintrack/internal/ledger"
)

// Summary endpoints are the read-heavy side of the API. Responses are cached
// per query; concurrent cold-cache requests for the same key are collapsed
// through singleflight so the store computes each summary once.

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	year, month, err := parseYearMonth(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	key := fmt.Sprintf("dashboard:%d:%04d-%02d", s.owner, year, month)
	if cached, ok := s.dashboardCache.Get(key); ok {
		writeJSON(w, http.StatusOK, cached)
		return
	}

	result, err, _ := s.flight.Do(key, func() (any, error) {
		summary, err := s.svc.Dashboard(r.Context(), s.owner, year, month)
		if err != nil {
			return nil, err
		}
		resp := ledger.PresentDashboard(summary)
		s.dashboardCache.Set(key, resp)
		return resp, nil
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result.(ledger.DashboardResponse))
}

func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	from, to, err := parseDateRange(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	key := fmt.Sprintf("analytics:%d:%s:%s", s.owner, from.Key(), to.Key())
	if cached, ok := s.analyticsCache.Get(key); ok {
		writeJSON(w, http.StatusOK, cached)
		return
	}

	result, err, _ := s.flight.Do(key, func() (any, error) {
		summary, err := s.svc.Analytics(r.Context(), s.owner, from, to)
		if err != nil {
			return nil, err
		}
		resp := ledger.PresentAnalytics(summary)
		s.analyticsCache.Set(key, resp)
		return resp, nil
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result.(ledger.AnalyticsResponse))
}
