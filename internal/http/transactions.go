package http

import (
	"net/http"
	"strconv"

	"fintrack/internal/core"
)

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	filter := core.TransactionFilter{
		Type: r.URL.Query().Get("type"),
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if limit, err := strconv.Atoi(raw); err == nil {
			filter.Limit = limit
		}
	}

	records, err := s.svc.ListTransactions(r.Context(), s.owner, filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if records == nil {
		records = []core.TransactionRecord{}
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var txn core.Transaction
	if err := decodeBody(r, &txn); err != nil {
		writeError(w, r, err)
		return
	}
	txn.OwnerID = s.owner

	id, err := s.svc.CreateTransaction(r.Context(), txn)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidateSummaries()

	writeJSON(w, http.StatusCreated, map[string]any{
		"transaction_id": id,
		"success":        true,
	})
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	record, err := s.svc.GetTransaction(r.Context(), s.owner, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := s.svc.DeleteTransaction(r.Context(), s.owner, id); err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidateSummaries()
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}
