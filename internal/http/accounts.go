package http

import (
	"net/http"

	"fintrack/internal/core"
)

// createAccountRequest accepts the initial balance under either key the
// frontend has historically used.
type createAccountRequest struct {
	Name     string           `json:"name"`
	Type     core.AccountType `json:"type"`
	Balance  core.Money       `json:"balance"`
	Initial  core.Money       `json:"initial_balance"`
	Currency string           `json:"currency"`
}

func (s *Server) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := s.svc.ListAccounts(r.Context(), s.owner)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if accounts == nil {
		accounts = []core.Account{}
	}
	writeJSON(w, http.StatusOK, accounts)
}

func (s *Server) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	var req createAccountRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	initial := req.Initial
	if initial.Cents == 0 {
		initial = req.Balance
	}
	currency := req.Currency
	if currency == "" {
		currency = "EUR"
	}

	account := core.Account{
		OwnerID:  s.owner,
		Name:     req.Name,
		Type:     req.Type,
		Initial:  initial,
		Currency: currency,
	}

	id, err := s.svc.CreateAccount(r.Context(), account)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidateSummaries()

	account.ID = id
	account.Balance = initial
	writeJSON(w, http.StatusCreated, account)
}

func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := s.svc.DeleteAccount(r.Context(), s.owner, id); err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidateSummaries()
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (s *Server) handleReconcileAccount(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	account, err := s.svc.ReconcileAccount(r.Context(), s.owner, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidateSummaries()
	writeJSON(w, http.StatusOK, account)
}
