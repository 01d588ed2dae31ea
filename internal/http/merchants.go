package http

import (
	"net/http"

	"fintrack/internal/core"
)

func (s *Server) handleListMerchants(w http.ResponseWriter, r *http.Request) {
	merchants, err := s.svc.ListMerchants(r.Context(), s.owner)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if merchants == nil {
		merchants = []core.Merchant{}
	}
	writeJSON(w, http.StatusOK, merchants)
}

func (s *Server) handleCreateMerchant(w http.ResponseWriter, r *http.Request) {
	var merchant core.Merchant
	if err := decodeBody(r, &merchant); err != nil {
		writeError(w, r, err)
		return
	}
	merchant.OwnerID = s.owner

	id, err := s.svc.CreateMerchant(r.Context(), merchant)
	if err != nil {
		writeError(w, r, err)
		return
	}

	merchant.ID = id
	writeJSON(w, http.StatusCreated, merchant)
}
