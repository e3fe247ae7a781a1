package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/canledger/acb/ledger"
)

type securityRequest struct {
	Symbol   string `json:"symbol"`
	Name     string `json:"name,omitempty"`
	Currency string `json:"currency"`
	Type     string `json:"type"`
}

func (s *Server) handleCreateSecurity(w http.ResponseWriter, r *http.Request) {
	var req securityRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	created, err := s.cat.CreateSecurity(r.Context(), ledger.Security{
		Symbol: req.Symbol, Name: req.Name, Currency: req.Currency, Type: req.Type,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleDeleteSecurity(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.cat.DeleteSecurity(r.Context(), id); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
