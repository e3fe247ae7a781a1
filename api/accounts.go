package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/canledger/acb/ledger"
)

type accountRequest struct {
	Name   string `json:"name"`
	Type   string `json:"type"`
	Broker string `json:"broker,omitempty"`
}

func (s *Server) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	var req accountRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	created, err := s.cat.CreateAccount(r.Context(), ledger.Account{
		Name: req.Name, Type: req.Type, Broker: req.Broker,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.cat.DeleteAccount(r.Context(), id); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
