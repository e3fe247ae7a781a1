package api

import (
	"net/http"

	"github.com/canledger/acb/money"
)

// positionResponse is §6.1's `GET /positions` row shape.
type positionResponse struct {
	AccountID   string        `json:"accountId"`
	SecurityID  string        `json:"securityId"`
	Shares      money.Quantity `json:"shares"`
	ACB         money.Money    `json:"acb"`
	ACBPerShare money.Money    `json:"acbPerShare"`
}

func (s *Server) handleListPositions(w http.ResponseWriter, r *http.Request) {
	accountID := r.URL.Query().Get("accountId")
	views := s.coord.Positions(accountID)

	out := make([]positionResponse, 0, len(views))
	for _, v := range views {
		out = append(out, positionResponse{
			AccountID:   v.Slice.AccountID,
			SecurityID:  v.Slice.SecurityID,
			Shares:      v.Position.Shares,
			ACB:         v.Position.ACB,
			ACBPerShare: v.Position.ACB.DivShares(v.Position.Shares),
		})
	}
	writeJSON(w, http.StatusOK, out)
}
