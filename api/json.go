package api

import (
	"encoding/json"
	"net/http"

	"github.com/canledger/acb/ledgererr"
)

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

type errorBody struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// writeError maps err to its spec §7 status code. Unrecognised errors are
// reported as Internal, matching the "unexpected invariant violation" kind.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	if le, ok := ledgererr.As(err); ok {
		s.log.Warn().Str("kind", le.Kind.String()).Err(err).Msg("request failed")
		writeJSON(w, le.Kind.Status(), errorBody{Kind: le.Kind.String(), Message: le.Error()})
		return
	}
	s.log.Error().Err(err).Msg("unhandled internal error")
	writeJSON(w, http.StatusInternalServerError, errorBody{Kind: ledgererr.Internal.String(), Message: err.Error()})
}

func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return ledgererr.Validationf("malformed request body: %v", err)
	}
	return nil
}
