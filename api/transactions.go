package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/canledger/acb/date"
	"github.com/canledger/acb/ledger"
	"github.com/canledger/acb/money"
	"github.com/canledger/acb/replay"
)

// transactionRequest is the wire shape of an event (spec §3's table),
// matching the teacher's document-style request idiom: every field present,
// only the ones relevant to Type populated.
type transactionRequest struct {
	ExternalID  string           `json:"externalId,omitempty"`
	Date        date.Date        `json:"date"`
	Type        ledger.EventType `json:"type"`
	AccountID   string           `json:"accountId"`
	SecurityID  string           `json:"securityId"`
	Quantity    *decimal.Decimal `json:"quantity,omitempty"`
	Price       *decimal.Decimal `json:"price,omitempty"`
	Fees        *decimal.Decimal `json:"fees,omitempty"`
	FXRate      *decimal.Decimal `json:"fxRate,omitempty"`
	ROCPerShare *decimal.Decimal `json:"rocPerShare,omitempty"`
	Ratio       *decimal.Decimal `json:"ratio,omitempty"`
	Broker      string           `json:"broker,omitempty"`
}

func zeroIfNil(d *decimal.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	return *d
}

func (req transactionRequest) toRecord() ledger.Record {
	return ledger.Record{
		ExternalID:  req.ExternalID,
		Date:        req.Date,
		Type:        req.Type,
		AccountID:   req.AccountID,
		SecurityID:  req.SecurityID,
		Quantity:    money.QD(zeroIfNil(req.Quantity)),
		Price:       money.New(zeroIfNil(req.Price), "native"),
		Fees:        money.New(zeroIfNil(req.Fees), "native"),
		FXRate:      req.FXRate,
		ROCPerShare: money.New(zeroIfNil(req.ROCPerShare), "native"),
		Ratio:       req.Ratio,
		Broker:      req.Broker,
	}
}

// transactionResponse pairs the stored record with its computed view, the
// response shape §6.1 calls "201 with computed view".
type transactionResponse struct {
	ledger.Record
	Computed *replay.Computed `json:"computed,omitempty"`
}

func (s *Server) responseFor(r ledger.Record) transactionResponse {
	view, _ := s.coord.View(r.ID)
	return transactionResponse{Record: r, Computed: view}
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	view, err := s.coord.Create(r.Context(), req.toRecord())
	if err != nil {
		s.writeError(w, err)
		return
	}
	stored, err := s.coord.Get(r.Context(), view.RecordID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, s.responseFor(stored))
}

func (s *Server) handleEditTransaction(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req transactionRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	patch := patchFrom(req)
	if _, err := s.coord.Edit(r.Context(), id, patch); err != nil {
		s.writeError(w, err)
		return
	}
	stored, err := s.coord.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.responseFor(stored))
}

// patchFrom builds a ledger.Patch from only the fields present on the
// request; a field absent from the JSON body decodes as its zero value, so
// this only patches fields whose pointer-typed wire representation is non-nil
// plus AccountID/SecurityID/Broker/Date/Type, which are always sent whole by
// clients doing a partial edit of those fields.
func patchFrom(req transactionRequest) ledger.Patch {
	p := ledger.Patch{}
	if req.ExternalID != "" {
		p.ExternalID = &req.ExternalID
	}
	if !(req.Date == date.Date{}) {
		p.Date = &req.Date
	}
	if req.Type != "" {
		p.Type = &req.Type
	}
	if req.AccountID != "" {
		p.AccountID = &req.AccountID
	}
	if req.SecurityID != "" {
		p.SecurityID = &req.SecurityID
	}
	if req.Quantity != nil {
		q := money.QD(*req.Quantity)
		p.Quantity = &q
	}
	if req.Price != nil {
		v := money.New(*req.Price, "native")
		p.Price = &v
	}
	if req.Fees != nil {
		v := money.New(*req.Fees, "native")
		p.Fees = &v
	}
	if req.FXRate != nil {
		p.FXRate = req.FXRate
	}
	if req.ROCPerShare != nil {
		v := money.New(*req.ROCPerShare, "native")
		p.ROCPerShare = &v
	}
	if req.Ratio != nil {
		p.Ratio = req.Ratio
	}
	if req.Broker != "" {
		p.Broker = &req.Broker
	}
	return p
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.coord.Delete(r.Context(), id); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleBulkImport streams a batch of events in per spec §5: one Pass 1+2
// recompute per affected slice rather than one per event.
func (s *Server) handleBulkImport(w http.ResponseWriter, r *http.Request) {
	var reqs []transactionRequest
	if err := decodeJSON(r, &reqs); err != nil {
		s.writeError(w, err)
		return
	}
	records := make([]ledger.Record, 0, len(reqs))
	for _, req := range reqs {
		records = append(records, req.toRecord())
	}
	if err := s.coord.BulkImport(r.Context(), records, s.bulkImportTimeout); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"imported": len(records)})
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	accountID := r.URL.Query().Get("accountId")
	securityID := r.URL.Query().Get("securityId")
	records, err := s.coord.List(r.Context(), accountID, securityID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	out := make([]transactionResponse, 0, len(records))
	for _, rec := range records {
		out = append(out, s.responseFor(rec))
	}
	writeJSON(w, http.StatusOK, out)
}
