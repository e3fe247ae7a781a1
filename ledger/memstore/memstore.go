// Package memstore is an in-memory, mutex-guarded ledger.Store, used as the
// default backend and by tests, the way aristath-sentinel's
// internal/testing/mocks.go backs its repositories with a guarded map instead
// of a real database.
package memstore

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/canledger/acb/ledger"
	"github.com/canledger/acb/ledgererr"
)

// Store is a map-backed ledger.Store. Zero value is not usable; use New.
type Store struct {
	mu       sync.RWMutex
	records  map[string]ledger.Record
	extIndex map[string]map[string]string // accountID -> externalID -> record id
	nextSeq  uint64
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		records:  make(map[string]ledger.Record),
		extIndex: make(map[string]map[string]string),
	}
}

func (s *Store) Insert(_ context.Context, r ledger.Record) (ledger.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r.ExternalID != "" {
		if byExt, ok := s.extIndex[r.AccountID]; ok {
			if _, exists := byExt[r.ExternalID]; exists {
				return ledger.Record{}, ledgererr.Duplicatef(
					"externalId %q already exists on account %q", r.ExternalID, r.AccountID)
			}
		}
	}

	r.ID = uuid.NewString()
	s.nextSeq++
	r.Seq = s.nextSeq
	s.records[r.ID] = r

	if r.ExternalID != "" {
		byExt, ok := s.extIndex[r.AccountID]
		if !ok {
			byExt = make(map[string]string)
			s.extIndex[r.AccountID] = byExt
		}
		byExt[r.ExternalID] = r.ID
	}
	return r, nil
}

func (s *Store) Update(_ context.Context, id string, patch ledger.Patch) (ledger.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.records[id]
	if !ok {
		return ledger.Record{}, ledgererr.NotFoundf("transaction %q not found", id)
	}

	updated := patch.Apply(existing)

	if patch.ExternalID != nil && updated.ExternalID != "" {
		byExt, ok := s.extIndex[updated.AccountID]
		if ok {
			if otherID, exists := byExt[updated.ExternalID]; exists && otherID != id {
				return ledger.Record{}, ledgererr.Duplicatef(
					"externalId %q already exists on account %q", updated.ExternalID, updated.AccountID)
			}
		}
	}

	// Keep the externalId index consistent across account/externalId edits.
	if existing.ExternalID != "" {
		if byExt, ok := s.extIndex[existing.AccountID]; ok {
			delete(byExt, existing.ExternalID)
		}
	}
	if updated.ExternalID != "" {
		byExt, ok := s.extIndex[updated.AccountID]
		if !ok {
			byExt = make(map[string]string)
			s.extIndex[updated.AccountID] = byExt
		}
		byExt[updated.ExternalID] = id
	}

	s.records[id] = updated
	return updated, nil
}

func (s *Store) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.records[id]
	if !ok {
		return ledgererr.NotFoundf("transaction %q not found", id)
	}
	if existing.ExternalID != "" {
		if byExt, ok := s.extIndex[existing.AccountID]; ok {
			delete(byExt, existing.ExternalID)
		}
	}
	delete(s.records, id)
	return nil
}

func (s *Store) Restore(_ context.Context, r ledger.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[r.ID] = r
	if r.ExternalID != "" {
		byExt, ok := s.extIndex[r.AccountID]
		if !ok {
			byExt = make(map[string]string)
			s.extIndex[r.AccountID] = byExt
		}
		byExt[r.ExternalID] = r.ID
	}
	if r.Seq > s.nextSeq {
		s.nextSeq = r.Seq
	}
	return nil
}

func (s *Store) Get(_ context.Context, id string) (ledger.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.records[id]
	if !ok {
		return ledger.Record{}, ledgererr.NotFoundf("transaction %q not found", id)
	}
	return r, nil
}

func (s *Store) List(_ context.Context, accountID, securityID string) ([]ledger.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []ledger.Record
	for _, r := range s.records {
		if r.AccountID == accountID && r.SecurityID == securityID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *Store) ListAll(_ context.Context) ([]ledger.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]ledger.Record, 0, len(s.records))
	for _, r := range s.records {
		out = append(out, r)
	}
	return out, nil
}
