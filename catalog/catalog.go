// Package catalog implements the securities/accounts metadata catalog (§6.2):
// CRUD only, read by the engine solely to resolve a security's currency. A
// mutex-guarded map, in the same idiom as ledger/memstore and
// aristath-sentinel's internal/testing/mocks.go.
package catalog

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/canledger/acb/ledger"
	"github.com/canledger/acb/ledgererr"
)

// Catalog is an in-memory securities/accounts catalog.
type Catalog struct {
	mu         sync.RWMutex
	securities map[string]ledger.Security
	accounts   map[string]ledger.Account
}

// New returns an empty Catalog.
func New() *Catalog {
	return &Catalog{
		securities: make(map[string]ledger.Security),
		accounts:   make(map[string]ledger.Account),
	}
}

func (c *Catalog) CreateSecurity(_ context.Context, s ledger.Security) (ledger.Security, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s.ID = uuid.NewString()
	c.securities[s.ID] = s
	return s, nil
}

func (c *Catalog) DeleteSecurity(_ context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.securities[id]; !ok {
		return ledgererr.NotFoundf("security %q not found", id)
	}
	delete(c.securities, id)
	return nil
}

// Security implements ledger.SecurityCatalog.
func (c *Catalog) Security(_ context.Context, id string) (ledger.Security, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.securities[id]
	if !ok {
		return ledger.Security{}, ledgererr.NotFoundf("security %q not found", id)
	}
	return s, nil
}

func (c *Catalog) CreateAccount(_ context.Context, a ledger.Account) (ledger.Account, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	a.ID = uuid.NewString()
	c.accounts[a.ID] = a
	return a, nil
}

func (c *Catalog) DeleteAccount(_ context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.accounts[id]; !ok {
		return ledgererr.NotFoundf("account %q not found", id)
	}
	delete(c.accounts, id)
	return nil
}

func (c *Catalog) Account(_ context.Context, id string) (ledger.Account, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	a, ok := c.accounts[id]
	if !ok {
		return ledger.Account{}, ledgererr.NotFoundf("account %q not found", id)
	}
	return a, nil
}
