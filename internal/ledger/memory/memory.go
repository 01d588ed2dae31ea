// Package memory provides an in-memory ledger store, used by the memory
// backend and by tests. A single mutex serializes writes, so a transaction
// and its balance adjustment are applied atomically.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"fintrack/internal/core"
)

type Store struct {
	mu     sync.Mutex
	nextID int64

	accounts     map[int64]core.Account
	categories   map[int64]core.Category
	merchants    map[int64]core.Merchant
	transactions map[int64]core.Transaction
}

func NewStore() *Store {
	return &Store{
		nextID:       1,
		accounts:     make(map[int64]core.Account),
		categories:   make(map[int64]core.Category),
		merchants:    make(map[int64]core.Merchant),
		transactions: make(map[int64]core.Transaction),
	}
}

func (s *Store) allocID() int64 {
	id := s.nextID
	s.nextID++
	return id
}

func (s *Store) CreateAccount(_ context.Context, a core.Account) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a.ID = s.allocID()
	s.accounts[a.ID] = a
	return a.ID, nil
}

func (s *Store) GetAccount(_ context.Context, owner, id int64) (core.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[id]
	if !ok || a.OwnerID != owner {
		return core.Account{}, fmt.Errorf("account %d: %w", id, core.ErrNotFound)
	}
	return a, nil
}

func (s *Store) ListAccounts(_ context.Context, owner int64) ([]core.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Account
	for _, a := range s.accounts {
		if a.OwnerID == owner {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) DeleteAccount(_ context.Context, owner, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[id]
	if !ok || a.OwnerID != owner {
		return fmt.Errorf("account %d: %w", id, core.ErrNotFound)
	}
	for _, t := range s.transactions {
		if t.AccountID == id {
			return fmt.Errorf("account %d: %w", id, core.ErrConflict)
		}
	}
	delete(s.accounts, id)
	return nil
}

func (s *Store) ReconcileAccount(_ context.Context, owner, id int64) (core.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[id]
	if !ok || a.OwnerID != owner {
		return core.Account{}, fmt.Errorf("account %d: %w", id, core.ErrNotFound)
	}
	sum := a.Initial.Cents
	for _, t := range s.transactions {
		if t.AccountID == id {
			sum += t.SignedCents()
		}
	}
	a.Balance.Cents = sum
	s.accounts[id] = a
	return a, nil
}

func (s *Store) CreateCategory(_ context.Context, c core.Category) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.ID = s.allocID()
	s.categories[c.ID] = c
	return c.ID, nil
}

func (s *Store) ListCategories(_ context.Context, owner int64, kind core.CategoryKind) ([]core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Category
	for _, c := range s.categories {
		if c.OwnerID == owner && (kind == "" || c.Kind == kind) {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) DeleteCategory(_ context.Context, owner, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.categories[id]
	if !ok || c.OwnerID != owner {
		return fmt.Errorf("category %d: %w", id, core.ErrNotFound)
	}
	for _, t := range s.transactions {
		if t.CategoryID == id {
			return fmt.Errorf("category %d: %w", id, core.ErrConflict)
		}
	}
	delete(s.categories, id)
	return nil
}

func (s *Store) CreateMerchant(_ context.Context, m core.Merchant) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m.ID = s.allocID()
	s.merchants[m.ID] = m
	return m.ID, nil
}

func (s *Store) ListMerchants(_ context.Context, owner int64) ([]core.Merchant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Merchant
	for _, m := range s.merchants {
		if m.OwnerID == owner {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) CreateTransaction(_ context.Context, t core.Transaction) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.accounts[t.AccountID]
	if !ok || a.OwnerID != t.OwnerID {
		return 0, fmt.Errorf("account %d: %w", t.AccountID, core.ErrNotFound)
	}
	if t.CategoryID != 0 {
		c, ok := s.categories[t.CategoryID]
		if !ok || c.OwnerID != t.OwnerID {
			return 0, fmt.Errorf("category %d: %w", t.CategoryID, core.ErrNotFound)
		}
	}
	if t.MerchantID != 0 {
		m, ok := s.merchants[t.MerchantID]
		if !ok || m.OwnerID != t.OwnerID {
			return 0, fmt.Errorf("merchant %d: %w", t.MerchantID, core.ErrNotFound)
		}
	}

	t.ID = s.allocID()
	s.transactions[t.ID] = t
	a.Balance.Cents += t.SignedCents()
	s.accounts[t.AccountID] = a
	return t.ID, nil
}

func (s *Store) GetTransaction(_ context.Context, owner, id int64) (core.TransactionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.transactions[id]
	if !ok || t.OwnerID != owner {
		return core.TransactionRecord{}, fmt.Errorf("transaction %d: %w", id, core.ErrNotFound)
	}
	return s.record(t), nil
}

func (s *Store) DeleteTransaction(_ context.Context, owner, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.transactions[id]
	if !ok || t.OwnerID != owner {
		return fmt.Errorf("transaction %d: %w", id, core.ErrNotFound)
	}
	// Reverse the stored delta; sign comes from the stored type.
	if a, ok := s.accounts[t.AccountID]; ok {
		a.Balance.Cents -= t.SignedCents()
		s.accounts[t.AccountID] = a
	}
	delete(s.transactions, id)
	return nil
}

func (s *Store) ListTransactions(_ context.Context, owner int64, f core.TransactionFilter) ([]core.TransactionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.TransactionRecord
	for _, t := range s.transactions {
		if t.OwnerID != owner {
			continue
		}
		if f.Type != "" && f.Type != "all" && string(t.Type) != f.Type {
			continue
		}
		out = append(out, s.record(t))
	}
	sort.Slice(out, func(i, j int) bool {
		di, dj := out[i].Date.Key(), out[j].Date.Key()
		if di != dj {
			return di > dj
		}
		return out[i].ID > out[j].ID
	})
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (s *Store) ListTransactionsBetween(_ context.Context, owner int64, from, to core.Date) ([]core.TransactionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	lo, hi := from.Key(), to.Key()
	var out []core.TransactionRecord
	for _, t := range s.transactions {
		if t.OwnerID != owner {
			continue
		}
		if key := t.Date.Key(); key < lo || key > hi {
			continue
		}
		out = append(out, s.record(t))
	}
	sort.Slice(out, func(i, j int) bool {
		di, dj := out[i].Date.Key(), out[j].Date.Key()
		if di != dj {
			return di < dj
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// record joins display names onto a transaction, mirroring what the SQL
// store does with LEFT JOINs.
func (s *Store) record(t core.Transaction) core.TransactionRecord {
	r := core.TransactionRecord{Transaction: t}
	if a, ok := s.accounts[t.AccountID]; ok {
		r.AccountName = a.Name
	}
	if c, ok := s.categories[t.CategoryID]; ok {
		r.CategoryName = c.Name
	}
	if m, ok := s.merchants[t.MerchantID]; ok {
		r.MerchantName = m.Name
	}
	return r
}
