package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"fintrack/internal/core"
)

const defaultListLimit = 50

// Service validates input, drives the store, and assembles summaries.
type Service struct {
	store  Store
	events EventPublisher // nil when event publishing is disabled
}

func NewService(store Store, events EventPublisher) *Service {
	return &Service{store: store, events: events}
}

// CreateTransaction persists a transaction; the store adjusts the owning
// account's balance in the same write.
func (s *Service) CreateTransaction(ctx context.Context, t core.Transaction) (int64, error) {
	t.Description = strings.TrimSpace(t.Description)
	if err := t.Validate(); err != nil {
		return 0, err
	}

	id, err := s.store.CreateTransaction(ctx, t)
	if err != nil {
		return 0, fmt.Errorf("create transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction created",
		"id", id,
		"account_id", t.AccountID,
		"type", t.Type,
		"amount_cents", t.Amount.Cents,
		"date", t.Date.Key())

	if s.events != nil {
		if err := s.events.PublishTransactionCreated(ctx, id); err != nil {
			slog.ErrorContext(ctx, "Failed to publish transaction event", "id", id, "error", err)
			// Ledger write succeeded; the event feed is advisory.
		}
	}
	return id, nil
}

// DeleteTransaction removes a transaction; the store reverses its balance
// effect in the same write.
func (s *Service) DeleteTransaction(ctx context.Context, owner, id int64) error {
	if err := s.store.DeleteTransaction(ctx, owner, id); err != nil {
		return fmt.Errorf("delete transaction %d: %w", id, err)
	}

	slog.InfoContext(ctx, "Transaction deleted", "id", id)

	if s.events != nil {
		if err := s.events.PublishTransactionDeleted(ctx, id); err != nil {
			slog.ErrorContext(ctx, "Failed to publish transaction event", "id", id, "error", err)
		}
	}
	return nil
}

func (s *Service) GetTransaction(ctx context.Context, owner, id int64) (core.TransactionRecord, error) {
	return s.store.GetTransaction(ctx, owner, id)
}

func (s *Service) ListTransactions(ctx context.Context, owner int64, f core.TransactionFilter) ([]core.TransactionRecord, error) {
	switch f.Type {
	case "", "all", string(core.Income), string(core.Expense), string(core.Transfer):
	default:
		return nil, core.ErrInvalidType
	}
	if f.Limit <= 0 {
		f.Limit = defaultListLimit
	}
	return s.store.ListTransactions(ctx, owner, f)
}

func (s *Service) CreateAccount(ctx context.Context, a core.Account) (int64, error) {
	a.Name = strings.TrimSpace(a.Name)
	// New accounts open at their initial balance by definition.
	a.Balance = a.Initial
	if err := a.Validate(); err != nil {
		return 0, err
	}
	id, err := s.store.CreateAccount(ctx, a)
	if err != nil {
		return 0, fmt.Errorf("create account: %w", err)
	}
	slog.InfoContext(ctx, "Account created", "id", id, "name", a.Name, "type", a.Type)
	return id, nil
}

func (s *Service) ListAccounts(ctx context.Context, owner int64) ([]core.Account, error) {
	return s.store.ListAccounts(ctx, owner)
}

// DeleteAccount fails with core.ErrConflict while the account still owns
// transactions; there is no cascading delete.
func (s *Service) DeleteAccount(ctx context.Context, owner, id int64) error {
	if err := s.store.DeleteAccount(ctx, owner, id); err != nil {
		return fmt.Errorf("delete account %d: %w", id, err)
	}
	slog.InfoContext(ctx, "Account deleted", "id", id)
	return nil
}

// ReconcileAccount recomputes an account balance from its full transaction
// set. Repair path only: normal writes maintain the balance incrementally.
func (s *Service) ReconcileAccount(ctx context.Context, owner, id int64) (core.Account, error) {
	a, err := s.store.ReconcileAccount(ctx, owner, id)
	if err != nil {
		return core.Account{}, fmt.Errorf("reconcile account %d: %w", id, err)
	}
	slog.InfoContext(ctx, "Account reconciled", "id", id, "balance_cents", a.Balance.Cents)
	return a, nil
}

func (s *Service) CreateCategory(ctx context.Context, c core.Category) (int64, error) {
	c.Name = strings.TrimSpace(c.Name)
	if err := c.Validate(); err != nil {
		return 0, err
	}
	id, err := s.store.CreateCategory(ctx, c)
	if err != nil {
		return 0, fmt.Errorf("create category: %w", err)
	}
	return id, nil
}

func (s *Service) ListCategories(ctx context.Context, owner int64, kind core.CategoryKind) ([]core.Category, error) {
	if kind != "" && !kind.Valid() {
		return nil, core.ErrInvalidKind
	}
	return s.store.ListCategories(ctx, owner, kind)
}

func (s *Service) DeleteCategory(ctx context.Context, owner, id int64) error {
	if err := s.store.DeleteCategory(ctx, owner, id); err != nil {
		return fmt.Errorf("delete category %d: %w", id, err)
	}
	return nil
}

func (s *Service) CreateMerchant(ctx context.Context, m core.Merchant) (int64, error) {
	m.Name = strings.TrimSpace(m.Name)
	if err := m.Validate(); err != nil {
		return 0, err
	}
	id, err := s.store.CreateMerchant(ctx, m)
	if err != nil {
		return 0, fmt.Errorf("create merchant: %w", err)
	}
	return id, nil
}

func (s *Service) ListMerchants(ctx context.Context, owner int64) ([]core.Merchant, error) {
	return s.store.ListMerchants(ctx, owner)
}

// Dashboard computes the monthly overview for one (year, month).
func (s *Service) Dashboard(ctx context.Context, owner int64, year, month int) (core.DashboardSummary, error) {
	if month < 1 || month > 12 {
		return core.DashboardSummary{}, fmt.Errorf("%w: month out of range", core.ErrValidation)
	}

	accounts, err := s.store.ListAccounts(ctx, owner)
	if err != nil {
		return core.DashboardSummary{}, fmt.Errorf("list accounts: %w", err)
	}

	from := core.NewDate(year, month, 1)
	to := core.Date{Time: from.AddDate(0, 1, -1)}
	txns, err := s.store.ListTransactionsBetween(ctx, owner, from, to)
	if err != nil {
		return core.DashboardSummary{}, fmt.Errorf("list month transactions: %w", err)
	}

	return core.SummarizeMonth(year, month, accounts, txns), nil
}

// Analytics computes the range summary over an inclusive [from, to] interval.
func (s *Service) Analytics(ctx context.Context, owner int64, from, to core.Date) (core.RangeSummary, error) {
	if err := from.Validate(); err != nil {
		return core.RangeSummary{}, err
	}
	if err := to.Validate(); err != nil {
		return core.RangeSummary{}, err
	}
	if to.Before(from.Time) {
		return core.RangeSummary{}, fmt.Errorf("%w: end date before start date", core.ErrValidation)
	}

	txns, err := s.store.ListTransactionsBetween(ctx, owner, from, to)
	if err != nil {
		return core.RangeSummary{}, fmt.Errorf("list range transactions: %w", err)
	}

	return core.SummarizeRange(from, to, txns), nil
}
