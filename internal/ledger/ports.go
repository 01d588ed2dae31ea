// Package ledger orchestrates the record store, balance maintenance and
// summary computation behind the HTTP API.
package ledger

import (
	"context"

	"fintrack/internal/core"
)

// Store is the persistence port for the ledger. Implementations must apply a
// transaction write and its account balance adjustment atomically: a reader
// never observes one without the other.
type Store interface {
	CreateAccount(ctx context.Context, a core.Account) (int64, error)
	GetAccount(ctx context.Context, owner, id int64) (core.Account, error)
	ListAccounts(ctx context.Context, owner int64) ([]core.Account, error)
	DeleteAccount(ctx context.Context, owner, id int64) error
	ReconcileAccount(ctx context.Context, owner, id int64) (core.Account, error)

	CreateCategory(ctx context.Context, c core.Category) (int64, error)
	ListCategories(ctx context.Context, owner int64, kind core.CategoryKind) ([]core.Category, error)
	DeleteCategory(ctx context.Context, owner, id int64) error

	CreateMerchant(ctx context.Context, m core.Merchant) (int64, error)
	ListMerchants(ctx context.Context, owner int64) ([]core.Merchant, error)

	CreateTransaction(ctx context.Context, t core.Transaction) (int64, error)
	GetTransaction(ctx context.Context, owner, id int64) (core.TransactionRecord, error)
	DeleteTransaction(ctx context.Context, owner, id int64) error
	ListTransactions(ctx context.Context, owner int64, f core.TransactionFilter) ([]core.TransactionRecord, error)
	ListTransactionsBetween(ctx context.Context, owner int64, from, to core.Date) ([]core.TransactionRecord, error)
}

// EventPublisher emits ledger change events for external consumers.
// Publishing is best-effort; failures never fail the originating write.
type EventPublisher interface {
	PublishTransactionCreated(ctx context.Context, id int64) error
	PublishTransactionDeleted(ctx context.Context, id int64) error
}
