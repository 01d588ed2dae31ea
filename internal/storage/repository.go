// Package storage implements the ledger store on SQLite. Transaction writes
// and their balance adjustments run inside a single SQL transaction, so the
// account balance invariant holds for every reader.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"fintrack/internal/core"

	_ "modernc.org/sqlite"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(dbPath string) (*Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	for _, pragma := range []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("apply %s: %w", pragma, err)
		}
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *Repository) CreateAccount(ctx context.Context, a core.Account) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO accounts (owner_id, name, type, balance_cents, initial_cents, currency)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		a.OwnerID, a.Name, string(a.Type), a.Balance.Cents, a.Initial.Cents, a.Currency)
	if err != nil {
		return 0, fmt.Errorf("insert account: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("account id: %w", err)
	}

	slog.InfoContext(ctx, "Account saved",
		"id", id,
		"name", a.Name,
		"type", a.Type,
		"initial_cents", a.Initial.Cents)
	return id, nil
}

func (r *Repository) GetAccount(ctx context.Context, owner, id int64) (core.Account, error) {
	return scanAccount(r.db.QueryRowContext(ctx,
		`SELECT account_id, owner_id, name, type, balance_cents, initial_cents, currency
		 FROM accounts WHERE account_id = ? AND owner_id = ?`, id, owner), id)
}

func (r *Repository) ListAccounts(ctx context.Context, owner int64) ([]core.Account, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT account_id, owner_id, name, type, balance_cents, initial_cents, currency
		 FROM accounts WHERE owner_id = ? ORDER BY name`, owner)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var out []core.Account
	for rows.Next() {
		var a core.Account
		var typ string
		if err := rows.Scan(&a.ID, &a.OwnerID, &a.Name, &typ, &a.Balance.Cents, &a.Initial.Cents, &a.Currency); err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		a.Type = core.AccountType(typ)
		out = append(out, a)
	}
	return out, rows.Err()
}

// DeleteAccount refuses to delete an account that still owns transactions.
func (r *Repository) DeleteAccount(ctx context.Context, owner, id int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete account: %w", err)
	}
	defer tx.Rollback()

	// Ownership first: a referenced id belonging to someone else is not
	// found, not a conflict.
	if err := refExists(ctx, tx, "accounts", "account_id", id, owner); err != nil {
		return err
	}

	var count int64
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM transactions WHERE account_id = ?`, id).Scan(&count); err != nil {
		return fmt.Errorf("count account transactions: %w", err)
	}
	if count > 0 {
		return fmt.Errorf("account %d: %w", id, core.ErrConflict)
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM accounts WHERE account_id = ? AND owner_id = ?`, id, owner); err != nil {
		return fmt.Errorf("delete account: %w", err)
	}

	return tx.Commit()
}

// ReconcileAccount recomputes the balance from the full transaction sum.
// Repair path only; incremental maintenance is the normal regime.
func (r *Repository) ReconcileAccount(ctx context.Context, owner, id int64) (core.Account, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return core.Account{}, fmt.Errorf("begin reconcile: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE accounts
		 SET balance_cents = initial_cents + COALESCE(
		     (SELECT SUM(CASE WHEN txn_type = 'expense' THEN -amount_cents ELSE amount_cents END)
		      FROM transactions WHERE account_id = ?), 0)
		 WHERE account_id = ? AND owner_id = ?`, id, id, owner)
	if err != nil {
		return core.Account{}, fmt.Errorf("recompute balance: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.Account{}, fmt.Errorf("account %d: %w", id, core.ErrNotFound)
	}

	a, err := scanAccount(tx.QueryRowContext(ctx,
		`SELECT account_id, owner_id, name, type, balance_cents, initial_cents, currency
		 FROM accounts WHERE account_id = ? AND owner_id = ?`, id, owner), id)
	if err != nil {
		return core.Account{}, err
	}

	if err := tx.Commit(); err != nil {
		return core.Account{}, fmt.Errorf("commit reconcile: %w", err)
	}

	slog.InfoContext(ctx, "Account balance reconciled", "id", id, "balance_cents", a.Balance.Cents)
	return a, nil
}

func (r *Repository) CreateCategory(ctx context.Context, c core.Category) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO categories (owner_id, name, kind) VALUES (?, ?, ?)`,
		c.OwnerID, c.Name, string(c.Kind))
	if err != nil {
		return 0, fmt.Errorf("insert category: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("category id: %w", err)
	}
	return id, nil
}

func (r *Repository) ListCategories(ctx context.Context, owner int64, kind core.CategoryKind) ([]core.Category, error) {
	query := `SELECT category_id, owner_id, name, kind FROM categories WHERE owner_id = ?`
	args := []any{owner}
	if kind != "" {
		query += ` AND kind = ?`
		args = append(args, string(kind))
	}
	query += ` ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var out []core.Category
	for rows.Next() {
		var c core.Category
		var k string
		if err := rows.Scan(&c.ID, &c.OwnerID, &c.Name, &k); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		c.Kind = core.CategoryKind(k)
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *Repository) DeleteCategory(ctx context.Context, owner, id int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete category: %w", err)
	}
	defer tx.Rollback()

	if err := refExists(ctx, tx, "categories", "category_id", id, owner); err != nil {
		return err
	}

	var count int64
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM transactions WHERE category_id = ?`, id).Scan(&count); err != nil {
		return fmt.Errorf("count category transactions: %w", err)
	}
	if count > 0 {
		return fmt.Errorf("category %d: %w", id, core.ErrConflict)
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM categories WHERE category_id = ? AND owner_id = ?`, id, owner); err != nil {
		return fmt.Errorf("delete category: %w", err)
	}

	return tx.Commit()
}

func (r *Repository) CreateMerchant(ctx context.Context, m core.Merchant) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO merchants (owner_id, name) VALUES (?, ?)`, m.OwnerID, m.Name)
	if err != nil {
		return 0, fmt.Errorf("insert merchant: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("merchant id: %w", err)
	}
	return id, nil
}

func (r *Repository) ListMerchants(ctx context.Context, owner int64) ([]core.Merchant, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT merchant_id, owner_id, name FROM merchants WHERE owner_id = ? ORDER BY name`, owner)
	if err != nil {
		return nil, fmt.Errorf("list merchants: %w", err)
	}
	defer rows.Close()

	var out []core.Merchant
	for rows.Next() {
		var m core.Merchant
		if err := rows.Scan(&m.ID, &m.OwnerID, &m.Name); err != nil {
			return nil, fmt.Errorf("scan merchant: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// CreateTransaction inserts the transaction and applies its signed delta to
// the owning account inside one SQL transaction.
func (r *Repository) CreateTransaction(ctx context.Context, t core.Transaction) (int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin create transaction: %w", err)
	}
	defer tx.Rollback()

	if err := refExists(ctx, tx, "accounts", "account_id", t.AccountID, t.OwnerID); err != nil {
		return 0, err
	}
	if t.CategoryID != 0 {
		if err := refExists(ctx, tx, "categories", "category_id", t.CategoryID, t.OwnerID); err != nil {
			return 0, err
		}
	}
	if t.MerchantID != 0 {
		if err := refExists(ctx, tx, "merchants", "merchant_id", t.MerchantID, t.OwnerID); err != nil {
			return 0, err
		}
	}

	res, err := tx.ExecContext(ctx,
		`INSERT INTO transactions
		 (owner_id, account_id, category_id, merchant_id, txn_type, amount_cents, txn_date, description, notes)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.OwnerID, t.AccountID, nullID(t.CategoryID), nullID(t.MerchantID),
		string(t.Type), t.Amount.Cents, t.Date.Key(), t.Description, t.Notes)
	if err != nil {
		return 0, fmt.Errorf("insert transaction: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("transaction id: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE accounts SET balance_cents = balance_cents + ? WHERE account_id = ?`,
		t.SignedCents(), t.AccountID); err != nil {
		return 0, fmt.Errorf("apply balance delta: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit create transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved",
		"id", id,
		"account_id", t.AccountID,
		"type", t.Type,
		"amount_cents", t.Amount.Cents,
		"date", t.Date.Key())
	return id, nil
}

// DeleteTransaction removes the transaction and reverses its stored delta
// inside one SQL transaction. The sign is re-derived from the stored type.
func (r *Repository) DeleteTransaction(ctx context.Context, owner, id int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete transaction: %w", err)
	}
	defer tx.Rollback()

	var accountID, amountCents int64
	var typ string
	err = tx.QueryRowContext(ctx,
		`SELECT account_id, txn_type, amount_cents FROM transactions
		 WHERE transaction_id = ? AND owner_id = ?`, id, owner).
		Scan(&accountID, &typ, &amountCents)
	if err == sql.ErrNoRows {
		return fmt.Errorf("transaction %d: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("load transaction: %w", err)
	}

	reversed := core.Transaction{Type: core.TransactionType(typ), Amount: core.Money{Cents: amountCents}}
	if _, err := tx.ExecContext(ctx,
		`UPDATE accounts SET balance_cents = balance_cents - ? WHERE account_id = ?`,
		reversed.SignedCents(), accountID); err != nil {
		return fmt.Errorf("reverse balance delta: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM transactions WHERE transaction_id = ?`, id); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction removed", "id", id, "account_id", accountID)
	return nil
}

func (r *Repository) GetTransaction(ctx context.Context, owner, id int64) (core.TransactionRecord, error) {
	rows, err := r.db.QueryContext(ctx, txnSelect+
		` WHERE t.transaction_id = ? AND t.owner_id = ?`, id, owner)
	if err != nil {
		return core.TransactionRecord{}, fmt.Errorf("get transaction: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return core.TransactionRecord{}, fmt.Errorf("get transaction: %w", err)
		}
		return core.TransactionRecord{}, fmt.Errorf("transaction %d: %w", id, core.ErrNotFound)
	}
	return scanTransaction(rows)
}

func (r *Repository) ListTransactions(ctx context.Context, owner int64, f core.TransactionFilter) ([]core.TransactionRecord, error) {
	query := txnSelect + ` WHERE t.owner_id = ?`
	args := []any{owner}
	if f.Type != "" && f.Type != "all" {
		query += ` AND t.txn_type = ?`
		args = append(args, f.Type)
	}
	query += ` ORDER BY t.txn_date DESC, t.transaction_id DESC`
	if f.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, f.Limit)
	}
	return r.queryTransactions(ctx, query, args...)
}

func (r *Repository) ListTransactionsBetween(ctx context.Context, owner int64, from, to core.Date) ([]core.TransactionRecord, error) {
	return r.queryTransactions(ctx, txnSelect+
		` WHERE t.owner_id = ? AND t.txn_date BETWEEN ? AND ?
		  ORDER BY t.txn_date, t.transaction_id`,
		owner, from.Key(), to.Key())
}

const txnSelect = `
	SELECT t.transaction_id, t.owner_id, t.account_id, t.category_id, t.merchant_id,
	       t.txn_type, t.amount_cents, t.txn_date, t.description, t.notes,
	       a.name, c.name, m.name
	FROM transactions t
	LEFT JOIN accounts a ON t.account_id = a.account_id
	LEFT JOIN categories c ON t.category_id = c.category_id
	LEFT JOIN merchants m ON t.merchant_id = m.merchant_id`

func (r *Repository) queryTransactions(ctx context.Context, query string, args ...any) ([]core.TransactionRecord, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var out []core.TransactionRecord
	for rows.Next() {
		rec, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func scanTransaction(rows *sql.Rows) (core.TransactionRecord, error) {
	var rec core.TransactionRecord
	var typ, date string
	var categoryID, merchantID sql.NullInt64
	var accountName, categoryName, merchantName sql.NullString

	err := rows.Scan(&rec.ID, &rec.OwnerID, &rec.AccountID, &categoryID, &merchantID,
		&typ, &rec.Amount.Cents, &date, &rec.Description, &rec.Notes,
		&accountName, &categoryName, &merchantName)
	if err != nil {
		return core.TransactionRecord{}, fmt.Errorf("scan transaction: %w", err)
	}

	rec.Type = core.TransactionType(typ)
	rec.CategoryID = categoryID.Int64
	rec.MerchantID = merchantID.Int64
	rec.AccountName = accountName.String
	rec.CategoryName = categoryName.String
	rec.MerchantName = merchantName.String

	d, err := core.ParseDate(date)
	if err != nil {
		return core.TransactionRecord{}, fmt.Errorf("parse stored date %q: %w", date, err)
	}
	rec.Date = d
	return rec, nil
}

func scanAccount(row *sql.Row, id int64) (core.Account, error) {
	var a core.Account
	var typ string
	err := row.Scan(&a.ID, &a.OwnerID, &a.Name, &typ, &a.Balance.Cents, &a.Initial.Cents, &a.Currency)
	if err == sql.ErrNoRows {
		return core.Account{}, fmt.Errorf("account %d: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.Account{}, fmt.Errorf("scan account: %w", err)
	}
	a.Type = core.AccountType(typ)
	return a, nil
}

// refExists verifies a referenced row exists and belongs to the owner.
func refExists(ctx context.Context, tx *sql.Tx, table, column string, id, owner int64) error {
	var one int
	err := tx.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT 1 FROM %s WHERE %s = ? AND owner_id = ?`, table, column),
		id, owner).Scan(&one)
	if err == sql.ErrNoRows {
		return fmt.Errorf("%s %d: %w", column, id, core.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("check %s reference: %w", table, err)
	}
	return nil
}

func nullID(id int64) any {
	if id == 0 {
		return nil
	}
	return id
}
