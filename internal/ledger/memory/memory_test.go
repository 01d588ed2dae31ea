package memory

import (
	"context"
	"errors"
	"testing"

	"fintrack/internal/core"
)

const owner = int64(1)

func seedAccount(t *testing.T, s *Store, name string, initial int64) int64 {
	t.Helper()
	id, err := s.CreateAccount(context.Background(), core.Account{
		OwnerID:  owner,
		Name:     name,
		Type:     core.Checking,
		Balance:  core.Money{Cents: initial},
		Initial:  core.Money{Cents: initial},
		Currency: "EUR",
	})
	if err != nil {
		t.Fatalf("CreateAccount() error = %v", err)
	}
	return id
}

func seedTransaction(t *testing.T, s *Store, accountID int64, txnType core.TransactionType, cents int64, date core.Date) int64 {
	t.Helper()
	id, err := s.CreateTransaction(context.Background(), core.Transaction{
		OwnerID:   owner,
		AccountID: accountID,
		Type:      txnType,
		Amount:    core.Money{Cents: cents},
		Date:      date,
	})
	if err != nil {
		t.Fatalf("CreateTransaction() error = %v", err)
	}
	return id
}

func TestBalanceMaintenance(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	accountID := seedAccount(t, s, "Checking", 100000)

	seedTransaction(t, s, accountID, core.Expense, 20000, core.NewDate(2025, 3, 5))
	seedTransaction(t, s, accountID, core.Income, 5000, core.NewDate(2025, 3, 6))

	a, err := s.GetAccount(ctx, owner, accountID)
	if err != nil {
		t.Fatalf("GetAccount() error = %v", err)
	}
	if a.Balance.Cents != 85000 {
		t.Errorf("balance = %d, want 85000", a.Balance.Cents)
	}
}

func TestDeleteReversesDelta(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	accountID := seedAccount(t, s, "Checking", 100000)
	txnID := seedTransaction(t, s, accountID, core.Expense, 20000, core.NewDate(2025, 3, 5))

	if err := s.DeleteTransaction(ctx, owner, txnID); err != nil {
		t.Fatalf("DeleteTransaction() error = %v", err)
	}

	a, _ := s.GetAccount(ctx, owner, accountID)
	if a.Balance.Cents != 100000 {
		t.Errorf("balance after delete = %d, want 100000", a.Balance.Cents)
	}
}

func TestReconcileAccount(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	accountID := seedAccount(t, s, "Checking", 50000)
	seedTransaction(t, s, accountID, core.Expense, 10000, core.NewDate(2025, 3, 1))

	// Corrupt the balance, then repair.
	s.mu.Lock()
	a := s.accounts[accountID]
	a.Balance.Cents = -1
	s.accounts[accountID] = a
	s.mu.Unlock()

	repaired, err := s.ReconcileAccount(ctx, owner, accountID)
	if err != nil {
		t.Fatalf("ReconcileAccount() error = %v", err)
	}
	if repaired.Balance.Cents != 40000 {
		t.Errorf("reconciled balance = %d, want 40000", repaired.Balance.Cents)
	}
}

func TestConflictDeletes(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	accountID := seedAccount(t, s, "Checking", 0)

	categoryID, err := s.CreateCategory(ctx, core.Category{OwnerID: owner, Name: "Food", Kind: core.ExpenseKind})
	if err != nil {
		t.Fatalf("CreateCategory() error = %v", err)
	}

	if _, err := s.CreateTransaction(ctx, core.Transaction{
		OwnerID:    owner,
		AccountID:  accountID,
		CategoryID: categoryID,
		Type:       core.Expense,
		Amount:     core.Money{Cents: 500},
		Date:       core.NewDate(2025, 4, 1),
	}); err != nil {
		t.Fatalf("CreateTransaction() error = %v", err)
	}

	if err := s.DeleteAccount(ctx, owner, accountID); !errors.Is(err, core.ErrConflict) {
		t.Errorf("DeleteAccount() error = %v, want ErrConflict", err)
	}
	if err := s.DeleteCategory(ctx, owner, categoryID); !errors.Is(err, core.ErrConflict) {
		t.Errorf("DeleteCategory() error = %v, want ErrConflict", err)
	}
}

func TestCreateTransactionUnknownReferences(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	accountID := seedAccount(t, s, "Checking", 0)

	tests := []struct {
		name string
		txn  core.Transaction
	}{
		{"unknown account", core.Transaction{AccountID: 999}},
		{"unknown category", core.Transaction{AccountID: accountID, CategoryID: 999}},
		{"unknown merchant", core.Transaction{AccountID: accountID, MerchantID: 999}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			txn := tt.txn
			txn.OwnerID = owner
			txn.Type = core.Expense
			txn.Amount = core.Money{Cents: 100}
			txn.Date = core.NewDate(2025, 1, 1)

			if _, err := s.CreateTransaction(ctx, txn); !errors.Is(err, core.ErrNotFound) {
				t.Errorf("CreateTransaction() error = %v, want ErrNotFound", err)
			}
		})
	}
}

func TestListTransactionsOrderingAndFilter(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	accountID := seedAccount(t, s, "Checking", 0)

	seedTransaction(t, s, accountID, core.Expense, 100, core.NewDate(2025, 5, 1))
	seedTransaction(t, s, accountID, core.Income, 200, core.NewDate(2025, 5, 3))
	seedTransaction(t, s, accountID, core.Expense, 300, core.NewDate(2025, 5, 2))

	all, err := s.ListTransactions(ctx, owner, core.TransactionFilter{})
	if err != nil {
		t.Fatalf("ListTransactions() error = %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("got %d records, want 3", len(all))
	}
	if all[0].Date.Key() != "2025-05-03" || all[2].Date.Key() != "2025-05-01" {
		t.Errorf("order = %s..%s, want newest first", all[0].Date.Key(), all[2].Date.Key())
	}

	expenses, _ := s.ListTransactions(ctx, owner, core.TransactionFilter{Type: "expense"})
	if len(expenses) != 2 {
		t.Errorf("expense filter returned %d records, want 2", len(expenses))
	}

	limited, _ := s.ListTransactions(ctx, owner, core.TransactionFilter{Limit: 1})
	if len(limited) != 1 {
		t.Errorf("limit 1 returned %d records", len(limited))
	}
}

func TestListTransactionsBetween(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	accountID := seedAccount(t, s, "Checking", 0)

	seedTransaction(t, s, accountID, core.Expense, 100, core.NewDate(2025, 1, 31))
	seedTransaction(t, s, accountID, core.Expense, 200, core.NewDate(2025, 2, 1))
	seedTransaction(t, s, accountID, core.Expense, 300, core.NewDate(2025, 1, 1))

	records, err := s.ListTransactionsBetween(ctx, owner, core.NewDate(2025, 1, 1), core.NewDate(2025, 1, 31))
	if err != nil {
		t.Fatalf("ListTransactionsBetween() error = %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2 (inclusive bounds)", len(records))
	}
	if records[0].Date.Key() != "2025-01-01" {
		t.Errorf("range order = %s, want oldest first", records[0].Date.Key())
	}
}

func TestRecordJoinsNames(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	accountID := seedAccount(t, s, "Wallet", 0)

	merchantID, _ := s.CreateMerchant(ctx, core.Merchant{OwnerID: owner, Name: "Bakery"})
	txnID, err := s.CreateTransaction(ctx, core.Transaction{
		OwnerID:    owner,
		AccountID:  accountID,
		MerchantID: merchantID,
		Type:       core.Expense,
		Amount:     core.Money{Cents: 350},
		Date:       core.NewDate(2025, 6, 1),
	})
	if err != nil {
		t.Fatalf("CreateTransaction() error = %v", err)
	}

	rec, err := s.GetTransaction(ctx, owner, txnID)
	if err != nil {
		t.Fatalf("GetTransaction() error = %v", err)
	}
	if rec.AccountName != "Wallet" || rec.MerchantName != "Bakery" {
		t.Errorf("names = %q/%q", rec.AccountName, rec.MerchantName)
	}
	if rec.CategoryName != "" {
		t.Errorf("CategoryName = %q for uncategorized transaction", rec.CategoryName)
	}
}
