package core

import (
	"fmt"
	"testing"
)

func expense(cents int64, date Date, categoryID int64, categoryName string) TransactionRecord {
	return TransactionRecord{
		Transaction: Transaction{
			AccountID:  1,
			Type:       Expense,
			Amount:     Money{Cents: cents},
			Date:       date,
			CategoryID: categoryID,
		},
		CategoryName: categoryName,
	}
}

func TestSummarizeMonthTotals(t *testing.T) {
	accounts := []Account{
		{ID: 1, Name: "Checking", Balance: Money{Cents: 80000}},
		{ID: 2, Name: "Savings", Balance: Money{Cents: 1500000}},
	}
	txns := []TransactionRecord{
		expense(20000, NewDate(2025, 4, 3), 1, "Food"),
		{Transaction: Transaction{AccountID: 1, Type: Income, Amount: Money{Cents: 350000}, Date: NewDate(2025, 4, 1)}},
		{Transaction: Transaction{AccountID: 1, Type: Transfer, Amount: Money{Cents: 50000}, Date: NewDate(2025, 4, 5)}},
	}

	s := SummarizeMonth(2025, 4, accounts, txns)

	if s.TotalBalance.Cents != 1580000 {
		t.Errorf("TotalBalance = %d, want 1580000", s.TotalBalance.Cents)
	}
	if s.Income.Cents != 350000 {
		t.Errorf("Income = %d, want 350000", s.Income.Cents)
	}
	if s.Expense.Cents != 20000 {
		t.Errorf("Expense = %d, want 20000", s.Expense.Cents)
	}
	if s.Net.Cents != 330000 {
		t.Errorf("Net = %d, want 330000", s.Net.Cents)
	}
	if len(s.ByCategory) != 1 || s.ByCategory[0].Name != "Food" || s.ByCategory[0].Amount.Cents != 20000 {
		t.Errorf("ByCategory = %+v, want single Food entry of 20000", s.ByCategory)
	}
}

func TestSummarizeMonthGroupsSameCategory(t *testing.T) {
	txns := []TransactionRecord{
		expense(5000, NewDate(2025, 4, 2), 7, "Dining"),
		expense(15000, NewDate(2025, 4, 9), 7, "Dining"),
	}

	s := SummarizeMonth(2025, 4, nil, txns)

	if len(s.ByCategory) != 1 {
		t.Fatalf("ByCategory has %d entries, want 1", len(s.ByCategory))
	}
	if s.ByCategory[0].Amount.Cents != 20000 {
		t.Errorf("grouped amount = %d, want 20000", s.ByCategory[0].Amount.Cents)
	}
}

func TestSummarizeMonthIncomeNeverGrouped(t *testing.T) {
	txns := []TransactionRecord{
		{Transaction: Transaction{AccountID: 1, Type: Income, Amount: Money{Cents: 100000}, Date: NewDate(2025, 4, 1), CategoryID: 2}, CategoryName: "Salary"},
		expense(4000, NewDate(2025, 4, 2), 1, "Food"),
	}

	s := SummarizeMonth(2025, 4, nil, txns)

	for _, c := range s.ByCategory {
		if c.Name == "Salary" {
			t.Errorf("income category leaked into expense breakdown: %+v", s.ByCategory)
		}
	}
}

func TestSummarizeMonthUncategorizedInTotalsOnly(t *testing.T) {
	txns := []TransactionRecord{
		expense(120000, NewDate(2025, 4, 1), 0, ""), // rent with no category
		expense(4000, NewDate(2025, 4, 2), 1, "Food"),
	}

	s := SummarizeMonth(2025, 4, nil, txns)

	if s.Expense.Cents != 124000 {
		t.Errorf("Expense = %d, want 124000", s.Expense.Cents)
	}
	if len(s.ByCategory) != 1 {
		t.Errorf("ByCategory has %d entries, want 1 (uncategorized excluded)", len(s.ByCategory))
	}
}

func TestSummarizeMonthTieOrderDeterministic(t *testing.T) {
	// Identical display names and equal amounts: grouped by id, ordered by id.
	txns := []TransactionRecord{
		expense(5000, NewDate(2025, 4, 1), 9, "Misc"),
		expense(5000, NewDate(2025, 4, 2), 3, "Misc"),
	}

	s := SummarizeMonth(2025, 4, nil, txns)

	if len(s.ByCategory) != 2 {
		t.Fatalf("ByCategory has %d entries, want 2 (grouping is by id, not name)", len(s.ByCategory))
	}
	if s.ByCategory[0].CategoryID != 3 || s.ByCategory[1].CategoryID != 9 {
		t.Errorf("tie order = [%d %d], want [3 9]", s.ByCategory[0].CategoryID, s.ByCategory[1].CategoryID)
	}
}

func TestSummarizeRangeTopMerchantTruncation(t *testing.T) {
	from, to := NewDate(2025, 4, 1), NewDate(2025, 4, 30)
	var txns []TransactionRecord
	for i := 1; i <= 12; i++ {
		txns = append(txns, TransactionRecord{
			Transaction: Transaction{
				AccountID:  1,
				Type:       Expense,
				Amount:     Money{Cents: int64(i) * 1000},
				Date:       NewDate(2025, 4, i),
				MerchantID: int64(i),
			},
			MerchantName: fmt.Sprintf("Merchant %02d", i),
		})
	}

	s := SummarizeRange(from, to, txns)

	if len(s.ByMerchant) != 10 {
		t.Fatalf("ByMerchant has %d entries, want exactly 10", len(s.ByMerchant))
	}
	if s.ByMerchant[0].MerchantID != 12 {
		t.Errorf("top merchant id = %d, want 12", s.ByMerchant[0].MerchantID)
	}
	for _, m := range s.ByMerchant {
		if m.MerchantID == 1 || m.MerchantID == 2 {
			t.Errorf("merchant %d should have been truncated", m.MerchantID)
		}
	}
	for i := 1; i < len(s.ByMerchant); i++ {
		if s.ByMerchant[i].Amount.Cents > s.ByMerchant[i-1].Amount.Cents {
			t.Errorf("ByMerchant not sorted descending at index %d", i)
		}
	}
}

func TestSummarizeRangeMerchantTiesByName(t *testing.T) {
	txns := []TransactionRecord{
		{Transaction: Transaction{AccountID: 1, Type: Expense, Amount: Money{Cents: 900}, Date: NewDate(2025, 4, 1), MerchantID: 5}, MerchantName: "Zeta Mart"},
		{Transaction: Transaction{AccountID: 1, Type: Expense, Amount: Money{Cents: 900}, Date: NewDate(2025, 4, 2), MerchantID: 8}, MerchantName: "Acme Store"},
	}

	s := SummarizeRange(NewDate(2025, 4, 1), NewDate(2025, 4, 30), txns)

	if len(s.ByMerchant) != 2 || s.ByMerchant[0].Name != "Acme Store" {
		t.Errorf("equal amounts should order by name ascending, got %+v", s.ByMerchant)
	}
}

func TestSummarizeRangeDailyOmitsZeroDays(t *testing.T) {
	txns := []TransactionRecord{
		expense(1000, NewDate(2025, 4, 1), 1, "Food"),
		expense(2000, NewDate(2025, 4, 3), 1, "Food"),
		// day 2 has income only: must not appear in the daily series
		{Transaction: Transaction{AccountID: 1, Type: Income, Amount: Money{Cents: 5000}, Date: NewDate(2025, 4, 2)}},
	}

	s := SummarizeRange(NewDate(2025, 4, 1), NewDate(2025, 4, 5), txns)

	if len(s.ByDay) != 2 {
		t.Fatalf("ByDay has %d entries, want 2", len(s.ByDay))
	}
	if s.ByDay[0].Date.Key() != "2025-04-01" || s.ByDay[1].Date.Key() != "2025-04-03" {
		t.Errorf("ByDay dates = [%s %s], want [2025-04-01 2025-04-03]",
			s.ByDay[0].Date.Key(), s.ByDay[1].Date.Key())
	}
	if s.ByDay[0].Amount.Cents != 1000 || s.ByDay[1].Amount.Cents != 2000 {
		t.Errorf("ByDay amounts wrong: %+v", s.ByDay)
	}
}

func TestSummarizeRangeTotals(t *testing.T) {
	txns := []TransactionRecord{
		{Transaction: Transaction{AccountID: 1, Type: Income, Amount: Money{Cents: 350000}, Date: NewDate(2025, 4, 1)}},
		expense(15050, NewDate(2025, 4, 4), 1, "Groceries"),
		expense(4575, NewDate(2025, 4, 7), 7, "Dining"),
	}

	s := SummarizeRange(NewDate(2025, 4, 1), NewDate(2025, 4, 30), txns)

	if s.Income.Cents != 350000 {
		t.Errorf("Income = %d, want 350000", s.Income.Cents)
	}
	if s.Expense.Cents != 19625 {
		t.Errorf("Expense = %d, want 19625", s.Expense.Cents)
	}
	if s.Net.Cents != 330375 {
		t.Errorf("Net = %d, want 330375", s.Net.Cents)
	}
	if len(s.ByCategory) != 2 || s.ByCategory[0].Name != "Groceries" {
		t.Errorf("ByCategory = %+v, want Groceries first", s.ByCategory)
	}
}
