package core

import "sort"

// TopMerchantLimit caps the merchant breakdown in range summaries.
const TopMerchantLimit = 10

// SummarizeMonth builds the dashboard summary for one (year, month).
//
// accounts must be every account of the owner: the total balance is the sum
// of current balances and does not depend on the month. txns must be the
// owner's transactions dated within that month. The function never mutates
// its inputs and its output ordering is deterministic.
func SummarizeMonth(year, month int, accounts []Account, txns []TransactionRecord) DashboardSummary {
	s := DashboardSummary{
		Year:     year,
		Month:    month,
		Accounts: accounts,
	}
	for _, a := range accounts {
		s.TotalBalance.Cents += a.Balance.Cents
	}

	byCategory := map[int64]*CategoryAmount{}
	for _, t := range txns {
		switch t.Type {
		case Income:
			s.Income.Cents += t.Amount.Cents
		case Expense:
			s.Expense.Cents += t.Amount.Cents
			addCategory(byCategory, t)
		}
		// Transfers move money between accounts and belong to neither total.
	}
	s.Net.Cents = s.Income.Cents - s.Expense.Cents
	s.ByCategory = sortedCategories(byCategory)
	return s
}

// SummarizeRange builds the analytics summary over an inclusive [from, to]
// interval. txns must already be restricted to that interval.
func SummarizeRange(from, to Date, txns []TransactionRecord) RangeSummary {
	s := RangeSummary{From: from, To: to}

	byCategory := map[int64]*CategoryAmount{}
	byMerchant := map[int64]*MerchantAmount{}
	byDay := map[string]*DailyAmount{}

	for _, t := range txns {
		switch t.Type {
		case Income:
			s.Income.Cents += t.Amount.Cents
		case Expense:
			s.Expense.Cents += t.Amount.Cents
			addCategory(byCategory, t)
			if t.MerchantID != 0 {
				m, ok := byMerchant[t.MerchantID]
				if !ok {
					m = &MerchantAmount{MerchantID: t.MerchantID, Name: t.MerchantName}
					byMerchant[t.MerchantID] = m
				}
				m.Amount.Cents += t.Amount.Cents
			}
			key := t.Date.Key()
			d, ok := byDay[key]
			if !ok {
				d = &DailyAmount{Date: t.Date}
				byDay[key] = d
			}
			d.Amount.Cents += t.Amount.Cents
		}
	}
	s.Net.Cents = s.Income.Cents - s.Expense.Cents
	s.ByCategory = sortedCategories(byCategory)
	s.ByMerchant = topMerchants(byMerchant)
	s.ByDay = sortedDays(byDay)
	return s
}

func addCategory(groups map[int64]*CategoryAmount, t TransactionRecord) {
	// Uncategorized expenses count in totals but form no group.
	if t.CategoryID == 0 {
		return
	}
	c, ok := groups[t.CategoryID]
	if !ok {
		c = &CategoryAmount{CategoryID: t.CategoryID, Name: t.CategoryName}
		groups[t.CategoryID] = c
	}
	c.Amount.Cents += t.Amount.Cents
}

// sortedCategories orders by amount descending, ties by category id ascending.
func sortedCategories(groups map[int64]*CategoryAmount) []CategoryAmount {
	out := make([]CategoryAmount, 0, len(groups))
	for _, c := range groups {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Amount.Cents != out[j].Amount.Cents {
			return out[i].Amount.Cents > out[j].Amount.Cents
		}
		return out[i].CategoryID < out[j].CategoryID
	})
	return out
}

// topMerchants orders by amount descending, ties by name ascending, and
// truncates to TopMerchantLimit entries.
func topMerchants(groups map[int64]*MerchantAmount) []MerchantAmount {
	out := make([]MerchantAmount, 0, len(groups))
	for _, m := range groups {
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Amount.Cents != out[j].Amount.Cents {
			return out[i].Amount.Cents > out[j].Amount.Cents
		}
		return out[i].Name < out[j].Name
	})
	if len(out) > TopMerchantLimit {
		out = out[:TopMerchantLimit]
	}
	return out
}

// sortedDays orders ascending by date; days without expenses never appear.
func sortedDays(groups map[string]*DailyAmount) []DailyAmount {
	out := make([]DailyAmount, 0, len(groups))
	for _, d := range groups {
		out = append(out, *d)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Date.Key() < out[j].Date.Key()
	})
	return out
}
