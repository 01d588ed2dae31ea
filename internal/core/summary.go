package core

// CategoryAmount is an expense total grouped under one category. Grouping is
// keyed on the category id; the name is carried for display only.
type CategoryAmount struct {
	CategoryID int64
	Name       string
	Amount     Money
}

// MerchantAmount is an expense total grouped under one merchant.
type MerchantAmount struct {
	MerchantID int64
	Name       string
	Amount     Money
}

// DailyAmount is an expense total for one calendar day.
type DailyAmount struct {
	Date   Date
	Amount Money
}

// DashboardSummary is the monthly overview: account balances plus the income,
// expense and category breakdown of a single (year, month).
type DashboardSummary struct {
	Year         int
	Month        int // 1-12
	TotalBalance Money
	Income       Money
	Expense      Money
	Net          Money
	Accounts     []Account
	ByCategory   []CategoryAmount
}

// RangeSummary is the analytics view over an inclusive date interval.
type RangeSummary struct {
	From       Date
	To         Date
	Income     Money
	Expense    Money
	Net        Money
	ByCategory []CategoryAmount
	ByMerchant []MerchantAmount
	ByDay      []DailyAmount
}
