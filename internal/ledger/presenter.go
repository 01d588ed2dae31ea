package ledger

import "fintrack/internal/core"

// Response shapes consumed by the display layer. Pure data transformation:
// the aggregation output is rekeyed to the wire contract and nothing else.

type CategorySpending struct {
	CategoryID int64      `json:"category_id"`
	Name       string     `json:"name"`
	Total      core.Money `json:"total"`
}

type MerchantSpending struct {
	MerchantID int64      `json:"merchant_id"`
	Name       string     `json:"name"`
	Amount     core.Money `json:"amount"`
}

type DailySpending struct {
	Date   core.Date  `json:"date"`
	Amount core.Money `json:"amount"`
}

type DashboardResponse struct {
	Year               int                `json:"year"`
	Month              int                `json:"month"`
	TotalBalance       core.Money         `json:"totalBalance"`
	MonthlyIncome      core.Money         `json:"monthlyIncome"`
	MonthlyExpense     core.Money         `json:"monthlyExpense"`
	Net                core.Money         `json:"net"`
	Accounts           []core.Account     `json:"accounts"`
	SpendingByCategory []CategorySpending `json:"spendingByCategory"`
}

type AnalyticsResponse struct {
	StartDate        core.Date          `json:"start_date"`
	EndDate          core.Date          `json:"end_date"`
	TotalIncome      core.Money         `json:"totalIncome"`
	TotalExpense     core.Money         `json:"totalExpense"`
	Net              core.Money         `json:"net"`
	CategorySpending []CategorySpending `json:"categorySpending"`
	MerchantSpending []MerchantSpending `json:"merchantSpending"`
	DailySpending    []DailySpending    `json:"dailySpending"`
}

func PresentDashboard(s core.DashboardSummary) DashboardResponse {
	resp := DashboardResponse{
		Year:               s.Year,
		Month:              s.Month,
		TotalBalance:       s.TotalBalance,
		MonthlyIncome:      s.Income,
		MonthlyExpense:     s.Expense,
		Net:                s.Net,
		Accounts:           s.Accounts,
		SpendingByCategory: make([]CategorySpending, 0, len(s.ByCategory)),
	}
	if resp.Accounts == nil {
		resp.Accounts = []core.Account{}
	}
	for _, c := range s.ByCategory {
		resp.SpendingByCategory = append(resp.SpendingByCategory, CategorySpending{
			CategoryID: c.CategoryID,
			Name:       c.Name,
			Total:      c.Amount,
		})
	}
	return resp
}

func PresentAnalytics(s core.RangeSummary) AnalyticsResponse {
	resp := AnalyticsResponse{
		StartDate:        s.From,
		EndDate:          s.To,
		TotalIncome:      s.Income,
		TotalExpense:     s.Expense,
		Net:              s.Net,
		CategorySpending: make([]CategorySpending, 0, len(s.ByCategory)),
		MerchantSpending: make([]MerchantSpending, 0, len(s.ByMerchant)),
		DailySpending:    make([]DailySpending, 0, len(s.ByDay)),
	}
	for _, c := range s.ByCategory {
		resp.CategorySpending = append(resp.CategorySpending, CategorySpending{
			CategoryID: c.CategoryID,
			Name:       c.Name,
			Total:      c.Amount,
		})
	}
	for _, m := range s.ByMerchant {
		resp.MerchantSpending = append(resp.MerchantSpending, MerchantSpending{
			MerchantID: m.MerchantID,
			Name:       m.Name,
			Amount:     m.Amount,
		})
	}
	for _, d := range s.ByDay {
		resp.DailySpending = append(resp.DailySpending, DailySpending{
			Date:   d.Date,
			Amount: d.Amount,
		})
	}
	return resp
}
