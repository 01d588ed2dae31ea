package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/ledger"
	"fintrack/internal/ledger/memory"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	svc := ledger.NewService(memory.NewStore(), nil)
	s := NewServer(svc, Options{
		Owner:              1,
		SummaryCacheTTL:    time.Minute,
		SummaryCacheSize:   10,
		RateLimitPerMinute: 1000,
	})
	t.Cleanup(s.Close)
	return s
}

func doJSON(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode request body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return v
}

func createAccountViaAPI(t *testing.T, s *Server, name string, balance string) int64 {
	t.Helper()
	rec := doJSON(t, s, http.MethodPost, "/api/accounts", map[string]any{
		"name":            name,
		"type":            "checking",
		"initial_balance": balance,
		"currency":        "EUR",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create account: status %d body %s", rec.Code, rec.Body.String())
	}
	return decode[core.Account](t, rec).ID
}

func TestAccountLifecycle(t *testing.T) {
	s := newTestServer(t)

	id := createAccountViaAPI(t, s, "Checking", "1000.00")

	rec := doJSON(t, s, http.MethodGet, "/api/accounts", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list accounts: status %d", rec.Code)
	}
	accounts := decode[[]core.Account](t, rec)
	if len(accounts) != 1 || accounts[0].Balance.Cents != 100000 {
		t.Errorf("accounts = %+v", accounts)
	}

	rec = doJSON(t, s, http.MethodDelete, fmt.Sprintf("/api/accounts/%d", id), nil)
	if rec.Code != http.StatusOK {
		t.Errorf("delete account: status %d body %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, s, http.MethodDelete, fmt.Sprintf("/api/accounts/%d", id), nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("delete missing account: status %d, want 404", rec.Code)
	}
}

func TestCreateAccountValidation(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name string
		body map[string]any
	}{
		{"empty name", map[string]any{"name": "", "type": "checking"}},
		{"bad type", map[string]any{"name": "X", "type": "bitcoin"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, s, http.MethodPost, "/api/accounts", tt.body)
			if rec.Code != http.StatusUnprocessableEntity {
				t.Errorf("status = %d, want 422; body %s", rec.Code, rec.Body.String())
			}
		})
	}
}

func TestTransactionLifecycle(t *testing.T) {
	s := newTestServer(t)
	accountID := createAccountViaAPI(t, s, "Checking", "1000.00")

	rec := doJSON(t, s, http.MethodPost, "/api/transactions", map[string]any{
		"account_id":  accountID,
		"txn_type":    "expense",
		"amount":      "200.00",
		"txn_date":    "2025-03-10",
		"description": "groceries",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create transaction: status %d body %s", rec.Code, rec.Body.String())
	}
	var created struct {
		TransactionID int64 `json:"transaction_id"`
		Success       bool  `json:"success"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode create response: %v", err)
	}
	if !created.Success || created.TransactionID == 0 {
		t.Fatalf("create response = %+v", created)
	}

	// Balance moved from 1000.00 to 800.00.
	accounts := decode[[]core.Account](t, doJSON(t, s, http.MethodGet, "/api/accounts", nil))
	if accounts[0].Balance.Cents != 80000 {
		t.Errorf("balance = %d, want 80000", accounts[0].Balance.Cents)
	}

	rec = doJSON(t, s, http.MethodGet, fmt.Sprintf("/api/transactions/%d", created.TransactionID), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get transaction: status %d", rec.Code)
	}
	record := decode[core.TransactionRecord](t, rec)
	if record.AccountName != "Checking" {
		t.Errorf("AccountName = %q", record.AccountName)
	}

	rec = doJSON(t, s, http.MethodDelete, fmt.Sprintf("/api/transactions/%d", created.TransactionID), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete transaction: status %d", rec.Code)
	}

	accounts = decode[[]core.Account](t, doJSON(t, s, http.MethodGet, "/api/accounts", nil))
	if accounts[0].Balance.Cents != 100000 {
		t.Errorf("balance after delete = %d, want 100000", accounts[0].Balance.Cents)
	}
}

func TestCreateTransactionErrors(t *testing.T) {
	s := newTestServer(t)
	accountID := createAccountViaAPI(t, s, "Checking", "0")

	tests := []struct {
		name     string
		body     map[string]any
		wantCode int
	}{
		{"unknown account", map[string]any{
			"account_id": 999, "txn_type": "expense", "amount": "1.00", "txn_date": "2025-01-01",
		}, http.StatusNotFound},
		{"zero amount", map[string]any{
			"account_id": accountID, "txn_type": "expense", "amount": "0", "txn_date": "2025-01-01",
		}, http.StatusUnprocessableEntity},
		{"bad type", map[string]any{
			"account_id": accountID, "txn_type": "refund", "amount": "1.00", "txn_date": "2025-01-01",
		}, http.StatusUnprocessableEntity},
		{"bad date", map[string]any{
			"account_id": accountID, "txn_type": "expense", "amount": "1.00", "txn_date": "01/02/2025",
		}, http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, s, http.MethodPost, "/api/transactions", tt.body)
			if rec.Code != tt.wantCode {
				t.Errorf("status = %d, want %d; body %s", rec.Code, tt.wantCode, rec.Body.String())
			}
		})
	}
}

func TestMalformedJSONBody(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/transactions", bytes.NewBufferString("{broken"))
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", rec.Code)
	}
}

func TestDeleteAccountConflict(t *testing.T) {
	s := newTestServer(t)
	accountID := createAccountViaAPI(t, s, "Checking", "0")

	rec := doJSON(t, s, http.MethodPost, "/api/transactions", map[string]any{
		"account_id": accountID, "txn_type": "income", "amount": "5.00", "txn_date": "2025-01-01",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create transaction: status %d", rec.Code)
	}

	rec = doJSON(t, s, http.MethodDelete, fmt.Sprintf("/api/accounts/%d", accountID), nil)
	if rec.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", rec.Code)
	}
}

func TestReconcileEndpoint(t *testing.T) {
	s := newTestServer(t)
	accountID := createAccountViaAPI(t, s, "Checking", "100.00")

	doJSON(t, s, http.MethodPost, "/api/transactions", map[string]any{
		"account_id": accountID, "txn_type": "expense", "amount": "30.00", "txn_date": "2025-01-05",
	})

	rec := doJSON(t, s, http.MethodPost, fmt.Sprintf("/api/accounts/%d/reconcile", accountID), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("reconcile: status %d body %s", rec.Code, rec.Body.String())
	}
	account := decode[core.Account](t, rec)
	if account.Balance.Cents != 7000 {
		t.Errorf("reconciled balance = %d, want 7000", account.Balance.Cents)
	}
}

func TestCategoriesAndMerchants(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s, http.MethodPost, "/api/categories", map[string]any{
		"name": "Food", "kind": "expense",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create category: status %d", rec.Code)
	}
	category := decode[core.Category](t, rec)

	rec = doJSON(t, s, http.MethodGet, "/api/categories?kind=expense", nil)
	categories := decode[[]core.Category](t, rec)
	if len(categories) != 1 || categories[0].Name != "Food" {
		t.Errorf("categories = %+v", categories)
	}

	rec = doJSON(t, s, http.MethodGet, "/api/categories?kind=bogus", nil)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("bad kind filter: status %d, want 422", rec.Code)
	}

	rec = doJSON(t, s, http.MethodDelete, fmt.Sprintf("/api/categories/%d", category.ID), nil)
	if rec.Code != http.StatusOK {
		t.Errorf("delete category: status %d", rec.Code)
	}

	rec = doJSON(t, s, http.MethodPost, "/api/merchants", map[string]any{"name": "Bakery"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create merchant: status %d", rec.Code)
	}

	merchants := decode[[]core.Merchant](t, doJSON(t, s, http.MethodGet, "/api/merchants", nil))
	if len(merchants) != 1 || merchants[0].Name != "Bakery" {
		t.Errorf("merchants = %+v", merchants)
	}
}

func TestDashboardEndpoint(t *testing.T) {
	s := newTestServer(t)
	accountID := createAccountViaAPI(t, s, "Checking", "1000.00")

	doJSON(t, s, http.MethodPost, "/api/transactions", map[string]any{
		"account_id": accountID, "txn_type": "expense", "amount": "200.00", "txn_date": "2025-03-10",
	})
	doJSON(t, s, http.MethodPost, "/api/transactions", map[string]any{
		"account_id": accountID, "txn_type": "income", "amount": "3000.00", "txn_date": "2025-03-01",
	})

	rec := doJSON(t, s, http.MethodGet, "/api/dashboard?year=2025&month=3", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("dashboard: status %d body %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		TotalBalance   float64 `json:"totalBalance"`
		MonthlyIncome  float64 `json:"monthlyIncome"`
		MonthlyExpense float64 `json:"monthlyExpense"`
		Net            float64 `json:"net"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode dashboard: %v", err)
	}
	if resp.MonthlyIncome != 3000 || resp.MonthlyExpense != 200 || resp.Net != 2800 {
		t.Errorf("dashboard = %+v", resp)
	}
	if resp.TotalBalance != 3800 {
		t.Errorf("totalBalance = %v, want 3800", resp.TotalBalance)
	}
}

func TestDashboardCacheInvalidation(t *testing.T) {
	s := newTestServer(t)
	accountID := createAccountViaAPI(t, s, "Checking", "0")

	// Warm the cache.
	rec := doJSON(t, s, http.MethodGet, "/api/dashboard?year=2025&month=3", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("dashboard: status %d", rec.Code)
	}

	doJSON(t, s, http.MethodPost, "/api/transactions", map[string]any{
		"account_id": accountID, "txn_type": "expense", "amount": "10.00", "txn_date": "2025-03-10",
	})

	rec = doJSON(t, s, http.MethodGet, "/api/dashboard?year=2025&month=3", nil)
	var resp struct {
		MonthlyExpense float64 `json:"monthlyExpense"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode dashboard: %v", err)
	}
	if resp.MonthlyExpense != 10 {
		t.Errorf("monthlyExpense = %v after write, want 10 (stale cache?)", resp.MonthlyExpense)
	}
}

func TestDashboardRejectsBadParams(t *testing.T) {
	s := newTestServer(t)

	for _, path := range []string{
		"/api/dashboard?month=13",
		"/api/dashboard?year=abc",
	} {
		rec := doJSON(t, s, http.MethodGet, path, nil)
		if rec.Code != http.StatusUnprocessableEntity {
			t.Errorf("%s: status = %d, want 422", path, rec.Code)
		}
	}
}

func TestAnalyticsEndpoint(t *testing.T) {
	s := newTestServer(t)
	accountID := createAccountViaAPI(t, s, "Checking", "0")

	doJSON(t, s, http.MethodPost, "/api/transactions", map[string]any{
		"account_id": accountID, "txn_type": "expense", "amount": "5.00", "txn_date": "2025-03-01",
	})
	doJSON(t, s, http.MethodPost, "/api/transactions", map[string]any{
		"account_id": accountID, "txn_type": "expense", "amount": "7.00", "txn_date": "2025-03-02",
	})

	rec := doJSON(t, s, http.MethodGet, "/api/analytics?start_date=2025-03-01&end_date=2025-03-31", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("analytics: status %d body %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		TotalExpense  float64 `json:"totalExpense"`
		DailySpending []struct {
			Date   string  `json:"date"`
			Amount float64 `json:"amount"`
		} `json:"dailySpending"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode analytics: %v", err)
	}
	if resp.TotalExpense != 12 {
		t.Errorf("totalExpense = %v, want 12", resp.TotalExpense)
	}
	if len(resp.DailySpending) != 2 {
		t.Errorf("dailySpending has %d entries, want 2", len(resp.DailySpending))
	}

	rec = doJSON(t, s, http.MethodGet, "/api/analytics?start_date=2025-03-31&end_date=2025-03-01", nil)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("inverted range: status = %d, want 422", rec.Code)
	}
}

func TestHealthEndpoints(t *testing.T) {
	s := newTestServer(t)

	for _, path := range []string{"/healthz", "/readyz"} {
		rec := doJSON(t, s, http.MethodGet, path, nil)
		if rec.Code != http.StatusOK {
			t.Errorf("%s: status = %d, want 200", path, rec.Code)
		}
	}
}

func TestSecurityHeadersApplied(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s, http.MethodGet, "/api/accounts", nil)
	if got := rec.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q", got)
	}
	if got := rec.Header().Get("X-Frame-Options"); got != "DENY" {
		t.Errorf("X-Frame-Options = %q", got)
	}
}

func TestRateLimitOnWrites(t *testing.T) {
	svc := ledger.NewService(memory.NewStore(), nil)
	s := NewServer(svc, Options{Owner: 1, RateLimitPerMinute: 2})
	defer s.Close()

	var last int
	for i := 0; i < 3; i++ {
		rec := doJSON(t, s, http.MethodPost, "/api/merchants", map[string]any{
			"name": fmt.Sprintf("Shop %d", i),
		})
		last = rec.Code
	}
	if last != http.StatusTooManyRequests {
		t.Errorf("third write status = %d, want 429", last)
	}

	// Reads are never limited.
	rec := doJSON(t, s, http.MethodGet, "/api/merchants", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("read status = %d, want 200", rec.Code)
	}
}
