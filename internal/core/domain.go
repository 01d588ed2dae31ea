package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	Checking     AccountType = "checking"
	Savings      AccountType = "savings"
	Credit       AccountType = "credit"
	Cash         AccountType = "cash"
	OtherAccount AccountType = "other"
)

const (
	IncomeKind  CategoryKind = "income"
	ExpenseKind CategoryKind = "expense"
)

const (
	Income   TransactionType = "income"
	Expense  TransactionType = "expense"
	Transfer TransactionType = "transfer"
)

type (
	AccountType     string
	CategoryKind    string
	TransactionType string

	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	Account struct {
		ID       int64       `json:"account_id"`
		OwnerID  int64       `json:"user_id"`
		Name     string      `json:"name"`
		Type     AccountType `json:"type"`
		Balance  Money       `json:"balance"`
		Initial  Money       `json:"initial_balance"`
		Currency string      `json:"currency"`
	}

	Category struct {
		ID      int64        `json:"category_id"`
		OwnerID int64        `json:"user_id"`
		Name    string       `json:"name"`
		Kind    CategoryKind `json:"kind"`
	}

	Merchant struct {
		ID      int64  `json:"merchant_id"`
		OwnerID int64  `json:"user_id"`
		Name    string `json:"name"`
	}

	Transaction struct {
		ID          int64           `json:"transaction_id"`
		OwnerID     int64           `json:"user_id"`
		AccountID   int64           `json:"account_id"`
		Type        TransactionType `json:"txn_type"`
		Amount      Money           `json:"amount"` // stored non-negative; sign derived from Type
		Date        Date            `json:"txn_date"`
		CategoryID  int64           `json:"category_id,omitempty"` // 0 = uncategorized
		MerchantID  int64           `json:"merchant_id,omitempty"` // 0 = no merchant
		Description string          `json:"description"`
		Notes       string          `json:"notes,omitempty"`
	}

	// TransactionRecord is a transaction enriched with the display names of
	// the referenced account, category and merchant.
	TransactionRecord struct {
		Transaction
		AccountName  string `json:"account_name"`
		CategoryName string `json:"category_name,omitempty"`
		MerchantName string `json:"merchant_name,omitempty"`
	}

	// TransactionFilter narrows transaction listings. An empty or "all" Type
	// matches every transaction; Limit <= 0 falls back to the store default.
	TransactionFilter struct {
		Type  string
		Limit int
	}
)

var (
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("still referenced by transactions")
	ErrValidation = errors.New("invalid input")

	ErrInvalidAmount      = fmt.Errorf("%w: amount must be positive", ErrValidation)
	ErrInvalidDate        = fmt.Errorf("%w: invalid date", ErrValidation)
	ErrInvalidType        = fmt.Errorf("%w: invalid transaction type", ErrValidation)
	ErrInvalidKind        = fmt.Errorf("%w: invalid category kind", ErrValidation)
	ErrInvalidAccountType = fmt.Errorf("%w: invalid account type", ErrValidation)
	ErrEmptyName          = fmt.Errorf("%w: name is required", ErrValidation)
	ErrMissingAccount     = fmt.Errorf("%w: account is required", ErrValidation)
)

func (t AccountType) Valid() bool {
	switch t {
	case Checking, Savings, Credit, Cash, OtherAccount:
		return true
	}
	return false
}

func (k CategoryKind) Valid() bool {
	return k == IncomeKind || k == ExpenseKind
}

func (t TransactionType) Valid() bool {
	switch t {
	case Income, Expense, Transfer:
		return true
	}
	return false
}

// NewDate creates a Date from year, month, day in UTC.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a calendar date in YYYY-MM-DD format.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

// Key returns the date formatted as YYYY-MM-DD, used both as grouping key
// and as wire representation.
func (d Date) Key() string {
	return d.Format("2006-01-02")
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Key() + `"`), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (a Account) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return ErrEmptyName
	}
	if !a.Type.Valid() {
		return ErrInvalidAccountType
	}
	if len(a.Currency) != 3 {
		return fmt.Errorf("%w: currency must be a 3-letter code", ErrValidation)
	}
	return nil
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if !c.Kind.Valid() {
		return ErrInvalidKind
	}
	return nil
}

func (m Merchant) Validate() error {
	if strings.TrimSpace(m.Name) == "" {
		return ErrEmptyName
	}
	return nil
}

func (t Transaction) Validate() error {
	if t.AccountID <= 0 {
		return ErrMissingAccount
	}
	if !t.Type.Valid() {
		return ErrInvalidType
	}
	if t.Amount.Cents <= 0 {
		return ErrInvalidAmount
	}
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if len(t.Description) > 200 {
		return fmt.Errorf("%w: description too long (max 200 characters)", ErrValidation)
	}
	return nil
}

// SignedCents is the balance contribution of the transaction: negative for
// expenses, positive for income and transfers.
func (t Transaction) SignedCents() int64 {
	if t.Type == Expense {
		return -t.Amount.Cents
	}
	return t.Amount.Cents
}
