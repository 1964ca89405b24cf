package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	PEN Currency = "PEN"
	USD Currency = "USD"
)

type (
	// Currency is one of the two denominations the API supports.
	Currency string

	// Bill is a grouped set of expenses recorded together.
	Bill struct {
		BillID      string          `json:"billId"`
		AmountPen   decimal.Decimal `json:"amountPen"`
		AmountUsd   decimal.Decimal `json:"amountUsd"`
		Description string          `json:"description"`
		Category    string          `json:"category"`
		Currency    Currency        `json:"currency"`
		UserID      string          `json:"userId"`
		Date        time.Time       `json:"date"`
		Expenses    []Expense       `json:"expenses,omitempty"`
		CreatedAt   time.Time       `json:"createdAt"`
		UpdatedAt   time.Time       `json:"updatedAt"`
	}

	// Expense is a single line item belonging to a bill. The API sends dates
	// and timestamps for expenses as plain strings.
	Expense struct {
		ExpenseID    string          `json:"expenseId"`
		AmountPen    decimal.Decimal `json:"amountPen"`
		AmountUsd    decimal.Decimal `json:"amountUsd"`
		ExchangeRate decimal.Decimal `json:"exchangeRate"`
		Currency     Currency        `json:"currency"`
		Description  string          `json:"description"`
		Category     string          `json:"category"`
		Date         string          `json:"date"`
		BillID       string          `json:"billId"`
		UserID       string          `json:"userId"`
		CreatedAt    string          `json:"createdAt"`
		UpdatedAt    string          `json:"updatedAt"`
	}

	// CreateExpenseForBill is one line of a composite bill creation request.
	CreateExpenseForBill struct {
		Amount      float64 `json:"amount"`
		Description string  `json:"description"`
		Category    string  `json:"category"`
		Date        string  `json:"date"`
	}

	// CreateBillRequest creates a bill together with its expenses in one call.
	CreateBillRequest struct {
		Description  string                 `json:"description"`
		Category     string                 `json:"category"`
		Date         time.Time              `json:"date"`
		Currency     Currency               `json:"currency"`
		ExchangeRate float64                `json:"exchangeRate"`
		Expenses     []CreateExpenseForBill `json:"expenses"`
	}

	// UpdateBillRequest replaces the editable bill-level fields.
	UpdateBillRequest struct {
		Description string    `json:"description"`
		Category    string    `json:"category"`
		Date        time.Time `json:"date"`
		Currency    Currency  `json:"currency"`
	}

	// LinkStatus reports whether the web account is linked to a Telegram account.
	LinkStatus struct {
		IsLinked   bool   `json:"isLinked"`
		TelegramID *int64 `json:"telegramId,omitempty"`
	}

	// VerifyOTPResult is the API answer to an OTP verification.
	VerifyOTPResult struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}

	// User is the identity provider's view of the signed-in person.
	User struct {
		ID    string
		Name  string
		Email string
	}
)

var (
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrInvalidCurrency     = errors.New("invalid currency")
	ErrInvalidExchangeRate = errors.New("invalid exchange rate")
	ErrInvalidDate         = errors.New("invalid date")
	ErrEmptyDescription    = errors.New("empty description")
	ErrEmptyCategory       = errors.New("empty category")
	ErrNoValidExpenses     = errors.New("at least one expense with a description and amount is required")
	ErrLineOutOfRange      = errors.New("expense line out of range")
	ErrUnknownLineField    = errors.New("unknown expense line field")
)

// ParseCurrency accepts a currency code in any case.
func ParseCurrency(s string) (Currency, error) {
	c := Currency(strings.ToUpper(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", ErrInvalidCurrency
	}
	return c, nil
}

// Valid reports whether c is PEN or USD.
func (c Currency) Valid() bool {
	return c == PEN || c == USD
}

// Symbol returns the display prefix for the currency.
func (c Currency) Symbol() string {
	switch c {
	case PEN:
		return "S/"
	case USD:
		return "$"
	default:
		return string(c)
	}
}

// Other returns the counterpart currency.
func (c Currency) Other() Currency {
	if c == USD {
		return PEN
	}
	return USD
}

func (c Currency) String() string { return string(c) }

// amountIn picks the amount field for the requested currency.
func amountIn(c Currency, pen, usd decimal.Decimal) decimal.Decimal {
	if c == USD {
		return usd
	}
	return pen
}

// Amount returns the authoritative amount, the one selected by Currency.
func (b Bill) Amount() decimal.Decimal {
	return amountIn(b.Currency, b.AmountPen, b.AmountUsd)
}

// Converted returns the server-populated conversion into the other currency.
func (b Bill) Converted() decimal.Decimal {
	return amountIn(b.Currency.Other(), b.AmountPen, b.AmountUsd)
}

// ExpenseCount returns the number of expense lines attached to the bill.
func (b Bill) ExpenseCount() int {
	return len(b.Expenses)
}

// Amount returns the authoritative amount, the one selected by Currency.
func (e Expense) Amount() decimal.Decimal {
	return amountIn(e.Currency, e.AmountPen, e.AmountUsd)
}

// Converted returns the server-populated conversion into the other currency.
func (e Expense) Converted() decimal.Decimal {
	return amountIn(e.Currency.Other(), e.AmountPen, e.AmountUsd)
}

// Validate checks the bill-level fields of a creation request.
func (r CreateBillRequest) Validate() error {
	if strings.TrimSpace(r.Description) == "" {
		return ErrEmptyDescription
	}
	if strings.TrimSpace(r.Category) == "" {
		return ErrEmptyCategory
	}
	if r.Date.IsZero() {
		return ErrInvalidDate
	}
	if !r.Currency.Valid() {
		return ErrInvalidCurrency
	}
	if r.ExchangeRate <= 0 {
		return ErrInvalidExchangeRate
	}
	if len(r.Expenses) == 0 {
		return ErrNoValidExpenses
	}
	return nil
}

// DisplayName prefers the name and falls back to the email.
func (u User) DisplayName() string {
	if strings.TrimSpace(u.Name) != "" {
		return u.Name
	}
	return u.Email
}
