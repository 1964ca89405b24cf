package core

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Draft line field names accepted by DraftBill.Update.
const (
	LineFieldDescription = "description"
	LineFieldAmount      = "amount"
	LineFieldCategory    = "category"
)

const dateLayout = "2006-01-02"

// DraftLine is one editable expense row of the bill creation form. Amount keeps
// the raw user input so a half-typed value survives a re-render.
type DraftLine struct {
	Description string
	Amount      string
	Category    string
}

// Value returns the parsed amount, or zero when the input is blank or invalid.
func (l DraftLine) Value() decimal.Decimal {
	d, err := ParseAmount(l.Amount)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// Valid reports whether the line would be submitted.
func (l DraftLine) Valid() bool {
	return strings.TrimSpace(l.Description) != "" && l.Value().IsPositive()
}

// DraftBill is the in-progress state of the bill creation form.
type DraftBill struct {
	Description  string
	Category     string
	Date         string // YYYY-MM-DD
	Currency     Currency
	ExchangeRate string
	Lines        []DraftLine
}

// NewDraftBill returns a draft with one empty line, dated today.
func NewDraftBill(now time.Time) *DraftBill {
	return &DraftBill{
		Date:     now.Format(dateLayout),
		Currency: PEN,
		Lines:    []DraftLine{{}},
	}
}

// Add appends an empty line.
func (d *DraftBill) Add() {
	d.Lines = append(d.Lines, DraftLine{})
}

// Update sets one field of the line at index.
func (d *DraftBill) Update(index int, field, value string) error {
	if index < 0 || index >= len(d.Lines) {
		return ErrLineOutOfRange
	}
	l := &d.Lines[index]
	switch field {
	case LineFieldDescription:
		l.Description = value
	case LineFieldAmount:
		l.Amount = value
	case LineFieldCategory:
		l.Category = value
	default:
		return ErrUnknownLineField
	}
	return nil
}

// Remove deletes the line at index. The last remaining line is kept so the
// form always has a row to type into.
func (d *DraftBill) Remove(index int) error {
	if index < 0 || index >= len(d.Lines) {
		return ErrLineOutOfRange
	}
	if len(d.Lines) == 1 {
		d.Lines[0] = DraftLine{}
		return nil
	}
	d.Lines = append(d.Lines[:index], d.Lines[index+1:]...)
	return nil
}

// CanRemove reports whether remove controls should be offered.
func (d *DraftBill) CanRemove() bool {
	return len(d.Lines) > 1
}

// Total sums every line's amount; blank or invalid inputs count as zero.
func (d *DraftBill) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range d.Lines {
		total = total.Add(l.Value())
	}
	return total
}

// ValidExpenses returns the lines that will be submitted, in order.
func (d *DraftBill) ValidExpenses() []DraftLine {
	out := make([]DraftLine, 0, len(d.Lines))
	for _, l := range d.Lines {
		if l.Valid() {
			out = append(out, l)
		}
	}
	return out
}

// Validate checks bill-level fields and that at least one line is valid.
func (d *DraftBill) Validate() error {
	if strings.TrimSpace(d.Description) == "" {
		return ErrEmptyDescription
	}
	if strings.TrimSpace(d.Category) == "" {
		return ErrEmptyCategory
	}
	if _, err := time.Parse(dateLayout, strings.TrimSpace(d.Date)); err != nil {
		return ErrInvalidDate
	}
	if !d.Currency.Valid() {
		return ErrInvalidCurrency
	}
	if _, err := ParseRate(d.ExchangeRate); err != nil {
		return err
	}
	if len(d.ValidExpenses()) == 0 {
		return ErrNoValidExpenses
	}
	return nil
}

// Request builds the API request from a validated draft. Lines without a
// category inherit the bill category and every line takes the bill date.
func (d *DraftBill) Request() (CreateBillRequest, error) {
	if err := d.Validate(); err != nil {
		return CreateBillRequest{}, err
	}
	date, _ := time.Parse(dateLayout, strings.TrimSpace(d.Date))
	rate, _ := ParseRate(d.ExchangeRate)

	lines := d.ValidExpenses()
	expenses := make([]CreateExpenseForBill, 0, len(lines))
	for _, l := range lines {
		category := strings.TrimSpace(l.Category)
		if category == "" {
			category = strings.TrimSpace(d.Category)
		}
		expenses = append(expenses, CreateExpenseForBill{
			Amount:      l.Value().InexactFloat64(),
			Description: strings.TrimSpace(l.Description),
			Category:    category,
			Date:        date.Format(dateLayout),
		})
	}
	return CreateBillRequest{
		Description:  strings.TrimSpace(d.Description),
		Category:     strings.TrimSpace(d.Category),
		Date:         date,
		Currency:     d.Currency,
		ExchangeRate: rate.InexactFloat64(),
		Expenses:     expenses,
	}, nil
}
