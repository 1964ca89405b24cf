package core

import (
	"errors"
	"testing"
	"time"
)

func filledDraft(amounts ...string) *DraftBill {
	d := NewDraftBill(time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC))
	d.Description = "Market"
	d.Category = "Food"
	d.ExchangeRate = "3.75"
	d.Lines = nil
	for i, a := range amounts {
		d.Add()
		_ = d.Update(i, LineFieldDescription, "item")
		_ = d.Update(i, LineFieldAmount, a)
	}
	return d
}

func TestDraftTotalCountsEveryLine(t *testing.T) {
	d := filledDraft("10", "0", "5")
	if got := d.Total().StringFixed(2); got != "15.00" {
		t.Fatalf("expected running total 15.00, got %s", got)
	}
	req, err := d.Request()
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if len(req.Expenses) != 2 {
		t.Fatalf("expected 2 submitted expenses, got %d", len(req.Expenses))
	}
	if req.Expenses[0].Amount != 10 || req.Expenses[1].Amount != 5 {
		t.Fatalf("unexpected amounts %+v", req.Expenses)
	}
}

func TestDraftTotalIgnoresGarbage(t *testing.T) {
	d := filledDraft("2.5", "abc", "")
	if got := d.Total().StringFixed(2); got != "2.50" {
		t.Fatalf("got %s", got)
	}
}

func TestDraftBlocksWhenNoValidLines(t *testing.T) {
	d := filledDraft("0", "-3")
	_ = d.Update(0, LineFieldAmount, "12")
	_ = d.Update(0, LineFieldDescription, "  ")

	if err := d.Validate(); !errors.Is(err, ErrNoValidExpenses) {
		t.Fatalf("expected ErrNoValidExpenses, got %v", err)
	}
	if _, err := d.Request(); err == nil {
		t.Fatalf("request must not be built")
	}
}

func TestDraftValidateBillFields(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*DraftBill)
		want   error
	}{
		{"blank description", func(d *DraftBill) { d.Description = "" }, ErrEmptyDescription},
		{"blank category", func(d *DraftBill) { d.Category = " " }, ErrEmptyCategory},
		{"bad date", func(d *DraftBill) { d.Date = "14/03/2025" }, ErrInvalidDate},
		{"bad currency", func(d *DraftBill) { d.Currency = "" }, ErrInvalidCurrency},
		{"missing rate", func(d *DraftBill) { d.ExchangeRate = "" }, ErrInvalidExchangeRate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := filledDraft("10")
			tt.mutate(d)
			if err := d.Validate(); !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestDraftRemove(t *testing.T) {
	d := filledDraft("1", "2", "3")
	if err := d.Remove(1); err != nil {
		t.Fatal(err)
	}
	if len(d.Lines) != 2 || d.Lines[1].Amount != "3" {
		t.Fatalf("unexpected lines %+v", d.Lines)
	}
	if err := d.Remove(5); !errors.Is(err, ErrLineOutOfRange) {
		t.Fatalf("expected ErrLineOutOfRange, got %v", err)
	}

	_ = d.Remove(0)
	_ = d.Remove(0)
	if len(d.Lines) != 1 || d.Lines[0] != (DraftLine{}) {
		t.Fatalf("last line should be cleared, not removed: %+v", d.Lines)
	}
	if d.CanRemove() {
		t.Fatalf("single line must not offer removal")
	}
}

func TestDraftUpdateUnknownField(t *testing.T) {
	d := filledDraft("1")
	if err := d.Update(0, "price", "2"); !errors.Is(err, ErrUnknownLineField) {
		t.Fatalf("expected ErrUnknownLineField, got %v", err)
	}
}

func TestDraftRequestInheritsCategoryAndDate(t *testing.T) {
	d := filledDraft("4", "6")
	_ = d.Update(1, LineFieldCategory, "Drinks")

	req, err := d.Request()
	if err != nil {
		t.Fatal(err)
	}
	if req.Expenses[0].Category != "Food" || req.Expenses[1].Category != "Drinks" {
		t.Fatalf("unexpected categories %+v", req.Expenses)
	}
	if req.Expenses[0].Date != "2025-03-14" {
		t.Fatalf("expected bill date on lines, got %q", req.Expenses[0].Date)
	}
	if req.ExchangeRate != 3.75 || req.Currency != PEN {
		t.Fatalf("unexpected bill fields %+v", req)
	}
}
