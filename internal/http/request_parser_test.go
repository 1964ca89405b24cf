package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"mibolsillo/internal/core"
)

func TestParseMonths(t *testing.T) {
	tests := []struct {
		name  string
		query url.Values
		want  int
	}{
		{name: "missing uses default", query: url.Values{}, want: 6},
		{name: "three", query: url.Values{"months": {"3"}}, want: 3},
		{name: "twenty four", query: url.Values{"months": {"24"}}, want: 24},
		{name: "too large", query: url.Values{"months": {"36"}}, want: 6},
		{name: "zero", query: url.Values{"months": {"0"}}, want: 6},
		{name: "not a number", query: url.Values{"months": {"abc"}}, want: 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseMonths(tt.query); got != tt.want {
				t.Errorf("ParseMonths() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestParseDraftForm(t *testing.T) {
	form := url.Values{
		"description":          {"  Dinner "},
		"category":             {"Food"},
		"date":                 {"2025-03-01"},
		"currency":             {"usd"},
		"exchangeRate":         {"3.75"},
		"lines[2].description": {"Dessert"},
		"lines[2].amount":      {"5"},
		"lines[0].description": {"Main"},
		"lines[0].amount":      {"10"},
		"lines[1].description": {"Water"},
		"lines[1].amount":      {"0"},
		"lines[1].category":    {"Drinks"},
		"lines[x].amount":      {"99"},
		"lines[3].color":       {"red"},
	}

	d := ParseDraftForm(form)

	if d.Description != "Dinner" {
		t.Errorf("Description = %q, want %q", d.Description, "Dinner")
	}
	if d.Currency != core.USD {
		t.Errorf("Currency = %q, want USD", d.Currency)
	}
	if len(d.Lines) != 3 {
		t.Fatalf("got %d lines, want 3", len(d.Lines))
	}
	wantOrder := []string{"Main", "Water", "Dessert"}
	for i, want := range wantOrder {
		if d.Lines[i].Description != want {
			t.Errorf("line %d = %q, want %q", i, d.Lines[i].Description, want)
		}
	}
	if d.Lines[1].Category != "Drinks" {
		t.Errorf("line 1 category = %q, want Drinks", d.Lines[1].Category)
	}
	if got := d.Total().String(); got != "15" {
		t.Errorf("Total = %s, want 15", got)
	}
	if got := len(d.ValidExpenses()); got != 2 {
		t.Errorf("ValidExpenses = %d, want 2", got)
	}
}

func TestParseDraftForm_EmptyHasOneLine(t *testing.T) {
	d := ParseDraftForm(url.Values{})
	if len(d.Lines) != 1 {
		t.Fatalf("got %d lines, want 1", len(d.Lines))
	}
}

func TestParseDraftForm_CapsLines(t *testing.T) {
	form := url.Values{}
	for i := 0; i < maxDraftLines+20; i++ {
		form.Set("lines["+strconv.Itoa(i)+"].description", "Item "+strconv.Itoa(i))
		form.Set("lines["+strconv.Itoa(i)+"].amount", strconv.Itoa(i+1))
	}

	// Map iteration order varies, so parse several times.
	for run := 0; run < 5; run++ {
		d := ParseDraftForm(form)
		if len(d.Lines) != maxDraftLines {
			t.Fatalf("got %d lines, want %d", len(d.Lines), maxDraftLines)
		}
		for i, l := range d.Lines {
			want := "Item " + strconv.Itoa(i)
			if l.Description != want || l.Amount != strconv.Itoa(i+1) {
				t.Fatalf("run %d: line %d = %q/%q, want %q/%d", run, i, l.Description, l.Amount, want, i+1)
			}
		}
	}
}

func TestParseLineKey(t *testing.T) {
	tests := []struct {
		key       string
		wantIndex int
		wantField string
		wantOK    bool
	}{
		{"lines[0].amount", 0, "amount", true},
		{"lines[12].description", 12, "description", true},
		{"lines[1].category", 1, "category", true},
		{"lines[-1].amount", 0, "", false},
		{"lines[1]amount", 0, "", false},
		{"lines[1].other", 0, "", false},
		{"description", 0, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			i, f, ok := parseLineKey(tt.key)
			if ok != tt.wantOK || i != tt.wantIndex || f != tt.wantField {
				t.Errorf("parseLineKey(%q) = %d, %q, %v; want %d, %q, %v",
					tt.key, i, f, ok, tt.wantIndex, tt.wantField, tt.wantOK)
			}
		})
	}
}

func TestApplyDraftOp(t *testing.T) {
	base := func() *core.DraftBill {
		return &core.DraftBill{Lines: []core.DraftLine{
			{Description: "a", Amount: "1"},
			{Description: "b", Amount: "2"},
		}}
	}

	tests := []struct {
		name      string
		form      url.Values
		wantLines int
		wantErr   error
		check     func(t *testing.T, d *core.DraftBill)
	}{
		{
			name:      "add",
			form:      url.Values{"op": {"add"}},
			wantLines: 3,
		},
		{
			name:      "remove",
			form:      url.Values{"op": {"remove"}, "index": {"0"}},
			wantLines: 1,
			check: func(t *testing.T, d *core.DraftBill) {
				if d.Lines[0].Description != "b" {
					t.Errorf("remaining line = %q, want b", d.Lines[0].Description)
				}
			},
		},
		{
			name:      "remove out of range",
			form:      url.Values{"op": {"remove"}, "index": {"9"}},
			wantLines: 2,
			wantErr:   core.ErrLineOutOfRange,
		},
		{
			name:      "update single field",
			form:      url.Values{"op": {"update"}, "index": {"1"}, "field": {"amount"}, "value": {"7"}},
			wantLines: 2,
			check: func(t *testing.T, d *core.DraftBill) {
				if got := d.Total().String(); got != "8" {
					t.Errorf("Total = %s, want 8", got)
				}
			},
		},
		{
			name:      "update without field keeps form values",
			form:      url.Values{"op": {"update"}},
			wantLines: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := base()
			err := ApplyDraftOp(d, tt.form)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if len(d.Lines) != tt.wantLines {
				t.Errorf("lines = %d, want %d", len(d.Lines), tt.wantLines)
			}
			if tt.check != nil {
				tt.check(t, d)
			}
		})
	}
}

func TestParseOTP(t *testing.T) {
	got := ParseOTP(url.Values{"code": {" 12-34 56 78"}})
	if got != "123456" {
		t.Errorf("ParseOTP() = %q, want %q", got, "123456")
	}
}

func TestParseFormOrFail(t *testing.T) {
	body := "field=value"
	req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()

	if result := ParseFormOrFail(w, req); result != nil {
		t.Error("Expected nil for valid form, got error response")
	}
	if req.Form.Get("field") != "value" {
		t.Error("Form was not parsed correctly")
	}
}
