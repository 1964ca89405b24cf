// Package http provides HTTP server and handler implementations.
//
// This file implements utilities for parsing request data: the bill draft
// form, the statistics window and the OTP form.

package http

import (
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"mibolsillo/internal/core"
	"mibolsillo/internal/services"
)

// maxDraftLines caps how many expense lines one form may carry.
const maxDraftLines = 100

// Draft operations posted to /ui/bills/draft.
const (
	draftOpAdd    = "add"
	draftOpRemove = "remove"
	draftOpUpdate = "update"
)

// ParseMonths reads the statistics window from ?months=, falling back to
// the default for missing or out-of-range values.
func ParseMonths(query url.Values) int {
	n, err := strconv.Atoi(strings.TrimSpace(query.Get("months")))
	if err != nil {
		return core.DefaultStatsMonths
	}
	return core.NormalizeMonths(n)
}

// ParseDraftForm rebuilds the draft bill from the creation form. Lines are
// posted as lines[i].description, lines[i].amount and lines[i].category and
// come back ordered by index. Only the lowest maxDraftLines indices are kept.
// A form without lines gets one empty line.
func ParseDraftForm(form url.Values) *core.DraftBill {
	d := &core.DraftBill{
		Description:  sanitizeInput(form.Get("description")),
		Category:     sanitizeInput(form.Get("category")),
		Date:         strings.TrimSpace(form.Get("date")),
		Currency:     core.Currency(strings.ToUpper(strings.TrimSpace(form.Get("currency")))),
		ExchangeRate: strings.TrimSpace(form.Get("exchangeRate")),
	}

	lines := make(map[int]*core.DraftLine)
	for key, values := range form {
		index, field, ok := parseLineKey(key)
		if !ok || len(values) == 0 {
			continue
		}
		l, exists := lines[index]
		if !exists {
			l = &core.DraftLine{}
			lines[index] = l
		}
		value := sanitizeInput(values[0])
		switch field {
		case core.LineFieldDescription:
			l.Description = value
		case core.LineFieldAmount:
			l.Amount = value
		case core.LineFieldCategory:
			l.Category = value
		}
	}

	indices := make([]int, 0, len(lines))
	for i := range lines {
		indices = append(indices, i)
	}
	sort.Ints(indices)
	if len(indices) > maxDraftLines {
		indices = indices[:maxDraftLines]
	}
	for _, i := range indices {
		d.Lines = append(d.Lines, *lines[i])
	}
	if len(d.Lines) == 0 {
		d.Lines = []core.DraftLine{{}}
	}
	return d
}

// parseLineKey splits "lines[3].amount" into 3 and "amount".
func parseLineKey(key string) (int, string, bool) {
	rest, ok := strings.CutPrefix(key, "lines[")
	if !ok {
		return 0, "", false
	}
	idx, field, ok := strings.Cut(rest, "].")
	if !ok {
		return 0, "", false
	}
	i, err := strconv.Atoi(idx)
	if err != nil || i < 0 {
		return 0, "", false
	}
	switch field {
	case core.LineFieldDescription, core.LineFieldAmount, core.LineFieldCategory:
		return i, field, true
	}
	return 0, "", false
}

// ApplyDraftOp runs the line operation named by op on d. update with a
// field applies a single change; without one the posted form already holds
// the new values.
func ApplyDraftOp(d *core.DraftBill, form url.Values) error {
	switch form.Get("op") {
	case draftOpAdd:
		if len(d.Lines) >= maxDraftLines {
			return nil
		}
		d.Add()
	case draftOpRemove:
		i, err := strconv.Atoi(form.Get("index"))
		if err != nil {
			return core.ErrLineOutOfRange
		}
		return d.Remove(i)
	case draftOpUpdate, "":
		field := form.Get("field")
		if field == "" {
			return nil
		}
		i, err := strconv.Atoi(form.Get("index"))
		if err != nil {
			return core.ErrLineOutOfRange
		}
		return d.Update(i, field, sanitizeInput(form.Get("value")))
	}
	return nil
}

// ParseOTP reads and normalizes the code field of the link form.
func ParseOTP(form url.Values) string {
	return services.SanitizeOTP(form.Get("code"))
}

// ParseFormOrFail parses the request form and returns an error response if
// parsing fails. Returns nil on success.
func ParseFormOrFail(w http.ResponseWriter, r *http.Request) *HTMXResponseBuilder {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	if err := r.ParseForm(); err != nil {
		return BadRequestError("Invalid form data")
	}
	return nil
}
