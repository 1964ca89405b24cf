package http

import (
	"net/http"
	"net/url"
	"strings"
	"time"
)

// isHTMX reports whether the request was issued by htmx.
func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// htmxCurrentPath returns the path of the page that issued an htmx request.
func htmxCurrentPath(r *http.Request) string {
	raw := r.Header.Get("HX-Current-URL")
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return u.Path
}

// sanitizeInput removes control characters except tab, newline and carriage
// return, and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

// safeRedirectTarget only allows local absolute paths.
func safeRedirectTarget(target, fallback string) string {
	if target == "" || !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") || strings.Contains(target, "\\") {
		return fallback
	}
	return target
}

var dateLayouts = map[string]string{
	"en": "Jan 2, 2006",
	"es": "2/1/2006",
}

// formatDate renders t in the user's language.
func formatDate(lang string, t time.Time) string {
	if t.IsZero() {
		return ""
	}
	layout, ok := dateLayouts[lang]
	if !ok {
		layout = dateLayouts["en"]
	}
	return t.Format(layout)
}

// formatDateString renders an API date string, which may be a bare date or
// an RFC 3339 timestamp. Unparseable values are shown as sent.
func formatDateString(lang, s string) string {
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return formatDate(lang, t)
		}
	}
	return s
}
