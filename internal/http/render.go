package http

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"

	"mibolsillo/internal/charts"
	"mibolsillo/internal/core"
	"mibolsillo/internal/i18n"
	applog "mibolsillo/internal/log"
	"mibolsillo/internal/session"
)

// pageView is what every template receives. Handlers fill Title, Active and
// Data; render fills the rest from the request.
type pageView struct {
	Title  string // catalog key
	Active string // nav entry to highlight
	Data   any

	Lang        string
	OtherLang   string
	User        core.User
	SignedIn    bool
	ClerkKey    string
	ClerkScript string
	BotUsername string
	Path        string
	Year        int
}

// WithData returns a copy of v carrying d, for nested templates that need
// the page context.
func (v pageView) WithData(d any) pageView {
	v.Data = d
	return v
}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"t":     i18n.T,
		"money": core.FormatMoney,
		"pen": func(d decimal.Decimal) string {
			return core.FormatMoney(core.PEN, d)
		},
		"usd": func(d decimal.Decimal) string {
			return core.FormatMoney(core.USD, d)
		},
		"fixed2":     func(d decimal.Decimal) string { return d.StringFixed(2) },
		"verbatim":   func(d decimal.Decimal) string { return d.String() },
		"date":       formatDate,
		"dateStr":    formatDateString,
		"color":      charts.Color,
		"pathEscape": url.PathEscape,
		"add":        func(a, b int) int { return a + b },
		"eqInt":      func(a, b int) bool { return a == b },
		"deref": func(p *int64) int64 {
			if p == nil {
				return 0
			}
			return *p
		},
	}
}

func parseTemplates(fsys fs.FS) (*template.Template, error) {
	t, err := template.New("").Funcs(templateFuncs()).ParseFS(fsys, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return t, nil
}

// render executes a named template into a buffer and writes it with status.
// Nothing is written on a template error except a 500.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name string, view pageView) {
	ctx := r.Context()
	logger := applog.FromContext(ctx).WithComponent(applog.ComponentTemplate)
	if s.templates == nil {
		logger.ErrorContext(ctx, "Templates not loaded",
			applog.FieldPath, r.URL.Path,
			applog.FieldTemplate, name,
			"error_type", applog.ErrorTypeConfiguration)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	sess := session.FromContext(ctx)
	view.Lang = i18n.FromContext(ctx)
	view.OtherLang = i18n.Other(view.Lang)
	view.User = sess.User
	view.SignedIn = sess.SignedIn()
	view.ClerkKey = s.clerkKey
	if s.clerkHost != "" {
		view.ClerkScript = session.ScriptURL(s.clerkHost)
	}
	view.BotUsername = s.botUsername
	view.Path = r.URL.Path
	view.Year = time.Now().Year()

	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, view); err != nil {
		logger.ErrorContext(ctx, "Template execution failed",
			applog.FieldTemplate, name,
			applog.FieldError, err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// renderPage is render for full pages.
func (s *Server) renderPage(w http.ResponseWriter, r *http.Request, status int, name string, view pageView) {
	s.render(w, r, status, name, view)
}

// renderPartial is render for htmx fragments.
func (s *Server) renderPartial(w http.ResponseWriter, r *http.Request, name string, data any) {
	s.render(w, r, http.StatusOK, name, pageView{Data: data})
}
