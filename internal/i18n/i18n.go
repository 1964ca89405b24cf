// Package i18n holds the English and Spanish UI strings and picks the
// language for each request.
package i18n

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/text/language"
)

const (
	English = "en"
	Spanish = "es"

	CookieName = "lang"
)

var (
	supported = []language.Tag{language.English, language.Spanish}
	matcher   = language.NewMatcher(supported)
)

// Supported reports whether code names a bundled catalog.
func Supported(code string) bool {
	_, ok := catalogs[code]
	return ok
}

// T translates key into lang, formatting args when given. Missing keys fall
// back to English and then to the key itself.
func T(lang, key string, args ...any) string {
	msg, ok := catalogs[lang][key]
	if !ok {
		msg, ok = catalogs[English][key]
	}
	if !ok {
		return key
	}
	if len(args) > 0 {
		return fmt.Sprintf(msg, args...)
	}
	return msg
}

// Other returns the language the toggle switches to.
func Other(lang string) string {
	if lang == Spanish {
		return English
	}
	return Spanish
}

// Negotiate picks the language from the lang cookie, then Accept-Language,
// then fallback.
func Negotiate(r *http.Request, fallback string) string {
	if c, err := r.Cookie(CookieName); err == nil && Supported(c.Value) {
		return c.Value
	}
	if accept := r.Header.Get("Accept-Language"); accept != "" {
		tags, _, err := language.ParseAcceptLanguage(accept)
		if err == nil && len(tags) > 0 {
			tag, _, conf := matcher.Match(tags...)
			if conf != language.No {
				base, _ := tag.Base()
				if Supported(base.String()) {
					return base.String()
				}
			}
		}
	}
	if Supported(fallback) {
		return fallback
	}
	return English
}

// SetCookie remembers the chosen language for a year.
func SetCookie(w http.ResponseWriter, lang string) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    lang,
		Path:     "/",
		MaxAge:   int((365 * 24 * time.Hour).Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

type ctxKey struct{}

// Middleware stores the negotiated language in the request context.
func Middleware(fallback string) func(http.Handler) http.Handler {
	fallback = strings.ToLower(fallback)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			lang := Negotiate(r, fallback)
			w.Header().Add("Vary", "Accept-Language")
			next.ServeHTTP(w, r.WithContext(WithLang(r.Context(), lang)))
		})
	}
}

func WithLang(ctx context.Context, lang string) context.Context {
	return context.WithValue(ctx, ctxKey{}, lang)
}

// FromContext returns the request language, English by default.
func FromContext(ctx context.Context) string {
	if l, ok := ctx.Value(ctxKey{}).(string); ok {
		return l
	}
	return English
}
