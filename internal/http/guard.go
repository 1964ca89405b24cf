package http

import (
	"errors"
	"net/http"

	"mibolsillo/internal/apiclient"
	applog "mibolsillo/internal/log"
	"mibolsillo/internal/session"
)

// Redirect causes recorded in the login redirect metric.
const (
	causeSignedOut    = "signed_out"
	causeUnauthorized = "api_unauthorized"
)

// RequireSession lets signed-in requests through. A browser still restoring
// its session gets the loading page, which refreshes the token and reloads;
// anyone else is sent to /login.
func (s *Server) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := session.FromContext(r.Context())
		switch sess.State {
		case session.SignedIn:
			next.ServeHTTP(w, r)
		case session.Loading:
			if isHTMX(r) {
				// A partial cannot run the provider script; reload the page.
				w.Header().Set("HX-Refresh", "true")
				w.WriteHeader(http.StatusNoContent)
				return
			}
			w.Header().Set("Cache-Control", "no-store")
			s.renderPage(w, r, http.StatusOK, "loading_page", pageView{Title: "common.loading"})
		default:
			s.metrics.LoginRedirect(causeSignedOut)
			s.redirect(w, r, "/login")
		}
	})
}

// handleAPIError reports whether err was a 401 from the API, in which case
// the browser has already been redirected to /login. Requests made while on
// /login or /signup are never redirected again.
func (s *Server) handleAPIError(w http.ResponseWriter, r *http.Request, err error) bool {
	if !apiclient.IsUnauthorized(err) {
		return false
	}
	if onAuthPage(r) {
		return false
	}
	s.metrics.LoginRedirect(causeUnauthorized)
	applog.FromContext(r.Context()).WarnContext(r.Context(), "API rejected session token",
		applog.FieldPath, r.URL.Path,
		applog.FieldError, err)
	session.ClearCookies(w)
	s.redirect(w, r, "/login?expired=1")
	return true
}

// onAuthPage reports whether the browser is on /login or /signup. HTMX
// requests are judged by the page that issued them.
func onAuthPage(r *http.Request) bool {
	path := r.URL.Path
	if isHTMX(r) {
		if current := htmxCurrentPath(r); current != "" {
			path = current
		}
	}
	return path == "/login" || path == "/signup"
}

// redirect navigates the whole page, also from an HTMX request.
func (s *Server) redirect(w http.ResponseWriter, r *http.Request, to string) {
	if isHTMX(r) {
		NewHTMXResponse().Redirect(to).Status(http.StatusNoContent).Write(w)
		return
	}
	status := http.StatusFound
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		status = http.StatusSeeOther
	}
	http.Redirect(w, r, to, status)
}

// errorKey maps a failed load to the banner shown instead of data.
func errorKey(err error, notFoundKey, fallback string) string {
	if notFoundKey != "" && errors.Is(err, apiclient.ErrNotFound) {
		return notFoundKey
	}
	return fallback
}
