package http

import (
	"net/http"

	"mibolsillo/internal/session"
)

// authView drives the sign-in, sign-up and sign-out pages.
type authView struct {
	Mode          string // "signin", "signup" or "signout"
	Expired       bool   // the API rejected the last token
	NotConfigured bool
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	s.authPage(w, r, "signin", "login_page", "auth.signInTitle")
}

func (s *Server) handleSignUp(w http.ResponseWriter, r *http.Request) {
	s.authPage(w, r, "signup", "signup_page", "auth.signUpTitle")
}

// authPage renders the mount point for the identity provider's widget. A
// signed-in visitor goes home unless they arrive because the API rejected
// their token, in which case the page signs the provider session out.
func (s *Server) authPage(w http.ResponseWriter, r *http.Request, mode, name, title string) {
	expired := r.URL.Query().Get("expired") == "1"
	if session.FromContext(r.Context()).SignedIn() && !expired {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	s.renderPage(w, r, http.StatusOK, name, pageView{
		Title: title,
		Data: authView{
			Mode:          mode,
			Expired:       expired,
			NotConfigured: s.clerkKey == "",
		},
	})
}

// handleLogout drops the provider cookies on this host and lets the
// provider script end its own session before returning to /login.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	session.ClearCookies(w)
	if s.clerkKey == "" {
		s.redirect(w, r, "/login")
		return
	}
	if isHTMX(r) {
		NewHTMXResponse().Redirect("/logout").Status(http.StatusNoContent).Write(w)
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	s.renderPage(w, r, http.StatusOK, "signout_page", pageView{
		Title: "auth.signingOut",
		Data:  authView{Mode: "signout"},
	})
}
