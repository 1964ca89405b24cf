package session

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"mibolsillo/internal/apiclient"
	applog "mibolsillo/internal/log"
)

// Clerk cookie names. Newer instances may append a suffix to both.
const (
	SessionCookie   = "__session"
	ClientUATCookie = "__client_uat"
)

// Bridge resolves the browser's session and scopes the API client to it.
type Bridge struct {
	client   *apiclient.Client
	verifier Verifier
	logger   *applog.Logger
}

func NewBridge(client *apiclient.Client, verifier Verifier, logger *applog.Logger) *Bridge {
	if verifier == nil {
		verifier = UnverifiedParser{}
	}
	if logger == nil {
		logger = applog.Discard()
	}
	return &Bridge{
		client:   client,
		verifier: verifier,
		logger:   logger.WithComponent(applog.ComponentSession),
	}
}

// Resolve reads the token from the Authorization header or the session
// cookie and decides the session state.
func (b *Bridge) Resolve(r *http.Request) Session {
	token := bearerToken(r)
	if token == "" {
		token = cookieValue(r, SessionCookie)
	}
	clientActive := clientUAT(r) > 0

	if token == "" {
		if clientActive {
			return Session{State: Loading}
		}
		return Session{State: SignedOut}
	}

	claims, err := b.verifier.Verify(r.Context(), token)
	if err != nil {
		if errors.Is(err, ErrTokenExpired) {
			b.logger.DebugContext(r.Context(), "Session token expired", "client_active", clientActive)
		} else {
			b.logger.WarnContext(r.Context(), "Rejected session token",
				applog.FieldError, err, "client_active", clientActive)
		}
		if clientActive {
			return Session{State: Loading}
		}
		return Session{State: SignedOut}
	}

	s := Session{
		State: SignedIn,
		Token: token,
		User:  claims.User(),
	}
	if claims.ExpiresAt != nil {
		s.ExpiresAt = claims.ExpiresAt.Time
	}
	return s
}

// Middleware stores the session and a client carrying its token (or no
// token at all) in the request context.
func (b *Bridge) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s := b.Resolve(r)
		scoped := b.client.WithAuthToken(s.Token)

		ctx := NewContext(r.Context(), s, scoped)
		logger := applog.FromContext(ctx).With(applog.FieldSession, s.State.String())
		if s.User.ID != "" {
			logger = logger.With(applog.FieldUserID, s.User.ID)
		}
		ctx = applog.NewContext(ctx, logger)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "Bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

// cookieValue returns the named cookie, falling back to a suffixed variant
// such as "__session_Abc123".
func cookieValue(r *http.Request, name string) string {
	if c, err := r.Cookie(name); err == nil && c.Value != "" {
		return c.Value
	}
	for _, c := range r.Cookies() {
		if strings.HasPrefix(c.Name, name+"_") && c.Value != "" {
			return c.Value
		}
	}
	return ""
}

func clientUAT(r *http.Request) int64 {
	v := cookieValue(r, ClientUATCookie)
	if v == "" {
		return 0
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// ClearCookies expires the provider cookies on this host.
func ClearCookies(w http.ResponseWriter) {
	for _, name := range []string{SessionCookie, ClientUATCookie} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			SameSite: http.SameSiteLaxMode,
		})
	}
}
