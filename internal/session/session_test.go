package session

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"errors"
	"math/big"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"mibolsillo/internal/apiclient"
)

func signHS(t *testing.T, sub string, exp time.Time) string {
	t.Helper()
	claims := Claims{
		Name:  "Ana Quispe",
		Email: "ana@example.pe",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub,
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("unused"))
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func request(token, uat string) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	if token != "" {
		r.AddCookie(&http.Cookie{Name: SessionCookie, Value: token})
	}
	if uat != "" {
		r.AddCookie(&http.Cookie{Name: ClientUATCookie, Value: uat})
	}
	return r
}

func TestResolveStates(t *testing.T) {
	valid := signHS(t, "user_1", time.Now().Add(time.Minute))
	expired := signHS(t, "user_1", time.Now().Add(-time.Hour))

	tests := []struct {
		name  string
		req   *http.Request
		want  State
		token string
	}{
		{"no cookies", request("", ""), SignedOut, ""},
		{"client uat zero", request("", "0"), SignedOut, ""},
		{"client active without token", request("", "1735689600"), Loading, ""},
		{"valid token", request(valid, "1735689600"), SignedIn, valid},
		{"expired token with client", request(expired, "1735689600"), Loading, ""},
		{"expired token without client", request(expired, ""), SignedOut, ""},
		{"garbage token", request("not-a-jwt", ""), SignedOut, ""},
	}
	b := NewBridge(nil, nil, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := b.Resolve(tt.req)
			if s.State != tt.want {
				t.Fatalf("expected %s, got %s", tt.want, s.State)
			}
			if s.Token != tt.token {
				t.Fatalf("unexpected token %q", s.Token)
			}
		})
	}
}

func TestResolveBearerHeaderAndClaims(t *testing.T) {
	tok := signHS(t, "user_9", time.Now().Add(time.Minute))
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer "+tok)

	s := NewBridge(nil, nil, nil).Resolve(r)
	if !s.SignedIn() {
		t.Fatalf("expected signed in, got %s", s.State)
	}
	if s.User.ID != "user_9" || s.User.DisplayName() != "Ana Quispe" || s.User.Email != "ana@example.pe" {
		t.Fatalf("unexpected user %+v", s.User)
	}
}

func TestSuffixedCookies(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: "__client_uat_Xyz", Value: "17"})
	if s := NewBridge(nil, nil, nil).Resolve(r); s.State != Loading {
		t.Fatalf("expected loading from suffixed cookie, got %s", s.State)
	}
}

func TestMiddlewareScopesClient(t *testing.T) {
	var got []string
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = append(got, r.Header.Get("Authorization"))
	}))
	defer api.Close()

	shared, err := apiclient.New(api.URL)
	if err != nil {
		t.Fatal(err)
	}
	b := NewBridge(shared, nil, nil)
	h := b.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c := ClientFromContext(r.Context())
		if c == nil {
			t.Fatal("client missing from context")
		}
		_ = c.Get(r.Context(), "/bills", nil, nil)
	}))

	tok := signHS(t, "user_1", time.Now().Add(time.Minute))
	h.ServeHTTP(httptest.NewRecorder(), request(tok, "1"))
	h.ServeHTTP(httptest.NewRecorder(), request("", ""))

	if len(got) != 2 || got[0] != "Bearer "+tok || got[1] != "" {
		t.Fatalf("unexpected Authorization headers %q", got)
	}
	if shared.AuthToken() != "" {
		t.Fatalf("shared client must not be mutated")
	}
}

func TestFromContextDefaultsToSignedOut(t *testing.T) {
	if s := FromContext(context.Background()); s.State != SignedOut {
		t.Fatalf("expected signed out, got %s", s.State)
	}
	if ClientFromContext(context.Background()) != nil {
		t.Fatalf("expected nil client")
	}
}

func TestFrontendAPI(t *testing.T) {
	key := "pk_test_" + base64.StdEncoding.EncodeToString([]byte("clerk.mi-bolsillo.dev$"))
	host, err := FrontendAPI(key)
	if err != nil || host != "clerk.mi-bolsillo.dev" {
		t.Fatalf("got %q, %v", host, err)
	}
	if ScriptURL(host) != "https://clerk.mi-bolsillo.dev/npm/@clerk/clerk-js@5/dist/clerk.browser.js" {
		t.Fatalf("unexpected script url %s", ScriptURL(host))
	}
	for _, bad := range []string{"", "sk_test_abc", "pk_test_!!!", "pk_live_"} {
		if _, err := FrontendAPI(bad); !errors.Is(err, ErrInvalidPublishableKey) {
			t.Fatalf("%q: expected ErrInvalidPublishableKey, got %v", bad, err)
		}
	}
}

// jwksServer publishes key under kid and counts fetches. fail flips the
// endpoint into returning 500.
type jwksServer struct {
	*httptest.Server
	fetches atomic.Int32
	fail    atomic.Bool
}

func newJWKSServer(t *testing.T, kid string, key *rsa.PublicKey) *jwksServer {
	t.Helper()
	s := &jwksServer{}
	doc := JWKS{Keys: []JWK{{
		Kty: "RSA",
		Kid: kid,
		Use: "sig",
		Alg: "RS256",
		N:   base64.RawURLEncoding.EncodeToString(key.N.Bytes()),
		E:   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(key.E)).Bytes()),
	}}}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.fetches.Add(1)
		if s.fail.Load() {
			http.Error(w, "down", http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(doc)
	}))
	t.Cleanup(s.Close)
	return s
}

func signRS(t *testing.T, key *rsa.PrivateKey, kid, sub string, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodRS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: sub, ExpiresAt: jwt.NewNumericDate(exp)},
	})
	tok.Header["kid"] = kid
	s, err := tok.SignedString(key)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestJWKSVerifier(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatal(err)
	}
	other, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatal(err)
	}
	srv := newJWKSServer(t, "kid-1", &key.PublicKey)
	v := NewJWKSVerifier(srv.URL)
	ctx := context.Background()

	claims, err := v.Verify(ctx, signRS(t, key, "kid-1", "user_1", time.Now().Add(time.Minute)))
	if err != nil || claims.Subject != "user_1" {
		t.Fatalf("expected valid token, got %v", err)
	}
	if _, err := v.Verify(ctx, signRS(t, key, "kid-1", "user_1", time.Now().Add(time.Minute))); err != nil {
		t.Fatal(err)
	}
	if n := srv.fetches.Load(); n != 1 {
		t.Fatalf("keys should be cached, fetched %d times", n)
	}

	if _, err := v.Verify(ctx, signRS(t, other, "kid-1", "user_1", time.Now().Add(time.Minute))); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("wrong key must be rejected, got %v", err)
	}
	if _, err := v.Verify(ctx, signRS(t, key, "kid-1", "user_1", time.Now().Add(-time.Hour))); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
	if _, err := v.Verify(ctx, signHS(t, "user_1", time.Now().Add(time.Minute))); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("HS256 must be rejected, got %v", err)
	}
}

func TestJWKSVerifierKeepsLastKeysOnFailure(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatal(err)
	}
	srv := newJWKSServer(t, "kid-1", &key.PublicKey)
	v := NewJWKSVerifier(srv.URL, WithKeyTTL(time.Nanosecond))
	ctx := context.Background()
	tok := signRS(t, key, "kid-1", "user_1", time.Now().Add(time.Minute))

	if _, err := v.Verify(ctx, tok); err != nil {
		t.Fatal(err)
	}
	srv.fail.Store(true)
	time.Sleep(time.Millisecond)

	if _, err := v.Verify(ctx, tok); err != nil {
		t.Fatalf("stale keys should be used when refresh fails, got %v", err)
	}
	if n := srv.fetches.Load(); n < 2 {
		t.Fatalf("expected a refresh attempt, got %d fetches", n)
	}
}

func TestJWKSVerifierWithoutKeys(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	}))
	defer srv.Close()

	key, _ := rsa.GenerateKey(rand.Reader, 2048)
	v := NewJWKSVerifier(srv.URL)
	if _, err := v.Verify(context.Background(), signRS(t, key, "kid-1", "u", time.Now().Add(time.Minute))); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}
