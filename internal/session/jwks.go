package session

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"mibolsillo/internal/cache"
	applog "mibolsillo/internal/log"
	"mibolsillo/internal/metrics"
)

const (
	jwksTTL            = time.Hour
	jwksGrace          = 24 * time.Hour
	minForcedRefresh   = time.Minute
	maxJWKSResponse    = 1 << 20
	defaultJWKSTimeout = 5 * time.Second
)

// JWK is one key of a JSON Web Key Set. Only RSA signing keys are used.
type JWK struct {
	Kty string `json:"kty"`
	Kid string `json:"kid"`
	Use string `json:"use"`
	Alg string `json:"alg"`
	N   string `json:"n"`
	E   string `json:"e"`
}

// JWKS is the document served at the provider's jwks endpoint.
type JWKS struct {
	Keys []JWK `json:"keys"`
}

type keySet map[string]*rsa.PublicKey

// JWKSVerifier checks RS256 signatures against the provider's published keys.
// Keys are cached for an hour; when a refresh fails the last known set keeps
// being used for up to a day.
type JWKSVerifier struct {
	url        string
	httpClient *http.Client
	keys       *cache.LRUCache[keySet]
	logger     *applog.Logger
	metrics    *metrics.Metrics
	leeway     time.Duration
	ttl        time.Duration
	now        func() time.Time

	mu        sync.Mutex
	lastFetch time.Time
}

// JWKSOption configures a JWKSVerifier.
type JWKSOption func(*JWKSVerifier)

func WithJWKSHTTPClient(c *http.Client) JWKSOption {
	return func(v *JWKSVerifier) { v.httpClient = c }
}

func WithJWKSLogger(l *applog.Logger) JWKSOption {
	return func(v *JWKSVerifier) { v.logger = l.WithComponent(applog.ComponentSession) }
}

func WithJWKSMetrics(m *metrics.Metrics) JWKSOption {
	return func(v *JWKSVerifier) { v.metrics = m }
}

// WithKeyTTL sets how long a fetched key set counts as fresh.
func WithKeyTTL(d time.Duration) JWKSOption {
	return func(v *JWKSVerifier) { v.ttl = d }
}

// WithLeeway tolerates clock skew on exp and nbf.
func WithLeeway(d time.Duration) JWKSOption {
	return func(v *JWKSVerifier) { v.leeway = d }
}

func NewJWKSVerifier(url string, opts ...JWKSOption) *JWKSVerifier {
	v := &JWKSVerifier{
		url:        url,
		httpClient: &http.Client{Timeout: defaultJWKSTimeout},
		logger:     applog.Discard(),
		leeway:     5 * time.Second,
		ttl:        jwksTTL,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(v)
	}
	v.keys = cache.NewLRUCache[keySet](1, v.ttl, jwksGrace)
	return v
}

// Cache exposes the key cache so it can be registered for cleanup.
func (v *JWKSVerifier) Cache() cache.Cleaner { return v.keys }

func (v *JWKSVerifier) Verify(ctx context.Context, token string) (*Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithLeeway(v.leeway),
		jwt.WithTimeFunc(v.now),
		jwt.WithExpirationRequired(),
	)
	claims := &Claims{}
	_, err := parser.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		kid, _ := t.Header["kid"].(string)
		if kid == "" {
			return nil, errors.New("missing kid in token header")
		}
		return v.key(ctx, kid)
	})
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, ErrTokenExpired
	case err != nil:
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	case claims.Subject == "":
		return nil, fmt.Errorf("%w: missing sub", ErrInvalidToken)
	}
	return claims, nil
}

// key finds kid in the cached set, refetching once when the kid is unknown
// so rotated keys are picked up.
func (v *JWKSVerifier) key(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	set, err := v.keySet(ctx, false)
	if err != nil {
		return nil, err
	}
	if k, ok := set[kid]; ok {
		return k, nil
	}
	set, err = v.keySet(ctx, true)
	if err != nil {
		return nil, err
	}
	if k, ok := set[kid]; ok {
		return k, nil
	}
	return nil, fmt.Errorf("no key for kid %q", kid)
}

func (v *JWKSVerifier) keySet(ctx context.Context, force bool) (keySet, error) {
	if !force {
		if set, ok := v.keys.Get(v.url); ok {
			return set, nil
		}
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	if set, ok := v.keys.Get(v.url); ok {
		if !force || v.now().Sub(v.lastFetch) < minForcedRefresh {
			return set, nil
		}
	}

	set, err := v.fetch(ctx)
	v.lastFetch = v.now()
	if err != nil {
		v.metrics.JWKSRefresh(false)
		if stale, ok := v.keys.GetStale(v.url); ok {
			v.logger.WarnContext(ctx, "JWKS refresh failed, using last known keys",
				applog.FieldOperation, applog.OpRefresh,
				applog.FieldError, err)
			return stale, nil
		}
		return nil, err
	}
	v.metrics.JWKSRefresh(true)
	v.keys.Set(v.url, set)
	v.logger.DebugContext(ctx, "JWKS refreshed", "keys", len(set))
	return set, nil
}

func (v *JWKSVerifier) fetch(ctx context.Context) (keySet, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.url, nil)
	if err != nil {
		return nil, fmt.Errorf("build jwks request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch jwks: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch jwks: unexpected status %d", resp.StatusCode)
	}

	var doc JWKS
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxJWKSResponse)).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode jwks: %w", err)
	}

	set := make(keySet, len(doc.Keys))
	for _, k := range doc.Keys {
		if k.Kty != "RSA" || (k.Use != "" && k.Use != "sig") {
			continue
		}
		pub, err := k.PublicKey()
		if err != nil {
			v.logger.WarnContext(ctx, "Skipping malformed JWK", "kid", k.Kid, applog.FieldError, err)
			continue
		}
		set[k.Kid] = pub
	}
	if len(set) == 0 {
		return nil, errors.New("jwks contains no usable RSA keys")
	}
	return set, nil
}

// PublicKey builds the RSA key from the base64url modulus and exponent.
func (k JWK) PublicKey() (*rsa.PublicKey, error) {
	nBytes, err := base64.RawURLEncoding.DecodeString(k.N)
	if err != nil {
		return nil, fmt.Errorf("decode modulus: %w", err)
	}
	eBytes, err := base64.RawURLEncoding.DecodeString(k.E)
	if err != nil {
		return nil, fmt.Errorf("decode exponent: %w", err)
	}
	if len(nBytes) == 0 || len(eBytes) == 0 || len(eBytes) > 4 {
		return nil, errors.New("invalid modulus or exponent size")
	}
	e := 0
	for _, b := range eBytes {
		e = e<<8 | int(b)
	}
	return &rsa.PublicKey{N: new(big.Int).SetBytes(nBytes), E: e}, nil
}
