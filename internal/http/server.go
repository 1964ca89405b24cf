package http

import (
	"context"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"

	"mibolsillo/internal/apiclient"
	"mibolsillo/internal/i18n"
	applog "mibolsillo/internal/log"
	"mibolsillo/internal/metrics"
	"mibolsillo/internal/middleware/ratelimit"
	"mibolsillo/internal/middleware/security"
	"mibolsillo/internal/middleware/trace"
	"mibolsillo/internal/session"
	appweb "mibolsillo/web"
)

// Options wires the server to its collaborators. API is the shared client
// built in main; every request gets its own token-scoped copy of it.
type Options struct {
	Addr string
	API  *apiclient.Client

	// Verifier checks identity provider tokens. Nil parses claims without
	// verifying the signature.
	Verifier session.Verifier

	Logger  *applog.Logger
	Metrics *metrics.Metrics

	ClerkPublishableKey string
	ClerkFrontendAPI    string
	TelegramBotUsername string
	DefaultLanguage     string
	RateLimitPerMinute  int

	// Templates overrides the embedded templates. Tests use it.
	Templates fs.FS
}

type Server struct {
	http.Server
	router    *mux.Router
	templates *template.Template

	api      *apiclient.Client
	bridge   *session.Bridge
	limiter  *ratelimit.Limiter
	drafts   *ratelimit.Limiter
	detector *security.Detector
	tracer   *trace.Middleware

	logger  *applog.Logger
	metrics *metrics.Metrics

	clerkKey    string
	clerkHost   string
	botUsername string
	defaultLang string
	started     time.Time

	shutdownOnce sync.Once
}

// NewServer configures routes and templates, returning a ready-to-run http.Server.
func NewServer(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = applog.Discard()
	}
	defaultLang := opts.DefaultLanguage
	if !i18n.Supported(defaultLang) {
		defaultLang = i18n.English
	}

	s := &Server{
		router:      mux.NewRouter(),
		api:         opts.API,
		logger:      logger.WithComponent(applog.ComponentHTTP),
		metrics:     opts.Metrics,
		clerkKey:    opts.ClerkPublishableKey,
		clerkHost:   opts.ClerkFrontendAPI,
		botUsername: opts.TelegramBotUsername,
		defaultLang: defaultLang,
		started:     time.Now(),
	}
	s.detector = security.NewDetector(logger, opts.Metrics)
	s.tracer = trace.NewMiddleware(s.detector.ExtractClientIP, logger, opts.Metrics)
	perMinute := opts.RateLimitPerMinute
	if perMinute <= 0 {
		perMinute = ratelimit.DefaultConfig().RequestsPerMinute
	}
	s.limiter = ratelimit.NewLimiter(ratelimit.Config{
		RequestsPerMinute: perMinute,
		Metrics:           opts.Metrics,
		Logger:            logger,
		Exempt:            isDraftRecompute,
	})
	// Draft totals are recomputed on every keystroke, so they get their own
	// larger budget instead of eating into the one for real mutations.
	s.drafts = ratelimit.NewLimiter(ratelimit.Config{
		RequestsPerMinute: draftRateMultiplier * perMinute,
		Metrics:           opts.Metrics,
		Logger:            logger,
	})
	s.bridge = session.NewBridge(opts.API, opts.Verifier, logger)

	templatesFS := opts.Templates
	if templatesFS == nil {
		templatesFS = appweb.TemplatesFS
	}
	t, err := parseTemplates(templatesFS)
	if err != nil {
		s.logger.Warn("Failed parsing templates", applog.FieldError, err)
	}
	s.templates = t

	s.routes()

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig(s.clerkHost))
	var handler http.Handler = s.router
	handler = s.bridge.Middleware(handler)
	handler = i18n.Middleware(defaultLang)(handler)
	handler = s.detector.Middleware(handler)
	handler = headers.Middleware(handler)
	handler = applog.Middleware(logger)(handler)

	s.Server = http.Server{
		Addr:              opts.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

func (s *Server) routes() {
	r := s.router
	r.Use(s.tracer.Middleware)
	r.Use(s.limiter.Middleware(s.detector.ExtractClientIP, s.handleRateLimited))

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		r.PathPrefix("/static/").Handler(security.StaticAssetMiddleware(3600)(static))
	} else {
		s.logger.Warn("Failed to mount embedded static FS", applog.FieldError, err)
	}

	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet, http.MethodHead)
	r.HandleFunc("/readyz", s.handleReady).Methods(http.MethodGet, http.MethodHead)
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics.Handler()).Methods(http.MethodGet)
	}
	r.HandleFunc("/lang/{code}", s.handleSetLanguage).Methods(http.MethodGet, http.MethodPost)

	// Public pages
	r.HandleFunc("/login", s.handleLogin).Methods(http.MethodGet)
	r.HandleFunc("/signup", s.handleSignUp).Methods(http.MethodGet)
	r.HandleFunc("/logout", s.handleLogout).Methods(http.MethodGet, http.MethodPost)

	// Everything else needs a session and must not be cached.
	p := r.NewRoute().Subrouter()
	p.Use(security.NoStore, s.RequireSession)

	p.HandleFunc("/", s.handleDashboard).Methods(http.MethodGet)
	p.HandleFunc("/bills/new", s.handleNewBill).Methods(http.MethodGet)
	p.HandleFunc("/bills", s.handleCreateBill).Methods(http.MethodPost)
	p.HandleFunc("/bills/{id}", s.handleBillDetail).Methods(http.MethodGet)
	p.HandleFunc("/bills/{id}", s.handleDeleteBill).Methods(http.MethodDelete)
	p.HandleFunc("/bills/{id}/delete", s.handleDeleteBill).Methods(http.MethodPost)
	p.HandleFunc("/statistics", s.handleStatistics).Methods(http.MethodGet)
	p.HandleFunc("/link-telegram", s.handleLinkTelegram).Methods(http.MethodGet)
	p.HandleFunc("/charts/{kind}.svg", s.handleChart).Methods(http.MethodGet)

	// HTMX partials
	p.HandleFunc("/ui/bills", s.handleBillsList).Methods(http.MethodGet)
	p.HandleFunc("/ui/bills/{id}/row", s.handleBillRow).Methods(http.MethodGet)
	p.Handle(draftPath, s.drafts.Middleware(s.detector.ExtractClientIP, s.handleRateLimited)(http.HandlerFunc(s.handleDraft))).Methods(http.MethodPost)
	p.HandleFunc("/ui/statistics", s.handleStatisticsPartial).Methods(http.MethodGet)
	p.HandleFunc("/ui/link/status", s.handleLinkStatus).Methods(http.MethodGet)
	p.HandleFunc("/ui/link/verify", s.handleVerifyOTP).Methods(http.MethodPost)

	r.NotFoundHandler = http.HandlerFunc(s.handleNotFound)
	r.MethodNotAllowedHandler = http.HandlerFunc(s.handleMethodNotAllowed)
}

const (
	draftPath           = "/ui/bills/draft"
	draftRateMultiplier = 10
)

func isDraftRecompute(r *http.Request) bool {
	return r.URL.Path == draftPath
}

// Shutdown gracefully shuts down the server and cleanup routines
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	if shutdownErr != nil {
		return fmt.Errorf("shutdown http server: %w", shutdownErr)
	}
	return nil
}
