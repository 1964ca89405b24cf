package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/gorilla/mux"

	"mibolsillo/internal/apiclient"
	"mibolsillo/internal/i18n"
	applog "mibolsillo/internal/log"
)

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.started).String(),
	})
}

// handleReady performs readiness check with dependency verification.
// Any HTTP answer from the API, a 401 included, counts as reachable.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := "ready"
	httpStatus := http.StatusOK
	checks := make(map[string]interface{})

	if s.templates == nil {
		checks["templates"] = "failed: templates not loaded"
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["templates"] = "ok"
	}

	if s.api == nil {
		checks["api"] = "failed: not configured"
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	} else if err := s.pingAPI(ctx); err != nil {
		checks["api"] = fmt.Sprintf("failed: %v", err)
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["api"] = "ok"
	}

	if httpStatus != http.StatusOK {
		s.logger.WarnContext(ctx, "Readiness check failed", "checks", checks)
	}

	writeJSON(w, httpStatus, map[string]interface{}{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	})
}

func (s *Server) pingAPI(ctx context.Context) error {
	err := s.api.WithAuthToken("").Get(ctx, "/auth/link-status", nil, nil)
	var apiErr *apiclient.APIError
	if err == nil || errors.As(err, &apiErr) {
		return nil
	}
	return err
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// handleSetLanguage stores the chosen language and sends the browser back
// where it came from.
func (s *Server) handleSetLanguage(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]
	if !i18n.Supported(code) {
		NotFoundError("Unsupported language").Write(w)
		return
	}
	i18n.SetCookie(w, code)

	target := "/"
	if ref, err := url.Parse(r.Header.Get("Referer")); err == nil && ref.Path != "" {
		if ref.Host == "" || ref.Host == r.Host {
			target = ref.Path
			if ref.RawQuery != "" {
				target += "?" + ref.RawQuery
			}
		}
	}
	target = safeRedirectTarget(target, "/")

	if isHTMX(r) {
		NewHTMXResponse().Refresh().Status(http.StatusNoContent).Write(w)
		return
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// handleNotFound sends unknown page paths to the dashboard. HTMX requests
// and mutations get a plain 404 instead.
func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	if (r.Method != http.MethodGet && r.Method != http.MethodHead) || isHTMX(r) {
		NotFoundError("Not found").Write(w)
		return
	}
	applog.FromContext(r.Context()).DebugContext(r.Context(), "Unknown path, redirecting home",
		applog.FieldPath, r.URL.Path)
	http.Redirect(w, r, "/", http.StatusFound)
}

func (s *Server) handleMethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	MethodNotAllowedError("GET, POST").Write(w)
}

// handleRateLimited answers a request rejected by the limiter.
func (s *Server) handleRateLimited(w http.ResponseWriter, r *http.Request) {
	msg := i18n.T(i18n.FromContext(r.Context()), "error.rateLimited")
	if isHTMX(r) {
		NewHTMXResponse().
			Status(http.StatusTooManyRequests).
			TriggerErrorNotification(msg).
			Reswap("none").
			Write(w)
		return
	}
	ErrorResponse(http.StatusTooManyRequests, msg).Write(w)
}
