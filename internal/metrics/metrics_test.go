package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestObserveAPI(t *testing.T) {
	m := New()
	m.ObserveAPI("GET", "/bills", 200, 20*time.Millisecond)
	m.ObserveAPI("GET", "/bills", 200, 10*time.Millisecond)
	m.ObserveAPI("GET", "/bills", 401, time.Millisecond)

	families, err := m.Registry().Gather()
	if err != nil {
		t.Fatal(err)
	}
	counts := map[string]float64{}
	for _, f := range families {
		if f.GetName() != "mibolsillo_api_requests_total" {
			continue
		}
		for _, metric := range f.GetMetric() {
			for _, l := range metric.GetLabel() {
				if l.GetName() == "status" {
					counts[l.GetValue()] = metric.GetCounter().GetValue()
				}
			}
		}
	}
	if counts["200"] != 2 || counts["401"] != 1 {
		t.Fatalf("unexpected counts %v", counts)
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveHTTP("GET", "/", 200, time.Second)
	m.ObserveAPI("GET", "/bills", 500, time.Second)
	m.LoginRedirect("signed_out")
	m.RateLimitHit()
	m.Suspicious()
	m.JWKSRefresh(false)
}

func TestHandlerExposesCounters(t *testing.T) {
	m := New()
	m.LoginRedirect("unauthorized")

	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rr.Body)
	if !strings.Contains(string(body), `mibolsillo_session_login_redirects_total{cause="unauthorized"} 1`) {
		t.Fatalf("counter missing from exposition:\n%s", body)
	}
}
