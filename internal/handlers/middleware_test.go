package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"greenhouse_control/internal/config"
	"greenhouse_control/internal/models"
	"greenhouse_control/internal/service"

	"github.com/gin-gonic/gin"
)

// minimal router wiring only the middleware + a protected endpoint
func newMiddlewareOnlyRouter(s *service.Service, limits config.RateLimitConfig) *gin.Engine {
	return newMiddlewareRouter(NewHandler(s, nil, limits, config.HTTPConfig{}))
}

func newMiddlewareRouter(h *Handler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := h.newEngine()
	r.Use(securityHeaders)
	r.GET("/api/secure", h.rateLimit, h.tokenAuth, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	r.NoRoute(h.notFound)
	return r
}

func assertErrorEnvelope(t *testing.T, w *httptest.ResponseRecorder, code int, msg string) {
	t.Helper()
	if w.Code != code {
		t.Fatalf("status=%d want %d, body=%s", w.Code, code, w.Body.String())
	}
	var body ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("bad json: %v", err)
	}
	if body.Error != msg {
		t.Fatalf("error=%q want %q", body.Error, msg)
	}
	if _, err := time.Parse(time.RFC3339Nano, body.Timestamp); err != nil {
		t.Fatalf("timestamp %q is not RFC3339: %v", body.Timestamp, err)
	}
}

func TestTokenAuth_Rejects(t *testing.T) {
	r := newMiddlewareOnlyRouter(newMockService(), config.RateLimitConfig{})

	cases := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"wrong scheme", "Token " + testToken},
		{"bearer without token", "Bearer"},
		{"bearer with blank token", "Bearer "},
		{"wrong token", "Bearer invalid-token"},
		{"token prefix", "Bearer " + testToken[:5]},
		{"token with suffix", "Bearer " + testToken + "x"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/api/secure", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			r.ServeHTTP(w, req)
			assertErrorEnvelope(t, w, http.StatusUnauthorized, service.MsgUnauthorized)
		})
	}
}

func TestTokenAuth_AcceptsAndProceeds(t *testing.T) {
	r := newMiddlewareOnlyRouter(newMockService(), config.RateLimitConfig{})

	w := doRequest(r, http.MethodGet, "/api/secure", testToken, "")
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	var body map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	if body["ok"] != true {
		t.Fatalf("handler not reached: %v", body)
	}
}

func TestSecurityHeaders(t *testing.T) {
	r := newMiddlewareOnlyRouter(newMockService(), config.RateLimitConfig{})

	cases := []struct {
		name    string
		path    string
		token   string
		code    int
		noStore bool
	}{
		{"authorized", "/api/secure", testToken, http.StatusOK, true},
		{"unauthorized", "/api/secure", "", http.StatusUnauthorized, true},
		{"unknown api route", "/api/nope", testToken, http.StatusNotFound, true},
		{"outside api", "/elsewhere", "", http.StatusNotFound, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := doRequest(r, http.MethodGet, tc.path, tc.token, "")
			if w.Code != tc.code {
				t.Fatalf("status=%d want %d", w.Code, tc.code)
			}
			if got := w.Header().Get("X-Content-Type-Options"); got != "nosniff" {
				t.Fatalf("X-Content-Type-Options=%q", got)
			}
			if got := w.Header().Get("X-Frame-Options"); got != "DENY" {
				t.Fatalf("X-Frame-Options=%q", got)
			}
			if got := w.Header().Get("Cache-Control"); (got == "no-store") != tc.noStore {
				t.Fatalf("Cache-Control=%q, want no-store=%v", got, tc.noStore)
			}
		})
	}
}

func TestNotFound_BehindAuth(t *testing.T) {
	r := newMiddlewareOnlyRouter(newMockService(), config.RateLimitConfig{})

	w := doRequest(r, http.MethodGet, "/api/does-not-exist", "", "")
	assertErrorEnvelope(t, w, http.StatusUnauthorized, service.MsgUnauthorized)

	w = doRequest(r, http.MethodGet, "/api/does-not-exist", testToken, "")
	assertErrorEnvelope(t, w, http.StatusNotFound, msgNotFound)

	w = doRequest(r, http.MethodGet, "/nothing-here", "", "")
	assertErrorEnvelope(t, w, http.StatusNotFound, msgNotFound)
}

func TestRateLimit_TooManyRequests(t *testing.T) {
	r := newMiddlewareOnlyRouter(newMockService(), config.RateLimitConfig{Requests: 2, Window: time.Minute})

	for i := 0; i < 2; i++ {
		if w := doRequest(r, http.MethodGet, "/api/secure", testToken, ""); w.Code != http.StatusOK {
			t.Fatalf("request %d: status=%d", i+1, w.Code)
		}
	}

	w := doRequest(r, http.MethodGet, "/api/secure", testToken, "")
	assertErrorEnvelope(t, w, http.StatusTooManyRequests, msgTooManyRequests)
	if got := w.Header().Get("Retry-After"); got != "60" {
		t.Fatalf("Retry-After=%q want 60", got)
	}

	// Unauthenticated requests draw from the same budget.
	w = doRequest(r, http.MethodGet, "/api/secure", "", "")
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("unauthenticated over budget: status=%d", w.Code)
	}
}

func doForwarded(r http.Handler, forwardedFor string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/api/secure", nil)
	req.Header.Set("Authorization", "Bearer "+testToken)
	req.Header.Set("X-Forwarded-For", forwardedFor)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimit_IgnoresForwardedForFromUntrustedPeer(t *testing.T) {
	r := newMiddlewareOnlyRouter(newMockService(), config.RateLimitConfig{Requests: 2, Window: time.Minute})

	codes := make([]int, 0, 3)
	for _, ip := range []string{"203.0.113.1", "203.0.113.2", "203.0.113.3"} {
		codes = append(codes, doForwarded(r, ip).Code)
	}
	want := []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}
	for i := range want {
		if codes[i] != want[i] {
			t.Fatalf("rotating X-Forwarded-For: codes=%v want %v", codes, want)
		}
	}
}

func TestRateLimit_TrustedProxyForwardsClientIP(t *testing.T) {
	// httptest requests come from 192.0.2.1.
	h := NewHandler(newMockService(), nil,
		config.RateLimitConfig{Requests: 1, Window: time.Minute},
		config.HTTPConfig{TrustedProxies: []string{"192.0.2.0/24"}})
	r := newMiddlewareRouter(h)

	if w := doForwarded(r, "203.0.113.1"); w.Code != http.StatusOK {
		t.Fatalf("first client: status=%d", w.Code)
	}
	if w := doForwarded(r, "203.0.113.2"); w.Code != http.StatusOK {
		t.Fatalf("second client behind the proxy has its own budget: status=%d", w.Code)
	}
	w := doForwarded(r, "203.0.113.1")
	assertErrorEnvelope(t, w, http.StatusTooManyRequests, msgTooManyRequests)
}

func TestNewEngine_InvalidProxiesFallBackToPeer(t *testing.T) {
	h := NewHandler(newMockService(), nil,
		config.RateLimitConfig{Requests: 1, Window: time.Minute},
		config.HTTPConfig{TrustedProxies: []string{"not-an-ip"}})
	r := newMiddlewareRouter(h)

	if w := doForwarded(r, "203.0.113.1"); w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	if w := doForwarded(r, "203.0.113.2"); w.Code != http.StatusTooManyRequests {
		t.Fatalf("forwarding header must be ignored: status=%d", w.Code)
	}
}

func TestRecovery_ReturnsErrorEnvelope(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewHandler(newMockService(), nil, config.RateLimitConfig{}, config.HTTPConfig{})
	r := h.InitRoutes()
	r.GET("/panics", func(*gin.Context) { panic("sensor driver crashed") })

	w := doRequest(r, http.MethodGet, "/panics", "", "")
	assertErrorEnvelope(t, w, http.StatusInternalServerError, msgInternal)
	if got := w.Header().Get("Content-Type"); got != "application/json; charset=utf-8" {
		t.Fatalf("Content-Type=%q", got)
	}
}

func TestRateLimiter_WindowResets(t *testing.T) {
	l := newRateLimiter(1, 50*time.Millisecond)

	if !l.allow("10.0.0.1") {
		t.Fatal("first request must pass")
	}
	if l.allow("10.0.0.1") {
		t.Fatal("second request in window must be rejected")
	}
	if !l.allow("10.0.0.2") {
		t.Fatal("other clients have their own budget")
	}

	time.Sleep(80 * time.Millisecond)
	if !l.allow("10.0.0.1") {
		t.Fatal("budget must reset after the window")
	}
}

func TestRateLimiter_DisabledWhenUnconfigured(t *testing.T) {
	if l := newRateLimiter(0, time.Minute); l != nil {
		t.Fatal("zero requests must disable limiting")
	}
	if l := newRateLimiter(10, 0); l != nil {
		t.Fatal("zero window must disable limiting")
	}
}

func TestIsAPIPath(t *testing.T) {
	cases := map[string]bool{
		"/api":        true,
		"/api/":       true,
		"/api/status": true,
		"/apiary":     false,
		"/health":     false,
		"/":           false,
	}
	for p, want := range cases {
		if got := isAPIPath(p); got != want {
			t.Errorf("isAPIPath(%q)=%v want %v", p, got, want)
		}
	}
}

func TestFail_MapsServiceErrors(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewHandler(newMockService(), nil, config.RateLimitConfig{}, config.HTTPConfig{})

	cases := []struct {
		name string
		err  error
		code int
		msg  string
	}{
		{"validation", &service.ValidationError{Field: "phase", Message: service.MsgInvalidPhase}, http.StatusBadRequest, service.MsgInvalidPhase},
		{"unauthorized", service.ErrUnauthorized, http.StatusUnauthorized, service.MsgUnauthorized},
		{"sensors", service.ErrSensorsUnavailable, http.StatusServiceUnavailable, msgSensorsNotReady},
		{"bus", service.ErrBusUnavailable, http.StatusServiceUnavailable, msgBusUnavailable},
		{"other", errBoom, http.StatusInternalServerError, msgInternal},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/api/x", nil)
			h.fail(c, tc.err, "test_failed", "phase", models.PhaseGrowth)
			assertErrorEnvelope(t, w, tc.code, tc.msg)
		})
	}
}
