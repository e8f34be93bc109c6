package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"greenhouse_control/internal/metrics"
	"greenhouse_control/internal/service"

	"github.com/gin-gonic/gin"
)

// securityHeaders runs first so every response carries the headers,
// including aborted requests, 404s and recovered panics.
func securityHeaders(c *gin.Context) {
	hdr := c.Writer.Header()
	hdr.Set("X-Content-Type-Options", "nosniff")
	hdr.Set("X-Frame-Options", "DENY")
	if isAPIPath(c.Request.URL.Path) {
		hdr.Set("Cache-Control", "no-store")
	}
	c.Next()
}

func observeRequests(c *gin.Context) {
	c.Next()
	metrics.ObserveRequest(c.Request.Method, c.FullPath(), c.Writer.Status())
}

// tokenAuth rejects the request before any validation happens.
func (h *Handler) tokenAuth(c *gin.Context) {
	if !h.authorized(c) {
		return
	}
	c.Next()
}

func (h *Handler) rateLimit(c *gin.Context) {
	if !h.allowed(c) {
		return
	}
	c.Next()
}

// authorized aborts with 401 unless the bearer token matches. Neither the
// presented nor the configured token is ever logged.
func (h *Handler) authorized(c *gin.Context) bool {
	if err := h.services.Authenticate(c.GetHeader("Authorization")); err != nil {
		metrics.AuthFailure()
		h.log.Warnw("auth_failed", "path", c.Request.URL.Path, "ip", c.ClientIP())
		abortWithError(c, http.StatusUnauthorized, service.MsgUnauthorized)
		return false
	}
	return true
}

// allowed aborts with 429 once the client IP exceeds its window budget.
func (h *Handler) allowed(c *gin.Context) bool {
	if h.limiter == nil || h.limiter.allow(c.ClientIP()) {
		return true
	}
	metrics.RateLimited()
	h.log.Warnw("rate_limited", "ip", c.ClientIP(), "path", c.Request.URL.Path)
	c.Header("Retry-After", strconv.Itoa(int(h.limiter.window.Seconds())))
	abortWithError(c, http.StatusTooManyRequests, msgTooManyRequests)
	return false
}

// notFound keeps unknown /api routes behind the same gate as known ones, so
// an unauthenticated client cannot probe which routes exist.
func (h *Handler) notFound(c *gin.Context) {
	if isAPIPath(c.Request.URL.Path) && !(h.allowed(c) && h.authorized(c)) {
		return
	}
	abortWithError(c, http.StatusNotFound, msgNotFound)
}

func isAPIPath(p string) bool {
	return p == "/api" || strings.HasPrefix(p, "/api/")
}
