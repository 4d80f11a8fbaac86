package server

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/mohammad-safakhou/chatfusion/internal/logger"
	"github.com/mohammad-safakhou/chatfusion/internal/metrics"
	"github.com/mohammad-safakhou/chatfusion/internal/ratelimit"
)

const (
	msgRateLimited   = "Rate limit exceeded. Please try again later."
	msgLimiterFailed = "Internal server error. Please try again later."
	unknownClient    = "unknown"
)

// Limiter is satisfied by *ratelimit.Limiter.
type Limiter interface {
	Allow(ctx context.Context, client string) (ratelimit.Decision, error)
}

// ClientIP returns X-Real-IP, else the first X-Forwarded-For entry, else
// "unknown". The socket address is never consulted.
func ClientIP(r *http.Request) string {
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	return unknownClient
}

// skipPath reports whether path matches one of patterns. A trailing "/*"
// matches the prefix and everything below it.
func skipPath(path string, patterns []string) bool {
	for _, p := range patterns {
		if prefix, ok := strings.CutSuffix(p, "/*"); ok {
			if path == prefix || strings.HasPrefix(path, prefix+"/") {
				return true
			}
			continue
		}
		if path == p {
			return true
		}
	}
	return false
}

// RateLimit rejects requests once the client's window is exhausted. A
// limiter error fails the request with 500 without calling next.
func RateLimit(l Limiter, skip []string, m *metrics.Metrics, log logger.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			if skipPath(req.URL.Path, skip) {
				return next(c)
			}
			client := ClientIP(req)
			d, err := l.Allow(req.Context(), client)
			if err != nil {
				log.Error("rate limiter unavailable", logger.String("client", client), logger.Error(err))
				if m != nil {
					m.RateLimitErrors.Inc()
				}
				return c.JSON(http.StatusInternalServerError, MessageResponse{Message: msgLimiterFailed})
			}
			if !d.Allowed {
				if m != nil {
					m.RateLimitRejections.Inc()
				}
				log.Warn("rate limit exceeded",
					logger.String("client", client),
					logger.String("path", req.URL.Path),
					logger.Int64("remaining_s", d.RemainingTime),
				)
				if d.RemainingTime > 0 {
					c.Response().Header().Set("Retry-After", strconv.FormatInt(d.RemainingTime, 10))
				}
				return c.JSON(http.StatusTooManyRequests, RateLimitResponse{Message: msgRateLimited, RemainingTime: d.RemainingTime})
			}
			return next(c)
		}
	}
}
