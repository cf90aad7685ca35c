// Package handlers contains gin middleware and health checks shared by the
// REST server.
package handlers

import (
	"context"
	"net/http"
	"runtime/debug"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/vl4ks/filmorate/internal/domain/shared"
	"github.com/vl4ks/filmorate/pkg/logger"
)

// RequestIDHeader is the HTTP header for request tracing.
const RequestIDHeader = "X-Request-ID"

const ctxKeyRequestID = "request_id"

// ══════════════════════════════════════════════════════════════════════════════
// REQUEST ID
// ══════════════════════════════════════════════════════════════════════════════

// RequestID assigns every request an id (taken from X-Request-ID or a fresh
// UUIDv7) and attaches a request-scoped logger to the request context.
func RequestID(base *logger.Logger) gin.HandlerFunc {
	if base == nil {
		base = logger.Nop()
	}
	return func(c *gin.Context) {
		rid := c.GetHeader(RequestIDHeader)
		if rid == "" {
			if id, err := uuid.NewV7(); err == nil {
				rid = id.String()
			} else {
				rid = uuid.NewString()
			}
		}
		c.Set(ctxKeyRequestID, rid)
		c.Writer.Header().Set(RequestIDHeader, rid)

		ctx := logger.WithContext(c.Request.Context(), base.WithRequestID(rid))
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// GetRequestID returns the id assigned by RequestID.
func GetRequestID(c *gin.Context) string {
	return c.GetString(ctxKeyRequestID)
}

// ══════════════════════════════════════════════════════════════════════════════
// ACCESS LOG
// ══════════════════════════════════════════════════════════════════════════════

// AccessLog writes one line per request through the request-scoped logger.
func AccessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		fields := []logger.Field{
			logger.HTTPMethod(c.Request.Method),
			logger.HTTPPath(c.Request.URL.Path),
			logger.StatusCode(status),
			logger.Latency(time.Since(start)),
			logger.Int("bytes", c.Writer.Size()),
		}

		log := logger.FromContext(c.Request.Context())
		switch {
		case status >= http.StatusInternalServerError:
			log.Error("http request", fields...)
		case status >= http.StatusBadRequest:
			log.Warn("http request", fields...)
		default:
			log.Info("http request", fields...)
		}
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// METRICS
// ══════════════════════════════════════════════════════════════════════════════

// HTTPObserver records request counts and latencies (the prometheus registry).
type HTTPObserver interface {
	ObserveHTTP(method, route string, status int, d time.Duration)
}

// Metrics reports every request to obs, labelled by route template.
func Metrics(obs HTTPObserver) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		obs.ObserveHTTP(c.Request.Method, c.FullPath(), c.Writer.Status(), time.Since(start))
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// RECOVERY
// ══════════════════════════════════════════════════════════════════════════════

// Recovery turns a handler panic into a 500 with the standard error body.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				logger.FromContext(c.Request.Context()).Error("panic recovered",
					logger.Any("panic", rec),
					logger.String("stack", string(debug.Stack())),
				)
				c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorBody{
					Error:   CategoryInternal,
					Message: shared.MessageOf(nil),
				})
			}
		}()
		c.Next()
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// RATE LIMIT
// ══════════════════════════════════════════════════════════════════════════════

// CategoryRateLimited is the error category of a throttled request.
const CategoryRateLimited = "rate_limit_exceeded"

// limiterIdleTTL - через столько неактивный клиент забывается.
const limiterIdleTTL = 10 * time.Minute

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// ipLimiter keeps one token bucket per client IP.
type ipLimiter struct {
	mu        sync.Mutex
	clients   map[string]*clientLimiter
	limit     rate.Limit
	burst     int
	lastSweep time.Time
}

func newIPLimiter(perMinute int) *ipLimiter {
	return &ipLimiter{
		clients:   make(map[string]*clientLimiter),
		limit:     rate.Limit(float64(perMinute) / 60),
		burst:     perMinute,
		lastSweep: time.Now(),
	}
}

func (l *ipLimiter) allow(ip string) bool {
	now := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastSweep) > limiterIdleTTL {
		for key, cl := range l.clients {
			if now.Sub(cl.lastSeen) > limiterIdleTTL {
				delete(l.clients, key)
			}
		}
		l.lastSweep = now
	}

	cl, ok := l.clients[ip]
	if !ok {
		cl = &clientLimiter{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.clients[ip] = cl
	}
	cl.lastSeen = now
	return cl.limiter.AllowN(now, 1)
}

// RateLimit throttles each client IP to perMinute requests per minute with
// bursts up to the same amount. perMinute <= 0 disables the limit.
func RateLimit(perMinute int) gin.HandlerFunc {
	if perMinute <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	limiter := newIPLimiter(perMinute)
	retryAfter := strconv.Itoa(max(1, 60/perMinute))

	return func(c *gin.Context) {
		if limiter.allow(c.ClientIP()) {
			c.Next()
			return
		}
		logger.FromContext(c.Request.Context()).Warn("rate limit exceeded",
			logger.String("client_ip", c.ClientIP()),
		)
		c.Header("Retry-After", retryAfter)
		c.AbortWithStatusJSON(http.StatusTooManyRequests, ErrorBody{
			Error:   CategoryRateLimited,
			Message: "Слишком много запросов, попробуйте позже",
		})
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// TIMEOUT
// ══════════════════════════════════════════════════════════════════════════════

// Timeout bounds the request context. Storage calls observe the deadline;
// the handler itself keeps running on the request goroutine.
func Timeout(timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if timeout <= 0 {
			c.Next()
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// SECURITY HEADERS
// ══════════════════════════════════════════════════════════════════════════════

// SecurityHeaders adds headers suitable for a JSON-only API.
func SecurityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		h.Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
		c.Next()
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// ERROR HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// Error categories of the JSON error body.
const (
	CategoryValidation = "validation"
	CategoryNotFound   = "not_found"
	CategoryDuplicate  = "duplicate"
	CategoryConflict   = "conflict"
	CategoryInternal   = "internal"
)

// ErrorBody is the JSON payload of every failed request.
type ErrorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Classify maps an error to its HTTP status and category.
func Classify(err error) (int, string) {
	switch {
	case shared.IsValidation(err):
		return http.StatusBadRequest, CategoryValidation
	case shared.IsNotFound(err):
		return http.StatusNotFound, CategoryNotFound
	case shared.IsAlreadyExists(err):
		return http.StatusConflict, CategoryDuplicate
	case shared.IsInUse(err):
		return http.StatusConflict, CategoryConflict
	default:
		return http.StatusInternalServerError, CategoryInternal
	}
}

// ErrorHandler renders the last error added with c.Error. Handlers add the
// error and return; nothing else writes error responses.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		status, category := Classify(err)

		log := logger.FromContext(c.Request.Context())
		if status >= http.StatusInternalServerError {
			log.Error("request failed", logger.Err(err))
		} else {
			log.Debug("request rejected", logger.String("category", category), logger.Err(err))
		}

		c.JSON(status, ErrorBody{Error: category, Message: shared.MessageOf(err)})
	}
}
