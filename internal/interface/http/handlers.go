package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vl4ks/filmorate/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// HEALTH & STATUS HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleRoot returns basic API information.
func (s *Server) handleRoot(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"name":    "filmorate",
		"version": s.deps.Version,
		"endpoints": gin.H{
			"films":  "/films",
			"users":  "/users",
			"genres": "/genres",
			"mpa":    "/mpa",
			"health": "/health",
			"ready":  "/ready",
		},
	})
}

// handleHealth is the liveness check. It never touches the store.
func (s *Server) handleHealth(c *gin.Context) {
	s.mu.RLock()
	uptime := time.Duration(0)
	if s.running {
		uptime = time.Since(s.startedAt)
	}
	s.mu.RUnlock()

	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"version":   s.deps.Version,
		"uptime":    uptime.Round(time.Second).String(),
		"timestamp": time.Now().UTC(),
	})
}

// handleReady is the readiness check: 503 until every check passes.
func (s *Server) handleReady(c *gin.Context) {
	status := s.deps.Health.Check(c.Request.Context())
	code := http.StatusOK
	if !status.Ready {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, status)
}

func (s *Server) handleNoRoute(c *gin.Context) {
	_ = c.Error(shared.NewDomainError("request", "Route", shared.ErrNotFound,
		"Ресурс не найден: "+c.Request.URL.Path))
}

func (s *Server) handleNoMethod(c *gin.Context) {
	c.JSON(http.StatusMethodNotAllowed, gin.H{
		"error":   "method_not_allowed",
		"message": "Метод " + c.Request.Method + " не поддерживается",
	})
}

// ══════════════════════════════════════════════════════════════════════════════
// REQUEST HELPERS
// ══════════════════════════════════════════════════════════════════════════════

// pathID parses a positive numeric path parameter. On failure the error is
// recorded on the context and false is returned.
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := shared.ParseID(c.Param(name))
	if err != nil {
		_ = c.Error(err)
		return 0, false
	}
	return id, true
}

// pathIDs parses several path parameters in order.
func pathIDs(c *gin.Context, names ...string) ([]int64, bool) {
	ids := make([]int64, len(names))
	for i, name := range names {
		id, ok := pathID(c, name)
		if !ok {
			return nil, false
		}
		ids[i] = id
	}
	return ids, true
}

// bindJSON decodes the request body; malformed JSON is a validation error.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		_ = c.Error(shared.WrapError("request", "DecodeBody", shared.ErrInvalidInput,
			"Некорректное тело запроса", err))
		return false
	}
	return true
}

// queryInt reads an optional integer query parameter.
func queryInt(c *gin.Context, name string) (*int, bool) {
	raw, present := c.GetQuery(name)
	if !present {
		return nil, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		_ = c.Error(shared.NewValidationError("request", "Query", name,
			"Параметр "+name+" должен быть целым числом"))
		return nil, false
	}
	return &n, true
}

// fail records err for the ErrorHandler middleware.
func fail(c *gin.Context, err error) {
	_ = c.Error(err)
}
