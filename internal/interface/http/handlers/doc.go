// Package handlers contains gin middleware and readiness checks used by the
// filmorate REST server.
//
// # Health Checks
//
// CompositeHealthChecker runs named checks in parallel, each under its own
// timeout:
//
//	checker := handlers.NewCompositeHealthChecker("v1.0.0")
//	checker.AddCheck("store", handlers.NewPingCheck(store))
//
//	status := checker.Check(ctx)
//	if !status.Ready {
//	    log.Warn("not ready", logger.String("reason", status.Message))
//	}
//
// # Middleware
//
// Order matters: the request id and access log wrap everything, and
// ErrorHandler sits closest to the route so the access log sees the final
// status.
//
//	router.Use(
//	    handlers.RequestID(log),
//	    handlers.AccessLog(),
//	    handlers.Metrics(registry),
//	    handlers.Recovery(),
//	    handlers.Timeout(5*time.Second),
//	    handlers.ErrorHandler(),
//	)
//
// Route handlers never write error bodies themselves; they call c.Error(err)
// and return. The category in the body is derived from the domain error kind.
package handlers
