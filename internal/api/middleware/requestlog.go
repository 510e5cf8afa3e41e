package middleware

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const requestIDHeader = "X-Request-ID"

// healthLogPaths are probe endpoints whose repeated successes are noise.
// Only the first success after startup or after a failure is logged;
// failures are always logged at WARN.
var healthLogPaths = map[string]struct{}{
	"/healthz": {},
	"/readyz":  {},
}

// RequestLog returns Echo middleware that logs every request with structured
// fields. A request ID is generated when the client does not send one, and is
// echoed back in the response header and stored on the echo context.
// Successful health probes are logged once and then suppressed until the
// probe fails again.
func RequestLog(log *slog.Logger) echo.MiddlewareFunc {
	var (
		mu           sync.Mutex
		probeHealthy = map[string]bool{}
	)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			reqID := c.Request().Header.Get(requestIDHeader)
			if reqID == "" {
				reqID = uuid.NewString()
			}

			c.Set("request_id", reqID)
			c.Response().Header().Set(requestIDHeader, reqID)

			err := next(c)

			path := c.Request().URL.Path
			status := c.Response().Status
			fields := []any{
				"method", c.Request().Method,
				"path", path,
				"status", status,
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", reqID,
			}

			if _, isProbe := healthLogPaths[path]; isProbe {
				ok := status >= http.StatusOK && status < http.StatusMultipleChoices

				mu.Lock()
				wasHealthy := probeHealthy[path]
				probeHealthy[path] = ok
				mu.Unlock()

				switch {
				case !ok:
					log.Warn("request", fields...)
				case !wasHealthy:
					log.Info("request", fields...)
				}

				return err
			}

			log.Info("request", fields...)

			return err
		}
	}
}
