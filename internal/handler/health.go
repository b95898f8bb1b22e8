package handler // declare the package name; contains HTTP handlers

import (
	"context"
	"net/http" // net/http provides status codes and response helpers
	"time"

	"github.com/labstack/echo/v4" // echo is the web framework used for this project
)

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Health is a health-check endpoint used by load balancers and monitoring
// systems.  It answers 200 with a timestamp while the database responds
// and 503 otherwise.  A nil db skips the database check.
func Health(db Pinger) echo.HandlerFunc {
	return func(c echo.Context) error {
		if db != nil {
			ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
			defer cancel()
			if err := db.Ping(ctx); err != nil {
				return c.JSON(http.StatusServiceUnavailable, Envelope{
					Success:   false,
					Message:   "Database unavailable",
					Timestamp: isoNow(),
				})
			}
		}
		return c.JSON(http.StatusOK, Envelope{
			Success:   true,
			Message:   "Server is running",
			Timestamp: isoNow(),
		})
	}
}
