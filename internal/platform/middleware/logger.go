package middleware

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// slowRequestThreshold marks requests worth flagging; bulk imports and
// sync initiation should stay well under this.
const slowRequestThreshold = 5 * time.Second

// Logger returns middleware that writes one structured log line per request.
func Logger(logger zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			req := c.Request()
			rid, _ := c.Get("request_id").(string)

			err := next(c)

			latency := time.Since(start)
			evt := logger.Info()
			switch {
			case err != nil:
				evt = logger.Error().Err(err)
			case latency > slowRequestThreshold:
				evt = logger.Warn().Bool("slow", true)
			}

			evt.
				Str("request_id", rid).
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Int("status", c.Response().Status).
				Int64("bytes_out", c.Response().Size).
				Dur("latency", latency).
				Str("remote_ip", c.RealIP()).
				Msg("http request")

			return err
		}
	}
}
