package triex

import (
	"cmp"
	"errors"
	"log/slog"
	"time"

	"github.com/nilsander/triex/internal/slogpretty"
)

// Keys for the attributes the built-in [Logger] middleware logs.
const (
	LoggerStatusKey   = "status"
	LoggerMethodKey   = "method"
	LoggerHostKey     = "host"
	LoggerPathKey     = "path"
	LoggerLatencyKey  = "latency"
	LoggerSizeKey     = "size"
	LoggerLocationKey = "location"
)

// Logger returns a middleware logging request status, method, host, path,
// response size and latency through handler. A nil handler falls back to
// the package's built-in pretty console handler. Status codes are logged at
// different levels: 2xx at INFO, 3xx at DEBUG (with the Location header, if
// any), 4xx at WARN, 5xx at ERROR.
func Logger(handler slog.Handler) MiddlewareFunc {
	if handler == nil {
		handler = slogpretty.DefaultHandler
	}
	log := slog.New(handler)
	return func(next HandlerFunc) HandlerFunc {
		return func(c *Context) {
			start := time.Now()
			next(c)
			latency := time.Since(start)

			req := c.Request()
			lvl := level(c.Writer().Status())
			var location string
			if lvl == slog.LevelDebug {
				location = c.Writer().Header().Get(HeaderLocation)
			}

			var ipStr string
			ip, err := c.ClientIP()
			switch {
			case err == nil:
				ipStr = ip.String()
			case errors.Is(err, ErrNoClientIPResolver):
				ipStr = c.RemoteIP().String()
			default:
				ipStr = "unknown"
			}

			attrs := []slog.Attr{
				slog.Int(LoggerStatusKey, c.Writer().Status()),
				slog.String(LoggerMethodKey, c.Method()),
				slog.String(LoggerHostKey, c.Host()),
				slog.String(LoggerPathKey, cmp.Or(req.URL.RawPath, req.URL.Path)),
				slog.Int(LoggerSizeKey, c.Writer().Size()),
				slog.Duration(LoggerLatencyKey, latency),
			}
			if location != "" {
				attrs = append(attrs, slog.String(LoggerLocationKey, location))
			}
			log.LogAttrs(req.Context(), lvl, ipStr, attrs...)
		}
	}
}

func level(status int) slog.Level {
	switch {
	case status >= 200 && status < 300:
		return slog.LevelInfo
	case status >= 300 && status < 400:
		return slog.LevelDebug
	case status >= 400 && status < 500:
		return slog.LevelWarn
	case status >= 500:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
