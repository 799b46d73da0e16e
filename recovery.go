package triex

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/http/httputil"
	"os"
	"runtime"
	"slices"
	"strings"

	"github.com/nilsander/triex/internal/slogpretty"
)

// Keys for the attributes the built-in [Recovery] middleware logs.
const (
	LoggerRouteKey  = "route"
	LoggerParamsKey = "params"
	LoggerPanicKey  = "panic"
)

var reqHeaderSep = []byte("\r\n")

// RecoveryFunc handles a panic recovered from a [HandlerFunc].
type RecoveryFunc func(c *Context, err any)

// CustomRecoveryWithLogHandler returns a middleware that recovers from any
// panic, logs the request, a stack trace and the panic value through
// handler, and then calls handle.
func CustomRecoveryWithLogHandler(handler slog.Handler, handle RecoveryFunc) MiddlewareFunc {
	if handler == nil {
		handler = slogpretty.DefaultHandler
	}
	logger := slog.New(handler)
	return func(next HandlerFunc) HandlerFunc {
		return func(c *Context) {
			defer recovery(logger, c, handle)
			next(c)
		}
	}
}

// CustomRecovery returns a middleware that recovers from any panic using
// the package's built-in pretty console handler, then calls handle.
func CustomRecovery(handle RecoveryFunc) MiddlewareFunc {
	return CustomRecoveryWithLogHandler(slogpretty.DefaultHandler, handle)
}

// Recovery returns a middleware that recovers from any panic, logs it, and
// writes a 500 response.
func Recovery() MiddlewareFunc {
	return CustomRecovery(DefaultHandleRecovery)
}

// DefaultHandleRecovery writes a generic 500 response.
func DefaultHandleRecovery(c *Context, _ any) {
	http.Error(c.Writer(), http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

func recovery(logger *slog.Logger, c *Context, handle RecoveryFunc) {
	err := recover()
	if err == nil {
		return
	}

	if e, ok := err.(error); ok && errors.Is(e, http.ErrAbortHandler) {
		panic(e)
	}

	var sb strings.Builder
	sb.WriteString("Recovered from PANIC\n")

	httpRequest, _ := httputil.DumpRequest(c.Request(), false)
	sb.Grow(len(httpRequest))
	if before, after, found := bytes.Cut(httpRequest, reqHeaderSep); found {
		sb.WriteString("Request Dump:\n")
		sb.Write(before)
		for _, header := range bytes.Split(after, reqHeaderSep) {
			sb.Write(reqHeaderSep)
			idx := bytes.IndexByte(header, ':')
			if idx < 0 {
				continue
			}
			if slices.Contains(blacklistedHeader, string(header[:idx])) {
				sb.Write(header[:idx])
				sb.WriteString(": <redacted>")
				continue
			}
			sb.Write(header)
		}
	}

	sb.WriteString("Stack:\n")
	sb.WriteString(stacktrace(3, 6))

	var params []any
	if len(c.Params()) > 0 {
		params = make([]any, 0, len(c.Params()))
		for i, p := range c.Params() {
			params = append(params, slog.String(fmt.Sprintf("param%d", i), p))
		}
	}

	logger.Error(
		sb.String(),
		slog.String(LoggerRouteKey, c.Pattern()),
		slog.Group(LoggerParamsKey, params...),
		slog.Any(LoggerPanicKey, err),
	)

	if !c.Writer().Written() && !connIsBroken(err) {
		handle(c, err)
	}
}

func connIsBroken(err any) bool {
	if ne, ok := err.(*net.OpError); ok {
		var se *os.SyscallError
		if errors.As(ne, &se) {
			s := strings.ToLower(se.Error())
			return strings.Contains(s, "broken pipe") || strings.Contains(s, "connection reset by peer")
		}
	}
	return false
}

func stacktrace(skip, nFrames int) string {
	pcs := make([]uintptr, nFrames+1)
	n := runtime.Callers(skip+1, pcs)
	if n == 0 {
		return "(no stack)"
	}
	frames := runtime.CallersFrames(pcs[:n])
	var b strings.Builder
	i := 0
	for {
		frame, more := frames.Next()
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "called from %s %s:%d", frame.Function, frame.File, frame.Line)
		if !more {
			break
		}
		i++
		if i >= nFrames {
			fmt.Fprintf(&b, "\n(rest of stack elided)")
			break
		}
	}
	return b.String()
}
