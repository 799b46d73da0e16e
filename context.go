package triex

import (
	"net"
	"net/http"

	"github.com/nilsander/triex/clientip"
)

// HandlerFunc handles a single matched request.
type HandlerFunc func(c *Context)

// MiddlewareFunc wraps a [HandlerFunc] with additional behavior, run before
// and/or after calling next.
type MiddlewareFunc func(next HandlerFunc) HandlerFunc

// Context carries per-request state through a [HandlerFunc] call. A Context
// is only valid for the lifetime of the request it was created for; it must
// not be retained past the handler's return.
type Context struct {
	w       ResponseWriter
	req     *http.Request
	route   *Route
	params  []string
	catch   string
	hasCAll bool
	router  *Router
}

// Request returns the request being served.
func (c *Context) Request() *http.Request {
	return c.req
}

// Writer returns the response writer for this request.
func (c *Context) Writer() ResponseWriter {
	return c.w
}

// Method returns the request's HTTP method.
func (c *Context) Method() string {
	return c.req.Method
}

// Path returns the request's URL path.
func (c *Context) Path() string {
	return c.req.URL.Path
}

// Host returns the request's host.
func (c *Context) Host() string {
	return c.req.Host
}

// Route returns the matched route, or nil for the special not-found and
// method-not-allowed handlers.
func (c *Context) Route() *Route {
	return c.route
}

// Pattern returns the matched route's registered pattern, or "" if no route
// matched.
func (c *Context) Pattern() string {
	if c.route == nil {
		return ""
	}
	return c.route.pattern
}

// Param returns the i-th positional parameter captured by the matched
// route's pattern, or "" if i is out of range.
func (c *Context) Param(i int) string {
	if i < 0 || i >= len(c.params) {
		return ""
	}
	return c.params[i]
}

// Params returns every positional parameter captured by the matched route's
// pattern, left to right in pattern order.
func (c *Context) Params() []string {
	return c.params
}

// CatchAll returns the remainder captured by the matched route's trailing
// '*', and whether the route had one at all.
func (c *Context) CatchAll() (string, bool) {
	return c.catch, c.hasCAll
}

// RemoteIP returns the socket IP of the request, stripped of port, ignoring
// any configured [clientip.Resolver].
func (c *Context) RemoteIP() *net.IPAddr {
	ipAddr, err := clientip.ParseIPAddr(c.req.RemoteAddr)
	if err != nil {
		return &net.IPAddr{}
	}
	return ipAddr
}

// ClientIP derives the client IP using the [Router]'s configured
// [clientip.Resolver]. It returns [ErrNoClientIPResolver] if none was
// configured with [WithClientIPResolver].
func (c *Context) ClientIP() (*net.IPAddr, error) {
	if c.router.ipResolver == nil {
		return nil, ErrNoClientIPResolver
	}
	return c.router.ipResolver.ClientIP(c.req)
}
