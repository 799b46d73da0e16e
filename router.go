// Package triex implements a minimal, production-shaped HTTP router built
// on top of the path-pattern trie in [github.com/nilsander/triex/trie]. It
// is the narrow consumer the trie package is designed to be embedded into:
// a Router owns one trie per HTTP method, dispatches requests through it,
// and fills in the ambient concerns (logging, panic recovery, client IP
// resolution, redirects) a deployable server needs around that core.
package triex

import (
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/nilsander/triex/clientip"
	"github.com/nilsander/triex/trie"
)

// Router dispatches incoming requests to registered routes. The zero value
// is not usable; construct one with [New].
//
// A Router goes through two phases, mirroring [trie.Builder] and
// [trie.Trie]: routes are registered with [Router.Handle] until
// [Router.Build] freezes it, after which [Router.ServeHTTP] may be called
// concurrently from any number of goroutines. There is no supported way to
// register a route after Build, matching the trie's own no-mutation-after-build
// invariant.
type Router struct {
	builders   map[string]*trie.Builder[*Route]
	trees      map[string]*trie.Trie[*Route]
	routes     []*Route
	registered map[string]bool

	mws        []MiddlewareFunc
	noRoute    HandlerFunc
	noMethod   HandlerFunc
	autoOptions HandlerFunc

	handleMethodNotAllowed bool
	handleOptions          bool
	redirectTrailingSlash  bool
	redirectFixedPath      bool

	ipResolver clientip.Resolver

	built bool
}

// New returns a Router configured with opts. Without
// [WithNoRouteHandler]/[WithNoMethodHandler]/[WithOptionsHandler], the
// built-in default handlers are used.
func New(opts ...GlobalOption) *Router {
	r := &Router{
		builders:    make(map[string]*trie.Builder[*Route]),
		registered:  make(map[string]bool),
		noRoute:     DefaultNotFoundHandler,
		noMethod:    DefaultMethodNotAllowedHandler,
		autoOptions: DefaultOptionsHandler,
	}
	for _, o := range opts {
		o.applyGlob(r)
	}
	return r
}

// Handle registers h to serve method and pattern. It reports
// [ErrRouterBuilt] if called after [Router.Build], [ErrRouteExists] if the
// same method and pattern were already registered, and
// [trie.ErrInvalidPattern] if pattern violates the trie's grammar.
func (r *Router) Handle(method, pattern string, h HandlerFunc, opts ...PathOption) (*Route, error) {
	if r.built {
		return nil, ErrRouterBuilt
	}
	if h == nil {
		return nil, fmt.Errorf("triex: nil handler for %s %s", method, pattern)
	}

	method = strings.ToUpper(method)
	key := method + " " + pattern
	if r.registered[key] {
		return nil, fmt.Errorf("%w: %s %s", ErrRouteExists, method, pattern)
	}

	route := &Route{
		method:                method,
		pattern:               pattern,
		base:                  h,
		redirectTrailingSlash: r.redirectTrailingSlash,
		redirectFixedPath:     r.redirectFixedPath,
	}
	for _, o := range opts {
		o.applyPath(route)
	}

	b, ok := r.builders[method]
	if !ok {
		b = trie.NewBuilder[*Route]()
		r.builders[method] = b
	}
	if err := b.Add(pattern, route); err != nil {
		return nil, err
	}

	r.registered[key] = true
	r.routes = append(r.routes, route)
	return route, nil
}

// Build finalizes every method's tree into an immutable [trie.Trie],
// applying the configured middleware chains. After Build returns
// successfully, [Router.ServeHTTP] is safe for concurrent use. It reports
// [ErrRouterBuilt] if called twice, and the trie's own [trie.ErrEmptyTrie]
// is never returned here since Build only freezes methods that received at
// least one Handle call.
func (r *Router) Build() error {
	if r.built {
		return ErrRouterBuilt
	}

	for _, route := range r.routes {
		route.applyMiddleware(r.mws)
	}

	trees := make(map[string]*trie.Trie[*Route], len(r.builders))
	for method, b := range r.builders {
		t, err := b.Build()
		if err != nil {
			return err
		}
		trees[method] = t
	}

	r.trees = trees
	r.built = true
	return nil
}

// Trees returns the built per-method tries, keyed by HTTP method. It
// returns nil until [Router.Build] has run. The returned map and the tries
// it holds are read-only; callers such as package triedebug use them purely
// for introspection.
func (r *Router) Trees() map[string]*trie.Trie[*Route] {
	return r.trees
}

// ServeHTTP implements [http.Handler].
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	if !r.built {
		http.Error(w, ErrNotBuilt.Error(), http.StatusInternalServerError)
		return
	}

	rec := &recorder{ResponseWriter: w}
	path := req.URL.Path

	if tree, ok := r.trees[req.Method]; ok {
		if values := tree.Find(path); len(values) > 0 {
			route := values[0]
			c := r.newContext(rec, req, route, path)
			route.Handle(c)
			return
		}

		if alt, ok := altTrailingSlashPath(path); ok {
			if values := tree.Find(alt); len(values) > 0 {
				route := values[0]
				if route.RedirectTrailingSlashEnabled() {
					r.redirect(rec, req, alt)
					return
				}
			}
		}

		if cleaned := CleanPath(path); cleaned != path {
			if values := tree.Find(cleaned); len(values) > 0 {
				route := values[0]
				if route.RedirectFixedPathEnabled() {
					r.redirect(rec, req, cleaned)
					return
				}
			}

			if alt, ok := altTrailingSlashPath(cleaned); ok {
				if values := tree.Find(alt); len(values) > 0 {
					route := values[0]
					if route.RedirectFixedPathEnabled() && route.RedirectTrailingSlashEnabled() {
						r.redirect(rec, req, alt)
						return
					}
				}
			}
		}
	}

	if req.Method == http.MethodOptions && r.handleOptions {
		if allow := r.allowedMethods(path); allow != "" {
			rec.Header().Set(HeaderAllow, allow)
			c := r.newContext(rec, req, nil, path)
			r.dispatchSpecial(r.autoOptions, c)
			return
		}
	}

	if r.handleMethodNotAllowed {
		if allow := r.allowedMethods(path); allow != "" {
			rec.Header().Set(HeaderAllow, allow)
			c := r.newContext(rec, req, nil, path)
			r.dispatchSpecial(r.noMethod, c)
			return
		}
	}

	c := r.newContext(rec, req, nil, path)
	r.dispatchSpecial(r.noRoute, c)
}

// dispatchSpecial applies the router's global middleware chain to a
// built-in handler (not-found, method-not-allowed, auto-options), since
// those never go through [Route.applyMiddleware].
func (r *Router) dispatchSpecial(h HandlerFunc, c *Context) {
	for i := len(r.mws) - 1; i >= 0; i-- {
		h = r.mws[i](h)
	}
	h(c)
}

func (r *Router) newContext(w ResponseWriter, req *http.Request, route *Route, path string) *Context {
	c := &Context{w: w, req: req, route: route, router: r}
	if route != nil {
		c.params, c.catch, c.hasCAll = scanParams(route.pattern, path)
	}
	return c
}

// allowedMethods returns a comma-separated, sorted list of methods that
// have a route matching path, for the "Allow" header.
func (r *Router) allowedMethods(path string) string {
	var methods []string
	for method, tree := range r.trees {
		if len(tree.Find(path)) > 0 {
			methods = append(methods, method)
		}
	}
	if len(methods) == 0 {
		return ""
	}
	sort.Strings(methods)
	return strings.Join(methods, ", ")
}

// altTrailingSlashPath returns path with its trailing slash added or
// removed, and false if path is the root (which has no opposite form).
func altTrailingSlashPath(path string) (string, bool) {
	if path == "/" {
		return "", false
	}
	if strings.HasSuffix(path, "/") {
		return strings.TrimSuffix(path, "/"), true
	}
	return path + "/", true
}

func (r *Router) redirect(w http.ResponseWriter, req *http.Request, path string) {
	url := *req.URL
	url.Path = path
	code := http.StatusMovedPermanently
	if req.Method != http.MethodGet {
		code = http.StatusPermanentRedirect
	}
	http.Redirect(w, req, url.String(), code)
}

// DefaultNotFoundHandler writes a 404 response.
func DefaultNotFoundHandler(c *Context) {
	http.Error(c.Writer(), http.StatusText(http.StatusNotFound), http.StatusNotFound)
}

// DefaultMethodNotAllowedHandler writes a 405 response. The caller has
// already set the "Allow" header.
func DefaultMethodNotAllowedHandler(c *Context) {
	http.Error(c.Writer(), http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
}

// DefaultOptionsHandler writes a 200 response with no body. The caller has
// already set the "Allow" header.
func DefaultOptionsHandler(c *Context) {
	c.Writer().WriteHeader(http.StatusOK)
}
