package triex

import "github.com/nilsander/triex/clientip"

// Option configures either a [Router] as a whole or a single [Route].
type Option interface {
	GlobalOption
	PathOption
}

// GlobalOption configures a [Router].
type GlobalOption interface {
	applyGlob(*Router)
}

// PathOption configures a single [Route].
type PathOption interface {
	applyPath(*Route)
}

type globOptionFunc func(*Router)

func (o globOptionFunc) applyGlob(r *Router) { o(r) }

type pathOptionFunc func(*Route)

func (o pathOptionFunc) applyPath(r *Route) { o(r) }

type optionFunc func(*Router, *Route)

func (o optionFunc) applyGlob(r *Router) { o(r, nil) }
func (o optionFunc) applyPath(r *Route)  { o(nil, r) }

// WithNoRouteHandler registers the [HandlerFunc] called when no route
// matches a request. The default is [DefaultNotFoundHandler].
func WithNoRouteHandler(handler HandlerFunc) GlobalOption {
	return globOptionFunc(func(r *Router) {
		if handler != nil {
			r.noRoute = handler
		}
	})
}

// WithNoMethodHandler registers the [HandlerFunc] called when the path
// matches a route under a different method. The "Allow" header is set
// before the handler runs. The default is [DefaultMethodNotAllowedHandler].
// This option implies WithNoMethod(true).
func WithNoMethodHandler(handler HandlerFunc) GlobalOption {
	return globOptionFunc(func(r *Router) {
		if handler != nil {
			r.noMethod = handler
			r.handleMethodNotAllowed = true
		}
	})
}

// WithNoMethod toggles whether a path registered under a different method
// answers 405 instead of 404.
func WithNoMethod(enable bool) GlobalOption {
	return globOptionFunc(func(r *Router) {
		r.handleMethodNotAllowed = enable
	})
}

// WithOptionsHandler registers the [HandlerFunc] called for automatic
// OPTIONS requests. The "Allow" header is set before the handler runs. This
// option implies WithAutoOptions(true).
func WithOptionsHandler(handler HandlerFunc) GlobalOption {
	return globOptionFunc(func(r *Router) {
		if handler != nil {
			r.autoOptions = handler
			r.handleOptions = true
		}
	})
}

// WithAutoOptions toggles whether the router answers OPTIONS automatically
// for any registered path.
func WithAutoOptions(enable bool) GlobalOption {
	return globOptionFunc(func(r *Router) {
		r.handleOptions = enable
	})
}

// WithMiddleware attaches middleware, applied in the order given.
//
// Applied globally, it wraps every handler including the built-in
// not-found, method-not-allowed and auto-options handlers. Applied to a
// single route, it wraps only that route's handler, chained after any
// global middleware. Route-level middleware must be reapplied whenever the
// route is re-registered.
func WithMiddleware(m ...MiddlewareFunc) Option {
	return optionFunc(func(router *Router, route *Route) {
		if router != nil {
			router.mws = append(router.mws, m...)
		}
		if route != nil {
			route.mws = append(route.mws, m...)
		}
	})
}

// WithRedirectTrailingSlash enables redirecting a request that fails to
// match only because of a trailing slash, to whichever of the slash/no-slash
// form is registered: 301 for GET, 308 otherwise. Mutually exclusive with
// no explicit opposite; setting it only on the router affects every route
// that doesn't override it.
func WithRedirectTrailingSlash(enable bool) Option {
	return optionFunc(func(router *Router, route *Route) {
		if router != nil {
			router.redirectTrailingSlash = enable
		}
		if route != nil {
			route.redirectTrailingSlash = enable
		}
	})
}

// WithRedirectFixedPath enables redirecting a request that fails to match
// because of superfluous path elements (repeated slashes, "." or ".."
// segments) to its [CleanPath] form: 301 for GET, 308 otherwise. If the
// cleaned path itself only matches modulo a trailing slash, it is further
// resolved the same way WithRedirectTrailingSlash resolves one, provided
// both are enabled for the matched route.
func WithRedirectFixedPath(enable bool) Option {
	return optionFunc(func(router *Router, route *Route) {
		if router != nil {
			router.redirectFixedPath = enable
		}
		if route != nil {
			route.redirectFixedPath = enable
		}
	})
}

// WithClientIPResolver sets the [clientip.Resolver] used by
// [Context.ClientIP] and the built-in [Logger] middleware. Without one,
// Context.ClientIP returns [ErrNoClientIPResolver].
func WithClientIPResolver(resolver clientip.Resolver) GlobalOption {
	return globOptionFunc(func(r *Router) {
		r.ipResolver = resolver
	})
}

// WithAnnotation attaches an arbitrary key/value pair to a route, retrieved
// later with [Route.Annotation]. Must be reapplied whenever the route is
// re-registered.
func WithAnnotation(key, value any) PathOption {
	return pathOptionFunc(func(route *Route) {
		if route.annots == nil {
			route.annots = make(map[any]any)
		}
		route.annots[key] = value
	})
}

// DefaultOptions configures the router with the built-in [Recovery]
// middleware, the built-in [Logger] middleware, and automatic OPTIONS
// responses. Recovery and Logger are pushed to the front of the middleware
// chain, in that order.
func DefaultOptions() GlobalOption {
	return globOptionFunc(func(r *Router) {
		r.mws = append([]MiddlewareFunc{Recovery(), Logger(nil)}, r.mws...)
		r.handleOptions = true
	})
}
