package triex

import "errors"

var (
	// ErrRouteExists is returned by [Router.Handle] when the same method and
	// pattern were already registered.
	ErrRouteExists = errors.New("triex: route already registered")
	// ErrRouterBuilt is returned by [Router.Handle] when called after
	// [Router.Build] has already frozen the router.
	ErrRouterBuilt = errors.New("triex: router already built")
	// ErrNotBuilt is the message [Router.ServeHTTP] writes, with status 500,
	// if the router is asked to serve requests before [Router.Build] has run.
	ErrNotBuilt = errors.New("triex: router not built")
	// ErrNoClientIPResolver is returned by [Context.ClientIP] when the
	// router has no configured client IP resolver.
	ErrNoClientIPResolver = errors.New("triex: no client ip resolver")
)
