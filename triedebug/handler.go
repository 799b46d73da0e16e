// Package triedebug exposes a router's per-method tries over HTTP, for
// local introspection during development. It must never be mounted on a
// production-facing path: the dump includes every registered pattern.
package triedebug

import (
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/nilsander/triex"
)

// Handler returns an [http.Handler] that renders a text dump of every
// method's trie registered on r, the way [trie.Trie.Dump] does for a
// single tree, one section per method. If r has not been built yet there is
// nothing to dump, and the handler answers 500 instead.
func Handler(r *triex.Router) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		trees := r.Trees()
		if trees == nil {
			http.Error(w, "triedebug: router not built", http.StatusInternalServerError)
			return
		}

		methods := make([]string, 0, len(trees))
		for method := range trees {
			methods = append(methods, method)
		}
		sort.Strings(methods)

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		for _, method := range methods {
			fmt.Fprintf(w, "=== %s ===\n", method)
			trees[method].Dump(w)
			fmt.Fprint(w, strings.Repeat("-", 40)+"\n")
		}
	})
}
