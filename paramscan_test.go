package triex

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScanParams(t *testing.T) {
	cases := []struct {
		name           string
		pattern, path  string
		wantParams     []string
		wantCatchAll   string
		wantHasCatchAll bool
	}{
		{
			name:    "no params",
			pattern: "/users/list",
			path:    "/users/list",
		},
		{
			name:       "single param",
			pattern:    "/users/:",
			path:       "/users/42",
			wantParams: []string{"42"},
		},
		{
			name:       "multiple params",
			pattern:    "/users/:/books/:",
			path:       "/users/42/books/1984",
			wantParams: []string{"42", "1984"},
		},
		{
			name:            "bare catch-all",
			pattern:         "/static/*",
			path:            "/static/css/app.css",
			wantCatchAll:    "css/app.css",
			wantHasCatchAll: true,
		},
		{
			name:            "catch-all after param",
			pattern:         "/users/:/movies/*",
			path:            "/users/42/movies/dunkirk/2017",
			wantParams:      []string{"42"},
			wantCatchAll:    "dunkirk/2017",
			wantHasCatchAll: true,
		},
		{
			name:            "infix catch-all suffixing a literal run",
			pattern:         "/books/harry_potter*",
			path:            "/books/harry_potter_and_the_goblet_of_fire",
			wantCatchAll:    "_and_the_goblet_of_fire",
			wantHasCatchAll: true,
		},
		{
			name:            "catch-all matches empty remainder",
			pattern:         "/static/*",
			path:            "/static/",
			wantCatchAll:    "",
			wantHasCatchAll: true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			params, catchAll, hasCatchAll := scanParams(tc.pattern, tc.path)
			assert.Equal(t, tc.wantParams, params)
			assert.Equal(t, tc.wantCatchAll, catchAll)
			assert.Equal(t, tc.wantHasCatchAll, hasCatchAll)
		})
	}
}
