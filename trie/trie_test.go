package trie

import (
	"testing"

	fuzz "github.com/google/gofuzz"
	"github.com/stretchr/testify/require"
)

func buildFirstSeedTrie(t *testing.T) *Trie[string] {
	t.Helper()
	b := NewBuilder[string]()
	adds := []struct {
		pattern, value string
	}{
		{"/abc/123", "v1"},
		{"/abc/133", "v2"},
		{"/abc/134", "v3"},
		{"/abc/134", "v1"},
		{"/abc/134/*", "v4"},
		{"/abc/124/:", "v2"},
	}
	for _, a := range adds {
		require.NoError(t, b.Add(a.pattern, a.value))
	}
	tr, err := b.Build()
	require.NoError(t, err)
	return tr
}

func TestFindNodeFirstSeedSuite(t *testing.T) {
	tr := buildFirstSeedTrie(t)

	cases := []struct {
		path    string
		noMatch bool
		values  []string
	}{
		{path: "/abc/1", values: []string{}},
		{path: "/abc/123", values: []string{"v1"}},
		{path: "/abc/134", values: []string{"v3", "v1"}},
		{path: "/abc/134/5678", values: []string{"v4"}},
		{path: "/abc/134/5/6/7/8", values: []string{"v4"}},
		{path: "/abc/124/5678", values: []string{"v2"}},
		{path: "/abc/124/5/6/7/8", noMatch: true},
		{path: "/abc/111", noMatch: true},
	}

	for _, c := range cases {
		t.Run(c.path, func(t *testing.T) {
			n := tr.FindNode(c.path)
			if c.noMatch {
				require.Nil(t, n)
				return
			}
			require.NotNil(t, n)
			if len(c.values) == 0 {
				require.Empty(t, n.Values())
				return
			}
			require.Equal(t, c.values, n.Values())
		})
	}
}

func buildSecondSeedTrie(t *testing.T) *Trie[string] {
	t.Helper()
	b := NewBuilder[string]()
	adds := []struct {
		pattern, value string
	}{
		{"/users/:", "v0"},
		{"/users/:", "v1"},
		{"/users/:/movies", "v2"},
		{"/users/:/books", "v3"},
		{"/users/:/books/harry_potter", "v4"},
		{"/users/:/books/harry_potter*", "v5"},
		{"/users/:/books/:", "v6"},
		{"/users/:/movies/*", "v7"},
		{"/:", "v8"},
		{"/*", "v9"},
	}
	for _, a := range adds {
		require.NoError(t, b.Add(a.pattern, a.value))
	}
	tr, err := b.Build()
	require.NoError(t, err)
	return tr
}

func TestFindSecondSeedSuite(t *testing.T) {
	tr := buildSecondSeedTrie(t)

	cases := []struct {
		path string
		find []string
	}{
		{"/users/tom", []string{"v0", "v1"}},
		{"/users/tom/movies", []string{"v2"}},
		{"/users/tom/books/harry_potter", []string{"v4"}},
		{"/users/tom/books/harry_potter1", []string{"v5"}},
		{"/users/tom/books/the_hunger_games", []string{"v6"}},
		{"/users/tom/movies/dunkirk", []string{"v7"}},
		{"/faq", []string{"v8"}},
		{"/events/2017", []string{"v9"}},
		{"/", []string{"v9"}},
	}

	for _, c := range cases {
		t.Run(c.path, func(t *testing.T) {
			require.Equal(t, c.find, tr.Find(c.path))
		})
	}
}

func TestFindAllSecondSeedSuite(t *testing.T) {
	tr := buildSecondSeedTrie(t)

	require.Subset(t, toSet(tr.FindAll("/users/tom")), []string{"v0", "v1", "v9"})
	require.Subset(t, toSet(tr.FindAll("/users/tom/books/harry_potter")), []string{"v4", "v5", "v6"})
}

func TestFindAllParameterizedTrie(t *testing.T) {
	b := NewBuilder[string]()
	adds := []struct {
		pattern, value string
	}{
		{"/users/:", "v0"},
		{"/users/*", "v1"},
		{"/:", "v8"},
		{"/*", "v9"},
	}
	for _, a := range adds {
		require.NoError(t, b.Add(a.pattern, a.value))
	}
	tr, err := b.Build()
	require.NoError(t, err)

	require.Subset(t, toSet(tr.FindAll("/users/1")), []string{"v0", "v1", "v9"})
	require.Subset(t, toSet(tr.FindAll("/users/1/movies/1")), []string{"v1", "v9"})
}

func TestFindEqualsFirstOfFindAll(t *testing.T) {
	tries := []*Trie[string]{buildFirstSeedTrie(t), buildSecondSeedTrie(t)}
	paths := []string{
		"/abc/123", "/abc/134", "/abc/134/5678", "/abc/124/5678",
		"/users/tom", "/users/tom/movies", "/users/tom/books/harry_potter",
		"/faq", "/events/2017", "/",
	}

	for _, tr := range tries {
		for _, p := range paths {
			all := tr.FindAll(p)
			single := tr.Find(p)
			if len(single) == 0 {
				continue
			}
			require.GreaterOrEqual(t, len(all), len(single))
			require.Equal(t, single, all[:len(single)])
		}
	}
}

func TestFindNoMatchIsEmptyNotError(t *testing.T) {
	b := NewBuilder[string]()
	require.NoError(t, b.Add("/abc", "v"))
	tr, err := b.Build()
	require.NoError(t, err)

	require.Empty(t, tr.Find("/does-not-exist"))
	require.Empty(t, tr.FindAll("/does-not-exist"))
	require.Nil(t, tr.FindNode("/does-not-exist"))
}

func TestFindExactNodeBoundaries(t *testing.T) {
	tr := buildFirstSeedTrie(t)

	require.NotNil(t, tr.FindExactNode("/abc/123"))
	// Mid-label boundaries and wildcard edges have no literal spelling.
	require.Nil(t, tr.FindExactNode("/abc/12"))
	require.Nil(t, tr.FindExactNode("/abc/134/anything"))
}

func TestRootInvariant(t *testing.T) {
	tr := buildFirstSeedTrie(t)
	root := tr.FindExactNode("/")
	require.NotNil(t, root)
	require.Equal(t, "/", root.Path())
	require.Equal(t, Exact, root.Kind())
	require.Empty(t, root.Values())
	require.Nil(t, root.Parent())
}

// FuzzDeterminism-style property check using structured random input
// generation: registering the same sequence of patterns twice must always
// resolve the same queries to the same values.
func TestDeterminismUnderFuzzedPatterns(t *testing.T) {
	f := fuzz.New().NilChance(0).NumElements(5, 12)

	var segments []string
	f.Fuzz(&segments)

	patterns := make([]string, 0, len(segments))
	for _, s := range segments {
		if s == "" {
			continue
		}
		patterns = append(patterns, "/fixed/"+sanitize(s))
	}
	if len(patterns) == 0 {
		t.Skip("fuzz produced no usable segment")
	}

	build := func() *Trie[int] {
		b := NewBuilder[int]()
		for i, p := range patterns {
			require.NoError(t, b.Add(p, i))
		}
		tr, err := b.Build()
		require.NoError(t, err)
		return tr
	}

	a, c := build(), build()
	for _, p := range patterns {
		require.Equal(t, a.Find(p), c.Find(p))
	}
}

// sanitize strips characters that would otherwise be interpreted as
// pattern markers or segment separators by the fuzzed literal segment.
func sanitize(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case ':', '*', '/':
			continue
		default:
			out = append(out, s[i])
		}
	}
	if len(out) == 0 {
		return "x"
	}
	return string(out)
}

func toSet(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
