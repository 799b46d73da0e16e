package trie

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDumpIsDeterministicAndOrdered(t *testing.T) {
	b := NewBuilder[string]()
	require.NoError(t, b.Add("/abc/123", "v1"))
	require.NoError(t, b.Add("/abc/:", "v2"))
	require.NoError(t, b.Add("/abc/*", "v3"))
	tr, err := b.Build()
	require.NoError(t, err)

	var buf bytes.Buffer
	tr.Dump(&buf)

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.NotEmpty(t, lines)

	// Exact children precede parameter children, which precede catch-all
	// children, at every level.
	idxExact := indexOfSuffix(lines, "123 (1)")
	idxParam := indexOfSuffix(lines, ": (1)")
	idxCatch := indexOfSuffix(lines, "* (1)")
	require.True(t, idxExact < idxParam)
	require.True(t, idxParam < idxCatch)

	var again bytes.Buffer
	tr.Dump(&again)
	require.Equal(t, buf.String(), again.String())
}

func indexOfSuffix(lines []string, suffix string) int {
	for i, l := range lines {
		if strings.HasSuffix(strings.TrimSpace(l), suffix) {
			return i
		}
	}
	return -1
}
