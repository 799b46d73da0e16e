package triex

import "strings"

// scanParams replays pattern against the path of a request already known to
// have matched it (via [trie.Trie.Find]) and recovers the positional values
// captured by each ':' and the suffix captured by a trailing '*', left to
// right. The trie itself only reports the best-matching value list (see
// spec.md §6's contract); recovering substrings is a router-level concern,
// done here rather than inside the trie package.
func scanParams(pattern, path string) (params []string, catchAll string, hasCatchAll bool) {
	pattern = strings.TrimPrefix(pattern, "/")
	path = strings.TrimPrefix(path, "/")

	for pattern != "" {
		pseg, prest := cutSegment(pattern)

		if strings.HasSuffix(pseg, "*") {
			prefix := pseg[:len(pseg)-1]
			catchAll = strings.TrimPrefix(path, prefix)
			hasCatchAll = true
			return params, catchAll, hasCatchAll
		}

		pathSeg, pathRest := cutSegment(path)
		if pseg == ":" {
			params = append(params, pathSeg)
		}

		pattern, path = prest, pathRest
	}

	return params, catchAll, hasCatchAll
}

// cutSegment splits s at the first '/', returning the part before it and
// the remainder with the separator consumed.
func cutSegment(s string) (seg, rest string) {
	if idx := strings.IndexByte(s, '/'); idx >= 0 {
		return s[:idx], s[idx+1:]
	}
	return s, ""
}
