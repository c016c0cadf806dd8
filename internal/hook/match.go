package hook

import "strings"

// Match reports whether a hook pattern matches a logical path.
//
// A pattern without '*' must equal the path exactly. A single '*' splits
// the pattern into a required prefix and suffix; either side may be empty,
// and the regions they match may overlap, so "ab*ba" matches "aba". The
// wildcard crosses '/' boundaries: "chat/*" matches "chat/x" and
// "chat/x/y" but not "tasks/chat". The bare pattern "*" matches every
// path, including the empty one.
//
// Patterns with several stars are a superset of the above: the first
// segment anchors the front, the last anchors the back, and interior
// segments must appear in order in the span after the prefix.
func Match(pattern, path string) bool {
	if !strings.Contains(pattern, "*") {
		return pattern == path
	}
	segs := strings.Split(pattern, "*")
	first, last := segs[0], segs[len(segs)-1]
	if !strings.HasPrefix(path, first) || !strings.HasSuffix(path, last) {
		return false
	}
	rest := path[len(first):]
	for _, seg := range segs[1 : len(segs)-1] {
		if seg == "" {
			continue
		}
		i := strings.Index(rest, seg)
		if i < 0 {
			return false
		}
		rest = rest[i+len(seg):]
	}
	return true
}
