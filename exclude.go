package dirwatch

import "strings"

// ExcludeSet is a flat list of path prefixes that the watch manager refuses
// to add watches under. A path is excluded if it begins with one of the
// prefixes, a plain raw string prefix test — not component-aware — so
// "/home/u" excludes "/home/u/x" but also "/home/user", matching the
// original's strncmp(path, excludes[i].path_p, excludes[i].path_len) check.
// Empty prefixes are ignored rather than excluding every path.
type ExcludeSet struct {
	prefixes []string
}

// NewExcludeSet builds an ExcludeSet from a list of absolute path prefixes,
// as read from the exclude file of §6.
func NewExcludeSet(prefixes []string) *ExcludeSet {
	cp := make([]string, len(prefixes))
	copy(cp, prefixes)
	return &ExcludeSet{prefixes: cp}
}

// Excluded reports whether path falls under any excluded prefix.
func (x *ExcludeSet) Excluded(path string) (string, bool) {
	if x == nil {
		return "", false
	}
	for _, p := range x.prefixes {
		if p == "" {
			continue
		}
		if strings.HasPrefix(path, p) {
			return p, true
		}
	}
	return "", false
}
