package pool

import "strings"

// split2 returns the two values from strings.SplitN(s, sep, 2). If sep
// is not found, it returns ("", s, false).
func split2(s, sep string) (string, string, bool) {
	i := strings.Index(s, sep)
	if i < 0 {
		return "", s, false
	}
	return s[:i], s[i+len(sep):], true
}

// Target is a parsed dial target: scheme://authority/endpoint, or just
// a bare host:port when no scheme is present.
type Target struct {
	Scheme    string
	Authority string
	Endpoint  string
}

// ParseTarget splits target into scheme, authority and endpoint. If
// target is not of the form scheme://authority/endpoint, the whole
// string is returned as Endpoint.
func ParseTarget(target string) Target {
	scheme, rest, ok := split2(target, "://")
	if !ok {
		return Target{Endpoint: target}
	}
	authority, endpoint, ok := split2(rest, "/")
	if !ok {
		return Target{Endpoint: target}
	}
	return Target{Scheme: scheme, Authority: authority, Endpoint: endpoint}
}
