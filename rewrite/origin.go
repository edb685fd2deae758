package rewrite

import "strings"

// OriginResolver exposes the site currently being processed. The engine only
// uses it to decide reference locality.
type OriginResolver interface {
	// BaseURL returns the full base URL of the site, e.g. "https://mysite.com".
	BaseURL() string
	// Host returns the bare host name, e.g. "mysite.com".
	Host() string
}

// Origin is a fixed OriginResolver for sites known up front.
type Origin struct {
	Base string
	Name string
}

func (o Origin) BaseURL() string { return o.Base }
func (o Origin) Host() string    { return o.Name }

// IsLocal reports whether reference points at a resource served by the site
// itself and is therefore subject to rewriting.
//
// Matching is substring containment, not URL-component comparison: a reference
// whose query string or path happens to contain the origin string is
// classified local. This looseness is intentional and callers must accept it,
// tightening it changes output for edge-case inputs.
func IsLocal(reference string, origin OriginResolver) bool {
	switch {
	case len(reference) == 0:
		return false
	case strings.HasPrefix(reference, "#"):
		return false
	case strings.HasPrefix(reference, "data:"):
		return false
	case strings.HasPrefix(reference, "http://"), strings.HasPrefix(reference, "https://"):
		base := origin.BaseURL()
		return len(base) != 0 && strings.Contains(reference, base)
	case strings.HasPrefix(reference, "//"):
		host := origin.Host()
		return len(host) != 0 && strings.Contains(reference, host)
	default:
		// relative path
		return true
	}
}
