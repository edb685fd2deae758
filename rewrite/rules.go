package rewrite

import "strings"

// Rule is an ordered prefix-substitution pair. Match is a literal path
// fragment, no globbing or anchoring.
type Rule struct {
	Match   string
	Replace string
}

// Rules are tried in order. The first rule whose Match occurs anywhere in the
// path wins and only the first occurrence of Match is substituted, the rest of
// the list is never consulted so cascading substitutions cannot happen.
type Rules []Rule

// Apply computes the clean path for path. Identity when no rule matches.
func (rs Rules) Apply(path string) string {
	for _, r := range rs {
		if len(r.Match) == 0 {
			continue
		}
		if strings.Contains(path, r.Match) {
			return strings.Replace(path, r.Match, r.Replace, 1)
		}
	}
	return path
}

// Default maps common CMS asset prefixes to generic equivalents. Order
// matters: more specific prefixes first, the catch-all content prefix last.
func Default() Rules {
	return Rules{
		{Match: "/wp-content/themes/", Replace: "/assets/theme/"},
		{Match: "/wp-content/plugins/", Replace: "/assets/ext/"},
		{Match: "/wp-content/uploads/", Replace: "/media/"},
		{Match: "/wp-content/", Replace: "/assets/"},
		{Match: "/wp-includes/", Replace: "/assets/core/"},
	}
}
