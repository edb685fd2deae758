package rewrite

import (
	"context"
	"regexp"
	"strings"
)

// Rewritable attribute set. Longer alternatives come first so "srcset" is not
// reported as "src". The leading group anchors the attribute name so suffixes
// of unlisted attributes (data-srcset, foo-src) never match.
var (
	reAttr = regexp.MustCompile(`(?i)(^|[\s"'<])(srcset|src|href|data-src|data-href)=("[^"]*"|'[^']*')`)
	reURL  = regexp.MustCompile(`url\(["']?(.*?)["']?\)`)
)

// RewriteHTML locates every rewritable reference in doc: quoted values of the
// src, href, srcset, data-src and data-href attributes, plus url(...) tokens
// anywhere in the document (which covers inline style attributes). Local
// references are replaced with their canonical paths, everything else passes
// through byte-for-byte including attribute order, quoting style and
// surrounding whitespace. Text which does not match the attr=("|')value("|')
// shape is left alone, the scanner is tolerant, not a validating parser.
func (e *Engine) RewriteHTML(ctx context.Context, doc string) string {
	out := reAttr.ReplaceAllStringFunc(doc, func(m string) string {
		sub := reAttr.FindStringSubmatch(m)
		lead, name, quoted := sub[1], sub[2], sub[3]
		quote, value := quoted[:1], quoted[1:len(quoted)-1]

		var clean string
		if strings.EqualFold(name, "srcset") {
			clean = e.rewriteSrcSet(ctx, value)
		} else {
			if !IsLocal(value, e.origin) {
				return m
			}
			clean = e.Canonicalize(ctx, value)
		}
		if clean == value {
			return m
		}
		return lead + name + "=" + quote + clean + quote
	})
	return e.rewriteURLTokens(ctx, out)
}

// rewriteURLTokens substitutes local references inside url(...) tokens,
// optionally single or double quoted. An empty inner URL is not local and
// short-circuits, leaving the token as-is.
func (e *Engine) rewriteURLTokens(ctx context.Context, s string) string {
	return reURL.ReplaceAllStringFunc(s, func(m string) string {
		inner := reURL.FindStringSubmatch(m)[1]
		if !IsLocal(inner, e.origin) {
			return m
		}
		clean := e.Canonicalize(ctx, inner)
		if clean == inner {
			return m
		}
		return strings.Replace(m, inner, clean, 1)
	})
}
