package rewrite

import (
	"context"
	"strings"
)

// rewriteSrcSet splits a srcset value on commas, then on whitespace within
// each candidate to separate the URL token from its descriptor (size or
// density hint). Only the URL token is classified and rewritten. Candidates
// are reassembled with ", " between them and a single space before each
// descriptor.
func (e *Engine) rewriteSrcSet(ctx context.Context, value string) string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))

	for _, part := range parts {
		fields := strings.Fields(part)
		if len(fields) == 0 {
			continue
		}
		if IsLocal(fields[0], e.origin) {
			fields[0] = e.Canonicalize(ctx, fields[0])
		}
		out = append(out, strings.Join(fields, " "))
	}
	return strings.Join(out, ", ")
}
