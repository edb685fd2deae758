package rewrite

import (
	"context"
	"errors"
	"io"
	"strings"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
)

// RewriteCSS rewrites url(...) tokens and @import targets in a stylesheet,
// there is no attribute scanning in CSS mode. The lexer is lossless, every
// token outside rewritten URLs is emitted verbatim so untouched content stays
// byte-identical.
func (e *Engine) RewriteCSS(ctx context.Context, sheet string) string {
	l := css.NewLexer(parse.NewInputString(sheet))

	var (
		b        strings.Builder
		inImport bool
		inURL    bool
	)
	b.Grow(len(sheet))

	for {
		tt, data := l.Next()
		switch tt {
		case css.ErrorToken:
			if err := l.Err(); err != nil && !errors.Is(err, io.EOF) {
				// scanning failed mid-stream, fall back to pattern matching
				// over the whole sheet so no input is lost
				return e.rewriteURLTokens(ctx, sheet)
			}
			return b.String()

		case css.URLToken:
			// unquoted form, url(path) is a single token
			b.WriteString(e.rewriteURLTokens(ctx, string(data)))

		case css.FunctionToken:
			// quoted form, url("path") lexes as a function with a string argument
			inURL = strings.EqualFold(string(data), "url(")
			b.Write(data)

		case css.AtKeywordToken:
			inImport = strings.EqualFold(string(data), "@import")
			b.Write(data)

		case css.StringToken:
			if inImport || inURL {
				b.WriteString(e.rewriteQuoted(ctx, string(data)))
			} else {
				b.Write(data)
			}
			inImport, inURL = false, false

		case css.WhitespaceToken, css.CommentToken:
			b.Write(data)

		default:
			inImport, inURL = false, false
			b.Write(data)
		}
	}
}

// rewriteQuoted rewrites the inside of a quoted string token preserving the
// quote style.
func (e *Engine) rewriteQuoted(ctx context.Context, s string) string {
	if len(s) < 2 {
		return s
	}
	quote, inner := s[:1], s[1:len(s)-1]
	if !IsLocal(inner, e.origin) {
		return s
	}
	clean := e.Canonicalize(ctx, inner)
	if clean == inner {
		return s
	}
	return quote + clean + quote
}
