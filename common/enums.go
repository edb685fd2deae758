// Package common holds enums shared between the rewrite engine and the
// processing pipeline so neither has to import the other for trivial types.
package common

// Kind of document the reference scanner understands.
// ENUM(none, html, css)
type DocKind int

func (k DocKind) Rewritable() bool {
	return k == DocKindHtml || k == DocKindCss
}
