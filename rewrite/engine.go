// Package rewrite implements the path mapping and rewrite engine: a
// deterministic rule-based path transform backed by a persistent mapping
// store, and a reference scanner which substitutes canonical paths into HTML
// and CSS documents while leaving everything else byte-identical.
package rewrite

import (
	"context"
	"sync/atomic"

	"go.uber.org/zap"

	"remap/common"
	"remap/mapping"
)

// Engine ties the origin classifier, the rule table and the mapping store
// together. Safe for concurrent use by independent document workers, the
// mapping store is the only shared mutable state.
type Engine struct {
	origin OriginResolver
	rules  Rules
	store  mapping.Store
	log    *zap.Logger

	storeFailed atomic.Bool
}

// New creates an engine. Configuration is explicit: the ordered rule list and
// the origin resolver are parameters, there are no ambient lookups. A nil
// store degrades to a process-local cache.
func New(origin OriginResolver, rules Rules, store mapping.Store, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	if store == nil {
		store = mapping.NewMemory()
	}
	return &Engine{
		origin: origin,
		rules:  rules,
		store:  store,
		log:    log.Named("rewrite"),
	}
}

// Canonicalize maps originalPath to its clean path. The stored mapping always
// wins so the answer never changes for the lifetime of the store; otherwise
// the first matching rule is applied once and the result is persisted.
func (e *Engine) Canonicalize(ctx context.Context, originalPath string) string {
	if len(originalPath) == 0 {
		return originalPath
	}

	clean, found, err := e.store.Find(ctx, originalPath)
	if err != nil {
		e.storeDegraded(err)
	} else if found {
		return clean
	}

	clean = e.rules.Apply(originalPath)

	// Persistence failure is non-fatal: the computed path is still correct,
	// later calls simply recompute it.
	if err := e.store.Upsert(ctx, originalPath, clean); err != nil {
		e.storeDegraded(err)
	}
	return clean
}

// RewriteDoc dispatches on document kind. Unknown kinds pass through
// untouched.
func (e *Engine) RewriteDoc(ctx context.Context, kind common.DocKind, text string) string {
	switch kind {
	case common.DocKindHtml:
		return e.RewriteHTML(ctx, text)
	case common.DocKindCss:
		return e.RewriteCSS(ctx, text)
	}
	return text
}

// ClearCache drops every stored mapping. After a clear previously mapped
// paths may legally be recomputed.
func (e *Engine) ClearCache(ctx context.Context) error {
	return e.store.ClearAll(ctx)
}

// StoreDegraded reports whether the mapping store failed at least once during
// this run. The pipeline surfaces it as a single end-of-run diagnostic.
func (e *Engine) StoreDegraded() bool {
	return e.storeFailed.Load()
}

func (e *Engine) storeDegraded(err error) {
	if e.storeFailed.CompareAndSwap(false, true) {
		e.log.Warn("Mapping cache unavailable, continuing without persistence", zap.Error(err))
	}
}
