// Package state defines shared program state.
package state

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/text/encoding"

	"remap/config"
	"remap/rewrite"
)

type envKey struct{}

// LocalEnv keeps everything program needs in a single place.
type LocalEnv struct {
	Cfg *config.Config
	Rpt *config.Report
	Log *zap.Logger

	// used by rewrite subcommand
	Overwrite bool
	Fresh     bool
	CodePage  encoding.Encoding

	// fallback rule table for configurations that clear the rule list
	DefaultRules rewrite.Rules

	start         time.Time
	restoreStdLog func()
}

func EnvFromContext(ctx context.Context) *LocalEnv {
	if env, ok := ctx.Value(envKey{}).(*LocalEnv); ok {
		return env
	}
	// this should never happen
	panic("localenv not found in context")
}

func ContextWithEnv(ctx context.Context) context.Context {
	return context.WithValue(ctx, envKey{}, newLocalEnv())
}

func (e *LocalEnv) Uptime() time.Duration {
	return time.Since(e.start)
}

// Rules returns the effective ordered rewrite rule set.
func (e *LocalEnv) Rules() rewrite.Rules {
	if e.Cfg == nil || len(e.Cfg.Rewrite.Rules) == 0 {
		return e.DefaultRules
	}
	rules := make(rewrite.Rules, 0, len(e.Cfg.Rewrite.Rules))
	for _, r := range e.Cfg.Rewrite.Rules {
		rules = append(rules, rewrite.Rule{Match: r.Match, Replace: r.Replace})
	}
	return rules
}

// Origin returns the site origin resolver built from configuration.
func (e *LocalEnv) Origin() rewrite.Origin {
	if e.Cfg == nil {
		return rewrite.Origin{}
	}
	return rewrite.Origin{Base: e.Cfg.Rewrite.Site.BaseURL, Name: e.Cfg.Rewrite.Site.Host}
}

func (e *LocalEnv) RedirectStdLog() {
	if e.Log == nil {
		return
	}
	e.restoreStdLog = zap.RedirectStdLog(e.Log)
}

func (e *LocalEnv) RestoreStdLog() {
	if e.Log != nil {
		_ = e.Log.Sync()
	}
	if e.restoreStdLog != nil {
		e.restoreStdLog()
	}
}
