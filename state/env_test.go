package state

import (
	"context"
	"testing"

	"remap/config"
)

func TestContextWithEnv(t *testing.T) {
	ctx := ContextWithEnv(context.Background())

	env := EnvFromContext(ctx)
	if env == nil {
		t.Fatal("EnvFromContext() returned nil")
	}
	if len(env.DefaultRules) == 0 {
		t.Error("new environment carries no default rules")
	}
	if env.Uptime() < 0 {
		t.Error("Uptime() went backwards")
	}
}

func TestEnvFromContext_MissingPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for context without environment")
		}
	}()
	EnvFromContext(context.Background())
}

func TestLocalEnv_Rules(t *testing.T) {
	ctx := ContextWithEnv(context.Background())
	env := EnvFromContext(ctx)

	// without configuration the defaults apply
	if got := env.Rules(); len(got) != len(env.DefaultRules) {
		t.Errorf("Rules() length = %d, want defaults %d", len(got), len(env.DefaultRules))
	}

	env.Cfg = &config.Config{}
	env.Cfg.Rewrite.Rules = []config.RuleConfig{{Match: "/a/", Replace: "/b/"}}

	rules := env.Rules()
	if len(rules) != 1 || rules[0].Match != "/a/" || rules[0].Replace != "/b/" {
		t.Errorf("Rules() = %+v, want configured single rule", rules)
	}
}

func TestLocalEnv_Origin(t *testing.T) {
	ctx := ContextWithEnv(context.Background())
	env := EnvFromContext(ctx)

	if o := env.Origin(); o.BaseURL() != "" || o.Host() != "" {
		t.Errorf("Origin() without config = %+v, want empty", o)
	}

	env.Cfg = &config.Config{}
	env.Cfg.Rewrite.Site = config.SiteConfig{BaseURL: "https://mysite.com", Host: "mysite.com"}

	o := env.Origin()
	if o.BaseURL() != "https://mysite.com" || o.Host() != "mysite.com" {
		t.Errorf("Origin() = %+v, want configured site", o)
	}
}
