package rewrite_test

import (
	"testing"

	"remap/rewrite"
)

func TestIsLocal(t *testing.T) {
	origin := rewrite.Origin{Base: "https://mysite.com", Name: "mysite.com"}

	tests := []struct {
		name string
		ref  string
		want bool
	}{
		{"empty", "", false},
		{"fragment", "#section", false},
		{"data uri", "data:image/png;base64,AAA", false},
		{"absolute own site", "https://mysite.com/wp-content/uploads/a.png", true},
		{"absolute external", "https://external.com/b.jpg", false},
		{"http scheme does not contain https base", "http://mysite.com/x", false},
		{"protocol relative own host", "//mysite.com/x", true},
		{"protocol relative external", "//cdn.example.org/x", false},
		{"relative path", "/wp-content/uploads/a.png", true},
		{"bare relative", "img/logo.png", true},
		// substring containment is deliberate, not URL-component matching
		{"host in query string", "https://mysite.com/redirect?to=mysite.com", true},
		{"base url embedded elsewhere", "https://evil.example/?u=https://mysite.com/x", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := rewrite.IsLocal(tt.ref, origin); got != tt.want {
				t.Errorf("IsLocal(%q) = %v, want %v", tt.ref, got, tt.want)
			}
		})
	}
}

func TestIsLocal_HttpBase(t *testing.T) {
	// containment is against the configured base URL verbatim, scheme included
	origin := rewrite.Origin{Base: "http://mysite.com", Name: "mysite.com"}

	if !rewrite.IsLocal("http://mysite.com/x", origin) {
		t.Error("IsLocal() rejected reference matching the http base URL")
	}
	// an https reference still contains the http base as a substring, the
	// loose containment rule accepts it
	if !rewrite.IsLocal("https://proxy.example/?u=http://mysite.com/x", origin) {
		t.Error("IsLocal() rejected embedded base URL")
	}
}

func TestIsLocal_EmptyOrigin(t *testing.T) {
	// a site with no known origin cannot claim absolute references
	origin := rewrite.Origin{}

	if rewrite.IsLocal("https://anything.com/x", origin) {
		t.Error("absolute reference classified local with empty base URL")
	}
	if rewrite.IsLocal("//anything.com/x", origin) {
		t.Error("protocol-relative reference classified local with empty host")
	}
	if !rewrite.IsLocal("/relative/x", origin) {
		t.Error("relative reference must stay local regardless of origin")
	}
}
