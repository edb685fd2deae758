package process

import (
	"archive/zip"
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"

	"remap/config"
	"remap/mapping"
	"remap/rewrite"
	"remap/state"
)

func newTestContext(t *testing.T) context.Context {
	t.Helper()

	ctx := state.ContextWithEnv(context.Background())
	env := state.EnvFromContext(ctx)
	env.Cfg = &config.Config{}
	env.Log = zap.NewNop()
	return ctx
}

func newTestEngine() *rewrite.Engine {
	return rewrite.New(rewrite.Origin{}, rewrite.Default(), mapping.NewMemory(), nil)
}

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()

	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
			t.Fatalf("Failed to create directory for %s: %v", name, err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("Failed to write %s: %v", name, err)
		}
	}
}

func TestProcessDir(t *testing.T) {
	ctx := newTestContext(t)
	src, dst := t.TempDir(), t.TempDir()

	writeTree(t, src, map[string]string{
		"index.html":    `<img src="/wp-content/uploads/2024/a.png">`,
		"css/style.css": `body { background: url('/wp-content/themes/t/bg.png'); }`,
		"img/logo.png":  "\x89PNG fake binary \x00 content",
	})

	stats := new(runStats)
	if err := process(ctx, newTestEngine(), src, dst, stats, zap.NewNop()); err != nil {
		t.Fatalf("process() error = %v", err)
	}

	html, err := os.ReadFile(filepath.Join(dst, "index.html"))
	if err != nil {
		t.Fatalf("Failed to read output html: %v", err)
	}
	if want := `<img src="/media/2024/a.png">`; string(html) != want {
		t.Errorf("index.html = %q, want %q", html, want)
	}

	css, err := os.ReadFile(filepath.Join(dst, "css", "style.css"))
	if err != nil {
		t.Fatalf("Failed to read output css: %v", err)
	}
	if want := `body { background: url('/assets/theme/t/bg.png'); }`; string(css) != want {
		t.Errorf("style.css = %q, want %q", css, want)
	}

	logo, err := os.ReadFile(filepath.Join(dst, "img", "logo.png"))
	if err != nil {
		t.Fatalf("Failed to read copied asset: %v", err)
	}
	if string(logo) != "\x89PNG fake binary \x00 content" {
		t.Error("copied asset is not byte-identical")
	}

	if len(stats.processed) != 2 {
		t.Errorf("processed %d documents, want 2", len(stats.processed))
	}
	if stats.copied != 1 {
		t.Errorf("copied %d files, want 1", stats.copied)
	}
}

func TestProcessSingleFile(t *testing.T) {
	ctx := newTestContext(t)
	src, dst := t.TempDir(), t.TempDir()

	writeTree(t, src, map[string]string{
		"page.html": `<a href="/wp-includes/js/app.js">app</a>`,
	})

	stats := new(runStats)
	if err := process(ctx, newTestEngine(), filepath.Join(src, "page.html"), dst, stats, zap.NewNop()); err != nil {
		t.Fatalf("process() error = %v", err)
	}

	out, err := os.ReadFile(filepath.Join(dst, "page.html"))
	if err != nil {
		t.Fatalf("Failed to read output: %v", err)
	}
	if want := `<a href="/assets/core/js/app.js">app</a>`; string(out) != want {
		t.Errorf("page.html = %q, want %q", out, want)
	}
}

func TestProcessSingleFile_NotRecognized(t *testing.T) {
	ctx := newTestContext(t)
	src, dst := t.TempDir(), t.TempDir()

	writeTree(t, src, map[string]string{"notes.txt": "plain text"})

	err := process(ctx, newTestEngine(), filepath.Join(src, "notes.txt"), dst, new(runStats), zap.NewNop())
	if err == nil || !strings.Contains(err.Error(), "not recognized") {
		t.Errorf("process() error = %v, want not recognized", err)
	}
}

func TestProcess_MissingSource(t *testing.T) {
	ctx := newTestContext(t)

	err := process(ctx, newTestEngine(), "/nonexistent/input", t.TempDir(), new(runStats), zap.NewNop())
	if err == nil {
		t.Error("process() accepted missing source")
	}
}

func TestProcess_OverwriteFlag(t *testing.T) {
	ctx := newTestContext(t)
	env := state.EnvFromContext(ctx)
	src, dst := t.TempDir(), t.TempDir()

	writeTree(t, src, map[string]string{"page.html": `<img src="/wp-content/x.png">`})
	input := filepath.Join(src, "page.html")

	if err := process(ctx, newTestEngine(), input, dst, new(runStats), zap.NewNop()); err != nil {
		t.Fatalf("first run error = %v", err)
	}
	if err := process(ctx, newTestEngine(), input, dst, new(runStats), zap.NewNop()); err == nil {
		t.Error("second run did not fail on existing destination")
	}

	env.Overwrite = true
	if err := process(ctx, newTestEngine(), input, dst, new(runStats), zap.NewNop()); err != nil {
		t.Errorf("run with overwrite error = %v", err)
	}
}

func TestProcessArchive(t *testing.T) {
	ctx := newTestContext(t)
	src, dst := t.TempDir(), t.TempDir()

	arcPath := filepath.Join(src, "export.zip")
	arcFile, err := os.Create(arcPath)
	if err != nil {
		t.Fatalf("Failed to create archive: %v", err)
	}
	w := zip.NewWriter(arcFile)
	entries := map[string]string{
		"index.html":   `<link href="/wp-content/themes/t/m.css" rel="stylesheet">`,
		"img/logo.png": "\x89PNG binary",
	}
	for name, content := range entries {
		fw, err := w.Create(name)
		if err != nil {
			t.Fatalf("Failed to create entry %s: %v", name, err)
		}
		if _, err := fw.Write([]byte(content)); err != nil {
			t.Fatalf("Failed to write entry %s: %v", name, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Failed to finalize archive: %v", err)
	}
	if err := arcFile.Close(); err != nil {
		t.Fatalf("Failed to close archive: %v", err)
	}

	stats := new(runStats)
	if err := process(ctx, newTestEngine(), arcPath, dst, stats, zap.NewNop()); err != nil {
		t.Fatalf("process() error = %v", err)
	}

	zr, err := zip.OpenReader(filepath.Join(dst, "export.zip"))
	if err != nil {
		t.Fatalf("output archive is not readable: %v", err)
	}
	defer zr.Close()

	got := make(map[string]string)
	for _, f := range zr.File {
		r, err := f.Open()
		if err != nil {
			t.Fatalf("Failed to open entry %s: %v", f.Name, err)
		}
		var buf bytes.Buffer
		if _, err := buf.ReadFrom(r); err != nil {
			t.Fatalf("Failed to read entry %s: %v", f.Name, err)
		}
		r.Close()
		got[f.Name] = buf.String()
	}

	if want := `<link href="/assets/theme/t/m.css" rel="stylesheet">`; got["index.html"] != want {
		t.Errorf("index.html = %q, want %q", got["index.html"], want)
	}
	if got["img/logo.png"] != "\x89PNG binary" {
		t.Error("raw-copied archive entry is not byte-identical")
	}
	if len(stats.processed) != 1 || stats.copied != 1 {
		t.Errorf("stats = %+v, want 1 processed and 1 copied", stats)
	}
}
