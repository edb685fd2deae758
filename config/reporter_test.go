package config

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"
)

func TestReport_CloseWritesManifestAndEntries(t *testing.T) {
	reportFile, err := os.CreateTemp(t.TempDir(), "test-report-*.zip")
	if err != nil {
		t.Fatalf("failed to create temp report file: %v", err)
	}

	r := &Report{
		entries: make(map[string]entry),
		file:    reportFile,
	}

	stored := filepath.Join(t.TempDir(), "mapping.db")
	if err := os.WriteFile(stored, []byte("not really a database"), 0644); err != nil {
		t.Fatalf("failed to write stored file: %v", err)
	}

	r.Store("mapping.db", stored)
	r.StoreData("processed.txt", []byte("index.html\nstyle.css\n"))

	if err := r.Close(); err != nil {
		t.Fatalf("Report.Close() error = %v", err)
	}

	zr, err := zip.OpenReader(reportFile.Name())
	if err != nil {
		t.Fatalf("report is not a readable zip: %v", err)
	}
	defer zr.Close()

	want := map[string]bool{"MANIFEST": false, "mapping.db": false, "processed.txt": false}
	for _, f := range zr.File {
		if _, ok := want[f.Name]; ok {
			want[f.Name] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("report misses entry %q", name)
		}
	}
}

func TestReport_NilIsSafe(t *testing.T) {
	var r *Report

	// all methods must quietly ignore an unrequested report
	r.Store("x", "/tmp/x")
	r.StoreData("y", []byte("data"))
	if n := r.Name(); n != "" {
		t.Errorf("Name() on nil report = %q, want empty", n)
	}
	if err := r.Close(); err != nil {
		t.Errorf("Close() on nil report error = %v", err)
	}
}

func TestReport_StoreSamePathTwice(t *testing.T) {
	reportFile, err := os.CreateTemp(t.TempDir(), "test-report-*.zip")
	if err != nil {
		t.Fatalf("failed to create temp report file: %v", err)
	}

	r := &Report{entries: make(map[string]entry), file: reportFile}

	// storing the same path under the same name is a no-op, not a conflict
	r.Store("same", "/tmp/same-file")
	r.Store("same", "/tmp/same-file")

	defer func() {
		if recover() == nil {
			t.Error("expected panic when overwriting a name with a different path")
		}
		_ = r.Close()
	}()
	r.Store("same", "/tmp/other-file")
}
