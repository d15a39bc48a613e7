package client

import (
	"os"
	"path/filepath"
	"sort"
	"testing"
)

func TestBuildPlanSingleFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "a.bin")
	if err := os.WriteFile(src, []byte("x"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	p, err := buildPlan(src, "/srv/data", false)
	if err != nil {
		t.Fatalf("buildPlan: %v", err)
	}
	if len(p.files) != 1 || p.files[0].destinationPath != "/srv/data/a.bin" {
		t.Fatalf("unexpected plan: %+v", p.files)
	}
}

func TestBuildPlanDirectoryRequiresRecursive(t *testing.T) {
	dir := t.TempDir()
	if _, err := buildPlan(dir, "/srv/data", false); err == nil {
		t.Fatal("expected error for directory source without recursive")
	}
}

func TestBuildPlanRecursiveWalk(t *testing.T) {
	root := t.TempDir()
	srcDir := filepath.Join(root, "tree")
	must(t, os.MkdirAll(filepath.Join(srcDir, "nested"), 0o755))
	must(t, os.MkdirAll(filepath.Join(srcDir, "empty"), 0o755))
	must(t, os.WriteFile(filepath.Join(srcDir, "top.txt"), []byte("a"), 0o644))
	must(t, os.WriteFile(filepath.Join(srcDir, "nested", "inner.txt"), []byte("b"), 0o644))

	p, err := buildPlan(srcDir, "/srv/data", true)
	if err != nil {
		t.Fatalf("buildPlan: %v", err)
	}

	var dests []string
	for _, f := range p.files {
		dests = append(dests, f.destinationPath)
	}
	sort.Strings(dests)
	want := []string{"/srv/data/tree/nested/inner.txt", "/srv/data/tree/top.txt"}
	if len(dests) != len(want) {
		t.Fatalf("got destinations %v, want %v", dests, want)
	}
	for i := range want {
		if dests[i] != want[i] {
			t.Fatalf("got destinations %v, want %v", dests, want)
		}
	}

	if len(p.emptyDirs) != 1 || p.emptyDirs[0].destinationPath != "/srv/data/tree/empty" {
		t.Fatalf("unexpected empty dirs: %+v", p.emptyDirs)
	}
}

func must(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatal(err)
	}
}
