package pathpolicy

import "testing"

func TestIsAllowedExactRootAndDescendants(t *testing.T) {
	p, err := New([]string{"/srv/netcopy"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	cases := []struct {
		path string
		want bool
	}{
		{"/srv/netcopy", true},
		{"/srv/netcopy/uploads/a.bin", true},
		{"/srv/netcopy/../netcopy", true}, // cleans to the root itself
		{"/srv/netcopyextra", false},
		{"/srv", false},
		{"/etc/passwd", false},
		{"/srv/netcopy/../../etc/passwd", false},
	}
	for _, c := range cases {
		if got := p.IsAllowed(c.path); got != c.want {
			t.Errorf("IsAllowed(%q) = %v, want %v", c.path, got, c.want)
		}
	}
}

func TestNewRejectsRelativeRoot(t *testing.T) {
	if _, err := New([]string{"relative/root"}); err == nil {
		t.Fatal("expected error for relative allowed root")
	}
}

func TestNewRejectsEmptyRootSet(t *testing.T) {
	if _, err := New(nil); err == nil {
		t.Fatal("expected error for empty allowed root set")
	}
}

func TestMultipleRoots(t *testing.T) {
	p, err := New([]string{"/srv/a", "/srv/b"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if !p.IsAllowed("/srv/b/file.txt") {
		t.Fatal("expected /srv/b/file.txt to be allowed")
	}
	if p.IsAllowed("/srv/c/file.txt") {
		t.Fatal("expected /srv/c/file.txt to be rejected")
	}
}

func TestIsAbsoluteRecognizesUnixAndWindowsForms(t *testing.T) {
	cases := []struct {
		path string
		want bool
	}{
		{"/srv/netcopy/a.bin", true},
		{`C:\Users\a\file.bin`, true},
		{`c:/Users/a/file.bin`, true},
		{`\\host\share\file.bin`, true},
		{"relative/path.bin", false},
		{"", false},
	}
	for _, c := range cases {
		if got := IsAbsolute(c.path); got != c.want {
			t.Errorf("IsAbsolute(%q) = %v, want %v", c.path, got, c.want)
		}
	}
}

func TestWireNativeConversion(t *testing.T) {
	if got := ToNative("a/b/c.bin", '\\'); got != `a\b\c.bin` {
		t.Errorf("ToNative backslash: got %q", got)
	}
	if got := ToWire(`a\b\c.bin`, '\\'); got != "a/b/c.bin" {
		t.Errorf("ToWire backslash: got %q", got)
	}
	if got := ToNative("a/b/c.bin", '/'); got != "a/b/c.bin" {
		t.Errorf("ToNative slash passthrough: got %q", got)
	}
}
