package assets

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestManifestResolve(t *testing.T) {
	m := NewManifest()
	m.Set("main.js", "main.abc123.js")
	m.Set("/css/app.css", "/css/app.def456.css")

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"rooted", "/main.js", "/main.abc123.js"},
		{"relative", "main.js", "main.abc123.js"},
		{"nested", "/css/app.css", "/css/app.def456.css"},
		{"query kept", "/main.js?v=1", "/main.abc123.js?v=1"},
		{"unknown", "/other.js", "/other.js"},
		{"absolute url", "https://cdn.example.com/main.js", "https://cdn.example.com/main.js"},
		{"protocol relative", "//cdn.example.com/main.js", "//cdn.example.com/main.js"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := m.Resolve(tt.in); got != tt.want {
				t.Errorf("Resolve(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNilManifestResolve(t *testing.T) {
	var m *Manifest
	if got := m.Resolve("/main.js"); got != "/main.js" {
		t.Errorf("Resolve = %q", got)
	}
}

func TestResolveAll(t *testing.T) {
	m := NewManifest()
	m.Set("a.css", "a.1.css")

	got := m.ResolveAll([]string{"/a.css", "/b.css"})
	if diff := cmp.Diff([]string{"/a.1.css", "/b.css"}, got); diff != "" {
		t.Errorf("ResolveAll mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "manifest.json")
	if err := os.WriteFile(file, []byte(`{"main.js": "main.9f8e.js"}`), 0o644); err != nil {
		t.Fatal(err)
	}

	m, err := Load(file)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if m.Len() != 1 || m.Resolve("/main.js") != "/main.9f8e.js" {
		t.Errorf("unexpected manifest: %d entries, /main.js -> %s", m.Len(), m.Resolve("/main.js"))
	}

	if _, err := Load(filepath.Join(dir, "missing.json")); !os.IsNotExist(err) {
		t.Errorf("missing file error = %v", err)
	}

	bad := filepath.Join(dir, "bad.json")
	os.WriteFile(bad, []byte(`[1,2]`), 0o644)
	if _, err := Load(bad); err == nil {
		t.Error("expected error for non-object manifest")
	}
}
