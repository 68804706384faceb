package pathindex

import "testing"

func TestOwner(t *testing.T) {
	t.Parallel()

	ix := New[string]()
	ix.Insert("/ws/core", "core")
	ix.Insert("/ws/util", "util")
	ix.Insert("/ws/pkg", "pkg")
	ix.Insert("/ws/pkg2", "pkg2")

	tests := []struct {
		name  string
		path  string
		want  string
		found bool
	}{
		{"file in package", "/ws/core/src/lib.rs", "core", true},
		{"nested file", "/ws/util/src/deep/inner/mod.rs", "util", true},
		{"package dir itself", "/ws/core", "core", true},
		{"manifest in package", "/ws/pkg/Cargo.toml", "pkg", true},
		{"sibling name prefix does not leak", "/ws/pkg2/src/a.rs", "pkg2", true},
		{"prefix of a key is not a match", "/ws/pk", "", false},
		{"outside any package", "/ws/README.md", "", false},
		{"unrelated root", "/elsewhere/core/lib.rs", "", false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := ix.Owner(tt.path)
			if ok != tt.found {
				t.Fatalf("Owner(%q) found = %v, want %v", tt.path, ok, tt.found)
			}
			if ok && got != tt.want {
				t.Errorf("Owner(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

func TestOwnerLongestPrefixWins(t *testing.T) {
	t.Parallel()

	// Valid workspaces do not nest package roots, but ownership must still
	// pick the deepest claimant if they do.
	ix := New[string]()
	ix.Insert("/ws/pkgA", "outer")
	ix.Insert("/ws/pkgA/sub", "inner")

	if got, _ := ix.Owner("/ws/pkgA/sub/file.rs"); got != "inner" {
		t.Errorf("nested lookup = %q, want %q", got, "inner")
	}
	if got, _ := ix.Owner("/ws/pkgA/other/file.rs"); got != "outer" {
		t.Errorf("outer lookup = %q, want %q", got, "outer")
	}
}

func TestInsertReplaces(t *testing.T) {
	t.Parallel()

	ix := New[string]()
	ix.Insert("/ws/a", "first")
	ix.Insert("/ws/a", "second")

	if ix.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", ix.Len())
	}
	if got, _ := ix.Owner("/ws/a/x.rs"); got != "second" {
		t.Errorf("Owner after replace = %q, want %q", got, "second")
	}
}

func TestWalk(t *testing.T) {
	t.Parallel()

	ix := New[int]()
	ix.Insert("/ws/a", 1)
	ix.Insert("/ws/b", 2)

	seen := map[string]int{}
	ix.Walk(func(dir string, v int) bool {
		seen[dir] = v
		return false
	})

	if len(seen) != 2 || seen["/ws/a"] != 1 || seen["/ws/b"] != 2 {
		t.Errorf("Walk visited %v", seen)
	}
}
