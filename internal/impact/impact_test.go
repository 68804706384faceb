package impact

import (
	"path/filepath"
	"reflect"
	"sort"
	"testing"

	"github.com/papapumpkin/ripple/internal/cargo"
	"github.com/papapumpkin/ripple/internal/pathindex"
)

// testWorkspace builds an in-memory workspace. Each spec names a package
// and the packages it depends on; dependency edges point at package
// directories under /ws/<dep>.
type pkgSpec struct {
	name string
	deps []string
}

func testWorkspace(specs ...pkgSpec) *cargo.Workspace {
	ws := &cargo.Workspace{
		Root:  filepath.FromSlash("/ws"),
		Index: pathindex.New[*cargo.Package](),
	}
	for _, s := range specs {
		dir := filepath.Join(ws.Root, s.name)
		deps := make([]string, 0, len(s.deps))
		for _, d := range s.deps {
			deps = append(deps, filepath.Join(ws.Root, d))
		}
		ws.Index.Insert(dir, &cargo.Package{
			Name:         s.name,
			Dir:          dir,
			Manifest:     filepath.Join(dir, "Cargo.toml"),
			Dependencies: deps,
		})
	}
	return ws
}

func file(parts ...string) string {
	return filepath.Join(append([]string{filepath.FromSlash("/ws")}, parts...)...)
}

func TestResolveEmptyChangeSet(t *testing.T) {
	t.Parallel()
	ws := testWorkspace(pkgSpec{name: "a"}, pkgSpec{name: "b"})

	res := Resolve(ws, nil)
	if !res.Empty() {
		t.Errorf("Names() = %v, want empty", res.Names())
	}
}

func TestResolveSeedsOwningPackage(t *testing.T) {
	t.Parallel()
	ws := testWorkspace(pkgSpec{name: "a"}, pkgSpec{name: "b"})

	res := Resolve(ws, []string{file("a", "src", "lib.rs")})
	if got, want := res.Names(), []string{"a"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Names() = %v, want %v", got, want)
	}
}

func TestResolveDropsUnownedFiles(t *testing.T) {
	t.Parallel()
	ws := testWorkspace(pkgSpec{name: "a"})

	res := Resolve(ws, []string{file("README.md"), filepath.FromSlash("/elsewhere/x.rs")})
	if !res.Empty() {
		t.Errorf("Names() = %v, want empty", res.Names())
	}
}

func TestResolveTransitiveChain(t *testing.T) {
	t.Parallel()
	// a depends on b depends on c; only a file in c changes.
	ws := testWorkspace(
		pkgSpec{name: "a", deps: []string{"b"}},
		pkgSpec{name: "b", deps: []string{"c"}},
		pkgSpec{name: "c"},
	)

	res := Resolve(ws, []string{file("c", "src", "lib.rs")})
	if got, want := res.Names(), []string{"a", "b", "c"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Names() = %v, want %v", got, want)
	}
}

func TestResolveDoesNotPropagateForward(t *testing.T) {
	t.Parallel()
	// a depends on b; changing a must not pull in b.
	ws := testWorkspace(
		pkgSpec{name: "a", deps: []string{"b"}},
		pkgSpec{name: "b"},
	)

	res := Resolve(ws, []string{file("a", "main.rs")})
	if got, want := res.Names(), []string{"a"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Names() = %v, want %v", got, want)
	}
}

func TestResolveMonotonic(t *testing.T) {
	t.Parallel()
	ws := testWorkspace(
		pkgSpec{name: "a", deps: []string{"b"}},
		pkgSpec{name: "b"},
		pkgSpec{name: "c"},
	)

	small := Resolve(ws, []string{file("b", "lib.rs")})
	large := Resolve(ws, []string{file("b", "lib.rs"), file("c", "lib.rs")})

	for _, name := range small.Names() {
		if !large.Contains(name) {
			t.Errorf("adding a changed file dropped %q from the affected set", name)
		}
	}
}

func TestResolveIdempotent(t *testing.T) {
	t.Parallel()
	ws := testWorkspace(
		pkgSpec{name: "a", deps: []string{"b"}},
		pkgSpec{name: "b", deps: []string{"c"}},
		pkgSpec{name: "c"},
	)
	changed := []string{file("c", "lib.rs")}

	first := Resolve(ws, changed)
	second := Resolve(ws, changed)
	if !reflect.DeepEqual(first.Names(), second.Names()) {
		t.Errorf("Resolve not stable: %v then %v", first.Names(), second.Names())
	}

	// Re-seeding with the already-affected package's files changes nothing.
	reseeded := Resolve(ws, append(changed, file("a", "lib.rs"), file("b", "lib.rs")))
	if !reflect.DeepEqual(first.Names(), reseeded.Names()) {
		t.Errorf("fixed point unstable: %v vs %v", first.Names(), reseeded.Names())
	}
}

func TestResolveToleratesCycles(t *testing.T) {
	t.Parallel()
	ws := testWorkspace(
		pkgSpec{name: "a", deps: []string{"b"}},
		pkgSpec{name: "b", deps: []string{"a"}},
	)

	res := Resolve(ws, []string{file("a", "lib.rs")})
	if got, want := res.Names(), []string{"a", "b"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Names() = %v, want %v", got, want)
	}
}

func TestResolveDependencyPathBelowPackageRoot(t *testing.T) {
	t.Parallel()
	// a's manifest points at a subdirectory of b rather than b's root;
	// ownership resolution must still find b.
	ws := testWorkspace(
		pkgSpec{name: "a", deps: []string{filepath.Join("b", "sub")}},
		pkgSpec{name: "b"},
	)

	res := Resolve(ws, []string{file("b", "lib.rs")})
	if got, want := res.Names(), []string{"a", "b"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Names() = %v, want %v", got, want)
	}
}

func TestResolveSkipsUnresolvableDependency(t *testing.T) {
	t.Parallel()
	// a declares a dependency dir that no package owns; it is ignored.
	ws := testWorkspace(
		pkgSpec{name: "a", deps: []string{"ghost"}},
		pkgSpec{name: "b"},
	)

	res := Resolve(ws, []string{file("b", "lib.rs")})
	if got, want := res.Names(), []string{"b"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Names() = %v, want %v", got, want)
	}
}

func TestExcludesComplement(t *testing.T) {
	t.Parallel()
	ws := testWorkspace(
		pkgSpec{name: "a", deps: []string{"b"}},
		pkgSpec{name: "b"},
		pkgSpec{name: "c"},
		pkgSpec{name: "d"},
	)

	res := Resolve(ws, []string{file("b", "lib.rs")})
	affected := res.Names()
	excluded := res.Excludes(ws)

	union := append(append([]string{}, affected...), excluded...)
	sort.Strings(union)
	if want := []string{"a", "b", "c", "d"}; !reflect.DeepEqual(union, want) {
		t.Errorf("affected ∪ excludes = %v, want %v", union, want)
	}
	for _, name := range excluded {
		if res.Contains(name) {
			t.Errorf("%q is in both affected and excludes", name)
		}
	}
}
