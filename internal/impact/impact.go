// Package impact computes which workspace packages are affected by a set
// of changed files: the packages owning the files, plus every package
// that transitively depends on one of them.
package impact

import (
	"sort"

	"github.com/papapumpkin/ripple/internal/cargo"
)

// Result is the resolved affected set. It grows during resolution and is
// frozen once the closure reaches its fixed point.
type Result struct {
	// dirs holds the directories of affected packages, the frontier
	// tested against dependency edges during propagation.
	dirs map[string]bool
	// names holds the affected package names, the reportable output.
	names map[string]bool
}

// Empty reports whether no package was affected. An empty result is a
// valid outcome, not an error.
func (r *Result) Empty() bool {
	return len(r.names) == 0
}

// Names returns the affected package names in sorted order so output and
// rendered commands are reproducible across runs.
func (r *Result) Names() []string {
	names := make([]string, 0, len(r.names))
	for name := range r.names {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Contains reports whether the named package is affected.
func (r *Result) Contains(name string) bool {
	return r.names[name]
}

// Excludes returns the complement of the affected set over the full
// workspace: every package name not affected, in sorted order.
func (r *Result) Excludes(ws *cargo.Workspace) []string {
	var out []string
	for _, name := range ws.Names() {
		if !r.names[name] {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

func (r *Result) add(p *cargo.Package) {
	r.dirs[p.Dir] = true
	r.names[p.Name] = true
}

// Resolve seeds the affected set from the changed files and expands it to
// the least fixed point over reverse dependency edges. Changed paths must
// be absolute. Files owned by no package are dropped; a file outside any
// package boundary cannot affect one.
func Resolve(ws *cargo.Workspace, changedFiles []string) *Result {
	res := &Result{
		dirs:  make(map[string]bool),
		names: make(map[string]bool),
	}

	for _, file := range changedFiles {
		if pkg, ok := ws.Index.Owner(file); ok {
			res.add(pkg)
		}
	}

	// Re-scan all packages until one full pass adds nothing. Rounds are
	// bounded by the longest dependency chain, and the result does not
	// depend on scan order. Dependency cycles converge rather than loop.
	packages := ws.Packages()
	for prev := -1; prev != len(res.dirs); {
		prev = len(res.dirs)
		for _, pkg := range packages {
			if res.dirs[pkg.Dir] {
				continue
			}
			if res.dependsOnAffected(ws, pkg) {
				res.add(pkg)
			}
		}
	}
	return res
}

// dependsOnAffected reports whether any of pkg's declared dependency
// directories resolves to an affected package. Resolution goes through
// the ownership index because a declared path may point below the
// dependency's root rather than at it. Paths that resolve to no known
// package are silently skipped.
func (r *Result) dependsOnAffected(ws *cargo.Workspace, pkg *cargo.Package) bool {
	for _, dir := range pkg.Dependencies {
		if r.dirs[dir] {
			return true
		}
		if dep, ok := ws.Index.Owner(dir); ok && r.dirs[dep.Dir] {
			return true
		}
	}
	return false
}
