// Package cargo loads a Cargo-style workspace into a path-indexed
// dependency graph. It reads the root manifest's member list, parses each
// member's manifest, and keeps only dependency edges that stay inside the
// workspace root; external dependencies cannot change as part of a
// workspace diff and are irrelevant to impact analysis.
package cargo

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/papapumpkin/ripple/internal/pathindex"
)

// ErrNoManifest is returned when the workspace root has no Cargo.toml.
var ErrNoManifest = errors.New("no Cargo.toml manifest")

// ErrNotAWorkspace is returned when the root manifest declares neither a
// [workspace] nor a [package] section.
var ErrNotAWorkspace = errors.New("manifest declares no workspace or package")

// Package is one buildable unit of the workspace. Constructed once per
// run and immutable afterward.
type Package struct {
	// Name is the unique package name within the workspace.
	Name string
	// Dir is the absolute package root, the manifest's parent directory.
	Dir string
	// Manifest is the absolute path of the package's Cargo.toml.
	Manifest string
	// Dependencies holds absolute directories of workspace-internal path
	// dependencies. Directories outside the workspace root are filtered
	// out at load time.
	Dependencies []string
}

// Workspace is the loaded, frozen package graph.
type Workspace struct {
	// Root is the absolute workspace root directory.
	Root string
	// Index maps package directories to packages with longest-prefix
	// ownership semantics.
	Index *pathindex.Index[*Package]
}

// Packages returns all workspace packages sorted by directory.
func (ws *Workspace) Packages() []*Package {
	var pkgs []*Package
	ws.Index.Walk(func(_ string, p *Package) bool {
		pkgs = append(pkgs, p)
		return false
	})
	return pkgs
}

// Names returns every package name in the workspace.
func (ws *Workspace) Names() []string {
	var names []string
	for _, p := range ws.Packages() {
		names = append(names, p.Name)
	}
	return names
}

// manifest mirrors the subset of Cargo.toml this tool reads. Dependency
// tables are decoded as raw values because an entry is either a version
// string or an inline table.
type manifest struct {
	Workspace *struct {
		Members []string `toml:"members"`
		Exclude []string `toml:"exclude"`
	} `toml:"workspace"`
	Package *struct {
		Name string `toml:"name"`
	} `toml:"package"`
	Dependencies      map[string]any `toml:"dependencies"`
	DevDependencies   map[string]any `toml:"dev-dependencies"`
	BuildDependencies map[string]any `toml:"build-dependencies"`
}

func readManifest(path string) (*manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNoManifest, path)
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	var m manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &m, nil
}

// Load reads the workspace rooted at root and builds its package graph.
// Any unreadable or malformed manifest is fatal; there is no
// partial-success mode.
func Load(root string) (*Workspace, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	rootManifest := filepath.Join(root, "Cargo.toml")
	m, err := readManifest(rootManifest)
	if err != nil {
		return nil, err
	}

	memberDirs, err := memberDirs(root, m)
	if err != nil {
		return nil, err
	}

	ws := &Workspace{Root: root, Index: pathindex.New[*Package]()}
	for _, dir := range memberDirs {
		pkg, err := loadPackage(root, dir)
		if err != nil {
			return nil, err
		}
		ws.Index.Insert(pkg.Dir, pkg)
	}
	return ws, nil
}

// memberDirs resolves the root manifest to the list of package
// directories: the workspace members (with * glob patterns expanded and
// the exclude list honored), plus the root itself when it carries a
// [package] section.
func memberDirs(root string, m *manifest) ([]string, error) {
	if m.Workspace == nil && m.Package == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotAWorkspace, filepath.Join(root, "Cargo.toml"))
	}

	var dirs []string
	if m.Package != nil {
		dirs = append(dirs, root)
	}
	if m.Workspace == nil {
		return dirs, nil
	}

	excluded := make(map[string]bool, len(m.Workspace.Exclude))
	for _, e := range m.Workspace.Exclude {
		excluded[filepath.Clean(filepath.Join(root, e))] = true
	}

	for _, member := range m.Workspace.Members {
		pattern := filepath.Join(root, filepath.FromSlash(member))
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("workspace member pattern %q: %w", member, err)
		}
		if matches == nil && !strings.ContainsAny(member, "*?[") {
			// A literal member that does not exist is a broken workspace.
			return nil, fmt.Errorf("%w: workspace member %s", ErrNoManifest, pattern)
		}
		for _, match := range matches {
			match = filepath.Clean(match)
			if excluded[match] {
				continue
			}
			info, err := os.Stat(match)
			if err != nil || !info.IsDir() {
				continue
			}
			if _, err := os.Stat(filepath.Join(match, "Cargo.toml")); err != nil {
				// Glob patterns may sweep up non-package directories.
				if strings.ContainsAny(member, "*?[") {
					continue
				}
				return nil, fmt.Errorf("%w: workspace member %s", ErrNoManifest, match)
			}
			dirs = append(dirs, match)
		}
	}
	return dirs, nil
}

// loadPackage parses one member manifest into a Package, retaining only
// dependency paths contained in the workspace root.
func loadPackage(root, dir string) (*Package, error) {
	manifestPath := filepath.Join(dir, "Cargo.toml")
	m, err := readManifest(manifestPath)
	if err != nil {
		return nil, err
	}
	if m.Package == nil || m.Package.Name == "" {
		return nil, fmt.Errorf("manifest %s: missing package name", manifestPath)
	}

	var deps []string
	for _, table := range []map[string]any{m.Dependencies, m.DevDependencies, m.BuildDependencies} {
		for _, raw := range table {
			p := dependencyPath(raw)
			if p == "" {
				continue
			}
			abs := filepath.Clean(filepath.Join(dir, filepath.FromSlash(p)))
			if underRoot(root, abs) {
				deps = append(deps, abs)
			}
		}
	}

	return &Package{
		Name:         m.Package.Name,
		Dir:          dir,
		Manifest:     manifestPath,
		Dependencies: deps,
	}, nil
}

// dependencyPath extracts the path key from a dependency entry. Entries
// are either a bare version string (registry dependency, no path) or an
// inline table that may carry path = "...".
func dependencyPath(raw any) string {
	table, ok := raw.(map[string]any)
	if !ok {
		return ""
	}
	p, _ := table["path"].(string)
	return p
}

// underRoot reports whether path lies at or below root, matching on
// whole path components.
func underRoot(root, path string) bool {
	if path == root {
		return true
	}
	return strings.HasPrefix(path, root+string(filepath.Separator))
}
