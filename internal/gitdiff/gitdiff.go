// Package gitdiff lists the source-relevant files changed in a git
// repository: by default the diff between HEAD and its first parent, or
// between an arbitrary revision and HEAD.
package gitdiff

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// DefaultExtensions are the file extensions considered source-relevant
// when no override is configured.
var DefaultExtensions = []string{"rs", "c", "cpp", "h", "hpp", "cc", "cxx", "toml"}

// Considered reports whether path has one of the given extensions
// (case-insensitive, without the leading dot). Files with no extension
// are never considered.
func Considered(path string, extensions []string) bool {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	if ext == "" {
		return false
	}
	for _, e := range extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// ChangedFiles returns the absolute paths of considered files that
// differ between the base revision and HEAD. With an empty since, the
// base is HEAD's first parent. The repository is discovered at dir or
// any of its ancestors. An empty result is valid: nothing relevant
// changed.
func ChangedFiles(dir, since string, extensions []string) ([]string, error) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("opening repository at %s: %w", dir, err)
	}

	wt, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("resolving worktree: %w", err)
	}
	repoRoot := wt.Filesystem.Root()

	headRef, err := repo.Head()
	if err != nil {
		return nil, fmt.Errorf("resolving HEAD: %w", err)
	}
	head, err := repo.CommitObject(headRef.Hash())
	if err != nil {
		return nil, err
	}

	base, err := baseCommit(repo, head, since)
	if err != nil {
		return nil, err
	}

	baseTree, err := base.Tree()
	if err != nil {
		return nil, err
	}
	headTree, err := head.Tree()
	if err != nil {
		return nil, err
	}

	changes, err := object.DiffTree(baseTree, headTree)
	if err != nil {
		return nil, fmt.Errorf("diffing %s against HEAD: %w", base.Hash, err)
	}

	seen := make(map[string]bool)
	var files []string
	for _, change := range changes {
		// Renames carry distinct From and To names; either side touching
		// a considered file marks it changed.
		for _, name := range []string{change.From.Name, change.To.Name} {
			if name == "" || seen[name] || !Considered(name, extensions) {
				continue
			}
			seen[name] = true
			files = append(files, filepath.Join(repoRoot, filepath.FromSlash(name)))
		}
	}
	sort.Strings(files)
	return files, nil
}

func baseCommit(repo *git.Repository, head *object.Commit, since string) (*object.Commit, error) {
	if since == "" {
		parent, err := head.Parent(0)
		if err != nil {
			return nil, fmt.Errorf("HEAD has no parent to diff against: %w", err)
		}
		return parent, nil
	}
	hash, err := repo.ResolveRevision(plumbing.Revision(since))
	if err != nil {
		return nil, fmt.Errorf("resolving revision %q: %w", since, err)
	}
	commit, err := repo.CommitObject(*hash)
	if err != nil {
		return nil, fmt.Errorf("revision %q is not a commit: %w", since, err)
	}
	return commit, nil
}
