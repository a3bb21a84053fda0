package repo

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"grit/pkg/object"
)

// ErrBranchAlreadyExists indicates an attempt to create a branch whose name
// is already taken.
var ErrBranchAlreadyExists = errors.New("branch already exists")

// CreateBranch creates a new branch pointing at the given target hash. The
// target may be the empty hash in a repository with no commits yet.
func (r *Repo) CreateBranch(name string, target object.Hash) error {
	refPath := filepath.Join(r.GritDir, "refs", "heads", name)
	if _, err := os.Stat(refPath); err == nil {
		return fmt.Errorf("create branch %q: %w", name, ErrBranchAlreadyExists)
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("create branch %q: %w", name, err)
	}

	refName := "refs/heads/" + name
	if err := r.UpdateRefCAS(refName, target, ""); err != nil {
		if errors.Is(err, ErrRefCASMismatch) {
			return fmt.Errorf("create branch %q: %w", name, ErrBranchAlreadyExists)
		}
		return fmt.Errorf("create branch %q: %w", name, err)
	}
	return nil
}

// AdvanceBranch moves the named branch tip to the given commit hash.
// When expectedOld is provided the move is a compare-and-swap against the
// current tip.
func (r *Repo) AdvanceBranch(name string, to object.Hash, expectedOld ...object.Hash) error {
	refPath := filepath.Join(r.GritDir, "refs", "heads", name)
	if _, err := os.Stat(refPath); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("advance branch %q: %w", name, ErrUnknownBranch)
		}
		return fmt.Errorf("advance branch %q: %w", name, err)
	}
	return r.UpdateRefCAS("refs/heads/"+name, to, expectedOld...)
}

// DeleteBranch removes the branch ref file .grit/refs/heads/<name>.
// Returns an error if the branch is the current branch or does not exist.
func (r *Repo) DeleteBranch(name string) error {
	current, err := r.CurrentBranch()
	if err != nil {
		return fmt.Errorf("delete branch: %w", err)
	}
	if current == name {
		return fmt.Errorf("delete branch: cannot delete current branch %q", name)
	}

	refPath := filepath.Join(r.GritDir, "refs", "heads", name)
	if err := os.Remove(refPath); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("delete branch %q: %w", name, ErrUnknownBranch)
		}
		return fmt.Errorf("delete branch %q: %w", name, err)
	}
	return nil
}

// ListBranches reads .grit/refs/heads/ and returns the branch names sorted
// alphabetically.
func (r *Repo) ListBranches() ([]string, error) {
	headsDir := filepath.Join(r.GritDir, "refs", "heads")

	entries, err := os.ReadDir(headsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("list branches: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) == ".lock" {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}
