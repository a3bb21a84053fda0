package repo

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"grit/pkg/object"
)

// ErrDirtyWorkdir indicates a checkout that would silently overwrite
// uncommitted changes.
var ErrDirtyWorkdir = errors.New("working directory has uncommitted changes")

// Checkout switches the working directory to the state of the target.
// The target can be a branch name or a raw commit hash.
//
// Algorithm:
//  1. Refuse if uncommitted staged or working changes exist.
//  2. Resolve target: branch name first, then raw commit hash.
//  3. Flatten the target commit's tree.
//  4. Remove all tracked files, then materialize the target tree's blobs.
//  5. Reset the staging area to match the target tree exactly.
//  6. Update HEAD (symbolic ref for a branch, raw hash for detached).
func (r *Repo) Checkout(target string) error {
	if err := r.ensureClean(); err != nil {
		return fmt.Errorf("checkout: %w", err)
	}

	isBranch := false
	var targetHash object.Hash

	branchHash, err := r.ResolveRef("refs/heads/" + target)
	if err == nil {
		targetHash = branchHash
		isBranch = true
	} else if !errors.Is(err, ErrUnknownBranch) {
		return fmt.Errorf("checkout: %w", err)
	} else {
		targetHash = object.Hash(target)
	}

	// A branch with no commits yet checks out as the empty tree.
	var targetTree object.Hash
	var targetFiles []TreeFileEntry
	if targetHash != "" {
		commit, err := r.Store.ReadCommit(targetHash)
		if err != nil {
			return fmt.Errorf("checkout: cannot read commit %s: %w", targetHash, err)
		}
		targetTree = commit.TreeHash
		targetFiles, err = r.FlattenTree(targetTree)
		if err != nil {
			return fmt.Errorf("checkout: flatten target tree: %w", err)
		}
	}

	// Untracked files are tolerated unless the target tree would land on
	// top of one.
	if err := r.ensureNoUntrackedCollisions(targetFiles); err != nil {
		return fmt.Errorf("checkout: %w", err)
	}

	// Load every target blob up front. A missing or corrupt object must
	// abort before the working directory is touched.
	contents := make(map[string][]byte, len(targetFiles))
	for _, f := range targetFiles {
		blob, err := r.Store.ReadBlob(f.BlobHash)
		if err != nil {
			return fmt.Errorf("checkout: read blob for %q: %w", f.Path, err)
		}
		contents[f.Path] = blob.Data
	}

	// Remove everything currently tracked; the target tree is written fresh.
	for path := range r.trackedFiles() {
		absPath := filepath.Join(r.RootDir, filepath.FromSlash(path))
		if err := os.Remove(absPath); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("checkout: remove %q: %w", path, err)
		}
		r.removeEmptyParents(filepath.Dir(absPath))
	}

	for _, f := range targetFiles {
		absPath := filepath.Join(r.RootDir, filepath.FromSlash(f.Path))

		if err := os.MkdirAll(filepath.Dir(absPath), 0o755); err != nil {
			return fmt.Errorf("checkout: mkdir %q: %w", filepath.Dir(absPath), err)
		}
		if err := atomicWriteFile(absPath, contents[f.Path]); err != nil {
			return fmt.Errorf("checkout: write %q: %w", f.Path, err)
		}
	}

	if err := r.ResetStagingToTree(targetTree); err != nil {
		return fmt.Errorf("checkout: %w", err)
	}

	if isBranch {
		if err := r.SetHead(target); err != nil {
			return fmt.Errorf("checkout: %w", err)
		}
	} else {
		if err := r.SetHeadDetached(targetHash); err != nil {
			return fmt.Errorf("checkout: %w", err)
		}
	}

	return nil
}

// ensureClean refuses when staged changes relative to HEAD, or working-tree
// changes relative to staging, exist. Untracked files do not count; they
// are handled by the collision check.
func (r *Repo) ensureClean() error {
	entries, err := r.Status()
	if err != nil {
		return fmt.Errorf("check status: %w", err)
	}

	for _, e := range entries {
		if e.IndexStatus == StatusUntracked {
			continue
		}
		if e.IndexStatus != StatusClean || e.WorkStatus != StatusClean {
			return fmt.Errorf("%q has uncommitted changes: %w", e.Path, ErrDirtyWorkdir)
		}
	}
	return nil
}

// ensureNoUntrackedCollisions refuses when the target tree contains a path
// that exists on disk but is untracked, since checkout would overwrite it.
func (r *Repo) ensureNoUntrackedCollisions(targetFiles []TreeFileEntry) error {
	if len(targetFiles) == 0 {
		return nil
	}

	stg, err := r.ReadStaging()
	if err != nil {
		return err
	}
	workFiles, err := r.workTreeFiles()
	if err != nil {
		return err
	}

	for _, f := range targetFiles {
		if workFiles[f.Path] {
			if _, tracked := stg.Entries[f.Path]; !tracked {
				return fmt.Errorf("untracked file %q would be overwritten: %w", f.Path, ErrDirtyWorkdir)
			}
		}
	}
	return nil
}

// trackedFiles returns the set of all currently tracked file paths, merging
// the HEAD tree and the staging index.
func (r *Repo) trackedFiles() map[string]bool {
	files := make(map[string]bool)

	headFiles, err := r.headTreeFiles()
	if err == nil {
		for path := range headFiles {
			files[path] = true
		}
	}

	stg, err := r.ReadStaging()
	if err == nil {
		for path := range stg.Entries {
			files[path] = true
		}
	}

	return files
}

// removeEmptyParents removes empty directories up to (but not including)
// the repository root.
func (r *Repo) removeEmptyParents(dir string) {
	for {
		if dir == r.RootDir || !strings.HasPrefix(dir, r.RootDir) {
			return
		}

		entries, err := os.ReadDir(dir)
		if err != nil || len(entries) > 0 {
			return
		}

		os.Remove(dir)
		dir = filepath.Dir(dir)
	}
}
