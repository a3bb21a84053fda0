package repo

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"grit/pkg/object"
)

// FileStatus represents the state of a file in the working tree or index.
type FileStatus int

const (
	StatusClean     FileStatus = iota // file matches between compared areas
	StatusNew                         // in staging, not in HEAD tree
	StatusModified                    // in staging, different from HEAD
	StatusDeleted                     // tracked but absent on the other side
	StatusUntracked                   // on disk but not in staging
	StatusDirty                       // staged but working copy differs from staged
)

// StatusEntry records the status of a single file.
type StatusEntry struct {
	Path        string     // repo-relative path
	IndexStatus FileStatus // staging vs HEAD comparison
	WorkStatus  FileStatus // working tree vs staging comparison
}

// Status computes the working tree status for the repository.
//
// Comparisons are strictly by content hash, never by timestamps, so a
// touch-without-modify never shows up as a change.
func (r *Repo) Status() ([]StatusEntry, error) {
	stg, err := r.ReadStaging()
	if err != nil {
		return nil, fmt.Errorf("status: %w", err)
	}

	headFiles, err := r.headTreeFiles()
	if err != nil {
		return nil, fmt.Errorf("status: %w", err)
	}

	workFiles, err := r.workTreeFiles()
	if err != nil {
		return nil, fmt.Errorf("status: %w", err)
	}

	result := make(map[string]*StatusEntry)
	entry := func(path string) *StatusEntry {
		e, ok := result[path]
		if !ok {
			e = &StatusEntry{Path: path}
			result[path] = e
		}
		return e
	}

	// Staging vs HEAD.
	for path, stagedHash := range stg.Entries {
		headHash, inHead := headFiles[path]
		switch {
		case !inHead:
			entry(path).IndexStatus = StatusNew
		case headHash != stagedHash:
			entry(path).IndexStatus = StatusModified
		}
	}
	for path := range headFiles {
		if _, staged := stg.Entries[path]; !staged {
			entry(path).IndexStatus = StatusDeleted
		}
	}

	// Working tree vs staging. A path that already carries an index status
	// (a staged deletion of a HEAD file still on disk) keeps it; only paths
	// unknown to both HEAD and staging are untracked.
	for path := range workFiles {
		stagedHash, staged := stg.Entries[path]
		if !staged {
			if e := entry(path); e.IndexStatus == StatusClean {
				e.IndexStatus = StatusUntracked
			}
			continue
		}
		diskHash, err := r.hashWorkFile(path)
		if err != nil {
			return nil, fmt.Errorf("status: %w", err)
		}
		if diskHash != stagedHash {
			entry(path).WorkStatus = StatusDirty
		}
	}
	for path := range stg.Entries {
		if !workFiles[path] {
			entry(path).WorkStatus = StatusDeleted
		}
	}

	entries := make([]StatusEntry, 0, len(result))
	for _, e := range result {
		if e.IndexStatus == StatusClean && e.WorkStatus == StatusClean {
			continue
		}
		entries = append(entries, *e)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Path < entries[j].Path })
	return entries, nil
}

// DiffAgainstTree compares current on-disk file contents against the tree's
// flattened path -> blob-hash view and returns the set of changed paths:
// files that differ, files missing from disk, and files on disk that the
// tree does not contain.
func (r *Repo) DiffAgainstTree(treeHash object.Hash) (map[string]bool, error) {
	treeFiles := make(map[string]object.Hash)
	if treeHash != "" {
		files, err := r.FlattenTree(treeHash)
		if err != nil {
			return nil, fmt.Errorf("diff against tree: %w", err)
		}
		for _, f := range files {
			treeFiles[f.Path] = f.BlobHash
		}
	}

	workFiles, err := r.workTreeFiles()
	if err != nil {
		return nil, fmt.Errorf("diff against tree: %w", err)
	}

	changed := make(map[string]bool)
	for path, want := range treeFiles {
		if !workFiles[path] {
			changed[path] = true
			continue
		}
		diskHash, err := r.hashWorkFile(path)
		if err != nil {
			return nil, fmt.Errorf("diff against tree: %w", err)
		}
		if diskHash != want {
			changed[path] = true
		}
	}
	for path := range workFiles {
		if _, ok := treeFiles[path]; !ok {
			changed[path] = true
		}
	}
	return changed, nil
}

// headTreeFiles returns the flattened path -> blob-hash view of the current
// HEAD commit's tree. A repository with no commits yields an empty map.
func (r *Repo) headTreeFiles() (map[string]object.Hash, error) {
	files := make(map[string]object.Hash)

	headHash, err := r.ResolveRef("HEAD")
	if err != nil {
		if errors.Is(err, ErrUnknownBranch) {
			return files, nil
		}
		return nil, err
	}
	if headHash == "" {
		return files, nil
	}

	commit, err := r.Store.ReadCommit(headHash)
	if err != nil {
		return nil, err
	}
	flat, err := r.FlattenTree(commit.TreeHash)
	if err != nil {
		return nil, err
	}
	for _, f := range flat {
		files[f.Path] = f.BlobHash
	}
	return files, nil
}

// workTreeFiles walks the working directory and returns the set of
// non-ignored regular files as repo-relative paths.
func (r *Repo) workTreeFiles() (map[string]bool, error) {
	ic := NewIgnoreChecker(r.RootDir)
	files := make(map[string]bool)

	err := filepath.WalkDir(r.RootDir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}

		rel, err := filepath.Rel(r.RootDir, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if rel == "." {
			return nil
		}

		if ic.IsIgnored(rel) {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if !d.IsDir() {
			files[rel] = true
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk: %w", err)
	}
	return files, nil
}

// hashWorkFile hashes an on-disk file the way the store would hash its blob.
func (r *Repo) hashWorkFile(relPath string) (object.Hash, error) {
	content, err := os.ReadFile(filepath.Join(r.RootDir, filepath.FromSlash(relPath)))
	if err != nil {
		return "", fmt.Errorf("read %q: %w", relPath, err)
	}
	return object.HashObject(object.TypeBlob, content), nil
}
