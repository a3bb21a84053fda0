package repo

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"grit/pkg/object"
)

// ErrPathNotStaged indicates an unstage request for a path with no index
// entry.
var ErrPathNotStaged = errors.New("path not staged")

// Staging holds the full staging area (index): what the next commit will
// contain, as a mapping from repo-relative path to blob hash. At most one
// entry exists per path.
type Staging struct {
	Entries map[string]object.Hash `json:"entries"`
}

// NewStaging returns an empty staging area.
func NewStaging() *Staging {
	return &Staging{Entries: make(map[string]object.Hash)}
}

// Stage inserts or overwrites the entry for path.
func (s *Staging) Stage(path string, h object.Hash) {
	s.Entries[path] = h
}

// Unstage removes the entry for path.
func (s *Staging) Unstage(path string) error {
	if _, ok := s.Entries[path]; !ok {
		return fmt.Errorf("unstage %q: %w", path, ErrPathNotStaged)
	}
	delete(s.Entries, path)
	return nil
}

// Snapshot returns a copy of the staged path -> blob-hash mapping.
func (s *Staging) Snapshot() map[string]object.Hash {
	out := make(map[string]object.Hash, len(s.Entries))
	for p, h := range s.Entries {
		out[p] = h
	}
	return out
}

// indexPath returns the filesystem path to the staging index file.
func (r *Repo) indexPath() string {
	return filepath.Join(r.GritDir, "index")
}

// ReadStaging loads the staging area from .grit/index. If the file does not
// exist, an empty Staging is returned (no error).
func (r *Repo) ReadStaging() (*Staging, error) {
	data, err := os.ReadFile(r.indexPath())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return NewStaging(), nil
		}
		return nil, fmt.Errorf("read staging: %w", err)
	}

	var stg Staging
	if err := json.Unmarshal(data, &stg); err != nil {
		return nil, fmt.Errorf("read staging: unmarshal: %w", err)
	}
	if stg.Entries == nil {
		stg.Entries = make(map[string]object.Hash)
	}
	return &stg, nil
}

// WriteStaging atomically writes the staging area to .grit/index.
func (r *Repo) WriteStaging(s *Staging) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("write staging: marshal: %w", err)
	}
	if err := atomicWriteFile(r.indexPath(), data); err != nil {
		return fmt.Errorf("write staging: %w", err)
	}
	return nil
}

// ResetStagingToTree replaces the entire staging area with the flattened
// path -> blob-hash view of the given tree, so the index matches a freshly
// checked-out commit exactly.
func (r *Repo) ResetStagingToTree(treeHash object.Hash) error {
	stg := NewStaging()
	if treeHash != "" {
		files, err := r.FlattenTree(treeHash)
		if err != nil {
			return fmt.Errorf("reset staging: %w", err)
		}
		for _, f := range files {
			stg.Stage(f.Path, f.BlobHash)
		}
	}
	return r.WriteStaging(stg)
}

// Add stages the given paths. Files are hashed and stored as blobs;
// directories are walked recursively. Ignored paths are skipped.
func (r *Repo) Add(paths []string) error {
	stg, err := r.ReadStaging()
	if err != nil {
		return fmt.Errorf("add: %w", err)
	}

	ic := NewIgnoreChecker(r.RootDir)

	for _, p := range paths {
		relPath, err := r.repoRelPath(p)
		if err != nil {
			return fmt.Errorf("add: resolve path %q: %w", p, err)
		}

		absPath := filepath.Join(r.RootDir, filepath.FromSlash(relPath))
		info, err := os.Stat(absPath)
		if err != nil {
			return fmt.Errorf("add: stat %q: %w", relPath, err)
		}

		if info.IsDir() {
			if err := r.addDir(stg, ic, relPath); err != nil {
				return fmt.Errorf("add: %w", err)
			}
			continue
		}

		if ic.IsIgnored(relPath) {
			continue
		}
		if err := r.stageFile(stg, relPath); err != nil {
			return fmt.Errorf("add: %w", err)
		}
	}

	if err := r.WriteStaging(stg); err != nil {
		return fmt.Errorf("add: %w", err)
	}
	return nil
}

// addDir stages every non-ignored file under the given repo-relative
// directory.
func (r *Repo) addDir(stg *Staging, ic *IgnoreChecker, relDir string) error {
	absDir := r.RootDir
	if relDir != "." {
		absDir = filepath.Join(r.RootDir, filepath.FromSlash(relDir))
	}

	return filepath.WalkDir(absDir, func(path string, d fs.DirEntry, walkErr error) error {
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
		if d.IsDir() {
			return nil
		}
		return r.stageFile(stg, rel)
	})
}

// stageFile writes the file's content as a blob and records it in staging.
func (r *Repo) stageFile(stg *Staging, relPath string) error {
	absPath := filepath.Join(r.RootDir, filepath.FromSlash(relPath))
	content, err := os.ReadFile(absPath)
	if err != nil {
		return fmt.Errorf("read %q: %w", relPath, err)
	}

	blobHash, err := r.Store.WriteBlob(&object.Blob{Data: content})
	if err != nil {
		return fmt.Errorf("write blob %q: %w", relPath, err)
	}

	stg.Stage(relPath, blobHash)
	return nil
}

// Remove unstages the given paths. When cached is false the files are also
// deleted from the working directory.
func (r *Repo) Remove(paths []string, cached bool) error {
	stg, err := r.ReadStaging()
	if err != nil {
		return fmt.Errorf("remove: %w", err)
	}

	for _, p := range paths {
		relPath, err := r.repoRelPath(p)
		if err != nil {
			return fmt.Errorf("remove: resolve path %q: %w", p, err)
		}

		if err := stg.Unstage(relPath); err != nil {
			return fmt.Errorf("remove: %w", err)
		}

		if !cached {
			absPath := filepath.Join(r.RootDir, filepath.FromSlash(relPath))
			if err := os.Remove(absPath); err != nil && !os.IsNotExist(err) {
				return fmt.Errorf("remove %q: %w", relPath, err)
			}
		}
	}

	if err := r.WriteStaging(stg); err != nil {
		return fmt.Errorf("remove: %w", err)
	}
	return nil
}

// repoRelPath converts a path (absolute, or relative to CWD) into a
// forward-slash path relative to the repository root. Paths that cannot be
// resolved against the root are treated as already repo-relative.
func (r *Repo) repoRelPath(p string) (string, error) {
	if filepath.IsAbs(p) {
		rel, err := filepath.Rel(r.RootDir, p)
		if err != nil {
			return "", fmt.Errorf("cannot make %q relative to %q: %w", p, r.RootDir, err)
		}
		return filepath.ToSlash(rel), nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return filepath.ToSlash(filepath.Clean(p)), nil
	}

	abs := filepath.Join(cwd, p)
	rel, err := filepath.Rel(r.RootDir, abs)
	if err != nil {
		return filepath.ToSlash(filepath.Clean(p)), nil
	}
	if len(rel) >= 2 && rel[:2] == ".." {
		return filepath.ToSlash(filepath.Clean(p)), nil
	}
	return filepath.ToSlash(rel), nil
}
