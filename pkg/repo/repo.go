package repo

import (
	"fmt"
	"os"
	"path/filepath"

	"grit/pkg/object"
)

// Repo represents an opened grit repository. All operations take the
// repository context explicitly; there is no process-wide repository state.
type Repo struct {
	RootDir string        // working directory root
	GritDir string        // .grit/ directory
	Store   *object.Store // content-addressed object store
}

// Init creates a new grit repository at path. It creates the .grit/
// directory structure: HEAD, objects/, refs/heads/, logs/, the empty
// staging index, and a default config. Returns an error if a .grit/
// directory already exists.
func Init(path string) (*Repo, error) {
	gritDir := filepath.Join(path, ".grit")

	if _, err := os.Stat(gritDir); err == nil {
		return nil, fmt.Errorf("init: repository already exists at %s", gritDir)
	}

	dirs := []string{
		filepath.Join(gritDir, "objects"),
		filepath.Join(gritDir, "refs", "heads"),
		filepath.Join(gritDir, "logs", "refs", "heads"),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return nil, fmt.Errorf("init: mkdir %s: %w", d, err)
		}
	}

	store, err := object.NewStore(gritDir)
	if err != nil {
		return nil, fmt.Errorf("init: %w", err)
	}
	r := &Repo{RootDir: path, GritDir: gritDir, Store: store}

	cfg := DefaultConfig()
	if err := r.WriteConfig(cfg); err != nil {
		return nil, fmt.Errorf("init: %w", err)
	}

	branch := cfg.Core.DefaultBranch
	headPath := filepath.Join(gritDir, "HEAD")
	if err := os.WriteFile(headPath, []byte("ref: refs/heads/"+branch+"\n"), 0o644); err != nil {
		return nil, fmt.Errorf("init: write HEAD: %w", err)
	}

	// The default branch exists from the start, with no commits yet.
	refPath := filepath.Join(gritDir, "refs", "heads", branch)
	if err := os.WriteFile(refPath, []byte("\n"), 0o644); err != nil {
		return nil, fmt.Errorf("init: write %s ref: %w", branch, err)
	}

	if err := r.WriteStaging(NewStaging()); err != nil {
		return nil, fmt.Errorf("init: %w", err)
	}

	return r, nil
}

// Open searches upward from path for a .grit/ directory and opens the
// repository. Returns an error if no .grit/ directory is found.
func Open(path string) (*Repo, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("open: abs path: %w", err)
	}

	cur := abs
	for {
		gritDir := filepath.Join(cur, ".grit")
		info, err := os.Stat(gritDir)
		if err == nil && info.IsDir() {
			store, err := object.NewStore(gritDir)
			if err != nil {
				return nil, fmt.Errorf("open: %w", err)
			}
			return &Repo{RootDir: cur, GritDir: gritDir, Store: store}, nil
		}

		parent := filepath.Dir(cur)
		if parent == cur {
			return nil, fmt.Errorf("open: not a grit repository (or any parent up to /)")
		}
		cur = parent
	}
}

// atomicWriteFile writes data to a temp file in the same directory as dest
// and renames it into place, so readers never observe a partial write.
func atomicWriteFile(dest string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(dest), "."+filepath.Base(dest)+"-tmp-*")
	if err != nil {
		return fmt.Errorf("tmpfile: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close: %w", err)
	}
	if err := os.Rename(tmpName, dest); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}
