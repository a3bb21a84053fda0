package repo

import (
	"fmt"
	"path"
	"sort"
	"strings"

	"grit/pkg/object"
)

// TreeFileEntry represents a single file in a flattened tree.
type TreeFileEntry struct {
	Path     string
	BlobHash object.Hash
}

// BuildTree converts the flat staging entries into a hierarchical tree
// structure, writing Tree objects to the store bottom-up and returning the
// root hash. An empty staging area yields the empty tree, which is the
// valid initial state of a fresh repository.
//
// Because trees are content-addressed and every recursive call writes via
// the store, identical subdirectories across commits deduplicate to the
// same tree object.
func (r *Repo) BuildTree(s *Staging) (object.Hash, error) {
	return r.buildTreeDir(s, "")
}

// buildTreeDir builds a Tree for the given directory prefix and writes it
// to the store. It returns the tree's hash.
func (r *Repo) buildTreeDir(s *Staging, prefix string) (object.Hash, error) {
	// Collect direct children: files and subdirectory names.
	files := make(map[string]object.Hash) // name -> blob hash
	subdirs := make(map[string]struct{})  // immediate child dir names

	for p, blobHash := range s.Entries {
		var rel string
		if prefix == "" {
			rel = p
		} else {
			if !strings.HasPrefix(p, prefix+"/") {
				continue
			}
			rel = p[len(prefix)+1:]
		}

		slash := strings.IndexByte(rel, '/')
		if slash < 0 {
			files[rel] = blobHash
		} else {
			subdirs[rel[:slash]] = struct{}{}
		}
	}

	names := make([]string, 0, len(files)+len(subdirs))
	for name := range files {
		names = append(names, name)
	}
	for name := range subdirs {
		// A name cannot be both a file and a directory. Add never stages
		// such a pair, but Stage is exported and could.
		if _, isFile := files[name]; isFile {
			full := name
			if prefix != "" {
				full = prefix + "/" + name
			}
			return "", fmt.Errorf("build tree: %q staged as both a file and a directory", full)
		}
		names = append(names, name)
	}
	sort.Strings(names)

	var entries []object.TreeEntry
	for _, name := range names {
		if blobHash, isFile := files[name]; isFile {
			entries = append(entries, object.TreeEntry{
				Name: name,
				Kind: object.KindBlob,
				Hash: blobHash,
			})
		} else {
			childPrefix := name
			if prefix != "" {
				childPrefix = prefix + "/" + name
			}
			subHash, err := r.buildTreeDir(s, childPrefix)
			if err != nil {
				return "", fmt.Errorf("build tree %q: %w", childPrefix, err)
			}
			entries = append(entries, object.TreeEntry{
				Name: name,
				Kind: object.KindTree,
				Hash: subHash,
			})
		}
	}

	tree := &object.Tree{Entries: entries}
	h, err := r.Store.WriteTree(tree)
	if err != nil {
		return "", fmt.Errorf("write tree (prefix=%q): %w", prefix, err)
	}
	return h, nil
}

// FlattenTree walks a tree object recursively, returning all file entries
// with their full paths (using forward slashes).
func (r *Repo) FlattenTree(h object.Hash) ([]TreeFileEntry, error) {
	return r.flattenTreeRec(h, "")
}

func (r *Repo) flattenTreeRec(h object.Hash, prefix string) ([]TreeFileEntry, error) {
	tree, err := r.Store.ReadTree(h)
	if err != nil {
		return nil, fmt.Errorf("flatten tree: read %s: %w", h, err)
	}

	var result []TreeFileEntry
	for _, entry := range tree.Entries {
		fullPath := entry.Name
		if prefix != "" {
			fullPath = path.Join(prefix, entry.Name)
		}

		if entry.Kind == object.KindTree {
			sub, err := r.flattenTreeRec(entry.Hash, fullPath)
			if err != nil {
				return nil, err
			}
			result = append(result, sub...)
		} else {
			result = append(result, TreeFileEntry{
				Path:     fullPath,
				BlobHash: entry.Hash,
			})
		}
	}
	return result, nil
}
