package repo

import (
	"fmt"
	"sort"

	"grit/pkg/object"
)

// ChangeKind classifies a path-level difference between two snapshots.
type ChangeKind int

const (
	ChangeAdded ChangeKind = iota
	ChangeRemoved
	ChangeModified
)

func (k ChangeKind) String() string {
	switch k {
	case ChangeAdded:
		return "added"
	case ChangeRemoved:
		return "removed"
	case ChangeModified:
		return "modified"
	default:
		return "unknown"
	}
}

// ChangeEntry records one changed path between two snapshots.
type ChangeEntry struct {
	Path string
	Kind ChangeKind
}

// DiffCommits compares the trees of two commits and returns the paths that
// were added, removed, or modified going from a to b, sorted by path.
// Content comparison is by blob hash.
func (r *Repo) DiffCommits(a, b object.Hash) ([]ChangeEntry, error) {
	aFiles, err := r.commitFiles(a)
	if err != nil {
		return nil, fmt.Errorf("diff: %w", err)
	}
	bFiles, err := r.commitFiles(b)
	if err != nil {
		return nil, fmt.Errorf("diff: %w", err)
	}

	var changes []ChangeEntry
	for path, aHash := range aFiles {
		bHash, ok := bFiles[path]
		switch {
		case !ok:
			changes = append(changes, ChangeEntry{Path: path, Kind: ChangeRemoved})
		case aHash != bHash:
			changes = append(changes, ChangeEntry{Path: path, Kind: ChangeModified})
		}
	}
	for path := range bFiles {
		if _, ok := aFiles[path]; !ok {
			changes = append(changes, ChangeEntry{Path: path, Kind: ChangeAdded})
		}
	}

	sort.Slice(changes, func(i, j int) bool { return changes[i].Path < changes[j].Path })
	return changes, nil
}

// commitFiles returns the flattened path -> blob-hash view of a commit's
// tree. The empty hash (a branch with no commits) yields an empty map.
func (r *Repo) commitFiles(h object.Hash) (map[string]object.Hash, error) {
	files := make(map[string]object.Hash)
	if h == "" {
		return files, nil
	}

	commit, err := r.Store.ReadCommit(h)
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
