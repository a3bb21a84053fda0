package repo

import (
	"os"
	"path/filepath"
	"testing"
)

func statusByPath(t *testing.T, r *Repo) map[string]StatusEntry {
	t.Helper()
	entries, err := r.Status()
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	m := make(map[string]StatusEntry, len(entries))
	for _, e := range entries {
		m[e.Path] = e
	}
	return m
}

func TestStatus_CleanAfterCommit(t *testing.T) {
	r := initTestRepo(t)
	commitFile(t, r, "a.txt", "content", "first")

	entries, err := r.Status()
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("status reports %d entries on a clean tree: %+v", len(entries), entries)
	}
}

func TestStatus_NewFile(t *testing.T) {
	r := initTestRepo(t)
	commitFile(t, r, "a.txt", "base", "first")

	writeWorkFile(t, r, "new.txt", "fresh")
	if err := r.Add([]string{"new.txt"}); err != nil {
		t.Fatalf("Add: %v", err)
	}

	st := statusByPath(t, r)
	e, ok := st["new.txt"]
	if !ok {
		t.Fatal("new.txt missing from status")
	}
	if e.IndexStatus != StatusNew {
		t.Errorf("IndexStatus = %d, want StatusNew", e.IndexStatus)
	}
}

func TestStatus_ModifiedStaged(t *testing.T) {
	r := initTestRepo(t)
	commitFile(t, r, "a.txt", "v1", "first")

	writeWorkFile(t, r, "a.txt", "v2")
	if err := r.Add([]string{"a.txt"}); err != nil {
		t.Fatalf("Add: %v", err)
	}

	st := statusByPath(t, r)
	if st["a.txt"].IndexStatus != StatusModified {
		t.Errorf("IndexStatus = %d, want StatusModified", st["a.txt"].IndexStatus)
	}
}

func TestStatus_DeletedFromIndex(t *testing.T) {
	r := initTestRepo(t)
	commitFile(t, r, "a.txt", "content", "first")

	if err := r.Remove([]string{"a.txt"}, false); err != nil {
		t.Fatalf("Remove: %v", err)
	}

	st := statusByPath(t, r)
	if st["a.txt"].IndexStatus != StatusDeleted {
		t.Errorf("IndexStatus = %d, want StatusDeleted", st["a.txt"].IndexStatus)
	}
}

// A cached removal keeps the file on disk. The staged deletion must stay
// visible as deleted, not be masked as an untracked file.
func TestStatus_CachedRemovalStaysDeleted(t *testing.T) {
	r := initTestRepo(t)
	commitFile(t, r, "a.txt", "content", "first")

	if err := r.Remove([]string{"a.txt"}, true); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if !workFileExists(r, "a.txt") {
		t.Fatal("cached Remove deleted the working file")
	}

	st := statusByPath(t, r)
	if st["a.txt"].IndexStatus != StatusDeleted {
		t.Errorf("IndexStatus = %d, want StatusDeleted", st["a.txt"].IndexStatus)
	}
}

func TestStatus_DirtyWorktree(t *testing.T) {
	r := initTestRepo(t)
	commitFile(t, r, "a.txt", "committed", "first")

	writeWorkFile(t, r, "a.txt", "edited but not staged")

	st := statusByPath(t, r)
	e, ok := st["a.txt"]
	if !ok {
		t.Fatal("a.txt missing from status")
	}
	if e.WorkStatus != StatusDirty {
		t.Errorf("WorkStatus = %d, want StatusDirty", e.WorkStatus)
	}
	if e.IndexStatus != StatusClean {
		t.Errorf("IndexStatus = %d, want StatusClean", e.IndexStatus)
	}
}

func TestStatus_WorkFileDeleted(t *testing.T) {
	r := initTestRepo(t)
	commitFile(t, r, "a.txt", "content", "first")

	// Delete from disk without touching the staging area.
	if err := os.Remove(filepath.Join(r.RootDir, "a.txt")); err != nil {
		t.Fatalf("remove work file: %v", err)
	}

	st := statusByPath(t, r)
	if st["a.txt"].WorkStatus != StatusDeleted {
		t.Errorf("WorkStatus = %d, want StatusDeleted", st["a.txt"].WorkStatus)
	}
}

func TestStatus_Untracked(t *testing.T) {
	r := initTestRepo(t)
	commitFile(t, r, "a.txt", "content", "first")

	writeWorkFile(t, r, "scratch.txt", "not staged")

	st := statusByPath(t, r)
	if st["scratch.txt"].IndexStatus != StatusUntracked {
		t.Errorf("IndexStatus = %d, want StatusUntracked", st["scratch.txt"].IndexStatus)
	}
}

// Status compares by content hash, so rewriting identical bytes never shows
// as a change even though the mtime moved.
func TestStatus_TouchWithoutModify(t *testing.T) {
	r := initTestRepo(t)
	commitFile(t, r, "a.txt", "same content", "first")

	writeWorkFile(t, r, "a.txt", "same content")

	entries, err := r.Status()
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("touch-without-modify reported as change: %+v", entries)
	}
}

func TestStatus_IgnoredFilesExcluded(t *testing.T) {
	r := initTestRepo(t)
	writeWorkFile(t, r, ".gritignore", "*.tmp\n")
	commitFile(t, r, "a.txt", "content", "first")

	writeWorkFile(t, r, "junk.tmp", "ignored")

	st := statusByPath(t, r)
	if _, ok := st["junk.tmp"]; ok {
		t.Error("ignored file appears in status")
	}
}

func TestDiffAgainstTree(t *testing.T) {
	r := initTestRepo(t)
	c1 := commitFile(t, r, "a.txt", "v1", "first")

	commit, err := r.Store.ReadCommit(c1)
	if err != nil {
		t.Fatalf("ReadCommit: %v", err)
	}

	// Modify one file and add another; both show up against the old tree.
	writeWorkFile(t, r, "a.txt", "v2")
	writeWorkFile(t, r, "b.txt", "new")

	changed, err := r.DiffAgainstTree(commit.TreeHash)
	if err != nil {
		t.Fatalf("DiffAgainstTree: %v", err)
	}
	if !changed["a.txt"] {
		t.Error("a.txt not reported as changed")
	}
	if !changed["b.txt"] {
		t.Error("b.txt not reported as changed")
	}
}
