package repo

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"grit/pkg/object"
)

const testAuthor = "tester <tester@example.com>"

var testTime = time.Unix(1700000000, 0)

func initTestRepo(t *testing.T) *Repo {
	t.Helper()
	r, err := Init(t.TempDir())
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	return r
}

// writeWorkFile creates a file in the repository working directory, making
// parent directories as needed.
func writeWorkFile(t *testing.T, r *Repo, rel, content string) {
	t.Helper()
	abs := filepath.Join(r.RootDir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", rel, err)
	}
	if err := os.WriteFile(abs, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", rel, err)
	}
}

func readWorkFile(t *testing.T, r *Repo, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(r.RootDir, filepath.FromSlash(rel)))
	if err != nil {
		t.Fatalf("read %s: %v", rel, err)
	}
	return string(data)
}

func workFileExists(r *Repo, rel string) bool {
	_, err := os.Stat(filepath.Join(r.RootDir, filepath.FromSlash(rel)))
	return err == nil
}

// commitFile writes a file, stages it, and commits, returning the new
// commit hash.
func commitFile(t *testing.T, r *Repo, rel, content, message string) object.Hash {
	t.Helper()
	writeWorkFile(t, r, rel, content)
	if err := r.Add([]string{rel}); err != nil {
		t.Fatalf("Add(%s): %v", rel, err)
	}
	h, err := r.Commit(message, testAuthor, testTime)
	if err != nil {
		t.Fatalf("Commit(%q): %v", message, err)
	}
	return h
}

func TestInit_CreatesLayout(t *testing.T) {
	r := initTestRepo(t)

	for _, dir := range []string{"objects", "refs/heads", "logs/refs/heads"} {
		info, err := os.Stat(filepath.Join(r.GritDir, filepath.FromSlash(dir)))
		if err != nil || !info.IsDir() {
			t.Errorf("missing directory %s: %v", dir, err)
		}
	}

	branch, err := r.CurrentBranch()
	if err != nil {
		t.Fatalf("CurrentBranch: %v", err)
	}
	if branch != "main" {
		t.Errorf("current branch = %q, want main", branch)
	}

	// The default branch exists immediately but has no commits.
	tip, err := r.ResolveRef("HEAD")
	if err != nil {
		t.Fatalf("ResolveRef(HEAD): %v", err)
	}
	if tip != "" {
		t.Errorf("fresh HEAD resolves to %q, want empty hash", tip)
	}

	stg, err := r.ReadStaging()
	if err != nil {
		t.Fatalf("ReadStaging: %v", err)
	}
	if len(stg.Entries) != 0 {
		t.Errorf("fresh staging has %d entries, want 0", len(stg.Entries))
	}
}

func TestInit_RefusesExistingRepo(t *testing.T) {
	dir := t.TempDir()
	if _, err := Init(dir); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if _, err := Init(dir); err == nil {
		t.Error("second Init succeeded, want error")
	}
}

func TestOpen_FindsRootFromSubdir(t *testing.T) {
	r := initTestRepo(t)

	sub := filepath.Join(r.RootDir, "a", "b")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	opened, err := Open(sub)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if opened.RootDir != r.RootDir {
		t.Errorf("RootDir = %q, want %q", opened.RootDir, r.RootDir)
	}
}

func TestOpen_NotARepo(t *testing.T) {
	if _, err := Open(t.TempDir()); err == nil {
		t.Error("Open on a bare directory succeeded, want error")
	}
}

func TestAtomicWriteFile_LeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	dest := filepath.Join(dir, "target")

	if err := atomicWriteFile(dest, []byte("payload")); err != nil {
		t.Fatalf("atomicWriteFile: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	for _, e := range entries {
		if strings.Contains(e.Name(), "tmp") {
			t.Errorf("temp file left behind: %s", e.Name())
		}
	}
	if len(entries) != 1 {
		t.Errorf("dir has %d entries, want 1", len(entries))
	}
}
