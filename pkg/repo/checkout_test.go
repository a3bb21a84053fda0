package repo

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"grit/pkg/object"
)

// Two branches diverge from a common commit; switching between them swaps
// the file content without mixing histories.
func TestCheckout_BranchIsolation(t *testing.T) {
	r := initTestRepo(t)
	base := commitFile(t, r, "a.txt", "hello", "base")

	if err := r.CreateBranch("feature", base); err != nil {
		t.Fatalf("CreateBranch: %v", err)
	}
	if err := r.Checkout("feature"); err != nil {
		t.Fatalf("Checkout feature: %v", err)
	}
	featureTip := commitFile(t, r, "a.txt", "world", "feature work")

	// Test 1: back on main, the original content is restored.
	if err := r.Checkout("main"); err != nil {
		t.Fatalf("Checkout main: %v", err)
	}
	if got := readWorkFile(t, r, "a.txt"); got != "hello" {
		t.Errorf("a.txt on main = %q, want hello", got)
	}
	mainTip, err := r.ResolveRef("HEAD")
	if err != nil {
		t.Fatalf("ResolveRef: %v", err)
	}
	if mainTip != base {
		t.Errorf("main tip = %s, want %s", mainTip, base)
	}

	// Test 2: switching forward again restores the feature content.
	if err := r.Checkout("feature"); err != nil {
		t.Fatalf("Checkout feature: %v", err)
	}
	if got := readWorkFile(t, r, "a.txt"); got != "world" {
		t.Errorf("a.txt on feature = %q, want world", got)
	}
	tip, err := r.ResolveRef("HEAD")
	if err != nil {
		t.Fatalf("ResolveRef: %v", err)
	}
	if tip != featureTip {
		t.Errorf("feature tip = %s, want %s", tip, featureTip)
	}
}

func TestCheckout_RemovesFilesAbsentFromTarget(t *testing.T) {
	r := initTestRepo(t)
	writeWorkFile(t, r, "a.txt", "a")
	writeWorkFile(t, r, "sub/b.txt", "b")
	if err := r.Add([]string{"."}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	withBoth, err := r.Commit("both files", testAuthor, testTime)
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}

	if err := r.Remove([]string{"sub/b.txt"}, false); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	onlyA, err := r.Commit("drop b", testAuthor, testTime)
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}

	// Test 1: checking out the older commit restores the removed file.
	if err := r.Checkout(string(withBoth)); err != nil {
		t.Fatalf("Checkout: %v", err)
	}
	if got := readWorkFile(t, r, "sub/b.txt"); got != "b" {
		t.Errorf("sub/b.txt = %q, want b", got)
	}

	// Test 2: checking out the newer commit removes it again, including
	// its now-empty parent directory.
	if err := r.Checkout(string(onlyA)); err != nil {
		t.Fatalf("Checkout: %v", err)
	}
	if workFileExists(r, "sub/b.txt") {
		t.Error("sub/b.txt still on disk")
	}
	if workFileExists(r, "sub") {
		t.Error("empty sub/ directory left behind")
	}
}

func TestCheckout_DetachesHeadOnRawHash(t *testing.T) {
	r := initTestRepo(t)
	c1 := commitFile(t, r, "a.txt", "one", "first")
	commitFile(t, r, "a.txt", "two", "second")

	if err := r.Checkout(string(c1)); err != nil {
		t.Fatalf("Checkout: %v", err)
	}

	branch, err := r.CurrentBranch()
	if err != nil {
		t.Fatalf("CurrentBranch: %v", err)
	}
	if branch != "" {
		t.Errorf("branch = %q, want detached", branch)
	}
	head, err := r.ResolveRef("HEAD")
	if err != nil {
		t.Fatalf("ResolveRef: %v", err)
	}
	if head != c1 {
		t.Errorf("HEAD = %s, want %s", head, c1)
	}
}

func TestCheckout_RefusesDirtyWorktree(t *testing.T) {
	r := initTestRepo(t)
	base := commitFile(t, r, "a.txt", "committed", "base")
	if err := r.CreateBranch("other", base); err != nil {
		t.Fatalf("CreateBranch: %v", err)
	}

	writeWorkFile(t, r, "a.txt", "uncommitted edit")

	err := r.Checkout("other")
	if !errors.Is(err, ErrDirtyWorkdir) {
		t.Errorf("error = %v, want ErrDirtyWorkdir", err)
	}
	// The edit must survive the refused checkout.
	if got := readWorkFile(t, r, "a.txt"); got != "uncommitted edit" {
		t.Errorf("a.txt = %q after refused checkout", got)
	}
}

func TestCheckout_RefusesStagedChanges(t *testing.T) {
	r := initTestRepo(t)
	base := commitFile(t, r, "a.txt", "committed", "base")
	if err := r.CreateBranch("other", base); err != nil {
		t.Fatalf("CreateBranch: %v", err)
	}

	writeWorkFile(t, r, "a.txt", "staged edit")
	if err := r.Add([]string{"a.txt"}); err != nil {
		t.Fatalf("Add: %v", err)
	}

	if err := r.Checkout("other"); !errors.Is(err, ErrDirtyWorkdir) {
		t.Errorf("error = %v, want ErrDirtyWorkdir", err)
	}
}

// A cached removal leaves the file on disk while HEAD still tracks it.
// Checkout must refuse instead of deleting the uncommitted content.
func TestCheckout_RefusesCachedRemoval(t *testing.T) {
	r := initTestRepo(t)
	base := commitFile(t, r, "a.txt", "base", "base")
	if err := r.CreateBranch("feature", base); err != nil {
		t.Fatalf("CreateBranch: %v", err)
	}
	if err := r.Checkout("feature"); err != nil {
		t.Fatalf("Checkout feature: %v", err)
	}
	commitFile(t, r, "b.txt", "committed", "add b")

	if err := r.Remove([]string{"b.txt"}, true); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	writeWorkFile(t, r, "b.txt", "edited, never committed")

	if err := r.Checkout("main"); !errors.Is(err, ErrDirtyWorkdir) {
		t.Fatalf("error = %v, want ErrDirtyWorkdir", err)
	}
	if got := readWorkFile(t, r, "b.txt"); got != "edited, never committed" {
		t.Errorf("b.txt = %q after refused checkout", got)
	}
}

func TestCheckout_UntrackedFileSurvives(t *testing.T) {
	r := initTestRepo(t)
	base := commitFile(t, r, "a.txt", "base", "base")
	if err := r.CreateBranch("other", base); err != nil {
		t.Fatalf("CreateBranch: %v", err)
	}

	writeWorkFile(t, r, "notes.txt", "scratch")

	if err := r.Checkout("other"); err != nil {
		t.Fatalf("Checkout: %v", err)
	}
	if got := readWorkFile(t, r, "notes.txt"); got != "scratch" {
		t.Errorf("notes.txt = %q, want scratch", got)
	}
}

func TestCheckout_RefusesUntrackedCollision(t *testing.T) {
	r := initTestRepo(t)
	base := commitFile(t, r, "a.txt", "base", "base")

	// Build a feature branch that tracks b.txt.
	if err := r.CreateBranch("feature", base); err != nil {
		t.Fatalf("CreateBranch: %v", err)
	}
	if err := r.Checkout("feature"); err != nil {
		t.Fatalf("Checkout feature: %v", err)
	}
	commitFile(t, r, "b.txt", "tracked content", "add b")

	// Back on main, b.txt is gone; recreate it untracked.
	if err := r.Checkout("main"); err != nil {
		t.Fatalf("Checkout main: %v", err)
	}
	if workFileExists(r, "b.txt") {
		t.Fatal("b.txt should not exist on main")
	}
	writeWorkFile(t, r, "b.txt", "precious local data")

	// The target tree would land on top of the untracked file.
	if err := r.Checkout("feature"); !errors.Is(err, ErrDirtyWorkdir) {
		t.Errorf("error = %v, want ErrDirtyWorkdir", err)
	}
	if got := readWorkFile(t, r, "b.txt"); got != "precious local data" {
		t.Errorf("b.txt = %q after refused checkout", got)
	}
}

// When a target blob cannot be read, checkout must fail before removing
// anything from the working directory.
func TestCheckout_MissingBlobLeavesWorkdirUntouched(t *testing.T) {
	r := initTestRepo(t)
	c1 := commitFile(t, r, "a.txt", "keep", "first")
	c2 := commitFile(t, r, "b.txt", "target content", "second")

	stg, err := r.ReadStaging()
	if err != nil {
		t.Fatalf("ReadStaging: %v", err)
	}
	blobHash := stg.Entries["b.txt"]
	if blobHash == "" {
		t.Fatal("b.txt not staged")
	}

	if err := r.Checkout(string(c1)); err != nil {
		t.Fatalf("Checkout: %v", err)
	}

	blobPath := filepath.Join(r.GritDir, "objects", string(blobHash[:2]), string(blobHash[2:]))
	if err := os.Remove(blobPath); err != nil {
		t.Fatalf("remove blob object: %v", err)
	}

	// Reopen so the store cache cannot serve the deleted object.
	reopened, err := Open(r.RootDir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := reopened.Checkout(string(c2)); !errors.Is(err, object.ErrObjectNotFound) {
		t.Fatalf("error = %v, want ErrObjectNotFound", err)
	}

	if got := readWorkFile(t, r, "a.txt"); got != "keep" {
		t.Errorf("a.txt = %q after aborted checkout, want keep", got)
	}
	if workFileExists(r, "b.txt") {
		t.Error("b.txt materialized by aborted checkout")
	}
}

func TestCheckout_ResetsStagingToTarget(t *testing.T) {
	r := initTestRepo(t)
	c1 := commitFile(t, r, "a.txt", "one", "first")
	commitFile(t, r, "b.txt", "two", "second")

	if err := r.Checkout(string(c1)); err != nil {
		t.Fatalf("Checkout: %v", err)
	}

	stg, err := r.ReadStaging()
	if err != nil {
		t.Fatalf("ReadStaging: %v", err)
	}
	if len(stg.Entries) != 1 {
		t.Fatalf("staging has %d entries, want 1", len(stg.Entries))
	}
	if _, ok := stg.Entries["a.txt"]; !ok {
		t.Error("a.txt missing from staging after checkout")
	}
}

func TestCheckout_EmptyBranch(t *testing.T) {
	r := initTestRepo(t)
	commitFile(t, r, "a.txt", "content", "base")

	// A branch pointing at the empty hash checks out as an empty tree.
	if err := r.CreateBranch("blank", ""); err != nil {
		t.Fatalf("CreateBranch: %v", err)
	}
	if err := r.Checkout("blank"); err != nil {
		t.Fatalf("Checkout: %v", err)
	}

	if workFileExists(r, "a.txt") {
		t.Error("a.txt still on disk on empty branch")
	}
	stg, err := r.ReadStaging()
	if err != nil {
		t.Fatalf("ReadStaging: %v", err)
	}
	if len(stg.Entries) != 0 {
		t.Errorf("staging has %d entries, want 0", len(stg.Entries))
	}
	branch, err := r.CurrentBranch()
	if err != nil {
		t.Fatalf("CurrentBranch: %v", err)
	}
	if branch != "blank" {
		t.Errorf("branch = %q, want blank", branch)
	}
}
