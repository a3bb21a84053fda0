package repo

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"grit/pkg/object"
)

// ErrNothingToCommit indicates a staging snapshot whose tree is identical
// to the current branch tip's tree.
var ErrNothingToCommit = errors.New("nothing to commit")

// CommitSigner signs canonical commit payload bytes and returns an encoded
// signature string to be persisted in Commit.Signature.
type CommitSigner func(payload []byte) (string, error)

// CreateCommit converts the current staging area into an immutable commit
// object and returns its hash. It does not move any branch ref; Commit is
// the branch-aware layer that advances the current branch, keeping this
// builder reusable for detached-history operations.
//
// The no-op guard fires before the commit object is written: if the built
// tree hash equals the current tip's tree hash, no new object is created.
// Subtree writes are idempotent, so a refused commit leaves the store
// unchanged.
func (r *Repo) CreateCommit(message, author string, when time.Time) (object.Hash, error) {
	h, _, err := r.createCommit(message, author, when, nil)
	return h, err
}

func (r *Repo) createCommit(message, author string, when time.Time, signer CommitSigner) (object.Hash, object.Hash, error) {
	stg, err := r.ReadStaging()
	if err != nil {
		return "", "", fmt.Errorf("commit: %w", err)
	}

	treeHash, err := r.BuildTree(stg)
	if err != nil {
		return "", "", fmt.Errorf("commit: %w", err)
	}

	// Parent is the current tip; empty on a branch with no commits yet.
	parent, err := r.ResolveRef("HEAD")
	if err != nil && !errors.Is(err, ErrUnknownBranch) {
		return "", "", fmt.Errorf("commit: resolve parent: %w", err)
	}

	if parent != "" {
		parentCommit, err := r.Store.ReadCommit(parent)
		if err != nil {
			return "", "", fmt.Errorf("commit: read parent %s: %w", parent, err)
		}
		// Content addressing makes the no-op check a hash comparison.
		if parentCommit.TreeHash == treeHash {
			return "", "", fmt.Errorf("commit: %w", ErrNothingToCommit)
		}
	}

	commit := &object.Commit{
		TreeHash:  treeHash,
		Parent:    parent,
		Author:    author,
		Timestamp: when.Unix(),
		Message:   message,
	}
	if signer != nil {
		signature, err := signer(object.CommitSigningPayload(commit))
		if err != nil {
			return "", "", fmt.Errorf("commit: sign: %w", err)
		}
		commit.Signature = signature
	}

	commitHash, err := r.Store.WriteCommit(commit)
	if err != nil {
		return "", "", fmt.Errorf("commit: write commit: %w", err)
	}
	return commitHash, parent, nil
}

// Commit creates a commit from the staging area and advances the current
// branch to it. The advance is a compare-and-swap against the parent the
// commit was built on.
func (r *Repo) Commit(message, author string, when time.Time) (object.Hash, error) {
	return r.CommitWithSigner(message, author, when, nil)
}

// CommitWithSigner is Commit with an optional signing hook.
func (r *Repo) CommitWithSigner(message, author string, when time.Time, signer CommitSigner) (object.Hash, error) {
	commitHash, parent, err := r.createCommit(message, author, when, signer)
	if err != nil {
		return "", err
	}

	head, err := r.Head()
	if err != nil {
		return "", fmt.Errorf("commit: read HEAD: %w", err)
	}

	// head is either a ref path ("refs/heads/main") or a detached hash.
	if strings.HasPrefix(head, "refs/") {
		if err := r.UpdateRefCAS(head, commitHash, parent); err != nil {
			return "", fmt.Errorf("commit: update ref %q: %w", head, err)
		}
	} else {
		if err := r.UpdateRefCAS("HEAD", commitHash, parent); err != nil {
			return "", fmt.Errorf("commit: update detached HEAD: %w", err)
		}
	}

	return commitHash, nil
}

// LogEntry pairs a commit with its hash for history listings.
type LogEntry struct {
	Hash   object.Hash
	Commit *object.Commit
}

// Log walks the commit history starting from the given hash, following
// parent links, returning up to limit commits newest first. The walk
// terminates at the first commit with no parent.
func (r *Repo) Log(start object.Hash, limit int) ([]LogEntry, error) {
	var entries []LogEntry
	current := start

	for current != "" && len(entries) < limit {
		c, err := r.Store.ReadCommit(current)
		if err != nil {
			return nil, fmt.Errorf("log: read commit %s: %w", current, err)
		}
		entries = append(entries, LogEntry{Hash: current, Commit: c})
		current = c.Parent
	}

	return entries, nil
}
