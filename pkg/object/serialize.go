package object

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ---------------------------------------------------------------------------
// Blob
// ---------------------------------------------------------------------------

// MarshalBlob serializes a Blob to raw bytes (identity).
func MarshalBlob(b *Blob) []byte {
	out := make([]byte, len(b.Data))
	copy(out, b.Data)
	return out
}

// UnmarshalBlob deserializes raw bytes into a Blob.
func UnmarshalBlob(data []byte) (*Blob, error) {
	out := make([]byte, len(data))
	copy(out, data)
	return &Blob{Data: out}, nil
}

// ---------------------------------------------------------------------------
// Tree
// ---------------------------------------------------------------------------

// MarshalTree serializes a Tree. Entries are sorted by Name so that
// semantically identical directory contents always serialize (and therefore
// hash) identically regardless of insertion order. Each entry is one line:
//
//	kind hash name
//
// with the name last, so names containing spaces survive the round trip.
func MarshalTree(tr *Tree) []byte {
	sorted := make([]TreeEntry, len(tr.Entries))
	copy(sorted, tr.Entries)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Name < sorted[j].Name
	})

	var buf bytes.Buffer
	for _, e := range sorted {
		fmt.Fprintf(&buf, "%s %s %s\n", e.Kind, e.Hash, e.Name)
	}
	return buf.Bytes()
}

// UnmarshalTree parses a Tree from its serialized form. Structurally invalid
// records, unknown kinds, and duplicate names fail with ErrMalformedObject.
func UnmarshalTree(data []byte) (*Tree, error) {
	tr := &Tree{}
	text := strings.TrimRight(string(data), "\n")
	if text == "" {
		return tr, nil
	}

	seen := make(map[string]bool)
	for _, line := range strings.Split(text, "\n") {
		parts := strings.SplitN(line, " ", 3)
		if len(parts) != 3 {
			return nil, fmt.Errorf("unmarshal tree: entry %q: %w", line, ErrMalformedObject)
		}
		kind := EntryKind(parts[0])
		if kind != KindBlob && kind != KindTree {
			return nil, fmt.Errorf("unmarshal tree: unknown kind %q: %w", parts[0], ErrMalformedObject)
		}
		if parts[1] == "" || parts[2] == "" {
			return nil, fmt.Errorf("unmarshal tree: entry %q: %w", line, ErrMalformedObject)
		}
		if seen[parts[2]] {
			return nil, fmt.Errorf("unmarshal tree: duplicate name %q: %w", parts[2], ErrMalformedObject)
		}
		seen[parts[2]] = true

		tr.Entries = append(tr.Entries, TreeEntry{
			Name: parts[2],
			Kind: kind,
			Hash: Hash(parts[1]),
		})
	}
	return tr, nil
}

// ---------------------------------------------------------------------------
// Commit
// ---------------------------------------------------------------------------

// MarshalCommit serializes a Commit:
//
//	tree H
//	parent H     (omitted for the first commit)
//	author A
//	timestamp T
//	signature S  (optional)
//
//	message
func MarshalCommit(c *Commit) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "tree %s\n", string(c.TreeHash))
	if c.Parent != "" {
		fmt.Fprintf(&buf, "parent %s\n", string(c.Parent))
	}
	fmt.Fprintf(&buf, "author %s\n", c.Author)
	fmt.Fprintf(&buf, "timestamp %d\n", c.Timestamp)
	if strings.TrimSpace(c.Signature) != "" {
		fmt.Fprintf(&buf, "signature %s\n", c.Signature)
	}
	buf.WriteByte('\n')
	buf.WriteString(c.Message)
	return buf.Bytes()
}

// UnmarshalCommit parses a Commit from its serialized form. Missing required
// fields and unknown header keys fail with ErrMalformedObject.
func UnmarshalCommit(data []byte) (*Commit, error) {
	idx := bytes.Index(data, []byte("\n\n"))
	if idx < 0 {
		return nil, fmt.Errorf("unmarshal commit: missing header/message separator: %w", ErrMalformedObject)
	}
	header := string(data[:idx])
	message := string(data[idx+2:])

	c := &Commit{Message: message}
	sawTree := false
	sawAuthor := false
	sawTimestamp := false

	for _, line := range strings.Split(header, "\n") {
		key, val, ok := strings.Cut(line, " ")
		if !ok {
			return nil, fmt.Errorf("unmarshal commit: header line %q: %w", line, ErrMalformedObject)
		}
		switch key {
		case "tree":
			c.TreeHash = Hash(val)
			sawTree = true
		case "parent":
			if c.Parent != "" {
				return nil, fmt.Errorf("unmarshal commit: multiple parents: %w", ErrMalformedObject)
			}
			c.Parent = Hash(val)
		case "author":
			c.Author = val
			sawAuthor = true
		case "timestamp":
			ts, err := strconv.ParseInt(val, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("unmarshal commit: timestamp %q: %w", val, ErrMalformedObject)
			}
			c.Timestamp = ts
			sawTimestamp = true
		case "signature":
			c.Signature = val
		default:
			return nil, fmt.Errorf("unmarshal commit: unknown header key %q: %w", key, ErrMalformedObject)
		}
	}

	if !sawTree || !sawAuthor || !sawTimestamp {
		return nil, fmt.Errorf("unmarshal commit: missing required field: %w", ErrMalformedObject)
	}
	return c, nil
}
