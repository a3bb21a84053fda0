package object

// Hash is a 64-character hex-encoded SHA-256 digest.
type Hash string

// ObjectType identifies the kind of object stored.
type ObjectType string

const (
	TypeBlob   ObjectType = "blob"
	TypeTree   ObjectType = "tree"
	TypeCommit ObjectType = "commit"
)

// EntryKind distinguishes file entries from subdirectory entries in a tree.
type EntryKind string

const (
	KindBlob EntryKind = "blob"
	KindTree EntryKind = "tree"
)

// Blob holds raw file data.
type Blob struct {
	Data []byte
}

// TreeEntry is one entry in a tree object. Names are unique within a tree.
type TreeEntry struct {
	Name string
	Kind EntryKind
	Hash Hash
}

// Tree holds a list of entries sorted by Name. Blob-kind entries are files
// at this level; tree-kind entries reference subdirectory trees by hash.
type Tree struct {
	Entries []TreeEntry
}

// Commit points at a root tree with metadata. Parent is empty for the first
// commit in a repository; this model carries at most one parent.
type Commit struct {
	TreeHash  Hash
	Parent    Hash
	Author    string
	Timestamp int64
	Signature string
	Message   string
}
