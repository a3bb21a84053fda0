package object

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/klauspost/compress/zstd"
)

// cacheSize bounds the number of decoded objects kept in memory.
const cacheSize = 512

type cachedObject struct {
	objType ObjectType
	data    []byte
}

// Store is a content-addressed object store with a 2-character fan-out
// directory layout: objects/ab/cdef0123... Payloads are zstd-compressed on
// disk; each object is stored whole and independently (no deltas).
type Store struct {
	root  string
	cache *lru.Cache[Hash, cachedObject]
	enc   *zstd.Encoder
	dec   *zstd.Decoder
}

// NewStore creates a Store rooted at the given directory. The objects/
// subdirectory is created lazily on first write.
func NewStore(root string) (*Store, error) {
	cache, err := lru.New[Hash, cachedObject](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("object store: cache: %w", err)
	}
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, fmt.Errorf("object store: zstd writer: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("object store: zstd reader: %w", err)
	}
	return &Store{root: root, cache: cache, enc: enc, dec: dec}, nil
}

// objectPath returns the filesystem path for a given hash.
func (s *Store) objectPath(h Hash) string {
	return filepath.Join(s.root, "objects", string(h[:2]), string(h[2:]))
}

// Has reports whether the store contains an object with the given hash.
func (s *Store) Has(h Hash) bool {
	if len(h) < 3 {
		return false
	}
	if s.cache.Contains(h) {
		return true
	}
	_, err := os.Stat(s.objectPath(h))
	return err == nil
}

// Write stores an object and returns its content hash. The logical format
// is "type len\0content", zstd-compressed on disk. Writes are idempotent
// and atomic: identical content is stored at most once, and data lands via
// a temp file renamed into place.
func (s *Store) Write(objType ObjectType, data []byte) (Hash, error) {
	h := HashObject(objType, data)

	// Fast path: already exists.
	if s.Has(h) {
		return h, nil
	}

	envelope := fmt.Sprintf("%s %d\x00", objType, len(data))
	raw := append([]byte(envelope), data...)
	compressed := s.enc.EncodeAll(raw, nil)

	dir := filepath.Join(s.root, "objects", string(h[:2]))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("object write mkdir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return "", fmt.Errorf("object write tmpfile: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(compressed); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", fmt.Errorf("object write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("object write close: %w", err)
	}

	if err := os.Rename(tmpName, s.objectPath(h)); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("object write rename: %w", err)
	}

	s.cache.Add(h, cachedObject{objType: objType, data: data})
	return h, nil
}

// Read retrieves an object by hash, returning its type and raw content.
func (s *Store) Read(h Hash) (ObjectType, []byte, error) {
	if obj, ok := s.cache.Get(h); ok {
		return obj.objType, obj.data, nil
	}
	if len(h) < 3 {
		return "", nil, fmt.Errorf("object read %q: %w", h, ErrObjectNotFound)
	}

	compressed, err := os.ReadFile(s.objectPath(h))
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil, fmt.Errorf("object read %s: %w", h, ErrObjectNotFound)
		}
		return "", nil, fmt.Errorf("object read %s: %w", h, err)
	}

	objType, content, err := s.decodeEnvelope(h, compressed)
	if err != nil {
		return "", nil, err
	}

	s.cache.Add(h, cachedObject{objType: objType, data: content})
	return objType, content, nil
}

// decodeEnvelope decompresses raw store bytes and parses the
// "type len\0content" envelope.
func (s *Store) decodeEnvelope(h Hash, compressed []byte) (ObjectType, []byte, error) {
	raw, err := s.dec.DecodeAll(compressed, nil)
	if err != nil {
		return "", nil, fmt.Errorf("object read %s: decompress: %w", h, ErrMalformedObject)
	}

	nulIdx := bytes.IndexByte(raw, 0)
	if nulIdx < 0 {
		return "", nil, fmt.Errorf("object read %s: no NUL in envelope: %w", h, ErrMalformedObject)
	}
	header := string(raw[:nulIdx])
	content := raw[nulIdx+1:]

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 {
		return "", nil, fmt.Errorf("object read %s: header %q: %w", h, header, ErrMalformedObject)
	}
	objType := ObjectType(parts[0])
	length, err := strconv.Atoi(parts[1])
	if err != nil {
		return "", nil, fmt.Errorf("object read %s: length %q: %w", h, parts[1], ErrMalformedObject)
	}
	if len(content) != length {
		return "", nil, fmt.Errorf("object read %s: length mismatch (header=%d, actual=%d): %w",
			h, length, len(content), ErrMalformedObject)
	}

	return objType, content, nil
}

// VerifyReport summarizes a store integrity check.
type VerifyReport struct {
	LooseObjects int
}

// Verify re-reads and re-hashes every loose object, confirming that each
// payload decodes and still matches the hash it is stored under.
func (s *Store) Verify() (*VerifyReport, error) {
	report := &VerifyReport{}

	objectsDir := filepath.Join(s.root, "objects")
	err := filepath.WalkDir(objectsDir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() || strings.HasPrefix(d.Name(), ".tmp-") {
			return nil
		}

		want := Hash(filepath.Base(filepath.Dir(path)) + d.Name())

		compressed, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("verify %s: %w", want, err)
		}
		objType, content, err := s.decodeEnvelope(want, compressed)
		if err != nil {
			return fmt.Errorf("verify: %w", err)
		}
		if got := HashObject(objType, content); got != want {
			return fmt.Errorf("verify %s: content hashes to %s", want, got)
		}

		report.LooseObjects++
		return nil
	})
	if err != nil {
		if os.IsNotExist(err) {
			return report, nil
		}
		return nil, err
	}
	return report, nil
}

// ---------------------------------------------------------------------------
// Typed convenience methods
// ---------------------------------------------------------------------------

// WriteBlob serializes and stores a Blob.
func (s *Store) WriteBlob(b *Blob) (Hash, error) {
	return s.Write(TypeBlob, MarshalBlob(b))
}

// ReadBlob reads and deserializes a Blob.
func (s *Store) ReadBlob(h Hash) (*Blob, error) {
	data, err := s.readTyped(h, TypeBlob)
	if err != nil {
		return nil, err
	}
	return UnmarshalBlob(data)
}

// WriteTree serializes and stores a Tree.
func (s *Store) WriteTree(tr *Tree) (Hash, error) {
	return s.Write(TypeTree, MarshalTree(tr))
}

// ReadTree reads and deserializes a Tree.
func (s *Store) ReadTree(h Hash) (*Tree, error) {
	data, err := s.readTyped(h, TypeTree)
	if err != nil {
		return nil, err
	}
	return UnmarshalTree(data)
}

// WriteCommit serializes and stores a Commit.
func (s *Store) WriteCommit(c *Commit) (Hash, error) {
	return s.Write(TypeCommit, MarshalCommit(c))
}

// ReadCommit reads and deserializes a Commit.
func (s *Store) ReadCommit(h Hash) (*Commit, error) {
	data, err := s.readTyped(h, TypeCommit)
	if err != nil {
		return nil, err
	}
	return UnmarshalCommit(data)
}

func (s *Store) readTyped(h Hash, want ObjectType) ([]byte, error) {
	objType, data, err := s.Read(h)
	if err != nil {
		return nil, err
	}
	if objType != want {
		return nil, fmt.Errorf("object %s: got %q, want %q: %w", h, objType, want, ErrMalformedObject)
	}
	return data, nil
}
