package repo

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"grit/pkg/object"
)

// ReflogEntry records one historical update of a ref.
type ReflogEntry struct {
	OldHash   object.Hash
	NewHash   object.Hash
	Timestamp int64
	Reason    string
}

func (r *Repo) reflogPath(refName string) string {
	return filepath.Join(r.GritDir, "logs", filepath.FromSlash(refName))
}

// appendReflog records a ref update as one line:
//
//	old new timestamp reason
//
// The empty hash is written as "-".
func (r *Repo) appendReflog(refName string, old, updated object.Hash, reason string) error {
	logPath := r.reflogPath(refName)
	if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err != nil {
		return fmt.Errorf("reflog mkdir: %w", err)
	}

	f, err := os.OpenFile(logPath, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("reflog open: %w", err)
	}
	defer f.Close()

	line := fmt.Sprintf("%s %s %d %s\n",
		hashOrDash(old), hashOrDash(updated), time.Now().Unix(), reason)
	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("reflog append: %w", err)
	}
	return nil
}

// Reflog returns the recorded updates for a ref, oldest first. A missing
// reflog returns an empty slice.
func (r *Repo) Reflog(refName string) ([]ReflogEntry, error) {
	data, err := os.ReadFile(r.reflogPath(refName))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reflog read: %w", err)
	}

	var entries []ReflogEntry
	for _, line := range strings.Split(strings.TrimRight(string(data), "\n"), "\n") {
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, " ", 4)
		if len(parts) != 4 {
			return nil, fmt.Errorf("reflog: malformed line %q", line)
		}
		ts, err := strconv.ParseInt(parts[2], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("reflog: timestamp %q: %w", parts[2], err)
		}
		entries = append(entries, ReflogEntry{
			OldHash:   dashOrHash(parts[0]),
			NewHash:   dashOrHash(parts[1]),
			Timestamp: ts,
			Reason:    parts[3],
		})
	}
	return entries, nil
}

func hashOrDash(h object.Hash) string {
	if h == "" {
		return "-"
	}
	return string(h)
}

func dashOrHash(s string) object.Hash {
	if s == "-" {
		return ""
	}
	return object.Hash(s)
}
