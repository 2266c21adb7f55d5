// Package queue exposes a shared input directory as a single-claim-per-item
// work queue. Claiming renames transcript.txt to transcript.processing; the
// filesystem's rename atomicity is the only coordination primitive, so any
// number of worker processes can share one directory without a lock service.
package queue

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"
)

const (
	// InputExt is the extension of claimable transcripts.
	InputExt = ".txt"
	// ClaimExt marks a transcript as owned by some worker.
	ClaimExt = ".processing"
)

// Claim is a transcript this worker owns. Identity is the original file
// name; Path points at the claim marker holding the content.
type Claim struct {
	Identity string // original name, e.g. "standup.txt"
	Path     string // claimed path, e.g. "input/standup.processing"
}

// Stem returns the identity without its extension, used to key the output
// artifact.
func (c *Claim) Stem() string {
	return strings.TrimSuffix(c.Identity, InputExt)
}

// ClaimQueue is the claiming contract. Backed by DirQueue in production;
// the interface exists so the runner can be tested against an in-memory
// implementation and so a future backend (CAS marker, row lock) can slot in.
type ClaimQueue interface {
	// Pending lists claimable identities in lexicographic order.
	Pending() ([]string, error)

	// ClaimNext claims the first available transcript, or returns nil when
	// none can be claimed. Losing a claim race is not an error.
	ClaimNext() (*Claim, error)

	// Release deletes the claim marker. Idempotent.
	Release(c *Claim) error

	// Depth is a racy snapshot of the pending count, for logging only.
	Depth() int
}

// DirQueue implements ClaimQueue over a single directory.
type DirQueue struct {
	dir    string
	logger *zap.Logger
}

// NewDirQueue creates a queue over dir. The directory must already exist.
func NewDirQueue(dir string, logger *zap.Logger) *DirQueue {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DirQueue{dir: dir, logger: logger}
}

// Dir returns the watched directory.
func (q *DirQueue) Dir() string {
	return q.dir
}

// Pending lists .txt files in lexicographic order. Deterministic ordering
// means uncontended workers walk the queue from distinct offsets of the
// same list instead of thrashing on one candidate.
func (q *DirQueue) Pending() ([]string, error) {
	entries, err := os.ReadDir(q.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list queue directory: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(e.Name()), InputExt) {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// ClaimNext walks the pending list and renames the first candidate it wins.
// A rename that fails because the file vanished (another worker won) or is
// momentarily permission-denied (producer still writing) just moves on to
// the next candidate.
func (q *DirQueue) ClaimNext() (*Claim, error) {
	pending, err := q.Pending()
	if err != nil {
		return nil, err
	}

	for _, name := range pending {
		src := filepath.Join(q.dir, name)
		dst := strings.TrimSuffix(src, InputExt) + ClaimExt

		if err := os.Rename(src, dst); err != nil {
			if errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrPermission) {
				q.logger.Debug("lost claim race, trying next",
					zap.String("identity", name))
				continue
			}
			return nil, fmt.Errorf("failed to claim %s: %w", name, err)
		}

		q.logger.Debug("claimed transcript", zap.String("identity", name))
		return &Claim{Identity: name, Path: dst}, nil
	}

	return nil, nil
}

// Release removes the claim marker. Releasing an already-released claim is
// not an error at this layer.
func (q *DirQueue) Release(c *Claim) error {
	if c == nil {
		return nil
	}
	if err := os.Remove(c.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to release %s: %w", c.Identity, err)
	}
	return nil
}

// Depth returns the current pending count. Best-effort: the answer can be
// stale before it returns, so it is only ever logged.
func (q *DirQueue) Depth() int {
	pending, err := q.Pending()
	if err != nil {
		return 0
	}
	return len(pending)
}

// Orphans lists claim markers with no live owner recorded. scribed does not
// auto-reclaim them (the right lease policy is an operator decision); run
// logs them at startup so a crashed worker's leftovers are visible.
func (q *DirQueue) Orphans() []string {
	entries, err := os.ReadDir(q.dir)
	if err != nil {
		return nil
	}
	var orphans []string
	for _, e := range entries {
		if !e.IsDir() && strings.EqualFold(filepath.Ext(e.Name()), ClaimExt) {
			orphans = append(orphans, e.Name())
		}
	}
	sort.Strings(orphans)
	return orphans
}
