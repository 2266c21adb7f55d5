// Package metrics appends job outcomes to a flat CSV ledger. The ledger is
// shared by every worker process: each row is written with a single
// O_APPEND write so concurrent appends never interleave mid-row.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"scribed/internal/types"
)

const header = "job_id,status,duration_sec,error\n"

// Ledger is an append-only four-column CSV file. The header is written
// once, when the file is first created.
type Ledger struct {
	path string
	mu   sync.Mutex
}

// NewLedger creates a ledger writing to path. The parent directory is
// created if needed; the file itself appears on the first Append.
func NewLedger(path string) (*Ledger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("%w: create ledger directory: %v", types.ErrPersistence, err)
	}
	return &Ledger{path: path}, nil
}

// Path returns the ledger file location.
func (l *Ledger) Path() string {
	return l.path
}

// Append records one outcome. Embedded newlines and commas in the error
// text are neutralized so the file stays parseable with a naive
// line-splitter.
func (l *Ledger) Append(outcome types.JobOutcome) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	_, statErr := os.Stat(l.path)
	headerNeeded := os.IsNotExist(statErr)

	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("%w: open ledger: %v", types.ErrPersistence, err)
	}
	defer f.Close()

	row := fmt.Sprintf("%s,%s,%.3f,%s\n",
		outcome.JobID, outcome.Status, outcome.Duration.Seconds(), sanitize(outcome.Error))
	if headerNeeded {
		row = header + row
	}

	if _, err := f.WriteString(row); err != nil {
		return fmt.Errorf("%w: append ledger row: %v", types.ErrPersistence, err)
	}
	return nil
}

// sanitize strips the delimiters the CSV format reserves.
func sanitize(errText string) string {
	errText = strings.ReplaceAll(errText, "\n", " ")
	errText = strings.ReplaceAll(errText, "\r", " ")
	return strings.ReplaceAll(errText, ",", ";")
}
