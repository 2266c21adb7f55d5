// Package runner executes one claim-to-release cycle per call. The cycle
// guarantees three things no matter what happens in between: every claimed
// transcript yields an output artifact, every attempt yields a ledger row,
// and the claim marker is released on every exit path.
package runner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"scribed/internal/analyzer"
	"scribed/internal/metrics"
	"scribed/internal/queue"
	"scribed/internal/store"
	"scribed/internal/types"
)

// Artifact is the JSON document written per processed transcript.
type Artifact struct {
	JobID       string   `json:"job_id"`
	Summary     string   `json:"summary"`
	Attendees   []string `json:"attendees"`
	ActionItems []string `json:"action_items"`
}

// Runner wires the claim queue, the analyzer and the outcome sinks.
type Runner struct {
	queue     queue.ClaimQueue
	analyzer  *analyzer.Analyzer
	ledger    *metrics.Ledger
	history   *store.HistoryStore // optional
	outputDir string
	logger    *zap.Logger
}

// New creates a Runner. history may be nil; everything else is required.
func New(q queue.ClaimQueue, a *analyzer.Analyzer, ledger *metrics.Ledger, history *store.HistoryStore, outputDir string, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		queue:     q,
		analyzer:  a,
		ledger:    ledger,
		history:   history,
		outputDir: outputDir,
		logger:    logger,
	}
}

// ProcessNext claims and processes one transcript. It reports whether a
// transcript was processed; false with a nil error means the queue was
// empty. Item-level failures are absorbed into the degraded fallback and
// never returned.
func (r *Runner) ProcessNext(ctx context.Context) (bool, error) {
	claim, err := r.queue.ClaimNext()
	if err != nil {
		return false, err
	}
	if claim == nil {
		return false, nil
	}

	// Release must happen on every exit path, including panics below.
	defer func() {
		if err := r.queue.Release(claim); err != nil {
			r.logger.Error("failed to release claim",
				zap.String("identity", claim.Identity), zap.Error(err))
		}
	}()

	r.process(ctx, claim)
	return true, nil
}

// process runs Claimed -> Analyzing -> {Succeeded | DegradedFallback} ->
// Persisted. There is no retry-in-place: any failure during analysis moves
// straight to the fallback so the item still reaches Persisted.
func (r *Runner) process(ctx context.Context, claim *queue.Claim) {
	start := time.Now()
	jobID := newJobID()
	status := types.StatusCompleted
	errText := ""

	content := r.readContent(claim)

	rec, err := r.analyzer.Analyze(ctx, content)
	if err != nil {
		status = types.StatusFailed
		errText = shortError(err)
		r.logger.Warn("analysis failed, using offline fallback",
			zap.String("job_id", jobID),
			zap.String("identity", claim.Identity),
			zap.Error(err))
		rec = analyzer.OfflineSummarize(content)
	}

	if err := r.persist(claim, jobID, rec); err != nil {
		status = types.StatusFailed
		errText = shortError(err)
		r.logger.Error("failed to persist artifact",
			zap.String("job_id", jobID),
			zap.String("identity", claim.Identity),
			zap.Error(err))
	}

	outcome := types.JobOutcome{
		JobID:    jobID,
		Status:   status,
		Duration: time.Since(start),
		Error:    errText,
	}
	r.record(claim.Identity, outcome)

	r.logger.Info("transcript processed",
		zap.String("job_id", jobID),
		zap.String("identity", claim.Identity),
		zap.String("status", string(status)),
		zap.Duration("duration", outcome.Duration))
}

// readContent loads the claimed file as text. Undecodable byte sequences
// are replaced rather than aborting the job; a read failure yields empty
// content and lets the fallback path take over.
func (r *Runner) readContent(claim *queue.Claim) string {
	data, err := os.ReadFile(claim.Path)
	if err != nil {
		r.logger.Warn("failed to read claimed transcript",
			zap.String("identity", claim.Identity), zap.Error(err))
		return ""
	}
	return strings.ToValidUTF8(string(data), "�")
}

// persist writes the artifact keyed by the transcript's identity.
func (r *Runner) persist(claim *queue.Claim, jobID string, rec types.AnalysisRecord) error {
	artifact := Artifact{
		JobID:       jobID,
		Summary:     rec.Summary,
		Attendees:   rec.Attendees,
		ActionItems: rec.ActionItems,
	}

	data, err := json.MarshalIndent(artifact, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: marshal artifact: %v", types.ErrPersistence, err)
	}

	path := filepath.Join(r.outputDir, claim.Stem()+".json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("%w: write artifact: %v", types.ErrPersistence, err)
	}
	return nil
}

// record appends the ledger row and mirrors it into the history store.
// Both are best-effort at this point: the claim is released regardless.
func (r *Runner) record(identity string, outcome types.JobOutcome) {
	if err := r.ledger.Append(outcome); err != nil {
		r.logger.Error("failed to append ledger row",
			zap.String("job_id", outcome.JobID), zap.Error(err))
	}
	if r.history != nil {
		if err := r.history.Record(identity, outcome); err != nil {
			r.logger.Warn("failed to record job history",
				zap.String("job_id", outcome.JobID), zap.Error(err))
		}
	}
}

// newJobID returns "job-" plus 8 lowercase hex characters.
func newJobID() string {
	u := uuid.New()
	return fmt.Sprintf("job-%x", u[:4])
}

// shortError keeps ledger rows readable: the sentinel message when the
// cause is typed, the full text otherwise, capped at one line.
func shortError(err error) string {
	for _, sentinel := range []error{
		types.ErrInvalidInput,
		types.ErrServiceUnavailable,
		types.ErrParseFailure,
		types.ErrPersistence,
	} {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	msg := err.Error()
	if idx := strings.IndexByte(msg, '\n'); idx != -1 {
		msg = msg[:idx]
	}
	return msg
}
