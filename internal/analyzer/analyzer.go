// Package analyzer turns a meeting transcript into a validated analysis
// record. The online path asks Gemini and normalizes whatever comes back;
// OfflineSummarize is the deterministic local fallback.
package analyzer

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"scribed/internal/normalize"
	"scribed/internal/types"
)

// Analyzer drives the generate-then-normalize pipeline.
type Analyzer struct {
	client     Generator
	normalizer *normalize.Normalizer
	logger     *zap.Logger
}

// New creates an Analyzer on top of a generation client.
func New(client Generator, logger *zap.Logger) *Analyzer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Analyzer{
		client:     client,
		normalizer: normalize.New(logger),
		logger:     logger,
	}
}

// Analyze sends the transcript to the generation service and normalizes
// the response. Empty transcripts are rejected before any network call.
// Failures are typed: ErrInvalidInput, ErrServiceUnavailable, or
// ErrParseFailure; callers are expected to fall back to OfflineSummarize
// rather than surface these to an end consumer.
func (a *Analyzer) Analyze(ctx context.Context, transcript string) (types.AnalysisRecord, error) {
	if strings.TrimSpace(transcript) == "" {
		return types.AnalysisRecord{}, types.ErrInvalidInput
	}

	raw, err := a.client.Generate(ctx, BuildPrompt(transcript))
	if err != nil {
		return types.AnalysisRecord{}, fmt.Errorf("generation failed: %w", err)
	}

	rec, err := a.normalizer.Normalize(raw)
	if err != nil {
		a.logger.Debug("normalization failed",
			zap.Int("raw_len", len(raw)),
			zap.Error(err))
		return types.AnalysisRecord{}, err
	}
	return rec, nil
}
