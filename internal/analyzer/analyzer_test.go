package analyzer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"scribed/internal/types"
)

// stubGenerator returns a canned response or error.
type stubGenerator struct {
	response string
	err      error
	prompts  []string
}

func (s *stubGenerator) Generate(_ context.Context, prompt string) (string, error) {
	s.prompts = append(s.prompts, prompt)
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

func TestAnalyze_EndToEnd(t *testing.T) {
	stub := &stubGenerator{
		response: `{"summary":"Standup sync on frontend and deploy","attendees":["John","Alice","Bob"],"action_items":["Deploy tomorrow"]}`,
	}
	a := New(stub, zap.NewNop())

	transcript := "John: Good morning. Alice: The frontend is done. Bob: I'll deploy tomorrow."
	rec, err := a.Analyze(context.Background(), transcript)
	require.NoError(t, err)

	assert.Equal(t, []string{"John", "Alice", "Bob"}, rec.Attendees)
	require.Len(t, rec.ActionItems, types.ActionItemCount)
	assert.Equal(t, "Deploy tomorrow", rec.ActionItems[0])

	// The transcript itself must reach the service inside the prompt.
	require.Len(t, stub.prompts, 1)
	assert.True(t, strings.Contains(stub.prompts[0], transcript))
}

func TestAnalyze_EmptyTranscriptRejectedBeforeCall(t *testing.T) {
	stub := &stubGenerator{response: "never used"}
	a := New(stub, zap.NewNop())

	_, err := a.Analyze(context.Background(), "   \n ")
	assert.True(t, errors.Is(err, types.ErrInvalidInput))
	assert.Empty(t, stub.prompts, "generation must not be contacted for empty input")
}

func TestAnalyze_ServiceErrorPropagatesTyped(t *testing.T) {
	stub := &stubGenerator{err: types.ErrServiceUnavailable}
	a := New(stub, zap.NewNop())

	_, err := a.Analyze(context.Background(), "John: hello.")
	assert.True(t, errors.Is(err, types.ErrServiceUnavailable))
}

func TestAnalyze_UnparsableResponsePropagatesParseFailure(t *testing.T) {
	stub := &stubGenerator{response: "I could not produce JSON, sorry."}
	a := New(stub, zap.NewNop())

	_, err := a.Analyze(context.Background(), "John: hello.")
	assert.True(t, errors.Is(err, types.ErrParseFailure))
}

func TestBuildPrompt_EmbedsTranscript(t *testing.T) {
	p := BuildPrompt("Alice: ship it")
	assert.Contains(t, p, "Alice: ship it")
	assert.Contains(t, p, `"action_items"`)
}
