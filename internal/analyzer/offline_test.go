package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scribed/internal/types"
)

func TestOfflineSummarize_SpeakerExtraction(t *testing.T) {
	transcript := `John: Good morning everyone.
Alice: The frontend is done.
Bob mentioned the database migration.
[10:30] Carol: We should review the budget.`

	rec := OfflineSummarize(transcript)
	assert.Equal(t, []string{"John", "Alice", "Bob", "Carol"}, rec.Attendees)
}

func TestOfflineSummarize_SchemaAlwaysHolds(t *testing.T) {
	inputs := []string{
		"",
		"no speakers here at all",
		"John: we will ship the release on friday.\nAlice: I need to prepare slides for the board meeting.",
		"x: y",
	}
	for _, input := range inputs {
		rec := OfflineSummarize(input)
		require.Len(t, rec.ActionItems, types.ActionItemCount, "input %q", input)
		assert.NotEmpty(t, rec.Summary, "input %q", input)
		assert.NotEmpty(t, rec.Attendees, "input %q", input)
		assert.LessOrEqual(t, len(rec.Attendees), types.MaxAttendees)
	}
}

func TestOfflineSummarize_ActionLines(t *testing.T) {
	transcript := `Alice: I will send the quarterly report to finance.
Bob: Review the deployment checklist, we need to ship clean.
Carol: nothing to add.`

	rec := OfflineSummarize(transcript)

	// Both commitment lines survive; the speaker labels are stripped.
	assert.Contains(t, rec.ActionItems[0], "send the quarterly report")
	assert.Equal(t, "Review the deployment checklist, we need to ship clean.", rec.ActionItems[1])
	// Third item is a synthesized placeholder.
	assert.Contains(t, rec.ActionItems[2], "follow up on item 3")
}

func TestOfflineSummarize_NoSpeakersUsesSentinel(t *testing.T) {
	rec := OfflineSummarize("just some notes without any names")
	assert.Equal(t, []string{types.FallbackAttendee}, rec.Attendees)
}

func TestOfflineSummarize_SummaryFromLeadingSentences(t *testing.T) {
	rec := OfflineSummarize("First point. Second point. Third point.")
	assert.Equal(t, "First point. Second point", rec.Summary)
}
