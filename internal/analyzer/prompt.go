package analyzer

import "strings"

const transcriptPrompt = `Analyze this meeting transcript and extract the following information:

1. Summary: Brief overview of what was discussed
2. Attendees: Names of people who spoke in the meeting
3. Action Items: Specific tasks or follow-ups mentioned (exactly 3 items)

Meeting Transcript:
{{transcript}}

Return only this JSON format:
{"summary": "brief summary of the meeting", "attendees": ["Name1", "Name2", "Name3"], "action_items": ["Action 1", "Action 2", "Action 3"]}

Rules:
- Extract attendee names from speaker labels (e.g., "John:", "Alice said", etc.)
- Action items should start with verbs and be specific
- If fewer than 3 action items exist, create reasonable follow-up tasks
- Use only information present in the transcript`

// BuildPrompt renders the analysis prompt for one transcript.
func BuildPrompt(transcript string) string {
	return strings.Replace(transcriptPrompt, "{{transcript}}", transcript, 1)
}
