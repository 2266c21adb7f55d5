package analyzer

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"scribed/internal/normalize"
	"scribed/internal/types"
)

// speakerPatterns recognize the ways a transcript names who is talking:
// timestamped labels, bare labels, and reported-speech verbs.
var speakerPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^\[[0-9:]+\]\s*([A-Za-z\x{00C0}-\x{017F}]+)\s*:`),
	regexp.MustCompile(`^([A-Za-z\x{00C0}-\x{017F}]+)\s*:`),
	regexp.MustCompile(`([A-Za-z\x{00C0}-\x{017F}]+)\s+said`),
	regexp.MustCompile(`([A-Za-z\x{00C0}-\x{017F}]+)\s+mentioned`),
	regexp.MustCompile(`([A-Za-z\x{00C0}-\x{017F}]+)\s+asked`),
	regexp.MustCompile(`([A-Za-z\x{00C0}-\x{017F}]+)\s+agreed`),
}

var sentenceSplit = regexp.MustCompile(`[.!?]`)

// actionWords flag a line as containing a commitment worth surfacing.
var actionWords = []string{"will", "should", "need to", "plan to", "going to", "must", "have to"}

// actionVerbs are acceptable openings for an action item; lines starting
// otherwise get a "Follow up on" prefix.
var actionVerbs = []string{"review", "prepare", "send", "call", "meet", "create", "draft", "schedule", "deploy", "fix"}

// OfflineSummarize builds an AnalysisRecord from the transcript alone,
// without any network call. Used as the degraded fallback whenever the
// generation service or the normalizer fails, so every claimed transcript
// still produces a schema-valid artifact.
func OfflineSummarize(transcript string) types.AnalysisRecord {
	lines := nonEmptyLines(transcript)

	attendees := extractSpeakers(lines)
	summary := leadingSentences(transcript, 2)
	items := extractActionLines(lines)

	// Numbered placeholders make it obvious in the artifact that the
	// items were synthesized, not extracted.
	for len(items) < types.ActionItemCount {
		items = append(items, fmt.Sprintf("Review meeting notes and follow up on item %d", len(items)+1))
	}

	return normalize.Finalize(summary, attendees, items)
}

func nonEmptyLines(text string) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// extractSpeakers collects display names in first-appearance order.
func extractSpeakers(lines []string) []string {
	seen := make(map[string]bool)
	var names []string
	for _, line := range lines {
		for _, pattern := range speakerPatterns {
			for _, m := range pattern.FindAllStringSubmatch(line, -1) {
				name := m[1]
				if len(name) < 2 || !isAlpha(name) {
					continue
				}
				name = capitalize(name)
				if !seen[name] {
					seen[name] = true
					names = append(names, name)
				}
			}
		}
	}
	return names
}

func leadingSentences(text string, n int) string {
	parts := sentenceSplit.Split(text, -1)
	var kept []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
		if len(kept) == n {
			break
		}
	}
	return strings.Join(kept, ". ")
}

// extractActionLines pulls lines that read like commitments and rewrites
// them into action-item form.
func extractActionLines(lines []string) []string {
	var items []string
	for _, line := range lines {
		lower := strings.ToLower(line)
		if !containsAny(lower, actionWords) {
			continue
		}

		clean := strings.Trim(line, "-• \t")
		// Drop a leading speaker label.
		if idx := strings.Index(clean, ":"); idx >= 0 && idx < 30 {
			clean = strings.TrimSpace(clean[idx+1:])
		}
		if len(clean) <= 10 {
			continue
		}

		if !startsWithAny(strings.ToLower(clean), actionVerbs) {
			clean = "Follow up on " + strings.ToLower(clean)
		}
		items = append(items, clean)
	}
	return items
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

func startsWithAny(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

func isAlpha(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

func capitalize(s string) string {
	runes := []rune(s)
	runes[0] = unicode.ToUpper(runes[0])
	for i := 1; i < len(runes); i++ {
		runes[i] = unicode.ToLower(runes[i])
	}
	return string(runes)
}
