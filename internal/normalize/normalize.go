// Package normalize turns a free-form model response into a validated
// AnalysisRecord. Generation output is non-deterministic: it may be clean
// JSON, JSON wrapped in prose or code fences, truncated JSON, or pure text.
// An ordered chain of parsing strategies extracts whatever object it can,
// then a single coercion step guarantees the output schema never varies.
package normalize

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"scribed/internal/types"
)

const padActionItem = "Follow up on meeting outcomes"

// rawAnalysis is the loosely-typed object a strategy extracts. Fields are
// `any` so a response with the wrong shape for one field does not discard
// the others.
type rawAnalysis struct {
	Summary     any `json:"summary"`
	Attendees   any `json:"attendees"`
	ActionItems any `json:"action_items"`
}

// strategy attempts to extract a candidate object from raw text. Strategies
// are pure: same input, same result.
type strategy struct {
	name string
	fn   func(string) (*rawAnalysis, bool)
}

var strategies = []strategy{
	{"direct", decodeDirect},
	{"embedded", decodeEmbedded},
	{"fields", decodeFieldPatterns},
}

// Normalizer applies the strategy chain and coerces the result.
type Normalizer struct {
	logger *zap.Logger
}

// New creates a Normalizer.
func New(logger *zap.Logger) *Normalizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Normalizer{logger: logger}
}

// Normalize runs the strategy chain over raw and returns a record that
// always satisfies the schema bounds, or ErrParseFailure when no strategy
// extracted anything.
func (n *Normalizer) Normalize(raw string) (types.AnalysisRecord, error) {
	for _, s := range strategies {
		obj, ok := s.fn(raw)
		if !ok {
			continue
		}
		n.logger.Debug("response parsed", zap.String("strategy", s.name))
		return coerce(obj), nil
	}
	return types.AnalysisRecord{}, fmt.Errorf("%w: %d strategies exhausted",
		types.ErrParseFailure, len(strategies))
}

// decodeDirect treats the whole response, stripped of code fences and
// surrounding whitespace, as the target object.
func decodeDirect(raw string) (*rawAnalysis, bool) {
	cleaned := strings.TrimSpace(stripFences(raw))
	if cleaned == "" || cleaned[0] != '{' {
		return nil, false
	}
	var obj rawAnalysis
	if err := json.Unmarshal([]byte(cleaned), &obj); err != nil {
		return nil, false
	}
	return &obj, true
}

// decodeEmbedded scans for balanced brace-delimited regions and decodes the
// first one that carries at least one expected field. Handles responses
// that wrap the answer in explanatory prose.
func decodeEmbedded(raw string) (*rawAnalysis, bool) {
	for _, candidate := range findJSONCandidates(raw) {
		var obj rawAnalysis
		if err := json.Unmarshal([]byte(candidate), &obj); err != nil {
			continue
		}
		if obj.Summary != nil || obj.Attendees != nil || obj.ActionItems != nil {
			return &obj, true
		}
	}
	return nil, false
}

// Array bodies are matched up to the closing bracket or, for truncated
// responses, to the end of the text.
var (
	summaryPattern   = regexp.MustCompile(`"summary"\s*:\s*"([^"]*)"`)
	attendeesPattern = regexp.MustCompile(`(?s)"attendees"\s*:\s*\[([^\]]*)`)
	itemsPattern     = regexp.MustCompile(`(?s)"action_items"\s*:\s*\[([^\]]*)`)
	quotedPattern    = regexp.MustCompile(`"([^"]*)"`)
)

// decodeFieldPatterns is the last resort: no syntactically valid object
// exists anywhere (e.g. truncated JSON), so match the three field labels
// individually and assemble a best-effort object from whatever is present.
func decodeFieldPatterns(raw string) (*rawAnalysis, bool) {
	obj := &rawAnalysis{}
	found := false

	if m := summaryPattern.FindStringSubmatch(raw); m != nil {
		obj.Summary = m[1]
		found = true
	}
	if m := attendeesPattern.FindStringSubmatch(raw); m != nil {
		if names := quotedStrings(m[1]); len(names) > 0 {
			obj.Attendees = names
			found = true
		}
	}
	if m := itemsPattern.FindStringSubmatch(raw); m != nil {
		if items := quotedStrings(m[1]); len(items) > 0 {
			obj.ActionItems = items
			found = true
		}
	}

	if !found {
		return nil, false
	}
	return obj, true
}

func quotedStrings(arrayBody string) []any {
	var out []any
	for _, m := range quotedPattern.FindAllStringSubmatch(arrayBody, -1) {
		out = append(out, m[1])
	}
	return out
}

// stripFences removes a markdown code fence wrapper, with or without a
// language tag, if one is present.
func stripFences(s string) string {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "```") {
		return s
	}
	trimmed = strings.TrimPrefix(trimmed, "```")
	if nl := strings.Index(trimmed, "\n"); nl != -1 {
		// Drop the optional language identifier line.
		if lang := strings.TrimSpace(trimmed[:nl]); lang == "" || !strings.ContainsAny(lang, "{}") {
			trimmed = trimmed[nl+1:]
		}
	}
	if end := strings.LastIndex(trimmed, "```"); end != -1 {
		trimmed = trimmed[:end]
	}
	return strings.TrimSpace(trimmed)
}

// coerce applies the uniform validation step to any candidate, however it
// was produced.
func coerce(obj *rawAnalysis) types.AnalysisRecord {
	return Finalize(scalarString(obj.Summary), stringSlice(obj.Attendees), stringSlice(obj.ActionItems))
}

// Finalize builds a schema-conforming record from loose parts. Shared with
// the offline summarizer so every producer enforces the same bounds:
// non-empty summary, at most MaxAttendees deduplicated attendees, exactly
// ActionItemCount action items.
func Finalize(summary string, attendees, actionItems []string) types.AnalysisRecord {
	rec := types.AnalysisRecord{
		Summary:     strings.TrimSpace(summary),
		Attendees:   dedupeAttendees(attendees),
		ActionItems: padActionItems(actionItems),
	}
	if rec.Summary == "" {
		rec.Summary = types.FallbackSummary
	}
	return rec
}

// dedupeAttendees trims, collapses case-insensitive duplicates keeping the
// first occurrence, caps the list at MaxAttendees, and substitutes the
// sentinel entry when nothing remains.
func dedupeAttendees(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, types.MaxAttendees)
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		key := strings.ToLower(name)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, name)
		if len(out) == types.MaxAttendees {
			break
		}
	}
	if len(out) == 0 {
		return []string{types.FallbackAttendee}
	}
	return out
}

// padActionItems keeps trimmed non-empty items in order, then pads or
// truncates to exactly ActionItemCount.
func padActionItems(items []string) []string {
	out := make([]string, 0, types.ActionItemCount)
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		out = append(out, item)
		if len(out) == types.ActionItemCount {
			break
		}
	}
	for len(out) < types.ActionItemCount {
		out = append(out, padActionItem)
	}
	return out
}

func scalarString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return fmt.Sprintf("%v", t)
	default:
		return ""
	}
}

func stringSlice(v any) []string {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		switch t := item.(type) {
		case string:
			out = append(out, t)
		case float64:
			out = append(out, fmt.Sprintf("%v", t))
		}
	}
	return out
}
