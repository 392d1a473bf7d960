package strings

import (
	"strings"
)

// DefaultTaskMaxLen is the maximum length task text is echoed back at in
// activation reasons, reports and telemetry. Long task descriptions carry
// no extra signal there and bloat every event they ride on.
const DefaultTaskMaxLen = 50

// MinTruncateLen is the smallest maxLen TruncateDescription accepts.
// Anything shorter leaves no room for content plus "...".
const MinTruncateLen = 4

// TruncateDescription flattens s to a single line and truncates it to
// maxLen characters, appending "..." when something was cut. Newlines and
// whitespace runs collapse to single spaces first.
//
// Slicing is rune-based so multi-byte characters never get split. maxLen
// values below MinTruncateLen are clamped up to it.
func TruncateDescription(s string, maxLen int) string {
	if maxLen < MinTruncateLen {
		maxLen = MinTruncateLen
	}

	s = strings.Join(strings.Fields(s), " ")

	runes := []rune(s)
	if len(runes) > maxLen {
		return string(runes[:maxLen-3]) + "..."
	}
	return s
}

// TruncateTask shortens free-form task text for embedding in reasons and
// reports, using the package default length.
func TruncateTask(task string) string {
	return TruncateDescription(task, DefaultTaskMaxLen)
}
