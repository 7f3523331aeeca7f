package sqlguard

import "strings"

const fence = "```"

var sqlFenceTags = map[string]struct{}{
	"sql":        {},
	"googlesql":  {},
	"bigquery":   {},
	"duckdb":     {},
	"postgres":   {},
	"postgresql": {},
	"psql":       {},
	"pgsql":      {},
}

// Sanitize strips leading and trailing code fences (bare or tagged with a SQL
// language name, any case) and surrounding whitespace from model output.
// It runs to a fixpoint, so Sanitize(Sanitize(s)) == Sanitize(s).
func Sanitize(text string) string {
	current := strings.TrimSpace(text)
	for {
		next := strings.TrimSpace(stripTrailingFence(stripLeadingFence(current)))
		if next == current {
			return current
		}
		current = next
	}
}

func stripLeadingFence(text string) string {
	if !strings.HasPrefix(text, fence) {
		return text
	}
	rest := strings.TrimPrefix(text, fence)
	end := 0
	for end < len(rest) && isTagByte(rest[end]) {
		end++
	}
	if _, ok := sqlFenceTags[strings.ToLower(rest[:end])]; ok {
		return rest[end:]
	}
	return rest
}

func stripTrailingFence(text string) string {
	return strings.TrimSuffix(text, fence)
}

func isTagByte(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == '_' || c == '-' || c == '+'
}
