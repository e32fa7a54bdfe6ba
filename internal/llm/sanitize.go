package llm

import "strings"

// ExtractJSONObject returns the best-effort JSON object substring of raw:
// everything from the first '{' to the last '}' inclusive, or "" when no such
// slice exists. Deliberately permissive; a blob with multiple unrelated braces
// can yield invalid JSON, which surfaces downstream as a decode failure.
func ExtractJSONObject(raw string) string {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end == -1 || end < start {
		return ""
	}
	return raw[start : end+1]
}
