package util

import "strings"

// StripCodeFences removes a surrounding markdown fence (```json ... ```)
// that models like to wrap JSON answers in.
func StripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 && strings.EqualFold(strings.TrimSpace(s[:i]), "json") {
		s = s[i+1:]
	} else if len(s) >= 4 && strings.EqualFold(s[:4], "json") {
		s = s[4:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
