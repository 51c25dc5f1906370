package rewrite

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	// lookback is how far a cut may back off to reach a word boundary.
	lookback = 20
	ellipsis = "…"
)

// Len is the length measure used for maxChars: Unicode code points.
func Len(s string) int { return utf8.RuneCountInString(s) }

type protected struct {
	text  string
	url   bool
	index int // byte offset of the first occurrence in the source text
}

// trimTo hard-trims s to max runes. URLs and required phrases that a plain cut
// would lose are re-appended after the trimmed prose, URLs taking priority.
// The first URL is kept even when it alone exceeds max. It returns the
// required phrases that were present in s but did not survive the cut,
// including phrases that only occurred inside a dropped URL.
func trimTo(s string, max int, phrases []string, fl *flagSet) (string, []string) {
	if Len(s) <= max {
		return s, nil
	}
	items := protectedItems(s, phrases)

	out, oversized := shorten(s, max), ""
	if !allPresent(out, items) {
		out, oversized = trimWithTail(s, max, items)
	}
	if out == s {
		return s, nil
	}
	fl.add("Trimmed to maxChars")
	if oversized != "" {
		fl.add(fmt.Sprintf("Kept URL beyond maxChars: %q", oversized))
	}
	for _, it := range items {
		if it.url && !presentIn(out, it) {
			fl.add(fmt.Sprintf("Dropped URL to fit maxChars: %q", it.text))
		}
	}
	var unfit []string
	for _, p := range phrases {
		p = strings.TrimSpace(p)
		if p == "" || !containsFold(s, p) || containsFold(out, p) || containsPhrase(unfit, p) {
			continue
		}
		fl.add(fmt.Sprintf("Could not fit required phrase: %q", p))
		unfit = append(unfit, p)
	}
	return out, unfit
}

// trimWithTail also reports the URL it kept despite the limit, if any.
func trimWithTail(s string, max int, items []protected) (string, string) {
	var (
		tail      []protected
		used      int
		oversized string
	)
	for i, it := range items {
		need := Len(it.text)
		if len(tail) > 0 {
			need++
		}
		if used+need <= max {
			tail = append(tail, it)
			used += need
			continue
		}
		if i == 0 && it.url {
			tail = append(tail, it)
			used += need
			oversized = it.text
		}
	}
	if len(tail) == 0 {
		return shorten(s, max), ""
	}

	sort.SliceStable(tail, func(i, j int) bool { return tail[i].index < tail[j].index })
	parts := make([]string, 0, len(tail))
	rest := s
	for _, it := range tail {
		parts = append(parts, it.text)
		rest = removeFirst(rest, it.text)
	}
	suffix := strings.Join(parts, " ")
	rest = normalizeSpaces(rest)

	// room for the prose, a separating space and the ellipsis
	budget := max - Len(suffix) - 2
	if budget <= 0 || rest == "" {
		return suffix, oversized
	}
	prose := cutText(rest, budget)
	if prose == "" {
		return suffix, oversized
	}
	if prose != rest && !strings.HasSuffix(prose, ellipsis) {
		prose += ellipsis
	}
	return prose + " " + suffix, oversized
}

// protectedItems lists URLs (in order) followed by required phrases as they
// actually occur in s.
func protectedItems(s string, phrases []string) []protected {
	var items []protected
	seen := map[string]bool{}
	for _, loc := range urlRe.FindAllStringIndex(s, -1) {
		u := s[loc[0]:loc[1]]
		if seen[u] {
			continue
		}
		seen[u] = true
		items = append(items, protected{text: u, url: true, index: loc[0]})
	}
	urls := len(items)
phrases:
	for _, p := range phrases {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		for _, u := range items[:urls] {
			if containsFold(u.text, p) {
				continue phrases
			}
		}
		loc := regexp.MustCompile(`(?i)` + regexp.QuoteMeta(p)).FindStringIndex(s)
		if loc == nil {
			continue
		}
		actual := s[loc[0]:loc[1]]
		if seen[strings.ToLower(actual)] {
			continue
		}
		seen[strings.ToLower(actual)] = true
		items = append(items, protected{text: actual, index: loc[0]})
	}
	return items
}

func presentIn(s string, it protected) bool {
	if it.url {
		return strings.Contains(s, it.text)
	}
	return containsFold(s, it.text)
}

func allPresent(s string, items []protected) bool {
	for _, it := range items {
		if !presentIn(s, it) {
			return false
		}
	}
	return true
}

func removeFirst(s, sub string) string {
	i := strings.Index(s, sub)
	if i < 0 {
		return s
	}
	return s[:i] + " " + s[i+len(sub):]
}

// shorten cuts s to max runes, spending the last one on an ellipsis when
// there is room for it.
func shorten(s string, max int) string {
	if max <= 1 {
		return cutText(s, max)
	}
	cut := cutText(s, max-1)
	if cut == "" || cut == s || strings.HasSuffix(cut, ellipsis) {
		return cut
	}
	return cut + ellipsis
}

// cutText returns at most n runes of s. A cut that lands inside a word backs
// off to the preceding whitespace when one is within lookback, a cut that
// lands inside a URL backs off to the URL start, and dangling separators are
// dropped from the end.
func cutText(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 0 {
		return ""
	}
	end := n
	if !unicode.IsSpace(r[n]) {
		for i := n - 1; i > 0 && i >= n-lookback; i-- {
			if unicode.IsSpace(r[i]) {
				end = i
				break
			}
		}
	}
	for _, loc := range urlRe.FindAllStringIndex(s, -1) {
		start := utf8.RuneCountInString(s[:loc[0]])
		stop := start + utf8.RuneCountInString(s[loc[0]:loc[1]])
		if end > start && end < stop {
			end = start
			break
		}
	}
	return strings.TrimRightFunc(string(r[:end]), func(c rune) bool {
		return unicode.IsSpace(c) || strings.ContainsRune("—–-,;:", c)
	})
}
