package rewrite

import (
	"fmt"
	"regexp"
	"strconv"
)

// urlRe is the single URL detector used by every stage: scheme-qualified or
// www.-prefixed tokens running up to whitespace or a closing parenthesis.
var urlRe = regexp.MustCompile(`(?i)(?:https?://[^\s)]+|www\.[^\s)]+)`)

var placeholderRe = regexp.MustCompile(`__URL(\d+)__`)

func placeholder(i int) string { return fmt.Sprintf("__URL%d__", i) }

// Masked is text whose URLs have been swapped for positional placeholders.
type Masked struct {
	Text string
	URLs []string
}

// Mask replaces every URL in text, in order of occurrence, with __URL<n>__.
// Text that already contains a placeholder-shaped substring does not survive
// a round trip; that is a known limitation.
func Mask(text string) Masked {
	var urls []string
	masked := urlRe.ReplaceAllStringFunc(text, func(u string) string {
		urls = append(urls, u)
		return placeholder(len(urls) - 1)
	})
	return Masked{Text: masked, URLs: urls}
}

// Restore puts the original URLs back. Placeholders with no matching URL are
// left as they are.
func Restore(masked string, urls []string) string {
	if len(urls) == 0 {
		return masked
	}
	return placeholderRe.ReplaceAllStringFunc(masked, func(ph string) string {
		n, err := strconv.Atoi(placeholderRe.FindStringSubmatch(ph)[1])
		if err != nil || n < 0 || n >= len(urls) {
			return ph
		}
		return urls[n]
	})
}

// Restore is shorthand for Restore(m.Text, m.URLs).
func (m Masked) Restore() string { return Restore(m.Text, m.URLs) }

// FindURLs returns the URLs in s in order of occurrence.
func FindURLs(s string) []string {
	return urlRe.FindAllString(s, -1)
}
