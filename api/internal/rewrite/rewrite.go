// Package rewrite implements the deterministic copy rewriter: banned-word
// removal, required-phrase injection, hashtag capping and length trimming,
// with URLs protected from every transform.
package rewrite

import (
	"fmt"
	"regexp"
	"strings"

	"copy-check/api/internal/copycheck/types"
)

// PhraseDelimiter separates an injected required phrase from existing copy.
const PhraseDelimiter = " — "

var (
	spaceRe   = regexp.MustCompile(`[\s\p{Z}]+`)
	tokenRe   = regexp.MustCompile(`\S+`)
	hashtagRe = regexp.MustCompile(`^#[\p{L}0-9_]+$`)
	ctaRe     = regexp.MustCompile(`(?i)\b(?:join|sign up|donate|learn more|read more|take action|share)\b`)
)

// Result is the rewritten text plus the flags describing what changed.
type Result struct {
	Text  string
	Flags []string
}

// maxPasses bounds how often Rewrite re-runs the rules on its own output.
const maxPasses = 3

// Rewrite runs the full rule pipeline over text and repeats it on the result
// until the text stops changing, so Rewrite(Rewrite(x).Text) leaves the text
// as it is.
func Rewrite(text string, c types.Constraints, b types.Brand) Result {
	res := rewriteOnce(text, c, b)
	for i := 0; i < maxPasses; i++ {
		next := rewriteOnce(res.Text, c, b)
		if next.Text == res.Text {
			break
		}
		res = Result{Text: next.Text, Flags: Dedupe(append(res.Flags, next.Flags...))}
	}
	return res
}

// rewriteOnce applies the rules once. Required phrases the trim stage could
// not keep are left out of a second run, so injecting them never costs prose.
func rewriteOnce(text string, c types.Constraints, b types.Brand) Result {
	res, unfit := apply(text, c, b.BannedWords, b.RequiredPhrases)
	if len(unfit) == 0 {
		return res
	}

	keep := make([]string, 0, len(b.RequiredPhrases))
	for _, p := range b.RequiredPhrases {
		if !containsPhrase(unfit, p) {
			keep = append(keep, p)
		}
	}
	res, _ = apply(text, c, b.BannedWords, keep)

	var fl flagSet
	for _, f := range res.Flags {
		fl.add(f)
	}
	for _, p := range unfit {
		if !containsFold(res.Text, p) {
			fl.add(fmt.Sprintf("Could not fit required phrase: %q", p))
		}
	}
	return Result{Text: res.Text, Flags: fl.list()}
}

// apply runs every stage once and reports the required phrases lost to the
// length limit. The stage order matters: URLs are masked before any
// word-level edit and restored before the hashtag and length stages, which
// must see the real text.
func apply(text string, c types.Constraints, banned, phrases []string) (Result, []string) {
	var fl flagSet

	m := Mask(text)
	t := removeBanned(m.Text, banned, &fl)
	t = injectRequired(t, m.URLs, phrases, &fl)
	t = Restore(t, m.URLs)
	t = capHashtags(t, c.MaxHashtags, &fl)
	t, unfit := trimTo(t, c.MaxChars, phrases, &fl)

	// a hard cut inside a long token can expose a banned word
	if m := Mask(t); hasBanned(m.Text, banned) {
		t = Restore(removeBanned(m.Text, banned, &fl), m.URLs)
	}

	if c.RequireCTA && !ctaRe.MatchString(t) {
		fl.add("Missing CTA")
	}
	return Result{Text: t, Flags: fl.list()}, unfit
}

func containsPhrase(list []string, p string) bool {
	p = strings.TrimSpace(p)
	for _, q := range list {
		if strings.EqualFold(q, p) {
			return true
		}
	}
	return false
}

func removeBanned(t string, banned []string, fl *flagSet) string {
	for _, bw := range banned {
		bw = strings.TrimSpace(bw)
		if bw == "" {
			continue
		}
		re := bannedRe(bw)
		if re.MatchString(t) {
			fl.add(fmt.Sprintf("Removed banned word: %q", bw))
			t = re.ReplaceAllString(t, "")
		}
	}
	return normalizeSpaces(t)
}

func bannedRe(bw string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(bw) + `\b`)
}

func hasBanned(t string, banned []string) bool {
	for _, bw := range banned {
		if bw = strings.TrimSpace(bw); bw != "" && bannedRe(bw).MatchString(t) {
			return true
		}
	}
	return false
}

// injectRequired appends each missing phrase. Presence is checked against the
// restored text so a phrase that is itself a URL is not appended twice.
func injectRequired(t string, urls []string, phrases []string, fl *flagSet) string {
	for _, req := range phrases {
		req = strings.TrimSpace(req)
		if req == "" {
			continue
		}
		if containsFold(Restore(t, urls), req) {
			continue
		}
		if t != "" {
			t += PhraseDelimiter
		}
		t += req
		fl.add(fmt.Sprintf("Injected required phrase: %q", req))
	}
	return t
}

// capHashtags keeps the first max hashtag tokens and strips the leading '#'
// from the rest, so the word survives as plain text.
func capHashtags(t string, max *int, fl *flagSet) string {
	if max == nil || *max < 0 {
		return t
	}
	count, stripped := 0, false
	t = tokenRe.ReplaceAllStringFunc(t, func(tok string) string {
		if !hashtagRe.MatchString(tok) {
			return tok
		}
		count++
		if count <= *max {
			return tok
		}
		stripped = true
		return strings.TrimPrefix(tok, "#")
	})
	if stripped {
		fl.add(fmt.Sprintf("Capped hashtags at %d", *max))
	}
	return t
}

// CountHashtags reports how many whitespace-delimited tokens are hashtags.
func CountHashtags(t string) int {
	n := 0
	for _, tok := range tokenRe.FindAllString(t, -1) {
		if hashtagRe.MatchString(tok) {
			n++
		}
	}
	return n
}

func normalizeSpaces(s string) string {
	return strings.TrimSpace(spaceRe.ReplaceAllString(s, " "))
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

// flagSet collects flags in insertion order without duplicates.
type flagSet struct {
	seen  map[string]bool
	items []string
}

func (f *flagSet) add(s string) {
	if f.seen == nil {
		f.seen = map[string]bool{}
	}
	if f.seen[s] {
		return
	}
	f.seen[s] = true
	f.items = append(f.items, s)
}

func (f *flagSet) list() []string {
	if f.items == nil {
		return []string{}
	}
	return f.items
}

// Dedupe returns flags with duplicates removed, keeping first occurrences.
func Dedupe(flags []string) []string {
	var fl flagSet
	for _, f := range flags {
		fl.add(f)
	}
	return fl.list()
}
