package rewrite

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"copy-check/api/internal/copycheck/types"
)

func intp(n int) *int { return &n }

func TestMaskRestore_RoundTrip(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		text     string
		wantURLs []string
	}{
		{name: "no urls", text: "plain copy with no links", wantURLs: nil},
		{name: "empty", text: "", wantURLs: nil},
		{name: "one url", text: "visit https://x.co today", wantURLs: []string{"https://x.co"}},
		{
			name:     "many urls",
			text:     "see https://a.com and www.b.org/x?y=1 (also http://c.io) HTTPS://D.NET",
			wantURLs: []string{"https://a.com", "www.b.org/x?y=1", "http://c.io", "HTTPS://D.NET"},
		},
		{name: "repeated url", text: "https://x.co https://x.co", wantURLs: []string{"https://x.co", "https://x.co"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			m := Mask(tc.text)
			assert.Equal(t, tc.wantURLs, m.URLs)
			for _, u := range tc.wantURLs {
				assert.NotContains(t, m.Text, u)
			}
			assert.Equal(t, tc.text, m.Restore())
		})
	}
}

func TestMask_PlaceholdersArePositional(t *testing.T) {
	t.Parallel()

	m := Mask("a https://one.io b www.two.io c")
	assert.Equal(t, "a __URL0__ b __URL1__ c", m.Text)
	assert.Equal(t, "a www.two.io b https://one.io c", Restore("a __URL1__ b __URL0__ c", m.URLs))
	assert.Equal(t, "keep __URL7__", Restore("keep __URL7__", m.URLs))
}

func TestRewrite_BannedWords(t *testing.T) {
	t.Parallel()

	c := types.Constraints{MaxChars: 200}

	res := Rewrite("Buy now, BUY today! Buyer beware", c, types.Brand{BannedWords: []string{"buy"}})
	assert.Equal(t, "now, today! Buyer beware", res.Text)
	assert.Equal(t, []string{`Removed banned word: "buy"`}, res.Flags)

	res = Rewrite("Buy at https://buy.example.com/buy", c, types.Brand{BannedWords: []string{"buy"}})
	assert.Equal(t, "at https://buy.example.com/buy", res.Text)
}

func TestRewrite_RequiredPhrases(t *testing.T) {
	t.Parallel()

	c := types.Constraints{MaxChars: 200}

	res := Rewrite("Help families in need", c, types.Brand{RequiredPhrases: []string{"Donate Today"}})
	assert.Equal(t, "Help families in need — Donate Today", res.Text)
	assert.Equal(t, []string{`Injected required phrase: "Donate Today"`}, res.Flags)

	res = Rewrite("please donate today", c, types.Brand{RequiredPhrases: []string{"Donate Today"}})
	assert.Equal(t, "please donate today", res.Text)
	assert.Empty(t, res.Flags)

	res = Rewrite("", c, types.Brand{RequiredPhrases: []string{"Donate Today"}})
	assert.Equal(t, "Donate Today", res.Text)

	res = Rewrite("go to https://x.co", c, types.Brand{RequiredPhrases: []string{"https://x.co"}})
	assert.Equal(t, "go to https://x.co", res.Text)
	assert.Empty(t, res.Flags)
}

func TestRewrite_HashtagCap(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		text      string
		max       *int
		want      string
		wantFlags []string
	}{
		{name: "cap one", text: "#a #b #c", max: intp(1), want: "#a b c", wantFlags: []string{"Capped hashtags at 1"}},
		{name: "cap zero", text: "#a #b", max: intp(0), want: "a b", wantFlags: []string{"Capped hashtags at 0"}},
		{name: "unlimited", text: "#a #b #c", max: nil, want: "#a #b #c", wantFlags: []string{}},
		{name: "under cap", text: "#a #b", max: intp(5), want: "#a #b", wantFlags: []string{}},
		{name: "punctuated token is not a hashtag", text: "#a, #b #c", max: intp(1), want: "#a, #b c", wantFlags: []string{"Capped hashtags at 1"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			res := Rewrite(tc.text, types.Constraints{MaxChars: 100, MaxHashtags: tc.max}, types.Brand{})
			assert.Equal(t, tc.want, res.Text)
			assert.Equal(t, tc.wantFlags, res.Flags)
			if tc.max != nil {
				assert.LessOrEqual(t, CountHashtags(res.Text), *tc.max)
			}
		})
	}
}

func TestRewrite_TrimAtWordBoundary(t *testing.T) {
	t.Parallel()

	res := Rewrite("The quick brown fox jumps over the lazy dog", types.Constraints{MaxChars: 20}, types.Brand{})
	assert.Equal(t, "The quick brown fox…", res.Text)
	assert.Equal(t, 20, Len(res.Text))
	assert.Equal(t, []string{"Trimmed to maxChars"}, res.Flags)
}

func TestRewrite_TrimKeepsURL(t *testing.T) {
	t.Parallel()

	res := Rewrite("Buy now!! visit https://x.co", types.Constraints{MaxChars: 20},
		types.Brand{BannedWords: []string{"Buy"}})

	assert.Equal(t, "now!!… https://x.co", res.Text)
	assert.LessOrEqual(t, Len(res.Text), 20)
	assert.NotContains(t, strings.ToLower(res.Text), "buy")
	assert.Equal(t, []string{`Removed banned word: "Buy"`, "Trimmed to maxChars"}, res.Flags)
}

func TestRewrite_OversizedURLIsKept(t *testing.T) {
	t.Parallel()

	url := "https://example.com/a/very/long/path"
	res := Rewrite("see "+url, types.Constraints{MaxChars: 10}, types.Brand{})

	assert.Equal(t, url, res.Text)
	assert.LessOrEqual(t, Len(res.Text), 10+Len(url))
	assert.Equal(t, []string{"Trimmed to maxChars", `Kept URL beyond maxChars: "` + url + `"`}, res.Flags)

	again := Rewrite(res.Text, types.Constraints{MaxChars: 10}, types.Brand{})
	assert.Equal(t, res.Text, again.Text)
	assert.Empty(t, again.Flags)
}

func TestRewrite_TrimKeepsRequiredPhrase(t *testing.T) {
	t.Parallel()

	c := types.Constraints{MaxChars: 40}
	b := types.Brand{RequiredPhrases: []string{"Donate Today"}}

	res := Rewrite("We are raising money for the new community garden this spring", c, b)
	assert.Equal(t, "We are raising money for… Donate Today", res.Text)
	assert.Equal(t, []string{`Injected required phrase: "Donate Today"`, "Trimmed to maxChars"}, res.Flags)
}

func TestRewrite_RequiredPhraseThatCannotFit(t *testing.T) {
	t.Parallel()

	res := Rewrite("Hello there", types.Constraints{MaxChars: 8},
		types.Brand{RequiredPhrases: []string{"Please donate generously"}})

	assert.LessOrEqual(t, Len(res.Text), 8)
	assert.Contains(t, res.Flags, `Could not fit required phrase: "Please donate generously"`)
}

func TestRewrite_MissingCTA(t *testing.T) {
	t.Parallel()

	c := types.Constraints{MaxChars: 100, RequireCTA: true}

	res := Rewrite("Hello world", c, types.Brand{})
	assert.Equal(t, []string{"Missing CTA"}, res.Flags)

	res = Rewrite("Join us this weekend", c, types.Brand{})
	assert.Empty(t, res.Flags)
}

func TestRewrite_Idempotent(t *testing.T) {
	t.Parallel()

	cases := []struct {
		text string
		c    types.Constraints
		b    types.Brand
	}{
		{"Buy now!! visit https://x.co", types.Constraints{MaxChars: 20}, types.Brand{BannedWords: []string{"Buy"}}},
		{"#a #b #c", types.Constraints{MaxChars: 50, MaxHashtags: intp(1)}, types.Brand{}},
		{"Help families in need", types.Constraints{MaxChars: 100}, types.Brand{RequiredPhrases: []string{"Donate Today"}}},
		{"We are raising money for the new community garden this spring", types.Constraints{MaxChars: 40},
			types.Brand{RequiredPhrases: []string{"Donate Today"}}},
		{"  spaced\n\nout   text  ", types.Constraints{MaxChars: 100}, types.Brand{}},
	}

	for _, tc := range cases {
		first := Rewrite(tc.text, tc.c, tc.b)
		second := Rewrite(first.Text, tc.c, tc.b)
		assert.Equal(t, first.Text, second.Text, "input %q", tc.text)
		assert.Empty(t, second.Flags, "input %q", tc.text)
	}
}

// TestRewrite_Invariants drives the rewriter with generated copy and checks
// the hard constraints on every result.
func TestRewrite_Invariants(t *testing.T) {
	t.Parallel()

	words := []string{
		"free", "Free", "sale", "help", "our", "community", "today", "now", "join", "the",
		"#impact", "#give", "#local", "https://x.co", "www.example.org/path", "families", "now!",
	}
	banned := []string{"free", "sale"}
	rng := rand.New(rand.NewSource(7))

	for i := 0; i < 300; i++ {
		n := 1 + rng.Intn(25)
		parts := make([]string, n)
		for j := range parts {
			parts[j] = words[rng.Intn(len(words))]
		}
		text := strings.Join(parts, " ")
		c := types.Constraints{MaxChars: 15 + rng.Intn(80), MaxHashtags: intp(rng.Intn(3))}
		b := types.Brand{BannedWords: banned, RequiredPhrases: []string{"Learn more"}}

		res := Rewrite(text, c, b)

		longest := 0
		for _, u := range FindURLs(res.Text) {
			if l := Len(u); l > longest {
				longest = l
			}
		}
		require.LessOrEqual(t, Len(res.Text), c.MaxChars+longest, "text %q", text)
		require.LessOrEqual(t, CountHashtags(res.Text), *c.MaxHashtags, "text %q", text)
		masked := Mask(res.Text).Text
		for _, bw := range banned {
			require.False(t, bannedRe(bw).MatchString(masked), "banned %q in %q", bw, res.Text)
		}
		requireFixpoint(t, res, c, b)
	}
}

// editFlags are the flags that report a change to the text.
var editFlags = []string{"Removed banned word", "Injected required phrase", "Capped hashtags", "Trimmed to maxChars", "Dropped URL"}

// requireFixpoint checks that rewriting res.Text again changes nothing and
// reports no edits.
func requireFixpoint(t *testing.T, res Result, c types.Constraints, b types.Brand) {
	t.Helper()

	again := Rewrite(res.Text, c, b)
	require.Equal(t, res.Text, again.Text, "second pass changed the text")
	for _, f := range again.Flags {
		for _, e := range editFlags {
			require.False(t, strings.HasPrefix(f, e), "second pass of %q reported %q", res.Text, f)
		}
	}
}

func TestRewrite_UnfitPhraseIsNotReinjected(t *testing.T) {
	t.Parallel()

	c := types.Constraints{MaxChars: 8}
	b := types.Brand{RequiredPhrases: []string{"Learn more"}}

	res := Rewrite("share the news with everyone you know today", c, b)
	assert.Equal(t, "share…", res.Text)
	assert.Equal(t, []string{"Trimmed to maxChars", `Could not fit required phrase: "Learn more"`}, res.Flags)

	again := Rewrite(res.Text, c, b)
	assert.Equal(t, "share…", again.Text)
	assert.Equal(t, []string{`Could not fit required phrase: "Learn more"`}, again.Flags)
}

func TestRewrite_NoDoubleEllipsis(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		c    types.Constraints
		b    types.Brand
	}{
		{
			name: "prose and url",
			text: "#Buy tickets for the spring fair at https://x.co/abc",
			c:    types.Constraints{MaxChars: 24},
			b:    types.Brand{RequiredPhrases: []string{"Register before Friday"}},
		},
		{
			name: "exact budget prose",
			text: "ab cdef hij klm",
			c:    types.Constraints{MaxChars: 8},
			b:    types.Brand{RequiredPhrases: []string{"Learn more"}},
		},
		{
			name: "already shortened",
			text: "share… — Learn more",
			c:    types.Constraints{MaxChars: 8},
			b:    types.Brand{RequiredPhrases: []string{"Learn more"}},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			res := Rewrite(tc.text, tc.c, tc.b)
			assert.NotContains(t, res.Text, ellipsis+ellipsis)
			requireFixpoint(t, res, tc.c, tc.b)
		})
	}
}

func TestRewrite_PhraseInsideDroppedURL(t *testing.T) {
	t.Parallel()

	c := types.Constraints{MaxChars: 2}
	b := types.Brand{RequiredPhrases: []string{"x.co"}}

	res := Rewrite("see https://y.io and https://x.co", c, b)
	assert.Equal(t, "https://y.io", res.Text)
	assert.Contains(t, res.Flags, `Dropped URL to fit maxChars: "https://x.co"`)
	assert.Contains(t, res.Flags, `Could not fit required phrase: "x.co"`)
	requireFixpoint(t, res, c, b)
}
