package copycheck

import (
	"fmt"
	"strings"

	"copy-check/api/internal/copycheck/types"
	"copy-check/api/internal/rewrite"
)

const (
	FlagFallback = "Rule-based fallback"
	FlagAdjusted = "Adjusted to meet constraints"
	// shorterLabel names the extra variant of a fallback answer.
	shorterLabel = "Shorter"
)

// fallbackExplanations are reported whenever the model did not supply any.
var fallbackExplanations = []string{
	"Removed banned words and preserved URLs",
	"Injected required phrases and trimmed to character limit",
	"Heuristic reading-level balance applied",
}

func heuristicScore(in types.Input) types.Score {
	return types.Score{Clarity: 0.7, Brevity: 0.7, Hook: 0.6, Fit: 0.8, ReadingLevel: in.ReadingLevelTarget}
}

// Enforce forces a candidate through the rewriter so the result satisfies the
// input's constraints whatever the model produced. The suggestion and each of
// up to MaxVariants variants are rewritten independently; an empty candidate
// text falls back to the input text. A nil candidate is treated as one with
// no fields at all.
func Enforce(cand *types.Output, in types.Input) *types.Output {
	if cand == nil {
		cand = &types.Output{}
	}
	fix := func(s string) rewrite.Result {
		if strings.TrimSpace(s) == "" {
			s = in.Text
		}
		return rewrite.Rewrite(s, in.Constraints, in.Brand)
	}

	flags := append([]string{}, cand.Flags...)

	res := fix(cand.Suggestion.Text)
	if res.Text != cand.Suggestion.Text {
		flags = append(flags, FlagAdjusted)
	}
	flags = append(flags, res.Flags...)

	variants := make([]types.Variant, 0, min(len(cand.Variants), types.MaxVariants))
	for i, v := range cand.Variants {
		if i == types.MaxVariants {
			break
		}
		label := strings.TrimSpace(v.Label)
		if label == "" {
			label = fmt.Sprintf("Variant %d", i+1)
		}
		text := fix(v.Text).Text
		if text != v.Text {
			flags = append(flags, fmt.Sprintf("Adjusted variant (%s) to meet constraints", label))
		}
		variants = append(variants, types.Variant{Label: label, Text: text})
	}

	out := &types.Output{
		Score:        cand.Score,
		Flags:        rewrite.Dedupe(flags),
		Suggestion:   types.Suggestion{Text: res.Text},
		Variants:     variants,
		Explanations: append([]string{}, cand.Explanations...),
	}
	if scoreMissing(cand.Score) {
		out.Score = heuristicScore(in)
	}
	if len(out.Explanations) == 0 {
		out.Explanations = append([]string{}, fallbackExplanations...)
	}
	return out
}

func scoreMissing(s types.Score) bool {
	noLevel := s.ReadingLevel == "" || s.ReadingLevel == "Unknown"
	return noLevel && s.Clarity == 0 && s.Brevity == 0 && s.Hook == 0 && s.Fit == 0
}

// Fallback is the deterministic answer used when the model path is not
// available. It needs nothing but the input and cannot fail.
func Fallback(in types.Input) *types.Output {
	res := rewrite.Rewrite(in.Text, in.Constraints, in.Brand)

	shorter := in.Constraints
	shorter.MaxChars = min(in.Constraints.MaxChars, max(40, min(120, in.Constraints.MaxChars)))
	short := rewrite.Rewrite(in.Text, shorter, in.Brand)

	return &types.Output{
		Score:        heuristicScore(in),
		Flags:        rewrite.Dedupe(append([]string{FlagFallback}, res.Flags...)),
		Suggestion:   types.Suggestion{Text: res.Text},
		Variants:     []types.Variant{{Label: shorterLabel, Text: short.Text}},
		Explanations: append([]string{}, fallbackExplanations...),
	}
}
