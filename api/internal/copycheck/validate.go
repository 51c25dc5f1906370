package copycheck

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"copy-check/api/internal/copycheck/types"
)

// ValidationError is a client-caused rejection; Reason is returned to the
// caller verbatim.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

func invalid(format string, args ...any) *ValidationError {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// Validate decodes and normalizes a request body. Checks run in a fixed
// order and the first failure is returned. Everything past the required
// fields is coerced with defaults rather than rejected.
func Validate(raw []byte) (types.Input, error) {
	var body map[string]any
	if err := json.Unmarshal(raw, &body); err != nil || body == nil {
		return types.Input{}, invalid("Invalid JSON body")
	}

	text, ok := body["text"].(string)
	if !ok || strings.TrimSpace(text) == "" {
		return types.Input{}, invalid("text required")
	}
	platform, _ := body["platform"].(string)
	if !types.Platform(platform).Valid() {
		return types.Input{}, invalid("invalid platform")
	}
	assetType, _ := body["assetType"].(string)
	if !types.AssetType(assetType).Valid() {
		return types.Input{}, invalid("invalid assetType")
	}

	constraints, _ := body["constraints"].(map[string]any)
	maxChars, ok := constraints["maxChars"].(float64)
	if !ok {
		return types.Input{}, invalid("constraints.maxChars required")
	}
	if maxChars < 1 || math.IsInf(maxChars, 0) || maxChars > math.MaxInt32 {
		return types.Input{}, invalid("constraints.maxChars must be a positive number")
	}

	in := types.Input{
		Text:               text,
		Platform:           types.Platform(platform),
		AssetType:          types.AssetType(assetType),
		ReadingLevelTarget: types.DefaultReadingLevel,
		Constraints: types.Constraints{
			MaxChars:    int(math.Floor(maxChars)),
			MaxHashtags: hashtagCap(constraints["maxHashtags"]),
			RequireCTA:  truthy(constraints["requireCTA"]),
		},
		Brand: types.Brand{
			BannedWords:     []string{},
			RequiredPhrases: []string{},
			Tone:            types.DefaultTone(),
		},
	}
	if rl, ok := body["readingLevelTarget"].(string); ok && strings.TrimSpace(rl) != "" {
		in.ReadingLevelTarget = rl
	}

	if brand, ok := body["brand"].(map[string]any); ok {
		in.Brand.BannedWords = stringList(brand["bannedWords"])
		in.Brand.RequiredPhrases = stringList(brand["requiredPhrases"])
		if tone, ok := brand["tone"].(map[string]any); ok {
			in.Brand.Tone.Confident = numberOr(tone["confident"], in.Brand.Tone.Confident)
			in.Brand.Tone.Compassionate = numberOr(tone["compassionate"], in.Brand.Tone.Compassionate)
			in.Brand.Tone.EvidenceLed = numberOr(tone["evidenceLed"], in.Brand.Tone.EvidenceLed)
		}
	}
	return in, nil
}

// hashtagCap maps an absent, non-numeric or negative cap to nil (unlimited).
func hashtagCap(v any) *int {
	f, ok := v.(float64)
	if !ok || f < 0 || f > math.MaxInt32 {
		return nil
	}
	n := int(math.Floor(f))
	return &n
}

func truthy(v any) bool {
	switch x := v.(type) {
	case bool:
		return x
	case float64:
		return x != 0 && !math.IsNaN(x)
	case string:
		return x != ""
	case nil:
		return false
	}
	return true
}

func numberOr(v any, def float64) float64 {
	if f, ok := v.(float64); ok {
		return f
	}
	return def
}

// stringList keeps the scalar entries of a JSON array as strings; anything
// that is not an array becomes an empty list.
func stringList(v any) []string {
	out := []string{}
	arr, ok := v.([]any)
	if !ok {
		return out
	}
	for _, el := range arr {
		switch x := el.(type) {
		case string:
			out = append(out, x)
		case float64:
			out = append(out, fmt.Sprint(x))
		case bool:
			out = append(out, fmt.Sprint(x))
		}
	}
	return out
}
