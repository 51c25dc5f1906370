package types

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"copy-check/api/internal/util"
)

var ErrEmptySuggestion = errors.New("suggestion.text is empty")

// DecodeOutput parses raw model text into an Output. Every field is coerced to
// its expected type; unknown or malformed pieces are dropped rather than
// failing the whole decode. The only hard failures are a body that is not a
// JSON object and an empty suggestion.
func DecodeOutput(raw string) (*Output, error) {
	body := util.StripCodeFences(strings.TrimSpace(raw))
	if body == "" {
		return nil, errors.New("empty model output")
	}

	var m map[string]any
	if err := json.Unmarshal([]byte(body), &m); err != nil {
		return nil, fmt.Errorf("bad JSON: %w", err)
	}
	out := CoerceOutput(m)
	if strings.TrimSpace(out.Suggestion.Text) == "" {
		return nil, ErrEmptySuggestion
	}
	return out, nil
}

// CoerceOutput converts a decoded JSON object into an Output.
func CoerceOutput(m map[string]any) *Output {
	score, _ := m["score"].(map[string]any)
	sugg, _ := m["suggestion"].(map[string]any)

	out := &Output{
		Score: Score{
			Clarity:      unit(toNumber(score["clarity"])),
			Brevity:      unit(toNumber(score["brevity"])),
			Hook:         unit(toNumber(score["hook"])),
			Fit:          unit(toNumber(score["fit"])),
			ReadingLevel: toString(score["readingLevel"], "Unknown"),
		},
		Flags:        toStrings(m["flags"]),
		Suggestion:   Suggestion{Text: toString(sugg["text"], "")},
		Variants:     []Variant{},
		Explanations: toStrings(m["explanations"]),
	}
	if arr, ok := m["variants"].([]any); ok {
		for _, v := range arr {
			obj, ok := v.(map[string]any)
			if !ok {
				continue
			}
			out.Variants = append(out.Variants, Variant{
				Label: toString(obj["label"], ""),
				Text:  toString(obj["text"], ""),
			})
		}
	}
	return out
}

func toNumber(v any) float64 {
	switch x := v.(type) {
	case float64:
		return x
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0
		}
		return f
	case bool:
		if x {
			return 1
		}
	}
	return 0
}

func toString(v any, def string) string {
	switch x := v.(type) {
	case nil:
		return def
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	}
	b, err := json.Marshal(v)
	if err != nil {
		return def
	}
	return string(b)
}

// toStrings keeps the scalar elements of a JSON array as strings.
func toStrings(v any) []string {
	out := []string{}
	arr, ok := v.([]any)
	if !ok {
		return out
	}
	for _, el := range arr {
		switch el.(type) {
		case string, float64, bool:
			out = append(out, toString(el, ""))
		}
	}
	return out
}

func unit(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
