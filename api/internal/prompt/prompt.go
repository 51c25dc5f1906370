// Package prompt turns a validated copy-check input into the system/user
// instruction pair sent to a language model.
package prompt

import (
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"copy-check/api/internal/copycheck/types"
	"copy-check/api/internal/util"
)

// Name is the base file name of an on-disk system prompt override:
// <dir>/copy_check.system.txt.
const Name = "copy_check"

// StrictSuffix is appended to the user prompt on the retry after a parse failure.
const StrictSuffix = "Return ONLY strict JSON. No prose, no markdown."

const defaultSystem = `You are a senior copy editor for a social impact organization.
Improve the copy for clarity, brevity, hook and platform fit while keeping its meaning and facts.
The HARD CONSTRAINTS below are non-negotiable. Never alter a URL in any way.
Answer with ONLY a strict JSON object matching the output schema (keys: score, flags, suggestion, variants, explanations).
No prose, no markdown, no code fences.
If the constraints cannot all be met, return the closest valid text and list each violation in flags.`

// Prompt is one system/user instruction pair.
type Prompt struct {
	System string
	User   string
}

type Builder struct {
	system string
	schema string
}

// NewBuilder prepares the prompt templates. A system prompt found in dir
// replaces the built-in one; a missing or unreadable file is logged and the
// built-in text is used.
func NewBuilder(dir string, log *zap.Logger) (*Builder, error) {
	if log == nil {
		log = zap.NewNop()
	}
	schema, err := util.LoadSchema(OutputSchema)
	if err != nil {
		return nil, err
	}
	js, err := json.Marshal(schema)
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}

	system := defaultSystem
	if strings.TrimSpace(dir) != "" {
		s, err := util.LoadPrompt(dir, Name, "system")
		if err != nil {
			log.Warn("system prompt override not loaded", zap.String("dir", dir), zap.Error(err))
		} else {
			system = s
		}
	}
	return &Builder{system: system, schema: string(js)}, nil
}

// Build renders the prompt for in. The per-request hard constraints are
// spelled out in the system part; the user part carries the input and the
// output schema as JSON.
func (b *Builder) Build(in types.Input) (Prompt, error) {
	js, err := json.Marshal(in)
	if err != nil {
		return Prompt{}, fmt.Errorf("marshal input: %w", err)
	}
	return Prompt{
		System: b.system + "\n\n" + hardConstraints(in),
		User:   "INPUT JSON:\n" + string(js) + "\nOUTPUT SCHEMA (JSON):\n" + b.schema,
	}, nil
}

// Strict returns p amended for the stricter second attempt.
func Strict(p Prompt) Prompt {
	p.User += "\n\n" + StrictSuffix
	return p
}

func hardConstraints(in types.Input) string {
	var sb strings.Builder
	sb.WriteString("HARD CONSTRAINTS:\n")
	fmt.Fprintf(&sb, "- suggestion.text and every variant text must be at most %d characters\n", in.Constraints.MaxChars)
	sb.WriteString("- copy every URL exactly as it appears in the input\n")
	if phrases := nonEmpty(in.Brand.RequiredPhrases); len(phrases) > 0 {
		fmt.Fprintf(&sb, "- include these phrases verbatim: %s\n", quoteList(phrases))
	}
	if words := nonEmpty(in.Brand.BannedWords); len(words) > 0 {
		fmt.Fprintf(&sb, "- never use these words: %s\n", quoteList(words))
	}
	if mh := in.Constraints.MaxHashtags; mh != nil && *mh >= 0 {
		fmt.Fprintf(&sb, "- use at most %d hashtags\n", *mh)
	}
	if in.Constraints.RequireCTA {
		sb.WriteString("- end with a clear call to action\n")
	}
	fmt.Fprintf(&sb, "- platform: %s, asset type: %s, reading level: %s\n",
		in.Platform, in.AssetType, in.ReadingLevelTarget)
	fmt.Fprintf(&sb, "- return at most %d variants", types.MaxVariants)
	return sb.String()
}

func nonEmpty(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func quoteList(in []string) string {
	q := make([]string, len(in))
	for i, s := range in {
		q[i] = fmt.Sprintf("%q", s)
	}
	return strings.Join(q, ", ")
}
