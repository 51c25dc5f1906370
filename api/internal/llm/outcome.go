package llm

import "copy-check/api/internal/copycheck/types"

type OutcomeKind int

const (
	// Success carries a decoded candidate output.
	Success OutcomeKind = iota
	// ParseFailure means the model answered but neither attempt decoded.
	ParseFailure
	// Unavailable covers missing credentials and transport failures.
	Unavailable
)

func (k OutcomeKind) String() string {
	switch k {
	case Success:
		return "success"
	case ParseFailure:
		return "parse_failure"
	case Unavailable:
		return "unavailable"
	}
	return "unknown"
}

// Source names where a successful candidate came from.
const (
	SourceModel = "model"
	SourceCache = "cache"
)

// Outcome is the result of asking the model for a suggestion. Output is set
// only when Kind is Success; Err is set otherwise.
type Outcome struct {
	Kind     OutcomeKind
	Output   *types.Output
	Source   string
	Attempts int
	Err      error
}
