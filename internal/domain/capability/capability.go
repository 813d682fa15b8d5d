// Package capability provides the static pattern catalog and the candidate
// identifier: the trigger vocabulary that turns free text into a short list
// of plausible capabilities before scoring.
package capability

import "regexp"

// Capability names. These are wire-visible identifiers used in actions,
// decisions and events.
const (
	Time        = "time"
	Date        = "date"
	Identity    = "identity"
	Greeting    = "greeting"
	Joke        = "joke"
	LaunchApp   = "launch_app"
	Search      = "search"
	Weather     = "weather"
	Calculation = "calculation"
	Translate   = "translate"
	Unknown     = "unknown"
)

// Pattern is a weighted trigger regexp. Weight is in [0,1].
type Pattern struct {
	Expr   *regexp.Regexp
	Weight float64
}

// Capability is one entry of the catalog. Immutable after construction.
type Capability struct {
	Name         string
	Patterns     []Pattern
	Keywords     []string
	RequiresArgs bool
}

// Args carries extracted handler arguments. Keys are handler-specific
// ("location", "expression", "text", "target", "app", "input").
type Args map[string]string
