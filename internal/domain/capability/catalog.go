package capability

import "regexp"

// Catalog is the read-only registry of capabilities and their trigger
// vocabulary. Lookup by name and ordered enumeration are the only operations.
type Catalog struct {
	order   []string
	entries map[string]Capability
}

func pat(expr string, weight float64) Pattern {
	return Pattern{Expr: regexp.MustCompile(expr), Weight: weight}
}

// Default builds the built-in catalog. Patterns match against lower-cased
// input; weights express how specific a trigger is.
func Default() *Catalog {
	caps := []Capability{
		{
			Name: Time,
			Patterns: []Pattern{
				pat(`\b(?:what(?:'s| is) the time|what time is it|current time|time now)\b`, 1.0),
				pat(`\b(?:samay kya hai|kitne baje|time)\b`, 0.9),
				pat(`\b(?:tell me the time|check time)\b`, 0.8),
			},
			Keywords: []string{"time", "samay", "baje", "clock"},
		},
		{
			Name: Date,
			Patterns: []Pattern{
				pat(`\b(?:what(?:'s| is) the date|current date|date today|today's date)\b`, 1.0),
				pat(`\b(?:aaj ki date|tareekh|date)\b`, 0.9),
				pat(`\b(?:tell me the date|check date)\b`, 0.8),
			},
			Keywords: []string{"date", "tareekh", "today", "aaj"},
		},
		{
			Name: Identity,
			Patterns: []Pattern{
				pat(`\b(?:who are you|what are you|what is your name)\b`, 1.0),
				pat(`\b(?:tell me about yourself|introduce yourself)\b`, 0.9),
				pat(`\b(?:kaun ho|naam kya|kya kar sakte ho)\b`, 0.9),
				pat(`\b(?:what can you do|your capabilities)\b`, 0.8),
			},
			Keywords: []string{"you", "your", "name", "naam", "kaun", "who"},
		},
		{
			Name: Greeting,
			Patterns: []Pattern{
				pat(`\b(?:hello|hi|hey|namaste|namaskar)\b`, 1.0),
				pat(`\b(?:good morning|good afternoon|good evening)\b`, 0.9),
				pat(`\b(?:hola|pranaam)\b`, 0.8),
			},
			Keywords: []string{"hello", "hi", "hey", "namaste", "good"},
		},
		{
			Name: Joke,
			Patterns: []Pattern{
				pat(`\b(?:tell (?:me )?a joke|make me laugh)\b`, 1.0),
				pat(`\b(?:joke sunao|koi joke)\b`, 0.9),
				pat(`\b(?:funny|mazaak|masti|entertain)\b`, 0.8),
			},
			Keywords: []string{"joke", "funny", "laugh", "mazaak"},
		},
		{
			Name: LaunchApp,
			Patterns: []Pattern{
				pat(`\b(?:open|launch|start|run|execute)\s+(?:the\s+)?\w+`, 1.0),
				pat(`\b\w+\s+(?:kholo|shuru karo|chalao)\b`, 0.9),
			},
			Keywords:     []string{"open", "launch", "start", "run", "kholo"},
			RequiresArgs: true,
		},
		{
			Name: Search,
			Patterns: []Pattern{
				pat(`\b(?:search for|look up|find|tell me about)\b`, 1.0),
				pat(`\b(?:what is|who is|how to|when did|where is|why does)\b`, 0.9),
				pat(`\b(?:can you find|information about)\b`, 0.8),
			},
			Keywords:     []string{"search", "find", "what", "who", "how", "when", "where", "why"},
			RequiresArgs: true,
		},
		{
			Name: Weather,
			Patterns: []Pattern{
				pat(`\b(?:weather|temperature|forecast)\b`, 1.0),
				pat(`\b(?:mausam|garmi|sardi|barish)\b`, 0.9),
				pat(`\b(?:rain|sunny|cloudy)\b`, 0.8),
			},
			Keywords:     []string{"weather", "temperature", "mausam", "forecast"},
			RequiresArgs: true,
		},
		{
			Name: Calculation,
			Patterns: []Pattern{
				pat(`\b(?:calculate|compute|add|subtract|multiply|divide)\b`, 1.0),
				pat(`\d+(?:\.\d+)?\s*%\s*(?:of|ka)\s+\d+`, 1.0),
				pat(`\d+\s*[-+*/^]\s*\d+`, 1.0),
				pat(`\b(?:equal|equals|percentage|percent)\b`, 0.9),
				pat(`\b(?:sum|square root|cube)\b`, 0.8),
			},
			Keywords:     []string{"calculate", "compute", "sum", "add", "multiply"},
			RequiresArgs: true,
		},
		{
			Name: Translate,
			Patterns: []Pattern{
				pat(`\b(?:translate|translation|convert to)\b`, 1.0),
				pat(`\bin (?:english|hindi|spanish)\b`, 0.9),
				pat(`\b(?:meaning|anuvad)\b`, 0.8),
			},
			Keywords:     []string{"translate", "translation", "meaning", "anuvad"},
			RequiresArgs: true,
		},
	}

	c := &Catalog{entries: make(map[string]Capability, len(caps))}
	for _, entry := range caps {
		c.order = append(c.order, entry.Name)
		c.entries[entry.Name] = entry
	}
	return c
}

// Lookup returns the catalog entry for name. Unknown names report ok=false;
// callers treat that as a zero-score candidate, never an error.
func (c *Catalog) Lookup(name string) (Capability, bool) {
	entry, ok := c.entries[name]
	return entry, ok
}

// Names returns the capability names in catalog order.
func (c *Catalog) Names() []string {
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}

// All returns the catalog entries in catalog order.
func (c *Catalog) All() []Capability {
	out := make([]Capability, 0, len(c.order))
	for _, name := range c.order {
		out = append(out, c.entries[name])
	}
	return out
}
