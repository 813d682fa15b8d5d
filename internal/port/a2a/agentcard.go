package a2a

import (
	"strings"

	"github.com/arenlabs/aren/internal/domain/capability"
)

// skillDescriptions gives each catalog capability a one-line description for
// the agent card.
var skillDescriptions = map[string]string{
	capability.Time:        "Tell the current time",
	capability.Date:        "Tell today's date and day",
	capability.Identity:    "Introduce the assistant",
	capability.Greeting:    "Greet the user",
	capability.Joke:        "Tell a light joke",
	capability.LaunchApp:   "Open an application on the device",
	capability.Search:      "Answer a general question",
	capability.Weather:     "Report the weather for a location",
	capability.Calculation: "Evaluate an arithmetic expression",
	capability.Translate:   "Translate a phrase between English and Hindi",
}

// BuildAgentCard returns the AgentCard, with one skill per catalog
// capability. Replies are synchronous, so streaming stays off.
func BuildAgentCard(baseURL string, catalog *capability.Catalog) AgentCard {
	var skills []Skill
	for _, c := range catalog.All() {
		skills = append(skills, Skill{
			ID:          c.Name,
			Name:        skillName(c.Name),
			Description: skillDescriptions[c.Name],
			InputModes:  []string{"text"},
			OutputModes: []string{"text"},
		})
	}
	return AgentCard{
		Name:        "AREN",
		Description: "Rule-based personal assistant for everyday questions and tasks",
		URL:         baseURL,
		Version:     "0.1.0",
		Provider:    Provider{Organization: "arenlabs"},
		Skills:      skills,
	}
}

// skillName turns a capability identifier into a display name, e.g.
// "launch_app" becomes "Launch app".
func skillName(id string) string {
	if id == "" {
		return id
	}
	return strings.ToUpper(id[:1]) + strings.ReplaceAll(id[1:], "_", " ")
}
