package a2a

// AgentCard is the discovery document served at /.well-known/agent.json.
// Field names follow the A2A protocol schema.
type AgentCard struct {
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	URL          string   `json:"url"`
	Version      string   `json:"version"`
	Provider     Provider `json:"provider"`
	Skills       []Skill  `json:"skills"`
	Capabilities struct {
		Streaming bool `json:"streaming"`
	} `json:"capabilities"`
}

// Provider identifies who operates the agent.
type Provider struct {
	Organization string `json:"organization"`
	URL          string `json:"url,omitempty"`
}

// Skill describes a single capability of the agent.
type Skill struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	InputModes  []string `json:"inputModes"`
	OutputModes []string `json:"outputModes"`
}

// TaskRequest is an incoming A2A task. The utterance goes in input.text;
// context.device_id selects the conversation context. Skill is optional
// and only checked against the catalog, since dispatch classifies the
// utterance itself.
type TaskRequest struct {
	Skill   string         `json:"skill,omitempty"`
	Input   map[string]any `json:"input"`
	Context map[string]any `json:"context,omitempty"`
}

// TaskResponse is a finished A2A task record. Tasks run synchronously,
// so the only statuses are "completed" and "failed".
type TaskResponse struct {
	ID     string         `json:"id"`
	Status string         `json:"status"`
	Output map[string]any `json:"output,omitempty"`
	Error  string         `json:"error,omitempty"`
}
