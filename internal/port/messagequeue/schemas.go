package messagequeue

import "time"

// ExchangePayload is the schema for conversations.exchange messages.
type ExchangePayload struct {
	EventID    string    `json:"event_id"`
	UserID     int64     `json:"user_id"`
	DeviceID   string    `json:"device_id"`
	Input      string    `json:"input"`
	Response   string    `json:"response"`
	Capability string    `json:"capability"`
	Success    bool      `json:"success"`
	Language   string    `json:"language"`
	Timestamp  time.Time `json:"timestamp"`
}

// DecisionPayload is the schema for decisions.made messages.
type DecisionPayload struct {
	EventID    string    `json:"event_id"`
	UserID     int64     `json:"user_id"`
	Input      string    `json:"input"`
	Capability string    `json:"capability"`
	Confidence float64   `json:"confidence"`
	Evidence   []string  `json:"evidence"`
	Timestamp  time.Time `json:"timestamp"`
}

// MemoryCreatedPayload is the schema for memories.created messages.
type MemoryCreatedPayload struct {
	EventID  string `json:"event_id"`
	UserID   int64  `json:"user_id"`
	MemoryID int64  `json:"memory_id"`
	Note     string `json:"note"`
}

// TaskCreatedPayload is the schema for tasks.created messages.
type TaskCreatedPayload struct {
	EventID     string `json:"event_id"`
	UserID      int64  `json:"user_id"`
	TaskID      int64  `json:"task_id"`
	Description string `json:"description"`
	Priority    int    `json:"priority"`
}
