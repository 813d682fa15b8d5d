package messagequeue

import (
	"encoding/json"
	"fmt"
)

// schemaFor returns a fresh payload struct for subjects with a declared
// schema. Subjects absent from the map only need to be valid JSON.
var schemaFor = map[string]func() any{
	SubjectExchangeRecorded: func() any { return new(ExchangePayload) },
	SubjectDecisionMade:     func() any { return new(DecisionPayload) },
	SubjectMemoryCreated:    func() any { return new(MemoryCreatedPayload) },
	SubjectTaskCreated:      func() any { return new(TaskCreatedPayload) },
}

// Validate rejects payloads that are not JSON and, for subjects with a
// declared schema, payloads that do not unmarshal into it. Subjects
// without a schema pass, so new message types can ship ahead of their
// validators.
func Validate(subject string, data []byte) error {
	mk, ok := schemaFor[subject]
	if !ok {
		if !json.Valid(data) {
			return fmt.Errorf("invalid JSON on subject %s", subject)
		}
		return nil
	}
	if err := json.Unmarshal(data, mk()); err != nil {
		return fmt.Errorf("malformed %s payload: %w", subject, err)
	}
	return nil
}
