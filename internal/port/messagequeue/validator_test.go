package messagequeue

import "testing"

func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		subject string
		payload string
		wantErr bool
	}{
		{
			name:    "exchange",
			subject: SubjectExchangeRecorded,
			payload: `{"event_id":"e1","user_id":1,"device_id":"default_user","input":"what time is it","response":"The current time is 10:00:00","capability":"time","success":true,"language":"en","timestamp":"2025-06-01T10:00:00Z"}`,
		},
		{
			name:    "decision",
			subject: SubjectDecisionMade,
			payload: `{"event_id":"e2","user_id":1,"input":"weather in Tokyo","capability":"weather","confidence":0.92,"evidence":["Pattern match: weather in"],"timestamp":"2025-06-01T10:00:00Z"}`,
		},
		{
			name:    "memory created",
			subject: SubjectMemoryCreated,
			payload: `{"event_id":"e3","user_id":1,"memory_id":7,"note":"likes green tea"}`,
		},
		{
			name:    "task created",
			subject: SubjectTaskCreated,
			payload: `{"event_id":"e4","user_id":1,"task_id":3,"description":"buy milk","priority":2}`,
		},
		{
			name:    "unknown subject with valid JSON",
			subject: "calendar.synced",
			payload: `{"foo":"bar"}`,
		},
		{
			name:    "unknown subject with garbage",
			subject: "calendar.synced",
			payload: `{not json`,
			wantErr: true,
		},
		{
			name:    "declared subject with garbage",
			subject: SubjectExchangeRecorded,
			payload: `{not json`,
			wantErr: true,
		},
		{
			name:    "field type mismatch",
			subject: SubjectDecisionMade,
			payload: `{"event_id":"e5","user_id":"one","input":"x","capability":"time","confidence":1,"timestamp":"2025-06-01T10:00:00Z"}`,
			wantErr: true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := Validate(tc.subject, []byte(tc.payload))
			if tc.wantErr && err == nil {
				t.Fatalf("Validate(%s) accepted %s", tc.subject, tc.payload)
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("Validate(%s) = %v", tc.subject, err)
			}
		})
	}
}

func TestValidateNullPayload(t *testing.T) {
	// JSON null unmarshals into any struct pointer, so it passes the
	// schema check. Consumers treat it as a zero-valued payload.
	if err := Validate(SubjectTaskCreated, []byte(`null`)); err != nil {
		t.Fatalf("Validate = %v", err)
	}
}
