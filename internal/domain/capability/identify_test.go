package capability

import (
	"slices"
	"testing"
)

func TestIdentifyIdentityPreemption(t *testing.T) {
	inputs := []string{
		"who are you",
		"Who are you?",
		"what is your name",
		"What's your name, assistant?",
		"tell me about yourself and the weather",
		"tum kaun ho",
		"who made you",
	}
	for _, input := range inputs {
		got := Identify(input)
		if !slices.Equal(got, []string{Identity}) {
			t.Errorf("Identify(%q) = %v, want exactly [identity]", input, got)
		}
	}
}

func TestIdentify(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{
			name:  "time question",
			input: "what time is it",
			want:  []string{Time, Search},
		},
		{
			name:  "date question",
			input: "what's the date today",
			want:  []string{Date, Search},
		},
		{
			name:  "weather with location",
			input: "weather in Tokyo",
			want:  []string{Weather},
		},
		{
			name:  "percentage calculation",
			input: "15% of 240",
			want:  []string{Calculation},
		},
		{
			name:  "arithmetic expression",
			input: "what is 2+2",
			want:  []string{Calculation, Search},
		},
		{
			name:  "calc trigger without expression",
			input: "add it to the list",
			want:  nil,
		},
		{
			name:  "translation request",
			input: "translate hello to spanish",
			want:  []string{Translate},
		},
		{
			name:  "translation trigger without parseable request",
			input: "anuvad chahiye",
			want:  nil,
		},
		{
			name:  "launch app",
			input: "open notepad",
			want:  []string{LaunchApp},
		},
		{
			name:  "greeting",
			input: "namaste",
			want:  []string{Greeting},
		},
		{
			name:  "joke",
			input: "tell me a joke",
			want:  []string{Joke},
		},
		{
			name:  "plain search",
			input: "search for golang tutorials",
			want:  []string{Search},
		},
		{
			name:  "question heuristic",
			input: "why is the sky blue",
			want:  []string{Search},
		},
		{
			name:  "question mark only",
			input: "the sky is blue?",
			want:  []string{Search},
		},
		{
			name:  "multi capability",
			input: "what's the weather and time",
			want:  []string{Time, Weather, Search},
		},
		{
			name:  "no triggers",
			input: "asdkjaskdj",
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Identify(tt.input)
			if !slices.Equal(got, tt.want) {
				t.Errorf("Identify(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestIdentifyDeduplicatesSearch(t *testing.T) {
	// Matches both the curated list ("search ") and the question heuristic.
	got := Identify("search for what happened?")
	count := 0
	for _, c := range got {
		if c == Search {
			count++
		}
	}
	if count != 1 {
		t.Errorf("search appended %d times, want 1 (candidates: %v)", count, got)
	}
}
