// Package persona implements the small-talk capability handlers: greetings,
// jokes and the assistant's identity. Identity responses are built from the
// system facts seeded in the database.
package persona

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/arenlabs/aren/internal/domain/capability"
	"github.com/arenlabs/aren/internal/domain/conversation"
	"github.com/arenlabs/aren/internal/domain/systeminfo"
	"github.com/arenlabs/aren/internal/port/database"
)

var greetings = map[string][]string{
	"morning": {
		"Good morning! How can I help you today?",
		"Suprabhat! Aaj main aapki kya madad kar sakta hoon?",
		"Good morning! Aaj ka din shubh ho.",
	},
	"afternoon": {
		"Good afternoon! How can I help you today?",
		"Namaskar! Kya haal hai?",
		"Hi there! Dopahar me kya karna chahte hain aap?",
	},
	"evening": {
		"Good evening! How can I help you today?",
		"Shubh sandhya! Main A.R.E.N. hoon, aapki madad ke liye.",
		"Evening greetings! Kya poocha ja sakta hai?",
	},
	"night": {
		"Hello! Working late tonight?",
		"Namaste! Raat me jaag rahe hain?",
		"Hi there! Kya main aapki kuch madad kar sakta hoon?",
	},
}

var fallbackGreetings = []string{
	"Hello! How can I help you today?",
	"Hi there! Kya haal hai?",
	"Namaste! Main A.R.E.N. hoon, aapki madad ke liye.",
}

// GreetingHandler answers hellos with a time-of-day appropriate greeting.
type GreetingHandler struct {
	now     func() time.Time
	randInt func(n int) int
}

// NewGreeting creates a greeting handler.
func NewGreeting() *GreetingHandler {
	return &GreetingHandler{now: time.Now, randInt: rand.Intn}
}

// Name returns "greeting".
func (h *GreetingHandler) Name() string { return capability.Greeting }

// Extract never fails; the capability takes no arguments.
func (h *GreetingHandler) Extract(_ string) (capability.Args, bool) {
	return capability.Args{}, true
}

// Invoke picks a greeting for the current time of day.
func (h *GreetingHandler) Invoke(_ context.Context, _ capability.Args) (string, error) {
	pool := greetings[conversation.TimeOfDay(h.now())]
	if len(pool) == 0 {
		pool = fallbackGreetings
	}
	return pool[h.randInt(len(pool))], nil
}

var jokes = []string{
	"Why did the computer go to the doctor? Because it had a virus!",
	"Main AI hoon, mujhe neend nahi aati!",
	"Why don't robots get scared? Kyunki unke paas dil nahi hota!",
	"What's a computer's favorite snack? Microchips!",
	"Why was the computer cold? It left its Windows open!",
	"Why do programmers prefer dark mode? Because light attracts bugs!",
	"Computers make very fast, very accurate mistakes.",
}

// JokeHandler tells a random joke.
type JokeHandler struct {
	randInt func(n int) int
}

// NewJoke creates a joke handler.
func NewJoke() *JokeHandler {
	return &JokeHandler{randInt: rand.Intn}
}

// Name returns "joke".
func (h *JokeHandler) Name() string { return capability.Joke }

// Extract never fails; the capability takes no arguments.
func (h *JokeHandler) Extract(_ string) (capability.Args, bool) {
	return capability.Args{}, true
}

// Invoke returns a random joke.
func (h *JokeHandler) Invoke(_ context.Context, _ capability.Args) (string, error) {
	return jokes[h.randInt(len(jokes))], nil
}

const identityFallback = "I am AREN, your AI assistant. (I apologize, but I'm having trouble accessing my detailed information right now.)"

// IdentityHandler introduces the assistant using the seeded system facts.
type IdentityHandler struct {
	store   database.Store
	logger  *slog.Logger
	randInt func(n int) int
}

// NewIdentity creates an identity handler reading facts from store.
func NewIdentity(store database.Store, logger *slog.Logger) *IdentityHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &IdentityHandler{store: store, logger: logger, randInt: rand.Intn}
}

// Name returns "identity".
func (h *IdentityHandler) Name() string { return capability.Identity }

// Extract never fails; the capability takes no arguments.
func (h *IdentityHandler) Extract(_ string) (capability.Args, bool) {
	return capability.Args{}, true
}

// Invoke builds a self-introduction from the stored system facts. A missing
// or failing store degrades to a fixed introduction.
func (h *IdentityHandler) Invoke(ctx context.Context, _ capability.Args) (string, error) {
	if h.store == nil {
		return identityFallback, nil
	}

	facts, err := h.store.ListFacts(ctx, systeminfo.CategorySystem)
	if err != nil {
		h.logger.Warn("identity facts unavailable", "error", err)
		return identityFallback, nil
	}

	values := make(map[string]string, len(facts))
	for _, f := range facts {
		values[f.Key] = f.Value
	}

	name := values[systeminfo.KeySystemName]
	if name == "" {
		name = "AREN"
	}
	fullForm := values[systeminfo.KeyFullForm]
	if fullForm == "" {
		fullForm = "Assistant for Regular and Extraordinary Needs"
	}
	languages := values[systeminfo.KeyLanguages]
	if languages == "" {
		languages = "English and Hindi"
	}

	variants := []string{
		fmt.Sprintf("I am %s, which stands for %s. I'm an AI assistant designed to help you with various tasks.", name, fullForm),
		fmt.Sprintf("My name is %s (%s). Main aapki madad ke liye hoon! I can help with searching information, telling time and date, launching applications, and more.", name, fullForm),
		fmt.Sprintf("I'm %s, your AI assistant. I can handle tasks in both %s. Ask me about the time, date, to search for information, or to open applications!", name, languages),
	}
	return variants[h.randInt(len(variants))], nil
}
