package capability

import "strings"

// identityTriggers pre-empt every other rule. Most of these phrases start
// with an interrogative and would otherwise be swallowed by the generic
// question heuristic for search.
var identityTriggers = []string{
	"who are you",
	"tum kaun ho",
	"what is your name",
	"what's your name",
	"naam kya hai",
	"about yourself",
	"introduce yourself",
	"tell me about you",
	"tell me about yourself",
	"apne baare mein batao",
	"what are you",
	"who made you",
	"what do you do",
}

var (
	timeTriggers    = []string{"time", "samay", "kitna baj gaya", "what's the time"}
	dateTriggers    = []string{"date", "aaj ki tareekh", "today's date", "what's the date"}
	weatherTriggers = []string{"weather", "temperature", "forecast", "mausam", "garmi", "sardi", "rainy", "sunny", "climate"}
	calcTriggers    = []string{"calculate", "compute", "sum", "add", "subtract", "multiply", "divide", "equals", "equal to", "="}
	calcOperators   = []string{"+", "-", "*", "/", "÷", "×", "%"}
	transTriggers   = []string{"translate", "translation", "meaning", "anuvad", "meaning of", "in english", "in hindi"}
	appTriggers     = []string{"open ", "launch ", "start ", "khol", "chalu karo", "shuru karo"}
	greetTriggers   = []string{"hello", "hi", "namaste", "hey", "salaam", "pranam"}
	jokeTriggers    = []string{"joke", "mazaak", "funny", "kuch funny bolo", "kuch mazaak batao"}
)

// searchTriggers match anywhere in the input. Most carry a trailing space
// so they do not fire inside words like "searching". False positives are
// cheap here; a zero score drops the candidate later.
var searchTriggers = []string{
	"search ", "look up ",
	"who is ", "what is ", "when is ", "where is ", "why is ",
	"who was ", "what was ", "when was ", "where was ", "why was ",
	"who are ", "what are ", "when are ", "where are ", "why are ",
	"who built ", "who created ", "who made ", "who discovered ",
	"who build ", "who create ", "who make ", "who discover ",
	"how do", "how to", "how can", "how does", "how did",
	"tell me about ", "information on ", "details about ",
	"kya hai", "kaun hai", "kab hai", "kahan hai", "kyun hai",
	"kisne banaya", "kaise bana", "kab bana", "batao",
}

var questionStarters = []string{"who", "what", "when", "where", "why", "how"}

func containsAny(s string, triggers []string) bool {
	for _, t := range triggers {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}

// Identify scans text for capability triggers and returns an ordered,
// deduplicated candidate list. An identity trigger short-circuits everything
// else; the broad search heuristic runs last so domain-specific triggers get
// first claim on question-shaped inputs. An empty result means the caller
// falls back to "unknown".
func Identify(text string) []string {
	lower := strings.ToLower(text)

	for _, t := range identityTriggers {
		if strings.Contains(lower, t) {
			return []string{Identity}
		}
	}

	var candidates []string
	add := func(name string) {
		for _, c := range candidates {
			if c == name {
				return
			}
		}
		candidates = append(candidates, name)
	}

	if containsAny(lower, timeTriggers) {
		add(Time)
	}
	if containsAny(lower, dateTriggers) {
		add(Date)
	}
	if containsAny(lower, weatherTriggers) {
		add(Weather)
	}
	if containsAny(lower, calcTriggers) || containsAny(text, calcOperators) {
		if _, ok := ExtractCalculation(text); ok {
			add(Calculation)
		}
	}
	if containsAny(lower, transTriggers) {
		if _, _, ok := ExtractTranslation(text); ok {
			add(Translate)
		}
	}
	if containsAny(lower, appTriggers) {
		add(LaunchApp)
	}
	if containsAny(lower, greetTriggers) {
		add(Greeting)
	}
	if containsAny(lower, jokeTriggers) {
		add(Joke)
	}

	if containsAny(lower, searchTriggers) {
		add(Search)
	}
	for _, q := range questionStarters {
		if strings.HasPrefix(lower, q) {
			add(Search)
			break
		}
	}
	if strings.Contains(text, "?") {
		add(Search)
	}

	return candidates
}
