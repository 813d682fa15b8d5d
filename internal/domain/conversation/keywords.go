package conversation

import "strings"

// stopwords are excluded from keyword extraction.
var stopwords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "but": {},
	"in": {}, "on": {}, "at": {}, "to": {}, "for": {},
	"is": {}, "are": {}, "was": {}, "were": {},
}

// Keywords extracts up to 10 lower-cased tokens from text, skipping
// stopwords and tokens of length <= 2. Order follows the input.
func Keywords(text string) []string {
	var out []string
	for _, tok := range strings.Fields(strings.ToLower(text)) {
		if len(tok) <= 2 {
			continue
		}
		if _, skip := stopwords[tok]; skip {
			continue
		}
		out = append(out, tok)
		if len(out) == 10 {
			break
		}
	}
	return out
}

// DetectLanguage reports "hi" when text contains Devanagari characters,
// otherwise "en". Romanized Hindi is indistinguishable from English at this
// level and reports "en".
func DetectLanguage(text string) string {
	for _, r := range text {
		if r >= 0x0900 && r <= 0x097F {
			return "hi"
		}
	}
	return "en"
}
