package capability

import (
	"regexp"
	"strings"
)

// Percentage forms are tried before plain arithmetic so that "15% of 240"
// is kept as a percentage request rather than a bare "15%" expression.
var percentagePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(\d+(?:\.\d+)?)\s*%\s*(?:of|ka)\s+(\d+(?:\.\d+)?)`),
	regexp.MustCompile(`(\d+(?:\.\d+)?)\s+percent(?:age)?\s+of\s+(\d+(?:\.\d+)?)`),
}

var (
	mathExpr  = regexp.MustCompile(`\d+(?:\.\d+)?(?:\s*[-+*/^×÷%]\s*\d+(?:\.\d+)?)+`)
	wordsExpr = regexp.MustCompile(`\d+(?:\.\d+)?\s+(?:plus|minus|times|divided by)\s+\d+(?:\.\d+)?`)
)

var calcPrefixes = []string{
	"calculate ", "compute ", "what is ", "what's ", "solve ", "evaluate ", "work out ",
}

// ExtractCalculation pulls an evaluable expression out of input. Returns
// ok=false when nothing expression-shaped is present; a non-evaluable
// remainder (e.g. "calculate the area") is still returned so the handler can
// report a parse failure rather than a missing-argument one.
func ExtractCalculation(input string) (string, bool) {
	lower := strings.ToLower(input)

	for _, re := range percentagePatterns {
		if m := re.FindStringSubmatch(lower); m != nil {
			return m[1] + "% of " + m[2], true
		}
	}

	if m := mathExpr.FindString(lower); m != "" {
		return strings.TrimSpace(m), true
	}

	for _, prefix := range calcPrefixes {
		if idx := strings.Index(lower, prefix); idx >= 0 {
			rest := strings.TrimSpace(input[idx+len(prefix):])
			rest = strings.TrimRight(rest, "?.")
			if rest != "" {
				return rest, true
			}
		}
	}

	if wordsExpr.MatchString(lower) {
		return strings.TrimSpace(input), true
	}

	return "", false
}

// Requests like `translate hello to spanish`, `what is hello in hindi`,
// `hello to french language`. The target group must resolve to a known
// language for the extraction to succeed.
var translationPatterns = []*regexp.Regexp{
	regexp.MustCompile(`translate\s*["']?(.+?)["']?\s*(?:to|in)\s+([a-zA-Z]+)`),
	regexp.MustCompile(`(?:what\s+is|how\s+do\s+you\s+say)\s*["']?(.+?)["']?\s*(?:in|to)\s+([a-zA-Z]+)`),
	regexp.MustCompile(`(.+?)\s*(?:to|in)\s+([a-zA-Z]+)\s+language`),
}

// ExtractTranslation parses a translation request, returning the text to
// translate and the resolved target language code.
func ExtractTranslation(input string) (text, target string, ok bool) {
	lower := strings.ToLower(input)
	for _, re := range translationPatterns {
		m := re.FindStringSubmatch(lower)
		if m == nil {
			continue
		}
		text = strings.Trim(strings.TrimSpace(m[1]), `"'`)
		code, known := LanguageCode(strings.TrimSpace(m[2]))
		if text != "" && known {
			return text, code, true
		}
	}
	return "", "", false
}

var locationPrefixes = []string{
	"weather in ", "weather for ", "temperature in ", "temperature for ",
	"weather at ", "mausam ", "weather of ", "weather forecast for ",
	"weather forecast in ",
}

var locationEndFragments = []string{" like", " right now", " today", " tomorrow", "?", "."}

var weatherKeywords = []string{"weather", "temperature", "forecast", "mausam", "temp"}

// ExtractLocation pulls a place name out of a weather query, preserving the
// input's casing. ok=false means the query names no location.
func ExtractLocation(input string) (string, bool) {
	lower := strings.ToLower(input)

	for _, prefix := range locationPrefixes {
		idx := strings.Index(lower, prefix)
		if idx < 0 {
			continue
		}
		location := strings.TrimSpace(input[idx+len(prefix):])
		for _, frag := range locationEndFragments {
			if cut := strings.Index(location, frag); cut >= 0 {
				location = strings.TrimSpace(location[:cut])
			}
		}
		if len(location) >= 2 {
			return location, true
		}
	}

	// "weather Delhi" / "weather in Delhi" without a known prefix: take the
	// word after the weather keyword, skipping connectives.
	words := strings.Fields(input)
	for _, keyword := range weatherKeywords {
		for i, w := range words {
			if !strings.Contains(strings.ToLower(w), keyword) {
				continue
			}
			if i >= len(words)-1 {
				break
			}
			next := words[i+1]
			switch strings.ToLower(next) {
			case "in", "for", "at", "of":
				if i < len(words)-2 {
					return words[i+2], true
				}
			default:
				if len(next) >= 2 {
					return next, true
				}
			}
			break
		}
	}

	return "", false
}
