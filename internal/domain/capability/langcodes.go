package capability

import "strings"

// languageCodes maps language names to ISO 639-1 codes for translation
// requests.
var languageCodes = map[string]string{
	"english":  "en",
	"hindi":    "hi",
	"spanish":  "es",
	"french":   "fr",
	"german":   "de",
	"italian":  "it",
	"japanese": "ja",
	"korean":   "ko",
	"chinese":  "zh",
	"russian":  "ru",
	"arabic":   "ar",
	"bengali":  "bn",
	"urdu":     "ur",
	"punjabi":  "pa",
	"tamil":    "ta",
	"telugu":   "te",
	"marathi":  "mr",
	"gujarati": "gu",
}

// LanguageCode resolves a language name or code to its ISO 639-1 code.
func LanguageCode(language string) (string, bool) {
	if language == "" {
		return "", false
	}
	language = strings.ToLower(language)
	for _, code := range languageCodes {
		if language == code {
			return code, true
		}
	}
	code, ok := languageCodes[language]
	return code, ok
}

// LanguageName resolves a code back to its capitalized language name,
// falling back to the code itself.
func LanguageName(code string) string {
	for name, c := range languageCodes {
		if c == code {
			return strings.ToUpper(name[:1]) + name[1:]
		}
	}
	return code
}
