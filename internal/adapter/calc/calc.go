// Package calc implements the calculation capability handler: percentage
// requests, plain arithmetic and word-form expressions, answered bilingually.
package calc

import (
	"context"
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/arenlabs/aren/internal/domain/capability"
)

const (
	msgParseFailed  = "I couldn't parse that expression. Please try again with a simple math problem. (Mujhe yeh ganitiya samasya samajh nahi aayi.)"
	msgEvalFailed   = "Sorry, I couldn't calculate that. Please check your expression. (Mujhe yeh ganitiya samasya hal nahi kar saka.)"
	msgNotANumber   = "Sorry, I couldn't calculate that. (Mujhe yeh ganitiya samasya hal nahi kar saka.)"
	msgDivideByZero = "Cannot divide by zero. (Shunya se bhag nahi ho sakta.)"
)

// percentageForms match requests like "15% of 240" and "15 percent of 240".
var percentageForms = []*regexp.Regexp{
	regexp.MustCompile(`(\d+(?:\.\d+)?)\s*%\s*(?:of|ka)\s+(\d+(?:\.\d+)?)`),
	regexp.MustCompile(`(\d+(?:\.\d+)?)\s+percent(?:age)?\s+(?:of|ka)\s+(\d+(?:\.\d+)?)`),
}

// Handler evaluates arithmetic requests.
type Handler struct{}

// New creates a calculation handler.
func New() *Handler { return &Handler{} }

// Name returns "calculation".
func (h *Handler) Name() string { return capability.Calculation }

// Extract pulls an evaluable expression out of the input.
func (h *Handler) Extract(input string) (capability.Args, bool) {
	expr, ok := capability.ExtractCalculation(input)
	if !ok {
		return nil, false
	}
	return capability.Args{"expression": expr}, true
}

// Invoke evaluates the expression. Malformed input produces a bilingual
// explanation rather than an error; the return value is always user-facing.
func (h *Handler) Invoke(_ context.Context, args capability.Args) (string, error) {
	expr := strings.TrimSpace(args["expression"])
	if expr == "" {
		return msgParseFailed, nil
	}

	if resp, ok := percentage(expr); ok {
		return resp, nil
	}

	normalized := normalize(expr)
	if normalized == "" {
		return msgParseFailed, nil
	}

	value, err := evaluate(normalized)
	switch {
	case errors.Is(err, errDivideByZero):
		return msgDivideByZero, nil
	case err != nil:
		return msgEvalFailed, nil
	case math.IsInf(value, 0) || math.IsNaN(value):
		return msgNotANumber, nil
	}

	formatted := formatNumber(value)
	resp := expr + " = " + formatted
	if label := hindiLabel(expr); label != "" {
		resp += "\n(" + label + ": " + formatted + ")"
	}
	return resp, nil
}

// percentage answers "X% of Y" style requests directly.
func percentage(expr string) (string, bool) {
	lower := strings.ToLower(expr)
	for _, re := range percentageForms {
		m := re.FindStringSubmatch(lower)
		if m == nil {
			continue
		}
		pct, err1 := strconv.ParseFloat(m[1], 64)
		base, err2 := strconv.ParseFloat(m[2], 64)
		if err1 != nil || err2 != nil {
			continue
		}
		result := pct / 100 * base
		return formatNumber(pct) + "% of " + formatNumber(base) + " = " + formatNumber(result), true
	}
	return "", false
}

// hindiLabel names the dominant operation of the original expression for the
// Hindi echo line. Expressions without symbolic operators get no label.
func hindiLabel(expr string) string {
	switch {
	case strings.Contains(expr, "+"):
		return "Jod"
	case strings.Contains(expr, "-") && !strings.HasPrefix(strings.TrimSpace(expr), "-"):
		return "Ghatav"
	case strings.Contains(expr, "*") || strings.Contains(expr, "×"):
		return "Gunan"
	case strings.Contains(expr, "/") || strings.Contains(expr, "÷"):
		return "Bhag"
	}
	return ""
}

// formatNumber renders integers bare and floats with at most six decimal
// places, trailing zeros trimmed.
func formatNumber(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return strconv.FormatFloat(v, 'f', 0, 64)
	}
	s := strconv.FormatFloat(v, 'f', 6, 64)
	s = strings.TrimRight(s, "0")
	return strings.TrimRight(s, ".")
}
