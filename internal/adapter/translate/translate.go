// Package translate implements the translation capability handler. Common
// phrases resolve from a built-in table; everything else goes to a
// LibreTranslate endpoint with a graceful fallback when it is unreachable.
package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/arenlabs/aren/internal/config"
	"github.com/arenlabs/aren/internal/domain/capability"
)

// builtins maps (phrase, target code) to a canned translation.
var builtins = map[[2]string]string{
	{"hello", "es"}:     "hola",
	{"hello", "hi"}:     "नमस्ते",
	{"hello", "fr"}:     "bonjour",
	{"goodbye", "es"}:   "adiós",
	{"goodbye", "hi"}:   "अलविदा",
	{"goodbye", "fr"}:   "au revoir",
	{"thank you", "es"}: "gracias",
	{"thank you", "hi"}: "धन्यवाद",
	{"thank you", "fr"}: "merci",
}

// Handler translates short texts between languages.
type Handler struct {
	endpoint string
	client   *http.Client
	logger   *slog.Logger
}

// New creates a translation handler.
func New(cfg config.Translate, client *http.Client, logger *slog.Logger) *Handler {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{endpoint: cfg.Endpoint, client: client, logger: logger}
}

// Name returns "translate".
func (h *Handler) Name() string { return capability.Translate }

// Extract pulls the text and target language out of the request.
func (h *Handler) Extract(input string) (capability.Args, bool) {
	text, target, ok := capability.ExtractTranslation(input)
	if !ok {
		return nil, false
	}
	return capability.Args{"text": text, "target": target}, true
}

// Invoke translates args["text"] into args["target"]. Translation service
// trouble degrades to an apologetic echo of the original text.
func (h *Handler) Invoke(ctx context.Context, args capability.Args) (string, error) {
	text := args["text"]
	target := args["target"]
	if text == "" || target == "" {
		return "Invalid translation request", nil
	}

	if v, ok := builtins[[2]string{strings.ToLower(text), target}]; ok {
		return v, nil
	}

	translated, err := h.remote(ctx, text, target)
	if err != nil {
		h.logger.Warn("translation service unavailable", "target", target, "error", err)
		return fmt.Sprintf("Translation to %s unavailable. Original text: %s", target, text), nil
	}
	return translated, nil
}

func (h *Handler) remote(ctx context.Context, text, target string) (string, error) {
	payload, err := json.Marshal(map[string]string{
		"q":      text,
		"source": "auto",
		"target": target,
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("http request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("translation API error %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	var result struct {
		TranslatedText string `json:"translatedText"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return "", fmt.Errorf("unmarshal translation: %w", err)
	}
	if result.TranslatedText == "" {
		return "", fmt.Errorf("empty translation in response")
	}
	return result.TranslatedText, nil
}
