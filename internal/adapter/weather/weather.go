// Package weather implements the weather capability handler backed by the
// OpenWeatherMap current-weather API, with a simulated report when the API
// key is missing or the service is unreachable.
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"math/rand"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/arenlabs/aren/internal/config"
	"github.com/arenlabs/aren/internal/domain/capability"
	"github.com/arenlabs/aren/internal/port/cache"
	"github.com/arenlabs/aren/internal/secrets"
)

// SecretAPIKey is the vault key holding the OpenWeatherMap API key.
const SecretAPIKey = "OPENWEATHER_API_KEY"

// Handler answers weather queries for a named location.
type Handler struct {
	endpoint string
	units    string
	ttl      time.Duration
	vault    *secrets.Vault
	client   *http.Client
	cache    cache.Cache
	logger   *slog.Logger
}

// New creates a weather handler. The cache and vault may be nil; a nil cache
// disables report caching and a nil vault forces simulated reports.
func New(cfg config.Weather, vault *secrets.Vault, client *http.Client, c cache.Cache, logger *slog.Logger) *Handler {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		endpoint: cfg.Endpoint,
		units:    cfg.Units,
		ttl:      cfg.CacheTTL,
		vault:    vault,
		client:   client,
		cache:    c,
		logger:   logger,
	}
}

// Name returns "weather".
func (h *Handler) Name() string { return capability.Weather }

// Extract pulls the location out of the query.
func (h *Handler) Extract(input string) (capability.Args, bool) {
	location, ok := capability.ExtractLocation(input)
	if !ok {
		return nil, false
	}
	return capability.Args{"location": location}, true
}

// Invoke fetches the current weather for the extracted location. API
// trouble degrades to a simulated report; only live reports are cached.
func (h *Handler) Invoke(ctx context.Context, args capability.Args) (string, error) {
	location := args["location"]

	key := "weather:" + strings.ToLower(location)
	if h.cache != nil {
		if data, ok, err := h.cache.Get(ctx, key); err == nil && ok {
			return string(data), nil
		}
	}

	var apiKey string
	if h.vault != nil {
		apiKey = h.vault.Get(SecretAPIKey)
	}
	if apiKey == "" {
		return h.simulated(location), nil
	}

	report, status, err := h.fetch(ctx, location, apiKey)
	switch {
	case err != nil:
		h.logger.Warn("weather api unavailable", "location", location, "error", err)
		return h.simulated(location), nil
	case status == http.StatusNotFound:
		return fmt.Sprintf("Sorry, I couldn't find weather information for %s. (Mujhe %s ka mausam nahi mil raha hai.)", location, location), nil
	case status != http.StatusOK:
		h.logger.Warn("weather api error", "location", location, "status", status)
		return h.simulated(location), nil
	}

	if h.cache != nil {
		if err := h.cache.Set(ctx, key, []byte(report), h.ttl); err != nil {
			h.logger.Warn("weather cache set failed", "error", err)
		}
	}
	return report, nil
}

type currentWeather struct {
	Weather []struct {
		Main        string `json:"main"`
		Description string `json:"description"`
	} `json:"weather"`
	Main struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		Humidity  int     `json:"humidity"`
	} `json:"main"`
}

// fetch calls the current-weather endpoint and formats the bilingual report.
func (h *Handler) fetch(ctx context.Context, location, apiKey string) (report string, status int, err error) {
	params := url.Values{}
	params.Set("q", location)
	params.Set("appid", apiKey)
	params.Set("units", h.units)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return "", 0, fmt.Errorf("create request: %w", err)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return "", 0, fmt.Errorf("http request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", resp.StatusCode, nil
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", resp.StatusCode, fmt.Errorf("read response: %w", err)
	}

	var cw currentWeather
	if err := json.Unmarshal(data, &cw); err != nil {
		return "", resp.StatusCode, fmt.Errorf("unmarshal weather: %w", err)
	}
	if len(cw.Weather) == 0 {
		return "", resp.StatusCode, fmt.Errorf("weather response missing conditions")
	}

	report = formatReport("", location, cw.Weather[0].Main, cw.Weather[0].Description,
		trimFloat(cw.Main.Temp), trimFloat(cw.Main.FeelsLike), cw.Main.Humidity)
	return report, resp.StatusCode, nil
}

var (
	mockConditions   = []string{"Sunny", "Partly Cloudy", "Cloudy", "Clear Sky", "Light Rain", "Drizzle"}
	mockDescriptions = []string{"clear sky", "few clouds", "scattered clouds", "light rainfall", "pleasant weather"}
)

// simulated produces a plausible report when live data is unavailable.
func (h *Handler) simulated(location string) string {
	condition := mockConditions[rand.Intn(len(mockConditions))]
	description := mockDescriptions[rand.Intn(len(mockDescriptions))]
	temp := math.Round((20+rand.Float64()*15)*10) / 10
	feels := math.Round((temp-2+rand.Float64()*5)*10) / 10
	humidity := 40 + rand.Intn(41)

	return formatReport("[SIMULATED] ", location, condition, description,
		strconv.FormatFloat(temp, 'f', 1, 64), strconv.FormatFloat(feels, 'f', 1, 64), humidity)
}

func formatReport(prefix, location, condition, description, temp, feels string, humidity int) string {
	return fmt.Sprintf(
		"%sWeather in %s: %s (%s)\n"+
			"Temperature: %s°C (feels like %s°C)\n"+
			"Humidity: %d%%\n\n"+
			"%s mein mausam: %s\n"+
			"Tapman: %s°C (mehsoos %s°C jaisa)\n"+
			"Namee: %d%%",
		prefix, location, condition, description, temp, feels, humidity,
		location, description, temp, feels, humidity)
}

// trimFloat renders an API value with its minimal decimal representation.
func trimFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
