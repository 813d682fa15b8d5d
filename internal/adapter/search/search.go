// Package search implements the web search capability handler. Queries run
// through an identity backstop and a predefined answer table before hitting
// the DuckDuckGo instant-answer API; live answers are cached.
package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/arenlabs/aren/internal/config"
	"github.com/arenlabs/aren/internal/domain/capability"
	"github.com/arenlabs/aren/internal/port/cache"
)

const identityAnswer = "I am A.R.E.N., your AI assistant. I can help you with various tasks. Ask me about the time, date, search for information, or open applications!"

const searchUnavailable = "I couldn't complete the search right now. You could try asking again with different wording."

// identityTriggers catch identity questions that were misrouted to search.
var identityTriggers = []string{
	"who are you", "your name", "what are you",
	"tell me about you", "tell me about yourself",
	"what is your name", "what's your name",
	"tum kaun ho", "aap kaun ho", "tumhara naam kya hai",
}

// Handler answers open-ended questions.
type Handler struct {
	endpoint string
	ttl      time.Duration
	client   *http.Client
	cache    cache.Cache
	logger   *slog.Logger
	now      func() time.Time
}

// New creates a search handler. A nil cache disables answer caching.
func New(cfg config.Search, client *http.Client, c cache.Cache, logger *slog.Logger) *Handler {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		endpoint: cfg.Endpoint,
		ttl:      cfg.CacheTTL,
		client:   client,
		cache:    c,
		logger:   logger,
		now:      time.Now,
	}
}

// Name returns "search".
func (h *Handler) Name() string { return capability.Search }

// Extract passes the raw input through; the whole utterance is the query.
func (h *Handler) Extract(input string) (capability.Args, bool) {
	return capability.Args{"input": input}, true
}

// Invoke resolves the query. Service trouble produces an apologetic string,
// never an error.
func (h *Handler) Invoke(ctx context.Context, args capability.Args) (string, error) {
	query := args["input"]

	if isIdentityQuestion(query) {
		return identityAnswer, nil
	}

	if answer, ok := h.predefined(query); ok {
		return answer, nil
	}

	processed := preprocess(query)
	key := "search:" + strings.ToLower(processed)
	if h.cache != nil {
		if data, ok, err := h.cache.Get(ctx, key); err == nil && ok {
			return string(data), nil
		}
	}

	answer, err := h.instant(ctx, processed)
	if err != nil {
		h.logger.Warn("search api unavailable", "query", processed, "error", err)
		return searchUnavailable, nil
	}
	if answer == "" {
		return suggestion(query), nil
	}

	if h.cache != nil {
		if err := h.cache.Set(ctx, key, []byte(answer), h.ttl); err != nil {
			h.logger.Warn("search cache set failed", "error", err)
		}
	}
	return answer, nil
}

func isIdentityQuestion(query string) bool {
	lower := strings.ToLower(query)
	for _, trigger := range identityTriggers {
		if strings.Contains(lower, trigger) {
			return true
		}
	}
	return false
}

// predefinedAnswers are checked in order: exact key match first, then key
// contained in the query, then all key words present in the query.
var predefinedAnswers = []struct {
	key    string
	answer string
}{
	{"when was python created", "Python was created by Guido van Rossum and first released in 1991. It was developed as a successor to the ABC language and named after the British comedy group Monty Python."},
	{"who invented the internet", "The Internet was not invented by a single person. It evolved from the ARPANET, which was developed in the late 1960s by the Advanced Research Projects Agency (ARPA) of the U.S. Department of Defense. Key contributors include Vint Cerf and Bob Kahn who developed TCP/IP in the 1970s, which became the standard networking protocol of the Internet."},
	{"tallest mountain in the world", "Mount Everest is the tallest mountain above sea level, with a height of 8,848.86 meters (29,031.7 feet). However, if measured from base to peak, Mauna Kea in Hawaii is taller at 10,211 meters (33,500 feet), with much of it underwater."},
	{"latest news", ""},
	{"fastest animal", "The peregrine falcon is considered the fastest animal, capable of reaching speeds over 389 km/h (242 mph) during its hunting dive (stoop). On land, the cheetah is the fastest animal, reaching speeds up to 120 km/h (75 mph) in short bursts."},
	{"deepest ocean", "The Mariana Trench in the western Pacific Ocean is the deepest known part of the Earth's oceans, with a maximum depth of approximately 10,994 meters (36,070 feet) at a location called Challenger Deep."},
	{"largest country", "Russia is the largest country in the world by land area, covering approximately 17,098,246 square kilometers (6,601,670 square miles), spanning Eastern Europe and Northern Asia."},
	{"most populated country", "As of 2023, India surpassed China to become the most populated country in the world with approximately 1.43 billion people, while China has about 1.426 billion people."},
	{"how many planets in solar system", "There are eight recognized planets in our solar system: Mercury, Venus, Earth, Mars, Jupiter, Saturn, Uranus, and Neptune. Pluto was reclassified as a 'dwarf planet' by the International Astronomical Union in 2006."},
}

func (h *Handler) predefined(query string) (string, bool) {
	lower := strings.ToLower(query)

	for _, entry := range predefinedAnswers {
		if entry.key == lower {
			return h.resolvePredefined(entry.key, entry.answer), true
		}
	}

	for _, entry := range predefinedAnswers {
		if strings.Contains(lower, entry.key) || allWordsPresent(lower, entry.key) {
			return h.resolvePredefined(entry.key, entry.answer), true
		}
	}

	return "", false
}

func (h *Handler) resolvePredefined(key, answer string) string {
	if key == "latest news" {
		return h.simulatedNews()
	}
	return answer
}

func allWordsPresent(query, key string) bool {
	for _, word := range strings.Fields(key) {
		if !strings.Contains(query, word) {
			return false
		}
	}
	return true
}

var newsHeadlines = []string{
	"Scientists Report Breakthrough in Renewable Energy Storage Technology",
	"New AI Model Shows Promise in Early Disease Detection",
	"Global Summit on Climate Change Concludes with New Agreements",
	"Major Tech Companies Announce Collaboration on Cybersecurity",
	"Researchers Discover New Species in Amazon Rainforest",
	"International Space Station Celebrates 25 Years in Orbit",
	"Global Economy Shows Signs of Recovery, According to Latest Report",
	"New Educational Program Aims to Bridge Digital Divide",
	"Sports Update: Championship Finals Set to Begin This Weekend",
	"Cultural Heritage Preservation Efforts Gain International Support",
}

// simulatedNews renders five random headlines under today's date.
func (h *Handler) simulatedNews() string {
	picked := make([]string, len(newsHeadlines))
	copy(picked, newsHeadlines)
	rand.Shuffle(len(picked), func(i, j int) { picked[i], picked[j] = picked[j], picked[i] })
	picked = picked[:5]

	var b strings.Builder
	fmt.Fprintf(&b, "Latest News Headlines (%s):\n\n", h.now().Format("January 02, 2006"))
	for i, headline := range picked {
		fmt.Fprintf(&b, "%d. %s\n", i+1, headline)
	}
	b.WriteString("\nNote: These are simulated headlines for demonstration purposes.")
	return b.String()
}

var fillerWords = []string{
	"please", "can you", "could you", "tell me", "i want to know", "search for", "find", "look up",
}

// preprocess fixes common grammar slips and strips filler so the instant
// answer API sees a cleaner query.
func preprocess(query string) string {
	q := strings.ToLower(strings.TrimSpace(query))
	q = strings.ReplaceAll(q, "who build", "who built")
	q = strings.ReplaceAll(q, "who create", "who created")

	if strings.Contains(q, "taj mahal") {
		for _, term := range []string{"build", "built", "create", "created", "construct", "constructed"} {
			if strings.Contains(q, term) {
				return "Taj Mahal builder Shah Jahan history"
			}
		}
	}

	for _, filler := range fillerWords {
		q = strings.ReplaceAll(q, filler, "")
	}
	return strings.Join(strings.Fields(q), " ")
}

type instantAnswer struct {
	Abstract      string `json:"Abstract"`
	RelatedTopics []struct {
		Text string `json:"Text"`
	} `json:"RelatedTopics"`
}

// instant queries the DuckDuckGo instant-answer API. An empty answer with a
// nil error means the API had nothing for this query.
func (h *Handler) instant(ctx context.Context, query string) (string, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("http request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("search API error %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	var ia instantAnswer
	if err := json.Unmarshal(data, &ia); err != nil {
		return "", fmt.Errorf("unmarshal answer: %w", err)
	}

	if ia.Abstract != "" {
		return ia.Abstract, nil
	}
	if len(ia.RelatedTopics) > 0 {
		return ia.RelatedTopics[0].Text, nil
	}
	return "", nil
}

var suggestionFormats = []string{
	"I searched for information about '%s' but couldn't find specific details. Try rephrasing your question or being more specific.",
	"I don't have enough information about '%s' at the moment. Could you provide more details or ask in a different way?",
	"I'm not able to find reliable information about '%s' right now. You might want to try a more specific question.",
	"I don't have complete information about '%s' in my knowledge base. Try asking about a related but more general topic.",
}

func suggestion(query string) string {
	return fmt.Sprintf(suggestionFormats[rand.Intn(len(suggestionFormats))], query)
}
