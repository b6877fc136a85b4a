package transcriber

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"
)

// ErrNoProvider is returned by New when no API key is configured.
var ErrNoProvider = errors.New("no speech provider configured")

type NetworkMetrics struct {
	DNS         time.Duration
	ConnWait    time.Duration
	TCP         time.Duration
	TLS         time.Duration
	ReqHeaders  time.Duration
	ReqBody     time.Duration
	TTFB        time.Duration
	Download    time.Duration
	Total       time.Duration
	ConnReused  bool
	TLSProtocol string
}

func (m *NetworkMetrics) Sum() time.Duration {
	return m.ConnWait + m.DNS + m.TCP + m.TLS + m.ReqHeaders + m.ReqBody + m.TTFB + m.Download
}

func firstNonEmpty(h http.Header, keys ...string) string {
	for _, k := range keys {
		if v := h.Get(k); v != "" {
			return v
		}
	}
	return "?"
}

type Result struct {
	Text      string
	Metrics   *NetworkMetrics
	RateLimit string
	Duration  float64
}

type Transcriber interface {
	Name() string
	NewSession(ctx context.Context, cfg SessionConfig) (Session, error)
}

type baseTranscriber struct {
	client *TracedClient
	apiURL string
}

// primaryTag reduces a locale such as "zh-TW" to the ISO-639-1 code the
// transcription APIs accept.
func primaryTag(locale string) string {
	if i := strings.IndexAny(locale, "-_"); i >= 0 {
		locale = locale[:i]
	}
	return strings.ToLower(locale)
}

// New picks a provider by name. An empty name selects the first provider
// with an API key set, preferring Groq.
func New(provider string) (Transcriber, error) {
	groqKey := os.Getenv("GROQ_API_KEY")
	openaiKey := os.Getenv("OPENAI_API_KEY")

	switch provider {
	case "groq":
		if groqKey == "" {
			return nil, fmt.Errorf("groq: GROQ_API_KEY not set: %w", ErrNoProvider)
		}
		return NewGroq(groqKey), nil
	case "openai":
		if openaiKey == "" {
			return nil, fmt.Errorf("openai: OPENAI_API_KEY not set: %w", ErrNoProvider)
		}
		return NewOpenAI(openaiKey), nil
	case "":
	default:
		return nil, fmt.Errorf("unknown provider %q", provider)
	}

	if groqKey != "" {
		return NewGroq(groqKey), nil
	}
	if openaiKey != "" {
		return NewOpenAI(openaiKey), nil
	}
	return nil, fmt.Errorf("set GROQ_API_KEY or OPENAI_API_KEY: %w", ErrNoProvider)
}
