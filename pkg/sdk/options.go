package searchgate

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const defaultTimeout = 30 * time.Second

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	httpClient *http.Client
	apiKey     string
	userAgent  string

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithHTTPClient replaces the HTTP client. Default: 30s timeout.
func WithHTTPClient(hc *http.Client) Option {
	return optionFunc(func(c *clientConfig) {
		c.httpClient = hc
	})
}

// WithAPIKey sends the key as a Bearer token on every request.
func WithAPIKey(key string) Option {
	return optionFunc(func(c *clientConfig) {
		c.apiKey = key
	})
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return optionFunc(func(c *clientConfig) {
		c.userAgent = ua
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}

// SearchOption tunes a single comment search.
type SearchOption func(*searchConfig)

type searchConfig struct {
	integrate *bool
	admin     bool
	ajax      bool
}

// Integrate sets the per-query ep_integrate override.
func Integrate(on bool) SearchOption {
	return func(c *searchConfig) {
		c.integrate = &on
	}
}

// FromAdmin marks the search as issued from the admin area.
func FromAdmin() SearchOption {
	return func(c *searchConfig) {
		c.admin = true
	}
}

// AsAJAX marks the search as an AJAX request.
func AsAJAX() SearchOption {
	return func(c *searchConfig) {
		c.ajax = true
	}
}
