package confluence

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	// DefaultLimit is the page size used when the caller doesn't ask for one.
	DefaultLimit = 250
	// MaxLimit is the largest page size the v2 API accepts.
	MaxLimit = 250

	defaultTimeout = 30 * time.Second
)

// Config holds everything needed to talk to one Confluence instance.  It's passed in by whoever
// constructs the API; nothing here is read from the environment.
type Config struct {
	// BaseURL of the wiki, e.g. https://ORG.atlassian.net/wiki
	BaseURL string

	// Basic auth: username is the account email, password the API token.
	Email    string
	APIToken string

	// Timeout for a single HTTP call.  Zero means 30s.
	Timeout time.Duration

	// RateLimit caps requests per second.  Zero means unlimited.
	RateLimit float64
	RateBurst int
}

// InstanceURL turns an ORG name into the wiki base URL for ORG.atlassian.net.
func InstanceURL(instance string) string {
	return fmt.Sprintf("https://%s.atlassian.net/wiki", instance)
}

func NewAPI(cfg Config) (*API, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("confluence: configure your Confluence base URL with --base-url or --confluence-instance")
	}
	if cfg.Email == "" {
		return nil, fmt.Errorf("confluence: configure your Confluence username with --auth-username")
	}
	if cfg.APIToken == "" {
		return nil, fmt.Errorf("confluence: auth token is empty, please check auth-token-cmd")
	}

	u, err := url.ParseRequestURI(strings.TrimSuffix(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("confluence: couldn't parse REST API URL: %w", err)
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.RateLimit > 0 {
		burst := cfg.RateBurst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}

	a := &API{
		BaseURI:  u,
		token:    cfg.APIToken,
		username: cfg.Email,
		limiter:  limiter,
	}
	a.Client = &http.Client{Timeout: timeout}

	return a, nil
}

type API struct {
	// Base of the wiki, e.g. https://INSTANCE.atlassian.net/wiki
	BaseURI *url.URL

	// An HTTP client - you can substitute VCR or whatnot.
	Client *http.Client

	// Auth info
	username, token string

	limiter *rate.Limiter
}
