package policy

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/clearseek/clearseek/internal/config"
)

// DefaultConservativeDelay is the pacing delay assumed when a domain
// declares no crawl-delay or its robots.txt is unreachable.
const DefaultConservativeDelay = 2 * time.Second

// maxRobotsBytes caps robots.txt reads. The de facto limit is 500KB;
// anything larger is not a robots file worth trusting.
const maxRobotsBytes = 512 * 1024

// Decision is the gate's answer for one URL.
type Decision struct {
	// Allowed reports whether the URL may be fetched.
	Allowed bool

	// Delay is the pacing delay for the URL's domain. Only meaningful
	// when Allowed is true.
	Delay time.Duration

	// Reason explains a denial, e.g. "disallowed by robots.txt".
	Reason string
}

// Gate resolves and caches per-domain crawling permissions.
//
// The cache is read-mostly: workers hit it on every URL while refreshes
// happen once per domain per TTL. Concurrent refreshes for the same
// domain collapse into a single robots.txt fetch via singleflight, so a
// burst of first-contact URLs to one domain costs one request.
type Gate struct {
	client     *http.Client
	userAgent  string
	agentToken string
	ttl        time.Duration
	floor      time.Duration
	respect    bool
	overrides  *config.File
	logger     *slog.Logger
	sf         singleflight.Group
	mu         sync.RWMutex
	cache      map[string]*cacheEntry
}

type cacheEntry struct {
	record  *Record
	expires time.Time
}

// Option configures a Gate.
type Option func(*Gate)

// WithHTTPClient sets the client used for robots.txt fetches.
func WithHTTPClient(client *http.Client) Option {
	return func(g *Gate) {
		g.client = client
	}
}

// WithTTL sets the robots.txt cache lifetime.
func WithTTL(ttl time.Duration) Option {
	return func(g *Gate) {
		g.ttl = ttl
	}
}

// WithDelayFloor sets the minimum pacing delay returned for any domain.
func WithDelayFloor(floor time.Duration) Option {
	return func(g *Gate) {
		g.floor = floor
	}
}

// WithRespectRobots toggles robots.txt enforcement. When disabled the
// gate allows everything at the floor delay; intended for crawling
// infrastructure you operate yourself.
func WithRespectRobots(respect bool) Option {
	return func(g *Gate) {
		g.respect = respect
	}
}

// WithOverrides supplies per-site overrides from the config file.
// Override disallow prefixes deny before robots rules are consulted,
// and an override delay raises the domain's pacing floor.
func WithOverrides(overrides *config.File) Option {
	return func(g *Gate) {
		g.overrides = overrides
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Gate) {
		g.logger = logger
	}
}

// NewGate creates a policy gate for the given user agent string.
// The product token (text before the first "/") is matched against
// robots.txt user-agent groups.
func NewGate(userAgent string, opts ...Option) *Gate {
	token := userAgent
	if i := strings.IndexAny(token, "/ "); i > 0 {
		token = token[:i]
	}

	g := &Gate{
		client:     &http.Client{Timeout: 10 * time.Second},
		userAgent:  userAgent,
		agentToken: strings.ToLower(token),
		ttl:        config.DefaultPolicyTTL,
		floor:      config.DefaultDelayFloor,
		respect:    true,
		cache:      make(map[string]*cacheEntry),
	}

	for _, opt := range opts {
		opt(g)
	}

	if g.logger == nil {
		g.logger = slog.Default()
	}

	return g
}

// Authorize decides whether a normalized URL may be fetched and at what
// per-domain pacing delay. It never returns an error: policy fetch and
// parse failures are logged and resolved fail-open.
func (g *Gate) Authorize(ctx context.Context, normalized string) Decision {
	u, err := url.Parse(normalized)
	if err != nil || u.Host == "" {
		return Decision{Allowed: false, Reason: fmt.Sprintf("unparsable URL %q", normalized)}
	}
	domain := u.Host

	floor := g.floor
	if site, ok := g.overrides.SiteFor(domain); ok {
		if site.Delay > floor {
			floor = site.Delay
		}
		for _, prefix := range site.Disallow {
			if strings.HasPrefix(u.Path, prefix) {
				return Decision{Allowed: false, Reason: "disallowed by site config"}
			}
		}
	}

	if !g.respect {
		return Decision{Allowed: true, Delay: floor}
	}

	record := g.record(ctx, u.Scheme, domain)
	if record == nil {
		// Policy unreachable: fail open, pace conservatively.
		return Decision{Allowed: true, Delay: maxDelay(floor, DefaultConservativeDelay)}
	}

	if !record.PathAllowed(u.Path) {
		return Decision{Allowed: false, Reason: "disallowed by robots.txt"}
	}

	delay := maxDelay(floor, record.CrawlDelay)
	return Decision{Allowed: true, Delay: delay}
}

// Close releases the cached policy records. The gate must not be used
// after Close; it exists so a session's teardown is explicit.
func (g *Gate) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.cache = make(map[string]*cacheEntry)
}

// record returns the cached record for a domain, refreshing it when
// expired. A nil return means the policy could not be retrieved.
func (g *Gate) record(ctx context.Context, scheme, domain string) *Record {
	g.mu.RLock()
	entry, ok := g.cache[domain]
	g.mu.RUnlock()
	if ok && time.Now().Before(entry.expires) {
		return entry.record
	}

	// Collapse concurrent refreshes for the same domain into one fetch.
	v, _, _ := g.sf.Do(domain, func() (any, error) {
		g.mu.RLock()
		entry, ok := g.cache[domain]
		g.mu.RUnlock()
		if ok && time.Now().Before(entry.expires) {
			return entry.record, nil
		}

		record := g.fetchRecord(ctx, scheme, domain)
		g.mu.Lock()
		g.cache[domain] = &cacheEntry{record: record, expires: time.Now().Add(g.ttl)}
		g.mu.Unlock()
		return record, nil
	})

	record, _ := v.(*Record)
	return record
}

// fetchRecord retrieves and parses a domain's robots.txt.
//
// Status handling follows long-standing crawler convention: 4xx means
// the site declares no policy (everything allowed), while transport
// errors and 5xx leave the policy unknown (nil) so the caller applies
// the conservative default. Both are cached to avoid hammering a
// broken endpoint.
func (g *Gate) fetchRecord(ctx context.Context, scheme, domain string) *Record {
	robotsURL := fmt.Sprintf("%s://%s/robots.txt", scheme, domain)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		g.logger.Warn("building robots.txt request failed", "domain", domain, "error", err)
		return nil
	}
	req.Header.Set("User-Agent", g.userAgent)

	resp, err := g.client.Do(req)
	if err != nil {
		g.logger.Warn("robots.txt unreachable, failing open", "domain", domain, "error", err)
		return nil
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		record := ParseRobots(io.LimitReader(resp.Body, maxRobotsBytes), g.agentToken)
		g.logger.Debug("robots.txt loaded",
			"domain", domain,
			"rules", len(record.Rules),
			"crawl_delay", record.CrawlDelay,
		)
		return record
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		// No robots.txt: no declared restrictions.
		return &Record{FetchedAt: time.Now()}
	default:
		g.logger.Warn("robots.txt fetch failed, failing open",
			"domain", domain,
			"status", resp.StatusCode,
		)
		return nil
	}
}

func maxDelay(a, b time.Duration) time.Duration {
	if a > b {
		return a
	}
	return b
}
