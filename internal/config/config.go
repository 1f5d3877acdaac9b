package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values. These are chosen to keep a session
// polite by default: small concurrency, a one second per-domain floor,
// and bounded page/time budgets.
const (
	// DefaultMaxDepth limits link distance from the seed. Three hops
	// covers most site sections without wandering into archives.
	DefaultMaxDepth = 3

	// DefaultMaxPages bounds the total number of fetches per session.
	// This prevents runaway crawling on large or infinitely-generating
	// sites. Users can raise it via the --max-pages flag.
	DefaultMaxPages = 100

	// DefaultTimeBudget bounds the wall-clock duration of a session.
	// The crawl transitions to the exhausted state when it expires.
	DefaultTimeBudget = 10 * time.Minute

	// DefaultConcurrency is the number of concurrent fetch workers.
	// Per-domain pacing dominates throughput anyway, so a small pool
	// is enough to keep several domains in flight.
	DefaultConcurrency = 4

	// DefaultDelayFloor is the minimum delay between two fetches to the
	// same domain, applied even when robots.txt declares no crawl-delay.
	DefaultDelayFloor = time.Second

	// DefaultMaxContentBytes caps the response body size per page.
	// 5MB is sufficient for HTML while preventing memory exhaustion
	// from unexpectedly large responses.
	DefaultMaxContentBytes = 5 * 1024 * 1024

	// DefaultChunkSize is the chunk length in runes for indexing.
	DefaultChunkSize = 1200

	// DefaultChunkOverlap is the rune overlap between adjacent chunks,
	// so sentences straddling a boundary stay retrievable.
	DefaultChunkOverlap = 200

	// DefaultLinkLimit caps how many in-scope links are followed per
	// page. Keeps breadth manageable on link-dense pages.
	DefaultLinkLimit = 5

	// DefaultFetchTimeout is the hard wall-clock timeout per request.
	DefaultFetchTimeout = 10 * time.Second

	// DefaultRetryMax is the number of additional attempts after a
	// transient fetch failure (timeout, connection refused).
	DefaultRetryMax = 2

	// DefaultPolicyTTL is how long a cached robots.txt record is
	// trusted before it is refreshed.
	DefaultPolicyTTL = 30 * time.Minute

	// DefaultUserAgent identifies the crawler in HTTP requests.
	// A descriptive User-Agent lets operators recognize the traffic.
	DefaultUserAgent = "clearseek/1.0 (+https://github.com/clearseek/clearseek; research-purpose)"

	// AppName is used for XDG directory paths.
	AppName = "clearseek"
)

// Mode selects a crawl profile, mirroring how a human researcher would
// tune the knobs: broad and quick, narrow and deep, or slow and quiet.
type Mode string

// Research modes.
const (
	// ModeExploratory follows more links per page with short delays.
	ModeExploratory Mode = "exploratory"

	// ModeDeepDive crawls deeper with moderate delays.
	ModeDeepDive Mode = "deep-dive"

	// ModeStealth keeps the default shape but stretches delays.
	ModeStealth Mode = "stealth"
)

// Config holds all options for a research session. It is populated from
// CLI flags, adjusted by ApplyMode, validated once with Validate, and
// then treated as read-only.
type Config struct {
	// SeedURL is the starting point of the crawl.
	SeedURL string

	// MaxDepth is the maximum link distance from the seed. The seed is
	// depth 0; depth 1 adds pages the seed links to, and so on.
	MaxDepth int

	// MaxPages is the total fetch budget for the session.
	MaxPages int

	// TimeBudget is the wall-clock budget for the session. Zero means
	// no time limit.
	TimeBudget time.Duration

	// Concurrency is the number of concurrent fetch workers.
	Concurrency int

	// DelayFloor is the minimum delay between fetches to one domain.
	// robots.txt crawl-delay can raise the effective delay, never
	// lower it below this floor.
	DelayFloor time.Duration

	// JitterMax is the upper bound of random extra delay added to each
	// domain's pacing. Zero disables jitter. Set by ApplyMode.
	JitterMax time.Duration

	// MaxContentBytes caps the response body size per fetch. Transfers
	// are aborted once the cap is exceeded.
	MaxContentBytes int64

	// ChunkSize is the chunk length in runes for indexing.
	ChunkSize int

	// ChunkOverlap is the rune overlap between adjacent chunks.
	// Must be smaller than ChunkSize.
	ChunkOverlap int

	// LinkLimit caps in-scope links followed per page. Zero means
	// unlimited.
	LinkLimit int

	// AllowedDomains restricts the crawl to the listed domains.
	// Empty means the seed's domain only.
	AllowedDomains []string

	// RespectRobots toggles robots.txt enforcement. Disabling it is
	// intended for crawling infrastructure you operate yourself.
	RespectRobots bool

	// Mode is the crawl profile applied by ApplyMode.
	Mode Mode

	// FetchTimeout is the hard per-request timeout.
	FetchTimeout time.Duration

	// RetryMax is the number of additional attempts after a transient
	// fetch failure.
	RetryMax int

	// PolicyTTL is the robots.txt cache lifetime.
	PolicyTTL time.Duration

	// UserAgent is sent with every request, including robots.txt
	// fetches, and matched against robots.txt user-agent groups.
	UserAgent string

	// SnapshotDir, when non-empty, enables an SQLite snapshot of the
	// session's documents, edges, and chunks. Empty keeps the session
	// fully in memory.
	SnapshotDir string

	// EmbedHost is the base URL of an Ollama-compatible embedding
	// service. Empty selects the built-in deterministic embedder.
	EmbedHost string

	// EmbedModel is the embedding model name used with EmbedHost.
	EmbedModel string

	// Verbose enables debug-level logging.
	Verbose bool
}

// New returns a Config with default values. Callers override fields
// from flags and then call ApplyMode and Validate.
func New() *Config {
	return &Config{
		MaxDepth:        DefaultMaxDepth,
		MaxPages:        DefaultMaxPages,
		TimeBudget:      DefaultTimeBudget,
		Concurrency:     DefaultConcurrency,
		DelayFloor:      DefaultDelayFloor,
		MaxContentBytes: DefaultMaxContentBytes,
		ChunkSize:       DefaultChunkSize,
		ChunkOverlap:    DefaultChunkOverlap,
		LinkLimit:       DefaultLinkLimit,
		RespectRobots:   true,
		Mode:            ModeExploratory,
		FetchTimeout:    DefaultFetchTimeout,
		RetryMax:        DefaultRetryMax,
		PolicyTTL:       DefaultPolicyTTL,
		UserAgent:       DefaultUserAgent,
	}
}

// ApplyMode adjusts the config for the selected research mode.
// It widens or narrows the crawl shape and sets the delay jitter;
// explicit flag values are adjusted, never discarded.
func (c *Config) ApplyMode() {
	switch c.Mode {
	case ModeExploratory:
		c.LinkLimit = min(c.LinkLimit*2, 20)
		c.JitterMax = 2 * time.Second
	case ModeDeepDive:
		c.MaxDepth = min(c.MaxDepth+2, 10)
		c.JitterMax = 2 * time.Second
	case ModeStealth:
		c.DelayFloor = maxDuration(c.DelayFloor, 3*time.Second)
		c.JitterMax = 4 * time.Second
	default:
		c.JitterMax = 2 * time.Second
	}
}

// Validate checks the configuration and returns the first problem
// found as a sentinel error. It is called once, before any crawling
// begins, so contradictory settings fail fast.
func (c *Config) Validate() error {
	if c.SeedURL == "" {
		return ErrNoSeed
	}
	if c.MaxDepth < 0 {
		return ErrInvalidDepth
	}
	if c.MaxPages <= 0 {
		return ErrInvalidMaxPages
	}
	if c.TimeBudget < 0 {
		return ErrInvalidTimeBudget
	}
	if c.Concurrency <= 0 {
		return ErrInvalidConcurrency
	}
	if c.DelayFloor < 0 {
		return ErrInvalidDelayFloor
	}
	if c.MaxContentBytes <= 0 {
		return ErrInvalidMaxContentBytes
	}
	if c.ChunkSize <= 0 || c.ChunkOverlap < 0 || c.ChunkOverlap >= c.ChunkSize {
		return ErrInvalidChunking
	}
	if c.LinkLimit < 0 {
		return ErrInvalidLinkLimit
	}
	if c.FetchTimeout <= 0 {
		return ErrInvalidFetchTimeout
	}
	if c.RetryMax < 0 {
		return ErrInvalidRetryMax
	}
	switch c.Mode {
	case ModeExploratory, ModeDeepDive, ModeStealth:
	default:
		return ErrInvalidMode
	}
	return nil
}

// DomainAllowed reports whether a domain is within the crawl scope.
// seedDomain is always in scope; AllowedDomains widens the scope.
func (c *Config) DomainAllowed(seedDomain, domain string) bool {
	if domain == seedDomain {
		return true
	}
	for _, d := range c.AllowedDomains {
		if d == domain {
			return true
		}
	}
	return false
}

// XDGDataDir returns the default data directory for snapshots,
// following the XDG Base Directory Specification.
// On Linux: ~/.local/share/clearseek
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

func maxDuration(a, b time.Duration) time.Duration {
	if a > b {
		return a
	}
	return b
}
