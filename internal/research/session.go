package research

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/clearseek/clearseek/internal/config"
	"github.com/clearseek/clearseek/internal/crawler"
	"github.com/clearseek/clearseek/internal/fetch"
	"github.com/clearseek/clearseek/internal/frontier"
	"github.com/clearseek/clearseek/internal/graph"
	"github.com/clearseek/clearseek/internal/index"
	"github.com/clearseek/clearseek/internal/model"
	"github.com/clearseek/clearseek/internal/policy"
	"github.com/clearseek/clearseek/internal/retrieve"
)

// Progress is a point-in-time view of a running session, safe to call
// from another goroutine than Run. Processed pages are the per-status
// counters; PagesQueued is the work still waiting in the frontier.
type Progress struct {
	State           model.SessionState
	PagesFetched    int
	PagesBlocked    int
	PagesErrored    int
	PagesSkipped    int
	PagesQueued     int
	LinksDiscovered int
	ChunksIndexed   int
	Elapsed         time.Duration
}

// Session is one research run: a validated configuration, the crawl
// pipeline built from it, and the knowledge base the crawl fills.
// A session is single-use; Run may be called once.
type Session struct {
	// ID uniquely identifies the session, e.g. in snapshot filenames.
	ID string

	cfg       *config.Config
	logger    *slog.Logger
	overrides *config.File
	gate      *policy.Gate
	frontier  *frontier.Frontier
	graph     *graph.Graph
	indexer   *index.Indexer
	crawler   *crawler.Crawler
	retriever *retrieve.Retriever

	mu      sync.Mutex
	state   model.SessionState
	started time.Time
	cancel  context.CancelFunc
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

// WithOverrides supplies per-site overrides from the config file.
func WithOverrides(overrides *config.File) Option {
	return func(s *Session) {
		s.overrides = overrides
	}
}

// NewSession validates the configuration and builds the crawl pipeline.
// It fails fast: a bad seed or contradictory settings are reported here,
// before any network traffic.
func NewSession(cfg *config.Config, opts ...Option) (*Session, error) {
	cfg.ApplyMode()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration: %w", err)
	}
	if _, err := model.NormalizeURL(cfg.SeedURL); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSeed, err)
	}

	s := &Session{
		ID:    uuid.NewString(),
		cfg:   cfg,
		state: model.StateIdle,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = slog.Default()
	}

	s.gate = policy.NewGate(cfg.UserAgent,
		policy.WithTTL(cfg.PolicyTTL),
		policy.WithDelayFloor(cfg.DelayFloor),
		policy.WithRespectRobots(cfg.RespectRobots),
		policy.WithOverrides(s.overrides),
		policy.WithLogger(s.logger),
	)

	fetcher := fetch.NewFetcher(
		fetch.WithTimeout(cfg.FetchTimeout),
		fetch.WithMaxBodyBytes(cfg.MaxContentBytes),
		fetch.WithUserAgent(cfg.UserAgent),
	)

	s.frontier = frontier.New(cfg.DelayFloor)
	s.graph = graph.New()
	s.indexer = index.NewIndexer(s.buildEmbedder(),
		index.WithChunker(index.NewChunker(cfg.ChunkSize, cfg.ChunkOverlap)),
		index.WithIndexLogger(s.logger),
	)
	s.crawler = crawler.New(cfg, s.gate, fetcher, s.frontier, s.graph, s.indexer, s.logger)
	s.retriever = retrieve.NewRetriever(s.indexer)

	return s, nil
}

// buildEmbedder selects the embedding backend: an Ollama-compatible
// service when configured, the built-in deterministic embedder
// otherwise.
func (s *Session) buildEmbedder() index.Embedder {
	if s.cfg.EmbedHost != "" {
		return index.NewOllamaEmbedder(s.cfg.EmbedHost, s.cfg.EmbedModel)
	}
	return index.NewLocalEmbedder(0)
}

// Run executes the crawl to its terminal state and returns the session
// summary. Individual page failures never fail the session; Run errors
// only on misuse or an unreachable embedding service.
func (s *Session) Run(ctx context.Context) (*model.Summary, error) {
	s.mu.Lock()
	if s.state != model.StateIdle {
		s.mu.Unlock()
		return nil, ErrAlreadyRun
	}
	if embedder, ok := s.indexer.Embedder().(*index.OllamaEmbedder); ok {
		if !embedder.IsHealthy(ctx) {
			s.state = model.StateAborted
			s.mu.Unlock()
			return nil, fmt.Errorf("%w: %s", ErrEmbedServiceUnavailable, s.cfg.EmbedHost)
		}
	}
	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.state = model.StateRunning
	s.started = time.Now()
	s.mu.Unlock()
	defer cancel()

	s.logger.Info("session started",
		"session", s.ID,
		"seed", s.cfg.SeedURL,
		"mode", string(s.cfg.Mode),
		"max_depth", s.cfg.MaxDepth,
		"max_pages", s.cfg.MaxPages,
	)

	state, err := s.crawler.Crawl(runCtx)
	if err != nil {
		s.mu.Lock()
		s.state = model.StateAborted
		s.mu.Unlock()
		return nil, fmt.Errorf("crawl: %w", err)
	}

	s.mu.Lock()
	s.state = state
	duration := time.Since(s.started)
	s.mu.Unlock()

	summary := s.summary(state, duration)
	s.logger.Info("session finished",
		"session", s.ID,
		"state", string(state),
		"pages", summary.TotalPages(),
		"chunks", summary.ChunksIndexed,
		"duration", duration.Round(time.Millisecond),
	)
	return summary, nil
}

// Cancel stops a running crawl. The session transitions to the aborted
// state; partial results stay queryable.
func (s *Session) Cancel() {
	s.mu.Lock()
	cancel := s.cancel
	s.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// Progress reports the session's current counters.
func (s *Session) Progress() Progress {
	s.mu.Lock()
	state := s.state
	started := s.started
	s.mu.Unlock()

	stats := s.crawler.Stats()
	p := Progress{
		State:           state,
		PagesFetched:    stats.PagesFetched,
		PagesBlocked:    stats.PagesBlocked,
		PagesErrored:    stats.PagesErrored,
		PagesSkipped:    stats.PagesSkipped,
		PagesQueued:     s.frontier.Len(),
		LinksDiscovered: stats.LinksDiscovered,
		ChunksIndexed:   stats.ChunksIndexed,
	}
	if !started.IsZero() {
		p.Elapsed = time.Since(started)
	}
	return p
}

// Query retrieves the top k passages for a question from the session's
// knowledge base. Valid during and after the crawl; an empty knowledge
// base yields an empty answer.
func (s *Session) Query(ctx context.Context, text string, k int) ([]retrieve.Result, error) {
	return s.retriever.Query(ctx, text, k)
}

// Documents returns the documents recorded so far.
func (s *Session) Documents() []*model.Document {
	return s.crawler.Documents()
}

// Graph returns the session's link graph.
func (s *Session) Graph() *graph.Graph {
	return s.graph
}

// Chunks returns the indexed chunks, e.g. for snapshotting.
func (s *Session) Chunks() []model.Chunk {
	return s.indexer.Chunks()
}

// ChunkCount returns the knowledge base size in chunks.
func (s *Session) ChunkCount() int {
	return s.indexer.Count()
}

// State returns the session's lifecycle state.
func (s *Session) State() model.SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Close tears the session down: the policy cache and the in-memory
// knowledge base are discarded. Snapshot before closing if the results
// should outlive the session.
func (s *Session) Close() {
	s.Cancel()
	s.gate.Close()
	s.indexer.Clear()
}

// summary assembles the final counters.
func (s *Session) summary(state model.SessionState, duration time.Duration) *model.Summary {
	stats := s.crawler.Stats()
	return &model.Summary{
		State:           state,
		PagesFetched:    stats.PagesFetched,
		PagesBlocked:    stats.PagesBlocked,
		PagesErrored:    stats.PagesErrored,
		PagesSkipped:    stats.PagesSkipped,
		LinksDiscovered: stats.LinksDiscovered,
		ChunksIndexed:   stats.ChunksIndexed,
		Duration:        duration,
	}
}
