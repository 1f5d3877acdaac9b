package crawler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/text/unicode/norm"

	"github.com/clearseek/clearseek/internal/config"
	"github.com/clearseek/clearseek/internal/fetch"
	"github.com/clearseek/clearseek/internal/frontier"
	"github.com/clearseek/clearseek/internal/graph"
	"github.com/clearseek/clearseek/internal/index"
	"github.com/clearseek/clearseek/internal/model"
	"github.com/clearseek/clearseek/internal/policy"
)

// idlePollInterval bounds how long the dispatcher sleeps when every
// queued domain is pacing and the frontier gave no wake hint.
const idlePollInterval = 50 * time.Millisecond

// retryBaseDelay is the first retry backoff; each further attempt
// doubles it.
const retryBaseDelay = 500 * time.Millisecond

// Stats are the session counters, updated as pages finish.
type Stats struct {
	PagesFetched    int
	PagesBlocked    int
	PagesErrored    int
	PagesSkipped    int
	LinksDiscovered int
	ChunksIndexed   int
}

// TotalPages returns the number of URLs processed, whatever the outcome.
func (s Stats) TotalPages() int {
	return s.PagesFetched + s.PagesBlocked + s.PagesErrored + s.PagesSkipped
}

// Crawler runs one bounded crawl: a dispatcher pops eligible URLs from
// the frontier and hands them to a fixed pool of workers, each of which
// consults the policy gate, fetches, extracts, and feeds the link graph
// and the index. The crawl ends when the frontier drains, a budget
// expires, or the context is canceled.
type Crawler struct {
	cfg        *config.Config
	gate       *policy.Gate
	fetcher    *fetch.Fetcher
	frontier   *frontier.Frontier
	graph      *graph.Graph
	indexer    *index.Indexer
	logger     *slog.Logger
	seedDomain string

	mu    sync.Mutex
	docs  []*model.Document
	stats Stats
}

// New creates a crawler from already-constructed collaborators. The
// config must have been validated.
func New(cfg *config.Config, gate *policy.Gate, fetcher *fetch.Fetcher, fr *frontier.Frontier, g *graph.Graph, ix *index.Indexer, logger *slog.Logger) *Crawler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Crawler{
		cfg:      cfg,
		gate:     gate,
		fetcher:  fetcher,
		frontier: fr,
		graph:    g,
		indexer:  ix,
		logger:   logger,
	}
}

// Crawl runs the session to completion and reports its terminal state:
// Completed when the frontier drained, Exhausted when the page or time
// budget expired with work remaining, Aborted when ctx was canceled.
func (c *Crawler) Crawl(ctx context.Context) (model.SessionState, error) {
	seed, err := model.NormalizeURL(c.cfg.SeedURL)
	if err != nil {
		return model.StateIdle, fmt.Errorf("seed URL: %w", err)
	}
	c.seedDomain = model.Domain(seed)
	c.frontier.Push(frontier.Entry{URL: seed, Depth: 0})

	runCtx := ctx
	var cancel context.CancelFunc
	if c.cfg.TimeBudget > 0 {
		runCtx, cancel = context.WithTimeout(ctx, c.cfg.TimeBudget)
		defer cancel()
	}

	eg, egCtx := errgroup.WithContext(runCtx)
	eg.SetLimit(c.cfg.Concurrency)

	var inflight atomic.Int64
	dispatched := 0

dispatch:
	for {
		if egCtx.Err() != nil {
			break
		}
		if dispatched >= c.cfg.MaxPages {
			break
		}

		entry, wakeAt := c.frontier.Pop(time.Now())
		if entry == nil {
			if c.frontier.Len() == 0 && inflight.Load() == 0 {
				break // drained: workers finished and produced no new links
			}
			sleep := idlePollInterval
			if !wakeAt.IsZero() {
				if until := time.Until(wakeAt); until < sleep {
					sleep = until
				}
			}
			if sleep < 0 {
				sleep = 0
			}
			select {
			case <-egCtx.Done():
				break dispatch
			case <-time.After(sleep):
			}
			continue
		}

		dispatched++
		inflight.Add(1)
		eg.Go(func() error {
			defer inflight.Add(-1)
			c.process(egCtx, entry)
			return nil
		})
	}

	_ = eg.Wait()

	if ctx.Err() != nil {
		return model.StateAborted, nil
	}
	if runCtx.Err() != nil {
		// Time budget expired before the frontier drained.
		return model.StateExhausted, nil
	}
	if dispatched >= c.cfg.MaxPages && c.frontier.Len() > 0 {
		return model.StateExhausted, nil
	}
	return model.StateCompleted, nil
}

// Stats returns a snapshot of the session counters.
func (c *Crawler) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

// Documents returns the documents recorded so far, in completion order.
// Documents are immutable once recorded.
func (c *Crawler) Documents() []*model.Document {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.docs[:len(c.docs):len(c.docs)]
}

// process handles one frontier entry end to end: policy, fetch with
// retries, extraction, link discovery, and indexing. Every entry ends
// as exactly one recorded document.
func (c *Crawler) process(ctx context.Context, entry *frontier.Entry) {
	decision := c.gate.Authorize(ctx, entry.URL)
	if !decision.Allowed {
		c.logger.Info("fetch denied", "url", entry.URL, "reason", decision.Reason)
		c.record(&model.Document{
			URL:       entry.URL,
			Depth:     entry.Depth,
			FetchedAt: time.Now(),
			Status:    model.StatusBlocked,
			Reason:    decision.Reason,
		})
		return
	}

	c.frontier.SetDomainDelay(entry.Domain, c.pacingDelay(decision.Delay))

	resp, err := c.fetchWithRetry(ctx, entry.URL)
	if err != nil {
		c.record(c.failedDocument(entry, err))
		return
	}

	doc, links := c.buildDocument(entry, resp)
	c.discoverLinks(doc, entry, links)
	c.record(doc)

	if added := c.indexer.Index(ctx, doc); added > 0 {
		c.mu.Lock()
		c.stats.ChunksIndexed += added
		c.mu.Unlock()
	}

	c.logger.Debug("page processed",
		"url", doc.URL,
		"depth", doc.Depth,
		"links", len(doc.Links),
		"title", doc.Title,
	)
}

// pacingDelay adds the mode's random jitter on top of the resolved
// policy delay. Re-randomized on every visit so the traffic pattern
// does not tick like a metronome.
func (c *Crawler) pacingDelay(base time.Duration) time.Duration {
	if c.cfg.JitterMax <= 0 {
		return base
	}
	return base + time.Duration(rand.Int63n(int64(c.cfg.JitterMax)))
}

// fetchWithRetry fetches a URL, retrying transient failures (timeouts,
// refused connections) with exponential backoff. Policy denials never
// reach here, and non-transient failures return immediately.
func (c *Crawler) fetchWithRetry(ctx context.Context, pageURL string) (*fetch.Response, error) {
	var lastErr error
	for attempt := 0; attempt <= c.cfg.RetryMax; attempt++ {
		if attempt > 0 {
			backoff := retryBaseDelay << (attempt - 1)
			select {
			case <-ctx.Done():
				return nil, lastErr
			case <-time.After(backoff):
			}
			c.logger.Debug("retrying fetch", "url", pageURL, "attempt", attempt+1)
		}

		resp, err := c.fetcher.Fetch(ctx, pageURL)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if !fetch.KindOf(err).Retryable() || ctx.Err() != nil {
			return nil, err
		}
	}
	return nil, lastErr
}

// failedDocument turns a fetch error into the document recording it.
// Oversized bodies and unsupported content types are deliberate skips;
// everything else is an error.
func (c *Crawler) failedDocument(entry *frontier.Entry, err error) *model.Document {
	doc := &model.Document{
		URL:       entry.URL,
		Depth:     entry.Depth,
		FetchedAt: time.Now(),
		Status:    model.StatusError,
		Reason:    err.Error(),
	}

	var fetchErr *fetch.Error
	if errors.As(err, &fetchErr) {
		doc.StatusCode = fetchErr.StatusCode
		switch fetchErr.Kind {
		case fetch.KindTooLarge:
			doc.Status = model.StatusSkipped
			doc.Reason = "content exceeds byte cap"
		case fetch.KindUnsupportedContentType:
			doc.Status = model.StatusSkipped
			doc.Reason = "unsupported content type"
		}
	}

	c.logger.Info("fetch failed", "url", entry.URL, "status", doc.Status, "reason", doc.Reason)
	return doc
}

// buildDocument extracts title, text, metadata, and resources from a
// successful response. It also returns the raw parsed links for
// discoverLinks; the document itself only records the normalized
// in-scope ones.
func (c *Crawler) buildDocument(entry *frontier.Entry, resp *fetch.Response) (*model.Document, []Link) {
	doc := &model.Document{
		URL:         entry.URL,
		Depth:       entry.Depth,
		FetchedAt:   resp.FetchedAt,
		StatusCode:  resp.StatusCode,
		ContentType: resp.ContentType,
		Status:      model.StatusOK,
	}

	if resp.ContentType == "text/plain" {
		doc.Text = norm.NFC.String(strings.TrimSpace(string(resp.Body)))
		return doc, nil
	}

	doc.Text = ExtractText(string(resp.Body))

	parser, err := NewParser(resp.FinalURL)
	if err != nil {
		return doc, nil
	}
	parsed, err := parser.Parse(bytes.NewReader(resp.Body))
	if err != nil {
		c.logger.Warn("HTML parse failed", "url", entry.URL, "error", err)
		return doc, nil
	}

	doc.Title = parsed.Title
	doc.Metadata = parsed.Metadata
	doc.Resources = parsed.Resources
	return doc, parsed.Links
}

// discoverLinks normalizes the page's links, schedules the in-scope
// ones, and records the corresponding graph edges. Edges are only added
// for link targets that entered the frontier (now or earlier), so every
// edge endpoint is a URL the session knows about.
func (c *Crawler) discoverLinks(doc *model.Document, entry *frontier.Entry, links []Link) {
	followed := 0
	discovered := 0
	for _, link := range links {
		target, err := model.NormalizeURL(link.URL)
		if err != nil || target == doc.URL {
			continue
		}

		inScope := c.cfg.DomainAllowed(c.seedDomain, model.Domain(target)) &&
			entry.Depth+1 <= c.cfg.MaxDepth

		switch {
		case c.frontier.Seen(target):
			// Already scheduled by some page; the edge is still new
			// information for the graph.
		case !inScope:
			continue
		case c.cfg.LinkLimit > 0 && followed >= c.cfg.LinkLimit:
			continue
		default:
			c.frontier.Push(frontier.Entry{
				URL:            target,
				Depth:          entry.Depth + 1,
				DiscoveredFrom: doc.URL,
			})
			followed++
		}

		c.graph.AddEdge(model.LinkEdge{Source: doc.URL, Target: target, Anchor: link.Anchor})
		doc.Links = append(doc.Links, target)
		discovered++
	}

	c.mu.Lock()
	c.stats.LinksDiscovered += discovered
	c.mu.Unlock()
}

// record appends a finished document and bumps the matching counter.
func (c *Crawler) record(doc *model.Document) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.docs = append(c.docs, doc)
	switch doc.Status {
	case model.StatusOK:
		c.stats.PagesFetched++
	case model.StatusBlocked:
		c.stats.PagesBlocked++
	case model.StatusError:
		c.stats.PagesErrored++
	case model.StatusSkipped:
		c.stats.PagesSkipped++
	}
}
