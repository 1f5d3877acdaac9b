package frontier

import (
	"container/heap"
	"sync"
	"time"

	"github.com/clearseek/clearseek/internal/model"
)

// Entry is one scheduled URL.
type Entry struct {
	// URL is the normalized URL to fetch.
	URL string

	// Domain is the URL's host, the pacing key.
	Domain string

	// Depth is the link distance from the seed.
	Depth int

	// DiscoveredFrom is the URL of the page that linked here. Empty
	// for the seed.
	DiscoveredFrom string

	// seq is the discovery order, assigned on push. Within a depth,
	// earlier discoveries pop first.
	seq uint64
}

// Frontier schedules URLs for the crawl workers. All methods are safe
// for concurrent use; the queue, seen-set, and pacing watermarks share
// one mutex since every operation touches at least two of them.
type Frontier struct {
	mu      sync.Mutex
	heap    entryHeap
	seen    map[string]struct{}
	next    map[string]time.Time     // per-domain next-eligible watermark
	delays  map[string]time.Duration // per-domain pacing delay
	floor   time.Duration
	nextSeq uint64
}

// New creates an empty frontier. floor is the pacing delay used for
// domains whose delay has not been registered yet.
func New(floor time.Duration) *Frontier {
	return &Frontier{
		seen:   make(map[string]struct{}),
		next:   make(map[string]time.Time),
		delays: make(map[string]time.Duration),
		floor:  floor,
	}
}

// Push schedules a URL unless it was ever scheduled before.
// It returns true if the entry was accepted. Push derives the domain
// from the URL when the caller left it empty.
func (f *Frontier) Push(e Entry) bool {
	if e.Domain == "" {
		e.Domain = model.Domain(e.URL)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if _, dup := f.seen[e.URL]; dup {
		return false
	}
	f.seen[e.URL] = struct{}{}

	e.seq = f.nextSeq
	f.nextSeq++
	heap.Push(&f.heap, e)
	return true
}

// Pop returns the highest-priority entry whose domain is eligible at
// now, advancing that domain's watermark. When nothing is eligible it
// returns (nil, wakeAt): wakeAt is the earliest next-eligible time
// among queued domains, or the zero time if the queue is empty.
func (f *Frontier) Pop(now time.Time) (*Entry, time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.heap.Len() == 0 {
		return nil, time.Time{}
	}

	// Pop entries in priority order, holding back the ones whose
	// domain is still pacing. Held entries go straight back; their
	// relative order is preserved by seq.
	var held []Entry
	var earliest time.Time

	for f.heap.Len() > 0 {
		e := heap.Pop(&f.heap).(Entry)
		eligibleAt := f.next[e.Domain]
		if eligibleAt.After(now) {
			held = append(held, e)
			if earliest.IsZero() || eligibleAt.Before(earliest) {
				earliest = eligibleAt
			}
			continue
		}

		for _, h := range held {
			heap.Push(&f.heap, h)
		}
		f.next[e.Domain] = now.Add(f.delayFor(e.Domain))
		return &e, time.Time{}
	}

	for _, h := range held {
		heap.Push(&f.heap, h)
	}
	return nil, earliest
}

// SetDomainDelay registers the pacing delay for a domain, typically
// after the policy gate resolved the domain's crawl-delay. The floor
// still applies.
func (f *Frontier) SetDomainDelay(domain string, delay time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if delay < f.floor {
		delay = f.floor
	}
	f.delays[domain] = delay
}

// Seen reports whether a URL was ever scheduled.
func (f *Frontier) Seen(url string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.seen[url]
	return ok
}

// Len returns the number of queued entries.
func (f *Frontier) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.heap.Len()
}

// SeenCount returns the number of unique URLs ever scheduled.
func (f *Frontier) SeenCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.seen)
}

func (f *Frontier) delayFor(domain string) time.Duration {
	if d, ok := f.delays[domain]; ok {
		return d
	}
	return f.floor
}

// entryHeap orders entries by (depth, seq): lower depth first, then
// discovery order. This gives the breadth-first bias with FIFO
// tie-break the scheduler wants.
type entryHeap []Entry

func (h entryHeap) Len() int { return len(h) }

func (h entryHeap) Less(i, j int) bool {
	if h[i].Depth != h[j].Depth {
		return h[i].Depth < h[j].Depth
	}
	return h[i].seq < h[j].seq
}

func (h entryHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *entryHeap) Push(x any) {
	*h = append(*h, x.(Entry))
}

func (h *entryHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	*h = old[:n-1]
	return e
}
