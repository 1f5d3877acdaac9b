// Package frontier implements the URL scheduling structure for a crawl.
//
// The frontier combines three things under a single mutex:
//   - a priority queue ordered by depth (breadth-first bias) with FIFO
//     tie-break within a depth
//   - the seen-set, which guarantees a URL is scheduled at most once
//     per session
//   - per-domain pacing watermarks, which guarantee two fetches to the
//     same domain are never scheduled closer together than the domain's
//     delay
//
// Pop is non-blocking: when no entry is eligible it returns the
// earliest time one will be, and the caller decides how to wait. This
// keeps the pacing mechanism explicit instead of hiding sleeps inside
// the data structure.
package frontier
